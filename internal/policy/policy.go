// Package policy holds the ownership rules that both the server handlers
// and the client sync engine must agree on. Keeping the decision table in
// one place stops the two layers from drifting apart.
package policy

// Action is what removing a list from a user's view means for that user
type Action int

const (
	// ActionDelete removes the list for everyone. Only the owner can do it.
	ActionDelete Action = iota
	// ActionLeave removes the caller's own share and keeps the list alive
	// for the owner.
	ActionLeave
)

// Decide returns the action a user removing a list should take. A shared
// list removed by a non-owner is left, not deleted; every other case is a
// delete (the server ignores unprivileged deletes anyway).
func Decide(isOwner, isShared bool) Action {
	if isShared && !isOwner {
		return ActionLeave
	}
	return ActionDelete
}
