// Package listsync is the client half of the shopping-list engine: an
// optimistic in-memory cache of the user's lists that stays consistent
// with the server through stale-while-revalidate refreshes. The UI layer
// keys everything by process-local numeric ids; the alias table maps those
// to the canonical string ids the server understands.
package listsync

// ListData is the client-local shape of a shopping list. The numeric id
// exists purely for UI keying and is never sent to the server as an
// identity.
type ListData struct {
	ID            int64      `json:"id"`
	Name          string     `json:"name"`
	Order         int        `json:"order"`
	IsOwner       bool       `json:"is_owner"`
	OwnerUsername string     `json:"owner_username"`
	IsShared      bool       `json:"is_shared"`
	SharedWith    []string   `json:"shared_with"`
	Items         []ItemData `json:"items"`
}

// ItemData is the client-local shape of a list item
type ItemData struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Checked  bool   `json:"checked"`
	Position int    `json:"position"`
}

// cloneLists deep-copies the list slice so state snapshots never alias
// caller-held data
func cloneLists(lists []ListData) []ListData {
	out := make([]ListData, len(lists))
	for i, l := range lists {
		out[i] = l
		out[i].SharedWith = append([]string(nil), l.SharedWith...)
		out[i].Items = append([]ItemData(nil), l.Items...)
	}
	return out
}
