package listsync

// MergeDuplicates collapses entries sharing the same id into one. The same
// canonical list can arrive twice in a single response, once via ownership
// and once via a stale share join; the merge keeps the richer copy without
// losing sharing metadata from either. First-seen order is preserved.
func MergeDuplicates(lists []ListData) []ListData {
	out := make([]ListData, 0, len(lists))
	index := make(map[int64]int, len(lists))

	for _, l := range lists {
		i, seen := index[l.ID]
		if !seen {
			index[l.ID] = len(out)
			out = append(out, l)
			continue
		}
		out[i] = mergePair(out[i], l)
	}

	return out
}

// mergePair picks a winner between two copies of the same list: the shared
// copy wins, then the copy with more items. The shared flag is the OR of
// both and sharedWith falls back to the loser's when the winner has none.
func mergePair(a, b ListData) ListData {
	winner, loser := a, b
	switch {
	case b.IsShared && !a.IsShared:
		winner, loser = b, a
	case a.IsShared == b.IsShared && len(b.Items) > len(a.Items):
		winner, loser = b, a
	}

	winner.IsShared = a.IsShared || b.IsShared
	if len(winner.SharedWith) == 0 {
		winner.SharedWith = loser.SharedWith
	}
	return winner
}
