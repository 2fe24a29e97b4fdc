package listsync

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeDuplicatesSharedCopyWins(t *testing.T) {
	lists := []ListData{
		{ID: 7, Name: "Groceries", IsShared: false, Items: []ItemData{}},
		{ID: 7, Name: "Groceries", IsShared: true, SharedWith: []string{"bob"}, Items: []ItemData{
			{ID: 1, Name: "Milk"},
			{ID: 2, Name: "Eggs"},
		}},
	}

	merged := MergeDuplicates(lists)
	require.Len(t, merged, 1)
	assert.True(t, merged[0].IsShared)
	assert.Len(t, merged[0].Items, 2)
	assert.Equal(t, []string{"bob"}, merged[0].SharedWith)
}

func TestMergeDuplicatesMoreItemsWins(t *testing.T) {
	lists := []ListData{
		{ID: 7, Items: []ItemData{{ID: 1}}},
		{ID: 7, Items: []ItemData{{ID: 1}, {ID: 2}, {ID: 3}}},
	}

	merged := MergeDuplicates(lists)
	require.Len(t, merged, 1)
	assert.Len(t, merged[0].Items, 3)
}

func TestMergeDuplicatesUnionsSharingMetadata(t *testing.T) {
	// the copy with items wins but the sharing metadata of the losing
	// copy must not be dropped
	lists := []ListData{
		{ID: 7, IsShared: true, SharedWith: []string{"bob"}, Items: []ItemData{}},
		{ID: 7, IsShared: true, Items: []ItemData{{ID: 1}, {ID: 2}}},
	}

	merged := MergeDuplicates(lists)
	require.Len(t, merged, 1)
	assert.True(t, merged[0].IsShared)
	assert.Equal(t, []string{"bob"}, merged[0].SharedWith)
	assert.Len(t, merged[0].Items, 2)
}

func TestMergeDuplicatesKeepsDistinctLists(t *testing.T) {
	lists := []ListData{
		{ID: 1, Name: "Groceries"},
		{ID: 2, Name: "Hardware"},
		{ID: 3, Name: "Party"},
	}

	merged := MergeDuplicates(lists)
	assert.Len(t, merged, 3)
	assert.Equal(t, "Groceries", merged[0].Name)
	assert.Equal(t, "Party", merged[2].Name)
}
