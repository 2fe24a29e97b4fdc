package models

// ShoppingList is the server-canonical list row. The id is an opaque,
// server-assigned string that stays stable for the lifetime of the list.
type ShoppingList struct {
	ID       string `json:"id"`
	OwnerID  string `json:"owner_id"`
	Name     string `json:"name"`
	Position int    `json:"position"`
	IsShared bool   `json:"is_shared"`
}

// ShoppingListItem is a single entry in a list. Items are replaced
// wholesale on every list save, so an item id only survives a save when
// the caller supplies a well-formed one.
type ShoppingListItem struct {
	ID        string `json:"id"`
	ListID    string `json:"list_id"`
	Name      string `json:"name"`
	IsChecked bool   `json:"is_checked"`
	Position  int    `json:"position"`
}

// ShoppingListShare links a list to the user it is shared with. The
// position is the shared user's private sort key, independent of the
// owner's.
type ShoppingListShare struct {
	ListID   string `json:"list_id"`
	UserID   string `json:"user_id"`
	Position int    `json:"position"`
}

// ShoppingListItemDto is the wire shape of a list item
type ShoppingListItemDto struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	IsChecked bool   `json:"is_checked"`
	Position  int    `json:"position"`
}

// ShoppingListDto is the per-viewer wire shape of a list. OrderForUser is
// the owner's position for the owner and the share position for a shared
// user. SharedWith names the other participants, never the viewer.
type ShoppingListDto struct {
	ListID        string                `json:"listId"`
	Name          string                `json:"name"`
	OrderForUser  int                   `json:"orderForUser"`
	IsOwner       bool                  `json:"isOwner"`
	OwnerUsername string                `json:"ownerUsername"`
	IsShared      bool                  `json:"isShared"`
	Items         []ShoppingListItemDto `json:"items"`
	SharedWith    []string              `json:"sharedWith"`
}

// CreateListRequest is the payload for creating a list
type CreateListRequest struct {
	Name  string `json:"name"`
	Order *int   `json:"order,omitempty"`
}

// SaveListRequest is the payload for saving a list
type SaveListRequest struct {
	List ShoppingListDto `json:"list"`
}

// ShareListRequest is the payload for sharing a list with another user
type ShareListRequest struct {
	Target string `json:"target"`
}

// ListsResponse wraps the list collection returned by the lists endpoint
type ListsResponse struct {
	Lists []ShoppingListDto `json:"lists"`
}

// ListMutationResponse is the common envelope for list mutations
type ListMutationResponse struct {
	OK     bool             `json:"ok"`
	List   *ShoppingListDto `json:"list,omitempty"`
	ListID string           `json:"listId,omitempty"`
	Error  string           `json:"error,omitempty"`
}
