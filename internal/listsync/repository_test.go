package listsync

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plateful/plateful/internal/models"
)

const (
	listUUID = "7b9e1a52-6f3d-4c8a-9e21-5a0d8c4b1f6e"
	itemUUID = "0c2f7d18-94ab-4e6c-8d53-b71e2a9f0c44"
)

func groceriesDto() models.ShoppingListDto {
	return models.ShoppingListDto{
		ListID:       listUUID,
		Name:         "Groceries",
		OrderForUser: 0,
		IsOwner:      true,
		Items: []models.ShoppingListItemDto{
			{ID: itemUUID, Name: "Milk", IsChecked: true, Position: 0},
		},
		SharedWith: []string{},
	}
}

func TestRepositoryFetchListsRegistersAliases(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/api/shopping/lists", r.URL.Path)
		require.Equal(t, "100", r.URL.Query().Get("take"))
		json.NewEncoder(w).Encode(models.ListsResponse{Lists: []models.ShoppingListDto{groceriesDto()}})
	}))
	defer srv.Close()

	aliases := NewAliasTable()
	repo := NewRepository(srv.URL, aliases)
	repo.SetToken("secret-token")

	lists, err := repo.FetchLists(context.Background())
	require.NoError(t, err)
	require.Len(t, lists, 1)

	assert.Equal(t, "Bearer secret-token", gotAuth)
	assert.Equal(t, "Groceries", lists[0].Name)
	assert.True(t, lists[0].IsOwner)
	require.Len(t, lists[0].Items, 1)
	assert.True(t, lists[0].Items[0].Checked)

	// both canonical ids must round-trip through the alias table
	assert.Equal(t, listUUID, aliases.CanonicalOf(lists[0].ID))
	assert.Equal(t, itemUUID, aliases.CanonicalOf(lists[0].Items[0].ID))
}

func TestRepositorySaveUsesCanonicalID(t *testing.T) {
	var gotPath string
	var gotReq models.SaveListRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.Equal(t, http.MethodPut, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		json.NewEncoder(w).Encode(models.ListMutationResponse{OK: true})
	}))
	defer srv.Close()

	aliases := NewAliasTable()
	repo := NewRepository(srv.URL, aliases)

	list := ListData{
		ID:   aliases.Remember(listUUID),
		Name: "Groceries",
		Items: []ItemData{
			{ID: aliases.Remember(itemUUID), Name: "Milk", Position: 0},
		},
	}
	require.NoError(t, repo.SaveMany(context.Background(), []ListData{list}))

	assert.Equal(t, "/api/shopping/lists/"+listUUID, gotPath)
	assert.Equal(t, listUUID, gotReq.List.ListID)
	require.Len(t, gotReq.List.Items, 1)
	assert.Equal(t, itemUUID, gotReq.List.Items[0].ID)
}

func TestRepositoryCreateFeedsAliasTable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/shopping/lists", r.URL.Path)

		var req models.CreateListRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.NotNil(t, req.Order)
		assert.Equal(t, 3, *req.Order)

		dto := groceriesDto()
		dto.Name = req.Name
		dto.OrderForUser = *req.Order
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(models.ListMutationResponse{OK: true, List: &dto})
	}))
	defer srv.Close()

	aliases := NewAliasTable()
	repo := NewRepository(srv.URL, aliases)

	created, err := repo.Create(context.Background(), ListData{Name: "Weekly shop", Order: 3})
	require.NoError(t, err)
	assert.Equal(t, "Weekly shop", created.Name)
	assert.Equal(t, 3, created.Order)
	assert.Equal(t, listUUID, aliases.CanonicalOf(created.ID))
}

func TestRepositoryDeleteOrLeaveOwnerDeletes(t *testing.T) {
	var gotMethod, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	aliases := NewAliasTable()
	repo := NewRepository(srv.URL, aliases)

	list := ListData{ID: aliases.Remember(listUUID), IsOwner: true, IsShared: true}
	require.NoError(t, repo.DeleteOrLeave(context.Background(), list))

	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, "/api/shopping/lists/"+listUUID, gotPath)
}

func TestRepositoryDeleteOrLeavePartnerLeaves(t *testing.T) {
	var gotMethod, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		json.NewEncoder(w).Encode(models.ListMutationResponse{OK: true, ListID: listUUID})
	}))
	defer srv.Close()

	aliases := NewAliasTable()
	repo := NewRepository(srv.URL, aliases)

	list := ListData{ID: aliases.Remember(listUUID), IsOwner: false, IsShared: true}
	require.NoError(t, repo.DeleteOrLeave(context.Background(), list))

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/api/shopping/lists/"+listUUID+"/leave", gotPath)
}

func TestRepositoryShareSurfacesErrorCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(models.ListMutationResponse{OK: false, Error: "TARGET_NOT_FOUND"})
	}))
	defer srv.Close()

	aliases := NewAliasTable()
	repo := NewRepository(srv.URL, aliases)

	list := ListData{ID: aliases.Remember(listUUID), IsOwner: true}
	_, err := repo.Share(context.Background(), list, "nobody")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TARGET_NOT_FOUND")
}

func TestRepositoryShareReturnsReconciledList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/shopping/lists/"+listUUID+"/share", r.URL.Path)

		var req models.ShareListRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "bob", req.Target)

		dto := groceriesDto()
		dto.IsShared = true
		dto.SharedWith = []string{"bob"}
		json.NewEncoder(w).Encode(models.ListMutationResponse{OK: true, List: &dto})
	}))
	defer srv.Close()

	aliases := NewAliasTable()
	repo := NewRepository(srv.URL, aliases)

	list := ListData{ID: aliases.Remember(listUUID), IsOwner: true}
	shared, err := repo.Share(context.Background(), list, "bob")
	require.NoError(t, err)
	assert.True(t, shared.IsShared)
	assert.Equal(t, []string{"bob"}, shared.SharedWith)
}
