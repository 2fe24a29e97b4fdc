package listsync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/plateful/plateful/internal/models"
	"github.com/plateful/plateful/internal/policy"
)

const requestTimeout = 10 * time.Second

// Repository translates between the sync engine's numeric-id domain model
// and the server's wire DTOs. Canonical ids are resolved through the alias
// table immediately before every request, and every canonical id observed
// in a response is fed back into it.
type Repository struct {
	baseURL string
	client  *http.Client
	aliases *AliasTable

	mu    sync.Mutex
	token string
}

// NewRepository creates a repository adapter against a server base URL
func NewRepository(baseURL string, aliases *AliasTable) *Repository {
	return &Repository{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: requestTimeout},
		aliases: aliases,
	}
}

// SetToken replaces the bearer token used on subsequent requests
func (r *Repository) SetToken(token string) {
	r.mu.Lock()
	r.token = token
	r.mu.Unlock()
}

func (r *Repository) bearer() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.token
}

// do issues one JSON request and decodes the response body into out when
// the status carries one
func (r *Repository) do(ctx context.Context, method, path string, body, out interface{}) (int, error) {
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return 0, err
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, reader)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token := r.bearer(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if out != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode response: %w", err)
		}
	}

	return resp.StatusCode, nil
}

// mutationError turns a non-ok mutation envelope into an error
func mutationError(op string, status int, resp *models.ListMutationResponse) error {
	code := ""
	if resp != nil {
		code = resp.Error
	}
	if code == "" {
		code = fmt.Sprintf("status %d", status)
	}
	return fmt.Errorf("%s: %s", op, code)
}

// FetchLists retrieves the authoritative list set for the current session
func (r *Repository) FetchLists(ctx context.Context) ([]ListData, error) {
	var body models.ListsResponse
	status, err := r.do(ctx, http.MethodGet, fmt.Sprintf("/api/shopping/lists?take=%d", 100), nil, &body)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("fetch lists: status %d", status)
	}

	lists := make([]ListData, 0, len(body.Lists))
	for i := range body.Lists {
		lists = append(lists, r.fromDto(&body.Lists[i]))
	}
	return lists, nil
}

// Create creates the list on the server and returns its reconciled shape
func (r *Repository) Create(ctx context.Context, list ListData) (*ListData, error) {
	order := list.Order
	req := models.CreateListRequest{Name: list.Name, Order: &order}

	var resp models.ListMutationResponse
	status, err := r.do(ctx, http.MethodPost, "/api/shopping/lists", req, &resp)
	if err != nil {
		return nil, err
	}
	if status >= http.StatusBadRequest || !resp.OK || resp.List == nil {
		return nil, mutationError("create list", status, &resp)
	}

	created := r.fromDto(resp.List)
	return &created, nil
}

// SaveMany saves each list with its own request. There is no cross-list
// transaction: a failure in the middle leaves earlier saves in place, and
// only the last error is reported.
func (r *Repository) SaveMany(ctx context.Context, lists []ListData) error {
	var lastErr error
	for i := range lists {
		if err := r.save(ctx, &lists[i]); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

// SaveName persists a rename. The whole list is sent because a save
// replaces items wholesale on the server.
func (r *Repository) SaveName(ctx context.Context, list ListData) error {
	return r.save(ctx, &list)
}

func (r *Repository) save(ctx context.Context, list *ListData) error {
	canonical := r.aliases.CanonicalOf(list.ID)
	req := models.SaveListRequest{List: r.toDto(list)}

	var resp models.ListMutationResponse
	status, err := r.do(ctx, http.MethodPut, "/api/shopping/lists/"+canonical, req, &resp)
	if err != nil {
		return err
	}
	if status >= http.StatusBadRequest || !resp.OK {
		return mutationError("save list", status, &resp)
	}
	return nil
}

// DeleteOrLeave removes a list for the current user, deleting it when the
// ownership policy allows and leaving the share otherwise
func (r *Repository) DeleteOrLeave(ctx context.Context, list ListData) error {
	if policy.Decide(list.IsOwner, list.IsShared) == policy.ActionLeave {
		return r.Leave(ctx, list)
	}

	canonical := r.aliases.CanonicalOf(list.ID)
	status, err := r.do(ctx, http.MethodDelete, "/api/shopping/lists/"+canonical, nil, nil)
	if err != nil {
		return err
	}
	if status != http.StatusNoContent {
		return fmt.Errorf("delete list: status %d", status)
	}
	return nil
}

// Leave removes the caller's own share of a list
func (r *Repository) Leave(ctx context.Context, list ListData) error {
	canonical := r.aliases.CanonicalOf(list.ID)

	var resp models.ListMutationResponse
	status, err := r.do(ctx, http.MethodPost, "/api/shopping/lists/"+canonical+"/leave", nil, &resp)
	if err != nil {
		return err
	}
	if status >= http.StatusBadRequest || !resp.OK {
		return mutationError("leave list", status, &resp)
	}
	return nil
}

// Share shares a list with another user and returns the reconciled list
func (r *Repository) Share(ctx context.Context, list ListData, target string) (*ListData, error) {
	canonical := r.aliases.CanonicalOf(list.ID)
	req := models.ShareListRequest{Target: target}

	var resp models.ListMutationResponse
	status, err := r.do(ctx, http.MethodPost, "/api/shopping/lists/"+canonical+"/share", req, &resp)
	if err != nil {
		return nil, err
	}
	if status >= http.StatusBadRequest || !resp.OK || resp.List == nil {
		return nil, mutationError("share list", status, &resp)
	}

	shared := r.fromDto(resp.List)
	return &shared, nil
}

// fromDto converts a wire DTO into the client model, registering every
// canonical id it carries
func (r *Repository) fromDto(dto *models.ShoppingListDto) ListData {
	list := ListData{
		ID:            r.aliases.Remember(dto.ListID),
		Name:          dto.Name,
		Order:         dto.OrderForUser,
		IsOwner:       dto.IsOwner,
		OwnerUsername: dto.OwnerUsername,
		IsShared:      dto.IsShared,
		SharedWith:    append([]string(nil), dto.SharedWith...),
		Items:         make([]ItemData, 0, len(dto.Items)),
	}
	for _, item := range dto.Items {
		list.Items = append(list.Items, ItemData{
			ID:       r.aliases.Remember(item.ID),
			Name:     item.Name,
			Checked:  item.IsChecked,
			Position: item.Position,
		})
	}
	return list
}

// toDto converts the client model back into the wire DTO, resolving every
// numeric alias to its canonical id
func (r *Repository) toDto(list *ListData) models.ShoppingListDto {
	dto := models.ShoppingListDto{
		ListID:        r.aliases.CanonicalOf(list.ID),
		Name:          list.Name,
		OrderForUser:  list.Order,
		IsOwner:       list.IsOwner,
		OwnerUsername: list.OwnerUsername,
		IsShared:      list.IsShared,
		SharedWith:    append([]string(nil), list.SharedWith...),
		Items:         make([]models.ShoppingListItemDto, 0, len(list.Items)),
	}
	for _, item := range list.Items {
		dto.Items = append(dto.Items, models.ShoppingListItemDto{
			ID:        r.aliases.CanonicalOf(item.ID),
			Name:      item.Name,
			IsChecked: item.Checked,
			Position:  item.Position,
		})
	}
	return dto
}
