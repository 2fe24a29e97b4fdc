package database

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/plateful/plateful/internal/models"
)

const (
	// DefaultListTake is used when the caller asks for zero or fewer lists
	DefaultListTake = 20
	// MaxListTake caps a single page of lists
	MaxListTake = 100
)

var (
	ErrListNotFound        = errors.New("shopping list not found")
	ErrListAccess          = errors.New("shopping list not found or not accessible")
	ErrNotListOwner        = errors.New("not the owner of this list")
	ErrInvalidListName     = errors.New("list name must not be empty")
	ErrInvalidShareTarget  = errors.New("share target must not be empty")
	ErrShareTargetNotFound = errors.New("share target user not found")
	ErrAlreadyShared       = errors.New("list is already shared")
)

// GetLists returns every list the user owns or is shared on, ordered by the
// viewer's own sort position. Items and share partners are fetched in two
// batched follow-up queries keyed by the resolved list id set.
func (db *DB) GetLists(ctx context.Context, userID string, take int) ([]models.ShoppingListDto, error) {
	if take < 1 {
		take = DefaultListTake
	}
	if take > MaxListTake {
		take = MaxListTake
	}

	rows, err := db.Pool.Query(ctx, `
		SELECT sl.id, sl.name, sl.is_shared, sl.owner_id, u.username,
			CASE WHEN sl.owner_id = $1 THEN sl.position
			     ELSE COALESCE(s.position, sl.position) END AS order_for_user
		FROM shopping_lists sl
		JOIN users u ON u.id = sl.owner_id
		LEFT JOIN shopping_list_shares s ON s.list_id = sl.id AND s.user_id = $1
		WHERE sl.owner_id = $1 OR s.user_id IS NOT NULL
		ORDER BY order_for_user ASC
		LIMIT $2
	`, userID, take)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lists := []*models.ShoppingListDto{}
	for rows.Next() {
		dto := &models.ShoppingListDto{
			Items:      []models.ShoppingListItemDto{},
			SharedWith: []string{},
		}
		var ownerID string
		if err := rows.Scan(&dto.ListID, &dto.Name, &dto.IsShared, &ownerID, &dto.OwnerUsername, &dto.OrderForUser); err != nil {
			return nil, err
		}
		dto.IsOwner = ownerID == userID
		lists = append(lists, dto)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(lists) > 0 {
		if err := db.attachListDetails(ctx, userID, lists); err != nil {
			return nil, err
		}
	}

	out := make([]models.ShoppingListDto, len(lists))
	for i, dto := range lists {
		out[i] = *dto
	}
	return out, nil
}

// LoadList returns the per-viewer shape of a single list. Callers that are
// neither the owner nor a share partner get ErrListNotFound.
func (db *DB) LoadList(ctx context.Context, userID, listID string) (*models.ShoppingListDto, error) {
	dto := &models.ShoppingListDto{
		Items:      []models.ShoppingListItemDto{},
		SharedWith: []string{},
	}
	var ownerID string

	err := db.Pool.QueryRow(ctx, `
		SELECT sl.id, sl.name, sl.is_shared, sl.owner_id, u.username,
			CASE WHEN sl.owner_id = $1 THEN sl.position
			     ELSE COALESCE(s.position, sl.position) END AS order_for_user
		FROM shopping_lists sl
		JOIN users u ON u.id = sl.owner_id
		LEFT JOIN shopping_list_shares s ON s.list_id = sl.id AND s.user_id = $1
		WHERE sl.id = $2 AND (sl.owner_id = $1 OR s.user_id IS NOT NULL)
	`, userID, listID).Scan(&dto.ListID, &dto.Name, &dto.IsShared, &ownerID, &dto.OwnerUsername, &dto.OrderForUser)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrListNotFound
		}
		return nil, err
	}
	dto.IsOwner = ownerID == userID

	if err := db.attachListDetails(ctx, userID, []*models.ShoppingListDto{dto}); err != nil {
		return nil, err
	}

	return dto, nil
}

// attachListDetails loads items and share partners for the given lists in
// two batched queries. SharedWith holds the other participants as seen by
// the viewer: partners for the owner, the owner (plus any other partners)
// for a shared user.
func (db *DB) attachListDetails(ctx context.Context, viewerID string, lists []*models.ShoppingListDto) error {
	ids := make([]string, len(lists))
	byID := make(map[string]*models.ShoppingListDto, len(lists))
	for i, dto := range lists {
		ids[i] = dto.ListID
		byID[dto.ListID] = dto
	}

	itemRows, err := db.Pool.Query(ctx, `
		SELECT id, list_id, name, is_checked, position
		FROM shopping_list_items
		WHERE list_id = ANY($1)
		ORDER BY position ASC, created_at ASC
	`, ids)
	if err != nil {
		return err
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var item models.ShoppingListItemDto
		var listID string
		if err := itemRows.Scan(&item.ID, &listID, &item.Name, &item.IsChecked, &item.Position); err != nil {
			return err
		}
		if dto, ok := byID[listID]; ok {
			dto.Items = append(dto.Items, item)
		}
	}
	if err := itemRows.Err(); err != nil {
		return err
	}

	shareRows, err := db.Pool.Query(ctx, `
		SELECT s.list_id, s.user_id, u.username
		FROM shopping_list_shares s
		JOIN users u ON u.id = s.user_id
		WHERE s.list_id = ANY($1)
	`, ids)
	if err != nil {
		return err
	}
	defer shareRows.Close()

	for shareRows.Next() {
		var listID, shareUserID, username string
		if err := shareRows.Scan(&listID, &shareUserID, &username); err != nil {
			return err
		}
		if shareUserID == viewerID {
			// the viewer never appears in their own sharedWith
			continue
		}
		if dto, ok := byID[listID]; ok {
			dto.SharedWith = append(dto.SharedWith, username)
		}
	}
	if err := shareRows.Err(); err != nil {
		return err
	}

	// A share partner sees the owner as a participant
	for _, dto := range lists {
		if !dto.IsOwner {
			dto.SharedWith = append([]string{dto.OwnerUsername}, dto.SharedWith...)
		}
	}

	return nil
}

// CreateList creates a new list owned by the caller. The position becomes
// max(0, order), or 0 when no order is supplied.
func (db *DB) CreateList(ctx context.Context, userID, name string, order *int) (*models.ShoppingListDto, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidListName
	}

	position := 0
	if order != nil && *order > 0 {
		position = *order
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var listID string
	err = tx.QueryRow(ctx, `
		INSERT INTO shopping_lists (owner_id, name, position, is_shared, created_at, updated_at)
		VALUES ($1, $2, $3, FALSE, NOW(), NOW())
		RETURNING id
	`, userID, name, position).Scan(&listID)
	if err != nil {
		return nil, err
	}

	var username string
	err = tx.QueryRow(ctx, `SELECT username FROM users WHERE id = $1`, userID).Scan(&username)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return &models.ShoppingListDto{
		ListID:        listID,
		Name:          name,
		OrderForUser:  position,
		IsOwner:       true,
		OwnerUsername: username,
		IsShared:      false,
		Items:         []models.ShoppingListItemDto{},
		SharedWith:    []string{},
	}, nil
}

// SaveList updates a list's name (and, for the owner, its position) and
// replaces its items wholesale: all existing rows are deleted and the
// supplied items reinserted in array order with position = index. Item ids
// are reused only when caller-supplied and well-formed; anything else
// becomes a new row.
func (db *DB) SaveList(ctx context.Context, userID string, dto *models.ShoppingListDto) error {
	name := strings.TrimSpace(dto.Name)
	if name == "" {
		return ErrInvalidListName
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var ownerID string
	err = tx.QueryRow(ctx, `SELECT owner_id FROM shopping_lists WHERE id = $1`, dto.ListID).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrListAccess
		}
		return err
	}

	if ownerID == userID {
		_, err = tx.Exec(ctx, `
			UPDATE shopping_lists SET name = $2, position = $3, updated_at = NOW() WHERE id = $1
		`, dto.ListID, name, dto.OrderForUser)
	} else {
		var shared bool
		err = tx.QueryRow(ctx, `
			SELECT EXISTS(SELECT 1 FROM shopping_list_shares WHERE list_id = $1 AND user_id = $2)
		`, dto.ListID, userID).Scan(&shared)
		if err != nil {
			return err
		}
		if !shared {
			return ErrListAccess
		}
		// a share partner may rename the list but not reorder the owner's view
		_, err = tx.Exec(ctx, `
			UPDATE shopping_lists SET name = $2, updated_at = NOW() WHERE id = $1
		`, dto.ListID, name)
	}
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `DELETE FROM shopping_list_items WHERE list_id = $1`, dto.ListID)
	if err != nil {
		return err
	}

	for i, item := range dto.Items {
		itemID := item.ID
		if _, err := uuid.Parse(itemID); err != nil {
			itemID = uuid.NewString()
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO shopping_list_items (id, list_id, name, is_checked, position, created_at)
			VALUES ($1, $2, $3, $4, $5, NOW())
		`, itemID, dto.ListID, item.Name, item.IsChecked, i)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// DeleteList deletes a list the caller owns, cascading items and shares.
// A non-owner call affects zero rows and is deliberately not an error.
func (db *DB) DeleteList(ctx context.Context, userID, listID string) error {
	_, err := db.Pool.Exec(ctx, `
		DELETE FROM shopping_lists WHERE id = $1 AND owner_id = $2
	`, listID, userID)
	return err
}

// ShareList shares a list with another user by username and returns the
// freshly loaded list. Re-sharing with the same partner is idempotent.
func (db *DB) ShareList(ctx context.Context, userID, listID, target string) (*models.ShoppingListDto, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return nil, ErrInvalidShareTarget
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var targetID string
	err = tx.QueryRow(ctx, `SELECT id FROM users WHERE username = $1`, target).Scan(&targetID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrShareTargetNotFound
		}
		return nil, err
	}

	var ownerID string
	err = tx.QueryRow(ctx, `SELECT owner_id FROM shopping_lists WHERE id = $1`, listID).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrListNotFound
		}
		return nil, err
	}
	if ownerID != userID {
		return nil, ErrNotListOwner
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO shopping_list_shares (list_id, user_id, position, created_at)
		VALUES ($1, $2, 0, NOW())
		ON CONFLICT (list_id, user_id) DO NOTHING
	`, listID, targetID)
	if err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx, `
		UPDATE shopping_lists SET is_shared = TRUE, updated_at = NOW() WHERE id = $1
	`, listID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return db.LoadList(ctx, userID, listID)
}

// LeaveList removes the caller's own share row and recomputes the list's
// shared flag. Idempotent for a caller with no share row.
func (db *DB) LeaveList(ctx context.Context, userID, listID string) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		DELETE FROM shopping_list_shares WHERE list_id = $1 AND user_id = $2
	`, listID, userID)
	if err != nil {
		return err
	}

	var stillShared bool
	err = tx.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM shopping_list_shares WHERE list_id = $1)
	`, listID).Scan(&stillShared)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		UPDATE shopping_lists SET is_shared = $2, updated_at = NOW() WHERE id = $1
	`, listID, stillShared)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}
