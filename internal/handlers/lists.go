package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/plateful/plateful/internal/database"
	"github.com/plateful/plateful/internal/models"
)

// getUserID extracts the authenticated user id from the request context
func getUserID(c *fiber.Ctx) (string, error) {
	userID, ok := c.Locals("user_id").(string)
	if !ok || userID == "" {
		return "", errors.New("user not authenticated")
	}
	return userID, nil
}

// listErrorStatus maps a store error to its HTTP status and wire code.
// Anything outside the known taxonomy is surfaced as an opaque 400.
func listErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, database.ErrInvalidListName):
		return fiber.StatusBadRequest, "INVALID_NAME"
	case errors.Is(err, database.ErrInvalidShareTarget):
		return fiber.StatusBadRequest, "INVALID_TARGET"
	case errors.Is(err, database.ErrListNotFound):
		return fiber.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, database.ErrListAccess):
		return fiber.StatusForbidden, "NOT_FOUND_OR_FORBIDDEN"
	case errors.Is(err, database.ErrNotListOwner):
		return fiber.StatusForbidden, "FORBIDDEN"
	case errors.Is(err, database.ErrShareTargetNotFound):
		return fiber.StatusBadRequest, "TARGET_NOT_FOUND"
	case errors.Is(err, database.ErrAlreadyShared):
		return fiber.StatusConflict, "ALREADY_SHARED"
	default:
		log.Printf("shopping list store error: %v", err)
		return fiber.StatusBadRequest, "UNKNOWN"
	}
}

// listError writes the mutation error envelope for a store error
func listError(c *fiber.Ctx, err error) error {
	status, code := listErrorStatus(err)
	return c.Status(status).JSON(models.ListMutationResponse{
		OK:    false,
		Error: code,
	})
}

// listIDParam validates the list id path parameter
func listIDParam(c *fiber.Ctx) (string, bool) {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", false
	}
	return id, true
}

// GetShoppingLists returns every list the current user owns or is shared on
func (h *Handler) GetShoppingLists(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return Error(c, fiber.StatusUnauthorized, err.Error())
	}

	take := c.QueryInt("take", 0)

	lists, err := h.lists.GetLists(c.Context(), userID, take)
	if err != nil {
		return listError(c, err)
	}

	return c.JSON(models.ListsResponse{Lists: lists})
}

// CreateShoppingList creates a new shopping list
func (h *Handler) CreateShoppingList(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return Error(c, fiber.StatusUnauthorized, err.Error())
	}

	var req models.CreateListRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ListMutationResponse{
			OK:    false,
			Error: "INVALID_PAYLOAD",
		})
	}

	list, err := h.lists.CreateList(c.Context(), userID, req.Name, req.Order)
	if err != nil {
		return listError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(models.ListMutationResponse{
		OK:   true,
		List: list,
	})
}

// GetShoppingList returns a single list in the viewer's shape
func (h *Handler) GetShoppingList(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return Error(c, fiber.StatusUnauthorized, err.Error())
	}

	listID, ok := listIDParam(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(models.ListMutationResponse{
			OK:    false,
			Error: "INVALID_LIST_ID",
		})
	}

	list, err := h.lists.LoadList(c.Context(), userID, listID)
	if err != nil {
		return listError(c, err)
	}

	return c.JSON(list)
}

// SaveShoppingList saves a list's name, position and items
func (h *Handler) SaveShoppingList(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return Error(c, fiber.StatusUnauthorized, err.Error())
	}

	listID, ok := listIDParam(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(models.ListMutationResponse{
			OK:    false,
			Error: "INVALID_LIST_ID",
		})
	}

	var req models.SaveListRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ListMutationResponse{
			OK:    false,
			Error: "INVALID_PAYLOAD",
		})
	}

	// the path parameter is authoritative for the list identity
	req.List.ListID = listID

	if err := h.lists.SaveList(c.Context(), userID, &req.List); err != nil {
		return listError(c, err)
	}

	return c.JSON(models.ListMutationResponse{OK: true})
}

// DeleteShoppingList deletes a list the caller owns. Non-owner calls are
// harmless no-ops and still answer 204.
func (h *Handler) DeleteShoppingList(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return Error(c, fiber.StatusUnauthorized, err.Error())
	}

	listID, ok := listIDParam(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(models.ListMutationResponse{
			OK:    false,
			Error: "INVALID_LIST_ID",
		})
	}

	if err := h.lists.DeleteList(c.Context(), userID, listID); err != nil {
		return listError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// ShareShoppingList shares a list with another user by username
func (h *Handler) ShareShoppingList(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return Error(c, fiber.StatusUnauthorized, err.Error())
	}

	listID, ok := listIDParam(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(models.ListMutationResponse{
			OK:    false,
			Error: "INVALID_LIST_ID",
		})
	}

	var req models.ShareListRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ListMutationResponse{
			OK:    false,
			Error: "INVALID_PAYLOAD",
		})
	}

	list, err := h.lists.ShareList(c.Context(), userID, listID, req.Target)
	if err != nil {
		return listError(c, err)
	}

	return c.JSON(models.ListMutationResponse{
		OK:   true,
		List: list,
	})
}

// LeaveShoppingList removes the caller's own share of a list
func (h *Handler) LeaveShoppingList(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return Error(c, fiber.StatusUnauthorized, err.Error())
	}

	listID, ok := listIDParam(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(models.ListMutationResponse{
			OK:    false,
			Error: "INVALID_LIST_ID",
		})
	}

	if err := h.lists.LeaveList(c.Context(), userID, listID); err != nil {
		return listError(c, err)
	}

	return c.JSON(models.ListMutationResponse{
		OK:     true,
		ListID: listID,
	})
}
