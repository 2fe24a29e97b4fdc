package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/plateful/plateful/internal/config"
	"github.com/plateful/plateful/internal/database"
	"github.com/plateful/plateful/internal/models"
)

// ListStore is the transactional list/item/share store behind the shopping
// endpoints. *database.DB is the production implementation.
type ListStore interface {
	GetLists(ctx context.Context, userID string, take int) ([]models.ShoppingListDto, error)
	CreateList(ctx context.Context, userID, name string, order *int) (*models.ShoppingListDto, error)
	LoadList(ctx context.Context, userID, listID string) (*models.ShoppingListDto, error)
	SaveList(ctx context.Context, userID string, dto *models.ShoppingListDto) error
	DeleteList(ctx context.Context, userID, listID string) error
	ShareList(ctx context.Context, userID, listID, target string) (*models.ShoppingListDto, error)
	LeaveList(ctx context.Context, userID, listID string) error
}

// UserStore resolves and creates user accounts
type UserStore interface {
	CreateUser(ctx context.Context, email, username, passwordHash string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// Handler holds all handler dependencies
type Handler struct {
	lists ListStore
	users UserStore
	cfg   *config.Config
}

// New creates a new Handler instance
func New(db *database.DB, cfg *config.Config) *Handler {
	return &Handler{
		lists: db,
		users: db,
		cfg:   cfg,
	}
}

// ErrorHandler is a custom error handler for Fiber
func ErrorHandler(c *fiber.Ctx, err error) error {
	// Default to 500
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	// Check if it's a Fiber error
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"error": message,
	})
}

// Error returns an error response
func Error(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": message,
	})
}
