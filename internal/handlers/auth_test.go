package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/plateful/plateful/internal/config"
	"github.com/plateful/plateful/internal/database"
	"github.com/plateful/plateful/internal/models"
)

type fakeUserStore struct {
	user      *models.User
	createErr error
}

func (f *fakeUserStore) CreateUser(_ context.Context, email, username, passwordHash string) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &models.User{ID: testUserID, Email: email, Username: username, PasswordHash: passwordHash}, nil
}

func (f *fakeUserStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	if f.user == nil {
		return nil, database.ErrUserNotFound
	}
	return f.user, nil
}

func (f *fakeUserStore) GetUserByID(_ context.Context, id string) (*models.User, error) {
	if f.user == nil {
		return nil, database.ErrUserNotFound
	}
	return f.user, nil
}

func newAuthApp(store *fakeUserStore) *fiber.App {
	h := &Handler{users: store, cfg: config.Load()}

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Post("/api/auth/register", h.Register)
	app.Post("/api/auth/login", h.Login)
	return app
}

func TestRegister(t *testing.T) {
	app := newAuthApp(&fakeUserStore{})

	resp := doJSON(t, app, http.MethodPost, "/api/auth/register", models.RegisterRequest{
		Email:    "Alice@Example.com",
		Username: "alice",
		Password: "correct-horse",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var body models.AuthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.NotEmpty(t, body.Token)
	require.NotNil(t, body.User)
	assert.Equal(t, "alice@example.com", body.User.Email)
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	app := newAuthApp(&fakeUserStore{})

	resp := doJSON(t, app, http.MethodPost, "/api/auth/register", models.RegisterRequest{
		Email:    "alice@example.com",
		Username: "alice",
		Password: "short",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	app := newAuthApp(&fakeUserStore{createErr: database.ErrEmailExists})

	resp := doJSON(t, app, http.MethodPost, "/api/auth/register", models.RegisterRequest{
		Email:    "alice@example.com",
		Username: "alice",
		Password: "correct-horse",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestLogin(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	require.NoError(t, err)

	app := newAuthApp(&fakeUserStore{user: &models.User{
		ID:           testUserID,
		Email:        "alice@example.com",
		Username:     "alice",
		PasswordHash: string(hash),
	}})

	resp := doJSON(t, app, http.MethodPost, "/api/auth/login", models.LoginRequest{
		Email:    "alice@example.com",
		Password: "correct-horse",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body models.AuthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.NotEmpty(t, body.Token)
}

func TestLoginWrongPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	require.NoError(t, err)

	app := newAuthApp(&fakeUserStore{user: &models.User{
		ID:           testUserID,
		Email:        "alice@example.com",
		PasswordHash: string(hash),
	}})

	resp := doJSON(t, app, http.MethodPost, "/api/auth/login", models.LoginRequest{
		Email:    "alice@example.com",
		Password: "battery-staple",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLoginUnknownUser(t *testing.T) {
	app := newAuthApp(&fakeUserStore{})

	resp := doJSON(t, app, http.MethodPost, "/api/auth/login", models.LoginRequest{
		Email:    "nobody@example.com",
		Password: "correct-horse",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
