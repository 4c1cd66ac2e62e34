package handlers_test

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tickerdesk/tickerdesk/internal/handlers"
	"github.com/tickerdesk/tickerdesk/internal/models"
	"github.com/tickerdesk/tickerdesk/internal/services"
	pkglogger "github.com/tickerdesk/tickerdesk/pkg/logger"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newUserHandler(repo *services.MockUserRepository) *handlers.UserHandler {
	logger := discardLogger()
	service := services.NewUserService(repo, logger, pkglogger.NewAuditLogger(logger))
	return handlers.NewUserHandler(service)
}

func TestListUsers_OmitsPasswordHash(t *testing.T) {
	lastIP := "192.0.2.1"
	repo := &services.MockUserRepository{
		ListFunc: func(ctx context.Context) ([]*models.User, error) {
			return []*models.User{
				{
					ID:           "user-1",
					Email:        "alice@example.com",
					PasswordHash: "$2a$10$secret",
					LastIP:       &lastIP,
					RequestCount: 7,
					CreatedAt:    time.Now(),
				},
			}, nil
		},
	}

	handler := newUserHandler(repo)
	req := handlers.NewTestRequest(t, "GET", "/admin/users", nil)

	w := httptest.NewRecorder()
	handler.List(w, req)

	var resp []handlers.UserResponse
	handlers.AssertJSONResponse(t, w, 200, &resp)
	assert.Len(t, resp, 1)
	assert.Equal(t, "alice@example.com", resp[0].Email)
	assert.Equal(t, 7, resp[0].RequestCount)
	assert.NotContains(t, w.Body.String(), "$2a$10$secret")
}

func TestCreateUser_Success(t *testing.T) {
	var createdHash string
	repo := &services.MockUserRepository{
		CreateFunc: func(ctx context.Context, user *models.User) (*models.User, error) {
			createdHash = user.PasswordHash
			user.ID = "user-1"
			return user, nil
		},
	}

	handler := newUserHandler(repo)
	req := handlers.NewTestRequest(t, "POST", "/admin/users", handlers.CreateUserRequest{
		Email:    "Bob@Example.com",
		Password: "long-enough-password",
	})

	w := httptest.NewRecorder()
	handler.Create(w, req)

	var resp handlers.UserResponse
	handlers.AssertJSONResponse(t, w, 201, &resp)
	assert.Equal(t, "bob@example.com", resp.Email)
	assert.NotEmpty(t, createdHash)
	assert.NotEqual(t, "long-enough-password", createdHash)
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	repo := &services.MockUserRepository{
		CreateFunc: func(ctx context.Context, user *models.User) (*models.User, error) {
			return nil, models.ErrConflict
		},
	}

	handler := newUserHandler(repo)
	req := handlers.NewTestRequest(t, "POST", "/admin/users", handlers.CreateUserRequest{
		Email:    "bob@example.com",
		Password: "long-enough-password",
	})

	w := httptest.NewRecorder()
	handler.Create(w, req)

	handlers.AssertErrorResponse(t, w, 409, "conflict")
}

func TestCreateUser_ShortPassword(t *testing.T) {
	handler := newUserHandler(&services.MockUserRepository{})
	req := handlers.NewTestRequest(t, "POST", "/admin/users", handlers.CreateUserRequest{
		Email:    "bob@example.com",
		Password: "short",
	})

	w := httptest.NewRecorder()
	handler.Create(w, req)

	handlers.AssertErrorResponse(t, w, 400, "bad_request")
}

func TestToggleUser_Disable(t *testing.T) {
	var gotDisabled bool
	repo := &services.MockUserRepository{
		SetDisabledFunc: func(ctx context.Context, id string, disabled bool) (*models.User, error) {
			gotDisabled = disabled
			return &models.User{ID: id, Email: "alice@example.com", Disabled: disabled}, nil
		},
	}

	disabled := true
	handler := newUserHandler(repo)
	req := handlers.NewTestRequest(t, "PATCH", "/admin/users/user-1/toggle", handlers.ToggleUserRequest{
		Disabled: &disabled,
	})
	req = handlers.WithURLParam(req, "id", "user-1")

	w := httptest.NewRecorder()
	handler.Toggle(w, req)

	var resp handlers.UserResponse
	handlers.AssertJSONResponse(t, w, 200, &resp)
	assert.True(t, resp.Disabled)
	assert.True(t, gotDisabled)
}

func TestToggleUser_MissingDisabledField(t *testing.T) {
	handler := newUserHandler(&services.MockUserRepository{})
	req := handlers.NewTestRequest(t, "PATCH", "/admin/users/user-1/toggle", map[string]string{})
	req = handlers.WithURLParam(req, "id", "user-1")

	w := httptest.NewRecorder()
	handler.Toggle(w, req)

	handlers.AssertErrorResponse(t, w, 400, "bad_request")
}

func TestUpdateUser_NotFound(t *testing.T) {
	repo := &services.MockUserRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.User, error) {
			return nil, models.ErrNotFound
		},
	}

	handler := newUserHandler(repo)
	req := handlers.NewTestRequest(t, "PUT", "/admin/users/missing", handlers.UpdateUserRequest{
		Password: "long-enough-password",
	})
	req = handlers.WithURLParam(req, "id", "missing")

	w := httptest.NewRecorder()
	handler.Update(w, req)

	handlers.AssertErrorResponse(t, w, 404, "not_found")
}

func TestDeleteUser_Success(t *testing.T) {
	var deletedID string
	repo := &services.MockUserRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.User, error) {
			return &models.User{ID: id, Email: "alice@example.com"}, nil
		},
		DeleteFunc: func(ctx context.Context, id string) error {
			deletedID = id
			return nil
		},
	}

	handler := newUserHandler(repo)
	req := handlers.NewTestRequest(t, "DELETE", "/admin/users/user-1", nil)
	req = handlers.WithURLParam(req, "id", "user-1")

	w := httptest.NewRecorder()
	handler.Delete(w, req)

	assert.Equal(t, 200, w.Code)
	assert.Equal(t, "user-1", deletedID)
}
