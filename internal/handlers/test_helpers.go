package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"github.com/tickerdesk/tickerdesk/internal/auth"
	"github.com/tickerdesk/tickerdesk/internal/models"
	pkghttp "github.com/tickerdesk/tickerdesk/pkg/http"
)

// NewTestRequest creates an HTTP request with JSON body for testing
func NewTestRequest(t *testing.T, method, url string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// WithSessionContext injects a resolved user session, as RequireSession would
func WithSessionContext(req *http.Request, userID, email string) *http.Request {
	sess := &auth.Session{
		ID:      "test-session",
		Kind:    auth.KindUser,
		UserID:  userID,
		Email:   email,
		LoginAt: time.Now(),
	}
	ctx := context.WithValue(req.Context(), auth.SessionContextKey, sess)
	return req.WithContext(ctx)
}

// WithAdminContext injects the synthetic admin session
func WithAdminContext(req *http.Request) *http.Request {
	sess := &auth.Session{
		ID:      "test-admin-session",
		Kind:    auth.KindAdmin,
		Email:   "admin",
		LoginAt: time.Now(),
	}
	ctx := context.WithValue(req.Context(), auth.SessionContextKey, sess)
	return req.WithContext(ctx)
}

// WithURLParam adds a chi route parameter to the request context
func WithURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

// AssertJSONResponse checks that response has correct status and decodes JSON body
func AssertJSONResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, target interface{}) {
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")

	contentType := w.Header().Get("Content-Type")
	assert.Equal(t, "application/json", contentType, "Content-Type should be application/json")

	if target != nil {
		err := json.Unmarshal(w.Body.Bytes(), target)
		assert.NoError(t, err, "Failed to decode response JSON")
	}
}

// AssertErrorResponse checks that response is a valid error response
func AssertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, expectedError string) {
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")

	var resp pkghttp.ErrorResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err, "Failed to decode error response")
	assert.Equal(t, expectedError, resp.Error, "Error code mismatch")
	assert.NotEmpty(t, resp.Message, "Error message should not be empty")
}

// MockAuthService implements AuthServiceInterface for testing
type MockAuthService struct {
	LoginFunc      func(ctx context.Context, email, password, ipAddress string) (string, *auth.Session, error)
	AdminLoginFunc func(ctx context.Context, password, ipAddress string) (string, *auth.Session, error)
	LogoutFunc     func(sessionID string)
}

func (m *MockAuthService) Login(ctx context.Context, email, password, ipAddress string) (string, *auth.Session, error) {
	if m.LoginFunc == nil {
		return "", nil, models.ErrInvalidCredentials
	}
	return m.LoginFunc(ctx, email, password, ipAddress)
}

func (m *MockAuthService) AdminLogin(ctx context.Context, password, ipAddress string) (string, *auth.Session, error) {
	if m.AdminLoginFunc == nil {
		return "", nil, models.ErrInvalidCredentials
	}
	return m.AdminLoginFunc(ctx, password, ipAddress)
}

func (m *MockAuthService) Logout(sessionID string) {
	if m.LogoutFunc != nil {
		m.LogoutFunc(sessionID)
	}
}
