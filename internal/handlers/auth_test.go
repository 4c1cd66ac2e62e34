package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tickerdesk/tickerdesk/internal/auth"
	"github.com/tickerdesk/tickerdesk/internal/handlers"
	"github.com/tickerdesk/tickerdesk/internal/models"
)

func newTestSessionManager() *auth.SessionManager {
	return auth.NewSessionManager("0123456789abcdef0123456789abcdef", 15*time.Minute)
}

func TestLogin_Success(t *testing.T) {
	sessions := newTestSessionManager()
	token, sess, err := sessions.CreateUserSession("user-1", "alice@example.com")
	require.NoError(t, err)

	mockAuth := &handlers.MockAuthService{
		LoginFunc: func(ctx context.Context, email, password, ipAddress string) (string, *auth.Session, error) {
			return token, sess, nil
		},
	}

	handler := handlers.NewAuthHandler(mockAuth, sessions, auth.CookieConfig{SameSite: "lax"})
	req := handlers.NewTestRequest(t, "POST", "/auth/login", handlers.LoginRequest{
		Email:    "alice@example.com",
		Password: "password123",
	})

	w := httptest.NewRecorder()
	handler.Login(w, req)

	var resp handlers.LoginResponse
	handlers.AssertJSONResponse(t, w, 200, &resp)
	assert.Equal(t, "alice@example.com", resp.Email)
	assert.False(t, resp.IsAdmin)
	assert.Equal(t, int64(15*60*1000), resp.ExpiresIn)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, auth.SessionCookieName, cookies[0].Name)
	assert.Equal(t, token, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	mockAuth := &handlers.MockAuthService{
		LoginFunc: func(ctx context.Context, email, password, ipAddress string) (string, *auth.Session, error) {
			return "", nil, models.ErrInvalidCredentials
		},
	}

	handler := handlers.NewAuthHandler(mockAuth, newTestSessionManager(), auth.CookieConfig{})
	req := handlers.NewTestRequest(t, "POST", "/auth/login", handlers.LoginRequest{
		Email:    "alice@example.com",
		Password: "wrong",
	})

	w := httptest.NewRecorder()
	handler.Login(w, req)

	handlers.AssertErrorResponse(t, w, 401, "unauthorized")
	assert.Empty(t, w.Result().Cookies())
}

func TestLogin_DisabledAccount(t *testing.T) {
	mockAuth := &handlers.MockAuthService{
		LoginFunc: func(ctx context.Context, email, password, ipAddress string) (string, *auth.Session, error) {
			return "", nil, models.ErrAccountDisabled
		},
	}

	handler := handlers.NewAuthHandler(mockAuth, newTestSessionManager(), auth.CookieConfig{})
	req := handlers.NewTestRequest(t, "POST", "/auth/login", handlers.LoginRequest{
		Email:    "alice@example.com",
		Password: "password123",
	})

	w := httptest.NewRecorder()
	handler.Login(w, req)

	handlers.AssertErrorResponse(t, w, 403, "forbidden")
}

func TestLogin_BlockedIP(t *testing.T) {
	mockAuth := &handlers.MockAuthService{
		LoginFunc: func(ctx context.Context, email, password, ipAddress string) (string, *auth.Session, error) {
			return "", nil, models.ErrIPBlocked
		},
	}

	handler := handlers.NewAuthHandler(mockAuth, newTestSessionManager(), auth.CookieConfig{})
	req := handlers.NewTestRequest(t, "POST", "/auth/login", handlers.LoginRequest{
		Email:    "alice@example.com",
		Password: "password123",
	})

	w := httptest.NewRecorder()
	handler.Login(w, req)

	handlers.AssertErrorResponse(t, w, 429, "ip_blocked")
}

func TestLogin_ValidationErrors(t *testing.T) {
	handler := handlers.NewAuthHandler(&handlers.MockAuthService{}, newTestSessionManager(), auth.CookieConfig{})

	bodies := []handlers.LoginRequest{
		{Email: "", Password: "password123"},
		{Email: "not-an-email", Password: "password123"},
		{Email: "alice@example.com", Password: ""},
	}

	for _, body := range bodies {
		req := handlers.NewTestRequest(t, "POST", "/auth/login", body)
		w := httptest.NewRecorder()
		handler.Login(w, req)

		handlers.AssertErrorResponse(t, w, 400, "bad_request")
	}
}

func TestAdminLogin_Success(t *testing.T) {
	sessions := newTestSessionManager()
	token, sess, err := sessions.CreateAdminSession()
	require.NoError(t, err)

	mockAuth := &handlers.MockAuthService{
		AdminLoginFunc: func(ctx context.Context, password, ipAddress string) (string, *auth.Session, error) {
			return token, sess, nil
		},
	}

	handler := handlers.NewAuthHandler(mockAuth, sessions, auth.CookieConfig{})
	req := handlers.NewTestRequest(t, "POST", "/auth/admin-login", handlers.AdminLoginRequest{
		Password: "the-admin-password",
	})

	w := httptest.NewRecorder()
	handler.AdminLogin(w, req)

	var resp handlers.LoginResponse
	handlers.AssertJSONResponse(t, w, 200, &resp)
	assert.Equal(t, "admin", resp.Email)
	assert.True(t, resp.IsAdmin)
}

func TestAdminLogin_WrongPassword(t *testing.T) {
	handler := handlers.NewAuthHandler(&handlers.MockAuthService{}, newTestSessionManager(), auth.CookieConfig{})
	req := handlers.NewTestRequest(t, "POST", "/auth/admin-login", handlers.AdminLoginRequest{
		Password: "nope",
	})

	w := httptest.NewRecorder()
	handler.AdminLogin(w, req)

	handlers.AssertErrorResponse(t, w, 401, "unauthorized")
}

func TestSession_Live(t *testing.T) {
	sessions := newTestSessionManager()
	token, _, err := sessions.CreateUserSession("user-1", "alice@example.com")
	require.NoError(t, err)

	handler := handlers.NewAuthHandler(&handlers.MockAuthService{}, sessions, auth.CookieConfig{})
	req := httptest.NewRequest("GET", "/auth/session", nil)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: token})

	w := httptest.NewRecorder()
	handler.Session(w, req)

	var resp handlers.SessionResponse
	handlers.AssertJSONResponse(t, w, 200, &resp)
	assert.True(t, resp.Authenticated)
	assert.Equal(t, "alice@example.com", resp.Email)
	assert.False(t, resp.IsAdmin)
	assert.Greater(t, resp.RemainingMs, int64(14*60*1000))
}

func TestSession_NoCookie(t *testing.T) {
	handler := handlers.NewAuthHandler(&handlers.MockAuthService{}, newTestSessionManager(), auth.CookieConfig{})
	req := httptest.NewRequest("GET", "/auth/session", nil)

	w := httptest.NewRecorder()
	handler.Session(w, req)

	var resp handlers.SessionResponse
	handlers.AssertJSONResponse(t, w, 200, &resp)
	assert.False(t, resp.Authenticated)
	assert.Empty(t, resp.Email)
}

func TestSession_ExpiredWindowDestroysSession(t *testing.T) {
	sessions := newTestSessionManager()
	token, _, err := sessions.CreateUserSession("user-1", "alice@example.com")
	require.NoError(t, err)

	// Move past the absolute window; activity does not extend it
	sessions.SetClock(func() time.Time { return time.Now().Add(16 * time.Minute) })

	handler := handlers.NewAuthHandler(&handlers.MockAuthService{}, sessions, auth.CookieConfig{})
	req := httptest.NewRequest("GET", "/auth/session", nil)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: token})

	w := httptest.NewRecorder()
	handler.Session(w, req)

	var resp handlers.SessionResponse
	handlers.AssertJSONResponse(t, w, 200, &resp)
	assert.False(t, resp.Authenticated)

	// The registry entry is gone, not just hidden
	assert.Equal(t, 0, sessions.Sweep())
}

func TestLogout_DestroysSession(t *testing.T) {
	sessions := newTestSessionManager()
	token, sess, err := sessions.CreateUserSession("user-1", "alice@example.com")
	require.NoError(t, err)

	var loggedOut string
	mockAuth := &handlers.MockAuthService{
		LogoutFunc: func(sessionID string) {
			loggedOut = sessionID
			sessions.Destroy(sessionID)
		},
	}

	handler := handlers.NewAuthHandler(mockAuth, sessions, auth.CookieConfig{})
	req := httptest.NewRequest("POST", "/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: token})

	w := httptest.NewRecorder()
	handler.Logout(w, req)

	assert.Equal(t, 200, w.Code)
	assert.Equal(t, sess.ID, loggedOut)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func TestLogout_NoSessionStillSucceeds(t *testing.T) {
	handler := handlers.NewAuthHandler(&handlers.MockAuthService{}, newTestSessionManager(), auth.CookieConfig{})
	req := httptest.NewRequest("POST", "/auth/logout", nil)

	w := httptest.NewRecorder()
	handler.Logout(w, req)

	assert.Equal(t, 200, w.Code)
}
