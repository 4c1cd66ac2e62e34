package handlers_test

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tickerdesk/tickerdesk/internal/handlers"
	"github.com/tickerdesk/tickerdesk/internal/services"
	pkglogger "github.com/tickerdesk/tickerdesk/pkg/logger"
)

func newSettingsHandler(repo *services.MockSettingRepository) *handlers.SettingsHandler {
	logger := discardLogger()
	return handlers.NewSettingsHandler(services.NewSettingsService(repo, logger, pkglogger.NewAuditLogger(logger)))
}

func TestGetSettings_Default(t *testing.T) {
	handler := newSettingsHandler(&services.MockSettingRepository{})
	req := handlers.NewTestRequest(t, "GET", "/admin/settings", nil)

	w := httptest.NewRecorder()
	handler.Get(w, req)

	var resp handlers.SettingsResponse
	handlers.AssertJSONResponse(t, w, 200, &resp)
	assert.Equal(t, 20, resp.RateLimitPerHour)
}

func TestGetSettings_Stored(t *testing.T) {
	repo := &services.MockSettingRepository{
		GetFunc: func(ctx context.Context, key string) (string, bool, error) {
			return "50", true, nil
		},
	}

	handler := newSettingsHandler(repo)
	req := handlers.NewTestRequest(t, "GET", "/admin/settings", nil)

	w := httptest.NewRecorder()
	handler.Get(w, req)

	var resp handlers.SettingsResponse
	handlers.AssertJSONResponse(t, w, 200, &resp)
	assert.Equal(t, 50, resp.RateLimitPerHour)
}

func TestUpdateSettings_Success(t *testing.T) {
	var storedValue string
	repo := &services.MockSettingRepository{
		SetFunc: func(ctx context.Context, key, value string) error {
			storedValue = value
			return nil
		},
	}

	handler := newSettingsHandler(repo)
	req := handlers.NewTestRequest(t, "PUT", "/admin/settings", handlers.UpdateSettingsRequest{
		RateLimitPerHour: 100,
	})

	w := httptest.NewRecorder()
	handler.Update(w, req)

	var resp handlers.SettingsResponse
	handlers.AssertJSONResponse(t, w, 200, &resp)
	assert.Equal(t, 100, resp.RateLimitPerHour)
	assert.Equal(t, "100", storedValue)
}

func TestUpdateSettings_OutOfBounds(t *testing.T) {
	handler := newSettingsHandler(&services.MockSettingRepository{})

	for _, limit := range []int{0, -5, 1001} {
		req := handlers.NewTestRequest(t, "PUT", "/admin/settings", map[string]int{
			"rateLimitPerHour": limit,
		})

		w := httptest.NewRecorder()
		handler.Update(w, req)

		handlers.AssertErrorResponse(t, w, 400, "bad_request")
	}
}
