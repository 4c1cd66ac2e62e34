package background

import (
	"context"
	"log/slog"
	"time"

	"github.com/tickerdesk/tickerdesk/internal/auth"
)

// SweepManager periodically drops expired sessions from the in-memory
// registry. Every request still re-checks expiry itself.
type SweepManager struct {
	sessions *auth.SessionManager
	logger   *slog.Logger
	interval time.Duration
	stopCh   chan struct{}
}

// NewSweepManager creates a new sweep manager
func NewSweepManager(sessions *auth.SessionManager, logger *slog.Logger, interval time.Duration) *SweepManager {
	return &SweepManager{
		sessions: sessions,
		logger:   logger,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the periodic sweep task
func (sm *SweepManager) Start(ctx context.Context) {
	ticker := time.NewTicker(sm.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if removed := sm.sessions.Sweep(); removed > 0 {
				sm.logger.Info("expired session sweep completed", slog.Int("sessions_removed", removed))
			}
		case <-sm.stopCh:
			sm.logger.Info("sweep manager stopped")
			return
		case <-ctx.Done():
			sm.logger.Info("sweep manager context cancelled")
			return
		}
	}
}

// Stop signals the sweep manager to stop
func (sm *SweepManager) Stop() {
	close(sm.stopCh)
}
