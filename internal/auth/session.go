package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/tickerdesk/tickerdesk/internal/models"
)

// SessionKind distinguishes ordinary user sessions from the single synthetic
// admin identity. Admin is never a row in the user table.
type SessionKind int

const (
	KindUser SessionKind = iota
	KindAdmin
)

// Session is server-side state bound to a signed cookie. Validity is an
// absolute window from LoginAt; activity does not extend it.
type Session struct {
	ID      string
	Kind    SessionKind
	UserID  string // empty for admin sessions
	Email   string // "admin" for admin sessions
	LoginAt time.Time
}

// IsAdmin reports whether this is the synthetic admin session
func (s *Session) IsAdmin() bool {
	return s.Kind == KindAdmin
}

// sessionClaims is the JWT payload carried by the session cookie. Only the
// session ID matters; everything else lives in the server-side registry.
type sessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// SessionManager issues signed session cookies and owns the in-memory session
// registry. Sessions do not survive a process restart. All methods are safe
// for concurrent use.
type SessionManager struct {
	secret   []byte
	duration time.Duration

	mu       sync.Mutex
	sessions map[string]*Session

	now func() time.Time
}

// NewSessionManager creates a SessionManager with the given signing secret and
// absolute session duration.
func NewSessionManager(secret string, duration time.Duration) *SessionManager {
	return &SessionManager{
		secret:   []byte(secret),
		duration: duration,
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
}

// SetClock overrides the time source. Test hook.
func (m *SessionManager) SetClock(now func() time.Time) {
	m.now = now
}

// Duration returns the absolute session window
func (m *SessionManager) Duration() time.Duration {
	return m.duration
}

// CreateUserSession establishes a session for a row-backed user and returns
// the signed cookie token.
func (m *SessionManager) CreateUserSession(userID, email string) (string, *Session, error) {
	return m.create(&Session{
		Kind:   KindUser,
		UserID: userID,
		Email:  email,
	})
}

// CreateAdminSession establishes the synthetic admin session
func (m *SessionManager) CreateAdminSession() (string, *Session, error) {
	return m.create(&Session{
		Kind:  KindAdmin,
		Email: "admin",
	})
}

func (m *SessionManager) create(sess *Session) (string, *Session, error) {
	id, err := generateSessionID()
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate session id: %w", err)
	}

	sess.ID = id
	sess.LoginAt = m.now()

	token, err := m.sign(sess)
	if err != nil {
		return "", nil, err
	}

	m.mu.Lock()
	m.sessions[id] = sess
	m.mu.Unlock()

	return token, sess, nil
}

func (m *SessionManager) sign(sess *Session) (string, error) {
	claims := sessionClaims{
		SessionID: sess.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(sess.LoginAt),
			ExpiresAt: jwt.NewNumericDate(sess.LoginAt.Add(m.duration)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}

	return signed, nil
}

// Resolve validates a cookie token and returns the live session plus its
// remaining validity. Expired sessions are destroyed here (lazy expiry, no
// background dependency) and reported as models.ErrSessionExpired;
// unknown or malformed tokens are models.ErrUnauthenticated.
func (m *SessionManager) Resolve(token string) (*Session, time.Duration, error) {
	if token == "" {
		return nil, 0, models.ErrUnauthenticated
	}

	claims := &sessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithoutClaimsValidation())
	if err != nil || !parsed.Valid {
		return nil, 0, models.ErrUnauthenticated
	}

	m.mu.Lock()
	sess, ok := m.sessions[claims.SessionID]
	m.mu.Unlock()
	if !ok {
		// Logged out, swept, or the process restarted since issuance
		return nil, 0, models.ErrUnauthenticated
	}

	remaining := m.duration - m.now().Sub(sess.LoginAt)
	if remaining <= 0 {
		m.Destroy(sess.ID)
		return nil, 0, models.ErrSessionExpired
	}

	return sess, remaining, nil
}

// Destroy removes a session. Idempotent: concurrent requests discovering
// expiry may each destroy the same (already-gone) session.
func (m *SessionManager) Destroy(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// Sweep removes sessions past their absolute window and returns how many were
// dropped. Defense in depth only; Resolve enforces expiry on every request.
func (m *SessionManager) Sweep() int {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, sess := range m.sessions {
		if now.Sub(sess.LoginAt) >= m.duration {
			delete(m.sessions, id)
			removed++
		}
	}

	return removed
}

func generateSessionID() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
