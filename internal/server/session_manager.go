package server

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"
)

// ErrNoAuthorizationHeader is returned when a request carries no Authorization header
var ErrNoAuthorizationHeader = errors.New("no authorization header provided")

// session tracks per-session state for cleanup
type session struct {
	account    string
	lastAccess time.Time
}

// SessionIDManager maps HTTP requests to sessions for multi-account support.
// The session ID is derived from the Bearer token, so each authenticated user
// gets a stable session and its own Google account binding, allowing multiple
// users to share one MCP server instance.
type SessionIDManager struct {
	sessions       map[string]*session
	mu             sync.RWMutex
	cleanupTicker  *time.Ticker
	cleanupDone    chan struct{}
	sessionTimeout time.Duration
	logger         *slog.Logger
}

// NewSessionIDManager creates a session manager with a 24 hour session timeout
func NewSessionIDManager() *SessionIDManager {
	return NewSessionIDManagerWithLogger(24*time.Hour, slog.Default())
}

// NewSessionIDManagerWithTimeout creates a session manager with a custom timeout
func NewSessionIDManagerWithTimeout(timeout time.Duration) *SessionIDManager {
	return NewSessionIDManagerWithLogger(timeout, slog.Default())
}

// NewSessionIDManagerWithLogger creates a session manager with custom timeout and logger
func NewSessionIDManagerWithLogger(timeout time.Duration, logger *slog.Logger) *SessionIDManager {
	if logger == nil {
		logger = slog.Default()
	}

	m := &SessionIDManager{
		sessions:       make(map[string]*session),
		cleanupTicker:  time.NewTicker(10 * time.Minute),
		cleanupDone:    make(chan struct{}),
		sessionTimeout: timeout,
		logger:         logger,
	}

	go m.cleanupExpiredSessions()

	return m
}

// ResolveSessionID derives the session ID for an HTTP request from its
// Bearer token. The same token always yields the same session ID.
func (m *SessionIDManager) ResolveSessionID(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", ErrNoAuthorizationHeader
	}

	token := strings.TrimPrefix(authHeader, "Bearer ")

	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:]), nil
}

// AccountForSession returns the Google account bound to a session ID and
// refreshes its last access time. Unknown sessions map to the default account.
func (m *SessionIDManager) AccountForSession(sessionID string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[sessionID]; ok {
		s.lastAccess = time.Now()
		return s.account
	}
	return "default"
}

// SetAccountForSession binds a Google account to a session ID
func (m *SessionIDManager) SetAccountForSession(sessionID, account string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sessionID] = &session{
		account:    account,
		lastAccess: time.Now(),
	}
}

// RemoveSession drops a session, typically on client disconnect.
func (m *SessionIDManager) RemoveSession(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
}

// SessionCount returns the number of active sessions
func (m *SessionIDManager) SessionCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// ListSessions snapshots the IDs of every live session.
func (m *SessionIDManager) ListSessions() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sessions := make([]string, 0, len(m.sessions))
	for sessionID := range m.sessions {
		sessions = append(sessions, sessionID)
	}
	return sessions
}

// cleanupExpiredSessions periodically removes sessions past the timeout
func (m *SessionIDManager) cleanupExpiredSessions() {
	for {
		select {
		case <-m.cleanupTicker.C:
			m.mu.Lock()
			now := time.Now()
			expired := 0
			for sessionID, s := range m.sessions {
				if now.Sub(s.lastAccess) > m.sessionTimeout {
					delete(m.sessions, sessionID)
					expired++
				}
			}
			m.mu.Unlock()
			if expired > 0 {
				m.logger.Info("Cleaned up expired sessions", "count", expired)
			}
		case <-m.cleanupDone:
			return
		}
	}
}

// Stop terminates the background cleanup loop.
func (m *SessionIDManager) Stop() {
	if m.cleanupTicker != nil {
		m.cleanupTicker.Stop()
	}
	if m.cleanupDone != nil {
		close(m.cleanupDone)
	}
}
