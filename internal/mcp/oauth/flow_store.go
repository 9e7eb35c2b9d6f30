package oauth

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// FlowStore holds in-flight authorization flow state: the pending Google
// state parameters and the issued authorization codes, both short-lived
type FlowStore struct {
	mu     sync.RWMutex
	states map[string]*AuthorizationState
	codes  map[string]*AuthorizationCode
	logger *slog.Logger
}

// NewFlowStore creates a flow store and starts its expiry sweeper
func NewFlowStore(logger *slog.Logger) *FlowStore {
	if logger == nil {
		logger = slog.Default()
	}

	store := &FlowStore{
		states: make(map[string]*AuthorizationState),
		codes:  make(map[string]*AuthorizationCode),
		logger: logger,
	}

	go store.cleanupLoop()

	return store
}

// codePrefix truncates a secret for logging
func codePrefix(code string) string {
	return code[:min(8, len(code))] + "..."
}

// SaveAuthorizationState records a pending flow keyed by its Google state
func (s *FlowStore) SaveAuthorizationState(state *AuthorizationState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.states[state.GoogleState] = state
	s.logger.Debug("Saved authorization state",
		"google_state", state.GoogleState,
		"client_id", state.ClientID,
		"expires_at", time.Unix(state.ExpiresAt, 0),
	)

	return nil
}

// GetAuthorizationState looks up a pending flow by its Google state parameter
func (s *FlowStore) GetAuthorizationState(googleState string) (*AuthorizationState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, exists := s.states[googleState]
	if !exists {
		return nil, fmt.Errorf("authorization state not found")
	}
	if time.Now().Unix() > state.ExpiresAt {
		return nil, fmt.Errorf("authorization state expired")
	}

	return state, nil
}

// DeleteAuthorizationState removes a pending flow
func (s *FlowStore) DeleteAuthorizationState(googleState string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.states, googleState)
	s.logger.Debug("Deleted authorization state", "google_state", googleState)
}

// SaveAuthorizationCode records an issued authorization code
func (s *FlowStore) SaveAuthorizationCode(code *AuthorizationCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.codes[code.Code] = code
	s.logger.Debug("Saved authorization code",
		"code_prefix", codePrefix(code.Code),
		"client_id", code.ClientID,
		"user_email", code.UserEmail,
		"expires_at", time.Unix(code.ExpiresAt, 0),
	)

	return nil
}

// GetAuthorizationCode consumes an authorization code. The code is deleted
// inside the same critical section that reads it, so a code can never be
// exchanged twice
func (s *FlowStore) GetAuthorizationCode(code string) (*AuthorizationCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	authCode, exists := s.codes[code]
	if !exists {
		return nil, fmt.Errorf("authorization code not found")
	}
	if time.Now().Unix() > authCode.ExpiresAt {
		return nil, fmt.Errorf("authorization code expired")
	}

	delete(s.codes, code)

	s.logger.Info("Authorization code consumed and deleted",
		"code_prefix", codePrefix(code),
		"client_id", authCode.ClientID,
		"user_email", authCode.UserEmail,
	)

	return authCode, nil
}

// DeleteAuthorizationCode removes a code without consuming it
func (s *FlowStore) DeleteAuthorizationCode(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.codes, code)
	s.logger.Debug("Deleted authorization code", "code_prefix", codePrefix(code))
}

func (s *FlowStore) cleanupLoop() {
	ticker := time.NewTicker(DefaultCleanupInterval)
	defer ticker.Stop()

	for range ticker.C {
		s.cleanupExpired()
	}
}

// cleanupExpired drops expired states and codes. Consumed codes are already
// gone, this only catches flows that were abandoned
func (s *FlowStore) cleanupExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().Unix()
	var statesDeleted, codesDeleted int

	for googleState, state := range s.states {
		if now > state.ExpiresAt {
			delete(s.states, googleState)
			statesDeleted++
		}
	}
	for code, authCode := range s.codes {
		if now > authCode.ExpiresAt {
			delete(s.codes, code)
			codesDeleted++
		}
	}

	if statesDeleted > 0 || codesDeleted > 0 {
		s.logger.Debug("Cleaned up OAuth flow data",
			"states_deleted", statesDeleted,
			"codes_deleted", codesDeleted,
		)
	}
}
