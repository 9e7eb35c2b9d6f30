package oauth

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/oauth2"
)

// Store keeps Google OAuth tokens for authenticated users in memory. Tokens
// are indexed twice, by user email as the canonical record and by proxy
// access token for request-path lookups.
type Store struct {
	mu                   sync.RWMutex
	googleTokens         map[string]*oauth2.Token   // email or proxy access token -> Google token
	googleUserInfo       map[string]*GoogleUserInfo // email -> user info
	refreshTokens        map[string]string          // refresh token -> email
	refreshTokenExpiries map[string]int64           // refresh token -> Unix expiry
	tokenToEmailMap      map[string]string          // proxy access token -> email
	cleanupInterval      time.Duration
	logger               *slog.Logger
}

// NewStore creates a token store with the default cleanup interval.
func NewStore() *Store {
	return NewStoreWithInterval(DefaultCleanupInterval)
}

// NewStoreWithInterval creates a token store that purges expired entries
// every cleanupInterval.
func NewStoreWithInterval(cleanupInterval time.Duration) *Store {
	s := &Store{
		googleTokens:         make(map[string]*oauth2.Token),
		googleUserInfo:       make(map[string]*GoogleUserInfo),
		refreshTokens:        make(map[string]string),
		refreshTokenExpiries: make(map[string]int64),
		tokenToEmailMap:      make(map[string]string),
		cleanupInterval:      cleanupInterval,
		logger:               slog.Default(),
	}

	go s.cleanupExpiredTokens()

	return s
}

// SetLogger replaces the store's logger.
func (s *Store) SetLogger(logger *slog.Logger) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logger = logger
}

// SaveGoogleToken stores a Google token under the given key, either a user
// email or a proxy access token.
func (s *Store) SaveGoogleToken(key string, token *oauth2.Token) error {
	if key == "" {
		return fmt.Errorf("key cannot be empty")
	}
	if token == nil {
		return fmt.Errorf("token cannot be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.googleTokens[key] = token
	s.logger.Debug("Saved Google token", "key", key, "expiry", token.Expiry)
	return nil
}

// GetGoogleToken returns the stored Google token for a user, failing on
// unknown or expired tokens.
func (s *Store) GetGoogleToken(email string) (*oauth2.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	token, ok := s.googleTokens[email]
	if !ok {
		return nil, fmt.Errorf("Google token not found for user: %s", email)
	}

	if token.Expiry.Before(time.Now()) {
		return nil, fmt.Errorf("Google token expired for user: %s", email)
	}

	return token, nil
}

// DeleteGoogleToken removes a user's Google token, user info and any refresh
// tokens pointing at them.
func (s *Store) DeleteGoogleToken(email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.googleTokens, email)
	delete(s.googleUserInfo, email)

	for refreshToken, userEmail := range s.refreshTokens {
		if userEmail == email {
			delete(s.refreshTokens, refreshToken)
			delete(s.refreshTokenExpiries, refreshToken)
		}
	}

	s.logger.Info("Deleted Google token and refresh tokens", "email", email)
	return nil
}

// SaveGoogleUserInfo stores the Google profile for a user.
func (s *Store) SaveGoogleUserInfo(email string, userInfo *GoogleUserInfo) error {
	if email == "" {
		return fmt.Errorf("email cannot be empty")
	}
	if userInfo == nil {
		return fmt.Errorf("userInfo cannot be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.googleUserInfo[email] = userInfo
	return nil
}

// GetGoogleUserInfo returns the stored Google profile for a user.
func (s *Store) GetGoogleUserInfo(email string) (*GoogleUserInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	userInfo, ok := s.googleUserInfo[email]
	if !ok {
		return nil, fmt.Errorf("Google user info not found for user: %s", email)
	}

	return userInfo, nil
}

// cleanupExpiredTokens runs on a ticker, scanning for expired entries under
// a read lock and deleting under a write lock. Expiry is re-checked before
// each delete since a token may have been refreshed between the two locks.
func (s *Store) cleanupExpiredTokens() {
	ticker := time.NewTicker(s.cleanupInterval)
	defer ticker.Stop()

	for range ticker.C {
		s.mu.RLock()

		var expiredGoogleTokens, expiredRefreshTokens []string
		now := time.Now()
		nowUnix := now.Unix()

		for key, token := range s.googleTokens {
			if !token.Expiry.IsZero() && token.Expiry.Before(now) {
				expiredGoogleTokens = append(expiredGoogleTokens, key)
			}
		}
		for refreshToken, expiresAt := range s.refreshTokenExpiries {
			if nowUnix > expiresAt {
				expiredRefreshTokens = append(expiredRefreshTokens, refreshToken)
			}
		}

		s.mu.RUnlock()

		if len(expiredGoogleTokens) == 0 && len(expiredRefreshTokens) == 0 {
			continue
		}

		s.mu.Lock()

		currentTime := time.Now()
		currentTimeUnix := currentTime.Unix()

		for _, key := range expiredGoogleTokens {
			token, ok := s.googleTokens[key]
			if !ok || token.Expiry.IsZero() || !token.Expiry.Before(currentTime) {
				continue
			}

			delete(s.googleTokens, key)
			if email, isAccessToken := s.tokenToEmailMap[key]; isAccessToken {
				delete(s.tokenToEmailMap, key)
				// Drop the profile only when no canonical entry remains
				if _, stillHasToken := s.googleTokens[email]; !stillHasToken {
					delete(s.googleUserInfo, email)
				}
			} else {
				delete(s.googleUserInfo, key)
			}
			s.logger.Debug("Cleaned up expired Google token", "key", key)
		}

		for _, refreshToken := range expiredRefreshTokens {
			expiresAt, ok := s.refreshTokenExpiries[refreshToken]
			if !ok || currentTimeUnix <= expiresAt {
				continue
			}

			email := s.refreshTokens[refreshToken]
			delete(s.refreshTokens, refreshToken)
			delete(s.refreshTokenExpiries, refreshToken)
			s.logger.Debug("Cleaned up expired refresh token", "email", email)
		}

		s.mu.Unlock()
	}
}

// SaveRefreshToken records a refresh token for a user with a Unix expiry.
func (s *Store) SaveRefreshToken(refreshToken, email string, expiresAt int64) error {
	if refreshToken == "" {
		return fmt.Errorf("refresh token cannot be empty")
	}
	if email == "" {
		return fmt.Errorf("email cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.refreshTokens[refreshToken] = email
	s.refreshTokenExpiries[refreshToken] = expiresAt
	s.logger.Debug("Saved refresh token",
		"email", email,
		"expires_at", time.Unix(expiresAt, 0))
	return nil
}

// GetRefreshToken resolves a refresh token to the owning user's email,
// failing if the token is unknown or expired.
func (s *Store) GetRefreshToken(refreshToken string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	email, ok := s.refreshTokens[refreshToken]
	if !ok {
		return "", fmt.Errorf("refresh token not found")
	}

	if expiresAt, hasExpiry := s.refreshTokenExpiries[refreshToken]; hasExpiry {
		if time.Now().Unix() > expiresAt {
			return "", fmt.Errorf("refresh token expired")
		}
	}

	return email, nil
}

// DeleteRefreshToken removes a refresh token and its expiry record.
func (s *Store) DeleteRefreshToken(refreshToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.refreshTokens, refreshToken)
	delete(s.refreshTokenExpiries, refreshToken)
	s.logger.Debug("Deleted refresh token")
	return nil
}

// SaveTokenWithEmailMapping stores a Google token under both the user email
// and the proxy access token, recording the mapping so cleanup can tie the
// two together.
func (s *Store) SaveTokenWithEmailMapping(email, accessToken string, token *oauth2.Token) error {
	if email == "" {
		return fmt.Errorf("email cannot be empty")
	}
	if accessToken == "" {
		return fmt.Errorf("access token cannot be empty")
	}
	if token == nil {
		return fmt.Errorf("token cannot be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.googleTokens[email] = token
	s.googleTokens[accessToken] = token
	s.tokenToEmailMap[accessToken] = email

	s.logger.Debug("Saved Google token with email mapping",
		"email", email,
		"token_prefix", accessToken[:min(10, len(accessToken))])
	return nil
}

// Stats reports entry counts per internal map.
func (s *Store) Stats() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return map[string]int{
		"google_tokens":          len(s.googleTokens),
		"user_info":              len(s.googleUserInfo),
		"refresh_tokens":         len(s.refreshTokens),
		"refresh_token_expiries": len(s.refreshTokenExpiries),
		"token_email_mappings":   len(s.tokenToEmailMap),
	}
}
