package oauth

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

// refreshThreshold is how close to expiry a token may get before it is
// refreshed proactively.
const refreshThreshold = 5 * time.Minute

// refreshGoogleToken exchanges the refresh token for a new access token
func refreshGoogleToken(ctx context.Context, token *oauth2.Token, config *oauth2.Config, httpClient *http.Client) (*oauth2.Token, error) {
	if token.RefreshToken == "" {
		return nil, fmt.Errorf("no refresh token available")
	}

	if httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, httpClient)
	}

	newToken, err := config.TokenSource(ctx, token).Token()
	if err != nil {
		return nil, fmt.Errorf("failed to refresh token: %w", err)
	}

	return newToken, nil
}

// isTokenExpired reports whether a token has expired or will within the
// threshold. Tokens without an expiry never expire.
func isTokenExpired(token *oauth2.Token, threshold time.Duration) bool {
	if token.Expiry.IsZero() {
		return false
	}
	return time.Now().Add(threshold).After(token.Expiry)
}

// RefreshGoogleTokenIfNeeded refreshes a token that is expired or about to
// expire and persists the result. Returns the token unchanged when it is
// still fresh.
func (h *Handler) RefreshGoogleTokenIfNeeded(ctx context.Context, email string, token *oauth2.Token, config *oauth2.Config) (*oauth2.Token, error) {
	if !isTokenExpired(token, refreshThreshold) {
		return token, nil
	}

	newToken, err := refreshGoogleToken(ctx, token, config, h.httpClient)
	if err != nil {
		return nil, fmt.Errorf("failed to refresh token for %s: %w", email, err)
	}

	// Save failures are tolerated, the caller still gets a usable token
	if err := h.store.SaveGoogleToken(email, newToken); err != nil {
		h.logger.Warn("Failed to save refreshed token", "email", email, "error", err)
	}

	return newToken, nil
}
