package oauth

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
)

// TokenProvider adapts the OAuth store to the google.TokenProvider interface,
// so Sheets, Forms, and Drive clients can run off tokens obtained through the
// HTTP OAuth flow instead of the local token files.
type TokenProvider struct {
	store *Store
}

// NewTokenProvider creates a token provider backed by the OAuth store
func NewTokenProvider(store *Store) *TokenProvider {
	return &TokenProvider{store: store}
}

// GetTokenForAccount returns the Google token for a tool call. When the
// request context carries an authenticated user, their email takes precedence
// over the account argument; the account name is only consulted as a fallback
// for lookups outside an authenticated request.
func (p *TokenProvider) GetTokenForAccount(ctx context.Context, account string) (*oauth2.Token, error) {
	if userInfo, ok := GetUserFromContext(ctx); ok && userInfo != nil && userInfo.Email != "" {
		if token, err := p.store.GetGoogleToken(userInfo.Email); err == nil {
			return token, nil
		}
	}

	token, err := p.store.GetGoogleToken(account)
	if err != nil {
		return nil, fmt.Errorf("no Google OAuth token found for account %s. Please authenticate with Google through your MCP client", account)
	}
	return token, nil
}

// HasTokenForAccount reports whether the store holds a token for the account.
// There is no context here, so only the account name lookup applies; callers
// use this during client initialization where no user is bound yet.
func (p *TokenProvider) HasTokenForAccount(account string) bool {
	_, err := p.store.GetGoogleToken(account)
	return err == nil
}
