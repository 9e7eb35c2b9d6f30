package google

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
)

// TokenProvider abstracts where OAuth tokens come from. The stdio transport
// reads them from disk, the HTTP transport pulls them from the OAuth store
// populated by the authentication flow.
type TokenProvider interface {
	// GetTokenForAccount returns the OAuth token for an account
	GetTokenForAccount(ctx context.Context, account string) (*oauth2.Token, error)

	// HasTokenForAccount reports whether a token exists for an account
	HasTokenForAccount(account string) bool
}

// FileTokenProvider reads tokens from the local token store on disk
type FileTokenProvider struct{}

// NewFileTokenProvider creates a file-based token provider
func NewFileTokenProvider() *FileTokenProvider {
	return &FileTokenProvider{}
}

// GetTokenForAccount loads the token for an account from disk, refreshing it
// through the token source if it has expired
func (p *FileTokenProvider) GetTokenForAccount(ctx context.Context, account string) (*oauth2.Token, error) {
	ts, err := GetTokenSourceForAccount(ctx, account)
	if err != nil {
		return nil, err
	}

	token, err := ts.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to get token from file: %w", err)
	}

	return token, nil
}

// HasTokenForAccount reports whether a token file exists for an account
func (p *FileTokenProvider) HasTokenForAccount(account string) bool {
	return HasTokenForAccount(account)
}

// providerTokenSource adapts a TokenProvider lookup for one account to the
// oauth2.TokenSource interface.
type providerTokenSource struct {
	ctx      context.Context
	provider TokenProvider
	account  string
}

func (s *providerTokenSource) Token() (*oauth2.Token, error) {
	return s.provider.GetTokenForAccount(s.ctx, s.account)
}

// TokenSourceForProvider returns a token source that pulls the account's
// token from the provider on demand, so an API client built once keeps
// working across token refreshes. The lookup result is reused until the
// token expires.
func TokenSourceForProvider(ctx context.Context, p TokenProvider, account string) oauth2.TokenSource {
	return oauth2.ReuseTokenSource(nil, &providerTokenSource{ctx: ctx, provider: p, account: account})
}
