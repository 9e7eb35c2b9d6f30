package oauth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

// TestIntegration_TokenFlow saves a Google token through the store and
// reads it back through the token provider.
func TestIntegration_TokenFlow(t *testing.T) {
	config := &Config{
		Resource: "http://localhost:8080",
		GoogleAuth: GoogleAuthConfig{
			ClientID:     "test-client-id",
			ClientSecret: "test-client-secret",
		},
	}

	handler, err := NewHandler(config)
	require.NoError(t, err)
	require.NotNil(t, handler)

	provider := NewTokenProvider(handler.GetStore())

	ctx := context.Background()
	userID := "test-user@example.com"

	// Nothing stored yet
	assert.False(t, provider.HasTokenForAccount(userID))

	token := &oauth2.Token{
		AccessToken:  "test-access-token",
		RefreshToken: "test-refresh-token",
		TokenType:    "Bearer",
		Expiry:       time.Now().Add(time.Hour),
	}

	err = handler.GetStore().SaveGoogleToken(userID, token)
	require.NoError(t, err)

	assert.True(t, provider.HasTokenForAccount(userID))

	retrievedToken, err := provider.GetTokenForAccount(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, token.AccessToken, retrievedToken.AccessToken)
	assert.Equal(t, token.RefreshToken, retrievedToken.RefreshToken)
	assert.Equal(t, token.TokenType, retrievedToken.TokenType)
}

// TestIntegration_MultipleUsers checks that tokens for different accounts
// stay isolated in the shared store.
func TestIntegration_MultipleUsers(t *testing.T) {
	config := &Config{
		Resource: "http://localhost:8080",
		GoogleAuth: GoogleAuthConfig{
			ClientID:     "test-client-id",
			ClientSecret: "test-client-secret",
		},
	}

	handler, err := NewHandler(config)
	require.NoError(t, err)

	provider := NewTokenProvider(handler.GetStore())
	ctx := context.Background()

	users := []string{
		"user1@example.com",
		"user2@example.com",
		"user3@example.com",
	}

	for i, userID := range users {
		token := &oauth2.Token{
			AccessToken:  "access-token-" + userID,
			RefreshToken: "refresh-token-" + userID,
			TokenType:    "Bearer",
			Expiry:       time.Now().Add(time.Hour * time.Duration(i+1)),
		}

		err = handler.GetStore().SaveGoogleToken(userID, token)
		require.NoError(t, err)
	}

	// Each account gets back its own token
	for _, userID := range users {
		assert.True(t, provider.HasTokenForAccount(userID))

		token, err := provider.GetTokenForAccount(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, "access-token-"+userID, token.AccessToken)
	}
}

// TestIntegration_RegistrationAndAuthorization walks a client through
// registration and the start of the authorization flow
func TestIntegration_RegistrationAndAuthorization(t *testing.T) {
	config := &Config{
		Resource: "http://localhost:8080",
		GoogleAuth: GoogleAuthConfig{
			ClientID:     "test-client-id",
			ClientSecret: "test-client-secret",
		},
		Security: SecurityConfig{
			AllowPublicClientRegistration: true,
		},
	}

	handler, err := NewHandler(config)
	require.NoError(t, err)

	// Register a client directly through the store
	resp, err := handler.clientStore.RegisterClient(&ClientRegistrationRequest{
		RedirectURIs: []string{"http://localhost:9000/callback"},
		ClientName:   "Test Client",
	}, "127.0.0.1")
	require.NoError(t, err)
	require.NotEmpty(t, resp.ClientID)
	require.NotEmpty(t, resp.ClientSecret)

	// Secret must validate against the stored bcrypt hash
	require.NoError(t, handler.clientStore.ValidateClientSecret(resp.ClientID, resp.ClientSecret))
	assert.Error(t, handler.clientStore.ValidateClientSecret(resp.ClientID, "wrong-secret"))

	// Registered redirect URI validates, unregistered does not
	require.NoError(t, handler.clientStore.ValidateRedirectURI(resp.ClientID, "http://localhost:9000/callback"))
	assert.Error(t, handler.clientStore.ValidateRedirectURI(resp.ClientID, "http://evil.example.com/callback"))
}

// TestIntegration_SecurityFeatures builds a handler with the hardening
// options enabled and checks the limiters and refresh support come up.
func TestIntegration_SecurityFeatures(t *testing.T) {
	config := &Config{
		Resource: "http://localhost:8080",
		GoogleAuth: GoogleAuthConfig{
			ClientID:     "test-client-id",
			ClientSecret: "test-client-secret",
		},
		Security: SecurityConfig{
			AllowPublicClientRegistration: false,
			RegistrationAccessToken:       "test-registration-token",
			MaxClientsPerIP:               10,
			RefreshTokenTTL:               90 * 24 * time.Hour,
		},
		RateLimit: RateLimitConfig{
			Rate:      10,
			Burst:     20,
			UserRate:  100,
			UserBurst: 200,
		},
	}

	handler, err := NewHandler(config)
	require.NoError(t, err)
	require.NotNil(t, handler)

	assert.NotNil(t, handler.GetStore())
	assert.NotNil(t, handler.rateLimiter)
	assert.NotNil(t, handler.userRateLimiter)
	assert.True(t, handler.CanRefreshTokens())
}
