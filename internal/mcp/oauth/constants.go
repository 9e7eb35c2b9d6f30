package oauth

import "time"

// Token and code lifetimes.
const (
	// DefaultRefreshTokenTTL bounds how long a refresh token stays valid
	DefaultRefreshTokenTTL = 90 * 24 * time.Hour

	// DefaultAuthorizationCodeTTL bounds the window between authorization
	// and the code exchange
	DefaultAuthorizationCodeTTL = 10 * time.Minute

	// DefaultAccessTokenTTL is the access token expiry
	DefaultAccessTokenTTL = 1 * time.Hour

	// DefaultCleanupInterval is how often expired tokens are purged
	DefaultCleanupInterval = 1 * time.Minute

	// DefaultRateLimitCleanupInterval is how often idle rate limiters are purged
	DefaultRateLimitCleanupInterval = 5 * time.Minute

	// InactiveLimiterCleanupWindow is how long a limiter may sit idle
	// before removal
	InactiveLimiterCleanupWindow = 10 * time.Minute

	// TokenExpiringThreshold is the minimum remaining lifetime, in seconds,
	// before a token counts as expiring
	TokenExpiringThreshold = 60
)

// Client registration and authentication defaults.
const (
	// DefaultMaxClientsPerIP caps client registrations per IP address
	DefaultMaxClientsPerIP = 10

	// DefaultTokenEndpointAuthMethod is the client authentication method
	// assigned to clients that do not request one
	DefaultTokenEndpointAuthMethod = "client_secret_basic"
)

// Token generation lengths in bytes, before base64url encoding.
const (
	// MinCodeVerifierLength and MaxCodeVerifierLength bound the PKCE
	// code_verifier per RFC 7636
	MinCodeVerifierLength = 43
	MaxCodeVerifierLength = 128

	// AccessTokenLength sizes generated access tokens
	AccessTokenLength = 48

	// RefreshTokenLength sizes generated refresh tokens
	RefreshTokenLength = 48

	// StateTokenLength sizes generated state parameters and authorization codes
	StateTokenLength = 32
)

// Redirect URI validation.
var (
	// DangerousSchemes must never appear in a redirect URI regardless of
	// what custom schemes are configured
	DangerousSchemes = []string{"javascript", "data", "file", "vbscript", "about"}

	// DefaultRFC3986SchemePattern validates custom URI schemes (RFC 3986)
	DefaultRFC3986SchemePattern = []string{"^[a-z][a-z0-9+.-]*$"}

	// LoopbackAddresses are exempt from the HTTPS requirement during
	// local development
	LoopbackAddresses = []string{"localhost", "127.0.0.1", "::1", "[::1]"}
)

// Advertised capabilities.
var (
	// DefaultGrantTypes are the grant types supported by default
	DefaultGrantTypes = []string{"authorization_code", "refresh_token"}

	// DefaultResponseTypes are the response types supported by default
	DefaultResponseTypes = []string{"code"}

	// SupportedCodeChallengeMethods lists accepted PKCE methods. Only S256;
	// the plain method violates OAuth 2.1
	SupportedCodeChallengeMethods = []string{"S256"}

	// SupportedTokenAuthMethods are the accepted token endpoint auth methods
	SupportedTokenAuthMethods = []string{"client_secret_basic", "client_secret_post", "none"}
)
