package oauth

import (
	"log/slog"
	"net/http"
	"time"
)

// Config configures the OAuth proxy handler.
type Config struct {
	// Resource is the MCP server's canonical base URL, used as the RFC 8707
	// resource identifier in discovery metadata
	Resource string

	// SupportedScopes are the Google API scopes this server may request
	SupportedScopes []string

	// GoogleAuth carries the upstream Google OAuth credentials
	GoogleAuth GoogleAuthConfig

	// RateLimit configures request throttling
	RateLimit RateLimitConfig

	// Security holds hardening knobs; the zero value is the safe default
	Security SecurityConfig

	// CleanupInterval is how often expired tokens and codes are purged.
	// Default: 1 minute
	CleanupInterval time.Duration

	// Logger receives structured log output (slog.Default when nil)
	Logger *slog.Logger

	// HTTPClient is used for token exchanges with Google; override to add
	// timeouts or instrumentation
	HTTPClient *http.Client
}

// GoogleAuthConfig holds the upstream Google OAuth application credentials.
type GoogleAuthConfig struct {
	// ClientID is the Google OAuth client ID, required for proxy mode
	ClientID string

	// ClientSecret is the Google OAuth client secret, required for proxy mode
	ClientSecret string

	// RedirectURL is where Google sends the user after consent.
	// Default: {Resource}/oauth/google/callback
	RedirectURL string
}

// RateLimitConfig configures per-IP and per-user token bucket limits.
type RateLimitConfig struct {
	// Rate is requests per second per IP, 0 disables the IP limiter
	Rate int

	// Burst is the per-IP burst allowance
	Burst int

	// CleanupInterval is how often inactive buckets are dropped.
	// Default: 5 minutes
	CleanupInterval time.Duration

	// UserRate is requests per second per authenticated user, applied on
	// top of the IP limit. 0 disables the user limiter
	UserRate int

	// UserBurst is the per-user burst allowance
	UserBurst int

	// TrustProxy enables X-Forwarded-For and X-Real-IP handling. Leave
	// false unless the server sits behind a proxy you control
	TrustProxy bool
}

// SecurityConfig holds OAuth hardening settings. Every field defaults to the
// strict behavior; each knob exists to loosen one specific check for clients
// that cannot meet it.
type SecurityConfig struct {
	// AllowInsecureAuthWithoutState accepts authorization requests that
	// omit the state parameter. This weakens CSRF protection
	AllowInsecureAuthWithoutState bool

	// DisableRefreshTokenRotation keeps refresh tokens valid across use.
	// OAuth 2.1 expects rotation; without it a stolen refresh token works
	// until it expires
	DisableRefreshTokenRotation bool

	// AllowPublicClientRegistration permits unauthenticated dynamic client
	// registration. When false, registration requires
	// RegistrationAccessToken
	AllowPublicClientRegistration bool

	// RegistrationAccessToken gates client registration when public
	// registration is disabled
	RegistrationAccessToken string

	// RefreshTokenTTL bounds refresh token lifetime, 0 means no expiry.
	// Default: 90 days
	RefreshTokenTTL time.Duration

	// MaxClientsPerIP caps registrations per source IP, 0 removes the cap.
	// Default: 10
	MaxClientsPerIP int

	// AllowCustomRedirectSchemes permits non-http(s) redirect URIs such as
	// cursor:// for native and editor clients
	AllowCustomRedirectSchemes bool

	// AllowedCustomSchemes restricts which custom schemes are accepted,
	// as regular expressions. Default matches any RFC 3986 scheme
	AllowedCustomSchemes []string
}
