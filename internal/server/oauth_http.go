package server

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/lonelyoctopus/gsheets-mcp/internal/google"
	"github.com/lonelyoctopus/gsheets-mcp/internal/instrumentation"
	"github.com/lonelyoctopus/gsheets-mcp/internal/mcp/oauth"
)

// OAuthConfig holds the settings for the OAuth-enabled HTTP transport
type OAuthConfig struct {
	// BaseURL is the externally visible base URL of this server
	BaseURL string

	// GoogleClientID and GoogleClientSecret enable the OAuth proxy flow
	GoogleClientID     string
	GoogleClientSecret string

	// AllowPublicClientRegistration allows unauthenticated client registration
	AllowPublicClientRegistration bool

	// RegistrationAccessToken protects the registration endpoint when
	// public registration is disabled
	RegistrationAccessToken string

	// AllowInsecureAuthWithoutState weakens CSRF protection (testing only)
	AllowInsecureAuthWithoutState bool

	// MaxClientsPerIP limits client registrations per IP
	MaxClientsPerIP int

	// AllowedCustomSchemes lists custom redirect URI schemes (e.g. cursor,
	// vscode) accepted during client registration. Empty means http/https only
	AllowedCustomSchemes []string

	// TrustProxy trusts X-Forwarded-For headers for rate limiting
	TrustProxy bool

	// DisableStreaming disables SSE streaming on the streamable-http transport
	DisableStreaming bool
}

// OAuthHTTPServer puts an OAuth 2.1 front door on the MCP endpoint.
// It acts as an OAuth proxy in front of Google: MCP clients discover the
// authorization server via RFC 9728 metadata, register via RFC 7591, and
// complete an authorization code flow that this server relays to Google
type OAuthHTTPServer struct {
	mcpServer        *mcpserver.MCPServer
	oauthHandler     *oauth.Handler
	httpServer       *http.Server
	serverType       string // "sse" or "streamable-http"
	disableStreaming bool
	metrics          *instrumentation.Metrics
	health           *HealthChecker
	sessions         *SessionIDManager
}

// CreateOAuthHandler creates an OAuth handler for use with the HTTP transport
// Exposed separately so the token provider can be wired into the server
// context before the MCP server is constructed
func CreateOAuthHandler(config OAuthConfig) (*oauth.Handler, error) {
	return oauth.NewHandler(&oauth.Config{
		Resource:        config.BaseURL,
		SupportedScopes: google.DefaultOAuthScopes,
		GoogleAuth: oauth.GoogleAuthConfig{
			ClientID:     config.GoogleClientID,
			ClientSecret: config.GoogleClientSecret,
		},
		RateLimit: oauth.RateLimitConfig{
			Rate:       10,
			Burst:      20,
			UserRate:   100,
			UserBurst:  200,
			TrustProxy: config.TrustProxy,
		},
		Security: oauth.SecurityConfig{
			AllowPublicClientRegistration: config.AllowPublicClientRegistration,
			RegistrationAccessToken:       config.RegistrationAccessToken,
			AllowInsecureAuthWithoutState: config.AllowInsecureAuthWithoutState,
			MaxClientsPerIP:               config.MaxClientsPerIP,
			AllowCustomRedirectSchemes:    len(config.AllowedCustomSchemes) > 0,
			AllowedCustomSchemes:          config.AllowedCustomSchemes,
		},
	})
}

// NewOAuthHTTPServer builds the server together with a fresh OAuth handler
func NewOAuthHTTPServer(mcpServer *mcpserver.MCPServer, serverType string, config OAuthConfig) (*OAuthHTTPServer, error) {
	oauthHandler, err := CreateOAuthHandler(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create OAuth handler: %w", err)
	}

	return NewOAuthHTTPServerWithHandler(mcpServer, serverType, oauthHandler, config.DisableStreaming)
}

// NewOAuthHTTPServerWithHandler creates a new OAuth-enabled HTTP server with an existing handler
func NewOAuthHTTPServerWithHandler(mcpServer *mcpserver.MCPServer, serverType string, oauthHandler *oauth.Handler, disableStreaming bool) (*OAuthHTTPServer, error) {
	return &OAuthHTTPServer{
		mcpServer:        mcpServer,
		oauthHandler:     oauthHandler,
		serverType:       serverType,
		disableStreaming: disableStreaming,
		sessions:         NewSessionIDManager(),
	}, nil
}

// SetMetrics attaches metrics instruments to the HTTP server
func (s *OAuthHTTPServer) SetMetrics(m *instrumentation.Metrics) {
	s.metrics = m
}

// SetHealthChecker attaches a health checker whose endpoints are registered
// alongside the OAuth and MCP endpoints
func (s *OAuthHTTPServer) SetHealthChecker(h *HealthChecker) {
	s.health = h
}

// Start wires up the discovery, OAuth, health, and MCP routes and serves
// until shutdown
func (s *OAuthHTTPServer) Start(addr string) error {
	// OAuth 2.1 requires HTTPS except for loopback addresses
	config := s.oauthHandler.GetConfig()
	if err := validateHTTPSRequirement(config.Resource); err != nil {
		return err
	}

	mux := http.NewServeMux()

	rateLimited := func(h http.Handler) http.Handler {
		return s.oauthHandler.RateLimitMiddleware(s.instrumentationMiddleware(h))
	}

	// Discovery endpoints
	mux.Handle("/.well-known/oauth-protected-resource",
		rateLimited(http.HandlerFunc(s.oauthHandler.ServeProtectedResourceMetadata)))
	mux.Handle("/.well-known/oauth-authorization-server",
		rateLimited(http.HandlerFunc(s.oauthHandler.ServeAuthorizationServerMetadata)))

	// OAuth proxy endpoints
	mux.Handle("/oauth/register",
		rateLimited(http.HandlerFunc(s.oauthHandler.ServeDynamicClientRegistration)))
	mux.Handle("/oauth/authorize",
		rateLimited(http.HandlerFunc(s.oauthHandler.ServeAuthorization)))
	mux.Handle("/oauth/google/callback",
		rateLimited(http.HandlerFunc(s.oauthHandler.ServeGoogleCallback)))
	mux.Handle("/oauth/token",
		rateLimited(http.HandlerFunc(s.oauthHandler.ServeToken)))
	mux.Handle("/oauth/revoke",
		rateLimited(http.HandlerFunc(s.oauthHandler.ServeRevoke)))

	if s.health != nil {
		s.health.RegisterHealthEndpoints(mux)
	}

	// MCP endpoints require a valid Google token
	protected := func(h http.Handler) http.Handler {
		return s.oauthHandler.RateLimitMiddleware(
			s.oauthInstrumentationWrapper(
				s.oauthHandler.ValidateGoogleToken(
					s.sessionTrackingMiddleware(h))))
	}

	switch s.serverType {
	case "sse":
		sseServer := mcpserver.NewSSEServer(s.mcpServer,
			mcpserver.WithSSEEndpoint("/sse"),
			mcpserver.WithMessageEndpoint("/message"),
		)

		mux.Handle("/sse", protected(sseServer))
		mux.Handle("/message", protected(sseServer))

	case "streamable-http":
		var httpHandler http.Handler
		if s.disableStreaming {
			httpHandler = mcpserver.NewStreamableHTTPServer(s.mcpServer,
				mcpserver.WithEndpointPath("/mcp"),
				mcpserver.WithDisableStreaming(true),
			)
		} else {
			httpHandler = mcpserver.NewStreamableHTTPServer(s.mcpServer,
				mcpserver.WithEndpointPath("/mcp"),
			)
		}

		mux.Handle("/mcp", protected(httpHandler))

	default:
		return fmt.Errorf("unsupported server type: %s", s.serverType)
	}

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return s.httpServer.ListenAndServe()
}

// sessionTrackingMiddleware maps the request's Bearer token to a session and
// records which account it belongs to. Runs after token validation, so the
// user info is already in the request context
func (s *OAuthHTTPServer) sessionTrackingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.sessions != nil {
			if sessionID, err := s.sessions.ResolveSessionID(r); err == nil {
				if user, ok := oauth.GetUserFromContext(r.Context()); ok {
					s.sessions.SetAccountForSession(sessionID, user.Email)
				}
			}
		}
		next.ServeHTTP(w, r)
	})
}

// Shutdown stops session cleanup and drains the HTTP server
func (s *OAuthHTTPServer) Shutdown(ctx context.Context) error {
	if s.sessions != nil {
		s.sessions.Stop()
	}
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// GetOAuthHandler exposes the handler, used by tests and the serve command
func (s *OAuthHTTPServer) GetOAuthHandler() *oauth.Handler {
	return s.oauthHandler
}

// responseWriter captures the status code written by a handler
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// instrumentationMiddleware records request counts and latencies
func (s *OAuthHTTPServer) instrumentationMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.metrics == nil {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		rw := newResponseWriter(w)
		next.ServeHTTP(rw, r)
		s.metrics.RecordHTTPRequest(r.Context(), r.Method, r.URL.Path, rw.statusCode, time.Since(start))
	})
}

// oauthInstrumentationWrapper records authentication outcomes on the MCP
// endpoints in addition to the request metrics
func (s *OAuthHTTPServer) oauthInstrumentationWrapper(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.metrics == nil {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		rw := newResponseWriter(w)
		next.ServeHTTP(rw, r)

		result := "success"
		if rw.statusCode == http.StatusUnauthorized || rw.statusCode == http.StatusForbidden {
			result = "failure"
		}
		s.metrics.RecordOAuthAuth(r.Context(), result)
		s.metrics.RecordHTTPRequest(r.Context(), r.Method, r.URL.Path, rw.statusCode, time.Since(start))
	})
}

// validateHTTPSRequirement enforces the OAuth 2.1 transport rule: plain HTTP
// is acceptable only on loopback (localhost, 127.0.0.1, ::1).
func validateHTTPSRequirement(baseURL string) error {
	if baseURL == "" {
		return fmt.Errorf("base URL cannot be empty")
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}

	if u.Scheme == "http" {
		host := u.Hostname()
		if host != "localhost" && host != "127.0.0.1" && host != "::1" {
			return fmt.Errorf("OAuth 2.1 requires HTTPS for production (got: %s). Use HTTPS or localhost for development", baseURL)
		}
	} else if u.Scheme != "https" {
		return fmt.Errorf("invalid URL scheme: %s. Must be http (localhost only) or https", u.Scheme)
	}

	return nil
}
