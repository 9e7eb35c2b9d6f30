package oauth

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/lonelyoctopus/gsheets-mcp/internal/google"
	"golang.org/x/oauth2"
	oauth2google "golang.org/x/oauth2/google"
)

// Handler is both an OAuth 2.1 authorization server that proxies to Google
// and the resource server that validates the tokens it issues.
type Handler struct {
	config          *Config
	store           *Store
	clientStore     *ClientStore
	flowStore       *FlowStore
	rateLimiter     *RateLimiter // per-IP, nil when disabled
	userRateLimiter *RateLimiter // per-user, nil when disabled
	googleConfig    *oauth2.Config
	httpClient      *http.Client
	logger          *slog.Logger
}

// NewHandler validates the configuration, fills in secure defaults, and
// wires up the stores and rate limiters.
func NewHandler(config *Config) (*Handler, error) {
	if config.Resource == "" {
		return nil, fmt.Errorf("resource is required")
	}

	parsedURL, err := url.Parse(config.Resource)
	if err != nil {
		return nil, fmt.Errorf("invalid resource URL: %w", err)
	}

	// Plain HTTP is acceptable only on loopback
	if parsedURL.Scheme != "https" && !isLoopback(parsedURL.Hostname()) {
		return nil, fmt.Errorf("resource must use HTTPS in production (got %s://)", parsedURL.Scheme)
	}

	if len(config.SupportedScopes) == 0 {
		config.SupportedScopes = google.DefaultOAuthScopes
	}
	if config.CleanupInterval == 0 {
		config.CleanupInterval = DefaultCleanupInterval
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if config.Security.RefreshTokenTTL == 0 {
		config.Security.RefreshTokenTTL = DefaultRefreshTokenTTL
	}
	if config.Security.MaxClientsPerIP == 0 {
		config.Security.MaxClientsPerIP = DefaultMaxClientsPerIP
	}

	// Native apps need custom redirect schemes, so they default to enabled
	// with the scheme pattern providing the validation
	if config.Security.AllowedCustomSchemes == nil {
		config.Security.AllowCustomRedirectSchemes = true
		config.Security.AllowedCustomSchemes = DefaultRFC3986SchemePattern
	}

	if config.Security.AllowInsecureAuthWithoutState {
		logger.Warn("State parameter is optional, CSRF protection weakened")
	}
	if config.Security.DisableRefreshTokenRotation {
		logger.Warn("Refresh token rotation is disabled")
	}
	if config.Security.AllowPublicClientRegistration {
		logger.Warn("Unauthenticated client registration is enabled")
	}

	var rateLimiter *RateLimiter
	if config.RateLimit.Rate > 0 {
		burst := config.RateLimit.Burst
		if burst == 0 {
			burst = config.RateLimit.Rate * 2
		}
		cleanupInterval := config.RateLimit.CleanupInterval
		if cleanupInterval == 0 {
			cleanupInterval = DefaultRateLimitCleanupInterval
		}
		rateLimiter = NewRateLimiter(config.RateLimit.Rate, burst, config.RateLimit.TrustProxy, cleanupInterval, logger)
		logger.Info("IP-based rate limiting enabled",
			"rate", config.RateLimit.Rate,
			"burst", burst)
	}

	var userRateLimiter *RateLimiter
	if config.RateLimit.UserRate > 0 {
		burst := config.RateLimit.UserBurst
		if burst == 0 {
			burst = config.RateLimit.UserRate * 2
		}
		cleanupInterval := config.RateLimit.CleanupInterval
		if cleanupInterval == 0 {
			cleanupInterval = DefaultRateLimitCleanupInterval
		}
		// Keyed by email, proxy headers are irrelevant here
		userRateLimiter = NewRateLimiter(config.RateLimit.UserRate, burst, false, cleanupInterval, logger)
		logger.Info("User-based rate limiting enabled",
			"rate", config.RateLimit.UserRate,
			"burst", burst)
	}

	// Without Google credentials the handler can still validate tokens but
	// cannot run the proxy authorization flow
	var googleConfig *oauth2.Config
	if config.GoogleAuth.ClientID != "" && config.GoogleAuth.ClientSecret != "" {
		redirectURL := config.GoogleAuth.RedirectURL
		if redirectURL == "" {
			redirectURL = config.Resource + "/oauth/google/callback"
		}

		googleConfig = &oauth2.Config{
			ClientID:     config.GoogleAuth.ClientID,
			ClientSecret: config.GoogleAuth.ClientSecret,
			Endpoint:     oauth2google.Endpoint,
			Scopes:       config.SupportedScopes,
			RedirectURL:  redirectURL,
		}
		logger.Info("OAuth proxy mode enabled with Google credentials",
			"redirect_url", redirectURL)
	} else {
		logger.Warn("OAuth proxy disabled: Google OAuth credentials not provided")
	}

	store := NewStoreWithInterval(config.CleanupInterval)
	store.SetLogger(logger)

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	return &Handler{
		config:          config,
		store:           store,
		clientStore:     NewClientStore(logger),
		flowStore:       NewFlowStore(logger),
		rateLimiter:     rateLimiter,
		userRateLimiter: userRateLimiter,
		googleConfig:    googleConfig,
		httpClient:      httpClient,
		logger:          logger,
	}, nil
}

// GetStore exposes the token store for auth commands and tests.
func (h *Handler) GetStore() *Store {
	return h.store
}

// GetConfig returns the effective configuration after defaults were applied.
func (h *Handler) GetConfig() *Config {
	return h.config
}

// CanRefreshTokens reports whether Google credentials are configured, which
// is a precondition for refreshing expired Google tokens.
func (h *Handler) CanRefreshTokens() bool {
	return h.googleConfig != nil && h.googleConfig.ClientID != ""
}

// ServeProtectedResourceMetadata serves OAuth 2.0 Protected Resource
// Metadata (RFC 9728). MCP clients land here after a 401 whose
// WWW-Authenticate header points at this endpoint, and use the metadata to
// discover the authorization server. In proxy mode that server is us.
func (h *Handler) ServeProtectedResourceMetadata(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	metadata := ProtectedResourceMetadata{
		Resource:               h.config.Resource,
		AuthorizationServers:   []string{h.config.Resource},
		BearerMethodsSupported: []string{"header"},
		ScopesSupported:        h.config.SupportedScopes,
	}

	h.setSecurityHeaders(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(metadata); err != nil {
		h.logger.Error("Failed to encode metadata", "error", err)
		http.Error(w, "Failed to encode metadata", http.StatusInternalServerError)
	}
}

func (h *Handler) setSecurityHeaders(w http.ResponseWriter) {
	w.Header().Set("X-Frame-Options", "DENY")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("X-XSS-Protection", "1; mode=block")
	w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
	w.Header().Set("Referrer-Policy", "no-referrer")

	if h.config.Resource != "" {
		parsedURL, err := url.Parse(h.config.Resource)
		if err == nil && parsedURL.Scheme == "https" {
			w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}
	}
}

// writeError writes an RFC 6749 error response body.
func (h *Handler) writeError(w http.ResponseWriter, errorCode, description string, statusCode int) {
	h.logger.Debug("OAuth error", "code", errorCode, "description", description, "status", statusCode)
	h.setSecurityHeaders(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:            errorCode,
		ErrorDescription: description,
	})
}

// RevokeToken revokes a user's Google token at Google's revocation endpoint
// and removes it from the local store, forcing re-authentication. Local
// deletion happens even when the upstream revocation fails.
func (h *Handler) RevokeToken(email string) error {
	h.logger.Info("Revoking token", "email", email)

	token, err := h.store.GetGoogleToken(email)
	if err == nil && token != nil && token.AccessToken != "" {
		data := url.Values{}
		data.Set("token", token.AccessToken)

		resp, revokeErr := h.httpClient.PostForm("https://oauth2.googleapis.com/revoke", data)
		switch {
		case revokeErr != nil:
			h.logger.Warn("Failed to revoke token at Google",
				"email", email,
				"error", revokeErr)
		case resp.StatusCode != http.StatusOK:
			resp.Body.Close()
			h.logger.Warn("Google token revocation returned non-OK status",
				"email", email,
				"status", resp.StatusCode)
		default:
			resp.Body.Close()
			h.logger.Info("Revoked token at Google", "email", email)
		}
	}

	return h.store.DeleteGoogleToken(email)
}

// ServeRevoke handles POST /oauth/revoke with a JSON body naming the user
// whose token should be revoked.
func (h *Handler) ServeRevoke(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "invalid_request", "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Email == "" {
		h.writeError(w, "invalid_request", "Email is required", http.StatusBadRequest)
		return
	}

	if err := h.RevokeToken(req.Email); err != nil {
		h.writeError(w, "server_error", fmt.Sprintf("Failed to revoke token: %v", err), http.StatusInternalServerError)
		return
	}

	h.setSecurityHeaders(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "success",
		"message": fmt.Sprintf("Token revoked for %s", req.Email),
	})
}
