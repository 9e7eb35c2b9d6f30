package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"slices"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// ServeAuthorizationServerMetadata serves RFC 8414 authorization server
// metadata so MCP clients can discover the OAuth endpoints.
func (h *Handler) ServeAuthorizationServerMetadata(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	metadata := AuthorizationServerMetadata{
		Issuer:                            h.config.Resource,
		AuthorizationEndpoint:             h.config.Resource + "/oauth/authorize",
		TokenEndpoint:                     h.config.Resource + "/oauth/token",
		RegistrationEndpoint:              h.config.Resource + "/oauth/register",
		ScopesSupported:                   h.config.SupportedScopes,
		ResponseTypesSupported:            DefaultResponseTypes,
		GrantTypesSupported:               DefaultGrantTypes,
		TokenEndpointAuthMethodsSupported: SupportedTokenAuthMethods,
		CodeChallengeMethodsSupported:     SupportedCodeChallengeMethods,
	}

	h.setSecurityHeaders(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(metadata); err != nil {
		h.logger.Error("Failed to encode authorization server metadata", "error", err)
	}
}

// authorizeRegistration checks the registration access token unless public
// registration has been explicitly enabled.
func (h *Handler) authorizeRegistration(w http.ResponseWriter, r *http.Request) bool {
	if h.config.Security.AllowPublicClientRegistration {
		h.logger.Warn("Unauthenticated client registration enabled",
			"client_ip", r.RemoteAddr)
		return true
	}

	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		h.logger.Warn("Client registration rejected: missing authorization",
			"client_ip", r.RemoteAddr)
		w.Header().Set("WWW-Authenticate", "Bearer")
		h.writeError(w, "invalid_token", "Registration access token required", http.StatusUnauthorized)
		return false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		h.logger.Warn("Client registration rejected: invalid authorization header",
			"client_ip", r.RemoteAddr)
		w.Header().Set("WWW-Authenticate", "Bearer")
		h.writeError(w, "invalid_token", "Invalid Authorization header format", http.StatusUnauthorized)
		return false
	}

	if h.config.Security.RegistrationAccessToken == "" {
		h.logger.Error("RegistrationAccessToken not configured but public registration is disabled")
		h.writeError(w, "server_error",
			"Server configuration error: registration token not configured",
			http.StatusInternalServerError)
		return false
	}

	if parts[1] != h.config.Security.RegistrationAccessToken {
		h.logger.Warn("Client registration rejected: invalid registration token",
			"client_ip", r.RemoteAddr)
		h.writeError(w, "invalid_token", "Invalid registration access token", http.StatusUnauthorized)
		return false
	}

	return true
}

// ServeDynamicClientRegistration handles Dynamic Client Registration (RFC 7591).
func (h *Handler) ServeDynamicClientRegistration(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if !h.authorizeRegistration(w, r) {
		return
	}

	var req ClientRegistrationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "invalid_request", "Failed to parse registration request", http.StatusBadRequest)
		return
	}

	if len(req.RedirectURIs) == 0 {
		h.writeError(w, "invalid_redirect_uri", "At least one redirect_uri is required", http.StatusBadRequest)
		return
	}
	for _, uri := range req.RedirectURIs {
		if err := validateRedirectURI(uri, h.config.Resource, h.config.Security.AllowCustomRedirectSchemes, h.config.Security.AllowedCustomSchemes); err != nil {
			h.writeError(w, "invalid_redirect_uri", err.Error(), http.StatusBadRequest)
			return
		}
	}

	clientIP := getClientIP(r, h.config.RateLimit.TrustProxy)
	if err := h.clientStore.CheckIPLimit(clientIP, h.config.Security.MaxClientsPerIP); err != nil {
		h.logger.Warn("Client registration limit exceeded",
			"client_ip", clientIP,
			"limit", h.config.Security.MaxClientsPerIP)
		h.writeError(w, "invalid_request",
			fmt.Sprintf("Client registration limit exceeded for your IP address (%d max)", h.config.Security.MaxClientsPerIP),
			http.StatusTooManyRequests)
		return
	}

	resp, err := h.clientStore.RegisterClient(&req, clientIP)
	if err != nil {
		h.logger.Error("Failed to register client", "error", err)
		h.writeError(w, "server_error", "Failed to register client", http.StatusInternalServerError)
		return
	}

	h.logger.Info("Client registered",
		"client_id", resp.ClientID,
		"client_name", resp.ClientName,
	)

	h.setSecurityHeaders(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(resp)
}

// ServeAuthorization handles the authorization endpoint. The request is
// validated against the registered client, an internal state record is
// created, and the user is sent to Google's consent screen.
func (h *Handler) ServeAuthorization(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if h.googleConfig == nil {
		h.logger.Error("Google OAuth not configured")
		h.writeError(w, "server_error", "OAuth proxy not configured", http.StatusInternalServerError)
		return
	}

	query := r.URL.Query()
	clientID := query.Get("client_id")
	redirectURI := query.Get("redirect_uri")
	state := query.Get("state")
	scope := query.Get("scope")
	codeChallenge := query.Get("code_challenge")
	codeChallengeMethod := query.Get("code_challenge_method")
	nonce := query.Get("nonce")

	if clientID == "" {
		h.writeError(w, "invalid_request", "client_id is required", http.StatusBadRequest)
		return
	}
	if redirectURI == "" {
		h.writeError(w, "invalid_request", "redirect_uri is required", http.StatusBadRequest)
		return
	}

	// OAuth 2.1 makes state mandatory for CSRF protection
	if state == "" {
		if !h.config.Security.AllowInsecureAuthWithoutState {
			h.logger.Warn("Authorization request rejected: missing state parameter",
				"client_id", clientID,
				"redirect_uri", redirectURI)
			h.writeError(w, "invalid_request",
				"state parameter is required for CSRF protection",
				http.StatusBadRequest)
			return
		}
		h.logger.Warn("Authorization request without state parameter, CSRF protection weakened",
			"client_id", clientID,
			"redirect_uri", redirectURI)
	}

	if scope != "" {
		if err := h.validateScopes(scope); err != nil {
			h.writeError(w, "invalid_scope", err.Error(), http.StatusBadRequest)
			return
		}
	}

	client, err := h.clientStore.GetClient(clientID)
	if err != nil {
		h.logger.Warn("Invalid client_id", "client_id", clientID, "error", err)
		h.writeError(w, "invalid_client", "Invalid client_id", http.StatusUnauthorized)
		return
	}

	if err := h.clientStore.ValidateRedirectURI(clientID, redirectURI); err != nil {
		h.logger.Warn("Invalid redirect_uri",
			"client_id", clientID,
			"redirect_uri", redirectURI,
			"error", err,
		)
		h.writeError(w, "invalid_request", "redirect_uri not registered for this client", http.StatusBadRequest)
		return
	}

	// Public clients cannot keep a secret, PKCE is their only proof of
	// possession (OAuth 2.1 section 7.5.2)
	if codeChallenge == "" && client.TokenEndpointAuthMethod == "none" {
		h.writeError(w, "invalid_request", "PKCE is required for public clients", http.StatusBadRequest)
		return
	}
	if codeChallenge != "" {
		if codeChallengeMethod == "" {
			codeChallengeMethod = "plain"
		}
		if codeChallengeMethod != "S256" && codeChallengeMethod != "plain" {
			h.writeError(w, "invalid_request", "Invalid code_challenge_method", http.StatusBadRequest)
			return
		}
	}

	googleState, err := generateSecureToken(StateTokenLength)
	if err != nil {
		h.logger.Error("Failed to generate state", "error", err)
		h.writeError(w, "server_error", "Failed to generate state", http.StatusInternalServerError)
		return
	}

	now := time.Now().Unix()
	authState := &AuthorizationState{
		State:               state,
		ClientID:            clientID,
		RedirectURI:         redirectURI,
		Scope:               scope,
		CodeChallenge:       codeChallenge,
		CodeChallengeMethod: codeChallengeMethod,
		GoogleState:         googleState,
		CreatedAt:           now,
		ExpiresAt:           now + int64(DefaultAuthorizationCodeTTL.Seconds()),
		Nonce:               nonce,
	}

	if err := h.flowStore.SaveAuthorizationState(authState); err != nil {
		h.logger.Error("Failed to save authorization state", "error", err)
		h.writeError(w, "server_error", "Failed to save state", http.StatusInternalServerError)
		return
	}

	// AccessTypeOffline asks Google for a refresh token, ApprovalForce
	// guarantees we get one even on repeat consent
	googleAuthURL := h.googleConfig.AuthCodeURL(googleState,
		oauth2.AccessTypeOffline,
		oauth2.ApprovalForce,
	)

	h.logger.Info("Redirecting to Google for authorization",
		"client_id", clientID,
		"redirect_uri", redirectURI,
		"google_state", googleState,
	)

	http.Redirect(w, r, googleAuthURL, http.StatusFound)
}

// ServeGoogleCallback completes the Google leg of the flow: the code from
// Google is exchanged for tokens, the user identified, and a fresh
// authorization code minted for the MCP client.
func (h *Handler) ServeGoogleCallback(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	query := r.URL.Query()
	googleState := query.Get("state")
	code := query.Get("code")

	if errorParam := query.Get("error"); errorParam != "" {
		errorDesc := query.Get("error_description")
		h.logger.Warn("Google OAuth error",
			"error", errorParam,
			"description", errorDesc,
		)
		http.Error(w, fmt.Sprintf("Google OAuth error: %s - %s", errorParam, errorDesc), http.StatusBadRequest)
		return
	}

	authState, err := h.flowStore.GetAuthorizationState(googleState)
	if err != nil {
		h.logger.Error("Invalid or expired state", "google_state", googleState, "error", err)
		http.Error(w, "Invalid or expired state", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	googleToken, err := h.googleConfig.Exchange(ctx, code)
	if err != nil {
		h.logger.Error("Failed to exchange code for Google token", "error", err)
		http.Error(w, "Failed to exchange authorization code", http.StatusInternalServerError)
		return
	}

	userInfo, err := h.fetchGoogleUserInfo(ctx, googleToken.AccessToken)
	if err != nil {
		h.logger.Error("Failed to fetch Google user info", "error", err)
		http.Error(w, "Failed to fetch user information", http.StatusInternalServerError)
		return
	}

	h.logger.Info("Google OAuth successful",
		"user_email", userInfo.Email,
		"client_id", authState.ClientID,
	)

	authCode, err := generateSecureToken(StateTokenLength)
	if err != nil {
		h.logger.Error("Failed to generate authorization code", "error", err)
		http.Error(w, "Failed to generate authorization code", http.StatusInternalServerError)
		return
	}

	now := time.Now().Unix()
	authCodeData := &AuthorizationCode{
		Code:                authCode,
		ClientID:            authState.ClientID,
		RedirectURI:         authState.RedirectURI,
		Scope:               authState.Scope,
		CodeChallenge:       authState.CodeChallenge,
		CodeChallengeMethod: authState.CodeChallengeMethod,
		GoogleAccessToken:   googleToken.AccessToken,
		GoogleRefreshToken:  googleToken.RefreshToken,
		GoogleTokenExpiry:   googleToken.Expiry.Unix(),
		UserEmail:           userInfo.Email,
		CreatedAt:           now,
		ExpiresAt:           now + int64(DefaultAuthorizationCodeTTL.Seconds()),
		Used:                false,
	}

	if err := h.flowStore.SaveAuthorizationCode(authCodeData); err != nil {
		h.logger.Error("Failed to save authorization code", "error", err)
		http.Error(w, "Failed to save authorization code", http.StatusInternalServerError)
		return
	}

	h.flowStore.DeleteAuthorizationState(googleState)

	redirectURL, err := url.Parse(authState.RedirectURI)
	if err != nil {
		h.logger.Error("Invalid redirect URI", "redirect_uri", authState.RedirectURI, "error", err)
		http.Error(w, "Invalid redirect URI", http.StatusInternalServerError)
		return
	}

	redirectQuery := redirectURL.Query()
	redirectQuery.Set("code", authCode)
	// Echo state only when the client sent one
	if authState.State != "" {
		redirectQuery.Set("state", authState.State)
	}
	redirectURL.RawQuery = redirectQuery.Encode()

	h.logger.Info("Redirecting back to MCP client",
		"client_id", authState.ClientID,
		"redirect_uri", authState.RedirectURI,
	)

	http.Redirect(w, r, redirectURL.String(), http.StatusFound)
}

// ServeToken handles the token endpoint, dispatching on grant_type.
func (h *Handler) ServeToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseForm(); err != nil {
		h.writeError(w, "invalid_request", "Failed to parse request", http.StatusBadRequest)
		return
	}

	switch grantType := r.FormValue("grant_type"); grantType {
	case "authorization_code":
		h.handleAuthorizationCodeGrant(w, r)
	case "refresh_token":
		h.handleRefreshTokenGrant(w, r)
	default:
		h.writeError(w, "unsupported_grant_type", fmt.Sprintf("Grant type %s not supported", grantType), http.StatusBadRequest)
	}
}

// writeOAuthError writes an OAuthError as a wire response.
func (h *Handler) writeOAuthError(w http.ResponseWriter, oauthErr *OAuthError) {
	h.writeError(w, oauthErr.Code, oauthErr.Description, oauthErr.Status)
}

// writeTokenResponse writes a token response with the cache headers RFC 6749
// requires for endpoints returning credentials.
func (h *Handler) writeTokenResponse(w http.ResponseWriter, resp TokenResponse) {
	h.setSecurityHeaders(w)
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
}

func (h *Handler) handleAuthorizationCodeGrant(w http.ResponseWriter, r *http.Request) {
	params, oauthErr := h.parseAuthCodeRequest(r)
	if oauthErr != nil {
		h.writeOAuthError(w, oauthErr)
		return
	}

	authCode, oauthErr := h.validateAndRetrieveAuthCode(params)
	if oauthErr != nil {
		h.writeOAuthError(w, oauthErr)
		return
	}

	clientID := params.ClientID
	if clientID == "" {
		clientID = authCode.ClientID
	}

	if oauthErr := h.validatePKCE(authCode, params.CodeVerifier, clientID); oauthErr != nil {
		h.writeOAuthError(w, oauthErr)
		return
	}

	if _, oauthErr = h.authenticateClient(r, clientID); oauthErr != nil {
		h.writeOAuthError(w, oauthErr)
		return
	}

	googleToken, oauthErr := h.ensureFreshGoogleToken(r.Context(), authCode)
	if oauthErr != nil {
		h.writeOAuthError(w, oauthErr)
		return
	}

	accessToken, err := generateSecureToken(AccessTokenLength)
	if err != nil {
		h.logger.Error("Failed to generate access token", "error", err)
		h.writeOAuthError(w, ErrServerError("Failed to generate access token"))
		return
	}

	if oauthErr := h.storeTokens(authCode, googleToken, accessToken); oauthErr != nil {
		h.writeOAuthError(w, oauthErr)
		return
	}

	h.logger.Info("Issued access token",
		"client_id", clientID,
		"user_email", authCode.UserEmail,
		"scope", authCode.Scope)

	// The proxy token expires together with the underlying Google token
	expiresIn := googleToken.Expiry.Unix() - time.Now().Unix()
	if expiresIn < 0 {
		expiresIn = int64(DefaultAccessTokenTTL.Seconds())
	}

	tokenResp := TokenResponse{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   expiresIn,
		Scope:       authCode.Scope,
	}

	if refreshToken, err := h.issueRefreshToken(authCode); err == nil && refreshToken != "" {
		tokenResp.RefreshToken = refreshToken
	}

	h.writeTokenResponse(w, tokenResp)
}

func (h *Handler) handleRefreshTokenGrant(w http.ResponseWriter, r *http.Request) {
	refreshToken := r.FormValue("refresh_token")
	clientID := r.FormValue("client_id")

	if refreshToken == "" {
		h.writeError(w, "invalid_request", "refresh_token is required", http.StatusBadRequest)
		return
	}

	userEmail, err := h.store.GetRefreshToken(refreshToken)
	if err != nil {
		h.logger.Warn("Invalid refresh token", "error", err)
		h.writeError(w, "invalid_grant", "Invalid or expired refresh token", http.StatusBadRequest)
		return
	}

	googleToken, err := h.store.GetGoogleToken(userEmail)
	if err != nil {
		h.logger.Warn("No Google token found for refresh",
			"email", userEmail,
			"error", err)
		h.writeError(w, "invalid_grant", "User token not found. Please re-authenticate.", http.StatusBadRequest)
		return
	}

	if clientID != "" {
		if _, err := h.clientStore.GetClient(clientID); err != nil {
			h.logger.Warn("Invalid client_id in refresh", "client_id", clientID, "error", err)
			h.writeError(w, "invalid_client", "Invalid client", http.StatusUnauthorized)
			return
		}
	}

	if h.CanRefreshTokens() && googleToken.RefreshToken != "" {
		newToken, refreshErr := refreshGoogleToken(r.Context(), googleToken, h.googleConfig, h.httpClient)
		if refreshErr != nil {
			// Refresh failure usually means Google-side revocation
			h.logger.Warn("Failed to refresh Google token",
				"email", userEmail,
				"error", refreshErr)
			h.writeError(w, "invalid_grant", "Token refresh failed. Please re-authenticate.", http.StatusBadRequest)
			return
		}

		h.logger.Info("Google token refreshed via refresh_token grant", "email", userEmail)
		googleToken = newToken
		if saveErr := h.store.SaveGoogleToken(userEmail, newToken); saveErr != nil {
			h.logger.Warn("Failed to save refreshed Google token",
				"email", userEmail,
				"error", saveErr)
		}
	}

	accessToken, err := generateSecureToken(AccessTokenLength)
	if err != nil {
		h.logger.Error("Failed to generate access token", "error", err)
		h.writeError(w, "server_error", "Failed to generate access token", http.StatusInternalServerError)
		return
	}

	expiresIn := int64(DefaultAccessTokenTTL.Seconds())
	if !googleToken.Expiry.IsZero() {
		expiresIn = googleToken.Expiry.Unix() - time.Now().Unix()
		if expiresIn < 0 {
			expiresIn = int64(DefaultAccessTokenTTL.Seconds())
		}
	}

	if err := h.store.SaveGoogleToken(accessToken, googleToken); err != nil {
		h.logger.Error("Failed to map access token", "error", err)
		h.writeError(w, "server_error", "Failed to store token", http.StatusInternalServerError)
		return
	}

	h.logger.Info("Issued new access token via refresh_token grant",
		"email", userEmail)

	tokenResp := TokenResponse{
		AccessToken:  accessToken,
		TokenType:    "Bearer",
		ExpiresIn:    expiresIn,
		RefreshToken: h.rotateRefreshToken(refreshToken, userEmail),
	}

	h.writeTokenResponse(w, tokenResp)
}

// rotateRefreshToken replaces a used refresh token with a fresh one per
// OAuth 2.1. On any failure it falls back to returning the original token so
// the client is never stranded without one.
func (h *Handler) rotateRefreshToken(refreshToken, userEmail string) string {
	if h.config.Security.DisableRefreshTokenRotation {
		h.logger.Warn("Refresh token rotation disabled, returning same token",
			"email", userEmail)
		return refreshToken
	}

	newRefreshToken, err := generateSecureToken(RefreshTokenLength)
	if err != nil {
		h.logger.Warn("Failed to generate rotated refresh token",
			"email", userEmail,
			"error", err)
		return refreshToken
	}

	expiresAt := time.Now().Add(h.config.Security.RefreshTokenTTL).Unix()

	h.store.DeleteRefreshToken(refreshToken)
	if err := h.store.SaveRefreshToken(newRefreshToken, userEmail, expiresAt); err != nil {
		h.logger.Warn("Failed to store rotated refresh token",
			"email", userEmail,
			"error", err)
		return refreshToken
	}

	h.logger.Info("Refresh token rotated",
		"email", userEmail,
		"expires_at", time.Unix(expiresAt, 0))
	return newRefreshToken
}

// validateScopes checks requested Google API scopes against the supported
// list. Non-Google scopes such as openid or mcp:tools pass through, since
// this server does not enforce them.
func (h *Handler) validateScopes(scope string) error {
	if scope == "" {
		return nil
	}

	for _, requested := range strings.Split(scope, " ") {
		requested = strings.TrimSpace(requested)
		if requested == "" {
			continue
		}

		if !strings.HasPrefix(requested, "https://") {
			h.logger.Debug("Ignoring non-Google scope",
				"scope", requested,
				"reason", "not enforced by this server")
			continue
		}

		if !slices.Contains(h.config.SupportedScopes, requested) {
			return fmt.Errorf("unsupported Google API scope: %s", requested)
		}
	}

	return nil
}

// validateRedirectURI applies the OAuth 2.0 Security BCP checks to a
// registration-time redirect URI.
func validateRedirectURI(uri string, serverResource string, allowCustomSchemes bool, allowedSchemes []string) error {
	parsed, err := url.Parse(uri)
	if err != nil {
		return fmt.Errorf("invalid redirect_uri format: %s", uri)
	}

	if parsed.Fragment != "" {
		return fmt.Errorf("redirect_uri must not contain fragments: %s", uri)
	}
	if parsed.Scheme == "" {
		return fmt.Errorf("redirect_uri must have a scheme: %s", uri)
	}

	// Custom schemes cover native apps and editors (cursor://, vscode://)
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		if !allowCustomSchemes {
			return fmt.Errorf("custom redirect_uri schemes not allowed, only http/https permitted")
		}

		schemeLower := strings.ToLower(parsed.Scheme)
		for _, dangerous := range DangerousSchemes {
			if schemeLower == dangerous {
				return fmt.Errorf("redirect_uri scheme '%s' is not allowed for security reasons", parsed.Scheme)
			}
		}

		if len(allowedSchemes) > 0 {
			schemeValid := false
			for _, pattern := range allowedSchemes {
				matched, matchErr := regexp.MatchString(pattern, schemeLower)
				if matchErr != nil {
					return fmt.Errorf("invalid scheme pattern '%s': %w", pattern, matchErr)
				}
				if matched {
					schemeValid = true
					break
				}
			}
			if !schemeValid {
				return fmt.Errorf("redirect_uri scheme '%s' does not match allowed patterns (must match one of: %v)",
					parsed.Scheme, allowedSchemes)
			}
		}

		return nil
	}

	if parsed.Host == "" {
		return fmt.Errorf("http/https redirect_uri must have a host: %s", uri)
	}

	serverURL, err := url.Parse(serverResource)
	if err != nil {
		return fmt.Errorf("cannot validate redirect_uri: invalid server resource")
	}

	// Loopback redirects stay permitted even for a production server, they
	// cannot be intercepted off-host. Everything else must be HTTPS
	isProduction := !isLoopback(serverURL.Hostname())
	if isProduction && !isLoopback(parsed.Hostname()) && parsed.Scheme != "https" {
		return fmt.Errorf("redirect_uri must use HTTPS in production (non-localhost redirects): %s", uri)
	}

	return nil
}

// isLoopback reports whether a hostname resolves to the local host.
func isLoopback(hostname string) bool {
	hostname = strings.Trim(hostname, "[]")

	for _, loopback := range LoopbackAddresses {
		if hostname == loopback {
			return true
		}
	}

	return strings.HasPrefix(hostname, "127.") || strings.HasPrefix(hostname, "localhost:")
}

// fetchGoogleUserInfo resolves an access token to the Google account that
// issued it.
func (h *Handler) fetchGoogleUserInfo(ctx context.Context, accessToken string) (*GoogleUserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://www.googleapis.com/oauth2/v2/userinfo", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Google userinfo returned status %d", resp.StatusCode)
	}

	var userInfo GoogleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&userInfo); err != nil {
		return nil, fmt.Errorf("failed to decode user info: %w", err)
	}

	return &userInfo, nil
}
