package oauth

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

// authCodeRequest carries the form parameters of an authorization code
// grant request.
type authCodeRequest struct {
	Code         string
	RedirectURI  string
	ClientID     string
	CodeVerifier string
}

func (h *Handler) parseAuthCodeRequest(r *http.Request) (*authCodeRequest, *OAuthError) {
	req := &authCodeRequest{
		Code:         r.FormValue("code"),
		RedirectURI:  r.FormValue("redirect_uri"),
		ClientID:     r.FormValue("client_id"),
		CodeVerifier: r.FormValue("code_verifier"),
	}
	if req.Code == "" {
		return nil, ErrInvalidRequest("code is required")
	}
	return req, nil
}

// validateAndRetrieveAuthCode consumes the authorization code and checks it
// against the request parameters.
func (h *Handler) validateAndRetrieveAuthCode(params *authCodeRequest) (*AuthorizationCode, *OAuthError) {
	authCode, err := h.flowStore.GetAuthorizationCode(params.Code)
	if err != nil {
		h.logger.Warn("Invalid authorization code", "error", err)
		return nil, ErrInvalidGrant("Invalid or expired authorization code")
	}

	// OAuth 2.1 lets public clients omit client_id at the token endpoint,
	// the code itself carries the binding. When provided it must match.
	if params.ClientID != "" && authCode.ClientID != params.ClientID {
		h.logger.Warn("Client ID mismatch",
			"expected", authCode.ClientID,
			"got", params.ClientID)
		return nil, ErrInvalidGrant("Client ID mismatch")
	}

	if authCode.RedirectURI != params.RedirectURI {
		h.logger.Warn("Redirect URI mismatch",
			"expected", authCode.RedirectURI,
			"got", params.RedirectURI)
		return nil, ErrInvalidGrant("Redirect URI mismatch")
	}

	return authCode, nil
}

// validatePKCE checks the code_verifier against the challenge recorded at
// authorization time (RFC 7636).
func (h *Handler) validatePKCE(authCode *AuthorizationCode, codeVerifier string, clientID string) *OAuthError {
	if authCode.CodeChallenge == "" {
		return nil
	}

	if codeVerifier == "" {
		return ErrInvalidRequest("code_verifier is required")
	}
	if len(codeVerifier) < MinCodeVerifierLength {
		h.logger.Warn("code_verifier too short",
			"client_id", clientID,
			"length", len(codeVerifier))
		return ErrInvalidRequest("code_verifier must be at least 43 characters (RFC 7636)")
	}
	if len(codeVerifier) > MaxCodeVerifierLength {
		h.logger.Warn("code_verifier too long",
			"client_id", clientID,
			"length", len(codeVerifier))
		return ErrInvalidRequest("code_verifier must be at most 128 characters (RFC 7636)")
	}

	computedChallenge := codeVerifier
	if authCode.CodeChallengeMethod == "S256" {
		hash := sha256.Sum256([]byte(codeVerifier))
		computedChallenge = base64.URLEncoding.WithPadding(base64.NoPadding).EncodeToString(hash[:])
	}

	if computedChallenge != authCode.CodeChallenge {
		h.logger.Warn("PKCE verification failed", "client_id", clientID)
		return ErrInvalidGrant("Invalid code_verifier")
	}

	return nil
}

// authenticateClient verifies the caller's client credentials. Public
// clients (auth method "none") pass without a secret, their possession
// proof is PKCE.
func (h *Handler) authenticateClient(r *http.Request, clientID string) (*RegisteredClient, *OAuthError) {
	client, err := h.clientStore.GetClient(clientID)
	if err != nil {
		h.logger.Error("Failed to get client", "client_id", clientID, "error", err)
		return nil, ErrInvalidClient("Invalid client")
	}

	if client.TokenEndpointAuthMethod != "none" {
		clientSecret := r.FormValue("client_secret")
		if clientSecret == "" {
			username, password, ok := r.BasicAuth()
			if !ok || username != clientID {
				return nil, ErrInvalidClient("Client authentication required")
			}
			clientSecret = password
		}

		if err := h.clientStore.ValidateClientSecret(clientID, clientSecret); err != nil {
			h.logger.Warn("Client authentication failed", "client_id", clientID)
			return nil, ErrInvalidClient("Client authentication failed")
		}
	}

	return client, nil
}

// ensureFreshGoogleToken returns a usable Google token for the code
// exchange, refreshing it when the token stored at authorization time has
// since expired or is about to.
func (h *Handler) ensureFreshGoogleToken(ctx context.Context, authCode *AuthorizationCode) (*oauth2.Token, *OAuthError) {
	googleToken := &oauth2.Token{
		AccessToken:  authCode.GoogleAccessToken,
		RefreshToken: authCode.GoogleRefreshToken,
		Expiry:       time.Unix(authCode.GoogleTokenExpiry, 0),
	}

	expiresIn := authCode.GoogleTokenExpiry - time.Now().Unix()
	if expiresIn >= TokenExpiringThreshold {
		return googleToken, nil
	}

	if h.CanRefreshTokens() && authCode.GoogleRefreshToken != "" {
		h.logger.Info("Google token expired or expiring soon, attempting refresh",
			"email", authCode.UserEmail,
			"expires_in", expiresIn)

		newToken, refreshErr := refreshGoogleToken(ctx, googleToken, h.googleConfig, h.httpClient)
		if refreshErr == nil {
			h.logger.Info("Google token refreshed during code exchange",
				"email", authCode.UserEmail)
			return newToken, nil
		}

		h.logger.Warn("Failed to refresh expired token during code exchange",
			"email", authCode.UserEmail,
			"error", refreshErr)
		return nil, ErrInvalidGrant("Authorization code expired and token refresh failed. Please re-authenticate.")
	}

	h.logger.Warn("Authorization code expired and refresh not available",
		"email", authCode.UserEmail,
		"expires_in", expiresIn)
	return nil, ErrInvalidGrant("Authorization code expired. Please re-authenticate.")
}

// storeTokens saves the Google token under both the user's email and the
// proxy access token, so Bearer requests can be resolved to a Google token
// without a second lookup table.
func (h *Handler) storeTokens(authCode *AuthorizationCode, googleToken *oauth2.Token, accessToken string) *OAuthError {
	if err := h.store.SaveGoogleToken(authCode.UserEmail, googleToken); err != nil {
		h.logger.Error("Failed to store Google token", "error", err)
		return ErrServerError("Failed to store token")
	}

	if err := h.store.SaveGoogleToken(accessToken, googleToken); err != nil {
		h.logger.Error("Failed to map access token", "error", err)
		return ErrServerError("Failed to store token")
	}

	return nil
}

// issueRefreshToken mints a proxy refresh token bound to the user. Without
// an underlying Google refresh token there is nothing to refresh with, so
// none is issued.
func (h *Handler) issueRefreshToken(authCode *AuthorizationCode) (string, error) {
	if authCode.GoogleRefreshToken == "" {
		return "", nil
	}

	refreshToken, err := generateSecureToken(RefreshTokenLength)
	if err != nil {
		return "", err
	}

	refreshTokenExpiresAt := time.Now().Add(h.config.Security.RefreshTokenTTL).Unix()
	if err := h.store.SaveRefreshToken(refreshToken, authCode.UserEmail, refreshTokenExpiresAt); err != nil {
		h.logger.Warn("Failed to store refresh token",
			"email", authCode.UserEmail,
			"error", err)
		return "", err
	}

	h.logger.Info("Issued refresh token",
		"email", authCode.UserEmail,
		"expires_at", time.Unix(refreshTokenExpiresAt, 0),
		"ttl", h.config.Security.RefreshTokenTTL)

	return refreshToken, nil
}
