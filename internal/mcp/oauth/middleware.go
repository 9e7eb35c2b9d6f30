package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
)

type contextKey string

const (
	userContextKey  contextKey = "oauth_user"
	tokenContextKey contextKey = "google_token"
)

const userinfoEndpoint = "https://www.googleapis.com/oauth2/v2/userinfo"

// bearerFromHeader extracts the token from an Authorization header value.
func bearerFromHeader(authHeader string) (string, bool) {
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return "", false
	}
	return parts[1], true
}

// ValidateGoogleToken requires a Bearer token on every request, resolves it
// against Google's userinfo endpoint, and stashes the authenticated user and
// token in the request context. Requests without a valid token get a 401
// carrying the resource metadata pointer per RFC 9728 so MCP clients can
// start the OAuth flow.
func (h *Handler) ValidateGoogleToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			w.Header().Set("WWW-Authenticate", fmt.Sprintf(
				`Bearer realm="%s", resource_metadata="/.well-known/oauth-protected-resource"`,
				h.config.Resource,
			))
			h.writeUnauthorizedError(w, "missing_token", "Missing Authorization header")
			return
		}

		accessToken, ok := bearerFromHeader(authHeader)
		if !ok {
			w.Header().Set("WWW-Authenticate", fmt.Sprintf(
				`Bearer realm="%s", resource_metadata="/.well-known/oauth-protected-resource", error="invalid_token", error_description="Invalid Authorization header format"`,
				h.config.Resource,
			))
			h.writeUnauthorizedError(w, "invalid_token", "Invalid Authorization header format")
			return
		}

		token := &oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"}

		userInfo, err := h.getUserInfoFromGoogle(r.Context(), token)
		if err != nil {
			errorDesc := actionableAuthError(err)
			w.Header().Set("WWW-Authenticate", fmt.Sprintf(
				`Bearer realm="%s", resource_metadata="/.well-known/oauth-protected-resource", error="invalid_token", error_description="%s"`,
				h.config.Resource,
				errorDesc,
			))
			h.writeUnauthorizedError(w, "invalid_token", errorDesc)
			return
		}

		next.ServeHTTP(w, r.WithContext(h.stashIdentity(r.Context(), userInfo, token)))
	})
}

// ValidateGoogleTokenFunc is the http.HandlerFunc form of ValidateGoogleToken.
func (h *Handler) ValidateGoogleTokenFunc(next http.HandlerFunc) http.HandlerFunc {
	return h.ValidateGoogleToken(next).ServeHTTP
}

// OptionalGoogleToken validates a Bearer token when one is present but lets
// anonymous requests through. A malformed or invalid token is still rejected,
// silently ignoring bad credentials would mask client bugs.
func (h *Handler) OptionalGoogleToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			next.ServeHTTP(w, r)
			return
		}

		accessToken, ok := bearerFromHeader(authHeader)
		if !ok {
			h.writeUnauthorizedError(w, "invalid_token", "Invalid Authorization header format")
			return
		}

		token := &oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"}

		userInfo, err := h.getUserInfoFromGoogle(r.Context(), token)
		if err != nil {
			h.writeUnauthorizedError(w, "invalid_token", fmt.Sprintf("Token validation failed: %v", err))
			return
		}

		next.ServeHTTP(w, r.WithContext(h.stashIdentity(r.Context(), userInfo, token)))
	})
}

// stashIdentity records the authenticated user and token in the context and
// caches the token under the user's email so the Sheets, Forms, and Drive
// tools can reach Google on the user's behalf.
func (h *Handler) stashIdentity(ctx context.Context, userInfo *GoogleUserInfo, token *oauth2.Token) context.Context {
	ctx = ContextWithUserInfo(ctx, userInfo)
	ctx = ContextWithGoogleToken(ctx, token)

	if err := h.store.SaveGoogleToken(userInfo.Email, token); err != nil {
		// The request can still proceed with the context token
		h.logger.Warn("Failed to save Google token", "email", userInfo.Email, "error", err)
	}
	return ctx
}

// getUserInfoFromGoogle resolves a token to the Google account it belongs to.
// The userinfo call doubles as token validation: Google rejects expired or
// revoked tokens with a non-200 status.
func (h *Handler) getUserInfoFromGoogle(ctx context.Context, token *oauth2.Token) (*GoogleUserInfo, error) {
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))

	resp, err := client.Get(userinfoEndpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to get user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo request failed with status %d", resp.StatusCode)
	}

	var userInfo GoogleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&userInfo); err != nil {
		return nil, fmt.Errorf("failed to decode user info: %w", err)
	}

	return &userInfo, nil
}

// ContextWithUserInfo returns a context carrying the given user info. Used by
// tests and by callers that authenticate through other means.
func ContextWithUserInfo(ctx context.Context, userInfo *GoogleUserInfo) context.Context {
	return context.WithValue(ctx, userContextKey, userInfo)
}

// GetUserFromContext retrieves the authenticated Google user, if any.
func GetUserFromContext(ctx context.Context) (*GoogleUserInfo, bool) {
	userInfo, ok := ctx.Value(userContextKey).(*GoogleUserInfo)
	return userInfo, ok
}

// ContextWithGoogleToken returns a context carrying the request's Google
// token. The middleware attaches it on every authenticated request; tests
// use it to simulate one.
func ContextWithGoogleToken(ctx context.Context, token *oauth2.Token) context.Context {
	return context.WithValue(ctx, tokenContextKey, token)
}

// GetGoogleTokenFromContext retrieves the request's Google token, if any.
func GetGoogleTokenFromContext(ctx context.Context) (*oauth2.Token, bool) {
	token, ok := ctx.Value(tokenContextKey).(*oauth2.Token)
	return token, ok
}

func (h *Handler) writeUnauthorizedError(w http.ResponseWriter, errorCode, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:            errorCode,
		ErrorDescription: description,
	})
}

// actionableAuthError maps a token validation failure to a message that tells
// the user what to do about it, instead of leaking raw transport errors.
func actionableAuthError(err error) string {
	errStr := err.Error()

	contains := func(needles ...string) bool {
		for _, n := range needles {
			if strings.Contains(errStr, n) {
				return true
			}
		}
		return false
	}

	switch {
	case contains("401", "Unauthorized"):
		return "Google token is invalid or expired. Please re-authenticate through your MCP client to continue."
	case contains("403", "Forbidden"):
		return "Access denied by Google. Please ensure your token has the required scopes and re-authenticate through your MCP client."
	case contains("network", "connection", "timeout", "dial"):
		return "Unable to verify token with Google due to network issues. Please try again in a moment."
	case contains("429", "rate limit"):
		return "Google API rate limit exceeded. Please wait a moment and try again."
	case contains("500", "502", "503", "504"):
		return "Google authentication service is temporarily unavailable. Please try again in a few minutes."
	default:
		return fmt.Sprintf("Token validation failed: %v. Please re-authenticate through your MCP client.", err)
	}
}

// CacheGoogleToken stores a Google token for a user outside the normal
// middleware path, for endpoints that receive tokens through other means.
func (h *Handler) CacheGoogleToken(email string, token *oauth2.Token) error {
	return h.store.SaveGoogleToken(email, token)
}

// GetCachedGoogleToken retrieves a previously cached Google token.
func (h *Handler) GetCachedGoogleToken(email string) (*oauth2.Token, error) {
	return h.store.GetGoogleToken(email)
}
