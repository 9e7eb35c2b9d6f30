package oauth

import (
	oauth "github.com/giantswarm/mcp-oauth"
	"github.com/giantswarm/mcp-oauth/providers"
)

// Silent authentication support, built on github.com/giantswarm/mcp-oauth.
// A client that already has a Google session can re-authenticate with
// prompt=none and no visible UI; when the IdP needs interaction it returns a
// typed error and the client falls back to the interactive flow. See OIDC
// Core 1.0 sections 3.1.2.1 and 3.1.2.6.

// AuthorizationURLOptions carries optional OIDC parameters for the
// authorization request, such as Prompt and LoginHint:
//
//	opts := &oauth.AuthorizationURLOptions{
//	    Prompt:    "none",
//	    LoginHint: "user@example.com",
//	}
type AuthorizationURLOptions = providers.AuthorizationURLOptions

// SilentAuthError is returned when a prompt=none request needs user
// interaction. The caller should start an interactive login instead.
type SilentAuthError = oauth.SilentAuthError

// CallbackResult holds the parsed query parameters of an OAuth redirect,
// either Code and State on success or the error triple on failure. Err()
// converts error responses into typed errors, including SilentAuthError.
type CallbackResult = oauth.CallbackResult

// IsSilentAuthError reports whether an error means silent authentication
// failed and interactive login is required. It matches *SilentAuthError
// (including wrapped errors) and error strings carrying the known silent
// auth error codes:
//
//	result := handleCallback(r)
//	if err := result.Err(); err != nil {
//	    if oauth.IsSilentAuthError(err) {
//	        return startInteractiveLogin(w, r)
//	    }
//	    return handleError(w, err)
//	}
func IsSilentAuthError(err error) bool {
	return oauth.IsSilentAuthError(err)
}

// ParseOAuthError converts an OAuth error response into a typed error.
// Silent auth failure codes yield a *SilentAuthError, other codes a generic
// error. An empty errorCode yields nil.
func ParseOAuthError(errorCode, errorDescription string) error {
	return oauth.ParseOAuthError(errorCode, errorDescription)
}

// ParseCallbackQuery builds a CallbackResult from the individual OAuth
// callback query parameters:
//
//	q := r.URL.Query()
//	result := oauth.ParseCallbackQuery(
//	    q.Get("code"),
//	    q.Get("state"),
//	    q.Get("error"),
//	    q.Get("error_description"),
//	    q.Get("error_uri"),
//	)
func ParseCallbackQuery(code, state, errorCode, errorDescription, errorURI string) *CallbackResult {
	return oauth.ParseCallbackQuery(code, state, errorCode, errorDescription, errorURI)
}

// Error codes for silent authentication failures (OIDC Core section 3.1.2.6).
const (
	// ErrorCodeLoginRequired means no active session at the IdP
	ErrorCodeLoginRequired = oauth.ErrorCodeLoginRequired

	// ErrorCodeConsentRequired means required scopes were never granted
	ErrorCodeConsentRequired = oauth.ErrorCodeConsentRequired

	// ErrorCodeInteractionRequired means the IdP needs user interaction
	ErrorCodeInteractionRequired = oauth.ErrorCodeInteractionRequired

	// ErrorCodeAccountSelectionRequired means the user must pick an account
	ErrorCodeAccountSelectionRequired = oauth.ErrorCodeAccountSelectionRequired
)

// Prompt values for AuthorizationURLOptions.Prompt.
const (
	// PromptNone requests silent authentication with no UI
	PromptNone = "none"

	// PromptLogin forces re-authentication even with an active session
	PromptLogin = "login"

	// PromptConsent forces the consent screen even if previously granted
	PromptConsent = "consent"

	// PromptSelectAccount forces account selection
	PromptSelectAccount = "select_account"
)
