package oauth

import (
	"fmt"
	"net/http"
)

// OAuthError is an OAuth 2.0 error response carrying the wire-level error
// code plus the HTTP status to respond with
type OAuthError struct {
	Code        string
	Description string
	Status      int
}

// Error implements the error interface
func (e *OAuthError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// NewOAuthError creates an OAuth error with an explicit status code
func NewOAuthError(code, description string, status int) *OAuthError {
	return &OAuthError{
		Code:        code,
		Description: description,
		Status:      status,
	}
}

// Constructors for the standard OAuth 2.0 error codes (RFC 6749 section 5.2,
// RFC 6750 section 3.1).

// ErrInvalidRequest marks a malformed request or missing required parameter
func ErrInvalidRequest(desc string) *OAuthError {
	return NewOAuthError("invalid_request", desc, http.StatusBadRequest)
}

// ErrInvalidGrant marks an invalid or expired authorization code or refresh token
func ErrInvalidGrant(desc string) *OAuthError {
	return NewOAuthError("invalid_grant", desc, http.StatusBadRequest)
}

// ErrInvalidClient marks failed client authentication
func ErrInvalidClient(desc string) *OAuthError {
	return NewOAuthError("invalid_client", desc, http.StatusUnauthorized)
}

// ErrInvalidScope marks an invalid or unsupported scope
func ErrInvalidScope(desc string) *OAuthError {
	return NewOAuthError("invalid_scope", desc, http.StatusBadRequest)
}

// ErrInvalidToken marks an invalid or expired access token
func ErrInvalidToken(desc string) *OAuthError {
	return NewOAuthError("invalid_token", desc, http.StatusUnauthorized)
}

// ErrUnauthorizedClient marks a client not authorized for the grant type
func ErrUnauthorizedClient(desc string) *OAuthError {
	return NewOAuthError("unauthorized_client", desc, http.StatusBadRequest)
}

// ErrUnsupportedGrantType marks an unsupported grant type
func ErrUnsupportedGrantType(desc string) *OAuthError {
	return NewOAuthError("unsupported_grant_type", desc, http.StatusBadRequest)
}

// ErrServerError marks an internal failure during request processing
func ErrServerError(desc string) *OAuthError {
	return NewOAuthError("server_error", desc, http.StatusInternalServerError)
}

// ErrAccessDenied marks a request denied by the user or authorization server
func ErrAccessDenied(desc string) *OAuthError {
	return NewOAuthError("access_denied", desc, http.StatusForbidden)
}

// ErrInvalidRedirectURI marks an unregistered or malformed redirect URI
func ErrInvalidRedirectURI(desc string) *OAuthError {
	return NewOAuthError("invalid_redirect_uri", desc, http.StatusBadRequest)
}
