package oauth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// randomToken returns n random bytes base64url-encoded without padding
func randomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// GenerateCodeVerifier generates a PKCE code verifier (RFC 7636).
// 32 random bytes encode to 43 characters, the RFC minimum length.
func GenerateCodeVerifier() (string, error) {
	return randomToken(32)
}

// GenerateCodeChallenge derives the S256 code challenge from a verifier:
// BASE64URL(SHA256(ASCII(code_verifier)))
func GenerateCodeChallenge(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// ValidateCodeChallenge checks a verifier against a challenge for the given
// method. An empty method falls back to plain comparison.
func ValidateCodeChallenge(verifier, challenge, method string) bool {
	switch method {
	case "S256":
		return GenerateCodeChallenge(verifier) == challenge
	case "plain", "":
		return verifier == challenge
	default:
		return false
	}
}

// GenerateAuthorizationCode returns a fresh single-use authorization code.
func GenerateAuthorizationCode() (string, error) {
	return randomToken(32)
}

// GenerateClientSecret returns a secret for a confidential client registration.
func GenerateClientSecret() (string, error) {
	return randomToken(32)
}

// GenerateClientID returns an opaque client identifier.
func GenerateClientID() (string, error) {
	return randomToken(16)
}

// GenerateAccessToken returns an opaque bearer token.
func GenerateAccessToken() (string, error) {
	return randomToken(32)
}

// GenerateRefreshToken returns an opaque refresh token.
func GenerateRefreshToken() (string, error) {
	return randomToken(32)
}

// GenerateState returns a state value binding an authorization request
// to its callback, guarding against CSRF.
func GenerateState() (string, error) {
	return randomToken(16)
}
