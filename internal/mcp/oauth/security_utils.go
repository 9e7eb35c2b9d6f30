package oauth

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashForDisplay returns a short SHA256 digest of a sensitive value so that
// tokens and emails can appear in logs and debug output without leaking PII.
// Only the first 16 hex characters are kept. Empty input yields "<empty>" to
// distinguish an empty field from a missing one.
func HashForDisplay(sensitive string) string {
	if sensitive == "" {
		return "<empty>"
	}
	hash := sha256.Sum256([]byte(sensitive))
	return hex.EncodeToString(hash[:])[:16]
}
