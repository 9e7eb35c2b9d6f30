package logging

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
)

// Attribute keys shared by log calls across packages, so queries against
// structured output only have one spelling to match.
const (
	KeyOperation   = "operation"
	KeyAccount     = "account"
	KeyUserHash    = "user_hash"
	KeyError       = "error"
	KeySpreadsheet = "spreadsheet_id"
	KeyRange       = "range"
	KeyForm        = "form_id"
)

// WithOperation returns a child logger that tags every record with the
// operation name.
func WithOperation(logger *slog.Logger, operation string) *slog.Logger {
	return logger.With(slog.String(KeyOperation, operation))
}

// Account returns the account attribute. Account names are user-chosen
// labels like "default" or "work", not email addresses.
func Account(account string) slog.Attr {
	return slog.String(KeyAccount, account)
}

// Spreadsheet returns the spreadsheet ID attribute. Spreadsheet IDs are
// opaque Drive identifiers, not PII.
func Spreadsheet(id string) slog.Attr {
	return slog.String(KeySpreadsheet, id)
}

// Range returns the attribute for an A1-notation range.
func Range(rng string) slog.Attr {
	return slog.String(KeyRange, rng)
}

// Form returns the form ID attribute.
func Form(id string) slog.Attr {
	return slog.String(KeyForm, id)
}

// Err returns the error attribute. A nil error yields an empty group,
// which slog drops from output, so Err(maybeNil) is always safe to pass.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Group("")
	}
	return slog.String(KeyError, err.Error())
}

// AnonymizeEmail hashes an email address into a stable token. Log lines for
// the same user remain correlatable without the address itself ever being
// written out.
func AnonymizeEmail(email string) string {
	if email == "" {
		return ""
	}
	hash := sha256.Sum256([]byte(email))
	return "user:" + hex.EncodeToString(hash[:8])
}

// UserHash returns the anonymized-user attribute for an email address.
func UserHash(email string) slog.Attr {
	return slog.String(KeyUserHash, AnonymizeEmail(email))
}

// SanitizeToken masks a credential for logging. Only the length survives,
// even a short prefix of a token can leak structure worth hiding.
func SanitizeToken(token string) string {
	if token == "" {
		return "<empty>"
	}
	return fmt.Sprintf("[token:%d chars]", len(token))
}
