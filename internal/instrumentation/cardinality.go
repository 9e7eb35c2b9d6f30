package instrumentation

import "strings"

// Operation labels for Google API metrics. Keeping the set closed bounds
// the label cardinality on google_api_operations_total.
const (
	OperationList   = "list"
	OperationGet    = "get"
	OperationCreate = "create"
	OperationUpdate = "update"
	OperationAppend = "append"
	OperationClear  = "clear"
	OperationRead   = "read"
)

// ExtractUserDomain reduces an email address to its domain. Per-user label
// values would grow the metric series without bound, the domain keeps the
// tenant visible without the blowup.
func ExtractUserDomain(email string) string {
	at := strings.IndexByte(email, '@')
	if at < 0 || at == len(email)-1 {
		return "unknown"
	}
	domain := email[at+1:]
	if strings.ContainsRune(domain, '@') {
		return "unknown"
	}
	return domain
}
