// Package logging holds the structured logging conventions for
// gsheets-mcp: shared slog attribute constructors, PII-safe identity
// helpers, and the Logger adapter interface.
//
// Attribute constructors keep field names consistent across packages:
//
//	logger := logging.WithOperation(slog.Default(), "sheets.read")
//	logger.Info("reading range",
//	    logging.Spreadsheet(spreadsheetID),
//	    logging.Range(rangeName))
//
// User emails never appear verbatim in logs. UserHash emits a stable
// hash so entries can be correlated per user, and SanitizeToken masks
// token material entirely.
package logging
