// Package resources provides MCP resources for exposing sheet data.
// Resources are read-only data sources that MCP clients can fetch by URI.
//
// A single resource template is registered:
//
//	sheet://{spreadsheet_id}/{range_name}
//
// Reading it returns the range rendered as plain text, one row per line with
// cells joined by " | ". The account is resolved from the OAuth context when
// serving over HTTP, falling back to the default account on STDIO.
package resources
