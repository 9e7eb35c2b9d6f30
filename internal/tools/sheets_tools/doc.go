// Package sheets_tools provides MCP (Model Context Protocol) tools for Google Sheets operations.
//
// This package exposes Sheets functionality to MCP clients (like AI assistants) through
// a set of tools that handle range reads, writes, appends, clears, and spreadsheet creation.
//
// Available tools:
//   - read_sheet: Read a range of values as a JSON 2D array
//   - get_spreadsheet_info: Get spreadsheet title, sheets, and URL
//   - write_sheet: Overwrite a range with new values
//   - append_sheet: Append rows after the last row of a table
//   - clear_sheet: Clear all values from a range
//   - create_spreadsheet: Create a new spreadsheet
//
// All tools support multi-account functionality through an optional 'account' parameter,
// allowing management of multiple Google accounts simultaneously.
//
// Example tool usage:
//
//	read_sheet({
//	  spreadsheet_id: "1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms",
//	  range: "Class Data!A2:E"
//	})
//
//	write_sheet({
//	  spreadsheet_id: "1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms",
//	  range: "Sheet1!A1",
//	  values: [["Name", "Score"], ["Ada", 10]]
//	})
package sheets_tools
