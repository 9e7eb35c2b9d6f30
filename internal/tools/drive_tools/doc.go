// Package drive_tools registers the MCP tools backed by Google Drive.
//
// The Drive surface this server needs is small: discovering which
// spreadsheets the user can open. Everything else (reading, writing,
// creating) lives in the Sheets and Forms tool packages.
//
// Tools accept an optional 'account' argument to select among the
// configured Google accounts; it defaults to "default".
//
//	list_spreadsheets({
//	  max_results: 50,
//	  name_contains: "Budget",
//	  order_by: "modifiedTime desc"
//	})
package drive_tools
