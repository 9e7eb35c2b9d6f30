// Package cmd implements the command-line interface for gsheets-mcp.
//
// Commands:
//   - serve: Start the MCP server to provide Google Sheets, Forms, and Drive tools
//   - auth: Manage Google OAuth tokens in the local token store (login, status, revoke)
//   - version: Print the build version
//   - generate-docs: Write markdown reference docs for every registered tool
//
// The serve command is the default command when no subcommand is specified.
package cmd
