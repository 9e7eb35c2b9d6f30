// Package oauth implements the OAuth 2.1 surface of the MCP server.
//
// The server acts both as an OAuth 2.1 Authorization Server that proxies
// authentication to Google, and as a Resource Server that validates Bearer
// tokens on incoming MCP requests. Supported pieces include Dynamic Client
// Registration (RFC 7591), Authorization Server Metadata (RFC 8414),
// Protected Resource Metadata (RFC 9728), PKCE (RFC 7636), and refresh
// token rotation per the OAuth 2.1 draft.
//
// Google tokens obtained through the proxy flow are held in an in-memory
// Store and exposed to the Sheets, Forms, and Drive clients through
// TokenProvider, which satisfies the token provider interface used by the
// google package.
//
// Silent authentication error classification is delegated to
// github.com/giantswarm/mcp-oauth; see silent_auth.go for the wrappers.
package oauth
