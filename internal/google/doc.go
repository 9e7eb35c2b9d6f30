// Package google provides OAuth2 authentication and token management for Google APIs.
//
// This package handles both file-based token storage (for STDIO transport) and
// OAuth store-based token management (for HTTP transports with OAuth authentication).
//
// Tokens are stored per account under the user cache directory, so one server
// can serve several Google accounts side by side. The TokenProvider interface
// allows different token sources to be plugged in, enabling seamless integration
// between MCP OAuth authentication and Google API access.
package google
