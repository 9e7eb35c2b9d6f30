// Package server ties the MCP surface to its runtime: the shared
// ServerContext, the OAuth-protected HTTP listener, session tracking,
// and the health and metrics endpoints.
//
// ServerContext lazily builds and caches one Google API client per account
// and service (Sheets, Forms, Drive). Where the tokens come from depends on
// the transport: stdio reads them from the on-disk store through
// FileTokenProvider, while streamable-http plugs in a provider backed by the
// OAuth token store so credentials minted during the authorization flow are
// the ones the clients use.
//
// OAuthHTTPServer fronts the MCP endpoint with an OAuth 2.1 authorization
// server in proxy mode. It publishes RFC 8414 authorization server metadata
// and RFC 9728 protected resource metadata, supports RFC 7591 dynamic client
// registration, and brokers the Google consent flow on behalf of MCP
// clients. Defaults lean strict: PKCE and the state parameter are required,
// non-loopback deployments must be HTTPS, registration needs an access
// token, and both per-IP and per-user rate limits apply.
//
// SessionIDManager maps Bearer tokens to Google accounts so several users
// can work through one server instance without their sessions crossing.
package server
