package oauth

// ProtectedResourceMetadata is the RFC 9728 document served at
// /.well-known/oauth-protected-resource.
type ProtectedResourceMetadata struct {
	Resource                          string   `json:"resource"`
	AuthorizationServers              []string `json:"authorization_servers"`
	BearerMethodsSupported            []string `json:"bearer_methods_supported,omitempty"`
	ResourceSigningAlgValuesSupported []string `json:"resource_signing_alg_values_supported,omitempty"`
	ScopesSupported                   []string `json:"scopes_supported,omitempty"`
}

// GoogleUserInfo is the response shape of Google's userinfo endpoint.
type GoogleUserInfo struct {
	// Sub is the stable Google user ID.
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
	Locale        string `json:"locale"`
}

// ErrorResponse is the RFC 6749 error body.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
	ErrorURI         string `json:"error_uri,omitempty"`
}

// AuthorizationServerMetadata is the RFC 8414 document served at
// /.well-known/oauth-authorization-server.
type AuthorizationServerMetadata struct {
	Issuer                            string   `json:"issuer"`
	AuthorizationEndpoint             string   `json:"authorization_endpoint"`
	TokenEndpoint                     string   `json:"token_endpoint"`
	RegistrationEndpoint              string   `json:"registration_endpoint,omitempty"`
	ScopesSupported                   []string `json:"scopes_supported,omitempty"`
	ResponseTypesSupported            []string `json:"response_types_supported"`
	GrantTypesSupported               []string `json:"grant_types_supported,omitempty"`
	TokenEndpointAuthMethodsSupported []string `json:"token_endpoint_auth_methods_supported,omitempty"`
	CodeChallengeMethodsSupported     []string `json:"code_challenge_methods_supported,omitempty"`
}

// ClientRegistrationRequest is an RFC 7591 Dynamic Client Registration
// request body.
type ClientRegistrationRequest struct {
	RedirectURIs            []string `json:"redirect_uris"`
	TokenEndpointAuthMethod string   `json:"token_endpoint_auth_method,omitempty"`
	// ClientType is "confidential" (default) or "public". Public clients
	// receive no secret and must use PKCE.
	ClientType    string   `json:"client_type,omitempty"`
	GrantTypes    []string `json:"grant_types,omitempty"`
	ResponseTypes []string `json:"response_types,omitempty"`
	ClientName    string   `json:"client_name,omitempty"`
	Scope         string   `json:"scope,omitempty"`
}

// ClientRegistrationResponse is the RFC 7591 registration response. The
// client secret appears here once and is never retrievable again.
type ClientRegistrationResponse struct {
	ClientID         string `json:"client_id"`
	ClientSecret     string `json:"client_secret,omitempty"`
	ClientIDIssuedAt int64  `json:"client_id_issued_at"`
	// ClientSecretExpiresAt of 0 means the secret never expires.
	ClientSecretExpiresAt   int64    `json:"client_secret_expires_at"`
	RedirectURIs            []string `json:"redirect_uris"`
	TokenEndpointAuthMethod string   `json:"token_endpoint_auth_method"`
	ClientType              string   `json:"client_type,omitempty"`
	GrantTypes              []string `json:"grant_types"`
	ResponseTypes           []string `json:"response_types"`
	ClientName              string   `json:"client_name,omitempty"`
	Scope                   string   `json:"scope,omitempty"`
}

// RegisteredClient is the stored form of a dynamically registered client.
// Only the bcrypt hash of the secret is persisted.
type RegisteredClient struct {
	ClientID                string
	ClientSecret            string
	ClientSecretHash        string
	ClientIDIssuedAt        int64
	ClientSecretExpiresAt   int64
	RedirectURIs            []string
	TokenEndpointAuthMethod string
	ClientType              string
	GrantTypes              []string
	ResponseTypes           []string
	ClientName              string
	Scope                   string
}

// AuthorizationState tracks an in-flight authorization request while the
// user completes the Google consent flow. State is the client's original
// state parameter, echoed back unchanged; GoogleState is the separate value
// sent to Google and used to look this record up on callback.
type AuthorizationState struct {
	State               string
	ClientID            string
	RedirectURI         string
	Scope               string
	CodeChallenge       string
	CodeChallengeMethod string
	GoogleState         string
	Nonce               string
	CreatedAt           int64
	ExpiresAt           int64
}

// AuthorizationCode is the single-use code minted after a successful Google
// callback. It carries the Google tokens so the exchange at the token
// endpoint does not need a second round trip to Google.
type AuthorizationCode struct {
	Code                string
	ClientID            string
	RedirectURI         string
	Scope               string
	CodeChallenge       string
	CodeChallengeMethod string
	GoogleAccessToken   string
	GoogleRefreshToken  string
	GoogleTokenExpiry   int64
	UserEmail           string
	CreatedAt           int64
	ExpiresAt           int64
	Used                bool
}

// TokenResponse is the RFC 6749 token endpoint response.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
	Scope        string `json:"scope,omitempty"`
}
