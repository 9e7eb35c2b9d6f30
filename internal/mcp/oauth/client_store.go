package oauth

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// ClientStore holds dynamically registered OAuth clients (RFC 7591). Client
// secrets are stored only as bcrypt hashes; the plaintext secret leaves the
// store exactly once, in the registration response
type ClientStore struct {
	mu           sync.RWMutex
	clients      map[string]*RegisteredClient
	clientsPerIP map[string]int
	logger       *slog.Logger
}

// NewClientStore creates a client store
func NewClientStore(logger *slog.Logger) *ClientStore {
	if logger == nil {
		logger = slog.Default()
	}

	return &ClientStore{
		clients:      make(map[string]*RegisteredClient),
		clientsPerIP: make(map[string]int),
		logger:       logger,
	}
}

// CheckIPLimit rejects registration when an IP already holds the maximum
// number of clients. A limit of zero or less disables the check
func (s *ClientStore) CheckIPLimit(ip string, maxClientsPerIP int) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if maxClientsPerIP <= 0 {
		return nil
	}

	count := s.clientsPerIP[ip]
	if count >= maxClientsPerIP {
		return fmt.Errorf("client registration limit reached for IP %s (%d/%d)", ip, count, maxClientsPerIP)
	}

	return nil
}

// validateClientTypeAuthMethod rejects client type and auth method
// combinations ruled out by OAuth 2.1: public clients cannot hold a secret,
// and confidential clients must authenticate
func validateClientTypeAuthMethod(clientType, authMethod string) error {
	switch clientType {
	case "public":
		if authMethod != "none" {
			return fmt.Errorf("public clients must use token_endpoint_auth_method \"none\", got %q", authMethod)
		}
	case "confidential":
		if authMethod == "none" {
			return fmt.Errorf("confidential clients must authenticate at the token endpoint")
		}
	default:
		return fmt.Errorf("unknown client type %q", clientType)
	}
	return nil
}

// RegisterClient creates a new client with generated credentials. clientIP
// feeds the per-IP registration counter. Public clients are issued no
// secret; they prove possession with PKCE instead
func (s *ClientStore) RegisterClient(req *ClientRegistrationRequest, clientIP string) (*ClientRegistrationResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tokenEndpointAuthMethod := req.TokenEndpointAuthMethod
	if tokenEndpointAuthMethod == "" {
		tokenEndpointAuthMethod = DefaultTokenEndpointAuthMethod
	}

	clientType := req.ClientType
	if clientType == "" {
		clientType = "confidential"
	}
	if err := validateClientTypeAuthMethod(clientType, tokenEndpointAuthMethod); err != nil {
		return nil, err
	}

	clientID, err := generateSecureToken(32)
	if err != nil {
		return nil, fmt.Errorf("failed to generate client ID: %w", err)
	}

	var clientSecret, secretHash string
	if clientType == "confidential" {
		clientSecret, err = generateSecureToken(48)
		if err != nil {
			return nil, fmt.Errorf("failed to generate client secret: %w", err)
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(clientSecret), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash client secret: %w", err)
		}
		secretHash = string(hash)
	}

	now := time.Now().Unix()

	grantTypes := req.GrantTypes
	if len(grantTypes) == 0 {
		grantTypes = DefaultGrantTypes
	}

	responseTypes := req.ResponseTypes
	if len(responseTypes) == 0 {
		responseTypes = DefaultResponseTypes
	}

	client := &RegisteredClient{
		ClientID:                clientID,
		ClientSecret:            "",
		ClientSecretHash:        secretHash,
		ClientIDIssuedAt:        now,
		ClientSecretExpiresAt:   0, // never expires
		RedirectURIs:            req.RedirectURIs,
		TokenEndpointAuthMethod: tokenEndpointAuthMethod,
		ClientType:              clientType,
		GrantTypes:              grantTypes,
		ResponseTypes:           responseTypes,
		ClientName:              req.ClientName,
		Scope:                   req.Scope,
	}

	s.clients[clientID] = client

	if clientIP != "" {
		s.clientsPerIP[clientIP]++
	}

	s.logger.Info("Registered new OAuth client",
		"client_id", clientID,
		"client_name", req.ClientName,
		"client_type", clientType,
		"client_ip", clientIP,
		"clients_from_ip", s.clientsPerIP[clientIP],
		"redirect_uris", req.RedirectURIs,
		"grant_types", grantTypes,
	)

	return &ClientRegistrationResponse{
		ClientID:                clientID,
		ClientSecret:            clientSecret,
		ClientIDIssuedAt:        now,
		ClientSecretExpiresAt:   0,
		RedirectURIs:            req.RedirectURIs,
		TokenEndpointAuthMethod: tokenEndpointAuthMethod,
		ClientType:              clientType,
		GrantTypes:              grantTypes,
		ResponseTypes:           responseTypes,
		ClientName:              req.ClientName,
		Scope:                   req.Scope,
	}, nil
}

// GetClient looks up a registered client by ID
func (s *ClientStore) GetClient(clientID string) (*RegisteredClient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	client, exists := s.clients[clientID]
	if !exists {
		return nil, fmt.Errorf("client not found")
	}

	return client, nil
}

// ValidateClientSecret checks a presented secret against the stored hash
func (s *ClientStore) ValidateClientSecret(clientID, clientSecret string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	client, exists := s.clients[clientID]
	if !exists {
		return fmt.Errorf("client not found")
	}

	if client.ClientType == "public" {
		return fmt.Errorf("public clients have no client secret")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(client.ClientSecretHash), []byte(clientSecret)); err != nil {
		return fmt.Errorf("invalid client secret")
	}

	return nil
}

// ValidateRedirectURI checks that a redirect URI was registered by the client.
// Only exact matches count
func (s *ClientStore) ValidateRedirectURI(clientID, redirectURI string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	client, exists := s.clients[clientID]
	if !exists {
		return fmt.Errorf("client not found")
	}

	for _, uri := range client.RedirectURIs {
		if uri == redirectURI {
			return nil
		}
	}

	return fmt.Errorf("redirect_uri not registered for this client")
}

// generateSecureToken returns length random bytes base64url-encoded
func generateSecureToken(length int) (string, error) {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.WithPadding(base64.NoPadding).EncodeToString(b), nil
}
