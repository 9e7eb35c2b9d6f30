package oauth

import (
	"slices"
	"testing"
	"time"
)

func TestValidateClientTypeAuthMethod(t *testing.T) {
	tests := []struct {
		name       string
		clientType string
		authMethod string
		wantErr    bool
	}{
		{"public with none", "public", "none", false},
		{"public with basic", "public", "client_secret_basic", true},
		{"public with post", "public", "client_secret_post", true},
		{"confidential with basic", "confidential", "client_secret_basic", false},
		{"confidential with post", "confidential", "client_secret_post", false},
		// A confidential client without authentication defeats the point
		{"confidential with none", "confidential", "none", true},
		{"unknown client type", "invalid_type", "client_secret_basic", true},
		{"empty client type", "", "client_secret_basic", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateClientTypeAuthMethod(tt.clientType, tt.authMethod)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateClientTypeAuthMethod(%q, %q) error = %v, wantErr %v",
					tt.clientType, tt.authMethod, err, tt.wantErr)
			}
		})
	}
}

func TestRegisterPublicClient(t *testing.T) {
	store := NewClientStore(nil)

	resp, err := store.RegisterClient(&ClientRegistrationRequest{
		ClientName:              "Desktop Client",
		ClientType:              "public",
		TokenEndpointAuthMethod: "none",
		RedirectURIs:            []string{"cursor://callback"},
	}, "192.0.2.1")
	if err != nil {
		t.Fatalf("RegisterClient() error = %v", err)
	}

	if resp.ClientSecret != "" {
		t.Error("public client must not be issued a client_secret")
	}
	if resp.ClientType != "public" {
		t.Errorf("ClientType = %s, want public", resp.ClientType)
	}

	client, err := store.GetClient(resp.ClientID)
	if err != nil {
		t.Fatalf("GetClient() error = %v", err)
	}
	if client.ClientSecretHash != "" {
		t.Error("public client must not store a secret hash")
	}
}

func TestRegisterConfidentialClient(t *testing.T) {
	store := NewClientStore(nil)

	resp, err := store.RegisterClient(&ClientRegistrationRequest{
		ClientName:              "Server Client",
		ClientType:              "confidential",
		TokenEndpointAuthMethod: "client_secret_basic",
		RedirectURIs:            []string{"https://example.com/callback"},
	}, "192.0.2.1")
	if err != nil {
		t.Fatalf("RegisterClient() error = %v", err)
	}

	if resp.ClientSecret == "" {
		t.Error("confidential client must be issued a client_secret")
	}

	client, err := store.GetClient(resp.ClientID)
	if err != nil {
		t.Fatalf("GetClient() error = %v", err)
	}
	if client.ClientSecretHash == "" {
		t.Error("confidential client must store a secret hash")
	}
}

func TestRegisterClientRejectsMismatchedAuthMethod(t *testing.T) {
	store := NewClientStore(nil)

	_, err := store.RegisterClient(&ClientRegistrationRequest{
		ClientType:              "public",
		TokenEndpointAuthMethod: "client_secret_basic",
		RedirectURIs:            []string{"cursor://callback"},
	}, "192.0.2.1")
	if err == nil {
		t.Error("RegisterClient() should reject a public client requesting secret auth")
	}

	_, err = store.RegisterClient(&ClientRegistrationRequest{
		ClientType:              "confidential",
		TokenEndpointAuthMethod: "none",
		RedirectURIs:            []string{"https://example.com/callback"},
	}, "192.0.2.1")
	if err == nil {
		t.Error("RegisterClient() should reject a confidential client with no auth")
	}
}

func TestRegisterClientDefaultsToConfidential(t *testing.T) {
	store := NewClientStore(nil)

	resp, err := store.RegisterClient(&ClientRegistrationRequest{
		ClientName:              "Unspecified Type Client",
		TokenEndpointAuthMethod: "client_secret_basic",
		RedirectURIs:            []string{"https://example.com/callback"},
	}, "192.0.2.1")
	if err != nil {
		t.Fatalf("RegisterClient() error = %v", err)
	}

	if resp.ClientType != "confidential" {
		t.Errorf("default ClientType = %s, want confidential", resp.ClientType)
	}
	if resp.ClientSecret == "" {
		t.Error("confidential client must be issued a client_secret")
	}
}

func TestPKCEPlainMethodIsDisabled(t *testing.T) {
	if slices.Contains(SupportedCodeChallengeMethods, "plain") {
		t.Error("the plain PKCE method must not be advertised")
	}
	if !slices.Contains(SupportedCodeChallengeMethods, "S256") {
		t.Error("S256 must be a supported code challenge method")
	}
}

func TestHashForDisplay(t *testing.T) {
	if got := HashForDisplay(""); got != "<empty>" {
		t.Errorf("HashForDisplay(\"\") = %q, want <empty>", got)
	}

	for _, input := range []string{"user@example.com", "secret_token_123"} {
		hash := HashForDisplay(input)

		if hash != HashForDisplay(input) {
			t.Error("HashForDisplay() is not deterministic")
		}
		if len(hash) != 16 {
			t.Errorf("hash length = %d, want 16", len(hash))
		}
		if hash == input {
			t.Error("HashForDisplay() returned the input unchanged")
		}
		for _, c := range hash {
			if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
				t.Errorf("hash contains non-hex character %q", c)
			}
		}
	}
}

func TestSecurityDefaults(t *testing.T) {
	if DefaultAccessTokenTTL > 24*time.Hour {
		t.Error("default access token TTL should not exceed 24 hours")
	}
	if DefaultRefreshTokenTTL < 7*24*time.Hour || DefaultRefreshTokenTTL > 180*24*time.Hour {
		t.Errorf("default refresh token TTL = %v, want between 7 and 180 days", DefaultRefreshTokenTTL)
	}

	if DefaultTokenEndpointAuthMethod != "client_secret_basic" {
		t.Errorf("default auth method = %s, want client_secret_basic", DefaultTokenEndpointAuthMethod)
	}
	// Public clients need the none method to remain registrable
	if !slices.Contains(SupportedTokenAuthMethods, "none") {
		t.Error("none must be a supported token endpoint auth method")
	}
}
