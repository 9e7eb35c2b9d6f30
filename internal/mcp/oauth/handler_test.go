package oauth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func TestNewHandler(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantErr bool
	}{
		{
			name: "valid https resource",
			config: &Config{
				Resource: "https://mcp.example.com",
			},
			wantErr: false,
		},
		{
			name:    "missing resource",
			config:  &Config{},
			wantErr: true,
		},
		{
			name: "http localhost allowed",
			config: &Config{
				Resource: "http://localhost:8080",
			},
			wantErr: false,
		},
		{
			name: "http loopback allowed",
			config: &Config{
				Resource: "http://127.0.0.1:8080",
			},
			wantErr: false,
		},
		{
			name: "http non-localhost rejected",
			config: &Config{
				Resource: "http://example.com",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, err := NewHandler(tt.config)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewHandler() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && handler == nil {
				t.Error("NewHandler() returned nil handler")
			}
		})
	}
}

func TestNewHandler_Defaults(t *testing.T) {
	handler, err := NewHandler(&Config{
		Resource: "https://mcp.example.com",
	})
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}

	config := handler.GetConfig()
	if len(config.SupportedScopes) == 0 {
		t.Error("SupportedScopes should default to the standard Google scopes")
	}
	if config.CleanupInterval != DefaultCleanupInterval {
		t.Errorf("CleanupInterval = %v, want %v", config.CleanupInterval, DefaultCleanupInterval)
	}
	if config.Security.RefreshTokenTTL != DefaultRefreshTokenTTL {
		t.Errorf("RefreshTokenTTL = %v, want %v", config.Security.RefreshTokenTTL, DefaultRefreshTokenTTL)
	}
	if config.Security.MaxClientsPerIP != DefaultMaxClientsPerIP {
		t.Errorf("MaxClientsPerIP = %d, want %d", config.Security.MaxClientsPerIP, DefaultMaxClientsPerIP)
	}
	if handler.GetStore() == nil {
		t.Error("GetStore() returned nil")
	}
}

func TestHandler_CanRefreshTokens(t *testing.T) {
	withoutCreds, err := NewHandler(&Config{
		Resource: "https://mcp.example.com",
	})
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}
	if withoutCreds.CanRefreshTokens() {
		t.Error("CanRefreshTokens() should be false without Google credentials")
	}

	withCreds, err := NewHandler(&Config{
		Resource: "https://mcp.example.com",
		GoogleAuth: GoogleAuthConfig{
			ClientID:     "client-id",
			ClientSecret: "client-secret",
		},
	})
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}
	if !withCreds.CanRefreshTokens() {
		t.Error("CanRefreshTokens() should be true with Google credentials")
	}
}

func TestHandler_ServeProtectedResourceMetadata(t *testing.T) {
	handler, err := NewHandler(&Config{
		Resource: "https://mcp.example.com",
		SupportedScopes: []string{
			"https://www.googleapis.com/auth/spreadsheets",
		},
	})
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/.well-known/oauth-protected-resource", nil)
	w := httptest.NewRecorder()

	handler.ServeProtectedResourceMetadata(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var metadata ProtectedResourceMetadata
	if err := json.NewDecoder(w.Body).Decode(&metadata); err != nil {
		t.Fatalf("failed to decode metadata: %v", err)
	}

	if metadata.Resource != "https://mcp.example.com" {
		t.Errorf("Resource = %s, want https://mcp.example.com", metadata.Resource)
	}
	if len(metadata.AuthorizationServers) != 1 || metadata.AuthorizationServers[0] != "https://mcp.example.com" {
		t.Errorf("AuthorizationServers = %v, want [https://mcp.example.com]", metadata.AuthorizationServers)
	}
	if len(metadata.ScopesSupported) != 1 || metadata.ScopesSupported[0] != "https://www.googleapis.com/auth/spreadsheets" {
		t.Errorf("ScopesSupported = %v", metadata.ScopesSupported)
	}
}

func TestHandler_ServeProtectedResourceMetadata_MethodNotAllowed(t *testing.T) {
	handler, _ := NewHandler(&Config{
		Resource: "https://mcp.example.com",
	})

	req := httptest.NewRequest(http.MethodPost, "/.well-known/oauth-protected-resource", nil)
	w := httptest.NewRecorder()

	handler.ServeProtectedResourceMetadata(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", w.Code, http.StatusMethodNotAllowed)
	}
}

func TestHandler_SecurityHeaders(t *testing.T) {
	handler, _ := NewHandler(&Config{
		Resource: "https://mcp.example.com",
	})

	req := httptest.NewRequest(http.MethodGet, "/.well-known/oauth-protected-resource", nil)
	w := httptest.NewRecorder()

	handler.ServeProtectedResourceMetadata(w, req)

	headers := map[string]string{
		"X-Frame-Options":           "DENY",
		"X-Content-Type-Options":    "nosniff",
		"Content-Security-Policy":   "default-src 'none'; frame-ancestors 'none'",
		"Referrer-Policy":           "no-referrer",
		"Strict-Transport-Security": "max-age=31536000; includeSubDomains",
	}

	for name, want := range headers {
		if got := w.Header().Get(name); got != want {
			t.Errorf("header %s = %q, want %q", name, got, want)
		}
	}
}

func TestHandler_SecurityHeaders_NoHSTSOverHTTP(t *testing.T) {
	handler, _ := NewHandler(&Config{
		Resource: "http://localhost:8080",
	})

	req := httptest.NewRequest(http.MethodGet, "/.well-known/oauth-protected-resource", nil)
	w := httptest.NewRecorder()

	handler.ServeProtectedResourceMetadata(w, req)

	if got := w.Header().Get("Strict-Transport-Security"); got != "" {
		t.Errorf("HSTS header should not be set for http resources, got %q", got)
	}
}

func TestHandler_RevokeToken(t *testing.T) {
	handler, _ := NewHandler(&Config{
		Resource: "https://mcp.example.com",
	})

	// Token with no access token skips the Google revocation call
	token := &oauth2.Token{
		Expiry: time.Now().Add(1 * time.Hour),
	}
	if err := handler.GetStore().SaveGoogleToken("user@example.com", token); err != nil {
		t.Fatalf("SaveGoogleToken() error = %v", err)
	}

	if err := handler.RevokeToken("user@example.com"); err != nil {
		t.Fatalf("RevokeToken() error = %v", err)
	}

	if _, err := handler.GetStore().GetGoogleToken("user@example.com"); err == nil {
		t.Error("token should be deleted after revocation")
	}
}

func TestHandler_ServeRevoke(t *testing.T) {
	handler, _ := NewHandler(&Config{
		Resource: "https://mcp.example.com",
	})

	t.Run("method not allowed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/oauth/revoke", nil)
		w := httptest.NewRecorder()

		handler.ServeRevoke(w, req)

		if w.Code != http.StatusMethodNotAllowed {
			t.Errorf("status = %d, want %d", w.Code, http.StatusMethodNotAllowed)
		}
	})

	t.Run("invalid body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/oauth/revoke", bytes.NewBufferString("not json"))
		w := httptest.NewRecorder()

		handler.ServeRevoke(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
		}
	})

	t.Run("missing email", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/oauth/revoke", bytes.NewBufferString("{}"))
		w := httptest.NewRecorder()

		handler.ServeRevoke(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
		}
	})

	t.Run("successful revocation", func(t *testing.T) {
		token := &oauth2.Token{
			Expiry: time.Now().Add(1 * time.Hour),
		}
		if err := handler.GetStore().SaveGoogleToken("user@example.com", token); err != nil {
			t.Fatalf("SaveGoogleToken() error = %v", err)
		}

		body, _ := json.Marshal(map[string]string{"email": "user@example.com"})
		req := httptest.NewRequest(http.MethodPost, "/oauth/revoke", bytes.NewBuffer(body))
		w := httptest.NewRecorder()

		handler.ServeRevoke(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
		}
	})
}

func TestHandler_WriteError(t *testing.T) {
	handler, _ := NewHandler(&Config{
		Resource: "https://mcp.example.com",
	})

	w := httptest.NewRecorder()
	handler.writeError(w, "invalid_request", "something went wrong", http.StatusBadRequest)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}

	var resp ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if resp.Error != "invalid_request" {
		t.Errorf("Error = %s, want invalid_request", resp.Error)
	}
	if resp.ErrorDescription != "something went wrong" {
		t.Errorf("ErrorDescription = %s", resp.ErrorDescription)
	}
}
