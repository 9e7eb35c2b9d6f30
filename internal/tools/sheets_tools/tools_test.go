package sheets_tools

import (
	"context"
	"reflect"
	"testing"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"golang.org/x/oauth2"

	"github.com/lonelyoctopus/gsheets-mcp/internal/mcp/oauth"
	"github.com/lonelyoctopus/gsheets-mcp/internal/server"
	"github.com/lonelyoctopus/gsheets-mcp/internal/tools/common"
)

// TestCommonGetAccountFromArgs exercises account resolution the way the
// Sheets tool handlers call it; the full matrix lives in
// internal/tools/common/account_test.go.
func TestCommonGetAccountFromArgs(t *testing.T) {
	ctx := context.Background()

	// Explicit account argument wins
	args := map[string]interface{}{
		"account": "test-account",
	}
	result := common.GetAccountFromArgs(ctx, args)
	if result != "test-account" {
		t.Errorf("GetAccountFromArgs() = %v, expected test-account", result)
	}

	// Authenticated HTTP sessions resolve to the token owner
	userInfo := &oauth.GoogleUserInfo{
		Email: "oauth-user@example.com",
	}
	ctxWithUser := oauth.ContextWithUserInfo(context.Background(), userInfo)
	result = common.GetAccountFromArgs(ctxWithUser, args)
	if result != "oauth-user@example.com" {
		t.Errorf("GetAccountFromArgs() with OAuth = %v, expected oauth-user@example.com", result)
	}
}

func TestParseValues(t *testing.T) {
	tests := []struct {
		name     string
		input    interface{}
		expected [][]interface{}
		wantErr  bool
	}{
		{
			name: "nested arrays",
			input: []interface{}{
				[]interface{}{"Name", "Score"},
				[]interface{}{"Ada", float64(10)},
			},
			expected: [][]interface{}{
				{"Name", "Score"},
				{"Ada", float64(10)},
			},
		},
		{
			name:  "JSON string",
			input: `[["a","b"],["c","d"]]`,
			expected: [][]interface{}{
				{"a", "b"},
				{"c", "d"},
			},
		},
		{
			name:     "empty outer array",
			input:    []interface{}{},
			expected: [][]interface{}{},
		},
		{
			name:    "nil",
			input:   nil,
			wantErr: true,
		},
		{
			name:    "empty string",
			input:   "",
			wantErr: true,
		},
		{
			name:    "invalid JSON string",
			input:   `{"not": "an array"}`,
			wantErr: true,
		},
		{
			name:    "row is not an array",
			input:   []interface{}{"flat value"},
			wantErr: true,
		},
		{
			name:    "unsupported type",
			input:   42,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := parseValues(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("parseValues() expected error, got %v", result)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseValues() unexpected error: %v", err)
			}
			if !reflect.DeepEqual(result, tt.expected) {
				t.Errorf("parseValues() = %v, expected %v", result, tt.expected)
			}
		})
	}
}

func TestRegisterSheetsTools(t *testing.T) {
	ctx := context.Background()
	sc, err := server.NewServerContext(ctx)
	if err != nil {
		t.Fatalf("NewServerContext() error: %v", err)
	}
	defer sc.Shutdown()

	s := mcpserver.NewMCPServer("test", "1.0.0")
	if err := RegisterSheetsTools(s, sc, false); err != nil {
		t.Errorf("RegisterSheetsTools() error: %v", err)
	}
}

func TestRegisterSheetsToolsReadOnly(t *testing.T) {
	ctx := context.Background()
	sc, err := server.NewServerContext(ctx)
	if err != nil {
		t.Fatalf("NewServerContext() error: %v", err)
	}
	defer sc.Shutdown()

	s := mcpserver.NewMCPServer("test", "1.0.0")
	if err := RegisterSheetsTools(s, sc, true); err != nil {
		t.Errorf("RegisterSheetsTools() read-only error: %v", err)
	}
}

// A request carrying an authenticated Google token must be served even when
// neither the token provider nor the file store knows the account.
func TestGetSheetsClientUsesRequestToken(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", "")

	sc, err := server.NewServerContext(context.Background())
	if err != nil {
		t.Fatalf("NewServerContext() error: %v", err)
	}
	defer sc.Shutdown()

	account := "request-user@example.com"

	if _, err := getSheetsClient(context.Background(), account, sc); err == nil {
		t.Error("getSheetsClient() succeeded without any token")
	}

	ctx := oauth.ContextWithGoogleToken(context.Background(), &oauth2.Token{
		AccessToken: "request-access-token",
		TokenType:   "Bearer",
		Expiry:      time.Now().Add(time.Hour),
	})

	client, err := getSheetsClient(ctx, account, sc)
	if err != nil {
		t.Fatalf("getSheetsClient() with request token error: %v", err)
	}
	if client == nil {
		t.Fatal("getSheetsClient() with request token = nil")
	}
	if client.Account() != account {
		t.Errorf("client.Account() = %q, want %q", client.Account(), account)
	}
}
