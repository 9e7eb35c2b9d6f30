package drive_tools

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/lonelyoctopus/gsheets-mcp/internal/drive"
	"github.com/lonelyoctopus/gsheets-mcp/internal/mcp/oauth"
	"github.com/lonelyoctopus/gsheets-mcp/internal/server"
	"github.com/lonelyoctopus/gsheets-mcp/internal/tools/common"
)

// TestCommonGetAccountFromArgs exercises account resolution the way the
// Drive tool handlers call it; the full matrix lives in
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

func TestRegisterDriveTools(t *testing.T) {
	ctx := context.Background()
	sc, err := server.NewServerContext(ctx)
	if err != nil {
		t.Fatalf("NewServerContext() error: %v", err)
	}
	defer sc.Shutdown()

	s := mcpserver.NewMCPServer("test", "1.0.0")
	if err := RegisterDriveTools(s, sc); err != nil {
		t.Errorf("RegisterDriveTools() error: %v", err)
	}
}

// The tool output must stay one parseable JSON document whether or not a
// continuation token is present.
func TestFormatSpreadsheetList(t *testing.T) {
	files := []*drive.FileInfo{
		{ID: "sheet-1", Name: "Budget", ModifiedTime: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)},
	}

	tests := []struct {
		name          string
		files         []*drive.FileInfo
		nextPageToken string
	}{
		{name: "single page", files: files},
		{name: "with next page token", files: files, nextPageToken: "token-123"},
		{name: "empty listing", files: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, err := formatSpreadsheetList(tt.files, tt.nextPageToken)
			if err != nil {
				t.Fatalf("formatSpreadsheetList() error: %v", err)
			}

			var page struct {
				Files         []*drive.FileInfo `json:"files"`
				NextPageToken string            `json:"next_page_token"`
			}
			if err := json.Unmarshal([]byte(text), &page); err != nil {
				t.Fatalf("output is not valid JSON: %v\n%s", err, text)
			}
			if page.Files == nil {
				t.Error("files field missing from output")
			}
			if len(page.Files) != len(tt.files) {
				t.Errorf("len(files) = %d, want %d", len(page.Files), len(tt.files))
			}
			if page.NextPageToken != tt.nextPageToken {
				t.Errorf("next_page_token = %q, want %q", page.NextPageToken, tt.nextPageToken)
			}
		})
	}
}
