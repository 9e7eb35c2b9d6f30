package drive_tools

import (
	"context"
	"fmt"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"golang.org/x/oauth2"

	"github.com/lonelyoctopus/gsheets-mcp/internal/drive"
	"github.com/lonelyoctopus/gsheets-mcp/internal/google"
	"github.com/lonelyoctopus/gsheets-mcp/internal/mcp/oauth"
	"github.com/lonelyoctopus/gsheets-mcp/internal/server"
)

// getDriveClient resolves the Drive client for the account. The server
// context builds clients off its token provider; when that yields nothing
// but the request itself carries an authenticated Google token (for example
// the store rejected the save), an uncached client serves this call.
func getDriveClient(ctx context.Context, account string, sc *server.ServerContext) (*drive.Client, error) {
	if client := sc.DriveClientForAccount(account); client != nil {
		return client, nil
	}

	if token, ok := oauth.GetGoogleTokenFromContext(ctx); ok && token != nil {
		client, err := drive.NewClientWithTokenSource(ctx, oauth2.StaticTokenSource(token), account)
		if err != nil {
			return nil, fmt.Errorf("failed to create Drive client for account %s: %w", account, err)
		}
		return client, nil
	}

	return nil, fmt.Errorf("%s", google.GetAuthenticationErrorMessage(account))
}

// RegisterDriveTools adds the Drive-backed tools to the MCP server.
func RegisterDriveTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	if err := registerSpreadsheetListTools(s, sc); err != nil {
		return fmt.Errorf("failed to register spreadsheet list tools: %w", err)
	}

	return nil
}
