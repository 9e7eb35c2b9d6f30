package forms_tools

import (
	"context"
	"fmt"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"golang.org/x/oauth2"

	"github.com/lonelyoctopus/gsheets-mcp/internal/forms"
	"github.com/lonelyoctopus/gsheets-mcp/internal/google"
	"github.com/lonelyoctopus/gsheets-mcp/internal/mcp/oauth"
	"github.com/lonelyoctopus/gsheets-mcp/internal/server"
)

// getFormsClient resolves the Forms client for the account. The server
// context builds clients off its token provider; when that yields nothing
// but the request itself carries an authenticated Google token (for example
// the store rejected the save), an uncached client serves this call.
func getFormsClient(ctx context.Context, account string, sc *server.ServerContext) (*forms.Client, error) {
	if client := sc.FormsClientForAccount(account); client != nil {
		return client, nil
	}

	if token, ok := oauth.GetGoogleTokenFromContext(ctx); ok && token != nil {
		client, err := forms.NewClientWithTokenSource(ctx, oauth2.StaticTokenSource(token), account)
		if err != nil {
			return nil, fmt.Errorf("failed to create Forms client for account %s: %w", account, err)
		}
		return client, nil
	}

	return nil, fmt.Errorf("%s", google.GetAuthenticationErrorMessage(account))
}

// RegisterFormsTools registers all Google Forms-related tools with the MCP server
func RegisterFormsTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	if err := registerFormTools(s, sc, readOnly); err != nil {
		return fmt.Errorf("failed to register form tools: %w", err)
	}

	return nil
}
