package google_tools

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/lonelyoctopus/gsheets-mcp/internal/google"
	"github.com/lonelyoctopus/gsheets-mcp/internal/logging"
	"github.com/lonelyoctopus/gsheets-mcp/internal/server"
	"github.com/lonelyoctopus/gsheets-mcp/internal/tools/common"
)

// RegisterGoogleTools adds the OAuth bootstrap tools. They cover the
// manual copy-paste flow used with stdio transport, where no callback
// server is running.
func RegisterGoogleTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	getAuthURLTool := mcp.NewTool("google_get_auth_url",
		mcp.WithDescription("Get the OAuth URL to authorize Google services access (Sheets, Forms, Drive) for a specific account"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
	)
	s.AddTool(getAuthURLTool, common.InstrumentedToolHandler("google_get_auth_url", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetAuthURL(ctx, request)
		}))

	saveAuthCodeTool := mcp.NewTool("google_save_auth_code",
		mcp.WithDescription("Save the OAuth authorization code to complete Google services authentication (Sheets, Forms, Drive) for a specific account"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("authCode",
			mcp.Required(),
			mcp.Description("The authorization code from Google OAuth"),
		),
	)
	s.AddTool(saveAuthCodeTool, common.InstrumentedToolHandler("google_save_auth_code", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleSaveAuthCode(ctx, request)
		}))

	return nil
}

func accountArg(args map[string]interface{}) string {
	if account, ok := args["account"].(string); ok && account != "" {
		return account
	}
	return "default"
}

func handleGetAuthURL(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	account := accountArg(request.GetArguments())
	authURL := google.GetAuthURLForAccount(account)

	result := fmt.Sprintf(`To authorize Google services access (Sheets, Forms, Drive) for account %q:

1. Visit this URL in your browser:
   %s

2. Sign in with your Google account
3. Grant access to Google services
4. Copy the authorization code

5. Call the google_save_auth_code tool with the code and account name to complete authentication`, account, authURL)

	return mcp.NewToolResultText(result), nil
}

func handleSaveAuthCode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := accountArg(args)

	authCode, ok := args["authCode"].(string)
	if !ok || authCode == "" {
		return mcp.NewToolResultError("authCode is required"), nil
	}

	slog.Debug("exchanging authorization code",
		logging.Account(account),
		slog.String("code", logging.SanitizeToken(authCode)))

	if err := google.SaveTokenForAccount(ctx, authCode, account); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to save authorization code for account %s: %v", account, err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Authorization successful for account %q. Google services token saved; the Sheets, Forms, and Drive tools can now use this account.", account)), nil
}
