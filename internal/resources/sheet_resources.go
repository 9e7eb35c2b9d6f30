package resources

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"golang.org/x/oauth2"

	"github.com/lonelyoctopus/gsheets-mcp/internal/google"
	"github.com/lonelyoctopus/gsheets-mcp/internal/logging"
	"github.com/lonelyoctopus/gsheets-mcp/internal/mcp/oauth"
	"github.com/lonelyoctopus/gsheets-mcp/internal/server"
	"github.com/lonelyoctopus/gsheets-mcp/internal/sheets"
)

// RegisterSheetResources registers the sheet range resource template.
// Ranges are addressed as sheet://{spreadsheet_id}/{range_name} and rendered
// as plain text, one row per line with cells joined by " | ".
func RegisterSheetResources(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	sheetTemplate := mcp.NewResourceTemplate(
		"sheet://{spreadsheet_id}/{range_name}",
		"Sheet Range",
		mcp.WithTemplateDescription("Data from a Google Sheet range, rendered as plain text rows"),
		mcp.WithTemplateMIMEType("text/plain"),
	)

	s.AddResourceTemplate(sheetTemplate, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleSheetResource(ctx, request, sc)
	})

	return nil
}

// extractAccountFromContext extracts the user's email from OAuth context
// Falls back to "default" for STDIO transport or if no OAuth context is available
func extractAccountFromContext(ctx context.Context) string {
	// Try to get user info from OAuth context (HTTP/SSE transport)
	if userInfo, ok := oauth.GetUserFromContext(ctx); ok {
		return userInfo.Email
	}
	// Fallback to default for STDIO transport
	return "default"
}

// parseSheetURI splits a sheet:// URI into its spreadsheet ID and range name.
// The range may contain URL-escaped characters (spaces, '!', ':').
func parseSheetURI(uri string) (spreadsheetID, rangeName string, err error) {
	rest, ok := strings.CutPrefix(uri, "sheet://")
	if !ok {
		return "", "", fmt.Errorf("invalid sheet resource URI: %s", uri)
	}

	spreadsheetID, rangeName, ok = strings.Cut(rest, "/")
	if !ok || spreadsheetID == "" {
		return "", "", fmt.Errorf("invalid sheet resource URI: %s", uri)
	}

	if rangeName == "" {
		rangeName = "Sheet1"
	} else if unescaped, err := url.PathUnescape(rangeName); err == nil {
		rangeName = unescaped
	}

	return spreadsheetID, rangeName, nil
}

// handleSheetResource reads the addressed range and renders it as text
func handleSheetResource(ctx context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	account := extractAccountFromContext(ctx)

	spreadsheetID, rangeName, err := parseSheetURI(request.Params.URI)
	if err != nil {
		return nil, err
	}

	logging.WithOperation(slog.Default(), "resources.read_sheet").Debug("serving sheet resource",
		logging.Spreadsheet(spreadsheetID),
		logging.Range(rangeName),
		logging.UserHash(account))

	client, err := sheetsClientForAccount(ctx, account, sc)
	if err != nil {
		return nil, err
	}

	values, err := client.ReadRange(ctx, spreadsheetID, rangeName)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet range: %w", err)
	}

	return []mcp.ResourceContents{
		&mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "text/plain",
			Text:     formatRows(values),
		},
	}, nil
}

// sheetsClientForAccount resolves the Sheets client for the account through
// the server context's token provider, falling back to the request's own
// Google token when the provider cannot serve the account.
func sheetsClientForAccount(ctx context.Context, account string, sc *server.ServerContext) (*sheets.Client, error) {
	if client := sc.SheetsClientForAccount(account); client != nil {
		return client, nil
	}

	if token, ok := oauth.GetGoogleTokenFromContext(ctx); ok && token != nil {
		client, err := sheets.NewClientWithTokenSource(ctx, oauth2.StaticTokenSource(token), account)
		if err != nil {
			return nil, fmt.Errorf("failed to create Sheets client for account %s: %w", account, err)
		}
		return client, nil
	}

	return nil, fmt.Errorf("%s", google.GetAuthenticationErrorMessage(account))
}

// formatRows renders range values as text, one row per line with cells
// joined by " | "
func formatRows(values [][]interface{}) string {
	lines := make([]string, 0, len(values))
	for _, row := range values {
		cells := make([]string, 0, len(row))
		for _, cell := range row {
			cells = append(cells, fmt.Sprintf("%v", cell))
		}
		lines = append(lines, strings.Join(cells, " | "))
	}
	return strings.Join(lines, "\n")
}
