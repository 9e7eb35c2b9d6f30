package sheets_tools

import (
	"context"
	"encoding/json"
	"fmt"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"golang.org/x/oauth2"

	"github.com/lonelyoctopus/gsheets-mcp/internal/google"
	"github.com/lonelyoctopus/gsheets-mcp/internal/mcp/oauth"
	"github.com/lonelyoctopus/gsheets-mcp/internal/server"
	"github.com/lonelyoctopus/gsheets-mcp/internal/sheets"
)

// getSheetsClient resolves the Sheets client for the account. The server
// context builds clients off its token provider; when that yields nothing
// but the request itself carries an authenticated Google token (for example
// the store rejected the save), an uncached client serves this call.
func getSheetsClient(ctx context.Context, account string, sc *server.ServerContext) (*sheets.Client, error) {
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

// parseValues converts the raw values argument into a 2-D slice of cell
// values. MCP clients send either a nested JSON array or a JSON-encoded
// string, so both are accepted.
func parseValues(raw interface{}) ([][]interface{}, error) {
	switch v := raw.(type) {
	case nil:
		return nil, fmt.Errorf("values is required")
	case string:
		if v == "" {
			return nil, fmt.Errorf("values is required")
		}
		var rows [][]interface{}
		if err := json.Unmarshal([]byte(v), &rows); err != nil {
			return nil, fmt.Errorf("values must be a JSON array of rows: %v", err)
		}
		return rows, nil
	case []interface{}:
		rows := make([][]interface{}, 0, len(v))
		for i, rowVal := range v {
			row, ok := rowVal.([]interface{})
			if !ok {
				return nil, fmt.Errorf("values[%d] must be an array of cell values", i)
			}
			rows = append(rows, row)
		}
		return rows, nil
	default:
		return nil, fmt.Errorf("values must be an array of rows")
	}
}

// RegisterSheetsTools registers all Google Sheets-related tools with the MCP server
func RegisterSheetsTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	// Register range read tools
	if err := registerReadTools(s, sc); err != nil {
		return fmt.Errorf("failed to register read tools: %w", err)
	}

	// Register range write and spreadsheet creation tools
	if err := registerWriteTools(s, sc, readOnly); err != nil {
		return fmt.Errorf("failed to register write tools: %w", err)
	}

	return nil
}
