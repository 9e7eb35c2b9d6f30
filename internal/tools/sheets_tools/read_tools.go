package sheets_tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/lonelyoctopus/gsheets-mcp/internal/server"
	"github.com/lonelyoctopus/gsheets-mcp/internal/tools/common"
)

// registerReadTools registers range and metadata read tools
func registerReadTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	// Read sheet tool
	readSheetTool := mcp.NewTool("read_sheet",
		mcp.WithDescription("Read data from a Google Sheet"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("spreadsheet_id",
			mcp.Required(),
			mcp.Description("The ID of the spreadsheet (from the URL)"),
		),
		mcp.WithString("range",
			mcp.Description("The A1 notation of the range to read (default: Sheet1)"),
		),
	)

	s.AddTool(readSheetTool, common.InstrumentedToolHandlerWithService(
		"read_sheet", "sheets", "read", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleReadSheet(ctx, request, sc)
		}))

	// Get spreadsheet info tool
	getInfoTool := mcp.NewTool("get_spreadsheet_info",
		mcp.WithDescription("Get metadata about a Google Spreadsheet: title, sheets, and URL"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("spreadsheet_id",
			mcp.Required(),
			mcp.Description("The ID of the spreadsheet (from the URL)"),
		),
	)

	s.AddTool(getInfoTool, common.InstrumentedToolHandlerWithService(
		"get_spreadsheet_info", "sheets", "get", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetSpreadsheetInfo(ctx, request, sc)
		}))

	return nil
}

func handleReadSheet(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	spreadsheetID, ok := args["spreadsheet_id"].(string)
	if !ok || spreadsheetID == "" {
		return mcp.NewToolResultError("spreadsheet_id is required"), nil
	}

	rangeName := "Sheet1"
	if r, ok := args["range"].(string); ok && r != "" {
		rangeName = r
	}

	client, err := getSheetsClient(ctx, account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	values, err := client.ReadRange(ctx, spreadsheetID, rangeName)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to read sheet: %v", err)), nil
	}

	result, _ := json.MarshalIndent(values, "", "  ")
	return mcp.NewToolResultText(string(result)), nil
}

func handleGetSpreadsheetInfo(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	spreadsheetID, ok := args["spreadsheet_id"].(string)
	if !ok || spreadsheetID == "" {
		return mcp.NewToolResultError("spreadsheet_id is required"), nil
	}

	client, err := getSheetsClient(ctx, account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	info, err := client.GetSpreadsheetInfo(ctx, spreadsheetID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get spreadsheet info: %v", err)), nil
	}

	result, _ := json.MarshalIndent(info, "", "  ")
	return mcp.NewToolResultText(string(result)), nil
}
