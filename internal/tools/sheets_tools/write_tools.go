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

// registerWriteTools registers range write and spreadsheet creation tools
func registerWriteTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	// Write tools are only registered if not in read-only mode
	if readOnly {
		return nil
	}

	// Write sheet tool
	writeSheetTool := mcp.NewTool("write_sheet",
		mcp.WithDescription("Write data to a Google Sheet, overwriting the target range"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("spreadsheet_id",
			mcp.Required(),
			mcp.Description("The ID of the spreadsheet"),
		),
		mcp.WithString("range",
			mcp.Required(),
			mcp.Description("The A1 notation of where to write"),
		),
		mcp.WithArray("values",
			mcp.Required(),
			mcp.Description("2D array of values to write, one inner array per row"),
		),
	)

	s.AddTool(writeSheetTool, common.InstrumentedToolHandlerWithService(
		"write_sheet", "sheets", "write", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleWriteSheet(ctx, request, sc)
		}))

	// Append sheet tool
	appendSheetTool := mcp.NewTool("append_sheet",
		mcp.WithDescription("Append data after the last row of a table in a Google Sheet"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("spreadsheet_id",
			mcp.Required(),
			mcp.Description("The ID of the spreadsheet"),
		),
		mcp.WithString("range",
			mcp.Required(),
			mcp.Description("The A1 notation of the table range"),
		),
		mcp.WithArray("values",
			mcp.Required(),
			mcp.Description("2D array of values to append, one inner array per row"),
		),
	)

	s.AddTool(appendSheetTool, common.InstrumentedToolHandlerWithService(
		"append_sheet", "sheets", "append", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleAppendSheet(ctx, request, sc)
		}))

	// Clear sheet tool
	clearSheetTool := mcp.NewTool("clear_sheet",
		mcp.WithDescription("Clear all values from a range in a Google Sheet"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("spreadsheet_id",
			mcp.Required(),
			mcp.Description("The ID of the spreadsheet"),
		),
		mcp.WithString("range",
			mcp.Required(),
			mcp.Description("The A1 notation of the range to clear"),
		),
	)

	s.AddTool(clearSheetTool, common.InstrumentedToolHandlerWithService(
		"clear_sheet", "sheets", "clear", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleClearSheet(ctx, request, sc)
		}))

	// Create spreadsheet tool
	createSpreadsheetTool := mcp.NewTool("create_spreadsheet",
		mcp.WithDescription("Create a new Google Spreadsheet"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("The title of the new spreadsheet"),
		),
	)

	s.AddTool(createSpreadsheetTool, common.InstrumentedToolHandlerWithService(
		"create_spreadsheet", "sheets", "create", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCreateSpreadsheet(ctx, request, sc)
		}))

	return nil
}

func handleWriteSheet(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	spreadsheetID, ok := args["spreadsheet_id"].(string)
	if !ok || spreadsheetID == "" {
		return mcp.NewToolResultError("spreadsheet_id is required"), nil
	}

	rangeName, ok := args["range"].(string)
	if !ok || rangeName == "" {
		return mcp.NewToolResultError("range is required"), nil
	}

	values, err := parseValues(args["values"])
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, err := getSheetsClient(ctx, account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := client.WriteRange(ctx, spreadsheetID, rangeName, values)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to write sheet: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Updated %d cells", result.UpdatedCells)), nil
}

func handleAppendSheet(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	spreadsheetID, ok := args["spreadsheet_id"].(string)
	if !ok || spreadsheetID == "" {
		return mcp.NewToolResultError("spreadsheet_id is required"), nil
	}

	rangeName, ok := args["range"].(string)
	if !ok || rangeName == "" {
		return mcp.NewToolResultError("range is required"), nil
	}

	values, err := parseValues(args["values"])
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, err := getSheetsClient(ctx, account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := client.AppendRange(ctx, spreadsheetID, rangeName, values)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to append sheet: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Appended %d cells", result.UpdatedCells)), nil
}

func handleClearSheet(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	spreadsheetID, ok := args["spreadsheet_id"].(string)
	if !ok || spreadsheetID == "" {
		return mcp.NewToolResultError("spreadsheet_id is required"), nil
	}

	rangeName, ok := args["range"].(string)
	if !ok || rangeName == "" {
		return mcp.NewToolResultError("range is required"), nil
	}

	client, err := getSheetsClient(ctx, account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := client.ClearRange(ctx, spreadsheetID, rangeName)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to clear sheet: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Cleared range %s", result.ClearedRange)), nil
}

func handleCreateSpreadsheet(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	title, ok := args["title"].(string)
	if !ok || title == "" {
		return mcp.NewToolResultError("title is required"), nil
	}

	client, err := getSheetsClient(ctx, account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	info, err := client.CreateSpreadsheet(ctx, title)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create spreadsheet: %v", err)), nil
	}

	result, _ := json.MarshalIndent(map[string]string{
		"spreadsheetId":  info.SpreadsheetID,
		"spreadsheetUrl": info.SpreadsheetURL,
	}, "", "  ")
	return mcp.NewToolResultText(string(result)), nil
}
