package drive_tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/lonelyoctopus/gsheets-mcp/internal/drive"
	"github.com/lonelyoctopus/gsheets-mcp/internal/server"
	"github.com/lonelyoctopus/gsheets-mcp/internal/tools/common"
)

// registerSpreadsheetListTools registers spreadsheet discovery tools
func registerSpreadsheetListTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	// List spreadsheets tool
	listSpreadsheetsTool := mcp.NewTool("list_spreadsheets",
		mcp.WithDescription("List the user's Google Spreadsheets"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithNumber("max_results",
			mcp.Description("Maximum number of spreadsheets to return (default: 20, max: 1000)"),
		),
		mcp.WithString("name_contains",
			mcp.Description("Only return spreadsheets whose name contains this string"),
		),
		mcp.WithString("order_by",
			mcp.Description("Sort order (e.g., 'modifiedTime desc', 'name')"),
		),
		mcp.WithString("page_token",
			mcp.Description("Page token for retrieving the next page of results"),
		),
	)

	s.AddTool(listSpreadsheetsTool, common.InstrumentedToolHandlerWithService(
		"list_spreadsheets", "drive", "list", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListSpreadsheets(ctx, request, sc)
		}))

	return nil
}

func handleListSpreadsheets(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	client, err := getDriveClient(ctx, account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	options := &drive.ListOptions{
		MaxResults: 20, // default
	}

	if maxResults, ok := args["max_results"].(float64); ok && maxResults > 0 {
		options.MaxResults = int(maxResults)
	}

	if nameContains, ok := args["name_contains"].(string); ok && nameContains != "" {
		options.NameContains = nameContains
	}

	if orderBy, ok := args["order_by"].(string); ok && orderBy != "" {
		options.OrderBy = orderBy
	}

	if pageToken, ok := args["page_token"].(string); ok && pageToken != "" {
		options.PageToken = pageToken
	}

	files, nextPageToken, err := client.ListSpreadsheets(ctx, options)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list spreadsheets: %v", err)), nil
	}

	text, err := formatSpreadsheetList(files, nextPageToken)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to encode spreadsheet list: %v", err)), nil
	}

	return mcp.NewToolResultText(text), nil
}

// formatSpreadsheetList renders the listing as a single JSON document so
// clients can parse the whole tool output; the continuation token rides in
// the same object instead of trailing text.
func formatSpreadsheetList(files []*drive.FileInfo, nextPageToken string) (string, error) {
	if files == nil {
		files = []*drive.FileInfo{}
	}
	page := struct {
		Files         []*drive.FileInfo `json:"files"`
		NextPageToken string            `json:"next_page_token,omitempty"`
	}{Files: files, NextPageToken: nextPageToken}

	result, err := json.MarshalIndent(page, "", "  ")
	if err != nil {
		return "", err
	}
	return string(result), nil
}
