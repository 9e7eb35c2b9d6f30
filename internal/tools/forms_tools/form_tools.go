package forms_tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/lonelyoctopus/gsheets-mcp/internal/server"
	"github.com/lonelyoctopus/gsheets-mcp/internal/tools/batch"
	"github.com/lonelyoctopus/gsheets-mcp/internal/tools/common"
)

// registerFormTools registers form creation and inspection tools
func registerFormTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	// Register write tools only if not in read-only mode
	if !readOnly {
		// Create form tool
		createFormTool := mcp.NewTool("create_form",
			mcp.WithDescription("Create a new Google Form"),
			mcp.WithString("account",
				mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
			),
			mcp.WithString("title",
				mcp.Required(),
				mcp.Description("The title of the form"),
			),
			mcp.WithString("description",
				mcp.Description("Optional description for the form"),
			),
		)

		s.AddTool(createFormTool, common.InstrumentedToolHandlerWithService(
			"create_form", "forms", "create", sc,
			func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				return handleCreateForm(ctx, request, sc)
			}))
	}

	// Get forms tool (read-only, always available)
	getFormTool := mcp.NewTool("get_form",
		mcp.WithDescription("Get metadata for one or more Google Forms"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("form_id",
			mcp.Required(),
			mcp.Description("Form ID (string) or array of form IDs to retrieve"),
		),
	)

	s.AddTool(getFormTool, common.InstrumentedToolHandlerWithService(
		"get_form", "forms", "get", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetForm(ctx, request, sc)
		}))

	// List form responses tool
	listResponsesTool := mcp.NewTool("list_form_responses",
		mcp.WithDescription("List submitted responses for a Google Form"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("form_id",
			mcp.Required(),
			mcp.Description("The ID of the form"),
		),
	)

	s.AddTool(listResponsesTool, common.InstrumentedToolHandlerWithService(
		"list_form_responses", "forms", "list", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListFormResponses(ctx, request, sc)
		}))

	return nil
}

func handleCreateForm(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	title, ok := args["title"].(string)
	if !ok || title == "" {
		return mcp.NewToolResultError("title is required"), nil
	}

	description := ""
	if d, ok := args["description"].(string); ok {
		description = d
	}

	client, err := getFormsClient(ctx, account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	info, err := client.CreateForm(ctx, title, description)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create form: %v", err)), nil
	}

	result, _ := json.MarshalIndent(map[string]string{
		"formId":       info.FormID,
		"responderUri": info.ResponderURI,
	}, "", "  ")
	return mcp.NewToolResultText(string(result)), nil
}

func handleGetForm(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	formIDs, err := batch.ParseStringOrArray(args["form_id"], "form_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, err := getFormsClient(ctx, account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	results := batch.ProcessBatch(formIDs, func(formID string) (string, error) {
		info, err := client.GetForm(ctx, formID)
		if err != nil {
			return "", err
		}
		data, _ := json.MarshalIndent(info, "", "  ")
		return string(data), nil
	})

	return mcp.NewToolResultText(batch.FormatResults(results)), nil
}

func handleListFormResponses(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(ctx, args)

	formID, ok := args["form_id"].(string)
	if !ok || formID == "" {
		return mcp.NewToolResultError("form_id is required"), nil
	}

	client, err := getFormsClient(ctx, account, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	responses, err := client.ListResponses(ctx, formID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list form responses: %v", err)), nil
	}

	result, _ := json.MarshalIndent(responses, "", "  ")
	return mcp.NewToolResultText(string(result)), nil
}
