package cmd

import (
	"context"
	"fmt"
	"os"
	"slices"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/lonelyoctopus/gsheets-mcp/internal/server"
	"github.com/lonelyoctopus/gsheets-mcp/internal/tools/drive_tools"
	"github.com/lonelyoctopus/gsheets-mcp/internal/tools/forms_tools"
	"github.com/lonelyoctopus/gsheets-mcp/internal/tools/google_tools"
	"github.com/lonelyoctopus/gsheets-mcp/internal/tools/sheets_tools"
)

func newGenerateDocsCmd() *cobra.Command {
	var outputFile string

	cmd := &cobra.Command{
		Use:   "generate-docs",
		Short: "Generate MCP tool documentation",
		Long: `Generate markdown documentation for all available MCP tools.
This command introspects the registered tools and outputs their documentation
in markdown format, ensuring the documentation is always accurate and in sync
with the actual tool implementations.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerateDocs(outputFile)
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")

	return cmd
}

func runGenerateDocs(outputFile string) error {
	// Doc generation only needs the tool schemas, no Google credentials
	ctx := context.Background()
	serverContext, err := server.NewServerContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() {
		_ = serverContext.Shutdown()
	}()

	mcpSrv := mcpserver.NewMCPServer("gsheets", version,
		mcpserver.WithToolCapabilities(true),
	)

	// Write tools included so the docs cover the full surface
	readOnly := false

	if err := sheets_tools.RegisterSheetsTools(mcpSrv, serverContext, readOnly); err != nil {
		return fmt.Errorf("failed to register Sheets tools: %w", err)
	}

	if err := forms_tools.RegisterFormsTools(mcpSrv, serverContext, readOnly); err != nil {
		return fmt.Errorf("failed to register Forms tools: %w", err)
	}

	if err := drive_tools.RegisterDriveTools(mcpSrv, serverContext); err != nil {
		return fmt.Errorf("failed to register Drive tools: %w", err)
	}

	if err := google_tools.RegisterGoogleTools(mcpSrv, serverContext); err != nil {
		return fmt.Errorf("failed to register Google auth tools: %w", err)
	}

	serverTools := mcpSrv.ListTools()
	tools := make([]mcp.Tool, 0, len(serverTools))
	for _, serverTool := range serverTools {
		tools = append(tools, serverTool.Tool)
	}

	markdown := generateToolsMarkdown(tools)

	if outputFile != "" {
		if err := os.WriteFile(outputFile, []byte(markdown), 0644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Documentation written to: %s\n", outputFile)
	} else {
		fmt.Print(markdown)
	}

	return nil
}

func generateToolsMarkdown(tools []mcp.Tool) string {
	var sb strings.Builder

	sb.WriteString("# MCP Tools Reference\n\n")
	sb.WriteString("This document provides a complete reference of all tools available when running gsheets-mcp as an MCP server.\n\n")
	sb.WriteString("**Note:** This documentation is automatically generated from the tool definitions.\n\n")

	toolsByCategory := groupToolsByCategory(tools)

	sb.WriteString("## Table of Contents\n\n")
	categories := make([]string, 0, len(toolsByCategory))
	for category := range toolsByCategory {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	for _, category := range categories {
		anchor := strings.ToLower(strings.ReplaceAll(category, " ", "-"))
		sb.WriteString(fmt.Sprintf("- [%s](#%s)\n", category, anchor))
	}
	sb.WriteString("\n")

	sb.WriteString("## Multi-Account Support\n\n")
	sb.WriteString("All Google-related MCP tools support an optional `account` parameter to specify which Google account to use:\n\n")
	sb.WriteString("- **Default behavior:** If `account` is not specified, the `default` account is used\n")
	sb.WriteString("- **Multiple accounts:** You can manage multiple Google accounts (e.g., `work`, `personal`)\n")
	sb.WriteString("- **Per-tool specification:** Each tool call can use a different account\n\n")

	for _, category := range categories {
		categoryTools := toolsByCategory[category]
		sort.Slice(categoryTools, func(i, j int) bool {
			return categoryTools[i].Name < categoryTools[j].Name
		})

		sb.WriteString(fmt.Sprintf("## %s\n\n", category))

		for _, tool := range categoryTools {
			sb.WriteString(generateToolMarkdown(tool))
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

func groupToolsByCategory(tools []mcp.Tool) map[string][]mcp.Tool {
	categories := make(map[string][]mcp.Tool)

	for _, tool := range tools {
		category := getCategoryFromToolName(tool.Name)
		categories[category] = append(categories[category], tool)
	}

	return categories
}

func getCategoryFromToolName(name string) string {
	switch name {
	case "read_sheet", "write_sheet", "append_sheet", "clear_sheet",
		"create_spreadsheet", "get_spreadsheet_info":
		return "Google Sheets Tools"
	case "create_form", "get_form", "list_form_responses":
		return "Google Forms Tools"
	case "list_spreadsheets":
		return "Google Drive Tools"
	}
	if strings.HasPrefix(name, "google_") {
		return "Authentication Tools"
	}
	return "Other"
}

func generateToolMarkdown(tool mcp.Tool) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("### %s\n\n", tool.Name))

	if tool.Description != "" {
		sb.WriteString(fmt.Sprintf("%s\n\n", tool.Description))
	}

	if len(tool.InputSchema.Properties) > 0 {
		sb.WriteString("**Arguments:**\n")

		// Sorted so regenerating the docs yields a stable diff
		propNames := make([]string, 0, len(tool.InputSchema.Properties))
		for name := range tool.InputSchema.Properties {
			propNames = append(propNames, name)
		}
		sort.Strings(propNames)

		for _, name := range propNames {
			propMap, ok := tool.InputSchema.Properties[name].(map[string]interface{})
			if !ok {
				continue
			}

			requiredStr := "optional"
			if slices.Contains(tool.InputSchema.Required, name) {
				requiredStr = "required"
			}

			sb.WriteString(fmt.Sprintf("- `%s` (%s): ", name, requiredStr))

			if desc, ok := propMap["description"].(string); ok {
				sb.WriteString(desc)
			} else {
				sb.WriteString(fmt.Sprintf("%s parameter", getPropertyType(propMap)))
			}

			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func getPropertyType(prop map[string]interface{}) string {
	if t, ok := prop["type"].(string); ok {
		return t
	}
	return "any"
}
