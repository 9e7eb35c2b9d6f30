package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the gsheets-mcp application
var rootCmd = &cobra.Command{
	Use:   "gsheets-mcp",
	Short: "MCP server for Google Sheets, Forms, and Drive",
	Long: `gsheets-mcp exposes Google Sheets, Forms, and Drive operations as
Model Context Protocol (MCP) tools for AI assistants.

It can run as:
  - An MCP server over stdio (default)
  - An MCP server over streamable HTTP with OAuth authentication`,
	SilenceUsage: true,
}

// stamped by main at startup
var version = "dev"

// SetVersion injects the build version stamped at link time.
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute runs the root command and is the single entry point from main.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "gsheets-mcp version %s\n" .Version}}`)

	// If no subcommand is provided, run the serve command by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("gsheets-mcp version %s\n", version)
		},
	}
}

func init() {
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newGenerateDocsCmd())
}
