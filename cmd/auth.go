package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lonelyoctopus/gsheets-mcp/internal/google"
)

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage Google account authentication",
		Long: `Manage Google OAuth tokens for the local token store.

These tokens are used by the stdio transport. The streamable-http transport
authenticates clients through its own OAuth flow and does not use this store.`,
	}

	cmd.AddCommand(newAuthLoginCmd())
	cmd.AddCommand(newAuthStatusCmd())
	cmd.AddCommand(newAuthRevokeCmd())

	return cmd
}

func newAuthLoginCmd() *cobra.Command {
	var account string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate a Google account",
		Long: `Authenticate a Google account for Sheets, Forms, and Drive access.

Prints an authorization URL to open in your browser. After granting access,
paste the verification code back here to complete authentication.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			authURL := google.GetAuthURLForAccount(account)
			fmt.Printf("Open the following URL in your browser to authorize account %q:\n\n", account)
			fmt.Printf("  %s\n\n", authURL)
			fmt.Print("Enter the verification code: ")

			reader := bufio.NewReader(os.Stdin)
			code, err := reader.ReadString('\n')
			if err != nil {
				return fmt.Errorf("failed to read verification code: %w", err)
			}
			code = strings.TrimSpace(code)
			if code == "" {
				return fmt.Errorf("verification code is empty")
			}

			if err := google.SaveTokenForAccount(cmd.Context(), code, account); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			fmt.Printf("Successfully authenticated account %q.\n", account)
			return nil
		},
	}

	cmd.Flags().StringVar(&account, "account", "default", "Account identifier for multi-account support")

	return cmd
}

func newAuthStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show authenticated accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			accounts, err := google.ListAccounts()
			if err != nil {
				return fmt.Errorf("failed to list accounts: %w", err)
			}
			if len(accounts) == 0 {
				fmt.Println("No authenticated accounts found. Run \"gsheets-mcp auth login\" to authenticate.")
				return nil
			}
			fmt.Println("Authenticated accounts:")
			for _, account := range accounts {
				status := "token missing"
				if google.HasTokenForAccount(account) {
					status = "ok"
				}
				fmt.Printf("  %s (%s)\n", account, status)
			}
			return nil
		},
	}
}

func newAuthRevokeCmd() *cobra.Command {
	var account string

	cmd := &cobra.Command{
		Use:   "revoke",
		Short: "Remove stored credentials for an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !google.HasTokenForAccount(account) {
				fmt.Printf("No stored token for account %q.\n", account)
				return nil
			}
			if err := google.DeleteTokenForAccount(account); err != nil {
				return fmt.Errorf("failed to delete token: %w", err)
			}
			fmt.Printf("Removed stored token for account %q.\n", account)
			return nil
		},
	}

	cmd.Flags().StringVar(&account, "account", "default", "Account identifier for multi-account support")

	return cmd
}
