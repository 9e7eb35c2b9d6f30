package cmd

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/lonelyoctopus/gsheets-mcp/internal/instrumentation"
	"github.com/lonelyoctopus/gsheets-mcp/internal/mcp/oauth"
	"github.com/lonelyoctopus/gsheets-mcp/internal/prompts"
	"github.com/lonelyoctopus/gsheets-mcp/internal/resources"
	"github.com/lonelyoctopus/gsheets-mcp/internal/server"
	"github.com/lonelyoctopus/gsheets-mcp/internal/tools/drive_tools"
	"github.com/lonelyoctopus/gsheets-mcp/internal/tools/forms_tools"
	"github.com/lonelyoctopus/gsheets-mcp/internal/tools/google_tools"
	"github.com/lonelyoctopus/gsheets-mcp/internal/tools/sheets_tools"
)

// OAuthSecurityConfig carries the OAuth hardening knobs for the HTTP
// transport. Every field also has an MCP_OAUTH_* environment fallback.
type OAuthSecurityConfig struct {
	AllowPublicClientRegistration bool
	RegistrationAccessToken       string
	AllowInsecureAuthWithoutState bool
	MaxClientsPerIP               int
	TrustProxy                    bool
	AllowedCustomSchemes          []string
}

// MetricsConfig controls the Prometheus endpoint served on its own port.
type MetricsConfig struct {
	Enabled bool
	Addr    string
}

func newServeCmd() *cobra.Command {
	var (
		debugMode          bool
		transport          string
		httpAddr           string
		readOnly           bool
		googleClientID     string
		googleClientSecret string
		disableStreaming   bool
		baseURL            string

		securityConfig OAuthSecurityConfig
		metricsConfig  MetricsConfig
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the Model Context Protocol (MCP) server to provide Google Sheets,
Forms, and Drive tools for AI assistants.

Supports multiple transport types:
  - stdio: Standard input/output (default)
  - streamable-http: Streamable HTTP transport

Safety Mode:
  Write operations (write_sheet, append_sheet, clear_sheet, create_spreadsheet,
  create_form) are enabled by default. Use --read-only to serve only safe
  read operations.

OAuth Configuration:
  HTTP Transport:
    Base URL (required for deployed instances):
      --base-url https://your-domain.com OR MCP_BASE_URL env var
      Auto-detected for localhost (development only)

    Token Refresh (required):
      --google-client-id and --google-client-secret flags
      OR GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET env vars
      Required for OAuth proxy mode and automatic token refresh

  STDIO Transport:
    Tokens are read from the local token store. Run "gsheets-mcp auth login"
    first, or use the google_get_auth_url / google_save_auth_code tools.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			applyMetricsEnv(&metricsConfig,
				cmd.Flags().Changed("metrics-enabled"),
				cmd.Flags().Changed("metrics-addr"))
			return runServe(transport, debugMode, httpAddr, readOnly, googleClientID, googleClientSecret, disableStreaming, baseURL, securityConfig, metricsConfig)
		},
	}

	cmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&transport, "transport", "stdio", "Transport type: stdio or streamable-http")
	cmd.Flags().StringVar(&httpAddr, "http-addr", ":8080", "HTTP server address (for streamable-http transport)")
	cmd.Flags().BoolVar(&readOnly, "read-only", false, "Serve only read operations (disables sheet writes, spreadsheet and form creation)")
	cmd.Flags().StringVar(&googleClientID, "google-client-id", "", "Google OAuth Client ID for automatic token refresh (HTTP transport only). Can also use GOOGLE_CLIENT_ID env var.")
	cmd.Flags().StringVar(&googleClientSecret, "google-client-secret", "", "Google OAuth Client Secret for automatic token refresh (HTTP transport only). Can also use GOOGLE_CLIENT_SECRET env var.")
	cmd.Flags().BoolVar(&disableStreaming, "disable-streaming", false, "Disable streaming for HTTP transport (for compatibility with certain clients)")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "Public base URL for OAuth (HTTP transport only). Required for deployed instances. Can also use MCP_BASE_URL env var. Example: https://mcp.example.com")

	cmd.Flags().BoolVar(&securityConfig.AllowPublicClientRegistration, "oauth-allow-public-registration", false, "WARNING: Allow unauthenticated client registration (NOT recommended for production). Can also use MCP_OAUTH_ALLOW_PUBLIC_REGISTRATION env var. Default: false (secure)")
	cmd.Flags().StringVar(&securityConfig.RegistrationAccessToken, "oauth-registration-token", "", "Registration access token required for client registration when public registration is disabled. Can also use MCP_OAUTH_REGISTRATION_TOKEN env var.")
	cmd.Flags().BoolVar(&securityConfig.AllowInsecureAuthWithoutState, "oauth-allow-no-state", false, "WARNING: Allow authorization without state parameter (weakens CSRF protection). Can also use MCP_OAUTH_ALLOW_NO_STATE env var. Default: false (secure)")
	cmd.Flags().IntVar(&securityConfig.MaxClientsPerIP, "oauth-max-clients-per-ip", 10, "Maximum number of clients that can be registered per IP address (prevents DoS). Can also use MCP_OAUTH_MAX_CLIENTS_PER_IP env var. Default: 10")
	cmd.Flags().BoolVar(&securityConfig.TrustProxy, "oauth-trust-proxy", false, "Trust X-Forwarded-For headers for rate limiting (only behind a trusted reverse proxy). Can also use MCP_OAUTH_TRUST_PROXY env var.")
	cmd.Flags().StringSliceVar(&securityConfig.AllowedCustomSchemes, "oauth-custom-schemes", nil, "URI schemes allowed in redirect URIs in addition to http/https (e.g., cursor,vscode). Can also use MCP_OAUTH_CUSTOM_SCHEMES env var.")

	cmd.Flags().BoolVar(&metricsConfig.Enabled, "metrics-enabled", true, "Enable the metrics server on a dedicated port. Can also use METRICS_ENABLED env var.")
	cmd.Flags().StringVar(&metricsConfig.Addr, "metrics-addr", ":9090", "Metrics server address. Can also use METRICS_ADDR env var.")

	return cmd
}

// applySecurityEnv fills in any security setting left at its zero value from
// the corresponding MCP_OAUTH_* environment variable. Flags win over env.
func applySecurityEnv(sec *OAuthSecurityConfig) {
	if !sec.AllowPublicClientRegistration && os.Getenv("MCP_OAUTH_ALLOW_PUBLIC_REGISTRATION") == "true" {
		sec.AllowPublicClientRegistration = true
	}
	if sec.RegistrationAccessToken == "" {
		sec.RegistrationAccessToken = os.Getenv("MCP_OAUTH_REGISTRATION_TOKEN")
	}
	if !sec.AllowInsecureAuthWithoutState && os.Getenv("MCP_OAUTH_ALLOW_NO_STATE") == "true" {
		sec.AllowInsecureAuthWithoutState = true
	}
	if !sec.TrustProxy && os.Getenv("MCP_OAUTH_TRUST_PROXY") == "true" {
		sec.TrustProxy = true
	}
	if sec.MaxClientsPerIP == 0 {
		if envMax := os.Getenv("MCP_OAUTH_MAX_CLIENTS_PER_IP"); envMax != "" {
			if maxClients, err := strconv.Atoi(envMax); err == nil && maxClients > 0 {
				sec.MaxClientsPerIP = maxClients
			}
		}
		if sec.MaxClientsPerIP == 0 {
			sec.MaxClientsPerIP = 10
		}
	}
	if len(sec.AllowedCustomSchemes) == 0 {
		if schemes := os.Getenv("MCP_OAUTH_CUSTOM_SCHEMES"); schemes != "" {
			sec.AllowedCustomSchemes = parseCommaSeparatedList(schemes)
		}
	}
}

// applyMetricsEnv layers METRICS_ENABLED and METRICS_ADDR under the metrics
// flags. An explicitly set flag wins over the environment; the env var can
// both enable and disable, since the flag defaults to enabled.
func applyMetricsEnv(mc *MetricsConfig, enabledFlagSet, addrFlagSet bool) {
	if !enabledFlagSet {
		switch os.Getenv("METRICS_ENABLED") {
		case "true":
			mc.Enabled = true
		case "false":
			mc.Enabled = false
		}
	}
	if !addrFlagSet {
		if addr := os.Getenv("METRICS_ADDR"); addr != "" {
			mc.Addr = addr
		}
	}
}

func runServe(transport string, debugMode bool, httpAddr string, readOnly bool, googleClientID, googleClientSecret string, disableStreaming bool, baseURL string, securityConfig OAuthSecurityConfig, metricsConfig MetricsConfig) error {
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	applySecurityEnv(&securityConfig)

	if googleClientID == "" {
		googleClientID = os.Getenv("GOOGLE_CLIENT_ID")
	}
	if googleClientSecret == "" {
		googleClientSecret = os.Getenv("GOOGLE_CLIENT_SECRET")
	}

	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		if err := provider.Shutdown(shutdownCtx); err != nil {
			// On stdio, stderr noise would corrupt nothing but still confuses
			// clients that surface it
			if transport != "stdio" {
				log.Printf("Error during instrumentation shutdown: %v", err)
			}
		}
	}()

	var metricsServer *server.MetricsServer
	if transport != "stdio" && metricsConfig.Enabled && provider.Enabled() {
		metricsServer, err = startMetricsServer(metricsConfig, provider)
		if err != nil {
			return err
		}
	}

	serverContext, err := server.NewServerContext(shutdownCtx)
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}

	if provider.Enabled() {
		serverContext.SetMetrics(provider.Metrics())
		serverContext.SetAuditLogger(instrumentation.NewAuditLoggerWithConfig(nil, instrConfig.AuditLogging))
	}
	defer func() {
		// Metrics server first so the final scrape still sees the process up
		if metricsServer != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				log.Printf("Error during metrics server shutdown: %v", err)
			}
		}
		if err := serverContext.Shutdown(); err != nil {
			if transport != "stdio" {
				log.Printf("Error during server context shutdown: %v", err)
			}
		}
	}()

	mcpSrv := mcpserver.NewMCPServer("gsheets", version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithResourceCapabilities(false, false),
		mcpserver.WithPromptCapabilities(false),
	)

	if transport != "stdio" {
		if readOnly {
			log.Println("Starting server in READ-ONLY mode (write tools disabled)")
		} else {
			log.Println("Starting server with write operations enabled (use --read-only to disable)")
		}
	}

	if err := registerAll(mcpSrv, serverContext, readOnly); err != nil {
		return err
	}

	switch transport {
	case "stdio":
		return runStdioServer(mcpSrv)
	case "streamable-http":
		fmt.Printf("Starting gsheets MCP server with %s transport...\n", transport)
		return runStreamableHTTPServer(mcpSrv, serverContext, httpAddr, shutdownCtx, googleClientID, googleClientSecret, readOnly, disableStreaming, baseURL, securityConfig, metricsConfig, provider)
	default:
		return fmt.Errorf("unsupported transport type: %s (supported: stdio, streamable-http)", transport)
	}
}

// startMetricsServer starts the metrics endpoint and blocks until it is
// actually listening, so a bad metrics address fails the whole serve command
// instead of surfacing minutes later on the first scrape.
func startMetricsServer(metricsConfig MetricsConfig, provider *instrumentation.Provider) (*server.MetricsServer, error) {
	metricsServer, err := server.NewMetricsServer(server.MetricsServerConfig{
		Addr:                    metricsConfig.Addr,
		Enabled:                 true,
		InstrumentationProvider: provider,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics server: %w", err)
	}

	metricsReady := make(chan struct{})
	metricsErr := make(chan error, 1)
	go func() {
		if err := metricsServer.StartWithReadySignal(metricsReady); err != nil && err != http.ErrServerClosed {
			metricsErr <- err
		}
		close(metricsErr)
	}()

	select {
	case <-metricsReady:
		log.Printf("Metrics server started on %s", metricsServer.Addr())
	case err := <-metricsErr:
		return nil, fmt.Errorf("metrics server failed to start: %w", err)
	case <-time.After(5 * time.Second):
		return nil, fmt.Errorf("metrics server startup timed out")
	}

	return metricsServer, nil
}

func runStdioServer(mcpSrv *mcpserver.MCPServer) error {
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			serverDone <- err
		}
	}()

	if err := <-serverDone; err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}

// registerAll wires every tool package, the sheet resource template, and the
// prompt set onto the MCP server.
func registerAll(mcpSrv *mcpserver.MCPServer, ctx *server.ServerContext, readOnly bool) error {
	type registration struct {
		name     string
		register func() error
	}

	registrations := []registration{
		{
			name: "Sheets",
			register: func() error {
				return sheets_tools.RegisterSheetsTools(mcpSrv, ctx, readOnly)
			},
		},
		{
			name: "Forms",
			register: func() error {
				return forms_tools.RegisterFormsTools(mcpSrv, ctx, readOnly)
			},
		},
		{
			name: "Drive",
			register: func() error {
				return drive_tools.RegisterDriveTools(mcpSrv, ctx)
			},
		},
		{
			name: "Google Auth",
			register: func() error {
				return google_tools.RegisterGoogleTools(mcpSrv, ctx)
			},
		},
		{
			name: "Sheet Resources",
			register: func() error {
				return resources.RegisterSheetResources(mcpSrv, ctx)
			},
		},
		{
			name: "Prompts",
			register: func() error {
				return prompts.RegisterPrompts(mcpSrv)
			},
		},
	}

	for _, reg := range registrations {
		if err := reg.register(); err != nil {
			return fmt.Errorf("failed to register %s: %w", reg.name, err)
		}
	}

	return nil
}

// resolveBaseURL picks the public base URL: flag, then MCP_BASE_URL, then a
// localhost guess that only makes sense for development.
func resolveBaseURL(baseURL, addr string) string {
	if baseURL == "" {
		baseURL = os.Getenv("MCP_BASE_URL")
	}
	if baseURL == "" {
		baseURL = fmt.Sprintf("http://%s", addr)
		if addr[0] == ':' {
			baseURL = fmt.Sprintf("http://localhost%s", addr)
		}
		log.Printf("No base URL configured, using auto-detected: %s", baseURL)
		log.Printf("For deployed instances, set --base-url flag or MCP_BASE_URL env var")
	} else {
		log.Printf("Using configured base URL: %s", baseURL)
	}
	return baseURL
}

func runStreamableHTTPServer(mcpSrv *mcpserver.MCPServer, oldServerContext *server.ServerContext, addr string, ctx context.Context, googleClientID, googleClientSecret string, readOnly bool, disableStreaming bool, baseURL string, securityConfig OAuthSecurityConfig, metricsConfig MetricsConfig, instrProvider *instrumentation.Provider) error {
	baseURL = resolveBaseURL(baseURL, addr)

	oauthConfig := server.OAuthConfig{
		BaseURL:                       baseURL,
		GoogleClientID:                googleClientID,
		GoogleClientSecret:            googleClientSecret,
		DisableStreaming:              disableStreaming,
		AllowPublicClientRegistration: securityConfig.AllowPublicClientRegistration,
		RegistrationAccessToken:       securityConfig.RegistrationAccessToken,
		AllowInsecureAuthWithoutState: securityConfig.AllowInsecureAuthWithoutState,
		MaxClientsPerIP:               securityConfig.MaxClientsPerIP,
		TrustProxy:                    securityConfig.TrustProxy,
		AllowedCustomSchemes:          securityConfig.AllowedCustomSchemes,
	}

	oauthHandler, err := server.CreateOAuthHandler(oauthConfig)
	if err != nil {
		return fmt.Errorf("failed to create OAuth handler: %w", err)
	}

	// The Google API clients must see tokens minted by the OAuth flow, not
	// the file store, so the server context is rebuilt around a provider
	// backed by the OAuth token store
	tokenProvider := oauth.NewTokenProvider(oauthHandler.GetStore())

	if err := oldServerContext.Shutdown(); err != nil {
		log.Printf("Warning: failed to shutdown old server context: %v", err)
	}

	serverContext, err := server.NewServerContextWithProvider(ctx, tokenProvider)
	if err != nil {
		return fmt.Errorf("failed to create server context with OAuth token provider: %w", err)
	}
	defer func() {
		if err := serverContext.Shutdown(); err != nil {
			log.Printf("Error during server context shutdown: %v", err)
		}
	}()

	if instrProvider != nil && instrProvider.Enabled() {
		serverContext.SetMetrics(instrProvider.Metrics())
		auditConfig := instrumentation.AuditLoggingConfig{
			Enabled:    true,
			IncludePII: os.Getenv("AUDIT_LOGGING_INCLUDE_PII") == "true",
		}
		serverContext.SetAuditLogger(instrumentation.NewAuditLoggerWithConfig(nil, auditConfig))
	}

	// Tools registered against the old context point at the wrong clients,
	// re-register everything with the rebuilt one
	if err := registerAll(mcpSrv, serverContext, readOnly); err != nil {
		return err
	}

	oauthServer, err := server.NewOAuthHTTPServerWithHandler(mcpSrv, "streamable-http", oauthHandler, disableStreaming)
	if err != nil {
		return fmt.Errorf("failed to create OAuth HTTP server: %w", err)
	}

	oauthServer.SetHealthChecker(server.NewHealthChecker(serverContext))

	if instrProvider != nil && instrProvider.Enabled() {
		oauthServer.SetMetrics(instrProvider.Metrics())
	}

	fmt.Printf("Streamable HTTP server with Google OAuth authentication starting on %s\n", addr)
	fmt.Printf("  HTTP endpoint: /mcp\n")
	fmt.Printf("  Health endpoints: /healthz, /readyz\n")
	fmt.Printf("  OAuth metadata: /.well-known/oauth-protected-resource\n")
	fmt.Printf("  Authorization Server: %s\n", baseURL)
	if metricsConfig.Enabled {
		fmt.Printf("  Metrics endpoint: %s/metrics\n", metricsConfig.Addr)
	}

	if googleClientID != "" && googleClientSecret != "" {
		fmt.Println("\nAutomatic token refresh: ENABLED")
		fmt.Println("  Tokens will be refreshed automatically before expiration")
	} else {
		fmt.Println("\nAutomatic token refresh: DISABLED")
		fmt.Println("  Users will need to re-authenticate when tokens expire (~1 hour)")
		fmt.Println("  To enable, provide --google-client-id and --google-client-secret")
	}

	fmt.Println("\nClients must authenticate with Google OAuth to access this server.")
	fmt.Println("The MCP client (e.g., Cursor, Claude Desktop) will handle the OAuth flow automatically.")

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := oauthServer.Start(addr); err != nil && err != http.ErrServerClosed {
			serverDone <- err
		}
	}()

	select {
	case <-ctx.Done():
		fmt.Println("Shutdown signal received, stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := oauthServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error shutting down HTTP server: %w", err)
		}
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("HTTP server stopped with error: %w", err)
		}
		fmt.Println("HTTP server stopped normally")
	}

	fmt.Println("HTTP server gracefully stopped")
	return nil
}

// parseCommaSeparatedList splits on commas, trims whitespace, and drops empty
// entries. All-empty input yields nil.
func parseCommaSeparatedList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			result = append(result, p)
		}
	}
	if len(result) == 0 {
		return nil
	}
	return result
}
