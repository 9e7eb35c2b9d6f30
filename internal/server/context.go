package server

import (
	"context"
	"log/slog"
	"sync"

	"github.com/lonelyoctopus/gsheets-mcp/internal/drive"
	"github.com/lonelyoctopus/gsheets-mcp/internal/forms"
	"github.com/lonelyoctopus/gsheets-mcp/internal/google"
	"github.com/lonelyoctopus/gsheets-mcp/internal/instrumentation"
	"github.com/lonelyoctopus/gsheets-mcp/internal/logging"
	"github.com/lonelyoctopus/gsheets-mcp/internal/sheets"
)

// ServerContext holds the shared state for the MCP server: lazily created
// per-account Google API clients, the token provider feeding them, and the
// observability hooks used by instrumented tool handlers.
type ServerContext struct {
	ctx           context.Context
	cancel        context.CancelFunc
	sheetsClients map[string]*sheets.Client // Maps account name to Sheets client
	formsClients  map[string]*forms.Client  // Maps account name to Forms client
	driveClients  map[string]*drive.Client  // Maps account name to Drive client
	tokenProvider google.TokenProvider
	metrics       *instrumentation.Metrics
	auditLogger   *instrumentation.AuditLogger
	mu            sync.RWMutex
	shutdown      bool
}

// NewServerContext creates a new server context backed by file tokens.
func NewServerContext(ctx context.Context) (*ServerContext, error) {
	return NewServerContextWithProvider(ctx, google.NewFileTokenProvider())
}

// NewServerContextWithProvider creates a new server context with a custom
// token provider. The HTTP transport passes an OAuth-store-backed provider
// here so tokens minted by the authorization flow reach the API clients.
func NewServerContextWithProvider(ctx context.Context, provider google.TokenProvider) (*ServerContext, error) {
	shutdownCtx, cancel := context.WithCancel(ctx)

	sc := &ServerContext{
		ctx:           shutdownCtx,
		cancel:        cancel,
		sheetsClients: make(map[string]*sheets.Client),
		formsClients:  make(map[string]*forms.Client),
		driveClients:  make(map[string]*drive.Client),
		tokenProvider: provider,
	}

	// Eagerly create the default Sheets client when the provider already
	// holds a token; failure is not fatal, creation is re-attempted on
	// first use.
	if provider != nil && provider.HasTokenForAccount(google.DefaultAccount) {
		ts := google.TokenSourceForProvider(shutdownCtx, provider, google.DefaultAccount)
		client, err := sheets.NewClientWithTokenSource(shutdownCtx, ts, google.DefaultAccount)
		if err != nil {
			slog.Warn("failed to create Sheets client for default account", logging.Err(err))
		} else {
			sc.sheetsClients[google.DefaultAccount] = client
		}
	}

	return sc, nil
}

// Context returns the lifetime context shared by background work.
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// TokenProvider returns the configured token provider
func (sc *ServerContext) TokenProvider() google.TokenProvider {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.tokenProvider
}

// SetMetrics sets the metrics recorder used by instrumented tool handlers
func (sc *ServerContext) SetMetrics(m *instrumentation.Metrics) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.metrics = m
}

// Metrics returns the metrics recorder, or nil if instrumentation is off
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.metrics
}

// SetAuditLogger sets the audit logger used by instrumented tool handlers
func (sc *ServerContext) SetAuditLogger(al *instrumentation.AuditLogger) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.auditLogger = al
}

// AuditLogger returns the audit logger, or nil if audit logging is off
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.auditLogger
}

// SheetsClientForAccount returns the cached Sheets client for the account,
// constructing one on first use off the configured token provider. Accounts
// the provider has no token for get nil.
func (sc *ServerContext) SheetsClientForAccount(account string) *sheets.Client {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if client, ok := sc.sheetsClients[account]; ok {
		return client
	}

	if sc.tokenProvider == nil || !sc.tokenProvider.HasTokenForAccount(account) {
		return nil
	}

	ts := google.TokenSourceForProvider(sc.ctx, sc.tokenProvider, account)
	client, err := sheets.NewClientWithTokenSource(sc.ctx, ts, account)
	if err != nil {
		slog.Warn("failed to create Sheets client", logging.Account(account), logging.Err(err))
		return nil
	}

	sc.sheetsClients[account] = client
	return client
}

// SheetsClient returns the Sheets client for the default account
func (sc *ServerContext) SheetsClient() *sheets.Client {
	return sc.SheetsClientForAccount(google.DefaultAccount)
}

// SetSheetsClientForAccount sets the Sheets client for a specific account
func (sc *ServerContext) SetSheetsClientForAccount(account string, client *sheets.Client) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.sheetsClients[account] = client
}

// FormsClientForAccount returns the cached Forms client for the account,
// constructing one on first use off the configured token provider. Accounts
// the provider has no token for get nil.
func (sc *ServerContext) FormsClientForAccount(account string) *forms.Client {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if client, ok := sc.formsClients[account]; ok {
		return client
	}

	if sc.tokenProvider == nil || !sc.tokenProvider.HasTokenForAccount(account) {
		return nil
	}

	ts := google.TokenSourceForProvider(sc.ctx, sc.tokenProvider, account)
	client, err := forms.NewClientWithTokenSource(sc.ctx, ts, account)
	if err != nil {
		slog.Warn("failed to create Forms client", logging.Account(account), logging.Err(err))
		return nil
	}

	sc.formsClients[account] = client
	return client
}

// FormsClient returns the Forms client for the default account
func (sc *ServerContext) FormsClient() *forms.Client {
	return sc.FormsClientForAccount(google.DefaultAccount)
}

// SetFormsClientForAccount sets the Forms client for a specific account
func (sc *ServerContext) SetFormsClientForAccount(account string, client *forms.Client) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.formsClients[account] = client
}

// DriveClientForAccount returns the cached Drive client for the account,
// constructing one on first use off the configured token provider. Accounts
// the provider has no token for get nil.
func (sc *ServerContext) DriveClientForAccount(account string) *drive.Client {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if client, ok := sc.driveClients[account]; ok {
		return client
	}

	if sc.tokenProvider == nil || !sc.tokenProvider.HasTokenForAccount(account) {
		return nil
	}

	ts := google.TokenSourceForProvider(sc.ctx, sc.tokenProvider, account)
	client, err := drive.NewClientWithTokenSource(sc.ctx, ts, account)
	if err != nil {
		slog.Warn("failed to create Drive client", logging.Account(account), logging.Err(err))
		return nil
	}

	sc.driveClients[account] = client
	return client
}

// DriveClient returns the Drive client for the default account
func (sc *ServerContext) DriveClient() *drive.Client {
	return sc.DriveClientForAccount(google.DefaultAccount)
}

// SetDriveClientForAccount sets the Drive client for a specific account
func (sc *ServerContext) SetDriveClientForAccount(account string, client *drive.Client) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.driveClients[account] = client
}

// IsShutdown reports whether Shutdown has already run.
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown cancels the lifetime context. Safe to call more than once.
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	return nil
}
