package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lonelyoctopus/gsheets-mcp/internal/instrumentation"
)

const (
	DefaultMetricsAddr         = ":9090"
	DefaultMetricsReadTimeout  = 10 * time.Second
	DefaultMetricsWriteTimeout = 10 * time.Second
	DefaultMetricsIdleTimeout  = 60 * time.Second

	// DefaultShutdownTimeout bounds graceful shutdown of HTTP servers.
	DefaultShutdownTimeout = 30 * time.Second
)

// MetricsServerConfig configures the standalone metrics listener.
type MetricsServerConfig struct {
	// Addr to bind, DefaultMetricsAddr when empty.
	Addr string

	Enabled bool

	// InstrumentationProvider must be enabled; it feeds the Prometheus
	// registry that /metrics exposes.
	InstrumentationProvider *instrumentation.Provider
}

// MetricsServer serves /metrics on its own port, kept off the main listener
// so operational data is never reachable through the public MCP endpoint.
type MetricsServer struct {
	httpServer *http.Server
	addr       string
}

// NewMetricsServer validates the config and prepares a server. The listener
// is not opened until Start.
func NewMetricsServer(config MetricsServerConfig) (*MetricsServer, error) {
	if config.Addr == "" {
		config.Addr = DefaultMetricsAddr
	}

	if config.InstrumentationProvider == nil {
		return nil, fmt.Errorf("instrumentation provider is required for metrics server")
	}

	if !config.InstrumentationProvider.Enabled() {
		return nil, fmt.Errorf("instrumentation provider is not enabled")
	}

	return &MetricsServer{
		addr: config.Addr,
	}, nil
}

// Start runs the server until it stops. Run it in a goroutine for
// non-blocking use.
func (s *MetricsServer) Start() error {
	return s.StartWithReadySignal(nil)
}

// StartWithReadySignal binds the listener, closes ready, then serves until
// shutdown. Separating bind from serve lets callers fail fast when the port
// is taken instead of discovering it on the first scrape.
func (s *MetricsServer) StartWithReadySignal(ready chan struct{}) error {
	mux := http.NewServeMux()

	// The OTel prometheus exporter writes to the default Prometheus
	// registry, which promhttp.Handler reads
	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	s.httpServer = &http.Server{
		Addr:              s.addr,
		Handler:           mux,
		ReadHeaderTimeout: DefaultMetricsReadTimeout,
		WriteTimeout:      DefaultMetricsWriteTimeout,
		IdleTimeout:       DefaultMetricsIdleTimeout,
	}

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}

	slog.Info("starting metrics server", "addr", s.addr)
	if ready != nil {
		close(ready)
	}
	return s.httpServer.Serve(ln)
}

// Shutdown drains the server. Safe to call before Start.
func (s *MetricsServer) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		slog.Info("shutting down metrics server")
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// Addr returns the configured bind address.
func (s *MetricsServer) Addr() string {
	return s.addr
}
