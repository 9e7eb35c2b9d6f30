package common

import (
	"context"
	"errors"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/lonelyoctopus/gsheets-mcp/internal/instrumentation"
	"github.com/lonelyoctopus/gsheets-mcp/internal/server"
)

func newTestServerContext(t *testing.T) *server.ServerContext {
	t.Helper()
	sc, err := server.NewServerContext(context.Background())
	if err != nil {
		t.Fatalf("failed to create server context: %v", err)
	}
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc
}

func TestInstrumentedToolHandlerPassthrough(t *testing.T) {
	// Without metrics or audit logging configured the wrapper must not
	// change handler behavior
	sc := newTestServerContext(t)

	called := false
	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		called = true
		return mcp.NewToolResultText("[[\"a\",\"b\"]]"), nil
	}

	wrapped := InstrumentedToolHandler("read_sheet", sc, handler)

	result, err := wrapped(context.Background(), mcp.CallToolRequest{})
	if err != nil {
		t.Fatalf("wrapped handler error = %v", err)
	}
	if !called {
		t.Error("expected handler to be called")
	}
	if result == nil {
		t.Fatal("expected result, got nil")
	}
}

func TestInstrumentedToolHandlerPropagatesError(t *testing.T) {
	sc := newTestServerContext(t)

	wantErr := errors.New("sheet unavailable")
	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return nil, wantErr
	}

	wrapped := InstrumentedToolHandler("read_sheet", sc, handler)

	if _, err := wrapped(context.Background(), mcp.CallToolRequest{}); err != wantErr {
		t.Errorf("wrapped handler error = %v, want %v", err, wantErr)
	}
}

func TestInstrumentedToolHandlerWithAuditLogger(t *testing.T) {
	sc := newTestServerContext(t)
	sc.SetAuditLogger(instrumentation.NewAuditLoggerWithConfig(nil, instrumentation.AuditLoggingConfig{
		Enabled: true,
	}))

	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultText("Updated 4 cells"), nil
	}

	wrapped := InstrumentedToolHandlerWithService("write_sheet", "sheets", "write", sc, handler)

	result, err := wrapped(context.Background(), mcp.CallToolRequest{})
	if err != nil {
		t.Fatalf("wrapped handler error = %v", err)
	}
	if result == nil {
		t.Fatal("expected result, got nil")
	}
}

func TestInstrumentedToolHandlerErrorResult(t *testing.T) {
	sc := newTestServerContext(t)
	sc.SetAuditLogger(instrumentation.NewAuditLoggerWithConfig(nil, instrumentation.AuditLoggingConfig{
		Enabled: true,
	}))

	// A tool-level error result (IsError true) with nil error must pass
	// through unchanged
	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultError("Failed to read sheet: not found"), nil
	}

	wrapped := InstrumentedToolHandlerWithService("read_sheet", "sheets", "read", sc, handler)

	result, err := wrapped(context.Background(), mcp.CallToolRequest{})
	if err != nil {
		t.Fatalf("wrapped handler error = %v", err)
	}
	if result == nil || !result.IsError {
		t.Fatal("expected error result to pass through")
	}
}
