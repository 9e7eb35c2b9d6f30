package common

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"go.opentelemetry.io/otel/attribute"

	"github.com/lonelyoctopus/gsheets-mcp/internal/instrumentation"
	"github.com/lonelyoctopus/gsheets-mcp/internal/server"
)

// ToolHandlerFunc is the handler signature expected by mcp-go's AddTool
type ToolHandlerFunc = func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)

// InstrumentedToolHandler decorates a tool handler so every invocation is
// timed, counted, and audit-logged under the tool name.
//
// Typical registration:
//
//	s.AddTool(readSheetTool, common.InstrumentedToolHandler("read_sheet", sc, handler))
func InstrumentedToolHandler(toolName string, sc *server.ServerContext, handler ToolHandlerFunc) ToolHandlerFunc {
	return instrumented(toolName, "", "", sc, handler)
}

// InstrumentedToolHandlerWithService behaves like InstrumentedToolHandler and also
// tags the invocation with the Google service and operation, so the metrics
// show which of Sheets, Forms, or Drive a tool exercised:
//
//   - mcp_tool_invocations_total, mcp_tool_duration_seconds
//   - google_api_operations_total, google_api_operation_duration_seconds
//
// Typical registration:
//
//	s.AddTool(readSheetTool, common.InstrumentedToolHandlerWithService("read_sheet", "sheets", "read", sc, handler))
func InstrumentedToolHandlerWithService(toolName, serviceName, operation string, sc *server.ServerContext, handler ToolHandlerFunc) ToolHandlerFunc {
	return instrumented(toolName, serviceName, operation, sc, handler)
}

func instrumented(toolName, serviceName, operation string, sc *server.ServerContext, handler ToolHandlerFunc) ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		metrics := sc.Metrics()
		auditLogger := sc.AuditLogger()

		// Nothing configured, skip the bookkeeping entirely
		if metrics == nil && auditLogger == nil {
			return handler(ctx, request)
		}

		start := time.Now()

		var spanAttrs []attribute.KeyValue
		if serviceName != "" {
			spanAttrs = append(spanAttrs,
				attribute.String(instrumentation.SpanAttrService, serviceName),
				attribute.String(instrumentation.SpanAttrOperation, operation),
			)
		}
		ctx, span := instrumentation.StartToolSpan(ctx, toolName, spanAttrs...)
		defer span.End()

		invocation := instrumentation.NewToolInvocation(toolName).
			WithSpanContext(ctx)
		if serviceName != "" {
			invocation.WithService(serviceName, operation)
		}

		if account := GetAccountFromArgs(ctx, request.GetArguments()); account != "" {
			invocation.WithAccount(account)
		}

		result, err := handler(ctx, request)
		duration := time.Since(start)

		// A handler returning a tool-level error result counts as an error
		// even though err is nil
		status := instrumentation.StatusSuccess
		switch {
		case err != nil:
			status = instrumentation.StatusError
			invocation.CompleteWithError(err)
			instrumentation.SetSpanError(span, err)
		case result != nil && result.IsError:
			status = instrumentation.StatusError
			invocation.Complete(false, nil)
		default:
			invocation.CompleteSuccess()
			instrumentation.SetSpanSuccess(span)
		}

		if metrics != nil {
			metrics.RecordToolInvocation(ctx, toolName, status, duration)
			if serviceName != "" {
				metrics.RecordGoogleAPIOperation(ctx, serviceName, operation, status, duration)
			}
		}

		if auditLogger != nil {
			auditLogger.LogToolInvocation(invocation)
		}

		return result, err
	}
}
