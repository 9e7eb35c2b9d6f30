package instrumentation

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName identifies spans produced by this module.
const TracerName = "github.com/lonelyoctopus/gsheets-mcp"

// Span attribute keys.
const (
	// SpanAttrTool is the MCP tool name
	SpanAttrTool = "mcp.tool"

	// SpanAttrService is the Google service (sheets, forms, drive)
	SpanAttrService = "google.service"

	// SpanAttrOperation is the operation within the service
	SpanAttrOperation = "google.operation"

	// SpanAttrAccount is the configured account name, never the email
	SpanAttrAccount = "mcp.account"

	// SpanAttrResourceID is the spreadsheet, form, or file ID
	SpanAttrResourceID = "mcp.resource_id"

	// SpanAttrResourceType is the kind of resource touched
	SpanAttrResourceType = "mcp.resource_type"

	// SpanAttrReadOnly marks operations that cannot mutate user data
	SpanAttrReadOnly = "mcp.read_only"
)

func tracer() trace.Tracer {
	return otel.GetTracerProvider().Tracer(TracerName)
}

// StartToolSpan opens a server span around an MCP tool invocation. The
// caller must end the returned span.
func StartToolSpan(ctx context.Context, toolName string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	spanAttrs := append([]attribute.KeyValue{attribute.String(SpanAttrTool, toolName)}, attrs...)
	return tracer().Start(ctx, "tool."+toolName,
		trace.WithAttributes(spanAttrs...),
		trace.WithSpanKind(trace.SpanKindServer),
	)
}

// StartGoogleAPISpan opens a client span around an outbound Google API
// call, named google.<service>.<operation>.
func StartGoogleAPISpan(ctx context.Context, service, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	spanAttrs := append([]attribute.KeyValue{
		attribute.String(SpanAttrService, service),
		attribute.String(SpanAttrOperation, operation),
	}, attrs...)
	return tracer().Start(ctx, "google."+service+"."+operation,
		trace.WithAttributes(spanAttrs...),
		trace.WithSpanKind(trace.SpanKindClient),
	)
}

// SetSpanError records err on the span and flips its status to error.
// A nil err is a no-op.
func SetSpanError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// SetSpanSuccess marks the span as completed successfully.
func SetSpanSuccess(span trace.Span) {
	span.SetStatus(codes.Ok, "")
}

// GetTraceID returns the active trace ID, or "" without a valid span.
func GetTraceID(ctx context.Context) string {
	if sc := trace.SpanFromContext(ctx).SpanContext(); sc.IsValid() {
		return sc.TraceID().String()
	}
	return ""
}

// GetSpanID returns the active span ID, or "" without a valid span.
func GetSpanID(ctx context.Context) string {
	if sc := trace.SpanFromContext(ctx).SpanContext(); sc.IsValid() {
		return sc.SpanID().String()
	}
	return ""
}
