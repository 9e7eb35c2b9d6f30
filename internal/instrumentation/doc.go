// Package instrumentation wires OpenTelemetry metrics, tracing, and audit
// logging into the gsheets-mcp server.
//
// A Provider owns the meter and tracer providers and the exporters behind
// them. Metrics go to Prometheus by default (scraped from a dedicated
// port), or to an OTLP collector or stdout. Tracing is off by default and
// can export via OTLP or stdout.
//
// # Metrics
//
//   - http_requests_total, http_request_duration_seconds: the HTTP surface
//     by method, path, and status
//   - active_sessions: gauge of live MCP sessions
//   - google_api_operations_total, google_api_operation_duration_seconds:
//     outbound Sheets, Forms, and Drive calls by service, operation, status
//   - oauth_auth_total, oauth_token_refresh_total: authentication and
//     refresh outcomes
//   - mcp_tool_invocations_total, mcp_tool_duration_seconds: tool calls by
//     tool name and status
//
// Label cardinality is bounded: user identities appear as email domains
// (see ExtractUserDomain) unless DetailedLabels is enabled.
//
// # Tracing
//
// Spans are named tool.<name> for MCP tool invocations and
// google.<service>.<operation> for outbound API calls.
//
// # Configuration
//
// DefaultConfig reads the environment:
//
//   - INSTRUMENTATION_ENABLED (default true)
//   - METRICS_EXPORTER: prometheus, otlp, stdout (default prometheus)
//   - TRACING_EXPORTER: otlp, stdout, none (default none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT
//   - OTEL_TRACES_SAMPLER_ARG: 0.0 to 1.0 (default 0.1)
//   - OTEL_SERVICE_NAME (default gsheets-mcp)
//
// # Usage
//
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	recorder := provider.Metrics()
//	recorder.RecordToolInvocation(ctx, "read_sheet", instrumentation.StatusSuccess, time.Since(start))
package instrumentation
