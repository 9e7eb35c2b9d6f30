package instrumentation

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Shared metric attribute keys.
const (
	attrMethod    = "method"
	attrPath      = "path"
	attrStatus    = "status"
	attrOperation = "operation"
	attrService   = "service"
	attrResult    = "result"
	attrTool      = "tool"
	attrAccount   = "account"
)

// Metrics records the server's operational metrics. The zero value is
// usable as a no-op, every Record method tolerates uninitialized
// instruments.
type Metrics struct {
	httpRequestsTotal   metric.Int64Counter
	httpRequestDuration metric.Float64Histogram
	activeSessions      metric.Int64UpDownCounter

	googleAPIOperationsTotal   metric.Int64Counter
	googleAPIOperationDuration metric.Float64Histogram

	oauthAuthTotal         metric.Int64Counter
	oauthTokenRefreshTotal metric.Int64Counter

	toolInvocationsTotal metric.Int64Counter
	toolDuration         metric.Float64Histogram

	detailedLabels bool
}

// counterSpec describes one Int64Counter to create.
type counterSpec struct {
	target      *metric.Int64Counter
	name        string
	description string
	unit        string
}

// histogramSpec describes one Float64Histogram to create.
type histogramSpec struct {
	target      *metric.Float64Histogram
	name        string
	description string
	buckets     []float64
}

// Latency buckets. HTTP handlers finish fast, Google API calls and tools
// can take tens of seconds.
var (
	httpBuckets     = []float64{0.001, 0.01, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0}
	upstreamBuckets = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0}
)

// NewMetrics registers all instruments on the given meter. detailedLabels
// opts into high-cardinality account labels.
func NewMetrics(meter metric.Meter, detailedLabels bool) (*Metrics, error) {
	m := &Metrics{detailedLabels: detailedLabels}

	counters := []counterSpec{
		{&m.httpRequestsTotal, "http_requests_total", "Total number of HTTP requests", "{request}"},
		{&m.googleAPIOperationsTotal, "google_api_operations_total", "Total number of Google API operations", "{operation}"},
		{&m.oauthAuthTotal, "oauth_auth_total", "Total number of OAuth authentication attempts", "{attempt}"},
		{&m.oauthTokenRefreshTotal, "oauth_token_refresh_total", "Total number of OAuth token refresh attempts", "{attempt}"},
		{&m.toolInvocationsTotal, "mcp_tool_invocations_total", "Total number of MCP tool invocations", "{invocation}"},
	}
	for _, spec := range counters {
		counter, err := meter.Int64Counter(spec.name,
			metric.WithDescription(spec.description),
			metric.WithUnit(spec.unit),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s counter: %w", spec.name, err)
		}
		*spec.target = counter
	}

	histograms := []histogramSpec{
		{&m.httpRequestDuration, "http_request_duration_seconds", "HTTP request duration in seconds", httpBuckets},
		{&m.googleAPIOperationDuration, "google_api_operation_duration_seconds", "Google API operation duration in seconds", upstreamBuckets},
		{&m.toolDuration, "mcp_tool_duration_seconds", "MCP tool execution duration in seconds", upstreamBuckets},
	}
	for _, spec := range histograms {
		histogram, err := meter.Float64Histogram(spec.name,
			metric.WithDescription(spec.description),
			metric.WithUnit("s"),
			metric.WithExplicitBucketBoundaries(spec.buckets...),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s histogram: %w", spec.name, err)
		}
		*spec.target = histogram
	}

	var err error
	m.activeSessions, err = meter.Int64UpDownCounter(
		"active_sessions",
		metric.WithDescription("Number of active user sessions"),
		metric.WithUnit("{session}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create active_sessions gauge: %w", err)
	}

	return m, nil
}

// RecordHTTPRequest records one handled HTTP request.
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, path string, statusCode int, duration time.Duration) {
	if m.httpRequestsTotal == nil || m.httpRequestDuration == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String(attrMethod, method),
		attribute.String(attrPath, path),
		attribute.String(attrStatus, strconv.Itoa(statusCode)),
	)
	m.httpRequestsTotal.Add(ctx, 1, attrs)
	m.httpRequestDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordGoogleAPIOperation records one Google API call. service is sheets,
// forms, or drive; status is StatusSuccess or StatusError.
func (m *Metrics) RecordGoogleAPIOperation(ctx context.Context, service, operation, status string, duration time.Duration) {
	if m.googleAPIOperationsTotal == nil || m.googleAPIOperationDuration == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String(attrService, service),
		attribute.String(attrOperation, operation),
		attribute.String(attrStatus, status),
	)
	m.googleAPIOperationsTotal.Add(ctx, 1, attrs)
	m.googleAPIOperationDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordOAuthAuth counts one authentication attempt. result is
// OAuthResultSuccess or OAuthResultFailure.
func (m *Metrics) RecordOAuthAuth(ctx context.Context, result string) {
	if m.oauthAuthTotal == nil {
		return
	}
	m.oauthAuthTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrResult, result)))
}

// RecordOAuthTokenRefresh counts one refresh attempt. result is one of the
// OAuthResult constants.
func (m *Metrics) RecordOAuthTokenRefresh(ctx context.Context, result string) {
	if m.oauthTokenRefreshTotal == nil {
		return
	}
	m.oauthTokenRefreshTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrResult, result)))
}

// RecordToolInvocation records one MCP tool call.
func (m *Metrics) RecordToolInvocation(ctx context.Context, toolName, status string, duration time.Duration) {
	m.recordTool(ctx, toolName, status, "", duration)
}

// RecordToolInvocationWithAccount is RecordToolInvocation plus an account
// label, which is only emitted when detailed labels are enabled.
func (m *Metrics) RecordToolInvocationWithAccount(ctx context.Context, toolName, status, account string, duration time.Duration) {
	m.recordTool(ctx, toolName, status, account, duration)
}

func (m *Metrics) recordTool(ctx context.Context, toolName, status, account string, duration time.Duration) {
	if m.toolInvocationsTotal == nil || m.toolDuration == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrTool, toolName),
		attribute.String(attrStatus, status),
	}
	if m.detailedLabels && account != "" {
		attrs = append(attrs, attribute.String(attrAccount, account))
	}

	set := metric.WithAttributes(attrs...)
	m.toolInvocationsTotal.Add(ctx, 1, set)
	m.toolDuration.Record(ctx, duration.Seconds(), set)
}

// IncrementActiveSessions bumps the session gauge.
func (m *Metrics) IncrementActiveSessions(ctx context.Context) {
	if m.activeSessions != nil {
		m.activeSessions.Add(ctx, 1)
	}
}

// DecrementActiveSessions drops the session gauge.
func (m *Metrics) DecrementActiveSessions(ctx context.Context) {
	if m.activeSessions != nil {
		m.activeSessions.Add(ctx, -1)
	}
}
