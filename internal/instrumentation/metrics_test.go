package instrumentation

import (
	"context"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// newTestMetrics returns a Metrics backed by a manual reader so tests can
// inspect what was recorded.
func newTestMetrics(t *testing.T, detailedLabels bool) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	metrics, err := NewMetrics(provider.Meter("test"), detailedLabels)
	if err != nil {
		t.Fatalf("NewMetrics() error = %v", err)
	}
	return metrics, reader
}

// collectMetrics flattens the reader's output into a map by metric name.
func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect() error = %v", err)
	}

	out := make(map[string]metricdata.Metrics)
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func counterValue(t *testing.T, m metricdata.Metrics) int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("metric %s is not an int64 sum", m.Name)
	}
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestRecordHTTPRequest(t *testing.T) {
	metrics, reader := newTestMetrics(t, false)
	ctx := context.Background()

	metrics.RecordHTTPRequest(ctx, "GET", "/mcp", 200, 100*time.Millisecond)
	metrics.RecordHTTPRequest(ctx, "POST", "/mcp", 500, 50*time.Millisecond)

	collected := collectMetrics(t, reader)
	if got := counterValue(t, collected["http_requests_total"]); got != 2 {
		t.Errorf("http_requests_total = %d, want 2", got)
	}
	if _, ok := collected["http_request_duration_seconds"]; !ok {
		t.Error("http_request_duration_seconds not recorded")
	}
}

func TestRecordGoogleAPIOperation(t *testing.T) {
	metrics, reader := newTestMetrics(t, false)
	ctx := context.Background()

	metrics.RecordGoogleAPIOperation(ctx, ServiceSheets, OperationRead, StatusSuccess, 200*time.Millisecond)
	metrics.RecordGoogleAPIOperation(ctx, ServiceForms, OperationCreate, StatusError, 500*time.Millisecond)
	metrics.RecordGoogleAPIOperation(ctx, ServiceDrive, OperationGet, StatusSuccess, 100*time.Millisecond)

	collected := collectMetrics(t, reader)
	if got := counterValue(t, collected["google_api_operations_total"]); got != 3 {
		t.Errorf("google_api_operations_total = %d, want 3", got)
	}
}

func TestRecordOAuthCounters(t *testing.T) {
	metrics, reader := newTestMetrics(t, false)
	ctx := context.Background()

	metrics.RecordOAuthAuth(ctx, OAuthResultSuccess)
	metrics.RecordOAuthAuth(ctx, OAuthResultFailure)
	metrics.RecordOAuthTokenRefresh(ctx, OAuthResultSuccess)
	metrics.RecordOAuthTokenRefresh(ctx, OAuthResultExpired)

	collected := collectMetrics(t, reader)
	if got := counterValue(t, collected["oauth_auth_total"]); got != 2 {
		t.Errorf("oauth_auth_total = %d, want 2", got)
	}
	if got := counterValue(t, collected["oauth_token_refresh_total"]); got != 2 {
		t.Errorf("oauth_token_refresh_total = %d, want 2", got)
	}
}

func TestRecordToolInvocation(t *testing.T) {
	metrics, reader := newTestMetrics(t, false)
	ctx := context.Background()

	metrics.RecordToolInvocation(ctx, "read_sheet", StatusSuccess, 100*time.Millisecond)
	metrics.RecordToolInvocation(ctx, "create_form", StatusError, 500*time.Millisecond)

	collected := collectMetrics(t, reader)
	if got := counterValue(t, collected["mcp_tool_invocations_total"]); got != 2 {
		t.Errorf("mcp_tool_invocations_total = %d, want 2", got)
	}
	if _, ok := collected["mcp_tool_duration_seconds"]; !ok {
		t.Error("mcp_tool_duration_seconds not recorded")
	}
}

func TestRecordToolInvocationAccountLabel(t *testing.T) {
	hasAccountAttr := func(t *testing.T, reader *sdkmetric.ManualReader) bool {
		collected := collectMetrics(t, reader)
		sum := collected["mcp_tool_invocations_total"].Data.(metricdata.Sum[int64])
		for _, dp := range sum.DataPoints {
			if _, ok := dp.Attributes.Value(attrAccount); ok {
				return true
			}
		}
		return false
	}

	t.Run("default labels drop the account", func(t *testing.T) {
		metrics, reader := newTestMetrics(t, false)
		metrics.RecordToolInvocationWithAccount(context.Background(), "read_sheet", StatusSuccess, "work", 100*time.Millisecond)

		if hasAccountAttr(t, reader) {
			t.Error("account label recorded without DetailedLabels")
		}
	})

	t.Run("detailed labels keep the account", func(t *testing.T) {
		metrics, reader := newTestMetrics(t, true)
		metrics.RecordToolInvocationWithAccount(context.Background(), "read_sheet", StatusSuccess, "work", 100*time.Millisecond)

		if !hasAccountAttr(t, reader) {
			t.Error("account label missing with DetailedLabels enabled")
		}
	})
}

func TestActiveSessionsGauge(t *testing.T) {
	metrics, reader := newTestMetrics(t, false)
	ctx := context.Background()

	metrics.IncrementActiveSessions(ctx)
	metrics.IncrementActiveSessions(ctx)
	metrics.DecrementActiveSessions(ctx)

	collected := collectMetrics(t, reader)
	if got := counterValue(t, collected["active_sessions"]); got != 1 {
		t.Errorf("active_sessions = %d, want 1", got)
	}
}

func TestMetricsZeroValueIsNoOp(t *testing.T) {
	// The disabled provider hands out a zero-value Metrics, every method
	// must be safe on it
	var metrics Metrics
	ctx := context.Background()

	metrics.RecordHTTPRequest(ctx, "GET", "/mcp", 200, time.Millisecond)
	metrics.RecordGoogleAPIOperation(ctx, ServiceSheets, OperationRead, StatusSuccess, time.Millisecond)
	metrics.RecordOAuthAuth(ctx, OAuthResultSuccess)
	metrics.RecordOAuthTokenRefresh(ctx, OAuthResultSuccess)
	metrics.RecordToolInvocation(ctx, "read_sheet", StatusSuccess, time.Millisecond)
	metrics.RecordToolInvocationWithAccount(ctx, "read_sheet", StatusSuccess, "work", time.Millisecond)
	metrics.IncrementActiveSessions(ctx)
	metrics.DecrementActiveSessions(ctx)
}
