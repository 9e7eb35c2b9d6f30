package instrumentation

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

// newSpanRecorder installs an in-memory tracer provider and restores the
// previous one when the test ends.
func newSpanRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })
	return recorder
}

func recordedAttrs(span sdktrace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	m := make(map[attribute.Key]attribute.Value)
	for _, kv := range span.Attributes() {
		m[kv.Key] = kv.Value
	}
	return m
}

func TestStartToolSpan(t *testing.T) {
	recorder := newSpanRecorder(t)

	ctx, span := StartToolSpan(context.Background(), "read_sheet",
		attribute.Bool(SpanAttrReadOnly, true))
	if GetTraceID(ctx) == "" {
		t.Error("context should carry the new span's trace ID")
	}
	span.End()

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("recorded %d spans, want 1", len(spans))
	}

	got := spans[0]
	if got.Name() != "tool.read_sheet" {
		t.Errorf("span name = %q, want tool.read_sheet", got.Name())
	}
	if got.SpanKind() != trace.SpanKindServer {
		t.Errorf("span kind = %v, want server", got.SpanKind())
	}

	attrs := recordedAttrs(got)
	if attrs[SpanAttrTool].AsString() != "read_sheet" {
		t.Errorf("%s = %v", SpanAttrTool, attrs[SpanAttrTool])
	}
	if !attrs[SpanAttrReadOnly].AsBool() {
		t.Errorf("%s should be true", SpanAttrReadOnly)
	}
}

func TestStartGoogleAPISpan(t *testing.T) {
	recorder := newSpanRecorder(t)

	_, span := StartGoogleAPISpan(context.Background(), ServiceSheets, OperationRead,
		attribute.String(SpanAttrResourceID, "sheet-123"))
	span.End()

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("recorded %d spans, want 1", len(spans))
	}

	got := spans[0]
	if got.Name() != "google.sheets.read" {
		t.Errorf("span name = %q, want google.sheets.read", got.Name())
	}
	if got.SpanKind() != trace.SpanKindClient {
		t.Errorf("span kind = %v, want client", got.SpanKind())
	}

	attrs := recordedAttrs(got)
	if attrs[SpanAttrService].AsString() != ServiceSheets {
		t.Errorf("%s = %v", SpanAttrService, attrs[SpanAttrService])
	}
	if attrs[SpanAttrOperation].AsString() != OperationRead {
		t.Errorf("%s = %v", SpanAttrOperation, attrs[SpanAttrOperation])
	}
	if attrs[SpanAttrResourceID].AsString() != "sheet-123" {
		t.Errorf("%s = %v", SpanAttrResourceID, attrs[SpanAttrResourceID])
	}
}

func TestSetSpanError(t *testing.T) {
	recorder := newSpanRecorder(t)

	_, span := StartToolSpan(context.Background(), "write_sheet")
	SetSpanError(span, errors.New("range not found"))
	span.End()

	got := recorder.Ended()[0]
	if got.Status().Description != "range not found" {
		t.Errorf("status description = %q", got.Status().Description)
	}
	if len(got.Events()) == 0 {
		t.Error("span should record the error as an event")
	}
}

func TestSetSpanErrorNil(t *testing.T) {
	recorder := newSpanRecorder(t)

	_, span := StartToolSpan(context.Background(), "write_sheet")
	SetSpanError(span, nil)
	SetSpanSuccess(span)
	span.End()

	got := recorder.Ended()[0]
	if len(got.Events()) != 0 {
		t.Error("nil error must not record an event")
	}
}

func TestTraceAndSpanIDsWithoutSpan(t *testing.T) {
	ctx := context.Background()

	if id := GetTraceID(ctx); id != "" {
		t.Errorf("GetTraceID = %q, want empty without a span", id)
	}
	if id := GetSpanID(ctx); id != "" {
		t.Errorf("GetSpanID = %q, want empty without a span", id)
	}
}

func TestTraceAndSpanIDsWithSpan(t *testing.T) {
	newSpanRecorder(t)

	ctx, span := StartToolSpan(context.Background(), "read_sheet")
	defer span.End()

	if len(GetTraceID(ctx)) != 32 {
		t.Errorf("GetTraceID = %q, want 32 hex chars", GetTraceID(ctx))
	}
	if len(GetSpanID(ctx)) != 16 {
		t.Errorf("GetSpanID = %q, want 16 hex chars", GetSpanID(ctx))
	}
}
