package instrumentation

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

const (
	auditTestEmail   = "jane@example.com"
	auditTestDomain  = "example.com"
	auditTestAccount = "work"
)

// attrMap flattens slog attributes for assertion by key.
func attrMap(attrs []slog.Attr) map[string]slog.Value {
	m := make(map[string]slog.Value, len(attrs))
	for _, attr := range attrs {
		m[attr.Key] = attr.Value
	}
	return m
}

func TestToolInvocationLifecycle(t *testing.T) {
	ti := NewToolInvocation("read_sheet")

	if ti.Tool != "read_sheet" {
		t.Errorf("Tool = %q, want read_sheet", ti.Tool)
	}
	if ti.StartTime.IsZero() {
		t.Error("StartTime should be set by the constructor")
	}

	ti.CompleteSuccess()

	if !ti.Success {
		t.Error("Success should be true")
	}
	if ti.Duration < 0 {
		t.Error("Duration should not be negative")
	}
	if ti.Error != "" {
		t.Errorf("Error = %q, want empty", ti.Error)
	}
}

func TestToolInvocationCompleteWithError(t *testing.T) {
	ti := NewToolInvocation("create_form")
	ti.CompleteWithError(errors.New("permission denied"))

	if ti.Success {
		t.Error("Success should be false")
	}
	if ti.Error != "permission denied" {
		t.Errorf("Error = %q, want permission denied", ti.Error)
	}
}

func TestToolInvocationCompleteNilError(t *testing.T) {
	ti := NewToolInvocation("read_sheet")
	ti.Complete(true, nil)

	if ti.Error != "" {
		t.Errorf("Error = %q, want empty", ti.Error)
	}
}

func TestToolInvocationBuilders(t *testing.T) {
	ti := NewToolInvocation("append_sheet").
		WithUser(auditTestEmail).
		WithAccount("personal").
		WithService(ServiceSheets, OperationAppend).
		CompleteSuccess()

	if ti.UserEmail != auditTestEmail {
		t.Errorf("UserEmail = %q", ti.UserEmail)
	}
	if ti.Account != "personal" {
		t.Errorf("Account = %q", ti.Account)
	}
	if ti.ServiceName != ServiceSheets || ti.Operation != OperationAppend {
		t.Errorf("service/operation = %q/%q", ti.ServiceName, ti.Operation)
	}
	if !ti.Success {
		t.Error("Success should be true")
	}
}

func TestToolInvocationUserDomain(t *testing.T) {
	ti := NewToolInvocation("read_sheet").WithUser(auditTestEmail)

	if domain := ti.UserDomain(); domain != auditTestDomain {
		t.Errorf("UserDomain() = %q, want %q", domain, auditTestDomain)
	}
}

func TestToolInvocationStatus(t *testing.T) {
	ti := NewToolInvocation("read_sheet")

	ti.Success = true
	if got := ti.Status(); got != StatusSuccess {
		t.Errorf("Status() = %q, want %q", got, StatusSuccess)
	}

	ti.Success = false
	if got := ti.Status(); got != StatusError {
		t.Errorf("Status() = %q, want %q", got, StatusError)
	}
}

func TestToolInvocationLogAttrs(t *testing.T) {
	ti := NewToolInvocation("drive_list_files").
		WithUser(auditTestEmail).
		WithAccount(auditTestAccount).
		WithService(ServiceDrive, OperationList).
		CompleteSuccess()
	ti.TraceID = "abc123def456"
	ti.SpanID = "span789"

	attrs := attrMap(ti.LogAttrs())

	for _, key := range []string{"tool", "user_domain", "duration", "success"} {
		if _, ok := attrs[key]; !ok {
			t.Errorf("missing attribute %q", key)
		}
	}

	// Operational logs carry only the email domain, never the address
	if got := attrs["user_domain"].String(); got != auditTestDomain {
		t.Errorf("user_domain = %q, want %q", got, auditTestDomain)
	}
	if _, ok := attrs["user"]; ok {
		t.Error("full email must not appear in operational log attrs")
	}
	if _, ok := attrs["span_id"]; ok {
		t.Error("span_id is audit-only")
	}

	if got := attrs["service"].String(); got != ServiceDrive {
		t.Errorf("service = %q, want %q", got, ServiceDrive)
	}
	if got := attrs["operation"].String(); got != OperationList {
		t.Errorf("operation = %q, want %q", got, OperationList)
	}
	if got := attrs["trace_id"].String(); got != "abc123def456" {
		t.Errorf("trace_id = %q", got)
	}
}

func TestToolInvocationLogAttrsError(t *testing.T) {
	ti := NewToolInvocation("create_form").
		WithUser(auditTestEmail).
		CompleteWithError(errors.New("quota exceeded"))

	attrs := attrMap(ti.LogAttrs())
	if got := attrs["error"].String(); got != "quota exceeded" {
		t.Errorf("error = %q, want quota exceeded", got)
	}
}

func TestToolInvocationLogAttrsOmitsEmptyFields(t *testing.T) {
	ti := NewToolInvocation("read_sheet")
	ti.CompleteSuccess()

	attrs := attrMap(ti.LogAttrs())
	for _, key := range []string{"service", "operation", "trace_id", "error", "account"} {
		if _, ok := attrs[key]; ok {
			t.Errorf("attribute %q should be omitted when unset", key)
		}
	}
}

func TestToolInvocationLogAttrsOmitsDefaultAccount(t *testing.T) {
	ti := NewToolInvocation("read_sheet").WithAccount("default")
	ti.CompleteSuccess()

	if _, ok := attrMap(ti.LogAttrs())["account"]; ok {
		t.Error("the default account carries no information and should be omitted")
	}
}

func TestToolInvocationLogAuditAttrs(t *testing.T) {
	ti := NewToolInvocation("drive_list_files").
		WithUser(auditTestEmail).
		WithAccount(auditTestAccount).
		WithService(ServiceDrive, OperationList).
		CompleteSuccess()
	ti.TraceID = "abc123def456"
	ti.SpanID = "span789"

	attrs := attrMap(ti.LogAuditAttrs())

	if got := attrs["user"].String(); got != auditTestEmail {
		t.Errorf("user = %q, want %q", got, auditTestEmail)
	}
	if got := attrs["account"].String(); got != auditTestAccount {
		t.Errorf("account = %q, want %q", got, auditTestAccount)
	}
	if got := attrs["trace_id"].String(); got != "abc123def456" {
		t.Errorf("trace_id = %q", got)
	}
	if got := attrs["span_id"].String(); got != "span789" {
		t.Errorf("span_id = %q", got)
	}
}

func TestToolInvocationWithSpanContextNoSpan(t *testing.T) {
	ti := NewToolInvocation("read_sheet").WithSpanContext(context.Background())

	if ti.TraceID != "" || ti.SpanID != "" {
		t.Errorf("trace/span = %q/%q, want empty without an active span", ti.TraceID, ti.SpanID)
	}
}

// newCapturedAuditLogger returns an audit logger whose output lands in the
// returned buffer.
func newCapturedAuditLogger(config AuditLoggingConfig) (*AuditLogger, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	return NewAuditLoggerWithConfig(logger, config), &buf
}

func TestNewAuditLoggerDefaults(t *testing.T) {
	al := NewAuditLogger(nil)
	if al.logger == nil {
		t.Error("nil logger argument should fall back to slog.Default")
	}
	if !al.enabled {
		t.Error("NewAuditLogger should return an enabled logger")
	}
	if al.includePII {
		t.Error("PII logging must be opt-in")
	}
}

func TestAuditLoggerLogToolInvocation(t *testing.T) {
	al, buf := newCapturedAuditLogger(AuditLoggingConfig{Enabled: true})

	ti := NewToolInvocation("read_sheet").
		WithUser(auditTestEmail).
		CompleteSuccess()
	al.LogToolInvocation(ti)

	out := buf.String()
	if !strings.Contains(out, "tool_executed") {
		t.Errorf("output missing tool_executed message: %s", out)
	}
	if !strings.Contains(out, auditTestDomain) {
		t.Errorf("output missing user domain: %s", out)
	}
	if strings.Contains(out, auditTestEmail) {
		t.Errorf("output leaks full email without IncludePII: %s", out)
	}
}

func TestAuditLoggerLogToolInvocationFailure(t *testing.T) {
	al, buf := newCapturedAuditLogger(AuditLoggingConfig{Enabled: true})

	ti := NewToolInvocation("create_form").
		WithUser(auditTestEmail).
		CompleteWithError(errors.New("backend unavailable"))
	al.LogToolInvocation(ti)

	out := buf.String()
	if !strings.Contains(out, "tool_failed") {
		t.Errorf("output missing tool_failed message: %s", out)
	}
	if !strings.Contains(out, "backend unavailable") {
		t.Errorf("output missing error detail: %s", out)
	}
}

func TestAuditLoggerIncludePII(t *testing.T) {
	al, buf := newCapturedAuditLogger(AuditLoggingConfig{Enabled: true, IncludePII: true})

	ti := NewToolInvocation("read_sheet").
		WithUser(auditTestEmail).
		CompleteSuccess()
	al.LogToolInvocation(ti)

	if !strings.Contains(buf.String(), auditTestEmail) {
		t.Errorf("output should contain full email with IncludePII: %s", buf.String())
	}
}

func TestAuditLoggerDisabled(t *testing.T) {
	al, buf := newCapturedAuditLogger(AuditLoggingConfig{Enabled: false})

	ti := NewToolInvocation("read_sheet").CompleteSuccess()
	al.LogToolInvocation(ti)
	al.LogToolAudit(ti)

	if buf.Len() != 0 {
		t.Errorf("disabled logger wrote output: %s", buf.String())
	}
}

func TestAuditLoggerLogToolAudit(t *testing.T) {
	// LogToolAudit always includes PII, even when IncludePII is off
	al, buf := newCapturedAuditLogger(AuditLoggingConfig{Enabled: true})

	ti := NewToolInvocation("drive_list_files").
		WithUser(auditTestEmail).
		WithService(ServiceDrive, OperationList).
		CompleteSuccess()
	al.LogToolAudit(ti)

	out := buf.String()
	if !strings.Contains(out, "tool_audit") {
		t.Errorf("output missing tool_audit message: %s", out)
	}
	if !strings.Contains(out, auditTestEmail) {
		t.Errorf("audit output missing full email: %s", out)
	}
}
