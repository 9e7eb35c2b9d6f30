package instrumentation

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// ToolInvocation records one MCP tool call for audit logging.
//
// UserEmail is PII. General operational logs should go through LogAttrs,
// which reduces it to the domain; only audit-specific streams with access
// controls should receive LogAuditAttrs output.
type ToolInvocation struct {
	Tool      string
	UserEmail string

	// Which Google surface the tool touched
	Account     string // account name (default, work, personal)
	ServiceName string // sheets, forms, or drive
	Operation   string // read, write, append, create, list, ...

	StartTime time.Time
	Duration  time.Duration
	Success   bool
	Error     string

	TraceID string
	SpanID  string
}

// NewToolInvocation starts timing a tool call. Call Complete when the
// handler returns.
func NewToolInvocation(tool string) *ToolInvocation {
	return &ToolInvocation{
		Tool:      tool,
		StartTime: time.Now(),
	}
}

// UserDomain reduces the user email to its domain for low-cardinality logs.
func (ti *ToolInvocation) UserDomain() string {
	return ExtractUserDomain(ti.UserEmail)
}

// Status maps Success onto the metric status labels.
func (ti *ToolInvocation) Status() string {
	if ti.Success {
		return StatusSuccess
	}
	return StatusError
}

// attrs builds the structured log fields. With includePII the full email
// and span ID are included, otherwise only the email domain.
func (ti *ToolInvocation) attrs(includePII bool) []slog.Attr {
	attrs := make([]slog.Attr, 0, 9)
	attrs = append(attrs, slog.String("tool", ti.Tool))

	if includePII {
		attrs = append(attrs, slog.String("user", ti.UserEmail))
	} else {
		attrs = append(attrs, slog.String("user_domain", ti.UserDomain()))
	}

	attrs = append(attrs,
		slog.Duration("duration", ti.Duration),
		slog.Bool("success", ti.Success),
	)

	// The default account carries no information in general logs
	if ti.Account != "" && (includePII || ti.Account != "default") {
		attrs = append(attrs, slog.String("account", ti.Account))
	}
	if ti.ServiceName != "" {
		attrs = append(attrs, slog.String("service", ti.ServiceName))
	}
	if ti.Operation != "" {
		attrs = append(attrs, slog.String("operation", ti.Operation))
	}
	if ti.TraceID != "" {
		attrs = append(attrs, slog.String("trace_id", ti.TraceID))
	}
	if includePII && ti.SpanID != "" {
		attrs = append(attrs, slog.String("span_id", ti.SpanID))
	}
	if ti.Error != "" {
		attrs = append(attrs, slog.String("error", ti.Error))
	}

	return attrs
}

// LogAttrs returns cardinality-controlled fields for operational logging.
func (ti *ToolInvocation) LogAttrs() []slog.Attr {
	return ti.attrs(false)
}

// LogAuditAttrs returns the full field set including the user's email.
// Route these only to audit log streams with appropriate access controls.
func (ti *ToolInvocation) LogAuditAttrs() []slog.Attr {
	return ti.attrs(true)
}

// WithUser records the authenticated user's email.
func (ti *ToolInvocation) WithUser(email string) *ToolInvocation {
	ti.UserEmail = email
	return ti
}

// WithAccount records which configured Google account served the call.
func (ti *ToolInvocation) WithAccount(account string) *ToolInvocation {
	ti.Account = account
	return ti
}

// WithService records the Google service and operation the tool performed.
func (ti *ToolInvocation) WithService(serviceName, operation string) *ToolInvocation {
	ti.ServiceName = serviceName
	ti.Operation = operation
	return ti
}

// WithSpanContext copies trace and span IDs from the active span, if any.
func (ti *ToolInvocation) WithSpanContext(ctx context.Context) *ToolInvocation {
	if sc := trace.SpanFromContext(ctx).SpanContext(); sc.IsValid() {
		ti.TraceID = sc.TraceID().String()
		ti.SpanID = sc.SpanID().String()
	}
	return ti
}

// Complete stops the timer and records the outcome.
func (ti *ToolInvocation) Complete(success bool, err error) *ToolInvocation {
	ti.Duration = time.Since(ti.StartTime)
	ti.Success = success
	if err != nil {
		ti.Error = err.Error()
	}
	return ti
}

// CompleteWithError marks the invocation as failed.
func (ti *ToolInvocation) CompleteWithError(err error) *ToolInvocation {
	return ti.Complete(false, err)
}

// CompleteSuccess marks the invocation as successful.
func (ti *ToolInvocation) CompleteSuccess() *ToolInvocation {
	return ti.Complete(true, nil)
}

// AuditLogger writes tool invocation records through slog.
type AuditLogger struct {
	logger     *slog.Logger
	includePII bool
	enabled    bool
}

// NewAuditLogger returns an enabled logger that anonymizes user identities.
func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogger{logger: logger, enabled: true}
}

// NewAuditLoggerWithConfig applies the audit section of the
// instrumentation configuration.
func NewAuditLoggerWithConfig(logger *slog.Logger, config AuditLoggingConfig) *AuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogger{
		logger:     logger,
		includePII: config.IncludePII,
		enabled:    config.Enabled,
	}
}

// SetIncludePII toggles whether full email addresses appear in the logs.
func (al *AuditLogger) SetIncludePII(include bool) {
	al.includePII = include
}

// SetEnabled toggles audit logging at runtime.
func (al *AuditLogger) SetEnabled(enabled bool) {
	al.enabled = enabled
}

func attrArgs(attrs []slog.Attr) []any {
	args := make([]any, len(attrs))
	for i, attr := range attrs {
		args[i] = attr
	}
	return args
}

// LogToolInvocation logs one completed tool call. Identity fields follow
// the IncludePII setting.
func (al *AuditLogger) LogToolInvocation(ti *ToolInvocation) {
	if !al.enabled {
		return
	}

	args := attrArgs(ti.attrs(al.includePII))
	if ti.Success {
		al.logger.Info("tool_executed", args...)
	} else {
		al.logger.Warn("tool_failed", args...)
	}
}

// LogToolAudit logs the full audit record including PII, regardless of the
// IncludePII setting. Intended for dedicated audit streams only.
func (al *AuditLogger) LogToolAudit(ti *ToolInvocation) {
	if !al.enabled {
		return
	}
	al.logger.Info("tool_audit", attrArgs(ti.LogAuditAttrs())...)
}
