package instrumentation

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"time"
)

// Exporter names accepted by the configuration.
const (
	ExporterPrometheus = "prometheus"
	ExporterOTLP       = "otlp"
	ExporterStdout     = "stdout"
	ExporterNone       = "none"
)

// Metric label values. Metrics and audit logs share these so the two can be
// correlated.
const (
	StatusSuccess = "success"
	StatusError   = "error"
	StatusUnknown = "unknown"

	OAuthResultSuccess = "success"
	OAuthResultFailure = "failure"
	OAuthResultExpired = "expired"

	ServiceSheets = "sheets"
	ServiceForms  = "forms"
	ServiceDrive  = "drive"

	DefaultMetricInterval = 10 * time.Second
)

// Config controls the OpenTelemetry setup.
type Config struct {
	// ServiceName identifies this service in exported telemetry
	// (default: gsheets-mcp)
	ServiceName string

	// ServiceVersion is stamped onto the OTel resource
	ServiceVersion string

	// ServiceInstanceID distinguishes replicas, the pod name under
	// Kubernetes. Falls back to the hostname when empty
	ServiceInstanceID string

	// K8sNamespace and K8sPodName are attached as resource attributes when
	// running in a cluster
	K8sNamespace string
	K8sPodName   string

	// Enabled turns the whole subsystem on or off
	// (INSTRUMENTATION_ENABLED)
	Enabled bool

	// MetricsExporter is one of prometheus, otlp, or stdout
	MetricsExporter string

	// TracingExporter is one of otlp, stdout, or none
	TracingExporter string

	// OTLPEndpoint is the collector address without a protocol prefix,
	// for example "localhost:4318"
	OTLPEndpoint string

	// OTLPInsecure disables TLS on the OTLP export path. Spans can carry
	// sensitive metadata, so plaintext is only acceptable against a local
	// collector
	OTLPInsecure bool

	// TraceSamplingRate is the head sampling ratio, 0.0 to 1.0
	TraceSamplingRate float64

	// PrometheusEndpoint is the scrape path (default: /metrics)
	PrometheusEndpoint string

	// DetailedLabels opts into high-cardinality labels such as per-user
	// identifiers. Keep off in production
	DetailedLabels bool

	// AuditLogging configures the tool invocation audit trail
	AuditLogging AuditLoggingConfig
}

// AuditLoggingConfig controls the audit trail of tool invocations.
type AuditLoggingConfig struct {
	// Enabled turns audit logging on (default: true)
	Enabled bool

	// IncludePII switches from anonymized identifiers to full email
	// addresses. Only enable when the audit stream has access controls
	IncludePII bool

	// LogLevel is the slog level for audit records (default: info)
	LogLevel string
}

// DefaultConfig reads the configuration from the environment, falling back
// to defaults suitable for a single local instance.
func DefaultConfig() Config {
	return Config{
		ServiceName:        envString("OTEL_SERVICE_NAME", "gsheets-mcp"),
		ServiceVersion:     "unknown",
		ServiceInstanceID:  envString("OTEL_SERVICE_INSTANCE_ID", ""),
		K8sNamespace:       envString("K8S_NAMESPACE", envString("POD_NAMESPACE", "")),
		K8sPodName:         envString("K8S_POD_NAME", envString("HOSTNAME", "")),
		Enabled:            envBool("INSTRUMENTATION_ENABLED", true),
		MetricsExporter:    envString("METRICS_EXPORTER", ExporterPrometheus),
		TracingExporter:    envString("TRACING_EXPORTER", ExporterNone),
		OTLPEndpoint:       envString("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		OTLPInsecure:       envBool("OTEL_EXPORTER_OTLP_INSECURE", false),
		TraceSamplingRate:  envFloat("OTEL_TRACES_SAMPLER_ARG", 0.1),
		PrometheusEndpoint: envString("PROMETHEUS_ENDPOINT", "/metrics"),
		DetailedLabels:     envBool("METRICS_DETAILED_LABELS", false),
		AuditLogging: AuditLoggingConfig{
			Enabled:    envBool("AUDIT_LOGGING_ENABLED", true),
			IncludePII: envBool("AUDIT_LOGGING_INCLUDE_PII", false),
			LogLevel:   envString("AUDIT_LOGGING_LEVEL", "info"),
		},
	}
}

// Validate reports configuration errors before any exporter is built.
func (c *Config) Validate() error {
	if c.TraceSamplingRate < 0 || c.TraceSamplingRate > 1 {
		return fmt.Errorf("trace sampling rate must be between 0.0 and 1.0, got %f", c.TraceSamplingRate)
	}

	if c.MetricsExporter != "" && !slices.Contains([]string{ExporterPrometheus, ExporterOTLP, ExporterStdout}, c.MetricsExporter) {
		return fmt.Errorf("invalid metrics exporter %q, must be one of: prometheus, otlp, stdout", c.MetricsExporter)
	}
	if c.TracingExporter != "" && !slices.Contains([]string{ExporterOTLP, ExporterStdout, ExporterNone}, c.TracingExporter) {
		return fmt.Errorf("invalid tracing exporter %q, must be one of: otlp, stdout, none", c.TracingExporter)
	}

	if c.TracingExporter == ExporterOTLP && c.OTLPEndpoint == "" {
		return fmt.Errorf("OTLP endpoint is required when using OTLP tracing exporter")
	}
	if c.MetricsExporter == ExporterOTLP && c.OTLPEndpoint == "" {
		return fmt.Errorf("OTLP endpoint is required when using OTLP metrics exporter")
	}

	return nil
}

func envString(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func envFloat(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}
