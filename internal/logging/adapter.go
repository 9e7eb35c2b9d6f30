package logging

import "log/slog"

// Logger is the leveled logging interface used where a direct slog
// dependency is undesirable, notably the OAuth proxy.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

// SlogAdapter exposes an slog.Logger through the Logger interface.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter wraps logger, falling back to slog.Default for nil.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogAdapter{logger: logger}
}

// DefaultLogger wraps the process-wide default slog.Logger.
func DefaultLogger() *SlogAdapter {
	return NewSlogAdapter(nil)
}

func (a *SlogAdapter) Debug(msg string, args ...interface{}) { a.logger.Debug(msg, args...) }
func (a *SlogAdapter) Info(msg string, args ...interface{})  { a.logger.Info(msg, args...) }
func (a *SlogAdapter) Warn(msg string, args ...interface{})  { a.logger.Warn(msg, args...) }
func (a *SlogAdapter) Error(msg string, args ...interface{}) { a.logger.Error(msg, args...) }

// Logger returns the wrapped slog.Logger for callers that need the full
// slog API.
func (a *SlogAdapter) Logger() *slog.Logger {
	return a.logger
}
