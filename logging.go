package realmsched

import "github.com/sirupsen/logrus"

// Logger is the scheduler's logging sink. It accepts severity plus a
// formatted message; the scheduler makes no ordering or durability
// promise about when or whether a given call lands -- a slow or
// misbehaving logger must never be allowed to block the hot path, so
// implementations should be non-blocking themselves.
type Logger interface {
	Debugf(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// logrusLogger adapts a *logrus.Logger to the Logger interface.
type logrusLogger struct {
	l *logrus.Logger
}

// NewLogrusLogger wraps l, or logrus.StandardLogger() if l is nil, as the
// scheduler's Logger.
func NewLogrusLogger(l *logrus.Logger) Logger {
	if l == nil {
		l = logrus.StandardLogger()
	}
	return &logrusLogger{l: l}
}

func (a *logrusLogger) Debugf(format string, args ...any) { a.l.Debugf(format, args...) }
func (a *logrusLogger) Warnf(format string, args ...any)  { a.l.Warnf(format, args...) }
func (a *logrusLogger) Errorf(format string, args ...any) { a.l.Errorf(format, args...) }

// noopLogger discards everything. Useful for tests and for callers that
// genuinely do not want scheduler diagnostics.
type noopLogger struct{}

// NewNoopLogger returns a Logger that discards every call.
func NewNoopLogger() Logger { return noopLogger{} }

func (noopLogger) Debugf(string, ...any) {}
func (noopLogger) Warnf(string, ...any)  {}
func (noopLogger) Errorf(string, ...any) {}
