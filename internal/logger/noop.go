package logger

import "time"

// NoOpLogger is a logger that does nothing. It is used in tests.
type NoOpLogger struct{}

// NewNoOp creates a new no-op logger instance.
func NewNoOp() Interface {
	return &NoOpLogger{}
}

func (l *NoOpLogger) Debug(msg string, fields ...any) {}
func (l *NoOpLogger) Info(msg string, fields ...any)  {}
func (l *NoOpLogger) Warn(msg string, fields ...any)  {}
func (l *NoOpLogger) Error(msg string, fields ...any) {}
func (l *NoOpLogger) Fatal(msg string, fields ...any) {}

func (l *NoOpLogger) With(fields ...any) Interface { return l }

func (l *NoOpLogger) WithComponent(component string) Interface { return l }

func (l *NoOpLogger) WithError(err error) Interface { return l }

func (l *NoOpLogger) WithDuration(duration time.Duration) Interface { return l }
