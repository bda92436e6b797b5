package logger

import (
	"context"

	"github.com/narwhalmedia/wrongopinions/pkg/interfaces"
)

// NoopLogger discards every entry. Tests use it where log output would only
// be noise.
type NoopLogger struct{}

var discard interfaces.Logger = NoopLogger{}

// NewNoop returns the shared discarding logger.
func NewNoop() interfaces.Logger {
	return discard
}

// NewNoopLogger is NewNoop.
func NewNoopLogger() interfaces.Logger {
	return discard
}

func (NoopLogger) Debug(string, ...interfaces.Field) {}
func (NoopLogger) Info(string, ...interfaces.Field)  {}
func (NoopLogger) Warn(string, ...interfaces.Field)  {}
func (NoopLogger) Error(string, ...interfaces.Field) {}

// Fatal does not exit.
func (NoopLogger) Fatal(string, ...interfaces.Field) {}

func (n NoopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}

func (n NoopLogger) WithFields(...interfaces.Field) interfaces.Logger {
	return n
}
