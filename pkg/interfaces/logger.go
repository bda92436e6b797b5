package interfaces

import (
	"context"
	"fmt"
	"time"
)

// Logger is the structured logger every service, handler and adapter takes.
// Implementations live in pkg/logger.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)

	// Fatal logs and exits the process. Only cmd/ may call it.
	Fatal(msg string, fields ...Field)

	// WithContext returns a logger carrying request-scoped fields from ctx
	WithContext(ctx context.Context) Logger

	WithFields(fields ...Field) Logger
}

// Field is one key/value pair attached to a log entry.
type Field struct {
	Key   string
	Value interface{}
}

func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

// Duration keeps the value a time.Duration so the encoder renders it in its
// configured unit.
func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value}
}

// ID logs an identifier such as a uuid.UUID by its string form.
func ID(key string, id fmt.Stringer) Field {
	return Field{Key: key, Value: id.String()}
}

// Error creates a field under the "error" key.
func Error(err error) Field {
	return Field{Key: "error", Value: err}
}

func Any(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}
