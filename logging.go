package records

import (
	"context"
	"log/slog"
	"time"
)

// OperationLogEvent describes one model operation for logging.
type OperationLogEvent struct {
	Operation string
	Table     string
	Rows      int
	Duration  time.Duration
	Err       error
}

// Logger records model operation events.
type Logger interface {
	LogOperation(OperationLogEvent)
}

// LoggerFunc adapts a function to Logger.
type LoggerFunc func(OperationLogEvent)

// LogOperation implements Logger.
func (f LoggerFunc) LogOperation(event OperationLogEvent) {
	if f != nil {
		f(event)
	}
}

type noopLogger struct{}

func (noopLogger) LogOperation(OperationLogEvent) {}

// NewSlogLogger writes operation events to logger: debug on success, warn on
// failure.
func NewSlogLogger(logger *slog.Logger) Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return slogLogger{logger: logger}
}

type slogLogger struct {
	logger *slog.Logger
}

func (l slogLogger) LogOperation(event OperationLogEvent) {
	attrs := []slog.Attr{
		slog.String("operation", event.Operation),
		slog.String("table", event.Table),
		slog.Int("rows", event.Rows),
		slog.Duration("duration", event.Duration),
	}
	if event.Err != nil {
		attrs = append(attrs, slog.String("error", event.Err.Error()))
		l.logger.LogAttrs(context.Background(), slog.LevelWarn, "records operation failed", attrs...)
		return
	}
	l.logger.LogAttrs(context.Background(), slog.LevelDebug, "records operation", attrs...)
}

// WithLogger attaches an operation logger to the Model.
func WithLogger(logger Logger) Option {
	return func(cfg *modelOptions) {
		if logger == nil {
			cfg.logger = noopLogger{}
			return
		}
		cfg.logger = logger
	}
}
