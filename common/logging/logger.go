package logging

import (
	"context"
	"log/slog"
)

type loggerContextKey string

// LoggerKey is the context key holding the request scoped logger.
const LoggerKey = loggerContextKey("logger")

// ContextWithLogger returns a copy of ctx carrying logger.
func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, LoggerKey, logger)
}

// GetLoggerFromContext returns the request logger, or the default logger outside a request.
func GetLoggerFromContext(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return slog.Default()
	}
	logger, ok := ctx.Value(LoggerKey).(*slog.Logger)
	if !ok {
		return slog.Default()
	}
	return logger
}
