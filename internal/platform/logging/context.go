package logging

import (
	"context"
	"log/slog"
)

// Attribute keys carried by request-scoped loggers.
const (
	KeyRequestID      = "request_id"
	KeyCorrelationID  = "correlation_id"
	KeyTraceID        = "trace_id"
	KeyOrganizationID = "organization_id"
	KeyUserID         = "user_id"
	KeyActor          = "actor"
)

type ctxKey struct{}

var defaultLogger = slog.Default()

// FromContext returns the request logger, or the default logger when ctx
// carries none.
func FromContext(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return defaultLogger
	}

	if logger, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
		return logger
	}

	return defaultLogger
}

// WithContext stores logger in ctx.
func WithContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// With returns ctx with a logger enriched by key=value. Empty values leave
// ctx untouched.
func With(ctx context.Context, key, value string) context.Context {
	if value == "" {
		return ctx
	}

	return WithContext(ctx, FromContext(ctx).With(slog.String(key, value)))
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return With(ctx, KeyRequestID, id)
}

func WithCorrelationID(ctx context.Context, id string) context.Context {
	return With(ctx, KeyCorrelationID, id)
}

func WithTraceID(ctx context.Context, id string) context.Context {
	return With(ctx, KeyTraceID, id)
}

// WithOrganizationID tags every later log line of the request with the
// organization it targets.
func WithOrganizationID(ctx context.Context, id string) context.Context {
	return With(ctx, KeyOrganizationID, id)
}

// WithUserID tags later log lines with the user the request targets.
func WithUserID(ctx context.Context, id string) context.Context {
	return With(ctx, KeyUserID, id)
}

// SetDefault replaces the fallback logger and the slog default.
func SetDefault(logger *slog.Logger) {
	defaultLogger = logger
	slog.SetDefault(logger)
}
