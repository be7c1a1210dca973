package logger

import (
	"context"
	"log/slog"
)

type loggerKey struct{}

// WithLogger seeds ctx with l as the request logger. Later calls to With
// add fields on top of it.
func WithLogger(ctx context.Context, l *slog.Logger) context.Context {
	if l == nil {
		return ctx
	}
	return context.WithValue(ctx, loggerKey{}, l)
}

// With returns a context whose logger carries the extra fields, e.g.
// traceID, user_id and org_id as a request moves through the middleware.
func With(ctx context.Context, fields ...any) context.Context {
	return WithLogger(ctx, From(ctx).With(fields...))
}

// From returns the request logger, or the process logger when ctx has none.
func From(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
			return l
		}
	}
	return LoggerWrapper()
}
