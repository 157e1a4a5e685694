package telemetry

import (
	"context"
	"fmt"
	"log/slog"
)

// errorFormattingMiddleware expands error attributes into a group holding the
// error type and message, so JSON output does not collapse them to "{}".
func errorFormattingMiddleware(
	ctx context.Context,
	record slog.Record,
	next func(context.Context, slog.Record) error,
) error {
	formatted := slog.NewRecord(record.Time, record.Level, record.Message, record.PC)

	record.Attrs(func(attr slog.Attr) bool {
		formatted.AddAttrs(formatErrorAttr(attr))
		return true
	})

	return next(ctx, formatted)
}

func formatErrorAttr(attr slog.Attr) slog.Attr {
	if attr.Value.Kind() != slog.KindAny {
		return attr
	}
	err, ok := attr.Value.Any().(error)
	if !ok {
		return attr
	}
	return slog.Group(attr.Key,
		slog.String("kind", fmt.Sprintf("%T", err)),
		slog.String("message", err.Error()),
	)
}
