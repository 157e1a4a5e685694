package pacchetto

import (
	"context"
	"log/slog"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// FinalizedSubject is the subject a finalized order with the given id is published on.
func (o OrderStreamSettings) FinalizedSubject(orderID string) string {
	return o.Subject + ".finalized." + orderID
}

// FinalizedWildcard matches every finalized order.
func (o OrderStreamSettings) FinalizedWildcard() string {
	return o.Subject + ".finalized.*"
}

// EnsureOrderStream creates the order stream, or updates it when it already exists.
// Both producers and consumers call it so start order does not matter.
func EnsureOrderStream(ctx context.Context, nc *nats.Conn, cfg OrderStreamSettings) (jetstream.JetStream, jetstream.Stream, error) {
	js, err := jetstream.New(nc)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create jetstream context", slog.Any("err", err))
		return nil, nil, err
	}

	stream, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     cfg.Stream,
		Subjects: []string{cfg.Subject + ".>"},
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to create or update stream", slog.String("stream", cfg.Stream), slog.Any("err", err))
		return nil, nil, err
	}

	return js, stream, nil
}
