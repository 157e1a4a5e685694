package telemetry

import (
	"context"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// InjectContextToNatsMsg writes the trace context of ctx into the message headers.
func InjectContextToNatsMsg(ctx context.Context, msg *nats.Msg) {
	if msg.Header == nil {
		msg.Header = nats.Header{}
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(msg.Header))
}

// GetContextFromNatsMsg returns ctx enriched with the trace context carried by msg.
func GetContextFromNatsMsg(ctx context.Context, msg *nats.Msg) context.Context {
	return otel.GetTextMapPropagator().Extract(ctx, propagation.HeaderCarrier(msg.Header))
}

// GetContextFromJetstreamMsg returns ctx enriched with the trace context carried by msg.
func GetContextFromJetstreamMsg(ctx context.Context, msg jetstream.Msg) context.Context {
	return otel.GetTextMapPropagator().Extract(ctx, propagation.HeaderCarrier(msg.Headers()))
}
