package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/taldoflemis/tiffin/ordine"
	"github.com/taldoflemis/tiffin/pacchetto"
	"github.com/taldoflemis/tiffin/pacchetto/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// NATSOrderPubSubber publishes finalized orders to the JetStream order stream and
// fans live orders out from plain NATS subscriptions on the same subjects.
type NATSOrderPubSubber struct {
	nc          *nats.Conn
	js          jetstream.JetStream
	orders      pacchetto.OrderStreamSettings
	channelSize int
	mu          sync.Mutex
	subs        map[string]*nats.Subscription
}

var _ OrderPubSubber = (*NATSOrderPubSubber)(nil)

func NewNATSOrderPubSubber(ctx context.Context, nc *nats.Conn, orders pacchetto.OrderStreamSettings, channelSize int) (*NATSOrderPubSubber, error) {
	js, _, err := pacchetto.EnsureOrderStream(ctx, nc, orders)
	if err != nil {
		return nil, err
	}

	return &NATSOrderPubSubber{
		nc:          nc,
		js:          js,
		orders:      orders,
		channelSize: channelSize,
		subs:        make(map[string]*nats.Subscription),
	}, nil
}

// PubOrder implements OrderPubSubber.
func (n *NATSOrderPubSubber) PubOrder(ctx context.Context, entry ordine.Entry) error {
	ctx, span := tracer.Start(ctx, "NATSOrderPubSubber.PubOrder")
	defer span.End()
	span.SetAttributes(attribute.String("tiffin.orderid", entry.ID))

	msg := &nats.Msg{
		Subject: n.orders.FinalizedSubject(entry.ID),
		Header:  nats.Header{},
	}
	telemetry.InjectContextToNatsMsg(ctx, msg)

	data, err := json.Marshal(entry)
	if err != nil {
		slog.ErrorContext(ctx, "failed to marshal order to json", slog.Any("err", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to marshal order")
		return err
	}
	msg.Data = data

	_, err = n.js.PublishMsg(ctx, msg, jetstream.WithMsgID(entry.ID))
	if err != nil {
		slog.ErrorContext(ctx, "failed to publish order", slog.String("subject", msg.Subject), slog.Any("err", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to publish order")
		return err
	}

	slog.InfoContext(ctx, "published order", slog.String("order_id", entry.ID))
	return nil
}

// SubLiveOrders implements OrderPubSubber.
func (n *NATSOrderPubSubber) SubLiveOrders(ctx context.Context, subscriberID string) (<-chan ordine.Entry, error) {
	ctx, span := tracer.Start(ctx, "NATSOrderPubSubber.SubLiveOrders")
	defer span.End()

	orderCh := make(chan ordine.Entry, n.channelSize)
	sub, err := n.nc.Subscribe(n.orders.FinalizedWildcard(), func(msg *nats.Msg) {
		msgCtx := telemetry.GetContextFromNatsMsg(context.Background(), msg)

		var entry ordine.Entry
		err := json.Unmarshal(msg.Data, &entry)
		if err != nil {
			slog.ErrorContext(msgCtx, "failed to unmarshal order from NATS message", slog.Any("err", err))
			return
		}

		select {
		case orderCh <- entry:
		default:
			slog.WarnContext(msgCtx, "live subscriber is lagging, dropping order",
				slog.String("subscriber_id", subscriberID), slog.String("order_id", entry.ID))
		}
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to subscribe to NATS subject", slog.String("subject", n.orders.FinalizedWildcard()), slog.Any("err", err))
		span.SetStatus(codes.Error, "failed to subscribe to NATS subject")
		span.RecordError(err)
		return nil, err
	}

	n.mu.Lock()
	n.subs[subscriberID] = sub
	n.mu.Unlock()

	return orderCh, nil
}

// UnsubLiveOrders implements OrderPubSubber.
func (n *NATSOrderPubSubber) UnsubLiveOrders(ctx context.Context, subscriberID string) error {
	ctx, span := tracer.Start(ctx, "NATSOrderPubSubber.UnsubLiveOrders")
	defer span.End()

	slog.InfoContext(ctx, "unsubscribing from live orders", slog.String("subscriber_id", subscriberID))

	n.mu.Lock()
	sub, ok := n.subs[subscriberID]
	delete(n.subs, subscriberID)
	n.mu.Unlock()

	if !ok {
		slog.WarnContext(ctx, "no subscription found for subscriber", slog.String("subscriber_id", subscriberID))
		return nil
	}

	return sub.Unsubscribe()
}
