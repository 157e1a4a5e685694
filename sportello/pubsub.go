package main

import (
	"context"
	"log/slog"
	"sync"

	"github.com/taldoflemis/tiffin/ordine"
)

type OrderPubSubber interface {
	PubOrder(ctx context.Context, entry ordine.Entry) error
	SubLiveOrders(ctx context.Context, subscriberID string) (<-chan ordine.Entry, error)
	UnsubLiveOrders(ctx context.Context, subscriberID string) error
}

type GoChannelOrderPubSubber struct {
	liveEventSubscribers map[string]chan ordine.Entry
	channelSize          int
	mu                   sync.Mutex
}

func NewGoChannelOrderPubSubber(channelSize int) *GoChannelOrderPubSubber {
	return &GoChannelOrderPubSubber{
		liveEventSubscribers: make(map[string]chan ordine.Entry),
		channelSize:          channelSize,
	}
}

var _ OrderPubSubber = (*GoChannelOrderPubSubber)(nil)

// PubOrder implements OrderPubSubber. A subscriber whose buffer is full misses the order.
func (g *GoChannelOrderPubSubber) PubOrder(ctx context.Context, entry ordine.Entry) error {
	ctx, span := tracer.Start(ctx, "GoChannelOrderPubSubber.PubOrder")
	defer span.End()

	slog.InfoContext(ctx, "publishing order", slog.String("order_id", entry.ID))

	g.mu.Lock()
	defer g.mu.Unlock()

	for id, subChan := range g.liveEventSubscribers {
		select {
		case subChan <- entry:
		default:
			slog.WarnContext(ctx, "live subscriber is lagging, dropping order",
				slog.String("subscriber_id", id), slog.String("order_id", entry.ID))
		}
	}

	return nil
}

// SubLiveOrders implements OrderPubSubber.
func (g *GoChannelOrderPubSubber) SubLiveOrders(ctx context.Context, subscriberID string) (<-chan ordine.Entry, error) {
	ctx, span := tracer.Start(ctx, "GoChannelOrderPubSubber.SubLiveOrders")
	defer span.End()

	slog.InfoContext(ctx, "subscribing to live orders", slog.String("subscriber_id", subscriberID))

	ch := make(chan ordine.Entry, g.channelSize)
	g.mu.Lock()
	g.liveEventSubscribers[subscriberID] = ch
	g.mu.Unlock()
	return ch, nil
}

// UnsubLiveOrders implements OrderPubSubber.
func (g *GoChannelOrderPubSubber) UnsubLiveOrders(ctx context.Context, subscriberID string) error {
	ctx, span := tracer.Start(ctx, "GoChannelOrderPubSubber.UnsubLiveOrders")
	defer span.End()

	slog.InfoContext(ctx, "unsubscribing from live orders", slog.String("subscriber_id", subscriberID))

	g.mu.Lock()
	delete(g.liveEventSubscribers, subscriberID)
	g.mu.Unlock()
	return nil
}
