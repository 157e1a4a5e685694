package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/taldoflemis/tiffin/ordine"
	"github.com/taldoflemis/tiffin/pacchetto/telemetry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var (
	tracer = otel.Tracer("cassiere")
	meter  = otel.Meter("cassiere")
)

type cassiereHandler struct {
	settings        CassiereSettings
	consumer        jetstream.Consumer
	ledger          *Ledger
	bookedCounter   metric.Int64Counter
	revenueCounter  metric.Int64Counter
	rejectedCounter metric.Int64Counter
}

func newCassiereHandler(settings CassiereSettings, consumer jetstream.Consumer, ledger *Ledger) (*cassiereHandler, error) {
	ctx := context.Background()

	bookedCounter, err := meter.Int64Counter(
		"cassiere.order.booked",
		metric.WithDescription("Number of finalized orders booked in the ledger"),
		metric.WithUnit("{order}"),
	)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create booked counter", slog.Any("err", err))
		return nil, err
	}

	revenueCounter, err := meter.Int64Counter(
		"cassiere.order.revenue",
		metric.WithDescription("Sum of the totals of booked orders"),
	)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create revenue counter", slog.Any("err", err))
		return nil, err
	}

	rejectedCounter, err := meter.Int64Counter(
		"cassiere.order.rejected",
		metric.WithDescription("Number of orders the ledger refused to book"),
		metric.WithUnit("{order}"),
	)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create rejected counter", slog.Any("err", err))
		return nil, err
	}

	return &cassiereHandler{
		settings:        settings,
		consumer:        consumer,
		ledger:          ledger,
		bookedCounter:   bookedCounter,
		revenueCounter:  revenueCounter,
		rejectedCounter: rejectedCounter,
	}, nil
}

// newOrderConsumer creates the durable pull consumer for finalized orders.
func newOrderConsumer(ctx context.Context, stream jetstream.Stream, name, filterSubject string) (jetstream.Consumer, error) {
	c, err := stream.CreateOrUpdateConsumer(ctx, jetstream.ConsumerConfig{
		Durable:       name,
		FilterSubject: filterSubject,
		AckPolicy:     jetstream.AckExplicitPolicy,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to create consumer", slog.Any("err", err))
		return nil, err
	}
	return c, nil
}

// Run books orders until ctx is cancelled.
func (h *cassiereHandler) Run(ctx context.Context) error {
	slog.InfoContext(ctx, "Cassiere is opening the till")

	for {
		if ctx.Err() != nil {
			slog.InfoContext(ctx, "Cassiere is closing the till")
			return nil
		}

		orders, err := h.getNewBatchMessages(ctx)
		if err != nil {
			if errors.Is(err, jetstream.ErrConsumerDeleted) {
				return err
			}
			select {
			case <-ctx.Done():
			case <-time.After(time.Second):
			}
			continue
		}

		for order := range orders.Messages() {
			h.processOrder(ctx, order)
		}

		if err := orders.Error(); err != nil && !errors.Is(err, context.Canceled) {
			slog.WarnContext(ctx, "batch ended with error", slog.Any("err", err))
		}
	}
}

func (h *cassiereHandler) getNewBatchMessages(ctx context.Context) (jetstream.MessageBatch, error) {
	ctx, span := tracer.Start(ctx, "cassiereHandler.getNewBatchMessages")
	defer span.End()

	slog.DebugContext(ctx, "Fetching new batch of messages")
	msgs, err := h.consumer.Fetch(h.settings.OrderBatchSize,
		jetstream.FetchMaxWait(time.Duration(h.settings.FetchMaxWaitInSeconds)*time.Second),
	)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to consume messages", slog.Any("err", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	return msgs, nil
}

func (h *cassiereHandler) processOrder(ctx context.Context, msg jetstream.Msg) {
	ctx = telemetry.GetContextFromJetstreamMsg(ctx, msg)
	ctx, span := tracer.Start(ctx, "cassiereHandler.processOrder")
	defer span.End()

	var entry ordine.Entry

	err := json.Unmarshal(msg.Data(), &entry)
	if err != nil {
		slog.ErrorContext(ctx, "failed to unmarshal order from NATS message", slog.Any("err", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		h.rejectedCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", "undecodable")))
		h.term(ctx, msg)
		return
	}

	span.SetAttributes(
		attribute.String("tiffin.orderid", entry.ID),
		attribute.String("order.location", string(entry.Location)),
		attribute.Int("order.total_price", entry.TotalPrice),
	)

	err = h.ledger.Book(entry)
	switch {
	case errors.Is(err, ErrDuplicateOrder):
		slog.InfoContext(ctx, "Order already booked, acknowledging redelivery", slog.String("order-id", entry.ID))
	case err != nil:
		slog.ErrorContext(ctx, "Refusing to book order", slog.String("order-id", entry.ID), slog.Any("err", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		h.rejectedCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", rejectionReason(err))))
		h.term(ctx, msg)
		return
	default:
		locationAttr := metric.WithAttributes(attribute.String("order.location", string(entry.Location)))
		h.bookedCounter.Add(ctx, 1, locationAttr)
		h.revenueCounter.Add(ctx, int64(entry.TotalPrice), locationAttr)
		slog.InfoContext(ctx, "Order booked", slog.String("order-id", entry.ID), slog.Int("total-price", entry.TotalPrice))
	}

	err = msg.Ack()
	if err != nil {
		slog.ErrorContext(ctx, "Failed to acknowledge message", slog.Any("err", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

func (h *cassiereHandler) term(ctx context.Context, msg jetstream.Msg) {
	span := trace.SpanFromContext(ctx)
	if err := msg.Term(); err != nil {
		slog.ErrorContext(ctx, "Failed to terminate message", slog.Any("err", err))
		span.RecordError(err)
	}
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, ErrPriceMismatch):
		return "price_mismatch"
	case errors.Is(err, ErrUnknownLocation):
		return "unknown_location"
	default:
		return "other"
	}
}
