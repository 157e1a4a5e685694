package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/nats-io/nats.go"
	slogmulti "github.com/samber/slog-multi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

func TestErrorFormattingMiddleware(t *testing.T) {
	var buf bytes.Buffer
	handler := slogmulti.Pipe(slogmulti.NewHandleInlineMiddleware(errorFormattingMiddleware)).
		Handler(slog.NewJSONHandler(&buf, nil))
	logger := slog.New(handler)

	logger.Error("failed to publish", slog.Any("err", errors.New("boom")), slog.String("order_id", "42"))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "42", line["order_id"])
	assert.Equal(t, map[string]any{"kind": "*errors.errorString", "message": "boom"}, line["err"])
}

func TestFormatErrorAttrLeavesOtherValues(t *testing.T) {
	attr := slog.Int("count", 3)
	assert.Equal(t, attr, formatErrorAttr(attr))

	attr = slog.Any("meals", []string{"lunch"})
	assert.Equal(t, attr, formatErrorAttr(attr))
}

func TestNatsTraceContextRoundTrip(t *testing.T) {
	otel.SetTextMapPropagator(newPropagator())

	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
		Remote:     true,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	msg := &nats.Msg{Subject: "orders.finalized.1"}
	InjectContextToNatsMsg(ctx, msg)

	assert.NotEmpty(t, msg.Header.Get("traceparent"))

	got := trace.SpanContextFromContext(GetContextFromNatsMsg(context.Background(), msg))
	assert.Equal(t, traceID, got.TraceID())
	assert.Equal(t, spanID, got.SpanID())
}
