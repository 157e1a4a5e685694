package telemetry

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taldoflemis/tiffin/pacchetto"
	"go.opentelemetry.io/otel"
)

func TestSetupOTelSDKWithoutExporters(t *testing.T) {
	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	shutdown, err := SetupOTelSDK(
		context.Background(),
		pacchetto.AppSettings{Name: "tiffin-test", Version: "0.0.0"},
		pacchetto.OpenTelemetrySettings{Enabled: false},
	)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"traceparent", "tracestate", "baggage"}, otel.GetTextMapPropagator().Fields())
	assert.NotSame(t, previous, slog.Default())

	_, span := otel.Tracer("setup-test").Start(context.Background(), "span")
	assert.True(t, span.SpanContext().IsValid())
	span.End()

	assert.NoError(t, shutdown(context.Background()))
	assert.NoError(t, shutdown(context.Background()), "second shutdown is a no-op")
}
