package telemetry

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	slogmulti "github.com/samber/slog-multi"
	"github.com/taldoflemis/tiffin/pacchetto"
	"go.opentelemetry.io/contrib/bridges/otelslog"
	otelruntime "go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// SetupOTelSDK installs the global propagator, tracer, meter and logger providers for
// one service, and makes slog write JSON to stdout (plus OTLP when enabled).
// The returned shutdown flushes every provider; call it once on exit.
func SetupOTelSDK(
	ctx context.Context,
	app pacchetto.AppSettings,
	cfg pacchetto.OpenTelemetrySettings,
) (func(context.Context) error, error) {
	res, err := resource.New(
		ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(app.Name),
			semconv.ServiceVersionKey.String(app.Version),
			semconv.ServiceNamespaceKey.String("tiffin"),
		),
	)
	if err != nil {
		return nil, err
	}

	var closers []func(context.Context) error
	shutdown := func(ctx context.Context) error {
		var err error
		for _, fn := range closers {
			err = errors.Join(err, fn(ctx))
		}
		closers = nil
		return err
	}
	fail := func(err error) (func(context.Context) error, error) {
		return nil, errors.Join(err, shutdown(ctx))
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	tracerProvider, err := newTraceProvider(ctx, cfg, res)
	if err != nil {
		return fail(err)
	}
	closers = append(closers, tracerProvider.Shutdown)
	otel.SetTracerProvider(tracerProvider)

	loggerProvider, err := newLoggerProvider(ctx, app, cfg, res)
	if err != nil {
		return fail(err)
	}
	closers = append(closers, loggerProvider.Shutdown)
	global.SetLoggerProvider(loggerProvider)

	meterProvider, err := newMeterProvider(ctx, cfg, res)
	if err != nil {
		return fail(err)
	}
	closers = append(closers, meterProvider.Shutdown)
	otel.SetMeterProvider(meterProvider)

	if err := otelruntime.Start(otelruntime.WithMeterProvider(meterProvider)); err != nil {
		return fail(err)
	}

	return shutdown, nil
}

func newTraceProvider(
	ctx context.Context,
	cfg pacchetto.OpenTelemetrySettings,
	res *resource.Resource,
) (*trace.TracerProvider, error) {
	if !cfg.Enabled {
		return trace.NewTracerProvider(trace.WithResource(res)), nil
	}

	exporter, err := otlptracegrpc.New(
		ctx,
		otlptracegrpc.WithEndpoint(cfg.Endpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	return trace.NewTracerProvider(
		trace.WithBatcher(exporter,
			trace.WithBatchTimeout(seconds(cfg.Traces.TimeoutInSec)),
			trace.WithMaxQueueSize(cfg.Traces.MaxQueueSize),
			trace.WithMaxExportBatchSize(cfg.Traces.BatchSize),
		),
		trace.WithSampler(trace.ParentBased(trace.TraceIDRatioBased(float64(cfg.Traces.SampleRate)))),
		trace.WithResource(res),
	), nil
}

func newLoggerProvider(
	ctx context.Context,
	app pacchetto.AppSettings,
	cfg pacchetto.OpenTelemetrySettings,
	res *resource.Resource,
) (*log.LoggerProvider, error) {
	stdout := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{AddSource: true})
	pipeline := slogmulti.Pipe(slogmulti.NewHandleInlineMiddleware(errorFormattingMiddleware))

	if !cfg.Enabled {
		slog.SetDefault(slog.New(pipeline.Handler(stdout)))
		return log.NewLoggerProvider(log.WithResource(res)), nil
	}

	exporter, err := otlploggrpc.New(
		ctx,
		otlploggrpc.WithEndpoint(cfg.Endpoint),
		otlploggrpc.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	loggerProvider := log.NewLoggerProvider(
		log.WithResource(res),
		log.WithProcessor(log.NewBatchProcessor(exporter,
			log.WithMaxQueueSize(cfg.Logs.MaxQueueSize),
			log.WithExportMaxBatchSize(cfg.Logs.BatchSize),
			log.WithExportTimeout(seconds(cfg.Logs.TimeoutInSec)),
			log.WithExportInterval(seconds(cfg.Logs.IntervalInSec)),
		)),
	)

	otlp := otelslog.NewHandler(
		app.Name,
		otelslog.WithLoggerProvider(loggerProvider),
		otelslog.WithVersion(app.Version),
		otelslog.WithSource(true),
	)
	logger := slog.New(pipeline.Handler(slogmulti.Fanout(stdout, otlp)))
	slog.SetDefault(logger)
	logger.InfoContext(ctx, "Logger initialized", slog.String("otlp.endpoint", cfg.Endpoint))

	return loggerProvider, nil
}

func newMeterProvider(
	ctx context.Context,
	cfg pacchetto.OpenTelemetrySettings,
	res *resource.Resource,
) (*metric.MeterProvider, error) {
	// No reader: instruments stay usable but nothing is exported.
	if !cfg.Enabled {
		return metric.NewMeterProvider(metric.WithResource(res)), nil
	}

	exporter, err := otlpmetricgrpc.New(
		ctx,
		otlpmetricgrpc.WithEndpoint(cfg.Endpoint),
		otlpmetricgrpc.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	return metric.NewMeterProvider(
		metric.WithReader(metric.NewPeriodicReader(
			exporter,
			metric.WithInterval(seconds(cfg.Metrics.IntervalInSec)),
			metric.WithTimeout(seconds(cfg.Metrics.TimeoutInSec)),
		)),
		metric.WithResource(res),
	), nil
}

func seconds(n int64) time.Duration {
	return time.Duration(n) * time.Second
}
