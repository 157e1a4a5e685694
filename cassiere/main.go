package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/taldoflemis/tiffin/pacchetto"
	"github.com/taldoflemis/tiffin/pacchetto/telemetry"
	"google.golang.org/grpc/health"
	healthgrpc "google.golang.org/grpc/health/grpc_health_v1"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

func main() {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()
	retcode := 0
	defer func() {
		os.Exit(retcode)
	}()

	slog.InfoContext(ctx, "Launching cassiere")

	slog.InfoContext(ctx, "Loading config")
	settings, err := LoadConfig()
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", slog.Any("err", err))
		retcode = 1
		return
	}

	slog.InfoContext(ctx, "Setting up opentelemetry")
	otelShutdown, err := telemetry.SetupOTelSDK(ctx, settings.App, settings.OpenTelemetry)
	if err != nil {
		slog.Error("failed to setup telemetry", slog.Any("err", err))
		retcode = 1
		return
	}

	defer func() {
		err = errors.Join(err, otelShutdown(context.Background()))
		if err != nil {
			slog.ErrorContext(
				ctx,
				"failed to shutdown opentelemetry providers",
				slog.Any("err", err),
			)
			retcode = 1
		}
	}()

	slog.InfoContext(ctx, "Connecting to NATS server")
	nc, err := settings.Nats.GetNatsClient()
	if err != nil {
		slog.ErrorContext(ctx, "failed to connect to NATS server", slog.Any("err", err))
		retcode = 1
		return
	}
	defer nc.Close()

	_, stream, err := pacchetto.EnsureOrderStream(ctx, nc, settings.Orders)
	if err != nil {
		retcode = 1
		return
	}

	consumer, err := newOrderConsumer(ctx, stream, settings.Cassiere.ConsumerName, settings.Orders.FinalizedWildcard())
	if err != nil {
		retcode = 1
		return
	}

	ledger := NewLedger()
	cassiere, err := newCassiereHandler(settings.Cassiere, consumer, ledger)
	if err != nil {
		retcode = 1
		return
	}

	slog.InfoContext(ctx, "Creating gRPC server")
	server := pacchetto.CreateGRPCServer()
	healthcheck := health.NewServer()
	healthgrpc.RegisterHealthServer(server, healthcheck)

	if settings.GRPCServer.EnableReflection {
		reflection.Register(server)
	}

	go func() {
		// asynchronously inspect dependencies and toggle serving status as needed
		sleepDuration := time.Duration(settings.GRPCServer.AsyncHealthIntervalInSeconds) * time.Second
		system := ""

		for {
			status := healthpb.HealthCheckResponse_SERVING
			if !nc.IsConnected() {
				status = healthpb.HealthCheckResponse_NOT_SERVING
			}
			healthcheck.SetServingStatus(system, status)

			select {
			case <-ctx.Done():
				return
			case <-time.After(sleepDuration):
			}
		}
	}()

	lis, err := net.Listen("tcp", fmt.Sprintf("%s:%s", settings.GRPCServer.Host, strconv.Itoa(settings.GRPCServer.Port)))
	if err != nil {
		slog.ErrorContext(ctx, "failed to listen", slog.Any("err", err))
		retcode = 1
		return
	}

	slog.InfoContext(ctx, "Starting gRPC server", slog.Any("addr", lis.Addr()))

	errChan := make(chan error, 2)
	go func() {
		err := server.Serve(lis)
		if err != nil {
			slog.ErrorContext(ctx, "failed to serve", slog.Any("err", err))
			errChan <- err
		}
	}()

	slog.InfoContext(ctx, "Starting to book finalized orders")
	go func() {
		err := cassiere.Run(ctx)
		if err != nil {
			slog.ErrorContext(ctx, "failed to book orders", slog.Any("err", err))
			errChan <- err
		}
	}()

	select {
	case err = <-errChan:
		slog.ErrorContext(ctx, "cassiere stopped", slog.Any("err", err))
		retcode = 1
	case <-ctx.Done():
		// Wait for first Signal arrives
	}

	for location, tally := range ledger.Snapshot() {
		slog.InfoContext(ctx, "Closing tally",
			slog.String("location", string(location)),
			slog.Int("orders", tally.Orders),
			slog.Int("revenue", tally.Revenue),
		)
	}

	slog.InfoContext(ctx, "Shutting down gRPC server")
	server.GracefulStop()
	slog.InfoContext(ctx, "gRPC server stopped")
}
