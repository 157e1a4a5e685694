package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	healthgo "github.com/hellofresh/health-go/v5"
	"github.com/labstack/echo-contrib/pprof"
	"github.com/labstack/echo/v4"
	"github.com/nats-io/nats.go"
	"github.com/taldoflemis/tiffin/pacchetto/telemetry"
)

// @title						Sportello
// @version						1.0
// @description				Meal order counter: availability, validation and submission.
// @host						localhost:8080
// @BasePath  					/
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

	slog.InfoContext(ctx, "Launching sportello")

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

	healthOpts := []healthgo.Option{
		healthgo.WithComponent(healthgo.Component{
			Name:    settings.App.Name,
			Version: settings.App.Version,
		}),
	}

	var orderPubSubber OrderPubSubber
	switch settings.Bus.Driver {
	case "nats":
		slog.InfoContext(ctx, "Connecting to NATS server")
		var nc *nats.Conn
		nc, err = settings.Nats.GetNatsClient()
		if err != nil {
			slog.ErrorContext(ctx, "failed to connect to NATS server", slog.Any("err", err))
			retcode = 1
			return
		}
		defer nc.Close()

		orderPubSubber, err = NewNATSOrderPubSubber(ctx, nc, settings.Orders, settings.Bus.ChannelSize)
		if err != nil {
			slog.ErrorContext(ctx, "failed to create order pub/subber", slog.Any("err", err))
			retcode = 1
			return
		}

		healthOpts = append(healthOpts, healthgo.WithChecks(healthgo.Config{
			Name: "nats",
			Check: func(ctx context.Context) error {
				if !nc.IsConnected() {
					return errors.New("NATS connection is not active")
				}
				return nil
			},
		}))
	default:
		orderPubSubber = NewGoChannelOrderPubSubber(settings.Bus.ChannelSize)
	}

	slog.InfoContext(ctx, "Setting up health checker")
	health, err := healthgo.New(healthOpts...)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create health checker", slog.Any("err", err))
		retcode = 1
		return
	}

	server := echo.New()

	_, err = NewMainHandler(server, settings, orderPubSubber, NewOrderTable(), health)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create handler", slog.Any("err", err))
		retcode = 1
		return
	}
	pprof.Register(server)

	slog.InfoContext(ctx, "listening for requests", slog.String("ip", settings.HTTP.IP), slog.String("port", settings.HTTP.Port))
	err = runServer(ctx, server, fmt.Sprintf("%s:%s", settings.HTTP.IP, settings.HTTP.Port))
	if err != nil {
		slog.ErrorContext(ctx, "error when running server", slog.Any("err", err))
		retcode = 1
	}
}

// runServer serves until the server fails or ctx is done, then shuts it down and
// waits for the listener goroutine to exit.
func runServer(ctx context.Context, server *echo.Echo, addr string) error {
	errChan := make(chan error, 1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		err := server.Start(addr)
		if !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		<-done
		return err
	case <-ctx.Done():
	}

	err := server.Shutdown(context.Background())
	<-done
	if err != nil {
		return fmt.Errorf("shutdown server: %w", err)
	}
	return nil
}
