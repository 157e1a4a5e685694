package main

import (
	_ "embed"

	"github.com/taldoflemis/tiffin/pacchetto"
)

//go:embed base.yaml
var baseConfig []byte

type CassiereSettings struct {
	ConsumerName          string `mapstructure:"consumer-name" validate:"required"`
	OrderBatchSize        int    `mapstructure:"order-batch-size" validate:"required,min=1"`
	FetchMaxWaitInSeconds int    `mapstructure:"fetch-max-wait-in-seconds" validate:"required,min=1"`
}

type Settings struct {
	App           pacchetto.AppSettings           `mapstructure:"app" validate:"required"`
	Cassiere      CassiereSettings                `mapstructure:"cassiere" validate:"required"`
	Nats          pacchetto.NatsSettings          `mapstructure:"nats" validate:"required"`
	Orders        pacchetto.OrderStreamSettings   `mapstructure:"orders" validate:"required"`
	OpenTelemetry pacchetto.OpenTelemetrySettings `mapstructure:"opentelemetry" validate:"required"`
	GRPCServer    pacchetto.GRPCServerSettings    `mapstructure:"grpc-server" validate:"required"`
}

func LoadConfig() (*Settings, error) {
	return pacchetto.LoadConfig[Settings]("CASSIERE", baseConfig)
}
