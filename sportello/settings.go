package main

import (
	_ "embed"

	"github.com/taldoflemis/tiffin/pacchetto"
)

//go:embed base.yaml
var baseConfig []byte

type BusSettings struct {
	// memory keeps live orders in-process, nats publishes them to the order stream
	Driver      string `mapstructure:"driver" validate:"required,oneof=memory nats"`
	ChannelSize int    `mapstructure:"channel-size" validate:"min=1"`
}

type Settings struct {
	App           pacchetto.AppSettings           `mapstructure:"app" validate:"required"`
	HTTP          pacchetto.HTTPSettings          `mapstructure:"http" validate:"required"`
	OpenTelemetry pacchetto.OpenTelemetrySettings `mapstructure:"opentelemetry" validate:"required"`
	Bus           BusSettings                     `mapstructure:"bus" validate:"required"`
	Nats          pacchetto.NatsSettings          `mapstructure:"nats" validate:"required"`
	Orders        pacchetto.OrderStreamSettings   `mapstructure:"orders" validate:"required"`
}

func LoadConfig() (*Settings, error) {
	return pacchetto.LoadConfig[Settings]("SPORTELLO", baseConfig)
}
