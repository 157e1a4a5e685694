package pacchetto

import (
	"bytes"
	"log"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

var allowedHeaders = map[string]struct{}{
	"Accept": {}, "Authorization": {}, "Content-Type": {}, "X-CSRF-Token": {},
}

// NewValidator returns a validator that knows the custom tags used by the settings
// structs in this package.
func NewValidator() *validator.Validate {
	validate := validator.New()
	validate.RegisterValidation("baseheader", func(fl validator.FieldLevel) bool {
		header := fl.Field().String()
		_, ok := allowedHeaders[header]
		return ok
	})
	return validate
}

// LoadConfig reads the embedded yaml, overlays environment variables named
// <envPrefix>_<SECTION>_<KEY> and validates the result.
func LoadConfig[T any](envPrefix string, baseConfig []byte) (*T, error) {
	var cfg *T

	v := viper.New()
	v.SetConfigType("yaml")
	err := v.ReadConfig(bytes.NewReader(baseConfig))
	if err != nil {
		log.Println("Failed to read config from yaml")
		return nil, err
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", ""))
	v.AutomaticEnv()

	err = v.Unmarshal(&cfg)
	if err != nil {
		return nil, err
	}

	if err := NewValidator().Struct(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
