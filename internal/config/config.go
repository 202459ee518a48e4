// Package config loads the service configuration from the environment.
//
// Variables use the PIPELINE_ prefix and a double underscore to nest keys:
//
//	PIPELINE_PRIMARY__ENV=development
//	PIPELINE_SERVER__PORT=5099
//	PIPELINE_OBSERVABILITY__NEW_RELIC__LICENSE_KEY=...
//
// A `.env` file in the working directory is loaded first when present.
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix   = "PIPELINE_"
	serviceName = "schema-pipeline"
)

// Config is the root configuration object for the application.
type Config struct {
	Primary       Primary              `koanf:"primary" validate:"required"`
	Server        ServerConfig         `koanf:"server" validate:"required"`
	Observability *ObservabilityConfig `koanf:"observability"`
}

type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

// ServerConfig groups settings for the HTTP server runtime. Timeouts are in
// seconds; zero means no timeout.
type ServerConfig struct {
	Port               string   `koanf:"port" validate:"required,numeric"`
	ReadTimeout        int      `koanf:"read_timeout" validate:"min=0"`
	WriteTimeout       int      `koanf:"write_timeout" validate:"min=0"`
	IdleTimeout        int      `koanf:"idle_timeout" validate:"min=0"`
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins"`

	// BodyLimit caps request bodies, in echo's size notation ("1M", "512K").
	BodyLimit string `koanf:"body_limit" validate:"required"`

	// CaseSensitive turns off case-insensitive method and path matching.
	CaseSensitive bool `koanf:"case_sensitive"`
}

// Default returns the configuration used for keys the environment leaves out.
func Default() *Config {
	return &Config{
		Primary: Primary{Env: "development"},
		Server: ServerConfig{
			Port:               "5099",
			ReadTimeout:        30,
			WriteTimeout:       30,
			IdleTimeout:        60,
			CORSAllowedOrigins: []string{"*"},
			BodyLimit:          "1M",
		},
		Observability: DefaultObservabilityConfig(),
	}
}

// listKeys hold comma-separated values in the environment.
var listKeys = map[string]bool{
	"server.cors_allowed_origins":        true,
	"observability.health_checks.checks": true,
}

// envValue maps PIPELINE_SERVER__BODY_LIMIT to server.body_limit and splits
// list values on commas.
func envValue(key, value string) (string, any) {
	key = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(key, envPrefix)), "__", ".")

	if !listKeys[key] {
		return key, value
	}

	items := make([]string, 0, strings.Count(value, ",")+1)
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return key, items
}

// LoadConfig reads the environment on top of Default and validates the
// result. Variables override single keys; every other key keeps its default.
func LoadConfig() (*Config, error) {
	k := koanf.New(".")

	err := k.Load(env.ProviderWithValue(envPrefix, ".", envValue), nil)
	if err != nil {
		return nil, fmt.Errorf("could not load env variables: %w", err)
	}

	mainConfig := Default()
	if err := k.Unmarshal("", mainConfig); err != nil {
		return nil, fmt.Errorf("could not unmarshal main config: %w", err)
	}

	// Lists replace their defaults instead of being merged into them.
	if k.Exists("server.cors_allowed_origins") {
		mainConfig.Server.CORSAllowedOrigins = k.Strings("server.cors_allowed_origins")
	}
	if k.Exists("observability.health_checks.checks") {
		mainConfig.Observability.HealthChecks.Checks = k.Strings("observability.health_checks.checks")
	}

	if err := validator.New().Struct(mainConfig); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	// Service name is fixed; the environment label follows primary.env.
	mainConfig.Observability.ServiceName = serviceName
	mainConfig.Observability.Environment = mainConfig.Primary.Env

	if err := mainConfig.Observability.Validate(); err != nil {
		return nil, fmt.Errorf("invalid observability config: %w", err)
	}

	return mainConfig, nil
}
