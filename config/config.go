// Package config loads service configuration from defaults, an optional
// YAML file, and FLIGHTS_* environment variables, in increasing order of
// precedence.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config is the full service configuration.
type Config struct {
	// Addr is the HTTP listen address.
	Addr string `mapstructure:"addr"`

	// Store selects the flight store backend: "memory" or "cosmos".
	Store string `mapstructure:"store"`

	// SeedFlights is how many flights to generate per route at startup.
	// Zero disables seeding.
	SeedFlights int `mapstructure:"seed_flights"`

	// RoutesFile points at a YAML file of seed routes. Empty means the
	// built-in default route set.
	RoutesFile string `mapstructure:"routes_file"`

	// LogLevel is a logrus level name.
	LogLevel string `mapstructure:"log_level"`

	Cosmos CosmosConfig `mapstructure:"cosmos"`
	Model  ModelConfig  `mapstructure:"model"`
}

// CosmosConfig configures the Azure Cosmos DB store backend.
type CosmosConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	Database  string `mapstructure:"database"`
	Container string `mapstructure:"container"`

	// Emulator switches to key auth against the local Cosmos emulator.
	Emulator bool   `mapstructure:"emulator"`
	Key      string `mapstructure:"key"`
}

// ModelConfig configures the chat LLM.
type ModelConfig struct {
	// Name is the model identifier passed to the provider.
	Name string `mapstructure:"name"`

	// Temperature for traveler-facing generation.
	Temperature float64 `mapstructure:"temperature"`
}

// Load reads configuration. path optionally names a config file; an empty
// path skips file loading. Environment variables use the FLIGHTS prefix
// with underscores, e.g. FLIGHTS_ADDR, FLIGHTS_COSMOS_ENDPOINT.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("addr", ":8080")
	v.SetDefault("store", "memory")
	v.SetDefault("seed_flights", 5)
	v.SetDefault("routes_file", "")
	v.SetDefault("log_level", "info")
	// Empty defaults keep AutomaticEnv able to see keys that only arrive
	// via environment variables.
	v.SetDefault("cosmos.endpoint", "")
	v.SetDefault("cosmos.emulator", false)
	v.SetDefault("cosmos.key", "")
	v.SetDefault("cosmos.database", "flights")
	v.SetDefault("cosmos.container", "inventory")
	v.SetDefault("model.name", "gemini-1.5-pro")
	v.SetDefault("model.temperature", 0.4)

	v.SetEnvPrefix("FLIGHTS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if cfg.Store != "memory" && cfg.Store != "cosmos" {
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store)
	}
	if cfg.Store == "cosmos" && cfg.Cosmos.Endpoint == "" {
		return nil, fmt.Errorf("cosmos store requires an endpoint")
	}
	return &cfg, nil
}
