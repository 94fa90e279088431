// Copyright 2025 The Prospecta Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads application configuration from environment variables
// and an optional YAML file.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Store     StoreConfig     `mapstructure:"store"`
	Geocoding GeocodingConfig `mapstructure:"geocoding"`
	Here      HereConfig      `mapstructure:"here"`
	HTTP      HTTPConfig      `mapstructure:"http"`
}

// ServerConfig holds the local API server configuration.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// StoreConfig holds the DuckDB store configuration.
type StoreConfig struct {
	// Path is the directory holding the database file.
	Path string `mapstructure:"path"`
}

// GeocodingConfig selects and configures the location resolver.
type GeocodingConfig struct {
	// Provider is "nominatim" (default, no key needed) or "google_maps".
	Provider string `mapstructure:"provider"`

	// GoogleMapsAPIKey enables the google_maps provider. When empty and the
	// provider is google_maps, the key is resolved via GCP Application
	// Default Credentials (see ResolveGoogleMapsKey).
	GoogleMapsAPIKey string `mapstructure:"google_maps_api_key"`
}

// HereConfig holds the HERE Discover API configuration.
type HereConfig struct {
	APIKey string `mapstructure:"api_key"`
}

// HTTPConfig holds outbound HTTP behavior.
type HTTPConfig struct {
	UserAgent string `mapstructure:"user_agent"`
	Trace     bool   `mapstructure:"trace"`
	TraceBody bool   `mapstructure:"trace_body"`
}

// Load loads configuration from environment variables and an optional
// config.yaml found in the working directory.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("PROSPECTA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// The config file is optional; env vars and defaults are enough to run.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", "localhost:8080")
	v.SetDefault("store.path", "db")
	v.SetDefault("geocoding.provider", "nominatim")
	// Secrets default to empty so the keys are known to viper and can be
	// supplied purely through the environment.
	v.SetDefault("geocoding.google_maps_api_key", "")
	v.SetDefault("here.api_key", "")
	v.SetDefault("http.user_agent", "prospecta/1.0 (contato@exemplo.com.br)")
	v.SetDefault("http.trace", false)
	v.SetDefault("http.trace_body", false)
}

func validate(cfg *Config) error {
	switch cfg.Geocoding.Provider {
	case "nominatim", "google_maps":
	default:
		return fmt.Errorf("unknown geocoding provider: %s", cfg.Geocoding.Provider)
	}

	if cfg.Store.Path == "" {
		return fmt.Errorf("store.path must not be empty")
	}

	return nil
}
