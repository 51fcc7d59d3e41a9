// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TADA Contributors

// Package config loads server configuration from defaults, an optional YAML
// file, and command-line flags, in that order of precedence.
package config

import (
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

// ServerConfig holds the game server's listen address and the handshake
// constants clients must present.
type ServerConfig struct {
	Addr     string `koanf:"addr"`
	AppID    string `koanf:"app_id"`
	Key      string `koanf:"key"`
	Protocol int    `koanf:"protocol"`
}

// DatabaseConfig holds the PostgreSQL connection settings.
type DatabaseConfig struct {
	URL string `koanf:"url"`
}

// ObservabilityConfig holds the metrics/health endpoint settings.
type ObservabilityConfig struct {
	Addr string `koanf:"addr"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Format string `koanf:"format"`
}

// Config is the full server configuration.
type Config struct {
	Server        ServerConfig        `koanf:"server"`
	Database      DatabaseConfig      `koanf:"database"`
	Observability ObservabilityConfig `koanf:"observability"`
	Log           LogConfig           `koanf:"log"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:     ":5000",
			AppID:    "TADA",
			Key:      "1234567890",
			Protocol: 1,
		},
		Database: DatabaseConfig{
			URL: "postgres://localhost:5432/tada",
		},
		Observability: ObservabilityConfig{
			Addr: ":9100",
		},
		Log: LogConfig{
			Format: "json",
		},
	}
}

// Load builds the configuration. Values from the YAML file at path (if path
// is non-empty) override the defaults, and flag values (if flags is non-nil)
// override both. Flag names use dotted keys, e.g. --server.addr.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_FILE_FAILED").With("path", path).Wrap(err)
		}
	}
	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return nil, oops.Code("CONFIG_FLAGS_FAILED").Wrap(err)
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, oops.Code("CONFIG_INVALID").Wrap(err)
	}
	return cfg, nil
}
