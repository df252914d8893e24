// Package config loads the server settings from defaults, an optional TOML
// file and the environment, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/sujalbistaa/openforum/internal/db"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Port            string   `toml:"port"`
	DatabaseURL     string   `toml:"database_url"`
	CORSOrigin      string   `toml:"cors_origin"`
	ShutdownTimeout Duration `toml:"shutdown_timeout"`
}

// Duration lets TOML files spell timeouts as "5s" or "1m".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// Default returns the settings used when nothing else is configured.
func Default() Config {
	return Config{
		Port:            "8080",
		DatabaseURL:     db.DefaultURL,
		CORSOrigin:      "*", // allow all for local dev
		ShutdownTimeout: Duration{5 * time.Second},
	}
}

// Load reads path when it is not empty, then applies PORT, DATABASE_URL,
// CORS_ORIGIN and SHUTDOWN_TIMEOUT from the environment.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if v := os.Getenv("PORT"); v != "" {
		cfg.Port = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("CORS_ORIGIN"); v != "" {
		cfg.CORSOrigin = v
	}
	if v := os.Getenv("SHUTDOWN_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("%w: SHUTDOWN_TIMEOUT: %v", ErrInvalidConfig, err)
		}
		cfg.ShutdownTimeout = Duration{d}
	}

	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("%w: port is empty", ErrInvalidConfig)
	}
	if err := db.ValidateURL(c.DatabaseURL); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.ShutdownTimeout.Duration <= 0 {
		return fmt.Errorf("%w: shutdown timeout must be positive", ErrInvalidConfig)
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return ":" + c.Port
}
