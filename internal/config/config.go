// Package config loads the process configuration from the environment once at startup.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/LWashington6935/designerae-site/internal/ecwid"
	"github.com/LWashington6935/designerae-site/internal/logging"
)

// Note write modes. WriteModeDocument sends the whole order back with only extraFields
// changed; WriteModeFields sends {"extraFields": [...]} alone.
const (
	WriteModeDocument = "document"
	WriteModeFields   = "fields"
)

// Config is the whole process configuration.
type Config struct {
	Server    Server
	Ecwid     ecwid.Config
	Orders    Orders
	Catalog   Catalog
	Log       Log
	Telemetry Telemetry
}

// Server configures the HTTP listener.
type Server struct {
	Port            string        `env:"PORT" envDefault:"8080"`
	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"30s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"30s"`
	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Orders configures the order note workflow and account lookup.
type Orders struct {
	// NoteField is the extra field name reserved for operator notes.
	NoteField   string `env:"ORDER_NOTE_FIELD" envDefault:"WhatWasDone"`
	WriteMode   string `env:"ORDER_NOTE_WRITE_MODE" envDefault:"document"`
	LookupLimit int    `env:"ORDER_LOOKUP_LIMIT" envDefault:"100"`
	Currency    string `env:"SHOP_CURRENCY" envDefault:"USD"`
}

// Catalog configures the shop product listing.
type Catalog struct {
	Limit int `env:"SHOP_PRODUCT_LIMIT" envDefault:"12"`
}

// Log configures the zap logger. Format is "json" or "console".
type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

// Telemetry configures the OTLP exporters.
type Telemetry struct {
	Enabled     bool   `env:"OTEL_ENABLED" envDefault:"false"`
	Endpoint    string `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	ServiceName string `env:"SERVICE_NAME" envDefault:"designerae-site"`
}

// ConfigurationError reports required settings that are absent or invalid.
// It is fatal: the process must not start serving with it.
type ConfigurationError struct {
	Missing []string
	Invalid []string
}

func (e *ConfigurationError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing "+strings.Join(e.Missing, ", "))
	}
	if len(e.Invalid) > 0 {
		parts = append(parts, "invalid "+strings.Join(e.Invalid, ", "))
	}
	return "configuration error: " + strings.Join(parts, "; ")
}

// Load parses the environment and validates the result.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate collects every missing or invalid setting into one ConfigurationError.
func (c *Config) Validate() error {
	cfgErr := &ConfigurationError{Missing: c.Ecwid.Missing()}

	if strings.TrimSpace(c.Orders.NoteField) == "" {
		cfgErr.Invalid = append(cfgErr.Invalid, "ORDER_NOTE_FIELD")
	}
	switch c.Orders.WriteMode {
	case WriteModeDocument, WriteModeFields:
	default:
		cfgErr.Invalid = append(cfgErr.Invalid, "ORDER_NOTE_WRITE_MODE")
	}
	switch c.Log.Format {
	case logging.FormatJSON, logging.FormatConsole:
	default:
		cfgErr.Invalid = append(cfgErr.Invalid, "LOG_FORMAT")
	}
	if c.Orders.LookupLimit <= 0 {
		cfgErr.Invalid = append(cfgErr.Invalid, "ORDER_LOOKUP_LIMIT")
	}
	if c.Catalog.Limit <= 0 {
		cfgErr.Invalid = append(cfgErr.Invalid, "SHOP_PRODUCT_LIMIT")
	}

	if len(cfgErr.Missing) > 0 || len(cfgErr.Invalid) > 0 {
		return cfgErr
	}
	return nil
}
