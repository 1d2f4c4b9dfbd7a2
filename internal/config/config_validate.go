// Retailrec - Hybrid Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/retailrec

package config

import (
	"fmt"
	"net/url"

	"github.com/tomtom215/retailrec/internal/validation"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.EngineConfig().Validate(); err != nil {
		return fmt.Errorf("recommend: %w", err)
	}

	if err := c.validateTraining(); err != nil {
		return err
	}

	if err := c.validateStore(); err != nil {
		return err
	}

	if err := c.validateCatalog(); err != nil {
		return err
	}

	if err := c.validateEvents(); err != nil {
		return err
	}

	if err := c.validateServer(); err != nil {
		return err
	}

	return c.validateLogging()
}

func (c *Config) validateTraining() error {
	if c.Training.Interval < 0 {
		return fmt.Errorf("TRAIN_INTERVAL must not be negative")
	}
	return nil
}

func (c *Config) validateStore() error {
	if verr := validation.ValidateStruct(&c.Store); verr != nil {
		return fmt.Errorf("store: %w", verr)
	}
	return nil
}

// validateCatalog requires a path unless the catalog is in memory.
func (c *Config) validateCatalog() error {
	if verr := validation.ValidateStruct(&c.Catalog); verr != nil {
		return fmt.Errorf("catalog: %w", verr)
	}
	if !c.Catalog.InMemory && c.Catalog.Path == "" {
		return fmt.Errorf("CATALOG_PATH is required unless CATALOG_IN_MEMORY is set")
	}
	if c.Catalog.Driver != "duckdb" && c.hasCatalogImports() {
		return fmt.Errorf("catalog imports require the duckdb driver")
	}
	return nil
}

func (c *Config) hasCatalogImports() bool {
	return c.Catalog.ImportProducts != "" || c.Catalog.ImportCustomers != "" || c.Catalog.ImportTransactions != ""
}

func (c *Config) validateEvents() error {
	if !c.Events.Enabled {
		return nil
	}
	if verr := validation.ValidateStruct(&c.Events); verr != nil {
		return fmt.Errorf("events: %w", verr)
	}
	if c.Events.Driver == "nats" {
		u, err := url.Parse(c.Events.NATSURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("NATS_URL must be a valid URL (e.g., nats://127.0.0.1:4222)")
		}
	}
	return nil
}

func (c *Config) validateServer() error {
	if !c.Server.Enabled {
		return nil
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	return nil
}

// validLogLevels defines the allowed log levels
var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validLogFormats defines the allowed log formats
var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

// validateLogging validates logging configuration
func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}
