// Copyright (c) 2026 Komikan. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, bus, fetcher) via constructors.
  - Zero Hidden State: No global variables are used to store config.

This ensures the application is Twelve-Factor compliant by storing config in the env.
*/
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// # Configuration Schema

// Config holds all runtime configuration for the Komikan ingest daemon.
type Config struct {

	// Server settings
	OpsPort     string `env:"OPS_PORT"     envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value Store (Redis) for ingest checkpoints
	RedisURL string `env:"REDIS_URL,required"`

	// Message bus (NATS JetStream) for image post-processing
	NatsURL string `env:"NATS_URL,required"`

	// Filesystem roots
	//
	// StaticRoot is the directory served by the CDN/front; image paths stored
	// in the catalog are relative to it. TempDirName is the staging area for
	// freshly downloaded files, nested under StaticRoot.
	StaticRoot  string `env:"STATIC_ROOT"   envDefault:"./static"`
	TempDirName string `env:"TEMP_DIR_NAME" envDefault:"tmp"`

	// HTTP fetcher tuning
	FetchMaxInflight  int           `env:"FETCH_MAX_INFLIGHT"   envDefault:"25"`
	FetchRetryCount   int           `env:"FETCH_RETRY_COUNT"    envDefault:"5"`
	FetchRetryDelay   time.Duration `env:"FETCH_RETRY_DELAY"    envDefault:"2s"`
	FetchClientTTL    time.Duration `env:"FETCH_CLIENT_TTL"     envDefault:"60s"`
	DownloadMaxBytes  int64         `env:"DOWNLOAD_MAX_BYTES"   envDefault:"20971520"`
	ScrapeChunkSize   int           `env:"SCRAPE_CHUNK_SIZE"    envDefault:"10"`
	ScrapeChunkDelay  time.Duration `env:"SCRAPE_CHUNK_DELAY"   envDefault:"1s"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// Use the 'env' package to map environment variables to struct fields.
	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	return cfg, nil
}

// IsDevelopment reports whether the daemon is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the daemon is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
