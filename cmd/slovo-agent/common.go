package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/longregen/slovo-agent/internal/config"
)

// Version information (set via ldflags)
var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

// Shared global variables, populated by the root command's PersistentPreRunE.
var cfg *config.Config

// initDB initializes a database connection pool for CLI commands.
func initDB(ctx context.Context) (*pgxpool.Pool, error) {
	if cfg.Storage.DatabaseURL == "" {
		return nil, fmt.Errorf("PostgreSQL connection required; set DATABASE_URL")
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.Storage.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	// Force UTC timezone to prevent timezone-related issues with TIMESTAMP columns
	poolConfig.ConnConfig.RuntimeParams["timezone"] = "UTC"

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create database pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return pool, nil
}

// maskSecret masks a secret string for display.
func maskSecret(s string) string {
	if s == "" {
		return "(not set)"
	}
	if len(s) <= 8 {
		return "(set)"
	}
	return s[:4] + "..." + s[len(s)-4:]
}

// boolStatus returns a status string for a boolean.
func boolStatus(b bool) string {
	if b {
		return "configured"
	}
	return "not configured"
}
