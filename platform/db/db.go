// Package db opens the shared Postgres pool.
package db

import (
	"context"
	"fmt"
	"math"
	"time"

	"leadscore_backend/platform/config"

	"github.com/jackc/pgx/v5/pgxpool"
)

const applicationName = "leadscore"

// NewPool opens a pool and verifies it with a ping before returning.
func NewPool(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := poolConfig(cfg)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("open pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

func poolConfig(cfg config.DatabaseConfig) (*pgxpool.Config, error) {
	pc, err := pgxpool.ParseConfig(cfg.GetDatabaseURL())
	if err != nil {
		return nil, fmt.Errorf("parse DATABASE_URL: %w", err)
	}

	pc.MaxConns = clampConns(cfg.GetDatabaseMaxConns(), pc.MaxConns)
	pc.MinConns = clampConns(cfg.GetDatabaseMinConns(), pc.MinConns)
	if pc.MinConns > pc.MaxConns {
		pc.MinConns = pc.MaxConns
	}
	pc.MaxConnLifetime = time.Hour
	pc.MaxConnLifetimeJitter = 5 * time.Minute
	pc.MaxConnIdleTime = 30 * time.Minute
	pc.HealthCheckPeriod = time.Minute

	if _, ok := pc.ConnConfig.RuntimeParams["application_name"]; !ok {
		pc.ConnConfig.RuntimeParams["application_name"] = applicationName
	}
	return pc, nil
}

// clampConns keeps fallback for non-positive values.
func clampConns(n int, fallback int32) int32 {
	switch {
	case n <= 0:
		return fallback
	case n > math.MaxInt32:
		return math.MaxInt32
	default:
		return int32(n)
	}
}
