package main

import (
	"context"
	"errors"
	"fmt"

	"leadscore_backend/internal/adapters"
	"leadscore_backend/internal/adapters/storage"
	"leadscore_backend/internal/leads/ports"
	"leadscore_backend/internal/scheduler"
	"leadscore_backend/platform/config"
	"leadscore_backend/platform/logger"
	"leadscore_backend/platform/redisopt"
	"leadscore_backend/platform/retry"

	"github.com/redis/go-redis/v9"
)

// newRedisClient returns nil when Redis is absent; the tenant cache is then skipped.
func newRedisClient(cfg config.RedisConfig, log *logger.Logger) *redis.Client {
	client, err := redisopt.NewClient(cfg)
	switch {
	case errors.Is(err, redisopt.ErrNotConfigured):
		log.Warn("REDIS_URL not set; tenant cache disabled")
		return nil
	case err != nil:
		log.Error("redis unavailable; tenant cache disabled", "error", err)
		return nil
	}
	return client
}

// newReportArchiver returns a nil archiver when MinIO is not configured.
func newReportArchiver(ctx context.Context, cfg config.MinIOConfig, log *logger.Logger) (ports.ReportArchiver, error) {
	if !cfg.IsMinIOEnabled() {
		log.Warn("MINIO_ENDPOINT not set; batch reports are not archived")
		return nil, nil
	}

	svc, err := storage.NewMinIOService(cfg)
	if err != nil {
		return nil, err
	}
	bucket := cfg.GetMinioBucketLeadReports()
	if err := retry.Do(ctx, log, retry.Startup, "ensure bucket "+bucket, func() error {
		return svc.EnsureBucketExists(ctx, bucket)
	}); err != nil {
		return nil, fmt.Errorf("report archive: %w", err)
	}
	log.Info("report archive ready", "bucket", bucket)
	return adapters.NewReportArchiver(svc, bucket), nil
}

// newRescoreClient returns nil when Redis is absent; the stale-lead sweeper then does not run.
func newRescoreClient(cfg config.SchedulerConfig, log *logger.Logger) *scheduler.Client {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not set; background rescoring disabled")
		return nil
	}
	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("rescore queue unavailable", "error", err)
		return nil
	}
	return client
}
