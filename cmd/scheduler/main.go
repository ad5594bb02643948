// Command scheduler consumes rescore tasks from the asynq queue.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"leadscore_backend/internal/email"
	"leadscore_backend/internal/events"
	identityrepo "leadscore_backend/internal/identity/repository"
	identityservice "leadscore_backend/internal/identity/service"
	"leadscore_backend/internal/leads"
	"leadscore_backend/internal/notification"
	"leadscore_backend/internal/scheduler"
	"leadscore_backend/platform/config"
	"leadscore_backend/platform/db"
	"leadscore_backend/platform/logger"
	"leadscore_backend/platform/retry"
	"leadscore_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("scheduler exited", "error", err)
		stop()
		os.Exit(1)
	}
	log.Info("scheduler stopped")
}

func run(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	log.Info("starting scheduler", "env", cfg.Env, "queue", cfg.GetAsynqQueueName())

	pool, err := retry.Value(ctx, log, retry.Startup, "database connection", func() (*pgxpool.Pool, error) {
		return db.NewPool(ctx, cfg)
	})
	if err != nil {
		return err
	}
	defer pool.Close()

	bus := events.NewInMemoryBus(log)
	defer bus.Wait()

	// Rescores from the queue can push a lead into HOT, so alerts are wired here too.
	tenants := identityservice.New(identityrepo.New(pool), nil, 0, log)
	notification.New(email.NewSender(cfg), tenants, log).RegisterHandlers(bus)

	leadsModule := leads.NewModule(pool, bus, validator.New(), nil, log)

	worker, err := scheduler.NewWorker(cfg, leadsModule.Service(), log)
	if err != nil {
		return fmt.Errorf("scheduler worker: %w", err)
	}
	worker.Run(ctx)
	return nil
}
