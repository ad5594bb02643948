// Command api serves the lead enrichment and scoring HTTP API.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"leadscore_backend/internal/email"
	"leadscore_backend/internal/events"
	apphttp "leadscore_backend/internal/http"
	"leadscore_backend/internal/http/router"
	"leadscore_backend/internal/identity"
	"leadscore_backend/internal/leads"
	"leadscore_backend/internal/notification"
	"leadscore_backend/internal/scheduler"
	"leadscore_backend/platform/config"
	"leadscore_backend/platform/db"
	"leadscore_backend/platform/logger"
	"leadscore_backend/platform/retry"
	"leadscore_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

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
		log.Error("api exited", "error", err)
		stop()
		os.Exit(1)
	}
	log.Info("server stopped")
}

func run(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	pool, err := retry.Value(ctx, log, retry.Startup, "database connection", func() (*pgxpool.Pool, error) {
		return db.NewPool(ctx, cfg)
	})
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := retry.Do(ctx, log, retry.Startup, "database migrations", func() error {
		return db.RunMigrations(ctx, pool)
	}); err != nil {
		return err
	}
	log.Info("database ready")

	redisClient := newRedisClient(cfg, log)
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
	}

	archiver, err := newReportArchiver(ctx, cfg, log)
	if err != nil {
		return err
	}

	bus := events.NewInMemoryBus(log)
	defer bus.Wait()

	identityModule := identity.NewModule(pool, redisClient, cfg.GetTenantCacheTTL(), log)
	notification.New(email.NewSender(cfg), identityModule.Service(), log).RegisterHandlers(bus)
	leadsModule := leads.NewModule(pool, bus, validator.New(), archiver, log)

	app := &apphttp.App{
		Config:           cfg,
		Logger:           log,
		Health:           pool,
		EventBus:         bus,
		TenantMiddleware: identityModule.TenantMiddleware(),
		Modules:          []apphttp.Module{identityModule, leadsModule},
	}
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.New(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})

	if queue := newRescoreClient(cfg, log); queue != nil {
		defer func() { _ = queue.Close() }()
		sweeper := scheduler.NewRescoreSweeper(
			leadsModule.Repository(), queue, log,
			cfg.GetRescoreInterval(), cfg.GetRescoreStaleAfter(), cfg.GetRescoreBatchSize(),
		)
		g.Go(func() error {
			sweeper.Run(gctx)
			return nil
		})
	}

	return g.Wait()
}
