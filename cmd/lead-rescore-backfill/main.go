package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"leadscore_backend/internal/events"
	"leadscore_backend/internal/leads"
	"leadscore_backend/platform/config"
	"leadscore_backend/platform/db"
	"leadscore_backend/platform/logger"
	"leadscore_backend/platform/validator"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	batchSize int
	tenantArg string
	dryRun    bool
)

var rootCmd = &cobra.Command{
	Use:   "lead-rescore-backfill",
	Short: "Re-score stored leads with the latest tenant weights",
	Long:  "Walks every lead of one tenant (or all tenants) in id order and appends a fresh score record for each.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		var tenantID *uuid.UUID
		if tenantArg != "" {
			id, err := uuid.Parse(tenantArg)
			if err != nil {
				return fmt.Errorf("invalid --tenant: %w", err)
			}
			tenantID = &id
		}

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		log := logger.New(cfg.Env)
		log.Info("starting lead rescore backfill", "batchSize", batchSize, "tenant", tenantArg, "dryRun", dryRun)

		pool, err := db.NewPool(ctx, cfg)
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		defer pool.Close()

		// No subscribers: a backfill never sends hot lead alerts.
		bus := events.NewInMemoryBus(log)
		module := leads.NewModule(pool, bus, validator.New(), nil, log)

		stats, err := runBackfill(ctx, module.Repository(), module.Service(), log, backfillOptions{
			TenantID:  tenantID,
			BatchSize: batchSize,
			DryRun:    dryRun,
		})
		log.Info("lead rescore backfill finished", "seen", stats.Seen, "rescored", stats.Rescored, "failed", stats.Failed)
		return err
	},
}

func init() {
	rootCmd.Flags().IntVar(&batchSize, "batch-size", 100, "number of leads read per page")
	rootCmd.Flags().StringVar(&tenantArg, "tenant", "", "restrict the backfill to one organization id")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "list the leads that would be re-scored without writing")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
