package main

import (
	"context"
	"fmt"

	"leadscore_backend/internal/leads"
	"leadscore_backend/internal/leads/repository"
	"leadscore_backend/platform/logger"

	"github.com/google/uuid"
)

const defaultBatchSize = 100

type refLister interface {
	ListRefsAfter(ctx context.Context, tenantID *uuid.UUID, after uuid.UUID, limit int) ([]repository.LeadRef, error)
}

type backfillOptions struct {
	TenantID  *uuid.UUID
	BatchSize int
	DryRun    bool
}

type backfillStats struct {
	Seen     int
	Rescored int
	Failed   int
}

// runBackfill pages through leads by id and re-scores each one. A failing lead
// is logged and skipped; a failing page read stops the run.
func runBackfill(ctx context.Context, refs refLister, rescorer leads.Rescorer, log *logger.Logger, opts backfillOptions) (backfillStats, error) {
	var stats backfillStats

	limit := opts.BatchSize
	if limit <= 0 {
		limit = defaultBatchSize
	}

	after := uuid.Nil
	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		page, err := refs.ListRefsAfter(ctx, opts.TenantID, after, limit)
		if err != nil {
			return stats, fmt.Errorf("list leads after %s: %w", after, err)
		}

		for _, ref := range page {
			after = ref.ID
			stats.Seen++

			if opts.DryRun {
				log.Info("would rescore lead", "leadId", ref.ID, "tenantId", ref.OrganizationID)
				continue
			}

			if _, err := rescorer.Rescore(ctx, ref.OrganizationID, ref.ID); err != nil {
				stats.Failed++
				log.Error("failed to rescore lead", "leadId", ref.ID, "tenantId", ref.OrganizationID, "error", err)
				continue
			}
			stats.Rescored++
		}

		if len(page) < limit {
			return stats, nil
		}
	}
}
