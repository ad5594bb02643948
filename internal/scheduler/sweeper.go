package scheduler

import (
	"context"
	"time"

	"leadscore_backend/internal/leads/repository"
	"leadscore_backend/platform/logger"
)

const (
	defaultSweepInterval = time.Hour
	defaultStaleAfter    = 24 * time.Hour
	defaultSweepBatch    = 200
)

// StaleLeadLister finds qualified leads whose last score is older than a cutoff.
type StaleLeadLister interface {
	ListStaleQualified(ctx context.Context, olderThan time.Time, limit int) ([]repository.LeadRef, error)
}

// RescoreSweeper periodically queues stale qualified leads for rescoring.
type RescoreSweeper struct {
	leads      StaleLeadLister
	queue      RescoreEnqueuer
	log        *logger.Logger
	interval   time.Duration
	staleAfter time.Duration
	batchSize  int
	now        func() time.Time
}

func NewRescoreSweeper(leads StaleLeadLister, queue RescoreEnqueuer, log *logger.Logger, interval, staleAfter time.Duration, batchSize int) *RescoreSweeper {
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	if staleAfter <= 0 {
		staleAfter = defaultStaleAfter
	}
	if batchSize <= 0 {
		batchSize = defaultSweepBatch
	}

	return &RescoreSweeper{
		leads:      leads,
		queue:      queue,
		log:        log,
		interval:   interval,
		staleAfter: staleAfter,
		batchSize:  batchSize,
		now:        time.Now,
	}
}

func (s *RescoreSweeper) Run(ctx context.Context) {
	if s == nil || s.leads == nil || s.queue == nil {
		return
	}

	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// sweep queues one batch and returns how many leads were queued.
func (s *RescoreSweeper) sweep(ctx context.Context) int {
	cutoff := s.now().Add(-s.staleAfter)

	refs, err := s.leads.ListStaleQualified(ctx, cutoff, s.batchSize)
	if err != nil {
		s.log.Warn("rescore sweep failed to list stale leads", "error", err)
		return 0
	}

	queued := 0
	for _, ref := range refs {
		err := s.queue.EnqueueRescore(ctx, RescorePayload{
			LeadID:   ref.ID.String(),
			TenantID: ref.OrganizationID.String(),
		})
		if err != nil {
			s.log.Warn("failed to enqueue rescore", "leadId", ref.ID, "tenantId", ref.OrganizationID, "error", err)
			continue
		}
		queued++
	}

	if queued > 0 {
		s.log.Info("rescore sweep queued stale leads", "queued", queued, "found", len(refs))
	}
	return queued
}
