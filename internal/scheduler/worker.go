package scheduler

import (
	"context"
	"fmt"

	"leadscore_backend/internal/leads"
	"leadscore_backend/platform/apperr"
	"leadscore_backend/platform/config"
	"leadscore_backend/platform/logger"
	"leadscore_backend/platform/redisopt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

type Worker struct {
	server   *asynq.Server
	mux      *asynq.ServeMux
	rescorer leads.Rescorer
	log      *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, rescorer leads.Rescorer, log *logger.Logger) (*Worker, error) {
	opt, err := redisopt.Asynq(cfg)
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	w := &Worker{
		server:   server,
		mux:      asynq.NewServeMux(),
		rescorer: rescorer,
		log:      log,
	}
	w.mux.HandleFunc(TaskLeadRescore, w.handleRescore)

	return w, nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

// handleRescore re-scores the lead named by the payload. Payloads that can
// never succeed are not retried.
func (w *Worker) handleRescore(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseRescorePayload(task)
	if err != nil {
		return fmt.Errorf("parse rescore payload: %v: %w", err, asynq.SkipRetry)
	}

	leadID, err := uuid.Parse(payload.LeadID)
	if err != nil {
		return fmt.Errorf("invalid lead id %q: %w", payload.LeadID, asynq.SkipRetry)
	}

	tenantID, err := uuid.Parse(payload.TenantID)
	if err != nil {
		return fmt.Errorf("invalid tenant id %q: %w", payload.TenantID, asynq.SkipRetry)
	}

	record, err := w.rescorer.Rescore(ctx, tenantID, leadID)
	if err != nil {
		if apperr.GetCode(err) == apperr.CodeNotFound {
			w.log.Warn("rescore skipped, lead no longer exists", "leadId", leadID, "tenantId", tenantID)
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		return err
	}

	w.log.Info("lead rescored", "leadId", leadID, "tenantId", tenantID, "composite", record.Composite, "segment", record.Segment)
	return nil
}
