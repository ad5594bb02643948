// Package service dispatches enrichment and scoring batches for a tenant.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"leadscore_backend/internal/events"
	"leadscore_backend/internal/leads/domain"
	"leadscore_backend/internal/leads/enrichment"
	"leadscore_backend/internal/leads/ports"
	"leadscore_backend/internal/leads/repository"
	"leadscore_backend/internal/leads/scoring"
	"leadscore_backend/platform/apperr"
	"leadscore_backend/platform/logger"

	"github.com/google/uuid"
)

// Batch actions.
const (
	ActionEnrich = "enrich"
	ActionScore  = "score"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// Store is the tenant-scoped lead storage the dispatcher works against.
type Store interface {
	ListByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]domain.Lead, error)
	GetByID(ctx context.Context, tenantID, leadID uuid.UUID) (domain.Lead, error)
	ApplyEnrichment(ctx context.Context, tenantID uuid.UUID, lead domain.Lead) error
	RecordScore(ctx context.Context, tenantID uuid.UUID, lead domain.Lead, b domain.ScoreBreakdown) (domain.LeadScoreRecord, error)
	ListScoreHistory(ctx context.Context, tenantID, leadID uuid.UUID, limit int) ([]domain.LeadScoreRecord, error)
	LatestWeights(ctx context.Context, tenantID, leadID uuid.UUID) (domain.Weights, error)
}

// EnrichCommand is a validated enrichment batch.
type EnrichCommand struct {
	LeadIDs   []uuid.UUID
	Level     domain.EnrichmentLevel
	Providers []domain.Provider
}

// ScoreCommand is a validated scoring batch. A nil Weights scores with the defaults.
type ScoreCommand struct {
	LeadIDs []uuid.UUID
	Weights *domain.WeightsOverride
}

// ItemResult reports what happened to one lead of a batch.
type ItemResult struct {
	LeadID uuid.UUID
	OK     bool
	Code   apperr.Code
	Error  string
}

// EnrichOutcome is the summary of an enrichment batch.
type EnrichOutcome struct {
	Leads []domain.Lead
	Items []ItemResult
	Level domain.EnrichmentLevel
	Count int
}

// ScoreOutcome is the summary of a scoring batch.
type ScoreOutcome struct {
	Leads   []domain.Lead
	Records []domain.LeadScoreRecord
	Items   []ItemResult
	Weights domain.Weights
	Count   int
}

// Option configures optional collaborators.
type Option func(*Service)

// WithArchiver stores a report of every processed batch.
func WithArchiver(a ports.ReportArchiver) Option {
	return func(s *Service) { s.archiver = a }
}

// WithCatalog replaces the embedded enrichment catalogue.
func WithCatalog(c *enrichment.Catalog) Option {
	return func(s *Service) { s.catalog = c }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

type Service struct {
	store    Store
	bus      events.Bus
	archiver ports.ReportArchiver
	catalog  *enrichment.Catalog
	log      *logger.Logger
	now      func() time.Time
}

func New(store Store, bus events.Bus, log *logger.Logger, opts ...Option) *Service {
	s := &Service{
		store:   store,
		bus:     bus,
		catalog: enrichment.DefaultCatalog(),
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Enrich fills in enrichment fields for every lead of the batch.
// Lead resolution is all-or-nothing; per-lead persistence failures are
// reported in Items and do not stop the remaining leads.
func (s *Service) Enrich(ctx context.Context, tenantID uuid.UUID, cmd EnrichCommand) (EnrichOutcome, error) {
	level, err := domain.ParseEnrichmentLevel(string(cmd.Level))
	if err != nil {
		return EnrichOutcome{}, apperr.Validation("invalid enrichment level", nil).WithOp("leads.Enrich")
	}
	cmd.Level = level

	leads, err := s.resolve(ctx, tenantID, cmd.LeadIDs)
	if err != nil {
		return EnrichOutcome{}, err
	}

	now := s.now()
	out := EnrichOutcome{
		Leads: make([]domain.Lead, 0, len(leads)),
		Items: make([]ItemResult, 0, len(leads)),
		Level: cmd.Level,
	}

	for _, lead := range leads {
		fields, err := s.catalog.Enrich(lead, cmd.Level, cmd.Providers)
		if err != nil {
			out.Items = append(out.Items, s.itemFailed(ctx, ActionEnrich, lead.ID, apperr.CodeValidation, err))
			continue
		}

		updated := enrichment.Apply(lead, fields, now)
		if err := s.store.ApplyEnrichment(ctx, tenantID, updated); err != nil {
			out.Items = append(out.Items, s.itemFailed(ctx, ActionEnrich, lead.ID, apperr.CodePersistenceFailure, err))
			continue
		}

		out.Leads = append(out.Leads, updated)
		out.Items = append(out.Items, ItemResult{LeadID: lead.ID, OK: true})

		s.bus.Publish(ctx, events.LeadEnriched{
			BaseEvent: events.NewBaseEvent(),
			LeadID:    lead.ID,
			TenantID:  tenantID,
			Level:     string(cmd.Level),
			Providers: domain.ProviderStrings(cmd.Providers),
		})
	}

	out.Count = len(out.Leads)
	s.finish(ctx, tenantID, ActionEnrich, len(leads), out.Items, map[string]any{"enrichmentLevel": cmd.Level})
	return out, nil
}

// Score computes and records a score for every lead of the batch.
func (s *Service) Score(ctx context.Context, tenantID uuid.UUID, cmd ScoreCommand) (ScoreOutcome, error) {
	weights := cmd.Weights.Resolve(domain.DefaultWeights())
	if err := validateWeights(weights); err != nil {
		return ScoreOutcome{}, err
	}

	leads, err := s.resolve(ctx, tenantID, cmd.LeadIDs)
	if err != nil {
		return ScoreOutcome{}, err
	}

	out := ScoreOutcome{
		Leads:   make([]domain.Lead, 0, len(leads)),
		Records: make([]domain.LeadScoreRecord, 0, len(leads)),
		Items:   make([]ItemResult, 0, len(leads)),
		Weights: weights,
	}

	for _, lead := range leads {
		updated, record, err := s.scoreOne(ctx, tenantID, lead, weights)
		if err != nil {
			out.Items = append(out.Items, s.itemFailed(ctx, ActionScore, lead.ID, apperr.CodePersistenceFailure, err))
			continue
		}

		out.Leads = append(out.Leads, updated)
		out.Records = append(out.Records, record)
		out.Items = append(out.Items, ItemResult{LeadID: lead.ID, OK: true})

		if record.Segment == domain.SegmentHot {
			s.publishHot(ctx, tenantID, updated)
		}
	}

	out.Count = len(out.Leads)
	s.finish(ctx, tenantID, ActionScore, len(leads), out.Items, map[string]any{"weights": weights})
	return out, nil
}

// Rescore re-scores a single lead with the weights of its latest score record,
// or the defaults when it was never scored. Hot lead alerts only fire when the
// lead was not already hot.
func (s *Service) Rescore(ctx context.Context, tenantID, leadID uuid.UUID) (domain.LeadScoreRecord, error) {
	lead, err := s.store.GetByID(ctx, tenantID, leadID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.LeadScoreRecord{}, apperr.NotFound("lead not found").WithOp("leads.Rescore")
		}
		return domain.LeadScoreRecord{}, apperr.Internal("failed to load lead", err).WithOp("leads.Rescore")
	}

	weights, err := s.store.LatestWeights(ctx, tenantID, leadID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return domain.LeadScoreRecord{}, apperr.Internal("failed to load weights", err).WithOp("leads.Rescore")
		}
		weights = domain.DefaultWeights()
	}

	wasHot := lead.Score != nil && scoring.SegmentFor(float64(*lead.Score)) == domain.SegmentHot

	updated, record, err := s.scoreOne(ctx, tenantID, lead, weights)
	if err != nil {
		return domain.LeadScoreRecord{}, apperr.Persistence("failed to record score", err).WithOp("leads.Rescore")
	}

	if record.Segment == domain.SegmentHot && !wasHot {
		s.publishHot(ctx, tenantID, updated)
	}
	return record, nil
}

// ScoreHistory lists the score records of a lead, newest first.
func (s *Service) ScoreHistory(ctx context.Context, tenantID, leadID uuid.UUID, limit int) ([]domain.LeadScoreRecord, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	if _, err := s.store.GetByID(ctx, tenantID, leadID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("lead not found")
		}
		return nil, apperr.Internal("failed to load lead", err)
	}

	records, err := s.store.ListScoreHistory(ctx, tenantID, leadID, limit)
	if err != nil {
		return nil, apperr.Internal("failed to load score history", err)
	}
	return records, nil
}

func (s *Service) scoreOne(ctx context.Context, tenantID uuid.UUID, lead domain.Lead, weights domain.Weights) (domain.Lead, domain.LeadScoreRecord, error) {
	now := s.now()
	b := scoring.Score(lead, weights, now)
	updated := scoring.Apply(lead, b, now)

	record, err := s.store.RecordScore(ctx, tenantID, updated, b)
	if err != nil {
		return domain.Lead{}, domain.LeadScoreRecord{}, err
	}

	s.bus.Publish(ctx, events.LeadQualified{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    lead.ID,
		TenantID:  tenantID,
		RecordID:  record.ID,
		Score:     *updated.Score,
		Composite: record.Composite,
		Segment:   string(record.Segment),
	})
	return updated, record, nil
}

func (s *Service) publishHot(ctx context.Context, tenantID uuid.UUID, lead domain.Lead) {
	s.bus.Publish(ctx, events.HotLeadDetected{
		BaseEvent:   events.NewBaseEvent(),
		LeadID:      lead.ID,
		TenantID:    tenantID,
		CompanyName: lead.CompanyName,
		Score:       *lead.Score,
	})
}

// resolve loads exactly the requested leads within the tenant. Duplicate ids
// collapse to one; if any id is missing the whole batch is rejected.
func (s *Service) resolve(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]domain.Lead, error) {
	ids = dedupe(ids)
	if len(ids) == 0 {
		return nil, apperr.Validation("lead_ids must not be empty", nil)
	}

	leads, err := s.store.ListByIDs(ctx, tenantID, ids)
	if err != nil {
		s.log.WithContext(ctx).DatabaseError("list_leads_by_ids", err)
		return nil, apperr.Internal("failed to load leads", err)
	}

	if len(leads) != len(ids) {
		return nil, apperr.PartialAccessDenied(len(ids), len(leads))
	}
	return leads, nil
}

func (s *Service) itemFailed(ctx context.Context, action string, leadID uuid.UUID, code apperr.Code, err error) ItemResult {
	s.log.WithContext(ctx).Error("lead batch item failed",
		"action", action,
		"leadId", leadID,
		"code", code,
		"error", err,
	)

	msg := "failed to persist lead"
	if code != apperr.CodePersistenceFailure {
		msg = err.Error()
	}
	return ItemResult{LeadID: leadID, Code: code, Error: msg}
}

func (s *Service) finish(ctx context.Context, tenantID uuid.UUID, action string, requested int, items []ItemResult, details any) {
	succeeded := 0
	reportItems := make([]ports.BatchItem, 0, len(items))
	for _, item := range items {
		if item.OK {
			succeeded++
		}
		reportItems = append(reportItems, ports.BatchItem{LeadID: item.LeadID, OK: item.OK, Error: item.Error})
	}

	s.log.WithContext(ctx).BatchProcessed(action, requested, succeeded)

	if s.archiver == nil {
		return
	}

	report := ports.BatchReport{
		ID:        uuid.New(),
		TenantID:  tenantID,
		Action:    action,
		Requested: requested,
		Succeeded: succeeded,
		Items:     reportItems,
		Details:   details,
		CreatedAt: s.now(),
	}
	if _, err := s.archiver.ArchiveBatch(ctx, report); err != nil {
		s.log.WithContext(ctx).Warn("batch report archive failed", "action", action, "error", err)
	}
}

func validateWeights(w domain.Weights) error {
	fields := map[string]float64{
		"weights.fit":        w.Fit,
		"weights.intent":     w.Intent,
		"weights.engagement": w.Engagement,
		"weights.viability":  w.Viability,
		"weights.recency":    w.Recency,
	}
	var details []map[string]string
	for _, name := range []string{"weights.fit", "weights.intent", "weights.engagement", "weights.viability", "weights.recency"} {
		if fields[name] < 0 {
			details = append(details, map[string]string{"field": name, "rule": "gte", "message": fmt.Sprintf("%s must be greater than or equal to 0", name)})
		}
	}
	if len(details) > 0 {
		return apperr.Validation("invalid weights", details)
	}
	return nil
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
