package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"leadscore_backend/internal/leads/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var ErrNotFound = errors.New("lead not found")

// DBTX is satisfied by *pgxpool.Pool, pgx.Tx and pgxmock.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// DB is a DBTX that can also open transactions.
type DB interface {
	DBTX
	Begin(ctx context.Context) (pgx.Tx, error)
}

type Repository struct {
	db DB
}

func New(db DB) *Repository {
	return &Repository{db: db}
}

// LeadRef identifies a lead across tenants for background jobs.
type LeadRef struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
}

const leadColumns = `
	l.id, l.organization_id, l.company_name, l.industry, l.revenue_band, l.employee_band,
	l.entity_type, l.technographics, l.installed_tools, l.intent_keywords, l.risk_flags,
	l.compliance, l.sources, l.enrichment_providers, l.enrichment_level, l.region,
	l.status, l.score, l.icp_profile_id, l.enriched_at, l.scored_at, l.created_at, l.updated_at,
	c.id, c.email, c.email_status, c.linkedin_url, c.title, c.department, c.phone`

// ListByIDs returns the leads of tenantID among ids, in request order.
// Ids owned by another tenant are simply absent from the result.
func (r *Repository) ListByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]domain.Lead, error) {
	if len(ids) == 0 {
		return []domain.Lead{}, nil
	}

	rows, err := r.db.Query(ctx, `
		SELECT`+leadColumns+`
		FROM leads l
		LEFT JOIN contacts c ON c.lead_id = l.id AND c.is_primary
		WHERE l.organization_id = $1 AND l.id = ANY($2)
		ORDER BY array_position($2, l.id)
	`, tenantID, ids)
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	defer rows.Close()

	leads := make([]domain.Lead, 0, len(ids))
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lead: %w", err)
		}
		leads = append(leads, lead)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return leads, nil
}

// GetByID returns one tenant-scoped lead.
func (r *Repository) GetByID(ctx context.Context, tenantID, leadID uuid.UUID) (domain.Lead, error) {
	leads, err := r.ListByIDs(ctx, tenantID, []uuid.UUID{leadID})
	if err != nil {
		return domain.Lead{}, err
	}
	if len(leads) == 0 {
		return domain.Lead{}, ErrNotFound
	}
	return leads[0], nil
}

func scanLead(row pgx.Row) (domain.Lead, error) {
	var (
		lead            domain.Lead
		entityType      string
		status          string
		complianceRaw   []byte
		providers       []string
		enrichmentLevel *string
		contactID       *uuid.UUID
		contact         domain.Contact
	)

	err := row.Scan(
		&lead.ID, &lead.OrganizationID, &lead.CompanyName, &lead.Industry, &lead.RevenueBand, &lead.EmployeeBand,
		&entityType, &lead.Technographics, &lead.InstalledTools, &lead.IntentKeywords, &lead.RiskFlags,
		&complianceRaw, &lead.Sources, &providers, &enrichmentLevel, &lead.Region,
		&status, &lead.Score, &lead.ICPProfileID, &lead.EnrichedAt, &lead.ScoredAt, &lead.CreatedAt, &lead.UpdatedAt,
		&contactID, &contact.Email, &contact.EmailStatus, &contact.LinkedInURL, &contact.Title, &contact.Department, &contact.Phone,
	)
	if err != nil {
		return domain.Lead{}, err
	}

	lead.EntityType = domain.ParseEntityType(entityType)
	lead.Status = domain.Status(status)
	if len(complianceRaw) > 0 {
		if err := json.Unmarshal(complianceRaw, &lead.Compliance); err != nil {
			return domain.Lead{}, fmt.Errorf("decode compliance: %w", err)
		}
	}
	for _, p := range providers {
		lead.EnrichmentProviders = append(lead.EnrichmentProviders, domain.Provider(p))
	}
	if enrichmentLevel != nil {
		level := domain.EnrichmentLevel(*enrichmentLevel)
		lead.EnrichmentLevel = &level
	}
	if contactID != nil {
		contact.ID = *contactID
		lead.PrimaryContact = &contact
	}
	return lead, nil
}

// ApplyEnrichment persists the enrichment fields and status of lead.
func (r *Repository) ApplyEnrichment(ctx context.Context, tenantID uuid.UUID, lead domain.Lead) error {
	compliance, err := json.Marshal(nonNilCompliance(lead.Compliance))
	if err != nil {
		return fmt.Errorf("encode compliance: %w", err)
	}

	var level *string
	if lead.EnrichmentLevel != nil {
		s := string(*lead.EnrichmentLevel)
		level = &s
	}

	tag, err := r.db.Exec(ctx, `
		UPDATE leads SET
			industry = $3, revenue_band = $4, employee_band = $5,
			technographics = $6, installed_tools = $7, intent_keywords = $8, risk_flags = $9,
			compliance = $10, sources = $11, enrichment_providers = $12, enrichment_level = $13,
			region = $14, status = $15, enriched_at = $16, updated_at = $16
		WHERE id = $1 AND organization_id = $2
	`,
		lead.ID, tenantID,
		lead.Industry, lead.RevenueBand, lead.EmployeeBand,
		nonNil(lead.Technographics), nonNil(lead.InstalledTools), nonNil(lead.IntentKeywords), nonNil(lead.RiskFlags),
		compliance, nonNil(lead.Sources), domain.ProviderStrings(lead.EnrichmentProviders), level,
		lead.Region, string(lead.Status), lead.EnrichedAt,
	)
	if err != nil {
		return fmt.Errorf("update lead enrichment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// RecordScore updates the lead's score and status and appends a score record
// in a single transaction.
func (r *Repository) RecordScore(ctx context.Context, tenantID uuid.UUID, lead domain.Lead, b domain.ScoreBreakdown) (domain.LeadScoreRecord, error) {
	weights, err := json.Marshal(b.Weights)
	if err != nil {
		return domain.LeadScoreRecord{}, fmt.Errorf("encode weights: %w", err)
	}

	scoredAt := time.Now().UTC()
	if lead.ScoredAt != nil {
		scoredAt = *lead.ScoredAt
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return domain.LeadScoreRecord{}, fmt.Errorf("begin score tx: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE leads SET status = $3, score = $4, scored_at = $5, updated_at = $5
		WHERE id = $1 AND organization_id = $2
	`, lead.ID, tenantID, string(lead.Status), lead.Score, scoredAt)
	if err != nil {
		return domain.LeadScoreRecord{}, fmt.Errorf("update lead score: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.LeadScoreRecord{}, ErrNotFound
	}

	record := domain.LeadScoreRecord{
		ID:             uuid.New(),
		LeadID:         lead.ID,
		OrganizationID: tenantID,
		ScoreBreakdown: b,
		CreatedAt:      scoredAt,
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO lead_score_records (
			id, lead_id, organization_id, fit, intent, engagement, viability, recency,
			composite, weights, segment, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`,
		record.ID, record.LeadID, record.OrganizationID,
		b.Fit, b.Intent, b.Engagement, b.Viability, b.Recency,
		b.Composite, weights, string(b.Segment), record.CreatedAt,
	)
	if err != nil {
		return domain.LeadScoreRecord{}, fmt.Errorf("insert score record: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.LeadScoreRecord{}, fmt.Errorf("commit score tx: %w", err)
	}
	return record, nil
}

// ListScoreHistory returns the newest score records of a lead first.
func (r *Repository) ListScoreHistory(ctx context.Context, tenantID, leadID uuid.UUID, limit int) ([]domain.LeadScoreRecord, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, lead_id, organization_id, fit, intent, engagement, viability, recency,
			composite, weights, segment, created_at
		FROM lead_score_records
		WHERE organization_id = $1 AND lead_id = $2
		ORDER BY created_at DESC
		LIMIT $3
	`, tenantID, leadID, limit)
	if err != nil {
		return nil, fmt.Errorf("list score history: %w", err)
	}
	defer rows.Close()

	records := make([]domain.LeadScoreRecord, 0)
	for rows.Next() {
		var (
			rec        domain.LeadScoreRecord
			weightsRaw []byte
			segment    string
		)
		if err := rows.Scan(
			&rec.ID, &rec.LeadID, &rec.OrganizationID,
			&rec.Fit, &rec.Intent, &rec.Engagement, &rec.Viability, &rec.Recency,
			&rec.Composite, &weightsRaw, &segment, &rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan score record: %w", err)
		}
		if err := json.Unmarshal(weightsRaw, &rec.Weights); err != nil {
			return nil, fmt.Errorf("decode weights: %w", err)
		}
		rec.Segment = domain.Segment(segment)
		records = append(records, rec)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return records, nil
}

// LatestWeights returns the weights of the most recent score record.
// Returns ErrNotFound when the lead was never scored.
func (r *Repository) LatestWeights(ctx context.Context, tenantID, leadID uuid.UUID) (domain.Weights, error) {
	var raw []byte
	err := r.db.QueryRow(ctx, `
		SELECT weights FROM lead_score_records
		WHERE organization_id = $1 AND lead_id = $2
		ORDER BY created_at DESC
		LIMIT 1
	`, tenantID, leadID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Weights{}, ErrNotFound
	}
	if err != nil {
		return domain.Weights{}, fmt.Errorf("latest weights: %w", err)
	}

	var w domain.Weights
	if err := json.Unmarshal(raw, &w); err != nil {
		return domain.Weights{}, fmt.Errorf("decode weights: %w", err)
	}
	return w, nil
}

// ListStaleQualified returns qualified leads last scored before olderThan, oldest first.
func (r *Repository) ListStaleQualified(ctx context.Context, olderThan time.Time, limit int) ([]LeadRef, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, organization_id FROM leads
		WHERE status = 'QUALIFIED' AND scored_at < $1
		ORDER BY scored_at ASC
		LIMIT $2
	`, olderThan, limit)
	if err != nil {
		return nil, fmt.Errorf("list stale leads: %w", err)
	}
	return collectRefs(rows)
}

// ListRefsAfter pages through lead ids by cursor. A nil tenantID spans every tenant.
func (r *Repository) ListRefsAfter(ctx context.Context, tenantID *uuid.UUID, after uuid.UUID, limit int) ([]LeadRef, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, organization_id FROM leads
		WHERE ($1::uuid IS NULL OR organization_id = $1) AND id > $2
		ORDER BY id ASC
		LIMIT $3
	`, tenantID, after, limit)
	if err != nil {
		return nil, fmt.Errorf("list lead refs: %w", err)
	}
	return collectRefs(rows)
}

func collectRefs(rows pgx.Rows) ([]LeadRef, error) {
	defer rows.Close()

	refs := make([]LeadRef, 0)
	for rows.Next() {
		var ref LeadRef
		if err := rows.Scan(&ref.ID, &ref.OrganizationID); err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return refs, nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func nonNilCompliance(m map[string]bool) map[string]bool {
	if m == nil {
		return map[string]bool{}
	}
	return m
}
