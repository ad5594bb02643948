package transport

import (
	"time"

	"github.com/google/uuid"
)

// MaxBatchSize bounds the number of lead ids accepted per request.
const MaxBatchSize = 500

// ActionEnvelope carries the discriminator shared by every batch request.
type ActionEnvelope struct {
	Action string `json:"action"`
}

type EnrichRequest struct {
	Action          string   `json:"action"`
	LeadIDs         []string `json:"lead_ids" validate:"required,min=1,max=500,dive,uuid"`
	EnrichmentLevel string   `json:"enrichment_level" validate:"omitempty,oneof=BASIC ENHANCED PREMIUM"`
	Providers       []string `json:"providers" validate:"omitempty,max=10,dive,required"`
}

type WeightsRequest struct {
	Fit        *float64 `json:"fit" validate:"omitempty,gte=0"`
	Intent     *float64 `json:"intent" validate:"omitempty,gte=0"`
	Engagement *float64 `json:"engagement" validate:"omitempty,gte=0"`
	Viability  *float64 `json:"viability" validate:"omitempty,gte=0"`
	Recency    *float64 `json:"recency" validate:"omitempty,gte=0"`
}

type ScoreRequest struct {
	Action  string          `json:"action"`
	LeadIDs []string        `json:"lead_ids" validate:"required,min=1,max=500,dive,uuid"`
	Weights *WeightsRequest `json:"weights"`
}

type ScoreHistoryQuery struct {
	Limit int `form:"limit" validate:"omitempty,min=1,max=100"`
}

type WeightsResponse struct {
	Fit        float64 `json:"fit"`
	Intent     float64 `json:"intent"`
	Engagement float64 `json:"engagement"`
	Viability  float64 `json:"viability"`
	Recency    float64 `json:"recency"`
}

type ContactResponse struct {
	ID          uuid.UUID `json:"id"`
	Email       *string   `json:"email,omitempty"`
	EmailStatus *string   `json:"email_status,omitempty"`
	LinkedInURL *string   `json:"linkedin_url,omitempty"`
	Title       *string   `json:"title,omitempty"`
	Department  *string   `json:"department,omitempty"`
	Phone       *string   `json:"phone,omitempty"`
}

type LeadResponse struct {
	ID                  uuid.UUID        `json:"id"`
	OrganizationID      uuid.UUID        `json:"organization_id"`
	CompanyName         string           `json:"company_name"`
	Industry            *string          `json:"industry"`
	RevenueBand         *string          `json:"revenue_band"`
	EmployeeBand        *string          `json:"employee_band"`
	EntityType          string           `json:"entity_type"`
	Technographics      []string         `json:"technographics"`
	InstalledTools      []string         `json:"installed_tools"`
	IntentKeywords      []string         `json:"intent_keywords"`
	RiskFlags           []string         `json:"risk_flags"`
	Compliance          map[string]bool  `json:"compliance"`
	Sources             []string         `json:"sources"`
	EnrichmentProviders []string         `json:"enrichment_providers"`
	EnrichmentLevel     *string          `json:"enrichment_level"`
	Region              *string          `json:"region"`
	Status              string           `json:"status"`
	Score               *int             `json:"score"`
	ICPProfileID        *uuid.UUID       `json:"icp_profile_id"`
	PrimaryContact      *ContactResponse `json:"primary_contact,omitempty"`
	CreatedAt           time.Time        `json:"created_at"`
	UpdatedAt           time.Time        `json:"updated_at"`
	EnrichedAt          *time.Time       `json:"enriched_at"`
	ScoredAt            *time.Time       `json:"scored_at"`
}

type ScoreRecordResponse struct {
	ID              uuid.UUID       `json:"id"`
	LeadID          uuid.UUID       `json:"lead_id"`
	FitScore        float64         `json:"fit_score"`
	IntentScore     float64         `json:"intent_score"`
	EngagementScore float64         `json:"engagement_score"`
	ViabilityScore  float64         `json:"viability_score"`
	RecencyScore    float64         `json:"recency_score"`
	CompositeScore  float64         `json:"composite_score"`
	Segment         string          `json:"segment"`
	Weights         WeightsResponse `json:"weights"`
	CreatedAt       time.Time       `json:"created_at"`
}

// ScoredLeadResponse is a qualified lead together with the record just written for it.
type ScoredLeadResponse struct {
	LeadResponse
	ScoreRecord ScoreRecordResponse `json:"score_record"`
}

// ItemResult is the per-lead outcome of a batch.
type ItemResult struct {
	LeadID uuid.UUID `json:"lead_id"`
	OK     bool      `json:"ok"`
	Code   string    `json:"code,omitempty"`
	Error  string    `json:"error,omitempty"`
}

type EnrichResponse struct {
	EnrichedLeads   []LeadResponse `json:"enriched_leads"`
	Count           int            `json:"count"`
	EnrichmentLevel string         `json:"enrichment_level"`
	Results         []ItemResult   `json:"results"`
}

type ScoreResponse struct {
	ScoredLeads []ScoredLeadResponse `json:"scored_leads"`
	Count       int                  `json:"count"`
	Weights     WeightsResponse      `json:"weights"`
	Results     []ItemResult         `json:"results"`
}

type ScoreHistoryResponse struct {
	LeadID  uuid.UUID             `json:"lead_id"`
	Records []ScoreRecordResponse `json:"records"`
}
