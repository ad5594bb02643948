package transport

import (
	"leadscore_backend/internal/leads/domain"
)

func ToWeightsResponse(w domain.Weights) WeightsResponse {
	return WeightsResponse{
		Fit:        w.Fit,
		Intent:     w.Intent,
		Engagement: w.Engagement,
		Viability:  w.Viability,
		Recency:    w.Recency,
	}
}

// ToWeightsOverride converts the optional request object. Nil stays nil.
func ToWeightsOverride(req *WeightsRequest) *domain.WeightsOverride {
	if req == nil {
		return nil
	}
	return &domain.WeightsOverride{
		Fit:        req.Fit,
		Intent:     req.Intent,
		Engagement: req.Engagement,
		Viability:  req.Viability,
		Recency:    req.Recency,
	}
}

func ToLeadResponse(l domain.Lead) LeadResponse {
	resp := LeadResponse{
		ID:                  l.ID,
		OrganizationID:      l.OrganizationID,
		CompanyName:         l.CompanyName,
		Industry:            l.Industry,
		RevenueBand:         l.RevenueBand,
		EmployeeBand:        l.EmployeeBand,
		EntityType:          string(l.EntityType),
		Technographics:      nonNil(l.Technographics),
		InstalledTools:      nonNil(l.InstalledTools),
		IntentKeywords:      nonNil(l.IntentKeywords),
		RiskFlags:           nonNil(l.RiskFlags),
		Compliance:          l.Compliance,
		Sources:             nonNil(l.Sources),
		EnrichmentProviders: nonNil(domain.ProviderStrings(l.EnrichmentProviders)),
		Region:              l.Region,
		Status:              string(l.Status),
		Score:               l.Score,
		ICPProfileID:        l.ICPProfileID,
		CreatedAt:           l.CreatedAt,
		UpdatedAt:           l.UpdatedAt,
		EnrichedAt:          l.EnrichedAt,
		ScoredAt:            l.ScoredAt,
	}
	if resp.Compliance == nil {
		resp.Compliance = map[string]bool{}
	}
	if l.EnrichmentLevel != nil {
		level := string(*l.EnrichmentLevel)
		resp.EnrichmentLevel = &level
	}
	if c := l.PrimaryContact; c != nil {
		resp.PrimaryContact = &ContactResponse{
			ID:          c.ID,
			Email:       c.Email,
			EmailStatus: c.EmailStatus,
			LinkedInURL: c.LinkedInURL,
			Title:       c.Title,
			Department:  c.Department,
			Phone:       c.Phone,
		}
	}
	return resp
}

func ToScoreRecordResponse(r domain.LeadScoreRecord) ScoreRecordResponse {
	return ScoreRecordResponse{
		ID:              r.ID,
		LeadID:          r.LeadID,
		FitScore:        r.Fit,
		IntentScore:     r.Intent,
		EngagementScore: r.Engagement,
		ViabilityScore:  r.Viability,
		RecencyScore:    r.Recency,
		CompositeScore:  r.Composite,
		Segment:         string(r.Segment),
		Weights:         ToWeightsResponse(r.Weights),
		CreatedAt:       r.CreatedAt,
	}
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
