// Package scoring computes the qualification score of a lead.
//
// Each of the five dimensions starts from a fixed base and collects fixed
// increments for signals present on the lead. Sub-scores are clamped to
// [0,1]; the composite is their weighted sum scaled to a percentage and
// clamped to [0,100]. Missing fields contribute nothing.
package scoring

import (
	"math"
	"time"

	"leadscore_backend/internal/leads/domain"
)

const (
	fitBase            = 0.5
	fitIndustryBonus   = 0.1
	fitRevenueBonus    = 0.1
	fitEmployeesBonus  = 0.1
	fitICPProfileBonus = 0.2

	intentBase              = 0.3
	intentPerKeyword        = 0.1
	intentKeywordCap        = 0.4
	intentPerTechnographic  = 0.05
	intentTechnographicsCap = 0.3

	engagementBase          = 0.2
	engagementVerifiedEmail = 0.3
	engagementLinkedIn      = 0.2
	engagementRole          = 0.3

	viabilityBase         = 0.4
	viabilityNoRiskFlags  = 0.2
	viabilityCompliance   = 0.2
	viabilityPublicEntity = 0.2

	hotThreshold      = 80.0
	warmThreshold     = 60.0
	lukewarmThreshold = 40.0

	// composite is rounded to this many decimals so 0.3+0.25+... lands on 100 exactly.
	compositePrecision = 1e9
)

type recencyStep struct {
	maxDays float64
	score   float64
}

var recencySteps = []recencyStep{
	{maxDays: 1, score: 1.0},
	{maxDays: 7, score: 0.8},
	{maxDays: 30, score: 0.6},
	{maxDays: 90, score: 0.4},
}

const recencyFloor = 0.2

func clampUnit(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// Fit scores firmographic completeness and ICP linkage.
func Fit(lead domain.Lead) float64 {
	score := fitBase
	if lead.HasIndustry() {
		score += fitIndustryBonus
	}
	if lead.HasRevenueBand() {
		score += fitRevenueBonus
	}
	if lead.HasEmployeeBand() {
		score += fitEmployeesBonus
	}
	if lead.ICPProfileID != nil {
		score += fitICPProfileBonus
	}
	return clampUnit(score)
}

// Intent scores buying signals from keywords and technographics.
func Intent(lead domain.Lead) float64 {
	keywords := math.Min(intentPerKeyword*float64(len(lead.IntentKeywords)), intentKeywordCap)
	tech := math.Min(intentPerTechnographic*float64(len(lead.Technographics)), intentTechnographicsCap)
	return clampUnit(intentBase + keywords + tech)
}

// Engagement scores how reachable the primary contact is.
func Engagement(lead domain.Lead) float64 {
	score := engagementBase
	c := lead.PrimaryContact
	if c.HasVerifiedEmail() {
		score += engagementVerifiedEmail
	}
	if c.HasLinkedIn() {
		score += engagementLinkedIn
	}
	if c.HasRole() {
		score += engagementRole
	}
	return clampUnit(score)
}

// Viability scores risk and compliance posture.
func Viability(lead domain.Lead) float64 {
	score := viabilityBase
	if len(lead.RiskFlags) == 0 {
		score += viabilityNoRiskFlags
	}
	if len(lead.Compliance) > 0 {
		score += viabilityCompliance
	}
	if lead.EntityType == domain.EntityPublic {
		score += viabilityPublicEntity
	}
	return clampUnit(score)
}

// Recency is a step function of the lead's age in days at now.
func Recency(createdAt, now time.Time) float64 {
	ageDays := now.Sub(createdAt).Hours() / 24
	for _, step := range recencySteps {
		if ageDays <= step.maxDays {
			return step.score
		}
	}
	return recencyFloor
}

// Composite weights the breakdown's sub-scores into a percentage in [0,100].
func Composite(b domain.ScoreBreakdown, w domain.Weights) float64 {
	sum := clampUnit(b.Fit)*w.Fit +
		clampUnit(b.Intent)*w.Intent +
		clampUnit(b.Engagement)*w.Engagement +
		clampUnit(b.Viability)*w.Viability +
		clampUnit(b.Recency)*w.Recency

	pct := math.Round(sum*100*compositePrecision) / compositePrecision
	return math.Max(0, math.Min(100, pct))
}

// SegmentFor buckets a composite. Each threshold is inclusive.
func SegmentFor(composite float64) domain.Segment {
	switch {
	case composite >= hotThreshold:
		return domain.SegmentHot
	case composite >= warmThreshold:
		return domain.SegmentWarm
	case composite >= lukewarmThreshold:
		return domain.SegmentLukewarm
	default:
		return domain.SegmentCold
	}
}

// Score runs every dimension for lead with the given weights.
func Score(lead domain.Lead, w domain.Weights, now time.Time) domain.ScoreBreakdown {
	b := domain.ScoreBreakdown{
		Fit:        Fit(lead),
		Intent:     Intent(lead),
		Engagement: Engagement(lead),
		Viability:  Viability(lead),
		Recency:    Recency(lead.CreatedAt, now),
		Weights:    w,
	}
	b.Composite = Composite(b, w)
	b.Segment = SegmentFor(b.Composite)
	return b
}

// Apply returns lead qualified with the rounded composite.
func Apply(lead domain.Lead, b domain.ScoreBreakdown, now time.Time) domain.Lead {
	score := int(math.Round(b.Composite))
	lead.Score = &score
	lead.Status = lead.Status.Advance(domain.StatusQualified)
	lead.ScoredAt = &now
	lead.UpdatedAt = now
	return lead
}
