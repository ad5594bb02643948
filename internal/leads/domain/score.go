package domain

import (
	"time"

	"github.com/google/uuid"
)

// Default dimension weights.
const (
	DefaultFitWeight        = 0.3
	DefaultIntentWeight     = 0.25
	DefaultEngagementWeight = 0.2
	DefaultViabilityWeight  = 0.15
	DefaultRecencyWeight    = 0.1
)

// Weights multiplies each sub-score into the composite. They are not renormalised.
type Weights struct {
	Fit        float64 `json:"fit"`
	Intent     float64 `json:"intent"`
	Engagement float64 `json:"engagement"`
	Viability  float64 `json:"viability"`
	Recency    float64 `json:"recency"`
}

// DefaultWeights returns {0.3, 0.25, 0.2, 0.15, 0.1}.
func DefaultWeights() Weights {
	return Weights{
		Fit:        DefaultFitWeight,
		Intent:     DefaultIntentWeight,
		Engagement: DefaultEngagementWeight,
		Viability:  DefaultViabilityWeight,
		Recency:    DefaultRecencyWeight,
	}
}

// WeightsOverride carries caller-supplied weights; nil fields fall back to the default.
type WeightsOverride struct {
	Fit        *float64
	Intent     *float64
	Engagement *float64
	Viability  *float64
	Recency    *float64
}

// Resolve fills every omitted field from base independently.
func (o *WeightsOverride) Resolve(base Weights) Weights {
	if o == nil {
		return base
	}
	w := base
	if o.Fit != nil {
		w.Fit = *o.Fit
	}
	if o.Intent != nil {
		w.Intent = *o.Intent
	}
	if o.Engagement != nil {
		w.Engagement = *o.Engagement
	}
	if o.Viability != nil {
		w.Viability = *o.Viability
	}
	if o.Recency != nil {
		w.Recency = *o.Recency
	}
	return w
}

// Segment buckets a composite score.
type Segment string

const (
	SegmentHot      Segment = "HOT"
	SegmentWarm     Segment = "WARM"
	SegmentLukewarm Segment = "LUKEWARM"
	SegmentCold     Segment = "COLD"
)

// ScoreBreakdown is the output of the scoring stage for one lead.
type ScoreBreakdown struct {
	Fit        float64
	Intent     float64
	Engagement float64
	Viability  float64
	Recency    float64
	Composite  float64
	Weights    Weights
	Segment    Segment
}

// LeadScoreRecord is an immutable scoring event.
type LeadScoreRecord struct {
	ID             uuid.UUID
	LeadID         uuid.UUID
	OrganizationID uuid.UUID
	ScoreBreakdown
	CreatedAt time.Time
}
