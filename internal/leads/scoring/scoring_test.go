package scoring

import (
	"testing"
	"time"

	"leadscore_backend/internal/leads/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }

func qualifiedLead() domain.Lead {
	icp := uuid.New()
	return domain.Lead{
		ID:           uuid.New(),
		Industry:     strPtr("Software"),
		RevenueBand:  strPtr(domain.Revenue1MTo10M),
		EmployeeBand: strPtr(domain.Employees11To50),
		EntityType:   domain.EntityPublic,
		ICPProfileID: &icp,
		Compliance:   map[string]bool{"gdpr_compliant": true},
		PrimaryContact: &domain.Contact{
			EmailStatus: strPtr("VERIFIED"),
			LinkedInURL: strPtr("https://linkedin.com/in/jane"),
			Title:       strPtr("VP Engineering"),
			Department:  strPtr("Engineering"),
		},
		Status:    domain.StatusNew,
		CreatedAt: now,
	}
}

func TestSegmentBoundaries(t *testing.T) {
	cases := []struct {
		composite float64
		want      domain.Segment
	}{
		{100, domain.SegmentHot},
		{80, domain.SegmentHot},
		{79.999, domain.SegmentWarm},
		{60, domain.SegmentWarm},
		{59.999, domain.SegmentLukewarm},
		{40, domain.SegmentLukewarm},
		{39.999, domain.SegmentCold},
		{0, domain.SegmentCold},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, SegmentFor(tc.composite), "composite %v", tc.composite)
	}
}

func TestRecencySteps(t *testing.T) {
	day := 24 * time.Hour
	cases := []struct {
		age  time.Duration
		want float64
	}{
		{0, 1.0},
		{day, 1.0},
		{day + time.Second, 0.8},
		{7 * day, 0.8},
		{30 * day, 0.6},
		{90 * day, 0.4},
		{91 * day, 0.2},
		{-day, 1.0},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Recency(now.Add(-tc.age), now), "age %v", tc.age)
	}
}

func TestSubScoresOfEmptyLead(t *testing.T) {
	lead := domain.Lead{EntityType: domain.EntityOther, CreatedAt: now.AddDate(0, -6, 0)}

	assert.InDelta(t, 0.5, Fit(lead), 1e-9)
	assert.InDelta(t, 0.3, Intent(lead), 1e-9)
	assert.InDelta(t, 0.2, Engagement(lead), 1e-9)
	assert.InDelta(t, 0.6, Viability(lead), 1e-9)
	assert.Equal(t, 0.2, Recency(lead.CreatedAt, now))
}

func TestIntentCapsEachSignal(t *testing.T) {
	lead := domain.Lead{
		IntentKeywords: []string{"a", "b"},
		Technographics: []string{"x", "y", "z"},
	}
	assert.InDelta(t, 0.3+0.2+0.15, Intent(lead), 1e-9)

	lead.IntentKeywords = make([]string, 12)
	lead.Technographics = make([]string, 20)
	assert.InDelta(t, 1.0, Intent(lead), 1e-9)
}

func TestSubScoresStayWithinUnitInterval(t *testing.T) {
	lead := qualifiedLead()
	lead.IntentKeywords = make([]string, 50)
	lead.Technographics = make([]string, 50)

	b := Score(lead, domain.DefaultWeights(), now)
	for name, v := range map[string]float64{
		"fit": b.Fit, "intent": b.Intent, "engagement": b.Engagement,
		"viability": b.Viability, "recency": b.Recency,
	} {
		assert.GreaterOrEqual(t, v, 0.0, name)
		assert.LessOrEqual(t, v, 1.0, name)
	}
}

func TestCompositeIsClampedForOversizedWeights(t *testing.T) {
	b := domain.ScoreBreakdown{Fit: 1, Intent: 1, Engagement: 1, Viability: 1, Recency: 1}
	w := domain.Weights{Fit: 1, Intent: 1, Engagement: 1, Viability: 1, Recency: 1}

	assert.Equal(t, 100.0, Composite(b, w))
	assert.Equal(t, 0.0, Composite(b, domain.Weights{Fit: -2}))
}

func TestCompositeDoesNotRenormalise(t *testing.T) {
	b := domain.ScoreBreakdown{Fit: 1, Intent: 0, Engagement: 0, Viability: 0, Recency: 0}
	assert.InDelta(t, 50.0, Composite(b, domain.Weights{Fit: 0.5}), 1e-9)
}

func TestFullyQualifiedLeadScoresHot(t *testing.T) {
	lead := qualifiedLead()

	b := Score(lead, domain.DefaultWeights(), now)

	assert.InDelta(t, 1.0, b.Fit, 1e-9)
	assert.InDelta(t, 1.0, b.Engagement, 1e-9)
	assert.InDelta(t, 1.0, b.Viability, 1e-9)
	assert.Equal(t, 1.0, b.Recency)
	assert.InDelta(t, 0.3, b.Intent, 1e-9)
	assert.Equal(t, domain.DefaultWeights(), b.Weights)

	// intent only reaches its base, so the composite misses 0.7 * 0.25.
	assert.InDelta(t, 82.5, b.Composite, 1e-9)
	assert.Equal(t, domain.SegmentHot, b.Segment)
}

func TestFullSignalLeadScoresOneHundred(t *testing.T) {
	lead := qualifiedLead()
	lead.IntentKeywords = []string{"crm", "automation", "pipeline", "analytics"}
	lead.Technographics = []string{"aws", "react", "postgres", "kafka", "redis", "k8s"}

	b := Score(lead, domain.DefaultWeights(), now)
	scored := Apply(lead, b, now)

	assert.Equal(t, 100.0, b.Composite)
	assert.Equal(t, domain.SegmentHot, b.Segment)
	require.NotNil(t, scored.Score)
	assert.Equal(t, 100, *scored.Score)
	assert.Equal(t, domain.StatusQualified, scored.Status)
	assert.Equal(t, now, *scored.ScoredAt)
}

func TestEmptyOverrideMatchesDefaults(t *testing.T) {
	lead := qualifiedLead()
	lead.CreatedAt = now.AddDate(0, 0, -20)

	withDefaults := Score(lead, domain.DefaultWeights(), now)
	withEmpty := Score(lead, (&domain.WeightsOverride{}).Resolve(domain.DefaultWeights()), now)

	assert.Equal(t, withDefaults.Composite, withEmpty.Composite)
}

func TestApplyRoundsComposite(t *testing.T) {
	scored := Apply(domain.Lead{Status: domain.StatusEnriched}, domain.ScoreBreakdown{Composite: 64.5}, now)
	require.NotNil(t, scored.Score)
	assert.Equal(t, 65, *scored.Score)

	scored = Apply(domain.Lead{Status: domain.StatusNew}, domain.ScoreBreakdown{Composite: 64.49}, now)
	assert.Equal(t, 64, *scored.Score)
}
