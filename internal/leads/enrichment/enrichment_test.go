package enrichment

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

func baseLead() domain.Lead {
	return domain.Lead{
		ID:          uuid.New(),
		CompanyName: "Acme",
		EntityType:  domain.EntityPrivate,
		Status:      domain.StatusNew,
		CreatedAt:   now,
	}
}

func TestBasicFillsDefaults(t *testing.T) {
	lead := baseLead()

	f, err := Enrich(lead, domain.LevelBasic, nil)
	require.NoError(t, err)

	assert.Equal(t, "Software", f.Industry)
	assert.Equal(t, "$1M-$10M", f.RevenueBand)
	assert.Equal(t, "11-50", f.EmployeeBand)
	assert.Nil(t, f.Technographics)
	assert.Nil(t, f.IntentKeywords)
	assert.Empty(t, f.Compliance)
	assert.Equal(t, []string{"ENRICHED_BASIC"}, f.Sources)

	enriched := Apply(lead, f, now)
	assert.Equal(t, domain.StatusEnriched, enriched.Status)
	assert.Equal(t, "Software", *enriched.Industry)
	assert.Equal(t, []string{"ENRICHED_BASIC"}, enriched.Sources)
}

func TestBasicKeepsExistingFirmographics(t *testing.T) {
	lead := baseLead()
	lead.Industry = strPtr("Healthcare")
	lead.EmployeeBand = strPtr(domain.Employees201To1000)

	f, err := Enrich(lead, domain.LevelBasic, nil)
	require.NoError(t, err)

	assert.Equal(t, "Healthcare", f.Industry)
	assert.Equal(t, "$1M-$10M", f.RevenueBand)
	assert.Equal(t, domain.Employees201To1000, f.EmployeeBand)
}

func TestEnhancedAddsSignals(t *testing.T) {
	f, err := Enrich(baseLead(), domain.LevelEnhanced, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"Cloud Hosting", "CRM", "Marketing Automation"}, f.Technographics)
	assert.Len(t, f.InstalledTools, 3)
	assert.Len(t, f.IntentKeywords, 3)
	assert.Empty(t, f.Compliance)
}

func TestPremiumExtendsAndSetsCompliance(t *testing.T) {
	lead := baseLead()
	lead.Compliance = map[string]bool{"hipaa": true}

	f, err := Enrich(lead, domain.LevelPremium, nil)
	require.NoError(t, err)

	assert.Len(t, f.Technographics, 6)
	assert.Len(t, f.InstalledTools, 6)
	assert.Len(t, f.IntentKeywords, 5)
	assert.Equal(t, map[string]bool{
		"gdpr_compliant":     true,
		"soc2_compliant":     true,
		"iso27001_compliant": false,
	}, f.Compliance)
}

func TestNonPremiumKeepsExistingCompliance(t *testing.T) {
	lead := baseLead()
	lead.Compliance = map[string]bool{"hipaa": true}
	lead.RiskFlags = []string{"sanctioned_region"}

	f, err := Enrich(lead, domain.LevelEnhanced, nil)
	require.NoError(t, err)

	assert.Equal(t, map[string]bool{"hipaa": true}, f.Compliance)
	assert.Equal(t, []string{"sanctioned_region"}, f.RiskFlags)
}

func TestUnknownLevelIsRejected(t *testing.T) {
	_, err := Enrich(baseLead(), domain.EnrichmentLevel("GOLD"), nil)
	assert.ErrorContains(t, err, "GOLD")
}

func TestRepeatedEnrichmentIsStableExceptSources(t *testing.T) {
	lead := baseLead()

	first, err := Enrich(lead, domain.LevelPremium, nil)
	require.NoError(t, err)
	once := Apply(lead, first, now)

	second, err := Enrich(once, domain.LevelPremium, nil)
	require.NoError(t, err)
	twice := Apply(once, second, now)

	assert.Equal(t, once.Industry, twice.Industry)
	assert.Equal(t, once.RevenueBand, twice.RevenueBand)
	assert.Equal(t, once.EmployeeBand, twice.EmployeeBand)
	assert.Equal(t, once.Technographics, twice.Technographics)
	assert.Equal(t, once.InstalledTools, twice.InstalledTools)
	assert.Equal(t, once.IntentKeywords, twice.IntentKeywords)
	assert.Equal(t, once.Compliance, twice.Compliance)
	assert.Equal(t, []string{"ENRICHED_PREMIUM", "ENRICHED_PREMIUM"}, twice.Sources)
}

func TestEnrichDoesNotMutateInput(t *testing.T) {
	lead := baseLead()
	lead.Sources = []string{"IMPORT"}

	_, err := Enrich(lead, domain.LevelBasic, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"IMPORT"}, lead.Sources)
	assert.Nil(t, lead.Industry)
}

func TestApplyNeverRegressesQualifiedLead(t *testing.T) {
	lead := baseLead()
	lead.Status = domain.StatusQualified

	f, err := Enrich(lead, domain.LevelBasic, nil)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusQualified, Apply(lead, f, now).Status)
}

func TestProvidersAreRecordedOnly(t *testing.T) {
	providers := []domain.Provider{domain.ProviderClearbit, domain.ProviderCompliance}

	with, err := Enrich(baseLead(), domain.LevelEnhanced, providers)
	require.NoError(t, err)
	without, err := Enrich(baseLead(), domain.LevelEnhanced, nil)
	require.NoError(t, err)

	assert.Equal(t, without.Technographics, with.Technographics)
	assert.Equal(t, providers, Apply(baseLead(), with, now).EnrichmentProviders)
}

func TestRegionFromContactPhone(t *testing.T) {
	lead := baseLead()
	lead.PrimaryContact = &domain.Contact{Phone: strPtr("+31 6 12345678")}

	f, err := Enrich(lead, domain.LevelBasic, nil)
	require.NoError(t, err)
	require.NotNil(t, f.Region)
	assert.Equal(t, "NL", *f.Region)

	lead.Region = strPtr("DE")
	f, err = Enrich(lead, domain.LevelBasic, nil)
	require.NoError(t, err)
	assert.Equal(t, "DE", *f.Region)
}

func TestLoadCatalogRequiresDefaults(t *testing.T) {
	_, err := LoadCatalog([]byte("defaults:\n  industry: Retail\n"))
	assert.Error(t, err)
}
