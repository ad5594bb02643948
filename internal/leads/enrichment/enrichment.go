// Package enrichment fills in firmographic and behavioural data on a lead.
// No provider is contacted: the values come from a fixed catalogue and depend
// only on the requested level, so enriching twice yields the same fields.
package enrichment

import (
	_ "embed"
	"fmt"
	"time"

	"leadscore_backend/internal/leads/domain"
	"leadscore_backend/platform/phone"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

type levelCatalog struct {
	Technographics []string        `yaml:"technographics"`
	InstalledTools []string        `yaml:"installed_tools"`
	IntentKeywords []string        `yaml:"intent_keywords"`
	Compliance     map[string]bool `yaml:"compliance"`
}

// Catalog is the fixed fill-in data for each level.
type Catalog struct {
	Defaults struct {
		Industry     string `yaml:"industry"`
		RevenueBand  string `yaml:"revenue_band"`
		EmployeeBand string `yaml:"employee_band"`
	} `yaml:"defaults"`
	Enhanced levelCatalog `yaml:"enhanced"`
	Premium  levelCatalog `yaml:"premium"`
}

var defaultCatalog = mustLoadCatalog(catalogYAML)

// LoadCatalog parses a catalogue document.
func LoadCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse enrichment catalog: %w", err)
	}
	if c.Defaults.Industry == "" || c.Defaults.RevenueBand == "" || c.Defaults.EmployeeBand == "" {
		return nil, fmt.Errorf("enrichment catalog: defaults must set industry, revenue_band and employee_band")
	}
	return &c, nil
}

func mustLoadCatalog(data []byte) *Catalog {
	c, err := LoadCatalog(data)
	if err != nil {
		panic(err)
	}
	return c
}

// DefaultCatalog returns the embedded catalogue.
func DefaultCatalog() *Catalog { return defaultCatalog }

// Fields is the enrichment result for one lead. Nil slices and maps mean
// "leave the lead's current value".
type Fields struct {
	Level          domain.EnrichmentLevel
	Providers      []domain.Provider
	Industry       string
	RevenueBand    string
	EmployeeBand   string
	Technographics []string
	InstalledTools []string
	IntentKeywords []string
	RiskFlags      []string
	Compliance     map[string]bool
	Sources        []string
	Region         *string
}

// Enrich computes the fields for lead at level using the embedded catalogue.
func Enrich(lead domain.Lead, level domain.EnrichmentLevel, providers []domain.Provider) (Fields, error) {
	return defaultCatalog.Enrich(lead, level, providers)
}

// Enrich computes the fields for lead at level. Unknown levels are rejected.
func (c *Catalog) Enrich(lead domain.Lead, level domain.EnrichmentLevel, providers []domain.Provider) (Fields, error) {
	switch level {
	case domain.LevelBasic, domain.LevelEnhanced, domain.LevelPremium:
	default:
		return Fields{}, fmt.Errorf("unknown enrichment level %q", level)
	}

	f := Fields{
		Level:        level,
		Providers:    append([]domain.Provider(nil), providers...),
		Industry:     orDefault(lead.Industry, c.Defaults.Industry),
		RevenueBand:  orDefault(lead.RevenueBand, c.Defaults.RevenueBand),
		EmployeeBand: orDefault(lead.EmployeeBand, c.Defaults.EmployeeBand),
		RiskFlags:    copyStrings(lead.RiskFlags),
		Compliance:   copyCompliance(lead.Compliance),
		Sources:      append(copyStrings(lead.Sources), level.SourceTag()),
		Region:       regionOf(lead),
	}

	if level == domain.LevelEnhanced || level == domain.LevelPremium {
		f.Technographics = copyStrings(c.Enhanced.Technographics)
		f.InstalledTools = copyStrings(c.Enhanced.InstalledTools)
		f.IntentKeywords = copyStrings(c.Enhanced.IntentKeywords)
	}

	if level == domain.LevelPremium {
		f.Technographics = append(f.Technographics, c.Premium.Technographics...)
		f.InstalledTools = append(f.InstalledTools, c.Premium.InstalledTools...)
		f.IntentKeywords = append(f.IntentKeywords, c.Premium.IntentKeywords...)
		f.Compliance = copyCompliance(c.Premium.Compliance)
	}

	return f, nil
}

// Apply writes f onto lead and advances it to ENRICHED.
func Apply(lead domain.Lead, f Fields, now time.Time) domain.Lead {
	lead.Industry = &f.Industry
	lead.RevenueBand = &f.RevenueBand
	lead.EmployeeBand = &f.EmployeeBand
	if f.Technographics != nil {
		lead.Technographics = f.Technographics
	}
	if f.InstalledTools != nil {
		lead.InstalledTools = f.InstalledTools
	}
	if f.IntentKeywords != nil {
		lead.IntentKeywords = f.IntentKeywords
	}
	lead.RiskFlags = f.RiskFlags
	lead.Compliance = f.Compliance
	lead.Sources = f.Sources
	lead.EnrichmentProviders = f.Providers
	level := f.Level
	lead.EnrichmentLevel = &level
	if f.Region != nil {
		lead.Region = f.Region
	}
	lead.Status = lead.Status.Advance(domain.StatusEnriched)
	lead.EnrichedAt = &now
	lead.UpdatedAt = now
	return lead
}

func orDefault(value *string, fallback string) string {
	if value != nil && *value != "" {
		return *value
	}
	return fallback
}

func regionOf(lead domain.Lead) *string {
	if lead.Region != nil && *lead.Region != "" {
		return lead.Region
	}
	if lead.PrimaryContact == nil || lead.PrimaryContact.Phone == nil {
		return nil
	}
	region := phone.RegionCode(*lead.PrimaryContact.Phone)
	if region == "" {
		return nil
	}
	return &region
}

func copyStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func copyCompliance(in map[string]bool) map[string]bool {
	out := make(map[string]bool, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
