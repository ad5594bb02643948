// Package domain provides core business rules for the lead enrichment and scoring context.
package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status is the qualification state of a lead. It only ever moves forward.
type Status string

const (
	StatusNew       Status = "NEW"
	StatusEnriched  Status = "ENRICHED"
	StatusQualified Status = "QUALIFIED"
)

var statusRank = map[Status]int{
	StatusNew:       0,
	StatusEnriched:  1,
	StatusQualified: 2,
}

// Advance returns next unless that would move the lead backwards.
// Enriching an already qualified lead keeps it QUALIFIED.
func (s Status) Advance(next Status) Status {
	if statusRank[next] < statusRank[s] {
		return s
	}
	return next
}

// EntityType classifies the legal form of the lead's company.
type EntityType string

const (
	EntityPublic    EntityType = "PUBLIC"
	EntityPrivate   EntityType = "PRIVATE"
	EntityNonprofit EntityType = "NONPROFIT"
	EntityOther     EntityType = "OTHER"
)

// ParseEntityType maps stored values onto the closed set, falling back to OTHER.
func ParseEntityType(raw string) EntityType {
	switch EntityType(strings.ToUpper(strings.TrimSpace(raw))) {
	case EntityPublic:
		return EntityPublic
	case EntityPrivate:
		return EntityPrivate
	case EntityNonprofit:
		return EntityNonprofit
	default:
		return EntityOther
	}
}

// Revenue bands accepted on a lead.
const (
	RevenueUnder1M   = "<$1M"
	Revenue1MTo10M   = "$1M-$10M"
	Revenue10MTo50M  = "$10M-$50M"
	Revenue50MTo250M = "$50M-$250M"
	RevenueOver250M  = "$250M+"
)

// Employee bands accepted on a lead.
const (
	Employees1To10     = "1-10"
	Employees11To50    = "11-50"
	Employees51To200   = "51-200"
	Employees201To1000 = "201-1000"
	EmployeesOver1000  = "1000+"
)

// EmailStatusVerified marks a contact whose address passed verification.
const EmailStatusVerified = "VERIFIED"

// Contact is the primary contact attached to a lead. Owned by the intake process.
type Contact struct {
	ID          uuid.UUID
	Email       *string
	EmailStatus *string
	LinkedInURL *string
	Title       *string
	Department  *string
	Phone       *string
}

// Lead is the record enriched and scored by this service.
type Lead struct {
	ID                  uuid.UUID
	OrganizationID      uuid.UUID
	CompanyName         string
	Industry            *string
	RevenueBand         *string
	EmployeeBand        *string
	EntityType          EntityType
	Technographics      []string
	InstalledTools      []string
	IntentKeywords      []string
	RiskFlags           []string
	Compliance          map[string]bool
	Sources             []string
	EnrichmentProviders []Provider
	EnrichmentLevel     *EnrichmentLevel
	Region              *string
	Status              Status
	Score               *int
	ICPProfileID        *uuid.UUID
	PrimaryContact      *Contact
	EnrichedAt          *time.Time
	ScoredAt            *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// EnrichmentLevel selects how much fill-in the enrichment stage performs.
type EnrichmentLevel string

const (
	LevelBasic    EnrichmentLevel = "BASIC"
	LevelEnhanced EnrichmentLevel = "ENHANCED"
	LevelPremium  EnrichmentLevel = "PREMIUM"
)

// ParseEnrichmentLevel accepts the three known levels; empty means BASIC.
func ParseEnrichmentLevel(raw string) (EnrichmentLevel, error) {
	switch EnrichmentLevel(strings.ToUpper(strings.TrimSpace(raw))) {
	case "":
		return LevelBasic, nil
	case LevelBasic:
		return LevelBasic, nil
	case LevelEnhanced:
		return LevelEnhanced, nil
	case LevelPremium:
		return LevelPremium, nil
	default:
		return "", fmt.Errorf("unknown enrichment level %q", raw)
	}
}

// SourceTag is the provenance entry appended to Lead.Sources for this level.
func (l EnrichmentLevel) SourceTag() string {
	return "ENRICHED_" + string(l)
}

// Provider names an enrichment data source. Recorded on the lead, never called.
type Provider string

const (
	ProviderClearbit    Provider = "CLEARBIT"
	ProviderZoomInfo    Provider = "ZOOMINFO"
	ProviderOpportunity Provider = "OPPORTUNITY"
	ProviderCompliance  Provider = "COMPLIANCE"
)

// ParseProvider maps a wire value onto the closed provider set.
func ParseProvider(raw string) (Provider, error) {
	switch p := Provider(strings.ToUpper(strings.TrimSpace(raw))); p {
	case ProviderClearbit, ProviderZoomInfo, ProviderOpportunity, ProviderCompliance:
		return p, nil
	default:
		return "", fmt.Errorf("unknown provider %q", raw)
	}
}

// ProviderStrings converts providers to their wire form.
func ProviderStrings(providers []Provider) []string {
	out := make([]string, len(providers))
	for i, p := range providers {
		out[i] = string(p)
	}
	return out
}

func present(s *string) bool {
	return s != nil && strings.TrimSpace(*s) != ""
}

// HasIndustry reports whether a non-blank industry is set.
func (l Lead) HasIndustry() bool { return present(l.Industry) }

// HasRevenueBand reports whether a non-blank revenue band is set.
func (l Lead) HasRevenueBand() bool { return present(l.RevenueBand) }

// HasEmployeeBand reports whether a non-blank employee band is set.
func (l Lead) HasEmployeeBand() bool { return present(l.EmployeeBand) }

// HasVerifiedEmail reports whether the primary contact's email is verified.
func (c *Contact) HasVerifiedEmail() bool {
	return c != nil && c.EmailStatus != nil && strings.EqualFold(*c.EmailStatus, EmailStatusVerified)
}

// HasLinkedIn reports whether the primary contact has a LinkedIn URL.
func (c *Contact) HasLinkedIn() bool {
	return c != nil && present(c.LinkedInURL)
}

// HasRole reports whether the primary contact has both title and department.
func (c *Contact) HasRole() bool {
	return c != nil && present(c.Title) && present(c.Department)
}
