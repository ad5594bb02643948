// Package events defines the lead pipeline's domain events on top of the
// platform bus.
package events

import (
	"leadscore_backend/platform/events"
	"leadscore_backend/platform/logger"

	"github.com/google/uuid"
)

type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
	InMemoryBus = events.InMemoryBus
)

var NewBaseEvent = events.NewBaseEvent

func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return events.NewInMemoryBus(log)
}

// LeadEnriched is published after a lead's enrichment fields were persisted.
type LeadEnriched struct {
	BaseEvent
	LeadID    uuid.UUID `json:"leadId"`
	TenantID  uuid.UUID `json:"tenantId"`
	Level     string    `json:"level"`
	Providers []string  `json:"providers,omitempty"`
}

func (e LeadEnriched) EventName() string { return "leads.lead.enriched" }

// LeadQualified is published for every persisted score record.
type LeadQualified struct {
	BaseEvent
	LeadID    uuid.UUID `json:"leadId"`
	TenantID  uuid.UUID `json:"tenantId"`
	RecordID  uuid.UUID `json:"recordId"`
	Score     int       `json:"score"`
	Composite float64   `json:"composite"`
	Segment   string    `json:"segment"`
}

func (e LeadQualified) EventName() string { return "leads.lead.qualified" }

// HotLeadDetected is published when a score lands in the HOT segment.
type HotLeadDetected struct {
	BaseEvent
	LeadID      uuid.UUID `json:"leadId"`
	TenantID    uuid.UUID `json:"tenantId"`
	CompanyName string    `json:"companyName"`
	Score       int       `json:"score"`
}

func (e HotLeadDetected) EventName() string { return "leads.lead.hot_detected" }
