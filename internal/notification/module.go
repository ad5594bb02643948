// Package notification provides event handlers for sending notifications
// in response to domain events.
// This module subscribes to events and inverts the dependency: domain modules
// no longer need to know about email providers or templates.
package notification

import (
	"context"
	"fmt"

	"leadscore_backend/internal/email"
	"leadscore_backend/internal/events"
	"leadscore_backend/internal/identity/repository"
	"leadscore_backend/platform/logger"

	"github.com/google/uuid"
)

// OrganizationReader resolves the tenant a notification is addressed to.
type OrganizationReader interface {
	GetOrganization(ctx context.Context, organizationID uuid.UUID) (repository.Organization, error)
}

// Module handles notification side effects of lead events.
type Module struct {
	sender email.Sender
	orgs   OrganizationReader
	log    *logger.Logger
}

// New creates the notification module. A NoopSender turns alerts into log lines.
func New(sender email.Sender, orgs OrganizationReader, log *logger.Logger) *Module {
	if sender == nil {
		sender = email.NoopSender{}
	}
	return &Module{sender: sender, orgs: orgs, log: log}
}

// RegisterHandlers subscribes to all relevant domain events on the event bus.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.HotLeadDetected{}.EventName(), m)
	bus.Subscribe(events.LeadQualified{}.EventName(), m)
}

// Handle implements events.Handler.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.HotLeadDetected:
		return m.handleHotLeadDetected(ctx, e)
	case events.LeadQualified:
		m.log.Debug("lead qualified", "leadId", e.LeadID, "tenantId", e.TenantID, "score", e.Score, "segment", e.Segment)
		return nil
	default:
		return nil
	}
}

func (m *Module) handleHotLeadDetected(ctx context.Context, e events.HotLeadDetected) error {
	if _, ok := m.sender.(email.NoopSender); ok {
		m.log.Info("hot lead detected; smtp not configured, alert not sent",
			"leadId", e.LeadID, "tenantId", e.TenantID, "company", e.CompanyName, "score", e.Score)
		return nil
	}

	org, err := m.orgs.GetOrganization(ctx, e.TenantID)
	if err != nil {
		return fmt.Errorf("load organization %s: %w", e.TenantID, err)
	}
	if org.NotificationEmail == nil || *org.NotificationEmail == "" {
		m.log.Info("hot lead detected; organization has no notification address",
			"leadId", e.LeadID, "tenantId", e.TenantID)
		return nil
	}

	alert := email.HotLeadAlert{
		OrganizationName: org.Name,
		CompanyName:      e.CompanyName,
		LeadID:           e.LeadID.String(),
		Score:            e.Score,
	}
	if err := m.sender.SendHotLeadAlert(ctx, *org.NotificationEmail, alert); err != nil {
		return fmt.Errorf("send hot lead alert: %w", err)
	}

	m.log.Info("hot lead alert sent", "leadId", e.LeadID, "tenantId", e.TenantID)
	return nil
}
