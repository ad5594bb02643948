// Package email delivers transactional e-mail over SMTP.
package email

import (
	"context"

	"leadscore_backend/platform/config"
)

// HotLeadAlert is the content of a hot lead notification.
type HotLeadAlert struct {
	OrganizationName string
	CompanyName      string
	LeadID           string
	Score            int
}

// Sender delivers notification e-mails.
type Sender interface {
	SendHotLeadAlert(ctx context.Context, toEmail string, alert HotLeadAlert) error
}

// NoopSender drops every message. Used when SMTP is not configured.
type NoopSender struct{}

func (NoopSender) SendHotLeadAlert(context.Context, string, HotLeadAlert) error {
	return nil
}

// NewSender returns an SMTP sender when SMTP is configured, otherwise a NoopSender.
func NewSender(cfg config.SMTPConfig) Sender {
	if !cfg.IsSMTPEnabled() {
		return NoopSender{}
	}
	return NewSMTPSender(SMTPSettings{
		Host:        cfg.GetSMTPHost(),
		Port:        cfg.GetSMTPPort(),
		Username:    cfg.GetSMTPUsername(),
		Password:    cfg.GetSMTPPassword(),
		FromName:    cfg.GetSMTPFromName(),
		FromAddress: cfg.GetSMTPFromAddress(),
	})
}
