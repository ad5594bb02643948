package email

import (
	"context"
	"fmt"
	"net"
	"time"

	gomail "github.com/wneessen/go-mail"
)

const smtpTimeout = 15 * time.Second

// SMTPSettings mirrors config.SMTPConfig. An empty Username disables auth.
type SMTPSettings struct {
	Host        string
	Port        int
	Username    string
	Password    string
	FromName    string
	FromAddress string
}

// SMTPSender dials a fresh connection per message; alerts are rare.
type SMTPSender struct {
	settings SMTPSettings
}

func NewSMTPSender(settings SMTPSettings) *SMTPSender {
	return &SMTPSender{settings: settings}
}

func (s *SMTPSender) SendHotLeadAlert(ctx context.Context, toEmail string, alert HotLeadAlert) error {
	html, err := renderHotLead(alert)
	if err != nil {
		return err
	}
	subject := fmt.Sprintf(subjectHotLeadFmt, alert.CompanyName, alert.Score)
	msg, err := s.buildMessage(toEmail, subject, html, hotLeadText(alert))
	if err != nil {
		return err
	}
	return s.deliver(ctx, msg)
}

// buildMessage sends text as the primary part and html as its alternative.
func (s *SMTPSender) buildMessage(toEmail, subject, html, text string) (*gomail.Msg, error) {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.settings.FromName, s.settings.FromAddress); err != nil {
		return nil, fmt.Errorf("email from %q: %w", s.settings.FromAddress, err)
	}
	if err := msg.To(toEmail); err != nil {
		return nil, fmt.Errorf("email to %q: %w", toEmail, err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextPlain, text)
	msg.AddAlternativeString(gomail.TypeTextHTML, html)
	return msg, nil
}

func (s *SMTPSender) clientOptions() []gomail.Option {
	dialer := &net.Dialer{}
	opts := []gomail.Option{
		gomail.WithPort(s.settings.Port),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(smtpTimeout),
		gomail.WithDialContextFunc(func(ctx context.Context, _, addr string) (net.Conn, error) {
			return dialer.DialContext(ctx, "tcp4", addr)
		}),
	}
	if s.settings.Username == "" {
		return opts
	}
	return append(opts,
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.settings.Username),
		gomail.WithPassword(s.settings.Password),
	)
}

func (s *SMTPSender) deliver(ctx context.Context, msg *gomail.Msg) error {
	client, err := gomail.NewClient(s.settings.Host, s.clientOptions()...)
	if err != nil {
		return fmt.Errorf("smtp client %s: %w", s.settings.Host, err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send via %s: %w", s.settings.Host, err)
	}
	return nil
}

func renderHotLead(alert HotLeadAlert) (string, error) {
	return render("hot_lead.html", hotLeadView{
		layout: layout{
			Title:      "Hot lead detected",
			Heading:    "Hot lead detected",
			Subheading: alert.CompanyName,
		},
		OrganizationName: alert.OrganizationName,
		CompanyName:      alert.CompanyName,
		LeadID:           alert.LeadID,
		Score:            alert.Score,
	})
}

func hotLeadText(alert HotLeadAlert) string {
	return fmt.Sprintf("A lead for %s just reached the HOT segment.\n\nCompany: %s\nScore: %d / 100\nLead ID: %s\n",
		alert.OrganizationName, alert.CompanyName, alert.Score, alert.LeadID)
}
