package email

import (
	"context"
	"testing"

	"leadscore_backend/platform/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderHotLeadEscapesContent(t *testing.T) {
	html, err := renderHotLead(HotLeadAlert{
		OrganizationName: "Acme",
		CompanyName:      "<script>Evil</script> Inc",
		LeadID:           "6b1f0c1e-4d7e-4c8e-9a55-2f5c1d2b7a10",
		Score:            92,
	})
	require.NoError(t, err)

	assert.Contains(t, html, "<strong>92</strong> / 100")
	assert.Contains(t, html, "Acme")
	assert.Contains(t, html, "&lt;script&gt;Evil&lt;/script&gt; Inc")
	assert.NotContains(t, html, "<script>")
}

func TestLookupTemplateCachesParsedPage(t *testing.T) {
	first, err := lookupTemplate("hot_lead.html")
	require.NoError(t, err)
	second, err := lookupTemplate("hot_lead.html")
	require.NoError(t, err)
	assert.Same(t, first, second)

	_, err = lookupTemplate("missing.html")
	assert.Error(t, err)
}

func TestBuildMessageRejectsBadRecipient(t *testing.T) {
	s := NewSMTPSender(SMTPSettings{Host: "smtp.example.com", Port: 587, FromAddress: "alerts@example.com", FromName: "Lead Scoring"})

	_, err := s.buildMessage("not an address", "subject", "<p>hi</p>", "hi")
	assert.Error(t, err)

	msg, err := s.buildMessage("sales@example.com", "subject", "<p>hi</p>", "hi")
	require.NoError(t, err)
	assert.Equal(t, []string{"subject"}, msg.GetGenHeader("Subject"))
	assert.Len(t, msg.GetParts(), 2)
}

func TestClientOptionsAddAuthOnlyWithUsername(t *testing.T) {
	anon := NewSMTPSender(SMTPSettings{Host: "smtp.example.com", Port: 25})
	authed := NewSMTPSender(SMTPSettings{Host: "smtp.example.com", Port: 587, Username: "u", Password: "p"})

	assert.Len(t, authed.clientOptions(), len(anon.clientOptions())+3)
}

func TestHotLeadTextListsScore(t *testing.T) {
	text := hotLeadText(HotLeadAlert{OrganizationName: "Acme", CompanyName: "Globex", Score: 88, LeadID: "abc"})
	assert.Contains(t, text, "Score: 88 / 100")
	assert.Contains(t, text, "Globex")
}

func TestNewSenderWithoutSMTPIsNoop(t *testing.T) {
	sender := NewSender(&config.Config{})
	assert.IsType(t, NoopSender{}, sender)
	assert.NoError(t, sender.SendHotLeadAlert(context.Background(), "x@example.com", HotLeadAlert{}))

	sender = NewSender(&config.Config{SMTPHost: "smtp.example.com", SMTPPort: 587, SMTPFromAddress: "alerts@example.com"})
	assert.IsType(t, &SMTPSender{}, sender)
}
