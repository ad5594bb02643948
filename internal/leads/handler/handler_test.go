package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"leadscore_backend/internal/events"
	"leadscore_backend/internal/leads/domain"
	"leadscore_backend/internal/leads/repository"
	"leadscore_backend/internal/leads/service"
	"leadscore_backend/platform/httpkit"
	"leadscore_backend/platform/logger"
	"leadscore_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var today = time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)

type memStore struct {
	leads   map[uuid.UUID]domain.Lead
	records []domain.LeadScoreRecord
	reads   int
	writes  int
}

func (s *memStore) ListByIDs(_ context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]domain.Lead, error) {
	s.reads++
	var out []domain.Lead
	for _, id := range ids {
		if l, ok := s.leads[id]; ok && l.OrganizationID == tenantID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (s *memStore) GetByID(_ context.Context, tenantID, leadID uuid.UUID) (domain.Lead, error) {
	s.reads++
	if l, ok := s.leads[leadID]; ok && l.OrganizationID == tenantID {
		return l, nil
	}
	return domain.Lead{}, repository.ErrNotFound
}

func (s *memStore) ApplyEnrichment(_ context.Context, _ uuid.UUID, lead domain.Lead) error {
	s.writes++
	s.leads[lead.ID] = lead
	return nil
}

func (s *memStore) RecordScore(_ context.Context, tenantID uuid.UUID, lead domain.Lead, b domain.ScoreBreakdown) (domain.LeadScoreRecord, error) {
	s.writes++
	s.leads[lead.ID] = lead
	rec := domain.LeadScoreRecord{ID: uuid.New(), LeadID: lead.ID, OrganizationID: tenantID, ScoreBreakdown: b, CreatedAt: *lead.ScoredAt}
	s.records = append(s.records, rec)
	return rec, nil
}

func (s *memStore) ListScoreHistory(_ context.Context, _ uuid.UUID, leadID uuid.UUID, limit int) ([]domain.LeadScoreRecord, error) {
	var out []domain.LeadScoreRecord
	for i := len(s.records) - 1; i >= 0 && len(out) < limit; i-- {
		if s.records[i].LeadID == leadID {
			out = append(out, s.records[i])
		}
	}
	return out, nil
}

func (s *memStore) LatestWeights(context.Context, uuid.UUID, uuid.UUID) (domain.Weights, error) {
	return domain.Weights{}, repository.ErrNotFound
}

func init() {
	gin.SetMode(gin.TestMode)
}

func strPtr(s string) *string { return &s }

type fixture struct {
	tenant uuid.UUID
	store  *memStore
	engine *gin.Engine
}

func newFixture(t *testing.T, leads ...domain.Lead) *fixture {
	t.Helper()
	tenant := uuid.New()
	store := &memStore{leads: map[uuid.UUID]domain.Lead{}}
	for _, l := range leads {
		if l.OrganizationID == uuid.Nil {
			l.OrganizationID = tenant
		}
		store.leads[l.ID] = l
	}

	svc := service.New(store, events.NewInMemoryBus(logger.Nop()), logger.Nop(),
		service.WithClock(func() time.Time { return today }))
	h := New(svc, validator.New())

	r := gin.New()
	api := r.Group("/api/v1", func(c *gin.Context) {
		c.Set(httpkit.ContextUserIDKey, uuid.New())
		c.Set(httpkit.ContextTenantIDKey, tenant)
		c.Next()
	})
	h.RegisterRoutes(api)

	return &fixture{tenant: tenant, store: store, engine: r}
}

func (f *fixture) post(t *testing.T, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/leads/enrichment", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.engine.ServeHTTP(rec, req)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	return rec, payload
}

func (f *fixture) get(t *testing.T, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	f.engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	var payload map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	return rec, payload
}

func qualifiedLead() domain.Lead {
	icp := uuid.New()
	return domain.Lead{
		ID:             uuid.New(),
		CompanyName:    "Northwind",
		Industry:       strPtr("Software"),
		RevenueBand:    strPtr(domain.Revenue10MTo50M),
		EmployeeBand:   strPtr(domain.Employees51To200),
		EntityType:     domain.EntityPublic,
		ICPProfileID:   &icp,
		Compliance:     map[string]bool{"gdpr_compliant": true},
		IntentKeywords: []string{"crm", "pipeline", "forecasting", "sales automation"},
		Technographics: []string{"AWS", "Salesforce", "HubSpot", "Segment", "Snowflake", "Okta"},
		PrimaryContact: &domain.Contact{
			ID:          uuid.New(),
			EmailStatus: strPtr(domain.EmailStatusVerified),
			LinkedInURL: strPtr("https://linkedin.com/in/ana"),
			Title:       strPtr("CTO"),
			Department:  strPtr("Engineering"),
		},
		Status:    domain.StatusNew,
		CreatedAt: today,
	}
}

func TestScoreQualifiedLeadEndToEnd(t *testing.T) {
	lead := qualifiedLead()
	f := newFixture(t, lead)

	rec, payload := f.post(t, `{"action":"score","lead_ids":["`+lead.ID.String()+`"]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Equal(t, true, payload["success"])
	data := payload["data"].(map[string]any)
	assert.Equal(t, float64(1), data["count"])
	assert.Equal(t, map[string]any{"fit": 0.3, "intent": 0.25, "engagement": 0.2, "viability": 0.15, "recency": 0.1}, data["weights"])

	scored := data["scored_leads"].([]any)[0].(map[string]any)
	assert.Equal(t, "QUALIFIED", scored["status"])
	assert.Equal(t, float64(100), scored["score"])
	record := scored["score_record"].(map[string]any)
	assert.Equal(t, "HOT", record["segment"])
	assert.Equal(t, float64(1), record["fit_score"])
	assert.Equal(t, float64(1), record["recency_score"])

	assert.Equal(t, domain.StatusQualified, f.store.leads[lead.ID].Status)
	assert.Len(t, f.store.records, 1)
}

func TestEnrichBasicEndToEnd(t *testing.T) {
	lead := domain.Lead{ID: uuid.New(), CompanyName: "Contoso", Status: domain.StatusNew, CreatedAt: today}
	f := newFixture(t, lead)

	rec, payload := f.post(t, `{"action":"enrich","lead_ids":["`+lead.ID.String()+`"],"enrichment_level":"BASIC"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	data := payload["data"].(map[string]any)
	assert.Equal(t, "BASIC", data["enrichment_level"])
	assert.Equal(t, float64(1), data["count"])

	enriched := data["enriched_leads"].([]any)[0].(map[string]any)
	assert.Equal(t, "Software", enriched["industry"])
	assert.Equal(t, "ENRICHED", enriched["status"])
	assert.Equal(t, []any{"ENRICHED_BASIC"}, enriched["sources"])

	results := data["results"].([]any)
	assert.Equal(t, map[string]any{"lead_id": lead.ID.String(), "ok": true}, results[0])
}

func TestCrossTenantLeadRejectsBatch(t *testing.T) {
	mine := domain.Lead{ID: uuid.New(), CompanyName: "Mine", Status: domain.StatusNew, CreatedAt: today}
	theirs := domain.Lead{ID: uuid.New(), OrganizationID: uuid.New(), CompanyName: "Theirs", Status: domain.StatusNew, CreatedAt: today}
	f := newFixture(t, mine, theirs)

	rec, payload := f.post(t, `{"action":"score","lead_ids":["`+mine.ID.String()+`","`+theirs.ID.String()+`"]}`)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "PARTIAL_ACCESS_DENIED", payload["code"])
	assert.Equal(t, false, payload["success"])
	assert.Zero(t, f.store.writes)
}

func TestUnknownActionRejectedBeforeValidation(t *testing.T) {
	f := newFixture(t)

	rec, payload := f.post(t, `{"action":"delete","lead_ids":"not-a-list"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "UNKNOWN_ACTION", payload["code"])
	assert.Zero(t, f.store.reads)
}

func detailFields(t *testing.T, payload map[string]any) map[string]string {
	t.Helper()
	out := map[string]string{}
	for _, d := range payload["details"].([]any) {
		entry := d.(map[string]any)
		out[entry["field"].(string)] = entry["rule"].(string)
	}
	return out
}

func TestValidationReportsProvidersWithStructErrors(t *testing.T) {
	f := newFixture(t)

	rec, payload := f.post(t, `{"action":"enrich","lead_ids":["nope"],"providers":["FOO"]}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", payload["code"])
	assert.Equal(t, map[string]string{"lead_ids[0]": "uuid", "providers[0]": "oneof"}, detailFields(t, payload))
	assert.Zero(t, f.store.reads)
}

func TestValidationReportsTypeErrorsWithStructErrors(t *testing.T) {
	f := newFixture(t)

	rec, payload := f.post(t, `{"action":"score","lead_ids":["nope"],"weights":{"fit":"x","intent":-1}}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", payload["code"])
	assert.Equal(t, map[string]string{
		"weights.fit":    "type",
		"weights.intent": "gte",
		"lead_ids[0]":    "uuid",
	}, detailFields(t, payload))
}

func TestValidationReportsEveryTypeError(t *testing.T) {
	f := newFixture(t)

	rec, payload := f.post(t, `{"action":"enrich","lead_ids":[1,"nope"],"enrichment_level":7,"providers":["FOO"]}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, map[string]string{
		"lead_ids[0]":      "type",
		"lead_ids[1]":      "uuid",
		"enrichment_level": "type",
		"providers[0]":     "oneof",
	}, detailFields(t, payload))
}

func TestMistypedListIsReportedOnce(t *testing.T) {
	f := newFixture(t)

	rec, payload := f.post(t, `{"action":"score","lead_ids":"abc"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, map[string]string{"lead_ids": "type"}, detailFields(t, payload))
}

func TestValidationListsEveryOffendingField(t *testing.T) {
	f := newFixture(t)

	rec, payload := f.post(t, `{"action":"enrich","lead_ids":["nope"],"enrichment_level":"ULTRA"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", payload["code"])

	fields := map[string]bool{}
	for _, d := range payload["details"].([]any) {
		fields[d.(map[string]any)["field"].(string)] = true
	}
	assert.True(t, fields["lead_ids[0]"])
	assert.True(t, fields["enrichment_level"])
}

func TestEmptyLeadIDsFailValidation(t *testing.T) {
	f := newFixture(t)

	rec, payload := f.post(t, `{"action":"score","lead_ids":[]}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", payload["code"])
}

func TestNegativeWeightFailsValidation(t *testing.T) {
	lead := qualifiedLead()
	f := newFixture(t, lead)

	rec, payload := f.post(t, `{"action":"score","lead_ids":["`+lead.ID.String()+`"],"weights":{"fit":-1}}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	details := payload["details"].([]any)
	assert.Equal(t, "weights.fit", details[0].(map[string]any)["field"])
	assert.Zero(t, f.store.writes)
}

func TestUnknownProviderRejected(t *testing.T) {
	lead := qualifiedLead()
	f := newFixture(t, lead)

	rec, payload := f.post(t, `{"action":"enrich","lead_ids":["`+lead.ID.String()+`"],"providers":["CLEARBIT","ACME"]}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "UNKNOWN_PROVIDER", payload["code"])
	details := payload["details"].([]any)
	require.Len(t, details, 1)
	assert.Equal(t, "providers[1]", details[0].(map[string]any)["field"])
}

func TestMalformedBodyIsValidationError(t *testing.T) {
	f := newFixture(t)

	rec, payload := f.post(t, `{"action":`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", payload["code"])
}

func TestScoreHistory(t *testing.T) {
	lead := qualifiedLead()
	f := newFixture(t, lead)

	for i := 0; i < 2; i++ {
		rec, _ := f.post(t, `{"action":"score","lead_ids":["`+lead.ID.String()+`"]}`)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec, payload := f.get(t, "/api/v1/leads/"+lead.ID.String()+"/scores?limit=1")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	data := payload["data"].(map[string]any)
	records := data["records"].([]any)
	require.Len(t, records, 1)
	assert.Equal(t, f.store.records[1].ID.String(), records[0].(map[string]any)["id"])
}

func TestScoreHistoryValidation(t *testing.T) {
	f := newFixture(t)

	rec, _ := f.get(t, "/api/v1/leads/not-a-uuid/scores")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, payload := f.get(t, "/api/v1/leads/"+uuid.NewString()+"/scores?limit=1000")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	details := payload["details"].([]any)
	assert.Equal(t, "must be at most 100", details[0].(map[string]any)["message"])

	rec, payload = f.get(t, "/api/v1/leads/"+uuid.NewString()+"/scores")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", payload["code"])
}
