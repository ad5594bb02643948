package handler

import (
	"encoding/json"
	"errors"
	"fmt"

	"leadscore_backend/internal/leads/domain"
	"leadscore_backend/internal/leads/service"
	"leadscore_backend/internal/leads/transport"
	"leadscore_backend/platform/apperr"
	"leadscore_backend/platform/httpkit"
	"leadscore_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

type Handler struct {
	svc *service.Service
	val *validator.Validator
}

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes mounts the lead routes on the tenant-scoped group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/leads/enrichment", h.Dispatch)
	rg.GET("/leads/:id/scores", h.ScoreHistory)
}

// Dispatch routes a batch request on its action discriminator. Unknown
// actions are rejected before the payload is validated or any lead is read.
func (h *Handler) Dispatch(c *gin.Context) {
	tenantID, ok := httpkit.MustGetTenant(c)
	if !ok {
		return
	}

	body, err := c.GetRawData()
	if err != nil {
		httpkit.HandleError(c, apperr.Validation(msgInvalidRequest, nil))
		return
	}

	var envelope transport.ActionEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		httpkit.HandleError(c, decodeError(err))
		return
	}

	switch envelope.Action {
	case service.ActionEnrich:
		h.enrich(c, tenantID, body)
	case service.ActionScore:
		h.score(c, tenantID, body)
	default:
		httpkit.HandleError(c, apperr.UnknownAction(envelope.Action))
	}
}

func (h *Handler) enrich(c *gin.Context, tenantID uuid.UUID, body []byte) {
	var req transport.EnrichRequest
	typeErrs, err := decodeBody(body, &req)
	if err != nil {
		httpkit.HandleError(c, apperr.Validation(msgInvalidRequest, nil))
		return
	}

	providers, unknown, providerErrs := parseProviders(req.Providers)
	if details := mergeFieldErrors(typeErrs, h.fieldErrors(req)); len(details) > 0 {
		httpkit.HandleError(c, apperr.Validation(msgValidationFailed, mergeFieldErrors(details, providerErrs)))
		return
	}
	if len(providerErrs) > 0 {
		httpkit.HandleError(c, apperr.UnknownProvider(unknown).WithDetails(providerErrs))
		return
	}

	out, err := h.svc.Enrich(c.Request.Context(), tenantID, service.EnrichCommand{
		LeadIDs:   parseIDs(req.LeadIDs),
		Level:     domain.EnrichmentLevel(req.EnrichmentLevel),
		Providers: providers,
	})
	if httpkit.HandleError(c, err) {
		return
	}

	leads := make([]transport.LeadResponse, 0, len(out.Leads))
	for _, l := range out.Leads {
		leads = append(leads, transport.ToLeadResponse(l))
	}
	httpkit.OK(c, transport.EnrichResponse{
		EnrichedLeads:   leads,
		Count:           out.Count,
		EnrichmentLevel: string(out.Level),
		Results:         toItemResults(out.Items),
	})
}

func (h *Handler) score(c *gin.Context, tenantID uuid.UUID, body []byte) {
	var req transport.ScoreRequest
	typeErrs, err := decodeBody(body, &req)
	if err != nil {
		httpkit.HandleError(c, apperr.Validation(msgInvalidRequest, nil))
		return
	}
	if details := mergeFieldErrors(typeErrs, h.fieldErrors(req)); len(details) > 0 {
		httpkit.HandleError(c, apperr.Validation(msgValidationFailed, details))
		return
	}

	out, err := h.svc.Score(c.Request.Context(), tenantID, service.ScoreCommand{
		LeadIDs: parseIDs(req.LeadIDs),
		Weights: transport.ToWeightsOverride(req.Weights),
	})
	if httpkit.HandleError(c, err) {
		return
	}

	leads := make([]transport.ScoredLeadResponse, 0, len(out.Leads))
	for i, l := range out.Leads {
		leads = append(leads, transport.ScoredLeadResponse{
			LeadResponse: transport.ToLeadResponse(l),
			ScoreRecord:  transport.ToScoreRecordResponse(out.Records[i]),
		})
	}
	httpkit.OK(c, transport.ScoreResponse{
		ScoredLeads: leads,
		Count:       out.Count,
		Weights:     transport.ToWeightsResponse(out.Weights),
		Results:     toItemResults(out.Items),
	})
}

// ScoreHistory lists the score records of one lead, newest first.
func (h *Handler) ScoreHistory(c *gin.Context) {
	tenantID, ok := httpkit.MustGetTenant(c)
	if !ok {
		return
	}

	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.HandleError(c, apperr.Validation(msgValidationFailed, []validator.FieldError{{
			Field: "id", Rule: "uuid", Message: "must be a valid UUID",
		}}))
		return
	}

	var query transport.ScoreHistoryQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		httpkit.HandleError(c, apperr.Validation(msgInvalidRequest, []validator.FieldError{{
			Field: "limit", Rule: "number", Message: "must be a number",
		}}))
		return
	}
	if details := h.fieldErrors(query); len(details) > 0 {
		httpkit.HandleError(c, apperr.Validation(msgValidationFailed, details))
		return
	}

	records, err := h.svc.ScoreHistory(c.Request.Context(), tenantID, leadID, query.Limit)
	if httpkit.HandleError(c, err) {
		return
	}

	resp := transport.ScoreHistoryResponse{
		LeadID:  leadID,
		Records: make([]transport.ScoreRecordResponse, 0, len(records)),
	}
	for _, r := range records {
		resp.Records = append(resp.Records, transport.ToScoreRecordResponse(r))
	}
	httpkit.OK(c, resp)
}

// fieldErrors lists every struct-tag violation of req.
func (h *Handler) fieldErrors(req any) []validator.FieldError {
	return validator.FieldErrors(h.val.Struct(req))
}

// parseProviders reports every unrecognized provider along with the first
// unknown name.
func parseProviders(raw []string) ([]domain.Provider, string, []validator.FieldError) {
	providers := make([]domain.Provider, 0, len(raw))
	var (
		details []validator.FieldError
		first   string
	)
	for i, name := range raw {
		p, err := domain.ParseProvider(name)
		if err != nil {
			if first == "" {
				first = name
			}
			details = append(details, validator.FieldError{
				Field:   fmt.Sprintf("providers[%d]", i),
				Rule:    "oneof",
				Param:   "CLEARBIT ZOOMINFO OPPORTUNITY COMPLIANCE",
				Message: fmt.Sprintf("unknown provider %q", name),
			})
			continue
		}
		providers = append(providers, p)
	}
	return providers, first, details
}

// parseIDs converts validated id strings.
func parseIDs(raw []string) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		if id, err := uuid.Parse(s); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}

func decodeError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return apperr.Validation(msgValidationFailed, []validator.FieldError{{
			Field:   typeErr.Field,
			Rule:    "type",
			Param:   typeErr.Type.String(),
			Message: "must be of type " + typeErr.Type.String(),
		}})
	}
	return apperr.Validation(msgInvalidRequest, nil)
}

func toItemResults(items []service.ItemResult) []transport.ItemResult {
	out := make([]transport.ItemResult, 0, len(items))
	for _, item := range items {
		out = append(out, transport.ItemResult{
			LeadID: item.LeadID,
			OK:     item.OK,
			Code:   string(item.Code),
			Error:  item.Error,
		})
	}
	return out
}
