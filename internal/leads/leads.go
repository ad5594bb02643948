// Package leads provides the lead enrichment and scoring bounded context.
// This file defines the public API of the leads bounded context.
// Only types and interfaces defined here should be imported by other domains.
package leads

import (
	"context"

	"leadscore_backend/internal/leads/domain"

	"github.com/google/uuid"
)

// Rescorer re-scores a single lead outside of a request, e.g. from a background worker.
// Other domains should depend on this interface, not on concrete implementations.
type Rescorer interface {
	Rescore(ctx context.Context, tenantID, leadID uuid.UUID) (domain.LeadScoreRecord, error)
}
