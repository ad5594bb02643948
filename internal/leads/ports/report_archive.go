package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// BatchItem is the per-lead outcome of one enrichment or scoring batch.
type BatchItem struct {
	LeadID uuid.UUID `json:"leadId"`
	OK     bool      `json:"ok"`
	Error  string    `json:"error,omitempty"`
}

// BatchReport summarises a processed batch for archival.
type BatchReport struct {
	ID        uuid.UUID   `json:"id"`
	TenantID  uuid.UUID   `json:"tenantId"`
	Action    string      `json:"action"`
	Requested int         `json:"requested"`
	Succeeded int         `json:"succeeded"`
	Items     []BatchItem `json:"items"`
	Details   any         `json:"details,omitempty"`
	CreatedAt time.Time   `json:"createdAt"`
}

// ReportArchiver persists batch reports outside the primary database.
// The implementation is provided by the composition root and wraps object storage.
type ReportArchiver interface {
	// ArchiveBatch stores the report and returns the object key it was written to.
	ArchiveBatch(ctx context.Context, report BatchReport) (string, error)
}
