// Package adapters contains anti-corruption layer adapters that bridge
// domain ports to infrastructure services.
package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"leadscore_backend/internal/adapters/storage"
	"leadscore_backend/internal/leads/ports"
)

const reportContentType = "application/json"

// ReportArchiver writes lead batch reports to object storage.
// Objects are keyed {tenant}/{action}/{timestamp}_{id}.json.
type ReportArchiver struct {
	storage storage.StorageService
	bucket  string
}

// NewReportArchiver creates an archiver writing into bucket.
func NewReportArchiver(svc storage.StorageService, bucket string) *ReportArchiver {
	return &ReportArchiver{storage: svc, bucket: bucket}
}

// ArchiveBatch implements ports.ReportArchiver.
func (a *ReportArchiver) ArchiveBatch(ctx context.Context, report ports.BatchReport) (string, error) {
	body, err := json.Marshal(report)
	if err != nil {
		return "", fmt.Errorf("encode batch report: %w", err)
	}

	key := ReportKey(report)
	err = a.storage.PutObject(ctx, storage.Object{
		Bucket:      a.bucket,
		Key:         key,
		ContentType: reportContentType,
		Body:        bytes.NewReader(body),
		Size:        int64(len(body)),
		Metadata: map[string]string{
			"tenant-id": report.TenantID.String(),
			"action":    report.Action,
			"requested": strconv.Itoa(report.Requested),
			"succeeded": strconv.Itoa(report.Succeeded),
		},
	})
	if err != nil {
		return "", err
	}
	return key, nil
}

// ReportKey returns the object key for report.
func ReportKey(report ports.BatchReport) string {
	return fmt.Sprintf("%s/%s/%s_%s.json",
		report.TenantID,
		report.Action,
		report.CreatedAt.UTC().Format("20060102T150405Z"),
		report.ID,
	)
}

var _ ports.ReportArchiver = (*ReportArchiver)(nil)
