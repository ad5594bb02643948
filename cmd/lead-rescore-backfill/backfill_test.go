package main

import (
	"context"
	"errors"
	"sort"
	"testing"

	"leadscore_backend/internal/leads/domain"
	"leadscore_backend/internal/leads/repository"
	"leadscore_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pagedLeads struct {
	refs  []repository.LeadRef
	calls int
	err   error
}

func (p *pagedLeads) ListRefsAfter(_ context.Context, tenantID *uuid.UUID, after uuid.UUID, limit int) ([]repository.LeadRef, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}

	out := make([]repository.LeadRef, 0, limit)
	for _, ref := range p.refs {
		if tenantID != nil && ref.OrganizationID != *tenantID {
			continue
		}
		if ref.ID.String() <= after.String() {
			continue
		}
		out = append(out, ref)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

type countingRescorer struct {
	seen   []uuid.UUID
	failOn uuid.UUID
}

func (c *countingRescorer) Rescore(_ context.Context, _, leadID uuid.UUID) (domain.LeadScoreRecord, error) {
	if leadID == c.failOn {
		return domain.LeadScoreRecord{}, errors.New("scoring failed")
	}
	c.seen = append(c.seen, leadID)
	return domain.LeadScoreRecord{LeadID: leadID}, nil
}

func sortedRefs(tenants ...uuid.UUID) []repository.LeadRef {
	var refs []repository.LeadRef
	for _, tenant := range tenants {
		for i := 0; i < 3; i++ {
			refs = append(refs, repository.LeadRef{ID: uuid.New(), OrganizationID: tenant})
		}
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].ID.String() < refs[j].ID.String() })
	return refs
}

func TestBackfillPagesThroughAllLeads(t *testing.T) {
	leads := &pagedLeads{refs: sortedRefs(uuid.New(), uuid.New())}
	rescorer := &countingRescorer{}

	stats, err := runBackfill(context.Background(), leads, rescorer, logger.Nop(), backfillOptions{BatchSize: 2})
	require.NoError(t, err)

	assert.Equal(t, backfillStats{Seen: 6, Rescored: 6}, stats)
	assert.Len(t, rescorer.seen, 6)
	assert.Equal(t, 4, leads.calls)
}

func TestBackfillRestrictsToTenant(t *testing.T) {
	tenant := uuid.New()
	leads := &pagedLeads{refs: sortedRefs(tenant, uuid.New())}
	rescorer := &countingRescorer{}

	stats, err := runBackfill(context.Background(), leads, rescorer, logger.Nop(), backfillOptions{TenantID: &tenant, BatchSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Rescored)
}

func TestBackfillDryRunWritesNothing(t *testing.T) {
	leads := &pagedLeads{refs: sortedRefs(uuid.New())}
	rescorer := &countingRescorer{}

	stats, err := runBackfill(context.Background(), leads, rescorer, logger.Nop(), backfillOptions{DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, backfillStats{Seen: 3}, stats)
	assert.Empty(t, rescorer.seen)
}

func TestBackfillSkipsFailingLead(t *testing.T) {
	refs := sortedRefs(uuid.New())
	leads := &pagedLeads{refs: refs}
	rescorer := &countingRescorer{failOn: refs[1].ID}

	stats, err := runBackfill(context.Background(), leads, rescorer, logger.Nop(), backfillOptions{})
	require.NoError(t, err)
	assert.Equal(t, backfillStats{Seen: 3, Rescored: 2, Failed: 1}, stats)
}

func TestBackfillStopsOnListError(t *testing.T) {
	boom := errors.New("db down")
	_, err := runBackfill(context.Background(), &pagedLeads{err: boom}, &countingRescorer{}, logger.Nop(), backfillOptions{})
	assert.ErrorIs(t, err, boom)
}

func TestBackfillHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	leads := &pagedLeads{refs: sortedRefs(uuid.New())}
	_, err := runBackfill(ctx, leads, &countingRescorer{}, logger.Nop(), backfillOptions{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, leads.calls)
}
