// Package identity maps an authenticated user onto the organization (tenant)
// that scopes every lead read and write.
package identity

import (
	"context"

	"leadscore_backend/internal/identity/repository"

	"github.com/google/uuid"
)

// Service is what other contexts may depend on.
type Service interface {
	ResolveTenant(ctx context.Context, userID uuid.UUID) (repository.Profile, error)
	GetOrganization(ctx context.Context, organizationID uuid.UUID) (repository.Organization, error)
	// Invalidate drops the cached profile after a membership change.
	Invalidate(ctx context.Context, userID uuid.UUID) error
}
