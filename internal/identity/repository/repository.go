package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var ErrNotFound = errors.New("not found")

// Querier is the read-only slice of a pgx pool used here.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

type Repository struct {
	db Querier
}

func New(db Querier) *Repository {
	return &Repository{db: db}
}

// Profile links an authenticated user to the organization that scopes their data.
type Profile struct {
	UserID            uuid.UUID `json:"userId"`
	OrganizationID    uuid.UUID `json:"organizationId"`
	OrganizationName  string    `json:"organizationName"`
	NotificationEmail *string   `json:"notificationEmail,omitempty"`
}

// Organization is the tenant record.
type Organization struct {
	ID                uuid.UUID
	Name              string
	NotificationEmail *string
}

func (r *Repository) GetProfileByUserID(ctx context.Context, userID uuid.UUID) (Profile, error) {
	var p Profile
	err := r.db.QueryRow(ctx, `
    SELECT p.user_id, p.organization_id, o.name, o.notification_email
    FROM profiles p
    JOIN organizations o ON o.id = p.organization_id
    WHERE p.user_id = $1
  `, userID).Scan(&p.UserID, &p.OrganizationID, &p.OrganizationName, &p.NotificationEmail)
	if errors.Is(err, pgx.ErrNoRows) {
		return Profile{}, ErrNotFound
	}
	return p, err
}

func (r *Repository) GetOrganization(ctx context.Context, organizationID uuid.UUID) (Organization, error) {
	var org Organization
	err := r.db.QueryRow(ctx, `
    SELECT id, name, notification_email
    FROM organizations
    WHERE id = $1
  `, organizationID).Scan(&org.ID, &org.Name, &org.NotificationEmail)
	if errors.Is(err, pgx.ErrNoRows) {
		return Organization{}, ErrNotFound
	}
	return org, err
}
