package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"leadscore_backend/internal/identity/repository"
	"leadscore_backend/platform/apperr"
	"leadscore_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	profileCachePrefix = "leadscore:tenant:profile:"
	defaultCacheTTL    = 5 * time.Minute
)

// ProfileStore is the persistence port of the identity service.
type ProfileStore interface {
	GetProfileByUserID(ctx context.Context, userID uuid.UUID) (repository.Profile, error)
	GetOrganization(ctx context.Context, organizationID uuid.UUID) (repository.Organization, error)
}

type Service struct {
	repo  ProfileStore
	cache *redis.Client
	ttl   time.Duration
	log   *logger.Logger
}

// New builds the service. cache may be nil, in which case every lookup hits Postgres.
func New(repo ProfileStore, cache *redis.Client, ttl time.Duration, log *logger.Logger) *Service {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &Service{repo: repo, cache: cache, ttl: ttl, log: log}
}

// ResolveTenant returns the profile that scopes userID's data.
// Redis failures are logged and fall through to the database.
func (s *Service) ResolveTenant(ctx context.Context, userID uuid.UUID) (repository.Profile, error) {
	if profile, ok := s.cached(ctx, userID); ok {
		return profile, nil
	}

	profile, err := s.repo.GetProfileByUserID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return repository.Profile{}, apperr.TenantNotFound()
	}
	if err != nil {
		return repository.Profile{}, apperr.Internal("failed to resolve tenant", err)
	}

	s.store(ctx, profile)
	return profile, nil
}

// GetOrganization returns the tenant record for organizationID.
func (s *Service) GetOrganization(ctx context.Context, organizationID uuid.UUID) (repository.Organization, error) {
	org, err := s.repo.GetOrganization(ctx, organizationID)
	if errors.Is(err, repository.ErrNotFound) {
		return repository.Organization{}, apperr.TenantNotFound()
	}
	if err != nil {
		return repository.Organization{}, apperr.Internal("failed to load organization", err)
	}
	return org, nil
}

// Invalidate drops the cached profile of userID.
func (s *Service) Invalidate(ctx context.Context, userID uuid.UUID) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Del(ctx, profileCachePrefix+userID.String()).Err()
}

func (s *Service) cached(ctx context.Context, userID uuid.UUID) (repository.Profile, bool) {
	if s.cache == nil {
		return repository.Profile{}, false
	}

	raw, err := s.cache.Get(ctx, profileCachePrefix+userID.String()).Bytes()
	if err == redis.Nil {
		return repository.Profile{}, false
	}
	if err != nil {
		s.log.Warn("tenant cache read failed", slog.String("userId", userID.String()), slog.String("error", err.Error()))
		return repository.Profile{}, false
	}

	var profile repository.Profile
	if err := json.Unmarshal(raw, &profile); err != nil {
		s.log.Warn("tenant cache entry corrupt", slog.String("userId", userID.String()), slog.String("error", err.Error()))
		return repository.Profile{}, false
	}
	return profile, true
}

func (s *Service) store(ctx context.Context, profile repository.Profile) {
	if s.cache == nil {
		return
	}

	raw, err := json.Marshal(profile)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, profileCachePrefix+profile.UserID.String(), raw, s.ttl).Err(); err != nil {
		s.log.Warn("tenant cache write failed", slog.String("userId", profile.UserID.String()), slog.String("error", err.Error()))
	}
}
