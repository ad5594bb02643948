// Package leads provides the lead enrichment and scoring bounded context module.
// This file defines the module that encapsulates all leads setup and route registration.
package leads

import (
	"leadscore_backend/internal/events"
	apphttp "leadscore_backend/internal/http"
	"leadscore_backend/internal/leads/handler"
	"leadscore_backend/internal/leads/ports"
	"leadscore_backend/internal/leads/repository"
	"leadscore_backend/internal/leads/service"
	"leadscore_backend/platform/logger"
	"leadscore_backend/platform/validator"
)

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    *repository.Repository
}

// NewModule creates and initializes the leads module with all its dependencies.
// archiver may be nil when object storage is not configured.
func NewModule(db repository.DB, eventBus events.Bus, val *validator.Validator, archiver ports.ReportArchiver, log *logger.Logger) *Module {
	repo := repository.New(db)

	var opts []service.Option
	if archiver != nil {
		opts = append(opts, service.WithArchiver(archiver))
	}
	svc := service.New(repo, eventBus, log, opts...)

	return &Module{
		handler: handler.New(svc, val),
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// Service exposes the dispatcher for background jobs.
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository exposes lead storage for the rescore sweeper and backfill.
func (m *Module) Repository() *repository.Repository {
	return m.repo
}

// RegisterRoutes mounts lead routes on the tenant-scoped group.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)

var _ Rescorer = (*service.Service)(nil)
