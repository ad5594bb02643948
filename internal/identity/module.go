// Package identity provides the identity and tenancy bounded context module.
package identity

import (
	"time"

	apphttp "leadscore_backend/internal/http"
	"leadscore_backend/internal/identity/handler"
	"leadscore_backend/internal/identity/repository"
	"leadscore_backend/internal/identity/service"
	"leadscore_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

type Module struct {
	handler *handler.Handler
	service *service.Service
}

func NewModule(db repository.Querier, cache *redis.Client, cacheTTL time.Duration, log *logger.Logger) *Module {
	repo := repository.New(db)
	svc := service.New(repo, cache, cacheTTL, log)
	h := handler.New(svc)

	return &Module{handler: h, service: svc}
}

func (m *Module) Name() string {
	return "identity"
}

func (m *Module) Service() *service.Service {
	return m.service
}

// TenantMiddleware resolves the caller's organization for protected routes.
func (m *Module) TenantMiddleware() gin.HandlerFunc {
	return m.handler.TenantMiddleware()
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected)
}

var _ apphttp.Module = (*Module)(nil)

var _ Service = (*service.Service)(nil)
