package http

import (
	"context"

	"leadscore_backend/internal/events"
	"leadscore_backend/platform/config"
	"leadscore_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

// RouterConfig is the slice of configuration the router reads.
type RouterConfig interface {
	config.HTTPConfig
	config.JWTConfig
}

// HealthChecker backs GET /api/health. *pgxpool.Pool satisfies it.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// App is assembled by the composition root and consumed by router.New.
type App struct {
	Config   RouterConfig
	Logger   *logger.Logger
	Health   HealthChecker
	EventBus events.Bus
	// TenantMiddleware runs after authentication on the protected group. Optional.
	TenantMiddleware gin.HandlerFunc
	Modules          []Module
}
