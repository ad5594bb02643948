// Package http wires bounded-context modules into the gin router.
package http

import (
	"leadscore_backend/platform/config"
	"leadscore_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// Module is a bounded context that mounts its own routes.
type Module interface {
	Name() string
	RegisterRoutes(ctx *RouterContext)
}

// RouterContext is handed to every Module during registration.
// Protected already carries rate limiting, JWT auth and tenant resolution;
// routes mounted there can rely on httpkit.MustGetTenant.
type RouterContext struct {
	Engine         *gin.Engine
	V1             *gin.RouterGroup
	Protected      *gin.RouterGroup
	Config         config.JWTConfig
	AuthMiddleware gin.HandlerFunc
	RateLimiter    *httpkit.IPRateLimiter
}
