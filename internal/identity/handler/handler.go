package handler

import (
	"context"

	"leadscore_backend/internal/identity/repository"
	"leadscore_backend/platform/apperr"
	"leadscore_backend/platform/httpkit"
	"leadscore_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TenantResolver maps an authenticated user onto their tenant profile.
type TenantResolver interface {
	ResolveTenant(ctx context.Context, userID uuid.UUID) (repository.Profile, error)
}

// profileKey holds the repository.Profile resolved by TenantMiddleware.
const profileKey = "identity.profile"

type Handler struct {
	resolver TenantResolver
}

func New(resolver TenantResolver) *Handler {
	return &Handler{resolver: resolver}
}

// TenantMiddleware resolves the caller's organization and stores it on the context.
// It must run after httpkit.AuthRequired.
func (h *Handler) TenantMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := httpkit.GetIdentity(c)
		if !id.IsAuthenticated() {
			httpkit.HandleError(c, apperr.Unauthorized("unauthorized"))
			c.Abort()
			return
		}

		profile, err := h.resolver.ResolveTenant(c.Request.Context(), id.UserID())
		if err != nil {
			httpkit.HandleError(c, err)
			c.Abort()
			return
		}

		c.Set(httpkit.ContextTenantIDKey, profile.OrganizationID)
		c.Set(profileKey, profile)
		ctx := context.WithValue(c.Request.Context(), logger.UserIDKey, id.UserID().String())
		ctx = context.WithValue(ctx, logger.TenantIDKey, profile.OrganizationID.String())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

type tenantResponse struct {
	UserID           uuid.UUID `json:"user_id"`
	OrganizationID   uuid.UUID `json:"organization_id"`
	OrganizationName string    `json:"organization_name"`
}

// RegisterRoutes mounts the identity routes on the tenant-scoped group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/identity/tenant", h.GetTenant)
}

// GetTenant returns the organization the caller's requests are scoped to.
func (h *Handler) GetTenant(c *gin.Context) {
	profile, ok := c.Value(profileKey).(repository.Profile)
	if !ok {
		var err error
		profile, err = h.resolver.ResolveTenant(c.Request.Context(), httpkit.GetIdentity(c).UserID())
		if httpkit.HandleError(c, err) {
			return
		}
	}
	httpkit.OK(c, tenantResponse{
		UserID:           profile.UserID,
		OrganizationID:   profile.OrganizationID,
		OrganizationName: profile.OrganizationName,
	})
}
