package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"leadscore_backend/internal/identity/repository"
	"leadscore_backend/platform/apperr"
	"leadscore_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubResolver struct {
	profile repository.Profile
	err     error
	calls   *int
}

func (s stubResolver) ResolveTenant(context.Context, uuid.UUID) (repository.Profile, error) {
	if s.calls != nil {
		*s.calls++
	}
	return s.profile, s.err
}

func init() {
	gin.SetMode(gin.TestMode)
}

func newEngine(resolver TenantResolver, userID *uuid.UUID) *gin.Engine {
	h := New(resolver)
	r := gin.New()
	group := r.Group("/", func(c *gin.Context) {
		if userID != nil {
			c.Set(httpkit.ContextUserIDKey, *userID)
		}
		c.Next()
	}, h.TenantMiddleware())
	h.RegisterRoutes(group)
	group.GET("/whoami", func(c *gin.Context) {
		tenant, ok := httpkit.MustGetTenant(c)
		if !ok {
			return
		}
		c.String(http.StatusOK, tenant.String())
	})
	return r
}

func TestTenantMiddlewareSetsTenant(t *testing.T) {
	userID := uuid.New()
	orgID := uuid.New()
	r := newEngine(stubResolver{profile: repository.Profile{UserID: userID, OrganizationID: orgID}}, &userID)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/whoami", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, orgID.String(), rec.Body.String())
}

func TestTenantMiddlewareRequiresSession(t *testing.T) {
	r := newEngine(stubResolver{}, nil)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/whoami", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"UNAUTHORIZED"`)
}

func TestTenantMiddlewareMissingProfile(t *testing.T) {
	userID := uuid.New()
	r := newEngine(stubResolver{err: apperr.TenantNotFound()}, &userID)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/whoami", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"TENANT_NOT_FOUND"`)
}

func TestGetTenant(t *testing.T) {
	userID := uuid.New()
	orgID := uuid.New()
	r := newEngine(stubResolver{profile: repository.Profile{UserID: userID, OrganizationID: orgID, OrganizationName: "Acme"}}, &userID)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/identity/tenant", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"organization_name":"Acme"`)
	assert.Contains(t, rec.Body.String(), `"success":true`)
}

func TestGetTenantReusesMiddlewareProfile(t *testing.T) {
	userID := uuid.New()
	calls := 0
	r := newEngine(stubResolver{
		profile: repository.Profile{UserID: userID, OrganizationID: uuid.New(), OrganizationName: "Acme"},
		calls:   &calls,
	}, &userID)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/identity/tenant", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, calls)
}
