package httpkit

import (
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Identity is the caller as seen by handlers. The zero value is anonymous.
type Identity struct {
	userID   uuid.UUID
	tenantID *uuid.UUID
	roles    []string
}

func (i Identity) UserID() uuid.UUID     { return i.userID }
func (i Identity) Roles() []string       { return i.roles }
func (i Identity) IsAuthenticated() bool { return i.userID != uuid.Nil }

// TenantID is nil until the tenant middleware has run.
func (i Identity) TenantID() *uuid.UUID { return i.tenantID }

func (i Identity) HasRole(role string) bool { return slices.Contains(i.roles, role) }

// GetIdentity reads what AuthRequired and the tenant middleware stored on c.
func GetIdentity(c *gin.Context) Identity {
	uid, ok := c.Value(ContextUserIDKey).(uuid.UUID)
	if !ok || uid == uuid.Nil {
		return Identity{}
	}

	id := Identity{userID: uid}
	id.roles, _ = c.Value(ContextRolesKey).([]string)
	if tid, ok := c.Value(ContextTenantIDKey).(uuid.UUID); ok {
		id.tenantID = &tid
	}
	return id
}

// MustGetTenant aborts with 401 when no tenant was resolved for the request.
func MustGetTenant(c *gin.Context) (uuid.UUID, bool) {
	id := GetIdentity(c)
	if tid := id.TenantID(); id.IsAuthenticated() && tid != nil {
		return *tid, true
	}
	abortUnauthorized(c, "unauthorized")
	return uuid.Nil, false
}
