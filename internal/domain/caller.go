package domain

// Role is an authorization role carried in the caller's access token
type Role string

const (
	// RoleTenantAdmin administers every tenant
	RoleTenantAdmin Role = "tenant-admin"
	// RoleSingleTenantAdmin administers exactly the tenant bound in its token
	RoleSingleTenantAdmin Role = "single-tenant-admin"
)

// Caller is the authenticated principal of a request. It is passed explicitly
// to every authorization decision.
type Caller struct {
	UserID   string
	Roles    []Role
	TenantID *int64
}

// NewCaller builds a caller from raw token values
func NewCaller(userID string, roles []string, tenantID *int64) Caller {
	c := Caller{UserID: userID, TenantID: tenantID}
	for _, r := range roles {
		c.Roles = append(c.Roles, Role(r))
	}
	return c
}

// Anonymous is the caller of unauthenticated requests
func Anonymous() Caller {
	return Caller{}
}

// IsAuthenticated reports whether the caller presented a token
func (c Caller) IsAuthenticated() bool {
	return c.UserID != ""
}

// HasRole reports whether the caller holds the role
func (c Caller) HasRole(role Role) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsTenantAdmin reports global admin rights
func (c Caller) IsTenantAdmin() bool {
	return c.HasRole(RoleTenantAdmin)
}

// IsSingleTenantAdmin reports tenant-scoped admin rights without global ones
func (c Caller) IsSingleTenantAdmin() bool {
	return !c.IsTenantAdmin() && c.HasRole(RoleSingleTenantAdmin)
}
