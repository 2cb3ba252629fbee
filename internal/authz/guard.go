package authz

import (
	"maps"

	"github.com/prohmpiriya/tenant-service/internal/domain"
	"github.com/prohmpiriya/tenant-service/internal/dto"
)

// GuardConfig holds application settings consulted by the guard
type GuardConfig struct {
	// LegalContentChangesBySingleTenantAdminsAllowed lets single-tenant admins edit impressum, privacy and terms
	LegalContentChangesBySingleTenantAdminsAllowed bool
}

// Guard decides whether a caller may read or mutate a tenant.
// Global tenant admins pass every check. Single-tenant admins are confined to
// their bound tenant and to a subset of its attributes. Everyone else is denied.
// Every denial is domain.ErrAccessDenied, without detail on the failing rule.
type Guard struct {
	cfg GuardConfig
}

// NewGuard creates a new Guard
func NewGuard(cfg GuardConfig) *Guard {
	return &Guard{cfg: cfg}
}

// AssertCanAccessTenant checks that the caller may operate on targetID
func (g *Guard) AssertCanAccessTenant(targetID int64, caller domain.Caller) error {
	if caller.IsTenantAdmin() {
		return nil
	}
	if !caller.IsSingleTenantAdmin() {
		return domain.ErrAccessDenied
	}
	if caller.TenantID == nil || *caller.TenantID != targetID {
		return domain.ErrAccessDenied
	}
	return nil
}

// AssertCanChangeAttributes checks the requested attribute changes against the persisted tenant
func (g *Guard) AssertCanChangeAttributes(req *dto.TenantDTO, persisted *domain.Tenant, caller domain.Caller) error {
	if caller.IsTenantAdmin() {
		return nil
	}
	if !caller.IsSingleTenantAdmin() {
		return domain.ErrAccessDenied
	}

	if req.Subdomain != persisted.Subdomain {
		return domain.ErrAccessDenied
	}

	stored := persisted.Licensing.AllowedUsers()
	if req.Licensing == nil {
		// omitting licensing would wipe it
		if stored != nil {
			return domain.ErrAccessDenied
		}
		return nil
	}
	if !equalInt(req.Licensing.AllowedNumberOfUsers, stored) {
		return domain.ErrAccessDenied
	}
	return nil
}

// AssertCanChangeLegalContent checks legal text changes when single-tenant admins are
// not allowed to edit them
func (g *Guard) AssertCanChangeLegalContent(req *dto.TenantDTO, persisted *domain.Tenant, caller domain.Caller) error {
	if caller.IsTenantAdmin() || g.cfg.LegalContentChangesBySingleTenantAdminsAllowed {
		return nil
	}
	if !caller.IsSingleTenantAdmin() {
		return domain.ErrAccessDenied
	}

	if textChanged(req.Content.Impressum, persisted.Content.Impressum) ||
		textChanged(req.Content.Privacy, persisted.Content.Privacy) ||
		textChanged(req.Content.TermsAndConditions, persisted.Content.TermsAndConditions) {
		return domain.ErrAccessDenied
	}
	return nil
}

// textChanged treats an omitted text as unchanged
func textChanged(requested, stored map[string]string) bool {
	return requested != nil && !maps.Equal(requested, stored)
}

func equalInt(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
