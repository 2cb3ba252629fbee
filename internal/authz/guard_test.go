package authz

import (
	"testing"

	"github.com/prohmpiriya/tenant-service/internal/domain"
	"github.com/prohmpiriya/tenant-service/internal/dto"
	"github.com/stretchr/testify/assert"
)

func int64Ptr(v int64) *int64 { return &v }
func intPtr(v int) *int       { return &v }

var (
	globalAdmin = domain.NewCaller("admin", []string{"tenant-admin"}, nil)
	plainUser   = domain.NewCaller("user", []string{"user"}, int64Ptr(5))
)

func singleTenantAdmin(tenantID *int64) domain.Caller {
	return domain.NewCaller("sta", []string{"single-tenant-admin"}, tenantID)
}

func persistedTenant() *domain.Tenant {
	return &domain.Tenant{
		ID:        5,
		Name:      "Acme",
		Subdomain: "acme",
		Licensing: &domain.Licensing{AllowedNumberOfUsers: intPtr(10)},
		Content:   domain.Content{Impressum: map[string]string{"de": "Impressum"}},
	}
}

func requestFor(t *domain.Tenant) *dto.TenantDTO {
	req := &dto.TenantDTO{
		Name:      t.Name,
		Subdomain: t.Subdomain,
	}
	if t.Licensing != nil {
		req.Licensing = &dto.LicensingDTO{AllowedNumberOfUsers: t.Licensing.AllowedUsers()}
	}
	return req
}

func TestGuard_AssertCanAccessTenant(t *testing.T) {
	g := NewGuard(GuardConfig{})

	tests := []struct {
		name    string
		caller  domain.Caller
		target  int64
		allowed bool
	}{
		{"global admin any tenant", globalAdmin, 99, true},
		{"single tenant admin own tenant", singleTenantAdmin(int64Ptr(5)), 5, true},
		{"single tenant admin other tenant", singleTenantAdmin(int64Ptr(5)), 6, false},
		{"single tenant admin without tenant claim", singleTenantAdmin(nil), 5, false},
		{"plain user", plainUser, 5, false},
		{"anonymous", domain.Anonymous(), 5, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := g.AssertCanAccessTenant(tt.target, tt.caller)
			if tt.allowed {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, domain.ErrAccessDenied)
			}
		})
	}
}

func TestGuard_AssertCanAccessTenant_ForeignTenantAlwaysDenied(t *testing.T) {
	g := NewGuard(GuardConfig{})
	for bound := int64(1); bound <= 20; bound++ {
		caller := singleTenantAdmin(int64Ptr(bound))
		for target := int64(1); target <= 20; target++ {
			if target == bound {
				continue
			}
			assert.ErrorIs(t, g.AssertCanAccessTenant(target, caller), domain.ErrAccessDenied)
		}
	}
}

func TestGuard_AssertCanChangeAttributes(t *testing.T) {
	g := NewGuard(GuardConfig{})
	caller := singleTenantAdmin(int64Ptr(5))

	tests := []struct {
		name    string
		mutate  func(req *dto.TenantDTO, persisted *domain.Tenant)
		allowed bool
	}{
		{
			name:    "only logo changed",
			mutate:  func(req *dto.TenantDTO, _ *domain.Tenant) { req.Theming.Logo = "new-logo.png" },
			allowed: true,
		},
		{
			name:    "subdomain changed",
			mutate:  func(req *dto.TenantDTO, _ *domain.Tenant) { req.Subdomain = "other" },
			allowed: false,
		},
		{
			name:    "licensing omitted while stored",
			mutate:  func(req *dto.TenantDTO, _ *domain.Tenant) { req.Licensing = nil },
			allowed: false,
		},
		{
			name: "licensing omitted and nothing stored",
			mutate: func(req *dto.TenantDTO, p *domain.Tenant) {
				req.Licensing = nil
				p.Licensing = nil
			},
			allowed: true,
		},
		{
			name: "licensing block without count and stored count nil",
			mutate: func(req *dto.TenantDTO, p *domain.Tenant) {
				req.Licensing = &dto.LicensingDTO{}
				p.Licensing = &domain.Licensing{}
			},
			allowed: true,
		},
		{
			name:    "seat count changed",
			mutate:  func(req *dto.TenantDTO, _ *domain.Tenant) { req.Licensing.AllowedNumberOfUsers = intPtr(11) },
			allowed: false,
		},
		{
			name:    "seat count cleared",
			mutate:  func(req *dto.TenantDTO, _ *domain.Tenant) { req.Licensing.AllowedNumberOfUsers = nil },
			allowed: false,
		},
		{
			name: "seat count added",
			mutate: func(req *dto.TenantDTO, p *domain.Tenant) {
				p.Licensing = nil
				req.Licensing = &dto.LicensingDTO{AllowedNumberOfUsers: intPtr(3)}
			},
			allowed: false,
		},
		{
			name:    "name and settings changed",
			mutate:  func(req *dto.TenantDTO, _ *domain.Tenant) { req.Name = "Renamed"; req.Settings = &dto.SettingsDTO{FeatureToolsEnabled: dto.BoolPtr(true)} },
			allowed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			persisted := persistedTenant()
			req := requestFor(persisted)
			tt.mutate(req, persisted)

			err := g.AssertCanChangeAttributes(req, persisted, caller)
			if tt.allowed {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, domain.ErrAccessDenied)
			}

			assert.NoError(t, g.AssertCanChangeAttributes(req, persisted, globalAdmin), "global admin is never restricted")
		})
	}
}

func TestGuard_AssertCanChangeAttributes_PlainUserDenied(t *testing.T) {
	g := NewGuard(GuardConfig{})
	persisted := persistedTenant()
	assert.ErrorIs(t, g.AssertCanChangeAttributes(requestFor(persisted), persisted, plainUser), domain.ErrAccessDenied)
}

func TestGuard_AssertCanChangeLegalContent(t *testing.T) {
	caller := singleTenantAdmin(int64Ptr(5))

	t.Run("allowed by configuration", func(t *testing.T) {
		g := NewGuard(GuardConfig{LegalContentChangesBySingleTenantAdminsAllowed: true})
		persisted := persistedTenant()
		req := requestFor(persisted)
		req.Content.Impressum = map[string]string{"de": "Neu"}

		assert.NoError(t, g.AssertCanChangeLegalContent(req, persisted, caller))
	})

	t.Run("changed text denied when disallowed", func(t *testing.T) {
		g := NewGuard(GuardConfig{})
		persisted := persistedTenant()
		req := requestFor(persisted)
		req.Content.Impressum = map[string]string{"de": "Neu"}

		assert.ErrorIs(t, g.AssertCanChangeLegalContent(req, persisted, caller), domain.ErrAccessDenied)
		assert.NoError(t, g.AssertCanChangeLegalContent(req, persisted, globalAdmin))
	})

	t.Run("unchanged or omitted text passes", func(t *testing.T) {
		g := NewGuard(GuardConfig{})
		persisted := persistedTenant()
		req := requestFor(persisted)
		req.Content.Impressum = map[string]string{"de": "Impressum"}

		assert.NoError(t, g.AssertCanChangeLegalContent(req, persisted, caller))
	})

	t.Run("new privacy text denied", func(t *testing.T) {
		g := NewGuard(GuardConfig{})
		persisted := persistedTenant()
		req := requestFor(persisted)
		req.Content.Privacy = map[string]string{"en": "Privacy"}

		assert.ErrorIs(t, g.AssertCanChangeLegalContent(req, persisted, caller), domain.ErrAccessDenied)
	})
}
