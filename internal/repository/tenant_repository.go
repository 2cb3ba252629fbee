package repository

import (
	"context"

	"github.com/prohmpiriya/tenant-service/internal/domain"
)

// TenantRepository defines the interface for tenant data access.
// Lookups return nil, nil when the tenant does not exist.
type TenantRepository interface {
	// Create inserts a tenant and assigns its ID. A taken subdomain yields domain.ErrDuplicateSubdomain.
	Create(ctx context.Context, tenant *domain.Tenant) error
	// GetByID retrieves a tenant by ID
	GetByID(ctx context.Context, id int64) (*domain.Tenant, error)
	// GetBySubdomain retrieves a tenant by subdomain
	GetBySubdomain(ctx context.Context, subdomain string) (*domain.Tenant, error)
	// FindIDBySubdomain returns only the id of the tenant owning subdomain
	FindIDBySubdomain(ctx context.Context, subdomain string) (int64, bool, error)
	// List retrieves a page of tenants ordered by id, with the total count
	List(ctx context.Context, offset, limit int, search string) ([]*domain.Tenant, int64, error)
	// Update persists all mutable fields. A taken subdomain yields domain.ErrDuplicateSubdomain.
	Update(ctx context.Context, tenant *domain.Tenant) error
	// ExistsBySubdomain checks if a tenant exists with the given subdomain
	ExistsBySubdomain(ctx context.Context, subdomain string) (bool, error)
}
