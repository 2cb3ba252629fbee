package repository

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/prohmpiriya/tenant-service/internal/domain"
)

// MemoryTenantRepository is an in-process TenantRepository. It enforces the
// same subdomain uniqueness as the database constraint.
type MemoryTenantRepository struct {
	mu      sync.RWMutex
	nextID  int64
	tenants map[int64]*domain.Tenant
}

// NewMemoryTenantRepository creates an empty MemoryTenantRepository
func NewMemoryTenantRepository() *MemoryTenantRepository {
	return &MemoryTenantRepository{
		nextID:  1,
		tenants: make(map[int64]*domain.Tenant),
	}
}

func (r *MemoryTenantRepository) Create(ctx context.Context, tenant *domain.Tenant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.subdomainTaken(tenant.Subdomain, 0) {
		return domain.ErrDuplicateSubdomain
	}
	tenant.ID = r.nextID
	r.nextID++
	r.tenants[tenant.ID] = cloneTenant(tenant)
	return nil
}

func (r *MemoryTenantRepository) GetByID(ctx context.Context, id int64) (*domain.Tenant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tenants[id]
	if !ok {
		return nil, nil
	}
	return cloneTenant(t), nil
}

func (r *MemoryTenantRepository) GetBySubdomain(ctx context.Context, subdomain string) (*domain.Tenant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, t := range r.tenants {
		if t.Subdomain == subdomain {
			return cloneTenant(t), nil
		}
	}
	return nil, nil
}

func (r *MemoryTenantRepository) FindIDBySubdomain(ctx context.Context, subdomain string) (int64, bool, error) {
	t, err := r.GetBySubdomain(ctx, subdomain)
	if err != nil || t == nil {
		return 0, false, err
	}
	return t.ID, true, nil
}

func (r *MemoryTenantRepository) List(ctx context.Context, offset, limit int, search string) ([]*domain.Tenant, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	needle := strings.ToLower(search)
	matched := make([]*domain.Tenant, 0, len(r.tenants))
	for _, t := range r.tenants {
		if needle != "" &&
			!strings.Contains(strings.ToLower(t.Name), needle) &&
			!strings.Contains(strings.ToLower(t.Subdomain), needle) {
			continue
		}
		matched = append(matched, t)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	total := int64(len(matched))
	if offset >= len(matched) {
		return []*domain.Tenant{}, total, nil
	}
	end := len(matched)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}

	page := make([]*domain.Tenant, 0, end-offset)
	for _, t := range matched[offset:end] {
		page = append(page, cloneTenant(t))
	}
	return page, total, nil
}

func (r *MemoryTenantRepository) Update(ctx context.Context, tenant *domain.Tenant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tenants[tenant.ID]; !ok {
		return domain.ErrTenantNotFound
	}
	if r.subdomainTaken(tenant.Subdomain, tenant.ID) {
		return domain.ErrDuplicateSubdomain
	}
	r.tenants[tenant.ID] = cloneTenant(tenant)
	return nil
}

func (r *MemoryTenantRepository) ExistsBySubdomain(ctx context.Context, subdomain string) (bool, error) {
	_, found, err := r.FindIDBySubdomain(ctx, subdomain)
	return found, err
}

// subdomainTaken must be called with the lock held
func (r *MemoryTenantRepository) subdomainTaken(subdomain string, exceptID int64) bool {
	for id, t := range r.tenants {
		if id != exceptID && t.Subdomain == subdomain {
			return true
		}
	}
	return false
}

func cloneTenant(t *domain.Tenant) *domain.Tenant {
	c := *t
	if t.Licensing != nil {
		l := *t.Licensing
		if l.AllowedNumberOfUsers != nil {
			n := *l.AllowedNumberOfUsers
			l.AllowedNumberOfUsers = &n
		}
		c.Licensing = &l
	}
	c.Content.Impressum = cloneMap(t.Content.Impressum)
	c.Content.Privacy = cloneMap(t.Content.Privacy)
	c.Content.TermsAndConditions = cloneMap(t.Content.TermsAndConditions)
	if t.Content.DataPrivacyConfirmation != nil {
		ts := *t.Content.DataPrivacyConfirmation
		c.Content.DataPrivacyConfirmation = &ts
	}
	if t.Content.TermsAndConditionsConfirmation != nil {
		ts := *t.Content.TermsAndConditionsConfirmation
		c.Content.TermsAndConditionsConfirmation = &ts
	}
	return &c
}

func cloneMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
