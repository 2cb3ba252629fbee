package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prohmpiriya/tenant-service/internal/domain"
)

func newTenant(name, subdomain string) *domain.Tenant {
	return &domain.Tenant{
		Name:      name,
		Subdomain: subdomain,
		Content: domain.Content{
			Impressum: map[string]string{"de": "Impressum"},
		},
	}
}

func TestMemoryTenantRepository_CreateAndGet(t *testing.T) {
	repo := NewMemoryTenantRepository()
	ctx := context.Background()

	tenant := newTenant("Acme", "acme")
	require.NoError(t, repo.Create(ctx, tenant))
	assert.Equal(t, int64(1), tenant.ID)

	got, err := repo.GetByID(ctx, tenant.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "acme", got.Subdomain)

	bySub, err := repo.GetBySubdomain(ctx, "acme")
	require.NoError(t, err)
	require.NotNil(t, bySub)
	assert.Equal(t, tenant.ID, bySub.ID)

	id, found, err := repo.FindIDBySubdomain(ctx, "acme")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, tenant.ID, id)
}

func TestMemoryTenantRepository_MissingReturnsNil(t *testing.T) {
	repo := NewMemoryTenantRepository()
	ctx := context.Background()

	got, err := repo.GetByID(ctx, 42)
	assert.NoError(t, err)
	assert.Nil(t, got)

	_, found, err := repo.FindIDBySubdomain(ctx, "nobody")
	assert.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryTenantRepository_DuplicateSubdomain(t *testing.T) {
	repo := NewMemoryTenantRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newTenant("A", "same")))
	err := repo.Create(ctx, newTenant("B", "same"))
	assert.ErrorIs(t, err, domain.ErrDuplicateSubdomain)
	assert.ErrorIs(t, err, domain.ErrValidation)

	other := newTenant("C", "other")
	require.NoError(t, repo.Create(ctx, other))
	other.Subdomain = "same"
	assert.ErrorIs(t, repo.Update(ctx, other), domain.ErrDuplicateSubdomain)
}

func TestMemoryTenantRepository_ConcurrentCreateSameSubdomain(t *testing.T) {
	repo := NewMemoryTenantRepository()
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- repo.Create(ctx, newTenant(fmt.Sprintf("T%d", i), "race"))
		}(i)
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, domain.ErrDuplicateSubdomain)
		}
	}
	assert.Equal(t, 1, succeeded)
}

func TestMemoryTenantRepository_UpdateNotFound(t *testing.T) {
	repo := NewMemoryTenantRepository()
	err := repo.Update(context.Background(), &domain.Tenant{ID: 7, Subdomain: "x"})
	assert.ErrorIs(t, err, domain.ErrTenantNotFound)
}

func TestMemoryTenantRepository_ReturnsCopies(t *testing.T) {
	repo := NewMemoryTenantRepository()
	ctx := context.Background()

	tenant := newTenant("Acme", "acme")
	require.NoError(t, repo.Create(ctx, tenant))
	tenant.Content.Impressum["de"] = "mutated"

	got, err := repo.GetByID(ctx, tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, "Impressum", got.Content.Impressum["de"])

	got.Name = "changed"
	again, _ := repo.GetByID(ctx, tenant.ID)
	assert.Equal(t, "Acme", again.Name)
}

func TestMemoryTenantRepository_List(t *testing.T) {
	repo := NewMemoryTenantRepository()
	ctx := context.Background()

	for _, s := range []string{"alpha", "beta", "gamma", "alphabet"} {
		require.NoError(t, repo.Create(ctx, newTenant(s, s)))
	}

	page, total, err := repo.List(ctx, 0, 2, "")
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	require.Len(t, page, 2)
	assert.Equal(t, "alpha", page[0].Subdomain)
	assert.Equal(t, "beta", page[1].Subdomain)

	page, total, err = repo.List(ctx, 0, 10, "ALPHA")
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, page, 2)

	page, total, err = repo.List(ctx, 10, 10, "")
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	assert.Empty(t, page)
}

func TestMemoryTenantRepository_ExistsBySubdomain(t *testing.T) {
	repo := NewMemoryTenantRepository()
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, newTenant("Acme", "acme")))

	exists, err := repo.ExistsBySubdomain(ctx, "acme")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsBySubdomain(ctx, "other")
	require.NoError(t, err)
	assert.False(t, exists)
}
