package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/prohmpiriya/tenant-service/internal/domain"
)

const (
	uniqueViolation         = "23505"
	stringDataRightTrunc    = "22001"
	subdomainConstraintName = "tenants_subdomain_key"
	tenantColumns           = `id, name, subdomain, licensing_allowed_number_of_users,
		theming_logo, theming_favicon, theming_primary_color, theming_secondary_color,
		content_impressum, content_privacy, content_terms_and_conditions,
		content_privacy_confirmation, content_terms_confirmation,
		settings, created_at, updated_at`
)

// PostgresTenantRepository implements TenantRepository using PostgreSQL
type PostgresTenantRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresTenantRepository creates a new PostgresTenantRepository
func NewPostgresTenantRepository(pool *pgxpool.Pool) *PostgresTenantRepository {
	return &PostgresTenantRepository{pool: pool}
}

// Create inserts a tenant, filling in ID and timestamps from the database
func (r *PostgresTenantRepository) Create(ctx context.Context, tenant *domain.Tenant) error {
	query := `
		INSERT INTO tenants (name, subdomain, licensing_allowed_number_of_users,
			theming_logo, theming_favicon, theming_primary_color, theming_secondary_color,
			content_impressum, content_privacy, content_terms_and_conditions,
			content_privacy_confirmation, content_terms_confirmation,
			settings, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id
	`
	err := r.pool.QueryRow(ctx, query,
		tenant.Name,
		tenant.Subdomain,
		tenant.Licensing.AllowedUsers(),
		tenant.Theming.Logo,
		tenant.Theming.Favicon,
		tenant.Theming.PrimaryColor,
		tenant.Theming.SecondaryColor,
		tenant.Content.Impressum,
		tenant.Content.Privacy,
		tenant.Content.TermsAndConditions,
		tenant.Content.DataPrivacyConfirmation,
		tenant.Content.TermsAndConditionsConfirmation,
		tenant.SettingsBlob,
		tenant.CreatedAt,
		tenant.UpdatedAt,
	).Scan(&tenant.ID)
	if err != nil {
		return mapWriteError(err)
	}
	return nil
}

// GetByID retrieves a tenant by ID
func (r *PostgresTenantRepository) GetByID(ctx context.Context, id int64) (*domain.Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants WHERE id = $1`
	return r.getOne(ctx, query, id)
}

// GetBySubdomain retrieves a tenant by subdomain
func (r *PostgresTenantRepository) GetBySubdomain(ctx context.Context, subdomain string) (*domain.Tenant, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants WHERE subdomain = $1`
	return r.getOne(ctx, query, subdomain)
}

// FindIDBySubdomain returns the id of the tenant owning subdomain
func (r *PostgresTenantRepository) FindIDBySubdomain(ctx context.Context, subdomain string) (int64, bool, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `SELECT id FROM tenants WHERE subdomain = $1`, subdomain).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return id, true, nil
}

// List retrieves tenants with pagination and an optional name/subdomain search
func (r *PostgresTenantRepository) List(ctx context.Context, offset, limit int, search string) ([]*domain.Tenant, int64, error) {
	whereClause := ""
	args := []interface{}{}
	argIndex := 1

	if search != "" {
		whereClause = fmt.Sprintf("WHERE (name ILIKE $%d OR subdomain ILIKE $%d)", argIndex, argIndex)
		args = append(args, "%"+search+"%")
		argIndex++
	}

	var total int64
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM tenants %s", whereClause)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM tenants
		%s
		ORDER BY id
		LIMIT $%d OFFSET $%d
	`, tenantColumns, whereClause, argIndex, argIndex+1)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	tenants := make([]*domain.Tenant, 0)
	for rows.Next() {
		tenant, err := scanTenant(rows)
		if err != nil {
			return nil, 0, err
		}
		tenants = append(tenants, tenant)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return tenants, total, nil
}

// Update persists all mutable fields of a tenant
func (r *PostgresTenantRepository) Update(ctx context.Context, tenant *domain.Tenant) error {
	query := `
		UPDATE tenants
		SET name = $2, subdomain = $3, licensing_allowed_number_of_users = $4,
			theming_logo = $5, theming_favicon = $6, theming_primary_color = $7, theming_secondary_color = $8,
			content_impressum = $9, content_privacy = $10, content_terms_and_conditions = $11,
			content_privacy_confirmation = $12, content_terms_confirmation = $13,
			settings = $14, updated_at = $15
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query,
		tenant.ID,
		tenant.Name,
		tenant.Subdomain,
		tenant.Licensing.AllowedUsers(),
		tenant.Theming.Logo,
		tenant.Theming.Favicon,
		tenant.Theming.PrimaryColor,
		tenant.Theming.SecondaryColor,
		tenant.Content.Impressum,
		tenant.Content.Privacy,
		tenant.Content.TermsAndConditions,
		tenant.Content.DataPrivacyConfirmation,
		tenant.Content.TermsAndConditionsConfirmation,
		tenant.SettingsBlob,
		tenant.UpdatedAt,
	)
	if err != nil {
		return mapWriteError(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTenantNotFound
	}
	return nil
}

// ExistsBySubdomain checks if a tenant exists with the given subdomain
func (r *PostgresTenantRepository) ExistsBySubdomain(ctx context.Context, subdomain string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM tenants WHERE subdomain = $1)`, subdomain).Scan(&exists)
	return exists, err
}

func (r *PostgresTenantRepository) getOne(ctx context.Context, query string, arg interface{}) (*domain.Tenant, error) {
	tenant, err := scanTenant(r.pool.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return tenant, nil
}

func scanTenant(row pgx.Row) (*domain.Tenant, error) {
	tenant := &domain.Tenant{}
	var allowedUsers *int
	err := row.Scan(
		&tenant.ID,
		&tenant.Name,
		&tenant.Subdomain,
		&allowedUsers,
		&tenant.Theming.Logo,
		&tenant.Theming.Favicon,
		&tenant.Theming.PrimaryColor,
		&tenant.Theming.SecondaryColor,
		&tenant.Content.Impressum,
		&tenant.Content.Privacy,
		&tenant.Content.TermsAndConditions,
		&tenant.Content.DataPrivacyConfirmation,
		&tenant.Content.TermsAndConditionsConfirmation,
		&tenant.SettingsBlob,
		&tenant.CreatedAt,
		&tenant.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if allowedUsers != nil {
		tenant.Licensing = &domain.Licensing{AllowedNumberOfUsers: allowedUsers}
	}
	return tenant, nil
}

// mapWriteError turns the subdomain unique violation into a validation error
func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case uniqueViolation:
		if pgErr.ConstraintName == "" || pgErr.ConstraintName == subdomainConstraintName {
			return domain.ErrDuplicateSubdomain
		}
	case stringDataRightTrunc:
		return fmt.Errorf("%w: %s", domain.ErrFieldTooLong, pgErr.Message)
	}
	return err
}
