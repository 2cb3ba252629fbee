package service

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/prohmpiriya/tenant-service/internal/authz"
	"github.com/prohmpiriya/tenant-service/internal/client"
	"github.com/prohmpiriya/tenant-service/internal/domain"
	"github.com/prohmpiriya/tenant-service/internal/dto"
	"github.com/prohmpiriya/tenant-service/internal/event"
	"github.com/prohmpiriya/tenant-service/internal/repository"
	"github.com/prohmpiriya/tenant-service/internal/resolver"
	"github.com/prohmpiriya/tenant-service/internal/sanitize"
	"github.com/prohmpiriya/tenant-service/internal/settings"
	"github.com/prohmpiriya/tenant-service/pkg/cache"
	"github.com/prohmpiriya/tenant-service/pkg/logger"
	"github.com/prohmpiriya/tenant-service/pkg/telemetry"
)

// TenantService defines the tenant administration operations
type TenantService interface {
	// Create creates a new tenant. Only global tenant admins may create.
	Create(ctx context.Context, caller domain.Caller, req *dto.TenantDTO) (*dto.TenantDTO, error)
	// Update replaces the mutable attributes of a tenant
	Update(ctx context.Context, caller domain.Caller, id int64, req *dto.TenantDTO) (*dto.TenantDTO, error)
	// FindByID returns the admin view of a tenant the caller may access
	FindByID(ctx context.Context, caller domain.Caller, id int64) (*dto.TenantDTO, error)
	// FindBySubdomain returns the public view of the tenant owning subdomain
	FindBySubdomain(ctx context.Context, subdomain string, query dto.PublicTenantQuery) (*dto.RestrictedTenantDTO, error)
	// FindPublicByID returns the public view of a tenant
	FindPublicByID(ctx context.Context, id int64, lang string) (*dto.RestrictedTenantDTO, error)
	// ResolveCurrent returns the public view of the tenant the request belongs to
	ResolveCurrent(ctx context.Context, r *http.Request, caller domain.Caller, lang string) (*dto.RestrictedTenantDTO, error)
	// FindSingleDomainTenant returns the main tenant in single-domain mode
	FindSingleDomainTenant(ctx context.Context, lang string) (*dto.RestrictedTenantDTO, error)
	// List returns a page of tenants with their admins' emails
	List(ctx context.Context, caller domain.Caller, query *dto.ListTenantsQuery) (*dto.ListTenantsResponse, error)
}

// Config holds the application settings the service consults
type Config struct {
	SingleDomainMultitenancy bool
	MainTenantSubdomain      string
}

// Deps are the collaborators of the tenant service
type Deps struct {
	Repo           repository.TenantRepository
	Guard          *authz.Guard
	Overrider      *settings.Overrider
	Sanitizer      *sanitize.Sanitizer
	Resolver       *resolver.Chain
	Cache          cache.SubdomainCache
	ConsultingType client.ConsultingTypeClient
	UserAdmin      client.UserAdminClient
	Publisher      event.Publisher
	Metrics        *telemetry.TenantMetrics
	Logger         *logger.Logger
}

// tenantService implements TenantService
type tenantService struct {
	cfg            Config
	repo           repository.TenantRepository
	guard          *authz.Guard
	overrider      *settings.Overrider
	sanitizer      *sanitize.Sanitizer
	resolver       *resolver.Chain
	cache          cache.SubdomainCache
	consultingType client.ConsultingTypeClient
	userAdmin      client.UserAdminClient
	publisher      event.Publisher
	metrics        *telemetry.TenantMetrics
	log            *logger.Logger
	now            func() time.Time
}

// NewTenantService creates a new TenantService. Optional collaborators left nil
// are replaced with no-op implementations.
func NewTenantService(cfg Config, deps Deps) (TenantService, error) {
	if deps.Repo == nil {
		return nil, errors.New("tenant repository is required")
	}
	s := &tenantService{
		cfg:            cfg,
		repo:           deps.Repo,
		guard:          deps.Guard,
		overrider:      deps.Overrider,
		sanitizer:      deps.Sanitizer,
		resolver:       deps.Resolver,
		cache:          deps.Cache,
		consultingType: deps.ConsultingType,
		userAdmin:      deps.UserAdmin,
		publisher:      deps.Publisher,
		metrics:        deps.Metrics,
		log:            deps.Logger,
		now:            func() time.Time { return time.Now().UTC() },
	}

	if s.guard == nil {
		s.guard = authz.NewGuard(authz.GuardConfig{LegalContentChangesBySingleTenantAdminsAllowed: true})
	}
	if s.overrider == nil {
		s.overrider = settings.NewOverrider()
	}
	if s.sanitizer == nil {
		s.sanitizer = sanitize.New()
	}
	if s.cache == nil {
		s.cache = cache.Nop{}
	}
	if s.log == nil {
		s.log = logger.NewNop()
	}
	if s.resolver == nil {
		s.resolver = resolver.NewChain(resolver.TokenClaim(), resolver.Subdomain(s.repo, s.cache, s.log))
	}
	if s.consultingType == nil {
		s.consultingType = client.NewNoOpConsultingTypeClient()
	}
	if s.userAdmin == nil {
		s.userAdmin = client.NewNoOpUserAdminClient()
	}
	if s.publisher == nil {
		s.publisher = event.NewNopPublisher()
	}
	if s.metrics == nil {
		m, err := telemetry.NewTenantMetrics(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create tenant metrics: %w", err)
		}
		s.metrics = m
	}
	return s, nil
}

// Create creates a new tenant
func (s *tenantService) Create(ctx context.Context, caller domain.Caller, req *dto.TenantDTO) (*dto.TenantDTO, error) {
	ctx, span := telemetry.StartOperation(ctx, "create")
	defer span.End()

	if !caller.IsTenantAdmin() {
		return nil, s.fail(ctx, "create", domain.ErrAccessDenied)
	}
	if req.ID != nil {
		return nil, s.fail(ctx, "create", domain.ErrIDMustBeNull)
	}

	s.sanitizer.Tenant(req)
	if err := req.Validate(); err != nil {
		return nil, s.fail(ctx, "create", err)
	}

	// Fast path only; the unique constraint decides races
	exists, err := s.repo.ExistsBySubdomain(ctx, req.Subdomain)
	if err != nil {
		return nil, s.fail(ctx, "create", err)
	}
	if exists {
		return nil, s.fail(ctx, "create", domain.ErrDuplicateSubdomain)
	}

	s.overrider.OnCreate(req)

	tenant, err := dto.ToEntity(req)
	if err != nil {
		return nil, s.fail(ctx, "create", err)
	}
	now := s.now()
	tenant.CreatedAt = now
	tenant.UpdatedAt = now
	stampConfirmations(&tenant.Content, domain.Content{}, now)

	if err := s.repo.Create(ctx, tenant); err != nil {
		return nil, s.fail(ctx, "create", err)
	}

	ctx = context.WithValue(ctx, logger.TenantIDKey, tenant.ID)
	telemetry.TagTenant(ctx, tenant.ID)
	s.metrics.Created.Inc(ctx)
	s.log.InfoContext(ctx, "tenant created",
		zap.String("subdomain", tenant.Subdomain),
		zap.String("actor_id", caller.UserID),
	)

	if err := s.consultingType.CreateDefaultConsultingTypes(ctx, tenant.ID); err != nil {
		s.log.WarnContext(ctx, "failed to create default consulting types", zap.Error(err))
	}
	s.publish(ctx, event.NewTenantEvent(event.TypeTenantCreated, tenant, caller.UserID, nil))

	return dto.FromEntity(tenant)
}

// Update replaces the mutable attributes of a tenant
func (s *tenantService) Update(ctx context.Context, caller domain.Caller, id int64, req *dto.TenantDTO) (*dto.TenantDTO, error) {
	ctx, span := telemetry.StartOperation(ctx, "update")
	defer span.End()
	ctx = context.WithValue(ctx, logger.TenantIDKey, id)
	telemetry.TagTenant(ctx, id)

	if err := s.guard.AssertCanAccessTenant(id, caller); err != nil {
		return nil, s.fail(ctx, "update", err)
	}
	if req.ID != nil && *req.ID != id {
		return nil, s.fail(ctx, "update", fmt.Errorf("%w: id %d does not match tenant %d", domain.ErrValidation, *req.ID, id))
	}

	persisted, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.fail(ctx, "update", err)
	}
	if persisted == nil {
		return nil, s.fail(ctx, "update", domain.ErrTenantNotFound)
	}

	s.sanitizer.Tenant(req)
	if err := s.guard.AssertCanChangeAttributes(req, persisted, caller); err != nil {
		return nil, s.fail(ctx, "update", err)
	}
	if err := s.guard.AssertCanChangeLegalContent(req, persisted, caller); err != nil {
		return nil, s.fail(ctx, "update", err)
	}
	if err := req.Validate(); err != nil {
		return nil, s.fail(ctx, "update", err)
	}
	if req.Subdomain != persisted.Subdomain {
		owner, found, err := s.repo.FindIDBySubdomain(ctx, req.Subdomain)
		if err != nil {
			return nil, s.fail(ctx, "update", err)
		}
		if found && owner != id {
			return nil, s.fail(ctx, "update", domain.ErrDuplicateSubdomain)
		}
	}

	if _, err := s.overrider.OnUpdate(req, persisted); err != nil {
		return nil, s.fail(ctx, "update", err)
	}
	// Overrides may have flipped child flags, so report against the final request
	changed, err := settings.DetermineChangedSettings(req.Settings, persisted)
	if err != nil {
		return nil, s.fail(ctx, "update", err)
	}

	previous := persisted.Content
	oldSubdomain := persisted.Subdomain
	if err := dto.ApplyToEntity(req, persisted); err != nil {
		return nil, s.fail(ctx, "update", err)
	}
	now := s.now()
	persisted.UpdatedAt = now
	stampConfirmations(&persisted.Content, previous, now)

	if err := s.repo.Update(ctx, persisted); err != nil {
		return nil, s.fail(ctx, "update", err)
	}

	if oldSubdomain != persisted.Subdomain {
		if err := s.cache.Invalidate(ctx, oldSubdomain); err != nil {
			s.log.WarnContext(ctx, "failed to invalidate subdomain cache", zap.String("subdomain", oldSubdomain), zap.Error(err))
		}
	}

	s.metrics.Updated.Inc(ctx)
	for _, kind := range changed {
		s.metrics.SettingsChanged.Inc(ctx, telemetry.SettingAttr(string(kind)))
		telemetry.RecordSettingChange(ctx, string(kind))
	}
	if len(changed) > 0 {
		s.log.InfoContext(ctx, "tenant settings changed",
			zap.Strings("settings", kindNames(changed)),
			zap.String("actor_id", caller.UserID),
		)
	}
	s.publish(ctx, event.NewTenantEvent(event.TypeTenantUpdated, persisted, caller.UserID, changed))

	return dto.FromEntity(persisted)
}

// FindByID returns the admin view of a tenant
func (s *tenantService) FindByID(ctx context.Context, caller domain.Caller, id int64) (*dto.TenantDTO, error) {
	ctx, span := telemetry.StartOperation(ctx, "find_by_id")
	defer span.End()
	ctx = context.WithValue(ctx, logger.TenantIDKey, id)

	if err := s.guard.AssertCanAccessTenant(id, caller); err != nil {
		return nil, s.fail(ctx, "find", err)
	}

	tenant, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.fail(ctx, "find", err)
	}
	if tenant == nil {
		return nil, s.fail(ctx, "find", domain.ErrTenantNotFound)
	}

	result, err := dto.FromEntity(tenant)
	if err != nil {
		return nil, s.fail(ctx, "find", err)
	}
	return result, nil
}

// FindBySubdomain returns the public view of a tenant. In single-domain mode an
// explicit tenant id in the query takes precedence over the subdomain.
func (s *tenantService) FindBySubdomain(ctx context.Context, subdomain string, query dto.PublicTenantQuery) (*dto.RestrictedTenantDTO, error) {
	ctx, span := telemetry.StartOperation(ctx, "find_by_subdomain")
	defer span.End()

	if s.cfg.SingleDomainMultitenancy && query.TenantID != nil {
		return s.publicByID(ctx, *query.TenantID, query.Lang)
	}

	tenant, err := s.repo.GetBySubdomain(ctx, strings.ToLower(strings.TrimSpace(subdomain)))
	if err != nil {
		return nil, s.fail(ctx, "find_public", err)
	}
	if tenant == nil {
		return nil, domain.ErrTenantNotFound
	}
	return s.restricted(ctx, tenant, query.Lang)
}

// FindPublicByID returns the public view of a tenant
func (s *tenantService) FindPublicByID(ctx context.Context, id int64, lang string) (*dto.RestrictedTenantDTO, error) {
	ctx, span := telemetry.StartOperation(ctx, "find_public_by_id")
	defer span.End()

	return s.publicByID(ctx, id, lang)
}

// ResolveCurrent runs the resolution chain for the request and returns the
// public view of the resolved tenant
func (s *tenantService) ResolveCurrent(ctx context.Context, r *http.Request, caller domain.Caller, lang string) (*dto.RestrictedTenantDTO, error) {
	ctx, span := telemetry.StartOperation(ctx, "resolve_current")
	defer span.End()

	id, strategy, ok := s.resolver.ResolveWithStrategy(r.WithContext(ctx), &caller)
	if !ok {
		s.metrics.Resolved.Inc(ctx, telemetry.ResolveStrategyAttr("none"))
		return nil, domain.ErrTenantNotFound
	}
	s.metrics.Resolved.Inc(ctx, telemetry.ResolveStrategyAttr(strategy))
	s.log.WithContext(ctx).Debug("tenant resolved", zap.Int64("tenant_id", id), zap.String("strategy", strategy))

	return s.publicByID(ctx, id, lang)
}

// FindSingleDomainTenant returns the main tenant configured for single-domain mode
func (s *tenantService) FindSingleDomainTenant(ctx context.Context, lang string) (*dto.RestrictedTenantDTO, error) {
	ctx, span := telemetry.StartOperation(ctx, "find_single_domain")
	defer span.End()

	if !s.cfg.SingleDomainMultitenancy || s.cfg.MainTenantSubdomain == "" {
		return nil, domain.ErrTenantNotFound
	}
	tenant, err := s.repo.GetBySubdomain(ctx, s.cfg.MainTenantSubdomain)
	if err != nil {
		return nil, s.fail(ctx, "find_single_domain", err)
	}
	if tenant == nil {
		s.log.WarnContext(ctx, "main tenant subdomain does not exist", zap.String("subdomain", s.cfg.MainTenantSubdomain))
		return nil, domain.ErrTenantNotFound
	}
	return s.restricted(ctx, tenant, lang)
}

// List retrieves tenants with pagination
func (s *tenantService) List(ctx context.Context, caller domain.Caller, query *dto.ListTenantsQuery) (*dto.ListTenantsResponse, error) {
	ctx, span := telemetry.StartOperation(ctx, "list")
	defer span.End()

	if !caller.IsTenantAdmin() {
		return nil, s.fail(ctx, "list", domain.ErrAccessDenied)
	}

	query.SetDefaults()
	tenants, total, err := s.repo.List(ctx, query.Offset(), query.PerPage, query.Search)
	if err != nil {
		return nil, s.fail(ctx, "list", err)
	}

	items := make([]*dto.AdminTenantDTO, 0, len(tenants))
	for _, tenant := range tenants {
		d, err := dto.FromEntity(tenant)
		if err != nil {
			return nil, s.fail(ctx, "list", fmt.Errorf("tenant %d: %w", tenant.ID, err))
		}
		items = append(items, &dto.AdminTenantDTO{
			TenantDTO:   *d,
			AdminEmails: s.adminEmails(ctx, tenant.ID),
		})
	}

	return &dto.ListTenantsResponse{
		Tenants: items,
		Total:   total,
		Page:    query.Page,
		PerPage: query.PerPage,
	}, nil
}

func (s *tenantService) publicByID(ctx context.Context, id int64, lang string) (*dto.RestrictedTenantDTO, error) {
	tenant, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.fail(ctx, "find_public", err)
	}
	if tenant == nil {
		return nil, domain.ErrTenantNotFound
	}
	return s.restricted(ctx, tenant, lang)
}

func (s *tenantService) restricted(ctx context.Context, tenant *domain.Tenant, lang string) (*dto.RestrictedTenantDTO, error) {
	extended, err := s.consultingType.GetExtendedSettings(ctx, tenant.ID)
	if err != nil {
		s.log.WarnContext(ctx, "failed to fetch extended settings", zap.Int64("tenant_id", tenant.ID), zap.Error(err))
		extended = nil
	}

	result, err := dto.ToRestricted(tenant, normalizeLang(lang), extended)
	if err != nil {
		return nil, s.fail(ctx, "find_public", err)
	}
	return result, nil
}

func (s *tenantService) adminEmails(ctx context.Context, tenantID int64) []string {
	admins, err := s.userAdmin.GetTenantAdmins(ctx, tenantID)
	if err != nil {
		s.log.WarnContext(ctx, "failed to fetch tenant admins", zap.Int64("tenant_id", tenantID), zap.Error(err))
		return []string{}
	}
	return client.AdminEmails(admins)
}

func (s *tenantService) publish(ctx context.Context, evt event.TenantEvent) {
	if err := s.publisher.Publish(ctx, evt); err != nil {
		s.log.WarnContext(ctx, "failed to publish tenant event",
			zap.String("event_type", string(evt.Type)),
			zap.Error(err),
		)
	}
}

// fail records err on the span, counts and logs access denials, and returns err
func (s *tenantService) fail(ctx context.Context, op string, err error) error {
	telemetry.FailOperation(ctx, err)
	if errors.Is(err, domain.ErrAccessDenied) {
		s.metrics.AccessDenied.Inc(ctx, telemetry.ErrorTypeAttr(op))
		s.log.WarnContext(ctx, "tenant access denied", zap.String("operation", op))
	}
	return err
}

// stampConfirmations records when privacy or terms texts last changed
func stampConfirmations(content *domain.Content, previous domain.Content, now time.Time) {
	if len(content.Privacy) > 0 && !maps.Equal(content.Privacy, previous.Privacy) {
		t := now
		content.DataPrivacyConfirmation = &t
	}
	if len(content.TermsAndConditions) > 0 && !maps.Equal(content.TermsAndConditions, previous.TermsAndConditions) {
		t := now
		content.TermsAndConditionsConfirmation = &t
	}
}

func normalizeLang(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if lang == "" {
		return dto.DefaultLanguage
	}
	return lang
}

func kindNames(kinds []domain.SettingKind) []string {
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}
	return names
}
