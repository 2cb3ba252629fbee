package di

import (
	"fmt"

	"github.com/prohmpiriya/tenant-service/internal/authz"
	"github.com/prohmpiriya/tenant-service/internal/client"
	"github.com/prohmpiriya/tenant-service/internal/event"
	"github.com/prohmpiriya/tenant-service/internal/handler"
	"github.com/prohmpiriya/tenant-service/internal/repository"
	"github.com/prohmpiriya/tenant-service/internal/resolver"
	"github.com/prohmpiriya/tenant-service/internal/sanitize"
	"github.com/prohmpiriya/tenant-service/internal/service"
	"github.com/prohmpiriya/tenant-service/internal/settings"
	"github.com/prohmpiriya/tenant-service/pkg/cache"
	"github.com/prohmpiriya/tenant-service/pkg/config"
	"github.com/prohmpiriya/tenant-service/pkg/database"
	"github.com/prohmpiriya/tenant-service/pkg/logger"
	"github.com/prohmpiriya/tenant-service/pkg/telemetry"
)

// Container holds all dependencies for the tenant service
type Container struct {
	// Infrastructure
	DB        *database.PostgresDB
	Redis     *cache.Redis
	Publisher event.Publisher

	// Repositories
	TenantRepo repository.TenantRepository

	// Services
	TenantService service.TenantService
	RoutePolicy   *authz.RoutePolicy
	Metrics       *telemetry.TenantMetrics

	// Handlers
	HealthHandler *handler.HealthHandler
	TenantHandler *handler.TenantHandler
}

// ContainerConfig contains configuration for building the container.
// DB and Redis may be nil; the in-memory repository and no cache are used instead.
type ContainerConfig struct {
	Config    *config.Config
	Logger    *logger.Logger
	DB        *database.PostgresDB
	Redis     *cache.Redis
	Publisher event.Publisher
	Metrics   *telemetry.TenantMetrics
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *ContainerConfig) (*Container, error) {
	appCfg := cfg.Config
	log := cfg.Logger
	if log == nil {
		log = logger.NewNop()
	}

	c := &Container{
		DB:        cfg.DB,
		Redis:     cfg.Redis,
		Publisher: cfg.Publisher,
		Metrics:   cfg.Metrics,
	}
	if c.Publisher == nil {
		c.Publisher = event.NewNopPublisher()
	}

	// Repositories
	if c.DB != nil {
		c.TenantRepo = repository.NewPostgresTenantRepository(c.DB.Pool())
	} else {
		log.Warn("no database configured, using in-memory tenant repository")
		c.TenantRepo = repository.NewMemoryTenantRepository()
	}

	var subdomainCache cache.SubdomainCache = cache.Nop{}
	if c.Redis != nil {
		subdomainCache = c.Redis
	}

	// Collaborators
	var consultingType client.ConsultingTypeClient = client.NewNoOpConsultingTypeClient()
	if appCfg.Services.ConsultingTypeURL != "" {
		consultingType = client.NewHTTPConsultingTypeClient(appCfg.Services.ConsultingTypeURL, appCfg.Services.Timeout)
	}
	var userAdmin client.UserAdminClient = client.NewNoOpUserAdminClient()
	if appCfg.Services.UserAdminURL != "" {
		userAdmin = client.NewHTTPUserAdminClient(appCfg.Services.UserAdminURL, appCfg.Services.Timeout)
	}

	// Authorization
	policyFile, err := authz.LoadPolicyFile(appCfg.Authz.PolicyPath)
	if err != nil {
		return nil, err
	}
	c.RoutePolicy, err = authz.NewRoutePolicy(policyFile, log)
	if err != nil {
		return nil, err
	}
	guard := authz.NewGuard(authz.GuardConfig{
		LegalContentChangesBySingleTenantAdminsAllowed: appCfg.Tenancy.LegalContentChangesBySingleTenantAdminsAllowed,
	})

	// Tenant resolution, in priority order
	chain := resolver.NewChain(
		resolver.TokenClaim(),
		resolver.Cookie(resolver.CookieConfig{
			Enabled:          appCfg.Tenancy.SingleDomainMultitenancy,
			AuthCookieName:   appCfg.Tenancy.AuthCookieName,
			TenantCookieName: appCfg.Tenancy.TenantCookieName,
		}),
		resolver.Subdomain(c.TenantRepo, subdomainCache, log),
	)

	if c.Metrics == nil {
		c.Metrics, err = telemetry.NewTenantMetrics(telemetry.GetMeter())
		if err != nil {
			return nil, fmt.Errorf("failed to create metrics: %w", err)
		}
	}

	// Services
	c.TenantService, err = service.NewTenantService(
		service.Config{
			SingleDomainMultitenancy: appCfg.Tenancy.SingleDomainMultitenancy,
			MainTenantSubdomain:      appCfg.Tenancy.MainTenantSubdomain,
		},
		service.Deps{
			Repo:           c.TenantRepo,
			Guard:          guard,
			Overrider:      settings.NewOverrider(settings.DefaultRules...),
			Sanitizer:      sanitize.New(),
			Resolver:       chain,
			Cache:          subdomainCache,
			ConsultingType: consultingType,
			UserAdmin:      userAdmin,
			Publisher:      c.Publisher,
			Metrics:        c.Metrics,
			Logger:         log,
		},
	)
	if err != nil {
		return nil, err
	}

	// Handlers
	checks := map[string]handler.HealthChecker{}
	if c.DB != nil {
		checks["database"] = c.DB
	}
	if c.Redis != nil {
		checks["redis"] = c.Redis
	}
	c.HealthHandler = handler.NewHealthHandler(appCfg.App.Name, appCfg.App.Version, checks)
	c.TenantHandler = handler.NewTenantHandler(c.TenantService, log)

	return c, nil
}
