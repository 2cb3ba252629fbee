package authz

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/prohmpiriya/tenant-service/internal/domain"
	"github.com/prohmpiriya/tenant-service/pkg/logger"
	"github.com/prohmpiriya/tenant-service/pkg/middleware"
	"github.com/prohmpiriya/tenant-service/pkg/response"
)

// Mode selects whether route decisions are enforced or only logged
type Mode string

const (
	ModeEnforce Mode = "enforce"
	ModeShadow  Mode = "shadow"
)

const routeModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && keyMatch2(r.obj, p.obj) && r.act == p.act
`

// PolicyRule grants a role the listed methods on a route pattern
type PolicyRule struct {
	Role    string   `yaml:"role"`
	Path    string   `yaml:"path"`
	Methods []string `yaml:"methods"`
}

// PolicyFile is the on-disk route policy
type PolicyFile struct {
	Mode  Mode         `yaml:"mode"`
	Rules []PolicyRule `yaml:"rules"`
}

// DefaultPolicy grants global admins the whole admin surface and single-tenant
// admins read and update of a tenant by id
func DefaultPolicy() PolicyFile {
	return PolicyFile{
		Mode: ModeEnforce,
		Rules: []PolicyRule{
			{Role: string(domain.RoleTenantAdmin), Path: "/api/v1/tenants", Methods: []string{http.MethodGet, http.MethodPost}},
			{Role: string(domain.RoleTenantAdmin), Path: "/api/v1/tenants/:id", Methods: []string{http.MethodGet, http.MethodPut}},
			{Role: string(domain.RoleSingleTenantAdmin), Path: "/api/v1/tenants/:id", Methods: []string{http.MethodGet, http.MethodPut}},
		},
	}
}

// LoadPolicyFile reads a YAML policy. An empty path yields DefaultPolicy.
func LoadPolicyFile(path string) (PolicyFile, error) {
	if path == "" {
		return DefaultPolicy(), nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return PolicyFile{}, fmt.Errorf("authz: read policy: %w", err)
	}

	var p PolicyFile
	if err := yaml.Unmarshal(b, &p); err != nil {
		return PolicyFile{}, fmt.Errorf("authz: parse policy: %w", err)
	}
	if p.Mode == "" {
		p.Mode = ModeEnforce
	}
	if len(p.Rules) == 0 {
		return PolicyFile{}, errors.New("authz: policy has no rules")
	}
	return p, nil
}

// RoutePolicy gates admin routes by caller role
type RoutePolicy struct {
	enforcer *casbin.Enforcer
	mode     Mode
	log      *logger.Logger
}

// NewRoutePolicy builds the casbin enforcer for the given policy
func NewRoutePolicy(p PolicyFile, log *logger.Logger) (*RoutePolicy, error) {
	switch p.Mode {
	case ModeEnforce, ModeShadow:
	default:
		return nil, fmt.Errorf("authz: invalid mode %q (expected enforce|shadow)", p.Mode)
	}

	m, err := model.NewModelFromString(routeModel)
	if err != nil {
		return nil, fmt.Errorf("authz: model: %w", err)
	}
	enforcer, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("authz: enforcer: %w", err)
	}

	for _, rule := range p.Rules {
		for _, method := range rule.Methods {
			if _, err := enforcer.AddPolicy(rule.Role, rule.Path, strings.ToUpper(method)); err != nil {
				return nil, fmt.Errorf("authz: add policy: %w", err)
			}
		}
	}

	if log == nil {
		log = logger.NewNop()
	}
	return &RoutePolicy{enforcer: enforcer, mode: p.Mode, log: log}, nil
}

// Allowed reports whether any of the roles may perform method on path
func (p *RoutePolicy) Allowed(roles []string, path, method string) (bool, error) {
	for _, role := range roles {
		ok, err := p.enforcer.Enforce(role, path, method)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// Middleware enforces the policy on authenticated requests
func (p *RoutePolicy) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := middleware.GetUserID(c); !ok {
			response.Abort(c, response.Unauthorized("User not authenticated"))
			return
		}

		roles, _ := middleware.GetRoles(c)
		ok, err := p.Allowed(roles, c.Request.URL.Path, c.Request.Method)
		if err != nil {
			p.log.ErrorContext(c.Request.Context(), "route policy evaluation failed", zap.Error(err))
			response.Abort(c, response.InternalError("Authorization failed"))
			return
		}

		if !ok {
			if p.mode == ModeShadow {
				p.log.WarnContext(c.Request.Context(), "route policy would deny request",
					zap.Strings("roles", roles),
					zap.String("path", c.Request.URL.Path),
					zap.String("method", c.Request.Method),
				)
				c.Next()
				return
			}
			response.Abort(c, response.Forbidden("Not authorized"))
			return
		}

		c.Next()
	}
}
