package resolver

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/prohmpiriya/tenant-service/internal/domain"
	"github.com/prohmpiriya/tenant-service/pkg/cache"
	"github.com/prohmpiriya/tenant-service/pkg/logger"
	"github.com/prohmpiriya/tenant-service/pkg/middleware"
)

// ResolveFunc yields the tenant a request targets, if it can tell
type ResolveFunc func(r *http.Request, caller *domain.Caller) (int64, bool)

// Strategy is a named ResolveFunc
type Strategy struct {
	Name    string
	Resolve ResolveFunc
}

// Chain tries strategies in order; the first to produce an id wins
type Chain struct {
	strategies []Strategy
}

// NewChain creates a chain over the given strategies
func NewChain(strategies ...Strategy) *Chain {
	return &Chain{strategies: strategies}
}

// Resolve returns the tenant id, or false when no strategy produced one
func (c *Chain) Resolve(r *http.Request, caller *domain.Caller) (int64, bool) {
	id, _, ok := c.ResolveWithStrategy(r, caller)
	return id, ok
}

// ResolveWithStrategy is Resolve that also names the winning strategy
func (c *Chain) ResolveWithStrategy(r *http.Request, caller *domain.Caller) (int64, string, bool) {
	for _, s := range c.strategies {
		if id, ok := s.Resolve(r, caller); ok {
			return id, s.Name, true
		}
	}
	return 0, "", false
}

// TokenClaim reads the tenant bound in the authenticated caller's token
func TokenClaim() Strategy {
	return Strategy{
		Name: "token",
		Resolve: func(_ *http.Request, caller *domain.Caller) (int64, bool) {
			if caller == nil || !caller.IsAuthenticated() || caller.TenantID == nil {
				return 0, false
			}
			return *caller.TenantID, true
		},
	}
}

// CookieConfig configures the cookie strategy
type CookieConfig struct {
	// Enabled mirrors single-domain multi-tenancy; the strategy is inert otherwise
	Enabled          bool
	AuthCookieName   string
	TenantCookieName string
}

// Cookie reads the tenant from the auth cookie's token payload, or from the
// plain tenant cookie when no auth cookie is sent. The payload is not verified:
// the value only selects which tenant's public data to serve.
func Cookie(cfg CookieConfig) Strategy {
	parser := jwt.NewParser()
	return Strategy{
		Name: "cookie",
		Resolve: func(r *http.Request, _ *domain.Caller) (int64, bool) {
			if !cfg.Enabled {
				return 0, false
			}

			if auth, err := r.Cookie(cfg.AuthCookieName); err == nil {
				claims := jwt.MapClaims{}
				if _, _, err := parser.ParseUnverified(auth.Value, claims); err != nil {
					return 0, false
				}
				return middleware.TenantIDFromClaims(claims)
			}

			plain, err := r.Cookie(cfg.TenantCookieName)
			if err != nil {
				return 0, false
			}
			id, err := strconv.ParseInt(strings.TrimSpace(plain.Value), 10, 64)
			if err != nil || id <= 0 {
				return 0, false
			}
			return id, true
		},
	}
}

// SubdomainLookup finds the tenant owning a subdomain
type SubdomainLookup interface {
	FindIDBySubdomain(ctx context.Context, subdomain string) (int64, bool, error)
}

// Subdomain maps the request host's first label to a tenant, consulting the
// cache before the lookup. Lookup failures are logged and resolve nothing.
func Subdomain(lookup SubdomainLookup, c cache.SubdomainCache, log *logger.Logger) Strategy {
	if c == nil {
		c = cache.Nop{}
	}
	if log == nil {
		log = logger.NewNop()
	}
	return Strategy{
		Name: "subdomain",
		Resolve: func(r *http.Request, _ *domain.Caller) (int64, bool) {
			subdomain, ok := SubdomainFromHost(requestHost(r))
			if !ok {
				return 0, false
			}
			ctx := r.Context()

			if id, found, err := c.GetTenantID(ctx, subdomain); err != nil {
				log.WarnContext(ctx, "subdomain cache read failed", zap.String("subdomain", subdomain), zap.Error(err))
			} else if found {
				return id, true
			}

			id, found, err := lookup.FindIDBySubdomain(ctx, subdomain)
			if err != nil {
				log.WarnContext(ctx, "subdomain lookup failed", zap.String("subdomain", subdomain), zap.Error(err))
				return 0, false
			}
			if !found {
				return 0, false
			}

			if err := c.SetTenantID(ctx, subdomain, id); err != nil {
				log.WarnContext(ctx, "subdomain cache write failed", zap.String("subdomain", subdomain), zap.Error(err))
			}
			return id, true
		},
	}
}

// SubdomainFromHost returns the first label of a host name. Bare names and IP
// addresses carry no subdomain.
func SubdomainFromHost(host string) (string, bool) {
	host = strings.ToLower(strings.TrimSpace(hostWithoutPort(host)))
	if host == "" || net.ParseIP(host) != nil {
		return "", false
	}
	label, rest, found := strings.Cut(host, ".")
	if !found || label == "" || rest == "" {
		return "", false
	}
	return label, true
}

func requestHost(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-Host"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return first
	}
	return r.Host
}

func hostWithoutPort(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	return host
}
