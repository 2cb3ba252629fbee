package resolver

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prohmpiriya/tenant-service/internal/domain"
	"github.com/prohmpiriya/tenant-service/pkg/cache"
)

type fakeLookup struct {
	ids   map[string]int64
	err   error
	calls int
}

func (f *fakeLookup) FindIDBySubdomain(_ context.Context, subdomain string) (int64, bool, error) {
	f.calls++
	if f.err != nil {
		return 0, false, f.err
	}
	id, ok := f.ids[subdomain]
	return id, ok, nil
}

func int64Ptr(v int64) *int64 { return &v }

func authCookieValue(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	// signed with a key the resolver never sees; the payload is read unverified
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("keycloak-key"))
	require.NoError(t, err)
	return s
}

func TestTokenClaim(t *testing.T) {
	s := TokenClaim()
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	caller := domain.NewCaller("u", []string{"single-tenant-admin"}, int64Ptr(8))
	id, ok := s.Resolve(r, &caller)
	assert.True(t, ok)
	assert.Equal(t, int64(8), id)

	noTenant := domain.NewCaller("u", []string{"tenant-admin"}, nil)
	_, ok = s.Resolve(r, &noTenant)
	assert.False(t, ok)

	anon := domain.Anonymous()
	_, ok = s.Resolve(r, &anon)
	assert.False(t, ok)

	_, ok = s.Resolve(r, nil)
	assert.False(t, ok)
}

func TestCookie(t *testing.T) {
	cfg := CookieConfig{Enabled: true, AuthCookieName: "keycloak", TenantCookieName: "tenantId"}

	tests := []struct {
		name    string
		cfg     CookieConfig
		cookies []*http.Cookie
		want    int64
		wantOK  bool
	}{
		{
			name:    "auth cookie payload",
			cfg:     cfg,
			cookies: []*http.Cookie{{Name: "keycloak", Value: authCookieValue(t, jwt.MapClaims{"tenantId": 12})}},
			want:    12,
			wantOK:  true,
		},
		{
			name: "auth cookie wins over tenant cookie",
			cfg:  cfg,
			cookies: []*http.Cookie{
				{Name: "keycloak", Value: authCookieValue(t, jwt.MapClaims{"tenantId": "13"})},
				{Name: "tenantId", Value: "99"},
			},
			want:   13,
			wantOK: true,
		},
		{
			name:    "plain tenant cookie",
			cfg:     cfg,
			cookies: []*http.Cookie{{Name: "tenantId", Value: "14"}},
			want:    14,
			wantOK:  true,
		},
		{
			name:    "garbage tenant cookie",
			cfg:     cfg,
			cookies: []*http.Cookie{{Name: "tenantId", Value: "abc"}},
		},
		{
			name:    "undecodable auth cookie",
			cfg:     cfg,
			cookies: []*http.Cookie{{Name: "keycloak", Value: "not-a-token"}, {Name: "tenantId", Value: "14"}},
		},
		{
			name:    "disabled outside single domain mode",
			cfg:     CookieConfig{AuthCookieName: "keycloak", TenantCookieName: "tenantId"},
			cookies: []*http.Cookie{{Name: "tenantId", Value: "14"}},
		},
		{
			name: "no cookies",
			cfg:  cfg,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			for _, c := range tt.cookies {
				r.AddCookie(c)
			}

			id, ok := Cookie(tt.cfg).Resolve(r, nil)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, id)
		})
	}
}

func TestSubdomainFromHost(t *testing.T) {
	tests := []struct {
		host   string
		want   string
		wantOK bool
	}{
		{"acme.example.com", "acme", true},
		{"ACME.example.com:8443", "acme", true},
		{"localhost", "", false},
		{"localhost:8080", "", false},
		{"127.0.0.1:8080", "", false},
		{"[::1]:8080", "", false},
		{"", "", false},
		{".example.com", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			got, ok := SubdomainFromHost(tt.host)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSubdomain_WithCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	c := cache.NewRedisFromClient(client, time.Minute)

	lookup := &fakeLookup{ids: map[string]int64{"acme": 21}}
	s := Subdomain(lookup, c, nil)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Host = "acme.example.com"

	id, ok := s.Resolve(r, nil)
	require.True(t, ok)
	assert.Equal(t, int64(21), id)
	assert.Equal(t, 1, lookup.calls)

	id, ok = s.Resolve(r, nil)
	require.True(t, ok)
	assert.Equal(t, int64(21), id)
	assert.Equal(t, 1, lookup.calls, "second resolution served from cache")
}

func TestSubdomain_Misses(t *testing.T) {
	t.Run("unknown subdomain", func(t *testing.T) {
		s := Subdomain(&fakeLookup{ids: map[string]int64{}}, nil, nil)
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Host = "nobody.example.com"

		_, ok := s.Resolve(r, nil)
		assert.False(t, ok)
	})

	t.Run("lookup error", func(t *testing.T) {
		s := Subdomain(&fakeLookup{err: errors.New("db down")}, cache.Nop{}, nil)
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Host = "acme.example.com"

		_, ok := s.Resolve(r, nil)
		assert.False(t, ok)
	})

	t.Run("forwarded host preferred", func(t *testing.T) {
		s := Subdomain(&fakeLookup{ids: map[string]int64{"beta": 3}}, nil, nil)
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Host = "internal-lb:8080"
		r.Header.Set("X-Forwarded-Host", "beta.example.com, proxy.local")

		id, ok := s.Resolve(r, nil)
		assert.True(t, ok)
		assert.Equal(t, int64(3), id)
	})
}

func TestChain_Order(t *testing.T) {
	lookup := &fakeLookup{ids: map[string]int64{"acme": 30}}
	chain := NewChain(
		TokenClaim(),
		Cookie(CookieConfig{Enabled: true, AuthCookieName: "keycloak", TenantCookieName: "tenantId"}),
		Subdomain(lookup, nil, nil),
	)

	newRequest := func() *http.Request {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Host = "acme.example.com"
		r.AddCookie(&http.Cookie{Name: "tenantId", Value: "20"})
		return r
	}

	caller := domain.NewCaller("u", []string{"single-tenant-admin"}, int64Ptr(10))
	id, strategy, ok := chain.ResolveWithStrategy(newRequest(), &caller)
	require.True(t, ok)
	assert.Equal(t, int64(10), id)
	assert.Equal(t, "token", strategy)

	id, strategy, ok = chain.ResolveWithStrategy(newRequest(), nil)
	require.True(t, ok)
	assert.Equal(t, int64(20), id)
	assert.Equal(t, "cookie", strategy)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Host = "acme.example.com"
	id, ok = chain.Resolve(r, nil)
	require.True(t, ok)
	assert.Equal(t, int64(30), id)

	_, ok = NewChain().Resolve(r, nil)
	assert.False(t, ok)
}
