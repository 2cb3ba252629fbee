package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/prohmpiriya/tenant-service/pkg/config"
	"github.com/redis/go-redis/v9"
)

const subdomainKeyFormat = "tenant:subdomain:%s"

// SubdomainCache maps tenant subdomains to tenant ids
type SubdomainCache interface {
	// GetTenantID returns the cached id; found is false on a cache miss
	GetTenantID(ctx context.Context, subdomain string) (id int64, found bool, err error)
	SetTenantID(ctx context.Context, subdomain string, id int64) error
	Invalidate(ctx context.Context, subdomains ...string) error
}

// Redis wraps a go-redis client
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis creates a Redis client and verifies connectivity
func NewRedis(ctx context.Context, cfg *config.RedisConfig) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return NewRedisFromClient(client, cfg.SubdomainTTL), nil
}

// NewRedisFromClient wraps an existing client
func NewRedisFromClient(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

// Client exposes the underlying go-redis client
func (r *Redis) Client() *redis.Client {
	return r.client
}

// GetTenantID looks up a cached subdomain mapping
func (r *Redis) GetTenantID(ctx context.Context, subdomain string) (int64, bool, error) {
	val, err := r.client.Get(ctx, subdomainKey(subdomain)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to read subdomain cache: %w", err)
	}

	id, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		// a corrupt entry is treated as a miss and evicted
		_ = r.client.Del(ctx, subdomainKey(subdomain)).Err()
		return 0, false, nil
	}
	return id, true, nil
}

// SetTenantID caches a subdomain mapping for the configured TTL
func (r *Redis) SetTenantID(ctx context.Context, subdomain string, id int64) error {
	if err := r.client.Set(ctx, subdomainKey(subdomain), id, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write subdomain cache: %w", err)
	}
	return nil
}

// Invalidate removes cached mappings
func (r *Redis) Invalidate(ctx context.Context, subdomains ...string) error {
	if len(subdomains) == 0 {
		return nil
	}
	keys := make([]string, 0, len(subdomains))
	for _, s := range subdomains {
		keys = append(keys, subdomainKey(s))
	}
	return r.client.Del(ctx, keys...).Err()
}

// HealthCheck pings redis
func (r *Redis) HealthCheck(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the client
func (r *Redis) Close() error {
	return r.client.Close()
}

func subdomainKey(subdomain string) string {
	return fmt.Sprintf(subdomainKeyFormat, subdomain)
}

// Nop is a SubdomainCache that never stores anything
type Nop struct{}

func (Nop) GetTenantID(context.Context, string) (int64, bool, error) { return 0, false, nil }
func (Nop) SetTenantID(context.Context, string, int64) error         { return nil }
func (Nop) Invalidate(context.Context, ...string) error              { return nil }
