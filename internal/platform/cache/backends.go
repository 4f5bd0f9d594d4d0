package cache

import (
	"context"
	"errors"
	"time"

	"orgcore/internal/platform/logger"

	cachelib "github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	gocache_store "github.com/eko/gocache/store/go_cache/v4"
	redis_store "github.com/eko/gocache/store/redis/v4"
	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

// Modes accepted by CACHE_MODE
const (
	ModeOff      = "off"
	ModeMemory   = "memory"
	ModeRedis    = "redis"
	ModeTwoLevel = "two-level"
)

// Config selects and tunes the backend
type Config struct {
	Mode string
	TTL  time.Duration
}

// NewMemory is an in process backend over patrickmn/go-cache
func NewMemory(ttl time.Duration) cachelib.SetterCacheInterface[string] {
	client := gocache.New(ttl, 2*ttl)
	return cachelib.New[string](gocache_store.NewGoCache(client, store.WithExpiration(ttl)))
}

// NewRedis is a shared backend over go-redis
func NewRedis(client redis.UniversalClient, ttl time.Duration) cachelib.SetterCacheInterface[string] {
	return cachelib.New[string](redis_store.NewRedis(client, store.WithExpiration(ttl)))
}

// FromConfig builds the org cache; redis modes without a client fall back to memory
func FromConfig(cfg Config, rdb redis.UniversalClient) *OrgCache {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	log := logger.Named("orgcache")

	var b Backend
	switch cfg.Mode {
	case ModeMemory:
		b = NewMemory(ttl)
	case ModeRedis, ModeTwoLevel:
		if rdb == nil {
			log.Warn().Str("mode", cfg.Mode).Msg("redis not configured; using memory cache")
			b = NewMemory(ttl)
			break
		}
		if cfg.Mode == ModeRedis {
			b = NewRedis(rdb, ttl)
		} else {
			b = cachelib.NewChain[string](NewMemory(ttl), NewRedis(rdb, ttl))
		}
	default:
		b = NewNoop()
	}
	log.Info().Str("mode", cfg.Mode).Str("backend", b.GetType()).Msg("org cache ready")
	return New(b, ttl)
}

// errNotConfigured marks a miss from the noop backend
var errNotConfigured = errors.New("cache disabled")

type noop struct{}

// NewNoop returns a backend that never hits
func NewNoop() Backend { return noop{} }

func (noop) Get(context.Context, any) (string, error) {
	return "", store.NotFoundWithCause(errNotConfigured)
}
func (noop) Set(context.Context, any, string, ...store.Option) error     { return nil }
func (noop) Delete(context.Context, any) error                           { return nil }
func (noop) Invalidate(context.Context, ...store.InvalidateOption) error { return nil }
func (noop) Clear(context.Context) error                                 { return nil }
func (noop) GetType() string                                             { return "noop" }
