// Package modkit provides module wiring and the shared dependency set
package modkit

import (
	"orgcore/internal/modkit/repokit"
	"orgcore/internal/platform/cache"
	"orgcore/internal/platform/config"
	"orgcore/internal/platform/docstore"
	"orgcore/internal/platform/logger"
	"orgcore/internal/platform/ratelimit"
	ptime "orgcore/internal/platform/time"

	"github.com/redis/go-redis/v9"
)

// Deps holds the backends modules are built from
// Optional backends may be nil; modules check what they use
type Deps struct {
	Log logger.Logger
	Cfg config.Conf
	PG  repokit.TxRunner

	Redis   redis.UniversalClient
	Cache   *cache.OrgCache
	Limiter *ratelimit.Limiter
	Docs    docstore.Store
	Clock   ptime.Clock
}

// Now returns the current time from the configured clock
func (d Deps) Now() ptime.Clock { return ptime.Or(d.Clock) }

// OrgCache returns the configured cache or a disabled one
func (d Deps) OrgCache() *cache.OrgCache {
	if d.Cache == nil {
		return cache.New(nil, 0)
	}
	return d.Cache
}

// RateLimiter returns the configured limiter or a process local one
func (d Deps) RateLimiter() *ratelimit.Limiter {
	if d.Limiter == nil {
		return ratelimit.New(ratelimit.Config{}, nil)
	}
	return d.Limiter
}
