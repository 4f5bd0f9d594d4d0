// Package ratelimit throttles mutations per org, user, client and action
//
// Counters live in a shared redis fixed window. When redis is absent or
// failing, a per process token bucket keyed by the same hash takes over, so
// the limit is advisory rather than exact across replicas
package ratelimit

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"

	perr "orgcore/internal/platform/errors"
	"orgcore/internal/platform/logger"
	"orgcore/internal/platform/metrics"
	ptime "orgcore/internal/platform/time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

const (
	BackendRedis  = "redis"
	BackendMemory = "memory"

	keyPrefix = "ratelimit:"
)

// Key identifies one throttled caller and action
type Key struct {
	OrgID  string
	UserID string
	IP     string
	Action string
}

// Decision is the outcome of a single Allow call
type Decision struct {
	Allowed    bool
	Count      int64
	Limit      int
	RetryAfter time.Duration
	Backend    string
}

// Config tunes the window; Max requests per Window per key
type Config struct {
	Salt   string
	Window time.Duration
	Max    int
}

type bucket struct {
	lim  *rate.Limiter
	seen time.Time
}

// Limiter decides whether a keyed mutation may proceed
type Limiter struct {
	cfg   Config
	rdb   redis.UniversalClient
	clock ptime.Clock
	log   *logger.Logger

	mu        sync.Mutex
	local     map[string]*bucket
	lastSweep time.Time
}

// Option configures a Limiter
type Option func(*Limiter)

// WithClock injects the clock used by the in process fallback
func WithClock(c ptime.Clock) Option { return func(l *Limiter) { l.clock = ptime.Or(c) } }

// New builds a limiter; rdb may be nil for a single process deployment
func New(cfg Config, rdb redis.UniversalClient, opts ...Option) *Limiter {
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	if cfg.Max <= 0 {
		cfg.Max = 60
	}
	l := &Limiter{
		cfg:   cfg,
		rdb:   rdb,
		clock: ptime.System{},
		log:   logger.Named("ratelimit"),
		local: map[string]*bucket{},
	}
	for _, o := range opts {
		o(l)
	}
	if cfg.Salt == "" {
		l.log.Warn().Msg("RATELIMIT_SALT not set; bucket keys use an empty salt")
	}
	return l
}

// Hash is the salted bucket id for k; raw identifiers never reach the backend
func (l *Limiter) Hash(k Key) string {
	m := hmac.New(sha256.New, []byte(l.cfg.Salt))
	m.Write([]byte(strings.Join([]string{k.OrgID, k.UserID, k.IP, k.Action}, "|")))
	return hex.EncodeToString(m.Sum(nil))
}

// Allow counts one attempt for k
func (l *Limiter) Allow(ctx context.Context, k Key) (Decision, error) {
	if strings.TrimSpace(k.Action) == "" {
		return Decision{}, perr.Validationf("action", "rate limit key requires an action")
	}
	h := l.Hash(k)

	if l.rdb != nil {
		d, err := l.allowShared(ctx, h)
		if err == nil {
			l.record(d)
			return d, nil
		}
		l.log.Warn().Err(err).Str("action", k.Action).Msg("shared rate limit bucket unavailable; using local fallback")
	}

	d := l.allowLocal(h)
	l.record(d)
	return d, nil
}

// Enforce is Allow that turns a refusal into a rate limited error
func (l *Limiter) Enforce(ctx context.Context, k Key) error {
	d, err := l.Allow(ctx, k)
	if err != nil {
		return err
	}
	if !d.Allowed {
		logger.C(ctx).Debug().Str("action", k.Action).Str("backend", d.Backend).Msg("rate limited")
		return perr.WithOp(perr.RateLimited(d.RetryAfter), k.Action)
	}
	return nil
}

func (l *Limiter) record(d Decision) {
	outcome := "allowed"
	if !d.Allowed {
		outcome = "limited"
	}
	metrics.RateLimitDecisions.WithLabelValues(d.Backend, outcome).Inc()
}

func (l *Limiter) allowShared(ctx context.Context, h string) (Decision, error) {
	key := keyPrefix + h

	pipe := l.rdb.Pipeline()
	incr := pipe.Incr(ctx, key)
	ttl := pipe.TTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return Decision{}, err
	}

	left := ttl.Val()
	if left < 0 {
		// first hit in the window, or a key that lost its expiry
		if err := l.rdb.Expire(ctx, key, l.cfg.Window).Err(); err != nil {
			return Decision{}, err
		}
		left = l.cfg.Window
	}

	d := Decision{Count: incr.Val(), Limit: l.cfg.Max, Backend: BackendRedis}
	d.Allowed = d.Count <= int64(l.cfg.Max)
	if !d.Allowed {
		d.RetryAfter = left
	}
	return d, nil
}

func (l *Limiter) allowLocal(h string) Decision {
	now := l.clock.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	l.sweep(now)
	b, ok := l.local[h]
	if !ok {
		every := l.cfg.Window / time.Duration(l.cfg.Max)
		b = &bucket{lim: rate.NewLimiter(rate.Every(every), l.cfg.Max)}
		l.local[h] = b
	}
	b.seen = now

	d := Decision{Limit: l.cfg.Max, Backend: BackendMemory}
	r := b.lim.ReserveN(now, 1)
	if wait := r.DelayFrom(now); wait > 0 {
		r.CancelAt(now)
		d.RetryAfter = wait
		return d
	}
	d.Allowed = true
	d.Count = int64(l.cfg.Max) - int64(b.lim.TokensAt(now))
	return d
}

// sweep drops idle local buckets; callers hold mu
func (l *Limiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < l.cfg.Window {
		return
	}
	l.lastSweep = now
	for k, b := range l.local {
		if now.Sub(b.seen) > 2*l.cfg.Window {
			delete(l.local, k)
		}
	}
}
