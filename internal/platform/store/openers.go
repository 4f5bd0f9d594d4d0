package store

import (
	"context"
	"fmt"
	"time"

	"orgcore/internal/platform/logger"
	"orgcore/internal/platform/store/pg"

	"github.com/redis/go-redis/v9"
)

type redisClient = redis.UniversalClient

// openPG opens the pool and publishes the adapter once a ping succeeds
func openPG(ctx context.Context, cfg PGConfig, log logger.Logger) (TxRunner, error) {
	var tracer pg.QueryTracer
	if cfg.LogSQL {
		tracer = pg.Tracer(log)
	}
	p, err := pg.Open(ctx, pg.Config{URL: cfg.URL, MaxConns: cfg.MaxConns, SlowMs: cfg.SlowQueryMs}, tracer, nil)
	if err != nil {
		return nil, err
	}

	attempts := cfg.ConnectRetries
	if attempts <= 0 {
		attempts = 20
	}
	timeout := cfg.PingTimeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}

	err = retry(ctx, attempts, 150*time.Millisecond, 2*time.Second, func() error {
		pctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return p.Pool.Ping(pctx)
	})
	if err != nil {
		p.Close()
		return nil, fmt.Errorf("postgres ping failed after %d attempts: %w", attempts, err)
	}
	return newPGAdapter(p), nil
}

func openRedis(ctx context.Context, cfg RedisConfig) (redisClient, error) {
	c := redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
	err := retry(ctx, 5, 100*time.Millisecond, time.Second, func() error {
		return c.Ping(ctx).Err()
	})
	if err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return c, nil
}

// retry runs fn with capped exponential backoff until it succeeds, ctx ends or attempts run out
func retry(ctx context.Context, attempts int, start, ceiling time.Duration, fn func() error) error {
	var err error
	backoff := start
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, ceiling)
	}
	return err
}
