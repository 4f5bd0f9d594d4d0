// @title         orgcore API
// @version       0.1.0
// @description   Tenant scoped HR, audit and billing endpoints
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

package main

import (
	"context"
	"os/signal"
	"syscall"

	"orgcore/internal/modkit/repokit"
	"orgcore/internal/platform/config"
	"orgcore/internal/platform/logger"
	phttp "orgcore/internal/platform/net/http"
	"orgcore/internal/platform/store"
	"orgcore/internal/services/api"
)

func main() {
	config.LoadDotenv()

	root := config.New()
	apiCfg := root.Prefix("CORE_API_")
	pgCfg := root.Prefix("SERVICE_PGSQL_")
	redisCfg := root.Prefix("SERVICE_REDIS_")

	l := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(
		ctx,
		store.Config{
			AppName: "orgcore-api",
			PG: store.PGConfig{
				Enabled:     true,
				URL:         pgCfg.MustString("DBURL"),
				MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 8)),
				SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
				LogSQL:      pgCfg.MayBool("LOG_SQL", false),
			},
			Redis: store.RedisConfig{
				Enabled:  redisCfg.MayBool("ENABLED", false),
				Addr:     redisCfg.MayString("ADDR", "localhost:6379"),
				Password: redisCfg.MayString("PASSWORD", ""),
				DB:       redisCfg.MayInt("DB", 0),
			},
		},
		store.WithLogger(*l),
	)
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()
	repokit.MustGuard(ctx, st)

	srv := phttp.NewServer(apiCfg)

	api.Mount(
		srv.Router(),
		api.Options{
			Config:         root,
			Store:          st,
			Logger:         l,
			EnableSwagger:  apiCfg.MayBool("SWAGGER", true),
			EnableProfiler: apiCfg.MayBool("PROFILER", false),
		},
	)

	if err := srv.Run(ctx); err != nil {
		l.Panic().Err(err).Msg("http server stopped")
	}
}
