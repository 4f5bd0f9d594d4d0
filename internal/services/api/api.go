// Package api composes the modules into the HTTP API
package api

import (
	"orgcore/internal/modkit"
	"orgcore/internal/modkit/httpkit"
	"orgcore/internal/modkit/module"
	"orgcore/internal/modkit/swaggerkit"
	"orgcore/internal/platform/cache"
	"orgcore/internal/platform/config"
	"orgcore/internal/platform/logger"
	"orgcore/internal/platform/metrics"
	phttp "orgcore/internal/platform/net/http"
	"orgcore/internal/platform/ratelimit"
	"orgcore/internal/platform/store"
	ptime "orgcore/internal/platform/time"

	metamod "orgcore/internal/services/api/meta/module"
	auditmod "orgcore/internal/services/audit/module"
	billingmod "orgcore/internal/services/billing/module"
	hrmod "orgcore/internal/services/hr/module"
	identitymod "orgcore/internal/services/identity/module"
)

// Options are the API options
type Options struct {
	Config         config.Conf
	Store          *store.Store
	Logger         *logger.Logger
	Clock          ptime.Clock
	EnableSwagger  bool
	EnableProfiler bool
}

// NewDeps builds the shared module dependencies from the root config and opened store
// CACHE_* selects the org cache tier and RATELIMIT_* tunes the mutation limiter
func NewDeps(root config.Conf, st *store.Store, log *logger.Logger, clock ptime.Clock) modkit.Deps {
	cacheCfg := root.Prefix("CACHE_")
	rlCfg := root.Prefix("RATELIMIT_")
	clock = ptime.Or(clock)

	return modkit.Deps{
		Log:   *log,
		Cfg:   root,
		PG:    st.PG,
		Redis: st.Redis,
		Cache: cache.FromConfig(cache.Config{
			Mode: cacheCfg.MayEnum("MODE", cache.ModeMemory, cache.ModeOff, cache.ModeMemory, cache.ModeRedis, cache.ModeTwoLevel),
			TTL:  cacheCfg.MayDuration("TTL", 0),
		}, st.Redis),
		Limiter: ratelimit.New(ratelimit.Config{
			Salt:   rlCfg.MayString("SALT", ""),
			Window: rlCfg.MayDuration("WINDOW", 0),
			Max:    rlCfg.MayInt("MAX", 0),
		}, st.Redis, ratelimit.WithClock(clock)),
		Clock: clock,
	}
}

// Modules is the composed module set
type Modules struct {
	Identity *identitymod.Module
	Audit    *auditmod.Module
	Billing  *billingmod.Module
	HR       *hrmod.Module
	Meta     *metamod.Module
}

// Compose builds every module and injects the cross module ports
func Compose(deps modkit.Deps) Modules {
	identity := identitymod.New(deps, identitymod.FromConfig(deps.Cfg))
	audit := auditmod.New(deps)
	appender := module.MustPortsOf[auditmod.Ports](audit).Appender

	return Modules{
		Identity: identity,
		Audit:    audit,
		Billing:  billingmod.New(deps, modkit.WithPorts(billingmod.Ports{Audit: appender})),
		HR:       hrmod.New(deps, modkit.WithPorts(hrmod.Ports{Audit: appender})),
		Meta:     metamod.New(deps, "orgcore-api"),
	}
}

// Mount mounts the API service onto the given router
func Mount(r phttp.Router, opt Options) Modules {
	deps := NewDeps(opt.Config, opt.Store, opt.Logger, opt.Clock)
	mods := Compose(deps)

	reg := module.NewRegistry()
	for _, m := range []module.Module{mods.Meta, mods.Identity, mods.Audit, mods.Billing, mods.HR} {
		if err := reg.Add(m); err != nil {
			opt.Logger.Panic().Err(err).Msg("module registry")
		}
	}
	idp := module.MustPortsOf[identitymod.Ports](mods.Identity)

	swaggerkit.Mount(r, opt.EnableSwagger)
	phttp.MountProfiler(r, "/debug", opt.EnableProfiler)
	phttp.MountMetrics(r, "/metrics", metrics.Handler())

	httpkit.MountAPIV1(r, httpkit.CommonStack(), func(api httpkit.Router) {
		mods.Meta.MountRoutes(api)
		httpkit.Protected(api, idp.Auth, idp.Authorizer, func(pr httpkit.Router) {
			for _, m := range reg.All() {
				if m.Name() == mods.Meta.Name() {
					continue
				}
				m.MountRoutes(pr)
			}
		})
	})
	opt.Logger.Info().Int("modules", len(reg.All())).Msg("api mounted")
	return mods
}
