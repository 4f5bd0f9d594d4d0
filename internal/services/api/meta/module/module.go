// Package module wires meta endpoints into the API using a tiny module
package module

import (
	"context"
	"net/http"

	"orgcore/internal/modkit"
	"orgcore/internal/modkit/httpkit"
	metahttp "orgcore/internal/services/api/meta/http"
)

// Module implements the modkit.Module interface
type Module struct {
	name   string
	prefix string
	mws    []func(http.Handler) http.Handler
	deps   metahttp.Deps
}

// New constructs a meta module probing the backends present in deps
func New(deps modkit.Deps, service string, opts ...modkit.Option) *Module {
	b := modkit.Build("meta", "/meta", opts...)

	checks := map[string]metahttp.Pinger{}
	if p, ok := deps.PG.(metahttp.Pinger); ok {
		checks["pg"] = p
	}
	if deps.Redis != nil {
		checks["redis"] = metahttp.PingFunc(func(ctx context.Context) error { return deps.Redis.Ping(ctx).Err() })
	}
	if p, ok := deps.Docs.(metahttp.Pinger); ok {
		checks["docstore"] = p
	}

	return &Module{
		name:   b.Name,
		prefix: b.Prefix,
		mws:    b.Mw,
		deps: metahttp.Deps{
			ServiceName: service,
			StartedAt:   deps.Now().Now(),
			Clock:       deps.Now(),
			Checks:      checks,
			Order:       []string{"pg", "redis", "docstore"},
		},
	}
}

// MountRoutes implements the modkit.Module interface
func (m *Module) MountRoutes(r httpkit.Router) {
	httpkit.MountUnder(r, m.prefix, m.mws, func(rr httpkit.Router) {
		metahttp.Register(rr, m.deps)
	})
}

// Name implements the modkit.Module interface
func (m *Module) Name() string { return m.name }

// Ports implements the modkit.Module interface
func (m *Module) Ports() any { return nil }

var _ modkit.Module = (*Module)(nil)
