// Package module wires hr into the API using modkit
package module

import (
	"net/http"

	"orgcore/internal/modkit"
	"orgcore/internal/modkit/httpkit"
	auditdomain "orgcore/internal/services/audit/domain"
	"orgcore/internal/services/hr/domain"
	hrhttp "orgcore/internal/services/hr/http"
	hrrepo "orgcore/internal/services/hr/repo"
	hrsvc "orgcore/internal/services/hr/service"
)

// Ports is injected into the hr module
type Ports struct {
	Audit auditdomain.Appender
}

// Module implements the hr module
type Module struct {
	name   string
	prefix string
	mws    []func(http.Handler) http.Handler
	svc    hrsvc.Service
}

// New constructs the hr module; it panics without an audit port
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build("hr", "/hr", opts...)
	injected, ok := modkit.InjectedPorts[Ports](b)
	if !ok || injected.Audit == nil {
		panic("hr module requires Ports{Audit}")
	}
	svc := hrsvc.New(deps.PG, hrrepo.NewPG(), hrsvc.Options{
		Clock:   deps.Now(),
		Limiter: deps.RateLimiter(),
		Cache:   deps.OrgCache(),
		Audit:   injected.Audit,
	})
	return &Module{name: b.Name, prefix: b.Prefix, mws: b.Mw, svc: svc}
}

// MountRoutes mounts the module routes
func (m *Module) MountRoutes(r httpkit.Router) {
	httpkit.MountUnder(r, m.prefix, m.mws, func(rr httpkit.Router) {
		hrhttp.Register(rr, m.svc)
	})
}

// Ports exposes the hr service
func (m *Module) Ports() any { return domain.ServicePort(m.svc) }

// Name returns the module name
func (m *Module) Name() string { return m.name }

var _ modkit.Module = (*Module)(nil)
