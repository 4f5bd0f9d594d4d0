// Package module wires the audit log into the API using modkit
package module

import (
	"net/http"

	"orgcore/internal/modkit"
	"orgcore/internal/modkit/httpkit"
	"orgcore/internal/services/audit/domain"
	audithttp "orgcore/internal/services/audit/http"
	auditrepo "orgcore/internal/services/audit/repo"
	auditsvc "orgcore/internal/services/audit/service"
)

// Ports is what the audit module exposes to other modules
type Ports struct {
	Appender domain.Appender
	Service  domain.ServicePort
}

// Module implements the audit module
type Module struct {
	name   string
	prefix string
	mws    []func(http.Handler) http.Handler

	svc   auditsvc.Service
	ports Ports
}

// New constructs the audit module over the deps' postgres runner
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build("audit", "/audit", opts...)
	svc := auditsvc.New(deps.PG, auditrepo.NewPG(), auditsvc.WithClock(deps.Now()))
	return &Module{
		name:   b.Name,
		prefix: b.Prefix,
		mws:    b.Mw,
		svc:    svc,
		ports:  Ports{Appender: svc, Service: svc},
	}
}

// MountRoutes mounts the module routes
func (m *Module) MountRoutes(r httpkit.Router) {
	httpkit.MountUnder(r, m.prefix, m.mws, func(rr httpkit.Router) {
		audithttp.Register(rr, m.svc)
	})
}

// Ports returns the audit ports
func (m *Module) Ports() any { return m.ports }

// Name returns the module name
func (m *Module) Name() string { return m.name }

var _ modkit.Module = (*Module)(nil)
