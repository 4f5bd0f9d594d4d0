// Package module wires billing into the API using modkit
package module

import (
	"net/http"

	"orgcore/internal/modkit"
	"orgcore/internal/modkit/httpkit"
	"orgcore/internal/platform/docstore"
	auditdomain "orgcore/internal/services/audit/domain"
	"orgcore/internal/services/billing/domain"
	bhttp "orgcore/internal/services/billing/http"
	bsvc "orgcore/internal/services/billing/service"
)

// Ports is injected into the billing module
type Ports struct {
	Audit auditdomain.Appender
}

// Exports is what the billing module exposes
type Exports struct {
	Resolver domain.Resolver
	Service  domain.ServicePort
}

// Module implements the billing module
type Module struct {
	name   string
	prefix string
	mws    []func(http.Handler) http.Handler
	svc    bsvc.Service
}

// Docs picks the document store: the injected one, postgres, or memory
func Docs(deps modkit.Deps) docstore.Store {
	switch {
	case deps.Docs != nil:
		return deps.Docs
	case deps.PG != nil:
		return docstore.NewPG(deps.PG, deps.Now())
	default:
		return docstore.NewMemory(deps.Now())
	}
}

// New constructs the billing module; one service is built and shared for the process
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build("billing", "/billing", opts...)
	injected, _ := modkit.InjectedPorts[Ports](b)

	svcOpts := []bsvc.Option{
		bsvc.WithClock(deps.Now()),
		bsvc.WithMaxRetries(deps.Cfg.Prefix("BILLING_").MayInt("MAX_CAS_RETRIES", bsvc.DefaultMaxCASRetries)),
	}
	if injected.Audit != nil {
		svcOpts = append(svcOpts, bsvc.WithAudit(injected.Audit))
	}
	if deps.PG != nil {
		svcOpts = append(svcOpts, bsvc.WithTx(deps.PG))
	}
	return &Module{
		name:   b.Name,
		prefix: b.Prefix,
		mws:    b.Mw,
		svc:    bsvc.New(Docs(deps), svcOpts...),
	}
}

// MountRoutes mounts the module routes
func (m *Module) MountRoutes(r httpkit.Router) {
	httpkit.MountUnder(r, m.prefix, m.mws, func(rr httpkit.Router) {
		bhttp.Register(rr, m.svc)
	})
}

// Ports returns the billing exports
func (m *Module) Ports() any { return Exports{Resolver: m.svc, Service: m.svc} }

// Name returns the module name
func (m *Module) Name() string { return m.name }

var _ modkit.Module = (*Module)(nil)
