// Package module wires identity into the API using modkit
package module

import (
	"net/http"

	"orgcore/internal/modkit"
	"orgcore/internal/modkit/httpkit"
	"orgcore/internal/platform/net/middleware"
	"orgcore/internal/services/identity/domain"
	idhttp "orgcore/internal/services/identity/http"
	idrepo "orgcore/internal/services/identity/repo"
	idsvc "orgcore/internal/services/identity/service"
)

// Ports is what the identity module exposes
type Ports struct {
	Builder    domain.Builder
	Auth       middleware.AuthPort
	Authorizer httpkit.Authorizer
	Tokens     *idsvc.Tokens
}

// Module implements the identity module
type Module struct {
	name   string
	prefix string
	mws    []func(http.Handler) http.Handler
	ports  Ports
}

// New constructs the identity module; cfg carries the token settings
func New(deps modkit.Deps, cfg Config, opts ...modkit.Option) *Module {
	b := modkit.Build("identity", "/identity", opts...)

	tokens, err := idsvc.NewTokens(cfg.Secret, cfg.Issuer, cfg.TTL, deps.Now())
	if err != nil {
		panic("identity module: " + err.Error())
	}
	builder := idsvc.New(deps.PG, idrepo.NewPG(), deps.Now())

	return &Module{
		name:   b.Name,
		prefix: b.Prefix,
		mws:    b.Mw,
		ports: Ports{
			Builder:    builder,
			Auth:       httpkit.NewPortFunc(tokens.Parse),
			Authorizer: idhttp.Authorizer(builder),
			Tokens:     tokens,
		},
	}
}

// MountRoutes mounts the module routes
func (m *Module) MountRoutes(r httpkit.Router) {
	httpkit.MountUnder(r, m.prefix, m.mws, idhttp.Register)
}

// Builder returns the authorization context builder
func (m *Module) Builder() domain.Builder { return m.ports.Builder }

// Tokens returns the bearer token issuer
func (m *Module) Tokens() *idsvc.Tokens { return m.ports.Tokens }

// Ports returns the identity ports
func (m *Module) Ports() any { return m.ports }

// Name returns the module name
func (m *Module) Name() string { return m.name }

var _ modkit.Module = (*Module)(nil)
