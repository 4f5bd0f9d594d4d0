package modkit

import (
	"net/http"
)

// Option mutates build configuration for a module
type Option func(*buildCfg)

type buildCfg struct {
	name      string
	prefix    string
	mw        []func(http.Handler) http.Handler
	ports     any
	swaggerOn bool
}

// Built is the resolved option set modules read
type Built struct {
	Name      string
	Prefix    string
	Mw        []func(http.Handler) http.Handler
	Ports     any
	SwaggerOn bool
}

// WithName sets the module name used in logs and the registry
func WithName(name string) Option { return func(c *buildCfg) { c.name = name } }

// WithPrefix mounts a module under a path prefix
func WithPrefix(prefix string) Option { return func(c *buildCfg) { c.prefix = prefix } }

// WithMiddlewares attaches per module middleware in order
func WithMiddlewares(mw ...func(http.Handler) http.Handler) Option {
	return func(c *buildCfg) { c.mw = append(c.mw, mw...) }
}

// WithPorts injects ports another module exposes; the importing module owns the type
func WithPorts[T any](p T) Option { return func(c *buildCfg) { c.ports = p } }

// WithSwagger toggles swagger annotations for this module
func WithSwagger(enabled bool) Option { return func(c *buildCfg) { c.swaggerOn = enabled } }

// Build applies opts over defaults
func Build(defaultName, defaultPrefix string, opts ...Option) Built {
	c := buildCfg{name: defaultName, prefix: defaultPrefix}
	for _, o := range opts {
		o(&c)
	}
	return Built{
		Name:      c.name,
		Prefix:    c.prefix,
		Mw:        append([]func(http.Handler) http.Handler(nil), c.mw...),
		Ports:     c.ports,
		SwaggerOn: c.swaggerOn,
	}
}

// InjectedPorts type asserts the injected ports
func InjectedPorts[T any](b Built) (T, bool) {
	v, ok := b.Ports.(T)
	return v, ok
}
