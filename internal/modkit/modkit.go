package modkit

import (
	"orgcore/internal/modkit/module"
)

// Module is the surface API modules expose: routes, ports and a name
type Module = module.Module

// Builder constructs a Module from shared deps and options
type Builder func(Deps, ...Option) Module
