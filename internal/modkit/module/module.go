// Package module defines the minimal contract for a modkit module
package module

import (
	phttp "orgcore/internal/platform/net/http"
)

// Module mounts routes and exposes a port set for cross wiring
// It lives apart from modkit so a module can export its ports type without an import cycle
type Module interface {
	MountRoutes(r phttp.Router)
	Ports() any
	Name() string
}
