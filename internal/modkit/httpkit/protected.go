package httpkit

import (
	"net/http"
	"strings"

	"orgcore/internal/platform/net/middleware"
)

// Protected groups routes behind bearer authentication and the per request
// authorization context
func Protected(r Router, p middleware.AuthPort, az Authorizer, fn func(Router)) {
	r.Group(func(gr Router) {
		gr.Use(Auth(p), Authorize(az))
		fn(gr)
	})
}

// MountUnder mounts a subrouter at prefix with per module middleware
func MountUnder(r Router, prefix string, mw []func(http.Handler) http.Handler, mount func(Router)) {
	r.Route(prefix, func(sub Router) {
		if len(mw) > 0 {
			sub.Use(mw...)
		}
		mount(sub)
	})
}

// MountAPI mounts under /api/{version}
func MountAPI(r Router, version string, mw []func(http.Handler) http.Handler, mount func(Router)) {
	MountUnder(r, "/api/"+strings.TrimPrefix(version, "/"), mw, mount)
}

// MountAPIV1 is MountAPI for v1
func MountAPIV1(r Router, mw []func(http.Handler) http.Handler, mount func(Router)) {
	MountAPI(r, "v1", mw, mount)
}
