package http

import (
	stdhttp "net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

// MountProfiler mounts pprof under prefix when enabled, e.g. "/debug"
func MountProfiler(r Router, prefix string, enabled bool) {
	if !enabled {
		return
	}
	h := stdhttp.StripPrefix(prefix, chimw.Profiler())
	r.Handle(prefix, h)
	r.Handle(prefix+"/*", h)
}

// MountSwagger serves the swagger UI under prefix, reading the spec from docURL
func MountSwagger(r Router, prefix, docURL string, enabled bool) {
	if !enabled {
		return
	}
	r.Get(prefix, func(w stdhttp.ResponseWriter, req *stdhttp.Request) {
		stdhttp.Redirect(w, req, prefix+"/", stdhttp.StatusPermanentRedirect)
	})
	r.Handle(prefix+"/*", httpSwagger.Handler(httpSwagger.URL(docURL)))
}

// MountMetrics serves a metrics handler at path
func MountMetrics(r Router, path string, h stdhttp.Handler) {
	r.Handle(path, h)
}
