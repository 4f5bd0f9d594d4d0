// Package middleware holds the request pipeline pieces shared by every module
package middleware

import (
	"net/http"
	"strconv"
	"time"

	"orgcore/internal/platform/logger"
	"orgcore/internal/platform/metrics"
	pnet "orgcore/internal/platform/net"

	"github.com/go-chi/chi/v5"
)

// AccessLogOptions configures the access log
type AccessLogOptions struct {
	// Slow marks requests taking at least Slow as warn; 0 disables
	Slow time.Duration
}

type captureWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (cw *captureWriter) WriteHeader(code int) {
	cw.status = code
	cw.ResponseWriter.WriteHeader(code)
}

func (cw *captureWriter) Write(b []byte) (int, error) {
	n, err := cw.ResponseWriter.Write(b)
	cw.bytes += n
	return n, err
}

// RequestContext seeds the request scoped logger fields
func RequestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := logger.WithRequest(r.Context(), pnet.RequestID(r.Context()), "")
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// route is the matched chi pattern; unmatched requests share one label so ids never reach metrics
func route(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

// AccessLog logs one line per request through the request scoped logger
// and observes the latency histogram
func AccessLog(opt AccessLogOptions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cw := &captureWriter{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()

			next.ServeHTTP(cw, r)

			elapsed := time.Since(start)
			pattern := route(r)
			metrics.HTTPRequests.WithLabelValues(r.Method, pattern, strconv.Itoa(cw.status/100)+"xx").Observe(elapsed.Seconds())

			log := logger.C(r.Context())
			evt := log.Info()
			if opt.Slow > 0 && elapsed >= opt.Slow {
				evt = log.Warn()
			}
			evt.Int("status", cw.status).
				Dur("elapsed", elapsed).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("route", pattern).
				Int("bytes", cw.bytes).
				Msg("request done")
		})
	}
}
