package middleware

import (
	"net/http"
	"runtime/debug"

	perr "orgcore/internal/platform/errors"
	"orgcore/internal/platform/logger"
)

// RecoverJSON turns a panic into the standard 500 envelope and logs the stack
func RecoverJSON(write Writer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				v := recover()
				if v == nil {
					return
				}
				if v == http.ErrAbortHandler {
					panic(v)
				}
				logger.C(r.Context()).Error().
					Interface("panic", v).
					Str("stack", string(debug.Stack())).
					Msg("panic recovered")
				write(w, r, perr.PanicErrf("panic recovered"))
			}()
			next.ServeHTTP(w, r)
		})
	}
}
