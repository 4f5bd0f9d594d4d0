package httpkit

import (
	"compress/flate"
	"net/http"
	"time"

	"orgcore/internal/platform/logger"
	phttp "orgcore/internal/platform/net/http"
	"orgcore/internal/platform/net/middleware"
)

// CommonStack is the baseline middleware for every API route
func CommonStack() []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		middleware.RequestID(),
		middleware.RealIP(),
		middleware.RequestContext,
		middleware.RecoverJSON(phttp.RespondError),
		middleware.NoCache(),
		middleware.AccessLog(middleware.AccessLogOptions{Slow: 500 * time.Millisecond}),
		middleware.CORS(middleware.CORSOptions{}),
		middleware.Compress(flate.BestSpeed),
		middleware.Heartbeat("/health"),
		middleware.StripSlashes(),
		middleware.Timeout(30 * time.Second),
	}
}

// Auth wires the authentication middleware to the platform error writer
func Auth(p middleware.AuthPort) func(http.Handler) http.Handler {
	return middleware.Auth(p, phttp.RespondError)
}

// Authorizer builds the authorization context for an authenticated request
type Authorizer func(r *http.Request) (*http.Request, error)

// Authorize runs az after authentication and writes its failures as envelopes
func Authorize(az Authorizer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r2, err := az(r)
			if err != nil {
				logger.C(r.Context()).Debug().Err(err).Msg("authorization context refused")
				phttp.RespondError(w, r, err)
				return
			}
			next.ServeHTTP(w, r2)
		})
	}
}
