package httpkit

import (
	"net/http"

	"orgcore/internal/core/authz"
)

// Authz returns the authorization context built for this request
// Routes outside a Protected group have none and are denied
func Authz(r *http.Request) (*authz.Context, error) {
	return authz.MustFrom(r.Context())
}
