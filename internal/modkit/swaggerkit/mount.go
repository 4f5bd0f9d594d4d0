// Package swaggerkit mounts the swagger UI and the API document
package swaggerkit

import (
	"net/http"

	phttp "orgcore/internal/platform/net/http"
)

// Doc is the served OpenAPI document; handlers carry swag annotations so it can be regenerated
var Doc = `{"swagger":"2.0","info":{"title":"orgcore API","version":"0.1.0"},"basePath":"/api/v1","paths":{}}`

// Mount serves the UI at /api/docs and the document at /api/docs/doc.json
func Mount(r phttp.Router, enabled bool) {
	if !enabled {
		return
	}
	r.Get("/api/docs/doc.json", serveDoc)
	phttp.MountSwagger(r, "/api/docs", "/api/docs/doc.json", true)
}

func serveDoc(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write([]byte(Doc))
}
