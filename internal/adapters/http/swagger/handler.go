// Package swagger serves the collector's OpenAPI document and a ReDoc viewer.
package swagger

import (
	"context"
	"net/http"
	"strconv"
)

// RedocCDN is the ReDoc bundle loaded by the docs page.
const RedocCDN = "https://cdn.redoc.ly/redoc/latest/bundles/redoc.standalone.js"

// Register mounts GET /api-docs (ReDoc page) and GET /openapi.yaml on mux.
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.HandleFunc("/api-docs", readOnly("text/html; charset=utf-8", []byte(indexHTML)))
	mux.HandleFunc("/openapi.yaml", readOnly("application/yaml; charset=utf-8", OpenAPI))
}

// readOnly serves body for GET and HEAD and rejects other methods.
func readOnly(contentType string, body []byte) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Content-Length", strconv.Itoa(len(body)))
		if r.Method == http.MethodHead {
			return
		}
		_, _ = w.Write(body)
	}
}

const indexHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8">
    <title>Carbon Cost API Docs</title>
    <style>body{margin:0;padding:0}</style>
  </head>
  <body>
    <redoc id="redoc-container"></redoc>
    <script src="` + RedocCDN + `"></script>
    <script>Redoc.init('/openapi.yaml', { suppressWarnings: true }, document.getElementById('redoc-container'));</script>
  </body>
</html>`
