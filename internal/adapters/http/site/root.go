// Package site serves the dashboard's embedded static assets.
package site

import (
	"context"
	"net/http"
)

// Prefix is the URL path the assets are mounted under.
const Prefix = "/static/"

// Register attaches the static asset routes to mux.
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.Handle(Prefix, cacheControl(http.StripPrefix(Prefix, http.FileServer(FS()))))
}

// cacheControl lets browsers reuse assets for an hour.
func cacheControl(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		next.ServeHTTP(w, r)
	})
}
