// Package static serves the embedded stylesheet of the panel.
package static

import (
	"embed"
	"net/http"
)

//go:embed css/*
var staticFS embed.FS

// Handler serves the embedded files. Mount it under a prefix with
// http.StripPrefix so /static/css/app.css maps to css/app.css.
func Handler() http.Handler {
	files := http.FileServer(http.FS(staticFS))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		files.ServeHTTP(w, r)
	})
}
