// Package site serves the embedded comparison page.
package site

import (
	"context"
	"net/http"
)

// Register attaches the comparison page routes to mux.
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}

	mux.Handle("GET /", http.FileServer(FS()))
}
