package web

import (
	"net/http"

	"github.com/rook-computer/backdrop/internal/state"
)

type APIV1Config struct {
	Controller Controller
	Store      *state.Store
	Frames     FrameSource
}

// RegisterAPIV1 registers the public API routes under /api/v1/.
func RegisterAPIV1(mux *http.ServeMux, cfg APIV1Config) {
	mux.Handle("/api/v1/", http.StripPrefix("/api/v1", apiV1Router(cfg)))
}

// NewDefaultMux builds the mux shared by every host binary. A request for
// "/" redirects to the status endpoint.
func NewDefaultMux(cfg APIV1Config) *http.ServeMux {
	mux := http.NewServeMux()
	RegisterAPIV1(mux, cfg)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			writeAPIError(w, http.StatusNotFound, "not_found", "not found")
			return
		}
		http.Redirect(w, r, "/api/v1/status", http.StatusFound)
	})
	return mux
}
