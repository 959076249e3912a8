package main

import (
	"encoding/json"
	"net/http"
	"sync/atomic"

	"github.com/rook-computer/backdrop/internal/app"
)

// SimControl simulates page visibility on top of what the window reports,
// so hide/show can be driven over HTTP while the window stays on screen.
type SimControl struct {
	ctrl   *app.Controller
	hidden atomic.Bool
}

func NewSimControl(ctrl *app.Controller) *SimControl {
	return &SimControl{ctrl: ctrl}
}

func (c *SimControl) SetVisible(visible bool) {
	c.hidden.Store(!visible)
	c.ctrl.SetVisible(visible)
}

func (c *SimControl) Visible() bool { return !c.hidden.Load() }

// Reset shows the backdrop again and restarts the loop.
func (c *SimControl) Reset() {
	c.SetVisible(true)
	c.ctrl.Start()
}

func registerSimEndpoints(mux *http.ServeMux, control *SimControl) {
	mux.HandleFunc("/sim/reset", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeSimError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		control.Reset()
		writeSimJSON(w, http.StatusOK, map[string]any{"ok": true, "running": control.ctrl.Running()})
	})

	mux.HandleFunc("/sim/visibility", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			writeSimJSON(w, http.StatusOK, map[string]any{"visible": control.Visible()})
			return
		case http.MethodPost:
			var patch struct {
				Visible *bool `json:"visible"`
			}
			if err := json.NewDecoder(r.Body).Decode(&patch); err != nil || patch.Visible == nil {
				writeSimError(w, http.StatusBadRequest, "invalid json")
				return
			}
			control.SetVisible(*patch.Visible)
			writeSimJSON(w, http.StatusOK, map[string]any{"visible": control.Visible(), "running": control.ctrl.Running()})
			return
		default:
			writeSimError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
	})
}

func writeSimJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeSimError(w http.ResponseWriter, status int, message string) {
	writeSimJSON(w, status, map[string]any{"error": message})
}
