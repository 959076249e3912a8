package web

import (
	"bytes"
	"encoding/json"
	"image"
	"image/png"
	"net/http"
	"strconv"

	"github.com/rook-computer/backdrop/internal/state"
)

// Controller starts and stops the backdrop loop.
type Controller interface {
	Start()
	Stop()
	Running() bool
}

// FrameSource hands out the most recently presented frame, or nil.
type FrameSource interface {
	Latest() *image.RGBA
}

type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type okResponse struct {
	OK      bool `json:"ok"`
	Running bool `json:"running"`
}

type statusResponse struct {
	Running       bool    `json:"running"`
	ReducedMotion bool    `json:"reducedMotion"`
	Frames        uint64  `json:"frames"`
	Width         float64 `json:"width"`
	Height        float64 `json:"height"`
	DPR           float64 `json:"dpr"`
	BufferWidth   int     `json:"bufferWidth"`
	BufferHeight  int     `json:"bufferHeight"`
	Phase         float64 `json:"phase"`
	LastFrameMs   float64 `json:"lastFrameMs"`
}

func apiV1Router(cfg APIV1Config) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) { handleStatus(w, r, cfg) })
	mux.HandleFunc("/start", func(w http.ResponseWriter, r *http.Request) {
		handleTransition(w, r, cfg.Controller, Controller.Start)
	})
	mux.HandleFunc("/stop", func(w http.ResponseWriter, r *http.Request) {
		handleTransition(w, r, cfg.Controller, Controller.Stop)
	})
	mux.HandleFunc("/frame.png", func(w http.ResponseWriter, r *http.Request) { handleFrame(w, r, cfg.Frames) })
	return mux
}

func handleStatus(w http.ResponseWriter, r *http.Request, cfg APIV1Config) {
	if r.Method != http.MethodGet {
		writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	if cfg.Store == nil {
		writeAPIError(w, http.StatusNotImplemented, "not_implemented", "status not configured")
		return
	}

	snap := cfg.Store.Snapshot()
	running := snap.Phase == state.RUNNING
	if cfg.Controller != nil {
		running = cfg.Controller.Running()
	}
	writeJSON(w, http.StatusOK, statusResponse{
		Running:       running,
		ReducedMotion: snap.ReducedMotion,
		Frames:        snap.Frame.Number,
		Width:         snap.Surface.Width,
		Height:        snap.Surface.Height,
		DPR:           snap.Surface.DPR,
		BufferWidth:   snap.Surface.BufferWidth,
		BufferHeight:  snap.Surface.BufferHeight,
		Phase:         snap.Frame.Phase,
		LastFrameMs:   float64(snap.Frame.Delta.Microseconds()) / 1000,
	})
}

func handleTransition(w http.ResponseWriter, r *http.Request, ctrl Controller, transition func(Controller)) {
	if r.Method != http.MethodPost {
		writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	if ctrl == nil {
		writeAPIError(w, http.StatusNotImplemented, "not_implemented", "controller not configured")
		return
	}
	transition(ctrl)
	writeJSON(w, http.StatusOK, okResponse{OK: true, Running: ctrl.Running()})
}

func handleFrame(w http.ResponseWriter, r *http.Request, frames FrameSource) {
	if r.Method != http.MethodGet {
		writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	var img *image.RGBA
	if frames != nil {
		img = frames.Latest()
	}
	if img == nil {
		writeAPIError(w, http.StatusNotFound, "no_frame", "no frame rendered yet")
		return
	}

	// Encode first so a failure can still produce a JSON error.
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		writeAPIError(w, http.StatusInternalServerError, "encode_failed", err.Error())
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeAPIError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, apiError{Error: code, Message: message})
}
