package web

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rook-computer/backdrop/internal/state"
)

type fakeController struct {
	running bool
	starts  int
	stops   int
}

func (c *fakeController) Start()        { c.starts++; c.running = true }
func (c *fakeController) Stop()         { c.stops++; c.running = false }
func (c *fakeController) Running() bool { return c.running }

type fakeFrames struct{ img *image.RGBA }

func (f fakeFrames) Latest() *image.RGBA { return f.img }

func newTestMux(ctrl Controller, store *state.Store, frames FrameSource) http.Handler {
	return NewDefaultMux(APIV1Config{Controller: ctrl, Store: store, Frames: frames})
}

func TestStatus(t *testing.T) {
	store := state.NewStore()
	store.SetPhase(state.RUNNING)
	store.UpdateSurface(state.SurfaceInfo{Width: 800, Height: 600, DPR: 2, BufferWidth: 1600, BufferHeight: 1200})
	store.UpdateFrame(state.FrameInfo{Number: 42, Phase: 1.5, Delta: 16 * time.Millisecond})

	rec := httptest.NewRecorder()
	newTestMux(&fakeController{running: true}, store, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/status", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status code = %d", rec.Code)
	}
	var got statusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := statusResponse{
		Running: true, Frames: 42, Width: 800, Height: 600, DPR: 2,
		BufferWidth: 1600, BufferHeight: 1200, Phase: 1.5, LastFrameMs: 16,
	}
	if got != want {
		t.Fatalf("status = %+v, want %+v", got, want)
	}
}

func TestStartStopIdempotent(t *testing.T) {
	ctrl := &fakeController{}
	mux := newTestMux(ctrl, state.NewStore(), nil)

	for i, tc := range []struct {
		path        string
		wantRunning bool
	}{
		{"/api/v1/start", true},
		{"/api/v1/start", true},
		{"/api/v1/stop", false},
		{"/api/v1/stop", false},
	} {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, tc.path, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("%d %s: code = %d", i, tc.path, rec.Code)
		}
		var got okResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if !got.OK || got.Running != tc.wantRunning {
			t.Fatalf("%d %s: got %+v", i, tc.path, got)
		}
	}
	if ctrl.starts != 2 || ctrl.stops != 2 {
		t.Fatalf("starts=%d stops=%d", ctrl.starts, ctrl.stops)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	mux := newTestMux(&fakeController{}, state.NewStore(), fakeFrames{})
	tests := []struct {
		method, path string
	}{
		{http.MethodPost, "/api/v1/status"},
		{http.MethodGet, "/api/v1/start"},
		{http.MethodGet, "/api/v1/stop"},
		{http.MethodDelete, "/api/v1/frame.png"},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Fatalf("%s %s: code = %d", tt.method, tt.path, rec.Code)
		}
		var got apiError
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil || got.Error != "method_not_allowed" {
			t.Fatalf("%s %s: body %q (%v)", tt.method, tt.path, rec.Body.String(), err)
		}
	}
}

func TestNotConfigured(t *testing.T) {
	mux := newTestMux(nil, nil, nil)
	for _, tc := range []struct {
		method, path string
		want         int
	}{
		{http.MethodGet, "/api/v1/status", http.StatusNotImplemented},
		{http.MethodPost, "/api/v1/start", http.StatusNotImplemented},
		{http.MethodGet, "/api/v1/frame.png", http.StatusNotFound},
	} {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))
		if rec.Code != tc.want {
			t.Fatalf("%s: code = %d, want %d", tc.path, rec.Code, tc.want)
		}
	}
}

func TestFramePNG(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	img.SetRGBA(1, 2, color.RGBA{R: 8, G: 10, B: 14, A: 255})

	rec := httptest.NewRecorder()
	newTestMux(nil, nil, fakeFrames{img: img}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/frame.png", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Fatalf("content type = %q", ct)
	}
	decoded, err := png.Decode(bytes.NewReader(rec.Body.Bytes()))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Bounds() != img.Bounds() {
		t.Fatalf("bounds = %v", decoded.Bounds())
	}
	r, g, b, _ := decoded.At(1, 2).RGBA()
	if r>>8 != 8 || g>>8 != 10 || b>>8 != 14 {
		t.Fatalf("pixel = %d,%d,%d", r>>8, g>>8, b>>8)
	}
}

func TestRootRedirects(t *testing.T) {
	mux := newTestMux(nil, nil, nil)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/api/v1/status" {
		t.Fatalf("code = %d location = %q", rec.Code, rec.Header().Get("Location"))
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("code = %d", rec.Code)
	}
}

func TestDevCORS(t *testing.T) {
	h := WithDevCORS(newTestMux(nil, state.NewStore(), nil))

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/start", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("preflight code = %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Fatalf("allow origin = %q", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Methods"); got != "GET, POST, OPTIONS" {
		t.Fatalf("allow methods = %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status code = %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("allow origin without Origin header = %q", got)
	}
}
