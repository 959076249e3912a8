package web

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 3 * time.Second
)

type logger interface {
	Infof(string, string, ...interface{})
	Errorf(string, string, ...interface{})
}

// HTTPServer serves the control API. It can be started once; Stop is
// idempotent.
type HTTPServer struct {
	Addr string
	API  APIV1Config
	// DevMode wraps the handler with permissive CORS and logs every request.
	DevMode bool
	// Routes, when set, registers extra handlers next to the API.
	Routes func(mux *http.ServeMux)
	Logger logger

	mu      sync.Mutex
	srv     *http.Server
	ln      net.Listener
	stopped bool
}

func NewHTTPServer(cfg ServerConfig, api APIV1Config) *HTTPServer {
	return &HTTPServer{Addr: cfg.ListenAddr, DevMode: cfg.DevMode, API: api}
}

// URL returns the base URL of the listener once started, else "".
func (s *HTTPServer) URL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return ""
	}
	return "http://" + s.ln.Addr().String()
}

// Handler builds the mux with API, extra routes and dev middleware.
func (s *HTTPServer) Handler() http.Handler {
	mux := NewDefaultMux(s.API)
	if s.Routes != nil {
		s.Routes(mux)
	}
	if !s.DevMode {
		return mux
	}
	return withRequestLog(WithDevCORS(mux), s.log())
}

// Start listens on Addr and serves until ctx is done or Stop is called.
func (s *HTTPServer) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return errors.New("web: server already stopped")
	}
	if s.srv != nil {
		return nil
	}

	addr := s.Addr
	if addr == "" {
		addr = ":80"
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	srv := &http.Server{Handler: s.Handler(), ReadHeaderTimeout: readHeaderTimeout}
	s.srv, s.ln = srv, ln
	s.log().Infof("web", "listening on %s (dev=%t)", ln.Addr(), s.DevMode)

	served := make(chan struct{})
	go func() {
		defer close(served)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log().Errorf("web", "serve: %v", err)
		}
	}()
	go func() {
		select {
		case <-ctx.Done():
			_ = s.Stop()
		case <-served:
		}
	}()
	return nil
}

func (s *HTTPServer) Stop() error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil
	}
	s.stopped = true
	srv := s.srv
	s.srv, s.ln = nil, nil
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(ctx)
}

func (s *HTTPServer) log() logger {
	if s.Logger == nil {
		return nopLogger{}
	}
	return s.Logger
}

type nopLogger struct{}

func (nopLogger) Infof(string, string, ...interface{})  {}
func (nopLogger) Errorf(string, string, ...interface{}) {}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func withRequestLog(next http.Handler, l logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		l.Infof("web", "%s %s %d %s", r.Method, r.URL.Path, rec.status, time.Since(start).Round(time.Microsecond))
	})
}
