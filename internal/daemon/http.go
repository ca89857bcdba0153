package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	ferrors "git.home.luguber.info/inful/lesswatch/internal/foundation/errors"
	"git.home.luguber.info/inful/lesswatch/internal/logfields"
	"git.home.luguber.info/inful/lesswatch/internal/metrics"
)

// HealthResponse is served on /healthz.
type HealthResponse struct {
	Status    string          `json:"status"`
	Version   string          `json:"version"`
	StartedAt time.Time       `json:"started_at"`
	Uptime    string          `json:"uptime"`
	Profiles  []ProfileHealth `json:"profiles"`
}

// ProfileHealth reports the state of one profile.
type ProfileHealth struct {
	Name   string `json:"name"`
	Active bool   `json:"active"`
	Busy   bool   `json:"busy"`
}

// HTTPServer exposes /metrics and /healthz.
type HTTPServer struct {
	server *http.Server
	ln     net.Listener
}

// NewHTTPServer builds the handler tree. health is evaluated per request.
func NewHTTPServer(addr string, reg *prom.Registry, health func() HealthResponse) *HTTPServer {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", metrics.HTTPHandler(reg))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(health()); err != nil {
			slog.Warn("Failed to encode health response", logfields.Error(err))
		}
	})
	return &HTTPServer{
		server: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Start binds the listener and serves in the background. Binding happens
// synchronously so a busy port fails here.
func (s *HTTPServer) Start() error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryDaemon, "cannot bind metrics address").
			WithContext("addr", s.server.Addr).
			Build()
	}
	s.ln = ln
	slog.Info("Serving metrics", slog.String("addr", ln.Addr().String()))
	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server stopped", logfields.Error(err))
		}
	}()
	return nil
}

// Addr returns the bound address, or "" before Start.
func (s *HTTPServer) Addr() string {
	if s.ln == nil {
		return ""
	}
	return s.ln.Addr().String()
}

// Shutdown stops accepting requests and waits for active ones.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
