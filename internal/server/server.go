// Package server exposes a session over HTTP: the renderer page, a JSON
// query API and a websocket feed of view updates.
package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/matsen/citegraph/internal/analytics"
	"github.com/matsen/citegraph/internal/session"
)

const (
	shutdownTimeout = 5 * time.Second
	viewBuffer      = 16
)

// Server serves one session.
type Server struct {
	ctrl   *session.Controller
	hub    *Hub
	logger *slog.Logger
	now    func() time.Time

	// analytics mirrors the model of generation analyticsGen.
	analyticsMu  sync.Mutex
	analytics    *analytics.DB
	analyticsGen uint64
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// WithClock sets the clock used for trending scores.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		s.now = now
	}
}

// New creates a server for ctrl.
func New(ctrl *session.Controller, opts ...Option) *Server {
	s := &Server{
		ctrl:   ctrl,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.hub = NewHub(s.logger)
	return s
}

// Handler returns the HTTP handler with every route registered.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /api/graph", s.handleGraph)
	mux.HandleFunc("POST /api/filters", s.handleFilters)
	mux.HandleFunc("POST /api/reset", s.handleReset)
	mux.HandleFunc("GET /api/search", s.handleSearch)
	mux.HandleFunc("POST /api/expand/paper/{id}", s.handleExpandPaper)
	mux.HandleFunc("POST /api/expand/author/{id}", s.handleExpandAuthor)
	mux.HandleFunc("GET /api/nodes/{id}", s.handleNode)
	mux.HandleFunc("GET /api/stats", s.handleStats)
	mux.HandleFunc("GET /api/trending", s.handleTrending)
	mux.HandleFunc("GET /api/analytics/datasets", s.handleDatasetAnalytics)
	mux.HandleFunc("GET /ws", s.hub.HandleWebSocket(s.ctrl.Current))

	return s.logRequests(mux)
}

// Start forwards session views to websocket clients until ctx is done.
func (s *Server) Start(ctx context.Context) {
	views, cancel := s.ctrl.Subscribe(viewBuffer)
	go func() {
		defer cancel()
		s.hub.Run(ctx, views)
	}()
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	s.Start(ctx)

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("serving", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving on %s: %w", addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}

// Close releases the analytics database.
func (s *Server) Close() error {
	s.analyticsMu.Lock()
	defer s.analyticsMu.Unlock()
	if s.analytics == nil {
		return nil
	}
	err := s.analytics.Close()
	s.analytics = nil
	return err
}

// analyticsDB returns the analytics mirror of the current model, rebuilding
// it after a reload.
func (s *Server) analyticsDB(ctx context.Context) (*analytics.DB, error) {
	s.analyticsMu.Lock()
	defer s.analyticsMu.Unlock()

	gen := s.ctrl.Current().Generation
	if s.analytics != nil && s.analyticsGen == gen {
		return s.analytics, nil
	}

	db, err := analytics.Open(ctx, s.ctrl.Model())
	if err != nil {
		return nil, err
	}
	if s.analytics != nil {
		s.analytics.Close()
	}
	s.analytics = db
	s.analyticsGen = gen
	return db, nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// Hijack hands the connection to the websocket upgrader.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start))
	})
}
