// Package api exposes the assistant engine over HTTP.
//
// It manages conversation sessions, routes visitor input to the session
// orchestrator, and serves the sales team's lead listing alongside health
// and metrics endpoints.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/CrestlineDigital/leadflow/internal/analytics"
	"github.com/CrestlineDigital/leadflow/internal/leads"
	"github.com/CrestlineDigital/leadflow/internal/session"
)

// DefaultAddr is the default listen address for the API server.
const DefaultAddr = ":8080"

// Server timeouts
const (
	DefaultReadTimeout  = 15 * time.Second
	DefaultWriteTimeout = 15 * time.Second
	DefaultIdleTimeout  = 60 * time.Second
)

// Session lifecycle configuration
const (
	// DefaultSessionIdleTTL is how long an untouched session survives before
	// the sweeper evicts it.
	DefaultSessionIdleTTL = 30 * time.Minute
	// sessionSweepInterval is how often idle sessions are evicted.
	sessionSweepInterval = 5 * time.Minute
)

// Opts holds configuration options for the API server.
type Opts struct {
	Addr string
}

// Option defines a configuration option for the API server.
type Option func(*Opts)

// WithAddr sets the listen address.
func WithAddr(addr string) Option {
	return func(o *Opts) { o.Addr = addr }
}

// sessionEntry pairs an orchestrator with its last-touched time so idle
// sessions can be evicted.
type sessionEntry struct {
	orch     *session.Orchestrator
	lastSeen time.Time
}

// Server hosts the assistant HTTP API. Each conversation gets its own
// orchestrator, keyed by a server-issued session id. Sessions are dropped
// explicitly via the delete endpoint or by the idle sweeper.
type Server struct {
	addr       string
	newSession func() *session.Orchestrator
	leadSvc    *leads.Service
	collector  analytics.Collector

	mu       sync.Mutex
	sessions map[string]*sessionEntry

	mux *http.ServeMux
}

// NewServer creates an API server. newSession produces a fresh orchestrator
// per created session.
func NewServer(newSession func() *session.Orchestrator, leadSvc *leads.Service, collector analytics.Collector, opts ...Option) *Server {
	cfg := Opts{Addr: DefaultAddr}
	for _, opt := range opts {
		opt(&cfg)
	}
	if collector == nil {
		collector = analytics.NoopCollector{}
	}

	s := &Server{
		addr:       cfg.Addr,
		newSession: newSession,
		leadSvc:    leadSvc,
		collector:  collector,
		sessions:   make(map[string]*sessionEntry),
		mux:        http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("POST /api/sessions", s.createSessionHandler)
	s.mux.HandleFunc("GET /api/sessions/{id}", s.sessionStateHandler)
	s.mux.HandleFunc("DELETE /api/sessions/{id}", s.deleteSessionHandler)
	s.mux.HandleFunc("GET /api/sessions/{id}/history", s.historyHandler)
	s.mux.HandleFunc("GET /api/sessions/{id}/recommendations", s.recommendationsHandler)
	s.mux.HandleFunc("POST /api/sessions/{id}/quick-reply", s.quickReplyHandler)
	s.mux.HandleFunc("POST /api/sessions/{id}/query", s.queryHandler)
	s.mux.HandleFunc("POST /api/sessions/{id}/contact", s.contactHandler)
	s.mux.HandleFunc("POST /api/sessions/{id}/restart", s.restartHandler)
	s.mux.HandleFunc("GET /api/leads", s.leadsHandler)
	s.mux.HandleFunc("GET /api/leads/{id}", s.leadHandler)
	s.mux.HandleFunc("GET /health", s.healthHandler)
	s.mux.Handle("GET /metrics", promhttp.Handler())
}

// Handler returns the server's HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Run starts the HTTP server and blocks until the context is canceled or the
// listener fails.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.addr,
		Handler:      s.mux,
		ReadTimeout:  DefaultReadTimeout,
		WriteTimeout: DefaultWriteTimeout,
		IdleTimeout:  DefaultIdleTimeout,
	}

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go s.sweepIdleSessions(sweepCtx)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("API server listening", "addr", s.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		slog.Info("API server shutting down")
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// getSession looks up an orchestrator by session id and refreshes its idle
// timer.
func (s *Server) getSession(id string) (*session.Orchestrator, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	entry.lastSeen = time.Now()
	return entry.orch, true
}

// createSession registers a new orchestrator and returns its id.
func (s *Server) createSession() (string, *session.Orchestrator) {
	id := uuid.NewString()
	o := s.newSession()
	s.mu.Lock()
	s.sessions[id] = &sessionEntry{orch: o, lastSeen: time.Now()}
	s.mu.Unlock()
	slog.Debug("Session created", "session_id", id)
	return id, o
}

// deleteSession removes a session. Reports whether it existed.
func (s *Server) deleteSession(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return false
	}
	delete(s.sessions, id)
	slog.Debug("Session deleted", "session_id", id)
	return true
}

// evictIdleSessions drops sessions untouched for longer than maxIdle and
// returns how many were removed.
func (s *Server) evictIdleSessions(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)
	s.mu.Lock()
	defer s.mu.Unlock()
	evicted := 0
	for id, entry := range s.sessions {
		if entry.lastSeen.Before(cutoff) {
			delete(s.sessions, id)
			evicted++
		}
	}
	if evicted > 0 {
		slog.Debug("Idle sessions evicted", "count", evicted, "remaining", len(s.sessions))
	}
	return evicted
}

// sweepIdleSessions periodically evicts idle sessions until ctx is canceled.
func (s *Server) sweepIdleSessions(ctx context.Context) {
	ticker := time.NewTicker(sessionSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.evictIdleSessions(DefaultSessionIdleTTL)
		}
	}
}
