// Package server implements the archlens report server.
//
// The server scans the configured source tree on first use and serves
// rendered views and module statistics over HTTP:
//
//	GET  /healthz                  liveness probe
//	GET  /views                    configured views
//	GET  /views/{name}.{format}    a rendered view (svg, dot, json, pdf, png)
//	GET  /modules                  modules with lines, churn and imports
//	POST /rescan                   scan the source tree again
//	GET  /snapshots                stored snapshots (when a store is attached)
//	POST /snapshots                store the current scan
//	GET  /snapshots/{from}/diff/{to}
//
// Rendered views accept the query parameters within, collapse, reduce and
// detailed, mirroring the view command's flags.
package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/archlens/pkg/buildinfo"
	"github.com/matzehuels/archlens/pkg/config"
	"github.com/matzehuels/archlens/pkg/pipeline"
	"github.com/matzehuels/archlens/pkg/store"
)

// Server serves reports for one source tree.
type Server struct {
	cfg    *config.Config
	runner *pipeline.Runner
	store  *store.Store
	logger *log.Logger

	mu   sync.Mutex
	scan *pipeline.Scan
}

// New returns a server for cfg. st may be nil, which disables the
// snapshot routes. A nil logger uses the default logger.
func New(cfg *config.Config, runner *pipeline.Runner, st *store.Store, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{cfg: cfg, runner: runner, store: st, logger: logger}
}

// Handler returns the HTTP handler with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(observe)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": buildinfo.Version})
	})
	r.Get("/views", s.handleViews)
	r.Get("/views/{name}.{format}", s.handleView)
	r.Get("/modules", s.handleModules)
	r.Post("/rescan", s.handleRescan)

	if s.store != nil {
		r.Route("/snapshots", func(r chi.Router) {
			r.Get("/", s.handleSnapshots)
			r.Post("/", s.handleSaveSnapshot)
			r.Get("/{from}/diff/{to}", s.handleDiff)
		})
	}
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("serving reports", "addr", addr, "root", s.cfg.Source.Root)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

// current returns the cached scan, scanning first if needed.
func (s *Server) current(ctx context.Context) (*pipeline.Scan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.scan != nil {
		return s.scan, nil
	}
	return s.rescanLocked(ctx)
}

func (s *Server) rescan(ctx context.Context) (*pipeline.Scan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rescanLocked(ctx)
}

func (s *Server) rescanLocked(ctx context.Context) (*pipeline.Scan, error) {
	scan, err := s.runner.Scan(ctx, pipeline.ScanOptions{
		Resolver:   s.cfg.Resolver(),
		Exclude:    s.cfg.Source.Exclude,
		Churn:      s.cfg.History.Churn,
		Repository: s.cfg.History.Repository,
	})
	if err != nil {
		return nil, err
	}
	s.scan = scan
	return scan, nil
}
