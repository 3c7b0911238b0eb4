// Package server exposes the habit manager as a JSON HTTP API.
package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/julianstephens/habitreel/internal/logger"
	"github.com/julianstephens/habitreel/internal/manager"
)

const shutdownTimeout = 5 * time.Second

type Server struct {
	mgr     *manager.Manager
	routes  *RouteRegistry
	handler http.Handler

	// writes serializes handlers that change habits or preferences.
	writes sync.Mutex
}

// New registers every route once. The handler is wrapped in the request id, recover and
// access log middlewares.
func New(mgr *manager.Manager) *Server {
	s := &Server{mgr: mgr, routes: &RouteRegistry{}}
	mux := http.NewServeMux()
	s.registerRoutes(mux)
	s.handler = Chain(mux, WithRequestID, WithRecover, WithAccessLog)
	return s
}

func (s *Server) Handler() http.Handler { return s.handler }

func (s *Server) Routes() []RouteDoc { return s.routes.List() }

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		// Photos for habits finished before the server started.
		if err := s.mgr.PrefetchRewards(gctx); err != nil && gctx.Err() == nil {
			logger.Warn("Reward prefetch failed", "error", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info("HTTP server shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
