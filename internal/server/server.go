// Package server exposes the dungeon pipeline over HTTP.
//
// Routes:
//
//	POST   /api/v1/dungeons                      generate (and optionally fit) a dungeon
//	GET    /api/v1/dungeons                      list stored dungeon IDs
//	GET    /api/v1/dungeons/{id}                 fetch a stored document
//	DELETE /api/v1/dungeons/{id}                 delete a stored document
//	POST   /api/v1/dungeons/{id}/fit?fitter=     fit a stored dungeon again
//	GET    /api/v1/dungeons/{id}/render/{format} render a stored document
//	GET    /api/v1/version                       build version, commit and date
//	GET    /healthz                              liveness probe
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/n8l/dungeonmap/pkg/pipeline"
	"github.com/n8l/dungeonmap/pkg/storage"
)

const (
	maxBodyBytes    = 1 << 20
	shutdownTimeout = 10 * time.Second
)

// Server serves the HTTP API.
type Server struct {
	Runner *pipeline.Runner
	Store  storage.Store
	Logger *log.Logger

	// Defaults are applied to generate requests before the request body.
	Defaults pipeline.Options
}

// New creates a server. A nil logger discards output.
func New(runner *pipeline.Runner, store storage.Store, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Server{Runner: runner, Store: store, Logger: logger}
}

// Handler returns the routed API.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", s.handleHealth)
	r.Get("/api/v1/version", s.handleVersion)
	r.Route("/api/v1/dungeons", func(r chi.Router) {
		r.Post("/", s.handleCreate)
		r.Get("/", s.handleList)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGet)
			r.Delete("/", s.handleDelete)
			r.Post("/fit", s.handleFit)
			r.Get("/render/{format}", s.handleRender)
		})
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string, readTimeout, writeTimeout time.Duration) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		s.Logger.Info("server listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
