// Package server exposes the extraction pipeline over HTTP. It owns
// method/CORS validation and status-code mapping; extraction semantics
// live in the tiktok package.
package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"tikrip/internal/history"
	"tikrip/internal/media"
	"tikrip/internal/tiktok"
)

// extractor is the capability the server needs from the pipeline.
type extractor interface {
	Extract(ctx context.Context, url string) media.Result
}

var _ extractor = (*tiktok.Scraper)(nil)

// recorder persists successful extractions. Nil disables recording.
type recorder interface {
	Record(history.Entry) error
}

var _ recorder = (*history.Store)(nil)

// Server wires the router, the pipeline, and the optional history store.
type Server struct {
	scraper extractor
	store   recorder
	logger  *slog.Logger
}

// New creates a server. logW receives the structured log stream; store
// may be nil when history is disabled.
func New(scraper extractor, store recorder, logW io.Writer) *Server {
	return &Server{
		scraper: scraper,
		store:   store,
		logger:  slog.New(slog.NewJSONHandler(logW, nil)),
	}
}

// Router builds the HTTP routes.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.recoverMiddleware, s.requestIDMiddleware, s.logMiddleware, corsMiddleware)

	r.HandleFunc("/api/extract", s.handleExtract).Methods(http.MethodGet, http.MethodPost, http.MethodOptions)
	r.HandleFunc("/api/health", s.handleHealth).Methods(http.MethodGet)
	r.MethodNotAllowedHandler = http.HandlerFunc(handleMethodNotAllowed)

	return r
}

// ListenAndServe runs the server until the listener fails.
func (s *Server) ListenAndServe(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		// Extraction worst case is the sum of all strategy timeouts.
		WriteTimeout: 60 * time.Second,
	}
	s.logger.Info("listening", "addr", addr)
	return srv.ListenAndServe()
}
