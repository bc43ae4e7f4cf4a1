// Package server exposes the contract pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/contractops/contracts-tracker/internal/auth"
	"github.com/contractops/contracts-tracker/internal/common"
	"github.com/contractops/contracts-tracker/internal/export"
	"github.com/contractops/contracts-tracker/internal/extract"
	"github.com/contractops/contracts-tracker/internal/repository"
)

type Server struct {
	cfg      common.ServerConfig
	ingest   common.IngestConfig
	extract  *extract.Service
	repo     repository.ContractRepository
	exporter *export.Service
	auth     *auth.Service
	logger   *slog.Logger

	http *http.Server
}

func New(
	cfg common.ServerConfig,
	ingestCfg common.IngestConfig,
	svc *extract.Service,
	repo repository.ContractRepository,
	exporter *export.Service,
	authSvc *auth.Service,
	logger *slog.Logger,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		cfg:      cfg,
		ingest:   ingestCfg,
		extract:  svc,
		repo:     repo,
		exporter: exporter,
		auth:     authSvc,
		logger:   logger,
	}
	s.http = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Post("/login", s.handleLogin)
		r.Post("/extract", s.handleExtract)
		r.Post("/contracts", s.handleUpload)
		r.Get("/contracts", s.handleList)
		r.Get("/contracts/{id}/file", s.handleDownload)
		r.Get("/contracts/{id}/cedula", s.handleCedula)
		r.Delete("/contracts/{id}", s.handleDelete)
		r.Get("/stats", s.handleStats)
	})
	return r
}

// ListenAndServe blocks until the context is cancelled, then shuts the
// server down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http serving", "addr", s.cfg.Addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	return s.http.Shutdown(shutdownCtx)
}
