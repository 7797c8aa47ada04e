package site

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/normal-ex/letrecovery-web/internal/config"
	"github.com/normal-ex/letrecovery-web/internal/content"
)

// Server serves the website.
type Server struct {
	cfg     config.ServerConfig
	site    *content.Site
	license template.HTML
	logger  *slog.Logger
	now     func() time.Time

	pages      map[string]*template.Template
	stylesheet []byte
	router     chi.Router
}

// New creates a Server for the given content.
func New(cfg config.ServerConfig, site *content.Site, license template.HTML, logger *slog.Logger) (*Server, error) {
	if site == nil {
		return nil, errors.New("site content is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	pages, err := parsePages(embedded)
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	css, err := bundleStylesheet(staticFS(), stylesheetEntry)
	if err != nil {
		return nil, fmt.Errorf("failed to bundle stylesheet: %w", err)
	}

	s := &Server{
		cfg:        cfg,
		site:       site,
		license:    license,
		logger:     logger,
		now:        time.Now,
		pages:      pages,
		stylesheet: []byte(css),
	}
	s.router = s.routes()
	return s, nil
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout.Duration(),
		WriteTimeout: s.cfg.WriteTimeout.Duration(),
		ErrorLog:     slog.NewLogLogger(s.logger.Handler(), slog.LevelWarn),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout.Duration())
	defer cancel()

	s.logger.Info("shutting down", "timeout", s.cfg.ShutdownTimeout.Duration())
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}

	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
