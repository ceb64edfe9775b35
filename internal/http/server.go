package httpserver

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/vladimiradmaev/protein-tracker/internal/auth"
	"github.com/vladimiradmaev/protein-tracker/internal/config"
)

// NewRouter registers every route on a gorilla/mux router
func NewRouter(h *Handler, verifier *auth.JWT, defaultLoc *time.Location, logger *slog.Logger) *mux.Router {
	r := mux.NewRouter()
	r.Use(LoggingMiddleware(logger))
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})

	r.HandleFunc("/healthz", h.HandleHealth).Methods(http.MethodGet)
	r.HandleFunc("/api/suggestion", h.HandleSuggestion).Methods(http.MethodPost)

	// Wrapped per route so method mismatches still reach the 405 handler.
	authed := AuthMiddleware(verifier, defaultLoc)
	r.Handle("/api/today", authed(http.HandlerFunc(h.HandleToday))).Methods(http.MethodGet)
	r.Handle("/api/entries", authed(http.HandlerFunc(h.HandleAddEntry))).Methods(http.MethodPost)
	r.Handle("/api/entries/{id}", authed(http.HandlerFunc(h.HandleDeleteEntry))).Methods(http.MethodDelete)

	return r
}

// Server is the HTTP front-end
type Server struct {
	srv             *http.Server
	shutdownTimeout time.Duration
	logger          *slog.Logger
}

func NewServer(cfg config.HTTPConfig, handler http.Handler, logger *slog.Logger) *Server {
	return &Server{
		srv: &http.Server{
			Addr:         cfg.Addr,
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		shutdownTimeout: cfg.ShutdownTimeout,
		logger:          logger,
	}
}

// Run serves until ctx is cancelled, then drains in-flight requests
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting HTTP server", "addr", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	s.logger.Info("Shutting down HTTP server")
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
