package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/toBeOfUse/patreon-post-tracker/internal/domain"
)

// PostReader is the slice of the query service the HTTP surface needs.
type PostReader interface {
	GetPageData(ctx context.Context, req domain.PageRequest) (*domain.PageData, error)
	GetTotalCount(ctx context.Context) (int, error)
	GetLastRun(ctx context.Context) (*domain.Run, error)
}

// Server serves read-only JSON over the mirrored posts. Rendering the
// data into HTML is somebody else's job.
type Server struct {
	reader PostReader
	logger *slog.Logger
	http   *http.Server
}

func New(addr string, reader PostReader, logger *slog.Logger) *Server {
	s := &Server{
		reader: reader,
		logger: logger.With("component", "server"),
	}

	s.http = &http.Server{
		Addr:         addr,
		Handler:      s.routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return s
}

func (s *Server) routes() http.Handler {
	mux := chi.NewRouter()

	mux.Use(middleware.Recoverer)
	mux.Use(middleware.RequestID)
	mux.Use(middleware.RealIP)

	mux.Get("/healthz", s.handleHealth)

	mux.Route("/api", func(r chi.Router) {
		r.Get("/posts", s.handleGetPosts)
		r.Get("/posts/count", s.handleGetCount)
		r.Get("/runs/latest", s.handleGetLastRun)
	})

	return mux
}

func (s *Server) Start() error {
	s.logger.Info("http server listening", "addr", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
