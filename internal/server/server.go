package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/santoshbirajdar/streamsanto/internal/api"
	"github.com/santoshbirajdar/streamsanto/internal/config"
)

type Server struct {
	cfg        *config.Config
	logger     zerolog.Logger
	httpServer *http.Server
	router     *chi.Mux
	handler    *api.Handler
}

func New(cfg *config.Config, logger zerolog.Logger, handler *api.Handler) *Server {
	s := &Server{
		cfg:     cfg,
		logger:  logger,
		handler: handler,
	}

	s.router = chi.NewRouter()
	s.setupMiddleware()
	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      s.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(CORSMiddleware)
	s.router.Use(LoggingMiddleware(s.logger))
}

func (s *Server) setupRoutes() {
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handler.Health)

		r.Get("/videos", s.handler.ListVideos)
		r.Get("/videos/feed", s.handler.VideoFeed)
		r.Post("/videos", s.handler.UploadVideo)
		r.Get("/videos/{id}", s.handler.GetVideo)
		r.Post("/videos/{id}/view", s.handler.RecordView)

		r.Get("/uploads/session", s.handler.GetUploadSession)
		r.Post("/uploads/cancel", s.handler.CancelUpload)

		// Playback progress
		r.Post("/playback/{id}/position", s.handler.SavePlaybackPosition)
		r.Get("/playback/{id}/position", s.handler.GetPlaybackPosition)

		r.Get("/thumbnails/{key}", s.handler.GetThumbnail)
		r.Get("/media/*", s.handler.StreamMedia)
	})
}

func (s *Server) Start() error {
	s.logger.Info().
		Str("addr", s.httpServer.Addr).
		Msg("starting server")

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	return s.httpServer.Shutdown(shutdownCtx)
}
