package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/santoshbirajdar/streamsanto/internal/api"
	"github.com/santoshbirajdar/streamsanto/internal/blob"
	"github.com/santoshbirajdar/streamsanto/internal/cache"
	"github.com/santoshbirajdar/streamsanto/internal/catalog"
	"github.com/santoshbirajdar/streamsanto/internal/config"
	"github.com/santoshbirajdar/streamsanto/internal/media"
	"github.com/santoshbirajdar/streamsanto/internal/server"
	"github.com/santoshbirajdar/streamsanto/internal/session"
	"github.com/santoshbirajdar/streamsanto/internal/streaming"
	"github.com/santoshbirajdar/streamsanto/internal/upload"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger := setupLogger(cfg.Logging)

	logger.Info().
		Str("version", api.Version).
		Msg("starting StreamSanto server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Catalog storage
	store, err := catalog.NewSQLiteCatalog(cfg.Database.Path)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open catalog database")
	}
	defer store.Close()

	// Blob storage for uploaded videos
	var blobs blob.Store
	var streamer *streaming.Handler
	switch cfg.Storage.Backend {
	case "gcs":
		gcs, err := blob.NewGCSStore(ctx, cfg.Storage.Bucket)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to GCS")
		}
		defer gcs.Close()
		blobs = gcs
		logger.Info().Str("bucket", cfg.Storage.Bucket).Msg("using GCS blob storage")
	default:
		local, err := blob.NewLocalStore(cfg.Storage.Dir, cfg.Storage.BaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to prepare local blob storage")
		}
		blobs = local
		streamer = streaming.NewHandler(local.Root())
		logger.Info().Str("dir", cfg.Storage.Dir).Msg("using local blob storage")
	}

	// Session identity for uploads
	var sessions session.Provider
	if cfg.Session.UserID != "" {
		sessions = session.NewStaticProvider(session.User{
			UserID:      cfg.Session.UserID,
			DisplayName: cfg.Session.DisplayName,
			AvatarURL:   cfg.Session.AvatarURL,
		})
	} else {
		sessions = session.NewAnonymousProvider()
	}

	// Media tooling
	metadataExtractor := media.NewMetadataExtractor(logger)
	thumbnailGenerator := media.NewThumbnailGenerator(cfg.Thumbnails.OutputDir, logger)

	if metadataExtractor.IsAvailable() {
		logger.Info().Msg("ffprobe available - duration probing enabled")
	} else {
		logger.Warn().Msg("ffprobe not found - duration probing disabled")
	}
	if thumbnailGenerator.IsAvailable() {
		logger.Info().Msg("ffmpeg available - thumbnail generation enabled")
	} else {
		logger.Warn().Msg("ffmpeg not found - thumbnail generation disabled")
	}

	thumbCache := cache.NewLRU(cfg.Thumbnails.CacheCapacity, cfg.Thumbnails.CacheMaxSize)

	// Catalog services
	liveSync := catalog.NewSync(store, logger)
	liveSync.Start(ctx)

	publisher := catalog.NewPublisher(store, logger)
	pipeline := upload.NewPipeline(blobs, cfg.Storage.Namespace, logger)

	if cfg.Sweeper.Enabled {
		sweeper := catalog.NewSweeper(store, blobs, cfg.Storage.Namespace, cfg.Sweeper.Grace, logger)
		go sweeper.Run(ctx, cfg.Sweeper.Interval)
	}

	// HTTP surface
	handler := api.NewHandler(liveSync, publisher, store, pipeline, sessions, logger, cfg.Storage.MaxUploadSize)
	handler.SetMediaTools(metadataExtractor, thumbnailGenerator, thumbCache)
	if streamer != nil {
		handler.SetStreamer(streamer)
	}

	srv := server.New(cfg, logger, handler)

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		logger.Info().Msg("received shutdown signal")
		cancel()

		if err := srv.Shutdown(context.Background()); err != nil {
			logger.Error().Err(err).Msg("shutdown error")
		}
	}()

	if err := srv.Start(); err != nil {
		logger.Error().Err(err).Msg("server error")
	}

	logger.Info().Msg("server stopped")
}

func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(level)

	if cfg.Pretty {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).
			With().
			Timestamp().
			Logger()
	}

	return zerolog.New(os.Stdout).
		With().
		Timestamp().
		Logger()
}
