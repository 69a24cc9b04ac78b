package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"swiftgrab/internal/adapters/ffmpeg"
	"swiftgrab/internal/adapters/handlers"
	"swiftgrab/internal/adapters/reddit"
	"swiftgrab/internal/adapters/twitterx"
	"swiftgrab/internal/adapters/youtube"
	"swiftgrab/internal/config"
	"swiftgrab/internal/core/ports"
	"swiftgrab/internal/core/services"
)

func main() {
	log := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		log = log.Level(level)
	}

	// Adapters (driven)
	resolvers := []ports.Resolver{
		youtube.NewResolver(cfg.ResolveTimeout, log),
		reddit.NewResolver(cfg.ResolveTimeout, log),
		twitterx.NewResolver(),
	}
	transcoder := ffmpeg.NewTranscoder(cfg.FFmpegPath, log)

	// Core services
	validator := services.NewHostValidator(cfg.AllowedHosts)
	inspector := services.NewInspector(validator, resolvers, cfg.ResolveTimeout, log)
	deliverer := services.NewDelivery(validator, resolvers, transcoder, log)

	// Adapter (driving)
	httpHandler := handlers.NewHTTPHandler(inspector, deliverer, log)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(handlers.RequestLogger(log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	}))
	httpHandler.Register(r)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().Str("port", cfg.Port).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown incomplete, closing")
		_ = srv.Close()
	}
}
