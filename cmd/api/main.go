package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nikhilbhutani/voicebridge/internal/api"
	"github.com/nikhilbhutani/voicebridge/internal/app"
	"github.com/nikhilbhutani/voicebridge/internal/config"
	"github.com/nikhilbhutani/voicebridge/internal/history"
	"github.com/nikhilbhutani/voicebridge/internal/storage"
)

const historyLimit = 1000

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// Redis connection (optional)
	var rdb *redis.Client
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		slog.Warn("redis unavailable, running without translation cache", "error", err)
		client.Close()
	} else {
		rdb = client
		defer rdb.Close()
	}

	// Artifact storage (optional)
	var store storage.Storage
	if cfg.Storage.StorageEnabled() {
		s, err := storage.NewMinioStorage(cfg.Storage)
		if err != nil {
			slog.Warn("storage unavailable, audio will not be uploaded", "error", err)
		} else if err := s.EnsureBucket(ctx); err != nil {
			slog.Warn("storage bucket unavailable, audio will not be uploaded", "bucket", cfg.Storage.Bucket, "error", err)
		} else {
			store = s
		}
	}

	synth := app.NewSynthesis(cfg.Speech)
	if !synth.Probe.Capable(ctx) {
		slog.Warn("ffmpeg not found, multi-sentence text will be voiced in one pass", "bin", synth.Probe.Bin())
	}
	if !synth.Premium.Configured() {
		slog.Info("premium speech not configured, using standard voice")
	}

	transcriber := app.NewSTT(cfg.STT)
	if transcriber == nil {
		slog.Warn("transcription disabled, set OPENAI_API_KEY or STT_BACKEND=local", "backend", cfg.STT.Backend)
	}

	router := api.NewRouter(cfg, api.Services{
		Redis:      rdb,
		Probe:      synth.Probe,
		Synth:      synth.Orchestrator,
		Translator: app.NewTranslator(cfg.Translate, rdb),
		STT:        transcriber,
		History:    history.NewStore(historyLimit),
		Storage:    store,
		Premium:    synth.Premium,
	})
	handler := router.Setup()

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: time.Duration(cfg.Server.RequestTimeout+10) * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("starting API server", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced shutdown", "error", err)
	}
	slog.Info("server stopped")
}
