package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/zaikan-ops/zaikan/internal/api"
	"github.com/zaikan-ops/zaikan/internal/config"
	"github.com/zaikan-ops/zaikan/internal/events"
	"github.com/zaikan-ops/zaikan/internal/gemini"
	"github.com/zaikan-ops/zaikan/internal/pipeline"
	"github.com/zaikan-ops/zaikan/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	setupLogging(cfg.LogLevel)

	slog.Info("zaikan starting", "port", cfg.Port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	if cfg.DatabaseURL == "" {
		slog.Error("DATABASE_URL is required")
		os.Exit(1)
	}
	db, err := store.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.EnsureSchema(ctx); err != nil {
		slog.Error("failed to ensure schema", "error", err)
		os.Exit(1)
	}
	slog.Info("database connected")

	if cfg.AdminPassword != "" {
		if err := db.SeedAdmin(ctx, cfg.AdminUser, cfg.AdminPassword); err != nil {
			slog.Error("failed to seed admin user", "error", err)
			os.Exit(1)
		}
	}

	// Gemini client — the key is checked per request so the service can boot
	// without one, but warn loudly since every parse will fail.
	if cfg.GeminiAPIKey == "" {
		slog.Warn("GEMINI_API_KEY not configured — parse requests will fail")
	}
	llm := gemini.NewClient(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiProxyURL)
	slog.Info("gemini client ready", "model", cfg.GeminiModel, "proxied", cfg.GeminiProxyURL != "")

	// Event publisher (optional — zaikan works without a broker, just no
	// commit events for downstream listeners)
	var publisher *events.Publisher
	if cfg.NatsURL != "" {
		publisher, err = events.NewPublisher(cfg.NatsURL, cfg.NatsToken, slog.Default())
		if err != nil {
			slog.Error("failed to connect to NATS", "error", err)
			os.Exit(1)
		}
		defer publisher.Close()
		slog.Info("NATS connected", "url", cfg.NatsURL)
	} else {
		slog.Warn("NATS not configured — running without commit events")
	}

	// Pipeline — parse, stage, reconcile, commit
	pipe := pipeline.New(db, llm, publisher, slog.Default())

	// HTTP API
	srv := api.NewServer(cfg.Port, cfg.APIToken, pipe)
	go func() {
		if err := srv.Start(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	// Announce registration
	if publisher != nil {
		if err := publisher.Publish(events.SubjectRegistered, map[string]any{
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"port":      cfg.Port,
		}); err != nil {
			slog.Warn("failed to publish registration", "error", err)
		}
	}

	slog.Info("zaikan ready", "port", cfg.Port)

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	slog.Info("shutting down")
	cancel()
	slog.Info("zaikan stopped")
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
