package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/tendant/schoolsite/pkg/schoolsite/api"
	"github.com/tendant/schoolsite/pkg/schoolsite/config"
	repopg "github.com/tendant/schoolsite/pkg/schoolsite/repo/postgres"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := config.Load(config.WithEnv())
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}

func newLogger(cfg *config.ServerConfig) *slog.Logger {
	if cfg.IsDevelopment() {
		return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
			Level:      slog.LevelDebug,
			TimeFormat: time.Kitchen,
		}))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

func run(cfg *config.ServerConfig, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	comps, err := cfg.BuildService(ctx, logger)
	if err != nil {
		return fmt.Errorf("failed to build service: %w", err)
	}
	defer comps.Close()

	if pg, ok := comps.Repository.(*repopg.Repository); ok && cfg.AutoMigrate {
		if err := pg.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to migrate: %w", err)
		}
		logger.Info("database schema applied")
	}

	handler := api.NewRouter(api.RouterConfig{
		Service: comps.Service,
		Logger:  logger.With("component", "http"),
		CORS: api.CORSConfig{
			AllowedOrigins: config.NormalizeOrigins(cfg.CORSAllowedOrigins),
			AllowAll:       cfg.IsDevelopment(),
		},
		NormalizeOrigin: config.NormalizeOrigin,
		AdminSecret:     cfg.AdminJWTSecret,
		MediaURL:        cfg.MediaURL,
		MediaRoot:       cfg.MediaRoot,
		Debug:           cfg.IsDevelopment(),
	})

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("School site server starting", "config", cfg)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	logger.Info("Server exiting")
	return nil
}
