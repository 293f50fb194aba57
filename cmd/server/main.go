package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tendant/simple-social/pkg/simplesocial"
	"github.com/tendant/simple-social/pkg/simplesocial/api"
	"github.com/tendant/simple-social/pkg/simplesocial/auth"
	"github.com/tendant/simple-social/pkg/simplesocial/config"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	level := slog.LevelInfo
	if cfg.Environment == "development" {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	repo, closeRepo, err := cfg.BuildRepository(ctx)
	cancel()
	if err != nil {
		return fmt.Errorf("failed to build repository: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := closeRepo(closeCtx); err != nil {
			slog.Error("failed to close repository", "error", err)
		}
	}()

	notifier, stopNotifier, err := cfg.BuildNotifier()
	if err != nil {
		return fmt.Errorf("failed to build notifier: %w", err)
	}

	authService, err := auth.New(repo, []byte(cfg.TokenSecret), cfg.TokenTTL())
	if err != nil {
		return fmt.Errorf("failed to build auth service: %w", err)
	}

	svc, err := simplesocial.New(
		simplesocial.WithRepository(repo),
		simplesocial.WithNotifier(notifier),
		simplesocial.WithImageGenerator(cfg.BuildImageGenerator()),
	)
	if err != nil {
		return fmt.Errorf("failed to build service: %w", err)
	}

	router := api.NewRouter(svc, authService, api.RouterConfig{ProxyAPIKey: cfg.ProxyAPIKey})

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("simple-social server starting",
			"port", cfg.Port,
			"environment", cfg.Environment,
			"database", cfg.DatabaseType,
			"smtp_enabled", cfg.SMTP.Enabled)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		stopNotifier()
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		slog.Info("shutting down", "signal", sig.String())
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		stopNotifier()
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	// Stop the notifier after the HTTP server so in-flight requests can
	// still enqueue notifications.
	stopNotifier()

	slog.Info("server exited")
	return nil
}
