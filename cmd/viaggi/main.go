package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"viaggi/internal/config"
	apphttp "viaggi/internal/http"
	applog "viaggi/internal/log"
	"viaggi/internal/services"
	"viaggi/internal/storage"
)

func main() {
	// Load .env for local development (ignore errors elsewhere)
	_ = godotenv.Load()

	cfg := config.Load()
	applog.Setup(cfg.LogLevel)

	slog.Info("Starting viaggi")

	if err := cfg.Validate(); err != nil {
		slog.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to open ledger store", "error", err, "path", cfg.DBPath)
		os.Exit(1)
	}
	defer store.Close()

	ledger := services.NewLedger(store)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := ledger.Bootstrap(ctx); err != nil {
		slog.Error("Bootstrap failed", "error", err)
		os.Exit(1)
	}

	srv := apphttp.NewServer(":"+cfg.Port, ledger)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("HTTP server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		slog.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		slog.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
	slog.Info("Stopped")
}
