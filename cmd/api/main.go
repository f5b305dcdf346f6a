package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dvloznov/smsspend/internal/api/handlers"
	"github.com/dvloznov/smsspend/internal/api/middleware"
	"github.com/dvloznov/smsspend/internal/app"
	"github.com/dvloznov/smsspend/internal/config"
	"github.com/dvloznov/smsspend/internal/logger"
)

func main() {
	cfg := config.Load()

	// Parse command-line flags
	var (
		port    = flag.String("port", cfg.Port, "HTTP server port (or set PORT env)")
		backend = flag.String("backend", cfg.BlobBackend, "Blob backend: file, sqlite, gcs or memory (or set BLOB_BACKEND env)")
		dataDir = flag.String("data-dir", cfg.DataDir, "Directory for the file backend (or set DATA_DIR env)")
	)
	flag.Parse()
	cfg.Port = *port
	cfg.BlobBackend = *backend
	cfg.DataDir = *dataDir

	// Initialize logger
	log := logger.NewWithOptions(logger.Options{
		Level:     cfg.LogLevel,
		Format:    cfg.LogFormat,
		Component: "api",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize tracker")
	}
	defer a.Close()

	// Create router
	mux := http.NewServeMux()
	handlers.NewTransactionsHandler(a.Tracker).Register(mux)

	// Apply middleware
	handler := middleware.Chain(mux,
		middleware.Recovery(log),
		middleware.RequestID,
		middleware.Logger(log),
		middleware.CORS,
	)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("port", cfg.Port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutting down server...")

		// Graceful shutdown
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Server stopped with error")
		a.Close()
		os.Exit(1)
	}

	log.Info().Msg("Server exited")
}
