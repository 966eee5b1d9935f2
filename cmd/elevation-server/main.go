// Command elevation-server serves SRTM-derived elevation queries over
// HTTP, backed by a file, HTTP, or S3 tile store.
//
// Grounded on mohammed-shakir-h3-spatial-cache's cmd/baseline-server/main.go
// startup/signal-shutdown shape, wiring this service's own config, logger,
// tile loader, cache, elevation service, and router in place of that
// binary's GeoServer proxy.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/racemap/elevation-service/internal/config"
	"github.com/racemap/elevation-service/internal/elevation"
	"github.com/racemap/elevation-service/internal/httpapi"
	"github.com/racemap/elevation-service/internal/logger"
	"github.com/racemap/elevation-service/internal/observability"
	"github.com/racemap/elevation-service/internal/tilecache"
	"github.com/racemap/elevation-service/internal/tileloader"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	zl := logger.Build(logger.Config{Level: cfg.LogLevel, Component: "elevation-service"}, os.Stdout)
	slogger := logger.NewSlog(&zl)

	slogger.Info("starting elevation-service",
		"tile_set_path", cfg.TileSetPath,
		"tile_set_cache", cfg.TileSetCache,
		"max_post_size", cfg.MaxPostSize,
		"max_parallel_processing", cfg.MaxParallelProcessing,
		"max_concurrent_handlers", cfg.MaxConcurrentHandlers,
		"port", cfg.Port,
		"bind", cfg.Bind,
	)

	registry := prometheus.NewRegistry()
	observability.Init(registry, true)

	loader, err := tileloader.New(cfg.TileSetPath, tileloader.Options{
		Gzip: true,
		S3: tileloader.S3Options{
			Bucket:          cfg.S3Bucket,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			Region:          cfg.S3Region,
		},
	})
	if err != nil {
		return fmt.Errorf("build tile loader: %w", err)
	}

	cache, err := tilecache.New(cfg.TileSetCache)
	if err != nil {
		return fmt.Errorf("build tile cache: %w", err)
	}

	svc := elevation.New(loader, cache)

	router := httpapi.NewRouter(svc, slogger, httpapi.Options{
		MaxPostSize:           cfg.MaxPostSize,
		MaxParallelProcessing: cfg.MaxParallelProcessing,
		MaxConcurrentHandlers: cfg.MaxConcurrentHandlers,
	})

	mux := http.NewServeMux()
	mux.Handle("/", router)
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	addr := fmt.Sprintf("%s:%d", cfg.Bind, cfg.Port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErrCh := make(chan error, 1)
	go func() {
		slogger.Info("http listen", "addr", addr)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
		}
	}()

	shutdownSignalCh := make(chan os.Signal, 1)
	signal.Notify(shutdownSignalCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-shutdownSignalCh:
		slogger.Info("signal received, shutting down", "signal", sig.String())
	case err := <-serverErrCh:
		slogger.Error("server error", "err", err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slogger.Error("graceful shutdown failed", "err", err)
	}
	slogger.Info("server stopped")
	return nil
}
