package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/msg2-etl/internal/adapter/archive"
	httpadapter "github.com/couchcryptid/msg2-etl/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/msg2-etl/internal/adapter/kafka"
	"github.com/couchcryptid/msg2-etl/internal/config"
	"github.com/couchcryptid/msg2-etl/internal/observability"
	"github.com/couchcryptid/msg2-etl/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	reader := kafkaadapter.NewReader(cfg, logger)
	writer := kafkaadapter.NewWriter(cfg, logger)
	transformer := pipeline.NewTransformer(logger, metrics)

	// Archive is feature-flagged via ARCHIVE_ENABLED / ARCHIVE_PATH.
	var (
		loader  pipeline.BatchLoader = writer
		records httpadapter.RecordLookup
		store   *archive.Store
	)
	if cfg.ArchiveEnabled {
		store, err = archive.Open(cfg.ArchivePath, archive.Options{Logger: logger, Metrics: metrics})
		if err != nil {
			logger.Error("failed to open archive", "error", err, "path", cfg.ArchivePath)
			os.Exit(1)
		}
		loader = pipeline.MultiLoader{writer, store}
		records = archive.NewCachedGetter(store, cfg.ArchiveCacheSize)
		logger.Info("archive enabled", "path", cfg.ArchivePath, "cache_size", cfg.ArchiveCacheSize)
	} else {
		logger.Info("archive disabled")
	}

	p := pipeline.New(reader, transformer, loader, logger, metrics, cfg.BatchSize)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, records, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	select {
	case <-done:
	case <-shutdownCtx.Done():
		logger.Warn("pipeline did not stop before shutdown timeout")
	}
	if err := reader.Close(); err != nil {
		logger.Error("kafka reader close error", "error", err)
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}
	if store != nil {
		if err := store.Close(); err != nil {
			logger.Error("archive close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
