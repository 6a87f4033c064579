package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
	"leasegen/internal/amqp"
	"leasegen/internal/config"
	"leasegen/internal/export"
	gsheet "leasegen/internal/export/google"
	"leasegen/internal/export/memory"
	"leasegen/internal/storage"
	"leasegen/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("Starting leasegen-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	var exporter export.ScheduleWriter
	switch cfg.ExportBackend {
	case "sheets":
		client, err := gsheet.NewFromEnv(context.Background())
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		exporter = client
		logger.Info("Google Sheets exporter initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	default:
		exporter = memory.New()
		logger.Info("Using in-memory schedule exporter")
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	archiveWorker := worker.NewArchiveWorker(repo, exporter, cfg.ArchiveDir, cfg.ArchiveBatchSize)

	// On startup, process any pending archives that might have been missed
	// while the worker was down.
	logger.Info("Performing startup archive check...")
	if err := archiveWorker.StartupArchiveCheck(ctx); err != nil {
		logger.Error("Failed startup archive check", "error", err)
		// Don't exit - continue with normal operation
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return amqpClient.ConsumeArchive(ctx, func(msg *amqp.ArchiveMessage) error {
			return archiveWorker.HandleArchiveMessage(ctx, msg)
		})
	})

	// Periodic sweep for pending archives in case AMQP messages were lost.
	g.Go(func() error {
		ticker := time.NewTicker(cfg.ArchiveInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				if err := archiveWorker.ProcessPendingArchives(ctx); err != nil {
					logger.Error("Periodic archive sweep failed", "error", err)
				}
			}
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}

	logger.Info("Worker shutdown complete")
}
