package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/hibiken/asynq"

	"github.com/nyayalaya/casefile/internal/cases"
	"github.com/nyayalaya/casefile/internal/config"
	"github.com/nyayalaya/casefile/internal/database"
	"github.com/nyayalaya/casefile/internal/ocr"
	"github.com/nyayalaya/casefile/internal/queue"
	"github.com/nyayalaya/casefile/internal/queue/workers"
	"github.com/nyayalaya/casefile/internal/storage"
)

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

	db, err := database.NewPool(ctx, cfg.Database)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	store := storage.NewSupabaseStorage(cfg.Storage.SupabaseURL, cfg.Storage.SupabaseKey)
	caseSvc := cases.NewService(db, store, cfg.Storage.Bucket)
	// The dispatcher never enqueues, so no queue client is wired here.
	scheduler := ocr.NewService(db, caseSvc, nil, cfg.OCR.Engine)

	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
		},
	)

	registry := queue.NewHandlersRegistry()

	dispatchWorker := workers.NewOCRDispatchWorker(
		scheduler, store, cfg.Storage.Bucket, cfg.OCR.EngineURL, cfg.OCR.WorkerToken,
	)
	registry.Register(queue.TypeOCRDispatch, asynq.HandlerFunc(dispatchWorker.ProcessTask))

	slog.Info("starting worker", "concurrency", 10)
	if err := srv.Run(registry.Mux()); err != nil {
		slog.Error("worker error", "error", err)
		os.Exit(1)
	}
}
