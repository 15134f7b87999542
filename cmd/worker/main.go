package main

import (
	"context"
	"flag"
	"log"

	"rentshare-backend/internal/bootstrap"
	"rentshare-backend/internal/config"
	"rentshare-backend/internal/logger"
	"rentshare-backend/internal/tasks"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
)

func main() {
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	concurrency := flag.Int("concurrency", 10, "Number of tasks processed in parallel")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.InitializeWithFile(cfg.Log.Level, cfg.Log.Format, cfg.Log.File)
	logger.Info("Starting RentShare Notification Worker...", "redis", cfg.Redis.Addr, "concurrency", *concurrency)

	ctx := context.Background()
	db, err := bootstrap.OpenDatabase(ctx, cfg)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	app, err := bootstrap.New(ctx, cfg, db)
	if err != nil {
		logger.Error("Failed to initialize services", "error", err)
		log.Fatalf("Failed to initialize services: %v", err)
	}
	defer app.Close()

	srv := asynq.NewServer(bootstrap.RedisClientOpt(cfg), asynq.Config{
		Concurrency: *concurrency,
		Queues: map[string]int{
			tasks.QueueDefault: 1,
		},
		Logger: tasks.NewLogger(),
	})

	// Run blocks until SIGTERM or SIGINT.
	if err := srv.Run(tasks.NewServeMux(app.Notification)); err != nil {
		logger.Error("Worker stopped with error", "error", err)
		log.Fatalf("Worker failed: %v", err)
	}
	logger.Info("Worker stopped. Goodbye!")
}
