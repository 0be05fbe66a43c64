package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"floorplan-backend/cmd"
	"floorplan-backend/internal/config"
	"floorplan-backend/internal/database"
	"floorplan-backend/internal/messaging"
	"floorplan-backend/internal/pipeline"

	"gorm.io/gorm"
)

func main() {
	log.Println("Starting Worker Process...")

	cmd.LoadEnvFile()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.RabbitMQURL == "" {
		log.Fatalf("RABBITMQ_URL is required for the worker")
	}

	var db *gorm.DB
	if cfg.DatabaseURL != "" {
		db, err = database.NewDatabase(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
	}

	ctx := context.Background()

	store := cmd.CreateObjectStore(cfg)
	analyzer := cmd.CreateAnalyzer(ctx, cfg)
	generator := cmd.CreateGenerator(ctx, cfg)

	receiver, err := messaging.NewRabbitMQReceiver(cfg.RabbitMQURL)
	if err != nil {
		log.Fatalf("Failed to connect to RabbitMQ: %v", err)
	}

	worker := messaging.Worker{
		Processor:   pipeline.New(store, analyzer, generator, db, cfg),
		Receiver:    receiver,
		Concurrency: cfg.WorkerConcurrency,
	}
	wg := worker.Start()

	log.Println("Worker started. Waiting for tasks. Press Ctrl+C to exit.")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutdown signal received, waiting for workers to finish...")
	receiver.Close()
	wg.Wait()

	log.Println("Worker process stopped.")
}
