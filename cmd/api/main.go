package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"floorplan-backend/cmd"
	"floorplan-backend/internal/api"
	"floorplan-backend/internal/config"
	"floorplan-backend/internal/database"
	"floorplan-backend/internal/messaging"
	"floorplan-backend/internal/pipeline"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func main() {
	log.Println("Starting API Server...")

	cmd.LoadEnvFile()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.DatabaseURL == "" {
		log.Fatalf("DATABASE_URL is required for the API server")
	}

	db, err := database.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	ctx := context.Background()

	store := cmd.CreateObjectStore(cfg)
	analyzer := cmd.CreateAnalyzer(ctx, cfg)
	generator := cmd.CreateGenerator(ctx, cfg)

	var publisher messaging.Publisher
	if cfg.RabbitMQURL != "" {
		rabbit, err := messaging.NewRabbitMQPublisher(cfg.RabbitMQURL)
		if err != nil {
			log.Fatalf("Failed to connect to RabbitMQ: %v", err)
		}
		defer rabbit.Close()
		publisher = rabbit
	} else {
		// No broker configured: run uploads through the pipeline in-process.
		queue := messaging.NewInMemoryQueue()
		defer queue.Close()

		worker := messaging.Worker{
			Processor:   pipeline.New(store, analyzer, generator, db, cfg),
			Receiver:    queue,
			Concurrency: cfg.WorkerConcurrency,
		}
		worker.Start()
		publisher = queue
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(5 * time.Minute))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
	}))

	apiHandler := api.NewBackendService(db, publisher, pipeline.New(store, analyzer, generator, db, cfg))
	apiHandler.AddRoutes(r)

	server := &http.Server{
		Addr:    ":" + cfg.APIPort,
		Handler: r,
	}

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("Shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			log.Fatalf("Server forced to shutdown: %v", err)
		}
	}()

	log.Printf("API server listening on port %s", cfg.APIPort)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Could not listen on %s: %v\n", cfg.APIPort, err)
	}

	log.Println("Server stopped.")
}
