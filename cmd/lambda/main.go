package main

import (
	"context"
	"log"

	"floorplan-backend/cmd"
	"floorplan-backend/internal/config"
	"floorplan-backend/internal/event"
	"floorplan-backend/internal/pipeline"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
)

// handler wires bucket notifications straight into the pipeline. There is no
// database in this deployment; job history lives in the worker/API variant.
type handler struct {
	pipeline *pipeline.Pipeline
}

func (h *handler) handle(ctx context.Context, notification events.S3Event) (pipeline.Result, error) {
	ev, err := event.Decode(notification)
	if err != nil {
		return pipeline.Result{}, err
	}
	return h.pipeline.Process(ctx, ev)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	store := cmd.CreateObjectStore(cfg)
	analyzer := cmd.CreateAnalyzer(ctx, cfg)
	generator := cmd.CreateGenerator(ctx, cfg)

	h := handler{pipeline: pipeline.New(store, analyzer, generator, nil, cfg)}
	lambda.Start(h.handle)
}
