package messaging

import (
	"context"
	"log/slog"
	"sync"

	"floorplan-backend/internal/event"
	"floorplan-backend/internal/pipeline"
)

// EventProcessor is what the worker drives for each delivered notification.
type EventProcessor interface {
	Process(ctx context.Context, ev event.UploadEvent) (pipeline.Result, error)
}

// Worker consumes upload notifications and runs the pipeline once per
// message. Malformed payloads are rejected outright; processing failures are
// nacked and left to the broker's redelivery policy.
type Worker struct {
	Processor   EventProcessor
	Receiver    Receiver
	Concurrency int
}

func (w *Worker) Start() *sync.WaitGroup {
	concurrency := w.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	var wg sync.WaitGroup
	wg.Add(concurrency)
	for i := 0; i < concurrency; i++ {
		go func(id int) {
			defer wg.Done()
			slog.Info("worker started", "worker", id)
			for task := range w.Receiver.Tasks() {
				w.handleTask(task)
			}
			slog.Info("worker stopped", "worker", id)
		}(i)
	}

	return &wg
}

func (w *Worker) handleTask(task Task) {
	ctx := context.Background()

	ev, err := event.DecodeJSON(task.Payload())
	if err != nil {
		slog.Error("discarding malformed upload notification", "error", err)
		if err := task.Reject(); err != nil {
			slog.Error("error rejecting task", "error", err)
		}
		return
	}

	if _, err := w.Processor.Process(ctx, ev); err != nil {
		slog.Error("failed to process upload", "bucket", ev.Bucket, "key", ev.Key, "error", err)
		if err := task.Nack(); err != nil {
			slog.Error("error nacking task", "bucket", ev.Bucket, "key", ev.Key, "error", err)
		}
		return
	}

	if err := task.Ack(); err != nil {
		slog.Error("error acking task", "bucket", ev.Bucket, "key", ev.Key, "error", err)
	}
}
