package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"floorplan-backend/internal/event"
	"floorplan-backend/internal/pipeline"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingProcessor struct {
	mu     sync.Mutex
	events []event.UploadEvent
	err    error
}

func (p *recordingProcessor) Process(ctx context.Context, ev event.UploadEvent) (pipeline.Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return pipeline.Result{StatusCode: 200}, p.err
}

func (p *recordingProcessor) processed() []event.UploadEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]event.UploadEvent(nil), p.events...)
}

func startWorker(t *testing.T, processor EventProcessor, queue *InMemoryQueue) {
	t.Helper()
	worker := &Worker{Processor: processor, Receiver: queue, Concurrency: 1}
	wg := worker.Start()
	t.Cleanup(func() {
		queue.Close()
		wg.Wait()
	})
}

func publishAndDrain(t *testing.T, queue *InMemoryQueue, task *inMemoryTask) {
	t.Helper()
	queue.tasks <- task
	require.Eventually(t, func() bool {
		acked, nacked, rejected := task.settled()
		return acked || nacked || rejected
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWorkerProcessesAndAcks(t *testing.T) {
	queue := NewInMemoryQueue()
	processor := &recordingProcessor{}
	startWorker(t, processor, queue)

	notification := event.Notification("uploads", "room 1.png")
	require.NoError(t, queue.PublishUploadEvent(context.Background(), notification))

	require.Eventually(t, func() bool {
		return len(processor.processed()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, event.UploadEvent{Bucket: "uploads", Key: "room 1.png"}, processor.processed()[0])
}

func TestWorkerRejectsMalformedPayload(t *testing.T) {
	queue := NewInMemoryQueue()
	processor := &recordingProcessor{}
	startWorker(t, processor, queue)

	task := &inMemoryTask{queue: UploadsQueue, payload: []byte("{not json")}
	publishAndDrain(t, queue, task)

	_, _, rejected := task.settled()
	assert.True(t, rejected)
	assert.Empty(t, processor.processed())
}

func TestWorkerNacksOnProcessingFailure(t *testing.T) {
	queue := NewInMemoryQueue()
	processor := &recordingProcessor{err: errors.New("inference unavailable")}
	startWorker(t, processor, queue)

	body, err := json.Marshal(event.Notification("uploads", "room.png"))
	require.NoError(t, err)

	task := &inMemoryTask{queue: UploadsQueue, payload: body}
	publishAndDrain(t, queue, task)

	_, nacked, _ := task.settled()
	assert.True(t, nacked)
	assert.Len(t, processor.processed(), 1)
}
