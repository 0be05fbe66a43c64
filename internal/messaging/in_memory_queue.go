package messaging

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/aws/aws-lambda-go/events"
)

type inMemoryTask struct {
	queue   string
	payload []byte

	mu       sync.Mutex
	acked    bool
	nacked   bool
	rejected bool
}

func (t *inMemoryTask) Type() string {
	return t.queue
}

func (t *inMemoryTask) Payload() []byte {
	return t.payload
}

func (t *inMemoryTask) Ack() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.acked = true
	return nil
}

func (t *inMemoryTask) Nack() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.nacked = true
	return nil
}

func (t *inMemoryTask) Reject() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rejected = true
	return nil
}

func (t *inMemoryTask) settled() (acked, nacked, rejected bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.acked, t.nacked, t.rejected
}

// InMemoryQueue is a process-local queue double used in tests and local runs.
type InMemoryQueue struct {
	tasks chan Task
}

var (
	_ Publisher = (*InMemoryQueue)(nil)
	_ Receiver  = (*InMemoryQueue)(nil)
)

func NewInMemoryQueue() *InMemoryQueue {
	return &InMemoryQueue{
		tasks: make(chan Task, 100),
	}
}

func (q *InMemoryQueue) PublishUploadEvent(ctx context.Context, notification events.S3Event) error {
	data, err := json.Marshal(notification)
	if err != nil {
		return err
	}

	q.tasks <- &inMemoryTask{queue: UploadsQueue, payload: data}

	return nil
}

func (q *InMemoryQueue) Tasks() <-chan Task {
	return q.tasks
}

func (q *InMemoryQueue) Close() {
	if q.tasks != nil {
		close(q.tasks)
		q.tasks = nil
	}
}
