package messaging

import (
	"context"
	"time"

	"github.com/aws/aws-lambda-go/events"
)

const (
	UploadsQueue    = "floorplan_uploads_queue"
	RetryDelay      = 5 * time.Second
	MaxConnectRetry = 5
)

type Task interface {
	Type() string

	Payload() []byte

	Ack() error

	Nack() error

	Reject() error
}

// Publisher enqueues upload notifications for asynchronous processing. The
// payload is the storage service's own notification document, so queued and
// trigger-delivered events decode identically.
type Publisher interface {
	PublishUploadEvent(ctx context.Context, notification events.S3Event) error

	Close()
}

type Receiver interface {
	Tasks() <-chan Task

	Close()
}
