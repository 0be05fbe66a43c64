package event

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"github.com/aws/aws-lambda-go/events"
)

var ErrMalformedEvent = errors.New("malformed upload event")

// UploadEvent identifies the object whose upload triggered a pipeline run.
// The key is fully percent-decoded.
type UploadEvent struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
}

// Decode extracts the first record of an S3 "object created" notification.
// Object keys arrive percent-encoded with '+' for spaces, the same form the
// storage service uses in its notification payloads.
func Decode(ev events.S3Event) (UploadEvent, error) {
	if len(ev.Records) == 0 {
		return UploadEvent{}, fmt.Errorf("%w: no records", ErrMalformedEvent)
	}

	record := ev.Records[0]
	bucket := record.S3.Bucket.Name
	if bucket == "" {
		return UploadEvent{}, fmt.Errorf("%w: missing bucket name", ErrMalformedEvent)
	}
	if record.S3.Object.Key == "" {
		return UploadEvent{}, fmt.Errorf("%w: missing object key", ErrMalformedEvent)
	}

	key, err := url.QueryUnescape(record.S3.Object.Key)
	if err != nil {
		return UploadEvent{}, fmt.Errorf("%w: undecodable object key %q: %v", ErrMalformedEvent, record.S3.Object.Key, err)
	}

	return UploadEvent{Bucket: bucket, Key: key}, nil
}

// DecodeJSON parses a raw notification document, as delivered on the message
// queue or posted to the HTTP trigger endpoint.
func DecodeJSON(data []byte) (UploadEvent, error) {
	var ev events.S3Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return UploadEvent{}, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	return Decode(ev)
}

// Notification builds the notification document for an object, used when a
// pipeline run is requested through the API rather than a storage trigger.
func Notification(bucket, key string) events.S3Event {
	return events.S3Event{
		Records: []events.S3EventRecord{{
			EventName: "ObjectCreated:Put",
			S3: events.S3Entity{
				Bucket: events.S3Bucket{Name: bucket},
				Object: events.S3Object{Key: url.QueryEscape(key)},
			},
		}},
	}
}
