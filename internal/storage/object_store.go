package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
)

var (
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	ErrObjectNotFound       = errors.New("object not found")
	ErrAccessDenied         = errors.New("access denied")
	ErrStorage              = errors.New("storage error")
)

// ObjectStore is the narrow surface the pipeline needs from a bucket/key
// addressed blob store.
type ObjectStore interface {
	GetObject(ctx context.Context, bucket, key string) ([]byte, error)

	PutObject(ctx context.Context, bucket, key string, data io.Reader, contentType string) error
}

// MediaTypeForKey determines the image media type from the key's file
// extension. Only PNG and JPEG uploads are processed; anything else is
// rejected before the object is fetched.
func MediaTypeForKey(key string) (string, error) {
	switch strings.ToLower(path.Ext(key)) {
	case ".png":
		return "image/png", nil
	case ".jpg", ".jpeg":
		return "image/jpeg", nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedMediaType, key)
	}
}
