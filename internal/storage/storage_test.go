package storage

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMediaTypeForKey(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"room.png", "image/png"},
		{"room.PNG", "image/png"},
		{"photos/room 1.jpg", "image/jpeg"},
		{"room.jpeg", "image/jpeg"},
		{"room.JPEG", "image/jpeg"},
	}

	for _, tt := range tests {
		got, err := MediaTypeForKey(tt.key)
		require.NoError(t, err, tt.key)
		assert.Equal(t, tt.want, got, tt.key)
	}
}

func TestMediaTypeForKeyUnsupported(t *testing.T) {
	for _, key := range []string{"room.gif", "room.webp", "room", "room.png.txt", "notes.pdf"} {
		_, err := MediaTypeForKey(key)
		assert.ErrorIs(t, err, ErrUnsupportedMediaType, key)
	}
}

func TestMapGetObjectError(t *testing.T) {
	err := mapGetObjectError("b", "k", &types.NoSuchKey{})
	assert.ErrorIs(t, err, ErrObjectNotFound)

	err = mapGetObjectError("b", "k", &smithy.GenericAPIError{Code: "AccessDenied"})
	assert.ErrorIs(t, err, ErrAccessDenied)

	err = mapGetObjectError("b", "k", &smithy.GenericAPIError{Code: "NoSuchBucket"})
	assert.ErrorIs(t, err, ErrObjectNotFound)

	err = mapGetObjectError("b", "k", errors.New("connection reset"))
	assert.ErrorIs(t, err, ErrStorage)
	assert.NotErrorIs(t, err, ErrObjectNotFound)
	assert.NotErrorIs(t, err, ErrAccessDenied)
}

func TestLocalObjectStoreRoundTrip(t *testing.T) {
	store, err := NewLocalObjectStore(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	content := []byte("fake png bytes")

	require.NoError(t, store.PutObject(ctx, "uploads", "photos/room 1.png", bytes.NewReader(content), "image/png"))

	data, err := store.GetObject(ctx, "uploads", "photos/room 1.png")
	require.NoError(t, err)
	assert.Equal(t, content, data)
}

func TestLocalObjectStoreNotFound(t *testing.T) {
	store, err := NewLocalObjectStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.GetObject(context.Background(), "uploads", "missing.png")
	assert.ErrorIs(t, err, ErrObjectNotFound)
	assert.True(t, strings.Contains(err.Error(), "missing.png"))
}
