package integrationtests

import (
	"bytes"
	"context"
	"testing"
	"time"

	"floorplan-backend/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bucketName = "test-uploads"

func TestS3ObjectStoreRoundTrip(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	objectStore := setupTestObjectStore(t, ctx)
	require.NoError(t, objectStore.CreateBucket(ctx, bucketName))

	key := "photos/room one.png"
	content := []byte("not really a png")

	err := objectStore.PutObject(ctx, bucketName, key, bytes.NewReader(content), "image/png")
	require.NoError(t, err)

	data, err := objectStore.GetObject(ctx, bucketName, key)
	require.NoError(t, err)
	assert.Equal(t, content, data)
}

func TestS3ObjectStoreGetMissingObject(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	objectStore := setupTestObjectStore(t, ctx)
	require.NoError(t, objectStore.CreateBucket(ctx, bucketName))

	_, err := objectStore.GetObject(ctx, bucketName, "photos/missing.png")
	assert.ErrorIs(t, err, storage.ErrObjectNotFound)
}

func TestS3ObjectStoreGetFromMissingBucket(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	objectStore := setupTestObjectStore(t, ctx)

	_, err := objectStore.GetObject(ctx, "no-such-bucket", "photos/room.png")
	assert.ErrorIs(t, err, storage.ErrObjectNotFound)
}
