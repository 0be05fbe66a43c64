package pipeline

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"floorplan-backend/internal/config"
	"floorplan-backend/internal/database"
	"floorplan-backend/internal/event"
	"floorplan-backend/internal/inference"
	"floorplan-backend/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type fakeStore struct {
	objects map[string][]byte
	getErr  error
	putErr  error

	gets []string

	putBucket      string
	putKey         string
	putContentType string
	putData        []byte
}

func (s *fakeStore) GetObject(ctx context.Context, bucket, key string) ([]byte, error) {
	s.gets = append(s.gets, bucket+"/"+key)
	if s.getErr != nil {
		return nil, s.getErr
	}
	data, ok := s.objects[bucket+"/"+key]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", storage.ErrObjectNotFound, bucket, key)
	}
	return data, nil
}

func (s *fakeStore) PutObject(ctx context.Context, bucket, key string, data io.Reader, contentType string) error {
	if s.putErr != nil {
		return s.putErr
	}
	s.putBucket, s.putKey, s.putContentType = bucket, key, contentType
	s.putData, _ = io.ReadAll(data)
	return nil
}

type fakeAnalyzer struct {
	result     string
	err        error
	calls      int
	lastPrompt string
	lastImage  inference.ImagePayload
}

func (a *fakeAnalyzer) AnalyzeImage(ctx context.Context, img inference.ImagePayload, prompt string) (string, error) {
	a.calls++
	a.lastPrompt = prompt
	a.lastImage = img
	return a.result, a.err
}

type fakeGenerator struct {
	image      []byte
	err        error
	calls      int
	lastPrompt string
}

func (g *fakeGenerator) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	g.calls++
	g.lastPrompt = prompt
	return g.image, g.err
}

var frozenTime = time.Date(2026, 8, 29, 10, 30, 45, 0, time.UTC)

func newTestPipeline(store *fakeStore, analyzer *fakeAnalyzer, generator *fakeGenerator, db *gorm.DB, format string) *Pipeline {
	p := New(store, analyzer, generator, db, &config.Config{
		OutputBucket: "floorplans",
		OutputFormat: format,
	})
	p.now = func() time.Time { return frozenTime }
	return p
}

func uploadedImage(key string) (*fakeStore, event.UploadEvent) {
	store := &fakeStore{objects: map[string][]byte{"uploads/" + key: []byte("fake image bytes")}}
	return store, event.UploadEvent{Bucket: "uploads", Key: key}
}

func TestProcessJSONReturnsAnalysisUnmodified(t *testing.T) {
	store, ev := uploadedImage("room.png")
	analyzer := &fakeAnalyzer{result: `{"layout_plan":"3m x 4m, one door"}`}

	p := newTestPipeline(store, analyzer, nil, nil, config.FormatJSON)

	result, err := p.Process(context.Background(), ev)
	require.NoError(t, err)

	assert.Equal(t, 200, result.StatusCode)
	assert.Equal(t, `{"layout_plan":"3m x 4m, one door"}`, result.LayoutPlan)
	assert.Empty(t, result.OutputKey)
	assert.Equal(t, inference.LayoutJSONPrompt, analyzer.lastPrompt)
	assert.Equal(t, "image/png", analyzer.lastImage.MediaType)
	assert.Equal(t, []byte("fake image bytes"), analyzer.lastImage.Data)
}

func TestProcessRejectsUnsupportedExtensionBeforeFetch(t *testing.T) {
	store := &fakeStore{}
	analyzer := &fakeAnalyzer{}

	p := newTestPipeline(store, analyzer, nil, nil, config.FormatJSON)

	_, err := p.Process(context.Background(), event.UploadEvent{Bucket: "uploads", Key: "notes.pdf"})
	assert.ErrorIs(t, err, storage.ErrUnsupportedMediaType)
	assert.Empty(t, store.gets, "object must not be fetched for unsupported extensions")
	assert.Zero(t, analyzer.calls)
}

func TestProcessPropagatesFetchErrors(t *testing.T) {
	store := &fakeStore{objects: map[string][]byte{}}
	analyzer := &fakeAnalyzer{}

	p := newTestPipeline(store, analyzer, nil, nil, config.FormatJSON)

	_, err := p.Process(context.Background(), event.UploadEvent{Bucket: "uploads", Key: "missing.png"})
	assert.ErrorIs(t, err, storage.ErrObjectNotFound)
	assert.Zero(t, analyzer.calls)
}

func TestProcessHTMLStoresPage(t *testing.T) {
	store, ev := uploadedImage("photo.jpg")
	analyzer := &fakeAnalyzer{result: "<html><body>plan</body></html>"}

	p := newTestPipeline(store, analyzer, nil, nil, config.FormatHTML)

	result, err := p.Process(context.Background(), ev)
	require.NoError(t, err)

	assert.Equal(t, inference.LayoutHTMLPrompt, analyzer.lastPrompt)
	assert.Equal(t, "floorplans", store.putBucket)
	assert.Equal(t, "generated_floorplan_from_photo.jpg_20260829103045.html", store.putKey)
	assert.Equal(t, "text/html", store.putContentType)
	assert.Equal(t, []byte("<html><body>plan</body></html>"), store.putData)
	assert.Equal(t, store.putKey, result.OutputKey)
}

func TestProcessPNGChainsAnalysisIntoGeneration(t *testing.T) {
	store, ev := uploadedImage("photo.jpg")
	analyzer := &fakeAnalyzer{result: "a square room with one door and two windows"}
	generator := &fakeGenerator{image: []byte("generated png")}

	p := newTestPipeline(store, analyzer, generator, nil, config.FormatPNG)

	result, err := p.Process(context.Background(), ev)
	require.NoError(t, err)

	assert.Equal(t, inference.LayoutDescriptionPrompt, analyzer.lastPrompt)
	assert.Equal(t, inference.FloorplanStylePrefix+"a square room with one door and two windows", generator.lastPrompt)
	assert.Equal(t, "generated_floorplan_from_photo.jpg_20260829103045.png", result.OutputKey)
	assert.Equal(t, "image/png", store.putContentType)
	assert.Equal(t, []byte("generated png"), store.putData)
}

func TestProcessPNGFallbackStillGenerates(t *testing.T) {
	store, ev := uploadedImage("room.png")
	analyzer := &fakeAnalyzer{result: inference.FallbackLayoutDescription}
	generator := &fakeGenerator{image: []byte("generated png")}

	p := newTestPipeline(store, analyzer, generator, nil, config.FormatPNG)

	_, err := p.Process(context.Background(), ev)
	require.NoError(t, err)
	assert.Equal(t, inference.FloorplanStylePrefix+inference.FallbackLayoutDescription, generator.lastPrompt)
}

func TestProcessGenerationErrorPropagates(t *testing.T) {
	store, ev := uploadedImage("room.png")
	analyzer := &fakeAnalyzer{result: "a room"}
	generator := &fakeGenerator{err: fmt.Errorf("%w: model unavailable", inference.ErrInference)}

	p := newTestPipeline(store, analyzer, generator, nil, config.FormatPNG)

	_, err := p.Process(context.Background(), ev)
	assert.ErrorIs(t, err, inference.ErrInference)
	assert.Empty(t, store.putKey, "nothing should be written on generation failure")
}

func createTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, database.GetMigrator(db).Migrate())
	return db
}

func TestProcessRecordsCompletedJob(t *testing.T) {
	db := createTestDB(t)
	store, ev := uploadedImage("room.png")
	analyzer := &fakeAnalyzer{result: "a room"}
	generator := &fakeGenerator{image: []byte("generated png")}

	p := newTestPipeline(store, analyzer, generator, db, config.FormatPNG)

	result, err := p.Process(context.Background(), ev)
	require.NoError(t, err)

	var job database.FloorplanJob
	require.NoError(t, db.First(&job, "id = ?", result.JobId).Error)
	assert.Equal(t, database.JobCompleted, job.Status)
	assert.Equal(t, "uploads", job.SourceBucket)
	assert.Equal(t, "room.png", job.SourceKey)
	assert.Equal(t, "image/png", job.MediaType)
	assert.Equal(t, result.OutputKey, job.OutputKey.String)
	assert.True(t, job.CompletionTime.Valid)
}

func TestProcessRecordsFailedJob(t *testing.T) {
	db := createTestDB(t)
	store := &fakeStore{objects: map[string][]byte{}}
	analyzer := &fakeAnalyzer{}

	p := newTestPipeline(store, analyzer, nil, db, config.FormatJSON)

	_, err := p.Process(context.Background(), event.UploadEvent{Bucket: "uploads", Key: "missing.png"})
	require.Error(t, err)

	var job database.FloorplanJob
	require.NoError(t, db.First(&job).Error)
	assert.Equal(t, database.JobFailed, job.Status)
	assert.True(t, job.Error.Valid)
	assert.Contains(t, job.Error.String, "missing.png")
}
