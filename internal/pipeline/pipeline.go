package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	"floorplan-backend/internal/config"
	"floorplan-backend/internal/database"
	"floorplan-backend/internal/event"
	"floorplan-backend/internal/inference"
	"floorplan-backend/internal/storage"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Pipeline runs the fetch -> encode -> analyze -> (generate) -> emit sequence
// for one upload notification. It holds no per-invocation state; every call
// to Process is independent.
type Pipeline struct {
	store     storage.ObjectStore
	analyzer  inference.Analyzer
	generator inference.ImageGenerator
	db        *gorm.DB

	outputBucket string
	outputFormat string

	now func() time.Time
}

// Result is the status payload returned to the invoking platform.
type Result struct {
	StatusCode int       `json:"statusCode"`
	Message    string    `json:"message"`
	LayoutPlan string    `json:"layout_plan,omitempty"`
	OutputKey  string    `json:"output_key,omitempty"`
	JobId      uuid.UUID `json:"job_id,omitempty"`
}

// New wires a pipeline. The generator may be nil unless the output format is
// png; the db may be nil, in which case invocations are not recorded.
func New(store storage.ObjectStore, analyzer inference.Analyzer, generator inference.ImageGenerator, db *gorm.DB, cfg *config.Config) *Pipeline {
	return &Pipeline{
		store:        store,
		analyzer:     analyzer,
		generator:    generator,
		db:           db,
		outputBucket: cfg.OutputBucket,
		outputFormat: cfg.OutputFormat,
		now:          time.Now,
	}
}

// Process handles a single decoded upload event. Errors are terminal: nothing
// is retried here, redelivery is the trigger platform's concern.
func (p *Pipeline) Process(ctx context.Context, ev event.UploadEvent) (Result, error) {
	logger := slog.Default().With("bucket", ev.Bucket, "key", ev.Key)
	logger.Info("processing image", "format", p.outputFormat)

	jobId := p.createJob(ctx, ev)

	result, err := p.run(ctx, ev, logger)
	if err != nil {
		p.failJob(ctx, jobId, err)
		return Result{}, err
	}

	result.JobId = jobId
	p.completeJob(ctx, jobId, ev, result.OutputKey)
	return result, nil
}

func (p *Pipeline) run(ctx context.Context, ev event.UploadEvent, logger *slog.Logger) (Result, error) {
	mediaType, err := storage.MediaTypeForKey(ev.Key)
	if err != nil {
		logger.Error("rejecting upload", "stage", "media_type", "error", err)
		return Result{}, err
	}

	data, err := p.store.GetObject(ctx, ev.Bucket, ev.Key)
	if err != nil {
		logger.Error("failed to fetch object", "stage", "fetch", "error", err)
		return Result{}, err
	}

	img := inference.ImagePayload{Data: data, MediaType: mediaType}

	switch p.outputFormat {
	case config.FormatJSON:
		return p.analyzeToJSON(ctx, img, logger)
	case config.FormatHTML:
		return p.analyzeToHTML(ctx, ev, img, logger)
	default:
		return p.generateFloorplan(ctx, ev, img, logger)
	}
}

func (p *Pipeline) analyzeToJSON(ctx context.Context, img inference.ImagePayload, logger *slog.Logger) (Result, error) {
	layout, err := p.analyzer.AnalyzeImage(ctx, img, inference.LayoutJSONPrompt)
	if err != nil {
		logger.Error("analysis failed", "stage", "analyze", "error", err)
		return Result{}, err
	}

	return Result{
		StatusCode: http.StatusOK,
		Message:    "floorplan analysis complete",
		LayoutPlan: layout,
	}, nil
}

func (p *Pipeline) analyzeToHTML(ctx context.Context, ev event.UploadEvent, img inference.ImagePayload, logger *slog.Logger) (Result, error) {
	page, err := p.analyzer.AnalyzeImage(ctx, img, inference.LayoutHTMLPrompt)
	if err != nil {
		logger.Error("analysis failed", "stage", "analyze", "error", err)
		return Result{}, err
	}

	outputKey := p.deriveOutputKey(ev.Key, ".html")
	if err := p.store.PutObject(ctx, p.outputBucket, outputKey, strings.NewReader(page), "text/html"); err != nil {
		logger.Error("failed to store floorplan page", "stage", "store", "output_key", outputKey, "error", err)
		return Result{}, err
	}

	return Result{
		StatusCode: http.StatusOK,
		Message:    "floorplan page stored",
		OutputKey:  outputKey,
	}, nil
}

func (p *Pipeline) generateFloorplan(ctx context.Context, ev event.UploadEvent, img inference.ImagePayload, logger *slog.Logger) (Result, error) {
	description, err := p.analyzer.AnalyzeImage(ctx, img, inference.LayoutDescriptionPrompt)
	if err != nil {
		logger.Error("analysis failed", "stage", "analyze", "error", err)
		return Result{}, err
	}

	prompt := inference.FloorplanStylePrefix + description
	floorplan, err := p.generator.GenerateImage(ctx, prompt)
	if err != nil {
		logger.Error("generation failed", "stage", "generate", "error", err)
		return Result{}, err
	}

	outputKey := p.deriveOutputKey(ev.Key, ".png")
	if err := p.store.PutObject(ctx, p.outputBucket, outputKey, bytes.NewReader(floorplan), "image/png"); err != nil {
		logger.Error("failed to store floorplan image", "stage", "store", "output_key", outputKey, "error", err)
		return Result{}, err
	}

	return Result{
		StatusCode: http.StatusOK,
		Message:    "floorplan image stored",
		OutputKey:  outputKey,
	}, nil
}

func (p *Pipeline) deriveOutputKey(inputKey, ext string) string {
	timestamp := p.now().UTC().Format("20060102150405")
	return fmt.Sprintf("generated_floorplan_from_%s_%s%s", path.Base(inputKey), timestamp, ext)
}

func (p *Pipeline) createJob(ctx context.Context, ev event.UploadEvent) uuid.UUID {
	if p.db == nil {
		return uuid.Nil
	}

	job := database.FloorplanJob{
		Id:           uuid.New(),
		SourceBucket: ev.Bucket,
		SourceKey:    ev.Key,
		OutputFormat: p.outputFormat,
		OutputBucket: p.outputBucket,
		Status:       database.JobRunning,
		CreationTime: p.now().UTC(),
	}
	if mediaType, err := storage.MediaTypeForKey(ev.Key); err == nil {
		job.MediaType = mediaType
	}

	if err := p.db.WithContext(ctx).Create(&job).Error; err != nil {
		slog.Error("error recording job", "bucket", ev.Bucket, "key", ev.Key, "error", err)
		return uuid.Nil
	}
	return job.Id
}

func (p *Pipeline) completeJob(ctx context.Context, jobId uuid.UUID, ev event.UploadEvent, outputKey string) {
	if p.db == nil || jobId == uuid.Nil {
		return
	}
	if err := database.MarkJobCompleted(ctx, p.db, jobId, outputKey); err != nil {
		slog.Error("error finalizing job record", "bucket", ev.Bucket, "key", ev.Key, "job_id", jobId, "error", err)
	}
}

func (p *Pipeline) failJob(ctx context.Context, jobId uuid.UUID, cause error) {
	if p.db == nil || jobId == uuid.Nil {
		return
	}
	if err := database.MarkJobFailed(ctx, p.db, jobId, cause.Error()); err != nil {
		slog.Error("error finalizing job record", "job_id", jobId, "error", err)
	}
}
