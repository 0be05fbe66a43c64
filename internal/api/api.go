package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"floorplan-backend/internal/database"
	"floorplan-backend/internal/event"
	"floorplan-backend/internal/inference"
	"floorplan-backend/internal/messaging"
	"floorplan-backend/internal/storage"
	"floorplan-backend/pkg/models"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"
)

const defaultJobListLimit = 50

type BackendService struct {
	db        *gorm.DB
	publisher messaging.Publisher
	processor messaging.EventProcessor
}

func NewBackendService(db *gorm.DB, pub messaging.Publisher, processor messaging.EventProcessor) *BackendService {
	return &BackendService{db: db, publisher: pub, processor: processor}
}

func (s *BackendService) AddRoutes(r chi.Router) {
	r.Get("/health", RestHandler(func(r *http.Request) (any, error) { return nil, nil }))
	r.Post("/events", RestHandler(s.ProcessEvent))
	r.Route("/jobs", func(r chi.Router) {
		r.Post("/", RestHandler(s.SubmitJob))
		r.Get("/", RestHandler(s.ListJobs))
		r.Get("/{job_id}", RestHandler(s.GetJob))
	})
}

// ProcessEvent accepts a raw storage notification document and runs the
// pipeline synchronously, mirroring what a storage trigger would deliver.
// Used for manual replay of missed notifications.
func (s *BackendService) ProcessEvent(r *http.Request) (any, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, CodedErrorf(http.StatusBadRequest, "unable to read request body")
	}

	ev, err := event.DecodeJSON(body)
	if err != nil {
		return nil, CodedError(http.StatusBadRequest, err)
	}

	result, err := s.processor.Process(r.Context(), ev)
	if err != nil {
		return nil, CodedError(statusForPipelineError(err), err)
	}

	return models.ProcessEventResponse{
		StatusCode: result.StatusCode,
		Message:    result.Message,
		LayoutPlan: result.LayoutPlan,
		OutputKey:  result.OutputKey,
		JobId:      result.JobId,
	}, nil
}

// SubmitJob queues an already-uploaded object for asynchronous processing by
// the worker.
func (s *BackendService) SubmitJob(r *http.Request) (any, error) {
	req, err := ParseRequest[models.SubmitJobRequest](r)
	if err != nil {
		return nil, err
	}

	if req.Bucket == "" || req.Key == "" {
		return nil, CodedErrorf(http.StatusUnprocessableEntity, "missing required fields: bucket, key")
	}
	if _, err := storage.MediaTypeForKey(req.Key); err != nil {
		return nil, CodedError(http.StatusUnsupportedMediaType, err)
	}

	if err := s.publisher.PublishUploadEvent(r.Context(), event.Notification(req.Bucket, req.Key)); err != nil {
		slog.Error("error publishing upload event", "bucket", req.Bucket, "key", req.Key, "error", err)
		return nil, CodedErrorf(http.StatusInternalServerError, "failed to queue upload for processing")
	}

	slog.Info("queued upload for processing", "bucket", req.Bucket, "key", req.Key)
	return models.SubmitJobResponse{Message: "upload queued for processing"}, nil
}

func (s *BackendService) ListJobs(r *http.Request) (any, error) {
	req, err := ParseRequestQueryParams[models.ListJobsRequest](r)
	if err != nil {
		return nil, err
	}

	limit := req.Limit
	if limit <= 0 || limit > 500 {
		limit = defaultJobListLimit
	}

	query := s.db.WithContext(r.Context()).Order("creation_time DESC").Limit(limit)
	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}

	var jobs []database.FloorplanJob
	if err := query.Find(&jobs).Error; err != nil {
		slog.Error("error listing jobs", "error", err)
		return nil, CodedErrorf(http.StatusInternalServerError, "error retrieving jobs")
	}

	resp := models.ListJobsResponse{Jobs: make([]models.JobResponse, 0, len(jobs))}
	for _, job := range jobs {
		resp.Jobs = append(resp.Jobs, toJobResponse(job))
	}
	return resp, nil
}

func (s *BackendService) GetJob(r *http.Request) (any, error) {
	jobId, err := URLParamUUID(r, "job_id")
	if err != nil {
		return nil, err
	}

	var job database.FloorplanJob
	if err := s.db.WithContext(r.Context()).First(&job, "id = ?", jobId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, CodedErrorf(http.StatusNotFound, "job not found")
		}
		slog.Error("error getting job", "job_id", jobId, "error", err)
		return nil, CodedErrorf(http.StatusInternalServerError, "error retrieving job record")
	}

	return toJobResponse(job), nil
}

func toJobResponse(job database.FloorplanJob) models.JobResponse {
	resp := models.JobResponse{
		JobId:        job.Id,
		SourceBucket: job.SourceBucket,
		SourceKey:    job.SourceKey,
		MediaType:    job.MediaType,
		OutputFormat: job.OutputFormat,
		OutputBucket: job.OutputBucket,
		OutputKey:    job.OutputKey.String,
		Status:       job.Status,
		Error:        job.Error.String,
		CreationTime: job.CreationTime,
	}
	if job.CompletionTime.Valid {
		t := job.CompletionTime.Time
		resp.CompletionTime = &t
	}
	return resp
}

func statusForPipelineError(err error) int {
	switch {
	case errors.Is(err, event.ErrMalformedEvent):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrUnsupportedMediaType):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, storage.ErrObjectNotFound):
		return http.StatusNotFound
	case errors.Is(err, storage.ErrAccessDenied):
		return http.StatusForbidden
	case errors.Is(err, inference.ErrInference):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
