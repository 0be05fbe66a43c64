package models

import (
	"time"

	"github.com/google/uuid"
)

type SubmitJobRequest struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
}

type SubmitJobResponse struct {
	Message string `json:"message"`
}

type ProcessEventResponse struct {
	StatusCode int       `json:"statusCode"`
	Message    string    `json:"message"`
	LayoutPlan string    `json:"layout_plan,omitempty"`
	OutputKey  string    `json:"output_key,omitempty"`
	JobId      uuid.UUID `json:"job_id,omitempty"`
}

type JobResponse struct {
	JobId          uuid.UUID  `json:"job_id"`
	SourceBucket   string     `json:"source_bucket"`
	SourceKey      string     `json:"source_key"`
	MediaType      string     `json:"media_type,omitempty"`
	OutputFormat   string     `json:"output_format"`
	OutputBucket   string     `json:"output_bucket,omitempty"`
	OutputKey      string     `json:"output_key,omitempty"`
	Status         string     `json:"status"`
	Error          string     `json:"error,omitempty"`
	CreationTime   time.Time  `json:"creation_time"`
	CompletionTime *time.Time `json:"completion_time,omitempty"`
}

type ListJobsRequest struct {
	Limit  int    `schema:"limit"`
	Status string `schema:"status"`
}

type ListJobsResponse struct {
	Jobs []JobResponse `json:"jobs"`
}
