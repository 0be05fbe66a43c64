package database

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

const (
	JobQueued    string = "QUEUED"
	JobRunning   string = "RUNNING"
	JobCompleted string = "COMPLETED"
	JobFailed    string = "FAILED"
)

// FloorplanJob records one pipeline invocation. The pipeline itself is
// stateless; this table only serves the API's job listing.
type FloorplanJob struct {
	Id uuid.UUID `gorm:"type:uuid;primaryKey"`

	SourceBucket string `gorm:"not null"`
	SourceKey    string `gorm:"not null"`
	MediaType    string `gorm:"size:20"`

	OutputFormat string `gorm:"size:10;not null"`
	OutputBucket string
	OutputKey    sql.NullString

	Status string `gorm:"size:20;not null"`
	Error  sql.NullString

	CreationTime   time.Time
	CompletionTime sql.NullTime
}
