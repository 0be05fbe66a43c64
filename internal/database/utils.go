package database

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func UpdateJobStatus(ctx context.Context, txn *gorm.DB, jobId uuid.UUID, status string) error {
	updates := map[string]any{"status": status}
	if status == JobCompleted || status == JobFailed {
		updates["completion_time"] = time.Now().UTC()
	}

	if err := txn.WithContext(ctx).Model(&FloorplanJob{Id: jobId}).Updates(updates).Error; err != nil {
		slog.Error("error updating job status", "job_id", jobId, "status", status, "error", err)
		return err
	}
	return nil
}

func MarkJobCompleted(ctx context.Context, txn *gorm.DB, jobId uuid.UUID, outputKey string) error {
	updates := map[string]any{
		"status":          JobCompleted,
		"completion_time": time.Now().UTC(),
	}
	if outputKey != "" {
		updates["output_key"] = sql.NullString{String: outputKey, Valid: true}
	}

	if err := txn.WithContext(ctx).Model(&FloorplanJob{Id: jobId}).Updates(updates).Error; err != nil {
		slog.Error("error marking job completed", "job_id", jobId, "error", err)
		return err
	}
	return nil
}

func MarkJobFailed(ctx context.Context, txn *gorm.DB, jobId uuid.UUID, errorMessage string) error {
	updates := map[string]any{
		"status":          JobFailed,
		"completion_time": time.Now().UTC(),
		"error":           sql.NullString{String: errorMessage, Valid: true},
	}

	if err := txn.WithContext(ctx).Model(&FloorplanJob{Id: jobId}).Updates(updates).Error; err != nil {
		slog.Error("error marking job failed", "job_id", jobId, "error", err)
		return err
	}
	return nil
}
