package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/one-zero-eight/schedule-builder-backend/internal/models"
)

// ReportRepository persists asynchronous collision report jobs.
type ReportRepository struct {
	db *sqlx.DB
}

// NewReportRepository constructs the repository.
func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// Create inserts a new pending report job.
func (r *ReportRepository) Create(ctx context.Context, report *models.CollisionReport) error {
	const query = `INSERT INTO collision_reports
(id, status, format, requested_by, file_path, issues_total, error_message, created_at, updated_at)
VALUES (:id, :status, :format, :requested_by, :file_path, :issues_total, :error_message, :created_at, :updated_at)`
	now := time.Now().UTC()
	report.CreatedAt = now
	report.UpdatedAt = now
	if _, err := r.db.NamedExecContext(ctx, query, report); err != nil {
		return fmt.Errorf("create collision report: %w", err)
	}
	return nil
}

// FindByID fetches a single report job.
func (r *ReportRepository) FindByID(ctx context.Context, id string) (*models.CollisionReport, error) {
	const query = `SELECT id, status, format, requested_by, file_path, issues_total, error_message, created_at, updated_at
FROM collision_reports WHERE id = $1`
	var report models.CollisionReport
	if err := r.db.GetContext(ctx, &report, query, id); err != nil {
		return nil, err
	}
	return &report, nil
}

// MarkRunning transitions a job to running.
func (r *ReportRepository) MarkRunning(ctx context.Context, id string) error {
	return r.update(ctx, id, models.ReportRunning, "", 0, "")
}

// MarkCompleted records the rendered file and issue count.
func (r *ReportRepository) MarkCompleted(ctx context.Context, id, filePath string, issuesTotal int) error {
	return r.update(ctx, id, models.ReportCompleted, filePath, issuesTotal, "")
}

// MarkFailed records the failure reason.
func (r *ReportRepository) MarkFailed(ctx context.Context, id string, cause error) error {
	message := ""
	if cause != nil {
		message = cause.Error()
	}
	return r.update(ctx, id, models.ReportFailed, "", 0, message)
}

func (r *ReportRepository) update(ctx context.Context, id string, status models.ReportStatus, filePath string, issuesTotal int, errorMessage string) error {
	const query = `UPDATE collision_reports
SET status = $2, file_path = $3, issues_total = $4, error_message = $5, updated_at = $6
WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, filePath, issuesTotal, errorMessage, time.Now().UTC()); err != nil {
		return fmt.Errorf("update collision report %s: %w", id, err)
	}
	return nil
}

// DeleteOlderThan prunes finished jobs past their retention window and
// returns the file paths the caller should remove from storage.
func (r *ReportRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) ([]string, error) {
	const query = `DELETE FROM collision_reports
WHERE updated_at < $1 AND status IN ('completed', 'failed')
RETURNING file_path`
	var paths []string
	if err := r.db.SelectContext(ctx, &paths, query, cutoff); err != nil {
		return nil, fmt.Errorf("prune collision reports: %w", err)
	}
	return paths, nil
}
