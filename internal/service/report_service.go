package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/one-zero-eight/schedule-builder-backend/internal/models"
	appErrors "github.com/one-zero-eight/schedule-builder-backend/pkg/errors"
	"github.com/one-zero-eight/schedule-builder-backend/pkg/export"
	"github.com/one-zero-eight/schedule-builder-backend/pkg/jobs"
	"github.com/one-zero-eight/schedule-builder-backend/pkg/storage"
)

type reportStore interface {
	Create(ctx context.Context, report *models.CollisionReport) error
	FindByID(ctx context.Context, id string) (*models.CollisionReport, error)
	MarkRunning(ctx context.Context, id string) error
	MarkCompleted(ctx context.Context, id, filePath string, issuesTotal int) error
	MarkFailed(ctx context.Context, id string, cause error) error
	DeleteOlderThan(ctx context.Context, cutoff time.Time) ([]string, error)
}

type jobDispatcher interface {
	Enqueue(job jobs.Job) error
}

type reportFiles interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
}

type collisionRunner interface {
	Check(ctx context.Context, lessons []models.Lesson, flags CheckFlags, extraVerySame [][]models.VerySameLessonID) (*models.CheckResults, error)
}

// reportPayload travels through the job queue.
type reportPayload struct {
	ReportID string
	Lessons  []models.Lesson
	Flags    CheckFlags
	Format   models.ReportFormat
}

// ReportDownload resolves a validated download token to an open file.
type ReportDownload struct {
	Report   *models.CollisionReport
	File     *os.File
	Filename string
}

// ReportServiceConfig governs retention.
type ReportServiceConfig struct {
	ResultTTL       time.Duration
	CleanupInterval time.Duration
}

func (c *ReportServiceConfig) applyDefaults() {
	if c.ResultTTL <= 0 {
		c.ResultTTL = 24 * time.Hour
	}
	if c.CleanupInterval <= 0 {
		c.CleanupInterval = time.Hour
	}
}

// ReportService runs collision checks asynchronously and renders the results
// into downloadable CSV or PDF files.
type ReportService struct {
	store  reportStore
	checks collisionRunner
	queue  jobDispatcher
	files  reportFiles
	signer *storage.SignedURLSigner
	logger *zap.Logger
	cfg    ReportServiceConfig
}

// NewReportService constructs the service.
func NewReportService(
	store reportStore,
	checks collisionRunner,
	queue jobDispatcher,
	files reportFiles,
	signer *storage.SignedURLSigner,
	cfg ReportServiceConfig,
	logger *zap.Logger,
) *ReportService {
	cfg.applyDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		store:  store,
		checks: checks,
		queue:  queue,
		files:  files,
		signer: signer,
		logger: logger,
		cfg:    cfg,
	}
}

// CreateReport validates the request, persists a pending job and enqueues it.
func (s *ReportService) CreateReport(ctx context.Context, lessons []models.Lesson, flags CheckFlags, format models.ReportFormat, requestedBy string) (*models.CollisionReport, error) {
	if !format.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported report format %q", format))
	}
	if len(lessons) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no lessons to check")
	}

	report := &models.CollisionReport{
		ID:          uuid.NewString(),
		Status:      models.ReportPending,
		Format:      format,
		RequestedBy: requestedBy,
	}
	if err := s.store.Create(ctx, report); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "persist report job")
	}

	job := jobs.Job{
		ID:      report.ID,
		Type:    "collision-report",
		Payload: reportPayload{ReportID: report.ID, Lessons: lessons, Flags: flags, Format: format},
	}
	if err := s.queue.Enqueue(job); err != nil {
		_ = s.store.MarkFailed(ctx, report.ID, err)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "enqueue report job")
	}
	return report, nil
}

// GetReport returns job status.
func (s *ReportService) GetReport(ctx context.Context, id string) (*models.CollisionReport, error) {
	report, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "report not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load report")
	}
	return report, nil
}

// DownloadURL returns a signed token for a completed report.
func (s *ReportService) DownloadURL(ctx context.Context, id string) (string, time.Time, error) {
	report, err := s.GetReport(ctx, id)
	if err != nil {
		return "", time.Time{}, err
	}
	if report.Status != models.ReportCompleted {
		return "", time.Time{}, appErrors.Clone(appErrors.ErrValidation, "report is not ready")
	}
	token, expiresAt, err := s.signer.Generate(report.ID, report.FilePath)
	if err != nil {
		return "", time.Time{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "sign download url")
	}
	return token, expiresAt, nil
}

// ResolveDownload validates a token and opens the referenced file.
func (s *ReportService) ResolveDownload(ctx context.Context, token string) (*ReportDownload, error) {
	jobID, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download token")
	}
	report, err := s.GetReport(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if report.FilePath != relPath {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "download token does not match the report")
	}
	file, err := s.files.Open(relPath)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "report file is gone")
	}
	return &ReportDownload{
		Report:   report,
		File:     file,
		Filename: fmt.Sprintf("collision-report-%s.%s", report.ID, report.Format),
	}, nil
}

// HandleJob is the queue handler: it runs the check and renders the file.
func (s *ReportService) HandleJob(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(reportPayload)
	if !ok {
		s.logger.Sugar().Errorw("dropping job with unexpected payload", "job_id", job.ID)
		return nil
	}
	if err := s.store.MarkRunning(ctx, payload.ReportID); err != nil {
		return err
	}

	results, err := s.checks.Check(ctx, payload.Lessons, payload.Flags, nil)
	if err != nil {
		_ = s.store.MarkFailed(ctx, payload.ReportID, err)
		return nil
	}

	rendered, err := s.render(results.Issues, payload.Format)
	if err != nil {
		_ = s.store.MarkFailed(ctx, payload.ReportID, err)
		return nil
	}

	filename := fmt.Sprintf("%s.%s", payload.ReportID, payload.Format)
	path, err := s.files.Save(filename, rendered)
	if err != nil {
		_ = s.store.MarkFailed(ctx, payload.ReportID, err)
		return nil
	}
	if err := s.store.MarkCompleted(ctx, payload.ReportID, path, len(results.Issues)); err != nil {
		return err
	}
	s.logger.Sugar().Infow("collision report ready",
		"report_id", payload.ReportID, "format", payload.Format, "issues", len(results.Issues))
	return nil
}

func (s *ReportService) render(issues []models.Issue, format models.ReportFormat) ([]byte, error) {
	report := buildIssueTable(issues)
	switch format {
	case models.ReportCSV:
		return export.RenderCSV(report)
	case models.ReportPDF:
		return export.RenderPDF(report)
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}

// StartCleanup prunes expired reports and their files until ctx is done.
func (s *ReportService) StartCleanup(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.cfg.CleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.cleanupOnce(ctx)
			}
		}
	}()
}

func (s *ReportService) cleanupOnce(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-s.cfg.ResultTTL)
	paths, err := s.store.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		s.logger.Sugar().Warnw("report cleanup failed", "error", err)
		return
	}
	for _, path := range paths {
		if path == "" {
			continue
		}
		if err := s.files.Delete(path); err != nil {
			s.logger.Sugar().Warnw("failed to delete report file", "path", path, "error", err)
		}
	}
	if len(paths) > 0 {
		s.logger.Sugar().Infow("pruned expired reports", "count", len(paths))
	}
}
