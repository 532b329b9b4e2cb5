package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/one-zero-eight/schedule-builder-backend/internal/models"
	"github.com/one-zero-eight/schedule-builder-backend/pkg/jobs"
	"github.com/one-zero-eight/schedule-builder-backend/pkg/storage"
)

type mockReportStore struct {
	reports map[string]*models.CollisionReport
}

func newMockReportStore() *mockReportStore {
	return &mockReportStore{reports: make(map[string]*models.CollisionReport)}
}

func (m *mockReportStore) Create(ctx context.Context, report *models.CollisionReport) error {
	copied := *report
	m.reports[report.ID] = &copied
	return nil
}

func (m *mockReportStore) FindByID(ctx context.Context, id string) (*models.CollisionReport, error) {
	report, ok := m.reports[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *report
	return &copied, nil
}

func (m *mockReportStore) MarkRunning(ctx context.Context, id string) error {
	m.reports[id].Status = models.ReportRunning
	return nil
}

func (m *mockReportStore) MarkCompleted(ctx context.Context, id, filePath string, issuesTotal int) error {
	report := m.reports[id]
	report.Status = models.ReportCompleted
	report.FilePath = filePath
	report.IssuesTotal = issuesTotal
	return nil
}

func (m *mockReportStore) MarkFailed(ctx context.Context, id string, cause error) error {
	report := m.reports[id]
	report.Status = models.ReportFailed
	if cause != nil {
		report.ErrorMessage = cause.Error()
	}
	return nil
}

func (m *mockReportStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) ([]string, error) {
	return nil, nil
}

type recordingQueue struct {
	jobs []jobs.Job
}

func (q *recordingQueue) Enqueue(job jobs.Job) error {
	q.jobs = append(q.jobs, job)
	return nil
}

type fixedRunner struct {
	issues []models.Issue
	err    error
}

func (r *fixedRunner) Check(ctx context.Context, lessons []models.Lesson, flags CheckFlags, extraVerySame [][]models.VerySameLessonID) (*models.CheckResults, error) {
	if r.err != nil {
		return nil, r.err
	}
	return &models.CheckResults{Issues: r.issues}, nil
}

func newTestReportService(t *testing.T, runner collisionRunner) (*ReportService, *mockReportStore, *recordingQueue) {
	t.Helper()
	store := newMockReportStore()
	queue := &recordingQueue{}
	files, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("test-secret", time.Hour)
	svc := NewReportService(store, runner, queue, files, signer, ReportServiceConfig{}, nil)
	return svc, store, queue
}

func TestReportServiceLifecycle(t *testing.T) {
	issue := models.NewCapacityIssue("312", nil, 40, weekly("Calculus", "312", "A. Petrov", models.Monday, "09:00", "10:30"))
	svc, store, queue := newTestReportService(t, &fixedRunner{issues: []models.Issue{issue}})

	lessons := []models.Lesson{weekly("Calculus", "312", "A. Petrov", models.Monday, "09:00", "10:30")}
	report, err := svc.CreateReport(context.Background(), lessons, AllChecks(), models.ReportCSV, "scheduler@example.edu")
	require.NoError(t, err)
	require.Len(t, queue.jobs, 1)
	assert.Equal(t, models.ReportPending, report.Status)

	require.NoError(t, svc.HandleJob(context.Background(), queue.jobs[0]))

	finished, err := svc.GetReport(context.Background(), report.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReportCompleted, finished.Status)
	assert.Equal(t, 1, finished.IssuesTotal)
	assert.NotEmpty(t, store.reports[report.ID].FilePath)

	token, _, err := svc.DownloadURL(context.Background(), report.ID)
	require.NoError(t, err)

	download, err := svc.ResolveDownload(context.Background(), token)
	require.NoError(t, err)
	defer download.File.Close()
	assert.Contains(t, download.Filename, report.ID)
}

func TestReportServiceFailedCheck(t *testing.T) {
	svc, store, queue := newTestReportService(t, &fixedRunner{err: assert.AnError})

	lessons := []models.Lesson{weekly("Calculus", "312", "A. Petrov", models.Monday, "09:00", "10:30")}
	report, err := svc.CreateReport(context.Background(), lessons, AllChecks(), models.ReportPDF, "")
	require.NoError(t, err)

	require.NoError(t, svc.HandleJob(context.Background(), queue.jobs[0]))
	assert.Equal(t, models.ReportFailed, store.reports[report.ID].Status)
	assert.NotEmpty(t, store.reports[report.ID].ErrorMessage)
}

func TestReportServiceRejectsUnknownFormat(t *testing.T) {
	svc, _, _ := newTestReportService(t, &fixedRunner{})

	lessons := []models.Lesson{weekly("Calculus", "312", "A. Petrov", models.Monday, "09:00", "10:30")}
	_, err := svc.CreateReport(context.Background(), lessons, AllChecks(), "xlsx", "")
	require.Error(t, err)
}

func TestReportServiceDownloadNotReady(t *testing.T) {
	svc, _, _ := newTestReportService(t, &fixedRunner{})

	lessons := []models.Lesson{weekly("Calculus", "312", "A. Petrov", models.Monday, "09:00", "10:30")}
	report, err := svc.CreateReport(context.Background(), lessons, AllChecks(), models.ReportCSV, "")
	require.NoError(t, err)

	_, _, err = svc.DownloadURL(context.Background(), report.ID)
	require.Error(t, err)
}
