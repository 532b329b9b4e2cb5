package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/one-zero-eight/schedule-builder-backend/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	return sqlxDB, mock, func() {
		sqlxDB.Close()
		db.Close()
	}
}

func TestOptionsRepositoryGet(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewOptionsRepository(db)
	mock.ExpectQuery("SELECT value FROM options").
		WithArgs("semester").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).
			AddRow([]byte(`{"name":"S26","start_date":"2026-01-05","end_date":"2026-02-20"}`)))
	mock.ExpectQuery("SELECT value FROM options").
		WithArgs("teachers").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).
			AddRow([]byte(`[{"name":"A. Petrov","email":"a.petrov@example.edu"}]`)))
	mock.ExpectQuery("SELECT value FROM options").
		WithArgs("very_same_lessons").
		WillReturnRows(sqlmock.NewRows([]string{"value"}))

	opts, err := repo.Get(context.Background())
	require.NoError(t, err)
	require.NotNil(t, opts.Semester)
	assert.Equal(t, "S26", opts.Semester.Name)
	require.Len(t, opts.Teachers, 1)
	assert.Equal(t, "A. Petrov", opts.Teachers[0].Name)
	assert.Empty(t, opts.VerySameLessons)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOptionsRepositorySaveSemester(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewOptionsRepository(db)
	mock.ExpectExec("INSERT INTO options").
		WithArgs("semester", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	semester := &models.SemesterOptions{Name: "S26"}
	require.NoError(t, repo.SaveSemester(context.Background(), semester))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReportRepositoryLifecycle(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewReportRepository(db)
	mock.ExpectExec("INSERT INTO collision_reports").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("UPDATE collision_reports").
		WithArgs("job-1", string(models.ReportCompleted), "reports/job-1.csv", 3, "", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	report := &models.CollisionReport{
		ID:     "job-1",
		Status: models.ReportPending,
		Format: models.ReportCSV,
	}
	require.NoError(t, repo.Create(context.Background(), report))
	assert.False(t, report.CreatedAt.IsZero())
	require.NoError(t, repo.MarkCompleted(context.Background(), "job-1", "reports/job-1.csv", 3))
	require.NoError(t, mock.ExpectationsWereMet())
}
