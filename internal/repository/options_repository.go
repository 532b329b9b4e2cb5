package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/one-zero-eight/schedule-builder-backend/internal/models"
)

// Option keys stored in the options table.
const (
	optionSemester        = "semester"
	optionTeachers        = "teachers"
	optionVerySameLessons = "very_same_lessons"
)

// OptionsRepository persists checker reference data as JSON documents keyed
// by option name.
type OptionsRepository struct {
	db *sqlx.DB
}

// NewOptionsRepository constructs the repository.
func NewOptionsRepository(db *sqlx.DB) *OptionsRepository {
	return &OptionsRepository{db: db}
}

// Get loads the full options document. Missing keys are left at their zero
// values, so a fresh database simply yields empty options.
func (r *OptionsRepository) Get(ctx context.Context) (*models.OptionsData, error) {
	opts := &models.OptionsData{}
	if err := r.load(ctx, optionSemester, &opts.Semester); err != nil {
		return nil, err
	}
	if err := r.load(ctx, optionTeachers, &opts.Teachers); err != nil {
		return nil, err
	}
	if err := r.load(ctx, optionVerySameLessons, &opts.VerySameLessons); err != nil {
		return nil, err
	}
	return opts, nil
}

// SaveSemester replaces the semester configuration.
func (r *OptionsRepository) SaveSemester(ctx context.Context, semester *models.SemesterOptions) error {
	return r.store(ctx, optionSemester, semester)
}

// SaveTeachers replaces the teacher roster.
func (r *OptionsRepository) SaveTeachers(ctx context.Context, teachers []models.Teacher) error {
	return r.store(ctx, optionTeachers, teachers)
}

// SaveVerySameLessons replaces the very-same lesson groups.
func (r *OptionsRepository) SaveVerySameLessons(ctx context.Context, groups [][]models.VerySameLessonID) error {
	return r.store(ctx, optionVerySameLessons, groups)
}

func (r *OptionsRepository) load(ctx context.Context, key string, dest interface{}) error {
	const query = `SELECT value FROM options WHERE key = $1`
	var raw []byte
	if err := r.db.GetContext(ctx, &raw, query, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return fmt.Errorf("load option %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("decode option %s: %w", key, err)
	}
	return nil
}

func (r *OptionsRepository) store(ctx context.Context, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode option %s: %w", key, err)
	}
	const query = `INSERT INTO options (key, value, updated_at)
VALUES ($1, $2, $3)
ON CONFLICT (key)
DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.ExecContext(ctx, query, key, raw, time.Now().UTC()); err != nil {
		return fmt.Errorf("store option %s: %w", key, err)
	}
	return nil
}
