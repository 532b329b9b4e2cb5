package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/one-zero-eight/schedule-builder-backend/internal/models"
	appErrors "github.com/one-zero-eight/schedule-builder-backend/pkg/errors"
)

type optionsRepository interface {
	Get(ctx context.Context) (*models.OptionsData, error)
	SaveSemester(ctx context.Context, semester *models.SemesterOptions) error
	SaveTeachers(ctx context.Context, teachers []models.Teacher) error
	SaveVerySameLessons(ctx context.Context, groups [][]models.VerySameLessonID) error
}

// OptionsService manages the checker's reference data: the semester window,
// the teacher roster and the very-same lesson groups.
type OptionsService struct {
	repo     optionsRepository
	validate *validator.Validate
	logger   *zap.Logger
}

// NewOptionsService constructs the service.
func NewOptionsService(repo optionsRepository, validate *validator.Validate, logger *zap.Logger) *OptionsService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OptionsService{repo: repo, validate: validate, logger: logger}
}

// Get returns the complete options document.
func (s *OptionsService) Get(ctx context.Context) (*models.OptionsData, error) {
	opts, err := s.repo.Get(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "load options")
	}
	return opts, nil
}

// UpdateSemester replaces the semester configuration.
func (s *OptionsService) UpdateSemester(ctx context.Context, semester *models.SemesterOptions) error {
	if semester.Name == "" {
		return appErrors.Clone(appErrors.ErrValidation, "semester name is required")
	}
	if !semester.StartDate.Before(semester.EndDate) {
		return appErrors.Clone(appErrors.ErrValidation, "semester start date must precede end date")
	}
	for _, override := range semester.Overrides {
		if len(override.Groups) == 0 && len(override.Courses) == 0 {
			return appErrors.Clone(appErrors.ErrValidation, "override must target at least one group or course")
		}
		if !override.StartDate.Before(override.EndDate) {
			return appErrors.Clone(appErrors.ErrValidation, "override start date must precede end date")
		}
	}
	if err := s.repo.SaveSemester(ctx, semester); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "save semester")
	}
	s.logger.Sugar().Infow("semester updated", "name", semester.Name,
		"start", semester.StartDate.String(), "end", semester.EndDate.String())
	return nil
}

// UpdateVerySameLessons replaces the very-same lesson groups.
func (s *OptionsService) UpdateVerySameLessons(ctx context.Context, groups [][]models.VerySameLessonID) error {
	for _, group := range groups {
		if len(group) < 2 {
			return appErrors.Clone(appErrors.ErrValidation, "a very-same group needs at least two patterns")
		}
		for _, pattern := range group {
			if strings.TrimSpace(pattern.Title) == "" {
				return appErrors.Clone(appErrors.ErrValidation, "a very-same pattern needs a title")
			}
		}
	}
	if err := s.repo.SaveVerySameLessons(ctx, groups); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "save very-same lessons")
	}
	return nil
}

// ReplaceTeachersFromTSV parses a tab-separated roster export and replaces
// the stored teacher list. Expected columns: english name, russian name,
// email, alias, student group. A header row is skipped when detected.
func (s *OptionsService) ReplaceTeachersFromTSV(ctx context.Context, r io.Reader) ([]models.Teacher, error) {
	reader := csv.NewReader(r)
	reader.Comma = '\t'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var teachers []models.Teacher
	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status,
				fmt.Sprintf("malformed TSV at line %d", line+1))
		}
		line++
		if line == 1 && isRosterHeader(record) {
			continue
		}

		teacher := models.Teacher{
			Name:         rosterField(record, 0),
			RussianName:  rosterField(record, 1),
			Email:        rosterField(record, 2),
			Alias:        rosterField(record, 3),
			StudentGroup: rosterField(record, 4),
		}
		if teacher.Name == "" {
			continue
		}
		teachers = append(teachers, teacher)
	}

	if len(teachers) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "roster contains no teachers")
	}
	if err := s.repo.SaveTeachers(ctx, teachers); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "save teachers")
	}
	s.logger.Sugar().Infow("teacher roster replaced", "teachers", len(teachers))
	return teachers, nil
}

// rosterPlaceholders are spreadsheet values meaning "unknown", scrubbed to
// empty during import. "по ТД" marks external contractors without accounts.
var rosterPlaceholders = map[string]struct{}{
	"-":     {},
	"?":     {},
	"по тд": {},
}

func rosterField(record []string, index int) string {
	if index >= len(record) {
		return ""
	}
	value := strings.TrimSpace(record[index])
	if _, ok := rosterPlaceholders[strings.ToLower(value)]; ok {
		return ""
	}
	return value
}

func isRosterHeader(record []string) bool {
	for _, field := range record {
		lowered := strings.ToLower(strings.TrimSpace(field))
		if lowered == "name" || lowered == "email" {
			return true
		}
	}
	return false
}
