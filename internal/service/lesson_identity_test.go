package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/one-zero-eight/schedule-builder-backend/internal/models"
)

func TestMergeIdenticalLessons(t *testing.T) {
	checker := newTestChecker(t, nil, nil, nil)

	a := weekly("Calculus", "107", "A. Petrov", models.Monday, "09:00", "10:30")
	a.Groups = models.StringSet{"B22-SD-02"}
	a.StudentsNumber = 12
	a.ExcelRange = "B4:B5"
	b := a
	b.Groups = models.StringSet{"B22-SD-01"}
	b.StudentsNumber = 8
	b.ExcelRange = "C4:C5"
	other := weekly("Physics", "312", "B. Sidorov", models.Monday, "09:00", "10:30")

	merged := checker.MergeIdenticalLessons([]models.Lesson{a, b, other})
	require.Len(t, merged, 2)

	var calculus models.Lesson
	for _, lesson := range merged {
		if lesson.LessonName == "Calculus" {
			calculus = lesson
		}
	}
	assert.Equal(t, models.StringSet{"B22-SD-01", "B22-SD-02"}, calculus.Groups)
	assert.Equal(t, 20, calculus.StudentsNumber)
	assert.Equal(t, "B4:B5;C4:C5", calculus.ExcelRange)
}

func TestMergeIdenticalLessonsIdempotent(t *testing.T) {
	checker := newTestChecker(t, nil, nil, nil)

	a := weekly("Calculus", "107", "A. Petrov", models.Monday, "09:00", "10:30")
	a.Groups = models.StringSet{"B22-SD-02"}
	b := a
	b.Groups = models.StringSet{"B22-SD-01"}

	once := checker.MergeIdenticalLessons([]models.Lesson{a, b})
	twice := checker.MergeIdenticalLessons(once)
	assert.Equal(t, once, twice)
}

func TestLessonsIdenticalDistinguishesTimes(t *testing.T) {
	a := weekly("Calculus", "107", "A. Petrov", models.Monday, "09:00", "10:30")
	b := a
	assert.True(t, lessonsIdentical(&a, &b))

	b.StartTime = tod("10:00")
	assert.False(t, lessonsIdentical(&a, &b))

	c := a
	c.Rooms = models.StringSet{"108"}
	assert.False(t, lessonsIdentical(&a, &c))

	d := a
	d.DateExcept = []models.Date{day("2026-01-12")}
	assert.False(t, lessonsIdentical(&a, &d))
}

func TestSameLogicalLesson(t *testing.T) {
	a := weekly("Calculus", "107", "A. Petrov", models.Monday, "09:00", "12:00")
	b := weekly("Calculus", "107", "A. Petrov", models.Monday, "12:00", "13:30")
	assert.True(t, sameLogicalLesson(&a, &b))

	c := weekly("Calculus", "108", "A. Petrov", models.Monday, "12:00", "13:30")
	assert.False(t, sameLogicalLesson(&a, &c))

	d := weekly("Calculus", "107", "B. Sidorov", models.Monday, "12:00", "13:30")
	assert.False(t, sameLogicalLesson(&a, &d))
}

func TestVerySameIndexPatternMatching(t *testing.T) {
	opts := &models.OptionsData{
		VerySameLessons: [][]models.VerySameLessonID{{
			{Type: models.SourceCoreCourse, Title: "Mathematical Analysis I", Groups: []string{"B25-01"}},
			{Type: models.SourceElective, Title: "Математический анализ I"},
		}},
	}
	checker := newTestChecker(t, opts, nil, nil)

	core := weekly("Mathematical Analysis I", "108", "A. Petrov", models.Monday, "09:00", "10:30")
	core.SourceType = models.SourceCoreCourse
	core.Groups = models.StringSet{"B25-01"}
	elective := weekly("Математический анализ I", "108", "B. Sidorov", models.Monday, "09:00", "10:30")
	elective.SourceType = models.SourceElective

	lessons := []models.Lesson{core, elective}
	index := checker.buildVerySameIndex(lessons)
	assert.True(t, index.areVerySame(0, 1))
	assert.True(t, index.areVerySame(1, 0))

	// Wrong group breaks the first pattern, and with it the pairing.
	lessons[0].Groups = models.StringSet{"B25-02"}
	index = checker.buildVerySameIndex(lessons)
	assert.False(t, index.areVerySame(0, 1))

	// Two lessons matching the same pattern are duplicates, not very-same.
	twin := elective
	index = checker.buildVerySameIndex([]models.Lesson{elective, twin})
	assert.False(t, index.areVerySame(0, 1))
}
