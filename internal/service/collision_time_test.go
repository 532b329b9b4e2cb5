package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/one-zero-eight/schedule-builder-backend/internal/models"
)

func TestTimesIntersect(t *testing.T) {
	tests := []struct {
		name                       string
		startA, endA, startB, endB string
		want                       bool
	}{
		{"disjoint", "09:00", "10:30", "11:00", "12:30", false},
		{"overlapping", "09:00", "10:30", "10:00", "11:30", true},
		{"contained", "09:00", "12:30", "10:00", "11:00", true},
		{"touching endpoints count", "09:00", "10:30", "10:30", "12:00", true},
		{"identical", "09:00", "10:30", "09:00", "10:30", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := timesIntersect(tod(tt.startA), tod(tt.endA), tod(tt.startB), tod(tt.endB))
			assert.Equal(t, tt.want, got)
			// Symmetric by construction.
			assert.Equal(t, got, timesIntersect(tod(tt.startB), tod(tt.endB), tod(tt.startA), tod(tt.endA)))
		})
	}
}

func TestDatetimesOverlapThreshold(t *testing.T) {
	at := func(h, m int) time.Time {
		return time.Date(2026, time.January, 12, h, m, 0, 0, time.UTC)
	}

	assert.False(t, datetimesOverlap(at(9, 0), at(10, 30), at(10, 29), at(11, 0), time.Minute),
		"exactly the threshold does not count")
	assert.True(t, datetimesOverlap(at(9, 0), at(10, 30), at(10, 28), at(11, 0), time.Minute))
	assert.False(t, datetimesOverlap(at(9, 0), at(10, 30), at(10, 30), at(11, 0), time.Minute))
}

func TestLessonsCollideByTimeMixedStyles(t *testing.T) {
	recurring := weekly("Calculus", "107", "A. Petrov", models.Monday, "09:00", "10:30")
	adhoc := models.Lesson{
		LessonName: "Guest Talk",
		StartTime:  tod("09:00"),
		EndTime:    tod("10:30"),
		DateOn:     []models.Date{day("2026-01-12")},
	}

	assert.True(t, lessonsCollideByTime(&recurring, &adhoc))
	assert.True(t, lessonsCollideByTime(&adhoc, &recurring), "argument order must not matter")

	// A Tuesday date never meets a Monday recurrence.
	tuesday := adhoc
	tuesday.DateOn = []models.Date{day("2026-01-13")}
	assert.False(t, lessonsCollideByTime(&recurring, &tuesday))

	// The recurrence skips an excepted date even on the right weekday.
	excepted := recurring
	excepted.DateExcept = []models.Date{day("2026-01-12")}
	assert.False(t, lessonsCollideByTime(&excepted, &adhoc))
}

func TestLessonsCollideByTimeAdHocPair(t *testing.T) {
	a := models.Lesson{
		LessonName: "Defense A",
		StartTime:  tod("09:00"),
		EndTime:    tod("10:30"),
		DateOn:     []models.Date{day("2026-01-12"), day("2026-01-19")},
	}
	b := models.Lesson{
		LessonName: "Defense B",
		StartTime:  tod("10:00"),
		EndTime:    tod("11:30"),
		DateOn:     []models.Date{day("2026-01-19")},
	}
	assert.True(t, lessonsCollideByTime(&a, &b))

	b.DateOn = []models.Date{day("2026-01-26")}
	assert.False(t, lessonsCollideByTime(&a, &b))
}
