package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/one-zero-eight/schedule-builder-backend/internal/models"
)

type stubBookingGateway struct {
	bookings []models.Booking
	err      error

	gotStart time.Time
	gotEnd   time.Time
}

func (s *stubBookingGateway) GetAllBookings(ctx context.Context, start, end time.Time) ([]models.Booking, error) {
	s.gotStart, s.gotEnd = start, end
	if s.err != nil {
		return nil, s.err
	}
	return s.bookings, nil
}

func tod(s string) models.TimeOfDay {
	t, err := models.ParseTimeOfDay(s)
	if err != nil {
		panic(err)
	}
	return t
}

func day(s string) models.Date {
	d, err := models.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func weekly(name, room, teacher string, weekday models.Weekday, start, end string) models.Lesson {
	lesson := models.Lesson{
		LessonName: name,
		Weekday:    weekday,
		StartTime:  tod(start),
		EndTime:    tod(end),
		Teacher:    teacher,
	}
	if room != "" {
		lesson.Rooms = models.StringSet{room}
	}
	return lesson
}

var testClock = time.Date(2026, time.January, 5, 8, 0, 0, 0, time.UTC)

func newTestChecker(t *testing.T, opts *models.OptionsData, rooms []models.Room, gw BookingGateway) *CollisionChecker {
	t.Helper()
	cfg := CollisionCheckerConfig{
		Location: time.UTC,
		Now:      func() time.Time { return testClock },
	}
	return NewCollisionChecker(opts, rooms, gw, cfg, zap.NewNop())
}

func onlyLocal() CheckFlags {
	return CheckFlags{Room: true, Teacher: true, Capacity: true}
}

func TestGetCollisionsRoomConflict(t *testing.T) {
	checker := newTestChecker(t, nil, nil, nil)
	lessons := []models.Lesson{
		weekly("Calculus", "107", "A. Petrov", models.Monday, "09:00", "10:30"),
		weekly("Physics", "107", "B. Sidorov", models.Monday, "10:00", "11:30"),
	}

	issues, err := checker.GetCollisions(context.Background(), lessons, onlyLocal())
	require.NoError(t, err)
	require.Len(t, issues, 1)

	issue, ok := issues[0].(models.RoomIssue)
	require.True(t, ok)
	assert.Equal(t, models.CollisionRoom, issue.CollisionType)
	assert.Equal(t, models.StringSet{"107"}, issue.Rooms)
	assert.Len(t, issue.Lessons, 2)
}

func TestGetCollisionsOrderIndependent(t *testing.T) {
	checker := newTestChecker(t, nil, nil, nil)
	a := weekly("Calculus", "107", "A. Petrov", models.Monday, "09:00", "10:30")
	b := weekly("Physics", "107", "B. Sidorov", models.Monday, "10:00", "11:30")

	forward, err := checker.GetCollisions(context.Background(), []models.Lesson{a, b}, onlyLocal())
	require.NoError(t, err)
	reversed, err := checker.GetCollisions(context.Background(), []models.Lesson{b, a}, onlyLocal())
	require.NoError(t, err)

	assert.Equal(t, len(forward), len(reversed))
}

func TestGetCollisionsDifferentWeekdays(t *testing.T) {
	checker := newTestChecker(t, nil, nil, nil)
	lessons := []models.Lesson{
		weekly("Calculus", "107", "A. Petrov", models.Monday, "09:00", "10:30"),
		weekly("Physics", "107", "B. Sidorov", models.Tuesday, "09:00", "10:30"),
	}

	issues, err := checker.GetCollisions(context.Background(), lessons, onlyLocal())
	require.NoError(t, err)
	assert.Empty(t, issues)
}

func TestGetCollisionsWeeklyExceptionFreesRoom(t *testing.T) {
	checker := newTestChecker(t, nil, nil, nil)
	recurring := weekly("Calculus", "107", "A. Petrov", models.Monday, "09:00", "10:30")
	recurring.DateExcept = []models.Date{day("2026-01-12")}
	adhoc := weekly("Guest Talk", "107", "C. Orlov", "", "09:00", "10:30")
	adhoc.DateOn = []models.Date{day("2026-01-12")}

	issues, err := checker.GetCollisions(context.Background(), []models.Lesson{recurring, adhoc}, onlyLocal())
	require.NoError(t, err)
	assert.Empty(t, issues)

	// Without the exception the same pair collides.
	recurring.DateExcept = nil
	issues, err = checker.GetCollisions(context.Background(), []models.Lesson{recurring, adhoc}, onlyLocal())
	require.NoError(t, err)
	assert.Len(t, issues, 1)
}

func TestGetCollisionsMergesDuplicateRecords(t *testing.T) {
	checker := newTestChecker(t, nil, nil, nil)
	a := weekly("Calculus", "107", "A. Petrov", models.Monday, "09:00", "10:30")
	a.Groups = models.StringSet{"B22-SD-01"}
	a.StudentsNumber = 10
	a.ExcelRange = "B4:B5"
	b := a
	b.Groups = models.StringSet{"B22-SD-02"}
	b.StudentsNumber = 15
	b.ExcelRange = "C4:C5"

	issues, err := checker.GetCollisions(context.Background(), []models.Lesson{a, b}, onlyLocal())
	require.NoError(t, err)
	assert.Empty(t, issues, "a lesson must not conflict with its own duplicate record")
}

func TestGetCollisionsThreeLessonsOneCluster(t *testing.T) {
	checker := newTestChecker(t, nil, nil, nil)
	lessons := []models.Lesson{
		weekly("Calculus", "107", "A. Petrov", models.Monday, "09:00", "10:30"),
		weekly("Physics", "107", "B. Sidorov", models.Monday, "10:00", "11:30"),
		weekly("Chemistry", "107", "C. Orlov", models.Monday, "11:00", "12:30"),
	}

	issues, err := checker.GetCollisions(context.Background(), lessons, CheckFlags{Room: true})
	require.NoError(t, err)
	require.Len(t, issues, 1)

	issue := issues[0].(models.RoomIssue)
	assert.Len(t, issue.Lessons, 3)
}

func TestGetCollisionsOnlineRoomsExempt(t *testing.T) {
	checker := newTestChecker(t, nil, nil, nil)
	lessons := []models.Lesson{
		weekly("Calculus", "ONLINE", "A. Petrov", models.Monday, "09:00", "10:30"),
		weekly("Physics", "ОНЛАЙН", "B. Sidorov", models.Monday, "09:00", "10:30"),
	}
	lessons[0].StudentsNumber = 500
	lessons[1].StudentsNumber = 500

	issues, err := checker.GetCollisions(context.Background(), lessons, onlyLocal())
	require.NoError(t, err)
	assert.Empty(t, issues)
}

func TestGetCollisionsExemptLessonName(t *testing.T) {
	checker := newTestChecker(t, nil, nil, nil)
	lessons := []models.Lesson{
		weekly("Elective course on Physical Education", "SportsHall", "A. Petrov", models.Monday, "09:00", "10:30"),
		weekly("Elective course on Physical Education", "SportsHall", "B. Sidorov", models.Monday, "09:00", "10:30"),
	}

	issues, err := checker.GetCollisions(context.Background(), lessons, CheckFlags{Room: true})
	require.NoError(t, err)
	assert.Empty(t, issues)
}

func TestGetCollisionsSplitLessonNotation(t *testing.T) {
	checker := newTestChecker(t, nil, nil, nil)
	// Same course continuing past a slot boundary, recorded as two rows.
	first := weekly("Calculus", "107", "A. Petrov", models.Monday, "09:00", "12:00")
	second := weekly("Calculus", "107", "A. Petrov", models.Monday, "12:00", "13:30")

	issues, err := checker.GetCollisions(context.Background(), []models.Lesson{first, second}, onlyLocal())
	require.NoError(t, err)
	assert.Empty(t, issues)
}

func TestGetCollisionsVerySameLessons(t *testing.T) {
	opts := &models.OptionsData{
		VerySameLessons: [][]models.VerySameLessonID{{
			{Title: "Mathematical Analysis I"},
			{Title: "Математический анализ I"},
		}},
	}
	lessons := []models.Lesson{
		weekly("Mathematical Analysis I", "108", "A. Petrov", models.Monday, "09:00", "10:30"),
		weekly("Математический анализ I", "108", "B. Sidorov", models.Monday, "09:00", "10:30"),
	}

	checker := newTestChecker(t, opts, nil, nil)
	issues, err := checker.GetCollisions(context.Background(), lessons, CheckFlags{Room: true})
	require.NoError(t, err)
	assert.Empty(t, issues)

	// Without the configuration the same pair is a genuine conflict.
	plain := newTestChecker(t, nil, nil, nil)
	issues, err = plain.GetCollisions(context.Background(), lessons, CheckFlags{Room: true})
	require.NoError(t, err)
	assert.Len(t, issues, 1)
}

func TestGetCollisionsTeacherDoubleBooked(t *testing.T) {
	checker := newTestChecker(t, nil, nil, nil)
	lessons := []models.Lesson{
		weekly("Calculus", "107", "A. Petrov", models.Monday, "09:00", "10:30"),
		weekly("Linear Algebra", "312", "A. Petrov", models.Monday, "10:00", "11:30"),
	}

	issues, err := checker.GetCollisions(context.Background(), lessons, CheckFlags{Teacher: true})
	require.NoError(t, err)
	require.Len(t, issues, 1)

	issue, ok := issues[0].(models.TeacherIssue)
	require.True(t, ok)
	assert.Equal(t, "A. Petrov", issue.Teacher)
	assert.Len(t, issue.TeachingLessons, 2)
	assert.Empty(t, issue.StudyingLessons)
}

func TestGetCollisionsTeacherAliasResolution(t *testing.T) {
	opts := &models.OptionsData{
		Teachers: []models.Teacher{
			{Name: "Aleksandr Petrov", RussianName: "Петров Александр", Alias: "a.petrov"},
		},
	}
	checker := newTestChecker(t, opts, nil, nil)

	lessons := []models.Lesson{
		weekly("Calculus", "107", "Aleksandr Petrov", models.Monday, "09:00", "10:30"),
		weekly("Linear Algebra", "312", "Петров Александр", models.Monday, "10:00", "11:30"),
	}

	issues, err := checker.GetCollisions(context.Background(), lessons, CheckFlags{Teacher: true})
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, "Aleksandr Petrov", issues[0].(models.TeacherIssue).Teacher)
}

func TestGetCollisionsTeacherStudyingConflict(t *testing.T) {
	opts := &models.OptionsData{
		Teachers: []models.Teacher{
			{Name: "D. Ivanov", Email: "d.ivanov@example.edu", StudentGroup: "B22-SD-03"},
		},
	}
	checker := newTestChecker(t, opts, nil, nil)

	taught := weekly("Calculus", "107", "D. Ivanov", models.Monday, "09:00", "10:30")
	attended := weekly("Philosophy", "312", "E. Smirnov", models.Monday, "10:00", "11:30")
	attended.Groups = models.StringSet{"B22-SD-03"}

	issues, err := checker.GetCollisions(context.Background(), []models.Lesson{taught, attended}, CheckFlags{Teacher: true})
	require.NoError(t, err)
	require.Len(t, issues, 1)

	issue := issues[0].(models.TeacherIssue)
	assert.Equal(t, "D. Ivanov", issue.Teacher)
	require.Len(t, issue.TeachingLessons, 1)
	require.Len(t, issue.StudyingLessons, 1)
	assert.Equal(t, "Calculus", issue.TeachingLessons[0].LessonName)
	assert.Equal(t, "Philosophy", issue.StudyingLessons[0].LessonName)
}

func TestGetCollisionsCapacityBoundary(t *testing.T) {
	capacity := 24
	rooms := []models.Room{{ID: "312", Capacity: &capacity}}
	checker := newTestChecker(t, nil, rooms, nil)

	fits := weekly("Calculus", "312", "A. Petrov", models.Monday, "09:00", "10:30")
	fits.StudentsNumber = 24

	issues, err := checker.GetCollisions(context.Background(), []models.Lesson{fits}, CheckFlags{Capacity: true})
	require.NoError(t, err)
	assert.Empty(t, issues, "a full room is not an overflow")

	over := fits
	over.StudentsNumber = 25
	issues, err = checker.GetCollisions(context.Background(), []models.Lesson{over}, CheckFlags{Capacity: true})
	require.NoError(t, err)
	require.Len(t, issues, 1)

	issue := issues[0].(models.CapacityIssue)
	assert.Equal(t, "312", issue.Room)
	require.NotNil(t, issue.RoomCapacity)
	assert.Equal(t, 24, *issue.RoomCapacity)
	assert.Equal(t, 25, issue.NeededCapacity)
}

func TestGetCollisionsCapacityDefaultAssumption(t *testing.T) {
	checker := newTestChecker(t, nil, nil, nil)

	lesson := weekly("Calculus", "unknown-hall", "A. Petrov", models.Monday, "09:00", "10:30")
	lesson.StudentsNumber = 31

	issues, err := checker.GetCollisions(context.Background(), []models.Lesson{lesson}, CheckFlags{Capacity: true})
	require.NoError(t, err)
	require.Len(t, issues, 1)

	issue := issues[0].(models.CapacityIssue)
	assert.Nil(t, issue.RoomCapacity, "default assumption reports no roster capacity")
	assert.Equal(t, 31, issue.NeededCapacity)
}

func TestGetCollisionsMalformedLesson(t *testing.T) {
	checker := newTestChecker(t, nil, nil, nil)
	lessons := []models.Lesson{
		weekly("Broken", "107", "A. Petrov", models.Monday, "11:00", "09:00"),
	}

	_, err := checker.GetCollisions(context.Background(), lessons, onlyLocal())
	require.Error(t, err)
}

func TestGetCollisionsOutlook(t *testing.T) {
	opts := &models.OptionsData{
		Semester: &models.SemesterOptions{
			Name:      "S26",
			StartDate: day("2026-01-05"),
			EndDate:   day("2026-02-20"),
		},
	}
	gw := &stubBookingGateway{bookings: []models.Booking{
		{
			RoomID:    "107",
			Title:     "Thesis Defense Committee",
			StartTime: time.Date(2026, time.January, 12, 9, 0, 0, 0, time.UTC),
			EndTime:   time.Date(2026, time.January, 12, 10, 0, 0, 0, time.UTC),
		},
		{
			// The lesson's own reservation must not be reported.
			RoomID:    "107",
			Title:     "Calculus (lec)",
			StartTime: time.Date(2026, time.January, 12, 9, 0, 0, 0, time.UTC),
			EndTime:   time.Date(2026, time.January, 12, 10, 30, 0, 0, time.UTC),
		},
		{
			// Already over when the check runs.
			RoomID:    "107",
			Title:     "Old Meeting",
			StartTime: time.Date(2026, time.January, 4, 9, 0, 0, 0, time.UTC),
			EndTime:   time.Date(2026, time.January, 4, 10, 0, 0, 0, time.UTC),
		},
	}}
	checker := newTestChecker(t, opts, nil, gw)

	lesson := weekly("Calculus", "107", "A. Petrov", models.Monday, "09:00", "10:30")
	issues, err := checker.GetCollisions(context.Background(), []models.Lesson{lesson}, CheckFlags{Outlook: true})
	require.NoError(t, err)
	require.Len(t, issues, 1)

	issue, ok := issues[0].(models.OutlookIssue)
	require.True(t, ok)
	assert.Equal(t, "Thesis Defense Committee", issue.OutlookEventTitle)
	require.Len(t, issue.OutlookInfo, 1)
	assert.Equal(t, "107", issue.OutlookInfo[0].RoomID)
	require.Len(t, issue.Lessons, 1)
	assert.Equal(t, "Calculus", issue.Lessons[0].LessonName)

	// The fetch window opens at the clock and closes at semester end.
	assert.Equal(t, testClock, gw.gotStart)
	assert.True(t, gw.gotEnd.After(gw.gotStart))
}

func TestGetCollisionsOutlookWindowCapped(t *testing.T) {
	opts := &models.OptionsData{
		Semester: &models.SemesterOptions{
			Name:      "S26",
			StartDate: day("2026-01-05"),
			EndDate:   day("2026-08-31"),
		},
	}
	gw := &stubBookingGateway{}
	checker := newTestChecker(t, opts, nil, gw)

	_, err := checker.GetCollisions(context.Background(), nil, CheckFlags{Outlook: true})
	require.NoError(t, err)
	assert.Equal(t, testClock.AddDate(0, 0, 61), gw.gotEnd)
}

func TestGetCollisionsOutlookMinOverlap(t *testing.T) {
	gw := &stubBookingGateway{bookings: []models.Booking{{
		RoomID:    "107",
		Title:     "Quick Standup",
		StartTime: time.Date(2026, time.January, 12, 10, 29, 0, 0, time.UTC),
		EndTime:   time.Date(2026, time.January, 12, 11, 0, 0, 0, time.UTC),
	}}}
	checker := newTestChecker(t, nil, nil, gw)

	// Lesson ends 10:30, the booking starts 10:29: exactly one minute of
	// shared time stays below the reporting threshold.
	lesson := weekly("Calculus", "107", "A. Petrov", models.Monday, "09:00", "10:30")
	issues, err := checker.GetCollisions(context.Background(), []models.Lesson{lesson}, CheckFlags{Outlook: true})
	require.NoError(t, err)
	assert.Empty(t, issues)
}

func TestGetCollisionsOutlookGatewayDown(t *testing.T) {
	gw := &stubBookingGateway{err: errors.New("connection refused")}
	checker := newTestChecker(t, nil, nil, gw)

	lesson := weekly("Calculus", "107", "A. Petrov", models.Monday, "09:00", "10:30")
	issues, err := checker.GetCollisions(context.Background(), []models.Lesson{lesson}, AllChecks())
	require.NoError(t, err, "a booking service outage must not fail the check")
	assert.Empty(t, issues)
}
