package service

import (
	"time"

	"github.com/one-zero-eight/schedule-builder-backend/internal/models"
)

// timesIntersect decides whether two time-of-day intervals overlap.
// Intervals that merely touch at an endpoint count as overlapping.
func timesIntersect(startA, endA, startB, endB models.TimeOfDay) bool {
	return !(endA.Before(startB) || endB.Before(startA))
}

// datetimesOverlap requires strictly more than minOverlap of shared time.
// Used against external bookings, where a minute of boundary slop between
// calendar systems is routine.
func datetimesOverlap(startA, endA, startB, endB time.Time, minOverlap time.Duration) bool {
	overlap := minTime(endA, endB).Sub(maxTime(startA, startB))
	return overlap > minOverlap
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

// lessonsCollideByTime reconciles the two recurrence styles and decides
// whether two lessons ever occupy overlapping wall-clock time.
//
// Every detector reduces to "collide by time AND domain predicate implies a
// conflict edge", so this is the load-bearing invariant of the whole system.
func lessonsCollideByTime(a, b *models.Lesson) bool {
	// Both on explicit dates: the date sets must share a day.
	if a.IsAdHoc() && b.IsAdHoc() {
		if !datesIntersect(a.DateOn, b.DateOn) {
			return false
		}
		return timesIntersect(a.StartTime, a.EndTime, b.StartTime, b.EndTime)
	}

	// Both weekly: the weekday must match.
	if !a.IsAdHoc() && !b.IsAdHoc() {
		if a.Weekday != b.Weekday {
			return false
		}
		return timesIntersect(a.StartTime, a.EndTime, b.StartTime, b.EndTime)
	}

	// Mixed: normalize so that `adhoc` carries the explicit dates.
	adhoc, weekly := a, b
	if b.IsAdHoc() {
		adhoc, weekly = b, a
	}

	// A date listed in the weekly lesson's exception list means the weekly
	// occurrence is suppressed that day (the ONLY-ON override pattern), so
	// only dates outside the exception list can produce a conflict.
	occurs := false
	for _, date := range adhoc.DateOn {
		if models.ContainsDate(weekly.DateExcept, date) {
			continue
		}
		if weekly.Weekday.Matches(date) {
			occurs = true
			break
		}
	}
	if !occurs {
		return false
	}

	return timesIntersect(adhoc.StartTime, adhoc.EndTime, weekly.StartTime, weekly.EndTime)
}

func datesIntersect(a, b []models.Date) bool {
	for _, date := range a {
		if models.ContainsDate(b, date) {
			return true
		}
	}
	return false
}
