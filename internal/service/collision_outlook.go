package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/one-zero-eight/schedule-builder-backend/internal/models"
)

// occurrence is one concrete wall-clock materialization of a lesson.
type occurrence struct {
	lesson int
	start  time.Time
	end    time.Time
}

// checkOutlookIssues compares scheduled lessons against pre-existing
// reservations in the external booking system. The booking service being
// down degrades the check to zero issues rather than failing the request.
func (c *CollisionChecker) checkOutlookIssues(ctx context.Context, lessons []models.Lesson) []models.Issue {
	now := c.cfg.Now().In(c.cfg.Location)
	start := now
	end := start.AddDate(0, 0, c.cfg.OutlookWindowDays)
	if c.semester != nil {
		semesterEnd := c.semester.EndDate.At(models.NewTimeOfDay(23, 59), c.cfg.Location)
		if semesterEnd.After(start) {
			end = semesterEnd
		}
	}
	if limit := start.AddDate(0, 0, c.cfg.OutlookMaxWindowDays); end.After(limit) {
		end = limit
	}

	bookings, err := c.bookings.GetAllBookings(ctx, start, end)
	if err != nil {
		c.logger.Sugar().Warnw("booking service unavailable, skipping outlook check", "error", err)
		return nil
	}

	windowStart := models.DateOf(start)
	windowEnd := models.DateOf(end)

	type cluster struct {
		title    string
		bookings []models.Booking
		seen     map[string]struct{}
		lessons  []int
	}
	clusters := make(map[string]*cluster)

	for i := range lessons {
		lesson := &lessons[i]
		if !lesson.HasRoom() || c.isOnlineLesson(lesson) {
			continue
		}
		for _, occ := range c.materializeOccurrences(lesson, i, windowStart, windowEnd) {
			for _, booking := range bookings {
				if !booking.EndTime.After(now) {
					continue
				}
				if !lesson.Rooms.Contains(booking.RoomID) || c.isOnlineRoom(booking.RoomID) {
					continue
				}
				if !datetimesOverlap(occ.start, occ.end, booking.StartTime, booking.EndTime, c.cfg.OutlookMinOverlap) {
					continue
				}
				if c.bookingBelongsToLesson(booking.Title, lesson) {
					continue
				}

				key := normalizeEventTitle(booking.Title)
				cl, ok := clusters[key]
				if !ok {
					cl = &cluster{title: booking.Title, seen: make(map[string]struct{})}
					clusters[key] = cl
				}
				bookingKey := booking.RoomID + "|" + booking.StartTime.Format(time.RFC3339)
				if _, dup := cl.seen[bookingKey]; !dup {
					cl.seen[bookingKey] = struct{}{}
					cl.bookings = append(cl.bookings, booking)
				}
				if len(cl.lessons) == 0 || cl.lessons[len(cl.lessons)-1] != i {
					cl.lessons = append(cl.lessons, i)
				}
			}
		}
	}

	keys := make([]string, 0, len(clusters))
	for key := range clusters {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var issues []models.Issue
	for _, key := range keys {
		cl := clusters[key]
		sort.Slice(cl.bookings, func(a, b int) bool {
			if !cl.bookings[a].StartTime.Equal(cl.bookings[b].StartTime) {
				return cl.bookings[a].StartTime.Before(cl.bookings[b].StartTime)
			}
			return cl.bookings[a].RoomID < cl.bookings[b].RoomID
		})
		clustered := make([]models.Lesson, 0, len(cl.lessons))
		for _, i := range cl.lessons {
			clustered = append(clustered, lessons[i])
		}
		issues = append(issues, models.OutlookIssue{
			CollisionType:     models.CollisionOutlook,
			OutlookEventTitle: cl.title,
			OutlookInfo:       cl.bookings,
			Lessons:           clustered,
		})
	}
	return issues
}

// materializeOccurrences expands a lesson into concrete datetimes inside
// [windowStart, windowEnd). Weekly lessons range over the operative semester
// dates (honoring per-group overrides and the lesson's own start date),
// ad-hoc lessons contribute their listed dates only.
func (c *CollisionChecker) materializeOccurrences(lesson *models.Lesson, index int, windowStart, windowEnd models.Date) []occurrence {
	from, to := windowStart, windowEnd
	if c.semester != nil {
		opStart, opEnd := c.semester.AppliesTo(lesson)
		if opStart.After(from) {
			from = opStart
		}
		if opEnd.Before(to) {
			to = opEnd
		}
	}
	if lesson.DateFrom != nil && lesson.DateFrom.After(from) {
		from = *lesson.DateFrom
	}

	var out []occurrence
	add := func(date models.Date) {
		out = append(out, occurrence{
			lesson: index,
			start:  date.At(lesson.StartTime, c.cfg.Location),
			end:    date.At(lesson.EndTime, c.cfg.Location),
		})
	}

	if lesson.IsAdHoc() {
		for _, date := range lesson.DateOn {
			if !date.Before(from) && date.Before(to) {
				add(date)
			}
		}
		return out
	}

	for date := from; date.Before(to); date = date.AddDays(1) {
		if !lesson.Weekday.Matches(date) || models.ContainsDate(lesson.DateExcept, date) {
			continue
		}
		add(date)
	}
	return out
}

// lessonTitleSuffixes are the delivery-mode markers appended to booking
// titles made for lessons, stripped before title comparison.
var lessonTitleSuffixes = []string{
	"(lec + tut)", "(lec)", "(tut)", "(lab)",
	"(лек + тут)", "(лек)", "(тут)", "(лаб)",
}

// placeholderEventTitles are generic booking titles used to block rooms for
// teaching; any lesson may legitimately sit under them.
var placeholderEventTitles = map[string]struct{}{
	"lectures": {},
	"labs":     {},
}

func normalizeEventTitle(title string) string {
	t := strings.ToLower(strings.TrimSpace(title))
	for _, suffix := range lessonTitleSuffixes {
		if strings.HasSuffix(t, suffix) {
			t = strings.TrimSpace(strings.TrimSuffix(t, suffix))
		}
	}
	return t
}

// bookingBelongsToLesson filters out the lesson's own reservation: bookings
// titled like the lesson itself, generic teaching placeholders, and blocks
// made by schedule assistants.
func (c *CollisionChecker) bookingBelongsToLesson(title string, lesson *models.Lesson) bool {
	normalized := normalizeEventTitle(title)
	if _, ok := placeholderEventTitles[normalized]; ok {
		return true
	}
	if strings.HasPrefix(normalized, "schedule assistant") {
		return true
	}
	return normalized == normalizeEventTitle(lesson.LessonName)
}
