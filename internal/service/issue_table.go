package service

import (
	"fmt"
	"strings"

	"github.com/one-zero-eight/schedule-builder-backend/internal/models"
	"github.com/one-zero-eight/schedule-builder-backend/pkg/export"
)

// buildIssueTable flattens detected issues into one row per conflict for
// rendering. Humans reviewing timetables read these side by side with the
// spreadsheet, so the location column carries the sheet and cell range.
func buildIssueTable(issues []models.Issue) export.Report {
	report := export.Report{
		Title:   "Timetable collision report",
		Headers: []string{"Type", "Subject", "Lessons", "Locations"},
	}
	for _, issue := range issues {
		switch v := issue.(type) {
		case models.RoomIssue:
			report.Rows = append(report.Rows, []string{
				string(v.Type()),
				"room " + strings.Join(v.Rooms, ", "),
				describeLessons(v.Lessons),
				describeLocations(v.Lessons),
			})
		case models.TeacherIssue:
			lessons := append(append([]models.Lesson{}, v.TeachingLessons...), v.StudyingLessons...)
			report.Rows = append(report.Rows, []string{
				string(v.Type()),
				v.Teacher,
				describeLessons(lessons),
				describeLocations(lessons),
			})
		case models.CapacityIssue:
			capacity := "default"
			if v.RoomCapacity != nil {
				capacity = fmt.Sprintf("%d", *v.RoomCapacity)
			}
			report.Rows = append(report.Rows, []string{
				string(v.Type()),
				fmt.Sprintf("room %s seats %s, needs %d", v.Room, capacity, v.NeededCapacity),
				describeLessons([]models.Lesson{v.Lesson}),
				describeLocations([]models.Lesson{v.Lesson}),
			})
		case models.OutlookIssue:
			report.Rows = append(report.Rows, []string{
				string(v.Type()),
				v.OutlookEventTitle,
				describeLessons(v.Lessons),
				describeLocations(v.Lessons),
			})
		}
	}
	return report
}

func describeLessons(lessons []models.Lesson) string {
	parts := make([]string, 0, len(lessons))
	for _, lesson := range lessons {
		when := string(lesson.Weekday)
		if lesson.IsAdHoc() {
			dates := make([]string, 0, len(lesson.DateOn))
			for _, d := range lesson.DateOn {
				dates = append(dates, d.String())
			}
			when = strings.Join(dates, "/")
		}
		parts = append(parts, fmt.Sprintf("%s (%s %s-%s)", lesson.LessonName, when, lesson.StartTime, lesson.EndTime))
	}
	return strings.Join(parts, "; ")
}

func describeLocations(lessons []models.Lesson) string {
	parts := make([]string, 0, len(lessons))
	for _, lesson := range lessons {
		location := lesson.SheetName
		if lesson.ExcelRange != "" {
			location += "!" + lesson.ExcelRange
		}
		if location == "" {
			location = "-"
		}
		parts = append(parts, location)
	}
	return strings.Join(parts, "; ")
}
