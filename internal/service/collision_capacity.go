package service

import (
	"strings"

	"github.com/one-zero-eight/schedule-builder-backend/internal/models"
)

// checkCapacityIssues reports lessons whose enrolled student count exceeds
// the seating of their room. Only lessons in exactly one physical room are
// checked: a multi-room lesson splits its students in a way the spreadsheet
// does not record.
func (c *CollisionChecker) checkCapacityIssues(lessons []models.Lesson) []models.Issue {
	var issues []models.Issue
	for i := range lessons {
		lesson := &lessons[i]
		if len(lesson.Rooms) != 1 || lesson.StudentsNumber <= 0 {
			continue
		}
		room := lesson.Rooms[0]
		if c.isOnlineRoom(room) {
			continue
		}

		reported := c.lookupCapacity(room)
		effective := c.cfg.DefaultRoomCapacity
		if reported != nil {
			effective = *reported
		}
		if lesson.StudentsNumber > effective {
			issues = append(issues, models.NewCapacityIssue(room, reported, lesson.StudentsNumber, *lesson))
		}
	}
	return issues
}

// lookupCapacity resolves a spreadsheet room value against the booking
// service roster. Returns nil when the roster has no capacity for the room,
// leaving the caller to fall back to the default assumption.
func (c *CollisionChecker) lookupCapacity(room string) *int {
	if capacity, ok := c.roomCapacity[room]; ok {
		return capacity
	}
	for id, capacity := range c.roomCapacity {
		if strings.EqualFold(id, room) {
			return capacity
		}
	}
	return nil
}
