package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/one-zero-eight/schedule-builder-backend/internal/models"
	appErrors "github.com/one-zero-eight/schedule-builder-backend/pkg/errors"
)

// BookingGateway supplies pre-existing reservations from the external
// room-booking system for a date-time window.
type BookingGateway interface {
	GetAllBookings(ctx context.Context, start, end time.Time) ([]models.Booking, error)
}

// CheckFlags selectively enables detectors. The outlook check requires a
// network round trip, the rest are local computation.
type CheckFlags struct {
	Room     bool `json:"check_room_collisions"`
	Teacher  bool `json:"check_teacher_collisions"`
	Capacity bool `json:"check_space_collisions"`
	Outlook  bool `json:"check_outlook_collisions"`
}

// AllChecks enables every detector.
func AllChecks() CheckFlags {
	return CheckFlags{Room: true, Teacher: true, Capacity: true, Outlook: true}
}

// CollisionCheckerConfig tunes detector behaviour.
type CollisionCheckerConfig struct {
	// DefaultRoomCapacity is assumed when the roster has no capacity entry.
	DefaultRoomCapacity int
	// OutlookMinOverlap is the minimum true overlap between a lesson and an
	// external booking before it counts as a conflict.
	OutlookMinOverlap time.Duration
	// OutlookWindowDays is the rolling window used when no semester is
	// configured.
	OutlookWindowDays int
	// OutlookMaxWindowDays caps the bookings fetch window.
	OutlookMaxWindowDays int
	// OnlineRoomNames are room values exempt from room and capacity checks.
	OnlineRoomNames []string
	// ExemptLessonNames are lessons excluded from room conflict reporting
	// (known many-to-one block bookings).
	ExemptLessonNames []string
	// Location is the campus timezone used to materialize lesson datetimes.
	Location *time.Location
	// Now allows tests to pin the clock.
	Now func() time.Time
}

func (c *CollisionCheckerConfig) applyDefaults() {
	if c.DefaultRoomCapacity <= 0 {
		c.DefaultRoomCapacity = 30
	}
	if c.OutlookMinOverlap <= 0 {
		c.OutlookMinOverlap = time.Minute
	}
	if c.OutlookWindowDays <= 0 {
		c.OutlookWindowDays = 30
	}
	if c.OutlookMaxWindowDays <= 0 {
		c.OutlookMaxWindowDays = 61
	}
	if len(c.OnlineRoomNames) == 0 {
		c.OnlineRoomNames = []string{"ONLINE", "ОНЛАЙН"}
	}
	if len(c.ExemptLessonNames) == 0 {
		c.ExemptLessonNames = []string{"Elective course on Physical Education"}
	}
	if c.Location == nil {
		c.Location = time.FixedZone("MSK", 3*60*60)
	}
	if c.Now == nil {
		c.Now = time.Now
	}
}

// CollisionChecker runs the four collision detectors over a lesson set.
// It is built per request from read-only reference data and holds no state
// shared across requests.
type CollisionChecker struct {
	bookings BookingGateway
	cfg      CollisionCheckerConfig
	logger   *zap.Logger

	semester *models.SemesterOptions
	verySame [][]models.VerySameLessonID

	groupToStudyingTeachers map[string][]models.Teacher
	teacherAliases          map[string]string
	roomCapacity            map[string]*int
	validRooms              map[string]struct{}
}

// NewCollisionChecker builds a checker from reference data. The options data
// carries the semester window, the teacher roster and the very-same lesson
// groups; rooms come from the booking service.
func NewCollisionChecker(
	opts *models.OptionsData,
	rooms []models.Room,
	bookings BookingGateway,
	cfg CollisionCheckerConfig,
	logger *zap.Logger,
) *CollisionChecker {
	cfg.applyDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts == nil {
		opts = &models.OptionsData{}
	}

	c := &CollisionChecker{
		bookings:                bookings,
		cfg:                     cfg,
		logger:                  logger,
		semester:                opts.Semester,
		verySame:                opts.VerySameLessons,
		groupToStudyingTeachers: make(map[string][]models.Teacher),
		teacherAliases:          make(map[string]string),
		roomCapacity:            make(map[string]*int, len(rooms)),
		validRooms:              make(map[string]struct{}, len(rooms)),
	}

	for _, teacher := range opts.Teachers {
		// Spreadsheets refer to the same person by English name, Russian
		// name or a short alias interchangeably.
		for _, alias := range []string{teacher.Name, teacher.RussianName, teacher.Alias} {
			if alias != "" {
				c.teacherAliases[normalizeName(alias)] = teacher.Name
			}
		}
		if teacher.StudentGroup == "" {
			continue
		}
		key := normalizeName(teacher.StudentGroup)
		c.groupToStudyingTeachers[key] = append(c.groupToStudyingTeachers[key], teacher)
	}
	for _, room := range rooms {
		c.roomCapacity[room.ID] = room.Capacity
		c.validRooms[room.ID] = struct{}{}
	}
	return c
}

// GetCollisions merges duplicate spreadsheet entries once, then runs every
// enabled detector independently and concatenates their issues.
func (c *CollisionChecker) GetCollisions(ctx context.Context, lessons []models.Lesson, flags CheckFlags) ([]models.Issue, error) {
	for i := range lessons {
		if err := lessons[i].Validate(); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "malformed lesson")
		}
	}

	c.logger.Sugar().Infow("checking collisions", "lessons", len(lessons))
	lessons = c.MergeIdenticalLessons(lessons)
	c.logger.Sugar().Infow("merged identical lessons", "lessons", len(lessons))

	verySame := c.buildVerySameIndex(lessons)

	var issues []models.Issue
	if flags.Room {
		found := c.checkRoomIssues(lessons, verySame)
		c.logger.Sugar().Infow("room check done", "issues", len(found))
		issues = append(issues, found...)
	}
	if flags.Teacher {
		found := c.checkTeacherIssues(lessons, verySame)
		c.logger.Sugar().Infow("teacher check done", "issues", len(found))
		issues = append(issues, found...)
	}
	if flags.Capacity {
		found := c.checkCapacityIssues(lessons)
		c.logger.Sugar().Infow("capacity check done", "issues", len(found))
		issues = append(issues, found...)
	}
	if flags.Outlook {
		found := c.checkOutlookIssues(ctx, lessons)
		c.logger.Sugar().Infow("outlook check done", "issues", len(found))
		issues = append(issues, found...)
	}

	c.logger.Sugar().Infow("collision check finished", "issues", len(issues))
	return issues, nil
}

// isOnlineRoom matches a single room value against the online synonym set.
func (c *CollisionChecker) isOnlineRoom(room string) bool {
	for _, name := range c.cfg.OnlineRoomNames {
		if strings.EqualFold(room, name) {
			return true
		}
	}
	return false
}

// isOnlineLesson reports whether every assigned room is an online marker.
func (c *CollisionChecker) isOnlineLesson(lesson *models.Lesson) bool {
	if !lesson.HasRoom() {
		return false
	}
	for _, room := range lesson.Rooms {
		if !c.isOnlineRoom(room) {
			return false
		}
	}
	return true
}

func (c *CollisionChecker) isExemptLesson(lesson *models.Lesson) bool {
	for _, name := range c.cfg.ExemptLessonNames {
		if strings.EqualFold(lesson.LessonName, name) {
			return true
		}
	}
	return false
}

// normalizeName canonicalizes teacher and group keys so casing differences in
// spreadsheets do not fragment one person's occupancy map.
func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// canonicalTeacher resolves a spreadsheet teacher value through the roster
// alias table, so that "A. Petrov", "Петров А." and "apetrov" all collapse
// into one occupancy key.
func (c *CollisionChecker) canonicalTeacher(name string) (key, display string) {
	if canonical, ok := c.teacherAliases[normalizeName(name)]; ok {
		return normalizeName(canonical), canonical
	}
	return normalizeName(name), name
}
