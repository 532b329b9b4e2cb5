package models

// CollisionType discriminates the Issue union.
type CollisionType string

const (
	CollisionRoom     CollisionType = "room"
	CollisionTeacher  CollisionType = "teacher"
	CollisionCapacity CollisionType = "capacity"
	CollisionOutlook  CollisionType = "outlook"
)

// Issue is one detected scheduling conflict of any kind.
type Issue interface {
	Type() CollisionType
}

// RoomIssue reports multiple lessons occupying a room at the same time.
type RoomIssue struct {
	CollisionType CollisionType `json:"collision_type"`

	// Rooms lists every room implicated by at least one conflict edge in
	// this cluster (multi-room lessons can clash in several rooms at once).
	Rooms StringSet `json:"room"`

	Lessons []Lesson `json:"lessons"`
}

// NewRoomIssue constructs a RoomIssue with its discriminator set.
func NewRoomIssue(rooms StringSet, lessons []Lesson) RoomIssue {
	return RoomIssue{CollisionType: CollisionRoom, Rooms: rooms, Lessons: lessons}
}

func (i RoomIssue) Type() CollisionType { return CollisionRoom }

// TeacherIssue reports a teacher occupied by several lessons at once,
// including lessons where the teacher attends as a student.
type TeacherIssue struct {
	CollisionType CollisionType `json:"collision_type"`

	Teacher         string   `json:"teacher"`
	TeachingLessons []Lesson `json:"teaching_lessons"`
	StudyingLessons []Lesson `json:"studying_lessons"`
}

// NewTeacherIssue constructs a TeacherIssue with its discriminator set.
func NewTeacherIssue(teacher string, teaching, studying []Lesson) TeacherIssue {
	return TeacherIssue{
		CollisionType:   CollisionTeacher,
		Teacher:         teacher,
		TeachingLessons: teaching,
		StudyingLessons: studying,
	}
}

func (i TeacherIssue) Type() CollisionType { return CollisionTeacher }

// CapacityIssue reports a lesson with more students than its room can seat.
type CapacityIssue struct {
	CollisionType CollisionType `json:"collision_type"`

	Room string `json:"room"`
	// RoomCapacity is nil when the roster does not know the room's size and
	// the default assumption was applied.
	RoomCapacity   *int   `json:"room_capacity"`
	NeededCapacity int    `json:"needed_capacity"`
	Lesson         Lesson `json:"lesson"`
}

// NewCapacityIssue constructs a CapacityIssue with its discriminator set.
func NewCapacityIssue(room string, capacity *int, needed int, lesson Lesson) CapacityIssue {
	return CapacityIssue{
		CollisionType:  CollisionCapacity,
		Room:           room,
		RoomCapacity:   capacity,
		NeededCapacity: needed,
		Lesson:         lesson,
	}
}

func (i CapacityIssue) Type() CollisionType { return CollisionCapacity }

// OutlookIssue reports external room bookings overlapping scheduled lessons,
// grouped by the external event they belong to.
type OutlookIssue struct {
	CollisionType CollisionType `json:"collision_type"`

	OutlookEventTitle string    `json:"outlook_event_title"`
	OutlookInfo       []Booking `json:"outlook_info"`
	Lessons           []Lesson  `json:"lessons"`
}

func (i OutlookIssue) Type() CollisionType { return CollisionOutlook }

// CheckResults wraps the issue list returned by a collision check.
type CheckResults struct {
	Issues []Issue `json:"issues"`
}
