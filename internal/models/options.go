package models

// ScheduleOverride shifts the operative date range for specific groups or
// courses (e.g. a cohort starting the semester late).
type ScheduleOverride struct {
	Groups    []string `json:"groups,omitempty"`
	Courses   []string `json:"courses,omitempty"`
	StartDate Date     `json:"start_date"`
	EndDate   Date     `json:"end_date"`
}

// SemesterOptions bounds the calendar window within which recurring lessons
// are materialized into concrete dates.
type SemesterOptions struct {
	Name      string             `json:"name"`
	StartDate Date               `json:"start_date"`
	EndDate   Date               `json:"end_date"`
	Overrides []ScheduleOverride `json:"override,omitempty"`
}

// AppliesTo resolves the operative date range for a lesson, honoring
// per-group and per-course overrides.
func (s *SemesterOptions) AppliesTo(lesson *Lesson) (Date, Date) {
	for _, override := range s.Overrides {
		if matchesOverride(override, lesson) {
			return override.StartDate, override.EndDate
		}
	}
	return s.StartDate, s.EndDate
}

func matchesOverride(override ScheduleOverride, lesson *Lesson) bool {
	for _, group := range override.Groups {
		if lesson.Groups.Contains(group) {
			return true
		}
	}
	for _, course := range override.Courses {
		if lesson.CourseName == course {
			return true
		}
	}
	return false
}

// VerySameLessonID is a matching pattern, not a concrete lesson: lessons
// matching distinct patterns within one group are administratively known to
// be the same real lesson listed twice (cross-listing, bilingual naming) and
// must not be reported as colliding.
type VerySameLessonID struct {
	Type       SourceType `json:"type,omitempty"`
	Title      string     `json:"title"`
	Instructor string     `json:"instructor,omitempty"`
	Groups     []string   `json:"groups,omitempty"`
}

// OptionsData aggregates everything stored in the options repository.
type OptionsData struct {
	Semester        *SemesterOptions     `json:"semester,omitempty"`
	Teachers        []Teacher            `json:"teachers,omitempty"`
	VerySameLessons [][]VerySameLessonID `json:"very_same_lessons,omitempty"`
}
