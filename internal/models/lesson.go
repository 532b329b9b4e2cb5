package models

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// SourceType identifies which spreadsheet family a lesson came from.
type SourceType string

const (
	SourceCoreCourse SourceType = "core_course"
	SourceElective   SourceType = "elective"
)

// Weekday is an uppercase weekday name, e.g. "MONDAY".
type Weekday string

const (
	Monday    Weekday = "MONDAY"
	Tuesday   Weekday = "TUESDAY"
	Wednesday Weekday = "WEDNESDAY"
	Thursday  Weekday = "THURSDAY"
	Friday    Weekday = "FRIDAY"
	Saturday  Weekday = "SATURDAY"
	Sunday    Weekday = "SUNDAY"
)

var weekdayIndex = map[Weekday]time.Weekday{
	Monday:    time.Monday,
	Tuesday:   time.Tuesday,
	Wednesday: time.Wednesday,
	Thursday:  time.Thursday,
	Friday:    time.Friday,
	Saturday:  time.Saturday,
	Sunday:    time.Sunday,
}

// Valid reports whether the weekday is one of the seven known names.
func (w Weekday) Valid() bool {
	_, ok := weekdayIndex[Weekday(strings.ToUpper(string(w)))]
	return ok
}

// Time converts the name to the standard library weekday.
func (w Weekday) Time() time.Weekday {
	return weekdayIndex[Weekday(strings.ToUpper(string(w)))]
}

// Matches reports whether the given calendar date falls on this weekday.
func (w Weekday) Matches(d Date) bool {
	return d.Time().Weekday() == w.Time()
}

// Date is a calendar date serialized as "2006-01-02".
type Date struct {
	t time.Time
}

// NewDate builds a Date from its components.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates a time to its calendar date.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate parses "2006-01-02".
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, err
	}
	return DateOf(t), nil
}

// Time returns the date as midnight UTC.
func (d Date) Time() time.Time { return d.t }

// IsZero reports whether the date is unset.
func (d Date) IsZero() bool { return d.t.IsZero() }

// Equal compares calendar dates.
func (d Date) Equal(other Date) bool { return d.t.Equal(other.t) }

// Before reports whether d precedes other.
func (d Date) Before(other Date) bool { return d.t.Before(other.t) }

// After reports whether d follows other.
func (d Date) After(other Date) bool { return d.t.After(other.t) }

// AddDays returns the date shifted by the given number of days.
func (d Date) AddDays(days int) Date { return DateOf(d.t.AddDate(0, 0, days)) }

// String formats the date as "2006-01-02".
func (d Date) String() string { return d.t.Format("2006-01-02") }

// At combines the date with a time of day in the given location.
func (d Date) At(tod TimeOfDay, loc *time.Location) time.Time {
	return time.Date(d.t.Year(), d.t.Month(), d.t.Day(), tod.Hour(), tod.Minute(), 0, 0, loc)
}

// MarshalJSON implements json.Marshaler.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return fmt.Errorf("parse date %q: %w", s, err)
	}
	*d = parsed
	return nil
}

// ContainsDate reports whether the date is a member of the list.
func ContainsDate(dates []Date, d Date) bool {
	for _, item := range dates {
		if item.Equal(d) {
			return true
		}
	}
	return false
}

// TimeOfDay is a wall-clock time serialized as "15:04" (seconds accepted on input).
type TimeOfDay struct {
	minutes int
}

// NewTimeOfDay builds a time of day from hour and minute.
func NewTimeOfDay(hour, minute int) TimeOfDay {
	return TimeOfDay{minutes: hour*60 + minute}
}

// ParseTimeOfDay parses "15:04" or "15:04:05".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return NewTimeOfDay(t.Hour(), t.Minute()), nil
		}
	}
	return TimeOfDay{}, fmt.Errorf("invalid time of day %q", s)
}

// Hour returns the hour component.
func (t TimeOfDay) Hour() int { return t.minutes / 60 }

// Minute returns the minute component.
func (t TimeOfDay) Minute() int { return t.minutes % 60 }

// Minutes returns minutes since midnight.
func (t TimeOfDay) Minutes() int { return t.minutes }

// Before reports whether t precedes other.
func (t TimeOfDay) Before(other TimeOfDay) bool { return t.minutes < other.minutes }

// String formats the time as "15:04".
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// MarshalJSON implements json.Marshaler.
func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// StringSet is a string-or-array-or-null JSON value flattened into a slice.
// The spreadsheets encode "one room", "several rooms at once" and "TBA" as a
// string, an array and null respectively; same for group names.
type StringSet []string

// MarshalJSON keeps the upstream convention: null when empty, a bare string
// for a single value, an array otherwise.
func (s StringSet) MarshalJSON() ([]byte, error) {
	switch len(s) {
	case 0:
		return []byte("null"), nil
	case 1:
		return json.Marshal(s[0])
	default:
		return json.Marshal([]string(s))
	}
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *StringSet) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*s = nil
		return nil
	}
	if strings.HasPrefix(trimmed, "[") {
		var values []string
		if err := json.Unmarshal(data, &values); err != nil {
			return err
		}
		*s = values
		return nil
	}
	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	*s = StringSet{value}
	return nil
}

// Contains performs a case-insensitive membership test.
func (s StringSet) Contains(value string) bool {
	for _, item := range s {
		if strings.EqualFold(item, value) {
			return true
		}
	}
	return false
}

// Intersects reports whether the two sets share a member, case-insensitively.
func (s StringSet) Intersects(other StringSet) bool {
	for _, item := range other {
		if s.Contains(item) {
			return true
		}
	}
	return false
}

// Sorted returns a sorted copy.
func (s StringSet) Sorted() StringSet {
	out := make(StringSet, len(s))
	copy(out, s)
	sort.Strings(out)
	return out
}

// Lesson is one scheduled occurrence of a course meeting, normalized from a
// spreadsheet cell. Exactly one temporal style applies: weekly recurrence
// (Weekday, optionally DateExcept) or explicit dates (DateOn).
type Lesson struct {
	LessonName string  `json:"lesson_name"`
	Weekday    Weekday `json:"weekday,omitempty"`

	StartTime TimeOfDay `json:"start_time"`
	EndTime   TimeOfDay `json:"end_time"`

	// Rooms is empty for TBA lessons and holds several entries for lessons
	// occupying multiple rooms simultaneously.
	Rooms StringSet `json:"room"`

	Teacher      string `json:"teacher,omitempty"`
	TeacherEmail string `json:"teacher_email,omitempty"`

	CourseName     string    `json:"course_name,omitempty"`
	Groups         StringSet `json:"group_name"`
	StudentsNumber int       `json:"students_number,omitempty"`

	DateOn     []Date `json:"date_on,omitempty"`
	DateExcept []Date `json:"date_except,omitempty"`
	DateFrom   *Date  `json:"date_from,omitempty"`

	SourceType     SourceType `json:"source_type,omitempty"`
	SpreadsheetID  string     `json:"spreadsheet_id,omitempty"`
	SheetName      string     `json:"excel_sheet_name,omitempty"`
	GoogleSheetGID string     `json:"google_sheet_gid,omitempty"`
	ExcelRange     string     `json:"excel_range,omitempty"`
}

// Validate rejects malformed lessons before they can reach a detector.
func (l *Lesson) Validate() error {
	if l.LessonName == "" {
		return fmt.Errorf("lesson_name is required")
	}
	if !l.StartTime.Before(l.EndTime) {
		return fmt.Errorf("lesson %q: start time %s must be before end time %s",
			l.LessonName, l.StartTime, l.EndTime)
	}
	if len(l.DateOn) == 0 && l.Weekday == "" {
		return fmt.Errorf("lesson %q: either weekday or date_on must be set", l.LessonName)
	}
	if l.Weekday != "" && !l.Weekday.Valid() {
		return fmt.Errorf("lesson %q: unknown weekday %q", l.LessonName, l.Weekday)
	}
	return nil
}

// IsAdHoc reports whether the lesson occurs only on explicit dates.
func (l *Lesson) IsAdHoc() bool { return len(l.DateOn) > 0 }

// HasRoom reports whether a room has been assigned.
func (l *Lesson) HasRoom() bool { return len(l.Rooms) > 0 }
