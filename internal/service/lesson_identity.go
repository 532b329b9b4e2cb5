package service

import (
	"strings"

	"github.com/one-zero-eight/schedule-builder-backend/internal/models"
	"github.com/one-zero-eight/schedule-builder-backend/pkg/graph"
)

// lessonsIdentical detects the same lesson recorded in multiple spreadsheet
// cells (merged-cell splitting). Cell location and group are deliberately
// excluded from the comparison.
func lessonsIdentical(a, b *models.Lesson) bool {
	return a.LessonName == b.LessonName &&
		a.Weekday == b.Weekday &&
		a.StartTime == b.StartTime &&
		a.EndTime == b.EndTime &&
		a.Teacher == b.Teacher &&
		stringSetsEqual(a.Rooms, b.Rooms) &&
		datesEqual(a.DateOn, b.DateOn) &&
		datesEqual(a.DateExcept, b.DateExcept)
}

func stringSetsEqual(a, b models.StringSet) bool {
	if len(a) != len(b) {
		return false
	}
	as, bs := a.Sorted(), b.Sorted()
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}

func datesEqual(a, b []models.Date) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// MergeIdenticalLessons collapses duplicate entries before any detector runs,
// so the same lesson recorded twice is never reported as a conflict with
// itself. Merging unions group names, sums student counts and concatenates
// the source cell ranges. The identity relation is treated as transitive via
// connected components.
func (c *CollisionChecker) MergeIdenticalLessons(lessons []models.Lesson) []models.Lesson {
	g := graph.NewUndirected(len(lessons))
	for i := range lessons {
		for j := i + 1; j < len(lessons); j++ {
			if lessonsIdentical(&lessons[i], &lessons[j]) {
				g.AddEdge(i, j)
			}
		}
	}

	var result []models.Lesson
	for _, component := range g.ConnectedComponents() {
		if len(component) == 1 {
			result = append(result, lessons[component[0]])
			continue
		}

		merged := lessons[component[0]]
		var groups models.StringSet
		seen := make(map[string]struct{})
		var excelRanges []string
		students := 0
		for _, i := range component {
			for _, group := range lessons[i].Groups {
				if _, ok := seen[group]; ok {
					continue
				}
				seen[group] = struct{}{}
				groups = append(groups, group)
			}
			excelRanges = append(excelRanges, lessons[i].ExcelRange)
			students += lessons[i].StudentsNumber
		}
		merged.Groups = groups.Sorted()
		merged.StudentsNumber = students
		merged.ExcelRange = strings.Join(excelRanges, ";")
		result = append(result, merged)
	}
	return result
}

// sameLogicalLesson recognizes the "STARTS AT / TILL" spreadsheet idiom: two
// records with the same name, room set and teacher whose times overlap are a
// continuation notation for one logical lesson, not a conflict. Callers only
// consult this for pairs already known to collide by time.
func sameLogicalLesson(a, b *models.Lesson) bool {
	return a.LessonName == b.LessonName &&
		a.Teacher == b.Teacher &&
		stringSetsEqual(a.Rooms, b.Rooms)
}

// patternRef locates a matched pattern inside the very-same configuration.
type patternRef struct {
	group   int
	pattern int
}

// verySameIndex caches, per lesson, every very-same pattern it matches, so
// the O(n²) pairwise loops do not rescan the configuration.
type verySameIndex struct {
	matches [][]patternRef
}

func (c *CollisionChecker) buildVerySameIndex(lessons []models.Lesson) *verySameIndex {
	index := &verySameIndex{matches: make([][]patternRef, len(lessons))}
	if len(c.verySame) == 0 {
		return index
	}
	for i := range lessons {
		for gi, group := range c.verySame {
			for pi, pattern := range group {
				if matchesVerySamePattern(&lessons[i], &pattern) {
					index.matches[i] = append(index.matches[i], patternRef{group: gi, pattern: pi})
				}
			}
		}
	}
	return index
}

// areVerySame reports whether the two lessons match distinct patterns within
// one configured group, meaning an administratively-known duplicate listing
// exempt from conflict reporting. Matching the same pattern does not count: that is
// a plain duplicate, handled by identity merging.
func (idx *verySameIndex) areVerySame(i, j int) bool {
	for _, a := range idx.matches[i] {
		for _, b := range idx.matches[j] {
			if a.group == b.group && a.pattern != b.pattern {
				return true
			}
		}
	}
	return false
}

func matchesVerySamePattern(lesson *models.Lesson, pattern *models.VerySameLessonID) bool {
	if pattern.Type != "" && lesson.SourceType != pattern.Type {
		return false
	}
	if !strings.EqualFold(strings.TrimSpace(lesson.LessonName), strings.TrimSpace(pattern.Title)) {
		return false
	}
	if pattern.Instructor != "" && !strings.EqualFold(strings.TrimSpace(lesson.Teacher), strings.TrimSpace(pattern.Instructor)) {
		return false
	}
	if len(pattern.Groups) > 0 && !lesson.Groups.Intersects(models.StringSet(pattern.Groups)) {
		return false
	}
	return true
}
