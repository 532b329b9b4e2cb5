package service

import (
	"sort"

	"github.com/one-zero-eight/schedule-builder-backend/internal/models"
	"github.com/one-zero-eight/schedule-builder-backend/pkg/graph"
)

// occupancyEntry is one claim on a teacher's time: a lesson they teach, or a
// lesson attended by the student group they belong to.
type occupancyEntry struct {
	lesson   int
	teaching bool
}

type teacherOccupancy struct {
	display string
	entries []occupancyEntry
}

// checkTeacherIssues finds teachers required in two places at once. A
// teacher enrolled as a student (the roster maps them to a study group) is
// also occupied by that group's lessons, so a taught lesson can conflict
// with a lesson the teacher merely attends.
func (c *CollisionChecker) checkTeacherIssues(lessons []models.Lesson, verySame *verySameIndex) []models.Issue {
	occupancy := make(map[string]*teacherOccupancy)
	record := func(key, display string, entry occupancyEntry) {
		occ, ok := occupancy[key]
		if !ok {
			occ = &teacherOccupancy{display: display}
			occupancy[key] = occ
		}
		occ.entries = append(occ.entries, entry)
	}

	for i := range lessons {
		lesson := &lessons[i]
		teachingKey := ""
		if lesson.Teacher != "" {
			key, display := c.canonicalTeacher(lesson.Teacher)
			teachingKey = key
			record(key, display, occupancyEntry{lesson: i, teaching: true})
		}
		for _, group := range lesson.Groups {
			for _, teacher := range c.groupToStudyingTeachers[normalizeName(group)] {
				key, display := c.canonicalTeacher(teacher.Name)
				// Teaching your own group's lesson is not double occupancy.
				if key == teachingKey {
					continue
				}
				record(key, display, occupancyEntry{lesson: i, teaching: false})
			}
		}
	}

	keys := make([]string, 0, len(occupancy))
	for key := range occupancy {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var issues []models.Issue
	for _, key := range keys {
		occ := occupancy[key]
		g := graph.NewUndirected(len(occ.entries))
		for x := 0; x < len(occ.entries); x++ {
			for y := x + 1; y < len(occ.entries); y++ {
				i, j := occ.entries[x].lesson, occ.entries[y].lesson
				if i == j || sameSourceCell(&lessons[i], &lessons[j]) {
					continue
				}
				if verySame.areVerySame(i, j) || sameLogicalLesson(&lessons[i], &lessons[j]) {
					continue
				}
				if lessonsCollideByTime(&lessons[i], &lessons[j]) {
					g.AddEdge(x, y)
				}
			}
		}

		for _, cluster := range graph.CollidingElements(occ.entries, g.ConnectedComponents()) {
			sort.Slice(cluster, func(x, y int) bool { return cluster[x].lesson < cluster[y].lesson })
			var teaching, studying []models.Lesson
			seenTeaching := make(map[int]struct{})
			seenStudying := make(map[int]struct{})
			for _, entry := range cluster {
				if entry.teaching {
					if _, ok := seenTeaching[entry.lesson]; ok {
						continue
					}
					seenTeaching[entry.lesson] = struct{}{}
					teaching = append(teaching, lessons[entry.lesson])
				} else {
					if _, ok := seenStudying[entry.lesson]; ok {
						continue
					}
					seenStudying[entry.lesson] = struct{}{}
					studying = append(studying, lessons[entry.lesson])
				}
			}
			issues = append(issues, models.NewTeacherIssue(occ.display, teaching, studying))
		}
	}
	return issues
}

// sameSourceCell reports whether two lessons were scraped from the same
// spreadsheet cell. A cell listing one meeting for several groups yields
// per-group records that must not conflict with each other.
func sameSourceCell(a, b *models.Lesson) bool {
	return a.ExcelRange != "" &&
		a.ExcelRange == b.ExcelRange &&
		a.SheetName == b.SheetName &&
		a.SpreadsheetID == b.SpreadsheetID
}
