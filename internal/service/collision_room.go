package service

import (
	"sort"

	"github.com/one-zero-eight/schedule-builder-backend/internal/models"
	"github.com/one-zero-eight/schedule-builder-backend/pkg/graph"
)

// edgeKey identifies an unordered pair of lesson indices.
type edgeKey struct{ a, b int }

func newEdgeKey(i, j int) edgeKey {
	if j < i {
		i, j = j, i
	}
	return edgeKey{a: i, b: j}
}

type roomBucket struct {
	display string
	lessons []int
}

// checkRoomIssues finds sets of lessons booked into the same room at
// overlapping times. Lessons spanning several rooms are considered in each
// of them, and a conflict cluster reports every room its edges implicate.
func (c *CollisionChecker) checkRoomIssues(lessons []models.Lesson, verySame *verySameIndex) []models.Issue {
	byRoom := make(map[string]*roomBucket)
	for i := range lessons {
		lesson := &lessons[i]
		if !lesson.HasRoom() || c.isExemptLesson(lesson) {
			continue
		}
		for _, room := range lesson.Rooms {
			if c.isOnlineRoom(room) {
				continue
			}
			key := normalizeName(room)
			bucket, ok := byRoom[key]
			if !ok {
				bucket = &roomBucket{display: room}
				byRoom[key] = bucket
			}
			bucket.lessons = append(bucket.lessons, i)
		}
	}

	g := graph.NewUndirected(len(lessons))
	edgeRooms := make(map[edgeKey][]string)
	for _, bucket := range byRoom {
		for x := 0; x < len(bucket.lessons); x++ {
			for y := x + 1; y < len(bucket.lessons); y++ {
				i, j := bucket.lessons[x], bucket.lessons[y]
				if verySame.areVerySame(i, j) || sameLogicalLesson(&lessons[i], &lessons[j]) {
					continue
				}
				if !lessonsCollideByTime(&lessons[i], &lessons[j]) {
					continue
				}
				g.AddEdge(i, j)
				key := newEdgeKey(i, j)
				edgeRooms[key] = append(edgeRooms[key], bucket.display)
			}
		}
	}

	var issues []models.Issue
	for _, component := range g.ConnectedComponents() {
		if len(component) < 2 {
			continue
		}
		sort.Ints(component)

		roomSet := make(map[string]struct{})
		for x := 0; x < len(component); x++ {
			for y := x + 1; y < len(component); y++ {
				for _, room := range edgeRooms[newEdgeKey(component[x], component[y])] {
					roomSet[room] = struct{}{}
				}
			}
		}
		rooms := make(models.StringSet, 0, len(roomSet))
		for room := range roomSet {
			rooms = append(rooms, room)
		}

		clustered := make([]models.Lesson, 0, len(component))
		for _, i := range component {
			clustered = append(clustered, lessons[i])
		}
		issues = append(issues, models.NewRoomIssue(rooms.Sorted(), clustered))
	}
	return issues
}
