// Package graph provides a small undirected graph over integer vertex
// indices, used to turn pairwise conflict relations into maximal conflict
// clusters.
package graph

// Undirected is an adjacency-list graph over vertices 0..n-1.
type Undirected struct {
	vertices  int
	adjacency map[int][]int
}

// NewUndirected creates a graph with the given number of vertices and no edges.
func NewUndirected(vertices int) *Undirected {
	return &Undirected{
		vertices:  vertices,
		adjacency: make(map[int][]int),
	}
}

// AddEdge connects two vertices. Self-loops are ignored.
func (g *Undirected) AddEdge(a, b int) {
	if a == b {
		return
	}
	g.adjacency[a] = append(g.adjacency[a], b)
	g.adjacency[b] = append(g.adjacency[b], a)
}

// ConnectedComponents returns every component, singletons included.
// Traversal is depth-first with an explicit stack so that large inputs
// cannot exhaust the call stack.
func (g *Undirected) ConnectedComponents() [][]int {
	visited := make([]bool, g.vertices)
	var components [][]int

	for v := 0; v < g.vertices; v++ {
		if visited[v] {
			continue
		}
		var component []int
		stack := []int{v}
		visited[v] = true
		for len(stack) > 0 {
			current := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			component = append(component, current)
			for _, next := range g.adjacency[current] {
				if visited[next] {
					continue
				}
				visited[next] = true
				stack = append(stack, next)
			}
		}
		components = append(components, component)
	}
	return components
}

// CollidingElements maps index components back to domain elements, dropping
// components of size one (elements that conflict with nothing).
func CollidingElements[T any](elements []T, components [][]int) [][]T {
	var collisions [][]T
	for _, component := range components {
		if len(component) == 1 {
			continue
		}
		group := make([]T, 0, len(component))
		for _, i := range component {
			group = append(group, elements[i])
		}
		collisions = append(collisions, group)
	}
	return collisions
}
