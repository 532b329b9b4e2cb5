package graph

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sortComponents(components [][]int) {
	for _, c := range components {
		sort.Ints(c)
	}
	sort.Slice(components, func(i, j int) bool {
		return components[i][0] < components[j][0]
	})
}

func TestConnectedComponents(t *testing.T) {
	g := NewUndirected(6)
	g.AddEdge(0, 1)
	g.AddEdge(1, 2)
	g.AddEdge(4, 5)

	components := g.ConnectedComponents()
	sortComponents(components)

	require.Len(t, components, 3)
	assert.Equal(t, []int{0, 1, 2}, components[0])
	assert.Equal(t, []int{3}, components[1])
	assert.Equal(t, []int{4, 5}, components[2])
}

func TestConnectedComponentsNoEdges(t *testing.T) {
	g := NewUndirected(3)
	components := g.ConnectedComponents()
	require.Len(t, components, 3)
	for _, c := range components {
		assert.Len(t, c, 1)
	}
}

func TestConnectedComponentsSelfLoopIgnored(t *testing.T) {
	g := NewUndirected(2)
	g.AddEdge(0, 0)
	components := g.ConnectedComponents()
	require.Len(t, components, 2)
}

func TestConnectedComponentsDeepChain(t *testing.T) {
	// A long path must not overflow the stack; the traversal is iterative.
	const n = 100000
	g := NewUndirected(n)
	for i := 0; i < n-1; i++ {
		g.AddEdge(i, i+1)
	}
	components := g.ConnectedComponents()
	require.Len(t, components, 1)
	assert.Len(t, components[0], n)
}

func TestCollidingElementsDropsSingletons(t *testing.T) {
	g := NewUndirected(4)
	g.AddEdge(0, 2)

	elements := []string{"a", "b", "c", "d"}
	collisions := CollidingElements(elements, g.ConnectedComponents())

	require.Len(t, collisions, 1)
	sort.Strings(collisions[0])
	assert.Equal(t, []string{"a", "c"}, collisions[0])
}
