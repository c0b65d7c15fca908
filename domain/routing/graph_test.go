package routing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tj-backend/domain/core/valueobjects"
	pkgerrors "tj-backend/pkg/errors"
)

func newTestGraph(nodes ...valueobjects.LocationID) *Graph {
	g := NewGraph()
	for _, n := range nodes {
		g.AddNode(n)
	}
	return g
}

func TestGraph_AddEdgeRequiresKnownLocations(t *testing.T) {
	g := newTestGraph(1, 2, 3)

	require.NoError(t, g.AddEdge(Edge{ID: 10, From: 1, To: 2, Duration: time.Hour}))

	err := g.AddEdge(Edge{ID: 11, From: 1, To: 9, Duration: time.Hour})
	assert.True(t, pkgerrors.IsNotFound(err))

	err = g.AddEdge(Edge{ID: 12, From: 1, To: 3, Stops: []valueobjects.LocationID{8}})
	assert.True(t, pkgerrors.IsNotFound(err))

	err = g.AddEdge(Edge{ID: 10, From: 2, To: 3})
	assert.True(t, pkgerrors.IsConflict(err))

	err = g.AddEdge(Edge{ID: 13, From: 2, To: 3, Duration: -time.Second})
	assert.True(t, pkgerrors.IsValidation(err))

	nodes, edges := g.Size()
	assert.Equal(t, 3, nodes)
	assert.Equal(t, 1, edges)
}

func TestGraph_NeighborsSortedByEdgeID(t *testing.T) {
	g := newTestGraph(1, 2, 3)
	require.NoError(t, g.AddEdge(Edge{ID: 30, From: 1, To: 3, Duration: time.Minute}))
	require.NoError(t, g.AddEdge(Edge{ID: 20, From: 1, To: 2, Duration: 2 * time.Minute}))
	require.NoError(t, g.AddEdge(Edge{ID: 25, From: 2, To: 1}))

	arcs, err := g.Neighbors(1)
	require.NoError(t, err)
	assert.Equal(t, []Arc{
		{To: 2, EdgeID: 20, Duration: 2 * time.Minute},
		{To: 3, EdgeID: 30, Duration: time.Minute},
	}, arcs)

	arcs, err = g.Neighbors(3)
	require.NoError(t, err)
	assert.Empty(t, arcs)

	_, err = g.Neighbors(99)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestGraph_UpdateAndRemoveEdge(t *testing.T) {
	g := newTestGraph(1, 2, 3)
	require.NoError(t, g.AddEdge(Edge{ID: 10, From: 1, To: 2, Duration: time.Hour}))

	require.NoError(t, g.UpdateEdge(10, Edge{From: 1, To: 3, Stops: []valueobjects.LocationID{2}, Duration: 3 * time.Hour}))
	e, ok := g.Edge(10)
	require.True(t, ok)
	assert.Equal(t, valueobjects.LocationID(3), e.To)
	assert.Equal(t, []valueobjects.RouteID{10}, g.ReferencingEdges(2))

	// upsert of an unknown id inserts
	require.NoError(t, g.UpdateEdge(11, Edge{From: 3, To: 1}))
	_, ok = g.Edge(11)
	assert.True(t, ok)

	// a failed update leaves the old edge in place
	err := g.UpdateEdge(10, Edge{From: 1, To: 42})
	assert.True(t, pkgerrors.IsNotFound(err))
	e, _ = g.Edge(10)
	assert.Equal(t, valueobjects.LocationID(3), e.To)

	assert.True(t, g.RemoveEdge(10))
	assert.False(t, g.RemoveEdge(10))
	assert.False(t, g.RemoveEdge(777))
	assert.Empty(t, g.ReferencingEdges(2))
}

func TestGraph_RemoveNodeDropsReferencingEdges(t *testing.T) {
	g := newTestGraph(1, 2, 3)
	require.NoError(t, g.AddEdge(Edge{ID: 1, From: 1, To: 2}))
	require.NoError(t, g.AddEdge(Edge{ID: 2, From: 1, To: 3, Stops: []valueobjects.LocationID{2}}))
	require.NoError(t, g.AddEdge(Edge{ID: 3, From: 3, To: 1}))

	assert.Equal(t, []valueobjects.RouteID{1, 2}, g.RemoveNode(2))
	assert.False(t, g.HasNode(2))

	arcs, err := g.Neighbors(1)
	require.NoError(t, err)
	assert.Empty(t, arcs)

	_, edges := g.Size()
	assert.Equal(t, 1, edges)
	assert.Nil(t, g.RemoveNode(2))
}

func TestGraph_EdgeCopiesAreIsolated(t *testing.T) {
	g := newTestGraph(1, 2, 3)
	stops := []valueobjects.LocationID{2}
	require.NoError(t, g.AddEdge(Edge{ID: 1, From: 1, To: 3, Stops: stops}))

	stops[0] = 99
	e, _ := g.Edge(1)
	assert.Equal(t, valueobjects.LocationID(2), e.Stops[0])

	e.Stops[0] = 98
	e2, _ := g.Edge(1)
	assert.Equal(t, valueobjects.LocationID(2), e2.Stops[0])
}
