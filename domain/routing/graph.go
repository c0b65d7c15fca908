// Package routing holds the in-memory graph of locations and declared routes
// and the bounded-stop route search over it.
package routing

import (
	"sort"
	"sync"
	"time"

	"tj-backend/domain/core/valueobjects"
	pkgerrors "tj-backend/pkg/errors"
)

// Edge is a declared route as seen by the graph.
type Edge struct {
	ID       valueobjects.RouteID      `json:"id"`
	From     valueobjects.LocationID   `json:"from"`
	To       valueobjects.LocationID   `json:"to"`
	Stops    []valueobjects.LocationID `json:"stops,omitempty"`
	Duration time.Duration             `json:"duration"`
	Owner    valueobjects.UserID       `json:"owner,omitempty"`
	Public   bool                      `json:"public"`
}

func (e *Edge) clone() Edge {
	c := *e
	c.Stops = append([]valueobjects.LocationID(nil), e.Stops...)
	return c
}

// Arc is one outgoing edge of a node.
type Arc struct {
	To       valueobjects.LocationID `json:"to"`
	EdgeID   valueobjects.RouteID    `json:"edge_id"`
	Duration time.Duration           `json:"duration"`
}

type idSet[K comparable] map[K]struct{}

// Graph is a directed multigraph keyed by location and route ids. Nodes and
// edges reference each other only by id.
type Graph struct {
	mu    sync.RWMutex
	nodes idSet[valueobjects.LocationID]
	edges map[valueobjects.RouteID]*Edge
	out   map[valueobjects.LocationID]idSet[valueobjects.RouteID]
	// refs lists the edges that use a node as endpoint or stop
	refs map[valueobjects.LocationID]idSet[valueobjects.RouteID]
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		nodes: make(idSet[valueobjects.LocationID]),
		edges: make(map[valueobjects.RouteID]*Edge),
		out:   make(map[valueobjects.LocationID]idSet[valueobjects.RouteID]),
		refs:  make(map[valueobjects.LocationID]idSet[valueobjects.RouteID]),
	}
}

// AddNode registers a location. Adding a known node is a no-op.
func (g *Graph) AddNode(id valueobjects.LocationID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nodes[id] = struct{}{}
}

// HasNode reports whether the location is registered.
func (g *Graph) HasNode(id valueobjects.LocationID) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.nodes[id]
	return ok
}

// RemoveNode drops a location together with every edge that references it
// and returns the ids of the dropped edges.
func (g *Graph) RemoveNode(id valueobjects.LocationID) []valueobjects.RouteID {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.nodes[id]; !ok {
		return nil
	}
	dropped := sortedIDs(g.refs[id])
	for _, eid := range dropped {
		g.unlink(eid)
	}
	delete(g.nodes, id)
	delete(g.refs, id)
	delete(g.out, id)
	return dropped
}

// ReferencingEdges returns the edges that use id as start, end or stop,
// ascending by id.
func (g *Graph) ReferencingEdges(id valueobjects.LocationID) []valueobjects.RouteID {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return sortedIDs(g.refs[id])
}

// AddEdge inserts a new edge. Every endpoint and stop must be a known node.
func (g *Graph) AddEdge(e Edge) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.edges[e.ID]; exists {
		return pkgerrors.NewConflictError("route " + e.ID.String() + " already exists")
	}
	if err := g.check(e); err != nil {
		return err
	}
	g.link(e)
	return nil
}

// UpdateEdge replaces the edge with id, inserting it if absent.
func (g *Graph) UpdateEdge(id valueobjects.RouteID, e Edge) error {
	e.ID = id

	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.check(e); err != nil {
		return err
	}
	if _, exists := g.edges[id]; exists {
		g.unlink(id)
	}
	g.link(e)
	return nil
}

// RemoveEdge deletes an edge. Removing an unknown edge succeeds and reports
// false.
func (g *Graph) RemoveEdge(id valueobjects.RouteID) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.edges[id]; !ok {
		return false
	}
	g.unlink(id)
	return true
}

// Edge returns a copy of the edge with id.
func (g *Graph) Edge(id valueobjects.RouteID) (Edge, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	e, ok := g.edges[id]
	if !ok {
		return Edge{}, false
	}
	return e.clone(), true
}

// Neighbors returns the outgoing arcs of a node ascending by edge id.
func (g *Graph) Neighbors(id valueobjects.LocationID) ([]Arc, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if _, ok := g.nodes[id]; !ok {
		return nil, pkgerrors.NewNotFoundErrorID("location", id)
	}
	return g.arcs(id), nil
}

// Size returns the node and edge counts.
func (g *Graph) Size() (nodes, edges int) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.nodes), len(g.edges)
}

// arcs lists outgoing arcs of id. Caller holds a lock.
func (g *Graph) arcs(id valueobjects.LocationID) []Arc {
	ids := sortedIDs(g.out[id])
	arcs := make([]Arc, len(ids))
	for i, eid := range ids {
		e := g.edges[eid]
		arcs[i] = Arc{To: e.To, EdgeID: eid, Duration: e.Duration}
	}
	return arcs
}

func (g *Graph) check(e Edge) error {
	if e.Duration < 0 {
		return pkgerrors.NewValidationError("route duration must be non-negative")
	}
	for _, id := range append([]valueobjects.LocationID{e.From, e.To}, e.Stops...) {
		if _, ok := g.nodes[id]; !ok {
			return pkgerrors.NewNotFoundErrorID("location", id)
		}
	}
	return nil
}

func (g *Graph) link(e Edge) {
	stored := e.clone()
	g.edges[e.ID] = &stored
	addTo(g.out, e.From, e.ID)
	addTo(g.refs, e.From, e.ID)
	addTo(g.refs, e.To, e.ID)
	for _, s := range e.Stops {
		addTo(g.refs, s, e.ID)
	}
}

func (g *Graph) unlink(id valueobjects.RouteID) {
	e := g.edges[id]
	delete(g.edges, id)
	removeFrom(g.out, e.From, id)
	removeFrom(g.refs, e.From, id)
	removeFrom(g.refs, e.To, id)
	for _, s := range e.Stops {
		removeFrom(g.refs, s, id)
	}
}

func addTo[K comparable](m map[K]idSet[valueobjects.RouteID], key K, id valueobjects.RouteID) {
	set, ok := m[key]
	if !ok {
		set = make(idSet[valueobjects.RouteID])
		m[key] = set
	}
	set[id] = struct{}{}
}

func removeFrom[K comparable](m map[K]idSet[valueobjects.RouteID], key K, id valueobjects.RouteID) {
	set := m[key]
	delete(set, id)
	if len(set) == 0 {
		delete(m, key)
	}
}

func sortedIDs(set idSet[valueobjects.RouteID]) []valueobjects.RouteID {
	ids := make([]valueobjects.RouteID, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
