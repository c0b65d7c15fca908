package routing

import (
	"container/heap"
	"context"
	"sort"
	"strconv"
	"time"

	"tj-backend/domain/core/valueobjects"
	pkgerrors "tj-backend/pkg/errors"
)

// PathResult is one candidate itinerary from start to end.
type PathResult struct {
	Edges         []Edge        `json:"edges"`
	TotalDuration time.Duration `json:"total_duration"`
	Stops         int           `json:"stops"`
}

// EdgeIDs returns the route ids of the path in travel order.
func (p PathResult) EdgeIDs() []valueobjects.RouteID {
	ids := make([]valueobjects.RouteID, len(p.Edges))
	for i, e := range p.Edges {
		ids[i] = e.ID
	}
	return ids
}

// SearchStats describes the work done by one search.
type SearchStats struct {
	Expanded  int
	Truncated bool
}

// OptimizerOptions bounds the search.
type OptimizerOptions struct {
	// MaxExpandedStates caps the number of queue pops; when reached the
	// search returns what it has found so far.
	MaxExpandedStates int
	// MaxResults is the number of ranked paths to return.
	MaxResults int
}

// Optimizer finds the fastest paths between two locations using at most a
// given number of intermediate locations.
type Optimizer struct {
	graph *Graph
	opts  OptimizerOptions
}

// NewOptimizer creates an optimizer over g.
func NewOptimizer(g *Graph, opts OptimizerOptions) *Optimizer {
	if opts.MaxExpandedStates <= 0 {
		opts.MaxExpandedStates = 100000
	}
	if opts.MaxResults <= 0 {
		opts.MaxResults = 5
	}
	return &Optimizer{graph: g, opts: opts}
}

type partialPath struct {
	node     valueobjects.LocationID
	duration time.Duration
	edges    []*Edge
}

func (p *partialPath) visits(id valueobjects.LocationID) bool {
	if len(p.edges) == 0 {
		return p.node == id
	}
	if p.edges[0].From == id {
		return true
	}
	for _, e := range p.edges {
		if e.To == id {
			return true
		}
	}
	return false
}

// before orders paths by duration, then edge count, then edge ids compared
// lexicographically.
func (p *partialPath) before(o *partialPath) bool {
	if p.duration != o.duration {
		return p.duration < o.duration
	}
	if len(p.edges) != len(o.edges) {
		return len(p.edges) < len(o.edges)
	}
	for i := range p.edges {
		if p.edges[i].ID != o.edges[i].ID {
			return p.edges[i].ID < o.edges[i].ID
		}
	}
	return false
}

type pathQueue []*partialPath

func (q pathQueue) Len() int           { return len(q) }
func (q pathQueue) Less(i, j int) bool { return q[i].before(q[j]) }
func (q pathQueue) Swap(i, j int)      { q[i], q[j] = q[j], q[i] }

func (q *pathQueue) Push(x any) {
	*q = append(*q, x.(*partialPath))
}

func (q *pathQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return item
}

// searchState identifies every partial path that ends at node after hops
// edges having visited the same set of locations. Such paths share the same
// simple extensions and extending them preserves their relative order.
type searchState struct {
	node    valueobjects.LocationID
	hops    int
	visited string
}

func (p *partialPath) state() searchState {
	ids := make([]int64, 0, len(p.edges)+1)
	if len(p.edges) == 0 {
		ids = append(ids, int64(p.node))
	} else {
		ids = append(ids, int64(p.edges[0].From))
	}
	for _, e := range p.edges {
		ids = append(ids, int64(e.To))
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	buf := make([]byte, 0, len(ids)*4)
	for _, id := range ids {
		buf = strconv.AppendInt(buf, id, 10)
		buf = append(buf, ',')
	}
	return searchState{node: p.node, hops: len(p.edges), visited: string(buf)}
}

// EdgeFilter reports whether a search may travel along e.
type EdgeFilter func(e *Edge) bool

// FindOptimalRoutes returns up to MaxResults simple paths from start to end
// ranked by total duration, then stop count, then edge ids. A stop is an
// intermediate location between two consecutive edges, so a direct edge has
// zero stops; maxStops <= 0 allows direct edges only. No path within the bound
// yields an empty result.
func (o *Optimizer) FindOptimalRoutes(ctx context.Context, start, end valueobjects.LocationID, maxStops int) ([]PathResult, SearchStats, error) {
	return o.FindRoutes(ctx, start, end, maxStops, nil)
}

// FindRoutes is FindOptimalRoutes restricted to the edges allow accepts. A
// nil allow accepts every edge.
func (o *Optimizer) FindRoutes(ctx context.Context, start, end valueobjects.LocationID, maxStops int, allow EdgeFilter) ([]PathResult, SearchStats, error) {
	var stats SearchStats

	o.graph.mu.RLock()
	defer o.graph.mu.RUnlock()

	if _, ok := o.graph.nodes[start]; !ok {
		return nil, stats, pkgerrors.NewNotFoundErrorID("location", start)
	}
	if _, ok := o.graph.nodes[end]; !ok {
		return nil, stats, pkgerrors.NewNotFoundErrorID("location", end)
	}
	results := []PathResult{}
	if start == end {
		return results, stats, nil
	}

	if maxStops < 0 {
		maxStops = 0
	}
	maxEdges := maxStops + 1

	// Durations are non-negative so every child sorts after its parent and
	// paths come off the queue in final rank order. Once a state has been
	// popped MaxResults times each of those prefixes outranks any later prefix
	// of the same state under every extension, so the later one is dropped.
	pops := make(map[searchState]int)
	queue := &pathQueue{{node: start}}

	for queue.Len() > 0 && len(results) < o.opts.MaxResults {
		if stats.Expanded >= o.opts.MaxExpandedStates {
			stats.Truncated = true
			break
		}
		if stats.Expanded%1024 == 0 && ctx.Err() != nil {
			return nil, stats, ctx.Err()
		}

		cur := heap.Pop(queue).(*partialPath)
		stats.Expanded++

		if cur.node == end {
			results = append(results, toResult(cur))
			continue
		}

		state := cur.state()
		if pops[state] >= o.opts.MaxResults {
			continue
		}
		pops[state]++

		if len(cur.edges) == maxEdges {
			continue
		}
		for eid := range o.graph.out[cur.node] {
			e := o.graph.edges[eid]
			if cur.visits(e.To) || (allow != nil && !allow(e)) {
				continue
			}
			next := &partialPath{
				node:     e.To,
				duration: cur.duration + e.Duration,
				edges:    make([]*Edge, len(cur.edges)+1),
			}
			copy(next.edges, cur.edges)
			next.edges[len(cur.edges)] = e
			heap.Push(queue, next)
		}
	}

	return results, stats, nil
}

func toResult(p *partialPath) PathResult {
	edges := make([]Edge, len(p.edges))
	for i, e := range p.edges {
		edges[i] = e.clone()
	}
	return PathResult{
		Edges:         edges,
		TotalDuration: p.duration,
		Stops:         len(edges) - 1,
	}
}
