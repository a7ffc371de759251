// Package flow is a small pipeline engine: a directed graph of nodes that
// each consume an immutable state snapshot and return a partial update
// (delta), plus per-node routers that pick the next node from the merged
// state. The walk runs strictly single-threaded from an entry node until a
// router returns the Done marker.
package flow

import (
	"context"
	"fmt"
	"time"

	"grantmaster/internal/logging"
)

// NodeID identifies a node in a pipeline graph.
type NodeID string

// Done is the terminal pseudo-node. A router returning Done completes the walk.
const Done NodeID = "_done"

// Record is the state contract the engine needs: applying a delta yields a
// new record, leaving the receiver untouched.
type Record[S, D any] interface {
	Apply(D) S
}

// NodeFunc consumes a state snapshot and returns the partial update to merge.
// Nodes must not mutate s; errors are carried inside the delta, not returned,
// so routing can prefer an error path without aborting the walk.
type NodeFunc[S, D any] func(ctx context.Context, s S) D

// Node is a processing stage registered under a stable identifier.
type Node[S, D any] struct {
	ID  NodeID
	Run NodeFunc[S, D]
}

// Route is one row of the transition table: the closed set of targets a node
// may hand off to, and the pure function that picks among them. A nil Pick
// means the single declared target is unconditional.
type Route[S any] struct {
	From    NodeID
	Targets []NodeID
	Pick    func(S) NodeID
}

// Graph is a validated pipeline: nodes indexed by id plus one Route per node.
type Graph[S Record[S, D], D any] struct {
	name    string
	entry   NodeID
	nodes   map[NodeID]NodeFunc[S, D]
	routes  map[NodeID]Route[S]
	order   []NodeID
	stepCap int
}

// Option configures a Graph during construction.
type Option[S Record[S, D], D any] func(*Graph[S, D])

// WithStepCap overrides the walk step limit (default 64).
func WithStepCap[S Record[S, D], D any](n int) Option[S, D] {
	return func(g *Graph[S, D]) { g.stepCap = n }
}

// New builds a Graph and checks referential integrity: the entry node exists,
// every node has exactly one route, and every declared route target names a
// registered node or Done. Invalid transitions are a construction-time error,
// never a runtime lookup miss.
func New[S Record[S, D], D any](name string, entry NodeID, nodes []Node[S, D], routes []Route[S], opts ...Option[S, D]) (*Graph[S, D], error) {
	g := &Graph[S, D]{
		name:    name,
		entry:   entry,
		nodes:   make(map[NodeID]NodeFunc[S, D], len(nodes)),
		routes:  make(map[NodeID]Route[S], len(routes)),
		stepCap: 64,
	}
	for _, opt := range opts {
		opt(g)
	}

	for _, n := range nodes {
		if n.ID == "" || n.ID == Done {
			return nil, fmt.Errorf("flow: graph %s: invalid node id %q", name, n.ID)
		}
		if n.Run == nil {
			return nil, fmt.Errorf("flow: graph %s: node %s has no function", name, n.ID)
		}
		if _, dup := g.nodes[n.ID]; dup {
			return nil, fmt.Errorf("flow: graph %s: duplicate node %s", name, n.ID)
		}
		g.nodes[n.ID] = n.Run
		g.order = append(g.order, n.ID)
	}

	if _, ok := g.nodes[entry]; !ok {
		return nil, fmt.Errorf("%w: entry node %q in graph %s", ErrNodeNotFound, entry, name)
	}

	for _, r := range routes {
		if _, ok := g.nodes[r.From]; !ok {
			return nil, fmt.Errorf("%w: route source %q in graph %s", ErrNodeNotFound, r.From, name)
		}
		if _, dup := g.routes[r.From]; dup {
			return nil, fmt.Errorf("flow: graph %s: duplicate route for node %s", name, r.From)
		}
		if len(r.Targets) == 0 {
			return nil, fmt.Errorf("flow: graph %s: route from %s declares no targets", name, r.From)
		}
		for _, t := range r.Targets {
			if t == Done {
				continue
			}
			if _, ok := g.nodes[t]; !ok {
				return nil, fmt.Errorf("%w: route %s -> %q in graph %s", ErrNodeNotFound, r.From, t, name)
			}
		}
		if r.Pick == nil && len(r.Targets) != 1 {
			return nil, fmt.Errorf("flow: graph %s: route from %s has no picker but %d targets", name, r.From, len(r.Targets))
		}
		g.routes[r.From] = r
	}

	for _, id := range g.order {
		if _, ok := g.routes[id]; !ok {
			return nil, fmt.Errorf("flow: graph %s: node %s has no route", name, id)
		}
	}

	return g, nil
}

// Name returns the graph's name.
func (g *Graph[S, D]) Name() string { return g.name }

// Entry returns the designated entry node.
func (g *Graph[S, D]) Entry() NodeID { return g.entry }

// NodeIDs returns the node identifiers in registration order.
func (g *Graph[S, D]) NodeIDs() []NodeID {
	out := make([]NodeID, len(g.order))
	copy(out, g.order)
	return out
}

// Run walks the graph from the entry node: invoke the current node, merge its
// delta into the accumulated state, consult the node's router, advance. The
// walk ends when a router returns Done and the final accumulated state is
// handed back to the caller. An error return means the engine itself failed
// (cancellation, undeclared transition, step cap); domain failures travel
// inside the state.
func (g *Graph[S, D]) Run(ctx context.Context, s S) (S, error) {
	logger := logging.New("flow")
	id := g.entry

	for step := 0; ; step++ {
		if step >= g.stepCap {
			return s, fmt.Errorf("%w: graph %s after %d steps at node %s", ErrStepLimit, g.name, step, id)
		}
		if err := ctx.Err(); err != nil {
			return s, fmt.Errorf("flow: graph %s canceled at node %s: %w", g.name, id, err)
		}

		run := g.nodes[id]
		started := time.Now()
		delta := run(ctx, s)
		s = s.Apply(delta)

		route := g.routes[id]
		next := route.Targets[0]
		if route.Pick != nil {
			next = route.Pick(s)
		}
		if !routeAllows(route, next) {
			return s, fmt.Errorf("%w: node %s picked %q in graph %s", ErrNoRoute, id, next, g.name)
		}

		logger.Debug("node complete",
			"graph", g.name, "node", string(id), "next", string(next),
			"elapsed", time.Since(started))

		if next == Done {
			return s, nil
		}
		id = next
	}
}

func routeAllows[S any](r Route[S], target NodeID) bool {
	for _, t := range r.Targets {
		if t == target {
			return true
		}
	}
	return false
}
