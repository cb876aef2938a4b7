package aclkit

import (
	"fmt"
	"sort"
)

// Digraph is a directed graph over dense integer vertex indices.
// Vertices are created by NewDigraph and AddVertex and are never removed;
// the graph only grows. Adjacency lists are kept sorted so that walks over
// the graph are deterministic.
type Digraph struct {
	adj      [][]int
	indegree []int
	edges    int
}

// NewDigraph creates a digraph with n vertices and no edges.
func NewDigraph(n int) *Digraph {
	return &Digraph{
		adj:      make([][]int, n),
		indegree: make([]int, n),
	}
}

// VertexCount returns the number of vertices in the graph.
func (g *Digraph) VertexCount() int {
	return len(g.adj)
}

// EdgeCount returns the number of edges in the graph.
func (g *Digraph) EdgeCount() int {
	return g.edges
}

// AddVertex grows the graph so that vertex v exists and returns v.
// Growth is monotonic: the graph never shrinks, and adding a vertex that
// already exists is a no-op.
func (g *Digraph) AddVertex(v int) int {
	for len(g.adj) <= v {
		g.adj = append(g.adj, nil)
		g.indegree = append(g.indegree, 0)
	}
	return v
}

// AddEdge adds the directed edge v -> w. Both endpoints must already exist.
// The adjacency list of v is re-sorted after the insert. Parallel edges are
// not deduplicated.
func (g *Digraph) AddEdge(v, w int) error {
	if err := g.validateVertex(v); err != nil {
		return err
	}
	if err := g.validateVertex(w); err != nil {
		return err
	}

	g.adj[v] = append(g.adj[v], w)
	sort.Ints(g.adj[v])
	g.indegree[w]++
	g.edges++
	return nil
}

// Adj returns the vertices adjacent from v (the targets of v's out-edges),
// in sorted order. The returned slice is owned by the graph and must not be
// modified.
func (g *Digraph) Adj(v int) ([]int, error) {
	if err := g.validateVertex(v); err != nil {
		return nil, err
	}
	return g.adj[v], nil
}

// Indegree returns the number of edges pointing into v.
func (g *Digraph) Indegree(v int) (int, error) {
	if err := g.validateVertex(v); err != nil {
		return 0, err
	}
	return g.indegree[v], nil
}

// Outdegree returns the number of edges leaving v.
func (g *Digraph) Outdegree(v int) (int, error) {
	if err := g.validateVertex(v); err != nil {
		return 0, err
	}
	return len(g.adj[v]), nil
}

// Reverse returns a new digraph with the direction of every edge flipped.
// Vertex and edge counts are preserved.
func (g *Digraph) Reverse() *Digraph {
	r := NewDigraph(len(g.adj))
	for v, targets := range g.adj {
		for _, w := range targets {
			// Endpoints are valid by construction.
			_ = r.AddEdge(w, v)
		}
	}
	return r
}

// clone returns a deep copy of the graph.
func (g *Digraph) clone() *Digraph {
	c := &Digraph{
		adj:      make([][]int, len(g.adj)),
		indegree: make([]int, len(g.indegree)),
		edges:    g.edges,
	}
	copy(c.indegree, g.indegree)
	for v, targets := range g.adj {
		if targets == nil {
			continue
		}
		c.adj[v] = make([]int, len(targets))
		copy(c.adj[v], targets)
	}
	return c
}

func (g *Digraph) validateVertex(v int) error {
	if v < 0 || v >= len(g.adj) {
		return NewError(ErrInvalidVertex,
			fmt.Sprintf("vertex %d out of range [0, %d)", v, len(g.adj))).
			WithVertex(v, len(g.adj))
	}
	return nil
}
