package aclkit

// DirectedCycle detects a directed cycle in a Digraph using depth-first
// search. The search runs once, at construction, from every unvisited
// vertex; the first back edge found (an edge into a vertex still on the
// recursion stack) yields a concrete cycle and stops further exploration.
type DirectedCycle struct {
	marked  []bool
	onStack []bool
	edgeTo  []int
	cycle   []int
}

// NewDirectedCycle runs cycle detection over g.
func NewDirectedCycle(g *Digraph) *DirectedCycle {
	n := g.VertexCount()
	c := &DirectedCycle{
		marked:  make([]bool, n),
		onStack: make([]bool, n),
		edgeTo:  make([]int, n),
	}
	for v := 0; v < n; v++ {
		if !c.marked[v] && c.cycle == nil {
			c.dfs(g, v)
		}
	}
	return c
}

// HasCycle reports whether the graph contains a directed cycle.
func (c *DirectedCycle) HasCycle() bool {
	return c.cycle != nil
}

// Cycle returns one directed cycle as a vertex path whose first and last
// elements coincide, or nil if the graph is acyclic.
func (c *DirectedCycle) Cycle() []int {
	return c.cycle
}

func (c *DirectedCycle) dfs(g *Digraph, v int) {
	c.marked[v] = true
	c.onStack[v] = true

	// Adjacency access cannot fail here; v came from the graph itself.
	targets, _ := g.Adj(v)
	for _, w := range targets {
		if c.cycle != nil {
			break
		}
		if !c.marked[w] {
			c.edgeTo[w] = v
			c.dfs(g, w)
		} else if c.onStack[w] {
			// Walk edgeTo parents from v back to w, then close the loop.
			var path []int
			for x := v; x != w; x = c.edgeTo[x] {
				path = append(path, x)
			}
			path = append(path, w, v)
			reverseInts(path)
			c.cycle = path
		}
	}

	c.onStack[v] = false
}

func reverseInts(s []int) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
