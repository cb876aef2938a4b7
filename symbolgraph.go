package aclkit

// SymbolGraph is a directed graph addressed by string symbols rather than
// raw vertex indices. It backs both the role hierarchy and the resource
// hierarchy: every symbol owns exactly one vertex, symbols are append-only,
// and edges run child -> parent so that a forward walk from a symbol
// enumerates its ancestors.
type SymbolGraph struct {
	graph   *Digraph
	names   []string
	indexOf map[string]int
}

// NewSymbolGraph creates an empty symbol graph.
func NewSymbolGraph() *SymbolGraph {
	return &SymbolGraph{
		graph:   NewDigraph(0),
		indexOf: make(map[string]int),
	}
}

// AddVertex registers a symbol and returns its vertex index.
// Adding a symbol that already exists is a no-op returning its existing
// index; vertex count never changes for repeated adds.
func (sg *SymbolGraph) AddVertex(symbol string) int {
	if v, ok := sg.indexOf[symbol]; ok {
		return v
	}
	v := sg.graph.AddVertex(sg.graph.VertexCount())
	sg.names = append(sg.names, symbol)
	sg.indexOf[symbol] = v
	return v
}

// AddEdge registers symbol and each parent (both auto-registered when new)
// and adds a child -> parent edge for every parent.
func (sg *SymbolGraph) AddEdge(symbol string, parents ...string) error {
	child := sg.AddVertex(symbol)
	for _, parent := range parents {
		p := sg.AddVertex(parent)
		if err := sg.graph.AddEdge(child, p); err != nil {
			return err
		}
	}
	return nil
}

// Contains reports whether the symbol is registered.
func (sg *SymbolGraph) Contains(symbol string) bool {
	_, ok := sg.indexOf[symbol]
	return ok
}

// Index returns the vertex index for a symbol.
func (sg *SymbolGraph) Index(symbol string) (int, bool) {
	v, ok := sg.indexOf[symbol]
	return v, ok
}

// Name returns the symbol for a vertex index.
func (sg *SymbolGraph) Name(index int) (string, bool) {
	if index < 0 || index >= len(sg.names) {
		return "", false
	}
	return sg.names[index], true
}

// VertexCount returns the number of registered symbols.
func (sg *SymbolGraph) VertexCount() int {
	return sg.graph.VertexCount()
}

// EdgeCount returns the number of inheritance edges.
func (sg *SymbolGraph) EdgeCount() int {
	return sg.graph.EdgeCount()
}

// Symbols returns all registered symbols in registration order.
func (sg *SymbolGraph) Symbols() []string {
	out := make([]string, len(sg.names))
	copy(out, sg.names)
	return out
}

// Parents returns the direct parents of a symbol, in vertex order.
// Returns nil for unknown symbols or symbols without parents.
func (sg *SymbolGraph) Parents(symbol string) []string {
	v, ok := sg.indexOf[symbol]
	if !ok {
		return nil
	}
	targets, _ := sg.graph.Adj(v)
	if len(targets) == 0 {
		return nil
	}
	out := make([]string, 0, len(targets))
	for _, w := range targets {
		out = append(out, sg.names[w])
	}
	return out
}

// Inherits reports whether ancestor is symbol itself or one of its
// ancestors, i.e. whether ancestor is reachable from symbol along
// child -> parent edges. Unknown symbols on either side yield false.
func (sg *SymbolGraph) Inherits(symbol, ancestor string) bool {
	start, ok := sg.indexOf[symbol]
	if !ok {
		return false
	}
	target, ok := sg.indexOf[ancestor]
	if !ok {
		return false
	}
	if start == target {
		return true
	}

	visited := make([]bool, sg.graph.VertexCount())
	stack := []int{start}
	visited[start] = true
	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		targets, _ := sg.graph.Adj(v)
		for _, w := range targets {
			if w == target {
				return true
			}
			if !visited[w] {
				visited[w] = true
				stack = append(stack, w)
			}
		}
	}
	return false
}

// Lineage returns the symbol followed by its ancestors in depth-first
// preorder over the sorted adjacency lists. The order is deterministic and
// is the search order rule resolution uses. Returns nil for unknown symbols.
func (sg *SymbolGraph) Lineage(symbol string) []string {
	start, ok := sg.indexOf[symbol]
	if !ok {
		return nil
	}

	visited := make([]bool, sg.graph.VertexCount())
	var order []string
	var walk func(v int)
	walk = func(v int) {
		visited[v] = true
		order = append(order, sg.names[v])
		targets, _ := sg.graph.Adj(v)
		for _, w := range targets {
			if !visited[w] {
				walk(w)
			}
		}
	}
	walk(start)
	return order
}

// FindCycle returns one inheritance cycle as a symbol path whose first and
// last elements coincide, or nil if the hierarchy is acyclic.
func (sg *SymbolGraph) FindCycle() []string {
	dc := NewDirectedCycle(sg.graph)
	if !dc.HasCycle() {
		return nil
	}
	cycle := dc.Cycle()
	names := make([]string, len(cycle))
	for i, v := range cycle {
		names[i] = sg.names[v]
	}
	return names
}

// clone returns a deep copy of the symbol graph.
func (sg *SymbolGraph) clone() *SymbolGraph {
	c := &SymbolGraph{
		graph:   sg.graph.clone(),
		names:   make([]string, len(sg.names)),
		indexOf: make(map[string]int, len(sg.indexOf)),
	}
	copy(c.names, sg.names)
	for name, v := range sg.indexOf {
		c.indexOf[name] = v
	}
	return c
}
