package unit

import "sort"

// Graph maps each loaded unit to its ordered dependency list.
// Graph is read-only once built.
type Graph struct {
	edges map[string][]string
}

// BuildGraph creates one node per entry in units, keyed by the map key, whose
// edge list is exactly the declaration's dependencies. Order and duplicates
// are preserved and targets are not checked.
func BuildGraph(units map[string]*Declaration) *Graph {
	edges := make(map[string][]string, len(units))
	for id, decl := range units {
		var deps []string
		if decl != nil {
			deps = make([]string, len(decl.Dependencies))
			copy(deps, decl.Dependencies)
		}
		edges[id] = deps
	}
	return &Graph{edges: edges}
}

// NewGraph builds a graph from a raw adjacency map. The map is copied.
func NewGraph(adjacency map[string][]string) *Graph {
	edges := make(map[string][]string, len(adjacency))
	for id, deps := range adjacency {
		cp := make([]string, len(deps))
		copy(cp, deps)
		edges[id] = cp
	}
	return &Graph{edges: edges}
}

// Has reports whether id is a node of the graph.
func (g *Graph) Has(id string) bool {
	_, ok := g.edges[id]
	return ok
}

// Dependencies returns a copy of the edge list for id.
func (g *Graph) Dependencies(id string) ([]string, bool) {
	deps, ok := g.edges[id]
	if !ok {
		return nil, false
	}
	out := make([]string, len(deps))
	copy(out, deps)
	return out, true
}

// Nodes returns every node identifier sorted lexicographically.
func (g *Graph) Nodes() []string {
	ids := make([]string, 0, len(g.edges))
	for id := range g.edges {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int {
	return len(g.edges)
}

// EdgeCount returns the total number of edges, dangling ones included.
func (g *Graph) EdgeCount() int {
	n := 0
	for _, deps := range g.edges {
		n += len(deps)
	}
	return n
}
