package graph

import "slices"

// Model is the canonical, immutable graph built once per session by
// Normalize. Queries never mutate it; they build new Subgraphs.
type Model struct {
	nodes []Node
	index map[string]int
	edges []Edge
	out   map[string][]int // edge positions by source id
	in    map[string][]int // edge positions by target id
	stats Stats
}

func newModel(nodes []Node, edges []Edge, stats Stats) *Model {
	m := &Model{
		nodes: nodes,
		index: make(map[string]int, len(nodes)),
		edges: edges,
		out:   make(map[string][]int),
		in:    make(map[string][]int),
		stats: stats,
	}
	for i, n := range nodes {
		m.index[n.ID] = i
	}
	for i, e := range edges {
		m.out[e.Source] = append(m.out[e.Source], i)
		m.in[e.Target] = append(m.in[e.Target], i)
	}
	return m
}

// Lookup returns the node with the given id.
func (m *Model) Lookup(id string) (Node, bool) {
	i, ok := m.index[id]
	if !ok {
		return Node{}, false
	}
	return m.nodes[i], true
}

// Has reports whether a node with the given id exists.
func (m *Model) Has(id string) bool {
	_, ok := m.index[id]
	return ok
}

// Nodes returns every node: papers in record order, then authors in
// first-seen order. The returned slice is a copy.
func (m *Model) Nodes() []Node {
	return slices.Clone(m.nodes)
}

// Edges returns every edge in emission order, dangling citations included.
// The returned slice is a copy.
func (m *Model) Edges() []Edge {
	return slices.Clone(m.edges)
}

// Papers returns the paper nodes.
func (m *Model) Papers() []Node {
	return m.ofKind(KindPaper)
}

// Authors returns the author nodes.
func (m *Model) Authors() []Node {
	return m.ofKind(KindAuthor)
}

func (m *Model) ofKind(kind Kind) []Node {
	var out []Node
	for _, n := range m.nodes {
		if n.Kind == kind {
			out = append(out, n)
		}
	}
	return out
}

// Outgoing returns the edges whose source is id.
func (m *Model) Outgoing(id string) []Edge {
	return m.collect(m.out[id])
}

// Incoming returns the edges whose target is id.
func (m *Model) Incoming(id string) []Edge {
	return m.collect(m.in[id])
}

func (m *Model) collect(positions []int) []Edge {
	out := make([]Edge, 0, len(positions))
	for _, i := range positions {
		out = append(out, m.edges[i])
	}
	return out
}

// Stats returns the aggregates computed at normalization.
func (m *Model) Stats() Stats {
	return m.stats
}

// Len returns the number of nodes.
func (m *Model) Len() int {
	return len(m.nodes)
}

// Full returns the whole model as a subgraph with dangling and misplaced
// edges removed.
func (m *Model) Full() *Subgraph {
	return Induced(m.nodes, m.edges, func(Node) bool { return true })
}
