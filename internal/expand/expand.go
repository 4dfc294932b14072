// Package expand builds one-hop neighborhoods around a focus node of the
// full graph model.
package expand

import "github.com/matsen/citegraph/internal/graph"

// FromPaper returns the paper's neighborhood: the paper itself, every paper
// it cites or is cited by, and its authors. Edges are kept only when both
// endpoints are in the neighborhood.
//
// It returns an empty subgraph and false if id is unknown or not a paper.
func FromPaper(m *graph.Model, id string) (*graph.Subgraph, bool) {
	focus, ok := m.Lookup(id)
	if !ok || !focus.IsPaper() {
		return graph.Empty(), false
	}

	related := map[string]bool{id: true}
	for _, e := range m.Outgoing(id) {
		if e.Relation == graph.RelationCites {
			related[e.Target] = true
		}
	}
	// Citing papers and authors both point at the focus.
	for _, e := range m.Incoming(id) {
		related[e.Source] = true
	}

	return neighborhood(m, related), true
}

// FromAuthor returns the author's collaboration network: the author, the
// papers they authored, and every co-author of those papers.
//
// It returns an empty subgraph and false if id is unknown or not an author.
func FromAuthor(m *graph.Model, id string) (*graph.Subgraph, bool) {
	focus, ok := m.Lookup(id)
	if !ok || !focus.IsAuthor() {
		return graph.Empty(), false
	}

	related := map[string]bool{id: true}

	// First hop: the author's papers.
	var papers []string
	for _, e := range m.Outgoing(id) {
		if e.Relation == graph.RelationAuthored {
			papers = append(papers, e.Target)
			related[e.Target] = true
		}
	}

	// Second hop: everyone who authored one of those papers.
	for _, p := range papers {
		for _, e := range m.Incoming(p) {
			if e.Relation == graph.RelationAuthored {
				related[e.Source] = true
			}
		}
	}

	return neighborhood(m, related), true
}

// neighborhood restricts the model to the related ids, keeping model order.
// Ids with no node (dangling citations) are dropped here.
func neighborhood(m *graph.Model, related map[string]bool) *graph.Subgraph {
	return graph.Induced(m.Nodes(), m.Edges(), func(n graph.Node) bool {
		return related[n.ID]
	})
}
