package filter

import (
	"strings"

	"github.com/matsen/citegraph/internal/graph"
)

// Option configures Apply.
type Option func(*options)

type options struct {
	text TextMatcher
}

// WithTextMatcher routes the Text criterion through m instead of the
// built-in substring match. m must select the same papers as TextMatches.
func WithTextMatcher(m TextMatcher) Option {
	return func(o *options) {
		o.text = m
	}
}

// Apply computes the visible subgraph. Each pass narrows the output of the
// previous one:
//
//  1. papers passing the year, citation, dataset and text predicates;
//  2. edges passing the relation filter with either endpoint in (1);
//  3. authors that are the source of an AUTHORED edge in (2);
//  4. nodes (1) ∪ (3), with the edges of (2) whose endpoints are both present.
//
// Authors are pulled in by any qualifying paper, yet edges to papers that
// did not qualify are still excluded. Apply never fails; a malformed range
// selects nothing.
func Apply(nodes []graph.Node, edges []graph.Edge, c Criteria, opts ...Option) *graph.Subgraph {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	byID := make(map[string]graph.Node, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
	}

	textMatch := textPredicate(c.Text, o.text)
	dataset := strings.ToLower(strings.TrimSpace(c.Dataset))

	// Pass 1: papers.
	var papers []graph.Node
	paperIDs := make(map[string]bool)
	for _, n := range nodes {
		if !n.IsPaper() {
			continue
		}
		if !c.Years.Contains(n.Year) || !c.Citations.Contains(n.CitationCount) {
			continue
		}
		if dataset != "" && !hasDataset(n, dataset) {
			continue
		}
		if !textMatch(n) {
			continue
		}
		papers = append(papers, n)
		paperIDs[n.ID] = true
	}

	// Pass 2: edges touching a surviving paper.
	var loose []graph.Edge
	for _, e := range edges {
		if !paperIDs[e.Source] && !paperIDs[e.Target] {
			continue
		}
		if !c.Relation.Matches(e) {
			continue
		}
		loose = append(loose, e)
	}

	// Pass 3: authors reachable from a surviving paper.
	relevant := make(map[string]bool)
	for _, e := range loose {
		if e.Relation != graph.RelationAuthored {
			continue
		}
		if n, ok := byID[e.Source]; ok && n.IsAuthor() {
			relevant[e.Source] = true
		}
	}

	// Pass 4: final nodes and strict edges.
	sg := graph.Empty()
	final := make(map[string]graph.Node, len(papers)+len(relevant))
	for _, p := range papers {
		sg.Nodes = append(sg.Nodes, p)
		final[p.ID] = p
	}
	for _, n := range nodes {
		if n.IsAuthor() && relevant[n.ID] {
			sg.Nodes = append(sg.Nodes, n)
			final[n.ID] = n
		}
	}
	sg.Edges = graph.EdgesWithin(loose, final)

	return sg
}

// hasDataset reports whether any dataset tag of n contains the lowercase needle.
func hasDataset(n graph.Node, needle string) bool {
	for _, d := range n.Datasets {
		if strings.Contains(strings.ToLower(d), needle) {
			return true
		}
	}
	return false
}
