// Package search ranks graph nodes against a text query.
package search

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/matsen/citegraph/internal/graph"
)

const (
	// MinQueryLength is the shortest query that produces results.
	MinQueryLength = 2

	// MaxResults caps each scope's candidates and the merged result.
	MaxResults = 10
)

// Scope restricts which entities a query is matched against.
type Scope string

// Search scopes.
const (
	ScopeAll      Scope = "all"
	ScopePapers   Scope = "papers"
	ScopeAuthors  Scope = "authors"
	ScopeDatasets Scope = "datasets"
)

// ValidScopes lists the accepted scope names.
var ValidScopes = []Scope{ScopeAll, ScopePapers, ScopeAuthors, ScopeDatasets}

// ParseScope parses a scope name. The empty string means all.
func ParseScope(s string) (Scope, error) {
	switch Scope(strings.ToLower(strings.TrimSpace(s))) {
	case "", ScopeAll:
		return ScopeAll, nil
	case ScopePapers, "paper":
		return ScopePapers, nil
	case ScopeAuthors, "author":
		return ScopeAuthors, nil
	case ScopeDatasets, "dataset":
		return ScopeDatasets, nil
	}
	return "", fmt.Errorf("invalid scope %q (valid: %v)", s, ValidScopes)
}

// Search returns at most MaxResults nodes matching query, best first.
//
// Matching is a case-insensitive substring test: papers on title or
// abstract, authors on name, and the datasets scope on a paper's dataset
// tags. Queries shorter than MinQueryLength return an empty result.
//
// Each scope contributes at most MaxResults candidates (in model order)
// before the candidates are merged, ranked and capped again, so a heavily
// cited paper beyond the first MaxResults title matches is not eligible.
// A node matched by more than one scope appears once.
func Search(nodes []graph.Node, query string, scope Scope) []graph.Node {
	q := strings.ToLower(strings.TrimSpace(query))
	if utf8.RuneCountInString(q) < MinQueryLength {
		return []graph.Node{}
	}

	var candidates []graph.Node
	if scope == ScopeAll || scope == ScopePapers {
		candidates = append(candidates, collect(nodes, func(n graph.Node) bool {
			return n.IsPaper() && (contains(n.Title, q) || contains(n.Abstract, q))
		})...)
	}
	if scope == ScopeAll || scope == ScopeAuthors {
		candidates = append(candidates, collect(nodes, func(n graph.Node) bool {
			return n.IsAuthor() && contains(n.Name, q)
		})...)
	}
	if scope == ScopeAll || scope == ScopeDatasets {
		candidates = append(candidates, collect(nodes, func(n graph.Node) bool {
			if !n.IsPaper() {
				return false
			}
			for _, d := range n.Datasets {
				if contains(d, q) {
					return true
				}
			}
			return false
		})...)
	}

	results := dedupe(candidates)
	rank(results, q)

	if len(results) > MaxResults {
		results = results[:MaxResults]
	}
	return results
}

// collect returns the first MaxResults nodes accepted by match.
func collect(nodes []graph.Node, match func(graph.Node) bool) []graph.Node {
	var out []graph.Node
	for _, n := range nodes {
		if len(out) == MaxResults {
			break
		}
		if match(n) {
			out = append(out, n)
		}
	}
	return out
}

// dedupe keeps the first occurrence of each node id.
func dedupe(nodes []graph.Node) []graph.Node {
	seen := make(map[string]bool, len(nodes))
	out := make([]graph.Node, 0, len(nodes))
	for _, n := range nodes {
		if seen[n.ID] {
			continue
		}
		seen[n.ID] = true
		out = append(out, n)
	}
	return out
}

// rank orders nodes by: exact label match, then label prefix match, then
// papers before authors, then citationCount (papers) or paperCount
// (authors) descending. Remaining ties keep their candidate order.
func rank(nodes []graph.Node, q string) {
	sort.SliceStable(nodes, func(i, j int) bool {
		a, b := nodes[i], nodes[j]
		al, bl := strings.ToLower(a.Label()), strings.ToLower(b.Label())

		if ae, be := al == q, bl == q; ae != be {
			return ae
		}
		if ap, bp := strings.HasPrefix(al, q), strings.HasPrefix(bl, q); ap != bp {
			return ap
		}
		if a.Kind != b.Kind {
			return a.IsPaper()
		}
		return weight(a) > weight(b)
	})
}

// weight is the popularity tie-breaker for a node of either kind.
func weight(n graph.Node) int {
	if n.IsAuthor() {
		return n.PaperCount
	}
	return n.CitationCount
}

func contains(s, lowerNeedle string) bool {
	return strings.Contains(strings.ToLower(s), lowerNeedle)
}
