package expand

import (
	"testing"

	"github.com/matsen/citegraph/internal/dataset"
	"github.com/matsen/citegraph/internal/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// P1 by A1, A2 cites P2 and the unknown X9; P2 by A1; P3 by A3 cites P1.
func testModel(t *testing.T) *graph.Model {
	t.Helper()
	m, err := graph.Normalize([]dataset.Paper{
		{
			PaperID: "P1", Title: "Deep Residual Learning", Year: 2018, CitationCount: 50,
			Authors:    []dataset.Author{{AuthorID: "A1", Name: "Ann"}, {AuthorID: "A2", Name: "Bob"}},
			References: []string{"P2", "X9"},
		},
		{
			PaperID: "P2", Title: "Vision Transformers", Year: 2020, CitationCount: 5,
			Authors: []dataset.Author{{AuthorID: "A1", Name: "Ann"}},
		},
		{
			PaperID: "P3", Title: "Gradient Boosting", Year: 2015, CitationCount: 120,
			Authors:    []dataset.Author{{AuthorID: "A3", Name: "Cy"}},
			References: []string{"P1"},
		},
	})
	require.NoError(t, err)
	return m
}

type pair struct{ src, dst string }

func edgePairs(sg *graph.Subgraph) []pair {
	out := []pair{}
	for _, e := range sg.Edges {
		out = append(out, pair{e.Source, e.Target})
	}
	return out
}

func nodeIDs(sg *graph.Subgraph) []string {
	out := []string{}
	for _, n := range sg.Nodes {
		out = append(out, n.ID)
	}
	return out
}

func TestFromPaper(t *testing.T) {
	m := testModel(t)

	tests := []struct {
		name      string
		id        string
		wantNodes []string
		wantEdges []pair
	}{
		{
			name:      "cites, cited by and authors",
			id:        "P1",
			wantNodes: []string{"P1", "P2", "P3", "A1", "A2"},
			wantEdges: []pair{{"A1", "P1"}, {"A2", "P1"}, {"P1", "P2"}, {"A1", "P2"}, {"P3", "P1"}},
		},
		{
			name:      "leaf paper",
			id:        "P2",
			wantNodes: []string{"P1", "P2", "A1"},
			wantEdges: []pair{{"A1", "P1"}, {"P1", "P2"}, {"A1", "P2"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sg, ok := FromPaper(m, tt.id)
			require.True(t, ok)
			assert.Equal(t, tt.wantNodes, nodeIDs(sg))
			assert.ElementsMatch(t, tt.wantEdges, edgePairs(sg))
		})
	}
}

func TestFromPaper_IncludesFocusAndStaysOneHop(t *testing.T) {
	m := testModel(t)

	for _, p := range m.Papers() {
		sg, ok := FromPaper(m, p.ID)
		require.True(t, ok)
		assert.True(t, sg.Contains(p.ID), "focus %s missing", p.ID)

		for _, n := range sg.Nodes {
			if n.ID == p.ID {
				continue
			}
			adjacent := false
			for _, e := range append(m.Outgoing(p.ID), m.Incoming(p.ID)...) {
				if e.Source == n.ID || e.Target == n.ID {
					adjacent = true
				}
			}
			assert.True(t, adjacent, "%s is not one hop from %s", n.ID, p.ID)
		}
	}
}

func TestFromAuthor(t *testing.T) {
	m := testModel(t)

	tests := []struct {
		name      string
		id        string
		wantNodes []string
		wantEdges []pair
	}{
		{
			name:      "papers and co-authors",
			id:        "A1",
			wantNodes: []string{"P1", "P2", "A1", "A2"},
			wantEdges: []pair{{"A1", "P1"}, {"A2", "P1"}, {"P1", "P2"}, {"A1", "P2"}},
		},
		{
			name:      "co-author sees only shared paper",
			id:        "A2",
			wantNodes: []string{"P1", "A1", "A2"},
			wantEdges: []pair{{"A1", "P1"}, {"A2", "P1"}},
		},
		{
			name:      "sole author",
			id:        "A3",
			wantNodes: []string{"P3", "A3"},
			wantEdges: []pair{{"A3", "P3"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sg, ok := FromAuthor(m, tt.id)
			require.True(t, ok)
			assert.Equal(t, tt.wantNodes, nodeIDs(sg))
			assert.ElementsMatch(t, tt.wantEdges, edgePairs(sg))
		})
	}
}

func TestExpand_NotFound(t *testing.T) {
	m := testModel(t)

	tests := []struct {
		name   string
		expand func(*graph.Model, string) (*graph.Subgraph, bool)
		id     string
	}{
		{name: "unknown paper", expand: FromPaper, id: "nope"},
		{name: "dangling reference", expand: FromPaper, id: "X9"},
		{name: "author as paper", expand: FromPaper, id: "A1"},
		{name: "unknown author", expand: FromAuthor, id: "nope"},
		{name: "paper as author", expand: FromAuthor, id: "P1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sg, ok := tt.expand(m, tt.id)
			assert.False(t, ok)
			require.NotNil(t, sg)
			assert.True(t, sg.IsEmpty())
			assert.Empty(t, sg.Edges)
		})
	}
}

func TestExpand_DoesNotMutateModel(t *testing.T) {
	m := testModel(t)
	before := m.Edges()

	sg, _ := FromAuthor(m, "A1")
	sg.Nodes[0].Title = "changed"
	sg.Edges[0].Source = "changed"

	p, _ := m.Lookup("P1")
	assert.Equal(t, "Deep Residual Learning", p.Title)
	assert.Equal(t, before, m.Edges())
}
