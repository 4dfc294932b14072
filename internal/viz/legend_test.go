package viz

import (
	"testing"

	"github.com/matsen/citegraph/internal/graph"
	"github.com/stretchr/testify/assert"
)

func TestComputeLegend_Counts(t *testing.T) {
	stats := graph.Stats{MinYear: 2018, MaxYear: 2020, MaxCitationCount: 50, Papers: 2}

	l := ComputeLegend(sampleSubgraph(), stats)

	assert.Equal(t, 3, l.Nodes)
	assert.Equal(t, 2, l.Papers)
	assert.Equal(t, 1, l.Authors)
	assert.Equal(t, 3, l.Links)
	assert.Equal(t, 1, l.Citations)
	assert.Equal(t, 2, l.Authorships)
}

func TestComputeLegend_YearBuckets(t *testing.T) {
	papers := func(years ...int) *graph.Subgraph {
		sg := graph.Empty()
		for _, y := range years {
			sg.Nodes = append(sg.Nodes, graph.Node{ID: "p", Kind: graph.KindPaper, Year: y})
		}
		return sg
	}

	tests := []struct {
		name   string
		stats  graph.Stats
		years  []int
		labels []string
		counts []int
	}{
		{
			name:   "even span",
			stats:  graph.Stats{MinYear: 2000, MaxYear: 2020, Papers: 1},
			years:  []int{2000, 2004, 2005, 2012, 2015, 2016, 2020},
			labels: []string{"2000-2004", "2005-2009", "2010-2014", "2015-2020"},
			counts: []int{2, 1, 1, 3},
		},
		{
			name:   "span rounds up",
			stats:  graph.Stats{MinYear: 2010, MaxYear: 2019, Papers: 1},
			years:  []int{2012, 2013, 2019},
			labels: []string{"2010-2012", "2013-2015", "2016-2018", "2019-2019"},
			counts: []int{1, 1, 0, 1},
		},
		{
			name:   "single year",
			stats:  graph.Stats{MinYear: 2021, MaxYear: 2021, Papers: 1},
			years:  []int{2021, 2021},
			labels: []string{"2021-2021", "2021-2021", "2021-2021", "2021-2021"},
			counts: []int{2, 0, 0, 0},
		},
		{
			name:   "one year span",
			stats:  graph.Stats{MinYear: 2020, MaxYear: 2021, Papers: 1},
			years:  []int{2020, 2021, 2021},
			labels: []string{"2020-2020", "2021-2021", "2021-2021", "2021-2021"},
			counts: []int{1, 2, 0, 0},
		},
		{
			name:   "two year span",
			stats:  graph.Stats{MinYear: 2018, MaxYear: 2020, Papers: 1},
			years:  []int{2018, 2019, 2020},
			labels: []string{"2018-2018", "2019-2019", "2020-2020", "2020-2020"},
			counts: []int{1, 1, 1, 0},
		},
		{
			name:   "three year span",
			stats:  graph.Stats{MinYear: 2018, MaxYear: 2021, Papers: 1},
			years:  []int{2018, 2021},
			labels: []string{"2018-2018", "2019-2019", "2020-2020", "2021-2021"},
			counts: []int{1, 0, 0, 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := ComputeLegend(papers(tt.years...), tt.stats)
			var labels []string
			var counts []int
			for _, b := range l.Years {
				labels = append(labels, b.Label)
				counts = append(counts, b.Count)
			}
			assert.Equal(t, tt.labels, labels)
			assert.Equal(t, tt.counts, counts)
			for _, b := range l.Years {
				assert.LessOrEqual(t, b.Start, b.End, b.Label)
				assert.GreaterOrEqual(t, b.Start, tt.stats.MinYear, b.Label)
				assert.LessOrEqual(t, b.End, tt.stats.MaxYear, b.Label)
			}
		})
	}
}

func TestComputeLegend_NoPapers(t *testing.T) {
	l := ComputeLegend(graph.Empty(), graph.Stats{})
	assert.Zero(t, l.Nodes)
	assert.NotNil(t, l.Years)
	assert.Empty(t, l.Years)
}
