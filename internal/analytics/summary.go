package analytics

import (
	"math"
	"sort"

	"github.com/matsen/citegraph/internal/graph"
	"gonum.org/v1/gonum/stat"
)

// CitationSummary describes the distribution of citation counts over a set
// of papers. Quantiles use the empirical distribution, so they are always
// observed values.
type CitationSummary struct {
	Papers int     `json:"papers"`
	Total  int     `json:"total"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stdDev"`
	Median float64 `json:"median"`
	P90    float64 `json:"p90"`
	Max    float64 `json:"max"`
}

// SummarizeCitations computes a CitationSummary over the papers in nodes.
// Authors are ignored. The zero summary is returned when there are no papers.
func SummarizeCitations(nodes []graph.Node) CitationSummary {
	var counts []float64
	total := 0
	for _, n := range nodes {
		if n.IsPaper() {
			counts = append(counts, float64(n.CitationCount))
			total += n.CitationCount
		}
	}
	if len(counts) == 0 {
		return CitationSummary{}
	}
	sort.Float64s(counts)

	s := CitationSummary{
		Papers: len(counts),
		Total:  total,
		Mean:   stat.Mean(counts, nil),
		Median: stat.Quantile(0.5, stat.Empirical, counts, nil),
		P90:    stat.Quantile(0.9, stat.Empirical, counts, nil),
		Max:    counts[len(counts)-1],
	}
	// The sample deviation is undefined for a single paper.
	if len(counts) > 1 {
		s.StdDev = stat.StdDev(counts, nil)
	}
	if math.IsNaN(s.StdDev) {
		s.StdDev = 0
	}
	return s
}

// CitationYearCorrelation returns the Pearson correlation between
// publication year and citation count, or 0 when it is undefined.
func CitationYearCorrelation(nodes []graph.Node) float64 {
	var years, counts []float64
	for _, n := range nodes {
		if n.IsPaper() {
			years = append(years, float64(n.Year))
			counts = append(counts, float64(n.CitationCount))
		}
	}
	if len(years) < 2 {
		return 0
	}
	r := stat.Correlation(years, counts, nil)
	if math.IsNaN(r) {
		return 0
	}
	return r
}
