package viz

import (
	"fmt"

	"github.com/matsen/citegraph/internal/graph"
)

// YearBucketCount is the number of year ranges shown in the legend.
const YearBucketCount = 4

// Legend holds the aggregates shown next to the rendered graph.
type Legend struct {
	Nodes       int          `json:"nodes"`
	Papers      int          `json:"papers"`
	Authors     int          `json:"authors"`
	Links       int          `json:"links"`
	Citations   int          `json:"citations"`
	Authorships int          `json:"authorships"`
	Years       []YearBucket `json:"years"`
}

// YearBucket counts the visible papers published in [Start, End].
type YearBucket struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// ComputeLegend counts the nodes and edges of sg by kind and buckets its
// papers into YearBucketCount ranges spanning the model's year range.
//
// Buckets are ceil((max-min)/4) years wide (at least one), clamped to
// stats.MaxYear, and the last one always ends there. Spans shorter than four
// years repeat [MaxYear, MaxYear] in the trailing buckets. A paper is counted in the first bucket that
// contains its year. No buckets are produced when the model has no papers.
func ComputeLegend(sg *graph.Subgraph, stats graph.Stats) Legend {
	l := Legend{
		Nodes: len(sg.Nodes),
		Links: len(sg.Edges),
		Years: yearBuckets(stats),
	}

	for _, n := range sg.Nodes {
		switch n.Kind {
		case graph.KindPaper:
			l.Papers++
			for i := range l.Years {
				if b := &l.Years[i]; n.Year >= b.Start && n.Year <= b.End {
					b.Count++
					break
				}
			}
		case graph.KindAuthor:
			l.Authors++
		}
	}

	for _, e := range sg.Edges {
		switch e.Relation {
		case graph.RelationCites:
			l.Citations++
		case graph.RelationAuthored:
			l.Authorships++
		}
	}

	return l
}

func yearBuckets(stats graph.Stats) []YearBucket {
	if !stats.HasPapers() {
		return []YearBucket{}
	}

	span := stats.MaxYear - stats.MinYear
	step := max(1, (span+YearBucketCount-1)/YearBucketCount)

	buckets := make([]YearBucket, YearBucketCount)
	for i := range buckets {
		start := min(stats.MinYear+i*step, stats.MaxYear)
		end := min(start+step-1, stats.MaxYear)
		if i == YearBucketCount-1 {
			end = stats.MaxYear
		}
		buckets[i] = YearBucket{
			Start: start,
			End:   end,
			Label: fmt.Sprintf("%d-%d", start, end),
		}
	}
	return buckets
}
