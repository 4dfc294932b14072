package search

import (
	"sort"

	"github.com/matsen/citegraph/internal/graph"
)

// Trending returns up to n cited papers ordered by citations per year since
// publication, relative to currentYear. Papers from currentYear or later
// score their raw citation count.
func Trending(nodes []graph.Node, currentYear, n int) []graph.Node {
	if n <= 0 {
		return []graph.Node{}
	}

	type scored struct {
		node  graph.Node
		score float64
	}

	var papers []scored
	for _, node := range nodes {
		if !node.IsPaper() || node.CitationCount <= 0 {
			continue
		}
		score := float64(node.CitationCount)
		if age := currentYear - node.Year; age > 0 {
			score /= float64(age)
		}
		papers = append(papers, scored{node: node, score: score})
	}

	sort.SliceStable(papers, func(i, j int) bool {
		return papers[i].score > papers[j].score
	})

	out := make([]graph.Node, 0, min(n, len(papers)))
	for i := 0; i < len(papers) && i < n; i++ {
		out = append(out, papers[i].node)
	}
	return out
}

// TopAuthors returns up to n authors with the most papers in the dataset.
func TopAuthors(nodes []graph.Node, n int) []graph.Node {
	if n <= 0 {
		return []graph.Node{}
	}

	var authors []graph.Node
	for _, node := range nodes {
		if node.IsAuthor() {
			authors = append(authors, node)
		}
	}

	sort.SliceStable(authors, func(i, j int) bool {
		return authors[i].PaperCount > authors[j].PaperCount
	})

	if len(authors) > n {
		authors = authors[:n]
	}
	if authors == nil {
		authors = []graph.Node{}
	}
	return authors
}
