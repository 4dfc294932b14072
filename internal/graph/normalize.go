package graph

import (
	"log/slog"
	"math"
	"strings"

	"github.com/matsen/citegraph/internal/dataset"
)

// statsAccumulator tightens year and citation bounds one record at a time,
// starting from sentinels so record order never matters.
type statsAccumulator struct {
	minYear      int
	maxYear      int
	maxCitations int
	papers       int
}

func newStatsAccumulator() *statsAccumulator {
	return &statsAccumulator{
		minYear: math.MaxInt,
		maxYear: math.MinInt,
	}
}

func (a *statsAccumulator) add(year, citations int) {
	a.papers++
	if year < a.minYear {
		a.minYear = year
	}
	if year > a.maxYear {
		a.maxYear = year
	}
	if citations > a.maxCitations {
		a.maxCitations = citations
	}
}

func (a *statsAccumulator) stats() Stats {
	if a.papers == 0 {
		return Stats{}
	}
	return Stats{
		MinYear:          a.minYear,
		MaxYear:          a.maxYear,
		MaxCitationCount: a.maxCitations,
		Papers:           a.papers,
	}
}

// Normalize turns raw paper records into the canonical graph.
//
// Each record yields one paper node, one AUTHORED edge per listed author and
// one CITES edge per reference id. Authors are deduplicated by authorId with
// the first-seen name and affiliations kept. Reference ids that do not name a
// paper in the dataset are kept as dangling edges; subgraph construction
// drops them later.
//
// Records that repeat an earlier paperId are skipped, as are author entries
// without an authorId and authors whose id collides with a paper id. A record
// without a paperId is fatal and returns a *MalformedDatasetError.
func Normalize(records []dataset.Paper) (*Model, error) {
	acc := newStatsAccumulator()

	papers := make([]Node, 0, len(records))
	paperIDs := make(map[string]bool, len(records))
	var authors []Node
	authorIdx := make(map[string]int)
	var edges []Edge

	for i, rec := range records {
		id := strings.TrimSpace(rec.PaperID)
		if id == "" {
			return nil, &MalformedDatasetError{Index: i, Title: rec.Title, Reason: "missing paperId"}
		}
		if paperIDs[id] {
			slog.Debug("skipping duplicate paper record", "index", i, "paper_id", id)
			continue
		}
		paperIDs[id] = true

		acc.add(rec.Year, rec.CitationCount)
		papers = append(papers, newPaperNode(id, rec))

		for _, a := range rec.Authors {
			authorID := strings.TrimSpace(a.AuthorID)
			if authorID == "" {
				slog.Debug("skipping author without id", "paper_id", id, "name", a.Name)
				continue
			}
			if _, seen := authorIdx[authorID]; !seen {
				authorIdx[authorID] = len(authors)
				authors = append(authors, newAuthorNode(authorID, a))
			}
			edges = append(edges, NewEdge(authorID, id, RelationAuthored))
		}

		for _, ref := range rec.References {
			ref = strings.TrimSpace(ref)
			if ref == "" {
				continue
			}
			edges = append(edges, NewEdge(id, ref, RelationCites))
		}
	}

	authors, edges = dropMisplacedEdges(authors, edges, paperIDs)

	stats := acc.stats()
	stats.Authors = len(authors)
	stats.Edges = len(edges)

	return newModel(append(papers, authors...), edges, stats), nil
}

// newPaperNode converts a raw record into a paper node.
func newPaperNode(id string, rec dataset.Paper) Node {
	datasets := rec.Datasets
	if datasets == nil {
		datasets = []string{}
	}
	return Node{
		ID:             id,
		Kind:           KindPaper,
		Title:          rec.Title,
		Year:           rec.Year,
		Abstract:       rec.Abstract,
		CitationCount:  max(rec.CitationCount, 0),
		ReferenceCount: max(rec.ReferenceCount, 0),
		Datasets:       datasets,
	}
}

// newAuthorNode creates an author node with no authorships counted yet.
func newAuthorNode(id string, a dataset.Author) Node {
	affiliations := a.Affiliations
	if affiliations == nil {
		affiliations = []string{}
	}
	return Node{
		ID:           id,
		Kind:         KindAuthor,
		Name:         a.Name,
		Affiliations: affiliations,
	}
}

// dropMisplacedEdges enforces the endpoint kinds once every id is known:
// authors that collide with a paper id are removed with their AUTHORED
// edges, and CITES edges pointing at an author are removed. Author
// paperCount is then derived from the surviving AUTHORED edges.
func dropMisplacedEdges(authors []Node, edges []Edge, paperIDs map[string]bool) ([]Node, []Edge) {
	authorIDs := make(map[string]bool, len(authors))
	kept := authors[:0]
	for _, a := range authors {
		if paperIDs[a.ID] {
			slog.Debug("dropping author whose id collides with a paper", "author_id", a.ID)
			continue
		}
		authorIDs[a.ID] = true
		kept = append(kept, a)
	}
	authors = kept

	counts := make(map[string]int, len(authors))
	valid := make([]Edge, 0, len(edges))
	for _, e := range edges {
		switch e.Relation {
		case RelationAuthored:
			if !authorIDs[e.Source] {
				continue
			}
			counts[e.Source]++
		case RelationCites:
			if authorIDs[e.Target] {
				continue
			}
		}
		valid = append(valid, e)
	}

	for i := range authors {
		authors[i].PaperCount = counts[authors[i].ID]
	}

	return authors, valid
}
