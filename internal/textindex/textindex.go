// Package textindex is an in-memory index over paper titles, abstracts and
// dataset tags. It backs the free-text filter criterion and selects exactly
// the papers filter.TextMatches accepts.
package textindex

import (
	"fmt"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/single"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"
	"github.com/matsen/citegraph/internal/filter"
	"github.com/matsen/citegraph/internal/graph"
)

// batchSize bounds the documents sent to bleve per batch.
const batchSize = 500

// wholeFieldAnalyzer indexes each field as one lowercase term, so a
// wildcard query can test for a substring anywhere in it.
const wholeFieldAnalyzer = "whole_field_lower"

// fields are the indexed document fields.
var fields = []string{"title", "abstract", "datasets"}

// paperDocument is the indexed form of a paper node.
type paperDocument struct {
	Title    string `json:"title"`
	Abstract string `json:"abstract"`
	Datasets string `json:"datasets"`
}

// Index answers free-text queries with the ids of matching papers.
type Index struct {
	mu    sync.RWMutex
	index bleve.Index
	size  uint64
}

// Build indexes every paper in nodes. Authors are ignored.
func Build(nodes []graph.Node) (*Index, error) {
	im, err := newMapping()
	if err != nil {
		return nil, err
	}
	idx, err := bleve.NewMemOnly(im)
	if err != nil {
		return nil, fmt.Errorf("creating text index: %w", err)
	}

	batch := idx.NewBatch()
	var size uint64
	for _, n := range nodes {
		if !n.IsPaper() {
			continue
		}
		doc := paperDocument{
			Title:    n.Title,
			Abstract: n.Abstract,
			Datasets: strings.Join(n.Datasets, "\n"),
		}
		if err := batch.Index(n.ID, doc); err != nil {
			idx.Close()
			return nil, fmt.Errorf("indexing paper %s: %w", n.ID, err)
		}
		size++

		if batch.Size() >= batchSize {
			if err := idx.Batch(batch); err != nil {
				idx.Close()
				return nil, fmt.Errorf("flushing text index batch: %w", err)
			}
			batch.Reset()
		}
	}
	if batch.Size() > 0 {
		if err := idx.Batch(batch); err != nil {
			idx.Close()
			return nil, fmt.Errorf("flushing text index batch: %w", err)
		}
	}

	return &Index{index: idx, size: size}, nil
}

func newMapping() (*mapping.IndexMappingImpl, error) {
	im := bleve.NewIndexMapping()
	err := im.AddCustomAnalyzer(wholeFieldAnalyzer, map[string]interface{}{
		"type":          custom.Name,
		"tokenizer":     single.Name,
		"token_filters": []string{lowercase.Name},
	})
	if err != nil {
		return nil, fmt.Errorf("defining text analyzer: %w", err)
	}
	im.DefaultAnalyzer = wholeFieldAnalyzer
	return im, nil
}

// Match returns the ids of papers in which every term of text occurs,
// case-insensitively, in the title, the abstract or a dataset tag. Terms
// are split by filter.Terms; text without terms matches nothing.
func (x *Index) Match(text string) (map[string]bool, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	if x.index == nil {
		return nil, fmt.Errorf("text index is closed")
	}

	ids := make(map[string]bool)
	terms := filter.Terms(text)
	if len(terms) == 0 || x.size == 0 {
		return ids, nil
	}

	req := bleve.NewSearchRequest(termsQuery(terms))
	req.Size = int(x.size)

	res, err := x.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("searching text index for %q: %w", text, err)
	}
	for _, hit := range res.Hits {
		ids[hit.ID] = true
	}
	return ids, nil
}

// termsQuery requires each term as a substring of at least one field.
func termsQuery(terms []string) query.Query {
	all := bleve.NewConjunctionQuery()
	for _, term := range terms {
		either := bleve.NewDisjunctionQuery()
		for _, field := range fields {
			q := bleve.NewWildcardQuery("*" + term + "*")
			q.SetField(field)
			either.AddQuery(q)
		}
		all.AddQuery(either)
	}
	return all
}

// Len returns the number of indexed papers.
func (x *Index) Len() int {
	return int(x.size)
}

// Close releases the index. Match fails afterwards.
func (x *Index) Close() error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if x.index == nil {
		return nil
	}
	err := x.index.Close()
	x.index = nil
	return err
}
