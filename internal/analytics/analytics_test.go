package analytics

import (
	"context"
	"testing"

	"github.com/matsen/citegraph/internal/dataset"
	"github.com/matsen/citegraph/internal/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	m, err := graph.Normalize([]dataset.Paper{
		{
			PaperID: "P1", Title: "Deep Residual Learning", Year: 2018, CitationCount: 50,
			Datasets:   []string{"ImageNet", "CIFAR-10"},
			Authors:    []dataset.Author{{AuthorID: "A1", Name: "Ann"}, {AuthorID: "A2", Name: "Bob"}},
			References: []string{"P2", "X9"},
		},
		{
			PaperID: "P2", Title: "Vision Transformers", Year: 2020, CitationCount: 5,
			Datasets: []string{"ImageNet"},
			Authors:  []dataset.Author{{AuthorID: "A1", Name: "Ann"}},
		},
		{
			PaperID: "P3", Title: "Gradient Boosting", Year: 2015, CitationCount: 120,
			Datasets:   []string{"CIFAR-10", "MNIST"},
			Authors:    []dataset.Author{{AuthorID: "A3", Name: "Cy"}, {AuthorID: "A1", Name: "Ann"}},
			References: []string{"P1"},
		},
		{
			PaperID: "P4", Title: "Wide Residual Networks", Year: 2020,
			Datasets:   []string{"ImageNet", "CIFAR-10", "ImageNet"},
			Authors:    []dataset.Author{{AuthorID: "A1", Name: "Ann"}, {AuthorID: "A2", Name: "Bob"}},
			References: []string{"P1"},
		},
	})
	require.NoError(t, err)

	db, err := Open(context.Background(), m)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestTopDatasets(t *testing.T) {
	db := openTestDB(t)

	got, err := db.TopDatasets(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, []DatasetUsage{
		{Dataset: "CIFAR-10", Papers: 3},
		{Dataset: "ImageNet", Papers: 3},
		{Dataset: "MNIST", Papers: 1},
	}, got)

	got, err = db.TopDatasets(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestDatasetCooccurrence(t *testing.T) {
	db := openTestDB(t)

	got, err := db.DatasetCooccurrence(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, []DatasetPair{
		{A: "CIFAR-10", B: "ImageNet", Papers: 2},
		{A: "CIFAR-10", B: "MNIST", Papers: 1},
	}, got)
}

func TestDatasetTrend(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	got, err := db.DatasetTrend(ctx, []string{"ImageNet"})
	require.NoError(t, err)
	assert.Equal(t, []YearUsage{
		{Dataset: "ImageNet", Year: 2018, Papers: 1},
		{Dataset: "ImageNet", Year: 2020, Papers: 2},
	}, got)

	got, err = db.DatasetTrend(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestTopAuthorsForDatasets(t *testing.T) {
	db := openTestDB(t)

	got, err := db.TopAuthorsForDatasets(context.Background(), []string{"ImageNet"}, 10)
	require.NoError(t, err)
	assert.Equal(t, []AuthorUsage{
		{AuthorID: "A1", Author: "Ann", Dataset: "ImageNet", Papers: 3},
		{AuthorID: "A2", Author: "Bob", Dataset: "ImageNet", Papers: 2},
	}, got)
}

func TestCollaborations(t *testing.T) {
	db := openTestDB(t)

	got, err := db.Collaborations(context.Background(), []string{"CIFAR-10"}, 10)
	require.NoError(t, err)
	assert.Equal(t, []Collaboration{
		{Dataset: "CIFAR-10", Author1: "Ann", Author2: "Bob", SharedPapers: 2},
		{Dataset: "CIFAR-10", Author1: "Ann", Author2: "Cy", SharedPapers: 1},
	}, got)
}

func TestMostCited(t *testing.T) {
	db := openTestDB(t)

	got, err := db.MostCited(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, []CitedPaper{
		{PaperID: "P1", Title: "Deep Residual Learning", CitedBy: 2, Citations: 50},
		{PaperID: "P2", Title: "Vision Transformers", CitedBy: 1, Citations: 5},
	}, got)
}

func TestSummarizeCitations(t *testing.T) {
	var nodes []graph.Node
	for _, c := range []int{40, 0, 20, 10, 30} {
		nodes = append(nodes, graph.Node{Kind: graph.KindPaper, CitationCount: c})
	}
	nodes = append(nodes, graph.Node{Kind: graph.KindAuthor, PaperCount: 99})

	s := SummarizeCitations(nodes)
	assert.Equal(t, 5, s.Papers)
	assert.Equal(t, 100, s.Total)
	assert.InDelta(t, 20.0, s.Mean, 1e-9)
	assert.InDelta(t, 15.8114, s.StdDev, 1e-4)
	assert.Equal(t, 20.0, s.Median)
	assert.Equal(t, 40.0, s.P90)
	assert.Equal(t, 40.0, s.Max)

	assert.Equal(t, CitationSummary{}, SummarizeCitations(nil))

	single := SummarizeCitations(nodes[:1])
	assert.Equal(t, 40.0, single.Mean)
	assert.Zero(t, single.StdDev)
}

func TestCitationYearCorrelation(t *testing.T) {
	nodes := []graph.Node{
		{Kind: graph.KindPaper, Year: 2000, CitationCount: 1},
		{Kind: graph.KindPaper, Year: 2001, CitationCount: 2},
		{Kind: graph.KindPaper, Year: 2002, CitationCount: 3},
	}
	assert.InDelta(t, 1.0, CitationYearCorrelation(nodes), 1e-9)
	assert.Zero(t, CitationYearCorrelation(nodes[:1]))

	flat := []graph.Node{
		{Kind: graph.KindPaper, Year: 2000, CitationCount: 4},
		{Kind: graph.KindPaper, Year: 2001, CitationCount: 4},
	}
	assert.Zero(t, CitationYearCorrelation(flat))
}
