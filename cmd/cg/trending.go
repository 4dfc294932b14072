package main

import (
	"context"
	"fmt"
	"time"

	"github.com/matsen/citegraph/internal/graph"
	"github.com/matsen/citegraph/internal/search"
	"github.com/spf13/cobra"
)

var (
	trendingCount int
	trendingYear  int
)

func init() {
	trendingCmd.Flags().IntVarP(&trendingCount, "count", "n", 10, "Number of papers and authors to list")
	trendingCmd.Flags().IntVar(&trendingYear, "year", 0, "Reference year for citation velocity (default: current year)")
	rootCmd.AddCommand(trendingCmd)
}

var trendingCmd = &cobra.Command{
	Use:   "trending",
	Short: "List trending papers and prolific authors",
	Long: `List papers by citations per year since publication, and the authors
with the most papers in the dataset.

Examples:
  cg trending -n 5 --human
  cg trending --year 2022`,
	Args: cobra.NoArgs,
	RunE: runTrending,
}

// TrendingResponse is the JSON shape of trending results.
type TrendingResponse struct {
	Year    int          `json:"year"`
	Papers  []graph.Node `json:"papers"`
	Authors []graph.Node `json:"authors"`
}

func runTrending(cmd *cobra.Command, args []string) error {
	if trendingCount < 1 {
		exitWithError(ExitError, "--count must be at least 1")
	}
	year := trendingYear
	if year == 0 {
		year = time.Now().Year()
	}

	settings := mustSettings()
	m := mustLoadModel(context.Background(), settings, newLogger(settings))
	nodes := m.Nodes()

	resp := TrendingResponse{
		Year:    year,
		Papers:  search.Trending(nodes, year, trendingCount),
		Authors: search.TopAuthors(nodes, trendingCount),
	}
	if !humanOutput {
		return outputJSON(resp)
	}

	fmt.Printf("Trending papers (as of %d):\n", year)
	for i, p := range resp.Papers {
		fmt.Printf("%2d. %s (%d, %d citations)\n", i+1, truncateString(p.Title, TitleMaxLen), p.Year, p.CitationCount)
	}
	fmt.Println("\nTop authors:")
	for i, a := range resp.Authors {
		fmt.Printf("%2d. %s (%d papers)\n", i+1, a.Name, a.PaperCount)
	}
	return nil
}
