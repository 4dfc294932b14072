package main

import (
	"context"
	"fmt"

	"github.com/matsen/citegraph/internal/graph"
	"github.com/matsen/citegraph/internal/search"
	"github.com/spf13/cobra"
)

var searchScope string

func init() {
	searchCmd.Flags().StringVar(&searchScope, "scope", "all", "Search scope: all, papers, authors or datasets")
	rootCmd.AddCommand(searchCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search papers, authors and dataset tags",
	Long: `Search the whole graph by title, author name or dataset tag.

Exact matches rank first, then prefix matches, then substring matches;
ties go to more cited papers and more prolific authors. Queries shorter
than two characters return nothing.

Examples:
  cg search "graph neural"
  cg search --scope authors smith --human`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

// SearchResponse is the JSON shape of search results.
type SearchResponse struct {
	Query   string       `json:"query"`
	Scope   search.Scope `json:"scope"`
	Results []graph.Node `json:"results"`
}

func runSearch(cmd *cobra.Command, args []string) error {
	scope, err := search.ParseScope(searchScope)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	ctrl, _, _ := mustController(context.Background())
	defer ctrl.Close()

	results := ctrl.Search(args[0], scope)
	if humanOutput {
		if len(results) == 0 {
			fmt.Println("No results.")
			return nil
		}
		for _, n := range results {
			printNodeSummary(n)
		}
		return nil
	}
	return outputJSON(SearchResponse{Query: args[0], Scope: scope, Results: results})
}
