package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/matsen/citegraph/internal/analytics"
	"github.com/matsen/citegraph/internal/graph"
	"github.com/spf13/cobra"
)

var (
	statsLimit    int
	statsDatasets string
)

func init() {
	statsCmd.Flags().IntVarP(&statsLimit, "limit", "n", 10, "Rows per analytics table")
	statsCmd.Flags().StringVar(&statsDatasets, "datasets", "", "Comma-separated datasets to focus on (default: top 5)")
	rootCmd.AddCommand(statsCmd)
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize the graph and its dataset usage",
	Long: `Summarize the whole graph: year span, node and edge counts, the
citation distribution, and dataset usage analytics (top datasets,
co-occurrence, usage over time, top authors, collaborations and the
most cited papers within the dataset).

Examples:
  cg stats --human
  cg stats --datasets ImageNet,COCO -n 20`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

// StatsResponse is the JSON shape of the stats command.
type StatsResponse struct {
	Graph          graph.Stats               `json:"graph"`
	Citations      analytics.CitationSummary `json:"citations"`
	Correlation    float64                   `json:"citationYearCorrelation"`
	Datasets       []string                  `json:"datasets"`
	Top            []analytics.DatasetUsage  `json:"top"`
	Cooccurrence   []analytics.DatasetPair   `json:"cooccurrence"`
	Trend          []analytics.YearUsage     `json:"trend"`
	Authors        []analytics.AuthorUsage   `json:"authors"`
	Collaborations []analytics.Collaboration `json:"collaborations"`
	MostCited      []analytics.CitedPaper    `json:"mostCited"`
}

// focusDatasets is how many of the top datasets the per-dataset tables use
// when --datasets is not given.
const focusDatasets = 5

func runStats(cmd *cobra.Command, args []string) error {
	if statsLimit < 1 {
		exitWithError(ExitError, "--limit must be at least 1")
	}

	ctx := context.Background()
	settings := mustSettings()
	m := mustLoadModel(ctx, settings, newLogger(settings))

	db, err := analytics.Open(ctx, m)
	if err != nil {
		exitWithError(ExitError, "building analytics: %v", err)
	}
	defer db.Close()

	resp, err := collectStats(ctx, m, db)
	if err != nil {
		return err
	}
	if !humanOutput {
		return outputJSON(resp)
	}
	printStats(resp)
	return nil
}

func collectStats(ctx context.Context, m *graph.Model, db *analytics.DB) (StatsResponse, error) {
	nodes := m.Nodes()
	resp := StatsResponse{
		Graph:       m.Stats(),
		Citations:   analytics.SummarizeCitations(nodes),
		Correlation: analytics.CitationYearCorrelation(nodes),
	}

	var err error
	if resp.Top, err = db.TopDatasets(ctx, statsLimit); err != nil {
		return resp, err
	}
	resp.Datasets = splitList(statsDatasets)
	if len(resp.Datasets) == 0 {
		for i := 0; i < len(resp.Top) && i < focusDatasets; i++ {
			resp.Datasets = append(resp.Datasets, resp.Top[i].Dataset)
		}
	}
	if resp.Datasets == nil {
		resp.Datasets = []string{}
	}
	if resp.Cooccurrence, err = db.DatasetCooccurrence(ctx, statsLimit); err != nil {
		return resp, err
	}
	if resp.Trend, err = db.DatasetTrend(ctx, resp.Datasets); err != nil {
		return resp, err
	}
	if resp.Authors, err = db.TopAuthorsForDatasets(ctx, resp.Datasets, statsLimit); err != nil {
		return resp, err
	}
	if resp.Collaborations, err = db.Collaborations(ctx, resp.Datasets, statsLimit); err != nil {
		return resp, err
	}
	if resp.MostCited, err = db.MostCited(ctx, statsLimit); err != nil {
		return resp, err
	}
	return resp, nil
}

// splitList splits a comma-separated flag value, dropping blanks.
func splitList(raw string) []string {
	var out []string
	for _, v := range strings.Split(raw, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func printStats(s StatsResponse) {
	g := s.Graph
	fmt.Printf("Papers: %d  Authors: %d  Edges: %d\n", g.Papers, g.Authors, g.Edges)
	if g.HasPapers() {
		fmt.Printf("Years: %d-%d  Max citations: %d\n", g.MinYear, g.MaxYear, g.MaxCitationCount)
	}
	c := s.Citations
	fmt.Printf("Citations: total %d, mean %.1f, sd %.1f, median %.0f, p90 %.0f\n",
		c.Total, c.Mean, c.StdDev, c.Median, c.P90)
	fmt.Printf("Citation/year correlation: %.2f\n", s.Correlation)

	fmt.Println("\nTop datasets:")
	for _, d := range s.Top {
		fmt.Printf("  %-30s %d\n", truncateString(d.Dataset, 30), d.Papers)
	}
	if len(s.Cooccurrence) > 0 {
		fmt.Println("\nDatasets used together:")
		for _, p := range s.Cooccurrence {
			fmt.Printf("  %s + %s: %d\n", p.A, p.B, p.Papers)
		}
	}
	if len(s.Authors) > 0 {
		fmt.Println("\nTop authors for focus datasets:")
		for _, a := range s.Authors {
			fmt.Printf("  %s (%s): %d\n", a.Author, a.Dataset, a.Papers)
		}
	}
	if len(s.Collaborations) > 0 {
		fmt.Println("\nCollaborations:")
		for _, c := range s.Collaborations {
			fmt.Printf("  %s & %s (%s): %d\n", c.Author1, c.Author2, c.Dataset, c.SharedPapers)
		}
	}
	if len(s.MostCited) > 0 {
		fmt.Println("\nMost cited within the dataset:")
		for _, p := range s.MostCited {
			fmt.Printf("  %3d  %s\n", p.CitedBy, truncateString(p.Title, TitleMaxLen))
		}
	}
}
