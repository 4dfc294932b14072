package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/matsen/citegraph/internal/filter"
	"github.com/matsen/citegraph/internal/graph"
	"github.com/spf13/cobra"
)

var (
	filterYears      string
	filterCitations  string
	filterRelation   string
	filterDatasetTag string
	filterText       string
)

func init() {
	filterCmd.Flags().StringVar(&filterYears, "years", "", "Year range: 2019:2021, 2019:, :2021 or 2020")
	filterCmd.Flags().StringVar(&filterCitations, "citations", "", "Citation range: 10:100, 10: (no upper bound) or :100")
	filterCmd.Flags().StringVar(&filterRelation, "relation", "all", "Relation: all, AUTHORED or CITES")
	filterCmd.Flags().StringVar(&filterDatasetTag, "dataset-tag", "", "Keep papers with a dataset tag containing this text")
	filterCmd.Flags().StringVar(&filterText, "text", "", "Keep papers containing every word in the title, abstract or a dataset tag")
	rootCmd.AddCommand(filterCmd)
}

var filterCmd = &cobra.Command{
	Use:   "filter",
	Short: "Compute the filtered subgraph",
	Long: `Compute the subgraph selected by the given filters.

Unset filters select everything: the full year span, any citation count
and every relation. Authors are kept when they wrote a selected paper.

Examples:
  # Papers from 2019 through 2021
  cg filter --years 2019:2021

  # Highly cited papers, citation edges only
  cg filter --citations 100: --relation CITES

  # Papers that use ImageNet and mention transformers
  cg filter --dataset-tag imagenet --text transformer --human`,
	RunE: runFilter,
}

func runFilter(cmd *cobra.Command, args []string) error {
	ctrl, _, _ := mustController(context.Background())
	defer ctrl.Close()

	view, err := ctrl.ApplyFiltersWith(buildCriteria)
	if err != nil {
		ctrl.Close()
		exitWithError(ExitError, "%v", err)
	}

	if humanOutput {
		printSubgraph(view.Graph)
		return nil
	}
	return outputJSON(view)
}

// buildCriteria turns the filter flags into criteria, starting from the
// defaults for stats.
func buildCriteria(stats graph.Stats) (filter.Criteria, error) {
	c := filter.Defaults(stats)

	if filterYears != "" {
		min, max, err := parseBounds(filterYears)
		if err != nil {
			return c, fmt.Errorf("invalid --years: %w", err)
		}
		if min != nil {
			c.Years.Min = *min
		}
		if max != nil {
			c.Years.Max = *max
		}
	}

	if filterCitations != "" {
		min, max, err := parseBounds(filterCitations)
		if err != nil {
			return c, fmt.Errorf("invalid --citations: %w", err)
		}
		lo := 0
		if min != nil {
			lo = *min
		}
		if max == nil {
			c.Citations = filter.AtLeast(lo)
		} else {
			c.Citations = filter.NewCitationRange(lo, *max, stats.MaxCitationCount)
		}
	}

	rel, err := filter.ParseRelation(filterRelation)
	if err != nil {
		return c, err
	}
	c.Relation = rel
	c.Dataset = filterDatasetTag
	c.Text = filterText
	return c, nil
}

// parseBounds parses "a:b", "a:", ":b" or "a". Missing bounds are nil; a
// single value sets both.
func parseBounds(spec string) (min, max *int, err error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, nil, nil
	}

	if !strings.Contains(spec, ":") {
		v, err := strconv.Atoi(spec)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid value %q", spec)
		}
		return &v, &v, nil
	}

	parts := strings.SplitN(spec, ":", 2)
	if parts[0] != "" {
		v, err := strconv.Atoi(strings.TrimSpace(parts[0]))
		if err != nil {
			return nil, nil, fmt.Errorf("invalid start %q", parts[0])
		}
		min = &v
	}
	if parts[1] != "" {
		v, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			return nil, nil, fmt.Errorf("invalid end %q", parts[1])
		}
		max = &v
	}
	return min, max, nil
}
