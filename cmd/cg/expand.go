package main

import (
	"context"

	"github.com/matsen/citegraph/internal/session"
	"github.com/spf13/cobra"
)

func init() {
	expandCmd.AddCommand(expandPaperCmd)
	expandCmd.AddCommand(expandAuthorCmd)
	rootCmd.AddCommand(expandCmd)
}

var expandCmd = &cobra.Command{
	Use:   "expand",
	Short: "Show the one-hop neighborhood of a paper or author",
	Long: `Show the one-hop neighborhood of a paper or author.

A paper expands to the papers it cites, the papers citing it and its
authors. An author expands to their papers and their co-authors.

Examples:
  cg expand paper 649def34f8be52c8b66281af98ae884c09aef38b
  cg expand author 1741101 --human`,
}

var expandPaperCmd = &cobra.Command{
	Use:   "paper <id>",
	Short: "Expand around a paper",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExpand(args[0], (*session.Controller).ExpandFromPaper)
	},
}

var expandAuthorCmd = &cobra.Command{
	Use:   "author <id>",
	Short: "Expand around an author",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExpand(args[0], (*session.Controller).ExpandFromAuthor)
	},
}

func runExpand(id string, fn func(*session.Controller, string) (session.View, bool)) error {
	ctrl, _, _ := mustController(context.Background())
	defer ctrl.Close()

	view, ok := fn(ctrl, id)
	if !ok {
		ctrl.Close()
		exitWithError(ExitNotFound, "no such node: %s", id)
	}
	if humanOutput {
		printSubgraph(view.Graph)
		return nil
	}
	return outputJSON(view)
}
