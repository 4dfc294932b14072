package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/matsen/citegraph/internal/session"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(nodeCmd)
}

var nodeCmd = &cobra.Command{
	Use:   "node <id>",
	Short: "Show a paper or author with its neighbors",
	Long: `Show a paper or author with its direct neighbors.

Papers list their authors, references and citing papers. References that
are not in the dataset are listed by id. Authors list their papers.

Examples:
  cg node 649def34f8be52c8b66281af98ae884c09aef38b --human`,
	Args: cobra.ExactArgs(1),
	RunE: runNode,
}

func runNode(cmd *cobra.Command, args []string) error {
	ctrl, _, _ := mustController(context.Background())
	defer ctrl.Close()

	d, ok := ctrl.Detail(args[0])
	if !ok {
		ctrl.Close()
		exitWithError(ExitNotFound, "no such node: %s", args[0])
	}
	if humanOutput {
		printDetail(d)
		return nil
	}
	return outputJSON(d)
}

func printDetail(d session.Detail) {
	n := d.Node
	if n.IsAuthor() {
		fmt.Printf("%s\n", n.Name)
		fmt.Printf("ID: %s\n", n.ID)
		if len(n.Affiliations) > 0 {
			fmt.Printf("Affiliations: %s\n", strings.Join(n.Affiliations, "; "))
		}
		fmt.Printf("Papers (%d):\n", len(d.Papers))
		for _, p := range d.Papers {
			fmt.Printf("  %d  %s\n", p.Year, truncateString(p.Title, TitleMaxLen))
		}
		return
	}

	fmt.Printf("%s\n", wrapIndent(n.Title, TextWrapWidth, ""))
	fmt.Printf("ID: %s\n", n.ID)
	fmt.Printf("Year: %d  Citations: %d  References: %d\n", n.Year, n.CitationCount, n.ReferenceCount)
	if len(d.Authors) > 0 {
		fmt.Printf("Authors: %s\n", formatNames(d.Authors))
	}
	if len(n.Datasets) > 0 {
		fmt.Printf("Datasets: %s\n", strings.Join(n.Datasets, ", "))
	}
	if n.Abstract != "" {
		fmt.Printf("\nAbstract:\n%s\n", wrapIndent(n.Abstract, TextWrapWidth, "  "))
	}
	fmt.Printf("\nReferences in dataset: %d, unresolved: %d, cited by: %d\n",
		len(d.References), len(d.Unresolved), len(d.CitedBy))
}
