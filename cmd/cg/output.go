package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/matsen/citegraph/internal/graph"
	"github.com/mitchellh/go-wordwrap"
)

// Constants for human output formatting.
const (
	TitleMaxLen   = 70 // Title truncation in list output
	TextWrapWidth = 68 // Wrap width for abstracts and long lines
	MaxListed     = 3  // Authors shown before "et al."
)

// ErrorResponse is the JSON shape of command errors.
type ErrorResponse struct {
	Error string `json:"error"`
}

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// exitWithError outputs an error in the appropriate format (human or JSON) and exits.
func exitWithError(code int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	} else {
		outputJSON(ErrorResponse{Error: msg})
	}
	os.Exit(code)
}

// truncateString shortens s to max runes, marking the cut with "...".
func truncateString(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}

// wrapIndent wraps text to width and indents every line.
func wrapIndent(text string, width int, indent string) string {
	wrapped := wordwrap.WrapString(strings.Join(strings.Fields(text), " "), uint(width))
	lines := strings.Split(wrapped, "\n")
	for i, l := range lines {
		lines[i] = indent + l
	}
	return strings.Join(lines, "\n")
}

// printNodeSummary prints a one or two line summary of a node.
func printNodeSummary(n graph.Node) {
	switch n.Kind {
	case graph.KindAuthor:
		fmt.Printf("[author] %s  %s (%d papers)\n", n.ID, n.Name, n.PaperCount)
	default:
		fmt.Printf("[paper]  %s  %s\n", n.ID, truncateString(n.Title, TitleMaxLen))
		line := fmt.Sprintf("         %d, %d citations", n.Year, n.CitationCount)
		if len(n.Datasets) > 0 {
			line += ", datasets: " + strings.Join(n.Datasets, ", ")
		}
		fmt.Println(line)
	}
}

// printSubgraph prints the node and edge counts of sg followed by its nodes.
func printSubgraph(sg *graph.Subgraph) {
	papers, authors := 0, 0
	for _, n := range sg.Nodes {
		if n.IsPaper() {
			papers++
		} else {
			authors++
		}
	}
	fmt.Printf("%d papers, %d authors, %d edges\n\n", papers, authors, len(sg.Edges))
	for _, n := range sg.Nodes {
		printNodeSummary(n)
	}
}

// formatNames joins node labels, eliding after MaxListed.
func formatNames(nodes []graph.Node) string {
	names := make([]string, 0, MaxListed)
	for i, n := range nodes {
		if i == MaxListed {
			names = append(names, "et al.")
			break
		}
		names = append(names, n.Label())
	}
	return strings.Join(names, ", ")
}
