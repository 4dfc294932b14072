package filter

import (
	"log/slog"
	"strings"
	"unicode"

	"github.com/matsen/citegraph/internal/graph"
)

// TextMatcher resolves a free-text query to the set of matching paper ids.
type TextMatcher interface {
	Match(text string) (map[string]bool, error)
}

// Terms splits free text into lowercase search terms. Whitespace separates
// terms; '*' and '?' are dropped as separators too.
func Terms(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return unicode.IsSpace(r) || r == '*' || r == '?'
	})
}

// TextMatches reports whether every term occurs, case-insensitively, in the
// paper's title, abstract or one of its dataset tags.
func TextMatches(n graph.Node, terms []string) bool {
	fields := make([]string, 0, 2+len(n.Datasets))
	fields = append(fields, strings.ToLower(n.Title), strings.ToLower(n.Abstract))
	for _, d := range n.Datasets {
		fields = append(fields, strings.ToLower(d))
	}

	for _, term := range terms {
		found := false
		for _, f := range fields {
			if strings.Contains(f, term) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// textPredicate builds the free-text predicate. With no terms every paper
// passes. A matcher failure falls back to TextMatches.
func textPredicate(text string, matcher TextMatcher) func(graph.Node) bool {
	terms := Terms(text)
	if len(terms) == 0 {
		return func(graph.Node) bool { return true }
	}

	if matcher != nil {
		ids, err := matcher.Match(text)
		if err == nil {
			return func(n graph.Node) bool { return ids[n.ID] }
		}
		slog.Warn("text matcher failed, using substring match", "text", text, "error", err)
	}

	return func(n graph.Node) bool {
		return TextMatches(n, terms)
	}
}
