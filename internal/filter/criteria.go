// Package filter computes the visible subgraph for a set of range, relation,
// dataset and text criteria.
package filter

import (
	"fmt"
	"strings"

	"github.com/matsen/citegraph/internal/graph"
)

// Range is an inclusive integer interval. A range with Min > Max contains
// nothing.
type Range struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Contains reports whether v lies in the range.
func (r Range) Contains(v int) bool {
	return v >= r.Min && v <= r.Max
}

// CitationRange is an inclusive citation-count interval whose upper bound
// may be open. An open range has no upper bound, so papers above the current
// data maximum are never silently excluded.
type CitationRange struct {
	Min  int  `json:"min"`
	Max  int  `json:"max"`
	Open bool `json:"open,omitempty"`
}

// NewCitationRange builds a range from slider values. A max at or above
// ceiling (the current maxCitationCount) is treated as unbounded, unless
// min > max, which stays an empty selection.
func NewCitationRange(min, max, ceiling int) CitationRange {
	return CitationRange{
		Min:  min,
		Max:  max,
		Open: max >= ceiling && min <= max,
	}
}

// AtLeast returns the open range [min, ∞).
func AtLeast(min int) CitationRange {
	return CitationRange{Min: min, Open: true}
}

// Contains reports whether v lies in the range.
func (r CitationRange) Contains(v int) bool {
	if v < r.Min {
		return false
	}
	return r.Open || v <= r.Max
}

func (r CitationRange) String() string {
	if r.Open {
		return fmt.Sprintf("%d+", r.Min)
	}
	return fmt.Sprintf("%d-%d", r.Min, r.Max)
}

// Relation restricts which edge kinds are kept.
type Relation string

// Relation filters. The values match the edge display types.
const (
	RelationAll      Relation = "all"
	RelationAuthored Relation = graph.TypeAuthorship
	RelationCites    Relation = graph.TypeCitation
)

// ValidRelations lists the accepted relation filter names.
var ValidRelations = []Relation{RelationAll, RelationAuthored, RelationCites}

// ParseRelation accepts the display names plus a few aliases
// ("authored", "cites") and is case-insensitive. The empty string means all.
func ParseRelation(s string) (Relation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return RelationAll, nil
	case "authorship", "authored", "authored-only":
		return RelationAuthored, nil
	case "citation", "cites", "cites-only":
		return RelationCites, nil
	}
	return "", fmt.Errorf("invalid relation %q (valid: %v)", s, ValidRelations)
}

// Matches reports whether the edge passes the relation filter.
func (r Relation) Matches(e graph.Edge) bool {
	switch r {
	case "", RelationAll:
		return true
	default:
		return e.Type == string(r)
	}
}

// Criteria is the full set of filter inputs.
type Criteria struct {
	Years     Range         `json:"years"`
	Citations CitationRange `json:"citations"`
	Relation  Relation      `json:"relation"`
	Dataset   string        `json:"dataset,omitempty"` // case-insensitive substring of any dataset tag
	Text      string        `json:"text,omitempty"`    // every term in title, abstract or a dataset tag
}

// Defaults returns criteria that select the whole graph: the full year span,
// citations from zero with no upper bound, and every relation.
func Defaults(stats graph.Stats) Criteria {
	return Criteria{
		Years:     Range{Min: stats.MinYear, Max: stats.MaxYear},
		Citations: AtLeast(0),
		Relation:  RelationAll,
	}
}
