// Package graph holds the canonical citation graph: paper and author nodes,
// authorship and citation edges, and the aggregate statistics that drive the
// explorer's range controls.
package graph

// Kind distinguishes paper nodes from author nodes.
type Kind string

// Node kinds.
const (
	KindPaper  Kind = "paper"
	KindAuthor Kind = "author"
)

// Relation is the semantic kind of an edge.
type Relation string

// Edge relations.
const (
	RelationAuthored Relation = "AUTHORED"
	RelationCites    Relation = "CITES"
)

// Edge display types, derived 1:1 from Relation.
const (
	TypeAuthorship = "authorship"
	TypeCitation   = "citation"
)

// DisplayType returns the renderer-facing edge type for the relation.
func (r Relation) DisplayType() string {
	switch r {
	case RelationAuthored:
		return TypeAuthorship
	case RelationCites:
		return TypeCitation
	default:
		return ""
	}
}

// Node is a paper or an author. Paper-only and author-only fields are left
// zero on the other kind.
type Node struct {
	ID   string `json:"id"`
	Kind Kind   `json:"type"`

	// Paper fields
	Title          string   `json:"title,omitempty"`
	Year           int      `json:"year,omitempty"`
	Abstract       string   `json:"abstract,omitempty"`
	CitationCount  int      `json:"citationCount,omitempty"`
	ReferenceCount int      `json:"referenceCount,omitempty"`
	Datasets       []string `json:"datasets,omitempty"`

	// Author fields
	Name         string   `json:"name,omitempty"`
	PaperCount   int      `json:"paperCount,omitempty"`
	Affiliations []string `json:"affiliations,omitempty"`
}

// IsPaper reports whether n is a paper node.
func (n Node) IsPaper() bool {
	return n.Kind == KindPaper
}

// IsAuthor reports whether n is an author node.
func (n Node) IsAuthor() bool {
	return n.Kind == KindAuthor
}

// Label returns the primary label: the title of a paper or the name of an author.
func (n Node) Label() string {
	if n.Kind == KindAuthor {
		return n.Name
	}
	return n.Title
}

// Edge is a directed relation between two node ids. Endpoints are not
// guaranteed to resolve; dangling citation edges are kept in the model and
// dropped when subgraphs are built.
type Edge struct {
	Source   string   `json:"source"`
	Target   string   `json:"target"`
	Relation Relation `json:"relation"`
	Type     string   `json:"type"`
}

// NewEdge creates an edge with its display type derived from rel.
func NewEdge(source, target string, rel Relation) Edge {
	return Edge{
		Source:   source,
		Target:   target,
		Relation: rel,
		Type:     rel.DisplayType(),
	}
}

// ValidEndpoints reports whether source and target have the kinds the
// relation requires: AUTHORED is author to paper, CITES is paper to paper.
func ValidEndpoints(rel Relation, source, target Node) bool {
	switch rel {
	case RelationAuthored:
		return source.IsAuthor() && target.IsPaper()
	case RelationCites:
		return source.IsPaper() && target.IsPaper()
	default:
		return false
	}
}

// Stats are aggregates over every paper in the model, never a filtered view.
type Stats struct {
	MinYear          int `json:"minYear"`
	MaxYear          int `json:"maxYear"`
	MaxCitationCount int `json:"maxCitationCount"`
	Papers           int `json:"papers"`
	Authors          int `json:"authors"`
	Edges            int `json:"edges"`
}

// HasPapers reports whether the year range is meaningful.
func (s Stats) HasPapers() bool {
	return s.Papers > 0
}
