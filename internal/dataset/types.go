// Package dataset reads raw paper records from files and HTTP endpoints.
package dataset

// Paper is one raw record of the input dataset, shaped like a Semantic
// Scholar paper export.
type Paper struct {
	PaperID        string   `json:"paperId"`
	Title          string   `json:"title"`
	Year           int      `json:"year"`
	Abstract       string   `json:"abstract,omitempty"`
	CitationCount  int      `json:"citationCount"`
	ReferenceCount int      `json:"referenceCount"`
	Datasets       []string `json:"datasets,omitempty"`
	Authors        []Author `json:"authors"`
	References     []string `json:"references,omitempty"`
}

// Author is an author entry embedded in a raw paper record.
type Author struct {
	AuthorID     string   `json:"authorId"`
	Name         string   `json:"name"`
	Affiliations []string `json:"affiliations,omitempty"`
}
