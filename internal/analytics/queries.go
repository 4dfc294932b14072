package analytics

import (
	"context"
	"fmt"
	"strings"
)

// DatasetUsage is the number of papers using a dataset.
type DatasetUsage struct {
	Dataset string `json:"dataset"`
	Papers  int    `json:"papers"`
}

// DatasetPair counts papers using both datasets. A sorts before B.
type DatasetPair struct {
	A      string `json:"a"`
	B      string `json:"b"`
	Papers int    `json:"papers"`
}

// YearUsage is the number of papers from Year using Dataset.
type YearUsage struct {
	Dataset string `json:"dataset"`
	Year    int    `json:"year"`
	Papers  int    `json:"papers"`
}

// AuthorUsage is the number of papers by an author using a dataset.
type AuthorUsage struct {
	AuthorID string `json:"authorId"`
	Author   string `json:"author"`
	Dataset  string `json:"dataset"`
	Papers   int    `json:"papers"`
}

// Collaboration counts papers using Dataset written by both authors.
// Each unordered pair is reported once.
type Collaboration struct {
	Dataset      string `json:"dataset"`
	Author1      string `json:"author1"`
	Author2      string `json:"author2"`
	SharedPapers int    `json:"sharedPapers"`
}

// TopDatasets returns the most used datasets, most papers first.
func (d *DB) TopDatasets(ctx context.Context, limit int) ([]DatasetUsage, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT dataset, COUNT(*) AS usage
		FROM paper_datasets
		GROUP BY dataset
		ORDER BY usage DESC, dataset
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying top datasets: %w", err)
	}
	defer rows.Close()

	out := []DatasetUsage{}
	for rows.Next() {
		var u DatasetUsage
		if err := rows.Scan(&u.Dataset, &u.Papers); err != nil {
			return nil, fmt.Errorf("scanning dataset usage: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// DatasetCooccurrence returns the dataset pairs most often used together.
func (d *DB) DatasetCooccurrence(ctx context.Context, limit int) ([]DatasetPair, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT d1.dataset, d2.dataset, COUNT(*) AS together
		FROM paper_datasets d1
		JOIN paper_datasets d2 ON d1.paper_id = d2.paper_id AND d1.dataset < d2.dataset
		GROUP BY d1.dataset, d2.dataset
		ORDER BY together DESC, d1.dataset, d2.dataset
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying dataset co-occurrence: %w", err)
	}
	defer rows.Close()

	out := []DatasetPair{}
	for rows.Next() {
		var p DatasetPair
		if err := rows.Scan(&p.A, &p.B, &p.Papers); err != nil {
			return nil, fmt.Errorf("scanning dataset pair: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// DatasetTrend returns per-year usage of the given datasets, ordered by
// year then dataset.
func (d *DB) DatasetTrend(ctx context.Context, datasets []string) ([]YearUsage, error) {
	if len(datasets) == 0 {
		return []YearUsage{}, nil
	}

	in, args := inClause(datasets)
	rows, err := d.db.QueryContext(ctx, `
		SELECT pd.dataset, p.year, COUNT(*)
		FROM paper_datasets pd
		JOIN papers p ON p.id = pd.paper_id
		WHERE pd.dataset IN (`+in+`)
		GROUP BY pd.dataset, p.year
		ORDER BY p.year, pd.dataset`, args...)
	if err != nil {
		return nil, fmt.Errorf("querying dataset trend: %w", err)
	}
	defer rows.Close()

	out := []YearUsage{}
	for rows.Next() {
		var u YearUsage
		if err := rows.Scan(&u.Dataset, &u.Year, &u.Papers); err != nil {
			return nil, fmt.Errorf("scanning year usage: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// TopAuthorsForDatasets returns the authors with the most papers using any
// of the given datasets, counted per dataset.
func (d *DB) TopAuthorsForDatasets(ctx context.Context, datasets []string, limit int) ([]AuthorUsage, error) {
	if len(datasets) == 0 {
		return []AuthorUsage{}, nil
	}

	in, args := inClause(datasets)
	args = append(args, limit)
	rows, err := d.db.QueryContext(ctx, `
		SELECT a.id, a.name, pd.dataset, COUNT(*) AS papers
		FROM authors a
		JOIN authorship au ON au.author_id = a.id
		JOIN paper_datasets pd ON pd.paper_id = au.paper_id
		WHERE pd.dataset IN (`+in+`)
		GROUP BY a.id, pd.dataset
		ORDER BY papers DESC, a.name, pd.dataset
		LIMIT ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("querying authors for datasets: %w", err)
	}
	defer rows.Close()

	out := []AuthorUsage{}
	for rows.Next() {
		var u AuthorUsage
		if err := rows.Scan(&u.AuthorID, &u.Author, &u.Dataset, &u.Papers); err != nil {
			return nil, fmt.Errorf("scanning author usage: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// Collaborations returns the author pairs sharing the most papers that use
// one of the given datasets.
func (d *DB) Collaborations(ctx context.Context, datasets []string, limit int) ([]Collaboration, error) {
	if len(datasets) == 0 {
		return []Collaboration{}, nil
	}

	in, args := inClause(datasets)
	args = append(args, limit)
	rows, err := d.db.QueryContext(ctx, `
		SELECT pd.dataset, a1.name, a2.name, COUNT(*) AS shared
		FROM paper_datasets pd
		JOIN authorship x1 ON x1.paper_id = pd.paper_id
		JOIN authorship x2 ON x2.paper_id = pd.paper_id AND x1.author_id < x2.author_id
		JOIN authors a1 ON a1.id = x1.author_id
		JOIN authors a2 ON a2.id = x2.author_id
		WHERE pd.dataset IN (`+in+`)
		GROUP BY pd.dataset, x1.author_id, x2.author_id
		ORDER BY shared DESC, pd.dataset, a1.name, a2.name
		LIMIT ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("querying collaborations: %w", err)
	}
	defer rows.Close()

	out := []Collaboration{}
	for rows.Next() {
		var c Collaboration
		if err := rows.Scan(&c.Dataset, &c.Author1, &c.Author2, &c.SharedPapers); err != nil {
			return nil, fmt.Errorf("scanning collaboration: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CitedPaper is a paper with the number of citing papers in the dataset.
type CitedPaper struct {
	PaperID   string `json:"paperId"`
	Title     string `json:"title"`
	CitedBy   int    `json:"citedBy"`
	Citations int    `json:"citationCount"`
}

// MostCited returns the papers cited most often by other papers of the
// dataset. This can differ from the citationCount reported by the source.
func (d *DB) MostCited(ctx context.Context, limit int) ([]CitedPaper, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT p.id, p.title, COUNT(*) AS cited_by, p.citation_count
		FROM citations c
		JOIN papers p ON p.id = c.target_id
		GROUP BY p.id
		ORDER BY cited_by DESC, p.citation_count DESC, p.id
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying most cited: %w", err)
	}
	defer rows.Close()

	out := []CitedPaper{}
	for rows.Next() {
		var c CitedPaper
		if err := rows.Scan(&c.PaperID, &c.Title, &c.CitedBy, &c.Citations); err != nil {
			return nil, fmt.Errorf("scanning cited paper: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// inClause returns "?, ?, ..." and the matching arguments.
func inClause(values []string) (string, []any) {
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	return strings.TrimSuffix(strings.Repeat("?, ", len(values)), ", "), args
}
