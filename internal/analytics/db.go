// Package analytics answers aggregate questions about the loaded graph:
// dataset popularity, dataset trends and collaboration between authors. The
// model is mirrored into an in-memory SQLite database for the lifetime of
// the session and never written to disk.
package analytics

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/matsen/citegraph/internal/graph"
	_ "modernc.org/sqlite"
)

// DB is an in-memory SQL mirror of a graph model.
type DB struct {
	db *sql.DB
}

// Open creates an in-memory database and loads m into it.
func Open(ctx context.Context, m *graph.Model) (*DB, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("opening analytics database: %w", err)
	}

	// Each connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)

	if err := createSchema(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	d := &DB{db: db}
	if err := d.load(ctx, m); err != nil {
		db.Close()
		return nil, err
	}
	return d, nil
}

// Close closes the database.
func (d *DB) Close() error {
	return d.db.Close()
}

func createSchema(ctx context.Context, db *sql.DB) error {
	schema := `
		CREATE TABLE papers (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			year INTEGER NOT NULL,
			citation_count INTEGER NOT NULL
		);

		CREATE TABLE authors (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL
		);

		-- One row per AUTHORED edge
		CREATE TABLE authorship (
			author_id TEXT NOT NULL,
			paper_id TEXT NOT NULL
		);
		CREATE INDEX idx_authorship_paper ON authorship(paper_id);

		CREATE TABLE paper_datasets (
			paper_id TEXT NOT NULL,
			dataset TEXT NOT NULL,
			PRIMARY KEY (paper_id, dataset)
		);
		CREATE INDEX idx_paper_datasets_dataset ON paper_datasets(dataset);

		-- Resolved CITES edges only
		CREATE TABLE citations (
			source_id TEXT NOT NULL,
			target_id TEXT NOT NULL
		);
	`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// load inserts every node and resolved edge of m in one transaction.
func (d *DB) load(ctx context.Context, m *graph.Model) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning load: %w", err)
	}
	defer tx.Rollback()

	stmts := map[string]string{
		"paper":      `INSERT INTO papers (id, title, year, citation_count) VALUES (?, ?, ?, ?)`,
		"author":     `INSERT INTO authors (id, name) VALUES (?, ?)`,
		"authorship": `INSERT INTO authorship (author_id, paper_id) VALUES (?, ?)`,
		"dataset":    `INSERT OR IGNORE INTO paper_datasets (paper_id, dataset) VALUES (?, ?)`,
		"citation":   `INSERT INTO citations (source_id, target_id) VALUES (?, ?)`,
	}
	prepared := make(map[string]*sql.Stmt, len(stmts))
	for name, q := range stmts {
		stmt, err := tx.PrepareContext(ctx, q)
		if err != nil {
			return fmt.Errorf("preparing %s insert: %w", name, err)
		}
		defer stmt.Close()
		prepared[name] = stmt
	}

	for _, n := range m.Nodes() {
		switch n.Kind {
		case graph.KindPaper:
			if _, err := prepared["paper"].ExecContext(ctx, n.ID, n.Title, n.Year, n.CitationCount); err != nil {
				return fmt.Errorf("inserting paper %s: %w", n.ID, err)
			}
			for _, ds := range n.Datasets {
				if _, err := prepared["dataset"].ExecContext(ctx, n.ID, ds); err != nil {
					return fmt.Errorf("inserting dataset %q for %s: %w", ds, n.ID, err)
				}
			}
		case graph.KindAuthor:
			if _, err := prepared["author"].ExecContext(ctx, n.ID, n.Name); err != nil {
				return fmt.Errorf("inserting author %s: %w", n.ID, err)
			}
		}
	}

	for _, e := range m.Full().Edges {
		var err error
		switch e.Relation {
		case graph.RelationAuthored:
			_, err = prepared["authorship"].ExecContext(ctx, e.Source, e.Target)
		case graph.RelationCites:
			_, err = prepared["citation"].ExecContext(ctx, e.Source, e.Target)
		}
		if err != nil {
			return fmt.Errorf("inserting edge %s->%s: %w", e.Source, e.Target, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing load: %w", err)
	}
	return nil
}
