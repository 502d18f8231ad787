// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package archive keeps every exported ranking in a SQLite database so past
// conference editions can be queried and re-exported without re-running the
// enrichment.
package archive

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/citation-ranker/internal/rank"
)

// DefaultPath is the archive location relative to the working directory.
const DefaultPath = "output/citations.db"

const defaultMaxResults = 50

// Store manages the rankings database.
type Store struct {
	db         *sql.DB
	path       string
	maxResults int
}

// NewStore opens or creates the database at path and bootstraps the schema.
func NewStore(path string) (*Store, error) {
	if path == "" {
		path = DefaultPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating archive directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, path: path, maxResults: defaultMaxResults}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			conference TEXT NOT NULL,
			year INTEGER NOT NULL,
			month INTEGER,
			exported_at TEXT NOT NULL,
			paper_count INTEGER NOT NULL,
			PRIMARY KEY (conference, year)
		)`,
		`CREATE TABLE IF NOT EXISTS rankings (
			conference TEXT NOT NULL,
			year INTEGER NOT NULL,
			paper_id INTEGER NOT NULL,
			rank INTEGER NOT NULL,
			author TEXT,
			title TEXT NOT NULL,
			citations INTEGER NOT NULL,
			source TEXT,
			note TEXT,
			cit_year INTEGER NOT NULL,
			cit_month INTEGER,
			PRIMARY KEY (conference, year, paper_id),
			FOREIGN KEY (conference, year) REFERENCES runs(conference, year) ON DELETE CASCADE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_rankings_citations ON rankings(citations)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record replaces the archived ranking for the table's conference edition.
func (s *Store) Record(ctx context.Context, t *rank.Table, exportedAt time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	conf, year := t.Target.Conference, t.Target.Year

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM rankings WHERE conference = ? AND year = ?`, conf, year,
	); err != nil {
		return fmt.Errorf("deleting previous ranking: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (conference, year, month, exported_at, paper_count)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(conference, year) DO UPDATE SET
			month=excluded.month, exported_at=excluded.exported_at,
			paper_count=excluded.paper_count`,
		conf, year, nullInt(t.Month), exportedAt.UTC().Format(time.RFC3339), len(t.Rows),
	)
	if err != nil {
		return fmt.Errorf("upserting run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO rankings (conference, year, paper_id, rank, author, title,
			citations, source, note, cit_year, cit_month)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range t.Rows {
		var month any
		if t.HasMonth() {
			month = r.PerMonth
		}
		_, err := stmt.ExecContext(ctx,
			conf, year, r.ID, r.Rank, r.Paper.Authors, r.Paper.Title,
			r.Result.Citations, r.Paper.SourceLink, r.Result.Note, r.PerYear, month,
		)
		if err != nil {
			return fmt.Errorf("inserting paper %d: %w", r.ID, err)
		}
	}

	return tx.Commit()
}

// Run describes one archived export.
type Run struct {
	Conference string    `json:"conference" yaml:"conference"`
	Year       int       `json:"year" yaml:"year"`
	Month      int       `json:"month,omitempty" yaml:"month,omitempty"`
	ExportedAt time.Time `json:"exported_at" yaml:"exported_at"`
	PaperCount int       `json:"paper_count" yaml:"paper_count"`
}

// Runs lists archived exports, newest edition first.
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT conference, year, month, exported_at, paper_count
		 FROM runs ORDER BY year DESC, conference`)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r        Run
			month    sql.NullInt64
			exported string
		)
		if err := rows.Scan(&r.Conference, &r.Year, &month, &exported, &r.PaperCount); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.Month = int(month.Int64)
		if r.ExportedAt, err = time.Parse(time.RFC3339, exported); err != nil {
			return nil, fmt.Errorf("parsing export time %q: %w", exported, err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func nullInt(v int) any {
	if v == 0 {
		return nil
	}
	return v
}
