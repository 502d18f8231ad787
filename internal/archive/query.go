// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package archive

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// QueryOptions filters archived rankings.
type QueryOptions struct {
	// Conference matches exactly, case-insensitively.
	Conference string

	// Year matches exactly when non-zero.
	Year int

	// Title matches as a case-insensitive substring.
	Title string

	// MinCitations drops papers below the threshold.
	MinCitations int

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// Entry is one archived paper ranking.
type Entry struct {
	Conference string `json:"conference" yaml:"conference"`
	Year       int    `json:"year" yaml:"year"`
	PaperID    int    `json:"paper_id" yaml:"paper_id"`
	Rank       int    `json:"rank" yaml:"rank"`
	Author     string `json:"author" yaml:"author"`
	Title      string `json:"title" yaml:"title"`
	Citations  int    `json:"citations" yaml:"citations"`
	Source     string `json:"source" yaml:"source"`
	Note       string `json:"note,omitempty" yaml:"note,omitempty"`
	CitYear    int    `json:"cit_year" yaml:"cit_year"`
	CitMonth   *int   `json:"cit_month,omitempty" yaml:"cit_month,omitempty"`
}

// Query returns archived rankings ordered by edition, then rank.
func (s *Store) Query(ctx context.Context, opts QueryOptions) ([]Entry, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb   strings.Builder
		args []any
	)

	qb.WriteString(
		`SELECT conference, year, paper_id, rank, author, title, citations,
			source, note, cit_year, cit_month
		FROM rankings
		WHERE citations >= ?`)
	args = append(args, opts.MinCitations)

	if opts.Conference != "" {
		qb.WriteString(` AND conference = ? COLLATE NOCASE`)
		args = append(args, opts.Conference)
	}
	if opts.Year != 0 {
		qb.WriteString(` AND year = ?`)
		args = append(args, opts.Year)
	}
	if opts.Title != "" {
		qb.WriteString(` AND instr(lower(title), lower(?)) > 0`)
		args = append(args, opts.Title)
	}

	qb.WriteString(` ORDER BY year DESC, conference, rank LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying archive: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e      Entry
			author sql.NullString
			source sql.NullString
			note   sql.NullString
			month  sql.NullInt64
		)
		if err := rows.Scan(
			&e.Conference, &e.Year, &e.PaperID, &e.Rank, &author, &e.Title,
			&e.Citations, &source, &note, &e.CitYear, &month,
		); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		e.Author = author.String
		e.Source = source.String
		e.Note = note.String
		if month.Valid {
			m := int(month.Int64)
			e.CitMonth = &m
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}
