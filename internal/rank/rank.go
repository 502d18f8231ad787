// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package rank orders enriched papers by citation count and derives the
// per-year and per-month citation rates exported for each conference edition.
package rank

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/pdiddy/citation-ranker/pkg/types"
)

// Options controls rate derivation.
type Options struct {
	// Month is the target month (1-12). Zero omits the per-month rate.
	Month int

	// Now is the reference date. Zero means time.Now().
	Now time.Time
}

// Row is one ranked paper.
type Row struct {
	// Rank is the 1-based position after sorting.
	Rank int

	// ID is the paper's 1-based position in the proceedings list.
	ID int

	Paper  types.Paper
	Result types.EnrichmentResult

	PerYear  int
	PerMonth int
}

// Table is the ranked output for one conference edition.
type Table struct {
	Target types.Target
	Month  int
	Rows   []Row
}

// HasMonth reports whether the table carries the cit/month column.
func (t *Table) HasMonth() bool { return t.Month > 0 }

// Rank pairs papers with their results and sorts them by citations,
// descending. Equal counts keep their proceedings order.
func Rank(target types.Target, papers []types.Paper, results []types.EnrichmentResult, opts Options) (*Table, error) {
	if len(papers) != len(results) {
		return nil, fmt.Errorf("rank: %d papers but %d results", len(papers), len(results))
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	yearDiv := YearDivisor(target.Year, now)
	monthDiv := 0
	if opts.Month > 0 {
		monthDiv = MonthDivisor(target.Year, opts.Month, now)
	}

	rows := make([]Row, len(papers))
	for i := range papers {
		c := results[i].Citations
		rows[i] = Row{
			ID:      i + 1,
			Paper:   papers[i],
			Result:  results[i],
			PerYear: rate(c, yearDiv),
		}
		if monthDiv > 0 {
			rows[i].PerMonth = rate(c, monthDiv)
		}
	}

	slices.SortStableFunc(rows, func(a, b Row) int {
		return cmp.Compare(b.Result.Citations, a.Result.Citations)
	})
	for i := range rows {
		rows[i].Rank = i + 1
	}

	return &Table{Target: target, Month: opts.Month, Rows: rows}, nil
}

// YearDivisor is the number of calendar years since publication, counting
// the publication year, never below 1.
func YearDivisor(year int, now time.Time) int {
	return max(1, now.Year()-year+1)
}

// MonthDivisor is the number of months since publication, counting the
// publication month, never below 1.
func MonthDivisor(year, month int, now time.Time) int {
	return max(1, int(now.Month())-month+12*(now.Year()-year)+1)
}

// rate rounds half to even.
func rate(citations, divisor int) int {
	return int(math.RoundToEven(float64(citations) / float64(divisor)))
}
