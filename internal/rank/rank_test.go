// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rank

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/citation-ranker/pkg/types"
)

var (
	cvpr2018 = types.Target{Conference: "CVPR", Year: 2018}
	jun2024  = time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)
)

func papers(titles ...string) []types.Paper {
	out := make([]types.Paper, len(titles))
	for i, title := range titles {
		out[i] = types.Paper{Authors: "A. Author", Title: title, SourceLink: "https://venue.org/" + title}
	}
	return out
}

func results(counts ...int) []types.EnrichmentResult {
	out := make([]types.EnrichmentResult, len(counts))
	for i, c := range counts {
		out[i] = types.EnrichmentResult{Citations: c}
	}
	return out
}

func TestRankStableDescending(t *testing.T) {
	table, err := Rank(cvpr2018, papers("a", "b", "c", "d"), results(10, 50, 10, 0), Options{Now: jun2024})
	require.NoError(t, err)

	var counts, ids []int
	for _, r := range table.Rows {
		counts = append(counts, r.Result.Citations)
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []int{50, 10, 10, 0}, counts)
	assert.Equal(t, []int{2, 1, 3, 4}, ids, "equal counts keep proceedings order")
	for i, r := range table.Rows {
		assert.Equal(t, i+1, r.Rank)
	}
}

func TestRankPerYear(t *testing.T) {
	table, err := Rank(cvpr2018, papers("a", "b", "c"), results(70, 0, 35), Options{Now: jun2024})
	require.NoError(t, err)

	perYear := map[string]int{}
	for _, r := range table.Rows {
		perYear[r.Paper.Title] = r.PerYear
	}
	assert.Equal(t, map[string]int{"a": 10, "b": 0, "c": 5}, perYear)
	assert.False(t, table.HasMonth())
}

func TestRankPerMonth(t *testing.T) {
	// June 2024 back to June 2018: 72 months plus the publication month.
	table, err := Rank(cvpr2018, papers("a"), results(146), Options{Month: 6, Now: jun2024})
	require.NoError(t, err)
	assert.True(t, table.HasMonth())
	assert.Equal(t, 2, table.Rows[0].PerMonth)
}

func TestRankLengthMismatch(t *testing.T) {
	_, err := Rank(cvpr2018, papers("a", "b"), results(1), Options{})
	assert.Error(t, err)
}

func TestDivisors(t *testing.T) {
	tests := []struct {
		name        string
		year, month int
		now         time.Time
		wantYear    int
		wantMonth   int
	}{
		{"six years back", 2018, 6, jun2024, 7, 73},
		{"same month", 2024, 6, jun2024, 1, 1},
		{"future floors at one", 2026, 12, jun2024, 1, 1},
		{"across new year", 2023, 12, time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), 2, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantYear, YearDivisor(tt.year, tt.now))
			assert.Equal(t, tt.wantMonth, MonthDivisor(tt.year, tt.month, tt.now))
		})
	}
}

func TestRateRoundsHalfToEven(t *testing.T) {
	assert.Equal(t, 2, rate(5, 2))
	assert.Equal(t, 4, rate(7, 2))
	assert.Equal(t, 3, rate(10, 3))
	assert.Equal(t, 0, rate(0, 7))
}

func TestWriteCSV(t *testing.T) {
	res := results(3, 9)
	res[0].Note = types.NoteNoSearchResults
	table, err := Rank(cvpr2018, papers("first, with comma", "second"), res, Options{Month: 6, Now: jun2024})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, table.WriteCSV(&buf))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"ID", "Author", "Title", "Citations", "Source", "cit/year", "cit/month", "Note"}, records[0])
	assert.Equal(t, []string{"2", "A. Author", "second", "9", "https://venue.org/second", "1", "0", ""}, records[1])
	assert.Equal(t, "first, with comma", records[2][2])
	assert.Equal(t, types.NoteNoSearchResults, records[2][7])
}

func TestHeaderWithoutMonth(t *testing.T) {
	table := &Table{Target: cvpr2018}
	assert.Equal(t, []string{"ID", "Author", "Title", "Citations", "Source", "cit/year", "Note"}, table.Header())
}

func TestExport(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	table, err := Rank(types.Target{Conference: "ICCV", Year: 2019}, papers("논문"), results(4), Options{Now: jun2024})
	require.NoError(t, err)

	path, err := Export(dir, table)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "ICCV2019.csv"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "논문")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary file left behind")
}

func TestPrintLimit(t *testing.T) {
	table, err := Rank(cvpr2018, papers("alpha", "beta", "gamma"), results(1, 3, 2), Options{Now: jun2024})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, table.Print(&buf, 2))
	out := buf.String()
	assert.Contains(t, out, "beta")
	assert.Contains(t, out, "gamma")
	assert.False(t, strings.Contains(out, "alpha"))
}
