// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rank

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// Header returns the CSV column names for t.
func (t *Table) Header() []string {
	h := []string{"ID", "Author", "Title", "Citations", "Source", "cit/year"}
	if t.HasMonth() {
		h = append(h, "cit/month")
	}
	return append(h, "Note")
}

func (t *Table) record(r Row) []string {
	rec := []string{
		strconv.Itoa(r.ID),
		r.Paper.Authors,
		r.Paper.Title,
		strconv.Itoa(r.Result.Citations),
		r.Paper.SourceLink,
		strconv.Itoa(r.PerYear),
	}
	if t.HasMonth() {
		rec = append(rec, strconv.Itoa(r.PerMonth))
	}
	return append(rec, r.Result.Note)
}

// WriteCSV writes the header and one record per row in ranked order.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header()); err != nil {
		return err
	}
	for _, r := range t.Rows {
		if err := cw.Write(t.record(r)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Filename is the export file name, e.g. "CVPR2019.csv".
func (t *Table) Filename() string {
	return t.Target.String() + ".csv"
}

// Export writes t as CSV into dir and returns the file path. The file is
// written to a temporary name first and renamed into place.
func Export(dir string, t *Table) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating export directory: %w", err)
	}

	var buf bytes.Buffer
	if err := t.WriteCSV(&buf); err != nil {
		return "", fmt.Errorf("encoding %s: %w", t.Filename(), err)
	}

	path := filepath.Join(dir, t.Filename())
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("renaming %s: %w", tmp, err)
	}
	return path, nil
}

// Print renders the top limit rows as a terminal table. limit <= 0 prints
// every row.
func (t *Table) Print(w io.Writer, limit int) error {
	rows := t.Rows
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}

	header := []string{"#", "Citations", "cit/year"}
	if t.HasMonth() {
		header = append(header, "cit/month")
	}
	header = append(header, "Title", "Note")

	data := make([][]string, 0, len(rows))
	for _, r := range rows {
		line := []string{strconv.Itoa(r.Rank), strconv.Itoa(r.Result.Citations), strconv.Itoa(r.PerYear)}
		if t.HasMonth() {
			line = append(line, strconv.Itoa(r.PerMonth))
		}
		data = append(data, append(line, r.Paper.Title, r.Result.Note))
	}

	table := tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoWrap: tw.WrapNone},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
			Header: tw.CellConfig{
				Alignment: tw.CellAlignment{Global: tw.AlignLeft},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{Borders: tw.BorderNone}),
	)
	table.Header(header)
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}
