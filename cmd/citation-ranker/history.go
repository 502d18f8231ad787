// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"

	"github.com/pdiddy/citation-ranker/internal/archive"
	"github.com/pdiddy/citation-ranker/internal/venue"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Query rankings recorded by earlier runs",
	Long: `History reads the archive database that rank fills after every export.
Filter by edition, title substring or citation threshold, print as a table or
JSON, or export the selection to a YAML or JSON file. With --runs it lists the
archived editions instead.`,
	Example: `  citation-ranker history --conference cvpr --year 2019 --limit 10
  citation-ranker history --title transformer --min-citations 100 --json
  citation-ranker history --conference iclr --export yaml --output iclr.yaml`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().String("conference", "", "filter by conference")
	historyCmd.Flags().Int("year", 0, "filter by year")
	historyCmd.Flags().String("title", "", "filter by title substring")
	historyCmd.Flags().Int("min-citations", 0, "drop papers below this citation count")
	historyCmd.Flags().Int("limit", 0, "maximum results (0 = 50)")
	historyCmd.Flags().Bool("json", false, "output results as JSON")
	historyCmd.Flags().Bool("runs", false, "list archived editions")
	historyCmd.Flags().String("export", "", "export the selection: yaml or json")
	historyCmd.Flags().String("output", "", "export file (default: history.<format>)")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Export.Archive == "" {
		return fmt.Errorf("no archive configured: set export.archive")
	}

	store, err := archive.NewStore(cfg.Export.Archive)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	jsonOutput, _ := cmd.Flags().GetBool("json")

	if runs, _ := cmd.Flags().GetBool("runs"); runs {
		list, err := store.Runs(ctx)
		if err != nil {
			return err
		}
		if jsonOutput {
			return writeJSON(out, list)
		}
		return printRuns(out, list)
	}

	opts, err := historyOptsFromFlags(cmd)
	if err != nil {
		return err
	}

	if format, _ := cmd.Flags().GetString("export"); format != "" {
		path, _ := cmd.Flags().GetString("output")
		if path == "" {
			path = "history." + format
		}
		switch format {
		case "yaml":
			err = store.ExportYAML(ctx, opts, path)
		case "json":
			err = store.ExportJSON(ctx, opts, path)
		default:
			return fmt.Errorf("unsupported format %q: use yaml or json", format)
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Exported to %s\n", path)
		return nil
	}

	entries, err := store.Query(ctx, opts)
	if err != nil {
		return err
	}
	if jsonOutput {
		return writeJSON(out, entries)
	}
	return printEntries(out, entries)
}

func historyOptsFromFlags(cmd *cobra.Command) (archive.QueryOptions, error) {
	confName, _ := cmd.Flags().GetString("conference")
	year, _ := cmd.Flags().GetInt("year")
	title, _ := cmd.Flags().GetString("title")
	minCitations, _ := cmd.Flags().GetInt("min-citations")
	limit, _ := cmd.Flags().GetInt("limit")

	opts := archive.QueryOptions{
		Year:         year,
		Title:        title,
		MinCitations: minCitations,
		MaxResults:   limit,
	}
	if confName != "" {
		conf, err := venue.ParseConference(confName)
		if err != nil {
			return opts, err
		}
		opts.Conference = string(conf)
	}
	return opts, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoWrap: tw.WrapNone},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
			Header: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoFormat: tw.On},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Separators: tw.Separators{ShowHeader: tw.Off},
			},
		}),
	)
}

func printEntries(w io.Writer, entries []archive.Entry) error {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No results found.")
		return nil
	}

	rows := make([][]string, len(entries))
	for i, e := range entries {
		month := "-"
		if e.CitMonth != nil {
			month = strconv.Itoa(*e.CitMonth)
		}
		rows[i] = []string{
			fmt.Sprintf("%s%d", e.Conference, e.Year),
			strconv.Itoa(e.Rank),
			strconv.Itoa(e.Citations),
			strconv.Itoa(e.CitYear),
			month,
			e.Title,
		}
	}

	t := newTable(w)
	t.Header([]string{"Edition", "Rank", "Citations", "cit/year", "cit/month", "Title"})
	if err := t.Bulk(rows); err != nil {
		return err
	}
	if err := t.Render(); err != nil {
		return err
	}
	fmt.Fprintf(w, "\n%d results\n", len(entries))
	return nil
}

func printRuns(w io.Writer, runs []archive.Run) error {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No archived rankings.")
		return nil
	}

	rows := make([][]string, len(runs))
	for i, r := range runs {
		month := "-"
		if r.Month > 0 {
			month = strconv.Itoa(r.Month)
		}
		rows[i] = []string{
			fmt.Sprintf("%s%d", r.Conference, r.Year),
			month,
			strconv.Itoa(r.PaperCount),
			r.ExportedAt.Local().Format("2006-01-02 15:04"),
		}
	}

	t := newTable(w)
	t.Header([]string{"Edition", "Month", "Papers", "Exported"})
	if err := t.Bulk(rows); err != nil {
		return err
	}
	return t.Render()
}
