// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/citation-ranker/internal/archive"
	"github.com/pdiddy/citation-ranker/internal/browser"
	"github.com/pdiddy/citation-ranker/internal/checkpoint"
	"github.com/pdiddy/citation-ranker/internal/classify"
	"github.com/pdiddy/citation-ranker/internal/endpoint"
	"github.com/pdiddy/citation-ranker/internal/enrich"
	"github.com/pdiddy/citation-ranker/internal/operator"
	"github.com/pdiddy/citation-ranker/internal/rank"
	"github.com/pdiddy/citation-ranker/internal/secrets"
	"github.com/pdiddy/citation-ranker/internal/venue"
	"github.com/pdiddy/citation-ranker/pkg/types"
)

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Enrich a conference edition with citation counts and export the ranking",
	Long: `Rank collects the papers of one conference edition, queries the citation
count of each paper in order, and writes {conference}{year}.csv sorted by
citations. A checkpoint is saved after every paper; when one exists for the
same edition you are asked whether to resume it.

Robot checks pause the run until you solve them in the browser and press
Enter. Automated-query blocks switch to the next search host; when every
host is blocked the run stops and can be restarted later.`,
	Example: `  citation-ranker rank --conference cvpr --year 2019 --month 6
  citation-ranker rank --conference nips --year 2018 --csvpath results/`,
	RunE: runRank,
}

func init() {
	rankCmd.Flags().String("conference", "", "conference: cvpr, iccv, iclr, icml, eccv, nips/neurips (required)")
	rankCmd.Flags().Int("year", 0, "conference year (required)")
	rankCmd.Flags().Int("month", 0, "conference month, enables cit/month")
	rankCmd.Flags().String("csvpath", "", "directory for the exported csv (default: export.csv_dir)")
	rankCmd.Flags().Duration("delay", 0, "pause between papers (default: enrich.delay)")
	rankCmd.Flags().String("driver", "", "browsing session: chrome or http (default: browser.driver)")
	rankCmd.Flags().Bool("headless", false, "run Chrome without a window")
	rankCmd.Flags().Int("top", 20, "rows of the ranking to print (0 = all)")
	rankCmd.Flags().BoolP("yes", "y", false, "resume a matching checkpoint without asking")
	rankCmd.Flags().Bool("no-archive", false, "do not record the ranking in the archive database")

	rankCmd.MarkFlagRequired("conference")
	rankCmd.MarkFlagRequired("year")

	rootCmd.AddCommand(rankCmd)
}

func runRank(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	now := time.Now()

	confName, _ := cmd.Flags().GetString("conference")
	year, _ := cmd.Flags().GetInt("year")
	month, _ := cmd.Flags().GetInt("month")

	// Argument errors fail before any network activity.
	conf, err := venue.ParseConference(confName)
	if err != nil {
		return err
	}
	if err := venue.Validate(conf, year, month, now); err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyRankFlags(cmd, &cfg)

	printer := operator.NewPrinter(out, true)
	term := operator.NewTerminal(os.Stdin, printer)

	if month == 0 {
		printer.Warning("Please provide month for \"cit/month\" information.")
	}

	target := types.Target{Conference: string(conf), Year: year}
	store := checkpoint.NewStore(cfg.Checkpoint.Path)

	autoResume, _ := cmd.Flags().GetBool("yes")
	state, err := resumeOrStart(ctx, store, term, target, autoResume)
	if err != nil {
		return err
	}

	if state == nil {
		fmt.Fprintf(out, "Loading %s %d results\n", conf, year)
		papers, err := venue.NewCollector(cfg.Venues, logger).Collect(ctx, conf, year)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Found %d papers.\n", len(papers))
		state = types.NewJobState(target, papers)
	}

	if !state.Done() {
		if err := enrichState(ctx, cfg, state, term, out); err != nil {
			if errors.Is(err, enrich.ErrEndpointsExhausted) {
				printer.Error("No more alternative addresses. Restart this program.")
			}
			if errors.Is(err, context.Canceled) {
				printer.Warning("Interrupted; progress saved to %s (%d/%d papers).", store.Path(), state.NextIndex, len(state.Papers))
			}
			return err
		}
	}

	table, err := rank.Rank(target, state.Papers, state.Results, rank.Options{Month: month, Now: now})
	if err != nil {
		return err
	}

	top, _ := cmd.Flags().GetInt("top")
	if err := table.Print(out, top); err != nil {
		return err
	}

	path, err := rank.Export(cfg.Export.CSVDir, table)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\nSaved %s\n", path)

	if noArchive, _ := cmd.Flags().GetBool("no-archive"); !noArchive && cfg.Export.Archive != "" {
		if err := archiveTable(ctx, cfg.Export.Archive, table, now); err != nil {
			// The CSV is already written; the run is not lost.
			printer.Warning("archiving ranking: %v", err)
		}
	}

	return store.Clear()
}

func applyRankFlags(cmd *cobra.Command, cfg *types.PipelineConfig) {
	if csvPath, _ := cmd.Flags().GetString("csvpath"); csvPath != "" {
		cfg.Export.CSVDir = csvPath
	}
	if d, _ := cmd.Flags().GetDuration("delay"); cmd.Flags().Changed("delay") {
		cfg.Enrich.Delay = d
	}
	if driver, _ := cmd.Flags().GetString("driver"); driver != "" {
		cfg.Browser.Driver = types.BrowserDriver(driver)
	}
	if cmd.Flags().Changed("headless") {
		cfg.Browser.Headless, _ = cmd.Flags().GetBool("headless")
	}
}

// resumeOrStart returns the checkpointed state when it belongs to target and
// the operator agrees to resume, or nil to start over. A checkpoint that
// cannot be read stops the run so its results are not overwritten.
func resumeOrStart(ctx context.Context, store *checkpoint.Store, term *operator.Terminal, target types.Target, autoResume bool) (*types.JobState, error) {
	state, err := store.Restore()
	if errors.Is(err, checkpoint.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w\nrun `citation-ranker checkpoint clear` to discard it", err)
	}

	if !checkpoint.Resumable(state, target) {
		term.Printer().Info("Checkpoint %s holds %s; starting %s from scratch.", store.Path(), state.Target, target)
		return nil, nil
	}

	if autoResume {
		return state, nil
	}
	question := fmt.Sprintf("Restore from backup? %s %d %d/%d papers done.",
		state.Target.Conference, state.Target.Year, state.NextIndex, len(state.Papers))
	ok, err := term.Confirm(ctx, question, true)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return state, nil
}

func enrichState(ctx context.Context, cfg types.PipelineConfig, state *types.JobState, term *operator.Terminal, out io.Writer) error {
	rotator, err := endpoint.New(cfg.Enrich.Endpoints, cfg.Enrich.QueryTemplate)
	if err != nil {
		return err
	}

	session, err := browser.New(cfg.Browser, loadedSecrets.Get(secrets.ScholarCookie))
	if err != nil {
		return fmt.Errorf("opening browsing session: %w", err)
	}
	defer session.Close()

	engine := &enrich.Engine{
		Session:    session,
		Classifier: classify.New(logger),
		Rotator:    rotator,
		Saver:      checkpoint.NewStore(cfg.Checkpoint.Path),
		Operator:   term,
		Delay:      cfg.Enrich.Delay,
		Out:        out,
		Logger:     logger,
	}

	fmt.Fprintf(out, "Enriching %s: %d of %d papers remaining\n", state.Target, state.Remaining(), len(state.Papers))
	return engine.Run(ctx, state)
}

func archiveTable(ctx context.Context, path string, table *rank.Table, now time.Time) error {
	db, err := archive.NewStore(path)
	if err != nil {
		return err
	}
	defer db.Close()
	return db.Record(ctx, table, now)
}
