// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/citation-ranker/internal/venue"
)

var papersCmd = &cobra.Command{
	Use:   "papers",
	Short: "List the papers of a conference edition",
	Long: `Papers fetches the paper list of one conference edition from its
proceedings site without querying citations. Use --output to save the list
as YAML.`,
	RunE: runPapers,
}

func init() {
	papersCmd.Flags().String("conference", "", "conference: cvpr, iccv, iclr, icml, eccv, nips/neurips (required)")
	papersCmd.Flags().Int("year", 0, "conference year (required)")
	papersCmd.Flags().String("output", "", "write the list to this YAML file instead of stdout")

	papersCmd.MarkFlagRequired("conference")
	papersCmd.MarkFlagRequired("year")

	rootCmd.AddCommand(papersCmd)
}

func runPapers(cmd *cobra.Command, args []string) error {
	confName, _ := cmd.Flags().GetString("conference")
	year, _ := cmd.Flags().GetInt("year")

	conf, err := venue.ParseConference(confName)
	if err != nil {
		return err
	}
	if err := conf.ValidateYear(year); err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	papers, err := venue.NewCollector(cfg.Venues, logger).Collect(cmd.Context(), conf, year)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if path, _ := cmd.Flags().GetString("output"); path != "" {
		data, err := yaml.Marshal(papers)
		if err != nil {
			return fmt.Errorf("marshaling papers: %w", err)
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		fmt.Fprintf(out, "Wrote %d papers to %s\n", len(papers), path)
		return nil
	}

	for i, p := range papers {
		fmt.Fprintf(out, "%4d  %s\n      %s\n      %s\n", i+1, p.Title, p.Authors, p.SourceLink)
	}
	fmt.Fprintf(out, "\n%d papers\n", len(papers))
	return nil
}
