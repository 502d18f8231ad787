// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/citation-ranker/internal/checkpoint"
)

var checkpointCmd = &cobra.Command{
	Use:   "checkpoint",
	Short: "Inspect or discard the saved enrichment progress",
}

var checkpointShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the edition and progress held by the checkpoint",
	RunE:  runCheckpointShow,
}

var checkpointClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the checkpoint so the next run starts from scratch",
	RunE:  runCheckpointClear,
}

func checkpointStore() (*checkpoint.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return checkpoint.NewStore(cfg.Checkpoint.Path), nil
}

func runCheckpointShow(cmd *cobra.Command, args []string) error {
	store, err := checkpointStore()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	state, err := store.Restore()
	if errors.Is(err, checkpoint.ErrNotFound) {
		fmt.Fprintf(out, "No checkpoint at %s\n", store.Path())
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Checkpoint: %s\n", store.Path())
	fmt.Fprintf(out, "Edition:    %s\n", state.Target)
	fmt.Fprintf(out, "Progress:   %d/%d papers\n", state.NextIndex, len(state.Papers))
	if state.Endpoint != "" {
		fmt.Fprintf(out, "Endpoint:   %s\n", state.Endpoint)
	}

	if full, _ := cmd.Flags().GetBool("results"); full {
		data, err := yaml.Marshal(state.Results)
		if err != nil {
			return fmt.Errorf("marshaling results: %w", err)
		}
		fmt.Fprintf(out, "\n%s", data)
	}
	return nil
}

func runCheckpointClear(cmd *cobra.Command, args []string) error {
	store, err := checkpointStore()
	if err != nil {
		return err
	}
	if err := store.Clear(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", store.Path())
	return nil
}

func init() {
	checkpointShowCmd.Flags().Bool("results", false, "also print the recorded results")

	checkpointCmd.AddCommand(checkpointShowCmd)
	checkpointCmd.AddCommand(checkpointClearCmd)

	rootCmd.AddCommand(checkpointCmd)
}
