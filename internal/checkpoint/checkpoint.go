// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package checkpoint persists JobState so an interrupted enrichment job can
// resume at the next unfinished paper.
package checkpoint

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/citation-ranker/pkg/types"
)

// DefaultPath is the checkpoint location relative to the working directory.
const DefaultPath = "temp/backup.yaml"

var (
	// ErrNotFound is returned by Restore when no checkpoint file exists.
	ErrNotFound = errors.New("no checkpoint found")

	// ErrPersistence wraps every read or write failure so callers can abort
	// rather than continue with unsaved progress.
	ErrPersistence = errors.New("checkpoint persistence failed")
)

// Store reads and writes a single checkpoint file.
type Store struct {
	path string
}

// NewStore returns a Store for path; empty selects DefaultPath.
func NewStore(path string) *Store {
	if path == "" {
		path = DefaultPath
	}
	return &Store{path: path}
}

// Path returns the checkpoint file location.
func (s *Store) Path() string { return s.path }

// Save writes state atomically: the YAML goes to a temp file in the same
// directory, is synced, and then renamed over the previous checkpoint.
func (s *Store) Save(state *types.JobState) error {
	if err := state.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	data, err := yaml.Marshal(state)
	if err != nil {
		return fmt.Errorf("%w: marshaling checkpoint: %w", ErrPersistence, err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: creating directory %s: %w", ErrPersistence, dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".checkpoint-*.tmp")
	if err != nil {
		return fmt.Errorf("%w: creating temp file: %w", ErrPersistence, err)
	}
	tmpPath := tmp.Name()

	_, writeErr := tmp.Write(data)
	syncErr := tmp.Sync()
	closeErr := tmp.Close()
	if err := errors.Join(writeErr, syncErr, closeErr); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: writing temp file: %w", ErrPersistence, err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: renaming temp file: %w", ErrPersistence, err)
	}
	return nil
}

// Restore loads the checkpoint. It returns ErrNotFound when the file is
// absent; a present but unreadable or inconsistent file is ErrPersistence.
func (s *Store) Restore() (*types.JobState, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: reading %s: %w", ErrPersistence, s.path, err)
	}

	var state types.JobState
	if err := yaml.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %w", ErrPersistence, s.path, err)
	}
	if state.Results == nil {
		state.Results = []types.EnrichmentResult{}
	}
	if err := state.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrPersistence, s.path, err)
	}
	return &state, nil
}

// Clear removes the checkpoint. A missing file is not an error.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: removing %s: %w", ErrPersistence, s.path, err)
	}
	return nil
}

// Resumable reports whether a restored state belongs to target.
func Resumable(state *types.JobState, target types.Target) bool {
	return state != nil && state.Target == target
}
