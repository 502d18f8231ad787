// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the citation-ranker pipeline.
// Papers come from the venue collectors, EnrichmentResults from the enrichment
// engine, and JobState ties both together as the unit of checkpointing.
package types

import (
	"errors"
	"fmt"
)

// Paper is one entry of a conference proceedings list. It is produced once by
// a venue collector and never mutated afterwards.
type Paper struct {
	// Authors is the author line as printed by the proceedings site.
	Authors string `json:"authors" yaml:"authors"`

	// Title is the paper title.
	Title string `json:"title" yaml:"title"`

	// SourceLink is the URL of the paper's landing page at the venue.
	SourceLink string `json:"source_link" yaml:"source_link"`
}

// Target identifies the conference edition a job enriches.
type Target struct {
	Conference string `json:"conference" yaml:"conference"`
	Year       int    `json:"year" yaml:"year"`
}

// String returns the target as it appears in filenames, e.g. "CVPR2019".
func (t Target) String() string {
	return fmt.Sprintf("%s%d", t.Conference, t.Year)
}

// NoteNoSearchResults is recorded when neither the link nor the title query
// returned a result row.
const NoteNoSearchResults = "No Search Results"

// EnrichmentResult is the terminal outcome for one paper.
type EnrichmentResult struct {
	// Citations is the citation count; zero for fallback outcomes.
	Citations int `json:"citations" yaml:"citations"`

	// Note is empty on a clean success, otherwise a diagnostic.
	Note string `json:"note,omitempty" yaml:"note,omitempty"`
}

// ErrPrefixInvariant reports a JobState whose results are not exactly the
// prefix of its paper list up to NextIndex.
var ErrPrefixInvariant = errors.New("job state results do not match progress index")

// JobState is the resumable progress of an enrichment job.
type JobState struct {
	Target    Target             `json:"target" yaml:"target"`
	Papers    []Paper            `json:"papers" yaml:"papers"`
	Results   []EnrichmentResult `json:"results" yaml:"results"`
	NextIndex int                `json:"next_index" yaml:"next_index"`

	// Endpoint is the query host in use when the state was last saved. It is
	// informational; a resumed run starts again at the first endpoint.
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
}

// NewJobState returns a fresh state for target with no completed items.
func NewJobState(target Target, papers []Paper) *JobState {
	return &JobState{
		Target:  target,
		Papers:  papers,
		Results: []EnrichmentResult{},
	}
}

// Validate checks len(Results) == NextIndex <= len(Papers).
func (s *JobState) Validate() error {
	if s.NextIndex < 0 || s.NextIndex > len(s.Papers) {
		return fmt.Errorf("%w: next index %d outside [0, %d]", ErrPrefixInvariant, s.NextIndex, len(s.Papers))
	}
	if len(s.Results) != s.NextIndex {
		return fmt.Errorf("%w: %d results, next index %d", ErrPrefixInvariant, len(s.Results), s.NextIndex)
	}
	return nil
}

// Record appends the outcome of the item at NextIndex and advances it.
func (s *JobState) Record(r EnrichmentResult) {
	s.Results = append(s.Results, r)
	s.NextIndex = len(s.Results)
}

// Done reports whether every paper has a terminal outcome.
func (s *JobState) Done() bool {
	return s.NextIndex >= len(s.Papers)
}

// Remaining returns the number of papers still to enrich.
func (s *JobState) Remaining() int {
	return len(s.Papers) - s.NextIndex
}
