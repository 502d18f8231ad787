// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package enrich drives each paper of a job through query, classification
// and recovery until it reaches a terminal outcome, checkpointing progress
// after every paper. Papers are processed strictly in order over a single
// browsing session.
package enrich

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/pdiddy/citation-ranker/internal/browser"
	"github.com/pdiddy/citation-ranker/internal/classify"
	"github.com/pdiddy/citation-ranker/internal/endpoint"
	"github.com/pdiddy/citation-ranker/pkg/types"
)

var (
	// ErrEndpointsExhausted ends the job when every endpoint variant has
	// reported automated-query blocking.
	ErrEndpointsExhausted = errors.New("no more alternative addresses; restart the program")

	// ErrAborted ends the job when the operator chooses to stop.
	ErrAborted = errors.New("aborted by operator")
)

// DefaultDelay is the pause between consecutive papers.
const DefaultDelay = 500 * time.Millisecond

// Fetcher loads one URL in the shared browsing session.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (browser.Page, error)
}

// Classifier labels a rendered page.
type Classifier interface {
	Classify(pageText, pageHTML string) classify.Response
}

// Saver persists job progress.
type Saver interface {
	Save(state *types.JobState) error
}

// Decision is the operator's verdict on an unclassified response.
type Decision int

const (
	DecisionRetry Decision = iota
	DecisionSkip
	DecisionAbort
)

// Operator is the human in the loop. SolveChallenge blocks without timeout
// until the challenge is cleared or ctx is cancelled.
type Operator interface {
	SolveChallenge(ctx context.Context, paper types.Paper, url string) error
	Inspect(ctx context.Context, paper types.Paper, cause error) (Decision, error)
}

// Engine runs the enrichment loop. All fields except Delay, Out, Logger and
// Observe are required.
type Engine struct {
	Session    Fetcher
	Classifier Classifier
	Rotator    *endpoint.Rotator
	Saver      Saver
	Operator   Operator

	// Delay is applied between papers. Zero disables it.
	Delay time.Duration

	// Out receives one progress line per paper and recovery notices.
	Out io.Writer

	Logger *slog.Logger

	// Observe, when set, is called on every state change.
	Observe func(Transition)
}

func (e *Engine) check() error {
	switch {
	case e.Session == nil:
		return errors.New("enrich: session is required")
	case e.Classifier == nil:
		return errors.New("enrich: classifier is required")
	case e.Rotator == nil:
		return errors.New("enrich: endpoint rotator is required")
	case e.Saver == nil:
		return errors.New("enrich: checkpoint saver is required")
	case e.Operator == nil:
		return errors.New("enrich: operator is required")
	}
	if e.Out == nil {
		e.Out = io.Discard
	}
	if e.Logger == nil {
		e.Logger = slog.New(slog.DiscardHandler)
	}
	return nil
}

// Run enriches state.Papers from state.NextIndex to the end. After each
// paper the result is appended, NextIndex advanced and the state saved; a
// final save follows the last paper. Job-fatal errors (endpoint exhaustion,
// operator abort, persistence failure, cancellation) return immediately and
// leave the last saved checkpoint in place.
func (e *Engine) Run(ctx context.Context, state *types.JobState) error {
	if err := e.check(); err != nil {
		return err
	}
	if err := state.Validate(); err != nil {
		return err
	}

	total := len(state.Papers)
	for i := state.NextIndex; i < total; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		result, err := e.enrichItem(ctx, state, i)
		if err != nil {
			return err
		}

		state.Record(result)
		state.Endpoint = e.Rotator.Current()
		if err := e.Saver.Save(state); err != nil {
			return err
		}

		fmt.Fprintf(e.Out, "[%d/%d] %6d  %s\n", i+1, total, result.Citations, state.Papers[i].Title)

		if i+1 < total {
			if err := sleep(ctx, e.Delay); err != nil {
				return err
			}
		}
	}

	state.Endpoint = e.Rotator.Current()
	return e.Saver.Save(state)
}

// item carries the per-paper query context through the machine.
type item struct {
	index int
	paper types.Paper
	term  string
	state State
}

func (e *Engine) enrichItem(ctx context.Context, job *types.JobState, i int) (types.EnrichmentResult, error) {
	it := &item{
		index: i,
		paper: job.Papers[i],
		term:  endpoint.LinkTerm(job.Papers[i].SourceLink),
		state: StatePending,
	}
	var resp classify.Response

	for {
		if err := ctx.Err(); err != nil {
			return types.EnrichmentResult{}, err
		}

		switch it.state {
		case StatePending:
			e.move(it, StateQuerying)

		case StateQuerying:
			resp = e.query(ctx, it)
			e.move(it, afterQuery(resp.Kind))

		case StateSuccess:
			return types.EnrichmentResult{Citations: resp.Citations}, nil

		case StateNeedsHumanIntervention:
			if err := e.Saver.Save(job); err != nil {
				return types.EnrichmentResult{}, err
			}
			url := e.Rotator.URL(it.term)
			fmt.Fprintf(e.Out, "robot check detected for %q\n", it.paper.Title)
			if err := e.Operator.SolveChallenge(ctx, it.paper, url); err != nil {
				return types.EnrichmentResult{}, fmt.Errorf("waiting for challenge to be solved: %w", err)
			}
			e.move(it, StateQuerying)

		case StateNeedsEndpointRotation:
			if err := e.Saver.Save(job); err != nil {
				return types.EnrichmentResult{}, err
			}
			blocked := e.Rotator.Current()
			if !e.Rotator.Rotate() {
				e.move(it, StateFatal)
				continue
			}
			fmt.Fprintf(e.Out, "automated queries detected on %s, switching to %s\n", blocked, e.Rotator.Current())
			// A new host starts over from the link query.
			it.term = endpoint.LinkTerm(it.paper.SourceLink)
			e.move(it, StateQuerying)

		case StateNeedsQueryReformulation:
			byTitle := endpoint.TitleTerm(it.paper.Title)
			if it.term == byTitle {
				fmt.Fprintf(e.Out, "error: no search result for %q\n", it.paper.Title)
				e.move(it, StateNoResults)
				continue
			}
			fmt.Fprintf(e.Out, "warning: no search result with link for %q, retrying with the title\n", it.paper.Title)
			it.term = byTitle
			e.move(it, StateQuerying)

		case StateNoResults:
			return types.EnrichmentResult{Note: types.NoteNoSearchResults}, nil

		case StateNeedsInspection:
			e.Logger.Error("unclassified search response", "index", i, "title", it.paper.Title, "error", resp.Err)
			decision, err := e.Operator.Inspect(ctx, it.paper, resp.Err)
			if err != nil {
				return types.EnrichmentResult{}, fmt.Errorf("inspecting unclassified response: %w", err)
			}
			switch decision {
			case DecisionRetry:
				e.move(it, StateQuerying)
			case DecisionSkip:
				e.move(it, StateSkipped)
			default:
				e.move(it, StateAborted)
			}

		case StateSkipped:
			return types.EnrichmentResult{Note: unclassifiedNote(resp.Err)}, nil

		case StateAborted:
			return types.EnrichmentResult{}, fmt.Errorf("%w at paper %d (%q): %v", ErrAborted, i+1, it.paper.Title, resp.Err)

		case StateFatal:
			return types.EnrichmentResult{}, fmt.Errorf("paper %d (%q): %w", i+1, it.paper.Title, ErrEndpointsExhausted)

		default:
			return types.EnrichmentResult{}, fmt.Errorf("enrich: unknown state %d", it.state)
		}
	}
}

// query issues the current term against the current endpoint. Transport
// failures are reported as unclassified so they never count as zero.
func (e *Engine) query(ctx context.Context, it *item) classify.Response {
	url := e.Rotator.URL(it.term)
	page, err := e.Session.Fetch(ctx, url)
	if err != nil {
		return classify.Response{Kind: classify.KindUnclassified, Err: fmt.Errorf("fetching %s: %w", url, err)}
	}
	resp := e.Classifier.Classify(page.Text, page.HTML)
	e.Logger.Debug("classified response", "index", it.index, "url", url, "kind", resp.Kind, "citations", resp.Citations)
	return resp
}

func (e *Engine) move(it *item, to State) {
	t := Transition{Index: it.index, From: it.state, To: to, Endpoint: e.Rotator.Current()}
	e.Logger.Debug("state transition", "index", t.Index, "from", t.From, "to", t.To, "endpoint", t.Endpoint)
	if e.Observe != nil {
		e.Observe(t)
	}
	it.state = to
}

func unclassifiedNote(cause error) string {
	if cause == nil {
		return "Unclassified"
	}
	return "Unclassified: " + cause.Error()
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
