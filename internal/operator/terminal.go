// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package operator is the human side of the enrichment loop: it asks the
// operator to solve robot challenges, to triage unclassified responses and
// to confirm resuming from a checkpoint.
package operator

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"

	"github.com/pdiddy/citation-ranker/internal/enrich"
	"github.com/pdiddy/citation-ranker/pkg/types"
)

// ErrNoInput is returned when the input stream closes while waiting.
var ErrNoInput = errors.New("operator input closed")

// Terminal reads answers line by line from an input stream. Only one
// prompt may be outstanding at a time.
//
// On an interactive terminal, lines entered while no prompt is waiting are
// dropped, so a stray Enter during a long run does not answer the next
// prompt. Piped input is kept line for line.
type Terminal struct {
	lines   chan lineResult
	printer *Printer

	dropTypeAhead bool

	mu        sync.Mutex
	prompting bool
	dropped   int
}

type lineResult struct {
	text string
	err  error
}

// NewTerminal starts reading lines from in. Messages go to printer.
func NewTerminal(in io.Reader, printer *Printer) *Terminal {
	return newTerminal(in, printer, interactive(in))
}

func newTerminal(in io.Reader, printer *Printer, dropTypeAhead bool) *Terminal {
	t := &Terminal{lines: make(chan lineResult), printer: printer, dropTypeAhead: dropTypeAhead}
	go t.read(in)
	return t
}

// interactive reports whether in is a terminal rather than a pipe or file.
func interactive(in io.Reader) bool {
	f, ok := in.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (t *Terminal) read(in io.Reader) {
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		if !t.accept() {
			continue
		}
		t.lines <- lineResult{text: sc.Text()}
	}
	err := sc.Err()
	if err == nil {
		err = ErrNoInput
	}
	for {
		t.lines <- lineResult{err: err}
	}
}

// accept reports whether a scanned line should be delivered.
func (t *Terminal) accept() bool {
	if !t.dropTypeAhead {
		return true
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.prompting {
		t.dropped++
	}
	return t.prompting
}

// prompt marks a prompt as waiting for input until the returned func runs.
func (t *Terminal) prompt() func() {
	t.mu.Lock()
	t.prompting = true
	t.mu.Unlock()
	return func() {
		t.mu.Lock()
		t.prompting = false
		t.mu.Unlock()
	}
}

// readLine blocks for the next line or ctx cancellation.
func (t *Terminal) readLine(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case l := <-t.lines:
		return strings.TrimSpace(l.text), l.err
	}
}

// SolveChallenge tells the operator to clear the challenge and waits for
// Enter. There is no timeout.
func (t *Terminal) SolveChallenge(ctx context.Context, paper types.Paper, url string) error {
	defer t.prompt()()
	t.printer.Warning("Robot check detected while querying %q.", paper.Title)
	t.printer.Info("URL: %s", url)
	t.printer.Action("Solve captcha manually and press enter here to continue...")
	_, err := t.readLine(ctx)
	return err
}

// Inspect shows an unclassified failure and asks what to do with it.
func (t *Terminal) Inspect(ctx context.Context, paper types.Paper, cause error) (enrich.Decision, error) {
	defer t.prompt()()
	t.printer.Error("No success for %q.", paper.Title)
	t.printer.Error("%v", cause)
	for {
		t.printer.Action("[r]etry, [s]kip with zero citations, or [a]bort? ")
		answer, err := t.readLine(ctx)
		if err != nil {
			return enrich.DecisionAbort, err
		}
		switch strings.ToLower(answer) {
		case "r", "retry", "":
			return enrich.DecisionRetry, nil
		case "s", "skip":
			return enrich.DecisionSkip, nil
		case "a", "abort":
			return enrich.DecisionAbort, nil
		}
		t.printer.Warning("Please respond with 'r', 's' or 'a'.")
	}
}

var yesNo = map[string]bool{"yes": true, "y": true, "ye": true, "no": false, "n": false}

// Confirm asks a yes/no question; an empty answer selects defaultYes.
func (t *Terminal) Confirm(ctx context.Context, question string, defaultYes bool) (bool, error) {
	defer t.prompt()()
	suffix := " [Y/n] "
	if !defaultYes {
		suffix = " [y/N] "
	}
	for {
		t.printer.Action("%s%s", question, suffix)
		answer, err := t.readLine(ctx)
		if err != nil {
			return false, err
		}
		if answer == "" {
			return defaultYes, nil
		}
		if v, ok := yesNo[strings.ToLower(answer)]; ok {
			return v, nil
		}
		t.printer.Warning("Please respond with 'yes' or 'no' (or 'y' or 'n').")
	}
}

// Printer exposes the terminal's printer for non-interactive messages.
func (t *Terminal) Printer() *Printer { return t.printer }
