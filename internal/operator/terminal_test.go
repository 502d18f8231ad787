package operator

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/citation-ranker/internal/enrich"
	"github.com/pdiddy/citation-ranker/pkg/types"
)

func newTestTerminal(input string) (*Terminal, *bytes.Buffer) {
	var out bytes.Buffer
	return NewTerminal(strings.NewReader(input), NewPrinter(&out, false)), &out
}

var paper = types.Paper{Title: "Deep Residual Learning"}

func TestSolveChallengeWaitsForEnter(t *testing.T) {
	term, out := newTestTerminal("\n")
	require.NoError(t, term.SolveChallenge(context.Background(), paper, "https://scholar.google.com/scholar?q=x"))
	assert.Contains(t, out.String(), "Solve captcha manually and press enter here to continue...")
	assert.Contains(t, out.String(), "Deep Residual Learning")
}

func TestSolveChallengeInputClosed(t *testing.T) {
	term, _ := newTestTerminal("")
	err := term.SolveChallenge(context.Background(), paper, "u")
	assert.ErrorIs(t, err, ErrNoInput)
}

func TestSolveChallengeCancelled(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	term := NewTerminal(pr, NewPrinter(io.Discard, false))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := term.SolveChallenge(ctx, paper, "u")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestInspect(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  enrich.Decision
	}{
		{"retry", "r\n", enrich.DecisionRetry},
		{"empty means retry", "\n", enrich.DecisionRetry},
		{"skip", "skip\n", enrich.DecisionSkip},
		{"abort", "A\n", enrich.DecisionAbort},
		{"reprompts on garbage", "what\ns\n", enrich.DecisionSkip},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			term, out := newTestTerminal(tt.input)
			got, err := term.Inspect(context.Background(), paper, errors.New("boom"))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Contains(t, out.String(), "boom")
		})
	}
}

func TestInspectInputClosedAborts(t *testing.T) {
	term, _ := newTestTerminal("")
	got, err := term.Inspect(context.Background(), paper, errors.New("boom"))
	assert.ErrorIs(t, err, ErrNoInput)
	assert.Equal(t, enrich.DecisionAbort, got)
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		defaultYes bool
		want       bool
	}{
		{"empty default yes", "\n", true, true},
		{"empty default no", "\n", false, false},
		{"y", "y\n", false, true},
		{"ye", "ye\n", false, true},
		{"YES", "YES\n", false, true},
		{"n", "n\n", true, false},
		{"no", "no\n", true, false},
		{"reprompt", "maybe\nyes\n", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			term, _ := newTestTerminal(tt.input)
			got, err := term.Confirm(context.Background(), "Restore from backup?", tt.defaultYes)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConfirmPromptSuffix(t *testing.T) {
	term, out := newTestTerminal("\n")
	_, err := term.Confirm(context.Background(), "Restore?", true)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Restore? [Y/n]")
}

func (t *Terminal) droppedLines() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.dropped
}

func (t *Terminal) waiting() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.prompting
}

func TestTypeAheadDoesNotAnswerChallenge(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	term := newTerminal(pr, NewPrinter(io.Discard, false), true)

	// Enter pressed while no prompt is shown.
	_, err := io.WriteString(pw, "\n")
	require.NoError(t, err)
	require.Eventually(t, func() bool { return term.droppedLines() == 1 }, time.Second, time.Millisecond)

	done := make(chan error, 1)
	go func() { done <- term.SolveChallenge(context.Background(), paper, "u") }()
	require.Eventually(t, term.waiting, time.Second, time.Millisecond)

	select {
	case err := <-done:
		t.Fatalf("challenge wait ended without input: %v", err)
	case <-time.After(20 * time.Millisecond):
	}

	_, err = io.WriteString(pw, "\n")
	require.NoError(t, err)
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("challenge wait did not end after Enter")
	}
	assert.False(t, term.waiting())
	assert.Equal(t, 1, term.droppedLines())
}

func TestPipedInputKeepsEveryLine(t *testing.T) {
	assert.False(t, interactive(strings.NewReader("y\n")))

	term, _ := newTestTerminal("\nn\n")
	require.NoError(t, term.SolveChallenge(context.Background(), paper, "u"))
	got, err := term.Confirm(context.Background(), "Restore?", true)
	require.NoError(t, err)
	assert.False(t, got)
	assert.Equal(t, 0, term.droppedLines())
}

func TestPrinterPlain(t *testing.T) {
	var out bytes.Buffer
	p := NewPrinter(&out, false)
	p.Warning("w %d", 1)
	p.Error("e")
	p.Info("i")
	assert.Equal(t, "[WARN] w 1\n[ERROR] e\ni\n", out.String())
}
