// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package classify labels a rendered search-results page as a success, a
// robot challenge, an automated-query block, an empty result set, or an
// unclassified failure, and extracts the citation count from the first
// result row.
package classify

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Kind tags a classified response.
type Kind int

const (
	KindUnclassified Kind = iota
	KindSuccess
	KindRobotChallenge
	KindAutomatedQueryBlock
	KindEmptyResults
)

func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindRobotChallenge:
		return "robot-challenge"
	case KindAutomatedQueryBlock:
		return "automated-query-block"
	case KindEmptyResults:
		return "empty-results"
	default:
		return "unclassified"
	}
}

// Response is the outcome of classifying one query attempt. Content and
// Citations are set for KindSuccess; Err is set for KindUnclassified.
type Response struct {
	Kind      Kind
	Content   string
	Citations int
	Err       error
}

// ErrNoResultRow is the Unclassified cause when the page carries no result row
// and no recognizable challenge or empty-results banner.
var ErrNoResultRow = errors.New("no result row on page")

// Phrase sets matched against page text. Matching is case-sensitive on the
// rendered text, as the search source prints these verbatim.
var (
	DefaultRobotPhrases = []string{
		"unusual traffic from your computer network",
		"not a robot",
		"로봇",
	}
	DefaultBlockPhrases = []string{
		"your computer or network may be sending automated queries",
	}
	DefaultEmptyPhrases = []string{
		"정보가 없습니다",
		"no information is available",
	}
)

// ResultRowSelector selects result rows in the page markup.
const ResultRowSelector = "div.gs_r"

// Classifier labels pages. The zero value is not usable; use New.
type Classifier struct {
	robot  []string
	block  []string
	empty  []string
	logger *slog.Logger
}

// Option customizes a Classifier.
type Option func(*Classifier)

// WithRobotPhrases replaces the human-verification phrase set.
func WithRobotPhrases(p ...string) Option { return func(c *Classifier) { c.robot = p } }

// WithBlockPhrases replaces the automated-traffic phrase set.
func WithBlockPhrases(p ...string) Option { return func(c *Classifier) { c.block = p } }

// WithEmptyPhrases replaces the no-results phrase set.
func WithEmptyPhrases(p ...string) Option { return func(c *Classifier) { c.empty = p } }

// New returns a Classifier with the default bilingual phrase sets. A nil
// logger discards diagnostics.
func New(logger *slog.Logger, opts ...Option) *Classifier {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	c := &Classifier{
		robot:  DefaultRobotPhrases,
		block:  DefaultBlockPhrases,
		empty:  DefaultEmptyPhrases,
		logger: logger,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Classify inspects the page's visible text and markup. It never panics on
// malformed input; structural failures come back as KindUnclassified.
func (c *Classifier) Classify(pageText, pageHTML string) Response {
	if containsAny(pageText, c.robot) {
		return Response{Kind: KindRobotChallenge}
	}
	if containsAny(pageText, c.block) {
		return Response{Kind: KindAutomatedQueryBlock}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageHTML))
	if err != nil {
		return Response{Kind: KindUnclassified, Err: fmt.Errorf("parsing page markup: %w", err)}
	}

	row := doc.Find(ResultRowSelector).First()
	if row.Length() == 0 {
		return Response{Kind: KindUnclassified, Err: ErrNoResultRow}
	}
	if containsAny(row.Text(), c.empty) {
		return Response{Kind: KindEmptyResults}
	}

	markup, err := goquery.OuterHtml(row)
	if err != nil {
		return Response{Kind: KindUnclassified, Err: fmt.Errorf("rendering result row: %w", err)}
	}

	return Response{
		Kind:      KindSuccess,
		Content:   markup,
		Citations: c.Citations(markup),
	}
}

func containsAny(s string, phrases []string) bool {
	for _, p := range phrases {
		if p != "" && strings.Contains(s, p) {
			return true
		}
	}
	return false
}

var (
	koreanCitedRe  = regexp.MustCompile(`([\d,]+)\s*회 인용`)
	englishCitedRe = regexp.MustCompile(`Cited by\s*([\d,]+)`)
)

// Citations extracts the citation count from a result row's markup. The
// Korean pattern is applied first and the English one second; when both
// match, the English value wins and a differing pair is logged.
func (c *Classifier) Citations(markup string) int {
	kor, korOK := matchCount(koreanCitedRe, markup)
	eng, engOK := matchCount(englishCitedRe, markup)

	switch {
	case korOK && engOK:
		if kor != eng {
			c.logger.Warn("citation patterns disagree; using english count",
				"korean", kor, "english", eng)
		}
		return eng
	case engOK:
		return eng
	case korOK:
		return kor
	default:
		return 0
	}
}

// Citations extracts a citation count with a default classifier.
func Citations(markup string) int {
	return New(nil).Citations(markup)
}

func matchCount(re *regexp.Regexp, s string) (int, bool) {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", ""))
	if err != nil {
		return 0, false
	}
	return n, true
}
