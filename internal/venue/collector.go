// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package venue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"github.com/pdiddy/citation-ranker/internal/httputil"
	"github.com/pdiddy/citation-ranker/pkg/types"
)

// Proceedings site roots. Declared as vars so tests can substitute an
// httptest server.
var (
	cvfBase      = "https://openaccess.thecvf.com"
	dblpBase     = "https://dblp.org"
	springerBase = "https://link.springer.com"
	pmlrBase     = "http://proceedings.mlr.press"
	neuripsBase  = "https://papers.nips.cc"
)

// Defaults applied when VenueConfig leaves a field zero.
const (
	DefaultWorkers   = 4
	DefaultUserAgent = "citation-ranker/0.1"
	defaultTimeout   = 60 * time.Second
)

// Collector fetches paper lists from the proceedings sites.
type Collector struct {
	client    *http.Client
	limiter   *hostLimiter
	workers   int
	userAgent string
	logger    *slog.Logger
}

// NewCollector builds a Collector from cfg. A nil logger discards output.
func NewCollector(cfg types.VenueConfig, logger *slog.Logger) *Collector {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	return &Collector{
		client:    &http.Client{Timeout: timeout},
		limiter:   newHostLimiter(cfg.FetchInterval),
		workers:   workers,
		userAgent: ua,
		logger:    logger,
	}
}

// Collect returns the papers of conference c in year, in proceedings order.
// Concurrent fetches, if any, have all finished when it returns.
func (c *Collector) Collect(ctx context.Context, conf Conference, year int) ([]types.Paper, error) {
	if err := conf.ValidateYear(year); err != nil {
		return nil, err
	}

	var (
		papers []types.Paper
		err    error
	)
	switch conf {
	case CVPR, ICCV:
		papers, err = c.cvf(ctx, conf, year)
	case ICLR:
		papers, err = c.iclr(ctx, year)
	case ECCV:
		papers, err = c.eccv(ctx, year)
	case ICML:
		papers, err = c.icml(ctx, year)
	case NeurIPS:
		papers, err = c.neurips(ctx, year)
	}
	if err != nil {
		return nil, fmt.Errorf("collecting %s %d papers: %w", conf, year, err)
	}

	c.logger.Info("collected papers", "conference", conf, "year", year, "count", len(papers))
	return papers, nil
}

// get issues a paced GET and fails on any non-200 status.
func (c *Collector) get(ctx context.Context, rawURL string) (*http.Response, error) {
	if err := c.limiter.wait(ctx, rawURL); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	c.logger.Debug("fetching proceedings page", "url", rawURL)
	resp, err := httputil.DoWithRetry(ctx, c.client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", rawURL, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("fetching %s: HTTP %d", rawURL, resp.StatusCode)
	}
	return resp, nil
}

func (c *Collector) document(ctx context.Context, rawURL string) (*goquery.Document, error) {
	resp, err := c.get(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", rawURL, err)
	}
	return doc, nil
}

// hostLimiter spaces requests per host.
type hostLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	interval time.Duration
}

func newHostLimiter(interval time.Duration) *hostLimiter {
	return &hostLimiter{limiters: make(map[string]*rate.Limiter), interval: interval}
}

func (h *hostLimiter) wait(ctx context.Context, rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return err
	}
	if u.Host == "" {
		return &url.Error{Op: "parse", URL: rawURL, Err: errors.New("missing host in URL")}
	}

	h.mu.Lock()
	l, ok := h.limiters[u.Host]
	if !ok {
		l = rate.NewLimiter(rate.Every(h.interval), 1)
		h.limiters[u.Host] = l
	}
	h.mu.Unlock()

	return l.Wait(ctx)
}
