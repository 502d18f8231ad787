// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package browser provides the single browsing session that enrichment
// queries go through. A session keeps cookies and navigation state between
// queries, so it must not be shared by concurrent callers.
package browser

import (
	"context"
	"fmt"

	"github.com/pdiddy/citation-ranker/pkg/types"
)

// DefaultUserAgent mimics a desktop Chrome build.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// Page is a rendered page: the visible body text and the body markup.
type Page struct {
	URL  string
	Text string
	HTML string
}

// Session fetches pages in one stateful browsing session.
type Session interface {
	Fetch(ctx context.Context, url string) (Page, error)
	Close() error
}

// New opens the session selected by cfg.Driver. cookie seeds the HTTP
// driver's requests and is ignored by Chrome, whose profile keeps its own.
func New(cfg types.BrowserConfig, cookie string) (Session, error) {
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	switch cfg.Driver {
	case types.DriverChrome, "":
		return NewChromeSession(cfg)
	case types.DriverHTTP:
		return NewHTTPSession(cfg.HTTPConfig, cookie)
	default:
		return nil, fmt.Errorf("unknown browser driver %q: use chrome or http", cfg.Driver)
	}
}
