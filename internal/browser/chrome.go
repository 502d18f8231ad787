package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/pdiddy/citation-ranker/pkg/types"
)

const (
	bodyTextJS = `document.body ? document.body.innerText : ""`
	bodyHTMLJS = `document.body ? document.body.innerHTML : ""`
	maskJS     = `(() => { Object.defineProperty(navigator, 'webdriver', {get: () => undefined}); return true })()`
)

const defaultPageTimeout = 60 * time.Second

// ChromeSession drives a real Chrome window. With Headless unset the
// operator can solve a robot challenge directly in that window.
type ChromeSession struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
	timeout     time.Duration
}

// NewChromeSession launches Chrome and opens a tab.
func NewChromeSession(cfg types.BrowserConfig) (*ChromeSession, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-notifications", true),
		chromedp.Flag("enable-automation", false),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.WindowSize(1280, 800),
		chromedp.UserAgent(cfg.UserAgent),
	)
	if cfg.ChromePath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ChromePath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	ctx, cancel := chromedp.NewContext(allocCtx)
	if err := chromedp.Run(ctx); err != nil {
		cancel()
		allocCancel()
		return nil, fmt.Errorf("starting chrome: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultPageTimeout
	}
	return &ChromeSession{ctx: ctx, cancel: cancel, allocCancel: allocCancel, timeout: timeout}, nil
}

// Fetch navigates the tab to url and reads the rendered body.
func (s *ChromeSession) Fetch(ctx context.Context, url string) (Page, error) {
	tctx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	var (
		masked     bool
		text, html string
		location   string
	)
	err := chromedp.Run(tctx,
		chromedp.Navigate(url),
		chromedp.Evaluate(maskJS, &masked),
		chromedp.Evaluate(bodyTextJS, &text),
		chromedp.Evaluate(bodyHTMLJS, &html),
		chromedp.Location(&location),
	)
	if err != nil {
		if ctx.Err() != nil {
			return Page{}, ctx.Err()
		}
		return Page{}, fmt.Errorf("loading %s: %w", url, err)
	}
	return Page{URL: location, Text: text, HTML: html}, nil
}

// Close shuts the tab and the browser process.
func (s *ChromeSession) Close() error {
	s.cancel()
	s.allocCancel()
	return nil
}
