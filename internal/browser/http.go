package browser

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/publicsuffix"

	"github.com/pdiddy/citation-ranker/pkg/types"
)

// HTTPSession is a cookie-keeping HTTP client. It cannot render scripts, so
// challenges must be solved in a separate browser and the resulting cookie
// supplied through the secrets directory.
type HTTPSession struct {
	client    *http.Client
	userAgent string
	cookie    string
}

// NewHTTPSession returns a session with a public-suffix aware cookie jar.
func NewHTTPSession(cfg types.HTTPConfig, cookie string) (*HTTPSession, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("creating cookie jar: %w", err)
	}
	return &HTTPSession{
		client:    &http.Client{Timeout: cfg.Timeout, Jar: jar},
		userAgent: cfg.UserAgent,
		cookie:    strings.TrimSpace(cookie),
	}, nil
}

// Fetch loads url once and returns its body text and markup. Non-2xx
// responses still return their page, since challenge and block pages arrive
// as 403, 429 or 503 and must be classified, unless the body is empty.
// Fetch never retries; recovery is up to the caller.
func (s *HTTPSession) Fetch(ctx context.Context, url string) (Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Page{}, fmt.Errorf("creating request: %w", err)
	}
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	if s.cookie != "" {
		req.Header.Set("Cookie", s.cookie)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return Page{}, fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return Page{}, fmt.Errorf("parsing page: %w", err)
	}

	body := doc.Find("body")
	html, err := body.Html()
	if err != nil {
		return Page{}, fmt.Errorf("rendering body: %w", err)
	}
	text := body.Text()

	if resp.StatusCode/100 != 2 && strings.TrimSpace(text) == "" {
		return Page{}, fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}

	return Page{URL: resp.Request.URL.String(), Text: text, HTML: html}, nil
}

// Close releases idle connections.
func (s *HTTPSession) Close() error {
	s.client.CloseIdleConnections()
	return nil
}
