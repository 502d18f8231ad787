// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package endpoint holds the ordered list of equivalent search hosts and the
// cursor that advances through them when the current host blocks automated
// queries. Rotation state lives only as long as the process.
package endpoint

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// DefaultHosts are the search host variants in fallback order.
var DefaultHosts = []string{
	"scholar.google.com",
	"scholar.google.co.kr",
	"scholar.google.co.uk",
	"scholar.google.ca",
}

// DefaultTemplate takes the host and the encoded search term.
const DefaultTemplate = "https://%s/scholar?hl=en&as_sdt=0%%2C5&q=%s&num=1"

// ErrNoHosts is returned by New for an empty host list.
var ErrNoHosts = errors.New("endpoint list is empty")

// Rotator tracks the current host. It is not safe for concurrent use; the
// enrichment loop owns it exclusively.
type Rotator struct {
	hosts    []string
	template string
	cursor   int
}

// New returns a Rotator positioned at the first host. An empty template
// selects DefaultTemplate.
func New(hosts []string, template string) (*Rotator, error) {
	if len(hosts) == 0 {
		return nil, ErrNoHosts
	}
	for i, h := range hosts {
		if strings.TrimSpace(h) == "" {
			return nil, fmt.Errorf("endpoint %d is blank", i)
		}
	}
	if template == "" {
		template = DefaultTemplate
	}
	if strings.Count(template, "%s") != 2 {
		return nil, fmt.Errorf("query template %q must contain exactly two %%s verbs (host, term)", template)
	}
	return &Rotator{
		hosts:    append([]string(nil), hosts...),
		template: template,
	}, nil
}

// Current returns the host in use.
func (r *Rotator) Current() string { return r.hosts[r.cursor] }

// Index returns the cursor position.
func (r *Rotator) Index() int { return r.cursor }

// Len returns the number of hosts.
func (r *Rotator) Len() int { return len(r.hosts) }

// Rotate advances to the next host. It returns false, leaving the cursor on
// the last host, when every variant has been used.
func (r *Rotator) Rotate() bool {
	if r.cursor+1 >= len(r.hosts) {
		return false
	}
	r.cursor++
	return true
}

// Reset moves the cursor back to the first host.
func (r *Rotator) Reset() { r.cursor = 0 }

// URL builds the query URL for an already-encoded term on the current host.
func (r *Rotator) URL(term string) string {
	return fmt.Sprintf(r.template, r.Current(), term)
}

// LinkTerm encodes a paper link the way the search source expects: only
// ':' and '/' are escaped.
func LinkTerm(link string) string {
	return strings.NewReplacer(":", "%3A", "/", "%2F").Replace(link)
}

// TitleTerm quotes a title for an exact-phrase query and query-escapes it,
// so spaces become '+' and reserved characters are percent-encoded.
func TitleTerm(title string) string {
	return url.QueryEscape(`"` + title + `"`)
}
