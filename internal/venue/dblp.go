// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package venue

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/citation-ranker/pkg/types"
)

// dblpPageSize is the maximum number of hits DBLP returns per query.
const dblpPageSize = 1000

type dblpResponse struct {
	Result struct {
		Hits struct {
			Total string `json:"@total"`
			Hit   []struct {
				Info dblpInfo `json:"info"`
			} `json:"hit"`
		} `json:"hits"`
	} `json:"result"`
}

type dblpInfo struct {
	Authors *struct {
		Author oneOrMany[dblpAuthor] `json:"author"`
	} `json:"authors"`
	Title string            `json:"title"`
	EE    oneOrMany[string] `json:"ee"`
}

type dblpAuthor struct {
	Text string `json:"text"`
}

// oneOrMany decodes a JSON value that DBLP emits as a single object when
// there is one element and as an array otherwise.
type oneOrMany[T any] []T

func (o *oneOrMany[T]) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '[' {
		var many []T
		if err := json.Unmarshal(data, &many); err != nil {
			return err
		}
		*o = many
		return nil
	}
	var one T
	if err := json.Unmarshal(data, &one); err != nil {
		return err
	}
	*o = oneOrMany[T]{one}
	return nil
}

// iclr pages through the DBLP table of contents for the edition.
func (c *Collector) iclr(ctx context.Context, year int) ([]types.Paper, error) {
	var papers []types.Paper

	for first, total := 0, 1; first < total; first += dblpPageSize {
		u := fmt.Sprintf("%s/search/publ/api?q=toc%%3Adb/conf/iclr/iclr%d.bht%%3A&f=%d&h=%d&format=json",
			dblpBase, year, first, dblpPageSize)

		resp, err := c.get(ctx, u)
		if err != nil {
			return nil, err
		}
		var r dblpResponse
		err = json.NewDecoder(resp.Body).Decode(&r)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("parsing DBLP response: %w", err)
		}

		for _, hit := range r.Result.Hits.Hit {
			info := hit.Info
			// Entries without authors describe the proceedings volume itself.
			if info.Authors == nil || len(info.Authors.Author) == 0 {
				continue
			}
			names := make([]string, len(info.Authors.Author))
			for i, a := range info.Authors.Author {
				names[i] = stripDigits(a.Text)
			}
			var link string
			if len(info.EE) > 0 {
				link = info.EE[0]
			}
			papers = append(papers, types.Paper{
				Authors:    strings.Join(names, ", "),
				Title:      info.Title,
				SourceLink: link,
			})
		}

		if total, err = strconv.Atoi(r.Result.Hits.Total); err != nil {
			return nil, fmt.Errorf("parsing DBLP hit total %q: %w", r.Result.Hits.Total, err)
		}
	}
	return papers, nil
}

// stripDigits drops DBLP's numeric homonym suffixes, e.g. "Wei Liu 0005".
func stripDigits(s string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return -1
		}
		return r
	}, s))
}

// eccv finds the edition's main-conference volumes in the DBLP index and
// reads each Springer volume page concurrently. Volumes are concatenated in
// index order.
func (c *Collector) eccv(ctx context.Context, year int) ([]types.Paper, error) {
	doc, err := c.document(ctx, dblpBase+"/db/conf/eccv/index.html")
	if err != nil {
		return nil, err
	}

	var volumes []string
	doc.Find(fmt.Sprintf("li[id^='conf/eccv/%d']", year)).Each(func(_ int, li *goquery.Selection) {
		if strings.Contains(li.Find("span.title").First().Text(), "Workshop") {
			return
		}
		if href, ok := li.Find("li.ee a").First().Attr("href"); ok {
			volumes = append(volumes, href)
		}
	})

	results := make([][]types.Paper, len(volumes))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for i, link := range volumes {
		g.Go(func() error {
			papers, err := c.springerVolume(gctx, link)
			if err != nil {
				return err
			}
			results[i] = papers
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var papers []types.Paper
	for _, r := range results {
		papers = append(papers, r...)
	}
	return papers, nil
}

func (c *Collector) springerVolume(ctx context.Context, link string) ([]types.Paper, error) {
	doc, err := c.document(ctx, link)
	if err != nil {
		return nil, err
	}

	var papers []types.Paper
	doc.Find("li.chapter-item.content-type-list__item").Each(func(_ int, li *goquery.Selection) {
		a := li.Find("a.content-type-list__link.u-interface-link").First()
		href, _ := a.Attr("href")
		papers = append(papers, types.Paper{
			Authors:    strings.TrimSpace(li.Find("div.content-type-list__text[data-test='author-text']").First().Text()),
			Title:      strings.TrimSpace(a.Text()),
			SourceLink: springerBase + href,
		})
	})
	return papers, nil
}
