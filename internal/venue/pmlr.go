// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package venue

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/citation-ranker/pkg/types"
)

// icml reads the PMLR volume of the edition.
func (c *Collector) icml(ctx context.Context, year int) ([]types.Paper, error) {
	vol, ok := pmlrVolumes[year]
	if !ok {
		return nil, fmt.Errorf("%w: no PMLR volume for ICML %d", ErrYearOutOfRange, year)
	}
	doc, err := c.document(ctx, pmlrBase+"/"+vol)
	if err != nil {
		return nil, err
	}

	var authors, titles, links []string
	doc.Find("p.details").Each(func(_ int, s *goquery.Selection) {
		authors = append(authors, strings.ReplaceAll(s.Find("span.authors").First().Text(), "\u00a0", " "))
	})
	doc.Find("p.title").Each(func(_ int, s *goquery.Selection) {
		titles = append(titles, s.Text())
	})
	doc.Find("p.links").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Find("a[href*='html']").First().Attr("href")
		links = append(links, href)
	})

	if len(authors) != len(titles) || len(titles) != len(links) {
		return nil, fmt.Errorf("PMLR %s: %d author lines, %d titles, %d links", vol, len(authors), len(titles), len(links))
	}

	papers := make([]types.Paper, len(titles))
	for i := range titles {
		papers[i] = types.Paper{Authors: authors[i], Title: titles[i], SourceLink: links[i]}
	}
	return papers, nil
}

// neurips reads the edition's listing on the NeurIPS proceedings site. The
// paper list is the page's second ul.
func (c *Collector) neurips(ctx context.Context, year int) ([]types.Paper, error) {
	doc, err := c.document(ctx, fmt.Sprintf("%s/paper/%d", neuripsBase, year))
	if err != nil {
		return nil, err
	}

	list := doc.Find("ul").Eq(1)
	if list.Length() == 0 {
		return nil, fmt.Errorf("NeurIPS %d: paper list not found", year)
	}

	var papers []types.Paper
	list.Find("li").Each(func(_ int, li *goquery.Selection) {
		a := li.Find("a").First()
		href, _ := a.Attr("href")
		papers = append(papers, types.Paper{
			Authors:    li.Find("i").First().Text(),
			Title:      a.Text(),
			SourceLink: neuripsBase + href,
		})
	})
	return papers, nil
}
