// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package venue

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/citation-ranker/pkg/types"
)

var bibAuthor = regexp.MustCompile(`author = \{(.*?)\},\s*title`)

// cvf lists CVPR and ICCV papers from the CVF open-access site. Editions
// organized by poster day have no rows on the main page; their day pages
// are followed instead.
func (c *Collector) cvf(ctx context.Context, conf Conference, year int) ([]types.Paper, error) {
	doc, err := c.document(ctx, fmt.Sprintf("%s/%s%d.py", cvfBase, conf, year))
	if err != nil {
		return nil, err
	}

	papers, err := parseCVF(doc)
	if err != nil || len(papers) > 0 {
		return papers, err
	}

	var days []string
	doc.Find("dd").Each(func(_ int, dd *goquery.Selection) {
		if href, ok := dd.Find("a").First().Attr("href"); ok {
			days = append(days, href)
		}
	})

	for _, href := range days {
		dayDoc, err := c.document(ctx, cvfLink(href))
		if err != nil {
			return nil, err
		}
		dayPapers, err := parseCVF(dayDoc)
		if err != nil {
			return nil, err
		}
		papers = append(papers, dayPapers...)
	}
	return papers, nil
}

// parseCVF pairs each dt.ptitle with the div.bibref at the same position.
func parseCVF(doc *goquery.Document) ([]types.Paper, error) {
	titles := doc.Find("dt.ptitle")
	bibs := doc.Find("div.bibref")
	if titles.Length() != bibs.Length() {
		return nil, fmt.Errorf("found %d titles but %d bibrefs", titles.Length(), bibs.Length())
	}

	papers := make([]types.Paper, 0, titles.Length())
	for i := range titles.Length() {
		a := titles.Eq(i).Find("a").First()
		m := bibAuthor.FindStringSubmatch(bibs.Eq(i).Text())
		if m == nil {
			return nil, fmt.Errorf("no author line in bibref %d", i+1)
		}
		href, _ := a.Attr("href")
		papers = append(papers, types.Paper{
			Authors:    m[1],
			Title:      strings.TrimSpace(a.Text()),
			SourceLink: cvfLink(href),
		})
	}
	return papers, nil
}

func cvfLink(href string) string {
	return cvfBase + "/" + strings.TrimPrefix(href, "/")
}
