// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package venue

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/citation-ranker/pkg/types"
)

// overrideBaseURLs points every proceedings site at the test server and
// returns a cleanup function that restores the originals.
func overrideBaseURLs(tsURL string) func() {
	origCVF, origDBLP, origSpringer, origPMLR, origNeurIPS := cvfBase, dblpBase, springerBase, pmlrBase, neuripsBase

	cvfBase = tsURL + "/cvf"
	dblpBase = tsURL + "/dblp"
	springerBase = tsURL + "/springer"
	pmlrBase = tsURL + "/pmlr"
	neuripsBase = tsURL + "/nips"

	return func() {
		cvfBase, dblpBase, springerBase, pmlrBase, neuripsBase = origCVF, origDBLP, origSpringer, origPMLR, origNeurIPS
	}
}

func testCollector() *Collector {
	return NewCollector(types.VenueConfig{
		HTTPConfig: types.HTTPConfig{Timeout: 5 * time.Second, UserAgent: "citation-ranker-test/0.1"},
		Workers:    2,
	}, nil)
}

func serve(t *testing.T, mux *http.ServeMux) {
	t.Helper()
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	t.Cleanup(overrideBaseURLs(ts.URL))
}

func cvfRow(title, href, authors string) string {
	return fmt.Sprintf(`<dt class="ptitle"><br><a href="%s">%s</a></dt>
<dd>[<a href="#">pdf</a>]</dd>
<dd><div class="bibref">@InProceedings{X_CVPR,<br>
author = {%s},<br>
title = {%s},<br>
booktitle = {Proceedings}}</div></dd>`, href, title, authors, title)
}

func TestCollectCVPR(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/cvf/CVPR2018.py", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "citation-ranker-test/0.1", r.Header.Get("User-Agent"))
		fmt.Fprintf(w, "<html><body><dl>%s%s</dl></body></html>",
			cvfRow("Paper A", "content_cvpr_2018/html/A.html", "Alice and Bob"),
			cvfRow("Paper B", "/content_cvpr_2018/html/B.html", "Carol"))
	})
	serve(t, mux)

	papers, err := testCollector().Collect(context.Background(), CVPR, 2018)
	require.NoError(t, err)
	assert.Equal(t, []types.Paper{
		{Authors: "Alice and Bob", Title: "Paper A", SourceLink: cvfBase + "/content_cvpr_2018/html/A.html"},
		{Authors: "Carol", Title: "Paper B", SourceLink: cvfBase + "/content_cvpr_2018/html/B.html"},
	}, papers)
}

func TestCollectICCVByDay(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/cvf/ICCV2019.py", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("day") {
		case "":
			fmt.Fprint(w, `<dl><dd><a href="ICCV2019.py?day=2019-10-29">Day 1</a></dd><dd><a href="ICCV2019.py?day=2019-10-30">Day 2</a></dd></dl>`)
		case "2019-10-29":
			fmt.Fprintf(w, "<dl>%s</dl>", cvfRow("Day One", "content/one.html", "Alice"))
		case "2019-10-30":
			fmt.Fprintf(w, "<dl>%s%s</dl>", cvfRow("Day Two", "content/two.html", "Bob"), cvfRow("Day Two B", "content/three.html", "Carol"))
		}
	})
	serve(t, mux)

	papers, err := testCollector().Collect(context.Background(), ICCV, 2019)
	require.NoError(t, err)
	require.Len(t, papers, 3)
	assert.Equal(t, "Day One", papers[0].Title)
	assert.Equal(t, "Bob", papers[1].Authors)
	assert.Equal(t, cvfBase+"/content/three.html", papers[2].SourceLink)
}

func TestCollectCVFMismatchedRows(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/cvf/CVPR2017.py", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<dl><dt class="ptitle"><a href="a.html">Only title</a></dt></dl>`)
	})
	serve(t, mux)

	_, err := testCollector().Collect(context.Background(), CVPR, 2017)
	assert.ErrorContains(t, err, "1 titles but 0 bibrefs")
}

func TestCollectICLR(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/dblp/search/publ/api", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "toc:db/conf/iclr/iclr2019.bht:", r.URL.Query().Get("q"))
		assert.Equal(t, "1000", r.URL.Query().Get("h"))
		switch r.URL.Query().Get("f") {
		case "0":
			fmt.Fprint(w, `{"result":{"hits":{"@total":"1001","hit":[
				{"info":{"title":"7th International Conference on Learning Representations."}},
				{"info":{"authors":{"author":{"@pid":"1","text":"Alice Smith 0001"}},"title":"Solo Paper.","ee":"https://openreview.net/forum?id=solo"}},
				{"info":{"authors":{"author":[{"text":"Bob Jones"},{"text":"Carol White 0002"}]},"title":"Pair Paper.","ee":["https://openreview.net/forum?id=pair","https://example.org/mirror"]}}
			]}}}`)
		case "1000":
			fmt.Fprint(w, `{"result":{"hits":{"@total":"1001","hit":[
				{"info":{"authors":{"author":{"text":"Dan Brown"}},"title":"Last Paper.","ee":"https://openreview.net/forum?id=last"}}
			]}}}`)
		default:
			t.Errorf("unexpected offset %q", r.URL.Query().Get("f"))
		}
	})
	serve(t, mux)

	papers, err := testCollector().Collect(context.Background(), ICLR, 2019)
	require.NoError(t, err)
	assert.Equal(t, []types.Paper{
		{Authors: "Alice Smith", Title: "Solo Paper.", SourceLink: "https://openreview.net/forum?id=solo"},
		{Authors: "Bob Jones, Carol White", Title: "Pair Paper.", SourceLink: "https://openreview.net/forum?id=pair"},
		{Authors: "Dan Brown", Title: "Last Paper.", SourceLink: "https://openreview.net/forum?id=last"},
	}, papers)
}

func TestCollectECCV(t *testing.T) {
	var springerHits atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/dblp/db/conf/eccv/index.html", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintf(w, `<ul>
<li id="conf/eccv/2018-1"><span class="title">Computer Vision - ECCV 2018, Part I</span><nav><ul><li class="ee"><a href="%[1]s/book/1">Springer</a></li></ul></nav></li>
<li id="conf/eccv/2018-2"><span class="title">Computer Vision - ECCV 2018, Part II</span><nav><ul><li class="ee"><a href="%[1]s/book/2">Springer</a></li></ul></nav></li>
<li id="conf/eccv/2018w-1"><span class="title">Computer Vision - ECCV 2018 Workshops, Part I</span><nav><ul><li class="ee"><a href="%[1]s/book/w">Springer</a></li></ul></nav></li>
<li id="conf/eccv/2016-1"><span class="title">Computer Vision - ECCV 2016, Part I</span><nav><ul><li class="ee"><a href="%[1]s/book/old">Springer</a></li></ul></nav></li>
</ul>`, springerBase)
	})
	volume := func(titles ...string) http.HandlerFunc {
		return func(w http.ResponseWriter, _ *http.Request) {
			springerHits.Add(1)
			fmt.Fprint(w, "<ol>")
			for _, title := range titles {
				fmt.Fprintf(w, `<li class="chapter-item content-type-list__item">
<a class="content-type-list__link u-interface-link" href="/chapter/%s">%s</a>
<div class="content-type-list__text" data-test="author-text">Author of %s</div>
</li>`, title, title, title)
			}
			fmt.Fprint(w, "</ol>")
		}
	}
	mux.HandleFunc("/springer/book/1", volume("p1", "p2"))
	mux.HandleFunc("/springer/book/2", volume("p3"))
	mux.HandleFunc("/springer/book/w", func(w http.ResponseWriter, _ *http.Request) {
		t.Error("workshop volume must not be fetched")
	})
	mux.HandleFunc("/springer/book/old", func(w http.ResponseWriter, _ *http.Request) {
		t.Error("other edition must not be fetched")
	})
	serve(t, mux)

	papers, err := testCollector().Collect(context.Background(), ECCV, 2018)
	require.NoError(t, err)
	require.Len(t, papers, 3)

	var titles []string
	for _, p := range papers {
		titles = append(titles, p.Title)
	}
	assert.Equal(t, []string{"p1", "p2", "p3"}, titles, "volume order preserved")
	assert.Equal(t, "Author of p3", papers[2].Authors)
	assert.Equal(t, springerBase+"/chapter/p1", papers[0].SourceLink)
	assert.Equal(t, int32(2), springerHits.Load())
}

func TestCollectECCVVolumeFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/dblp/db/conf/eccv/index.html", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintf(w, `<ul><li id="conf/eccv/2020-1"><span class="title">ECCV 2020</span><ul><li class="ee"><a href="%s/book/missing">Springer</a></li></ul></li></ul>`, springerBase)
	})
	serve(t, mux)

	_, err := testCollector().Collect(context.Background(), ECCV, 2020)
	assert.ErrorContains(t, err, "HTTP 404")
}

func TestCollectICML(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/pmlr/v80", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<div class="paper"><p class="title">Paper A</p>
<p class="details"><span class="authors">Alice&nbsp;Smith, Bob&nbsp;Jones</span>; PMLR 80:1-10</p>
<p class="links">[<a href="http://proceedings.mlr.press/v80/a18a.html">abs</a>][<a href="http://proceedings.mlr.press/v80/a18a/a18a.pdf">Download PDF</a>]</p></div>
<div class="paper"><p class="title">Paper B</p>
<p class="details"><span class="authors">Carol&nbsp;White</span>; PMLR 80:11-20</p>
<p class="links">[<a href="http://proceedings.mlr.press/v80/b18a.html">abs</a>]</p></div>`)
	})
	serve(t, mux)

	papers, err := testCollector().Collect(context.Background(), ICML, 2018)
	require.NoError(t, err)
	assert.Equal(t, []types.Paper{
		{Authors: "Alice Smith, Bob Jones", Title: "Paper A", SourceLink: "http://proceedings.mlr.press/v80/a18a.html"},
		{Authors: "Carol White", Title: "Paper B", SourceLink: "http://proceedings.mlr.press/v80/b18a.html"},
	}, papers)
}

func TestCollectNeurIPS(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/nips/paper/2019", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<ul><li><a href="/">Home</a></li></ul>
<ul>
<li><a href="/paper/1-first">First Paper</a> <i>Alice, Bob</i></li>
<li><a href="/paper/2-second">Second Paper</a> <i>Carol</i></li>
</ul>`)
	})
	serve(t, mux)

	papers, err := testCollector().Collect(context.Background(), NeurIPS, 2019)
	require.NoError(t, err)
	assert.Equal(t, []types.Paper{
		{Authors: "Alice, Bob", Title: "First Paper", SourceLink: neuripsBase + "/paper/1-first"},
		{Authors: "Carol", Title: "Second Paper", SourceLink: neuripsBase + "/paper/2-second"},
	}, papers)
}

func TestCollectRejectsYearBeforeFetching(t *testing.T) {
	var hits atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(http.ResponseWriter, *http.Request) { hits.Add(1) })
	serve(t, mux)

	_, err := testCollector().Collect(context.Background(), ICCV, 2018)
	assert.ErrorIs(t, err, ErrYearOutOfRange)
	assert.Zero(t, hits.Load())
}

func TestCollectHTTPError(t *testing.T) {
	serve(t, http.NewServeMux())

	_, err := testCollector().Collect(context.Background(), NeurIPS, 2000)
	assert.ErrorContains(t, err, "HTTP 404")
}

func TestHostLimiterSpacesRequests(t *testing.T) {
	h := newHostLimiter(40 * time.Millisecond)
	ctx := context.Background()

	start := time.Now()
	for range 3 {
		require.NoError(t, h.wait(ctx, "https://dblp.org/a"))
	}
	assert.GreaterOrEqual(t, time.Since(start), 70*time.Millisecond)

	// Other hosts have their own budget.
	start = time.Now()
	require.NoError(t, h.wait(ctx, "https://papers.nips.cc/b"))
	assert.Less(t, time.Since(start), 30*time.Millisecond)
}

func TestHostLimiterRejectsMissingHost(t *testing.T) {
	err := newHostLimiter(0).wait(context.Background(), "/relative/path")
	assert.Error(t, err)
}
