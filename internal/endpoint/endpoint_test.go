package endpoint

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRotateThroughFourVariants(t *testing.T) {
	r, err := New(DefaultHosts, "")
	require.NoError(t, err)
	assert.Equal(t, 0, r.Index())
	assert.Equal(t, "scholar.google.com", r.Current())

	for want := 1; want <= 3; want++ {
		require.True(t, r.Rotate(), "rotation %d", want)
		assert.Equal(t, want, r.Index())
	}
	assert.Equal(t, "scholar.google.ca", r.Current())

	assert.False(t, r.Rotate(), "fourth rotation must signal exhaustion")
	assert.Equal(t, 3, r.Index(), "cursor stays on the last host")
}

func TestReset(t *testing.T) {
	r, err := New([]string{"a", "b"}, "")
	require.NoError(t, err)
	require.True(t, r.Rotate())
	r.Reset()
	assert.Equal(t, "a", r.Current())
}

func TestNewRejectsBadInput(t *testing.T) {
	_, err := New(nil, "")
	assert.ErrorIs(t, err, ErrNoHosts)

	_, err = New([]string{"a", " "}, "")
	assert.Error(t, err)

	_, err = New([]string{"a"}, "https://%s/search")
	assert.Error(t, err)
}

func TestNewCopiesHosts(t *testing.T) {
	hosts := []string{"a", "b"}
	r, err := New(hosts, "")
	require.NoError(t, err)
	hosts[0] = "z"
	assert.Equal(t, "a", r.Current())
}

func TestURL(t *testing.T) {
	r, err := New(DefaultHosts, "")
	require.NoError(t, err)

	link := "https://openaccess.thecvf.com/content_cvpr_2016/html/He_Deep_CVPR_2016_paper.html"
	got := r.URL(LinkTerm(link))
	assert.Equal(t,
		"https://scholar.google.com/scholar?hl=en&as_sdt=0%2C5&q=https%3A%2F%2Fopenaccess.thecvf.com%2Fcontent_cvpr_2016%2Fhtml%2FHe_Deep_CVPR_2016_paper.html&num=1",
		got)

	require.True(t, r.Rotate())
	assert.Equal(t,
		"https://scholar.google.co.kr/scholar?hl=en&as_sdt=0%2C5&q=%22Deep+Residual+Learning%22&num=1",
		r.URL(TitleTerm("Deep Residual Learning")))
}

func TestTerms(t *testing.T) {
	assert.Equal(t, "http%3A%2F%2Fx.org%2Fa", LinkTerm("http://x.org/a"))
	assert.Equal(t, "%22a+b+c%22", TitleTerm("a b c"))
	assert.Equal(t, "%22%22", TitleTerm(""))
	assert.Equal(t, "%22Q%26A%3A+Learning+%231+to+Rank+%2B+Sort%22", TitleTerm("Q&A: Learning #1 to Rank + Sort"))
}

func TestTitleQuerySurvivesReservedCharacters(t *testing.T) {
	r, err := New(DefaultHosts, "")
	require.NoError(t, err)

	title := "Q&A: Learning #1 to Rank + Sort"
	u, err := url.Parse(r.URL(TitleTerm(title)))
	require.NoError(t, err)

	assert.Empty(t, u.Fragment)
	q := u.Query()
	assert.Equal(t, `"`+title+`"`, q.Get("q"))
	assert.Equal(t, "1", q.Get("num"))
	assert.Equal(t, "en", q.Get("hl"))
}
