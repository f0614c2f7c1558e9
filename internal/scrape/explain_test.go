// Copyright (c) 2026 Komikan. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package scrape_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/komikan/internal/scrape"
)

const explainArticleHTML = `<html><body>
<ul><li id="ca-nstab-main"><a href="/wiki/index.php/1234:_Douglas_Engelbart_(1925-2013)">Page</a></li></ul>
<h2><span id="Explanation">Explanation</span></h2>
<p>Some explanation text.</p>
<h2><span id="Transcript">Transcript</span></h2>
<table><tr><td>This transcript is incomplete. Please help editing it!</td></tr></table>
<p>[A man stands at a desk.]</p>
<p><br/></p>
<dl><dd>Man: Hello.</dd></dl>
<h2><span id="Discussion">Discussion</span></h2>
<p>Talk page chatter that must not leak into the transcript.</p>
<div id="mw-normal-catlinks"><ul>
<li><a>Comics from 2013</a></li>
<li><a>Computers</a></li>
<li><a>computers</a></li>
<li><a>History</a></li>
<li><a>All comics</a></li>
<li><a>Biology</a></li>
</ul></div>
</body></html>`

func explainServer(t *testing.T, article string) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/wiki/index.php/1234", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(article))
	})
	mux.HandleFunc("/wiki/index.php/9999", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body><div class="noarticletext"><p>There is currently no text in this page.</p></div></body></html>`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return srv
}

/*
TestExplain_ScrapeOne_TagsFilteredAndSorted checks maintenance categories
are dropped and the rest is deduplicated case-insensitively and sorted.
*/
func TestExplain_ScrapeOne_TagsFilteredAndSorted(t *testing.T) {
	srv := explainServer(t, explainArticleHTML)

	explain := scrape.NewExplain(newTestFetcher(t), srv.URL, testLogger())

	got, err := explain.ScrapeOne(context.Background(), 1234)
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, []string{"Biology", "Computers", "History"}, got.Tags)
	assert.Contains(t, got.URL, "/wiki/index.php/1234:_Douglas_Engelbart_(1925-2013)")
}

/*
TestExplain_ScrapeOne_TranscriptBoundaries checks the transcript walk:
stops at the Discussion header, skips the incomplete-transcript table, and
strips empty paragraph artifacts.
*/
func TestExplain_ScrapeOne_TranscriptBoundaries(t *testing.T) {
	srv := explainServer(t, explainArticleHTML)

	explain := scrape.NewExplain(newTestFetcher(t), srv.URL, testLogger())

	got, err := explain.ScrapeOne(context.Background(), 1234)
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Contains(t, got.TranscriptHTML, "A man stands at a desk.")
	assert.Contains(t, got.TranscriptHTML, "Man: Hello.")
	assert.NotContains(t, got.TranscriptHTML, "transcript is incomplete")
	assert.NotContains(t, got.TranscriptHTML, "Talk page chatter")
	assert.NotContains(t, got.TranscriptHTML, "<p><br/></p>")
}

/*
TestExplain_ScrapeOne_OversizedTranscriptDiscarded checks the noise cutoff:
past 25k characters the transcript comes back empty.
*/
func TestExplain_ScrapeOne_OversizedTranscriptDiscarded(t *testing.T) {
	oversized := strings.Replace(explainArticleHTML,
		"<dl><dd>Man: Hello.</dd></dl>",
		"<p>"+strings.Repeat("noise ", 5000)+"</p>", 1)

	srv := explainServer(t, oversized)

	explain := scrape.NewExplain(newTestFetcher(t), srv.URL, testLogger())

	got, err := explain.ScrapeOne(context.Background(), 1234)
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Empty(t, got.TranscriptHTML)
}

/*
TestExplain_ScrapeOne_NoArticle checks the missing-article marker maps to
(nil, nil).
*/
func TestExplain_ScrapeOne_NoArticle(t *testing.T) {
	srv := explainServer(t, explainArticleHTML)

	explain := scrape.NewExplain(newTestFetcher(t), srv.URL, testLogger())

	got, err := explain.ScrapeOne(context.Background(), 9999)
	require.NoError(t, err)
	assert.Nil(t, got)
}

/*
TestExplain_Latest parses issue numbers out of the recent-changes feed.
*/
func TestExplain_Latest(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/wiki/index.php/Special:RecentChanges", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body>
			<a class="mw-changeslist-title">3120: Dehumidifier</a>
			<a class="mw-changeslist-title">3123: Collatz</a>
			<a class="mw-changeslist-title">3101: Stargazing 5</a>
			<a class="mw-changeslist-title">Category cleanup</a>
		</body></html>`))
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	explain := scrape.NewExplain(newTestFetcher(t), srv.URL, testLogger())

	latest, err := explain.Latest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3123, latest)
}
