// Copyright (c) 2026 Komikan. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package scrape_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/komikan/internal/fetch"
	"github.com/taibuivan/komikan/internal/scrape"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestFetcher(t *testing.T) *fetch.Fetcher {
	t.Helper()

	f := fetch.New(fetch.Options{
		MaxInflight: 4,
		RetryCount:  1,
		RetryDelay:  time.Millisecond,
		ClientTTL:   time.Minute,
	}, testLogger())
	t.Cleanup(f.Close)

	return f
}

/*
TestOrigin_ScrapeOne_404Synthesized checks that issue 404 is answered from
a built-in placeholder without any network traffic.
*/
func TestOrigin_ScrapeOne_404Synthesized(t *testing.T) {
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	origin := scrape.NewOrigin(newTestFetcher(t), nil, srv.URL, testLogger())

	got, err := origin.ScrapeOne(context.Background(), 404)
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, 404, got.Number)
	assert.Equal(t, "404: Not Found", got.Title)
	assert.Equal(t, time.Date(2008, time.April, 1, 0, 0, 0, 0, time.UTC), got.PublicationDate)
	assert.Equal(t, int32(0), calls.Load(), "issue 404 must not hit the network")
}

/*
TestOrigin_ScrapeOne_PlainImage checks the common case: metadata parsed,
date assembled, image taken from the img field when no better source exists.
*/
func TestOrigin_ScrapeOne_PlainImage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/614/info.0.json", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{
			"num": 614, "year": "2009", "month": "7", "day": "24",
			"title": "Woodpecker &amp; Friends", "safe_title": "Woodpecker",
			"alt": "If you don't have an extension cord...",
			"img": "https://imgs.xkcd.com/comics/woodpecker.png",
			"link": ""
		}`))
	})
	mux.HandleFunc("/614/", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><div id="comic"><img src="//imgs.xkcd.com/comics/woodpecker.png"/></div></html>`))
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	origin := scrape.NewOrigin(newTestFetcher(t), nil, srv.URL, testLogger())

	got, err := origin.ScrapeOne(context.Background(), 614)
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, 614, got.Number)
	assert.Equal(t, "Woodpecker & Friends", got.Title, "title must be entity-unescaped")
	assert.Equal(t, "If you don't have an extension cord...", got.Tooltip)
	assert.Equal(t, time.Date(2009, time.July, 24, 0, 0, 0, 0, time.UTC), got.PublicationDate)
	assert.Equal(t, "https://imgs.xkcd.com/comics/woodpecker.png", got.ImageURL)
	assert.False(t, got.IsInteractive)
	assert.Empty(t, got.ClickURL)
}

/*
TestOrigin_ScrapeOne_Srcset2x checks that a 2x srcset candidate on the
comic page wins over the plain img field.
*/
func TestOrigin_ScrapeOne_Srcset2x(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/2000/info.0.json", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{
			"num": 2000, "year": "2018", "month": "5", "day": "30",
			"title": "xkcd Phone 2000", "alt": "",
			"img": "https://imgs.xkcd.com/comics/xkcd_phone_2000.png",
			"link": ""
		}`))
	})
	mux.HandleFunc("/2000/", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><div id="comic">
			<img src="//imgs.xkcd.com/comics/xkcd_phone_2000.png"
			     srcset="//imgs.xkcd.com/comics/xkcd_phone_2000_2x.png 2x"/>
		</div></html>`))
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	origin := scrape.NewOrigin(newTestFetcher(t), nil, srv.URL, testLogger())

	got, err := origin.ScrapeOne(context.Background(), 2000)
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Contains(t, got.ImageURL, "xkcd_phone_2000_2x.png")
}

/*
TestOrigin_ScrapeOne_MissingIssue checks that an issue past the latest
comes back as (nil, nil) rather than an error.
*/
func TestOrigin_ScrapeOne_MissingIssue(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	origin := scrape.NewOrigin(newTestFetcher(t), nil, srv.URL, testLogger())

	got, err := origin.ScrapeOne(context.Background(), 99999)
	require.NoError(t, err)
	assert.Nil(t, got)
}

/*
TestOrigin_ScrapeOne_Interactive checks the extra_parts flag mapping.
*/
func TestOrigin_ScrapeOne_Interactive(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/1608/info.0.json", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{
			"num": 1608, "year": "2015", "month": "11", "day": "24",
			"title": "Hoverboard", "alt": "",
			"img": "https://imgs.xkcd.com/comics/hoverboard.png",
			"link": "", "extra_parts": {"inset": "hoverboard.png"}
		}`))
	})
	mux.HandleFunc("/1608/", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><div id="comic"></div></html>`))
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	origin := scrape.NewOrigin(newTestFetcher(t), nil, srv.URL, testLogger())

	got, err := origin.ScrapeOne(context.Background(), 1608)
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.True(t, got.IsInteractive)
}

/*
TestOrigin_Latest reads the newest number from the bare metadata endpoint.
*/
func TestOrigin_Latest(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/info.0.json", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"num": 3123, "year": "2026", "month": "8", "day": "28", "title": "Latest", "img": "", "link": ""}`))
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	origin := scrape.NewOrigin(newTestFetcher(t), nil, srv.URL, testLogger())

	latest, err := origin.Latest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3123, latest)
}
