// Copyright (c) 2026 Komikan. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package scrape

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/taibuivan/komikan/internal/fetch"
)

// French scrapes the French mirror. Titles and tooltips are not in the
// page HTML at all; they ship inside the site's JS bundle as a
// number-indexed map, extracted once per process with a regex and cached.
type French struct {
	site
	baseURL string

	mu      sync.Mutex
	catalog map[int]frEntry
}

type frEntry struct {
	title   string
	tooltip string
}

var (
	frBundleRe = regexp.MustCompile(`src="(/static/js/main\.[0-9a-f]+\.js)"`)

	// frEntryRe matches `"123":["title","tooltip"]` inside the bundle.
	frEntryRe = regexp.MustCompile(`"(\d+)":\["((?:\\.|[^"\\])*)","((?:\\.|[^"\\])*)"\]`)
)

func NewFrench(fetcher *fetch.Fetcher, downloader *fetch.Downloader, baseURL string, logger *slog.Logger) *French {
	return &French{
		site:    site{fetcher: fetcher, downloader: downloader, logger: logger.With(slog.String("scraper", "fr"))},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (f *French) Language() string { return "fr" }

// Latest returns the highest translated number in the bundle catalog.
func (f *French) Latest(ctx context.Context) (int, error) {
	catalog, err := f.loadCatalog(ctx)
	if err != nil {
		return 0, err
	}

	latest := 0
	for n := range catalog {
		if n > latest {
			latest = n
		}
	}
	return latest, nil
}

func (f *French) ScrapeOne(ctx context.Context, number int) (*TranslationScraped, error) {
	catalog, err := f.loadCatalog(ctx)
	if err != nil {
		return nil, err
	}

	entry, ok := catalog[number]
	if !ok {
		return nil, nil
	}

	pageURL := fmt.Sprintf("%s/%d", f.baseURL, number)

	doc, err := f.document(ctx, pageURL)
	if errors.Is(err, errNoPage) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	src, ok := doc.Find("#comic img").First().Attr("src")
	if !ok {
		return nil, &Error{URL: pageURL, Err: errors.New("strip page has no comic image")}
	}

	staged, err := f.downloadImage(ctx, pageURL, src)
	if err != nil {
		return nil, err
	}

	return &TranslationScraped{
		Number:    number,
		Language:  f.Language(),
		Title:     entry.title,
		Tooltip:   entry.tooltip,
		SourceURL: pageURL,
		Image:     staged,
	}, nil
}

// loadCatalog fetches and parses the JS bundle on first use.
func (f *French) loadCatalog(ctx context.Context) (map[int]frEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.catalog != nil {
		return f.catalog, nil
	}

	resp, err := f.fetcher.Get(ctx, f.baseURL+"/")
	if err != nil {
		return nil, &Error{URL: f.baseURL, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &Error{URL: f.baseURL, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	m := frBundleRe.FindSubmatch(resp.Body)
	if m == nil {
		return nil, &Error{URL: f.baseURL, Err: errors.New("front page references no JS bundle")}
	}

	bundleURL := f.baseURL + string(m[1])

	bundle, err := f.fetcher.Get(ctx, bundleURL)
	if err != nil {
		return nil, &Error{URL: bundleURL, Err: err}
	}
	if bundle.StatusCode != http.StatusOK {
		return nil, &Error{URL: bundleURL, Err: fmt.Errorf("unexpected status %d", bundle.StatusCode)}
	}

	catalog := make(map[int]frEntry)
	for _, hit := range frEntryRe.FindAllSubmatch(bundle.Body, -1) {
		n, err := strconv.Atoi(string(hit[1]))
		if err != nil {
			continue
		}
		catalog[n] = frEntry{
			title:   unescapeJS(string(hit[2])),
			tooltip: unescapeJS(string(hit[3])),
		}
	}

	if len(catalog) == 0 {
		return nil, &Error{URL: bundleURL, Err: errors.New("bundle carries no comic catalog")}
	}

	f.catalog = catalog
	return catalog, nil
}

// unescapeJS decodes the JS string escapes that occur in the bundle map.
func unescapeJS(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}

	unquoted, err := strconv.Unquote(`"` + s + `"`)
	if err != nil {
		return s
	}
	return unquoted
}
