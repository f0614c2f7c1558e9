// Copyright (c) 2026 Komikan. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package scrape

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/taibuivan/komikan/internal/fetch"
)

// errNoPage marks a clean 404 from a source; scrapers turn it into (nil, nil).
var errNoPage = errors.New("scrape: page does not exist")

// site bundles the transport pieces every scraper needs.
type site struct {
	fetcher    *fetch.Fetcher
	downloader *fetch.Downloader
	logger     *slog.Logger
}

// document fetches rawURL and parses it into a goquery document. The
// transport layer already retries network failures; the 3 attempts here
// cover truncated or unparseable bodies that arrive with a 200.
func (s *site) document(ctx context.Context, rawURL string) (*goquery.Document, error) {
	var lastErr error

	for attempt := 0; attempt < 3; attempt++ {
		resp, err := s.fetcher.Get(ctx, rawURL)
		if err != nil {
			return nil, &Error{URL: rawURL, Err: err}
		}

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return nil, errNoPage
		case resp.StatusCode != http.StatusOK:
			return nil, &Error{URL: rawURL, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
		}

		if len(resp.Body) == 0 {
			lastErr = errors.New("empty body")
			continue
		}

		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
		if err != nil {
			lastErr = err
			continue
		}

		return doc, nil
	}

	return nil, &Error{URL: rawURL, Err: fmt.Errorf("document not parseable after 3 attempts: %w", lastErr)}
}

// downloadImage resolves src against pageURL and stages the image.
func (s *site) downloadImage(ctx context.Context, pageURL, src string) (*fetch.StagedFile, error) {
	resolved, err := resolveURL(pageURL, src)
	if err != nil {
		return nil, &Error{URL: pageURL, Err: err}
	}

	staged, err := s.downloader.Download(ctx, resolved)
	if err != nil {
		return nil, &Error{URL: resolved, Err: err}
	}

	return staged, nil
}

// resolveURL turns a possibly relative href into an absolute URL.
func resolveURL(base, ref string) (string, error) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", err
	}

	refURL, err := url.Parse(ref)
	if err != nil {
		return "", err
	}

	return baseURL.ResolveReference(refURL).String(), nil
}

// parseDate assembles YYYY-MM-DD from the origin's split date fields.
func parseDate(year, month, day string) (time.Time, error) {
	return time.Parse("2006-1-2", fmt.Sprintf("%s-%s-%s", year, month, day))
}
