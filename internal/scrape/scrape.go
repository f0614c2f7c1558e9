// Copyright (c) 2026 Komikan. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package scrape extracts structured comic records from the origin site, the
explain wiki, and the five translation mirrors.

Architecture:

	ingest ──> Origin ───────────┐
	       ──> Explain ──────────┤
	       ──> DE/ES/FR/RU/ZH ───┼──> site helper ──> fetch.Fetcher
	                             │        │
	                             │        └──> fetch.Downloader (images)
	                             └──> RunConcurrently (chunked fan-out)

Each scraper owns the layout quirks of exactly one source. A scraper returns
(nil, nil) when the source simply has no record for the requested issue;
extraction failures come back as *Error wrapping the cause so callers can
log-and-skip one issue without aborting the scan.
*/
package scrape

import (
	"context"
	"fmt"
	"time"

	"github.com/taibuivan/komikan/internal/fetch"
)

// ComicScraped is the origin record for one issue.
type ComicScraped struct {
	Number          int
	Title           string
	Tooltip         string
	PublicationDate time.Time
	ImageURL        string
	ClickURL        string
	IsInteractive   bool
}

// ExplainScraped is the enrichment record from the explain wiki.
type ExplainScraped struct {
	URL            string
	Tags           []string
	TranscriptHTML string
}

// TranslationScraped is one translated issue from a mirror, with its image
// already staged in the temp area.
type TranslationScraped struct {
	Number            int
	Language          string
	Title             string
	Tooltip           string
	TranslatorComment string
	SourceURL         string
	Image             *fetch.StagedFile
}

// TranslationScraper is implemented by mirrors addressable by issue number.
//
// ScrapeOne returns (nil, nil) when the mirror has not translated the issue.
type TranslationScraper interface {
	Language() string
	Latest(ctx context.Context) (int, error)
	ScrapeOne(ctx context.Context, number int) (*TranslationScraped, error)
}

// LinkScraper is implemented by mirrors that only enumerate strip pages;
// the issue number is discovered while scraping the page itself.
type LinkScraper interface {
	Language() string
	Links(ctx context.Context) ([]string, error)
	ScrapeLink(ctx context.Context, stripURL string) (*TranslationScraped, error)
}

// Error reports a failed extraction from a source page.
type Error struct {
	URL string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("scrape: extracting %s failed: %v", e.URL, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
