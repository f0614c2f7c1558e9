// Copyright (c) 2026 Komikan. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package scrape

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/taibuivan/komikan/internal/fetch"
)

// Spanish scrapes the Spanish mirror. Strip pages are addressed by slug,
// not number; the archive enumerates them and the number is recovered from
// each page's link back to the origin site.
type Spanish struct {
	site
	baseURL string
}

var esOriginLinkRe = regexp.MustCompile(`xkcd\.com/(\d+)`)

func NewSpanish(fetcher *fetch.Fetcher, downloader *fetch.Downloader, baseURL string, logger *slog.Logger) *Spanish {
	return &Spanish{
		site:    site{fetcher: fetcher, downloader: downloader, logger: logger.With(slog.String("scraper", "es"))},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (s *Spanish) Language() string { return "es" }

// Links enumerates every strip URL in the archive, newest first.
func (s *Spanish) Links(ctx context.Context) ([]string, error) {
	archiveURL := s.baseURL + "/archive/"

	doc, err := s.document(ctx, archiveURL)
	if err != nil {
		return nil, err
	}

	var links []string
	doc.Find("#archive-ul ul li a").Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok {
			return
		}
		resolved, err := resolveURL(archiveURL, href)
		if err != nil {
			return
		}
		links = append(links, resolved)
	})

	if len(links) == 0 {
		return nil, &Error{URL: archiveURL, Err: errors.New("archive lists no strips")}
	}

	return links, nil
}

/*
ScrapeLink extracts one strip page.

The issue number comes from the page's link back to the origin site. One
strip carries a wrong back-link upstream: the page titled "Geografía"
points at the wrong issue, so its number is pinned to 1472.
*/
func (s *Spanish) ScrapeLink(ctx context.Context, stripURL string) (*TranslationScraped, error) {
	doc, err := s.document(ctx, stripURL)
	if errors.Is(err, errNoPage) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(doc.Find("#middleContent h1").First().Text())

	number, err := s.issueNumber(doc, title)
	if err != nil {
		return nil, &Error{URL: stripURL, Err: err}
	}

	img := doc.Find("#middleContent img").First()
	src, ok := img.Attr("src")
	if !ok {
		return nil, &Error{URL: stripURL, Err: errors.New("strip page has no comic image")}
	}

	staged, err := s.downloadImage(ctx, stripURL, src)
	if err != nil {
		return nil, err
	}

	tooltip, _ := img.Attr("title")

	return &TranslationScraped{
		Number:    number,
		Language:  s.Language(),
		Title:     title,
		Tooltip:   strings.TrimSpace(tooltip),
		SourceURL: stripURL,
		Image:     staged,
	}, nil
}

func (s *Spanish) issueNumber(doc *goquery.Document, title string) (int, error) {
	if title == "Geografía" {
		return 1472, nil
	}

	var number int
	doc.Find("a[href*='xkcd.com/']").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		m := esOriginLinkRe.FindStringSubmatch(href)
		if m == nil {
			return true
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return true
		}
		number = n
		return false
	})

	if number == 0 {
		return 0, errors.New("no origin back-link on strip page")
	}

	return number, nil
}
