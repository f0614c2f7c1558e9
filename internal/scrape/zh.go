// Copyright (c) 2026 Komikan. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package scrape

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/errgroup"

	"github.com/taibuivan/komikan/internal/fetch"
)

// Chinese scrapes the Chinese mirror. Its archive is paginated and
// permalinks are internal ids with no relation to issue numbers, so the
// pages are fanned out concurrently once per process to build a
// number-to-permalink index; any page failure fails the whole discovery.
type Chinese struct {
	site
	baseURL string

	mu    sync.Mutex
	index map[int]string
}

// zhEntryRe matches archive entry text of the form "123: 标题".
var zhEntryRe = regexp.MustCompile(`^(\d+)[::]`)

func NewChinese(fetcher *fetch.Fetcher, downloader *fetch.Downloader, baseURL string, logger *slog.Logger) *Chinese {
	return &Chinese{
		site:    site{fetcher: fetcher, downloader: downloader, logger: logger.With(slog.String("scraper", "zh"))},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (c *Chinese) Language() string { return "zh" }

func (c *Chinese) Latest(ctx context.Context) (int, error) {
	index, err := c.loadIndex(ctx)
	if err != nil {
		return 0, err
	}

	latest := 0
	for n := range index {
		if n > latest {
			latest = n
		}
	}
	return latest, nil
}

func (c *Chinese) ScrapeOne(ctx context.Context, number int) (*TranslationScraped, error) {
	index, err := c.loadIndex(ctx)
	if err != nil {
		return nil, err
	}

	pageURL, ok := index[number]
	if !ok {
		return nil, nil
	}

	doc, err := c.document(ctx, pageURL)
	if errors.Is(err, errNoPage) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	img := doc.Find(".comic-body img").First()
	src, ok := img.Attr("src")
	if !ok {
		return nil, &Error{URL: pageURL, Err: errors.New("strip page has no comic image")}
	}

	staged, err := c.downloadImage(ctx, pageURL, src)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(doc.Find(".comic-body h1").First().Text())
	title = strings.TrimSpace(zhEntryRe.ReplaceAllString(title, ""))
	tooltip, _ := img.Attr("title")

	return &TranslationScraped{
		Number:    number,
		Language:  c.Language(),
		Title:     title,
		Tooltip:   strings.TrimSpace(tooltip),
		SourceURL: pageURL,
		Image:     staged,
	}, nil
}

// loadIndex discovers every permalink by walking all archive pages
// concurrently. All pages must succeed; a partial index would silently
// hide translated issues.
func (c *Chinese) loadIndex(ctx context.Context) (map[int]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.index != nil {
		return c.index, nil
	}

	firstURL := c.archivePageURL(1)

	first, err := c.document(ctx, firstURL)
	if err != nil {
		return nil, err
	}

	pageCount := c.pageCount(first)

	indexes := make([]map[int]string, pageCount)
	indexes[0] = c.entries(first, firstURL)

	g, gctx := errgroup.WithContext(ctx)
	for page := 2; page <= pageCount; page++ {
		g.Go(func() error {
			pageURL := c.archivePageURL(page)
			doc, err := c.document(gctx, pageURL)
			if err != nil {
				return err
			}
			indexes[page-1] = c.entries(doc, pageURL)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := make(map[int]string)
	for _, pageIndex := range indexes {
		for n, link := range pageIndex {
			merged[n] = link
		}
	}

	if len(merged) == 0 {
		return nil, &Error{URL: firstURL, Err: errors.New("archive lists no strips")}
	}

	c.index = merged
	return merged, nil
}

func (c *Chinese) archivePageURL(page int) string {
	return fmt.Sprintf("%s/?lg=cn&page=%d", c.baseURL, page)
}

// pageCount reads the highest page number out of the pagination strip.
func (c *Chinese) pageCount(doc *goquery.Document) int {
	count := 1
	doc.Find(".pagination a").Each(func(_ int, a *goquery.Selection) {
		if n, err := strconv.Atoi(strings.TrimSpace(a.Text())); err == nil && n > count {
			count = n
		}
	})
	return count
}

// entries maps "number: title" archive anchors to their permalinks.
func (c *Chinese) entries(doc *goquery.Document, pageURL string) map[int]string {
	found := make(map[int]string)

	doc.Find("#strip_list a").Each(func(_ int, a *goquery.Selection) {
		m := zhEntryRe.FindStringSubmatch(strings.TrimSpace(a.Text()))
		if m == nil {
			return
		}

		number, err := strconv.Atoi(m[1])
		if err != nil {
			return
		}

		href, ok := a.Attr("href")
		if !ok {
			return
		}

		resolved, err := resolveURL(pageURL, href)
		if err != nil {
			return
		}

		found[number] = resolved
	})

	return found
}
