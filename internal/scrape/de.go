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

	"github.com/taibuivan/komikan/internal/fetch"
)

// German scrapes the German mirror. Strip pages live at /<number>/ and the
// front page always shows the newest strip with a permalink to itself.
type German struct {
	site
	baseURL string
}

var dePermalinkRe = regexp.MustCompile(`/(\d+)/?$`)

func NewGerman(fetcher *fetch.Fetcher, downloader *fetch.Downloader, baseURL string, logger *slog.Logger) *German {
	return &German{
		site:    site{fetcher: fetcher, downloader: downloader, logger: logger.With(slog.String("scraper", "de"))},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (g *German) Language() string { return "de" }

// Latest reads the permalink of the strip shown on the front page.
func (g *German) Latest(ctx context.Context) (int, error) {
	doc, err := g.document(ctx, g.baseURL+"/")
	if err != nil {
		return 0, err
	}

	href, ok := doc.Find("a#permalink").First().Attr("href")
	if !ok {
		return 0, &Error{URL: g.baseURL, Err: errors.New("front page has no permalink")}
	}

	m := dePermalinkRe.FindStringSubmatch(href)
	if m == nil {
		return 0, &Error{URL: g.baseURL, Err: fmt.Errorf("permalink %q carries no number", href)}
	}

	return strconv.Atoi(m[1])
}

func (g *German) ScrapeOne(ctx context.Context, number int) (*TranslationScraped, error) {
	pageURL := fmt.Sprintf("%s/%d/", g.baseURL, number)

	doc, err := g.document(ctx, pageURL)
	if errors.Is(err, errNoPage) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	img := doc.Find("#comic img").First()
	src, ok := img.Attr("src")
	if !ok {
		return nil, &Error{URL: pageURL, Err: errors.New("strip page has no comic image")}
	}

	staged, err := g.downloadImage(ctx, pageURL, src)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(doc.Find("#content h1").First().Text())
	tooltip, _ := img.Attr("title")

	return &TranslationScraped{
		Number:            number,
		Language:          g.Language(),
		Title:             title,
		Tooltip:           strings.TrimSpace(tooltip),
		TranslatorComment: strings.TrimSpace(doc.Find("#comment").First().Text()),
		SourceURL:         pageURL,
		Image:             staged,
	}, nil
}
