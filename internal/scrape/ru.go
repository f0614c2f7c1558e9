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

	"github.com/PuerkitoBio/goquery"

	"github.com/taibuivan/komikan/internal/fetch"
)

// Russian scrapes the Russian mirror. The /num/ archive lists every
// translated issue; strip pages live at /<number>/.
type Russian struct {
	site
	baseURL string
}

var ruNumberRe = regexp.MustCompile(`/(\d+)/?$`)

func NewRussian(fetcher *fetch.Fetcher, downloader *fetch.Downloader, baseURL string, logger *slog.Logger) *Russian {
	return &Russian{
		site:    site{fetcher: fetcher, downloader: downloader, logger: logger.With(slog.String("scraper", "ru"))},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (r *Russian) Language() string { return "ru" }

// Latest scans the archive for the highest numbered strip link.
func (r *Russian) Latest(ctx context.Context) (int, error) {
	archiveURL := r.baseURL + "/num/"

	doc, err := r.document(ctx, archiveURL)
	if err != nil {
		return 0, err
	}

	latest := 0
	doc.Find("a").Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok {
			return
		}
		m := ruNumberRe.FindStringSubmatch(href)
		if m == nil {
			return
		}
		if n, err := strconv.Atoi(m[1]); err == nil && n > latest {
			latest = n
		}
	})

	if latest == 0 {
		return 0, &Error{URL: archiveURL, Err: errors.New("archive lists no strips")}
	}

	return latest, nil
}

func (r *Russian) ScrapeOne(ctx context.Context, number int) (*TranslationScraped, error) {
	pageURL := fmt.Sprintf("%s/%d/", r.baseURL, number)

	doc, err := r.document(ctx, pageURL)
	if errors.Is(err, errNoPage) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	img := doc.Find(".comics img, .main img").First()
	src, ok := img.Attr("src")
	if !ok {
		return nil, &Error{URL: pageURL, Err: errors.New("strip page has no comic image")}
	}

	staged, err := r.downloadImage(ctx, pageURL, src)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(doc.Find("h1").First().Text())
	tooltip, _ := img.Attr("title")
	if tooltip == "" {
		tooltip, _ = img.Attr("alt")
	}

	return &TranslationScraped{
		Number:            number,
		Language:          r.Language(),
		Title:             title,
		Tooltip:           strings.TrimSpace(tooltip),
		TranslatorComment: strings.TrimSpace(doc.Find(".comment").First().Text()),
		SourceURL:         pageURL,
		Image:             staged,
	}, nil
}
