// Copyright (c) 2026 Komikan. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package scrape

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/taibuivan/komikan/internal/fetch"
)

// Origin scrapes the origin site's JSON metadata endpoint.
type Origin struct {
	site
	baseURL string
}

// originInfo mirrors the info.0.json schema.
type originInfo struct {
	Num        int             `json:"num"`
	Year       string          `json:"year"`
	Month      string          `json:"month"`
	Day        string          `json:"day"`
	Title      string          `json:"title"`
	SafeTitle  string          `json:"safe_title"`
	Alt        string          `json:"alt"`
	Img        string          `json:"img"`
	Link       string          `json:"link"`
	ExtraParts json.RawMessage `json:"extra_parts"`
}

var (
	// largePageRe matches a link that points at the enlarged-image page of
	// the same comic rather than an external site.
	largePageRe = regexp.MustCompile(`^https?://(www\.)?xkcd\.com/\d+/large/?$`)

	// originImageRe is the pattern a usable img field must match.
	originImageRe = regexp.MustCompile(`^https?://imgs\.xkcd\.com/comics/.+`)

	// srcset2xRe pulls the 2x candidate out of a srcset attribute.
	srcset2xRe = regexp.MustCompile(`(\S+)\s+2x`)

	htmlTagRe = regexp.MustCompile(`<[^>]+>`)
)

// largeOverrides maps issues whose enlarged image cannot be derived from
// the large page itself to a known direct URL.
var largeOverrides = map[int]string{
	256:  "https://imgs.xkcd.com/comics/online_communities.png",
	657:  "https://imgs.xkcd.com/comics/movie_narrative_charts_large.png",
	802:  "https://imgs.xkcd.com/comics/online_communities_2_large.png",
	980:  "https://imgs.xkcd.com/comics/money_huge.png",
	1196: "https://imgs.xkcd.com/comics/subways_large.png",
	1212: "https://imgs.xkcd.com/comics/interstellar_memes_large.png",
	1256: "https://imgs.xkcd.com/comics/questions_large.png",
	1461: "https://imgs.xkcd.com/comics/payloads_large.png",
	1509: "https://imgs.xkcd.com/comics/scenery_cheat_sheet_large.png",
	1688: "https://imgs.xkcd.com/comics/map_age_guide_large.png",
	1939: "https://imgs.xkcd.com/comics/2016_election_map_large.png",
}

func NewOrigin(fetcher *fetch.Fetcher, downloader *fetch.Downloader, baseURL string, logger *slog.Logger) *Origin {
	return &Origin{
		site:    site{fetcher: fetcher, downloader: downloader, logger: logger.With(slog.String("scraper", "origin"))},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Latest returns the newest published issue number.
func (o *Origin) Latest(ctx context.Context) (int, error) {
	info, err := o.fetchInfo(ctx, o.baseURL+"/info.0.json")
	if err != nil {
		return 0, err
	}
	return info.Num, nil
}

/*
ScrapeOne fetches the metadata record for issue number.

Issue 404 has no record at the source; a placeholder is synthesized without
any network traffic so a full-archive scan does not trip over it.

Returns:
  - *ComicScraped: the record, nil when the issue does not exist yet
  - error: *Error on extraction failure
*/
func (o *Origin) ScrapeOne(ctx context.Context, number int) (*ComicScraped, error) {
	if number == 404 {
		return &ComicScraped{
			Number:          404,
			Title:           "404: Not Found",
			PublicationDate: time.Date(2008, time.April, 1, 0, 0, 0, 0, time.UTC),
		}, nil
	}

	infoURL := fmt.Sprintf("%s/%d/info.0.json", o.baseURL, number)

	info, err := o.fetchInfo(ctx, infoURL)
	if errors.Is(err, errNoPage) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	date, err := parseDate(info.Year, info.Month, info.Day)
	if err != nil {
		return nil, &Error{URL: infoURL, Err: fmt.Errorf("malformed date: %w", err)}
	}

	imageURL, err := o.imageURL(ctx, info)
	if err != nil {
		return nil, err
	}

	clickURL := info.Link
	if largePageRe.MatchString(clickURL) {
		clickURL = ""
	}

	return &ComicScraped{
		Number:          info.Num,
		Title:           cleanTitle(info.Title),
		Tooltip:         info.Alt,
		PublicationDate: date,
		ImageURL:        imageURL,
		ClickURL:        clickURL,
		IsInteractive:   len(info.ExtraParts) > 0,
	}, nil
}

func (o *Origin) fetchInfo(ctx context.Context, infoURL string) (*originInfo, error) {
	resp, err := o.fetcher.Get(ctx, infoURL)
	if err != nil {
		return nil, &Error{URL: infoURL, Err: err}
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, errNoPage
	case resp.StatusCode != http.StatusOK:
		return nil, &Error{URL: infoURL, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	var info originInfo
	if err := json.Unmarshal(resp.Body, &info); err != nil {
		return nil, &Error{URL: infoURL, Err: fmt.Errorf("malformed metadata: %w", err)}
	}

	return &info, nil
}

// imageURL resolves the best image for the issue through three fallbacks:
// the enlarged-image page, the 2x srcset entry in the comic DOM, and
// finally the plain img field.
func (o *Origin) imageURL(ctx context.Context, info *originInfo) (string, error) {
	if override, ok := largeOverrides[info.Num]; ok {
		return override, nil
	}

	if largePageRe.MatchString(info.Link) {
		resolved, err := o.enlargedImage(ctx, info.Link)
		if err == nil && resolved != "" {
			return resolved, nil
		}
		if err != nil {
			o.logger.Warn("enlarged image page unusable",
				slog.Int("number", info.Num),
				slog.String("error", err.Error()),
			)
		}
	}

	if src := o.srcset2x(ctx, info.Num); src != "" {
		return src, nil
	}

	if originImageRe.MatchString(info.Img) {
		return info.Img, nil
	}

	return "", nil
}

// enlargedImage pulls the single image off a /large/ page.
func (o *Origin) enlargedImage(ctx context.Context, pageURL string) (string, error) {
	doc, err := o.document(ctx, pageURL)
	if err != nil {
		return "", err
	}

	src, ok := doc.Find("img").First().Attr("src")
	if !ok {
		return "", nil
	}

	return resolveURL(pageURL, src)
}

// srcset2x looks for a 2x srcset candidate on the comic page.
func (o *Origin) srcset2x(ctx context.Context, number int) string {
	pageURL := fmt.Sprintf("%s/%d/", o.baseURL, number)

	doc, err := o.document(ctx, pageURL)
	if err != nil {
		return ""
	}

	srcset, ok := doc.Find("#comic img").First().Attr("srcset")
	if !ok {
		return ""
	}

	m := srcset2xRe.FindStringSubmatch(srcset)
	if m == nil {
		return ""
	}

	resolved, err := resolveURL(pageURL, strings.TrimSuffix(m[1], ","))
	if err != nil {
		return ""
	}
	return resolved
}

// cleanTitle strips embedded markup and unescapes HTML entities.
func cleanTitle(title string) string {
	return html.UnescapeString(htmlTagRe.ReplaceAllString(title, ""))
}
