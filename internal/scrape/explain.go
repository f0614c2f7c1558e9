// Copyright (c) 2026 Komikan. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package scrape

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strconv"
	"strings"

	_ "embed"

	"github.com/PuerkitoBio/goquery"

	"github.com/taibuivan/komikan/internal/fetch"
)

//go:embed badtags.txt
var badTagsRaw string

// badTags is the lowercased set of wiki maintenance categories that are
// never comic tags.
var badTags = func() map[string]struct{} {
	set := make(map[string]struct{})
	for _, line := range strings.Split(badTagsRaw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		set[strings.ToLower(line)] = struct{}{}
	}
	return set
}()

// transcriptMaxChars discards transcripts past this size; pages that large
// are invariably full of wiki markup noise, not dialogue.
const transcriptMaxChars = 25000

var emptyParagraphRe = regexp.MustCompile(`<p>\s*<br\s*/?>\s*</p>`)

// Explain scrapes the explain wiki for tags, transcripts, and the
// canonical article URL.
type Explain struct {
	site
	baseURL string
}

func NewExplain(fetcher *fetch.Fetcher, baseURL string, logger *slog.Logger) *Explain {
	return &Explain{
		site:    site{fetcher: fetcher, logger: logger.With(slog.String("scraper", "explain"))},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

/*
ScrapeOne fetches the wiki article for issue number.

Returns:
  - *ExplainScraped: nil when the wiki has no article yet
  - error: *Error on extraction failure
*/
func (e *Explain) ScrapeOne(ctx context.Context, number int) (*ExplainScraped, error) {
	pageURL := fmt.Sprintf("%s/wiki/index.php/%d", e.baseURL, number)

	doc, err := e.document(ctx, pageURL)
	if errors.Is(err, errNoPage) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	// A wiki renders missing articles as a normal page with a marker.
	if doc.Find(".noarticletext").Length() > 0 {
		return nil, nil
	}

	articleURL := pageURL
	if href, ok := doc.Find("#ca-nstab-main a").First().Attr("href"); ok {
		if resolved, err := resolveURL(pageURL, href); err == nil {
			articleURL = resolved
		}
	}

	return &ExplainScraped{
		URL:            articleURL,
		Tags:           e.tags(doc),
		TranscriptHTML: e.transcript(doc),
	}, nil
}

// Latest returns the highest issue number seen in the wiki's recent
// changes feed. Article titles have the form "<number>: <title>".
func (e *Explain) Latest(ctx context.Context) (int, error) {
	feedURL := e.baseURL + "/wiki/index.php/Special:RecentChanges?namespace=0&days=7&limit=500"

	doc, err := e.document(ctx, feedURL)
	if err != nil {
		return 0, err
	}

	latest := 0
	doc.Find("a.mw-changeslist-title").Each(func(_ int, a *goquery.Selection) {
		title := strings.TrimSpace(a.Text())
		prefix, _, found := strings.Cut(title, ": ")
		if !found {
			return
		}
		if n, err := strconv.Atoi(prefix); err == nil && n > latest {
			latest = n
		}
	})

	if latest == 0 {
		return 0, &Error{URL: feedURL, Err: errors.New("no numbered articles in feed")}
	}

	return latest, nil
}

// tags extracts the category links, drops maintenance categories, and
// dedupes case-insensitively, keeping the first spelling seen.
func (e *Explain) tags(doc *goquery.Document) []string {
	seen := make(map[string]struct{})
	var tags []string

	doc.Find("#mw-normal-catlinks ul li a").Each(func(_ int, a *goquery.Selection) {
		name := strings.TrimSpace(a.Text())
		if name == "" {
			return
		}

		key := strings.ToLower(name)
		if _, bad := badTags[key]; bad {
			return
		}
		if _, dup := seen[key]; dup {
			return
		}

		seen[key] = struct{}{}
		tags = append(tags, name)
	})

	sort.Strings(tags)
	return tags
}

// transcript walks the forward siblings of the Transcript header until the
// Discussion section or the next h1/h2 and concatenates their HTML.
func (e *Explain) transcript(doc *goquery.Document) string {
	header := doc.Find("span#Transcript").First().Closest("h1, h2")
	if header.Length() == 0 {
		return ""
	}

	var parts []string
	total := 0

	for node := header.Next(); node.Length() > 0; node = node.Next() {
		name := goquery.NodeName(node)
		if name == "h1" || name == "h2" {
			break
		}
		if node.Find("span#Discussion").Length() > 0 {
			break
		}

		// Placeholder tables asking editors to finish the transcript.
		if name == "table" && strings.Contains(strings.ToLower(node.Text()), "transcript is incomplete") {
			continue
		}

		fragment, err := goquery.OuterHtml(node)
		if err != nil {
			continue
		}

		total += len(fragment)
		if total > transcriptMaxChars {
			return ""
		}

		parts = append(parts, fragment)
	}

	return emptyParagraphRe.ReplaceAllString(strings.Join(parts, ""), "")
}
