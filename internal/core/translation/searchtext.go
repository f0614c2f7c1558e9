// Copyright (c) 2026 Komikan. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package translation

import (
	"html"
	"regexp"
	"strings"
)

// searchableTextMaxLen bounds the stored projection; Postgres full-text
// indexing degrades badly past this.
const searchableTextMaxLen = 3800

var (
	bracketedRe  = regexp.MustCompile(`\[[^\]]*\]`)
	tagRe        = regexp.MustCompile(`<[^>]+>`)
	speakerRe    = regexp.MustCompile(`(?m)^\s*[A-Za-z][A-Za-z0-9 #'-]{0,40}:`)
	numberRe     = regexp.MustCompile(`\b\d+\b`)
	punctRe      = regexp.MustCompile(`[.:;!?,/"']`)
	nonAlnumRe   = regexp.MustCompile(`[^a-zA-Z0-9\s]`)
	singleCharRe = regexp.MustCompile(`\b[a-zA-Z]\b`)
	spaceRe      = regexp.MustCompile(`\s+`)
)

/*
BuildSearchableText produces the normalized projection of a published
translation used for full-text matching.

The transcript is scrubbed of everything that is not spoken content:
stage directions in square brackets, markup, speaker labels, bare panel
numbers, punctuation, and single-character leftovers. The lowercased title
is prepended with a " :: " separator so title hits rank on plain substring
search too.
*/
func BuildSearchableText(title, transcript string) string {
	text := transcript

	// Wiki content arrives double-escaped (&amp;#39; and the like).
	text = html.UnescapeString(html.UnescapeString(text))

	text = bracketedRe.ReplaceAllString(text, " ")
	text = tagRe.ReplaceAllString(text, " ")
	text = speakerRe.ReplaceAllString(text, " ")
	text = numberRe.ReplaceAllString(text, " ")
	text = punctRe.ReplaceAllString(text, " ")
	text = nonAlnumRe.ReplaceAllString(text, " ")
	text = singleCharRe.ReplaceAllString(text, " ")
	text = spaceRe.ReplaceAllString(text, " ")
	text = strings.ToLower(strings.TrimSpace(text))

	titleLower := tagRe.ReplaceAllString(html.UnescapeString(title), " ")
	titleLower = strings.ToLower(strings.TrimSpace(spaceRe.ReplaceAllString(titleLower, " ")))

	combined := titleLower + " :: " + text
	if len(combined) > searchableTextMaxLen {
		combined = combined[:searchableTextMaxLen]
	}

	return combined
}
