// Copyright (c) 2026 Komikan. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package slug generates ASCII URL slugs from arbitrary Unicode strings.
//
// # Usage
//
// Slugs identify comics in URLs and image paths (e.g., "exploits-of-a-mom").
// When a comic carries an issue number the full slug is prefixed with it
// ("327-exploits-of-a-mom"). This package handles normalization, accent
// removal, and character sanitization.
package slug

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// nonAlphanumeric matches any sequence of non-alphanumeric, non-hyphen characters.
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9-]+`)
	// multiHyphen collapses multiple consecutive hyphens into one.
	multiHyphen = regexp.MustCompile(`-{2,}`)
)

// From converts an arbitrary Unicode string into a URL-safe ASCII slug.
//
// # Transformation Pipeline
//
// 1. Normalizes to NFD (decomposes accented chars: é → e + combining acute).
// 2. Removes combining marks (accents).
// 3. Converts to lowercase.
// 4. Replaces non-alphanumeric characters with hyphens.
// 5. Collapses multiple hyphens and trims leading/trailing hyphens.
func From(s string) string {
	// 1. Normalize and remove accents
	t := transform.Chain(norm.NFD, transform.RemoveFunc(isMn))
	result, _, _ := transform.String(t, s)

	// 2. Lowercase
	result = strings.ToLower(result)

	// 3. Replace whitespace and special chars with hyphens
	result = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return '-'
	}, result)

	// 4. Clean up hyphenation
	result = nonAlphanumeric.ReplaceAllString(result, "-")
	result = multiHyphen.ReplaceAllString(result, "-")
	result = strings.Trim(result, "-")

	return result
}

// Fallback slugifies s, substituting fallback when the result is empty.
//
// Titles written entirely in a script with no ASCII mapping (Cyrillic, CJK)
// produce no slug runes at all; callers that feed translated titles into
// paths or URLs pass a known-good identifier to take over in that case.
func Fallback(s, fallback string) string {
	if result := From(s); result != "" {
		return result
	}
	return fallback
}

// WithNumber builds the full comic slug from an optional issue number and the
// English title.
//
// Comics with an issue number slug as "<number>-<slugified_title>"; extras
// slug as the bare title form.
func WithNumber(number *int, title string) string {
	base := From(title)
	if number == nil {
		return base
	}
	return fmt.Sprintf("%d-%s", *number, base)
}

// isMn reports whether r is a Unicode non-spacing mark (e.g., accents).
func isMn(r rune) bool {
	return unicode.Is(unicode.Mn, r)
}
