// Copyright (c) 2026 Komikan. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package image

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// PathData is the structured descriptor behind a relative image path.
// BuildPath and ParsePath are exact inverses over valid descriptors.
type PathData struct {
	// Number is the issue number; nil for extra comics.
	Number *int

	// OriginalSlug identifies extra comics in place of a number.
	OriginalSlug string

	Language string

	// TranslationSlug is the slugified translated title.
	TranslationSlug string

	// Token is 12 hex characters separating concurrent uploads of the
	// same descriptor.
	Token string

	IsDraft bool

	Width  int
	Height int

	// Mark is an optional variant suffix such as "2x".
	Mark string

	Format string
}

// InvalidPathError reports a path or descriptor that violates the grammar.
type InvalidPathError struct {
	Path   string
	Reason string
}

func (e *InvalidPathError) Error() string {
	return fmt.Sprintf("image: invalid path %q: %s", e.Path, e.Reason)
}

const pathPrefix = "images/comics"

var (
	fileRe  = regexp.MustCompile(`^([a-z0-9-]+)_([0-9a-f]{12})_(\d+)x(\d+)(?:_([a-z0-9]+))?\.([a-z0-9]+)$`)
	slugRe  = regexp.MustCompile(`^[a-z0-9-]+$`)
	tokenRe = regexp.MustCompile(`^[0-9a-f]{12}$`)
)

// NewToken returns a fresh 12-hex-character path token.
func NewToken() string {
	raw := make([]byte, 6)
	_, _ = rand.Read(raw)
	return hex.EncodeToString(raw)
}

/*
BuildPath renders the descriptor as a relative path under the static root.

The directory encodes ownership and visibility:

	images/comics/00614/en/...            numbered, published
	images/comics/00614/de/drafts/...     numbered, draft
	images/comics/extras/frankenstein/en/...  extra comic

The file name is <translation_slug>_<token>_<W>x<H>[_<mark>].<format>.
*/
func BuildPath(data PathData) (string, error) {
	if err := validate(data); err != nil {
		return "", err
	}

	var dir string
	if data.Number != nil {
		dir = fmt.Sprintf("%05d/%s", *data.Number, data.Language)
	} else {
		dir = fmt.Sprintf("extras/%s/%s", data.OriginalSlug, data.Language)
	}
	if data.IsDraft {
		dir += "/drafts"
	}

	name := fmt.Sprintf("%s_%s_%dx%d", data.TranslationSlug, data.Token, data.Width, data.Height)
	if data.Mark != "" {
		name += "_" + data.Mark
	}
	name += "." + data.Format

	return fmt.Sprintf("%s/%s/%s", pathPrefix, dir, name), nil
}

// ParsePath inverts BuildPath.
func ParsePath(path string) (PathData, error) {
	parts := strings.Split(path, "/")
	if len(parts) < 5 || parts[0]+"/"+parts[1] != pathPrefix {
		return PathData{}, &InvalidPathError{Path: path, Reason: "not under " + pathPrefix}
	}

	data := PathData{}
	rest := parts[2:]

	if rest[0] == "extras" {
		if len(rest) < 4 {
			return PathData{}, &InvalidPathError{Path: path, Reason: "truncated extras path"}
		}
		if !slugRe.MatchString(rest[1]) {
			return PathData{}, &InvalidPathError{Path: path, Reason: "malformed original slug"}
		}
		data.OriginalSlug = rest[1]
		data.Language = rest[2]
		rest = rest[3:]
	} else {
		if len(rest) < 3 {
			return PathData{}, &InvalidPathError{Path: path, Reason: "truncated path"}
		}
		if len(rest[0]) != 5 {
			return PathData{}, &InvalidPathError{Path: path, Reason: "issue directory is not 5 digits"}
		}
		number, err := strconv.Atoi(rest[0])
		if err != nil {
			return PathData{}, &InvalidPathError{Path: path, Reason: "issue directory is not numeric"}
		}
		data.Number = &number
		data.Language = rest[1]
		rest = rest[2:]
	}

	if len(rest) == 2 {
		if rest[0] != "drafts" {
			return PathData{}, &InvalidPathError{Path: path, Reason: "unexpected directory " + rest[0]}
		}
		data.IsDraft = true
		rest = rest[1:]
	}
	if len(rest) != 1 {
		return PathData{}, &InvalidPathError{Path: path, Reason: "unexpected path depth"}
	}

	m := fileRe.FindStringSubmatch(rest[0])
	if m == nil {
		return PathData{}, &InvalidPathError{Path: path, Reason: "malformed file name"}
	}

	data.TranslationSlug = m[1]
	data.Token = m[2]
	data.Width, _ = strconv.Atoi(m[3])
	data.Height, _ = strconv.Atoi(m[4])
	data.Mark = m[5]
	data.Format = m[6]

	if data.Language == "" || !slugRe.MatchString(data.Language) {
		return PathData{}, &InvalidPathError{Path: path, Reason: "malformed language"}
	}

	return data, nil
}

func validate(data PathData) error {
	describe := func(reason string) error {
		return &InvalidPathError{Path: data.TranslationSlug, Reason: reason}
	}

	switch {
	case data.Number == nil && data.OriginalSlug == "":
		return describe("extra comic needs an original slug")
	case data.Number == nil && !slugRe.MatchString(data.OriginalSlug):
		return describe("malformed original slug")
	case data.Number != nil && (*data.Number < 0 || *data.Number > 99999):
		return describe("issue number out of range")
	case data.Language == "" || !slugRe.MatchString(data.Language):
		return describe("malformed language")
	case !slugRe.MatchString(data.TranslationSlug):
		return describe("malformed translation slug")
	case !tokenRe.MatchString(data.Token):
		return describe("token is not 12 hex characters")
	case data.Width <= 0 || data.Height <= 0:
		return describe("non-positive dimensions")
	case data.Mark != "" && !slugRe.MatchString(data.Mark):
		return describe("malformed mark")
	case data.Format == "" || !slugRe.MatchString(data.Format):
		return describe("malformed format")
	}

	return nil
}
