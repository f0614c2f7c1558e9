// Copyright (c) 2026 Komikan. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package comic owns the catalog aggregate: the comic row, its translations,
its tags, and the attached images.

A comic is either numbered (a regular issue) or an extra identified by slug
alone. The slug is recomputed from (number, English title) on every write,
so renames and renumbers keep URLs and image paths derivable.
*/
package comic

import (
	"time"

	"github.com/taibuivan/komikan/internal/core/image"
	"github.com/taibuivan/komikan/internal/core/tag"
	"github.com/taibuivan/komikan/internal/core/translation"
	"github.com/taibuivan/komikan/internal/platform/apperr"
	"github.com/taibuivan/komikan/internal/platform/validate"
)

// ErrNotFound is returned when the requested comic does not exist.
var ErrNotFound = apperr.NotFound("Comic").WithCode("COMIC_NOT_FOUND")

// Comic is the fully hydrated aggregate.
type Comic struct {
	ID              int64     `json:"id"`
	Number          *int      `json:"number"`
	Slug            string    `json:"slug"`
	PublicationDate time.Time `json:"publication_date"`
	ExplainURL      *string   `json:"explain_url"`
	ClickURL        *string   `json:"click_url"`
	IsInteractive   bool      `json:"is_interactive"`
	CreatedAt       time.Time `json:"-"`
	UpdatedAt       time.Time `json:"-"`

	Tags         []*tag.Tag                 `json:"tags"`
	Original     *translation.Translation   `json:"original"`
	Translations []*translation.Translation `json:"translations"`
	Images       []*image.Image             `json:"images"`
}

// IsExtra reports whether the comic has no issue number.
func (c *Comic) IsExtra() bool { return c.Number == nil }

// Compact is the list projection: one row per comic with the title and
// image supplied by the requested search language.
type Compact struct {
	ID              int64     `json:"id"`
	Number          *int      `json:"number"`
	Slug            string    `json:"slug"`
	Title           string    `json:"title"`
	PublicationDate time.Time `json:"publication_date"`
	ImagePath       *string   `json:"image_path"`
	ThumbnailPath   *string   `json:"thumbnail_path"`
}

// CreateRequest carries everything needed to create a comic together with
// its original translation.
type CreateRequest struct {
	Number          *int      `json:"number"`
	Title           string    `json:"title"`
	PublicationDate time.Time `json:"publication_date"`
	Tooltip         string    `json:"tooltip"`
	Transcript      string    `json:"transcript_raw"`
	ExplainURL      *string   `json:"explain_url"`
	ClickURL        *string   `json:"click_url"`
	IsInteractive   bool      `json:"is_interactive"`
	Tags            []string  `json:"tags"`

	// TagsFromExplain marks the tags as harvested from the explain wiki
	// rather than curated by hand.
	TagsFromExplain bool `json:"-"`

	// ImageID references a previously uploaded staged image.
	ImageID *int64 `json:"image_id"`
}

func (request CreateRequest) validate() error {
	return validateComicFields(request.Title, request.Number, request.ExplainURL, request.ClickURL)
}

// UpdateRequest mirrors CreateRequest for full rewrites of the aggregate.
//
// NeedsImageMove is set by the caller when a path-affecting field changed
// (number or title) even though ImageID did not.
type UpdateRequest struct {
	Number          *int      `json:"number"`
	Title           string    `json:"title"`
	PublicationDate time.Time `json:"publication_date"`
	Tooltip         string    `json:"tooltip"`
	Transcript      string    `json:"transcript_raw"`
	ExplainURL      *string   `json:"explain_url"`
	ClickURL        *string   `json:"click_url"`
	IsInteractive   bool      `json:"is_interactive"`
	Tags            []string  `json:"tags"`
	ImageID         *int64    `json:"image_id"`
	NeedsImageMove  bool      `json:"-"`
}

func (request UpdateRequest) validate() error {
	return validateComicFields(request.Title, request.Number, request.ExplainURL, request.ClickURL)
}

func validateComicFields(title string, number *int, explainURL, clickURL *string) error {
	v := &validate.Validator{}
	v.Required("title", title).MaxLen("title", title, 500)
	if number != nil {
		v.Custom("number", *number < 1, "Must be a positive issue number")
	}
	if explainURL != nil {
		v.URL("explain_url", *explainURL)
	}
	if clickURL != nil {
		v.URL("click_url", *clickURL)
	}
	return v.Err()
}

// TagCombination selects how multiple tag filters combine.
type TagCombination string

const (
	TagCombinationAnd TagCombination = "AND"
	TagCombinationOr  TagCombination = "OR"
)

// Filter narrows the comic list.
type Filter struct {
	// SearchQuery is matched against the searchable text of the published
	// translation in SearchLanguage. Empty skips the text match.
	SearchQuery string

	// SearchLanguage selects which translation supplies title and image.
	// Defaults to the original language.
	SearchLanguage string

	DateStart *time.Time
	DateEnd   *time.Time

	TagSlugs       []string
	TagCombination TagCombination

	// SortDesc orders by issue number descending; default is ascending.
	SortDesc bool
}

// Normalize fills the filter defaults.
func (f *Filter) Normalize() {
	if f.SearchLanguage == "" {
		f.SearchLanguage = translation.LanguageOriginal
	}
	if f.TagCombination == "" {
		f.TagCombination = TagCombinationOr
	}
}
