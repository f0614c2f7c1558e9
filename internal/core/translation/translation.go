// Copyright (c) 2026 Komikan. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package translation

import (
	"time"

	"github.com/taibuivan/komikan/internal/platform/apperr"
	"github.com/taibuivan/komikan/internal/platform/validate"
)

// Status of a translation. Drafts are excluded from uniqueness and search.
type Status string

const (
	StatusPublished Status = "PUBLISHED"
	StatusDraft     Status = "DRAFT"
)

// LanguageOriginal is the language of the canonical translation backing the
// comic's displayed metadata.
const LanguageOriginal = "en"

var (
	// ErrNotFound is returned when the requested translation does not exist.
	ErrNotFound = apperr.NotFound("Translation").WithCode("TRANSLATION_NOT_FOUND")

	// ErrOriginalForbidden rejects delete, language change, and draft
	// promotion on the original translation.
	ErrOriginalForbidden = apperr.Forbidden("This operation is not allowed on the original translation").
				WithCode("ORIGINAL_TRANSLATION_FORBIDDEN")

	// ErrAlreadyPublished rejects publishing a translation that is not a draft.
	ErrAlreadyPublished = apperr.Conflict("Translation is already published").
				WithCode("TRANSLATION_ALREADY_PUBLISHED")
)

// Translation is one language rendering of a comic.
type Translation struct {
	ID                int64     `json:"id"`
	ComicID           int64     `json:"comic_id"`
	Language          string    `json:"language"`
	Title             string    `json:"title"`
	Tooltip           string    `json:"tooltip"`
	Transcript        string    `json:"transcript_raw"`
	TranslatorComment string    `json:"translator_comment"`
	SourceURL         string    `json:"source_url"`
	Status            Status    `json:"status"`
	SearchableText    string    `json:"-"`
	CreatedAt         time.Time `json:"-"`
	UpdatedAt         time.Time `json:"-"`
}

// IsOriginal reports whether this is the canonical translation.
func (t *Translation) IsOriginal() bool { return t.Language == LanguageOriginal }

// Request carries the writable translation fields.
type Request struct {
	Language          string `json:"language"`
	Title             string `json:"title"`
	Tooltip           string `json:"tooltip"`
	Transcript        string `json:"transcript_raw"`
	TranslatorComment string `json:"translator_comment"`
	SourceURL         string `json:"source_url"`
	Status            Status `json:"status"`
}

func (request Request) validate() error {
	v := &validate.Validator{}
	v.Required("title", request.Title).
		MaxLen("title", request.Title, 500).
		Language("language", request.Language).
		URL("source_url", request.SourceURL)
	if request.Status != "" {
		v.OneOf("status", string(request.Status), string(StatusPublished), string(StatusDraft))
	}
	return v.Err()
}
