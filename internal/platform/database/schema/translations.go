// Copyright (c) 2026 Komikan. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// TranslationsTable represents the 'translations' table
type TranslationsTable struct {
	Table             string
	ID                string
	ComicID           string
	Language          string
	Title             string
	Tooltip           string
	Transcript        string
	TranslatorComment string
	SourceURL         string
	Status            string
	SearchableText    string
	CreatedAt         string
	UpdatedAt         string
}

// Translations is the schema definition for translations
var Translations = TranslationsTable{
	Table:             "translations",
	ID:                "translation_id",
	ComicID:           "comic_id",
	Language:          "language",
	Title:             "title",
	Tooltip:           "tooltip",
	Transcript:        "transcript_raw",
	TranslatorComment: "translator_comment",
	SourceURL:         "source_url",
	Status:            "status",
	SearchableText:    "searchable_text",
	CreatedAt:         "created_at",
	UpdatedAt:         "updated_at",
}

func (t TranslationsTable) Columns() []string {
	return []string{
		t.ID, t.ComicID, t.Language, t.Title, t.Tooltip, t.Transcript,
		t.TranslatorComment, t.SourceURL, t.Status, t.SearchableText,
		t.CreatedAt, t.UpdatedAt,
	}
}