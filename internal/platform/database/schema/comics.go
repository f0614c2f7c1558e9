// Copyright (c) 2026 Komikan. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package schema holds table and column name constants for the Komikan
// catalog. Queries are assembled from these so a rename happens in one place.
package schema

// ComicsTable represents the 'comics' table
type ComicsTable struct {
	Table           string
	ID              string
	Number          string
	Slug            string
	PublicationDate string
	ExplainURL      string
	ClickURL        string
	IsInteractive   string
	CreatedAt       string
	UpdatedAt       string
}

// Comics is the schema definition for comics
var Comics = ComicsTable{
	Table:           "comics",
	ID:              "comic_id",
	Number:          "number",
	Slug:            "slug",
	PublicationDate: "publication_date",
	ExplainURL:      "explain_url",
	ClickURL:        "click_url",
	IsInteractive:   "is_interactive",
	CreatedAt:       "created_at",
	UpdatedAt:       "updated_at",
}

func (t ComicsTable) Columns() []string {
	return []string{
		t.ID, t.Number, t.Slug, t.PublicationDate, t.ExplainURL,
		t.ClickURL, t.IsInteractive, t.CreatedAt, t.UpdatedAt,
	}
}