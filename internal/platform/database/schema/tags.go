// Copyright (c) 2026 Komikan. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// TagsTable represents the 'tags' table
type TagsTable struct {
	Table       string
	ID          string
	Name        string
	Slug        string
	IsVisible   string
	FromExplain string
	CreatedAt   string
}

// Tags is the schema definition for tags
var Tags = TagsTable{
	Table:       "tags",
	ID:          "tag_id",
	Name:        "name",
	Slug:        "slug",
	IsVisible:   "is_visible",
	FromExplain: "from_explainxkcd",
	CreatedAt:   "created_at",
}

// ComicTagTable represents the 'comic_tag_association' junction table
type ComicTagTable struct {
	Table   string
	ComicID string
	TagID   string
}

// ComicTag is the schema definition for comic_tag_association
var ComicTag = ComicTagTable{
	Table:   "comic_tag_association",
	ComicID: "comic_id",
	TagID:   "tag_id",
}