// Copyright (c) 2026 Komikan. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package tag

import (
	"time"

	"github.com/taibuivan/komikan/internal/platform/apperr"
)

// ErrNotFound is returned when the requested tag does not exist.
var ErrNotFound = apperr.NotFound("Tag").WithCode("TAG_NOT_FOUND")

// Tag is a categorization attribute applied to a comic. The slug is the
// canonical identity; the name is display only.
type Tag struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	IsVisible   bool      `json:"is_visible"`
	FromExplain bool      `json:"from_explainxkcd"`
	CreatedAt   time.Time `json:"-"`
}

// UpdateRequest carries the mutable tag fields; nil means keep.
type UpdateRequest struct {
	Name      *string `json:"name"`
	IsVisible *bool   `json:"is_visible"`
}