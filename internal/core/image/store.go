// Copyright (c) 2026 Komikan. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package image

import (
	"context"

	"github.com/taibuivan/komikan/internal/platform/postgres"
)

// Repository persists image rows. Every method takes the caller's Querier
// so image writes join the ambient transaction of the enclosing operation.
type Repository interface {
	CreateStaged(context context.Context, db postgres.Querier, tempImageID string, meta Meta) (*Image, error)
	GetByID(context context.Context, db postgres.Querier, id int64) (*Image, error)

	// GetForUpdate row-locks the image. Soft-deleted rows are not found.
	GetForUpdate(context context.Context, db postgres.Querier, id int64) (*Image, error)

	// Attach records ownership and the built path, clearing the temp id.
	Attach(context context.Context, db postgres.Querier, id int64, entityID int64, imagePath string) error

	UpdatePath(context context.Context, db postgres.Querier, id int64, imagePath string) error
	SoftDelete(context context.Context, db postgres.Querier, id int64) error

	// SetDerivedPaths writes the post-processed artifacts. It must update
	// an existing row or report ErrNotFound, never insert.
	SetDerivedPaths(context context.Context, db postgres.Querier, id int64, convertedPath, thumbnailPath string) error

	// ListByTranslations loads the non-deleted images attached to the
	// given translations.
	ListByTranslations(context context.Context, db postgres.Querier, translationIDs []int64) ([]*Image, error)
}

// Meta is the intrinsic metadata captured at staging time.
type Meta struct {
	Format string
	Size   int64
	Width  int
	Height int
}
