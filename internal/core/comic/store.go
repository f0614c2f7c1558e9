// Copyright (c) 2026 Komikan. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package comic

import (
	"context"

	"github.com/taibuivan/komikan/internal/core/tag"
	"github.com/taibuivan/komikan/pkg/pagination"
)

// Repository persists comic rows and their tag links. Hydration of the full
// aggregate is the service's job.
type Repository interface {
	Insert(context context.Context, comic *Comic) (*Comic, error)
	Update(context context.Context, comic *Comic) error
	Delete(context context.Context, id int64) error

	GetByID(context context.Context, id int64) (*Comic, error)
	GetByNumber(context context.Context, number int) (*Comic, error)
	GetBySlug(context context.Context, slug string) (*Comic, error)

	// GetForUpdate row-locks the comic for the duration of the caller's tx.
	GetForUpdate(context context.Context, id int64) (*Comic, error)

	// ListNumbers returns every issue number present in the catalog.
	ListNumbers(context context.Context) ([]int, error)

	// ListNumbersTranslated returns the issue numbers that already carry a
	// published translation in the given language.
	ListNumbersTranslated(context context.Context, language string) ([]int, error)

	// RelinkTags replaces the comic's tag set. Delete and insert run in the
	// caller's transaction so the link set is never observably partial.
	RelinkTags(context context.Context, comicID int64, tagIDs []int64) error

	TagsFor(context context.Context, comicID int64) ([]*tag.Tag, error)

	List(context context.Context, filter Filter, params pagination.Params) (int64, []*Compact, error)
}
