// Copyright (c) 2026 Komikan. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package translation

import "context"

type Repository interface {
	Create(context context.Context, comicID int64, request Request) (*Translation, error)
	GetByID(context context.Context, id int64) (*Translation, error)
	GetForUpdate(context context.Context, id int64) (*Translation, error)

	// GetByLanguage resolves the published translation for a language;
	// drafts never match.
	GetByLanguage(context context.Context, comicID int64, language string) (*Translation, error)
	GetOriginal(context context.Context, comicID int64) (*Translation, error)

	Update(context context.Context, translation *Translation) error

	// DemotePublished turns the published (comic, language) sibling into a
	// draft and clears its searchable text. Missing sibling is not an error.
	DemotePublished(context context.Context, comicID int64, language string) error

	Delete(context context.Context, id int64) error
}
