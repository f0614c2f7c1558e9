// Copyright (c) 2026 Komikan. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package tag

import "context"

type Repository interface {
	// CreateMany inserts the missing tags for the given names and returns
	// every tag matching the derived slug set, existing rows included.
	CreateMany(context context.Context, names []string, fromExplain bool) ([]*Tag, error)

	ListTags(context context.Context) ([]*Tag, error)
	GetTagByID(context context.Context, id int64) (*Tag, error)
	GetTagBySlug(context context.Context, slug string) (*Tag, error)
	Update(context context.Context, id int64, request UpdateRequest) (*Tag, error)
	Delete(context context.Context, id int64) error
}