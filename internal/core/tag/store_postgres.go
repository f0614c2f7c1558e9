// Copyright (c) 2026 Komikan. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package tag

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/taibuivan/komikan/internal/platform/database/schema"
	"github.com/taibuivan/komikan/internal/platform/dberr"
	"github.com/taibuivan/komikan/internal/platform/postgres"
	"github.com/taibuivan/komikan/pkg/slug"
)

// PostgresRepository runs against any Querier, so a service can bind it to
// the pool or to an ambient transaction.
type PostgresRepository struct {
	db postgres.Querier
}

func NewPostgresRepository(db postgres.Querier) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (repository *PostgresRepository) CreateMany(context context.Context, names []string, fromExplain bool) ([]*Tag, error) {
	slugs := make([]string, 0, len(names))
	insertNames := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))

	for _, name := range names {
		s := slug.From(name)
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		slugs = append(slugs, s)
		insertNames = append(insertNames, name)
	}

	if len(slugs) == 0 {
		return []*Tag{}, nil
	}

	insertQuery := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s)
		SELECT unnest($1::text[]), unnest($2::text[]), true, $3
		ON CONFLICT (%s) DO NOTHING
	`,
		schema.Tags.Table,
		schema.Tags.Name, schema.Tags.Slug, schema.Tags.IsVisible, schema.Tags.FromExplain,
		schema.Tags.Slug,
	)

	if _, err := repository.db.Exec(context, insertQuery, insertNames, slugs, fromExplain); err != nil {
		return nil, dberr.Wrap(err, "create_tags")
	}

	selectQuery := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = ANY($1)
		ORDER BY %s ASC
	`,
		schema.Tags.ID, schema.Tags.Name, schema.Tags.Slug,
		schema.Tags.IsVisible, schema.Tags.FromExplain, schema.Tags.CreatedAt,
		schema.Tags.Table, schema.Tags.Slug, schema.Tags.Slug,
	)

	rows, err := repository.db.Query(context, selectQuery, slugs)
	if err != nil {
		return nil, dberr.Wrap(err, "select_tags_by_slugs")
	}
	defer rows.Close()

	tags := make([]*Tag, 0, len(slugs))
	for rows.Next() {
		t := &Tag{}
		if err := rows.Scan(&t.ID, &t.Name, &t.Slug, &t.IsVisible, &t.FromExplain, &t.CreatedAt); err != nil {
			return nil, dberr.Wrap(err, "scan_tag")
		}
		tags = append(tags, t)
	}

	return tags, rows.Err()
}

func (repository *PostgresRepository) ListTags(context context.Context) ([]*Tag, error) {
	query := fmt.Sprintf(`SELECT %s, %s, %s, %s, %s, %s FROM %s ORDER BY %s ASC`,
		schema.Tags.ID, schema.Tags.Name, schema.Tags.Slug,
		schema.Tags.IsVisible, schema.Tags.FromExplain, schema.Tags.CreatedAt,
		schema.Tags.Table, schema.Tags.Name,
	)

	rows, err := repository.db.Query(context, query)
	if err != nil {
		return nil, dberr.Wrap(err, "list_tags")
	}
	defer rows.Close()

	tags := make([]*Tag, 0)
	for rows.Next() {
		t := &Tag{}
		if err := rows.Scan(&t.ID, &t.Name, &t.Slug, &t.IsVisible, &t.FromExplain, &t.CreatedAt); err != nil {
			return nil, dberr.Wrap(err, "scan_tag")
		}
		tags = append(tags, t)
	}

	return tags, rows.Err()
}

func (repository *PostgresRepository) GetTagByID(context context.Context, id int64) (*Tag, error) {
	query := fmt.Sprintf(`SELECT %s, %s, %s, %s, %s, %s FROM %s WHERE %s = $1`,
		schema.Tags.ID, schema.Tags.Name, schema.Tags.Slug,
		schema.Tags.IsVisible, schema.Tags.FromExplain, schema.Tags.CreatedAt,
		schema.Tags.Table, schema.Tags.ID,
	)

	t := &Tag{}
	err := repository.db.QueryRow(context, query, id).
		Scan(&t.ID, &t.Name, &t.Slug, &t.IsVisible, &t.FromExplain, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, dberr.Wrap(err, "get_tag_by_id")
	}

	return t, nil
}

func (repository *PostgresRepository) GetTagBySlug(context context.Context, tagSlug string) (*Tag, error) {
	query := fmt.Sprintf(`SELECT %s, %s, %s, %s, %s, %s FROM %s WHERE %s = $1`,
		schema.Tags.ID, schema.Tags.Name, schema.Tags.Slug,
		schema.Tags.IsVisible, schema.Tags.FromExplain, schema.Tags.CreatedAt,
		schema.Tags.Table, schema.Tags.Slug,
	)

	t := &Tag{}
	err := repository.db.QueryRow(context, query, tagSlug).
		Scan(&t.ID, &t.Name, &t.Slug, &t.IsVisible, &t.FromExplain, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, dberr.Wrap(err, "get_tag_by_slug")
	}

	return t, nil
}

// Update mutates name and visibility. A name change regenerates the slug.
func (repository *PostgresRepository) Update(context context.Context, id int64, request UpdateRequest) (*Tag, error) {
	current, err := repository.GetTagByID(context, id)
	if err != nil {
		return nil, err
	}

	if request.Name != nil {
		current.Name = *request.Name
		current.Slug = slug.From(*request.Name)
	}
	if request.IsVisible != nil {
		current.IsVisible = *request.IsVisible
	}

	query := fmt.Sprintf(`UPDATE %s SET %s = $1, %s = $2, %s = $3 WHERE %s = $4`,
		schema.Tags.Table,
		schema.Tags.Name, schema.Tags.Slug, schema.Tags.IsVisible,
		schema.Tags.ID,
	)

	if _, err := repository.db.Exec(context, query, current.Name, current.Slug, current.IsVisible, id); err != nil {
		return nil, dberr.Wrap(err, "update_tag")
	}

	return current, nil
}

func (repository *PostgresRepository) Delete(context context.Context, id int64) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, schema.Tags.Table, schema.Tags.ID)

	tag, err := repository.db.Exec(context, query, id)
	if err != nil {
		return dberr.Wrap(err, "delete_tag")
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}