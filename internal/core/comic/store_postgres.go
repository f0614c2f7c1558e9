// Copyright (c) 2026 Komikan. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package comic

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/taibuivan/komikan/internal/core/tag"
	"github.com/taibuivan/komikan/internal/platform/database/schema"
	"github.com/taibuivan/komikan/internal/platform/dberr"
	"github.com/taibuivan/komikan/internal/platform/postgres"
	"github.com/taibuivan/komikan/pkg/pagination"
)

// PostgresRepository runs against any Querier, so a service can bind it to
// the pool or to an ambient transaction.
type PostgresRepository struct {
	db postgres.Querier
}

func NewPostgresRepository(db postgres.Querier) *PostgresRepository {
	return &PostgresRepository{db: db}
}

var columns = fmt.Sprintf("%s, %s, %s, %s, %s, %s, %s, %s, %s",
	schema.Comics.ID, schema.Comics.Number, schema.Comics.Slug,
	schema.Comics.PublicationDate, schema.Comics.ExplainURL, schema.Comics.ClickURL,
	schema.Comics.IsInteractive, schema.Comics.CreatedAt, schema.Comics.UpdatedAt,
)

func scanComic(row pgx.Row) (*Comic, error) {
	c := &Comic{}
	err := row.Scan(
		&c.ID, &c.Number, &c.Slug, &c.PublicationDate, &c.ExplainURL, &c.ClickURL,
		&c.IsInteractive, &c.CreatedAt, &c.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, dberr.Wrap(err, "scan_comic")
	}
	return c, nil
}

func (repository *PostgresRepository) Insert(context context.Context, comic *Comic) (*Comic, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING %s
	`,
		schema.Comics.Table,
		schema.Comics.Number, schema.Comics.Slug, schema.Comics.PublicationDate,
		schema.Comics.ExplainURL, schema.Comics.ClickURL, schema.Comics.IsInteractive,
		columns,
	)

	row := repository.db.QueryRow(context, query,
		comic.Number, comic.Slug, comic.PublicationDate,
		comic.ExplainURL, comic.ClickURL, comic.IsInteractive,
	)

	return scanComic(row)
}

func (repository *PostgresRepository) Update(context context.Context, comic *Comic) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $1, %s = $2, %s = $3, %s = $4, %s = $5, %s = $6, %s = NOW()
		WHERE %s = $7
	`,
		schema.Comics.Table,
		schema.Comics.Number, schema.Comics.Slug, schema.Comics.PublicationDate,
		schema.Comics.ExplainURL, schema.Comics.ClickURL, schema.Comics.IsInteractive,
		schema.Comics.UpdatedAt,
		schema.Comics.ID,
	)

	tag, err := repository.db.Exec(context, query,
		comic.Number, comic.Slug, comic.PublicationDate,
		comic.ExplainURL, comic.ClickURL, comic.IsInteractive,
		comic.ID,
	)
	if err != nil {
		return dberr.Wrap(err, "update_comic")
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (repository *PostgresRepository) Delete(context context.Context, id int64) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`,
		schema.Comics.Table, schema.Comics.ID)

	tag, err := repository.db.Exec(context, query, id)
	if err != nil {
		return dberr.Wrap(err, "delete_comic")
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (repository *PostgresRepository) GetByID(context context.Context, id int64) (*Comic, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		columns, schema.Comics.Table, schema.Comics.ID)

	return scanComic(repository.db.QueryRow(context, query, id))
}

func (repository *PostgresRepository) GetByNumber(context context.Context, number int) (*Comic, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		columns, schema.Comics.Table, schema.Comics.Number)

	return scanComic(repository.db.QueryRow(context, query, number))
}

func (repository *PostgresRepository) GetBySlug(context context.Context, slug string) (*Comic, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		columns, schema.Comics.Table, schema.Comics.Slug)

	return scanComic(repository.db.QueryRow(context, query, slug))
}

func (repository *PostgresRepository) GetForUpdate(context context.Context, id int64) (*Comic, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 FOR UPDATE`,
		columns, schema.Comics.Table, schema.Comics.ID)

	return scanComic(repository.db.QueryRow(context, query, id))
}

func (repository *PostgresRepository) ListNumbers(context context.Context) ([]int, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s IS NOT NULL ORDER BY %s`,
		schema.Comics.Number, schema.Comics.Table, schema.Comics.Number, schema.Comics.Number)

	rows, err := repository.db.Query(context, query)
	if err != nil {
		return nil, dberr.Wrap(err, "list_comic_numbers")
	}
	defer rows.Close()

	var numbers []int
	for rows.Next() {
		var number int
		if err := rows.Scan(&number); err != nil {
			return nil, dberr.Wrap(err, "scan_comic_number")
		}
		numbers = append(numbers, number)
	}

	return numbers, dberr.Wrap(rows.Err(), "list_comic_numbers")
}

func (repository *PostgresRepository) ListNumbersTranslated(context context.Context, language string) ([]int, error) {
	query := fmt.Sprintf(`
		SELECT c.%s
		FROM %s c
		JOIN %s t ON t.%s = c.%s AND t.%s = $1 AND t.%s = $2
		WHERE c.%s IS NOT NULL
		ORDER BY c.%s
	`,
		schema.Comics.Number,
		schema.Comics.Table,
		schema.Translations.Table, schema.Translations.ComicID, schema.Comics.ID,
		schema.Translations.Language, schema.Translations.Status,
		schema.Comics.Number,
		schema.Comics.Number,
	)

	rows, err := repository.db.Query(context, query, language, "PUBLISHED")
	if err != nil {
		return nil, dberr.Wrap(err, "list_translated_numbers")
	}
	defer rows.Close()

	var numbers []int
	for rows.Next() {
		var number int
		if err := rows.Scan(&number); err != nil {
			return nil, dberr.Wrap(err, "scan_translated_number")
		}
		numbers = append(numbers, number)
	}

	return numbers, dberr.Wrap(rows.Err(), "list_translated_numbers")
}

func (repository *PostgresRepository) RelinkTags(context context.Context, comicID int64, tagIDs []int64) error {
	deleteQuery := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`,
		schema.ComicTag.Table, schema.ComicTag.ComicID)

	if _, err := repository.db.Exec(context, deleteQuery, comicID); err != nil {
		return dberr.Wrap(err, "unlink_comic_tags")
	}

	if len(tagIDs) == 0 {
		return nil
	}

	insertQuery := fmt.Sprintf(`
		INSERT INTO %s (%s, %s)
		SELECT $1, unnest($2::bigint[])
	`,
		schema.ComicTag.Table, schema.ComicTag.ComicID, schema.ComicTag.TagID,
	)

	if _, err := repository.db.Exec(context, insertQuery, comicID, tagIDs); err != nil {
		return dberr.Wrap(err, "link_comic_tags")
	}

	return nil
}

func (repository *PostgresRepository) TagsFor(context context.Context, comicID int64) ([]*tag.Tag, error) {
	query := fmt.Sprintf(`
		SELECT t.%s, t.%s, t.%s, t.%s, t.%s, t.%s
		FROM %s t
		JOIN %s ct ON ct.%s = t.%s
		WHERE ct.%s = $1
		ORDER BY t.%s
	`,
		schema.Tags.ID, schema.Tags.Name, schema.Tags.Slug,
		schema.Tags.IsVisible, schema.Tags.FromExplain, schema.Tags.CreatedAt,
		schema.Tags.Table,
		schema.ComicTag.Table, schema.ComicTag.TagID, schema.Tags.ID,
		schema.ComicTag.ComicID,
		schema.Tags.Slug,
	)

	rows, err := repository.db.Query(context, query, comicID)
	if err != nil {
		return nil, dberr.Wrap(err, "list_comic_tags")
	}
	defer rows.Close()

	var tags []*tag.Tag
	for rows.Next() {
		t := &tag.Tag{}
		if err := rows.Scan(&t.ID, &t.Name, &t.Slug, &t.IsVisible, &t.FromExplain, &t.CreatedAt); err != nil {
			return nil, dberr.Wrap(err, "scan_comic_tag")
		}
		tags = append(tags, t)
	}

	return tags, dberr.Wrap(rows.Err(), "list_comic_tags")
}

// # List

/*
List pages through the catalog as Compact projections.

The query joins each comic to its published translation in the filter's
search language, so a comic without that translation drops out of the list.
The total is computed with a window count over the filtered set, before
pagination is applied.
*/
func (repository *PostgresRepository) List(context context.Context, filter Filter, params pagination.Params) (int64, []*Compact, error) {
	filter.Normalize()
	query, args := buildListQuery(filter, params)

	rows, err := repository.db.Query(context, query, args...)
	if err != nil {
		return 0, nil, dberr.Wrap(err, "list_comics")
	}
	defer rows.Close()

	var total int64
	comics := []*Compact{}
	for rows.Next() {
		c := &Compact{}
		if err := rows.Scan(&total, &c.ID, &c.Number, &c.Slug, &c.Title,
			&c.PublicationDate, &c.ImagePath, &c.ThumbnailPath); err != nil {
			return 0, nil, dberr.Wrap(err, "scan_comic_compact")
		}
		comics = append(comics, c)
	}

	return total, comics, dberr.Wrap(rows.Err(), "list_comics")
}

// buildListQuery assembles the list SQL and its arguments for the filter.
func buildListQuery(filter Filter, params pagination.Params) (string, []any) {
	args := []any{filter.SearchLanguage}
	conditions := []string{}

	next := func(arg any) string {
		args = append(args, arg)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.SearchQuery != "" {
		conditions = append(conditions, fmt.Sprintf(
			"to_tsvector('simple', t.%s) @@ websearch_to_tsquery('simple', %s)",
			schema.Translations.SearchableText, next(filter.SearchQuery),
		))
	}
	if filter.DateStart != nil {
		conditions = append(conditions, fmt.Sprintf("c.%s >= %s", schema.Comics.PublicationDate, next(*filter.DateStart)))
	}
	if filter.DateEnd != nil {
		conditions = append(conditions, fmt.Sprintf("c.%s <= %s", schema.Comics.PublicationDate, next(*filter.DateEnd)))
	}

	if len(filter.TagSlugs) > 0 {
		// AND requires every requested tag on the comic; the grouped count
		// per comic must equal the size of the slug set.
		having := ""
		if filter.TagCombination == TagCombinationAnd && len(filter.TagSlugs) > 1 {
			having = fmt.Sprintf("HAVING COUNT(DISTINCT tg.%s) = %s", schema.Tags.Slug, next(len(filter.TagSlugs)))
		}

		conditions = append(conditions, fmt.Sprintf(`
			c.%s IN (
				SELECT ct.%s
				FROM %s ct
				JOIN %s tg ON tg.%s = ct.%s
				WHERE tg.%s = ANY(%s)
				GROUP BY ct.%s
				%s
			)`,
			schema.Comics.ID,
			schema.ComicTag.ComicID,
			schema.ComicTag.Table,
			schema.Tags.Table, schema.Tags.ID, schema.ComicTag.TagID,
			schema.Tags.Slug, next(filter.TagSlugs),
			schema.ComicTag.ComicID,
			having,
		))
	}

	where := ""
	if len(conditions) > 0 {
		where = "AND " + strings.Join(conditions, " AND ")
	}

	direction := "ASC"
	if filter.SortDesc {
		direction = "DESC"
	}

	limit := next(params.Limit)
	offset := next(params.Offset())

	return fmt.Sprintf(`
		SELECT COUNT(*) OVER() AS total,
		       c.%s, c.%s, c.%s, t.%s, c.%s, i.%s, i.%s
		FROM %s c
		JOIN %s t ON t.%s = c.%s AND t.%s = $1 AND t.%s = '%s'
		LEFT JOIN LATERAL (
			SELECT %s, %s
			FROM %s
			WHERE %s = '%s' AND %s = t.%s AND %s = FALSE
			ORDER BY %s
			LIMIT 1
		) i ON TRUE
		WHERE TRUE %s
		ORDER BY c.%s %s NULLS LAST
		LIMIT %s OFFSET %s
	`,
		schema.Comics.ID, schema.Comics.Number, schema.Comics.Slug,
		schema.Translations.Title, schema.Comics.PublicationDate,
		schema.Images.ImagePath, schema.Images.ThumbnailPath,
		schema.Comics.Table,
		schema.Translations.Table, schema.Translations.ComicID, schema.Comics.ID,
		schema.Translations.Language, schema.Translations.Status, "PUBLISHED",
		schema.Images.ImagePath, schema.Images.ThumbnailPath,
		schema.Images.Table,
		schema.Images.EntityType, "TRANSLATION", schema.Images.EntityID, schema.Translations.ID,
		schema.Images.IsDeleted,
		schema.Images.ID,
		where,
		schema.Comics.Number, direction,
		limit, offset,
	), args
}
