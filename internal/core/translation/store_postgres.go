// Copyright (c) 2026 Komikan. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package translation

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/taibuivan/komikan/internal/platform/database/schema"
	"github.com/taibuivan/komikan/internal/platform/dberr"
	"github.com/taibuivan/komikan/internal/platform/postgres"
)

// PostgresRepository runs against any Querier, so a service can bind it to
// the pool or to an ambient transaction.
type PostgresRepository struct {
	db postgres.Querier
}

func NewPostgresRepository(db postgres.Querier) *PostgresRepository {
	return &PostgresRepository{db: db}
}

var columns = fmt.Sprintf("%s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s",
	schema.Translations.ID, schema.Translations.ComicID, schema.Translations.Language,
	schema.Translations.Title, schema.Translations.Tooltip, schema.Translations.Transcript,
	schema.Translations.TranslatorComment, schema.Translations.SourceURL,
	schema.Translations.Status, schema.Translations.SearchableText,
	schema.Translations.CreatedAt, schema.Translations.UpdatedAt,
)

func scanTranslation(row pgx.Row) (*Translation, error) {
	t := &Translation{}
	err := row.Scan(
		&t.ID, &t.ComicID, &t.Language, &t.Title, &t.Tooltip, &t.Transcript,
		&t.TranslatorComment, &t.SourceURL, &t.Status, &t.SearchableText,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, dberr.Wrap(err, "scan_translation")
	}
	return t, nil
}

func (repository *PostgresRepository) Create(context context.Context, comicID int64, request Request) (*Translation, error) {
	searchable := ""
	if request.Status == StatusPublished {
		searchable = BuildSearchableText(request.Title, request.Transcript)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING %s
	`,
		schema.Translations.Table,
		schema.Translations.ComicID, schema.Translations.Language, schema.Translations.Title,
		schema.Translations.Tooltip, schema.Translations.Transcript, schema.Translations.TranslatorComment,
		schema.Translations.SourceURL, schema.Translations.Status, schema.Translations.SearchableText,
		columns,
	)

	row := repository.db.QueryRow(context, query,
		comicID, request.Language, request.Title, request.Tooltip, request.Transcript,
		request.TranslatorComment, request.SourceURL, request.Status, searchable,
	)

	return scanTranslation(row)
}

func (repository *PostgresRepository) GetByID(context context.Context, id int64) (*Translation, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		columns, schema.Translations.Table, schema.Translations.ID)

	return scanTranslation(repository.db.QueryRow(context, query, id))
}

func (repository *PostgresRepository) GetForUpdate(context context.Context, id int64) (*Translation, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 FOR UPDATE`,
		columns, schema.Translations.Table, schema.Translations.ID)

	return scanTranslation(repository.db.QueryRow(context, query, id))
}

func (repository *PostgresRepository) GetByLanguage(context context.Context, comicID int64, language string) (*Translation, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s = $2 AND %s = $3`,
		columns, schema.Translations.Table,
		schema.Translations.ComicID, schema.Translations.Language, schema.Translations.Status)

	return scanTranslation(repository.db.QueryRow(context, query, comicID, language, StatusPublished))
}

func (repository *PostgresRepository) GetOriginal(context context.Context, comicID int64) (*Translation, error) {
	return repository.GetByLanguage(context, comicID, LanguageOriginal)
}

// Update writes all mutable fields. The caller is expected to hold the row
// lock and to have rebuilt SearchableText for published rows.
func (repository *PostgresRepository) Update(context context.Context, translation *Translation) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $1, %s = $2, %s = $3, %s = $4, %s = $5, %s = $6, %s = $7, %s = $8,
		    %s = NOW()
		WHERE %s = $9
	`,
		schema.Translations.Table,
		schema.Translations.Language, schema.Translations.Title, schema.Translations.Tooltip,
		schema.Translations.Transcript, schema.Translations.TranslatorComment,
		schema.Translations.SourceURL, schema.Translations.Status, schema.Translations.SearchableText,
		schema.Translations.UpdatedAt,
		schema.Translations.ID,
	)

	tag, err := repository.db.Exec(context, query,
		translation.Language, translation.Title, translation.Tooltip, translation.Transcript,
		translation.TranslatorComment, translation.SourceURL, translation.Status,
		translation.SearchableText, translation.ID,
	)
	if err != nil {
		return dberr.Wrap(err, "update_translation")
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (repository *PostgresRepository) DemotePublished(context context.Context, comicID int64, language string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $1, %s = '', %s = NOW()
		WHERE %s = $2 AND %s = $3 AND %s = $4
	`,
		schema.Translations.Table,
		schema.Translations.Status, schema.Translations.SearchableText, schema.Translations.UpdatedAt,
		schema.Translations.ComicID, schema.Translations.Language, schema.Translations.Status,
	)

	if _, err := repository.db.Exec(context, query, StatusDraft, comicID, language, StatusPublished); err != nil {
		return dberr.Wrap(err, "demote_published_translation")
	}

	return nil
}

func (repository *PostgresRepository) Delete(context context.Context, id int64) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`,
		schema.Translations.Table, schema.Translations.ID)

	tag, err := repository.db.Exec(context, query, id)
	if err != nil {
		return dberr.Wrap(err, "delete_translation")
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}
