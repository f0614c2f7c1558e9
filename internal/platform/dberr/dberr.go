// Copyright (c) 2026 Komikan. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
//
// # Integrity-violation translation
//
// The catalog leans on named Postgres constraints to enforce its uniqueness
// invariants. When a write trips one of them, the resulting SQLSTATE 23505
// is translated here into the matching domain conflict so that callers never
// have to inspect driver internals.
package dberr

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/taibuivan/komikan/internal/platform/apperr"
)

// Constraint names referenced by the schema migrations. Renaming one in SQL
// without updating this table silently downgrades the error to INTERNAL_ERROR.
const (
	ConstraintComicNumber     = "uq_comic_number_if_not_extra"
	ConstraintExtraComicTitle = "uq_comic_title_if_extra"
	ConstraintTranslation     = "uq_translation_if_not_draft"
	ConstraintTagSlug         = "uq_tags_slug"
	ConstraintImagePath       = "uq_images_path_if_not_deleted"
)

// ErrNotFound is a standard error returned when a queried row doesn't exist.
var ErrNotFound = apperr.NotFound("Resource")

// Wrap inspects a database error and wraps it into a meaningful [apperr.AppError].
// It hides internal database details from the client while classifying the error type.
func Wrap(err error, action string) error {
	if err == nil {
		return nil
	}

	// 1. Not Found mapping
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}

	// 2. Unique violation mapping keyed by constraint name
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		if conflict := conflictFor(pgErr.ConstraintName); conflict != nil {
			return conflict
		}
	}

	// 3. Unknown query errors become Internal Server Errors
	return apperr.Internal(err)
}

// conflictFor maps a violated constraint name to the domain conflict error.
func conflictFor(constraint string) *apperr.AppError {
	switch constraint {
	case ConstraintComicNumber:
		return apperr.Conflict("A comic with this issue number already exists").
			WithCode("COMIC_NUMBER_EXISTS")
	case ConstraintExtraComicTitle:
		return apperr.Conflict("An extra comic with this title already exists").
			WithCode("EXTRA_COMIC_TITLE_EXISTS")
	case ConstraintTranslation:
		return apperr.Conflict("A published translation for this language already exists").
			WithCode("TRANSLATION_EXISTS")
	case ConstraintTagSlug:
		return apperr.Conflict("A tag with this name already exists").
			WithCode("TAG_NAME_EXISTS")
	case ConstraintImagePath:
		return apperr.Conflict("An image with this path already exists").
			WithCode("IMAGE_PATH_EXISTS")
	}
	return nil
}
