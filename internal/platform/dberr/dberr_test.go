// Copyright (c) 2026 Komikan. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package dberr_test

import (
	"errors"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/komikan/internal/platform/apperr"
	"github.com/taibuivan/komikan/internal/platform/dberr"
)

/*
TestWrap_UniqueViolations verifies that each named catalog constraint is
translated to its matching domain conflict code.
*/
func TestWrap_UniqueViolations(t *testing.T) {
	cases := []struct {
		constraint string
		code       string
	}{
		{dberr.ConstraintComicNumber, "COMIC_NUMBER_EXISTS"},
		{dberr.ConstraintExtraComicTitle, "EXTRA_COMIC_TITLE_EXISTS"},
		{dberr.ConstraintTranslation, "TRANSLATION_EXISTS"},
		{dberr.ConstraintTagSlug, "TAG_NAME_EXISTS"},
		{dberr.ConstraintImagePath, "IMAGE_PATH_EXISTS"},
	}

	for _, tc := range cases {
		t.Run(tc.constraint, func(t *testing.T) {
			pgErr := &pgconn.PgError{
				Code:           pgerrcode.UniqueViolation,
				ConstraintName: tc.constraint,
			}

			wrapped := dberr.Wrap(pgErr, "create")

			ae := apperr.As(wrapped)
			require.NotNil(t, ae)
			assert.Equal(t, tc.code, ae.Code)
			assert.Equal(t, 409, ae.HTTPStatus)
		})
	}
}

/*
TestWrap_NoRows verifies that pgx.ErrNoRows becomes a NOT_FOUND error.
*/
func TestWrap_NoRows(t *testing.T) {
	wrapped := dberr.Wrap(pgx.ErrNoRows, "lookup")

	ae := apperr.As(wrapped)
	require.NotNil(t, ae)
	assert.Equal(t, "NOT_FOUND", ae.Code)
}

/*
TestWrap_UnknownConstraint verifies that a unique violation on an unmapped
constraint degrades to an internal error rather than a misleading conflict.
*/
func TestWrap_UnknownConstraint(t *testing.T) {
	pgErr := &pgconn.PgError{
		Code:           pgerrcode.UniqueViolation,
		ConstraintName: "uq_something_else",
	}

	wrapped := dberr.Wrap(pgErr, "create")

	ae := apperr.As(wrapped)
	require.NotNil(t, ae)
	assert.Equal(t, "INTERNAL_ERROR", ae.Code)
}

/*
TestWrap_Nil verifies pass-through behavior for nil and plain errors.
*/
func TestWrap_Nil(t *testing.T) {
	assert.NoError(t, dberr.Wrap(nil, "noop"))

	plain := errors.New("connection reset")
	ae := apperr.As(dberr.Wrap(plain, "query"))
	require.NotNil(t, ae)
	assert.Equal(t, "INTERNAL_ERROR", ae.Code)
}
