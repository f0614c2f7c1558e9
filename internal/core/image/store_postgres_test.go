// Copyright (c) 2026 Komikan. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package image

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeQuerier records the statements a repository method issues and replays
// canned results, standing in for a pool or transaction.
type fakeQuerier struct {
	execTag pgconn.CommandTag
	execErr error
	rowScan func(dest ...any) error

	execSQL []string
	rowSQL  []string
}

func (q *fakeQuerier) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	q.execSQL = append(q.execSQL, sql)
	return q.execTag, q.execErr
}

func (q *fakeQuerier) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, errors.New("unexpected Query")
}

func (q *fakeQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	q.rowSQL = append(q.rowSQL, sql)
	return scanFunc(q.rowScan)
}

func (q *fakeQuerier) SendBatch(ctx context.Context, batch *pgx.Batch) pgx.BatchResults {
	return nil
}

type scanFunc func(dest ...any) error

func (f scanFunc) Scan(dest ...any) error { return f(dest...) }

/*
TestSetDerivedPaths_WritesChangedRow applies the update when the derived
paths differ from what the row holds, without any follow-up lookup.
*/
func TestSetDerivedPaths_WritesChangedRow(t *testing.T) {
	db := &fakeQuerier{execTag: pgconn.NewCommandTag("UPDATE 1")}
	repository := NewPostgresRepository()

	err := repository.SetDerivedPaths(context.Background(), db, 7,
		"images/comics/00614/en/woodpecker_0123456789ab_740x250.webp",
		"images/comics/00614/en/woodpecker_0123456789ab_250x84_thumb.webp")

	require.NoError(t, err)
	require.Len(t, db.execSQL, 1)
	assert.Contains(t, db.execSQL[0], "IS DISTINCT FROM")
	assert.Empty(t, db.rowSQL)
}

/*
TestSetDerivedPaths_RedeliveryIsNoop treats an update that matched no row
because the paths are already recorded as success, so a redelivered
post-process result neither errors nor bumps updated_at.
*/
func TestSetDerivedPaths_RedeliveryIsNoop(t *testing.T) {
	db := &fakeQuerier{
		execTag: pgconn.NewCommandTag("UPDATE 0"),
		rowScan: func(dest ...any) error {
			*(dest[0].(*bool)) = true
			return nil
		},
	}
	repository := NewPostgresRepository()

	err := repository.SetDerivedPaths(context.Background(), db, 7, "a.webp", "b.webp")

	require.NoError(t, err)
	require.Len(t, db.rowSQL, 1)
	assert.Contains(t, db.rowSQL[0], "SELECT EXISTS")
}

/*
TestSetDerivedPaths_MissingRow still reports ErrNotFound when the zero-row
update is caused by the image not existing at all.
*/
func TestSetDerivedPaths_MissingRow(t *testing.T) {
	db := &fakeQuerier{
		execTag: pgconn.NewCommandTag("UPDATE 0"),
		rowScan: func(dest ...any) error {
			*(dest[0].(*bool)) = false
			return nil
		},
	}
	repository := NewPostgresRepository()

	err := repository.SetDerivedPaths(context.Background(), db, 404, "a.webp", "b.webp")

	assert.ErrorIs(t, err, ErrNotFound)
}
