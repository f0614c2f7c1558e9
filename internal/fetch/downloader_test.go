// Copyright (c) 2026 Komikan. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package fetch_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/komikan/internal/fetch"
)

func testDownloader(t *testing.T, maxBytes int64) (*fetch.Downloader, string) {
	t.Helper()

	root := t.TempDir()

	f := fetch.New(fetch.Options{
		MaxInflight: 4,
		RetryCount:  2,
		RetryDelay:  5 * time.Millisecond,
		ClientTTL:   time.Minute,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(f.Close)

	d, err := fetch.NewDownloader(f, root, "tmp", maxBytes, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	return d, filepath.Join(root, "tmp")
}

// stagedFiles lists the staging directory contents.
func stagedFiles(t *testing.T, dir string) []string {
	t.Helper()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

/*
TestDownloader_Download_Success checks the happy path: the body lands on
disk with a UUID name and the original extension.
*/
func TestDownloader_Download_Success(t *testing.T) {
	payload := []byte("\x89PNG fake image bytes")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(payload)
	}))
	defer srv.Close()

	d, stagingDir := testDownloader(t, 1<<20)

	staged, err := d.Download(context.Background(), srv.URL+"/comics/duty_calls.png")
	require.NoError(t, err)

	assert.NotEmpty(t, staged.TempID)
	assert.Equal(t, int64(len(payload)), staged.Size)
	assert.Equal(t, "image/png", staged.ContentType)
	assert.Equal(t, ".png", filepath.Ext(staged.Path))

	onDisk, err := os.ReadFile(staged.Path)
	require.NoError(t, err)
	assert.Equal(t, payload, onDisk)

	require.NoError(t, d.Discard(staged))
	assert.Empty(t, stagedFiles(t, stagingDir))
}

/*
TestDownloader_Download_EmptyBody checks that a zero-byte response is
rejected and leaves nothing behind.
*/
func TestDownloader_Download_EmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	d, stagingDir := testDownloader(t, 1<<20)

	staged, err := d.Download(context.Background(), srv.URL+"/empty.png")

	require.Error(t, err)
	assert.Nil(t, staged)
	assert.ErrorIs(t, err, fetch.ErrEmptyPayload)
	assert.Empty(t, stagedFiles(t, stagingDir))
}

/*
TestDownloader_Download_SizeLimit checks that an oversized body is rejected
and the partial file is removed.
*/
func TestDownloader_Download_SizeLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(make([]byte, 2048))
	}))
	defer srv.Close()

	d, stagingDir := testDownloader(t, 1024)

	staged, err := d.Download(context.Background(), srv.URL+"/huge.png")

	require.Error(t, err)
	assert.Nil(t, staged)

	var sizeErr *fetch.SizeLimitError
	require.ErrorAs(t, err, &sizeErr)
	assert.Equal(t, int64(1024), sizeErr.Limit)
	assert.Empty(t, stagedFiles(t, stagingDir))
}

/*
TestDownloader_Download_NotFound checks that a 404 surfaces as a
DownloadError without touching the staging directory.
*/
func TestDownloader_Download_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	d, stagingDir := testDownloader(t, 1<<20)

	staged, err := d.Download(context.Background(), srv.URL+"/missing.png")

	require.Error(t, err)
	assert.Nil(t, staged)

	var dlErr *fetch.DownloadError
	require.ErrorAs(t, err, &dlErr)
	assert.Empty(t, stagedFiles(t, stagingDir))
}

/*
TestDownloader_Download_UnknownExtension checks that query-tainted or
unusual extensions degrade to no extension rather than polluting names.
*/
func TestDownloader_Download_UnknownExtension(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("bytes"))
	}))
	defer srv.Close()

	d, _ := testDownloader(t, 1<<20)

	staged, err := d.Download(context.Background(), srv.URL+"/image.php?id=42")
	require.NoError(t, err)
	defer func() { _ = d.Discard(staged) }()

	assert.Equal(t, "", filepath.Ext(staged.Path))
}

/*
TestDownloader_Discard_MissingFile checks that discarding an already-removed
file is not an error.
*/
func TestDownloader_Discard_MissingFile(t *testing.T) {
	d, stagingDir := testDownloader(t, 1<<20)

	err := d.Discard(&fetch.StagedFile{Path: filepath.Join(stagingDir, "gone.png")})
	assert.NoError(t, err)
	assert.False(t, errors.Is(err, os.ErrNotExist))
}
