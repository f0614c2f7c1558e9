// Copyright (c) 2026 Komikan. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/taibuivan/komikan/pkg/uuidv7"
)

// Downloader streams remote images into the staging directory. Files are
// written under <staticRoot>/<tempDir> with UUIDv7 names so concurrent
// downloads never collide and stale leftovers sort by age.
type Downloader struct {
	fetcher    *Fetcher
	logger     *slog.Logger
	stagingDir string
	maxBytes   int64
}

// StagedFile describes a successfully downloaded file in the staging area.
type StagedFile struct {
	// TempID is the UUIDv7 base name, without extension.
	TempID string

	// Path is the absolute path of the staged file.
	Path string

	// Size is the byte count written.
	Size int64

	// ContentType is the Content-Type header of the response, if any.
	ContentType string
}

// NewDownloader creates a Downloader writing into staticRoot/tempDir,
// creating the directory if needed.
func NewDownloader(fetcher *Fetcher, staticRoot, tempDir string, maxBytes int64, logger *slog.Logger) (*Downloader, error) {
	stagingDir := filepath.Join(staticRoot, tempDir)
	if err := os.MkdirAll(stagingDir, 0o755); err != nil {
		return nil, fmt.Errorf("fetch: creating staging directory %s: %w", stagingDir, err)
	}

	return &Downloader{
		fetcher:    fetcher,
		logger:     logger.With(slog.String("component", "downloader")),
		stagingDir: stagingDir,
		maxBytes:   maxBytes,
	}, nil
}

/*
Download fetches rawURL into the staging directory.

The body is streamed straight to disk, never buffered in memory. On any
failure after the file is created, the partial file is removed before the
error is returned, so the staging directory only ever holds complete files.

Parameters:
  - ctx: request context
  - rawURL: absolute URL of the image

Returns:
  - *StagedFile: the staged file description
  - error: *DownloadError wrapping the cause; ErrEmptyPayload for a
    zero-byte body, *SizeLimitError past the byte limit
*/
func (d *Downloader) Download(ctx context.Context, rawURL string) (*StagedFile, error) {
	body, header, err := d.fetcher.GetStream(ctx, rawURL)
	if err != nil {
		return nil, &DownloadError{URL: rawURL, Reason: err}
	}
	defer body.Close()

	tempID := uuidv7.New()
	path := filepath.Join(d.stagingDir, tempID+extensionFor(rawURL))

	file, err := os.Create(path)
	if err != nil {
		return nil, &DownloadError{URL: rawURL, Reason: err}
	}

	written, err := io.Copy(file, io.LimitReader(body, d.maxBytes+1))
	closeErr := file.Close()

	switch {
	case err != nil:
		d.discard(path)
		return nil, &DownloadError{URL: rawURL, Reason: err}
	case closeErr != nil:
		d.discard(path)
		return nil, &DownloadError{URL: rawURL, Reason: closeErr}
	case written == 0:
		d.discard(path)
		return nil, &DownloadError{URL: rawURL, Reason: ErrEmptyPayload}
	case written > d.maxBytes:
		d.discard(path)
		return nil, &DownloadError{URL: rawURL, Reason: &SizeLimitError{Limit: d.maxBytes}}
	}

	d.logger.Debug("image staged",
		slog.String("url", rawURL),
		slog.String("path", path),
		slog.Int64("size", written),
	)

	return &StagedFile{
		TempID:      tempID,
		Path:        path,
		Size:        written,
		ContentType: header.Get("Content-Type"),
	}, nil
}

// Discard removes a staged file. Missing files are not an error: a crashed
// run may already have been cleaned up by hand.
func (d *Downloader) Discard(staged *StagedFile) error {
	if staged == nil {
		return nil
	}
	if err := os.Remove(staged.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("fetch: removing staged file %s: %w", staged.Path, err)
	}
	return nil
}

func (d *Downloader) discard(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		d.logger.Warn("failed to remove partial download", slog.String("path", path), slog.String("error", err.Error()))
	}
}

// extensionFor extracts a usable file extension from the URL path.
// Unknown or query-tainted extensions degrade to none; format sniffing
// happens later in the image pipeline.
func extensionFor(rawURL string) string {
	base := rawURL
	if i := strings.IndexAny(base, "?#"); i >= 0 {
		base = base[:i]
	}

	ext := strings.ToLower(filepath.Ext(base))
	switch ext {
	case ".png", ".jpg", ".jpeg", ".gif", ".webp":
		return ext
	}
	return ""
}
