// Copyright (c) 2026 Komikan. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package fetch

import (
	"errors"
	"fmt"
)

// ErrEmptyPayload is returned when a download yields a zero-byte body.
var ErrEmptyPayload = errors.New("fetch: downloaded file is empty")

// RequestError reports an HTTP request whose retry budget is exhausted.
//
// It lives at the transport boundary: scrapers translate it into their own
// data-level failures, the catalog never sees it.
type RequestError struct {
	Method string
	URL    string
	Reason error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("fetch: %s %s failed: %v", e.Method, e.URL, e.Reason)
}

func (e *RequestError) Unwrap() error { return e.Reason }

// DownloadError reports a failed image download.
type DownloadError struct {
	URL    string
	Reason error
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("fetch: downloading %s failed: %v", e.URL, e.Reason)
}

func (e *DownloadError) Unwrap() error { return e.Reason }

// SizeLimitError reports a download that exceeded the configured byte limit.
type SizeLimitError struct {
	Limit int64
}

func (e *SizeLimitError) Error() string {
	return fmt.Sprintf("fetch: download exceeds the %d byte limit", e.Limit)
}
