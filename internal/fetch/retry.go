// Copyright (c) 2026 Komikan. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package fetch

import (
	"context"
	"errors"
	"io"
	"net"
	"syscall"
	"time"
)

// retryPolicy decides whether a failed attempt is worth repeating and how
// long to wait before doing so.
//
// # Backoff
//
// The delay doubles per attempt starting from baseDelay. There is no jitter:
// the global semaphore and per-host limiter already spread the load.
type retryPolicy struct {
	maxAttempts int
	baseDelay   time.Duration

	// retryableStatus is the set of HTTP status codes worth retrying.
	// It differs between GET and POST (see DefaultGetRetryStatus).
	retryableStatus map[int]bool
}

// DefaultGetRetryStatus is the retryable status set for idempotent requests.
var DefaultGetRetryStatus = map[int]bool{429: true, 500: true, 503: true}

// DefaultPostRetryStatus excludes 500: a POST may have taken effect upstream.
var DefaultPostRetryStatus = map[int]bool{429: true, 503: true}

// ShouldRetryStatus reports whether the status code is in the retryable set.
func (p retryPolicy) ShouldRetryStatus(status int, attempt int) bool {
	if attempt >= p.maxAttempts {
		return false
	}
	return p.retryableStatus[status]
}

// ShouldRetryError reports whether the transport error is transient.
func (p retryPolicy) ShouldRetryError(err error, attempt int) bool {
	if err == nil || attempt >= p.maxAttempts {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	// Connection-level failures: refused, reset, aborted mid-body.
	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return dnsErr.IsTemporary || dnsErr.IsTimeout
	}

	return false
}

// Backoff returns the wait duration before the given (zero-based) attempt.
func (p retryPolicy) Backoff(attempt int) time.Duration {
	delay := p.baseDelay
	for i := 0; i < attempt; i++ {
		delay *= 2
	}
	return delay
}

// sleep waits for d or until the context is cancelled.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
