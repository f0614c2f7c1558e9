// Copyright (c) 2026 Komikan. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package fetch provides the outbound HTTP layer shared by the scrapers and the
image downloader.

Architecture:

	scrape/* ──┐
	           ├──> Fetcher ──> per-host http.Client (pooled, rate limited)
	image/*  ──┘                        │
	                                    └──> cachedResolver (fixed DNS, TTL cache)

A single Fetcher is created at startup and shared by every scraper. It bounds
total in-flight requests with a global semaphore, smooths per-host request
rates, retries transient failures with doubling backoff, and recycles idle
per-host clients after a TTL so connection pools do not accumulate across a
long ingest run.
*/
package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Options tunes the shared fetcher. Zero values fall back to the defaults
// used in production.
type Options struct {
	// MaxInflight caps concurrent requests across all hosts.
	MaxInflight int

	// RetryCount is the number of attempts per request, first try included.
	RetryCount int

	// RetryDelay is the backoff before the first retry; it doubles after
	// each failed attempt.
	RetryDelay time.Duration

	// ClientTTL is how long an idle per-host client is kept before its
	// connection pool is closed.
	ClientTTL time.Duration

	// UserAgent is sent on every request.
	UserAgent string
}

func (o *Options) applyDefaults() {
	if o.MaxInflight <= 0 {
		o.MaxInflight = 25
	}
	if o.RetryCount <= 0 {
		o.RetryCount = 5
	}
	if o.RetryDelay <= 0 {
		o.RetryDelay = 2 * time.Second
	}
	if o.ClientTTL <= 0 {
		o.ClientTTL = 60 * time.Second
	}
	if o.UserAgent == "" {
		o.UserAgent = "komikan-ingestd/1.0"
	}
}

// Response is a fully buffered HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Fetcher issues rate-limited, retried HTTP requests through per-host
// pooled clients. It is safe for concurrent use.
type Fetcher struct {
	opts     Options
	logger   *slog.Logger
	resolver *cachedResolver

	// inflight is the global request semaphore.
	inflight chan struct{}

	mu      sync.Mutex
	clients map[string]*hostClient

	stopSweep chan struct{}
	sweepOnce sync.Once
}

// hostClient pairs an http.Client with a per-host rate limiter and the
// last time it served a request.
type hostClient struct {
	client   *http.Client
	limiter  *rate.Limiter
	lastUsed time.Time
}

// New creates a Fetcher and starts its idle-client sweeper.
func New(opts Options, logger *slog.Logger) *Fetcher {
	opts.applyDefaults()

	f := &Fetcher{
		opts:      opts,
		logger:    logger.With(slog.String("component", "fetch")),
		resolver:  newCachedResolver(),
		inflight:  make(chan struct{}, opts.MaxInflight),
		clients:   make(map[string]*hostClient),
		stopSweep: make(chan struct{}),
	}

	go f.sweepIdleClients()

	return f
}

// Close stops the sweeper and releases every per-host connection pool.
func (f *Fetcher) Close() {
	f.sweepOnce.Do(func() { close(f.stopSweep) })

	f.mu.Lock()
	defer f.mu.Unlock()

	for host, hc := range f.clients {
		hc.client.CloseIdleConnections()
		delete(f.clients, host)
	}
}

/*
Get performs a GET request with retries and returns the buffered response.

Parameters:
  - ctx: request context; cancellation aborts retries immediately
  - rawURL: absolute URL to fetch

Returns:
  - *Response: the last response received, including non-2xx responses
    that are not retryable
  - error: *RequestError once the retry budget is exhausted or the
    transport fails permanently
*/
func (f *Fetcher) Get(ctx context.Context, rawURL string) (*Response, error) {
	return f.do(ctx, http.MethodGet, rawURL, "", nil, DefaultGetRetryStatus)
}

/*
Post performs a POST request with retries. Unlike GET, a 500 is not retried
because the request may have taken effect on the remote side.

Parameters:
  - ctx: request context
  - rawURL: absolute URL
  - contentType: value for the Content-Type header
  - body: request payload, re-sent on every attempt

Returns:
  - *Response: the buffered response
  - error: *RequestError once the retry budget is exhausted
*/
func (f *Fetcher) Post(ctx context.Context, rawURL, contentType string, body []byte) (*Response, error) {
	return f.do(ctx, http.MethodPost, rawURL, contentType, body, DefaultPostRetryStatus)
}

// GetStream performs a GET request and returns the response body as a
// stream. The caller owns the body and must close it. Retries apply to
// connection establishment and retryable status codes only; a failure
// mid-stream is the caller's to handle.
func (f *Fetcher) GetStream(ctx context.Context, rawURL string) (io.ReadCloser, http.Header, error) {
	policy := f.policy(DefaultGetRetryStatus)

	var lastErr error

	for attempt := 0; attempt < policy.maxAttempts; attempt++ {
		if attempt > 0 {
			if err := sleep(ctx, policy.Backoff(attempt-1)); err != nil {
				return nil, nil, &RequestError{Method: http.MethodGet, URL: rawURL, Reason: err}
			}
		}

		resp, err := f.roundTrip(ctx, http.MethodGet, rawURL, "", nil)
		if err != nil {
			lastErr = err
			if policy.ShouldRetryError(err, attempt+1) {
				continue
			}
			return nil, nil, &RequestError{Method: http.MethodGet, URL: rawURL, Reason: err}
		}

		if resp.StatusCode == http.StatusOK {
			return resp.Body, resp.Header, nil
		}

		_ = resp.Body.Close()
		lastErr = fmt.Errorf("unexpected status %d", resp.StatusCode)

		if !policy.ShouldRetryStatus(resp.StatusCode, attempt+1) {
			return nil, nil, &RequestError{Method: http.MethodGet, URL: rawURL, Reason: lastErr}
		}
	}

	return nil, nil, &RequestError{Method: http.MethodGet, URL: rawURL, Reason: lastErr}
}

func (f *Fetcher) do(ctx context.Context, method, rawURL, contentType string, body []byte, retryable map[int]bool) (*Response, error) {
	policy := f.policy(retryable)

	var lastErr error

	for attempt := 0; attempt < policy.maxAttempts; attempt++ {
		if attempt > 0 {
			f.logger.Debug("retrying request",
				slog.String("method", method),
				slog.String("url", rawURL),
				slog.Int("attempt", attempt+1),
				slog.String("reason", lastErr.Error()),
			)
			if err := sleep(ctx, policy.Backoff(attempt-1)); err != nil {
				return nil, &RequestError{Method: method, URL: rawURL, Reason: err}
			}
		}

		resp, err := f.roundTrip(ctx, method, rawURL, contentType, body)
		if err != nil {
			lastErr = err
			if policy.ShouldRetryError(err, attempt+1) {
				continue
			}
			return nil, &RequestError{Method: method, URL: rawURL, Reason: err}
		}

		payload, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			lastErr = readErr
			if policy.ShouldRetryError(readErr, attempt+1) {
				continue
			}
			return nil, &RequestError{Method: method, URL: rawURL, Reason: readErr}
		}

		if !policy.retryableStatus[resp.StatusCode] {
			return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: payload}, nil
		}

		lastErr = fmt.Errorf("retryable status %d", resp.StatusCode)
	}

	return nil, &RequestError{Method: method, URL: rawURL, Reason: fmt.Errorf("retries exhausted: %w", lastErr)}
}

func (f *Fetcher) policy(retryable map[int]bool) retryPolicy {
	return retryPolicy{
		maxAttempts:     f.opts.RetryCount,
		baseDelay:       f.opts.RetryDelay,
		retryableStatus: retryable,
	}
}

// roundTrip performs one attempt: acquire the global slot, wait for the
// per-host limiter, then issue the request through that host's client.
func (f *Fetcher) roundTrip(ctx context.Context, method, rawURL, contentType string, body []byte) (*http.Response, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}

	select {
	case f.inflight <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-f.inflight }()

	hc := f.clientFor(strings.ToLower(parsed.Hostname()))

	if err := hc.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var reqBody io.Reader
	if body != nil {
		reqBody = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reqBody)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", f.opts.UserAgent)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	return hc.client.Do(req)
}

// clientFor returns the pooled client for host, creating it on first use.
func (f *Fetcher) clientFor(host string) *hostClient {
	f.mu.Lock()
	defer f.mu.Unlock()

	hc, ok := f.clients[host]
	if !ok {
		transport := &http.Transport{
			DialContext:         f.resolver.DialContext,
			MaxIdleConnsPerHost: 8,
			IdleConnTimeout:     30 * time.Second,
			ForceAttemptHTTP2:   true,
		}

		hc = &hostClient{
			client: &http.Client{
				Transport: transport,
				Timeout:   60 * time.Second,
			},
			// 4 req/s with a small burst keeps us polite against every
			// mirror without slowing a full-archive scan to a crawl.
			limiter: rate.NewLimiter(rate.Limit(4), 8),
		}
		f.clients[host] = hc
	}

	hc.lastUsed = time.Now()

	return hc
}

// sweepIdleClients closes per-host clients that have been idle longer than
// ClientTTL so their keep-alive pools are released.
func (f *Fetcher) sweepIdleClients() {
	ticker := time.NewTicker(f.opts.ClientTTL)
	defer ticker.Stop()

	for {
		select {
		case <-f.stopSweep:
			return
		case now := <-ticker.C:
			f.mu.Lock()
			for host, hc := range f.clients {
				if now.Sub(hc.lastUsed) >= f.opts.ClientTTL {
					hc.client.CloseIdleConnections()
					delete(f.clients, host)
				}
			}
			f.mu.Unlock()
		}
	}
}
