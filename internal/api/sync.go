// Copyright (c) 2026 Komikan. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/komikan/internal/platform/apperr"
	"github.com/taibuivan/komikan/internal/platform/respond"
	"github.com/taibuivan/komikan/internal/scrape"
)

// runGuard serializes scans per source: a second trigger while one is
// running is rejected instead of queued.
type runGuard struct {
	mu      sync.Mutex
	running map[string]bool
}

func newRunGuard() *runGuard {
	return &runGuard{running: make(map[string]bool)}
}

// begin marks the source as running. It reports false when a scan for the
// source is already in flight.
func (guard *runGuard) begin(source string) bool {
	guard.mu.Lock()
	defer guard.mu.Unlock()

	if guard.running[source] {
		return false
	}
	guard.running[source] = true
	return true
}

func (guard *runGuard) end(source string) {
	guard.mu.Lock()
	defer guard.mu.Unlock()
	delete(guard.running, source)
}

// syncAccepted is the 202 payload for a started scan.
type syncAccepted struct {
	Source string `json:"source"`
	Status string `json:"status"`
}

// handleSyncOrigin triggers an origin scan in the background.
func (server *Server) handleSyncOrigin(writer http.ResponseWriter, request *http.Request) {
	server.startScan(writer, request, "origin", func(ctx context.Context, limits scrape.Limits) (int, error) {
		return server.ingest.SyncOrigin(ctx, limits)
	})
}

// handleSyncTranslations triggers a scan of one mirror in the background.
func (server *Server) handleSyncTranslations(writer http.ResponseWriter, request *http.Request) {
	language := chi.URLParam(request, "language")

	server.startScan(writer, request, language, func(ctx context.Context, limits scrape.Limits) (int, error) {
		return server.ingest.SyncTranslations(ctx, language, limits)
	})
}

// startScan parses the range parameters, reserves the source, and runs the
// scan detached from the request lifecycle.
func (server *Server) startScan(writer http.ResponseWriter, request *http.Request, source string, run func(context.Context, scrape.Limits) (int, error)) {
	limits, err := parseLimits(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	limits.ChunkSize = server.config.ScrapeChunkSize
	limits.Delay = server.config.ScrapeChunkDelay

	if !server.running.begin(source) {
		respond.Error(writer, request, apperr.Conflict("A scan for this source is already running").
			WithCode("SCAN_ALREADY_RUNNING"))
		return
	}

	go func() {
		defer server.running.end(source)

		// The scan outlives the HTTP request on purpose.
		count, err := run(context.Background(), limits)
		if err != nil {
			server.logger.Error("scan_failed",
				slog.String("source", source),
				slog.Any("error", err),
			)
			return
		}
		server.logger.Info("scan_finished",
			slog.String("source", source),
			slog.Int("ingested", count),
		)
	}()

	respond.JSON(writer, http.StatusAccepted, respond.SuccessEnvelope{
		Data: syncAccepted{Source: source, Status: "started"},
	})
}

// parseLimits reads optional ?start= and ?end= bounds.
func parseLimits(request *http.Request) (scrape.Limits, error) {
	limits := scrape.Limits{}

	for name, target := range map[string]*int{
		"start": &limits.Start,
		"end":   &limits.End,
	} {
		raw := request.URL.Query().Get(name)
		if raw == "" {
			continue
		}
		value, err := strconv.Atoi(raw)
		if err != nil || value < 0 {
			return scrape.Limits{}, apperr.ValidationError("Invalid range bound", apperr.FieldError{
				Field:   name,
				Message: "must be a non-negative integer",
			})
		}
		*target = value
	}

	return limits, nil
}
