// Copyright (c) 2026 Komikan. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package ingest assembles the scrape pipeline into catalog writes.

Architecture:

	SyncOrigin        ──> Origin + Explain ──> comic.Service (one tx per comic)
	SyncTranslations  ──> mirror scrapers  ──> translation rows + image attach

Both scans are incremental: a Redis checkpoint per source bounds the range,
and re-ingesting an already-present issue is a no-op, so a crashed scan can
simply be re-run. One failing issue is logged and skipped; the scan never
aborts for a single bad page.
*/
package ingest

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/komikan/internal/core/comic"
	"github.com/taibuivan/komikan/internal/core/image"
	"github.com/taibuivan/komikan/internal/fetch"
	"github.com/taibuivan/komikan/internal/scrape"
)

// sourceOrigin is the checkpoint key for the origin site; translation
// sources checkpoint under their language code.
const sourceOrigin = "origin"

// Service runs the ingestion scans.
type Service struct {
	pool        *pgxpool.Pool
	comics      *comic.Service
	images      *image.Service
	downloader  *fetch.Downloader
	origin      *scrape.Origin
	explain     *scrape.Explain
	numbered    []scrape.TranslationScraper
	linked      []scrape.LinkScraper
	checkpoints *Checkpoints
	logger      *slog.Logger
}

func NewService(
	pool *pgxpool.Pool,
	comics *comic.Service,
	images *image.Service,
	downloader *fetch.Downloader,
	origin *scrape.Origin,
	explain *scrape.Explain,
	numbered []scrape.TranslationScraper,
	linked []scrape.LinkScraper,
	checkpoints *Checkpoints,
	logger *slog.Logger,
) *Service {
	return &Service{
		pool:        pool,
		comics:      comics,
		images:      images,
		downloader:  downloader,
		origin:      origin,
		explain:     explain,
		numbered:    numbered,
		linked:      linked,
		checkpoints: checkpoints,
		logger:      logger,
	}
}

// stageImage downloads url and records the staged image row, returning its
// id. The staged file is discarded when the row cannot be created.
func (service *Service) stageImage(context context.Context, url string) (*int64, error) {
	staged, err := service.downloader.Download(context, url)
	if err != nil {
		return nil, err
	}

	img, err := service.images.RegisterStaged(context, service.pool, filepath.Base(staged.Path))
	if err != nil {
		if discardErr := service.downloader.Discard(staged); discardErr != nil {
			service.logger.Error("staged file discard failed",
				slog.String("path", staged.Path),
				slog.Any("error", discardErr),
			)
		}
		return nil, err
	}

	return &img.ID, nil
}

// missingNumbers returns the numbers of want that are absent from have,
// preserving want's order.
func missingNumbers(want, have []int) []int {
	present := make(map[int]struct{}, len(have))
	for _, n := range have {
		present[n] = struct{}{}
	}

	missing := make([]int, 0, len(want))
	for _, n := range want {
		if _, ok := present[n]; !ok {
			missing = append(missing, n)
		}
	}
	return missing
}

// presentNumbers returns the numbers of want that are also in have,
// preserving want's order.
func presentNumbers(want, have []int) []int {
	present := make(map[int]struct{}, len(have))
	for _, n := range have {
		present[n] = struct{}{}
	}

	kept := make([]int, 0, len(want))
	for _, n := range want {
		if _, ok := present[n]; ok {
			kept = append(kept, n)
		}
	}
	return kept
}
