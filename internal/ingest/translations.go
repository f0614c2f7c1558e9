// Copyright (c) 2026 Komikan. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/jackc/pgx/v5"

	"github.com/taibuivan/komikan/internal/core/comic"
	"github.com/taibuivan/komikan/internal/core/image"
	"github.com/taibuivan/komikan/internal/core/translation"
	"github.com/taibuivan/komikan/internal/platform/apperr"
	"github.com/taibuivan/komikan/internal/platform/postgres"
	"github.com/taibuivan/komikan/internal/scrape"
	"github.com/taibuivan/komikan/pkg/slug"
)

/*
Description:

	SyncTranslations ingests one mirror's translations. Number-keyed
	mirrors scan an issue range; link-keyed mirrors enumerate their strip
	pages. Issues without an origin comic and pairs that already carry a
	published translation are skipped.

Parameters:

	language: the mirror's language code (de, es, fr, ru, zh).
	limits: range and concurrency bounds; ignored Start/End for
	link-keyed mirrors, which always enumerate everything they have.

Returns:

	The count of newly created translations.
*/
func (service *Service) SyncTranslations(context context.Context, language string, limits scrape.Limits) (int, error) {
	for _, scraper := range service.numbered {
		if scraper.Language() == language {
			return service.syncNumbered(context, scraper, limits)
		}
	}
	for _, scraper := range service.linked {
		if scraper.Language() == language {
			return service.syncLinked(context, scraper, limits)
		}
	}

	return 0, fmt.Errorf("ingest: no scraper for language %q", language)
}

func (service *Service) syncNumbered(context context.Context, scraper scrape.TranslationScraper, limits scrape.Limits) (int, error) {
	language := scraper.Language()

	latest, err := scraper.Latest(context)
	if err != nil {
		return 0, err
	}

	if limits.Start <= 0 {
		last, err := service.checkpoints.Last(context, language)
		if err != nil {
			return 0, err
		}
		limits.Start = last + 1
	}
	if limits.End <= 0 || limits.End > latest {
		limits.End = latest
	}

	candidates, err := service.translationCandidates(context, language, limits.Range())
	if err != nil {
		return 0, err
	}

	service.logger.Info("translation_sync_started",
		slog.String("language", language),
		slog.Int("latest", latest),
		slog.Int("candidates", len(candidates)),
	)

	if len(candidates) == 0 {
		return 0, service.checkpoints.Record(context, language, limits.End)
	}

	results, err := scrape.RunConcurrently(context, candidates, scraper.ScrapeOne,
		limits.ChunkSize, limits.Delay, service.progress(language), service.logger)
	if err != nil {
		return 0, err
	}

	created := service.ingestTranslations(context, results)

	if err := service.checkpoints.Record(context, language, limits.End); err != nil {
		return created, err
	}

	service.logger.Info("translation_sync_finished",
		slog.String("language", language),
		slog.Int("created", created),
	)
	return created, nil
}

func (service *Service) syncLinked(context context.Context, scraper scrape.LinkScraper, limits scrape.Limits) (int, error) {
	language := scraper.Language()

	links, err := scraper.Links(context)
	if err != nil {
		return 0, err
	}

	service.logger.Info("translation_sync_started",
		slog.String("language", language),
		slog.Int("links", len(links)),
	)

	results, err := scrape.RunConcurrently(context, links, scraper.ScrapeLink,
		limits.ChunkSize, limits.Delay, service.progress(language), service.logger)
	if err != nil {
		return 0, err
	}

	created := service.ingestTranslations(context, results)

	service.logger.Info("translation_sync_finished",
		slog.String("language", language),
		slog.Int("created", created),
	)
	return created, nil
}

// translationCandidates narrows a wanted range to the issues that exist in
// the catalog and have no published translation in the language yet.
func (service *Service) translationCandidates(context context.Context, language string, want []int) ([]int, error) {
	have, err := service.comics.ListNumbers(context)
	if err != nil {
		return nil, err
	}
	translated, err := service.comics.ListNumbersTranslated(context, language)
	if err != nil {
		return nil, err
	}

	// Only numbers present in the catalog can take a translation.
	return missingNumbers(presentNumbers(want, have), translated), nil
}

func (service *Service) ingestTranslations(context context.Context, results []*scrape.TranslationScraped) int {
	created := 0
	for _, scraped := range results {
		if err := service.ingestTranslation(context, scraped); err != nil {
			service.logger.Error("translation_ingest_failed",
				slog.Int("number", scraped.Number),
				slog.String("language", scraped.Language),
				slog.Any("error", err),
			)
			continue
		}
		created++
	}
	return created
}

// ingestTranslation creates one published translation with its image in a
// single transaction. A pair that is already published is left untouched
// and the staged image is discarded.
func (service *Service) ingestTranslation(context context.Context, scraped *scrape.TranslationScraped) error {
	target, err := service.comics.GetByNumber(context, scraped.Number)
	if errors.Is(err, comic.ErrNotFound) {
		// The mirror translated an issue the origin scan has not ingested
		// yet; the next run will pick it up.
		service.discardStaged(scraped)
		return nil
	}
	if err != nil {
		return err
	}

	err = postgres.WithTx(context, service.pool, func(tx pgx.Tx) error {
		created, err := translation.NewPostgresRepository(tx).Create(context, target.ID, translation.Request{
			Language:          scraped.Language,
			Title:             scraped.Title,
			Tooltip:           scraped.Tooltip,
			TranslatorComment: scraped.TranslatorComment,
			SourceURL:         scraped.SourceURL,
			Status:            translation.StatusPublished,
		})
		if err != nil {
			return err
		}

		if scraped.Image == nil {
			return nil
		}

		img, err := service.images.RegisterStaged(context, tx, filepath.Base(scraped.Image.Path))
		if err != nil {
			return err
		}

		return service.images.Attach(context, tx, created.ID, img.ID, image.PathData{
			Number:          target.Number,
			OriginalSlug:    extraSlug(target),
			Language:        scraped.Language,
			TranslationSlug: translationSlug(target, scraped.Title),
		})
	})
	if apperr.HasCode(err, "TRANSLATION_EXISTS") {
		service.discardStaged(scraped)
		return nil
	}
	if err != nil {
		service.discardStaged(scraped)
		return err
	}

	return nil
}

// translationSlug derives the path segment for a translated title. Titles in
// a non-Latin script slugify to nothing; the comic's own slug takes over so
// RU and ZH translations keep well-formed image paths.
func translationSlug(target *comic.Comic, title string) string {
	return slug.Fallback(title, target.Slug)
}

// discardStaged drops the staged image of a skipped translation.
func (service *Service) discardStaged(scraped *scrape.TranslationScraped) {
	if scraped.Image == nil {
		return
	}
	if err := service.downloader.Discard(scraped.Image); err != nil {
		service.logger.Error("staged file discard failed",
			slog.String("path", scraped.Image.Path),
			slog.Any("error", err),
		)
	}
}

func extraSlug(c *comic.Comic) string {
	if c.Number != nil {
		return ""
	}
	return c.Slug
}
