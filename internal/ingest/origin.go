// Copyright (c) 2026 Komikan. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package ingest

import (
	"context"
	"log/slog"

	"github.com/taibuivan/komikan/internal/core/comic"
	"github.com/taibuivan/komikan/internal/platform/apperr"
	"github.com/taibuivan/komikan/internal/scrape"
	"github.com/taibuivan/komikan/pkg/pointer"
)

/*
Description:

	SyncOrigin brings the catalog up to date with the origin site. It
	resolves the latest issue number, diffs the wanted range against the
	numbers already present, scrapes the missing issues concurrently, and
	ingests each one: explain enrichment, image download, then comic plus
	original translation in a single transaction.

Parameters:

	limits: range and concurrency bounds. A zero Start resumes from the
	checkpoint; a zero End extends to the latest published issue.

Returns:

	The count of newly ingested comics.
*/
func (service *Service) SyncOrigin(context context.Context, limits scrape.Limits) (int, error) {
	latest, err := service.origin.Latest(context)
	if err != nil {
		return 0, err
	}

	if limits.Start <= 0 {
		last, err := service.checkpoints.Last(context, sourceOrigin)
		if err != nil {
			return 0, err
		}
		limits.Start = last + 1
	}
	if limits.End <= 0 || limits.End > latest {
		limits.End = latest
	}

	have, err := service.comics.ListNumbers(context)
	if err != nil {
		return 0, err
	}
	missing := missingNumbers(limits.Range(), have)

	service.logger.Info("origin_sync_started",
		slog.Int("latest", latest),
		slog.Int("start", limits.Start),
		slog.Int("end", limits.End),
		slog.Int("missing", len(missing)),
	)

	if len(missing) == 0 {
		return 0, service.checkpoints.Record(context, sourceOrigin, limits.End)
	}

	results, err := scrape.RunConcurrently(context, missing, service.origin.ScrapeOne,
		limits.ChunkSize, limits.Delay, service.progress("origin"), service.logger)
	if err != nil {
		return 0, err
	}

	ingested := 0
	for _, scraped := range results {
		if err := service.ingestComic(context, scraped); err != nil {
			service.logger.Error("comic_ingest_failed",
				slog.Int("number", scraped.Number),
				slog.Any("error", err),
			)
			continue
		}
		ingested++
	}

	if err := service.checkpoints.Record(context, sourceOrigin, limits.End); err != nil {
		return ingested, err
	}

	service.logger.Info("origin_sync_finished", slog.Int("ingested", ingested))
	return ingested, nil
}

// ingestComic creates one comic from its origin record. An issue that is
// already in the catalog is left untouched.
func (service *Service) ingestComic(context context.Context, scraped *scrape.ComicScraped) error {
	request := comic.CreateRequest{
		Number:          pointer.To(scraped.Number),
		Title:           scraped.Title,
		PublicationDate: scraped.PublicationDate,
		Tooltip:         scraped.Tooltip,
		IsInteractive:   scraped.IsInteractive,
		TagsFromExplain: true,
	}
	if scraped.ClickURL != "" {
		request.ClickURL = pointer.To(scraped.ClickURL)
	}

	// Enrichment is best effort: the wiki lagging behind the origin must
	// not block ingestion of the issue itself.
	enriched, err := service.explain.ScrapeOne(context, scraped.Number)
	if err != nil {
		service.logger.Warn("explain_enrichment_failed",
			slog.Int("number", scraped.Number),
			slog.Any("error", err),
		)
	} else if enriched != nil {
		request.ExplainURL = pointer.To(enriched.URL)
		request.Transcript = enriched.TranscriptHTML
		request.Tags = enriched.Tags
	}

	if scraped.ImageURL != "" {
		imageID, err := service.stageImage(context, scraped.ImageURL)
		if err != nil {
			return err
		}
		request.ImageID = imageID
	}

	if _, err := service.comics.CreateComic(context, request); err != nil {
		// A concurrent or earlier scan won the race; the issue is present.
		if apperr.HasCode(err, "COMIC_NUMBER_EXISTS") {
			return nil
		}
		return err
	}

	return nil
}

// progress returns a per-source chunk progress logger.
func (service *Service) progress(source string) scrape.Progress {
	return func(done, total int) {
		service.logger.Info("scan_progress",
			slog.String("source", source),
			slog.Int("done", done),
			slog.Int("total", total),
		)
	}
}
