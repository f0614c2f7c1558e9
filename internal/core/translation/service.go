// Copyright (c) 2026 Komikan. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package translation

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/komikan/internal/core/image"
	"github.com/taibuivan/komikan/internal/platform/postgres"
	"github.com/taibuivan/komikan/pkg/slug"
)

// Service orchestrates translation writes and enforces the original-
// translation guards that the schema cannot express.
//
// The image path encodes language, title slug, and draft status, so every
// write that touches one of those relocates the attached file in the same
// transaction.
type Service struct {
	pool   *pgxpool.Pool
	images *image.Service
	logger *slog.Logger
}

func NewService(pool *pgxpool.Pool, images *image.Service, logger *slog.Logger) *Service {
	return &Service{
		pool:   pool,
		images: images,
		logger: logger,
	}
}

func (service *Service) CreateTranslation(context context.Context, comicID int64, request Request) (*Translation, error) {
	if err := request.validate(); err != nil {
		return nil, err
	}
	if request.Language == LanguageOriginal {
		// The original is created together with its comic, never on its own.
		return nil, ErrOriginalForbidden
	}
	if request.Status == "" {
		request.Status = StatusPublished
	}

	created, err := NewPostgresRepository(service.pool).Create(context, comicID, request)
	if err != nil {
		return nil, err
	}

	service.logger.Info("translation_created",
		slog.Int64("translation_id", created.ID),
		slog.Int64("comic_id", comicID),
		slog.String("language", created.Language),
		slog.String("status", string(created.Status)),
	)

	return created, nil
}

func (service *Service) GetTranslation(context context.Context, id int64) (*Translation, error) {
	return NewPostgresRepository(service.pool).GetByID(context, id)
}

func (service *Service) GetByLanguage(context context.Context, comicID int64, language string) (*Translation, error) {
	return NewPostgresRepository(service.pool).GetByLanguage(context, comicID, language)
}

/*
UpdateTranslation rewrites a translation's fields under a row lock.

A language change that would touch the original translation, in either
direction, is rejected. Published rows get their searchable text rebuilt;
drafts store an empty projection.
*/
func (service *Service) UpdateTranslation(context context.Context, id int64, request Request) (*Translation, error) {
	if err := request.validate(); err != nil {
		return nil, err
	}

	var updated *Translation

	err := postgres.WithTx(context, service.pool, func(tx pgx.Tx) error {
		repo := NewPostgresRepository(tx)

		current, err := repo.GetForUpdate(context, id)
		if err != nil {
			return err
		}

		if current.IsOriginal() != (request.Language == LanguageOriginal) {
			return ErrOriginalForbidden
		}

		pathChanged := current.Language != request.Language ||
			current.Title != request.Title ||
			(request.Status != "" && current.Status != request.Status)

		updated = applyRequest(current, request)
		if err := repo.Update(context, updated); err != nil {
			return err
		}

		if pathChanged {
			return service.relocateImage(context, tx, updated)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// UpdateOriginal rewrites the original translation's content fields.
// Language and status are pinned; the original is always published.
func (service *Service) UpdateOriginal(context context.Context, comicID int64, request Request) (*Translation, error) {
	request.Language = LanguageOriginal
	request.Status = StatusPublished
	if err := request.validate(); err != nil {
		return nil, err
	}

	var updated *Translation

	err := postgres.WithTx(context, service.pool, func(tx pgx.Tx) error {
		repo := NewPostgresRepository(tx)

		original, err := repo.GetOriginal(context, comicID)
		if err != nil {
			return err
		}

		locked, err := repo.GetForUpdate(context, original.ID)
		if err != nil {
			return err
		}
		retitled := locked.Title != request.Title

		updated = applyRequest(locked, request)
		if err := repo.Update(context, updated); err != nil {
			return err
		}

		if retitled {
			return service.relocateImage(context, tx, updated)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

/*
PublishDraft promotes a draft to published, demoting the currently
published sibling of the same language to draft in the same transaction.

The demote executes first so the partial unique index on published
(comic, language) pairs is satisfied at every statement boundary.
*/
func (service *Service) PublishDraft(context context.Context, id int64) (*Translation, error) {
	var promoted *Translation

	err := postgres.WithTx(context, service.pool, func(tx pgx.Tx) error {
		repo := NewPostgresRepository(tx)

		draft, err := repo.GetForUpdate(context, id)
		if err != nil {
			return err
		}

		if draft.IsOriginal() {
			return ErrOriginalForbidden
		}
		if draft.Status == StatusPublished {
			return ErrAlreadyPublished
		}

		sibling, err := repo.GetByLanguage(context, draft.ComicID, draft.Language)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}

		if err := repo.DemotePublished(context, draft.ComicID, draft.Language); err != nil {
			return err
		}
		if sibling != nil {
			sibling.Status = StatusDraft
			if err := service.relocateImage(context, tx, sibling); err != nil {
				return err
			}
		}

		draft.Status = StatusPublished
		draft.SearchableText = BuildSearchableText(draft.Title, draft.Transcript)

		if err := repo.Update(context, draft); err != nil {
			return err
		}
		if err := service.relocateImage(context, tx, draft); err != nil {
			return err
		}

		promoted = draft
		return nil
	})
	if err != nil {
		return nil, err
	}

	service.logger.Info("translation_published",
		slog.Int64("translation_id", promoted.ID),
		slog.Int64("comic_id", promoted.ComicID),
		slog.String("language", promoted.Language),
	)

	return promoted, nil
}

func (service *Service) DeleteTranslation(context context.Context, id int64) error {
	return postgres.WithTx(context, service.pool, func(tx pgx.Tx) error {
		repo := NewPostgresRepository(tx)

		current, err := repo.GetForUpdate(context, id)
		if err != nil {
			return err
		}

		if current.IsOriginal() {
			return ErrOriginalForbidden
		}

		attached, err := service.images.ListByTranslations(context, tx, []int64{current.ID})
		if err != nil {
			return err
		}
		for _, img := range attached {
			if err := service.images.SoftDelete(context, tx, img.ID); err != nil {
				return err
			}
		}

		return repo.Delete(context, id)
	})
}

// relocateImage renames the translation's attached image file so the stored
// path agrees with the row's current language, title, and draft status.
// Translations without an image are a no-op.
func (service *Service) relocateImage(context context.Context, tx pgx.Tx, t *Translation) error {
	images, err := service.images.ListByTranslations(context, tx, []int64{t.ID})
	if err != nil {
		return err
	}
	if len(images) == 0 {
		return nil
	}

	return service.images.Move(context, tx, images[0].ID, retargetPath(t))
}

// retargetPath folds the translation's path-affecting fields into a parsed
// image path descriptor. A title that slugifies to nothing keeps the
// descriptor's previous slug segment.
func retargetPath(t *Translation) func(*image.PathData) {
	return func(parsed *image.PathData) {
		parsed.Language = t.Language
		parsed.IsDraft = t.Status == StatusDraft
		parsed.TranslationSlug = slug.Fallback(t.Title, parsed.TranslationSlug)
	}
}

// applyRequest folds the request into the locked row and rebuilds the
// search projection for published rows.
func applyRequest(current *Translation, request Request) *Translation {
	current.Language = request.Language
	current.Title = request.Title
	current.Tooltip = request.Tooltip
	current.Transcript = request.Transcript
	current.TranslatorComment = request.TranslatorComment
	current.SourceURL = request.SourceURL

	if request.Status != "" {
		current.Status = request.Status
	}

	if current.Status == StatusPublished {
		current.SearchableText = BuildSearchableText(current.Title, current.Transcript)
	} else {
		current.SearchableText = ""
	}

	return current
}
