// Copyright (c) 2026 Komikan. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package comic

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/komikan/internal/core/image"
	"github.com/taibuivan/komikan/internal/core/tag"
	"github.com/taibuivan/komikan/internal/core/translation"
	"github.com/taibuivan/komikan/internal/platform/database/schema"
	"github.com/taibuivan/komikan/internal/platform/postgres"
	"github.com/taibuivan/komikan/pkg/pagination"
	"github.com/taibuivan/komikan/pkg/slice"
	"github.com/taibuivan/komikan/pkg/slug"
)

// Service orchestrates aggregate writes: the comic row, its original
// translation, its tag links, and the attached image commit in one
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

/*
Description:

	CreateComic inserts the comic row together with its original
	translation, links the requested tags, and attaches the staged image
	when one is referenced.

Returns:

	The hydrated aggregate, or the domain conflict matching the violated
	uniqueness invariant (issue number, extra title).
*/
func (service *Service) CreateComic(context context.Context, request CreateRequest) (*Comic, error) {
	if err := request.validate(); err != nil {
		return nil, err
	}

	var created *Comic

	err := postgres.WithTx(context, service.pool, func(tx pgx.Tx) error {
		repo := NewPostgresRepository(tx)

		comic, err := repo.Insert(context, &Comic{
			Number:          request.Number,
			Slug:            slug.WithNumber(request.Number, request.Title),
			PublicationDate: request.PublicationDate,
			ExplainURL:      request.ExplainURL,
			ClickURL:        request.ClickURL,
			IsInteractive:   request.IsInteractive,
		})
		if err != nil {
			return err
		}

		original, err := translation.NewPostgresRepository(tx).Create(context, comic.ID, translation.Request{
			Language:   translation.LanguageOriginal,
			Title:      request.Title,
			Tooltip:    request.Tooltip,
			Transcript: request.Transcript,
			Status:     translation.StatusPublished,
		})
		if err != nil {
			return err
		}
		comic.Original = original
		comic.Translations = []*translation.Translation{original}

		comic.Tags, err = service.linkTags(context, tx, comic.ID, request.Tags, request.TagsFromExplain)
		if err != nil {
			return err
		}

		if request.ImageID != nil {
			if err := service.images.Attach(context, tx, original.ID, *request.ImageID, service.pathData(comic, original)); err != nil {
				return err
			}
			comic.Images, err = service.images.ListByTranslations(context, tx, []int64{original.ID})
			if err != nil {
				return err
			}
		}

		created = comic
		return nil
	})
	if err != nil {
		return nil, err
	}

	service.logger.Info("comic_created",
		slog.Int64("comic_id", created.ID),
		slog.String("slug", created.Slug),
	)

	return created, nil
}

/*
Description:

	UpdateComic rewrites the aggregate under a row lock: comic fields, the
	original translation, the tag links, and the image transition. The
	slug is recomputed from (number, title); a changed slug or number
	relocates the attached image file through the replace matrix.
*/
func (service *Service) UpdateComic(context context.Context, id int64, request UpdateRequest) (*Comic, error) {
	if err := request.validate(); err != nil {
		return nil, err
	}

	err := postgres.WithTx(context, service.pool, func(tx pgx.Tx) error {
		repo := NewPostgresRepository(tx)

		comic, err := repo.GetForUpdate(context, id)
		if err != nil {
			return err
		}

		comic.Number = request.Number
		comic.Slug = slug.WithNumber(request.Number, request.Title)
		comic.PublicationDate = request.PublicationDate
		comic.ExplainURL = request.ExplainURL
		comic.ClickURL = request.ClickURL
		comic.IsInteractive = request.IsInteractive

		if err := repo.Update(context, comic); err != nil {
			return err
		}

		translations := translation.NewPostgresRepository(tx)
		original, err := translations.GetOriginal(context, comic.ID)
		if err != nil {
			return err
		}

		original.Title = request.Title
		original.Tooltip = request.Tooltip
		original.Transcript = request.Transcript
		original.SearchableText = translation.BuildSearchableText(request.Title, request.Transcript)
		if err := translations.Update(context, original); err != nil {
			return err
		}

		if _, err := service.linkTags(context, tx, comic.ID, request.Tags, false); err != nil {
			return err
		}

		current, err := service.currentImageID(context, tx, original.ID)
		if err != nil {
			return err
		}

		data := service.pathData(comic, original)
		return service.images.Replace(context, tx, original.ID, current, request.ImageID, data, request.NeedsImageMove, func(parsed *image.PathData) {
			parsed.Number = data.Number
			parsed.OriginalSlug = data.OriginalSlug
			parsed.TranslationSlug = data.TranslationSlug
		})
	})
	if err != nil {
		return nil, err
	}

	service.logger.Info("comic_updated", slog.Int64("comic_id", id))
	return service.GetByID(context, id)
}

// DeleteComic removes the comic. Translations and tag links cascade in the
// database; attached images are soft-deleted first so their files stay
// reachable for cleanup.
func (service *Service) DeleteComic(context context.Context, id int64) error {
	err := postgres.WithTx(context, service.pool, func(tx pgx.Tx) error {
		repo := NewPostgresRepository(tx)

		comic, err := repo.GetForUpdate(context, id)
		if err != nil {
			return err
		}

		images, err := service.attachedImages(context, tx, comic.ID)
		if err != nil {
			return err
		}
		for _, img := range images {
			if err := service.images.SoftDelete(context, tx, img.ID); err != nil {
				return err
			}
		}

		return repo.Delete(context, comic.ID)
	})
	if err != nil {
		return err
	}

	service.logger.Info("comic_deleted", slog.Int64("comic_id", id))
	return nil
}

// # Reads

func (service *Service) GetByID(context context.Context, id int64) (*Comic, error) {
	comic, err := NewPostgresRepository(service.pool).GetByID(context, id)
	if err != nil {
		return nil, err
	}
	return service.hydrate(context, comic)
}

func (service *Service) GetByNumber(context context.Context, number int) (*Comic, error) {
	comic, err := NewPostgresRepository(service.pool).GetByNumber(context, number)
	if err != nil {
		return nil, err
	}
	return service.hydrate(context, comic)
}

func (service *Service) GetBySlug(context context.Context, slug string) (*Comic, error) {
	comic, err := NewPostgresRepository(service.pool).GetBySlug(context, slug)
	if err != nil {
		return nil, err
	}
	return service.hydrate(context, comic)
}

// ListNumbers returns every issue number present in the catalog.
func (service *Service) ListNumbers(context context.Context) ([]int, error) {
	return NewPostgresRepository(service.pool).ListNumbers(context)
}

// ListNumbersTranslated returns the issue numbers that already carry a
// published translation in the given language.
func (service *Service) ListNumbersTranslated(context context.Context, language string) ([]int, error) {
	return NewPostgresRepository(service.pool).ListNumbersTranslated(context, language)
}

// List pages through the catalog with the given filter.
func (service *Service) List(context context.Context, filter Filter, params pagination.Params) (int64, []*Compact, error) {
	return NewPostgresRepository(service.pool).List(context, filter, params)
}

// # Internals

// hydrate fills tags, the original translation, and the attached images.
func (service *Service) hydrate(context context.Context, comic *Comic) (*Comic, error) {
	var err error

	comic.Tags, err = NewPostgresRepository(service.pool).TagsFor(context, comic.ID)
	if err != nil {
		return nil, err
	}

	comic.Original, err = translation.NewPostgresRepository(service.pool).GetOriginal(context, comic.ID)
	if err != nil {
		return nil, err
	}
	comic.Translations = []*translation.Translation{comic.Original}

	comic.Images, err = service.attachedImages(context, service.pool, comic.ID)
	if err != nil {
		return nil, err
	}

	return comic, nil
}

// attachedImages loads the images of every translation of the comic.
func (service *Service) attachedImages(context context.Context, db postgres.Querier, comicID int64) ([]*image.Image, error) {
	ids, err := service.translationIDs(context, db, comicID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	return service.images.ListByTranslations(context, db, ids)
}

func (service *Service) translationIDs(context context.Context, db postgres.Querier, comicID int64) ([]int64, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		schema.Translations.ID, schema.Translations.Table, schema.Translations.ComicID)

	rows, err := db.Query(context, query, comicID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// linkTags ensures the named tags exist and replaces the comic's link set.
func (service *Service) linkTags(context context.Context, tx pgx.Tx, comicID int64, names []string, fromExplain bool) ([]*tag.Tag, error) {
	tags, err := tag.NewPostgresRepository(tx).CreateMany(context, names, fromExplain)
	if err != nil {
		return nil, err
	}

	ids := slice.Map(tags, func(t *tag.Tag) int64 { return t.ID })
	if err := NewPostgresRepository(tx).RelinkTags(context, comicID, ids); err != nil {
		return nil, err
	}

	return tags, nil
}

// currentImageID resolves the translation's live attached image, if any.
func (service *Service) currentImageID(context context.Context, db postgres.Querier, translationID int64) (*int64, error) {
	images, err := service.images.ListByTranslations(context, db, []int64{translationID})
	if err != nil {
		return nil, err
	}
	if len(images) == 0 {
		return nil, nil
	}
	return &images[0].ID, nil
}

// pathData derives the image path descriptor for a translation of the comic.
func (service *Service) pathData(comic *Comic, t *translation.Translation) image.PathData {
	data := image.PathData{
		Number:          comic.Number,
		Language:        t.Language,
		TranslationSlug: slug.Fallback(t.Title, comic.Slug),
		IsDraft:         t.Status == translation.StatusDraft,
	}
	if comic.Number == nil {
		data.OriginalSlug = comic.Slug
	}
	return data
}
