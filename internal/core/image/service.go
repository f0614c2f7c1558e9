// Copyright (c) 2026 Komikan. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package image

import (
	"context"
	"io"
	"log/slog"

	"github.com/taibuivan/komikan/internal/platform/constants"
	"github.com/taibuivan/komikan/internal/platform/postgres"
)

// maxUploadBytes caps a single staged upload.
const maxUploadBytes = 20 << 20

// FileStore is the filesystem capability the service drives. FileManager is
// the production implementation.
type FileStore interface {
	SaveTemp(content io.Reader, ext string, maxBytes int64) (string, int64, error)
	TempPath(tempName string) string
	MoveFromTemp(tempName, relPath string) error
	Rename(oldRel, newRel string) error
	RemoveTemp(tempName string) error
}

// Publisher dispatches post-process work after an attach commits its file
// move. bus.Bus is the production implementation.
type Publisher interface {
	Publish(ctx context.Context, subject string, payload any) error
}

// postProcessRequest is the message sent to the converter.
type postProcessRequest struct {
	ImageID int64 `json:"image_id"`
}

// Service drives the image lifecycle: staged upload, attach to a
// translation, path-only moves, soft delete, and the replace matrix.
//
// Every database-touching method takes the caller's Querier so image writes
// commit or roll back together with the catalog writes that triggered them.
type Service struct {
	repo   Repository
	files  FileStore
	bus    Publisher
	logger *slog.Logger
}

func NewService(repo Repository, files FileStore, bus Publisher, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		files:  files,
		bus:    bus,
		logger: logger,
	}
}

/*
Description:

	Upload streams content into the temp area and records a staged image
	row. No owner is assigned; the image waits for Attach.

Parameters:

	content: the raw image bytes.
	ext: optional file extension hint for the temp name.

Returns:

	The staged image row, or UNSUPPORTED_IMAGE_FORMAT when content
	sniffing rejects the payload.
*/
func (service *Service) Upload(context context.Context, db postgres.Querier, content io.Reader, ext string) (*Image, error) {
	tempName, _, err := service.files.SaveTemp(content, ext, maxUploadBytes)
	if err != nil {
		return nil, err
	}

	meta, err := SniffMeta(service.files.TempPath(tempName))
	if err != nil {
		if removeErr := service.files.RemoveTemp(tempName); removeErr != nil {
			service.logger.Error("temp cleanup failed",
				slog.String("temp_image_id", tempName),
				slog.Any("error", removeErr),
			)
		}
		return nil, err
	}

	staged, err := service.repo.CreateStaged(context, db, tempName, meta)
	if err != nil {
		return nil, err
	}

	service.logger.Info("image_staged",
		slog.Int64("image_id", staged.ID),
		slog.String("temp_image_id", tempName),
		slog.String("format", meta.Format),
		slog.Int64("size", meta.Size),
	)

	return staged, nil
}

// RegisterStaged records an image row for a file already present in the
// temp area, such as one staged by the download pipeline. The file stays
// put; only the row is created.
func (service *Service) RegisterStaged(context context.Context, db postgres.Querier, tempName string) (*Image, error) {
	meta, err := SniffMeta(service.files.TempPath(tempName))
	if err != nil {
		if removeErr := service.files.RemoveTemp(tempName); removeErr != nil {
			service.logger.Error("temp cleanup failed",
				slog.String("temp_image_id", tempName),
				slog.Any("error", removeErr),
			)
		}
		return nil, err
	}

	return service.repo.CreateStaged(context, db, tempName, meta)
}

/*
Description:

	Attach binds a staged image to a translation. It row-locks the image,
	builds the canonical path from data, moves the temp file into place,
	records the attachment, and dispatches post-processing.

Returns:

	IMAGE_NOT_FOUND when the image is missing or soft-deleted, and
	IMAGE_ALREADY_HAS_OWNER when it is attached to a different entity.
	Attaching an image already attached to the same translation is a no-op.
*/
func (service *Service) Attach(context context.Context, db postgres.Querier, translationID, imageID int64, data PathData) error {
	current, err := service.repo.GetForUpdate(context, db, imageID)
	if err != nil {
		return err
	}

	if current.AttachedTo(translationID) {
		return nil
	}
	if !current.IsStaged() {
		return ErrAlreadyHasOwner
	}

	data.Width = current.Width
	data.Height = current.Height
	data.Format = current.Format
	if data.Token == "" {
		data.Token = NewToken()
	}

	imagePath, err := BuildPath(data)
	if err != nil {
		return err
	}

	if err := service.files.MoveFromTemp(*current.TempImageID, imagePath); err != nil {
		return err
	}

	if err := service.repo.Attach(context, db, imageID, translationID, imagePath); err != nil {
		return err
	}

	if err := service.bus.Publish(context, constants.SubjectPostProcessIn, postProcessRequest{ImageID: imageID}); err != nil {
		// The attachment itself stands; conversion is reconciled later.
		service.logger.Error("post-process dispatch failed",
			slog.Int64("image_id", imageID),
			slog.Any("error", err),
		)
	}

	service.logger.Info("image_attached",
		slog.Int64("image_id", imageID),
		slog.Int64("translation_id", translationID),
		slog.String("image_path", imagePath),
	)

	return nil
}

/*
Description:

	Move rewrites an attached image's path without touching the bytes.
	The stored path is reparsed, the changed descriptor fields are
	substituted, and the file is renamed to the rebuilt path.

Parameters:

	change: applies the descriptor edits (renumber, retitle, draft flip)
	to the parsed current descriptor. Token, dimensions, and format carry
	over unchanged.
*/
func (service *Service) Move(context context.Context, db postgres.Querier, imageID int64, change func(*PathData)) error {
	current, err := service.repo.GetForUpdate(context, db, imageID)
	if err != nil {
		return err
	}
	if current.ImagePath == nil {
		return ErrNotFound
	}

	data, err := ParsePath(*current.ImagePath)
	if err != nil {
		return err
	}
	change(&data)

	newPath, err := BuildPath(data)
	if err != nil {
		return err
	}
	if newPath == *current.ImagePath {
		return nil
	}

	if err := service.files.Rename(*current.ImagePath, newPath); err != nil {
		return err
	}

	if err := service.repo.UpdatePath(context, db, imageID, newPath); err != nil {
		return err
	}

	service.logger.Info("image_moved",
		slog.Int64("image_id", imageID),
		slog.String("from", *current.ImagePath),
		slog.String("to", newPath),
	)

	return nil
}

// SoftDelete marks the image deleted. The physical file is retained.
func (service *Service) SoftDelete(context context.Context, db postgres.Querier, imageID int64) error {
	if err := service.repo.SoftDelete(context, db, imageID); err != nil {
		return err
	}

	service.logger.Info("image_soft_deleted", slog.Int64("image_id", imageID))
	return nil
}

/*
Description:

	Replace applies the four-way transition between a translation's
	current image and a newly staged one:

	  old=nil, new set        attach new
	  old set, new=nil        soft-delete old
	  old == new              move when needsMove, otherwise no-op
	  old != new (both set)   attach new, then soft-delete old

Parameters:

	needsMove: set when the path-affecting fields changed (renumber,
	retitle, language, draft status) even though the image itself did not.
	change: descriptor edit used for the move case; may be nil when
	needsMove is false.
*/
func (service *Service) Replace(context context.Context, db postgres.Querier, translationID int64, oldImageID, newImageID *int64, data PathData, needsMove bool, change func(*PathData)) error {
	switch {
	case oldImageID == nil && newImageID == nil:
		return nil

	case oldImageID == nil:
		return service.Attach(context, db, translationID, *newImageID, data)

	case newImageID == nil:
		return service.SoftDelete(context, db, *oldImageID)

	case *oldImageID == *newImageID:
		if !needsMove {
			return nil
		}
		return service.Move(context, db, *oldImageID, change)

	default:
		if err := service.Attach(context, db, translationID, *newImageID, data); err != nil {
			return err
		}
		return service.SoftDelete(context, db, *oldImageID)
	}
}

// ListByTranslations loads the non-deleted images attached to the given
// translations.
func (service *Service) ListByTranslations(context context.Context, db postgres.Querier, translationIDs []int64) ([]*Image, error) {
	return service.repo.ListByTranslations(context, db, translationIDs)
}

// Get loads a single image.
func (service *Service) Get(context context.Context, db postgres.Querier, imageID int64) (*Image, error) {
	return service.repo.GetByID(context, db, imageID)
}
