// Copyright (c) 2026 Komikan. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package image owns the asset side of the catalog: the image rows, the path
grammar that places files under the static root, the filesystem moves, and
the post-processing round trip over the message bus.

Architecture:

	ingest/ops ──> Service ──┬──> Repository (images table)
	                         ├──> FileStore (static root moves)
	                         └──> Publisher (post-process dispatch)

	bus ──> Consumer ──> Repository (derived path write-back)

An image is born staged (temp file, no owner), becomes attached to exactly
one translation, and is only ever soft-deleted after that. The path grammar
is bidirectional so a renumber or retitle can rewrite paths from the stored
ones alone.
*/
package image

import (
	"time"

	"github.com/taibuivan/komikan/internal/platform/apperr"
)

// EntityTypeTranslation is the only owner kind an image can be attached to.
const EntityTypeTranslation = "TRANSLATION"

var (
	// ErrNotFound is returned for missing or soft-deleted images.
	ErrNotFound = apperr.NotFound("Image").WithCode("IMAGE_NOT_FOUND")

	// ErrAlreadyHasOwner rejects attaching a staged image that is already
	// attached to a different entity.
	ErrAlreadyHasOwner = apperr.Conflict("Image is already attached to another entity").
				WithCode("IMAGE_ALREADY_HAS_OWNER")

	// ErrUnsupportedFormat rejects uploads that are not PNG, JPEG, GIF, or WebP.
	ErrUnsupportedFormat = apperr.Unprocessable("Unsupported image format").
				WithCode("UNSUPPORTED_IMAGE_FORMAT")
)

// Image is one asset row. Either staged (TempImageID set, no owner) or
// attached (owner and ImagePath set, TempImageID cleared).
type Image struct {
	ID            int64     `json:"id"`
	TempImageID   *string   `json:"-"`
	EntityType    *string   `json:"-"`
	EntityID      *int64    `json:"-"`
	ImagePath     *string   `json:"image_path"`
	ConvertedPath *string   `json:"converted_path"`
	ThumbnailPath *string   `json:"thumbnail_path"`
	Format        string    `json:"format"`
	Size          int64     `json:"size"`
	Width         int       `json:"width"`
	Height        int       `json:"height"`
	IsDeleted     bool      `json:"-"`
	CreatedAt     time.Time `json:"-"`
	UpdatedAt     time.Time `json:"-"`
}

// IsStaged reports whether the image still lives in the temp area.
func (i *Image) IsStaged() bool { return i.TempImageID != nil && i.EntityID == nil }

// AttachedTo reports whether the image is attached to the given translation.
func (i *Image) AttachedTo(translationID int64) bool {
	return i.EntityID != nil && *i.EntityID == translationID
}
