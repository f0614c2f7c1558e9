// Copyright (c) 2026 Komikan. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package image

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/komikan/internal/platform/constants"
	"github.com/taibuivan/komikan/internal/platform/postgres"
	"github.com/taibuivan/komikan/pkg/pointer"
)

// # Fakes

type fakeRepository struct {
	images map[int64]*Image
}

func newFakeRepository(images ...*Image) *fakeRepository {
	repo := &fakeRepository{images: make(map[int64]*Image)}
	for _, image := range images {
		repo.images[image.ID] = image
	}
	return repo
}

func (repo *fakeRepository) CreateStaged(_ context.Context, _ postgres.Querier, tempImageID string, meta Meta) (*Image, error) {
	image := &Image{
		ID:          int64(len(repo.images) + 1),
		TempImageID: pointer.To(tempImageID),
		Format:      meta.Format,
		Size:        meta.Size,
		Width:       meta.Width,
		Height:      meta.Height,
	}
	repo.images[image.ID] = image
	return image, nil
}

func (repo *fakeRepository) GetByID(_ context.Context, _ postgres.Querier, id int64) (*Image, error) {
	image, ok := repo.images[id]
	if !ok || image.IsDeleted {
		return nil, ErrNotFound
	}
	return image, nil
}

func (repo *fakeRepository) GetForUpdate(context context.Context, db postgres.Querier, id int64) (*Image, error) {
	return repo.GetByID(context, db, id)
}

func (repo *fakeRepository) Attach(_ context.Context, _ postgres.Querier, id, entityID int64, imagePath string) error {
	image, ok := repo.images[id]
	if !ok || image.IsDeleted {
		return ErrNotFound
	}
	image.TempImageID = nil
	image.EntityType = pointer.To(EntityTypeTranslation)
	image.EntityID = pointer.To(entityID)
	image.ImagePath = pointer.To(imagePath)
	return nil
}

func (repo *fakeRepository) UpdatePath(_ context.Context, _ postgres.Querier, id int64, imagePath string) error {
	image, ok := repo.images[id]
	if !ok || image.IsDeleted {
		return ErrNotFound
	}
	image.ImagePath = pointer.To(imagePath)
	return nil
}

func (repo *fakeRepository) SoftDelete(_ context.Context, _ postgres.Querier, id int64) error {
	image, ok := repo.images[id]
	if !ok || image.IsDeleted {
		return ErrNotFound
	}
	image.IsDeleted = true
	return nil
}

func (repo *fakeRepository) SetDerivedPaths(_ context.Context, _ postgres.Querier, id int64, convertedPath, thumbnailPath string) error {
	image, ok := repo.images[id]
	if !ok || image.IsDeleted {
		return ErrNotFound
	}
	image.ConvertedPath = pointer.To(convertedPath)
	image.ThumbnailPath = pointer.To(thumbnailPath)
	return nil
}

func (repo *fakeRepository) ListByTranslations(_ context.Context, _ postgres.Querier, translationIDs []int64) ([]*Image, error) {
	var images []*Image
	for _, id := range translationIDs {
		for _, image := range repo.images {
			if !image.IsDeleted && image.AttachedTo(id) {
				images = append(images, image)
			}
		}
	}
	return images, nil
}

type fakeFileStore struct {
	moves   map[string]string
	renames map[string]string
	removed []string
}

func newFakeFileStore() *fakeFileStore {
	return &fakeFileStore{moves: make(map[string]string), renames: make(map[string]string)}
}

func (files *fakeFileStore) SaveTemp(io.Reader, string, int64) (string, int64, error) {
	return "temp-upload", 0, nil
}

func (files *fakeFileStore) TempPath(tempName string) string {
	return path.Join("/static/temp", tempName)
}

func (files *fakeFileStore) MoveFromTemp(tempName, relPath string) error {
	files.moves[tempName] = relPath
	return nil
}

func (files *fakeFileStore) Rename(oldRel, newRel string) error {
	files.renames[oldRel] = newRel
	return nil
}

func (files *fakeFileStore) RemoveTemp(tempName string) error {
	files.removed = append(files.removed, tempName)
	return nil
}

type fakePublisher struct {
	subjects []string
	payloads []any
}

func (pub *fakePublisher) Publish(_ context.Context, subject string, payload any) error {
	pub.subjects = append(pub.subjects, subject)
	pub.payloads = append(pub.payloads, payload)
	return nil
}

// # Helpers

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func stagedImage(id int64) *Image {
	return &Image{
		ID:          id,
		TempImageID: pointer.To(fmt.Sprintf("temp-%d", id)),
		Format:      "png",
		Size:        1024,
		Width:       600,
		Height:      400,
	}
}

func attachedImage(id, translationID int64, imagePath string) *Image {
	return &Image{
		ID:         id,
		EntityType: pointer.To(EntityTypeTranslation),
		EntityID:   pointer.To(translationID),
		ImagePath:  pointer.To(imagePath),
		Format:     "png",
		Size:       1024,
		Width:      600,
		Height:     400,
	}
}

func comicPathData(number int) PathData {
	return PathData{
		Number:          pointer.To(number),
		Language:        "en",
		TranslationSlug: "foo-bar",
		Width:           600,
		Height:          400,
		Format:          "png",
	}
}

// # Attach

func TestServiceAttach(t *testing.T) {
	repo := newFakeRepository(stagedImage(1))
	files := newFakeFileStore()
	pub := &fakePublisher{}
	service := NewService(repo, files, pub, testLogger())

	err := service.Attach(context.Background(), nil, 42, 1, comicPathData(3000))
	require.NoError(t, err)

	image := repo.images[1]
	assert.Nil(t, image.TempImageID)
	assert.True(t, image.AttachedTo(42))

	require.NotNil(t, image.ImagePath)
	data, err := ParsePath(*image.ImagePath)
	require.NoError(t, err)
	assert.Equal(t, 3000, *data.Number)
	assert.Equal(t, "foo-bar", data.TranslationSlug)
	assert.Equal(t, 600, data.Width)
	assert.Equal(t, 400, data.Height)

	assert.Len(t, files.moves, 1)
	assert.Equal(t, []string{constants.SubjectPostProcessIn}, pub.subjects)
	assert.Equal(t, postProcessRequest{ImageID: 1}, pub.payloads[0])
}

func TestServiceAttachGuards(t *testing.T) {
	t.Run("missing image", func(t *testing.T) {
		service := NewService(newFakeRepository(), newFakeFileStore(), &fakePublisher{}, testLogger())

		err := service.Attach(context.Background(), nil, 42, 1, comicPathData(3000))
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("owned by another translation", func(t *testing.T) {
		repo := newFakeRepository(attachedImage(1, 7, "images/comics/03000/en/foo-bar_0123456789ab_600x400.png"))
		service := NewService(repo, newFakeFileStore(), &fakePublisher{}, testLogger())

		err := service.Attach(context.Background(), nil, 42, 1, comicPathData(3000))
		assert.ErrorIs(t, err, ErrAlreadyHasOwner)
	})

	t.Run("already attached to the same translation", func(t *testing.T) {
		repo := newFakeRepository(attachedImage(1, 42, "images/comics/03000/en/foo-bar_0123456789ab_600x400.png"))
		files := newFakeFileStore()
		pub := &fakePublisher{}
		service := NewService(repo, files, pub, testLogger())

		err := service.Attach(context.Background(), nil, 42, 1, comicPathData(3000))
		require.NoError(t, err)
		assert.Empty(t, files.moves)
		assert.Empty(t, pub.subjects)
	})
}

// # Move

func TestServiceMove(t *testing.T) {
	repo := newFakeRepository(attachedImage(1, 42, "images/comics/03000/en/foo-bar_0123456789ab_600x400.png"))
	files := newFakeFileStore()
	service := NewService(repo, files, &fakePublisher{}, testLogger())

	err := service.Move(context.Background(), nil, 1, func(data *PathData) {
		data.Number = pointer.To(3001)
		data.TranslationSlug = "foo-baz"
	})
	require.NoError(t, err)

	want := "images/comics/03001/en/foo-baz_0123456789ab_600x400.png"
	assert.Equal(t, want, *repo.images[1].ImagePath)
	assert.Equal(t, want, files.renames["images/comics/03000/en/foo-bar_0123456789ab_600x400.png"])
}

func TestServiceMoveNoChange(t *testing.T) {
	repo := newFakeRepository(attachedImage(1, 42, "images/comics/03000/en/foo-bar_0123456789ab_600x400.png"))
	files := newFakeFileStore()
	service := NewService(repo, files, &fakePublisher{}, testLogger())

	err := service.Move(context.Background(), nil, 1, func(*PathData) {})
	require.NoError(t, err)
	assert.Empty(t, files.renames)
}

// # Replace matrix

func TestServiceReplace(t *testing.T) {
	const translationID = 42

	t.Run("null to new attaches", func(t *testing.T) {
		repo := newFakeRepository(stagedImage(1))
		service := NewService(repo, newFakeFileStore(), &fakePublisher{}, testLogger())

		err := service.Replace(context.Background(), nil, translationID, nil, pointer.To(int64(1)), comicPathData(3000), false, nil)
		require.NoError(t, err)
		assert.True(t, repo.images[1].AttachedTo(translationID))
	})

	t.Run("old to null soft-deletes", func(t *testing.T) {
		repo := newFakeRepository(attachedImage(1, translationID, "images/comics/03000/en/foo-bar_0123456789ab_600x400.png"))
		service := NewService(repo, newFakeFileStore(), &fakePublisher{}, testLogger())

		err := service.Replace(context.Background(), nil, translationID, pointer.To(int64(1)), nil, comicPathData(3000), false, nil)
		require.NoError(t, err)
		assert.True(t, repo.images[1].IsDeleted)
	})

	t.Run("same without move is a no-op", func(t *testing.T) {
		repo := newFakeRepository(attachedImage(1, translationID, "images/comics/03000/en/foo-bar_0123456789ab_600x400.png"))
		files := newFakeFileStore()
		pub := &fakePublisher{}
		service := NewService(repo, files, pub, testLogger())

		err := service.Replace(context.Background(), nil, translationID, pointer.To(int64(1)), pointer.To(int64(1)), comicPathData(3000), false, nil)
		require.NoError(t, err)
		assert.Empty(t, files.renames)
		assert.Empty(t, pub.subjects)
		assert.False(t, repo.images[1].IsDeleted)
	})

	t.Run("same with move renames", func(t *testing.T) {
		repo := newFakeRepository(attachedImage(1, translationID, "images/comics/03000/en/foo-bar_0123456789ab_600x400.png"))
		files := newFakeFileStore()
		service := NewService(repo, files, &fakePublisher{}, testLogger())

		err := service.Replace(context.Background(), nil, translationID, pointer.To(int64(1)), pointer.To(int64(1)), comicPathData(3000), true, func(data *PathData) {
			data.TranslationSlug = "renamed"
		})
		require.NoError(t, err)
		assert.Equal(t, "images/comics/03000/en/renamed_0123456789ab_600x400.png", *repo.images[1].ImagePath)
	})

	t.Run("different attaches new then soft-deletes old", func(t *testing.T) {
		repo := newFakeRepository(
			attachedImage(1, translationID, "images/comics/03000/en/foo-bar_0123456789ab_600x400.png"),
			stagedImage(2),
		)
		pub := &fakePublisher{}
		service := NewService(repo, newFakeFileStore(), pub, testLogger())

		err := service.Replace(context.Background(), nil, translationID, pointer.To(int64(1)), pointer.To(int64(2)), comicPathData(3000), false, nil)
		require.NoError(t, err)
		assert.True(t, repo.images[1].IsDeleted)
		assert.True(t, repo.images[2].AttachedTo(translationID))
		assert.Equal(t, postProcessRequest{ImageID: 2}, pub.payloads[0])
	})
}
