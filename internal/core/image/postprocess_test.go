// Copyright (c) 2026 Komikan. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package image

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsumerHandle(t *testing.T) {
	repo := newFakeRepository(attachedImage(1, 42, "images/comics/03000/en/foo-bar_0123456789ab_600x400.png"))
	consumer := NewConsumer(repo, nil, "/static", testLogger())

	message := []byte(`{
		"image_id": 1,
		"converted_abs_path": "/static/images/comics/03000/en/foo-bar_0123456789ab_600x400.webp",
		"thumbnail_abs_path": "/static/images/comics/03000/en/foo-bar_0123456789ab_600x400_thumb.webp"
	}`)

	require.NoError(t, consumer.Handle(context.Background(), message))
	first := *repo.images[1]

	// Redelivery of the same message leaves the row untouched.
	require.NoError(t, consumer.Handle(context.Background(), message))
	assert.Equal(t, first, *repo.images[1])

	assert.Equal(t, "images/comics/03000/en/foo-bar_0123456789ab_600x400.webp", *repo.images[1].ConvertedPath)
	assert.Equal(t, "images/comics/03000/en/foo-bar_0123456789ab_600x400_thumb.webp", *repo.images[1].ThumbnailPath)
	assert.False(t, repo.images[1].IsDeleted)
}

func TestConsumerHandleRejects(t *testing.T) {
	repo := newFakeRepository(attachedImage(1, 42, "images/comics/03000/en/foo-bar_0123456789ab_600x400.png"))
	consumer := NewConsumer(repo, nil, "/static", testLogger())

	t.Run("malformed payload", func(t *testing.T) {
		assert.Error(t, consumer.Handle(context.Background(), []byte("{")))
	})

	t.Run("path outside static root", func(t *testing.T) {
		err := consumer.Handle(context.Background(), []byte(`{
			"image_id": 1,
			"converted_abs_path": "/elsewhere/a.webp",
			"thumbnail_abs_path": "/static/b.webp"
		}`))
		assert.ErrorContains(t, err, "outside the static root")
	})

	t.Run("missing row is not created", func(t *testing.T) {
		err := consumer.Handle(context.Background(), []byte(`{
			"image_id": 99,
			"converted_abs_path": "/static/a.webp",
			"thumbnail_abs_path": "/static/b.webp"
		}`))
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Len(t, repo.images, 1)
	})
}
