// Copyright (c) 2026 Komikan. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package image

import (
	"bytes"
	"encoding/json"
	stdimage "image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUploadRouter(t *testing.T, repo Repository) chi.Router {
	t.Helper()

	files, err := NewFileManager(t.TempDir(), "temp")
	require.NoError(t, err)

	router := chi.NewRouter()
	NewHandler(NewService(repo, files, &fakePublisher{}, testLogger()), nil).RegisterRoutes(router)
	return router
}

func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()

	var buffer bytes.Buffer
	require.NoError(t, png.Encode(&buffer, stdimage.NewRGBA(stdimage.Rect(0, 0, width, height))))
	return buffer.Bytes()
}

func TestHandlerUploadImage(t *testing.T) {
	repo := newFakeRepository()
	router := newUploadRouter(t, repo)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/?ext=png", bytes.NewReader(pngBytes(t, 3, 2))))

	require.Equal(t, http.StatusCreated, recorder.Code)

	var envelope struct {
		Data Image `json:"data"`
	}
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&envelope))
	assert.Equal(t, "png", envelope.Data.Format)
	assert.Equal(t, 3, envelope.Data.Width)
	assert.Equal(t, 2, envelope.Data.Height)

	staged, ok := repo.images[envelope.Data.ID]
	require.True(t, ok)
	assert.True(t, staged.IsStaged())
}

func TestHandlerUploadImageRejectsEmptyBody(t *testing.T) {
	router := newUploadRouter(t, newFakeRepository())

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/", nil))

	require.Equal(t, http.StatusUnprocessableEntity, recorder.Code)

	var envelope struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&envelope))
	assert.Equal(t, "UPLOAD_EMPTY", envelope.Code)
}

func TestHandlerUploadImageRejectsUnknownContent(t *testing.T) {
	router := newUploadRouter(t, newFakeRepository())

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte("not an image at all"))))

	assert.Equal(t, http.StatusUnprocessableEntity, recorder.Code)
}

func TestHandlerGetImage(t *testing.T) {
	repo := newFakeRepository(attachedImage(9, 42, "images/comics/03000/en/foo-bar_0123456789ab_600x400.png"))
	router := newUploadRouter(t, repo)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/9", nil))

	require.Equal(t, http.StatusOK, recorder.Code)

	var envelope struct {
		Data Image `json:"data"`
	}
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&envelope))
	require.NotNil(t, envelope.Data.ImagePath)
	assert.Equal(t, "images/comics/03000/en/foo-bar_0123456789ab_600x400.png", *envelope.Data.ImagePath)
}
