// Copyright (c) 2026 Komikan. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package tag

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	slugpkg "github.com/taibuivan/komikan/pkg/slug"
)

type fakeRepository struct {
	tags map[int64]*Tag
}

func newFakeRepository(tags ...*Tag) *fakeRepository {
	repo := &fakeRepository{tags: map[int64]*Tag{}}
	for _, t := range tags {
		repo.tags[t.ID] = t
	}
	return repo
}

func (repo *fakeRepository) CreateMany(_ context.Context, names []string, fromExplain bool) ([]*Tag, error) {
	result := make([]*Tag, 0, len(names))
	for _, name := range names {
		id := int64(len(repo.tags) + 1)
		created := &Tag{ID: id, Name: name, Slug: slugpkg.From(name), IsVisible: true, FromExplain: fromExplain}
		repo.tags[id] = created
		result = append(result, created)
	}
	return result, nil
}

func (repo *fakeRepository) ListTags(_ context.Context) ([]*Tag, error) {
	result := make([]*Tag, 0, len(repo.tags))
	for _, t := range repo.tags {
		result = append(result, t)
	}
	return result, nil
}

func (repo *fakeRepository) GetTagByID(_ context.Context, id int64) (*Tag, error) {
	if t, ok := repo.tags[id]; ok {
		return t, nil
	}
	return nil, ErrNotFound
}

func (repo *fakeRepository) GetTagBySlug(_ context.Context, slug string) (*Tag, error) {
	for _, t := range repo.tags {
		if t.Slug == slug {
			return t, nil
		}
	}
	return nil, ErrNotFound
}

func (repo *fakeRepository) Update(_ context.Context, id int64, request UpdateRequest) (*Tag, error) {
	t, ok := repo.tags[id]
	if !ok {
		return nil, ErrNotFound
	}
	if request.Name != nil {
		t.Name = *request.Name
		t.Slug = slugpkg.From(*request.Name)
	}
	if request.IsVisible != nil {
		t.IsVisible = *request.IsVisible
	}
	return t, nil
}

func (repo *fakeRepository) Delete(_ context.Context, id int64) error {
	if _, ok := repo.tags[id]; !ok {
		return ErrNotFound
	}
	delete(repo.tags, id)
	return nil
}

func newTestRouter(repo Repository) chi.Router {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := chi.NewRouter()
	NewHandler(NewService(repo, logger)).RegisterRoutes(router)
	return router
}

func TestHandlerGetTag(t *testing.T) {
	router := newTestRouter(newFakeRepository(
		&Tag{ID: 7, Name: "Physics", Slug: "physics", IsVisible: true},
	))

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/7", nil))

	require.Equal(t, http.StatusOK, recorder.Code)

	var envelope struct {
		Data Tag `json:"data"`
	}
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&envelope))
	assert.Equal(t, "physics", envelope.Data.Slug)
}

func TestHandlerGetTagErrors(t *testing.T) {
	router := newTestRouter(newFakeRepository())

	tests := []struct {
		name   string
		path   string
		status int
		code   string
	}{
		{"missing", "/99", http.StatusNotFound, "TAG_NOT_FOUND"},
		{"non_numeric", "/physics", http.StatusBadRequest, "VALIDATION_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, tt.path, nil))

			require.Equal(t, tt.status, recorder.Code)

			var envelope struct {
				Code string `json:"code"`
			}
			require.NoError(t, json.NewDecoder(recorder.Body).Decode(&envelope))
			assert.Equal(t, tt.code, envelope.Code)
		})
	}
}

func TestHandlerUpdateTag(t *testing.T) {
	repo := newFakeRepository(
		&Tag{ID: 3, Name: "physics", Slug: "physics", IsVisible: true},
	)
	router := newTestRouter(repo)

	body := strings.NewReader(`{"name": "Physics & Math", "is_visible": false}`)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPatch, "/3", body))

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "Physics & Math", repo.tags[3].Name)
	assert.False(t, repo.tags[3].IsVisible)
}

func TestHandlerUpdateTagRejectsEmptyName(t *testing.T) {
	router := newTestRouter(newFakeRepository(
		&Tag{ID: 3, Name: "physics", Slug: "physics", IsVisible: true},
	))

	body := strings.NewReader(`{"name": "  "}`)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPatch, "/3", body))

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestHandlerDeleteTag(t *testing.T) {
	repo := newFakeRepository(
		&Tag{ID: 5, Name: "sandwich", Slug: "sandwich", IsVisible: true},
	)
	router := newTestRouter(repo)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodDelete, "/5", nil))

	assert.Equal(t, http.StatusNoContent, recorder.Code)
	assert.Empty(t, repo.tags)
}
