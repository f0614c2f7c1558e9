// Copyright (c) 2026 Komikan. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package comic

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/komikan/internal/core/translation"
	"github.com/taibuivan/komikan/pkg/pagination"
	"github.com/taibuivan/komikan/pkg/pointer"
)

func TestBuildListQueryDefaults(t *testing.T) {
	filter := Filter{}
	filter.Normalize()

	query, args := buildListQuery(filter, pagination.Params{Page: 1, Limit: 20})

	assert.Equal(t, []any{"en", 20, 0}, args)
	assert.Contains(t, query, "COUNT(*) OVER()")
	assert.Contains(t, query, "ORDER BY c.number ASC")
	assert.NotContains(t, query, "websearch_to_tsquery")
	assert.NotContains(t, query, "HAVING")
}

func TestBuildListQuerySearch(t *testing.T) {
	filter := Filter{SearchQuery: "sandwich", SearchLanguage: "de", SortDesc: true}
	filter.Normalize()

	query, args := buildListQuery(filter, pagination.Params{Page: 2, Limit: 10})

	assert.Equal(t, []any{"de", "sandwich", 10, 10}, args)
	assert.Contains(t, query, "websearch_to_tsquery('simple', $2)")
	assert.Contains(t, query, "ORDER BY c.number DESC")
}

func TestBuildListQueryDates(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	filter := Filter{DateStart: &start, DateEnd: &end}
	filter.Normalize()

	query, args := buildListQuery(filter, pagination.Params{Page: 1, Limit: 20})

	assert.Equal(t, []any{"en", start, end, 20, 0}, args)
	assert.Contains(t, query, "c.publication_date >= $2")
	assert.Contains(t, query, "c.publication_date <= $3")
}

func TestBuildListQueryTags(t *testing.T) {
	t.Run("or matches any tag", func(t *testing.T) {
		filter := Filter{TagSlugs: []string{"math", "graph"}, TagCombination: TagCombinationOr}
		filter.Normalize()

		query, args := buildListQuery(filter, pagination.Params{Page: 1, Limit: 20})

		assert.Equal(t, []any{"en", []string{"math", "graph"}, 20, 0}, args)
		assert.Contains(t, query, "tg.slug = ANY($2)")
		assert.NotContains(t, query, "HAVING")
	})

	t.Run("and requires every tag", func(t *testing.T) {
		filter := Filter{TagSlugs: []string{"math", "graph"}, TagCombination: TagCombinationAnd}
		filter.Normalize()

		query, args := buildListQuery(filter, pagination.Params{Page: 1, Limit: 20})

		assert.Contains(t, query, "HAVING COUNT(DISTINCT tg.slug) = $2")
		assert.Contains(t, query, "tg.slug = ANY($3)")
		assert.Contains(t, args, 2)
	})

	t.Run("single and tag needs no having", func(t *testing.T) {
		filter := Filter{TagSlugs: []string{"math"}, TagCombination: TagCombinationAnd}
		filter.Normalize()

		query, _ := buildListQuery(filter, pagination.Params{Page: 1, Limit: 20})

		assert.NotContains(t, query, "HAVING")
	})
}

func TestFilterNormalize(t *testing.T) {
	filter := Filter{}
	filter.Normalize()
	assert.Equal(t, "en", filter.SearchLanguage)
	assert.Equal(t, TagCombinationOr, filter.TagCombination)

	filter = Filter{SearchLanguage: "ru", TagCombination: TagCombinationAnd}
	filter.Normalize()
	assert.Equal(t, "ru", filter.SearchLanguage)
	assert.Equal(t, TagCombinationAnd, filter.TagCombination)
}

func TestPathDataDerivation(t *testing.T) {
	service := &Service{}

	t.Run("numbered comic", func(t *testing.T) {
		comic := &Comic{Number: pointer.To(3000), Slug: "3000-foo-bar"}
		original := &translation.Translation{Language: "en", Title: "Foo Bar", Status: translation.StatusPublished}

		data := service.pathData(comic, original)
		assert.Equal(t, 3000, *data.Number)
		assert.Empty(t, data.OriginalSlug)
		assert.Equal(t, "foo-bar", data.TranslationSlug)
		assert.False(t, data.IsDraft)
	})

	t.Run("extra comic", func(t *testing.T) {
		comic := &Comic{Slug: "frankenstein"}
		original := &translation.Translation{Language: "en", Title: "Frankenstein", Status: translation.StatusPublished}

		data := service.pathData(comic, original)
		assert.Nil(t, data.Number)
		assert.Equal(t, "frankenstein", data.OriginalSlug)
	})
}
