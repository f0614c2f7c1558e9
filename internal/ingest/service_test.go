// Copyright (c) 2026 Komikan. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/komikan/internal/core/comic"
	"github.com/taibuivan/komikan/pkg/pointer"
)

func TestMissingNumbers(t *testing.T) {
	tests := []struct {
		name string
		want []int
		have []int
		out  []int
	}{
		{"empty catalog keeps everything", []int{1, 2, 3}, nil, []int{1, 2, 3}},
		{"full catalog keeps nothing", []int{1, 2, 3}, []int{1, 2, 3}, []int{}},
		{"gaps are preserved in order", []int{1, 2, 3, 4, 5}, []int{2, 4}, []int{1, 3, 5}},
		{"catalog extras are ignored", []int{3}, []int{1, 2, 3, 4}, []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.out, missingNumbers(tt.want, tt.have))
		})
	}
}

func TestPresentNumbers(t *testing.T) {
	assert.Equal(t, []int{2, 4}, presentNumbers([]int{1, 2, 3, 4}, []int{2, 4, 9}))
	assert.Equal(t, []int{}, presentNumbers([]int{1, 2}, nil))
}

func TestCheckpointKey(t *testing.T) {
	assert.Equal(t, "ingest:last:origin", checkpointKey("origin"))
	assert.Equal(t, "ingest:last:de", checkpointKey("de"))
}

// Mirror titles in Cyrillic or CJK slugify to nothing; the image path falls
// back to the comic's own slug instead of going malformed.
func TestTranslationSlug(t *testing.T) {
	target := &comic.Comic{ID: 1, Number: pointer.To(69), Slug: "69-pillow-talk"}

	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"latin title", "Conversation sur l'oreiller", "conversation-sur-l-oreiller"},
		{"cyrillic title", "Разговоры в постели", "69-pillow-talk"},
		{"cjk title", "机器学习", "69-pillow-talk"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, translationSlug(target, tt.title))
		})
	}
}
