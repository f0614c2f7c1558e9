// Copyright (c) 2026 Komikan. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package translation_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/komikan/internal/core/translation"
)

/*
TestBuildSearchableText_Normalization runs the full scrub pipeline against
representative transcript fragments.
*/
func TestBuildSearchableText_Normalization(t *testing.T) {
	tests := []struct {
		name       string
		title      string
		transcript string
		want       string
	}{
		{
			name:       "plain_dialogue",
			title:      "Duty Calls",
			transcript: "Are you coming to bed?",
			want:       "duty calls :: are you coming to bed",
		},
		{
			name:       "stage_directions_stripped",
			title:      "Angular Momentum",
			transcript: "[A man stands outside.] Megan: the stars spin slowly",
			want:       "angular momentum :: the stars spin slowly",
		},
		{
			name:       "html_and_entities",
			title:      "Exploits of a Mom",
			transcript: "<p>Did you really name your son Robert&amp;#39;s tables</p>",
			want:       "exploits of a mom :: did you really name your son robert tables",
		},
		{
			name:       "numbers_and_single_chars",
			title:      "Math",
			transcript: "panel 2 shows x and y plus 400 points",
			want:       "math :: panel shows and plus points",
		},
		{
			name:       "empty_transcript",
			title:      "Blank",
			transcript: "",
			want:       "blank :: ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, translation.BuildSearchableText(tt.title, tt.transcript))
		})
	}
}

/*
TestBuildSearchableText_Properties asserts the structural guarantees every
published write must satisfy.
*/
func TestBuildSearchableText_Properties(t *testing.T) {
	title := "Some <b>Title</b>"
	transcript := `[Ponytail enters.]
Ponytail: Look at figure 3!
Cueball: It's a graph... of 42 things?
<span class="note">editor note</span>`

	got := translation.BuildSearchableText(title, transcript)

	assert.True(t, strings.HasPrefix(got, "some title :: "), "prefix must be the lowercased title")
	assert.NotContains(t, got, "<")
	assert.NotContains(t, got, "[")
	assert.NotContains(t, got, "42")
	assert.NotContains(t, got, "  ", "whitespace must be collapsed")
	assert.Equal(t, strings.ToLower(got), got)

	for _, word := range strings.Fields(got) {
		if word == "::" {
			continue
		}
		assert.Greater(t, len(word), 1, "single characters must be stripped: %q", word)
	}
}

/*
TestBuildSearchableText_Truncation caps the projection at 3800 characters.
*/
func TestBuildSearchableText_Truncation(t *testing.T) {
	got := translation.BuildSearchableText("long", strings.Repeat("word ", 2000))
	assert.LessOrEqual(t, len(got), 3800)
	assert.True(t, strings.HasPrefix(got, "long :: word word"))
}
