// Copyright (c) 2026 Komikan. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package image_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/komikan/internal/core/image"
	"github.com/taibuivan/komikan/pkg/pointer"
)

/*
TestBuildPath_Forms checks every directory form of the grammar.
*/
func TestBuildPath_Forms(t *testing.T) {
	tests := []struct {
		name string
		data image.PathData
		want string
	}{
		{
			name: "numbered_published",
			data: image.PathData{
				Number: pointer.To(614), Language: "en", TranslationSlug: "woodpecker",
				Token: "0123456789ab", Width: 600, Height: 400, Format: "png",
			},
			want: "images/comics/00614/en/woodpecker_0123456789ab_600x400.png",
		},
		{
			name: "numbered_draft",
			data: image.PathData{
				Number: pointer.To(614), Language: "de", TranslationSlug: "specht",
				Token: "0123456789ab", IsDraft: true, Width: 600, Height: 400, Format: "png",
			},
			want: "images/comics/00614/de/drafts/specht_0123456789ab_600x400.png",
		},
		{
			name: "extra_published",
			data: image.PathData{
				OriginalSlug: "frankenstein", Language: "en", TranslationSlug: "frankenstein",
				Token: "abcdefabcdef", Width: 800, Height: 1200, Format: "jpg",
			},
			want: "images/comics/extras/frankenstein/en/frankenstein_abcdefabcdef_800x1200.jpg",
		},
		{
			name: "with_mark",
			data: image.PathData{
				Number: pointer.To(2000), Language: "en", TranslationSlug: "xkcd-phone-2000",
				Token: "0123456789ab", Width: 1480, Height: 760, Mark: "2x", Format: "png",
			},
			want: "images/comics/02000/en/xkcd-phone-2000_0123456789ab_1480x760_2x.png",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := image.BuildPath(tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

/*
TestPath_RoundTrip checks ParsePath(BuildPath(d)) == d for every valid form.
*/
func TestPath_RoundTrip(t *testing.T) {
	descriptors := []image.PathData{
		{Number: pointer.To(1), Language: "en", TranslationSlug: "barrel-part-1", Token: "0011aabbccdd", Width: 500, Height: 300, Format: "png"},
		{Number: pointer.To(3000), Language: "ru", TranslationSlug: "some-title", Token: "ffeeddccbbaa", IsDraft: true, Width: 740, Height: 440, Format: "webp"},
		{OriginalSlug: "frankenstein", Language: "zh", TranslationSlug: "fu-lan-ken", Token: "123456abcdef", Width: 600, Height: 900, Mark: "large", Format: "gif"},
		{OriginalSlug: "story-club", Language: "fr", TranslationSlug: "club-histoire", Token: "a1b2c3d4e5f6", IsDraft: true, Width: 1, Height: 1, Format: "jpg"},
	}

	for _, d := range descriptors {
		built, err := image.BuildPath(d)
		require.NoError(t, err)

		parsed, err := image.ParsePath(built)
		require.NoError(t, err, "path %s must parse", built)

		assert.Equal(t, d, parsed)
	}
}

/*
TestParsePath_Invalid checks the deviations the parser must reject.
*/
func TestParsePath_Invalid(t *testing.T) {
	paths := []string{
		"",
		"images/other/00614/en/a_0123456789ab_1x1.png",
		"images/comics/614/en/a_0123456789ab_1x1.png",
		"images/comics/00614/en/published/a_0123456789ab_1x1.png",
		"images/comics/00614/en/a_0123456789_1x1.png",
		"images/comics/00614/en/a_0123456789ab_1x1",
		"images/comics/extras/en/a_0123456789ab_1x1.png",
		"images/comics/00614/en/drafts/extra/a_0123456789ab_1x1.png",
		"images/comics/abcde/en/a_0123456789ab_1x1.png",
	}

	for _, p := range paths {
		_, err := image.ParsePath(p)

		var invalid *image.InvalidPathError
		assert.ErrorAs(t, err, &invalid, "path %q must be rejected", p)
	}
}

/*
TestNewToken generates well-formed, distinct tokens.
*/
func TestNewToken(t *testing.T) {
	a, b := image.NewToken(), image.NewToken()

	assert.Regexp(t, "^[0-9a-f]{12}$", a)
	assert.NotEqual(t, a, b)
}
