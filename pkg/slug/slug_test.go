// Copyright (c) 2026 Komikan. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package slug_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/komikan/pkg/pointer"
	"github.com/taibuivan/komikan/pkg/slug"
)

/*
TestFrom verifies the slugification pipeline on representative titles.
*/
func TestFrom(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Exploits of a Mom", "exploits-of-a-mom"},
		{"Geografía", "geografia"},
		{"404: Not Found", "404-not-found"},
		{"  spaced   out  ", "spaced-out"},
		{"Über-cool & Big", "uber-cool-big"},
		{"---", ""},
		// Non-Latin scripts carry no ASCII mapping and slugify to nothing.
		{"Мост", ""},
		{"机器学习", ""},
		{"Сweek 42", "week-42"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, slug.From(tc.in), "input %q", tc.in)
	}
}

/*
TestFallback verifies the substitute slug for titles that slugify to nothing.
*/
func TestFallback(t *testing.T) {
	cases := []struct {
		in       string
		fallback string
		want     string
	}{
		{"Exploits of a Mom", "327-exploits-of-a-mom", "exploits-of-a-mom"},
		{"Мост", "69-pillow-talk", "69-pillow-talk"},
		{"机器学习", "1838-machine-learning", "1838-machine-learning"},
		{"", "1190-time", "1190-time"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, slug.Fallback(tc.in, tc.fallback), "input %q", tc.in)
	}
}

/*
TestWithNumber verifies the number-prefixed comic slug form.
*/
func TestWithNumber(t *testing.T) {
	assert.Equal(t, "327-exploits-of-a-mom", slug.WithNumber(pointer.To(327), "Exploits of a Mom"))
	assert.Equal(t, "frankenstein", slug.WithNumber(nil, "Frankenstein"))
}
