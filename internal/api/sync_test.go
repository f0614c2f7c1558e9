// Copyright (c) 2026 Komikan. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/komikan/internal/scrape"
)

func TestRunGuard(t *testing.T) {
	guard := newRunGuard()

	require.True(t, guard.begin("origin"))
	assert.False(t, guard.begin("origin"))

	// Other sources are independent.
	assert.True(t, guard.begin("de"))

	guard.end("origin")
	assert.True(t, guard.begin("origin"))
}

func TestParseLimits(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		want    scrape.Limits
		wantErr bool
	}{
		{"no bounds", "", scrape.Limits{}, false},
		{"both bounds", "?start=100&end=200", scrape.Limits{Start: 100, End: 200}, false},
		{"start only", "?start=50", scrape.Limits{Start: 50}, false},
		{"non-numeric", "?start=abc", scrape.Limits{}, true},
		{"negative", "?end=-1", scrape.Limits{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest("POST", "/sync/origin"+tt.query, nil)

			limits, err := parseLimits(request)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, limits)
		})
	}
}
