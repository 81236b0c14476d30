package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageTurned(t *testing.T) {
	const (
		url1 = "https://test.example/browse?page=1"
		url2 = "https://test.example/browse?page=2"
	)

	tests := []struct {
		name        string
		previousURL string
		currentURL  string
		previousID  string
		currentID   string
		want        bool
	}{
		{
			name:        "url changed",
			previousURL: url1, currentURL: url2,
			previousID: "wx-1-title", currentID: "wx-1-title",
			want: true,
		},
		{
			name:        "same url new leading entry",
			previousURL: url1, currentURL: url1,
			previousID: "wx-1-title", currentID: "wx-50-title",
			want: true,
		},
		{
			name:        "stale page still rendered",
			previousURL: url1, currentURL: url1,
			previousID: "wx-1-title", currentID: "wx-1-title",
			want: false,
		},
		{
			name:        "entries not rendered yet",
			previousURL: url1, currentURL: url1,
			previousID: "wx-1-title", currentID: "",
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := pageTurned(tt.previousURL, tt.currentURL, tt.previousID, tt.currentID)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNextControlDisabled(t *testing.T) {
	assert.True(t, nextControlDisabled("next disabled", ""))
	assert.True(t, nextControlDisabled("next", "disabled"))
	assert.True(t, nextControlDisabled("next pagination-disabled", "btn"))
	assert.False(t, nextControlDisabled("next", "btn"))
	assert.False(t, nextControlDisabled("", ""))
}
