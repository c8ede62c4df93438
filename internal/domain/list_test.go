package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatListLabel(t *testing.T) {
	path := []string{"Europe", "France"}

	tests := []struct {
		name  string
		title string
		path  []string
		level int
		opts  ListOptions
		want  string
	}{
		{
			name:  "plain",
			title: "Paris",
			level: 2,
			want:  "Paris",
		},
		{
			name:  "indented",
			title: "Paris",
			level: 2,
			opts:  ListOptions{Indent: "--"},
			want:  "----Paris",
		},
		{
			name:  "ascendance default separator",
			title: "Paris",
			path:  path,
			level: 2,
			opts:  ListOptions{Ascendance: true, Indent: "--"},
			want:  "Europe :: France :: Paris",
		},
		{
			name:  "ascendance custom separator with ids",
			title: "Paris",
			path:  path,
			opts:  ListOptions{Ascendance: true, Separator: " / ", PrependID: true, AppendID: true},
			want:  "#7 Europe / France / Paris (#7)",
		},
		{
			name:  "truncated",
			title: "Constantinople",
			opts:  ListOptions{MaxLength: 6},
			want:  "Const…",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatListLabel(tt.title, tt.path, tt.level, 7, tt.opts)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTruncate_Runes(t *testing.T) {
	assert.Equal(t, "Zürich", Truncate("Zürich", 6))
	assert.Equal(t, "Zü…", Truncate("Zürich", 3))
	assert.Equal(t, "…", Truncate("Zürich", 1))
	assert.Equal(t, "Zürich", Truncate("Zürich", 0))
}
