package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOutline_Tab(t *testing.T) {
	lines := SplitOutline("Europe\n\tFrance\n\t\tParis\nAsia")

	entries, err := ParseOutline(lines, OutlineTab)
	require.NoError(t, err)
	require.Len(t, entries, 4)

	want := []struct {
		label string
		level int
	}{
		{"Europe", 0},
		{"France", 1},
		{"Paris", 2},
		{"Asia", 0},
	}
	for i, w := range want {
		assert.Equal(t, w.label, entries[i].Label, "entry %d", i)
		assert.Equal(t, w.level, entries[i].Level, "entry %d", i)
	}
}

func TestParseOutline_Coded(t *testing.T) {
	lines := []string{
		"01 Europe",
		"01-01 France",
		"01-01-01 Paris",
		"",
		"02 Asia",
	}

	entries, err := ParseOutline(lines, OutlineCoded)
	require.NoError(t, err)
	require.Len(t, entries, 4)

	assert.Equal(t, "Paris", entries[2].Label)
	assert.Equal(t, 2, entries[2].Level)
	assert.Equal(t, "01-01-01", entries[2].Code)
	assert.Equal(t, 5, entries[3].Line)
}

func TestParseOutline_Errors(t *testing.T) {
	tests := []struct {
		name   string
		lines  []string
		format OutlineFormat
		errMsg string
	}{
		{
			name:   "starts below top level",
			lines:  []string{"\tOrphan"},
			format: OutlineTab,
			errMsg: "line 1: level 1 follows level -1",
		},
		{
			name:   "skips a level",
			lines:  []string{"Top", "\t\tGrandchild"},
			format: OutlineTab,
			errMsg: "line 2: level 2 follows level 0",
		},
		{
			name:   "coded line without code",
			lines:  []string{"Europe"},
			format: OutlineCoded,
			errMsg: "expected",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseOutline(tt.lines, tt.format)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)

			var oe *OutlineError
			assert.True(t, errors.As(err, &oe))
		})
	}
}

func TestParseOutlineFormat(t *testing.T) {
	f, err := ParseOutlineFormat("coded")
	require.NoError(t, err)
	assert.Equal(t, OutlineCoded, f)

	f, err = ParseOutlineFormat("")
	require.NoError(t, err)
	assert.Equal(t, OutlineTab, f)

	_, err = ParseOutlineFormat("yaml")
	assert.Error(t, err)
}

func TestFormatOutline_RoundTrip(t *testing.T) {
	flat := []FlatEntry{
		{Concept: &Concept{ID: 1, Title: "Europe"}, Level: 0},
		{Concept: &Concept{ID: 2, Title: "France"}, Level: 1},
		{Concept: &Concept{ID: 3, Title: "Paris"}, Level: 2},
		{Concept: &Concept{ID: 4, Title: "Spain"}, Level: 1},
		{Concept: &Concept{ID: 5, Title: "Madrid"}, Level: 2},
		{Concept: &Concept{ID: 6, Title: "Asia"}, Level: 0},
	}

	coded, err := FormatOutline(flat, OutlineCoded)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"01 Europe",
		"01-01 France",
		"01-01-01 Paris",
		"01-02 Spain",
		"01-02-01 Madrid",
		"02 Asia",
	}, coded)

	for _, format := range []OutlineFormat{OutlineTab, OutlineCoded} {
		lines, err := FormatOutline(flat, format)
		require.NoError(t, err)
		entries, err := ParseOutline(lines, format)
		require.NoError(t, err, format.String())
		require.Len(t, entries, len(flat))
		for i, e := range entries {
			assert.Equal(t, flat[i].Concept.Title, e.Label)
			assert.Equal(t, flat[i].Level, e.Level)
		}
	}

	_, err = FormatOutline([]FlatEntry{{Concept: &Concept{ID: 9, Title: "x"}, Level: 1}}, OutlineTab)
	assert.Error(t, err)
}
