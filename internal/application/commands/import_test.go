package commands

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"thesaurus/internal/application"
	"thesaurus/internal/config"
	"thesaurus/internal/domain"
)

func (f *fixture) titles(t *testing.T, rows []domain.IndexRow) []string {
	t.Helper()
	out := []string{}
	for _, r := range rows {
		c, err := f.Store.Read(context.Background(), r.ConceptID)
		require.NoError(t, err)
		out = append(out, c.Title)
	}
	return out
}

func (f *fixture) byTitle(t *testing.T) map[string]*domain.Concept {
	t.Helper()
	all, err := f.Store.Search(context.Background(), domain.Filter{})
	require.NoError(t, err)
	out := make(map[string]*domain.Concept, len(all))
	for _, c := range all {
		out[c.Title] = c
	}
	return out
}

func TestBuildFromOutline_TabWithDescriptors(t *testing.T) {
	f := newFixture(t, nil)

	lines := domain.SplitOutline("Europe\n\tFrance\n\t\tParis\nAsia")
	cmd := NewBuildFromOutlineCommand(f.env, "Geo", lines, domain.OutlineTab, FillOptions{Descriptor: true}, "")
	res, err := cmd.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, res.Created)
	assert.Equal(t, 2, res.Tops)
	require.NotNil(t, res.Reindex)
	assert.Equal(t, 4, res.Reindex.RowsCreated)

	s := res.Scheme.ID
	tops, err := f.index.TopsOf(s)
	require.NoError(t, err)
	assert.Equal(t, []string{"Europe", "Asia"}, f.titles(t, tops))

	concepts := f.byTitle(t)
	for _, title := range []string{"Geo", "Europe", "France", "Paris", "Asia"} {
		c := concepts[title]
		require.NotNil(t, c, title)
		got, ok := c.Literal(config.DefaultDescriptorProperty)
		assert.True(t, ok, title)
		assert.Equal(t, title, got)
	}

	acc := f.env.Accessor()
	assert.Equal(t, []int64{concepts["Paris"].ID}, acc.LinkIDs(concepts["France"], domain.LinkNarrower))
	assert.Equal(t, []int64{concepts["France"].ID}, acc.LinkIDs(concepts["Paris"], domain.LinkBroader))
	assert.Equal(t, []int64{s}, acc.LinkIDs(concepts["Paris"], domain.LinkInScheme))
	assert.Equal(t, []int64{s}, acc.LinkIDs(concepts["Asia"], domain.LinkTopConceptOf))
	assert.Equal(t, domain.ClassScheme, acc.Classify(concepts["Geo"]))

	paris, err := f.index.RowFor(concepts["Paris"].ID, s)
	require.NoError(t, err)
	require.NotNil(t, paris)
	assert.Equal(t, 2, paris.Position)
}

func TestBuildFromOutline_CodedWithPaths(t *testing.T) {
	f := newFixture(t, func(c *config.Config) {
		c.PathProperty = "thesaurus:path"
		c.AscendanceProperty = "thesaurus:ascendance"
		c.BatchSize = 2
	})

	lines := []string{"01 Europe", "01-01 France", "01-01-01 Paris", "", "02 Asia"}
	fill := FillOptions{Path: true, Ascendance: true}
	res, err := NewBuildFromOutlineCommand(f.env, "Geo", lines, domain.OutlineCoded, fill, " > ").Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, res.Created)

	concepts := f.byTitle(t)

	path, _ := concepts["Paris"].Literal("thesaurus:path")
	assert.Equal(t, "Europe > France > Paris", path)
	asc, _ := concepts["Paris"].Literal("thesaurus:ascendance")
	assert.Equal(t, "Europe > France", asc)

	path, _ = concepts["Asia"].Literal("thesaurus:path")
	assert.Equal(t, "Asia", path)
	_, ok := concepts["Asia"].Literal("thesaurus:ascendance")
	assert.False(t, ok, "top concepts carry no ascendance")
}

func TestBuildFromOutline_InvalidOutlineCreatesNothing(t *testing.T) {
	tests := []struct {
		name   string
		lines  []string
		format domain.OutlineFormat
		fill   FillOptions
		field  string
	}{
		{
			name:  "first line indented",
			lines: []string{"\tFrance", "Europe"},
			field: "lines",
		},
		{
			name:  "level jump",
			lines: []string{"Europe", "\t\tParis"},
			field: "lines",
		},
		{
			name:   "malformed code",
			lines:  []string{"01 Europe", "France"},
			format: domain.OutlineCoded,
			field:  "lines",
		},
		{
			name:  "blank outline",
			lines: []string{"", "  "},
			field: "lines",
		},
		{
			name:  "path property not configured",
			lines: []string{"Europe"},
			fill:  FillOptions{Path: true},
			field: "fill",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil)
			_, err := NewBuildFromOutlineCommand(f.env, "Geo", tt.lines, tt.format, tt.fill, "").Execute(context.Background())

			var valErr *application.ValidationError
			require.ErrorAs(t, err, &valErr)
			assert.Equal(t, tt.field, valErr.Field)
			assert.Empty(t, f.byTitle(t))
		})
	}
}

func TestBuildFromOutline_MissingTitle(t *testing.T) {
	f := newFixture(t, nil)
	err := NewBuildFromOutlineCommand(f.env, "  ", []string{"Europe"}, domain.OutlineTab, FillOptions{}, "").Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "title is required")
}

func TestBuildFromOutline_Canceled(t *testing.T) {
	f := newFixture(t, func(c *config.Config) { c.BatchSize = 1 })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	lines := []string{"Europe", "\tFrance", "Asia"}
	res, err := NewBuildFromOutlineCommand(f.env, "Geo", lines, domain.OutlineTab, FillOptions{}, "").Execute(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, res)
	assert.True(t, res.Canceled)
	assert.Equal(t, 1, res.Created)
	assert.Nil(t, res.Reindex)

	has, err := f.index.HasScheme(res.Scheme.ID)
	require.NoError(t, err)
	assert.False(t, has)

	// the first batch was linked before stopping
	europe := f.byTitle(t)["Europe"]
	assert.Equal(t, []int64{res.Scheme.ID}, f.env.Accessor().LinkIDs(europe, domain.LinkTopConceptOf))
}

func TestParseFillOptions(t *testing.T) {
	fill, err := ParseFillOptions("descriptor, Path")
	require.NoError(t, err)
	assert.Equal(t, FillOptions{Descriptor: true, Path: true}, fill)

	fill, err = ParseFillOptions("")
	require.NoError(t, err)
	assert.Equal(t, FillOptions{}, fill)

	_, err = ParseFillOptions("descriptor,label")
	var valErr *application.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "fill", valErr.Field)
}
