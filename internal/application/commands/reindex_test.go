package commands

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"thesaurus/internal/adapters/cache"
	"thesaurus/internal/application"
	"thesaurus/internal/config"
	"thesaurus/internal/domain"
	"thesaurus/internal/logger"
	"thesaurus/internal/ports"
)

func TestReindexScheme_Scenario(t *testing.T) {
	f := newFixture(t, nil)
	s := f.scenario()

	res := f.reindex(t, s)
	assert.Equal(t, 4, res.Stats.RowsCreated)
	assert.Equal(t, 1, res.Stats.Batches)
	assert.NotEmpty(t, res.Stats.RunID)

	assert.Equal(t, []string{"A", "B"}, f.tops(t, s))
	assert.Equal(t, []string{"A1", "A2"}, f.children(t, "A", s))

	a := f.row(t, "A", s)
	a2 := f.row(t, "A2", s)
	assert.Equal(t, a.ID, a.RootID)
	assert.Equal(t, a.ID, a2.RootID)
	require.NotNil(t, a2.BroaderID)
	assert.Equal(t, a.ID, *a2.BroaderID)

	_, ok, err := f.index.LastIndexed(s)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestReindexScheme_RoundTrip(t *testing.T) {
	f := newFixture(t, func(c *config.Config) { c.BatchSize = 3 })
	s := f.scheme("S")
	f.concepts("A", "B", "C", "A1", "A2", "A11", "A12", "B1", "B11", "B111")
	f.Top(s, f.ids["A"])
	f.Top(s, f.ids["B"])
	f.Top(s, f.ids["C"])
	f.Narrower(f.ids["A"], f.ids["A1"])
	f.Narrower(f.ids["A"], f.ids["A2"])
	f.Narrower(f.ids["A1"], f.ids["A11"])
	f.Narrower(f.ids["A1"], f.ids["A12"])
	f.Narrower(f.ids["B"], f.ids["B1"])
	f.Narrower(f.ids["B1"], f.ids["B11"])
	f.Narrower(f.ids["B11"], f.ids["B111"])

	ctx := context.Background()
	res := f.reindex(t, s)
	assert.Equal(t, 4, res.Stats.Batches)

	scheme, err := f.Store.Read(ctx, s)
	require.NoError(t, err)
	flat, err := f.env.Walker().FlatScheme(ctx, scheme)
	require.NoError(t, err)

	rows, err := f.index.AllRowsOf(s)
	require.NoError(t, err)
	require.Len(t, rows, len(flat))

	byID := domain.RowsByID(rows)
	for i, r := range rows {
		// position order mirrors the live pre-order
		assert.Equal(t, flat[i].Concept.ID, r.ConceptID)
		assert.Equal(t, i, r.Position)

		// broader chain length equals the live level, ending at the root
		level := 0
		cur := r
		for cur.BroaderID != nil {
			parent, ok := byID[*cur.BroaderID]
			require.True(t, ok, "broader row in the same scheme")
			cur = *parent
			level++
		}
		assert.Equal(t, flat[i].Level, level)
		assert.Equal(t, cur.ID, r.RootID)
	}

	// nested tree rebuilt from rows matches the live nested tree
	live, err := f.env.Walker().NestedScheme(ctx, scheme)
	require.NoError(t, err)

	var rebuild func(rowID int64) []string
	rebuild = func(rowID int64) []string {
		kids, err := f.index.ChildrenOf(rowID)
		require.NoError(t, err)
		var out []string
		for _, k := range kids {
			out = append(out, f.names[k.ConceptID])
			out = append(out, rebuild(k.ID)...)
		}
		return out
	}
	var describe func(n *domain.TreeNode) []string
	describe = func(n *domain.TreeNode) []string {
		var out []string
		for _, c := range n.Children {
			out = append(out, c.Concept.Title)
			out = append(out, describe(c)...)
		}
		return out
	}

	tops, err := f.index.TopsOf(s)
	require.NoError(t, err)
	require.Len(t, tops, len(live))
	for i, top := range tops {
		assert.Equal(t, live[i].Concept.ID, top.ConceptID)
		assert.Equal(t, describe(live[i]), rebuild(top.ID))
	}
}

func TestReindexScheme_Idempotent(t *testing.T) {
	f := newFixture(t, nil)
	s := f.scenario()
	f.concepts("A21")
	f.Narrower(f.ids["A2"], f.ids["A21"])

	type tuple struct {
		concept, root, broader string
		position               int
	}
	capture := func() []tuple {
		rows, err := f.index.AllRowsOf(s)
		require.NoError(t, err)
		byID := domain.RowsByID(rows)
		var out []tuple
		for _, r := range rows {
			tp := tuple{concept: f.names[r.ConceptID], root: f.names[byID[r.RootID].ConceptID], position: r.Position}
			if r.BroaderID != nil {
				tp.broader = f.names[byID[*r.BroaderID].ConceptID]
			}
			out = append(out, tp)
		}
		return out
	}

	first := f.reindex(t, s)
	before := capture()
	second := f.reindex(t, s)
	after := capture()

	assert.Equal(t, before, after)
	assert.Equal(t, int64(first.Stats.RowsCreated), second.Stats.RowsDeleted)
}

func TestReindexScheme_EmptyScheme(t *testing.T) {
	f := newFixture(t, nil)
	s := f.scheme("Empty")
	f.concepts("Loose")
	f.InScheme(f.ids["Loose"], s)

	res, err := NewReindexSchemeCommand(f.env, s).Execute(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, application.ErrEmptyScheme))
	require.NotNil(t, res)
	assert.Contains(t, res.Message, "no top concepts")

	rows, err := f.index.AllRowsOf(s)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestReindexScheme_Cycle(t *testing.T) {
	f := newFixture(t, nil)
	s := f.scenario()
	f.reindex(t, s)

	// A2 becomes an ancestor of A
	f.Narrower(f.ids["A2"], f.ids["A"])

	_, err := NewReindexSchemeCommand(f.env, s).Execute(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, application.ErrDepthExceeded)

	var schemeErr *application.SchemeError
	require.ErrorAs(t, err, &schemeErr)
	assert.Equal(t, s, schemeErr.SchemeID)

	has, err := f.index.HasScheme(s)
	require.NoError(t, err)
	assert.False(t, has, "a broken scheme is left without rows")
}

var errWriteFailed = errors.New("write failed")

// failingIndex makes the n-th row insert, or the n-th commit, fail
type failingIndex struct {
	ports.ConceptIndex
	failInsert, failCommit int
	inserts, commits       int
}

func (i *failingIndex) BeginTx() (ports.IndexTx, error) {
	tx, err := i.ConceptIndex.BeginTx()
	if err != nil {
		return nil, err
	}
	return &failingTx{IndexTx: tx, index: i}, nil
}

type failingTx struct {
	ports.IndexTx
	index *failingIndex
}

func (t *failingTx) InsertRow(row *domain.IndexRow) error {
	t.index.inserts++
	if t.index.inserts == t.index.failInsert {
		return errWriteFailed
	}
	return t.IndexTx.InsertRow(row)
}

func (t *failingTx) Commit() error {
	t.index.commits++
	if t.index.commits == t.index.failCommit {
		_ = t.IndexTx.Rollback()
		return errWriteFailed
	}
	return t.IndexTx.Commit()
}

func TestReindexScheme_WriteFailureDiscardsCommittedBatches(t *testing.T) {
	tests := []struct {
		name  string
		index func(ports.ConceptIndex) *failingIndex
	}{
		{
			name:  "insert fails in third batch",
			index: func(idx ports.ConceptIndex) *failingIndex { return &failingIndex{ConceptIndex: idx, failInsert: 3} },
		},
		{
			name:  "commit fails on third batch",
			index: func(idx ports.ConceptIndex) *failingIndex { return &failingIndex{ConceptIndex: idx, failCommit: 3} },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, func(c *config.Config) { c.BatchSize = 1 })
			s := f.scenario()
			failing := tt.index(f.index)
			env := NewEnv(f.Store, failing, f.env.Config, f.env.Log)

			res, err := NewReindexSchemeCommand(env, s).Execute(context.Background())
			require.ErrorIs(t, err, errWriteFailed)
			assert.Nil(t, res)

			has, err := f.index.HasScheme(s)
			require.NoError(t, err)
			assert.False(t, has, "rows of earlier batches are removed")
		})
	}
}

func TestReindexScheme_LogsProgressAtInfo(t *testing.T) {
	f := newFixture(t, func(c *config.Config) { c.BatchSize = 1 })
	s := f.scenario()

	core, logs := observer.New(zapcore.InfoLevel)
	env := NewEnv(f.Store, f.index, f.env.Config, logger.Wrap(zap.New(core)))

	_, err := NewReindexSchemeCommand(env, s).Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, logs.FilterMessage("batch committed").Len())
}

func TestReindexScheme_MissingRoot(t *testing.T) {
	f := newFixture(t, func(c *config.Config) { c.BatchSize = 1 })
	s := f.scenario()
	ctx := context.Background()

	a, _ := f.Store.Read(ctx, f.ids["A"])
	a1, _ := f.Store.Read(ctx, f.ids["A1"])

	tests := []struct {
		name string
		flat []domain.FlatEntry
	}{
		{"child before any root", []domain.FlatEntry{{Concept: a1, Level: 1}}},
		{"level gap after committed root", []domain.FlatEntry{{Concept: a, Level: 0}, {Concept: a1, Level: 2}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := NewReindexSchemeCommand(f.env, s)
			stats := &domain.IndexStats{SchemeID: s}
			err := cmd.writeRows(ctx, f.env.Log, tt.flat, stats)

			var missing *application.MissingRootError
			require.ErrorAs(t, err, &missing)
			assert.Equal(t, a1.ID, missing.ConceptID)
			assert.ErrorIs(t, err, application.ErrMissingRoot)

			rows, err := f.index.AllRowsOf(s)
			require.NoError(t, err)
			assert.Empty(t, rows, "partial rows are deleted")
		})
	}
}

func TestReindexScheme_CanceledBetweenBatches(t *testing.T) {
	f := newFixture(t, func(c *config.Config) { c.BatchSize = 2 })
	s := f.scenario()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := NewReindexSchemeCommand(f.env, s).Execute(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, res)
	assert.True(t, res.Stats.Canceled)
	assert.Equal(t, 2, res.Stats.RowsCreated, "the in-flight batch commits")

	rows, err := f.index.AllRowsOf(s)
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	// the next run fully replaces the partial rows
	again := f.reindex(t, s)
	assert.Equal(t, int64(2), again.Stats.RowsDeleted)
	assert.Equal(t, 4, again.Stats.RowsCreated)
}

func TestReindexScheme_ClearsCacheBetweenBatches(t *testing.T) {
	f := newFixture(t, func(c *config.Config) { c.BatchSize = 1 })
	s := f.scenario()

	cached, err := cache.New(f.Store, 16)
	require.NoError(t, err)
	env := NewEnv(cached, f.index, f.env.Config, f.env.Log)

	res, err := NewReindexSchemeCommand(env, s).Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, res.Stats.Batches)

	// only the scheme reloaded after the last clear is cached
	assert.Equal(t, 1, cached.Len())
}

func TestReindexScheme_FillsPaths(t *testing.T) {
	f := newFixture(t, func(c *config.Config) {
		c.PathProperty = "ex:path"
		c.AscendanceProperty = "ex:ascendance"
		c.Separator = " / "
	})
	s := f.scenario()
	f.concepts("A21")
	f.Narrower(f.ids["A2"], f.ids["A21"])
	f.reindex(t, s)

	ctx := context.Background()
	leaf, err := f.Store.Read(ctx, f.ids["A21"])
	require.NoError(t, err)
	path, _ := leaf.Literal("ex:path")
	asc, _ := leaf.Literal("ex:ascendance")
	assert.Equal(t, "A / A2 / A21", path)
	assert.Equal(t, "A / A2", asc)

	top, err := f.Store.Read(ctx, f.ids["B"])
	require.NoError(t, err)
	path, _ = top.Literal("ex:path")
	assert.Equal(t, "B", path)
	_, ok := top.Literal("ex:ascendance")
	assert.False(t, ok)
}

func TestReindexScheme_Validate(t *testing.T) {
	f := newFixture(t, nil)
	_, err := NewReindexSchemeCommand(f.env, 0).Execute(context.Background())
	var valErr *application.ValidationError
	assert.ErrorAs(t, err, &valErr)

	_, err = NewReindexSchemeCommand(f.env, 404).Execute(context.Background())
	assert.ErrorIs(t, err, application.ErrNotFound)
}
