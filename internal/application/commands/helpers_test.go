package commands

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"thesaurus/internal/adapters/memory"
	"thesaurus/internal/adapters/sqlite"
	"thesaurus/internal/config"
	"thesaurus/internal/domain"
	"thesaurus/internal/logger"
)

type fixture struct {
	*memory.Fixture
	env   *Env
	index *sqlite.Index
	ids   map[string]int64
	names map[int64]string
}

func newFixture(t *testing.T, mutate func(*config.Config)) *fixture {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(&cfg)
	}

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "index.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	mf := memory.NewFixture(cfg)
	index := db.Index()
	return &fixture{
		Fixture: mf,
		env:     NewEnv(mf.Store, index, cfg, logger.Wrap(zaptest.NewLogger(t))),
		index:   index,
		ids:     map[string]int64{},
		names:   map[int64]string{},
	}
}

func (f *fixture) scheme(name string) int64 {
	id := f.Scheme(name)
	f.ids[name], f.names[id] = id, name
	return id
}

func (f *fixture) concepts(names ...string) {
	for _, name := range names {
		id := f.Concept(name)
		f.ids[name], f.names[id] = id, name
	}
}

// scenario builds scheme S with tops [A, B] and A > [A1, A2]
func (f *fixture) scenario() int64 {
	s := f.scheme("S")
	f.concepts("A", "B", "A1", "A2")
	f.Top(s, f.ids["A"])
	f.Top(s, f.ids["B"])
	f.Narrower(f.ids["A"], f.ids["A1"])
	f.Narrower(f.ids["A"], f.ids["A2"])
	return s
}

func (f *fixture) reindex(t *testing.T, scheme int64) *ReindexSchemeResult {
	t.Helper()
	res, err := NewReindexSchemeCommand(f.env, scheme).Execute(context.Background())
	require.NoError(t, err)
	return res
}

func (f *fixture) row(t *testing.T, name string, scheme int64) *domain.IndexRow {
	t.Helper()
	r, err := f.index.RowFor(f.ids[name], scheme)
	require.NoError(t, err)
	require.NotNil(t, r, "no row for %s", name)
	return r
}

func (f *fixture) rowNames(rows []domain.IndexRow) []string {
	out := []string{}
	for _, r := range rows {
		out = append(out, f.names[r.ConceptID])
	}
	return out
}

func (f *fixture) tops(t *testing.T, scheme int64) []string {
	t.Helper()
	rows, err := f.index.TopsOf(scheme)
	require.NoError(t, err)
	return f.rowNames(rows)
}

func (f *fixture) children(t *testing.T, name string, scheme int64) []string {
	t.Helper()
	rows, err := f.index.ChildrenOf(f.row(t, name, scheme).ID)
	require.NoError(t, err)
	return f.rowNames(rows)
}

// values captures every concept's values for before/after comparisons
func (f *fixture) values(t *testing.T) map[string][]domain.Value {
	t.Helper()
	out := make(map[string][]domain.Value, len(f.ids))
	for name, id := range f.ids {
		c, err := f.Store.Read(context.Background(), id)
		require.NoError(t, err)
		out[name] = c.Values
	}
	return out
}

func parent(id int64) *int64 {
	return &id
}

func entry(id int64, parentID int64) domain.StructureEntry {
	e := domain.StructureEntry{ID: id, HasParent: true}
	if parentID != 0 {
		e.Parent = parent(parentID)
	}
	return e
}
