package commands

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"thesaurus/internal/application"
)

func TestReindexAll(t *testing.T) {
	f := newFixture(t, nil)
	good := f.scenario()

	empty := f.scheme("Empty")

	broken := f.scheme("Broken")
	f.concepts("X", "Y")
	f.Top(broken, f.ids["X"])
	f.Narrower(f.ids["X"], f.ids["Y"])
	f.Narrower(f.ids["Y"], f.ids["X"])

	// untagged scheme found through its has-top-concept link
	f.concepts("Untagged", "U1")
	f.Link(f.ids["Untagged"], f.Terms.HasTopConcept, f.ids["U1"])

	res, err := NewReindexAllCommand(f.env).Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, res.Stats.Schemes)
	assert.Equal(t, 2, res.Stats.Succeeded)
	assert.Equal(t, 1, res.Stats.Empty)
	assert.Equal(t, 1, res.Stats.Failed)
	assert.False(t, res.Stats.Canceled)
	assert.ErrorIs(t, res.Errors[broken], application.ErrDepthExceeded)
	assert.Contains(t, res.Message, "Reindexed 2 of 4 schemes")

	assert.Equal(t, []string{"A", "B"}, f.tops(t, good))
	has, err := f.index.HasScheme(empty)
	require.NoError(t, err)
	assert.False(t, has)
	has, err = f.index.HasScheme(f.ids["Untagged"])
	require.NoError(t, err)
	assert.True(t, has)

	for _, s := range res.Schemes {
		assert.Equal(t, res.Stats.RunID, s.RunID)
	}
}

func TestReindexAll_Canceled(t *testing.T) {
	f := newFixture(t, nil)
	s := f.scenario()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := NewReindexAllCommand(f.env).Execute(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, res)
	assert.True(t, res.Stats.Canceled)
	assert.Equal(t, 0, res.Stats.Succeeded)

	has, err := f.index.HasScheme(s)
	require.NoError(t, err)
	assert.False(t, has)
}
