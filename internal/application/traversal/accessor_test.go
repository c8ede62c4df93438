package traversal

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"thesaurus/internal/adapters/memory"
	"thesaurus/internal/config"
	"thesaurus/internal/domain"
)

func TestAccessor_LinkIDs(t *testing.T) {
	cfg := config.Default()
	acc := NewAccessor(memory.NewStore(), cfg, nil)

	c := &domain.Concept{ID: 1, Values: []domain.Value{
		{Term: "skos:narrower", Type: domain.ValueResource, ResourceID: 3},
		{Term: "skos:narrower", Type: domain.ValueLiteral, Literal: "typo"},
		{Term: "skos:narrower", Type: domain.ValueResource, ResourceID: 2},
		{Term: "skos:narrower", Type: domain.ValueResource, ResourceID: 3},
		{Term: "skos:broader", Type: domain.ValueResource, ResourceID: 9},
	}}

	assert.Equal(t, []int64{3, 2}, acc.LinkIDs(c, domain.LinkNarrower))
	assert.Equal(t, []int64{9}, acc.LinkIDs(c, domain.LinkBroader))
	assert.Empty(t, acc.LinkIDs(c, domain.LinkRelated))
	assert.True(t, acc.HasLinks(c, domain.LinkBroader))
	assert.False(t, acc.HasLinks(c, domain.LinkTopConceptOf))
}

func TestAccessor_Classify(t *testing.T) {
	cfg := config.Default()
	acc := NewAccessor(memory.NewStore(), cfg, nil)

	link := func(term string) []domain.Value {
		return []domain.Value{{Term: term, Type: domain.ValueResource, ResourceID: 1}}
	}

	tests := []struct {
		name    string
		concept *domain.Concept
		want    domain.Class
	}{
		{"tagged scheme", &domain.Concept{Classes: []string{"skos:ConceptScheme"}}, domain.ClassScheme},
		{"tagged concept", &domain.Concept{Classes: []string{"skos:Concept"}}, domain.ClassConcept},
		{"tagged collection", &domain.Concept{Classes: []string{"skos:Collection"}}, domain.ClassCollection},
		{"has top concept", &domain.Concept{Values: link("skos:hasTopConcept")}, domain.ClassScheme},
		{"has broader", &domain.Concept{Values: link("skos:broader")}, domain.ClassConcept},
		{"top concept of", &domain.Concept{Values: link("skos:topConceptOf")}, domain.ClassConcept},
		{"member list", &domain.Concept{Values: link("skos:memberList")}, domain.ClassOrderedCollection},
		{"plain item", &domain.Concept{Classes: []string{"foaf:Person"}}, domain.ClassUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, acc.Classify(tt.concept))
		})
	}
}

func TestAccessor_SchemeOf(t *testing.T) {
	ctx := context.Background()
	cfg := config.Default()
	f := memory.NewFixture(cfg)
	acc := NewAccessor(f.Store, cfg, nil)

	s := f.Scheme("S")
	top := f.Concept("Top")
	child := f.Concept("Child")
	loose := f.Concept("Loose")
	f.Top(s, top)
	f.Narrower(top, child)
	f.InScheme(child, s)

	for _, id := range []int64{s, top, child} {
		c, err := f.Store.Read(ctx, id)
		require.NoError(t, err)
		scheme, err := acc.SchemeOf(ctx, c)
		require.NoError(t, err)
		require.NotNil(t, scheme)
		assert.Equal(t, s, scheme.ID)
	}

	c, _ := f.Store.Read(ctx, loose)
	scheme, err := acc.SchemeOf(ctx, c)
	require.NoError(t, err)
	assert.Nil(t, scheme)
}
