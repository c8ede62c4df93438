package memory

import (
	"context"

	"thesaurus/internal/config"
	"thesaurus/internal/domain"
)

// Fixture builds SKOS graphs in a Store. Errors panic; it is meant for tests
// and seeded demo data only.
type Fixture struct {
	Store   *Store
	Terms   config.Terms
	Classes config.Classes
}

// NewFixture creates a fixture over an empty store
func NewFixture(cfg config.Config) *Fixture {
	return &Fixture{Store: NewStore(), Terms: cfg.Terms, Classes: cfg.Classes}
}

// Scheme creates a concept scheme
func (f *Fixture) Scheme(title string) int64 {
	return f.create(title, f.Classes.Scheme)
}

// Concept creates an unlinked concept
func (f *Fixture) Concept(title string) int64 {
	return f.create(title, f.Classes.Concept)
}

// Top makes concept a top concept of scheme
func (f *Fixture) Top(scheme, concept int64) {
	f.link(scheme, f.Terms.HasTopConcept, concept)
	f.link(concept, f.Terms.TopConceptOf, scheme)
	f.link(concept, f.Terms.InScheme, scheme)
}

// Narrower links child under parent in both directions
func (f *Fixture) Narrower(parent, child int64) {
	f.link(parent, f.Terms.Narrower, child)
	f.link(child, f.Terms.Broader, parent)
}

// InScheme records scheme membership
func (f *Fixture) InScheme(concept, scheme int64) {
	f.link(concept, f.Terms.InScheme, scheme)
}

// Link inserts one raw link
func (f *Fixture) Link(source int64, term string, target int64) {
	f.link(source, term, target)
}

func (f *Fixture) create(title, class string) int64 {
	c, err := f.Store.Create(context.Background(), domain.ConceptData{Title: title, Classes: []string{class}})
	if err != nil {
		panic(err)
	}
	return c.ID
}

func (f *Fixture) link(source int64, term string, target int64) {
	err := f.Store.InsertLinks(context.Background(), []domain.Link{{Source: source, Term: term, Target: target}})
	if err != nil {
		panic(err)
	}
}
