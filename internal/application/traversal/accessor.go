package traversal

import (
	"context"
	"fmt"

	"github.com/RoaringBitmap/roaring/roaring64"

	"thesaurus/internal/application"
	"thesaurus/internal/config"
	"thesaurus/internal/domain"
	"thesaurus/internal/logger"
	"thesaurus/internal/ports"
)

// Accessor reads typed links out of generic resources
type Accessor struct {
	store   ports.ResourceStore
	terms   config.Terms
	classes config.Classes
	log     *logger.Logger
}

// NewAccessor creates an accessor over store using the configured terms
func NewAccessor(store ports.ResourceStore, cfg config.Config, log *logger.Logger) *Accessor {
	if log == nil {
		log = logger.Nop()
	}
	return &Accessor{store: store, terms: cfg.Terms, classes: cfg.Classes, log: log}
}

// Store returns the underlying resource store
func (a *Accessor) Store() ports.ResourceStore {
	return a.store
}

// Term returns the property term a link type is stored under
func (a *Accessor) Term(lt domain.LinkType) string {
	return a.terms.Term(lt)
}

// LinkIDs returns the ordered, deduplicated targets of c's links of type lt.
// Values that are not resource links are ignored.
func (a *Accessor) LinkIDs(c *domain.Concept, lt domain.LinkType) []int64 {
	term := a.terms.Term(lt)
	seen := roaring64.New()
	var ids []int64
	for _, v := range c.Values {
		if v.Term != term || v.Type != domain.ValueResource || v.ResourceID <= 0 {
			continue
		}
		if !seen.CheckedAdd(uint64(v.ResourceID)) {
			continue
		}
		ids = append(ids, v.ResourceID)
	}
	return ids
}

// HasLinks reports whether c carries at least one link of type lt
func (a *Accessor) HasLinks(c *domain.Concept, lt domain.LinkType) bool {
	term := a.terms.Term(lt)
	for _, v := range c.Values {
		if v.Term == term && v.Type == domain.ValueResource && v.ResourceID > 0 {
			return true
		}
	}
	return false
}

// Links loads the targets of c's links of type lt in order. Targets that are
// gone or unreadable are skipped.
func (a *Accessor) Links(ctx context.Context, c *domain.Concept, lt domain.LinkType) ([]*domain.Concept, error) {
	ids := a.LinkIDs(c, lt)
	out := make([]*domain.Concept, 0, len(ids))
	for _, id := range ids {
		target, err := a.Load(ctx, id)
		if err != nil {
			return nil, err
		}
		if target != nil {
			out = append(out, target)
		}
	}
	return out, nil
}

// First returns the first readable target of c's links of type lt, or nil
func (a *Accessor) First(ctx context.Context, c *domain.Concept, lt domain.LinkType) (*domain.Concept, error) {
	for _, id := range a.LinkIDs(c, lt) {
		target, err := a.Load(ctx, id)
		if err != nil {
			return nil, err
		}
		if target != nil {
			return target, nil
		}
	}
	return nil, nil
}

// Load reads one concept. Missing and forbidden concepts return nil, nil.
func (a *Accessor) Load(ctx context.Context, id int64) (*domain.Concept, error) {
	c, err := a.store.Read(ctx, id)
	if err != nil {
		if application.IsSkippable(err) {
			a.log.Debug("skipping unreadable concept", "concept_id", id, "error", err)
			return nil, nil
		}
		return nil, fmt.Errorf("read concept %d: %w", id, err)
	}
	return c, nil
}

// Require reads one concept and fails when it cannot be read
func (a *Accessor) Require(ctx context.Context, id int64) (*domain.Concept, error) {
	c, err := a.store.Read(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("read concept %d: %w", id, err)
	}
	return c, nil
}

// Classify derives the kind of c from its class tags, falling back to the
// link types it carries
func (a *Accessor) Classify(c *domain.Concept) domain.Class {
	switch {
	case c.HasClass(a.classes.Scheme):
		return domain.ClassScheme
	case c.HasClass(a.classes.Concept):
		return domain.ClassConcept
	case c.HasClass(a.classes.OrderedCollection):
		return domain.ClassOrderedCollection
	case c.HasClass(a.classes.Collection):
		return domain.ClassCollection
	}

	switch {
	case a.HasLinks(c, domain.LinkHasTopConcept):
		return domain.ClassScheme
	case a.HasLinks(c, domain.LinkBroader),
		a.HasLinks(c, domain.LinkNarrower),
		a.HasLinks(c, domain.LinkTopConceptOf):
		return domain.ClassConcept
	case a.HasLinks(c, domain.LinkMemberList):
		return domain.ClassOrderedCollection
	case a.HasLinks(c, domain.LinkMember):
		return domain.ClassCollection
	}
	return domain.ClassUnknown
}

// SchemeOf returns the scheme c belongs to: c itself for schemes, else its
// first top-concept-of or in-scheme target. Returns nil when none is readable.
func (a *Accessor) SchemeOf(ctx context.Context, c *domain.Concept) (*domain.Concept, error) {
	if a.Classify(c) == domain.ClassScheme {
		return c, nil
	}
	if s, err := a.First(ctx, c, domain.LinkTopConceptOf); err != nil || s != nil {
		return s, err
	}
	return a.First(ctx, c, domain.LinkInScheme)
}
