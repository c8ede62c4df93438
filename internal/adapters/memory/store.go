// Package memory holds an in-process ResourceStore. It backs tests and
// dry runs; the CLI and MCP server use the SQLite store.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"thesaurus/internal/application"
	"thesaurus/internal/domain"
	"thesaurus/internal/ports"
)

// Store implements ports.ResourceStore over a map
type Store struct {
	mu        sync.RWMutex
	nextID    int64
	concepts  map[int64]*domain.Concept
	forbidden map[int64]bool
	reads     atomic.Int64
}

var _ ports.ResourceStore = (*Store)(nil)

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		concepts:  make(map[int64]*domain.Concept),
		forbidden: make(map[int64]bool),
	}
}

// Read returns a copy of the stored concept
func (s *Store) Read(_ context.Context, id int64) (*domain.Concept, error) {
	s.reads.Add(1)

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.forbidden[id] {
		return nil, fmt.Errorf("concept %d: %w", id, application.ErrForbidden)
	}
	c, ok := s.concepts[id]
	if !ok {
		return nil, fmt.Errorf("concept %d: %w", id, application.ErrNotFound)
	}
	return c.Clone(), nil
}

// Create stores a new concept with the next free id
func (s *Store) Create(_ context.Context, data domain.ConceptData) (*domain.Concept, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	c := &domain.Concept{
		ID:      s.nextID,
		Title:   data.Title,
		Classes: slices.Clone(data.Classes),
		Values:  slices.Clone(data.Values),
	}
	s.concepts[c.ID] = c
	return c.Clone(), nil
}

// Update applies a partial update
func (s *Store) Update(_ context.Context, id int64, patch domain.Patch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.concepts[id]
	if !ok {
		return fmt.Errorf("concept %d: %w", id, application.ErrNotFound)
	}
	if patch.Title != nil {
		c.Title = *patch.Title
	}
	for term, text := range patch.Literals {
		c.Values = slices.DeleteFunc(c.Values, func(v domain.Value) bool {
			return v.Term == term && v.Type == domain.ValueLiteral
		})
		if text != "" {
			c.Values = append(c.Values, domain.Value{Term: term, Type: domain.ValueLiteral, Literal: text})
		}
	}
	return nil
}

// Search returns matching concepts ordered by id
func (s *Store) Search(_ context.Context, filter domain.Filter) ([]*domain.Concept, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]int64, 0, len(s.concepts))
	for id := range s.concepts {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	var out []*domain.Concept
	for _, id := range ids {
		c := s.concepts[id]
		if filter.Class != "" && !c.HasClass(filter.Class) {
			continue
		}
		if filter.HasTerm != "" && !slices.ContainsFunc(c.Values, func(v domain.Value) bool {
			return v.Term == filter.HasTerm && v.Type == domain.ValueResource
		}) {
			continue
		}
		out = append(out, c.Clone())
	}
	return out, nil
}

// InsertLinks appends resource values. A link already present is not duplicated.
func (s *Store) InsertLinks(_ context.Context, links []domain.Link) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, l := range links {
		c, ok := s.concepts[l.Source]
		if !ok {
			return fmt.Errorf("concept %d: %w", l.Source, application.ErrNotFound)
		}
		v := domain.Value{Term: l.Term, Type: domain.ValueResource, ResourceID: l.Target}
		if slices.Contains(c.Values, v) {
			continue
		}
		c.Values = append(c.Values, v)
	}
	return nil
}

// DeleteLinks removes matching resource values
func (s *Store) DeleteLinks(_ context.Context, term string, sources, targets []int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for _, src := range sources {
		c, ok := s.concepts[src]
		if !ok {
			continue
		}
		before := len(c.Values)
		c.Values = slices.DeleteFunc(c.Values, func(v domain.Value) bool {
			if v.Term != term || v.Type != domain.ValueResource {
				return false
			}
			return len(targets) == 0 || slices.Contains(targets, v.ResourceID)
		})
		removed += before - len(c.Values)
	}
	return removed, nil
}

// Delete drops a concept without touching links that point to it
func (s *Store) Delete(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.concepts, id)
}

// Deny makes reads of id fail as forbidden
func (s *Store) Deny(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.forbidden[id] = true
}

// Reads returns how many Read calls the store has served
func (s *Store) Reads() int64 {
	return s.reads.Load()
}
