// Package cache wraps a ResourceStore with an LRU read cache. Long jobs call
// Clear at each batch boundary so memory stays bounded on large thesauri.
package cache

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"thesaurus/internal/domain"
	"thesaurus/internal/ports"
)

const DefaultSize = 4096

// Store is a read-through cache in front of another store
type Store struct {
	next  ports.ResourceStore
	cache *lru.Cache[int64, *domain.Concept]
}

var (
	_ ports.ResourceStore = (*Store)(nil)
	_ ports.CacheClearer  = (*Store)(nil)
)

// New creates a cache holding at most size concepts
func New(next ports.ResourceStore, size int) (*Store, error) {
	if size <= 0 {
		size = DefaultSize
	}
	c, err := lru.New[int64, *domain.Concept](size)
	if err != nil {
		return nil, fmt.Errorf("create concept cache: %w", err)
	}
	return &Store{next: next, cache: c}, nil
}

func (s *Store) Read(ctx context.Context, id int64) (*domain.Concept, error) {
	if c, ok := s.cache.Get(id); ok {
		return c, nil
	}
	c, err := s.next.Read(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache.Add(id, c)
	return c, nil
}

func (s *Store) Create(ctx context.Context, data domain.ConceptData) (*domain.Concept, error) {
	return s.next.Create(ctx, data)
}

func (s *Store) Update(ctx context.Context, id int64, patch domain.Patch) error {
	s.cache.Remove(id)
	return s.next.Update(ctx, id, patch)
}

func (s *Store) Search(ctx context.Context, filter domain.Filter) ([]*domain.Concept, error) {
	return s.next.Search(ctx, filter)
}

func (s *Store) InsertLinks(ctx context.Context, links []domain.Link) error {
	for _, l := range links {
		s.cache.Remove(l.Source)
	}
	return s.next.InsertLinks(ctx, links)
}

func (s *Store) DeleteLinks(ctx context.Context, term string, sources, targets []int64) (int, error) {
	for _, id := range sources {
		s.cache.Remove(id)
	}
	return s.next.DeleteLinks(ctx, term, sources, targets)
}

// Clear drops every cached concept
func (s *Store) Clear() {
	s.cache.Purge()
}

// Len returns the number of cached concepts
func (s *Store) Len() int {
	return s.cache.Len()
}
