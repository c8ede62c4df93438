package ports

import (
	"context"

	"thesaurus/internal/domain"
)

// ResourceStore is the host resource API the engine reads concepts from and
// writes links to. Missing resources are reported with an error matching
// application.ErrNotFound; unreadable ones with application.ErrForbidden.
type ResourceStore interface {
	Read(ctx context.Context, id int64) (*domain.Concept, error)
	Create(ctx context.Context, data domain.ConceptData) (*domain.Concept, error)
	Update(ctx context.Context, id int64, patch domain.Patch) error
	Search(ctx context.Context, filter domain.Filter) ([]*domain.Concept, error)

	// Link operations. DeleteLinks removes every resource value stored under
	// term on any of sources that points to any of targets; an empty targets
	// slice matches every target. It returns the number of values removed.
	InsertLinks(ctx context.Context, links []domain.Link) error
	DeleteLinks(ctx context.Context, term string, sources, targets []int64) (int, error)
}

// CacheClearer is implemented by stores that keep loaded resources in
// memory. Long jobs clear it at every batch boundary.
type CacheClearer interface {
	Clear()
}
