// Package query is the read side of the thesaurus. A View is bound to one
// concept and answers navigation questions from the concept index when the
// scheme has been indexed, falling back to a live walk of the graph when it
// has not (or when the bound concept is newer than the index).
package query

import (
	"context"
	"fmt"

	"thesaurus/internal/application"
	"thesaurus/internal/application/traversal"
	"thesaurus/internal/config"
	"thesaurus/internal/domain"
	"thesaurus/internal/logger"
	"thesaurus/internal/ports"
)

// Facade creates bound views over one store and index
type Facade struct {
	acc    *traversal.Accessor
	walker *traversal.Walker
	index  ports.ConceptIndex
	cfg    config.Config
	log    *logger.Logger
}

// NewFacade creates a facade. index may be nil, in which case every query
// walks the live graph.
func NewFacade(walker *traversal.Walker, index ports.ConceptIndex, cfg config.Config, log *logger.Logger) *Facade {
	if log == nil {
		log = logger.Nop()
	}
	return &Facade{
		acc:    walker.Accessor(),
		walker: walker,
		index:  index,
		cfg:    cfg,
		log:    log,
	}
}

// WithConcept returns a view bound to the concept with the given id
func (f *Facade) WithConcept(ctx context.Context, id int64) (*View, error) {
	if err := application.ValidateID("conceptID", id); err != nil {
		return nil, err
	}
	c, err := f.acc.Require(ctx, id)
	if err != nil {
		return nil, err
	}
	return f.bind(c), nil
}

// Bind returns a view over an already loaded concept
func (f *Facade) Bind(c *domain.Concept) *View {
	return f.bind(c)
}

func (f *Facade) bind(c *domain.Concept) *View {
	v := &View{facade: f, concept: c}
	v.class = f.acc.Classify(c)
	return v
}

// loadRows reads the concepts behind index rows, skipping rows whose
// concept can no longer be read
func (f *Facade) loadRows(ctx context.Context, rows []domain.IndexRow) ([]*domain.Concept, error) {
	out := make([]*domain.Concept, 0, len(rows))
	for _, r := range rows {
		c, err := f.acc.Load(ctx, r.ConceptID)
		if err != nil {
			return nil, err
		}
		if c == nil {
			f.log.Debug("indexed concept no longer readable", "concept_id", r.ConceptID, "scheme_id", r.SchemeID)
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

// flatRows turns pre-ordered rows into level-annotated entries. Levels are
// derived from broader rows; rows whose parent is missing from rows are
// treated as roots.
func (f *Facade) flatRows(ctx context.Context, rows []domain.IndexRow, base int) ([]domain.FlatEntry, error) {
	levels := make(map[int64]int, len(rows))
	out := make([]domain.FlatEntry, 0, len(rows))
	for _, r := range rows {
		level := base
		if r.BroaderID != nil {
			if parent, ok := levels[*r.BroaderID]; ok {
				level = parent + 1
			}
		}
		levels[r.ID] = level

		c, err := f.acc.Load(ctx, r.ConceptID)
		if err != nil {
			return nil, err
		}
		if c == nil {
			continue
		}
		out = append(out, domain.FlatEntry{Concept: c, Level: level})
	}
	return out, nil
}

// subtreeRows returns the rows strictly below origin. rows must be the
// scheme's rows in position order.
func subtreeRows(rows []domain.IndexRow, origin *domain.IndexRow) []domain.IndexRow {
	inside := map[int64]struct{}{origin.ID: {}}
	var out []domain.IndexRow
	for _, r := range rows {
		if r.Position <= origin.Position {
			continue
		}
		if r.BroaderID == nil {
			break
		}
		if _, ok := inside[*r.BroaderID]; !ok {
			break
		}
		inside[r.ID] = struct{}{}
		out = append(out, r)
	}
	return out
}

// ancestorRows follows broader rows up from row, closest first
func (f *Facade) ancestorRows(row *domain.IndexRow) ([]domain.IndexRow, error) {
	var out []domain.IndexRow
	current := row
	for current.BroaderID != nil {
		if len(out) >= f.walker.MaxDepth() {
			return nil, &application.DepthExceededError{ConceptID: row.ConceptID, Depth: f.walker.MaxDepth()}
		}
		parent, err := f.index.RowByID(*current.BroaderID)
		if err != nil {
			return nil, fmt.Errorf("read index row %d: %w", *current.BroaderID, err)
		}
		if parent == nil {
			break
		}
		out = append(out, *parent)
		current = parent
	}
	return out, nil
}

// Records converts flat entries to id/title records, keeping levels
func Records(entries []domain.FlatEntry) []domain.ConceptRecord {
	out := make([]domain.ConceptRecord, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Concept.Record(e.Level))
	}
	return out
}
