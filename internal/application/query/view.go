package query

import (
	"context"
	"fmt"
	"slices"

	"thesaurus/internal/domain"
)

// View is bound to one concept. Classification is computed at bind time;
// the concept's scheme, whether that scheme is indexed, and the concept's
// index row are loaded on first use and memoized for the life of the view.
type View struct {
	facade  *Facade
	concept *domain.Concept
	class   domain.Class

	scheme       *domain.Concept
	schemeLoaded bool

	indexed     bool
	indexLoaded bool

	row       *domain.IndexRow
	rowLoaded bool
}

// Concept returns the bound concept
func (v *View) Concept() *domain.Concept {
	return v.concept
}

// Class returns the derived kind of the bound concept
func (v *View) Class() domain.Class {
	return v.class
}

// IsSkos reports whether the concept takes part in a thesaurus at all
func (v *View) IsSkos() bool {
	return v.class != domain.ClassUnknown
}

func (v *View) IsScheme() bool {
	return v.class == domain.ClassScheme
}

func (v *View) IsConcept() bool {
	return v.class == domain.ClassConcept
}

func (v *View) IsCollection() bool {
	return v.class == domain.ClassCollection || v.class == domain.ClassOrderedCollection
}

// WithConcept rebinds to another concept. The memoized scheme is kept when
// the new concept belongs to it; otherwise everything is loaded again.
func (v *View) WithConcept(ctx context.Context, id int64) (*View, error) {
	next, err := v.facade.WithConcept(ctx, id)
	if err != nil {
		return nil, err
	}
	if !v.schemeLoaded || v.scheme == nil {
		return next, nil
	}

	same, err := next.belongsTo(v.scheme.ID, v.indexLoaded && v.indexed)
	if err != nil {
		return nil, err
	}
	if same {
		next.scheme, next.schemeLoaded = v.scheme, true
		next.indexed, next.indexLoaded = v.indexed, v.indexLoaded
	}
	return next, nil
}

func (v *View) belongsTo(schemeID int64, indexed bool) (bool, error) {
	if v.concept.ID == schemeID {
		return true, nil
	}
	acc := v.facade.acc
	if slices.Contains(acc.LinkIDs(v.concept, domain.LinkTopConceptOf), schemeID) ||
		slices.Contains(acc.LinkIDs(v.concept, domain.LinkInScheme), schemeID) {
		return true, nil
	}
	if !indexed {
		return false, nil
	}
	row, err := v.facade.index.RowFor(v.concept.ID, schemeID)
	if err != nil {
		return false, fmt.Errorf("read index: %w", err)
	}
	return row != nil, nil
}

// Scheme returns the scheme the concept belongs to: the concept itself for
// schemes, else the target of its own scheme links, else its root's scheme.
// Nil when none can be found.
func (v *View) Scheme(ctx context.Context) (*domain.Concept, error) {
	if v.schemeLoaded {
		return v.scheme, nil
	}

	acc := v.facade.acc
	s, err := acc.SchemeOf(ctx, v.concept)
	if err != nil {
		return nil, err
	}
	if s == nil {
		chain, err := v.facade.walker.AncestorChain(ctx, v.concept)
		if err != nil {
			return nil, err
		}
		if len(chain) > 0 {
			if s, err = acc.SchemeOf(ctx, chain[len(chain)-1]); err != nil {
				return nil, err
			}
		}
	}

	v.scheme, v.schemeLoaded = s, true
	return s, nil
}

// HasIndex reports whether the concept's scheme has index rows
func (v *View) HasIndex(ctx context.Context) (bool, error) {
	if v.indexLoaded {
		return v.indexed, nil
	}
	if v.facade.index == nil {
		v.indexLoaded = true
		return false, nil
	}

	s, err := v.Scheme(ctx)
	if err != nil {
		return false, err
	}
	indexed := false
	if s != nil {
		if indexed, err = v.facade.index.HasScheme(s.ID); err != nil {
			return false, fmt.Errorf("read index: %w", err)
		}
	}

	v.indexed, v.indexLoaded = indexed, true
	return indexed, nil
}

// indexRow returns the concept's row in its scheme, or nil when queries
// must walk the live graph instead
func (v *View) indexRow(ctx context.Context) (*domain.IndexRow, error) {
	if v.rowLoaded {
		return v.row, nil
	}
	indexed, err := v.HasIndex(ctx)
	if err != nil {
		return nil, err
	}

	var row *domain.IndexRow
	if indexed && !v.IsScheme() {
		row, err = v.facade.index.RowFor(v.concept.ID, v.scheme.ID)
		if err != nil {
			return nil, fmt.Errorf("read index: %w", err)
		}
		if row == nil {
			v.facade.log.Debug("concept not in index, walking live graph",
				"concept_id", v.concept.ID, "scheme_id", v.scheme.ID)
		}
	}

	v.row, v.rowLoaded = row, true
	return row, nil
}

// Tops returns the scheme's top concepts in order
func (v *View) Tops(ctx context.Context) ([]*domain.Concept, error) {
	s, err := v.Scheme(ctx)
	if err != nil || s == nil {
		return nil, err
	}
	indexed, err := v.HasIndex(ctx)
	if err != nil {
		return nil, err
	}
	if indexed {
		rows, err := v.facade.index.TopsOf(s.ID)
		if err != nil {
			return nil, fmt.Errorf("read index: %w", err)
		}
		return v.facade.loadRows(ctx, rows)
	}
	return v.facade.walker.Tops(ctx, s)
}

// Root returns the top concept above the bound concept, the concept itself
// when it is a top concept, and nil for schemes
func (v *View) Root(ctx context.Context) (*domain.Concept, error) {
	if v.IsScheme() {
		return nil, nil
	}
	row, err := v.indexRow(ctx)
	if err != nil {
		return nil, err
	}
	if row != nil {
		if row.RootID == row.ID {
			return v.concept, nil
		}
		root, err := v.facade.index.RowByID(row.RootID)
		if err != nil {
			return nil, fmt.Errorf("read index: %w", err)
		}
		if root != nil {
			return v.facade.acc.Load(ctx, root.ConceptID)
		}
	}

	chain, err := v.facade.walker.AncestorChainOrSelf(ctx, v.concept)
	if err != nil {
		return nil, err
	}
	return chain[len(chain)-1], nil
}

// Broader returns the direct parent, nil for top concepts and schemes
func (v *View) Broader(ctx context.Context) (*domain.Concept, error) {
	if v.IsScheme() {
		return nil, nil
	}
	row, err := v.indexRow(ctx)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return v.facade.acc.First(ctx, v.concept, domain.LinkBroader)
	}
	if row.BroaderID == nil {
		return nil, nil
	}
	parent, err := v.facade.index.RowByID(*row.BroaderID)
	if err != nil {
		return nil, fmt.Errorf("read index: %w", err)
	}
	if parent == nil {
		return nil, nil
	}
	return v.facade.acc.Load(ctx, parent.ConceptID)
}

// Narrowers returns the direct children in order. For a scheme these are
// its top concepts.
func (v *View) Narrowers(ctx context.Context) ([]*domain.Concept, error) {
	if v.IsScheme() {
		return v.Tops(ctx)
	}
	row, err := v.indexRow(ctx)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return v.facade.acc.Links(ctx, v.concept, domain.LinkNarrower)
	}
	rows, err := v.facade.index.ChildrenOf(row.ID)
	if err != nil {
		return nil, fmt.Errorf("read index: %w", err)
	}
	return v.facade.loadRows(ctx, rows)
}

// Ascendants returns the ancestors of the concept, closest first
func (v *View) Ascendants(ctx context.Context) ([]*domain.Concept, error) {
	if v.IsScheme() {
		return nil, nil
	}
	row, err := v.indexRow(ctx)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return v.facade.walker.AncestorChain(ctx, v.concept)
	}
	rows, err := v.facade.ancestorRows(row)
	if err != nil {
		return nil, err
	}
	return v.facade.loadRows(ctx, rows)
}

// AscendantsOrSelf is Ascendants with the concept first
func (v *View) AscendantsOrSelf(ctx context.Context) ([]*domain.Concept, error) {
	chain, err := v.Ascendants(ctx)
	if err != nil {
		return nil, err
	}
	return append([]*domain.Concept{v.concept}, chain...), nil
}

// Descendants returns everything below the concept in pre-order, children
// at level 1
func (v *View) Descendants(ctx context.Context) ([]domain.FlatEntry, error) {
	branch, err := v.FlatBranch(ctx)
	if err != nil {
		return nil, err
	}
	return branch[1:], nil
}

// DescendantsOrSelf is Descendants with the concept at level 0
func (v *View) DescendantsOrSelf(ctx context.Context) ([]domain.FlatEntry, error) {
	return v.FlatBranch(ctx)
}

// Siblings returns the other children of the concept's parent, or the other
// top concepts for a top concept
func (v *View) Siblings(ctx context.Context) ([]*domain.Concept, error) {
	all, err := v.SiblingsOrSelf(ctx)
	if err != nil {
		return nil, err
	}
	return slices.DeleteFunc(all, func(c *domain.Concept) bool {
		return c.ID == v.concept.ID
	}), nil
}

// SiblingsOrSelf returns the concept and its siblings in order
func (v *View) SiblingsOrSelf(ctx context.Context) ([]*domain.Concept, error) {
	if v.IsScheme() {
		return []*domain.Concept{v.concept}, nil
	}
	row, err := v.indexRow(ctx)
	if err != nil {
		return nil, err
	}

	if row != nil {
		var rows []domain.IndexRow
		if row.BroaderID == nil {
			rows, err = v.facade.index.TopsOf(row.SchemeID)
		} else {
			rows, err = v.facade.index.ChildrenOf(*row.BroaderID)
		}
		if err != nil {
			return nil, fmt.Errorf("read index: %w", err)
		}
		return v.facade.loadRows(ctx, rows)
	}

	parent, err := v.facade.acc.First(ctx, v.concept, domain.LinkBroader)
	if err != nil {
		return nil, err
	}
	var all []*domain.Concept
	if parent == nil {
		all, err = v.Tops(ctx)
	} else {
		all, err = v.facade.acc.Links(ctx, parent, domain.LinkNarrower)
	}
	if err != nil {
		return nil, err
	}
	if !slices.ContainsFunc(all, func(c *domain.Concept) bool { return c.ID == v.concept.ID }) {
		return []*domain.Concept{v.concept}, nil
	}
	return all, nil
}

// FlatTree returns every concept of the scheme in pre-order, tops at level 0
func (v *View) FlatTree(ctx context.Context) ([]domain.FlatEntry, error) {
	s, err := v.Scheme(ctx)
	if err != nil || s == nil {
		return nil, err
	}
	indexed, err := v.HasIndex(ctx)
	if err != nil {
		return nil, err
	}
	if indexed {
		rows, err := v.facade.index.AllRowsOf(s.ID)
		if err != nil {
			return nil, fmt.Errorf("read index: %w", err)
		}
		return v.facade.flatRows(ctx, rows, 0)
	}
	return v.facade.walker.FlatScheme(ctx, s)
}

// Tree returns the scheme as one nested tree per top concept
func (v *View) Tree(ctx context.Context) ([]*domain.TreeNode, error) {
	flat, err := v.FlatTree(ctx)
	if err != nil {
		return nil, err
	}
	return domain.NestFlat(flat), nil
}

// FlatBranch returns the concept at level 0 followed by its descendants in
// pre-order. For a scheme the branch holds the whole scheme.
func (v *View) FlatBranch(ctx context.Context) ([]domain.FlatEntry, error) {
	if v.IsScheme() {
		tree, err := v.FlatTree(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]domain.FlatEntry, 0, len(tree)+1)
		out = append(out, domain.FlatEntry{Concept: v.concept})
		for _, e := range tree {
			out = append(out, domain.FlatEntry{Concept: e.Concept, Level: e.Level + 1})
		}
		return out, nil
	}

	row, err := v.indexRow(ctx)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return v.facade.walker.FlatDescendantsOrSelf(ctx, v.concept)
	}

	rows, err := v.facade.index.AllRowsOf(row.SchemeID)
	if err != nil {
		return nil, fmt.Errorf("read index: %w", err)
	}
	below, err := v.facade.flatRows(ctx, subtreeRows(rows, row), 1)
	if err != nil {
		return nil, err
	}
	return append([]domain.FlatEntry{{Concept: v.concept}}, below...), nil
}

// Branch returns the nested tree rooted at the concept
func (v *View) Branch(ctx context.Context) (*domain.TreeNode, error) {
	flat, err := v.FlatBranch(ctx)
	if err != nil {
		return nil, err
	}
	return domain.NestFlat(flat)[0], nil
}
