// Package traversal walks concept graphs. Every output shape (ancestor
// chains, descendant sets, flat and nested trees) is collected from a
// single pre-order walk that carries the depth guard and cycle checks.
package traversal

import (
	"context"

	"github.com/RoaringBitmap/roaring/roaring64"

	"thesaurus/internal/application"
	"thesaurus/internal/config"
	"thesaurus/internal/domain"
)

// Walker traverses narrower/broader links through an Accessor
type Walker struct {
	acc      *Accessor
	maxDepth int
}

// NewWalker creates a walker. maxDepth <= 0 uses the default guard.
func NewWalker(acc *Accessor, maxDepth int) *Walker {
	if maxDepth <= 0 {
		maxDepth = config.DefaultMaxDepth
	}
	return &Walker{acc: acc, maxDepth: maxDepth}
}

// Accessor returns the accessor the walker reads through
func (w *Walker) Accessor() *Accessor {
	return w.acc
}

// MaxDepth returns the depth guard
func (w *Walker) MaxDepth() int {
	return w.maxDepth
}

type visitFunc func(domain.FlatEntry) error

// walkMode selects how a concept met again on its own branch is treated
type walkMode int

const (
	// rejectCycles fails with ErrDepthExceeded
	rejectCycles walkMode = iota
	// skipRevisits ignores any concept already seen, cycle or not
	skipRevisits
)

// walk visits roots and their narrower closures in pre-order. A concept
// already emitted is skipped. In rejectCycles mode a concept met again on
// its own branch is a cycle. Cycles and exceeding maxDepth fail with
// ErrDepthExceeded.
func (w *Walker) walk(ctx context.Context, roots []*domain.Concept, mode walkMode, visit visitFunc) error {
	visited := roaring64.New()
	branch := roaring64.New()
	for _, root := range roots {
		if err := w.descend(ctx, root, 0, mode, branch, visited, visit); err != nil {
			return err
		}
	}
	return nil
}

func (w *Walker) descend(ctx context.Context, c *domain.Concept, level int, mode walkMode, branch, visited *roaring64.Bitmap, visit visitFunc) error {
	id := uint64(c.ID)
	if branch.Contains(id) {
		if mode == skipRevisits {
			return nil
		}
		return &application.DepthExceededError{ConceptID: c.ID, Depth: level, Cycle: true}
	}
	if level > w.maxDepth {
		return &application.DepthExceededError{ConceptID: c.ID, Depth: w.maxDepth}
	}
	if !visited.CheckedAdd(id) {
		return nil
	}
	if err := visit(domain.FlatEntry{Concept: c, Level: level}); err != nil {
		return err
	}

	children, err := w.acc.Links(ctx, c, domain.LinkNarrower)
	if err != nil {
		return err
	}

	branch.Add(id)
	defer branch.Remove(id)
	for _, child := range children {
		if err := w.descend(ctx, child, level+1, mode, branch, visited, visit); err != nil {
			return err
		}
	}
	return nil
}

// AncestorChain follows broader links up from c, closest first. Empty for roots.
func (w *Walker) AncestorChain(ctx context.Context, c *domain.Concept) ([]*domain.Concept, error) {
	var chain []*domain.Concept
	current := c
	for {
		parent, err := w.acc.First(ctx, current, domain.LinkBroader)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return chain, nil
		}
		if len(chain) >= w.maxDepth {
			return nil, &application.DepthExceededError{ConceptID: c.ID, Depth: w.maxDepth}
		}
		chain = append(chain, parent)
		current = parent
	}
}

// AncestorChainOrSelf is AncestorChain with c first
func (w *Walker) AncestorChainOrSelf(ctx context.Context, c *domain.Concept) ([]*domain.Concept, error) {
	chain, err := w.AncestorChain(ctx, c)
	if err != nil {
		return nil, err
	}
	return append([]*domain.Concept{c}, chain...), nil
}

// FlatDescendantsOrSelf returns c at level 0 followed by its descendants in
// pre-order, each subtree contiguous after its root
func (w *Walker) FlatDescendantsOrSelf(ctx context.Context, c *domain.Concept) ([]domain.FlatEntry, error) {
	var out []domain.FlatEntry
	err := w.walk(ctx, []*domain.Concept{c}, rejectCycles, func(e domain.FlatEntry) error {
		out = append(out, e)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// FlatDescendants is FlatDescendantsOrSelf without the origin
func (w *Walker) FlatDescendants(ctx context.Context, c *domain.Concept) ([]domain.FlatEntry, error) {
	out, err := w.FlatDescendantsOrSelf(ctx, c)
	if err != nil {
		return nil, err
	}
	return out[1:], nil
}

// DescendantSetOrSelf returns c and every concept below it, keyed by id.
// A concept linked back into its own hierarchy is collected once.
func (w *Walker) DescendantSetOrSelf(ctx context.Context, c *domain.Concept) (map[int64]*domain.Concept, error) {
	out := make(map[int64]*domain.Concept)
	err := w.walk(ctx, []*domain.Concept{c}, skipRevisits, func(e domain.FlatEntry) error {
		out[e.Concept.ID] = e.Concept
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DescendantSet is DescendantSetOrSelf without the origin
func (w *Walker) DescendantSet(ctx context.Context, c *domain.Concept) (map[int64]*domain.Concept, error) {
	out, err := w.DescendantSetOrSelf(ctx, c)
	if err != nil {
		return nil, err
	}
	delete(out, c.ID)
	return out, nil
}

// NestedTreeOrSelf returns the tree rooted at c
func (w *Walker) NestedTreeOrSelf(ctx context.Context, c *domain.Concept) (*domain.TreeNode, error) {
	flat, err := w.FlatDescendantsOrSelf(ctx, c)
	if err != nil {
		return nil, err
	}
	return domain.NestFlat(flat)[0], nil
}

// NestedTree returns the subtrees of c's children
func (w *Walker) NestedTree(ctx context.Context, c *domain.Concept) ([]*domain.TreeNode, error) {
	root, err := w.NestedTreeOrSelf(ctx, c)
	if err != nil {
		return nil, err
	}
	for _, child := range root.Children {
		child.Parent = nil
	}
	return root.Children, nil
}

// Tops returns the scheme's top concepts in declared order
func (w *Walker) Tops(ctx context.Context, scheme *domain.Concept) ([]*domain.Concept, error) {
	return w.acc.Links(ctx, scheme, domain.LinkHasTopConcept)
}

// FlatScheme returns every concept of the scheme in pre-order: each top
// concept at level 0 followed by its subtree, tops in declared order. A
// concept reachable from two tops appears once, under the first.
func (w *Walker) FlatScheme(ctx context.Context, scheme *domain.Concept) ([]domain.FlatEntry, error) {
	tops, err := w.Tops(ctx, scheme)
	if err != nil {
		return nil, err
	}
	return w.FlatFrom(ctx, tops)
}

// FlatFrom walks several roots with one shared visited set
func (w *Walker) FlatFrom(ctx context.Context, roots []*domain.Concept) ([]domain.FlatEntry, error) {
	var out []domain.FlatEntry
	err := w.walk(ctx, roots, rejectCycles, func(e domain.FlatEntry) error {
		out = append(out, e)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// NestedScheme returns one tree per top concept
func (w *Walker) NestedScheme(ctx context.Context, scheme *domain.Concept) ([]*domain.TreeNode, error) {
	flat, err := w.FlatScheme(ctx, scheme)
	if err != nil {
		return nil, err
	}
	return domain.NestFlat(flat), nil
}
