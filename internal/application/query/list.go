package query

import (
	"context"
	"slices"

	"thesaurus/internal/domain"
)

// ListTree renders every concept of the scheme as a selectable entry
func (v *View) ListTree(ctx context.Context, opts domain.ListOptions) ([]domain.ListEntry, error) {
	flat, err := v.FlatTree(ctx)
	if err != nil {
		return nil, err
	}
	return v.listEntries(flat, nil, opts), nil
}

// ListBranch renders the concept and its descendants. With Ascendance set
// the labels carry the concept's own ancestors too.
func (v *View) ListBranch(ctx context.Context, opts domain.ListOptions) ([]domain.ListEntry, error) {
	if v.IsScheme() {
		return v.ListTree(ctx, opts)
	}

	flat, err := v.FlatBranch(ctx)
	if err != nil {
		return nil, err
	}

	var prefix []string
	if opts.Ascendance {
		chain, err := v.Ascendants(ctx)
		if err != nil {
			return nil, err
		}
		for _, c := range slices.Backward(chain) {
			prefix = append(prefix, c.Title)
		}
	}
	return v.listEntries(flat, prefix, opts), nil
}

func (v *View) listEntries(flat []domain.FlatEntry, prefix []string, opts domain.ListOptions) []domain.ListEntry {
	if opts.Separator == "" {
		opts.Separator = v.facade.cfg.Separator
	}

	titles := slices.Clone(prefix)
	out := make([]domain.ListEntry, 0, len(flat))
	for _, e := range flat {
		depth := min(len(prefix)+e.Level, len(titles))
		titles = titles[:depth]

		out = append(out, domain.ListEntry{
			ID:    e.Concept.ID,
			Label: domain.FormatListLabel(e.Concept.Title, titles, e.Level, e.Concept.ID, opts),
		})
		titles = append(titles, e.Concept.Title)
	}
	return out
}
