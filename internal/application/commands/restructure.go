package commands

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/RoaringBitmap/roaring/roaring64"

	"thesaurus/internal/application"
	"thesaurus/internal/domain"
	"thesaurus/internal/logger"
	"thesaurus/internal/metrics"
)

// ApplyStructureResult contains the result of applying a declared structure
type ApplyStructureResult struct {
	RunID       string
	Removed     int
	Added       int
	Moved       int
	Reordered   int // nodes whose narrower list was rewritten
	Skipped     int
	TopsChanged bool
	Canceled    bool
	Reindex     *domain.IndexStats
	Message     string
}

// ApplyStructureCommand reconciles a scheme's live links with a declared
// flat structure, then rebuilds the scheme's index
type ApplyStructureCommand struct {
	env       *Env
	SchemeID  int64
	Structure domain.Structure
}

// NewApplyStructureCommand creates a new ApplyStructureCommand
func NewApplyStructureCommand(env *Env, schemeID int64, structure domain.Structure) *ApplyStructureCommand {
	return &ApplyStructureCommand{
		env:       env,
		SchemeID:  schemeID,
		Structure: structure,
	}
}

// Validate checks the whole input before anything is mutated
func (c *ApplyStructureCommand) Validate() error {
	if err := application.ValidateID("schemeID", c.SchemeID); err != nil {
		return err
	}
	if err := application.ValidateStructure(c.Structure); err != nil {
		return err
	}

	declared := make(map[int64]struct{}, len(c.Structure))
	for _, e := range c.Structure {
		declared[e.ID] = struct{}{}
	}
	for i, e := range c.Structure {
		if e.Parent == nil {
			continue
		}
		if _, ok := declared[*e.Parent]; !ok {
			return &application.ValidationError{
				Field:   fmt.Sprintf("structure[%d]", i),
				Message: fmt.Sprintf("parent %d of concept %d is not declared", *e.Parent, e.ID),
			}
		}
	}
	return c.validateAcyclic()
}

// validateAcyclic follows each entry's declared parent chain for at most
// len(structure) steps. An entry leading into a cycle without being part of
// it is left for the cycle's own members to report.
func (c *ApplyStructureCommand) validateAcyclic() error {
	parents := make(map[int64]*int64, len(c.Structure))
	for _, e := range c.Structure {
		parents[e.ID] = e.Parent
	}
	for i, e := range c.Structure {
		current := e.Parent
		for steps := 0; current != nil && steps < len(c.Structure); steps++ {
			if *current == e.ID {
				return &application.ValidationError{
					Field:   fmt.Sprintf("structure[%d]", i),
					Message: fmt.Sprintf("concept %d is declared as its own ancestor", e.ID),
				}
			}
			current = parents[*current]
		}
	}
	return nil
}

// snapshot is the indexed structure of a scheme before any mutation
type snapshot struct {
	parent   map[int64]int64   // concept -> parent concept, 0 for tops
	children map[int64][]int64 // concept -> child concepts by position
	tops     []int64
}

func (s *snapshot) has(conceptID int64) bool {
	_, ok := s.parent[conceptID]
	return ok
}

// Execute applies the structure. Validation failures abort before any
// mutation; afterwards a node that cannot be updated is logged and skipped.
// The scheme is always reindexed at the end unless the job was canceled.
func (c *ApplyStructureCommand) Execute(ctx context.Context) (*ApplyStructureResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	runID := newRunID()
	log := c.env.Log.With("run_id", runID, "scheme_id", c.SchemeID)
	result := &ApplyStructureResult{RunID: runID}
	defer func() {
		metrics.JobDuration.WithLabelValues(metrics.JobRestructure).Observe(float64(time.Since(start).Milliseconds()))
	}()

	if _, err := c.env.Accessor().Require(ctx, c.SchemeID); err != nil {
		return nil, &application.SchemeError{SchemeID: c.SchemeID, Err: err}
	}

	removed, children := c.expandRemoval()

	snap, err := c.snapshot(ctx, log, runID)
	if err != nil {
		return nil, err
	}

	if err := c.removePhase(ctx, log, removed, snap, result); err != nil {
		return nil, err
	}
	if err := c.topPhase(ctx, log, removed, snap, result); err != nil {
		return nil, err
	}
	if err := c.remainingPhase(ctx, log, removed, children, snap, result); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			result.Canceled = true
			result.Message = "Restructure canceled before reindexing"
			log.Warn("restructure canceled", "moved", result.Moved, "reordered", result.Reordered)
			return result, err
		}
		return nil, err
	}

	reindex := NewReindexSchemeCommand(c.env, c.SchemeID)
	reindex.RunID = runID
	res, err := reindex.Execute(ctx)
	if res != nil {
		result.Reindex = res.Stats
	}
	if err != nil && !errors.Is(err, application.ErrEmptyScheme) {
		return result, fmt.Errorf("reindex after restructure: %w", err)
	}

	result.Message = fmt.Sprintf("Restructured scheme %d: %d moved, %d reordered, %d added, %d removed, %d skipped",
		c.SchemeID, result.Moved, result.Reordered, result.Added, result.Removed, result.Skipped)
	log.Info("restructure finished",
		"moved", result.Moved, "reordered", result.Reordered, "added", result.Added,
		"removed", result.Removed, "skipped", result.Skipped, "tops_changed", result.TopsChanged)
	return result, nil
}

// expandRemoval marks every declared descendant of a removed node as removed
// and returns the declared children of each surviving node in input order
func (c *ApplyStructureCommand) expandRemoval() (*roaring64.Bitmap, map[int64][]int64) {
	declaredChildren := make(map[int64][]int64)
	removed := roaring64.New()
	var queue []int64
	for _, e := range c.Structure {
		if e.Parent != nil {
			declaredChildren[*e.Parent] = append(declaredChildren[*e.Parent], e.ID)
		}
		if e.Remove {
			removed.Add(uint64(e.ID))
			queue = append(queue, e.ID)
		}
	}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, child := range declaredChildren[id] {
			if removed.CheckedAdd(uint64(child)) {
				queue = append(queue, child)
			}
		}
	}

	survivingChildren := make(map[int64][]int64, len(declaredChildren))
	for parent, kids := range declaredChildren {
		if removed.Contains(uint64(parent)) {
			continue
		}
		for _, kid := range kids {
			if !removed.Contains(uint64(kid)) {
				survivingChildren[parent] = append(survivingChildren[parent], kid)
			}
		}
	}
	return removed, survivingChildren
}

// snapshot reads the current index. A scheme that was never indexed is
// indexed first so the diff runs against the live graph.
func (c *ApplyStructureCommand) snapshot(ctx context.Context, log *logger.Logger, runID string) (*snapshot, error) {
	has, err := c.env.Index.HasScheme(c.SchemeID)
	if err != nil {
		return nil, fmt.Errorf("failed to read index: %w", err)
	}
	if !has {
		log.Info("scheme not indexed, indexing before diff")
		cmd := NewReindexSchemeCommand(c.env, c.SchemeID)
		cmd.RunID = runID
		if _, err := cmd.Execute(ctx); err != nil && !errors.Is(err, application.ErrEmptyScheme) {
			return nil, fmt.Errorf("index before restructure: %w", err)
		}
	}

	rows, err := c.env.Index.AllRowsOf(c.SchemeID)
	if err != nil {
		return nil, fmt.Errorf("failed to read index: %w", err)
	}

	byID := domain.RowsByID(rows)
	snap := &snapshot{
		parent:   make(map[int64]int64, len(rows)),
		children: make(map[int64][]int64),
	}
	for _, r := range rows {
		if r.BroaderID == nil {
			snap.parent[r.ConceptID] = 0
			snap.tops = append(snap.tops, r.ConceptID)
			continue
		}
		parent, ok := byID[*r.BroaderID]
		if !ok {
			continue
		}
		snap.parent[r.ConceptID] = parent.ConceptID
		snap.children[parent.ConceptID] = append(snap.children[parent.ConceptID], r.ConceptID)
	}
	return snap, nil
}

// removePhase detaches removed concepts from the scheme. They keep their
// own attributes and links unrelated to this scheme.
func (c *ApplyStructureCommand) removePhase(ctx context.Context, log *logger.Logger, removed *roaring64.Bitmap, snap *snapshot, result *ApplyStructureResult) error {
	if removed.IsEmpty() {
		return nil
	}

	ids := make([]int64, 0, removed.GetCardinality())
	it := removed.Iterator()
	for it.HasNext() {
		ids = append(ids, int64(it.Next()))
	}

	store := c.env.Store
	terms := c.env.Config.Terms
	scheme := []int64{c.SchemeID}

	if _, err := store.DeleteLinks(ctx, terms.InScheme, ids, scheme); err != nil {
		return fmt.Errorf("remove in-scheme links: %w", err)
	}
	if _, err := store.DeleteLinks(ctx, terms.TopConceptOf, ids, scheme); err != nil {
		return fmt.Errorf("remove top-concept-of links: %w", err)
	}
	if _, err := store.DeleteLinks(ctx, terms.HasTopConcept, scheme, ids); err != nil {
		return fmt.Errorf("remove has-top-concept links: %w", err)
	}

	// Cut the link from each removed branch to a parent that stays
	for _, id := range ids {
		parent := snap.parent[id]
		if parent == 0 || removed.Contains(uint64(parent)) {
			continue
		}
		if _, err := store.DeleteLinks(ctx, terms.Broader, []int64{id}, []int64{parent}); err != nil {
			log.Warn("failed to detach removed concept", "concept_id", id, "error", err)
		}
	}

	result.Removed = len(ids)
	metrics.ReconcileActions.WithLabelValues("removed").Add(float64(len(ids)))
	log.Info("removed concepts from scheme", "count", len(ids))
	return nil
}

// topPhase replaces the scheme's top concepts when the declared ordered set
// differs from the indexed one
func (c *ApplyStructureCommand) topPhase(ctx context.Context, log *logger.Logger, removed *roaring64.Bitmap, snap *snapshot, result *ApplyStructureResult) error {
	var tops []int64
	for _, e := range c.Structure {
		if e.Parent == nil && !removed.Contains(uint64(e.ID)) {
			tops = append(tops, e.ID)
		}
	}
	if slices.Equal(tops, snap.tops) {
		return nil
	}

	store := c.env.Store
	terms := c.env.Config.Terms
	scheme := []int64{c.SchemeID}

	if _, err := store.DeleteLinks(ctx, terms.HasTopConcept, scheme, nil); err != nil {
		return fmt.Errorf("remove top concepts: %w", err)
	}
	if len(snap.tops) > 0 {
		if _, err := store.DeleteLinks(ctx, terms.TopConceptOf, snap.tops, scheme); err != nil {
			return fmt.Errorf("remove top concepts: %w", err)
		}
	}

	links := make([]domain.Link, 0, len(tops))
	for _, id := range tops {
		links = append(links, domain.Link{Source: c.SchemeID, Term: terms.HasTopConcept, Target: id})
	}
	if err := store.InsertLinks(ctx, links); err != nil {
		return fmt.Errorf("insert top concepts: %w", err)
	}
	for _, id := range tops {
		err := store.InsertLinks(ctx, []domain.Link{{Source: id, Term: terms.TopConceptOf, Target: c.SchemeID}})
		if err != nil {
			result.Skipped++
			log.Warn("failed to mark top concept", "concept_id", id, "error", err)
		}
	}

	result.TopsChanged = true
	metrics.ReconcileActions.WithLabelValues("tops_replaced").Inc()
	log.Info("top concepts replaced", "previous", len(snap.tops), "current", len(tops))
	return nil
}

// remainingPhase rewrites parent and children links of surviving nodes
// whose declared placement differs from the snapshot
func (c *ApplyStructureCommand) remainingPhase(ctx context.Context, log *logger.Logger, removed *roaring64.Bitmap, children map[int64][]int64, snap *snapshot, result *ApplyStructureResult) error {
	batchSize := c.env.batchSize()
	processed := 0

	for _, e := range c.Structure {
		if removed.Contains(uint64(e.ID)) {
			continue
		}

		if err := c.reconcileNode(ctx, e, children[e.ID], snap, result); err != nil {
			result.Skipped++
			metrics.ReconcileActions.WithLabelValues("skipped").Inc()
			log.Warn("skipping concept", "concept_id", e.ID, "error", err)
		}

		processed++
		if processed%batchSize != 0 {
			continue
		}

		metrics.BatchesCommitted.WithLabelValues(metrics.JobRestructure).Inc()
		log.Info("restructure batch done", "processed", processed, "moved", result.Moved, "reordered", result.Reordered)
		c.env.clearCache()
		if _, err := c.env.Accessor().Require(ctx, c.SchemeID); err != nil {
			return &application.SchemeError{SchemeID: c.SchemeID, Err: err}
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	return nil
}

// reconcileNode applies the parent and children diff of one node
func (c *ApplyStructureCommand) reconcileNode(ctx context.Context, e domain.StructureEntry, declaredChildren []int64, snap *snapshot, result *ApplyStructureResult) error {
	store := c.env.Store
	terms := c.env.Config.Terms

	known := snap.has(e.ID)
	newParent := e.ParentOf()
	oldParent := snap.parent[e.ID]
	parentChanged := !known || newParent != oldParent
	childrenChanged := !slices.Equal(declaredChildren, snap.children[e.ID])
	if !parentChanged && !childrenChanged {
		return nil
	}

	concept, err := c.env.Accessor().Load(ctx, e.ID)
	if err != nil {
		return err
	}
	if concept == nil {
		return fmt.Errorf("concept %d: %w", e.ID, application.ErrNotFound)
	}

	if !known {
		err := store.InsertLinks(ctx, []domain.Link{{Source: e.ID, Term: terms.InScheme, Target: c.SchemeID}})
		if err != nil {
			return fmt.Errorf("add to scheme: %w", err)
		}
		result.Added++
		metrics.ReconcileActions.WithLabelValues("added").Inc()
	}

	if parentChanged && (known || newParent != 0) {
		if oldParent != 0 {
			if _, err := store.DeleteLinks(ctx, terms.Broader, []int64{e.ID}, []int64{oldParent}); err != nil {
				return fmt.Errorf("remove broader link: %w", err)
			}
		}
		if newParent != 0 {
			err := store.InsertLinks(ctx, []domain.Link{{Source: e.ID, Term: terms.Broader, Target: newParent}})
			if err != nil {
				return fmt.Errorf("add broader link: %w", err)
			}
		}
		result.Moved++
		metrics.ReconcileActions.WithLabelValues("moved").Inc()
	}

	if childrenChanged {
		previous := snap.children[e.ID]
		stale := append(slices.Clone(previous), declaredChildren...)
		if len(stale) > 0 {
			if _, err := store.DeleteLinks(ctx, terms.Narrower, []int64{e.ID}, stale); err != nil {
				return fmt.Errorf("remove narrower links: %w", err)
			}
		}
		links := make([]domain.Link, 0, len(declaredChildren))
		for _, child := range declaredChildren {
			links = append(links, domain.Link{Source: e.ID, Term: terms.Narrower, Target: child})
		}
		if err := store.InsertLinks(ctx, links); err != nil {
			return fmt.Errorf("add narrower links: %w", err)
		}
		result.Reordered++
		metrics.ReconcileActions.WithLabelValues("reordered").Inc()
	}
	return nil
}
