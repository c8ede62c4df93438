package commands

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"thesaurus/internal/application"
	"thesaurus/internal/domain"
	"thesaurus/internal/metrics"
)

// ReindexAllResult contains the aggregate result of reindexing every scheme
type ReindexAllResult struct {
	Stats   *domain.ReindexAllStats
	Schemes []*domain.IndexStats
	Errors  map[int64]error
	Message string
}

// ReindexAllCommand rebuilds the index of every scheme in the store
type ReindexAllCommand struct {
	env *Env
}

// NewReindexAllCommand creates a new ReindexAllCommand
func NewReindexAllCommand(env *Env) *ReindexAllCommand {
	return &ReindexAllCommand{env: env}
}

// Execute reindexes each scheme in id order. A failing or empty scheme is
// logged and counted, never fatal for the run. Cancellation is checked
// before each scheme and inside each scheme between batches.
func (c *ReindexAllCommand) Execute(ctx context.Context) (*ReindexAllResult, error) {
	start := time.Now()
	runID := newRunID()
	log := c.env.Log.With("run_id", runID)

	stats := &domain.ReindexAllStats{RunID: runID}
	result := &ReindexAllResult{Stats: stats, Errors: make(map[int64]error)}
	defer func() {
		stats.Duration = time.Since(start)
		metrics.JobDuration.WithLabelValues(metrics.JobReindexAll).Observe(float64(stats.Duration.Milliseconds()))
	}()

	schemeIDs, err := c.schemeIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list schemes: %w", err)
	}
	stats.Schemes = len(schemeIDs)
	log.Info("reindexing schemes", "schemes", len(schemeIDs))

	for i, id := range schemeIDs {
		if err := ctx.Err(); err != nil {
			stats.Canceled = true
			log.Warn("reindex canceled", "processed", i, "schemes", len(schemeIDs))
			break
		}

		cmd := NewReindexSchemeCommand(c.env, id)
		cmd.RunID = runID
		res, err := cmd.Execute(ctx)
		if res != nil {
			result.Schemes = append(result.Schemes, res.Stats)
		}

		switch {
		case err == nil:
			stats.Succeeded++
		case errors.Is(err, application.ErrEmptyScheme):
			stats.Empty++
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			stats.Canceled = true
		default:
			stats.Failed++
			result.Errors[id] = err
			log.Error("scheme reindex failed", "scheme_id", id, "error", err)
		}
		if stats.Canceled {
			log.Warn("reindex canceled", "processed", i+1, "schemes", len(schemeIDs))
			break
		}
	}

	result.Message = fmt.Sprintf("Reindexed %d of %d schemes (%d empty, %d failed)",
		stats.Succeeded, stats.Schemes, stats.Empty, stats.Failed)
	if stats.Canceled {
		result.Message += ", canceled"
		return result, ctx.Err()
	}
	log.Info("reindex finished", "succeeded", stats.Succeeded, "empty", stats.Empty, "failed", stats.Failed)
	return result, nil
}

// schemeIDs enumerates schemes by class tag and by has-top-concept links
func (c *ReindexAllCommand) schemeIDs(ctx context.Context) ([]int64, error) {
	tagged, err := c.env.Store.Search(ctx, domain.Filter{Class: c.env.Config.Classes.Scheme})
	if err != nil {
		return nil, err
	}
	linked, err := c.env.Store.Search(ctx, domain.Filter{HasTerm: c.env.Config.Terms.HasTopConcept})
	if err != nil {
		return nil, err
	}

	ids := append(domain.IDs(tagged), domain.IDs(linked)...)
	slices.Sort(ids)
	return slices.Compact(ids), nil
}
