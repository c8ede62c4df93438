package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"thesaurus/internal/application"
	"thesaurus/internal/domain"
	"thesaurus/internal/logger"
	"thesaurus/internal/metrics"
)

// ReindexSchemeResult contains the result of rebuilding one scheme's index
type ReindexSchemeResult struct {
	Stats   *domain.IndexStats
	Message string
}

// ReindexSchemeCommand rebuilds the index rows of one scheme from the live graph
type ReindexSchemeCommand struct {
	env      *Env
	SchemeID int64
	RunID    string // Shared with a parent job when set
}

// NewReindexSchemeCommand creates a new ReindexSchemeCommand
func NewReindexSchemeCommand(env *Env, schemeID int64) *ReindexSchemeCommand {
	return &ReindexSchemeCommand{
		env:      env,
		SchemeID: schemeID,
	}
}

// Validate checks the command input
func (c *ReindexSchemeCommand) Validate() error {
	return application.ValidateID("schemeID", c.SchemeID)
}

// Execute deletes the scheme's rows and writes them again in pre-order.
//
// A scheme without top concepts is logged and left unindexed; the returned
// error matches application.ErrEmptyScheme and the result is still set. A
// broken hierarchy (cycle, depth overflow, orphan entry) leaves the scheme
// with no rows. Cancellation is honored between batches; rows already
// committed stay until the next run deletes them.
func (c *ReindexSchemeCommand) Execute(ctx context.Context) (*ReindexSchemeResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	if c.RunID == "" {
		c.RunID = newRunID()
	}
	stats := &domain.IndexStats{RunID: c.RunID, SchemeID: c.SchemeID}
	result := &ReindexSchemeResult{Stats: stats}
	log := c.env.Log.With("run_id", c.RunID, "scheme_id", c.SchemeID)

	defer func() {
		stats.Duration = time.Since(start)
		metrics.JobDuration.WithLabelValues(metrics.JobReindex).Observe(float64(stats.Duration.Milliseconds()))
	}()

	deleted, err := c.env.Index.DeleteScheme(c.SchemeID)
	if err != nil {
		metrics.SchemesIndexed.WithLabelValues(metrics.ResultFailed).Inc()
		return nil, &application.SchemeError{SchemeID: c.SchemeID, Err: fmt.Errorf("delete rows: %w", err)}
	}
	stats.RowsDeleted = deleted

	scheme, err := c.env.Accessor().Require(ctx, c.SchemeID)
	if err != nil {
		metrics.SchemesIndexed.WithLabelValues(metrics.ResultFailed).Inc()
		return nil, &application.SchemeError{SchemeID: c.SchemeID, Err: err}
	}

	flat, err := c.env.Walker().FlatScheme(ctx, scheme)
	if err != nil {
		log.Error("traversal failed", "error", err)
		metrics.SchemesIndexed.WithLabelValues(metrics.ResultFailed).Inc()
		return nil, &application.SchemeError{SchemeID: c.SchemeID, Err: err}
	}

	if len(flat) == 0 {
		log.Error("scheme has no top concepts, leaving it unindexed", "rows_deleted", deleted)
		metrics.SchemesIndexed.WithLabelValues(metrics.ResultEmpty).Inc()
		result.Message = fmt.Sprintf("Scheme %d has no top concepts", c.SchemeID)
		return result, &application.SchemeError{SchemeID: c.SchemeID, Err: application.ErrEmptyScheme}
	}

	if err := c.writeRows(ctx, log, flat, stats); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			stats.Canceled = true
			metrics.SchemesIndexed.WithLabelValues(metrics.ResultCanceled).Inc()
			log.Warn("reindex canceled", "rows_created", stats.RowsCreated, "total", len(flat))
			result.Message = fmt.Sprintf("Canceled after %d of %d rows", stats.RowsCreated, len(flat))
			return result, err
		}
		metrics.SchemesIndexed.WithLabelValues(metrics.ResultFailed).Inc()
		return nil, &application.SchemeError{SchemeID: c.SchemeID, Err: err}
	}

	if err := c.env.Index.MarkIndexed(c.SchemeID, time.Now()); err != nil {
		log.Warn("failed to record index time", "error", err)
	}

	metrics.SchemesIndexed.WithLabelValues(metrics.ResultOK).Inc()
	log.Info("scheme indexed", "rows_deleted", deleted, "rows_created", stats.RowsCreated, "batches", stats.Batches)
	result.Message = fmt.Sprintf("Indexed %d concepts of scheme %d", stats.RowsCreated, c.SchemeID)
	return result, nil
}

// writeRows assigns positions and parent/root rows with a level stack and
// commits them in batches
func (c *ReindexSchemeCommand) writeRows(ctx context.Context, log *logger.Logger, flat []domain.FlatEntry, stats *domain.IndexStats) error {
	idx := c.env.Index
	batchSize := c.env.batchSize()

	var (
		stack  []int64  // row id per level
		titles []string // concept title per level
		rootID int64
		batch  []domain.FlatEntry
		paths  []pathUpdate
	)

	tx, err := idx.BeginTx()
	if err != nil {
		return fmt.Errorf("begin batch: %w", err)
	}

	for i, e := range flat {
		row := &domain.IndexRow{
			ConceptID: e.Concept.ID,
			SchemeID:  c.SchemeID,
			Position:  i,
		}

		if e.Level == 0 {
			stack = stack[:0]
			titles = titles[:0]
		} else {
			if rootID == 0 || e.Level > len(stack) {
				_ = tx.Rollback()
				c.discardRows(log, stats)
				log.Error("entry without root, scheme left unindexed", "concept_id", e.Concept.ID, "position", i)
				return &application.MissingRootError{SchemeID: c.SchemeID, ConceptID: e.Concept.ID, Position: i}
			}
			stack = stack[:e.Level]
			titles = titles[:e.Level]
			broader := stack[e.Level-1]
			row.BroaderID = &broader
			row.RootID = rootID
		}

		if err := tx.InsertRow(row); err != nil {
			_ = tx.Rollback()
			c.discardRows(log, stats)
			return fmt.Errorf("insert row for concept %d: %w", e.Concept.ID, err)
		}
		if e.Level == 0 {
			rootID = row.ID
		}
		stack = append(stack, row.ID)
		if u, ok := c.pathUpdate(e.Concept, titles); ok {
			paths = append(paths, u)
		}
		titles = append(titles, e.Concept.Title)

		batch = append(batch, e)
		last := i == len(flat)-1
		if len(batch) < batchSize && !last {
			continue
		}

		// Batch boundary: an in-flight batch always commits
		if err := tx.Commit(); err != nil {
			c.discardRows(log, stats)
			return fmt.Errorf("commit batch %d: %w", stats.Batches+1, err)
		}
		stats.Batches++
		stats.RowsCreated += len(batch)
		metrics.RowsIndexed.Add(float64(len(batch)))
		metrics.BatchesCommitted.WithLabelValues(metrics.JobReindex).Inc()
		log.Info("batch committed", "batch", stats.Batches, "rows_created", stats.RowsCreated, "total", len(flat))
		batch = batch[:0]

		c.writePaths(ctx, log, paths)
		paths = paths[:0]

		if last {
			break
		}

		c.env.clearCache()
		if _, err := c.env.Accessor().Require(ctx, c.SchemeID); err != nil {
			c.discardRows(log, stats)
			return fmt.Errorf("reload scheme: %w", err)
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		tx, err = idx.BeginTx()
		if err != nil {
			c.discardRows(log, stats)
			return fmt.Errorf("begin batch: %w", err)
		}
	}

	return nil
}

// discardRows deletes the rows of batches already committed so a failed
// rebuild leaves the scheme unindexed rather than half indexed
func (c *ReindexSchemeCommand) discardRows(log *logger.Logger, stats *domain.IndexStats) {
	if _, err := c.env.Index.DeleteScheme(c.SchemeID); err != nil {
		log.Error("failed to delete partial rows", "error", err)
	}
	stats.RowsCreated = 0
}

type pathUpdate struct {
	conceptID int64
	literals  map[string]string
}

// pathUpdate computes the path and ascendance strings for a concept when
// those properties are configured. ancestors holds the titles from the root
// down to the direct parent. ok is false when nothing would change.
func (c *ReindexSchemeCommand) pathUpdate(concept *domain.Concept, ancestors []string) (pathUpdate, bool) {
	cfg := c.env.Config
	if cfg.PathProperty == "" && cfg.AscendanceProperty == "" {
		return pathUpdate{}, false
	}

	literals := make(map[string]string, 2)
	if cfg.PathProperty != "" {
		literals[cfg.PathProperty] = domain.JoinPath(append(append([]string{}, ancestors...), concept.Title), cfg.Separator)
	}
	if cfg.AscendanceProperty != "" {
		literals[cfg.AscendanceProperty] = domain.JoinPath(ancestors, cfg.Separator)
	}

	for term, want := range literals {
		if got, _ := concept.Literal(term); got != want {
			return pathUpdate{conceptID: concept.ID, literals: literals}, true
		}
	}
	return pathUpdate{}, false
}

// writePaths runs after the batch commits so store writes never wait on the
// index transaction
func (c *ReindexSchemeCommand) writePaths(ctx context.Context, log *logger.Logger, updates []pathUpdate) {
	for _, u := range updates {
		if err := c.env.Store.Update(ctx, u.conceptID, domain.Patch{Literals: u.literals}); err != nil {
			log.Warn("failed to write path properties", "concept_id", u.conceptID, "error", err)
		}
	}
}
