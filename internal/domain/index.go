package domain

import "time"

// IndexRow is one concept's place in a scheme's denormalized index
type IndexRow struct {
	ID        int64  // Row identity
	ConceptID int64  // Indexed concept
	SchemeID  int64  // Owning scheme
	RootID    int64  // Top-level ancestor row; a root row references itself
	BroaderID *int64 // Immediate parent row, nil for top concepts
	Position  int    // Pre-order sequence within the scheme
}

// IsRoot reports whether the row is a top concept row
func (r *IndexRow) IsRoot() bool {
	return r.BroaderID == nil
}

// IndexStats holds statistics from a scheme (re)index
type IndexStats struct {
	RunID       string
	SchemeID    int64
	RowsDeleted int64
	RowsCreated int
	Batches     int
	Canceled    bool
	Duration    time.Duration
}

// ReindexAllStats aggregates a run over every scheme
type ReindexAllStats struct {
	RunID     string
	Schemes   int
	Succeeded int
	Failed    int
	Empty     int
	Canceled  bool
	Duration  time.Duration
}

// RowsByID indexes rows by their identity
func RowsByID(rows []IndexRow) map[int64]*IndexRow {
	out := make(map[int64]*IndexRow, len(rows))
	for i := range rows {
		out[rows[i].ID] = &rows[i]
	}
	return out
}
