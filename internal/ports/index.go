package ports

import (
	"time"

	"thesaurus/internal/domain"
)

// ConceptIndex provides fast access to the denormalized hierarchy of each
// scheme. Every query is a point read or an ordered range scan; recursion
// happens in the caller. Rows are derived state written only by the indexer.
type ConceptIndex interface {
	// Row queries, all ordered by position
	ChildrenOf(rowID int64) ([]domain.IndexRow, error)
	TopsOf(schemeID int64) ([]domain.IndexRow, error)
	RowFor(conceptID, schemeID int64) (*domain.IndexRow, error)
	RowByID(rowID int64) (*domain.IndexRow, error)
	AllRowsOf(schemeID int64) ([]domain.IndexRow, error)

	// Scheme queries
	HasScheme(schemeID int64) (bool, error)
	SchemesOf(conceptID int64) ([]int64, error)
	LastIndexed(schemeID int64) (time.Time, bool, error)

	// Maintenance
	NeedsFullRebuild() bool
	DeleteScheme(schemeID int64) (int64, error)
	MarkIndexed(schemeID int64, at time.Time) error

	// Batch writes
	BeginTx() (IndexTx, error)
}

// IndexTx represents a transaction for one batch of index rows
type IndexTx interface {
	// InsertRow stores row and sets row.ID. A row without a broader row and
	// without a RootID becomes its own root.
	InsertRow(row *domain.IndexRow) error

	// Transaction control
	Commit() error
	Rollback() error
}
