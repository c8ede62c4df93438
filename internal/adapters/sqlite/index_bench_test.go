package sqlite

import (
	"testing"

	"thesaurus/internal/domain"
)

// BenchmarkInsertBatch benchmarks writing one 100-row batch, the unit the
// indexer commits at a time
func BenchmarkInsertBatch(b *testing.B) {
	db := openTestDB(b)
	idx := db.Index()

	scheme := int64(0)
	b.ResetTimer()
	for b.Loop() {
		scheme++
		tx, err := idx.BeginTx()
		if err != nil {
			b.Fatalf("begin failed: %v", err)
		}
		root := &domain.IndexRow{ConceptID: 1, SchemeID: scheme}
		if err := tx.InsertRow(root); err != nil {
			b.Fatalf("insert failed: %v", err)
		}
		for i := 1; i < 100; i++ {
			row := &domain.IndexRow{
				ConceptID: int64(i + 1),
				SchemeID:  scheme,
				RootID:    root.ID,
				BroaderID: &root.ID,
				Position:  i,
			}
			if err := tx.InsertRow(row); err != nil {
				b.Fatalf("insert failed: %v", err)
			}
		}
		if err := tx.Commit(); err != nil {
			b.Fatalf("commit failed: %v", err)
		}
	}
}

// BenchmarkAllRowsOf benchmarks the reconciliation snapshot read
func BenchmarkAllRowsOf(b *testing.B) {
	db := openTestDB(b)
	idx := db.Index()

	tx, err := idx.BeginTx()
	if err != nil {
		b.Fatalf("begin failed: %v", err)
	}
	root := &domain.IndexRow{ConceptID: 1, SchemeID: 1}
	if err := tx.InsertRow(root); err != nil {
		b.Fatalf("insert failed: %v", err)
	}
	for i := 1; i < 5000; i++ {
		if err := tx.InsertRow(&domain.IndexRow{ConceptID: int64(i + 1), SchemeID: 1, RootID: root.ID, BroaderID: &root.ID, Position: i}); err != nil {
			b.Fatalf("insert failed: %v", err)
		}
	}
	if err := tx.Commit(); err != nil {
		b.Fatalf("commit failed: %v", err)
	}

	b.ResetTimer()
	for b.Loop() {
		if _, err := idx.AllRowsOf(1); err != nil {
			b.Fatalf("query failed: %v", err)
		}
	}
}
