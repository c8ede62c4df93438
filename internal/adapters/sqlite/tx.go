package sqlite

import (
	"database/sql"

	"thesaurus/internal/domain"
	"thesaurus/internal/ports"
)

// indexTx implements ports.IndexTx
type indexTx struct {
	tx     *sql.Tx
	insert *sql.Stmt
}

// Ensure indexTx implements IndexTx
var _ ports.IndexTx = (*indexTx)(nil)

// InsertRow adds a row and sets its identity. A root row without a RootID
// references itself once its id is known.
func (t *indexTx) InsertRow(row *domain.IndexRow) error {
	var broader any
	if row.BroaderID != nil {
		broader = *row.BroaderID
	}

	res, err := t.insert.Exec(row.ConceptID, row.SchemeID, row.RootID, broader, row.Position)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	row.ID = id

	if row.RootID == 0 && row.BroaderID == nil {
		if _, err := t.tx.Exec(`UPDATE concept_index SET root_id = id WHERE id = ?`, id); err != nil {
			return err
		}
		row.RootID = id
	}
	return nil
}

// Commit commits the transaction
func (t *indexTx) Commit() error {
	_ = t.insert.Close()
	return t.tx.Commit()
}

// Rollback aborts the transaction
func (t *indexTx) Rollback() error {
	_ = t.insert.Close()
	return t.tx.Rollback()
}
