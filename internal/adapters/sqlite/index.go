package sqlite

import (
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"thesaurus/internal/domain"
	"thesaurus/internal/ports"
)

// Index implements ports.ConceptIndex using SQLite
type Index struct {
	db *sql.DB
}

// Ensure Index implements ConceptIndex
var _ ports.ConceptIndex = (*Index)(nil)

const rowColumns = `id, concept_id, scheme_id, root_id, broader_id, position`

// NeedsFullRebuild returns true if rows were written by another schema version
func (idx *Index) NeedsFullRebuild() bool {
	var version string
	idx.db.QueryRow("SELECT value FROM meta WHERE key = 'schema_version'").Scan(&version)
	return version != "" && version != schemaVersion
}

// ChildrenOf returns the rows whose broader row is rowID
func (idx *Index) ChildrenOf(rowID int64) ([]domain.IndexRow, error) {
	return idx.queryRows(`SELECT `+rowColumns+` FROM concept_index
		WHERE broader_id = ? ORDER BY position`, rowID)
}

// TopsOf returns the root rows of a scheme
func (idx *Index) TopsOf(schemeID int64) ([]domain.IndexRow, error) {
	return idx.queryRows(`SELECT `+rowColumns+` FROM concept_index
		WHERE scheme_id = ? AND broader_id IS NULL ORDER BY position`, schemeID)
}

// AllRowsOf returns every row of a scheme
func (idx *Index) AllRowsOf(schemeID int64) ([]domain.IndexRow, error) {
	return idx.queryRows(`SELECT `+rowColumns+` FROM concept_index
		WHERE scheme_id = ? ORDER BY position`, schemeID)
}

// RowFor returns the row of a concept in a scheme, or nil
func (idx *Index) RowFor(conceptID, schemeID int64) (*domain.IndexRow, error) {
	return idx.queryRow(`SELECT `+rowColumns+` FROM concept_index
		WHERE concept_id = ? AND scheme_id = ?`, conceptID, schemeID)
}

// RowByID returns a row by identity, or nil
func (idx *Index) RowByID(rowID int64) (*domain.IndexRow, error) {
	return idx.queryRow(`SELECT `+rowColumns+` FROM concept_index WHERE id = ?`, rowID)
}

// HasScheme reports whether any row exists for the scheme
func (idx *Index) HasScheme(schemeID int64) (bool, error) {
	var one int
	err := idx.db.QueryRow(`SELECT 1 FROM concept_index WHERE scheme_id = ? LIMIT 1`, schemeID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// SchemesOf returns the schemes a concept is indexed in
func (idx *Index) SchemesOf(conceptID int64) ([]int64, error) {
	rows, err := idx.db.Query(`SELECT scheme_id FROM concept_index WHERE concept_id = ? ORDER BY scheme_id`, conceptID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// DeleteScheme removes every row of a scheme in one statement
func (idx *Index) DeleteScheme(schemeID int64) (int64, error) {
	res, err := idx.db.Exec(`DELETE FROM concept_index WHERE scheme_id = ?`, schemeID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// MarkIndexed records when a scheme was last rebuilt
func (idx *Index) MarkIndexed(schemeID int64, at time.Time) error {
	_, err := idx.db.Exec(`INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)`,
		lastIndexedKey(schemeID), strconv.FormatInt(at.Unix(), 10))
	return err
}

// LastIndexed returns when a scheme was last rebuilt
func (idx *Index) LastIndexed(schemeID int64) (time.Time, bool, error) {
	var value string
	err := idx.db.QueryRow(`SELECT value FROM meta WHERE key = ?`, lastIndexedKey(schemeID)).Scan(&value)
	if err == sql.ErrNoRows {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	unix, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("invalid last indexed time %q: %w", value, err)
	}
	return time.Unix(unix, 0), true, nil
}

// BeginTx starts a new transaction
func (idx *Index) BeginTx() (ports.IndexTx, error) {
	tx, err := idx.db.Begin()
	if err != nil {
		return nil, err
	}
	stmt, err := tx.Prepare(`
		INSERT INTO concept_index (concept_id, scheme_id, root_id, broader_id, position)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}
	return &indexTx{tx: tx, insert: stmt}, nil
}

func lastIndexedKey(schemeID int64) string {
	return "last_indexed:" + strconv.FormatInt(schemeID, 10)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRow(s scanner) (domain.IndexRow, error) {
	var r domain.IndexRow
	var broader sql.NullInt64
	if err := s.Scan(&r.ID, &r.ConceptID, &r.SchemeID, &r.RootID, &broader, &r.Position); err != nil {
		return r, err
	}
	if broader.Valid {
		b := broader.Int64
		r.BroaderID = &b
	}
	return r, nil
}

func (idx *Index) queryRow(query string, args ...any) (*domain.IndexRow, error) {
	r, err := scanRow(idx.db.QueryRow(query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (idx *Index) queryRows(query string, args ...any) ([]domain.IndexRow, error) {
	rows, err := idx.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.IndexRow
	for rows.Next() {
		r, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
