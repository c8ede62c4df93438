package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"thesaurus/internal/application"
	"thesaurus/internal/domain"
	"thesaurus/internal/ports"
)

const (
	valueLiteral  = "literal"
	valueResource = "resource"
)

// Store implements ports.ResourceStore on the resources tables. Values keep
// insertion order.
type Store struct {
	db *sql.DB
}

var _ ports.ResourceStore = (*Store)(nil)

// Read loads a resource with its classes and values
func (s *Store) Read(ctx context.Context, id int64) (*domain.Concept, error) {
	c := &domain.Concept{ID: id}
	err := s.db.QueryRowContext(ctx, `SELECT title FROM resources WHERE id = ?`, id).Scan(&c.Title)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("concept %d: %w", id, application.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT term FROM resource_classes WHERE resource_id = ? ORDER BY rowid`, id)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var term string
		if err := rows.Scan(&term); err != nil {
			rows.Close()
			return nil, err
		}
		c.Classes = append(c.Classes, term)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = s.db.QueryContext(ctx, `
		SELECT term, type, target_id, literal
		FROM resource_values WHERE resource_id = ? ORDER BY id
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var v domain.Value
		var typ string
		var target sql.NullInt64
		var literal sql.NullString
		if err := rows.Scan(&v.Term, &typ, &target, &literal); err != nil {
			return nil, err
		}
		if typ == valueResource {
			v.Type = domain.ValueResource
			v.ResourceID = target.Int64
		} else {
			v.Type = domain.ValueLiteral
			v.Literal = literal.String
		}
		c.Values = append(c.Values, v)
	}
	return c, rows.Err()
}

// Create inserts a resource and returns it with its new id
func (s *Store) Create(ctx context.Context, data domain.ConceptData) (*domain.Concept, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `INSERT INTO resources (title) VALUES (?)`, data.Title)
	if err != nil {
		return nil, fmt.Errorf("insert resource: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	for _, class := range data.Classes {
		if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO resource_classes (resource_id, term) VALUES (?, ?)`, id, class); err != nil {
			return nil, fmt.Errorf("insert class: %w", err)
		}
	}
	for _, v := range data.Values {
		if err := insertValue(ctx, tx, id, v); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return s.Read(ctx, id)
}

// Update applies a partial update
func (s *Store) Update(ctx context.Context, id int64, patch domain.Patch) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var exists int
	if err := tx.QueryRowContext(ctx, `SELECT 1 FROM resources WHERE id = ?`, id).Scan(&exists); err != nil {
		if err == sql.ErrNoRows {
			return fmt.Errorf("concept %d: %w", id, application.ErrNotFound)
		}
		return err
	}

	if patch.Title != nil {
		if _, err := tx.ExecContext(ctx, `UPDATE resources SET title = ? WHERE id = ?`, *patch.Title, id); err != nil {
			return err
		}
	}
	for term, text := range patch.Literals {
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM resource_values WHERE resource_id = ? AND term = ? AND type = ?
		`, id, term, valueLiteral); err != nil {
			return err
		}
		if text == "" {
			continue
		}
		if err := insertValue(ctx, tx, id, domain.Value{Term: term, Type: domain.ValueLiteral, Literal: text}); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Search returns matching resources ordered by id
func (s *Store) Search(ctx context.Context, filter domain.Filter) ([]*domain.Concept, error) {
	query := `SELECT r.id FROM resources r WHERE 1 = 1`
	var args []any
	if filter.Class != "" {
		query += ` AND EXISTS (SELECT 1 FROM resource_classes c WHERE c.resource_id = r.id AND c.term = ?)`
		args = append(args, filter.Class)
	}
	if filter.HasTerm != "" {
		query += ` AND EXISTS (SELECT 1 FROM resource_values v WHERE v.resource_id = r.id AND v.term = ? AND v.type = ?)`
		args = append(args, filter.HasTerm, valueResource)
	}
	query += ` ORDER BY r.id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]*domain.Concept, 0, len(ids))
	for _, id := range ids {
		c, err := s.Read(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// InsertLinks appends resource values in one transaction. A link already
// present is not duplicated.
func (s *Store) InsertLinks(ctx context.Context, links []domain.Link) error {
	if len(links) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, l := range links {
		var exists int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM resources WHERE id = ?`, l.Source).Scan(&exists)
		if err == sql.ErrNoRows {
			return fmt.Errorf("concept %d: %w", l.Source, application.ErrNotFound)
		}
		if err != nil {
			return err
		}

		err = tx.QueryRowContext(ctx, `
			SELECT 1 FROM resource_values
			WHERE resource_id = ? AND term = ? AND type = ? AND target_id = ?
		`, l.Source, l.Term, valueResource, l.Target).Scan(&exists)
		if err == nil {
			continue
		}
		if err != sql.ErrNoRows {
			return err
		}

		if err := insertValue(ctx, tx, l.Source, domain.Value{Term: l.Term, Type: domain.ValueResource, ResourceID: l.Target}); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// DeleteLinks removes matching resource values in one statement
func (s *Store) DeleteLinks(ctx context.Context, term string, sources, targets []int64) (int, error) {
	if len(sources) == 0 {
		return 0, nil
	}

	query := `DELETE FROM resource_values WHERE term = ? AND type = ? AND resource_id IN (` + placeholders(len(sources)) + `)`
	args := []any{term, valueResource}
	for _, id := range sources {
		args = append(args, id)
	}
	if len(targets) > 0 {
		query += ` AND target_id IN (` + placeholders(len(targets)) + `)`
		for _, id := range targets {
			args = append(args, id)
		}
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func insertValue(ctx context.Context, tx *sql.Tx, resourceID int64, v domain.Value) error {
	var err error
	if v.Type == domain.ValueResource {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO resource_values (resource_id, term, type, target_id) VALUES (?, ?, ?, ?)
		`, resourceID, v.Term, valueResource, v.ResourceID)
	} else {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO resource_values (resource_id, term, type, literal) VALUES (?, ?, ?, ?)
		`, resourceID, v.Term, valueLiteral, v.Literal)
	}
	if err != nil {
		return fmt.Errorf("insert value %s: %w", v.Term, err)
	}
	return nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
