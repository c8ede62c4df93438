package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const schemaVersion = "1"

// DB owns the SQLite connection shared by the concept index and the
// resource store
type DB struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) the database at path. A leading ~ is
// expanded to the home directory.
func Open(path string) (*DB, error) {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(home, path[1:])
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// WAL lets store reads proceed while an index batch is being written
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Performance pragmas + schema in single batch (reduces round-trips)
	_, err = db.Exec(`
		PRAGMA synchronous = NORMAL;
		PRAGMA cache_size = -64000;
		PRAGMA temp_store = MEMORY;

		CREATE TABLE IF NOT EXISTS concept_index (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			concept_id INTEGER NOT NULL,
			scheme_id INTEGER NOT NULL,
			root_id INTEGER NOT NULL DEFAULT 0,
			broader_id INTEGER,
			position INTEGER NOT NULL,
			UNIQUE (concept_id, scheme_id)
		);
		CREATE INDEX IF NOT EXISTS idx_concept_index_scheme ON concept_index(scheme_id, position);
		CREATE INDEX IF NOT EXISTS idx_concept_index_broader ON concept_index(broader_id, position);

		CREATE TABLE IF NOT EXISTS resources (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL DEFAULT ''
		);
		CREATE TABLE IF NOT EXISTS resource_classes (
			resource_id INTEGER NOT NULL,
			term TEXT NOT NULL,
			PRIMARY KEY (resource_id, term)
		);
		CREATE TABLE IF NOT EXISTS resource_values (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			resource_id INTEGER NOT NULL,
			term TEXT NOT NULL,
			type TEXT NOT NULL,
			target_id INTEGER,
			literal TEXT
		);
		CREATE INDEX IF NOT EXISTS idx_values_resource ON resource_values(resource_id, term);
		CREATE INDEX IF NOT EXISTS idx_values_target ON resource_values(target_id, term);

		CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to setup database: %w", err)
	}

	d := &DB{db: db, path: path}
	if d.Index().NeedsFullRebuild() {
		if _, err := db.Exec(`DELETE FROM concept_index`); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to reset index: %w", err)
		}
	}
	if err := d.updateMeta(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to update metadata: %w", err)
	}

	return d, nil
}

// Close closes the database connection
func (d *DB) Close() error {
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}

// Path returns the resolved database path
func (d *DB) Path() string {
	return d.path
}

// Index returns the concept index backed by this database
func (d *DB) Index() *Index {
	return &Index{db: d.db}
}

// Store returns the resource store backed by this database
func (d *DB) Store() *Store {
	return &Store{db: d.db}
}

func (d *DB) updateMeta() error {
	_, err := d.db.Exec(`INSERT OR REPLACE INTO meta (key, value) VALUES ('schema_version', ?)`, schemaVersion)
	return err
}
