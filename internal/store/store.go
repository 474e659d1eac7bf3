package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// PersistenceError indicates a store write failed and the operation was
// rolled back; no partial state is retained for the primary record.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("store %s failed: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Store handles all database operations. Each logical unit of work runs in
// its own short-lived transaction, so a Store is safe for concurrent use
// from the scheduler and the interactive path.
type Store struct {
	db *sql.DB
}

// New creates a new Store with SQLite backend
func New(dbPath string) (*Store, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS content_analysis (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		file_path TEXT,
		original_filename TEXT,
		media_type TEXT,
		total_score INTEGER,
		caption TEXT,
		hashtags TEXT,
		engagement_tips TEXT,
		key_strengths TEXT,
		improvement_suggestions TEXT,
		content_hash TEXT,
		timestamp DATETIME,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS category_scores (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		analysis_id INTEGER REFERENCES content_analysis(id),
		category TEXT,
		score INTEGER
	);

	CREATE TABLE IF NOT EXISTS posting_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		analysis_id INTEGER REFERENCES content_analysis(id),
		platform TEXT,
		status TEXT,
		posted_at DATETIME,
		error_message TEXT,
		updated_at DATETIME
	);

	CREATE INDEX IF NOT EXISTS idx_analysis_filename ON content_analysis(original_filename);
	CREATE INDEX IF NOT EXISTS idx_analysis_hash ON content_analysis(content_hash);
	CREATE INDEX IF NOT EXISTS idx_scores_analysis ON category_scores(analysis_id);
	CREATE INDEX IF NOT EXISTS idx_history_status ON posting_history(status, posted_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Backup writes a consistent copy of the database to destPath
func (s *Store) Backup(ctx context.Context, destPath string) error {
	if err := os.MkdirAll(filepath.Dir(destPath), 0700); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `VACUUM INTO ?`, destPath); err != nil {
		return fmt.Errorf("database backup failed: %w", err)
	}

	return nil
}
