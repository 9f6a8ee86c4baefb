// Package history records completed transfers in a local SQLite database so
// the CLI can answer "what did I upload and when" without asking the server.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Direction of a recorded transfer.
const (
	DirectionUpload   = "upload"
	DirectionDownload = "download"
)

// Record is one completed transfer.
type Record struct {
	ID                 int64
	Direction          string
	Name               string
	Folder             string
	RepositoryIdentity string
	Size               int64
	Duplicate          bool
	CreatedAt          time.Time
}

// Store wraps the SQLite transfer log.
type Store struct {
	conn *sql.DB
	path string
}

// Open opens or creates the transfer log at the given path.
func Open(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	conn, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}

	// WAL so a concurrent cloud-dist invocation can still read
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &Store{conn: conn, path: dbPath}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) migrate() error {
	_, err := s.conn.Exec(`
		CREATE TABLE IF NOT EXISTS transfers (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			direction TEXT NOT NULL,
			name TEXT NOT NULL,
			folder TEXT NOT NULL DEFAULT '',
			repository_identity TEXT NOT NULL DEFAULT '',
			size INTEGER NOT NULL DEFAULT 0,
			duplicate INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating transfers table: %w", err)
	}
	_, err = s.conn.Exec(`CREATE INDEX IF NOT EXISTS idx_transfers_created ON transfers(created_at)`)
	return err
}

// Add appends a transfer record.
func (s *Store) Add(r Record) error {
	_, err := s.conn.Exec(`
		INSERT INTO transfers (direction, name, folder, repository_identity, size, duplicate)
		VALUES (?, ?, ?, ?, ?, ?)`,
		r.Direction, r.Name, r.Folder, r.RepositoryIdentity, r.Size, r.Duplicate)
	if err != nil {
		return fmt.Errorf("recording transfer: %w", err)
	}
	return nil
}

// Recent returns the newest transfers, most recent first.
func (s *Store) Recent(limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.conn.Query(`
		SELECT id, direction, name, folder, repository_identity, size, duplicate, created_at
		FROM transfers ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying transfers: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ID, &r.Direction, &r.Name, &r.Folder,
			&r.RepositoryIdentity, &r.Size, &r.Duplicate, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning transfer: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Prune deletes records older than the cutoff and returns how many went.
// created_at rows are UTC CURRENT_TIMESTAMP strings, so the cutoff must be
// bound in UTC or the comparison skews by the local offset.
func (s *Store) Prune(olderThan time.Time) (int64, error) {
	res, err := s.conn.Exec(`DELETE FROM transfers WHERE created_at < ?`, olderThan.UTC())
	if err != nil {
		return 0, fmt.Errorf("pruning transfers: %w", err)
	}
	return res.RowsAffected()
}
