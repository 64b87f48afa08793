package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/modelmayhem/mayhem/internal/persona"
)

// SQLiteStorage implements Storage using SQLite.
type SQLiteStorage struct {
	db   *sql.DB
	path string
}

// DefaultDBPath returns ~/.mayhem/mayhem.db.
func DefaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "mayhem.db"
	}
	return filepath.Join(home, ".mayhem", "mayhem.db")
}

// NewSQLiteStorage creates a new SQLite storage instance.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	dir := filepath.Dir(dbPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &SQLiteStorage{
		db:   db,
		path: dbPath,
	}, nil
}

// Initialize creates the database schema.
func (s *SQLiteStorage) Initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS personas (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		fragment TEXT NOT NULL
	);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// GetPersona returns a custom persona fragment by ID.
func (s *SQLiteStorage) GetPersona(id string) (*persona.StoredFragment, error) {
	row := s.db.QueryRow(`SELECT id, name, fragment FROM personas WHERE id = ?`, id)

	var f persona.StoredFragment
	if err := row.Scan(&f.ID, &f.Name, &f.Fragment); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get persona: %w", err)
	}

	return &f, nil
}

// SavePersona inserts or replaces a custom persona fragment.
func (s *SQLiteStorage) SavePersona(f *persona.StoredFragment) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO personas (id, name, fragment) VALUES (?, ?, ?)`,
		f.ID, f.Name, f.Fragment,
	)
	if err != nil {
		return fmt.Errorf("failed to save persona: %w", err)
	}
	return nil
}

// ListPersonas returns all custom persona fragments ordered by ID.
func (s *SQLiteStorage) ListPersonas() ([]*persona.StoredFragment, error) {
	rows, err := s.db.Query(`SELECT id, name, fragment FROM personas ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list personas: %w", err)
	}
	defer rows.Close()

	var out []*persona.StoredFragment
	for rows.Next() {
		var f persona.StoredFragment
		if err := rows.Scan(&f.ID, &f.Name, &f.Fragment); err != nil {
			return nil, fmt.Errorf("failed to scan persona: %w", err)
		}
		out = append(out, &f)
	}

	return out, rows.Err()
}

// DeletePersona removes a custom persona fragment.
func (s *SQLiteStorage) DeletePersona(id string) error {
	_, err := s.db.Exec(`DELETE FROM personas WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete persona: %w", err)
	}
	return nil
}
