package storage

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"

	"github.com/claude/fittrack/internal/models"
	_ "modernc.org/sqlite"
)

// SQLiteStore keeps the document in a single-row table of a local SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the SQLite database at path.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, wrap("creating data dir", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, wrap("opening sqlite db", err)
	}
	// One writer at a time; the document is replaced as a whole anyway.
	db.SetMaxOpenConns(1)

	_, err = db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS app_data (
		id         INTEGER PRIMARY KEY CHECK (id = 1),
		doc        TEXT NOT NULL,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		db.Close()
		return nil, wrap("creating app_data table", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Load reads the document, inserting the seed document if the table is empty.
func (s *SQLiteStore) Load(ctx context.Context) (*models.AppData, error) {
	var doc string
	err := s.db.QueryRowContext(ctx, `SELECT doc FROM app_data WHERE id = 1`).Scan(&doc)
	if err == nil {
		return decode([]byte(doc))
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, wrap("reading document", err)
	}

	seed := models.SeedData()
	data, err := encode(seed)
	if err != nil {
		return nil, err
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO app_data (id, doc) VALUES (1, ?) ON CONFLICT(id) DO NOTHING`, string(data)); err != nil {
		return nil, wrap("seeding document", err)
	}
	return s.Load(ctx)
}

// Save replaces the stored document.
func (s *SQLiteStore) Save(ctx context.Context, doc *models.AppData) error {
	data, err := encode(doc)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO app_data (id, doc, updated_at) VALUES (1, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(id) DO UPDATE SET doc = excluded.doc, updated_at = excluded.updated_at`,
		string(data))
	if err != nil {
		return wrap("writing document", err)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
