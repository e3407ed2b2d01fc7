package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/claude/fittrack/internal/models"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps a pgxpool.Pool and stores the document as a JSONB row.
type DB struct {
	Pool *pgxpool.Pool
}

// New creates a new DB with a connection pool.
func New(ctx context.Context, dsn string) (*DB, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("creating pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &DB{Pool: pool}, nil
}

// Close closes the connection pool.
func (db *DB) Close() error {
	db.Pool.Close()
	return nil
}

// Load reads the document, inserting the seed document if none is stored yet.
func (db *DB) Load(ctx context.Context) (*models.AppData, error) {
	var doc []byte
	err := db.Pool.QueryRow(ctx, `SELECT doc FROM app_data WHERE id = 1`).Scan(&doc)
	if err == nil {
		return decode(doc)
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, wrap("querying document", err)
	}

	seed := models.SeedData()
	data, err := encode(seed)
	if err != nil {
		return nil, err
	}
	if _, err := db.Pool.Exec(ctx,
		`INSERT INTO app_data (id, doc) VALUES (1, $1) ON CONFLICT (id) DO NOTHING`, string(data)); err != nil {
		return nil, wrap("seeding document", err)
	}
	return db.Load(ctx)
}

// Save replaces the stored document.
func (db *DB) Save(ctx context.Context, doc *models.AppData) error {
	data, err := encode(doc)
	if err != nil {
		return err
	}
	_, err = db.Pool.Exec(ctx,
		`INSERT INTO app_data (id, doc, updated_at) VALUES (1, $1, NOW())
		 ON CONFLICT (id) DO UPDATE SET doc = EXCLUDED.doc, updated_at = NOW()`,
		string(data))
	if err != nil {
		return wrap("writing document", err)
	}
	return nil
}

// RunMigrations applies all pending migrations from the given directory.
func RunMigrations(dsn, migrationsPath string) error {
	m, err := migrate.New("file://"+migrationsPath, dsn)
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}
