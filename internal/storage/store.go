package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/claude/fittrack/internal/config"
	"github.com/claude/fittrack/internal/models"
)

// ErrStorage marks every load/save failure so callers can tell I/O problems
// apart from validation and not-found errors.
var ErrStorage = errors.New("storage error")

// Store is the whole-document data-access contract. Load creates the
// document from seed data when it does not exist. Save replaces the whole
// document; there are no partial writes.
type Store interface {
	Load(ctx context.Context) (*models.AppData, error)
	Save(ctx context.Context, doc *models.AppData) error
	Close() error
}

// Open returns the backend selected in cfg. Postgres migrations must have
// been applied beforehand (see RunMigrations).
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Backend {
	case config.BackendFile:
		fs, err := NewFileStore(cfg.Path)
		if err != nil {
			return nil, err
		}
		return fs, nil
	case config.BackendSQLite:
		st, err := OpenSQLite(ctx, cfg.Path)
		if err != nil {
			return nil, err
		}
		return st, nil
	case config.BackendPostgres:
		db, err := New(ctx, cfg.Database.DSN())
		if err != nil {
			return nil, err
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

func encode(doc *models.AppData) ([]byte, error) {
	out := doc.Clone()
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("%w: encoding document: %w", ErrStorage, err)
	}
	return data, nil
}

func decode(data []byte) (*models.AppData, error) {
	var doc models.AppData
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: decoding document: %w", ErrStorage, err)
	}
	doc.Normalize()
	return &doc, nil
}

func wrap(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorage, op, err)
}
