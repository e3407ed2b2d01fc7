package storage

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/claude/fittrack/internal/models"
)

// FileStore keeps the document as an indented JSON file.
type FileStore struct {
	path string
	mu   sync.RWMutex
}

// NewFileStore creates the parent directory of path if needed.
func NewFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, wrap("creating data dir", err)
	}
	return &FileStore{path: path}, nil
}

// Path returns the location of the data file.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the document, writing the seed document first if the file is absent.
func (s *FileStore) Load(_ context.Context) (*models.AppData, error) {
	s.mu.RLock()
	data, err := os.ReadFile(s.path)
	s.mu.RUnlock()
	if err == nil {
		return decode(data)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, wrap("reading data file", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// Another caller may have seeded while we waited for the write lock.
	if data, err := os.ReadFile(s.path); err == nil {
		return decode(data)
	}
	seed := models.SeedData()
	if err := s.write(seed); err != nil {
		return nil, err
	}
	return seed, nil
}

// Save replaces the file contents atomically via a temp file and rename.
func (s *FileStore) Save(_ context.Context, doc *models.AppData) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(doc)
}

func (s *FileStore) write(doc *models.AppData) error {
	data, err := encode(doc)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return wrap("creating temp file", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return wrap("writing data file", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return wrap("writing data file", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return wrap("replacing data file", err)
	}
	return nil
}

// Close is a no-op; the file is only open during Load and Save.
func (s *FileStore) Close() error {
	return nil
}
