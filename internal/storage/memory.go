package storage

import (
	"context"
	"sync"

	"github.com/claude/fittrack/internal/models"
)

// MemoryStore keeps the document in process memory. It backs tests and
// dry runs of the import command.
type MemoryStore struct {
	mu  sync.Mutex
	doc *models.AppData
}

// NewMemoryStore returns a store holding a copy of doc, or the seed
// document when doc is nil.
func NewMemoryStore(doc *models.AppData) *MemoryStore {
	s := &MemoryStore{}
	if doc != nil {
		s.doc = doc.Clone()
	}
	return s
}

func (s *MemoryStore) Load(_ context.Context) (*models.AppData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		s.doc = models.SeedData()
	}
	return s.doc.Clone(), nil
}

func (s *MemoryStore) Save(_ context.Context, doc *models.AppData) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = doc.Clone()
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
