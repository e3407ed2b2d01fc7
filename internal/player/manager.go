package player

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/claude/fittrack/internal/catalog"
	"github.com/claude/fittrack/internal/models"
	"github.com/claude/fittrack/internal/storage"
)

// Manager owns the live sessions of the process. Opening a workout that
// already has a live session returns that session.
type Manager struct {
	mu        sync.Mutex
	sessions  map[string]*Session
	byWorkout map[string]string

	store   storage.Store
	catalog *catalog.Service
	opts    Options
	log     *slog.Logger
	runCtx  context.Context
}

// NewManager creates a manager. Session tick loops run until their session
// ends or Shutdown is called.
func NewManager(store storage.Store, svc *catalog.Service, opts Options, logger *slog.Logger) *Manager {
	return &Manager{
		sessions:  make(map[string]*Session),
		byWorkout: make(map[string]string),
		store:     store,
		catalog:   svc,
		opts:      opts.withDefaults(),
		log:       logger,
		runCtx:    context.Background(),
	}
}

// Open returns the live session for workoutID or opens a new one and
// starts its tick loop. A session whose initial save failed is still
// registered and returned alongside the error.
func (m *Manager) Open(ctx context.Context, workoutID string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id, ok := m.byWorkout[workoutID]; ok {
		if s := m.sessions[id]; s != nil && !s.Done() {
			return s, nil
		}
		m.removeLocked(id)
	}

	s, err := Open(ctx, uuid.NewString(), workoutID, m.store, m.catalog.IDs(), m.opts, m.log)
	if s == nil {
		return nil, err
	}
	m.sessions[s.ID()] = s
	m.byWorkout[workoutID] = s.ID()
	s.Run(m.runCtx)
	return s, err
}

// Get returns a registered session.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, ErrSessionNotFound)
	}
	return s, nil
}

// Exit saves progress, stops the session and forgets it. A session whose
// save failed stays registered so the exit can be retried.
func (m *Manager) Exit(ctx context.Context, id string) error {
	s, err := m.Get(id)
	if err != nil {
		return err
	}
	err = s.Exit(ctx)
	if err != nil && !s.Done() {
		return err
	}
	m.mu.Lock()
	m.removeLocked(id)
	m.mu.Unlock()
	return err
}

// abandonWhere stops and forgets every session match accepts.
func (m *Manager) abandonWhere(match func(*Session) bool) {
	m.mu.Lock()
	var stopped []*Session
	for id, s := range m.sessions {
		if match(s) {
			stopped = append(stopped, s)
			m.removeLocked(id)
		}
	}
	m.mu.Unlock()
	for _, s := range stopped {
		s.Abandon()
	}
}

// DeleteWorkout stops any live session of the workout, then deletes it
// together with its logs.
func (m *Manager) DeleteWorkout(ctx context.Context, workoutID string) error {
	m.abandonWhere(func(s *Session) bool { return s.WorkoutID() == workoutID })
	return m.catalog.DeleteWorkout(ctx, workoutID)
}

// DeleteLog stops the session playing logID, if any, then deletes the log.
func (m *Manager) DeleteLog(ctx context.Context, logID string) error {
	m.abandonWhere(func(s *Session) bool { return s.LogID() == logID })
	return m.catalog.DeleteLog(ctx, logID)
}

// Replace stops every live session and replaces the whole document.
func (m *Manager) Replace(ctx context.Context, doc *models.AppData) error {
	m.abandonWhere(func(*Session) bool { return true })
	return m.catalog.Replace(ctx, doc)
}

// StartOver stops any live session of the workout and discards its
// in-progress log so the next Open creates a fresh one.
func (m *Manager) StartOver(ctx context.Context, workoutID string) error {
	m.mu.Lock()
	if id, ok := m.byWorkout[workoutID]; ok {
		if s := m.sessions[id]; s != nil {
			s.Abandon()
		}
		m.removeLocked(id)
	}
	m.mu.Unlock()
	return m.catalog.StartOver(ctx, workoutID)
}

// Reap forgets finished and closed sessions and returns how many it removed.
func (m *Manager) Reap() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, s := range m.sessions {
		if s.Done() {
			s.Close()
			m.removeLocked(id)
			n++
		}
	}
	return n
}

// Len returns the number of registered sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// RunReaper calls Reap every interval until ctx is done.
func (m *Manager) RunReaper(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := m.Reap(); n > 0 {
				m.log.Debug("reaped player sessions", "count", n)
			}
		}
	}
}

// Shutdown saves every unfinished session and stops all tick loops.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for id, s := range m.sessions {
		sessions = append(sessions, s)
		m.removeLocked(id)
	}
	m.mu.Unlock()

	var errs []error
	for _, s := range sessions {
		if err := s.SaveProgress(ctx); err != nil {
			errs = append(errs, err)
		}
		s.Close()
	}
	return errors.Join(errs...)
}

func (m *Manager) removeLocked(id string) {
	s, ok := m.sessions[id]
	if !ok {
		return
	}
	delete(m.sessions, id)
	if m.byWorkout[s.WorkoutID()] == id {
		delete(m.byWorkout, s.WorkoutID())
	}
}
