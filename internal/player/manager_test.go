package player

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claude/fittrack/internal/catalog"
	"github.com/claude/fittrack/internal/logging"
	"github.com/claude/fittrack/internal/models"
	"github.com/claude/fittrack/internal/storage"
)

type countingObserver struct {
	opened, resumed, finished, failed int
}

func (o *countingObserver) SessionOpened(resumed bool) {
	o.opened++
	if resumed {
		o.resumed++
	}
}
func (o *countingObserver) SessionFinished() { o.finished++ }
func (o *countingObserver) PersistFailed()   { o.failed++ }

func newTestManager(t *testing.T, obs Observer) (*Manager, *harness) {
	t.Helper()
	h := newHarness()
	svc := catalog.NewService(h.store, h.ids, logging.Discard())
	opts := h.options()
	opts.TickInterval = time.Hour
	opts.Observer = obs
	m := NewManager(h.store, svc, opts, logging.Discard())
	t.Cleanup(func() { _ = m.Shutdown(context.Background()) })
	return m, h
}

func TestManagerReturnsLiveSession(t *testing.T) {
	obs := &countingObserver{}
	m, _ := newTestManager(t, obs)
	ctx := context.Background()

	a, err := m.Open(ctx, "wA")
	require.NoError(t, err)
	b, err := m.Open(ctx, "wA")
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.Equal(t, 1, m.Len())
	assert.Equal(t, 1, obs.opened)

	got, err := m.Get(a.ID())
	require.NoError(t, err)
	assert.Same(t, a, got)

	_, err = m.Get("nope")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = m.Open(ctx, "missing")
	assert.ErrorIs(t, err, ErrWorkoutNotFound)
}

func TestManagerExitThenResume(t *testing.T) {
	obs := &countingObserver{}
	m, _ := newTestManager(t, obs)
	ctx := context.Background()

	s, err := m.Open(ctx, "wA")
	require.NoError(t, err)
	require.NoError(t, s.Skip(ctx))
	require.NoError(t, m.Exit(ctx, s.ID()))
	assert.Equal(t, 0, m.Len())

	again, err := m.Open(ctx, "wA")
	require.NoError(t, err)
	assert.NotEqual(t, s.ID(), again.ID())
	snap := again.Snapshot()
	assert.True(t, snap.Resumed)
	assert.Equal(t, 1, snap.CurrentExerciseIndex)
	assert.Equal(t, 1, obs.resumed)
}

// TestManagerStartOver verifies the live session is stopped and the next
// open creates a new log.
func TestManagerStartOver(t *testing.T) {
	m, h := newTestManager(t, nil)
	ctx := context.Background()

	s, err := m.Open(ctx, "wA")
	require.NoError(t, err)
	require.NoError(t, s.MarkComplete(ctx))
	oldLog := s.Snapshot().LogID

	require.NoError(t, m.StartOver(ctx, "wA"))
	assert.True(t, s.Done())

	doc, err := h.store.Load(ctx)
	require.NoError(t, err)
	_, ok := doc.FindLog(oldLog)
	assert.False(t, ok)

	fresh, err := m.Open(ctx, "wA")
	require.NoError(t, err)
	snap := fresh.Snapshot()
	assert.False(t, snap.Resumed)
	assert.NotEqual(t, oldLog, snap.LogID)
	assert.Equal(t, models.StatusPending, snap.ExerciseStatuses[0])
}

func TestManagerReap(t *testing.T) {
	obs := &countingObserver{}
	m, _ := newTestManager(t, obs)
	ctx := context.Background()

	done, err := m.Open(ctx, "wOne")
	require.NoError(t, err)
	_, err = m.Open(ctx, "wA")
	require.NoError(t, err)
	require.NoError(t, done.Skip(ctx))

	assert.Equal(t, 1, m.Reap())
	assert.Equal(t, 1, m.Len())
	assert.Equal(t, 1, obs.finished)
}

func TestManagerShutdownSavesProgress(t *testing.T) {
	m, h := newTestManager(t, nil)
	ctx := context.Background()

	s, err := m.Open(ctx, "wA")
	require.NoError(t, err)
	require.NoError(t, s.Skip(ctx))

	h.store.setFail(true)
	assert.Error(t, m.Shutdown(ctx))
	h.store.setFail(false)
	assert.Equal(t, 0, m.Len())
}

// TestManagerExitRetryAfterFailure verifies a session whose exit failed
// stays registered and keeps its progress for the retry.
func TestManagerExitRetryAfterFailure(t *testing.T) {
	m, h := newTestManager(t, nil)
	ctx := context.Background()

	s, err := m.Open(ctx, "wA")
	require.NoError(t, err)
	h.store.setFail(true)
	require.Error(t, s.MarkComplete(ctx))
	require.ErrorIs(t, m.Exit(ctx, s.ID()), storage.ErrStorage)

	got, err := m.Get(s.ID())
	require.NoError(t, err)
	assert.Same(t, s, got)
	assert.Equal(t, 1, m.Len())

	h.store.setFail(false)
	require.NoError(t, m.Exit(ctx, s.ID()))
	assert.Equal(t, 0, m.Len())

	again, err := m.Open(ctx, "wA")
	require.NoError(t, err)
	snap := again.Snapshot()
	assert.True(t, snap.Resumed)
	assert.Equal(t, models.StatusCompleted, snap.ExerciseStatuses[0])
	assert.Equal(t, 1, snap.CompletedCount)
	assert.Equal(t, 1, snap.CurrentExerciseIndex)
}

// TestManagerDeleteWorkoutStopsSession verifies deleting a workout while it
// is being played leaves no log behind.
func TestManagerDeleteWorkoutStopsSession(t *testing.T) {
	m, h := newTestManager(t, nil)
	ctx := context.Background()

	s, err := m.Open(ctx, "wA")
	require.NoError(t, err)
	require.NoError(t, m.DeleteWorkout(ctx, "wA"))
	assert.True(t, s.Done())
	assert.Equal(t, 0, m.Len())
	assert.ErrorIs(t, s.MarkComplete(ctx), ErrClosed)
	require.NoError(t, s.SaveProgress(ctx))

	doc, err := h.store.Load(ctx)
	require.NoError(t, err)
	_, ok := doc.FindWorkout("wA")
	assert.False(t, ok)
	assert.Empty(t, doc.WorkoutLogs)
}

func TestManagerDeleteLogStopsSession(t *testing.T) {
	m, h := newTestManager(t, nil)
	ctx := context.Background()

	s, err := m.Open(ctx, "wA")
	require.NoError(t, err)
	other, err := m.Open(ctx, "wOne")
	require.NoError(t, err)

	require.NoError(t, m.DeleteLog(ctx, s.LogID()))
	assert.True(t, s.Done())
	assert.False(t, other.Done())
	assert.Equal(t, 1, m.Len())

	doc, err := h.store.Load(ctx)
	require.NoError(t, err)
	_, ok := doc.FindLog(s.LogID())
	assert.False(t, ok)
}

// TestManagerReplaceStopsSessions verifies an import does not get the old
// in-progress logs written back into it.
func TestManagerReplaceStopsSessions(t *testing.T) {
	m, h := newTestManager(t, nil)
	ctx := context.Background()

	s, err := m.Open(ctx, "wA")
	require.NoError(t, err)
	require.NoError(t, m.Replace(ctx, models.SeedData()))
	assert.True(t, s.Done())
	assert.Equal(t, 0, m.Len())
	require.NoError(t, s.SaveProgress(ctx))

	doc, err := h.store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, doc.WorkoutLogs)
}
