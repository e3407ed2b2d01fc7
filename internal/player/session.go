package player

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/claude/fittrack/internal/catalog"
	"github.com/claude/fittrack/internal/models"
	"github.com/claude/fittrack/internal/storage"
)

var (
	ErrWorkoutNotFound = errors.New("workout not found or has no exercises")
	ErrSessionNotFound = errors.New("session not found")
	ErrNotActive       = errors.New("no active exercise")
	ErrNotResting      = errors.New("not resting")
	ErrNoTimer         = errors.New("current exercise has no timer")
	ErrFinished        = errors.New("workout already finished")
	ErrClosed          = errors.New("session closed")
	ErrDetached        = errors.New("workout or log was removed while playing")
)

// State is the player state of a session.
type State string

const (
	StateLoading  State = "loading"
	StateActive   State = "active"
	StateResting  State = "resting"
	StateFinished State = "finished"
)

// DefaultRestExtend is the number of seconds ExtendRest adds when not configured.
const DefaultRestExtend = 15

// Observer receives player events for metrics.
type Observer interface {
	SessionOpened(resumed bool)
	SessionFinished()
	PersistFailed()
}

type noopObserver struct{}

func (noopObserver) SessionOpened(bool) {}
func (noopObserver) SessionFinished()   {}
func (noopObserver) PersistFailed()     {}

// Options tune a session.
type Options struct {
	RestExtendSeconds int
	TickInterval      time.Duration
	Now               func() time.Time
	Observer          Observer
}

func (o Options) withDefaults() Options {
	if o.RestExtendSeconds <= 0 {
		o.RestExtendSeconds = DefaultRestExtend
	}
	if o.TickInterval <= 0 {
		o.TickInterval = time.Second
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Observer == nil {
		o.Observer = noopObserver{}
	}
	return o
}

// Session plays one workout log. All events, including timer ticks, are
// serialised by mu, and every event that changes the log persists it
// before returning.
type Session struct {
	mu sync.Mutex

	id        string
	store     storage.Store
	log       *slog.Logger
	opts      Options
	workout   models.Workout
	exercises map[string]models.Exercise

	wlog    models.WorkoutLog
	state   State
	resumed bool
	stored  bool
	closed  bool
	lastErr error

	exerciseTimer Countdown
	restTimer     Countdown
	subs          subscribers

	stop context.CancelFunc
	done chan struct{}
}

// Open starts or resumes playing workoutID. An in-progress log for the
// workout is resumed at its first pending position from the stored index
// on; a log with nothing left pending is finalized. Otherwise a new log is
// created with every position pending and saved immediately.
//
// When saving the new log fails, Open returns the session together with the
// error. The session holds the new log in memory and a later event or
// SaveProgress retries the save.
func Open(ctx context.Context, id, workoutID string, store storage.Store, ids *catalog.IDGen, opts Options, logger *slog.Logger) (*Session, error) {
	opts = opts.withDefaults()
	doc, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading workout %s: %w", workoutID, err)
	}
	w, ok := doc.FindWorkout(workoutID)
	if !ok || len(w.Exercises) == 0 {
		return nil, fmt.Errorf("workout %s: %w", workoutID, ErrWorkoutNotFound)
	}

	s := &Session{
		id:        id,
		store:     store,
		log:       logger.With("session_id", id, "workout_id", workoutID),
		opts:      opts,
		workout:   *w,
		exercises: make(map[string]models.Exercise, len(doc.Exercises)),
		state:     StateLoading,
	}
	for _, ex := range doc.Exercises {
		s.exercises[ex.ID] = ex
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := doc.InProgressLog(workoutID); ok {
		s.wlog = existing.Clone()
		s.resumed = true
		s.stored = true
		opts.Observer.SessionOpened(true)
		i, ok := s.pendingFrom(clamp(s.wlog.CurrentExerciseIndex, 0, len(w.Exercises)-1))
		if !ok {
			s.wlog.CurrentExerciseIndex = s.last()
			return s, s.finalizeLocked(ctx)
		}
		s.enterLocked(i)
		s.log.Info("workout resumed", "log_id", s.wlog.ID, "index", i)
		return s, nil
	}

	statuses := make(map[int]models.ExerciseStatus, len(w.Exercises))
	for i := range w.Exercises {
		statuses[i] = models.StatusPending
	}
	s.wlog = models.WorkoutLog{
		ID:               ids.NewLogID(),
		WorkoutID:        workoutID,
		Date:             opts.Now().UTC(),
		Status:           models.LogInProgress,
		ExerciseStatuses: statuses,
	}
	s.enterLocked(0)
	s.log.Info("workout started", "log_id", s.wlog.ID, "exercises", len(w.Exercises))
	opts.Observer.SessionOpened(false)
	return s, s.persistLocked(ctx)
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}

// pendingFrom returns the first pending position at or after i, wrapping
// to the start of the workout.
func (s *Session) pendingFrom(i int) (int, bool) {
	n := len(s.workout.Exercises)
	for k := range n {
		j := (i + k) % n
		if s.wlog.StatusAt(j) == models.StatusPending {
			return j, true
		}
	}
	return 0, false
}

// resolveLocked records st at position i unless it is already resolved.
func (s *Session) resolveLocked(i int, st models.ExerciseStatus) {
	if s.wlog.StatusAt(i) == models.StatusPending {
		s.wlog.ExerciseStatuses[i] = st
	}
}

func (s *Session) ID() string        { return s.id }
func (s *Session) WorkoutID() string { return s.workout.ID }

// LogID returns the id of the log being played.
func (s *Session) LogID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wlog.ID
}

// Done reports whether the session no longer accepts events.
func (s *Session) Done() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed || s.state == StateFinished
}

func (s *Session) entry(i int) models.WorkoutExercise {
	return s.workout.Exercises[i]
}

func (s *Session) last() int {
	return len(s.workout.Exercises) - 1
}

// enterLocked makes position i the active exercise and arms its countdown
// when it is a timed exercise with a duration.
func (s *Session) enterLocked(i int) {
	s.restTimer.Cancel()
	s.exerciseTimer.Cancel()
	s.state = StateActive
	s.wlog.CurrentExerciseIndex = i

	we := s.entry(i)
	ex, ok := s.exercises[we.ExerciseID]
	if ok && ex.Type == models.ExerciseTimedDistance && we.Duration != nil && *we.Duration > 0 {
		s.exerciseTimer.Start(*we.Duration, nil, s.exerciseElapsed)
	}
}

func (s *Session) exerciseElapsed(ctx context.Context) error {
	return s.completeLocked(ctx)
}

func (s *Session) restElapsed(ctx context.Context) error {
	s.enterLocked(s.wlog.CurrentExerciseIndex + 1)
	return s.persistLocked(ctx)
}

func (s *Session) completeLocked(ctx context.Context) error {
	i := s.wlog.CurrentExerciseIndex
	s.resolveLocked(i, models.StatusCompleted)
	s.exerciseTimer.Cancel()
	if i == s.last() {
		return s.finalizeLocked(ctx)
	}
	if rest := s.entry(i).Rest(); rest > 0 {
		s.state = StateResting
		s.restTimer.Start(rest, nil, s.restElapsed)
		return s.persistLocked(ctx)
	}
	s.enterLocked(i + 1)
	return s.persistLocked(ctx)
}

// finalizeLocked completes the log. A finished session ignores further
// calls, so a timer-driven completion racing a manual one finalizes once.
// On a failed save the session keeps its statuses and stays unfinished so
// Finish can retry.
func (s *Session) finalizeLocked(ctx context.Context) error {
	if s.state == StateFinished {
		return nil
	}
	s.exerciseTimer.Cancel()
	s.restTimer.Cancel()

	final := s.wlog.Clone()
	final.Status = models.LogCompleted
	end := s.opts.Now().UTC()
	final.EndTime = &end
	if err := s.saveLocked(ctx, final); err != nil {
		return err
	}
	s.wlog = final
	s.state = StateFinished
	s.log.Info("workout finished",
		"log_id", final.ID,
		"completed", final.CountStatus(models.StatusCompleted),
		"skipped", final.CountStatus(models.StatusSkipped))
	s.opts.Observer.SessionFinished()
	return nil
}

func (s *Session) persistLocked(ctx context.Context) error {
	return s.saveLocked(ctx, s.wlog)
}

func (s *Session) saveLocked(ctx context.Context, l models.WorkoutLog) error {
	err := s.save(ctx, l)
	if errors.Is(err, ErrDetached) {
		s.exerciseTimer.Cancel()
		s.restTimer.Cancel()
		s.closed = true
		s.lastErr = err
		s.log.Warn("session detached", "log_id", l.ID, "error", err)
		return err
	}
	if err != nil {
		s.lastErr = err
		s.log.Error("saving workout log", "log_id", l.ID, "error", err)
		s.opts.Observer.PersistFailed()
		return err
	}
	s.lastErr = nil
	s.stored = true
	return nil
}

// save upserts l into the stored document. It refuses when the workout was
// deleted or its exercise list changed, or when the log was stored before
// and has since been removed.
func (s *Session) save(ctx context.Context, l models.WorkoutLog) error {
	doc, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("saving log %s: %w", l.ID, err)
	}
	if w, ok := doc.FindWorkout(s.workout.ID); !ok || len(w.Exercises) != len(s.workout.Exercises) {
		return fmt.Errorf("saving log %s: workout %s: %w", l.ID, s.workout.ID, ErrDetached)
	}
	if _, ok := doc.FindLog(l.ID); s.stored && !ok {
		return fmt.Errorf("saving log %s: %w", l.ID, ErrDetached)
	}
	if err := s.store.Save(ctx, doc.WithLog(l)); err != nil {
		return fmt.Errorf("saving log %s: %w", l.ID, err)
	}
	return nil
}

func (s *Session) checkOpenLocked() error {
	if s.closed {
		return ErrClosed
	}
	if s.state == StateFinished {
		return ErrFinished
	}
	return nil
}

// MarkComplete completes the active exercise.
func (s *Session) MarkComplete(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.publishLocked()
	if err := s.checkOpenLocked(); err != nil {
		return err
	}
	if s.state != StateActive {
		return ErrNotActive
	}
	return s.completeLocked(ctx)
}

// Skip marks the active exercise skipped and moves on without resting.
func (s *Session) Skip(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.publishLocked()
	if err := s.checkOpenLocked(); err != nil {
		return err
	}
	if s.state != StateActive {
		return ErrNotActive
	}
	i := s.wlog.CurrentExerciseIndex
	s.resolveLocked(i, models.StatusSkipped)
	s.exerciseTimer.Cancel()
	s.restTimer.Cancel()
	if i == s.last() {
		return s.finalizeLocked(ctx)
	}
	s.enterLocked(i + 1)
	return s.persistLocked(ctx)
}

// ToggleExerciseTimer pauses or resumes the exercise countdown and reports
// whether it is now running.
func (s *Session) ToggleExerciseTimer() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.publishLocked()
	if err := s.checkOpenLocked(); err != nil {
		return false, err
	}
	if s.state != StateActive || !s.exerciseTimer.Active() {
		return false, ErrNoTimer
	}
	return s.exerciseTimer.Toggle(), nil
}

// ExtendRest adds the configured increment to the rest countdown.
func (s *Session) ExtendRest() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.publishLocked()
	if err := s.checkOpenLocked(); err != nil {
		return err
	}
	if s.state != StateResting {
		return ErrNotResting
	}
	s.restTimer.Extend(s.opts.RestExtendSeconds)
	return nil
}

// SkipRest ends resting now and advances to the next exercise.
func (s *Session) SkipRest(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.publishLocked()
	if err := s.checkOpenLocked(); err != nil {
		return err
	}
	if s.state != StateResting {
		return ErrNotResting
	}
	return s.restTimer.ForceElapse(ctx)
}

// Tick advances whichever countdown is running by one second. Save errors
// are kept as the session's last error as well as returned.
func (s *Session) Tick(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.state == StateFinished {
		return nil
	}
	if s.exerciseTimer.Running() || s.restTimer.Running() {
		defer s.publishLocked()
	}
	switch s.state {
	case StateActive:
		return s.exerciseTimer.Tick(ctx)
	case StateResting:
		return s.restTimer.Tick(ctx)
	}
	return nil
}

// Finish ends the workout early at the user's request. Positions still
// pending are recorded as skipped, so a completed log only ever holds
// resolved statuses and its progress reads 100%.
func (s *Session) Finish(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.publishLocked()
	if s.closed {
		return ErrClosed
	}
	if s.state == StateFinished {
		return nil
	}
	for i := range s.workout.Exercises {
		if s.wlog.StatusAt(i) == models.StatusPending {
			s.wlog.ExerciseStatuses[i] = models.StatusSkipped
		}
	}
	return s.finalizeLocked(ctx)
}

// Exit leaves the workout without finishing it. Progress is saved and the
// log stays in progress so it can be resumed. When the save fails the
// session stays open with its timers paused.
func (s *Session) Exit(ctx context.Context) error {
	s.mu.Lock()
	if s.closed || s.state == StateFinished {
		s.closed = true
		s.mu.Unlock()
		s.Close()
		return nil
	}
	s.exerciseTimer.Pause()
	s.restTimer.Pause()
	err := s.persistLocked(ctx)
	if err != nil && !errors.Is(err, ErrDetached) {
		// Stays open with timers paused so exit or save can retry.
		s.publishLocked()
		s.mu.Unlock()
		return err
	}
	s.exerciseTimer.Cancel()
	s.restTimer.Cancel()
	s.closed = true
	s.publishLocked()
	s.mu.Unlock()
	s.Close()
	if err == nil {
		s.log.Info("workout exited", "log_id", s.wlog.ID, "index", s.wlog.CurrentExerciseIndex)
	}
	return err
}

// Abandon stops the session without saving. The in-progress log is left
// for the caller to discard.
func (s *Session) Abandon() {
	s.mu.Lock()
	s.exerciseTimer.Cancel()
	s.restTimer.Cancel()
	s.closed = true
	s.publishLocked()
	s.mu.Unlock()
	s.Close()
}

// SaveProgress persists the current log when the workout is still in
// progress. It is the hook for unload and navigation events.
func (s *Session) SaveProgress(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.state == StateFinished {
		return nil
	}
	return s.persistLocked(ctx)
}

// Run drives Tick once per tick interval until ctx is cancelled or Close
// is called. Calling Run on a running session does nothing.
func (s *Session) Run(ctx context.Context) {
	s.mu.Lock()
	if s.stop != nil || s.closed {
		s.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.stop = cancel
	s.done = done
	interval := s.opts.TickInterval
	s.mu.Unlock()

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				// Errors are recorded on the session and logged by saveLocked.
				_ = s.Tick(ctx)
			}
		}
	}()
}

// Close stops the tick loop, waits for it to exit and releases subscribers.
func (s *Session) Close() {
	s.mu.Lock()
	stop, done := s.stop, s.done
	s.mu.Unlock()
	if stop != nil {
		stop()
		<-done
	}
	s.subs.closeAll()
}
