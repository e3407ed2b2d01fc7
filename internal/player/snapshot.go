package player

import (
	"time"

	"github.com/claude/fittrack/internal/models"
)

// TimerView is the visible state of a countdown.
type TimerView struct {
	Remaining int  `json:"remaining"`
	Running   bool `json:"running"`
}

// CurrentExercise is the entry at the current position.
type CurrentExercise struct {
	models.WorkoutExercise
	Index  int                   `json:"index"`
	Name   string                `json:"name"`
	Type   models.ExerciseType   `json:"type,omitempty"`
	Status models.ExerciseStatus `json:"status"`
}

// Snapshot is a read-only view of a session. Progress values are derived
// from the statuses each time and never stored.
type Snapshot struct {
	SessionID            string                        `json:"sessionId"`
	WorkoutID            string                        `json:"workoutId"`
	WorkoutName          string                        `json:"workoutName"`
	LogID                string                        `json:"logId"`
	State                State                         `json:"state"`
	Resumed              bool                          `json:"resumed"`
	Closed               bool                          `json:"closed,omitempty"`
	StartedAt            time.Time                     `json:"startedAt"`
	EndTime              *time.Time                    `json:"endTime,omitempty"`
	CurrentExerciseIndex int                           `json:"currentExerciseIndex"`
	TotalExercises       int                           `json:"totalExercises"`
	Current              *CurrentExercise              `json:"current,omitempty"`
	Next                 *CurrentExercise              `json:"next,omitempty"`
	ExerciseStatuses     map[int]models.ExerciseStatus `json:"exerciseStatuses"`
	ExerciseTimer        *TimerView                    `json:"exerciseTimer,omitempty"`
	Rest                 *TimerView                    `json:"rest,omitempty"`
	CompletedCount       int                           `json:"completedCount"`
	ProgressPercentage   float64                       `json:"progressPercentage"`
	LastError            string                        `json:"lastError,omitempty"`
}

// Snapshot returns the current view of the session.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	total := len(s.workout.Exercises)
	snap := Snapshot{
		SessionID:            s.id,
		WorkoutID:            s.workout.ID,
		WorkoutName:          s.workout.Name,
		LogID:                s.wlog.ID,
		State:                s.state,
		Resumed:              s.resumed,
		Closed:               s.closed,
		StartedAt:            s.wlog.Date,
		EndTime:              s.wlog.EndTime,
		CurrentExerciseIndex: s.wlog.CurrentExerciseIndex,
		TotalExercises:       total,
		ExerciseStatuses:     make(map[int]models.ExerciseStatus, total),
	}
	for i := range total {
		st := s.wlog.StatusAt(i)
		snap.ExerciseStatuses[i] = st
		if st != models.StatusPending {
			snap.CompletedCount++
		}
	}
	if total > 0 {
		snap.ProgressPercentage = 100 * float64(snap.CompletedCount) / float64(total)
	}

	if s.state != StateFinished {
		snap.Current = s.describe(s.wlog.CurrentExerciseIndex)
		if s.wlog.CurrentExerciseIndex < s.last() {
			snap.Next = s.describe(s.wlog.CurrentExerciseIndex + 1)
		}
	}
	if s.exerciseTimer.Active() {
		snap.ExerciseTimer = &TimerView{Remaining: s.exerciseTimer.Remaining(), Running: s.exerciseTimer.Running()}
	}
	if s.restTimer.Active() {
		snap.Rest = &TimerView{Remaining: s.restTimer.Remaining(), Running: s.restTimer.Running()}
	}
	if s.lastErr != nil {
		snap.LastError = s.lastErr.Error()
	}
	return snap
}

func (s *Session) describe(i int) *CurrentExercise {
	we := s.entry(i)
	c := &CurrentExercise{
		WorkoutExercise: we,
		Index:           i,
		Name:            models.UnknownExerciseName,
		Status:          s.wlog.StatusAt(i),
	}
	if ex, ok := s.exercises[we.ExerciseID]; ok {
		c.Name = ex.Name
		c.Type = ex.Type
	}
	return c
}
