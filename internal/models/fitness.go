package models

import "time"

// ExerciseType decides which prescription fields of a WorkoutExercise apply
// and whether the player runs a countdown for it.
type ExerciseType string

const (
	ExerciseWeighted      ExerciseType = "weighted"
	ExerciseTimedDistance ExerciseType = "timed-distance"
)

// Valid reports whether t is a known exercise type.
func (t ExerciseType) Valid() bool {
	return t == ExerciseWeighted || t == ExerciseTimedDistance
}

// LogStatus is the lifecycle state of a WorkoutLog.
type LogStatus string

const (
	LogInProgress LogStatus = "in-progress"
	LogCompleted  LogStatus = "completed"
)

// ExerciseStatus is the outcome recorded for one position of a workout.
type ExerciseStatus string

const (
	StatusPending   ExerciseStatus = "pending"
	StatusCompleted ExerciseStatus = "completed"
	StatusSkipped   ExerciseStatus = "skipped"
)

// UnknownExerciseName is shown for workout entries whose exercise was deleted.
const UnknownExerciseName = "Unknown exercise"

// Exercise is a reusable movement definition. The Default* fields only
// pre-fill a WorkoutExercise when the exercise is added to a workout.
type Exercise struct {
	ID                  string       `json:"id"`
	Name                string       `json:"name"`
	Description         string       `json:"description,omitempty"`
	Type                ExerciseType `json:"type"`
	MuscleGroup         string       `json:"muscleGroup"`
	ImageURL            string       `json:"imageUrl,omitempty"`
	AIHint              string       `json:"aiHint,omitempty"`
	Color               string       `json:"color,omitempty"`
	DefaultSets         *int         `json:"defaultSets,omitempty"`
	DefaultReps         *int         `json:"defaultReps,omitempty"`
	DefaultWeight       *float64     `json:"defaultWeight,omitempty"`
	DefaultDuration     *int         `json:"defaultDuration,omitempty"`     // seconds
	DefaultDistance     *float64     `json:"defaultDistance,omitempty"`     // km
	DefaultRestDuration *int         `json:"defaultRestDuration,omitempty"` // seconds
}

// WorkoutExercise is one ordered entry of a workout. It references an
// Exercise by id and never owns it.
type WorkoutExercise struct {
	ExerciseID   string   `json:"exerciseId"`
	Sets         int      `json:"sets"`
	Reps         *int     `json:"reps,omitempty"`
	Weight       *float64 `json:"weight,omitempty"`
	Duration     *int     `json:"duration,omitempty"` // seconds
	Distance     *float64 `json:"distance,omitempty"` // km
	RestDuration *int     `json:"restDuration,omitempty"`
}

// Rest returns the prescribed rest in seconds, zero when absent.
func (we WorkoutExercise) Rest() int {
	if we.RestDuration == nil {
		return 0
	}
	return *we.RestDuration
}

// Workout is an ordered template of exercises. Order is the play order.
type Workout struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Exercises   []WorkoutExercise `json:"exercises"`
}

// WorkoutLog records one attempt at playing a Workout.
type WorkoutLog struct {
	ID                   string                 `json:"id"`
	WorkoutID            string                 `json:"workoutId"`
	Date                 time.Time              `json:"date"`
	Status               LogStatus              `json:"status"`
	CurrentExerciseIndex int                    `json:"currentExerciseIndex"`
	ExerciseStatuses     map[int]ExerciseStatus `json:"exerciseStatuses"`
	EndTime              *time.Time             `json:"endTime,omitempty"`
}

// StatusAt returns the status of position i; missing positions are pending.
func (l *WorkoutLog) StatusAt(i int) ExerciseStatus {
	if s, ok := l.ExerciseStatuses[i]; ok {
		return s
	}
	return StatusPending
}

// ResolvedCount returns how many positions are no longer pending.
func (l *WorkoutLog) ResolvedCount() int {
	n := 0
	for _, s := range l.ExerciseStatuses {
		if s != StatusPending {
			n++
		}
	}
	return n
}

// CountStatus returns how many positions carry status s.
func (l *WorkoutLog) CountStatus(s ExerciseStatus) int {
	n := 0
	for _, v := range l.ExerciseStatuses {
		if v == s {
			n++
		}
	}
	return n
}

// Clone returns a deep copy of the log.
func (l WorkoutLog) Clone() WorkoutLog {
	statuses := make(map[int]ExerciseStatus, len(l.ExerciseStatuses))
	for k, v := range l.ExerciseStatuses {
		statuses[k] = v
	}
	l.ExerciseStatuses = statuses
	if l.EndTime != nil {
		end := *l.EndTime
		l.EndTime = &end
	}
	return l
}

// BodyMeasurement is one entry of the body-weight series.
type BodyMeasurement struct {
	Datetime time.Time `json:"datetime"`
	Weight   float64   `json:"weight"`
}
