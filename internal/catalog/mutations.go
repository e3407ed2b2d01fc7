package catalog

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/claude/fittrack/internal/models"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrDuplicateExercise = errors.New("exercise already in workout")
)

// The functions in this file are pure: each takes the current document and
// returns a new one, leaving its input untouched.

// AddExercise appends ex to the exercise collection.
func AddExercise(doc *models.AppData, ex models.Exercise) (*models.AppData, error) {
	if err := ex.Validate(); err != nil {
		return nil, err
	}
	return doc.WithExercises(append(slices.Clone(doc.Exercises), ex)), nil
}

// ReplaceExercise swaps the exercise with the same id.
func ReplaceExercise(doc *models.AppData, ex models.Exercise) (*models.AppData, error) {
	if err := ex.Validate(); err != nil {
		return nil, err
	}
	i := slices.IndexFunc(doc.Exercises, func(e models.Exercise) bool { return e.ID == ex.ID })
	if i < 0 {
		return nil, fmt.Errorf("exercise %s: %w", ex.ID, ErrNotFound)
	}
	exercises := slices.Clone(doc.Exercises)
	exercises[i] = ex
	return doc.WithExercises(exercises), nil
}

// RemoveExercise drops an exercise. Workouts referencing it are left as they
// are; their entries render with the unknown-exercise label.
func RemoveExercise(doc *models.AppData, id string) (*models.AppData, error) {
	if _, ok := doc.FindExercise(id); !ok {
		return nil, fmt.Errorf("exercise %s: %w", id, ErrNotFound)
	}
	exercises := slices.DeleteFunc(slices.Clone(doc.Exercises), func(e models.Exercise) bool { return e.ID == id })
	return doc.WithExercises(exercises), nil
}

// AddWorkout appends w to the workout collection.
func AddWorkout(doc *models.AppData, w models.Workout) (*models.AppData, error) {
	if err := w.Validate(doc.Exercises); err != nil {
		return nil, err
	}
	return doc.WithWorkouts(append(slices.Clone(doc.Workouts), cloneWorkout(w))), nil
}

// ReplaceWorkout swaps the workout with the same id.
func ReplaceWorkout(doc *models.AppData, w models.Workout) (*models.AppData, error) {
	if err := w.Validate(doc.Exercises); err != nil {
		return nil, err
	}
	i := slices.IndexFunc(doc.Workouts, func(x models.Workout) bool { return x.ID == w.ID })
	if i < 0 {
		return nil, fmt.Errorf("workout %s: %w", w.ID, ErrNotFound)
	}
	workouts := slices.Clone(doc.Workouts)
	workouts[i] = cloneWorkout(w)
	return doc.WithWorkouts(workouts), nil
}

// RemoveWorkout drops a workout together with all of its logs.
func RemoveWorkout(doc *models.AppData, id string) (*models.AppData, error) {
	if _, ok := doc.FindWorkout(id); !ok {
		return nil, fmt.Errorf("workout %s: %w", id, ErrNotFound)
	}
	out := doc.WithWorkouts(slices.DeleteFunc(slices.Clone(doc.Workouts), func(w models.Workout) bool { return w.ID == id }))
	out.WorkoutLogs = slices.DeleteFunc(out.WorkoutLogs, func(l models.WorkoutLog) bool { return l.WorkoutID == id })
	return out, nil
}

// AppendWorkoutExercise adds an exercise to the end of a workout, pre-filled
// from the exercise defaults. An exercise appears at most once per workout.
func AppendWorkoutExercise(doc *models.AppData, workoutID, exerciseID string, overrides models.Prescription) (*models.AppData, error) {
	w, ok := doc.FindWorkout(workoutID)
	if !ok {
		return nil, fmt.Errorf("workout %s: %w", workoutID, ErrNotFound)
	}
	ex, ok := doc.FindExercise(exerciseID)
	if !ok {
		return nil, fmt.Errorf("exercise %s: %w", exerciseID, ErrNotFound)
	}
	for _, we := range w.Exercises {
		if we.ExerciseID == exerciseID {
			return nil, fmt.Errorf("exercise %s: %w", exerciseID, ErrDuplicateExercise)
		}
	}
	updated := cloneWorkout(*w)
	updated.Exercises = append(updated.Exercises, models.ApplyDefaults(*ex, overrides))
	return ReplaceWorkout(doc, updated)
}

// RemoveInProgressLog discards the in-progress log of a workout. Completed
// logs are kept. Having nothing to discard is not an error.
func RemoveInProgressLog(doc *models.AppData, workoutID string) *models.AppData {
	return doc.WithLogs(slices.DeleteFunc(slices.Clone(doc.WorkoutLogs), func(l models.WorkoutLog) bool {
		return l.WorkoutID == workoutID && l.Status == models.LogInProgress
	}))
}

// RemoveLog drops a single log by id.
func RemoveLog(doc *models.AppData, id string) (*models.AppData, error) {
	if _, ok := doc.FindLog(id); !ok {
		return nil, fmt.Errorf("log %s: %w", id, ErrNotFound)
	}
	return doc.WithLogs(slices.DeleteFunc(slices.Clone(doc.WorkoutLogs), func(l models.WorkoutLog) bool { return l.ID == id })), nil
}

// RemoveCompletedLogs clears the finished history, leaving resumable logs.
func RemoveCompletedLogs(doc *models.AppData) *models.AppData {
	return doc.WithLogs(slices.DeleteFunc(slices.Clone(doc.WorkoutLogs), func(l models.WorkoutLog) bool {
		return l.Status == models.LogCompleted
	}))
}

// AddMeasurement appends to the body-weight series.
func AddMeasurement(doc *models.AppData, m models.BodyMeasurement) (*models.AppData, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return doc.WithMeasurements(append(slices.Clone(doc.BodyMeasurements), m)), nil
}

// RemoveMeasurement drops every measurement taken at datetime.
func RemoveMeasurement(doc *models.AppData, datetime time.Time) (*models.AppData, error) {
	ms := slices.DeleteFunc(slices.Clone(doc.BodyMeasurements), func(m models.BodyMeasurement) bool {
		return m.Datetime.Equal(datetime)
	})
	if len(ms) == len(doc.BodyMeasurements) {
		return nil, fmt.Errorf("measurement %s: %w", datetime.Format(time.RFC3339), ErrNotFound)
	}
	return doc.WithMeasurements(ms), nil
}

func cloneWorkout(w models.Workout) models.Workout {
	w.Exercises = slices.Clone(w.Exercises)
	return w
}
