package models

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

// TestApplyDefaultsPrecedence verifies override > exercise default > fallback.
func TestApplyDefaultsPrecedence(t *testing.T) {
	ex := Exercise{ID: "ex1", Type: ExerciseWeighted, DefaultSets: ptr(5), DefaultReps: ptr(10), DefaultWeight: ptr(40.0)}

	we := ApplyDefaults(ex, Prescription{Reps: ptr(6)})
	if we.ExerciseID != "ex1" {
		t.Errorf("exerciseId = %q, want ex1", we.ExerciseID)
	}
	if we.Sets != 5 {
		t.Errorf("sets = %d, want 5 (exercise default)", we.Sets)
	}
	if we.Reps == nil || *we.Reps != 6 {
		t.Errorf("reps = %v, want 6 (override)", we.Reps)
	}
	if we.Weight == nil || *we.Weight != 40 {
		t.Errorf("weight = %v, want 40", we.Weight)
	}
	if we.RestDuration == nil || *we.RestDuration != FallbackRestDuration {
		t.Errorf("restDuration = %v, want fallback %d", we.RestDuration, FallbackRestDuration)
	}
	if we.Duration != nil || we.Distance != nil {
		t.Errorf("duration/distance should stay unset, got %v/%v", we.Duration, we.Distance)
	}
}

// TestApplyDefaultsFallbacks verifies the hard-coded fallbacks apply when the
// exercise carries no defaults, and an explicit zero rest is kept.
func TestApplyDefaultsFallbacks(t *testing.T) {
	we := ApplyDefaults(Exercise{ID: "ex9"}, Prescription{RestDuration: ptr(0)})
	if we.Sets != FallbackSets {
		t.Errorf("sets = %d, want %d", we.Sets, FallbackSets)
	}
	if we.RestDuration == nil || *we.RestDuration != 0 {
		t.Errorf("restDuration = %v, want explicit 0", we.RestDuration)
	}
}

// TestApplyDefaultsDoesNotAlias verifies the result does not share pointers
// with the exercise, so editing the entry cannot change the exercise.
func TestApplyDefaultsDoesNotAlias(t *testing.T) {
	ex := Exercise{ID: "ex1", DefaultReps: ptr(10)}
	we := ApplyDefaults(ex, Prescription{})
	*we.Reps = 99
	if *ex.DefaultReps != 10 {
		t.Errorf("exercise default changed to %d", *ex.DefaultReps)
	}
}

// TestWorkoutLogJSONShape verifies statuses serialise with string index keys
// and the optional endTime is omitted while in progress.
func TestWorkoutLogJSONShape(t *testing.T) {
	l := WorkoutLog{
		ID:               "log1",
		WorkoutID:        "w1",
		Date:             time.Date(2024, 7, 1, 8, 0, 0, 0, time.UTC),
		Status:           LogInProgress,
		ExerciseStatuses: map[int]ExerciseStatus{0: StatusCompleted, 1: StatusPending},
	}
	data, err := json.Marshal(l)
	if err != nil {
		t.Fatal(err)
	}
	s := string(data)
	for _, want := range []string{`"exerciseStatuses":{"0":"completed","1":"pending"}`, `"status":"in-progress"`, `"currentExerciseIndex":0`} {
		if !strings.Contains(s, want) {
			t.Errorf("json %s missing %s", s, want)
		}
	}
	if strings.Contains(s, "endTime") {
		t.Errorf("endTime should be omitted: %s", s)
	}

	var back WorkoutLog
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if back.StatusAt(0) != StatusCompleted || back.StatusAt(5) != StatusPending {
		t.Errorf("round trip statuses = %v", back.ExerciseStatuses)
	}
}

// TestWithLogLeavesOriginalUntouched verifies document updates are copy-on-write.
func TestWithLogLeavesOriginalUntouched(t *testing.T) {
	d := SeedData()
	l := WorkoutLog{ID: "log1", WorkoutID: "w1", Status: LogInProgress, ExerciseStatuses: map[int]ExerciseStatus{0: StatusPending}}

	d2 := d.WithLog(l)
	if len(d.WorkoutLogs) != 0 {
		t.Fatalf("original mutated: %d logs", len(d.WorkoutLogs))
	}
	if len(d2.WorkoutLogs) != 1 {
		t.Fatalf("new doc logs = %d, want 1", len(d2.WorkoutLogs))
	}

	l.ExerciseStatuses[0] = StatusSkipped
	if d2.WorkoutLogs[0].StatusAt(0) != StatusPending {
		t.Error("stored log shares its status map with the caller")
	}

	l.ExerciseStatuses = map[int]ExerciseStatus{0: StatusCompleted}
	d3 := d2.WithLog(l)
	if len(d3.WorkoutLogs) != 1 || d3.WorkoutLogs[0].StatusAt(0) != StatusCompleted {
		t.Errorf("replace by id failed: %+v", d3.WorkoutLogs)
	}
	if d2.WorkoutLogs[0].StatusAt(0) != StatusPending {
		t.Error("previous document mutated by WithLog")
	}
}

// TestExerciseNameFallback verifies dangling references resolve to the
// unknown label instead of failing.
func TestExerciseNameFallback(t *testing.T) {
	d := SeedData()
	if got := d.ExerciseName("ex2"); got != "Squat" {
		t.Errorf("ExerciseName(ex2) = %q", got)
	}
	if got := d.ExerciseName("missing"); got != UnknownExerciseName {
		t.Errorf("ExerciseName(missing) = %q, want %q", got, UnknownExerciseName)
	}
}

// TestSeedDataIsValid verifies every seeded workout passes validation.
func TestSeedDataIsValid(t *testing.T) {
	d := SeedData()
	for _, ex := range d.Exercises {
		if err := ex.Validate(); err != nil {
			t.Errorf("exercise %s: %v", ex.ID, err)
		}
	}
	for _, w := range d.Workouts {
		if err := w.Validate(d.Exercises); err != nil {
			t.Errorf("workout %s: %v", w.ID, err)
		}
	}
}

func TestWorkoutValidate(t *testing.T) {
	exercises := []Exercise{{ID: "ex1", Type: ExerciseWeighted}, {ID: "ex2", Type: ExerciseTimedDistance}}
	tests := []struct {
		name    string
		workout Workout
		fields  []string
	}{
		{
			name:    "empty",
			workout: Workout{},
			fields:  []string{"name", "description", "exercises"},
		},
		{
			name: "weighted needs reps and weight",
			workout: Workout{Name: "A", Description: "d", Exercises: []WorkoutExercise{
				{ExerciseID: "ex1", Sets: 3},
			}},
			fields: []string{"exercises.0.reps", "exercises.0.weight"},
		},
		{
			name: "ranges",
			workout: Workout{Name: "A", Description: "d", Exercises: []WorkoutExercise{
				{ExerciseID: "ex2", Sets: 0, Duration: ptr(0), Distance: ptr(0.0), RestDuration: ptr(-1)},
			}},
			fields: []string{"exercises.0.sets", "exercises.0.duration", "exercises.0.distance", "exercises.0.restDuration"},
		},
		{
			name: "valid",
			workout: Workout{Name: "A", Description: "d", Exercises: []WorkoutExercise{
				{ExerciseID: "ex1", Sets: 3, Reps: ptr(8), Weight: ptr(0.0)},
				{ExerciseID: "gone", Sets: 1},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.workout.Validate(exercises)
			if len(tt.fields) == 0 {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("error = %v, want *ValidationError", err)
			}
			for _, f := range tt.fields {
				if _, ok := verr.Fields[f]; !ok {
					t.Errorf("missing field error %q in %v", f, verr.Fields)
				}
			}
		})
	}
}

func TestExerciseValidateColor(t *testing.T) {
	ex := Exercise{Name: "Row", MuscleGroup: "Back", Type: ExerciseWeighted, Color: "#c0ffee"}
	if err := ex.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ex.Color = "blue"
	if err := ex.Validate(); err == nil {
		t.Fatal("expected color validation error")
	}
	ex.Color = ""
	ex.Type = "timed"
	if err := ex.Validate(); err == nil {
		t.Fatal("expected type validation error")
	}
}

// TestAppDataValidate verifies the whole-document checks used by import.
func TestAppDataValidate(t *testing.T) {
	if err := SeedData().Validate(); err != nil {
		t.Fatalf("seed document invalid: %v", err)
	}

	doc := SeedData()
	doc.Exercises = append(doc.Exercises, doc.Exercises[0])
	doc.WorkoutLogs = []WorkoutLog{
		{ID: "log1", WorkoutID: "w1", Status: LogInProgress},
		{ID: "log2", WorkoutID: "w1", Status: LogInProgress},
		{ID: "log3", WorkoutID: "w2", Status: "paused"},
	}
	err := doc.Validate()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	for _, key := range []string{"exercises.8.id", "workoutLogs.1.status", "workoutLogs.2.status"} {
		if _, ok := verr.Fields[key]; !ok {
			t.Errorf("missing field error %q in %v", key, verr.Fields)
		}
	}
}
