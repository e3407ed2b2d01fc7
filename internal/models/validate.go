package models

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

var colorPattern = regexp.MustCompile(`(?i)^#([0-9a-f]{3,6})$`)

// ValidationError carries per-field messages so a client can render them
// next to the offending inputs.
type ValidationError struct {
	Fields map[string]string `json:"fields"`
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = msg
	}
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// Validate checks the required fields of an exercise.
func (e Exercise) Validate() error {
	var verr ValidationError
	if strings.TrimSpace(e.Name) == "" {
		verr.add("name", "name is required")
	}
	if strings.TrimSpace(e.MuscleGroup) == "" {
		verr.add("muscleGroup", "muscle group is required")
	}
	if !e.Type.Valid() {
		verr.add("type", fmt.Sprintf("type must be %q or %q", ExerciseWeighted, ExerciseTimedDistance))
	}
	if e.Color != "" && !colorPattern.MatchString(e.Color) {
		verr.add("color", "color must be a hex code such as #c0ffee")
	}
	if e.DefaultSets != nil && *e.DefaultSets < 1 {
		verr.add("defaultSets", "must be at least 1")
	}
	if e.DefaultWeight != nil && *e.DefaultWeight < 0 {
		verr.add("defaultWeight", "must not be negative")
	}
	if e.DefaultRestDuration != nil && *e.DefaultRestDuration < 0 {
		verr.add("defaultRestDuration", "must not be negative")
	}
	return verr.orNil()
}

// Validate checks a workout against the numeric ranges of its entries.
// exercises is used to resolve entry types; entries that reference an
// unknown exercise are only range-checked.
func (w Workout) Validate(exercises []Exercise) error {
	var verr ValidationError
	if strings.TrimSpace(w.Name) == "" {
		verr.add("name", "name is required")
	}
	if strings.TrimSpace(w.Description) == "" {
		verr.add("description", "description is required")
	}
	if len(w.Exercises) == 0 {
		verr.add("exercises", "add at least one exercise")
	}

	types := make(map[string]ExerciseType, len(exercises))
	for _, ex := range exercises {
		types[ex.ID] = ex.Type
	}

	seen := make(map[string]bool, len(w.Exercises))
	for i, we := range w.Exercises {
		prefix := fmt.Sprintf("exercises.%d.", i)
		if we.ExerciseID == "" {
			verr.add(prefix+"exerciseId", "exercise is required")
		} else if seen[we.ExerciseID] {
			verr.add(prefix+"exerciseId", "exercise already in workout")
		}
		seen[we.ExerciseID] = true
		if we.Sets < 1 {
			verr.add(prefix+"sets", "at least 1 set")
		}
		if we.Reps != nil && *we.Reps < 1 {
			verr.add(prefix+"reps", "at least 1 rep")
		}
		if we.Weight != nil && *we.Weight < 0 {
			verr.add(prefix+"weight", "weight must not be negative")
		}
		if we.Duration != nil && *we.Duration < 1 {
			verr.add(prefix+"duration", "at least 1 second")
		}
		if we.Distance != nil && *we.Distance <= 0 {
			verr.add(prefix+"distance", "distance must be positive")
		}
		if we.RestDuration != nil && *we.RestDuration < 0 {
			verr.add(prefix+"restDuration", "rest must not be negative")
		}
		if types[we.ExerciseID] == ExerciseWeighted {
			if we.Reps == nil {
				verr.add(prefix+"reps", "reps are required")
			}
			if we.Weight == nil {
				verr.add(prefix+"weight", "weight is required")
			}
		}
	}
	return verr.orNil()
}

// Validate checks a body measurement.
func (m BodyMeasurement) Validate() error {
	var verr ValidationError
	if m.Datetime.IsZero() {
		verr.add("datetime", "datetime is required")
	}
	if m.Weight <= 0 {
		verr.add("weight", "weight must be positive")
	}
	return verr.orNil()
}

// Validate checks a whole document before it replaces the stored one.
// Dangling exercise references are allowed.
func (d *AppData) Validate() error {
	var verr ValidationError
	merge := func(prefix string, err error) {
		var inner *ValidationError
		if errors.As(err, &inner) {
			for k, v := range inner.Fields {
				verr.add(prefix+k, v)
			}
		}
	}

	seen := map[string]bool{}
	for i, ex := range d.Exercises {
		prefix := fmt.Sprintf("exercises.%d.", i)
		if ex.ID == "" || seen["ex:"+ex.ID] {
			verr.add(prefix+"id", "id must be present and unique")
		}
		seen["ex:"+ex.ID] = true
		merge(prefix, ex.Validate())
	}
	for i, w := range d.Workouts {
		prefix := fmt.Sprintf("workouts.%d.", i)
		if w.ID == "" || seen["w:"+w.ID] {
			verr.add(prefix+"id", "id must be present and unique")
		}
		seen["w:"+w.ID] = true
		merge(prefix, w.Validate(d.Exercises))
	}
	inProgress := map[string]bool{}
	for i, l := range d.WorkoutLogs {
		prefix := fmt.Sprintf("workoutLogs.%d.", i)
		if l.ID == "" || seen["log:"+l.ID] {
			verr.add(prefix+"id", "id must be present and unique")
		}
		seen["log:"+l.ID] = true
		if l.WorkoutID == "" {
			verr.add(prefix+"workoutId", "workout is required")
		}
		switch l.Status {
		case LogCompleted:
		case LogInProgress:
			if inProgress[l.WorkoutID] {
				verr.add(prefix+"status", "only one in-progress log per workout")
			}
			inProgress[l.WorkoutID] = true
		default:
			verr.add(prefix+"status", "unknown status")
		}
		for idx, st := range l.ExerciseStatuses {
			if idx < 0 || (st != StatusPending && st != StatusCompleted && st != StatusSkipped) {
				verr.add(fmt.Sprintf("%sexerciseStatuses.%d", prefix, idx), "invalid exercise status")
			}
		}
	}
	for i, m := range d.BodyMeasurements {
		merge(fmt.Sprintf("bodyMeasurements.%d.", i), m.Validate())
	}
	return verr.orNil()
}
