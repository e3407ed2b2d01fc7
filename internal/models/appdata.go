package models

import "slices"

// AppData is the whole persisted document. Every change produces a new
// value via the With* helpers; callers never mutate a loaded document in place.
type AppData struct {
	Exercises        []Exercise        `json:"exercises"`
	Workouts         []Workout         `json:"workouts"`
	WorkoutLogs      []WorkoutLog      `json:"workoutLogs"`
	BodyMeasurements []BodyMeasurement `json:"bodyMeasurements"`
}

// Normalize replaces nil collections with empty ones so the document
// always serialises with four arrays.
func (d *AppData) Normalize() {
	if d.Exercises == nil {
		d.Exercises = []Exercise{}
	}
	if d.Workouts == nil {
		d.Workouts = []Workout{}
	}
	if d.WorkoutLogs == nil {
		d.WorkoutLogs = []WorkoutLog{}
	}
	if d.BodyMeasurements == nil {
		d.BodyMeasurements = []BodyMeasurement{}
	}
	for i := range d.WorkoutLogs {
		if d.WorkoutLogs[i].ExerciseStatuses == nil {
			d.WorkoutLogs[i].ExerciseStatuses = map[int]ExerciseStatus{}
		}
	}
}

// Clone returns a deep copy of the document.
func (d *AppData) Clone() *AppData {
	out := &AppData{
		Exercises:        slices.Clone(d.Exercises),
		Workouts:         make([]Workout, len(d.Workouts)),
		WorkoutLogs:      make([]WorkoutLog, len(d.WorkoutLogs)),
		BodyMeasurements: slices.Clone(d.BodyMeasurements),
	}
	for i, w := range d.Workouts {
		w.Exercises = slices.Clone(w.Exercises)
		out.Workouts[i] = w
	}
	for i, l := range d.WorkoutLogs {
		out.WorkoutLogs[i] = l.Clone()
	}
	out.Normalize()
	return out
}

// WithExercises returns a copy of d with the exercise collection replaced.
func (d *AppData) WithExercises(exercises []Exercise) *AppData {
	out := d.Clone()
	out.Exercises = exercises
	out.Normalize()
	return out
}

// WithWorkouts returns a copy of d with the workout collection replaced.
func (d *AppData) WithWorkouts(workouts []Workout) *AppData {
	out := d.Clone()
	out.Workouts = workouts
	out.Normalize()
	return out
}

// WithLogs returns a copy of d with the workout log collection replaced.
func (d *AppData) WithLogs(logs []WorkoutLog) *AppData {
	out := d.Clone()
	out.WorkoutLogs = logs
	out.Normalize()
	return out
}

// WithMeasurements returns a copy of d with the measurement series replaced.
func (d *AppData) WithMeasurements(ms []BodyMeasurement) *AppData {
	out := d.Clone()
	out.BodyMeasurements = ms
	out.Normalize()
	return out
}

// WithLog returns a copy of d where the log with the same id is replaced,
// or appended when no such log exists yet.
func (d *AppData) WithLog(log WorkoutLog) *AppData {
	out := d.Clone()
	for i := range out.WorkoutLogs {
		if out.WorkoutLogs[i].ID == log.ID {
			out.WorkoutLogs[i] = log.Clone()
			return out
		}
	}
	out.WorkoutLogs = append(out.WorkoutLogs, log.Clone())
	return out
}

// FindExercise returns the exercise with the given id.
func (d *AppData) FindExercise(id string) (*Exercise, bool) {
	for i := range d.Exercises {
		if d.Exercises[i].ID == id {
			return &d.Exercises[i], true
		}
	}
	return nil, false
}

// FindWorkout returns the workout with the given id.
func (d *AppData) FindWorkout(id string) (*Workout, bool) {
	for i := range d.Workouts {
		if d.Workouts[i].ID == id {
			return &d.Workouts[i], true
		}
	}
	return nil, false
}

// FindLog returns the log with the given id.
func (d *AppData) FindLog(id string) (*WorkoutLog, bool) {
	for i := range d.WorkoutLogs {
		if d.WorkoutLogs[i].ID == id {
			return &d.WorkoutLogs[i], true
		}
	}
	return nil, false
}

// InProgressLog returns the in-progress log of a workout, if any.
func (d *AppData) InProgressLog(workoutID string) (*WorkoutLog, bool) {
	for i := range d.WorkoutLogs {
		l := &d.WorkoutLogs[i]
		if l.WorkoutID == workoutID && l.Status == LogInProgress {
			return l, true
		}
	}
	return nil, false
}

// ExerciseName resolves an exercise id to its name, falling back to
// UnknownExerciseName for dangling references.
func (d *AppData) ExerciseName(id string) string {
	if ex, ok := d.FindExercise(id); ok {
		return ex.Name
	}
	return UnknownExerciseName
}
