package models

const (
	FallbackSets         = 3
	FallbackRestDuration = 60
)

// Prescription holds explicit values for a new WorkoutExercise. Nil fields
// defer to the exercise defaults.
type Prescription struct {
	Sets         *int     `json:"sets,omitempty"`
	Reps         *int     `json:"reps,omitempty"`
	Weight       *float64 `json:"weight,omitempty"`
	Duration     *int     `json:"duration,omitempty"`
	Distance     *float64 `json:"distance,omitempty"`
	RestDuration *int     `json:"restDuration,omitempty"`
}

// ApplyDefaults builds the WorkoutExercise added to a workout for ex.
// Precedence per field: override, then the exercise default, then the
// hard-coded fallback (sets and rest only).
func ApplyDefaults(ex Exercise, overrides Prescription) WorkoutExercise {
	return WorkoutExercise{
		ExerciseID:   ex.ID,
		Sets:         *firstOf(overrides.Sets, positive(ex.DefaultSets), ptr(FallbackSets)),
		Reps:         firstOf(overrides.Reps, ex.DefaultReps),
		Weight:       firstOf(overrides.Weight, ex.DefaultWeight),
		Duration:     firstOf(overrides.Duration, ex.DefaultDuration),
		Distance:     firstOf(overrides.Distance, ex.DefaultDistance),
		RestDuration: firstOf(overrides.RestDuration, positive(ex.DefaultRestDuration), ptr(FallbackRestDuration)),
	}
}

// firstOf returns a copy of the first non-nil value.
func firstOf[T any](vals ...*T) *T {
	for _, v := range vals {
		if v != nil {
			c := *v
			return &c
		}
	}
	return nil
}

// positive treats zero as "not set", matching how the forms treated a
// cleared numeric input.
func positive(v *int) *int {
	if v == nil || *v <= 0 {
		return nil
	}
	return v
}

func ptr[T any](v T) *T { return &v }
