package models

import "time"

// SeedData returns the document written when no store exists yet.
func SeedData() *AppData {
	d := &AppData{
		Exercises: []Exercise{
			{ID: "ex1", Name: "Barbell Bench Press", Description: "Lie on a flat bench and press a barbell up from your chest.", Type: ExerciseWeighted, MuscleGroup: "Chest", AIHint: "barbell bench", DefaultSets: ptr(3), DefaultReps: ptr(8), DefaultWeight: ptr(60.0), DefaultRestDuration: ptr(90)},
			{ID: "ex2", Name: "Squat", Description: "Lower your hips from a standing position and then stand back up.", Type: ExerciseWeighted, MuscleGroup: "Legs", AIHint: "barbell squat", DefaultSets: ptr(3), DefaultReps: ptr(8), DefaultWeight: ptr(80.0), DefaultRestDuration: ptr(120)},
			{ID: "ex3", Name: "Deadlift", Description: "Lift a loaded barbell off the ground to the hips, then lower it back under control.", Type: ExerciseWeighted, MuscleGroup: "Back", AIHint: "barbell deadlift", DefaultSets: ptr(1), DefaultReps: ptr(5), DefaultWeight: ptr(100.0), DefaultRestDuration: ptr(180)},
			{ID: "ex4", Name: "Overhead Press", Description: "Press a barbell or dumbbells from your shoulders to overhead.", Type: ExerciseWeighted, MuscleGroup: "Shoulders", AIHint: "overhead press"},
			{ID: "ex5", Name: "Pull Up", Description: "Lift your body up with your arms until your chin is over the bar.", Type: ExerciseWeighted, MuscleGroup: "Back", AIHint: "man pullup", DefaultWeight: ptr(0.0)},
			{ID: "ex6", Name: "Plank", Description: "Hold a push-up position, resting on your forearms.", Type: ExerciseTimedDistance, MuscleGroup: "Core", AIHint: "woman plank", DefaultDuration: ptr(60), DefaultRestDuration: ptr(30)},
			{ID: "ex7", Name: "Running", Description: "Run at a steady pace on a treadmill or outdoors.", Type: ExerciseTimedDistance, MuscleGroup: "Cardio", AIHint: "woman running", DefaultDistance: ptr(3.0)},
			{ID: "ex8", Name: "Dumbbell Curl", Description: "Curl dumbbells up towards your shoulders, keeping your elbows stationary.", Type: ExerciseWeighted, MuscleGroup: "Biceps", AIHint: "dumbbell curl"},
		},
		Workouts: []Workout{
			{
				ID:          "w1",
				Name:        "Full Body Strength A",
				Description: "A comprehensive full-body workout focusing on major muscle groups.",
				Exercises: []WorkoutExercise{
					{ExerciseID: "ex2", Sets: 3, Reps: ptr(8), Weight: ptr(80.0), RestDuration: ptr(120)},
					{ExerciseID: "ex1", Sets: 3, Reps: ptr(8), Weight: ptr(60.0), RestDuration: ptr(90)},
					{ExerciseID: "ex3", Sets: 1, Reps: ptr(5), Weight: ptr(100.0)},
				},
			},
			{
				ID:          "w2",
				Name:        "Full Body Strength B",
				Description: "An alternative full-body session to balance your routine.",
				Exercises: []WorkoutExercise{
					{ExerciseID: "ex2", Sets: 3, Reps: ptr(8), Weight: ptr(80.0), RestDuration: ptr(120)},
					{ExerciseID: "ex4", Sets: 3, Reps: ptr(8), Weight: ptr(40.0), RestDuration: ptr(90)},
					{ExerciseID: "ex5", Sets: 3, Reps: ptr(8), Weight: ptr(0.0)},
				},
			},
			{
				ID:          "w3",
				Name:        "Cardio & Core",
				Description: "A workout to boost cardiovascular health and strengthen your core.",
				Exercises: []WorkoutExercise{
					{ExerciseID: "ex7", Sets: 1, Distance: ptr(3.0), RestDuration: ptr(60)},
					{ExerciseID: "ex6", Sets: 3, Duration: ptr(60)},
				},
			},
		},
		BodyMeasurements: []BodyMeasurement{
			{Datetime: seedDate(2024, 5, 1), Weight: 85.5},
			{Datetime: seedDate(2024, 5, 15), Weight: 85.0},
			{Datetime: seedDate(2024, 6, 1), Weight: 84.7},
			{Datetime: seedDate(2024, 6, 15), Weight: 84.2},
			{Datetime: seedDate(2024, 7, 1), Weight: 83.9},
			{Datetime: seedDate(2024, 7, 15), Weight: 83.5},
		},
	}
	d.Normalize()
	return d
}

func seedDate(y int, m time.Month, day int) time.Time {
	return time.Date(y, m, day, 8, 0, 0, 0, time.UTC)
}
