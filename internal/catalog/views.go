package catalog

import (
	"slices"
	"time"

	"github.com/claude/fittrack/internal/models"
)

const unknownWorkoutName = "Unknown workout"

// WorkoutEntry is a workout position with its exercise resolved for display.
type WorkoutEntry struct {
	models.WorkoutExercise
	ExerciseName string              `json:"exerciseName"`
	ExerciseType models.ExerciseType `json:"exerciseType,omitempty"`
	Missing      bool                `json:"missing,omitempty"`
}

// Resumable describes the in-progress log of a workout.
type Resumable struct {
	LogID                string    `json:"logId"`
	StartedAt            time.Time `json:"startedAt"`
	CurrentExerciseIndex int       `json:"currentExerciseIndex"`
	Resolved             int       `json:"resolved"`
}

// WorkoutDetail is a workout as shown in lists and dialogs.
type WorkoutDetail struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Entries     []WorkoutEntry `json:"exercises"`
	InProgress  *Resumable     `json:"inProgress,omitempty"`
}

// HistoryEntry is one row of the workout history.
type HistoryEntry struct {
	LogID           string           `json:"logId"`
	WorkoutID       string           `json:"workoutId"`
	WorkoutName     string           `json:"workoutName"`
	Date            time.Time        `json:"date"`
	EndTime         *time.Time       `json:"endTime,omitempty"`
	Status          models.LogStatus `json:"status"`
	Completed       int              `json:"completed"`
	Skipped         int              `json:"skipped"`
	Total           int              `json:"total"`
	DurationMinutes *float64         `json:"durationMinutes,omitempty"`
}

func describeWorkout(doc *models.AppData, w models.Workout) WorkoutDetail {
	d := WorkoutDetail{
		ID:          w.ID,
		Name:        w.Name,
		Description: w.Description,
		Entries:     make([]WorkoutEntry, 0, len(w.Exercises)),
	}
	for _, we := range w.Exercises {
		e := WorkoutEntry{WorkoutExercise: we, ExerciseName: models.UnknownExerciseName, Missing: true}
		if ex, ok := doc.FindExercise(we.ExerciseID); ok {
			e.ExerciseName = ex.Name
			e.ExerciseType = ex.Type
			e.Missing = false
		}
		d.Entries = append(d.Entries, e)
	}
	if l, ok := doc.InProgressLog(w.ID); ok {
		d.InProgress = &Resumable{
			LogID:                l.ID,
			StartedAt:            l.Date,
			CurrentExerciseIndex: l.CurrentExerciseIndex,
			Resolved:             l.ResolvedCount(),
		}
	}
	return d
}

func history(doc *models.AppData) []HistoryEntry {
	out := make([]HistoryEntry, 0, len(doc.WorkoutLogs))
	for _, l := range doc.WorkoutLogs {
		e := HistoryEntry{
			LogID:       l.ID,
			WorkoutID:   l.WorkoutID,
			WorkoutName: unknownWorkoutName,
			Date:        l.Date,
			EndTime:     l.EndTime,
			Status:      l.Status,
			Completed:   l.CountStatus(models.StatusCompleted),
			Skipped:     l.CountStatus(models.StatusSkipped),
			Total:       len(l.ExerciseStatuses),
		}
		if w, ok := doc.FindWorkout(l.WorkoutID); ok {
			e.WorkoutName = w.Name
			e.Total = len(w.Exercises)
		}
		if l.EndTime != nil {
			minutes := l.EndTime.Sub(l.Date).Minutes()
			e.DurationMinutes = &minutes
		}
		out = append(out, e)
	}
	slices.SortStableFunc(out, func(a, b HistoryEntry) int {
		return b.Date.Compare(a.Date)
	})
	return out
}
