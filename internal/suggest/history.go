package suggest

import (
	"fmt"
	"slices"
	"strings"

	"github.com/claude/fittrack/internal/models"
)

// maxHistoryLogs bounds how many finished workouts HistoryText lists.
const maxHistoryLogs = 10

// HistoryText summarises the most recent completed workouts as plain text
// for prefilling the workout history field.
func HistoryText(doc *models.AppData) string {
	logs := make([]models.WorkoutLog, 0, len(doc.WorkoutLogs))
	for _, l := range doc.WorkoutLogs {
		if l.Status == models.LogCompleted {
			logs = append(logs, l)
		}
	}
	slices.SortFunc(logs, func(a, b models.WorkoutLog) int {
		return b.Date.Compare(a.Date)
	})
	if len(logs) > maxHistoryLogs {
		logs = logs[:maxHistoryLogs]
	}

	var b strings.Builder
	for _, l := range logs {
		w, ok := doc.FindWorkout(l.WorkoutID)
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "%s: %s", l.Date.Format("2006-01-02"), w.Name)
		if l.EndTime != nil {
			fmt.Fprintf(&b, " (%.0f min)", l.EndTime.Sub(l.Date).Minutes())
		}
		b.WriteString("\n")
		for i, we := range w.Exercises {
			fmt.Fprintf(&b, "  - %s: %s, %s\n", doc.ExerciseName(we.ExerciseID), prescription(we), l.StatusAt(i))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func prescription(we models.WorkoutExercise) string {
	parts := []string{fmt.Sprintf("%d sets", we.Sets)}
	if we.Reps != nil {
		parts = append(parts, fmt.Sprintf("%d reps", *we.Reps))
	}
	if we.Weight != nil {
		parts = append(parts, fmt.Sprintf("%g kg", *we.Weight))
	}
	if we.Duration != nil {
		parts = append(parts, fmt.Sprintf("%d s", *we.Duration))
	}
	if we.Distance != nil {
		parts = append(parts, fmt.Sprintf("%g km", *we.Distance))
	}
	return strings.Join(parts, " x ")
}
