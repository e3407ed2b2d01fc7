package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/claude/fittrack/internal/catalog"
	"github.com/claude/fittrack/internal/models"
)

const summaryHistory = 5

type inProgressWorkout struct {
	WorkoutID   string             `json:"workoutId"`
	WorkoutName string             `json:"workoutName"`
	Session     *catalog.Resumable `json:"session"`
}

func (h *handlers) summary(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	exercises, err := h.ds.ListExercises(ctx, "")
	if err != nil {
		return nil, err
	}
	workouts, err := h.ds.ListWorkouts(ctx)
	if err != nil {
		return nil, err
	}

	hist, err := h.ds.ListHistory(ctx)
	if err != nil {
		h.log.Warn("summary: history query failed", "error", err)
	}
	recent := make([]catalog.HistoryEntry, 0, summaryHistory)
	for _, e := range hist {
		if e.Status != models.LogCompleted {
			continue
		}
		recent = append(recent, e)
		if len(recent) == summaryHistory {
			break
		}
	}

	var latest *models.BodyMeasurement
	ms, err := h.ds.ListMeasurements(ctx)
	if err != nil {
		h.log.Warn("summary: measurement query failed", "error", err)
	}
	if len(ms) > 0 {
		latest = &ms[len(ms)-1]
	}

	inProgress := []inProgressWorkout{}
	for _, w := range workouts {
		if w.InProgress != nil {
			inProgress = append(inProgress, inProgressWorkout{WorkoutID: w.ID, WorkoutName: w.Name, Session: w.InProgress})
		}
	}

	summary := map[string]any{
		"exercise_count":     len(exercises),
		"workout_count":      len(workouts),
		"in_progress":        inProgress,
		"latest_body_weight": latest,
		"recent_sessions":    recent,
	}

	data, err := json.Marshal(summary)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
