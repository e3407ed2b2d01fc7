package mcp

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/claude/fittrack/internal/catalog"
	"github.com/claude/fittrack/internal/models"
	"github.com/claude/fittrack/internal/suggest"
)

// defaultTimeRange returns start/end, defaulting to the last days days.
func defaultTimeRange(startStr, endStr string, days int) (time.Time, time.Time, error) {
	var start, end time.Time
	var err error

	if endStr != "" {
		end, err = parseFlexTime(endStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		end = time.Now()
	}

	if startStr != "" {
		start, err = parseFlexTime(startStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		start = end.AddDate(0, 0, -days)
	}

	return start, end, nil
}

func parseFlexTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	t, err = time.Parse("2006-01-02", s)
	if err == nil {
		return t, nil
	}
	return time.Time{}, err
}

// --- Tool definitions ---

var toolListExercises = mcp.NewTool("list_exercises",
	mcp.WithDescription("List the exercise library sorted by name. Each exercise has a type (weighted or timed-distance), a muscle group and optional default sets/reps/weight/duration/distance/rest."),
	mcp.WithString("muscle_group", mcp.Description("Only exercises for this muscle group (case-insensitive, e.g. 'Back')")),
)

var toolListWorkouts = mcp.NewTool("list_workouts",
	mcp.WithDescription("List workout plans with their ordered exercises and any session currently in progress."),
)

var toolGetWorkout = mcp.NewTool("get_workout",
	mcp.WithDescription("Get one workout plan with exercise names resolved and the in-progress session, if any."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Workout ID (e.g. 'w1')")),
)

var toolGetHistory = mcp.NewTool("get_history",
	mcp.WithDescription("Finished and in-progress workout sessions, newest first, with completed/skipped counts and duration in minutes."),
	mcp.WithNumber("limit", mcp.Description("Maximum sessions to return. Defaults to 10.")),
	mcp.WithString("workout", mcp.Description("Filter by workout name (partial match)")),
)

var toolGetBodyWeight = mcp.NewTool("get_body_weight",
	mcp.WithDescription("Body weight measurements in kg over a time range, oldest first, with min/max/latest and the change across the range."),
	mcp.WithString("start", mcp.Description("Start date (ISO 8601 or YYYY-MM-DD). Defaults to 90 days ago.")),
	mcp.WithString("end", mcp.Description("End date (ISO 8601 or YYYY-MM-DD). Defaults to now.")),
)

var toolSuggestWorkout = mcp.NewTool("suggest_workout",
	mcp.WithDescription("Ask the AI trainer for a workout plan. Uses the recent finished sessions as history unless one is given."),
	mcp.WithString("fitness_goals", mcp.Required(), mcp.Description("Goals in plain words (e.g. 'build strength, 3 days a week')")),
	mcp.WithString("workout_history", mcp.Description("Recent training as free text. Defaults to the last finished sessions.")),
)

// --- Tool handlers ---

func (h *handlers) listExercises(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	list, err := h.ds.ListExercises(ctx, req.GetString("muscle_group", ""))
	if err != nil {
		h.log.Error("mcp list_exercises", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(list)
}

func (h *handlers) listWorkouts(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	list, err := h.ds.ListWorkouts(ctx)
	if err != nil {
		h.log.Error("mcp list_workouts", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(list)
}

func (h *handlers) getWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id parameter is required"), nil
	}
	detail, err := h.ds.GetWorkout(ctx, id)
	if errors.Is(err, catalog.ErrNotFound) {
		return mcp.NewToolResultError("workout not found: " + id), nil
	}
	if err != nil {
		h.log.Error("mcp get_workout", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(detail)
}

func (h *handlers) getHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := req.GetInt("limit", 10)
	if limit <= 0 {
		limit = 10
	}
	filter := strings.ToLower(req.GetString("workout", ""))

	hist, err := h.ds.ListHistory(ctx)
	if err != nil {
		h.log.Error("mcp get_history", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	out := make([]catalog.HistoryEntry, 0, limit)
	for _, e := range hist {
		if filter != "" && !strings.Contains(strings.ToLower(e.WorkoutName), filter) {
			continue
		}
		out = append(out, e)
		if len(out) == limit {
			break
		}
	}
	return jsonResult(out)
}

type bodyWeightResult struct {
	Start        time.Time                `json:"start"`
	End          time.Time                `json:"end"`
	Count        int                      `json:"count"`
	Latest       *models.BodyMeasurement  `json:"latest,omitempty"`
	Min          *float64                 `json:"min,omitempty"`
	Max          *float64                 `json:"max,omitempty"`
	Change       *float64                 `json:"change,omitempty"`
	Measurements []models.BodyMeasurement `json:"measurements"`
}

func (h *handlers) getBodyWeight(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, end, err := defaultTimeRange(req.GetString("start", ""), req.GetString("end", ""), 90)
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	all, err := h.ds.ListMeasurements(ctx)
	if err != nil {
		h.log.Error("mcp get_body_weight", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	res := bodyWeightResult{Start: start, End: end, Measurements: []models.BodyMeasurement{}}
	for _, m := range all {
		if m.Datetime.Before(start) || m.Datetime.After(end) {
			continue
		}
		res.Measurements = append(res.Measurements, m)
		if res.Min == nil || m.Weight < *res.Min {
			res.Min = &m.Weight
		}
		if res.Max == nil || m.Weight > *res.Max {
			res.Max = &m.Weight
		}
	}
	res.Count = len(res.Measurements)
	if res.Count > 0 {
		first, last := res.Measurements[0], res.Measurements[res.Count-1]
		res.Latest = &last
		change := last.Weight - first.Weight
		res.Change = &change
	}
	return jsonResult(res)
}

func (h *handlers) suggestWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if h.suggester == nil {
		return mcp.NewToolResultError("workout suggestions are not configured"), nil
	}
	goals, err := req.RequireString("fitness_goals")
	if err != nil {
		return mcp.NewToolResultError("fitness_goals parameter is required"), nil
	}

	history := req.GetString("workout_history", "")
	if strings.TrimSpace(history) == "" {
		doc, err := h.ds.Document(ctx)
		if err != nil {
			h.log.Error("mcp suggest_workout: load history", "error", err)
			return mcp.NewToolResultError("query failed: " + err.Error()), nil
		}
		history = suggest.HistoryText(doc)
	}

	resp, err := h.suggester.Suggest(ctx, suggest.Request{WorkoutHistory: history, FitnessGoals: goals})
	switch {
	case errors.Is(err, suggest.ErrMissingInput):
		return mcp.NewToolResultError("no finished workouts yet; describe your recent training in workout_history"), nil
	case err != nil:
		return mcp.NewToolResultError(suggest.ErrSuggestionFailed.Error()), nil
	}
	return mcp.NewToolResultText(resp.SuggestedWorkout), nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(v)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
