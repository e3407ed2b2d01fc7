package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/claude/fittrack/internal/catalog"
	"github.com/claude/fittrack/internal/logging"
	"github.com/claude/fittrack/internal/models"
	"github.com/claude/fittrack/internal/storage"
	"github.com/claude/fittrack/internal/suggest"
)

type recordingSuggester struct {
	got suggest.Request
	err error
}

func (r *recordingSuggester) Suggest(_ context.Context, req suggest.Request) (*suggest.Response, error) {
	r.got = req
	if r.err != nil {
		return nil, r.err
	}
	return &suggest.Response{SuggestedWorkout: "Monday: squats"}, nil
}

func testDoc() *models.AppData {
	doc := models.SeedData()
	start := time.Date(2024, 7, 20, 18, 0, 0, 0, time.UTC)
	end := start.Add(45 * time.Minute)
	doc.WorkoutLogs = []models.WorkoutLog{
		{
			ID: "log1", WorkoutID: "w1", Date: start, EndTime: &end, Status: models.LogCompleted,
			CurrentExerciseIndex: 2,
			ExerciseStatuses:     map[int]models.ExerciseStatus{0: models.StatusCompleted, 1: models.StatusCompleted, 2: models.StatusSkipped},
		},
		{
			ID: "log2", WorkoutID: "w2", Date: start.AddDate(0, 0, 2), Status: models.LogInProgress,
			CurrentExerciseIndex: 1,
			ExerciseStatuses:     map[int]models.ExerciseStatus{0: models.StatusCompleted},
		},
	}
	return doc
}

func newTestHandlers(t *testing.T, sugg suggest.Suggester) *handlers {
	t.Helper()
	store := storage.NewMemoryStore(testDoc())
	svc := catalog.NewService(store, catalog.NewIDGen(), logging.Discard())
	return &handlers{ds: svc, suggester: sugg, log: logging.Discard()}
}

func callTool(t *testing.T, fn func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any) (*mcp.CallToolResult, string) {
	t.Helper()
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	res, err := fn(context.Background(), req)
	if err != nil {
		t.Fatalf("tool returned protocol error: %v", err)
	}
	if len(res.Content) == 0 {
		t.Fatal("tool returned no content")
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content type = %T, want mcp.TextContent", res.Content[0])
	}
	return res, text.Text
}

// TestDefaultTimeRange verifies time range defaults and parsing.
func TestDefaultTimeRange(t *testing.T) {
	// Both empty → defaults to the last N days
	start, end, err := defaultTimeRange("", "", 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	diff := end.Sub(start)
	if diff.Hours() < 167 || diff.Hours() > 169 { // ~168 hours = 7 days
		t.Errorf("default range = %.0f hours, want ~168", diff.Hours())
	}

	// Explicit dates
	start, end, err = defaultTimeRange("2024-01-01", "2024-01-31", 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if start.Year() != 2024 || start.Month() != 1 || start.Day() != 1 {
		t.Errorf("start = %v, want 2024-01-01", start)
	}
	if end.Year() != 2024 || end.Month() != 1 || end.Day() != 31 {
		t.Errorf("end = %v, want 2024-01-31", end)
	}

	// RFC3339
	start, _, err = defaultTimeRange("2024-06-15T10:30:00Z", "", 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if start.Hour() != 10 || start.Minute() != 30 {
		t.Errorf("start = %v, want 10:30", start)
	}

	// Invalid
	_, _, err = defaultTimeRange("not-a-date", "", 7)
	if err == nil {
		t.Error("expected error for invalid date")
	}
}

// TestListExercisesTool verifies the muscle group filter reaches the data source.
func TestListExercisesTool(t *testing.T) {
	h := newTestHandlers(t, nil)
	_, text := callTool(t, h.listExercises, map[string]any{"muscle_group": "back"})

	var got []models.Exercise
	if err := json.Unmarshal([]byte(text), &got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d exercises, want 2", len(got))
	}
	if got[0].Name != "Deadlift" || got[1].Name != "Pull Up" {
		t.Errorf("names = %q, %q", got[0].Name, got[1].Name)
	}
}

// TestGetWorkoutTool verifies resolution of names, the in-progress session
// and the not-found path.
func TestGetWorkoutTool(t *testing.T) {
	h := newTestHandlers(t, nil)

	_, text := callTool(t, h.getWorkout, map[string]any{"id": "w2"})
	var detail catalog.WorkoutDetail
	if err := json.Unmarshal([]byte(text), &detail); err != nil {
		t.Fatal(err)
	}
	if len(detail.Entries) != 3 || detail.Entries[1].ExerciseName != "Overhead Press" {
		t.Errorf("entries = %+v", detail.Entries)
	}
	if detail.InProgress == nil || detail.InProgress.LogID != "log2" {
		t.Errorf("inProgress = %+v, want log2", detail.InProgress)
	}

	res, _ := callTool(t, h.getWorkout, map[string]any{"id": "nope"})
	if !res.IsError {
		t.Error("expected tool error for unknown workout")
	}

	res, _ = callTool(t, h.getWorkout, map[string]any{})
	if !res.IsError {
		t.Error("expected tool error for missing id")
	}
}

// TestGetHistoryTool verifies the limit and workout name filter.
func TestGetHistoryTool(t *testing.T) {
	h := newTestHandlers(t, nil)

	_, text := callTool(t, h.getHistory, map[string]any{})
	var all []catalog.HistoryEntry
	if err := json.Unmarshal([]byte(text), &all); err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 || all[0].LogID != "log2" {
		t.Fatalf("history = %+v, want newest first", all)
	}

	_, text = callTool(t, h.getHistory, map[string]any{"workout": "strength a", "limit": 5})
	var filtered []catalog.HistoryEntry
	if err := json.Unmarshal([]byte(text), &filtered); err != nil {
		t.Fatal(err)
	}
	if len(filtered) != 1 || filtered[0].LogID != "log1" {
		t.Errorf("filtered = %+v, want log1", filtered)
	}
	if filtered[0].DurationMinutes == nil || *filtered[0].DurationMinutes != 45 {
		t.Errorf("duration = %v, want 45", filtered[0].DurationMinutes)
	}
}

// TestGetBodyWeightTool verifies range filtering and the summary values.
func TestGetBodyWeightTool(t *testing.T) {
	h := newTestHandlers(t, nil)
	_, text := callTool(t, h.getBodyWeight, map[string]any{"start": "2024-06-01", "end": "2024-07-31"})

	var got bodyWeightResult
	if err := json.Unmarshal([]byte(text), &got); err != nil {
		t.Fatal(err)
	}
	if got.Count != 4 {
		t.Fatalf("count = %d, want 4", got.Count)
	}
	if *got.Min != 83.5 || *got.Max != 84.7 {
		t.Errorf("min/max = %v/%v, want 83.5/84.7", *got.Min, *got.Max)
	}
	if got.Latest.Weight != 83.5 {
		t.Errorf("latest = %v, want 83.5", got.Latest.Weight)
	}
	if d := *got.Change; d > -1.19 || d < -1.21 {
		t.Errorf("change = %v, want -1.2", d)
	}

	res, _ := callTool(t, h.getBodyWeight, map[string]any{"start": "last week"})
	if !res.IsError {
		t.Error("expected tool error for invalid date")
	}
}

// TestSuggestWorkoutTool verifies stored history is used when none is given
// and failures are reported as tool errors.
func TestSuggestWorkoutTool(t *testing.T) {
	rec := &recordingSuggester{}
	h := newTestHandlers(t, rec)

	res, text := callTool(t, h.suggestWorkout, map[string]any{"fitness_goals": "get stronger"})
	if res.IsError {
		t.Fatalf("unexpected tool error: %s", text)
	}
	if text != "Monday: squats" {
		t.Errorf("text = %q", text)
	}
	if !strings.Contains(rec.got.WorkoutHistory, "Full Body Strength A") {
		t.Errorf("history = %q, want the finished session", rec.got.WorkoutHistory)
	}

	callTool(t, h.suggestWorkout, map[string]any{"fitness_goals": "x", "workout_history": "ran 5k"})
	if rec.got.WorkoutHistory != "ran 5k" {
		t.Errorf("history = %q, want explicit value", rec.got.WorkoutHistory)
	}

	rec.err = errors.Join(suggest.ErrSuggestionFailed, errors.New("upstream 500"))
	res, text = callTool(t, h.suggestWorkout, map[string]any{"fitness_goals": "x"})
	if !res.IsError || text != suggest.ErrSuggestionFailed.Error() {
		t.Errorf("result = %v %q, want suggestion failure", res.IsError, text)
	}

	none := newTestHandlers(t, nil)
	res, _ = callTool(t, none.suggestWorkout, map[string]any{"fitness_goals": "x"})
	if !res.IsError {
		t.Error("expected tool error without a suggester")
	}
}

// TestSummaryResource verifies the summary lists in-progress workouts and
// only finished sessions as recent.
func TestSummaryResource(t *testing.T) {
	h := newTestHandlers(t, nil)
	var req mcp.ReadResourceRequest
	req.Params.URI = "fittrack://summary"

	contents, err := h.summary(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	text := contents[0].(mcp.TextResourceContents).Text

	var got struct {
		ExerciseCount int                    `json:"exercise_count"`
		WorkoutCount  int                    `json:"workout_count"`
		InProgress    []inProgressWorkout    `json:"in_progress"`
		Latest        models.BodyMeasurement `json:"latest_body_weight"`
		Recent        []catalog.HistoryEntry `json:"recent_sessions"`
	}
	if err := json.Unmarshal([]byte(text), &got); err != nil {
		t.Fatal(err)
	}
	if got.ExerciseCount != 8 || got.WorkoutCount != 3 {
		t.Errorf("counts = %d/%d, want 8/3", got.ExerciseCount, got.WorkoutCount)
	}
	if len(got.InProgress) != 1 || got.InProgress[0].WorkoutID != "w2" {
		t.Errorf("in progress = %+v", got.InProgress)
	}
	if len(got.Recent) != 1 || got.Recent[0].LogID != "log1" {
		t.Errorf("recent = %+v", got.Recent)
	}
	if got.Latest.Weight != 83.5 {
		t.Errorf("latest weight = %v, want 83.5", got.Latest.Weight)
	}
}

// TestNewRegistersTools verifies the server lists every tool.
func TestNewRegistersTools(t *testing.T) {
	store := storage.NewMemoryStore(nil)
	svc := catalog.NewService(store, catalog.NewIDGen(), logging.Discard())
	s := New(svc, nil, "test", logging.Discard())

	msg := s.HandleMessage(context.Background(), json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	out, err := json.Marshal(msg)
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"list_exercises", "list_workouts", "get_workout", "get_history", "get_body_weight", "suggest_workout"} {
		if !strings.Contains(string(out), `"`+name+`"`) {
			t.Errorf("tools/list missing %s: %s", name, out)
		}
	}
}
