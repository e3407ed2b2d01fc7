package mcp

import (
	"context"

	"github.com/claude/fittrack/internal/catalog"
	"github.com/claude/fittrack/internal/models"
)

// DataSource abstracts the data layer for MCP tools. Both *catalog.Service
// (local store) and HTTPClient (remote via REST API) satisfy this interface.
type DataSource interface {
	ListExercises(ctx context.Context, muscleGroup string) ([]models.Exercise, error)
	ListWorkouts(ctx context.Context) ([]catalog.WorkoutDetail, error)
	GetWorkout(ctx context.Context, id string) (*catalog.WorkoutDetail, error)
	ListHistory(ctx context.Context) ([]catalog.HistoryEntry, error)
	ListMeasurements(ctx context.Context) ([]models.BodyMeasurement, error)
	Document(ctx context.Context) (*models.AppData, error)
}

// Compile-time check: *catalog.Service satisfies DataSource.
var _ DataSource = (*catalog.Service)(nil)
