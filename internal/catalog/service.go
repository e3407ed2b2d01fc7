package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/claude/fittrack/internal/models"
	"github.com/claude/fittrack/internal/storage"
)

// Service runs every CRUD operation as load whole document, compute the new
// collection, save whole document. Concurrent writers overwrite each other
// (last write wins).
type Service struct {
	store storage.Store
	ids   *IDGen
	log   *slog.Logger
}

// NewService creates a catalog service over store.
func NewService(store storage.Store, ids *IDGen, log *slog.Logger) *Service {
	if ids == nil {
		ids = NewIDGen()
	}
	return &Service{store: store, ids: ids, log: log}
}

// IDs exposes the id generator so the player creates log ids from the same sequence.
func (s *Service) IDs() *IDGen {
	return s.ids
}

// Document returns the current document.
func (s *Service) Document(ctx context.Context) (*models.AppData, error) {
	doc, err := s.store.Load(ctx)
	if err != nil {
		s.log.Error("loading app data", "error", err)
		return nil, err
	}
	return doc, nil
}

func (s *Service) mutate(ctx context.Context, op string, fn func(*models.AppData) (*models.AppData, error)) error {
	doc, err := s.Document(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	next, err := fn(doc)
	if err != nil {
		return err
	}
	if err := s.store.Save(ctx, next); err != nil {
		s.log.Error("saving app data", "op", op, "error", err)
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListExercises returns exercises sorted by name, optionally limited to one
// muscle group (case-insensitive).
func (s *Service) ListExercises(ctx context.Context, muscleGroup string) ([]models.Exercise, error) {
	doc, err := s.Document(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.Exercise, 0, len(doc.Exercises))
	for _, ex := range doc.Exercises {
		if muscleGroup == "" || strings.EqualFold(ex.MuscleGroup, muscleGroup) {
			out = append(out, ex)
		}
	}
	slices.SortStableFunc(out, func(a, b models.Exercise) int {
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})
	return out, nil
}

// CreateExercise assigns a new id to ex and stores it.
func (s *Service) CreateExercise(ctx context.Context, ex models.Exercise) (models.Exercise, error) {
	ex.ID = s.ids.Next(prefixExercise)
	err := s.mutate(ctx, "create exercise", func(doc *models.AppData) (*models.AppData, error) {
		return AddExercise(doc, ex)
	})
	if err != nil {
		return models.Exercise{}, err
	}
	s.log.Info("exercise created", "id", ex.ID, "name", ex.Name)
	return ex, nil
}

// UpdateExercise replaces the stored exercise with the same id.
func (s *Service) UpdateExercise(ctx context.Context, ex models.Exercise) error {
	return s.mutate(ctx, "update exercise", func(doc *models.AppData) (*models.AppData, error) {
		return ReplaceExercise(doc, ex)
	})
}

// DeleteExercise removes an exercise without touching workouts.
func (s *Service) DeleteExercise(ctx context.Context, id string) error {
	err := s.mutate(ctx, "delete exercise", func(doc *models.AppData) (*models.AppData, error) {
		return RemoveExercise(doc, id)
	})
	if err == nil {
		s.log.Info("exercise deleted", "id", id)
	}
	return err
}

// ListWorkouts returns every workout with resolved entries.
func (s *Service) ListWorkouts(ctx context.Context) ([]WorkoutDetail, error) {
	doc, err := s.Document(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]WorkoutDetail, 0, len(doc.Workouts))
	for _, w := range doc.Workouts {
		out = append(out, describeWorkout(doc, w))
	}
	return out, nil
}

// GetWorkout returns one workout with resolved entries.
func (s *Service) GetWorkout(ctx context.Context, id string) (*WorkoutDetail, error) {
	doc, err := s.Document(ctx)
	if err != nil {
		return nil, err
	}
	w, ok := doc.FindWorkout(id)
	if !ok {
		return nil, fmt.Errorf("workout %s: %w", id, ErrNotFound)
	}
	d := describeWorkout(doc, *w)
	return &d, nil
}

// CreateWorkout assigns a new id to w and stores it.
func (s *Service) CreateWorkout(ctx context.Context, w models.Workout) (models.Workout, error) {
	w.ID = s.ids.Next(prefixWorkout)
	err := s.mutate(ctx, "create workout", func(doc *models.AppData) (*models.AppData, error) {
		return AddWorkout(doc, w)
	})
	if err != nil {
		return models.Workout{}, err
	}
	s.log.Info("workout created", "id", w.ID, "exercises", len(w.Exercises))
	return w, nil
}

// UpdateWorkout replaces the stored workout with the same id.
func (s *Service) UpdateWorkout(ctx context.Context, w models.Workout) error {
	return s.mutate(ctx, "update workout", func(doc *models.AppData) (*models.AppData, error) {
		return ReplaceWorkout(doc, w)
	})
}

// DeleteWorkout removes a workout and its logs.
func (s *Service) DeleteWorkout(ctx context.Context, id string) error {
	err := s.mutate(ctx, "delete workout", func(doc *models.AppData) (*models.AppData, error) {
		return RemoveWorkout(doc, id)
	})
	if err == nil {
		s.log.Info("workout deleted", "id", id)
	}
	return err
}

// AddExerciseToWorkout appends exerciseID to a workout using the exercise defaults.
func (s *Service) AddExerciseToWorkout(ctx context.Context, workoutID, exerciseID string, overrides models.Prescription) (*WorkoutDetail, error) {
	var detail WorkoutDetail
	err := s.mutate(ctx, "add exercise to workout", func(doc *models.AppData) (*models.AppData, error) {
		next, err := AppendWorkoutExercise(doc, workoutID, exerciseID, overrides)
		if err != nil {
			return nil, err
		}
		w, _ := next.FindWorkout(workoutID)
		detail = describeWorkout(next, *w)
		return next, nil
	})
	if err != nil {
		return nil, err
	}
	return &detail, nil
}

// StartOver discards the in-progress log of a workout so the next start
// creates a fresh one.
func (s *Service) StartOver(ctx context.Context, workoutID string) error {
	err := s.mutate(ctx, "start over", func(doc *models.AppData) (*models.AppData, error) {
		if _, ok := doc.FindWorkout(workoutID); !ok {
			return nil, fmt.Errorf("workout %s: %w", workoutID, ErrNotFound)
		}
		return RemoveInProgressLog(doc, workoutID), nil
	})
	if err == nil {
		s.log.Info("in-progress log discarded", "workout_id", workoutID)
	}
	return err
}

// ListHistory returns all logs, newest first.
func (s *Service) ListHistory(ctx context.Context) ([]HistoryEntry, error) {
	doc, err := s.Document(ctx)
	if err != nil {
		return nil, err
	}
	return history(doc), nil
}

// DeleteLog removes one log.
func (s *Service) DeleteLog(ctx context.Context, id string) error {
	return s.mutate(ctx, "delete log", func(doc *models.AppData) (*models.AppData, error) {
		return RemoveLog(doc, id)
	})
}

// ClearHistory removes all completed logs.
func (s *Service) ClearHistory(ctx context.Context) error {
	return s.mutate(ctx, "clear history", func(doc *models.AppData) (*models.AppData, error) {
		return RemoveCompletedLogs(doc), nil
	})
}

// ListMeasurements returns the body-weight series in chronological order.
func (s *Service) ListMeasurements(ctx context.Context) ([]models.BodyMeasurement, error) {
	doc, err := s.Document(ctx)
	if err != nil {
		return nil, err
	}
	out := slices.Clone(doc.BodyMeasurements)
	slices.SortStableFunc(out, func(a, b models.BodyMeasurement) int {
		return a.Datetime.Compare(b.Datetime)
	})
	return out, nil
}

// AddMeasurement appends a measurement. A zero datetime means now.
func (s *Service) AddMeasurement(ctx context.Context, m models.BodyMeasurement) (models.BodyMeasurement, error) {
	if m.Datetime.IsZero() {
		m.Datetime = time.Now().UTC()
	}
	err := s.mutate(ctx, "add measurement", func(doc *models.AppData) (*models.AppData, error) {
		return AddMeasurement(doc, m)
	})
	return m, err
}

// DeleteMeasurement removes the measurements taken at datetime.
func (s *Service) DeleteMeasurement(ctx context.Context, datetime time.Time) error {
	return s.mutate(ctx, "delete measurement", func(doc *models.AppData) (*models.AppData, error) {
		return RemoveMeasurement(doc, datetime)
	})
}

// Replace validates doc and stores it in place of the current document.
func (s *Service) Replace(ctx context.Context, doc *models.AppData) error {
	doc.Normalize()
	if err := doc.Validate(); err != nil {
		return err
	}
	if err := s.store.Save(ctx, doc); err != nil {
		s.log.Error("saving app data", "op", "replace", "error", err)
		return fmt.Errorf("replace document: %w", err)
	}
	s.log.Info("document replaced",
		"exercises", len(doc.Exercises),
		"workouts", len(doc.Workouts),
		"logs", len(doc.WorkoutLogs))
	return nil
}
