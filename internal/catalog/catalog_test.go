package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claude/fittrack/internal/logging"
	"github.com/claude/fittrack/internal/models"
	"github.com/claude/fittrack/internal/storage"
)

type failingStore struct {
	*storage.MemoryStore
	failSave bool
}

func (s *failingStore) Save(ctx context.Context, doc *models.AppData) error {
	if s.failSave {
		return errors.Join(storage.ErrStorage, errors.New("disk full"))
	}
	return s.MemoryStore.Save(ctx, doc)
}

func newTestService(t *testing.T) (*Service, *storage.MemoryStore) {
	t.Helper()
	store := storage.NewMemoryStore(nil)
	return NewService(store, NewIDGen(), logging.Discard()), store
}

func intp(v int) *int { return &v }

func floatp(v float64) *float64 { return &v }

// TestIDGenStrictlyIncreasing verifies ids stay unique within one millisecond.
func TestIDGenStrictlyIncreasing(t *testing.T) {
	fixed := time.UnixMilli(1700000000000)
	g := &IDGen{now: func() time.Time { return fixed }}
	assert.Equal(t, "w1700000000000", g.Next(prefixWorkout))
	assert.Equal(t, "w1700000000001", g.Next(prefixWorkout))
	assert.Equal(t, "log1700000000002", g.NewLogID())
}

func TestListExercisesFilterAndOrder(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	all, err := svc.ListExercises(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 8)
	assert.Equal(t, "Barbell Bench Press", all[0].Name)
	assert.Equal(t, "Squat", all[len(all)-1].Name)

	back, err := svc.ListExercises(ctx, "back")
	require.NoError(t, err)
	require.Len(t, back, 2)
	assert.Equal(t, "Deadlift", back[0].Name)
	assert.Equal(t, "Pull Up", back[1].Name)
}

func TestCreateExerciseValidates(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateExercise(ctx, models.Exercise{Name: "Lunge"})
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "muscleGroup")
	assert.Contains(t, verr.Fields, "type")

	ex, err := svc.CreateExercise(ctx, models.Exercise{Name: "Lunge", MuscleGroup: "Legs", Type: models.ExerciseWeighted})
	require.NoError(t, err)
	assert.Regexp(t, `^ex\d+$`, ex.ID)

	list, err := svc.ListExercises(ctx, "legs")
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

// TestDeleteExerciseLeavesDanglingReference verifies workouts keep entries
// for a deleted exercise and render them with the unknown label.
func TestDeleteExerciseLeavesDanglingReference(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.DeleteExercise(ctx, "ex1"))

	w, err := svc.GetWorkout(ctx, "w1")
	require.NoError(t, err)
	require.Len(t, w.Entries, 3)
	assert.Equal(t, "ex1", w.Entries[1].ExerciseID)
	assert.Equal(t, models.UnknownExerciseName, w.Entries[1].ExerciseName)
	assert.True(t, w.Entries[1].Missing)
	assert.Equal(t, "Squat", w.Entries[0].ExerciseName)

	assert.ErrorIs(t, svc.DeleteExercise(ctx, "ex1"), ErrNotFound)
}

func TestUpdateExerciseNotFound(t *testing.T) {
	svc, _ := newTestService(t)
	err := svc.UpdateExercise(context.Background(), models.Exercise{ID: "nope", Name: "X", MuscleGroup: "Y", Type: models.ExerciseWeighted})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateWorkout(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateWorkout(ctx, models.Workout{Name: "Empty", Description: "nothing"})
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "exercises")

	w, err := svc.CreateWorkout(ctx, models.Workout{
		Name:        "Arms",
		Description: "curls",
		Exercises:   []models.WorkoutExercise{{ExerciseID: "ex8", Sets: 3, Reps: intp(12), Weight: floatp(10)}},
	})
	require.NoError(t, err)
	assert.Regexp(t, `^w\d+$`, w.ID)

	all, err := svc.ListWorkouts(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestCreateWorkoutRejectsDuplicateEntries(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.CreateWorkout(context.Background(), models.Workout{
		Name:        "Twice",
		Description: "same exercise",
		Exercises: []models.WorkoutExercise{
			{ExerciseID: "ex6", Sets: 1, Duration: intp(30)},
			{ExerciseID: "ex6", Sets: 1, Duration: intp(30)},
		},
	})
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "exercises.1.exerciseId")
}

// TestAddExerciseToWorkoutAppliesDefaults verifies the new entry is filled
// from overrides, then exercise defaults, then fallbacks.
func TestAddExerciseToWorkoutAppliesDefaults(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	d, err := svc.AddExerciseToWorkout(ctx, "w3", "ex1", models.Prescription{Reps: intp(10)})
	require.NoError(t, err)
	require.Len(t, d.Entries, 3)
	last := d.Entries[2]
	assert.Equal(t, "Barbell Bench Press", last.ExerciseName)
	assert.Equal(t, 3, last.Sets)
	assert.Equal(t, 10, *last.Reps)
	assert.Equal(t, 60.0, *last.Weight)
	assert.Equal(t, 90, last.Rest())

	_, err = svc.AddExerciseToWorkout(ctx, "w3", "ex1", models.Prescription{})
	assert.ErrorIs(t, err, ErrDuplicateExercise)

	_, err = svc.AddExerciseToWorkout(ctx, "w3", "missing", models.Prescription{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteWorkoutCascadesLogs(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	doc, err := store.Load(ctx)
	require.NoError(t, err)
	doc = doc.WithLog(models.WorkoutLog{ID: "log1", WorkoutID: "w1", Status: models.LogCompleted, Date: time.Now()})
	doc = doc.WithLog(models.WorkoutLog{ID: "log2", WorkoutID: "w2", Status: models.LogCompleted, Date: time.Now()})
	require.NoError(t, store.Save(ctx, doc))

	require.NoError(t, svc.DeleteWorkout(ctx, "w1"))

	after, err := store.Load(ctx)
	require.NoError(t, err)
	_, ok := after.FindLog("log1")
	assert.False(t, ok)
	_, ok = after.FindLog("log2")
	assert.True(t, ok)
}

// TestStartOverRemovesOnlyInProgress verifies completed history survives a
// start over.
func TestStartOverRemovesOnlyInProgress(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	doc, err := store.Load(ctx)
	require.NoError(t, err)
	doc = doc.WithLog(models.WorkoutLog{ID: "log1", WorkoutID: "w1", Status: models.LogCompleted, Date: time.Now()})
	doc = doc.WithLog(models.WorkoutLog{ID: "log2", WorkoutID: "w1", Status: models.LogInProgress, Date: time.Now(), CurrentExerciseIndex: 1})
	require.NoError(t, store.Save(ctx, doc))

	w, err := svc.GetWorkout(ctx, "w1")
	require.NoError(t, err)
	require.NotNil(t, w.InProgress)
	assert.Equal(t, "log2", w.InProgress.LogID)

	require.NoError(t, svc.StartOver(ctx, "w1"))

	w, err = svc.GetWorkout(ctx, "w1")
	require.NoError(t, err)
	assert.Nil(t, w.InProgress)

	hist, err := svc.ListHistory(ctx)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.Equal(t, "log1", hist[0].LogID)

	assert.ErrorIs(t, svc.StartOver(ctx, "nope"), ErrNotFound)
}

func TestHistoryOrderingAndSummary(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	start := time.Date(2024, 7, 1, 8, 0, 0, 0, time.UTC)
	end := start.Add(45 * time.Minute)
	doc, err := store.Load(ctx)
	require.NoError(t, err)
	doc = doc.WithLog(models.WorkoutLog{
		ID: "log1", WorkoutID: "w1", Date: start, EndTime: &end, Status: models.LogCompleted,
		ExerciseStatuses: map[int]models.ExerciseStatus{0: models.StatusCompleted, 1: models.StatusSkipped, 2: models.StatusCompleted},
	})
	doc = doc.WithLog(models.WorkoutLog{ID: "log2", WorkoutID: "gone", Date: start.Add(24 * time.Hour), Status: models.LogInProgress})
	require.NoError(t, store.Save(ctx, doc))

	hist, err := svc.ListHistory(ctx)
	require.NoError(t, err)
	require.Len(t, hist, 2)

	assert.Equal(t, "log2", hist[0].LogID)
	assert.Equal(t, unknownWorkoutName, hist[0].WorkoutName)
	assert.Nil(t, hist[0].DurationMinutes)

	assert.Equal(t, "Full Body Strength A", hist[1].WorkoutName)
	assert.Equal(t, 2, hist[1].Completed)
	assert.Equal(t, 1, hist[1].Skipped)
	assert.Equal(t, 3, hist[1].Total)
	require.NotNil(t, hist[1].DurationMinutes)
	assert.InDelta(t, 45.0, *hist[1].DurationMinutes, 0.001)

	require.NoError(t, svc.ClearHistory(ctx))
	hist, err = svc.ListHistory(ctx)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.Equal(t, models.LogInProgress, hist[0].Status)

	require.NoError(t, svc.DeleteLog(ctx, "log2"))
	assert.ErrorIs(t, svc.DeleteLog(ctx, "log2"), ErrNotFound)
}

func TestMeasurements(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	early := time.Date(2024, 4, 1, 8, 0, 0, 0, time.UTC)
	_, err := svc.AddMeasurement(ctx, models.BodyMeasurement{Datetime: early, Weight: 86.1})
	require.NoError(t, err)

	ms, err := svc.ListMeasurements(ctx)
	require.NoError(t, err)
	require.Len(t, ms, 7)
	assert.True(t, ms[0].Datetime.Equal(early))

	_, err = svc.AddMeasurement(ctx, models.BodyMeasurement{Weight: -1})
	var verr *models.ValidationError
	assert.ErrorAs(t, err, &verr)

	require.NoError(t, svc.DeleteMeasurement(ctx, early))
	assert.ErrorIs(t, svc.DeleteMeasurement(ctx, early), ErrNotFound)
}

// TestSaveFailureLeavesStoreUntouched verifies a failed save surfaces a
// storage error and the previous document stays readable.
func TestSaveFailureLeavesStoreUntouched(t *testing.T) {
	store := &failingStore{MemoryStore: storage.NewMemoryStore(nil), failSave: true}
	svc := NewService(store, nil, logging.Discard())
	ctx := context.Background()

	err := svc.DeleteWorkout(ctx, "w1")
	require.ErrorIs(t, err, storage.ErrStorage)

	_, err = svc.GetWorkout(ctx, "w1")
	assert.NoError(t, err)
}
