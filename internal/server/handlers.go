package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/claude/fittrack/internal/catalog"
	"github.com/claude/fittrack/internal/models"
	"github.com/claude/fittrack/internal/player"
	"github.com/claude/fittrack/internal/storage"
	"github.com/claude/fittrack/internal/suggest"
)

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userInfoFromContext(r))
}

func (s *Server) handleListExercises(w http.ResponseWriter, r *http.Request) {
	list, err := s.catalog.ListExercises(r.Context(), r.URL.Query().Get("muscleGroup"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleCreateExercise(w http.ResponseWriter, r *http.Request) {
	var ex models.Exercise
	if !decodeJSON(w, r, &ex) {
		return
	}
	created, err := s.catalog.CreateExercise(r.Context(), ex)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateExercise(w http.ResponseWriter, r *http.Request) {
	var ex models.Exercise
	if !decodeJSON(w, r, &ex) {
		return
	}
	ex.ID = chi.URLParam(r, "id")
	if err := s.catalog.UpdateExercise(r.Context(), ex); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ex)
}

func (s *Server) handleDeleteExercise(w http.ResponseWriter, r *http.Request) {
	if err := s.catalog.DeleteExercise(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListWorkouts(w http.ResponseWriter, r *http.Request) {
	list, err := s.catalog.ListWorkouts(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetWorkout(w http.ResponseWriter, r *http.Request) {
	detail, err := s.catalog.GetWorkout(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleCreateWorkout(w http.ResponseWriter, r *http.Request) {
	var wo models.Workout
	if !decodeJSON(w, r, &wo) {
		return
	}
	created, err := s.catalog.CreateWorkout(r.Context(), wo)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateWorkout(w http.ResponseWriter, r *http.Request) {
	var wo models.Workout
	if !decodeJSON(w, r, &wo) {
		return
	}
	wo.ID = chi.URLParam(r, "id")
	if err := s.catalog.UpdateWorkout(r.Context(), wo); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, wo)
}

func (s *Server) handleDeleteWorkout(w http.ResponseWriter, r *http.Request) {
	if err := s.players.DeleteWorkout(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// addExerciseRequest names the exercise to append plus optional explicit values.
type addExerciseRequest struct {
	ExerciseID string `json:"exerciseId"`
	models.Prescription
}

func (s *Server) handleAddWorkoutExercise(w http.ResponseWriter, r *http.Request) {
	var req addExerciseRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ExerciseID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "exerciseId required"})
		return
	}
	detail, err := s.catalog.AddExerciseToWorkout(r.Context(), chi.URLParam(r, "id"), req.ExerciseID, req.Prescription)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleStartOver(w http.ResponseWriter, r *http.Request) {
	if err := s.players.StartOver(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListHistory(w http.ResponseWriter, r *http.Request) {
	hist, err := s.catalog.ListHistory(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, hist)
}

func (s *Server) handleDeleteLog(w http.ResponseWriter, r *http.Request) {
	if err := s.players.DeleteLog(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	if err := s.catalog.ClearHistory(r.Context()); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListMeasurements(w http.ResponseWriter, r *http.Request) {
	ms, err := s.catalog.ListMeasurements(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ms)
}

func (s *Server) handleAddMeasurement(w http.ResponseWriter, r *http.Request) {
	var m models.BodyMeasurement
	if !decodeJSON(w, r, &m) {
		return
	}
	added, err := s.catalog.AddMeasurement(r.Context(), m)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, added)
}

func (s *Server) handleDeleteMeasurement(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("datetime")
	if raw == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "datetime parameter required"})
		return
	}
	at, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "datetime must be RFC 3339"})
		return
	}
	if err := s.catalog.DeleteMeasurement(r.Context(), at); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeError maps domain errors onto HTTP statuses.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"error": "validation failed", "fields": verr.Fields})
	case errors.Is(err, catalog.ErrNotFound),
		errors.Is(err, player.ErrWorkoutNotFound),
		errors.Is(err, player.ErrSessionNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, catalog.ErrDuplicateExercise),
		errors.Is(err, player.ErrNotActive),
		errors.Is(err, player.ErrNotResting),
		errors.Is(err, player.ErrNoTimer),
		errors.Is(err, player.ErrFinished),
		errors.Is(err, player.ErrClosed),
		errors.Is(err, player.ErrDetached):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, suggest.ErrMissingInput):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": suggest.ErrMissingInput.Error()})
	case errors.Is(err, suggest.ErrSuggestionFailed):
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": suggest.ErrSuggestionFailed.Error()})
	case errors.Is(err, storage.ErrStorage):
		s.log.Error("storage error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not save your changes, please try again"})
	default:
		s.log.Error("request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf(`{"error":%q}`, err.Error())
	}
	return string(b)
}
