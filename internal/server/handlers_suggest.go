package server

import (
	"errors"
	"net/http"

	"github.com/claude/fittrack/internal/models"
	"github.com/claude/fittrack/internal/suggest"
)

func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	if s.suggester == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "workout suggestions are not configured"})
		return
	}
	var req suggest.Request
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := s.suggester.Suggest(r.Context(), req)
	if err != nil {
		s.countSuggestion(err)
		s.writeError(w, err)
		return
	}
	s.countSuggestion(nil)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) countSuggestion(err error) {
	if s.metrics == nil {
		return
	}
	switch {
	case err == nil:
		s.metrics.SuggestionResult("ok")
	case errors.Is(err, suggest.ErrMissingInput):
		s.metrics.SuggestionResult("invalid")
	default:
		s.metrics.SuggestionResult("failed")
	}
}

// handleSuggestHistory returns recent finished workouts as text for the
// history field of a suggestion request.
func (s *Server) handleSuggestHistory(w http.ResponseWriter, r *http.Request) {
	doc, err := s.catalog.Document(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, suggest.Request{WorkoutHistory: suggest.HistoryText(doc)})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	doc, err := s.catalog.Document(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="fittrack.json"`)
	writeJSON(w, http.StatusOK, doc)
}

// handleImport stops live sessions and replaces the whole document after
// validating it.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	var doc models.AppData
	if !decodeJSON(w, r, &doc) {
		return
	}
	if err := s.players.Replace(r.Context(), &doc); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{
		"exercises":        len(doc.Exercises),
		"workouts":         len(doc.Workouts),
		"workoutLogs":      len(doc.WorkoutLogs),
		"bodyMeasurements": len(doc.BodyMeasurements),
	})
}
