package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/claude/fittrack/internal/player"
	"github.com/claude/fittrack/internal/storage"
)

type openSessionRequest struct {
	WorkoutID string `json:"workoutId"`
}

// handleOpenSession starts or resumes a workout. A session whose first save
// failed is still returned; its snapshot carries the error.
func (s *Server) handleOpenSession(w http.ResponseWriter, r *http.Request) {
	var req openSessionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.WorkoutID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "workoutId required"})
		return
	}
	sess, err := s.players.Open(r.Context(), req.WorkoutID)
	if sess == nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sess.Snapshot())
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.players.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

type sessionActionFunc func(ctx context.Context, sess *player.Session) error

func completeAction(ctx context.Context, sess *player.Session) error { return sess.MarkComplete(ctx) }
func skipAction(ctx context.Context, sess *player.Session) error     { return sess.Skip(ctx) }
func skipRestAction(ctx context.Context, sess *player.Session) error { return sess.SkipRest(ctx) }
func finishAction(ctx context.Context, sess *player.Session) error   { return sess.Finish(ctx) }
func saveAction(ctx context.Context, sess *player.Session) error     { return sess.SaveProgress(ctx) }

func toggleTimerAction(_ context.Context, sess *player.Session) error {
	_, err := sess.ToggleExerciseTimer()
	return err
}

func extendRestAction(_ context.Context, sess *player.Session) error {
	return sess.ExtendRest()
}

// sessionAction runs one player event and answers with the new snapshot.
// Save failures, here and on exit, still answer 200 with the snapshot
// since the in-memory state moved on; the client sees lastError and may
// retry the event or save.
func (s *Server) sessionAction(fn sessionActionFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := s.players.Get(chi.URLParam(r, "id"))
		if err != nil {
			s.writeError(w, err)
			return
		}
		if err := fn(r.Context(), sess); err != nil && !errors.Is(err, storage.ErrStorage) {
			s.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sess.Snapshot())
	}
}

// handleExitSession answers a failed save like sessionAction does; the
// snapshot is then not closed and the session stays registered.
func (s *Server) handleExitSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sess, err := s.players.Get(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.players.Exit(r.Context(), id); err != nil && !errors.Is(err, storage.ErrStorage) {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

// handleSessionEvents streams snapshots as server-sent events until the
// session closes or the client goes away.
func (s *Server) handleSessionEvents(w http.ResponseWriter, r *http.Request) {
	sess, err := s.players.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "streaming not supported"})
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, release := sess.Subscribe()
	defer release()

	fmt.Fprintf(w, "event: snapshot\ndata: %s\n\n", mustJSON(sess.Snapshot()))
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case snap, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: snapshot\ndata: %s\n\n", mustJSON(snap))
			flusher.Flush()
			if snap.State == player.StateFinished || snap.Closed {
				return
			}
		}
	}
}
