package network

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"coinrush/game"
	"coinrush/room"
)

type scoresResponse struct {
	Session string          `json:"session,omitempty"`
	Scores  game.ScoreTable `json:"scores"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleScores returns the live score table from the room.
func (s *Server) handleScores(w http.ResponseWriter, r *http.Request) {
	reply := make(chan game.ScoreTable, 1)
	timeout := time.After(2 * time.Second)

	select {
	case s.room.Inbox <- room.ScoresRequest{Reply: reply}:
	case <-timeout:
		writeError(w, http.StatusServiceUnavailable, "room is not responding")
		return
	case <-r.Context().Done():
		return
	}

	select {
	case scores := <-reply:
		resp := scoresResponse{Scores: scores}
		if s.session != uuid.Nil {
			resp.Session = s.session.String()
		}
		writeJSON(w, http.StatusOK, resp)
	case <-timeout:
		writeError(w, http.StatusServiceUnavailable, "room is not responding")
	case <-r.Context().Done():
	}
}

func (s *Server) handleSessionScores(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusNotFound, "score store disabled")
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid session id")
		return
	}
	rows, err := s.store.SessionScores(r.Context(), id)
	if err != nil {
		s.logger.Printf("session scores %s: %v", id, err)
		writeError(w, http.StatusInternalServerError, "failed to load scores")
		return
	}
	if len(rows) == 0 {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"session": id.String(), "scores": rows})
}
