package adapthttp

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"moods/internal/app"
	"moods/internal/domain"
)

func (s *Server) handleMoods(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]any{"moods": s.moods.List()})
	case http.MethodPost:
		s.handleSelectMood(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleSelectMood(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Mood domain.MoodOption `json:"mood"`
	}
	if err := parseJSON(w, r, &body); err != nil {
		writeError(w, bodyStatus(err), err)
		return
	}
	entry, err := s.moods.SelectMood(r.Context(), body.Mood)
	if err != nil {
		writeError(w, mutationStatus(err), err)
		return
	}
	s.log.Debug().Str("owner", ownerFromContext(r.Context())).Int64("timestamp", entry.Timestamp).Msg("mood recorded")
	writeJSON(w, http.StatusOK, map[string]any{"entry": entry})
}

func (s *Server) handleMoodByTimestamp(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	ts, err := strconv.ParseInt(r.PathValue("timestamp"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("timestamp must be an integer"))
		return
	}
	deleted, err := s.moods.DeleteMood(r.Context(), ts)
	if err != nil {
		writeError(w, mutationStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": deleted})
}

func mutationStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidMood):
		return http.StatusBadRequest
	case errors.Is(err, app.ErrDeleteDisabled):
		return http.StatusMethodNotAllowed
	case errors.Is(err, app.ErrProviderClosed),
		errors.Is(err, app.ErrNotStarted),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
