package handlers

import (
	"net/http"
	"strconv"

	"pecunia-backend/internal/services"
	"pecunia-backend/pkg/httputil"

	"go.uber.org/zap"
)

const defaultTranscriptPageSize = 50

// TranscriptHandlers exposes the session archive.
type TranscriptHandlers struct {
	sessions *services.SessionService
	logger   *zap.Logger
}

// NewTranscriptHandlers creates a new TranscriptHandlers instance.
func NewTranscriptHandlers(sessions *services.SessionService, logger *zap.Logger) *TranscriptHandlers {
	return &TranscriptHandlers{
		sessions: sessions,
		logger:   logger.Named("transcript_handlers"),
	}
}

// HandleListTranscripts lists archived sessions, newest activity first.
// Accepts optional limit and offset query parameters.
func (h *TranscriptHandlers) HandleListTranscripts(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", defaultTranscriptPageSize)
	if err != nil || limit <= 0 {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid limit")
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil || offset < 0 {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid offset")
		return
	}

	list, err := h.sessions.List(r.Context(), limit, offset)
	if err != nil {
		respondServiceError(w, h.logger, err, "list transcripts")
		return
	}
	httputil.RespondJSON(w, http.StatusOK, list)
}

// HandleGetTranscript returns the archived log of one session.
func (h *TranscriptHandlers) HandleGetTranscript(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionIDParam(w, r)
	if !ok {
		return
	}
	t, err := h.sessions.Transcript(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "get transcript")
		return
	}
	httputil.RespondJSON(w, http.StatusOK, t)
}

func queryInt(r *http.Request, key string, fallback int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}
