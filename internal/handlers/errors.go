package handlers

import (
	"errors"
	"net/http"

	"pecunia-backend/internal/gateway"
	"pecunia-backend/internal/services"
	"pecunia-backend/internal/session"
	"pecunia-backend/internal/store"
	"pecunia-backend/pkg/httputil"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// sessionIDParam parses the {sessionID} URL parameter. On failure it has
// already written a 400 response.
func sessionIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "sessionID"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid session ID")
		return uuid.Nil, false
	}
	return id, true
}

// respondServiceError maps service errors onto HTTP statuses.
func respondServiceError(w http.ResponseWriter, logger *zap.Logger, err error, action string) {
	switch {
	case errors.Is(err, session.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, "Session not found")
	case errors.Is(err, store.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, "Transcript not found")
	case errors.Is(err, services.ErrEmptyMessage),
		errors.Is(err, services.ErrNotInsightCategory),
		errors.Is(err, services.ErrInvalidGoal),
		errors.Is(err, services.ErrNoTransactions),
		errors.Is(err, services.ErrMissingPage),
		errors.Is(err, services.ErrUnknownSuggestionKind):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	default:
		if gwErr, ok := gateway.AsError(err); ok {
			logger.Warn("analysis backend failed", zap.String("action", action), zap.Error(gwErr))
			httputil.RespondError(w, http.StatusBadGateway, "Analysis service unavailable")
			return
		}
		logger.Error("request failed", zap.String("action", action), zap.Error(err))
		httputil.RespondError(w, http.StatusInternalServerError, "Failed to "+action)
	}
}
