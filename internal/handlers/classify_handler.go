package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"pecunia-backend/internal/intent"
	"pecunia-backend/internal/models"
	"pecunia-backend/pkg/httputil"
)

// ClassifyHandler reports how a text would be routed, without dispatching it.
type ClassifyHandler struct {
	now func() time.Time
}

// NewClassifyHandler creates a new ClassifyHandler. A nil clock means time.Now.
func NewClassifyHandler(now func() time.Time) *ClassifyHandler {
	if now == nil {
		now = time.Now
	}
	return &ClassifyHandler{now: now}
}

// HandleClassify returns the category for the text and, for travel and goal
// messages, the payload extracted against the default profile.
func (h *ClassifyHandler) HandleClassify(w http.ResponseWriter, r *http.Request) {
	var req models.ClassifyRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		httputil.RespondError(w, http.StatusBadRequest, "text is required")
		return
	}

	category := intent.Classify(req.Text)
	resp := models.ClassifyResponse{Category: category}

	var payload interface{}
	profile := models.DefaultProfile()
	switch category {
	case models.CategoryTravelPlanning:
		payload = intent.ExtractTravel(req.Text, profile)
	case models.CategoryGoalStrategy:
		payload = intent.ExtractGoal(req.Text, profile, h.now())
	}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			httputil.RespondError(w, http.StatusInternalServerError, "Failed to encode payload")
			return
		}
		resp.Payload = raw
	}

	httputil.RespondJSON(w, http.StatusOK, resp)
}
