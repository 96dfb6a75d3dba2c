package handlers

import (
	"errors"
	"io"
	"net/http"

	"pecunia-backend/internal/models"
	"pecunia-backend/internal/services"
	"pecunia-backend/pkg/httputil"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// InsightHandlers serves the dashboard analyses, profile edits and goal planning.
type InsightHandlers struct {
	insights *services.InsightService
	logger   *zap.Logger
}

// NewInsightHandlers creates a new InsightHandlers instance.
func NewInsightHandlers(insights *services.InsightService, logger *zap.Logger) *InsightHandlers {
	return &InsightHandlers{
		insights: insights,
		logger:   logger.Named("insight_handlers"),
	}
}

// HandleGetInsight returns the cached analysis for a category, fetching it on a miss.
func (h *InsightHandlers) HandleGetInsight(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionIDParam(w, r)
	if !ok {
		return
	}
	category, err := models.ParseTaskCategory(chi.URLParam(r, "category"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.insights.GetInsight(r.Context(), id, category)
	if err != nil {
		respondServiceError(w, h.logger, err, "get insight")
		return
	}
	httputil.RespondJSON(w, http.StatusOK, resp)
}

// HandlePatchProfile applies a partial profile update.
func (h *InsightHandlers) HandlePatchProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionIDParam(w, r)
	if !ok {
		return
	}

	var patch models.ProfilePatch
	if err := httputil.DecodeJSON(r, &patch); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if patch.IsEmpty() {
		httputil.RespondError(w, http.StatusBadRequest, "Profile patch is empty")
		return
	}

	profile, err := h.insights.PatchProfile(r.Context(), id, patch)
	if err != nil {
		respondServiceError(w, h.logger, err, "update profile")
		return
	}
	httputil.RespondJSON(w, http.StatusOK, profile)
}

// HandleAutomatedPlan runs the four profile analyses together. The body is
// optional and only names the plan type.
func (h *InsightHandlers) HandleAutomatedPlan(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionIDParam(w, r)
	if !ok {
		return
	}
	var req models.AutomatedPlanRequest
	if err := httputil.DecodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	plan, err := h.insights.AutomatedPlan(r.Context(), id, req.PlanType)
	if err != nil {
		respondServiceError(w, h.logger, err, "build plan")
		return
	}
	httputil.RespondJSON(w, http.StatusOK, plan)
}

// HandleGoalStrategy requests a strategy for an explicit goal.
func (h *InsightHandlers) HandleGoalStrategy(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionIDParam(w, r)
	if !ok {
		return
	}

	var req models.GoalStrategyRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.insights.GoalStrategy(r.Context(), id, req)
	if err != nil {
		respondServiceError(w, h.logger, err, "plan goal")
		return
	}
	httputil.RespondJSON(w, http.StatusOK, resp)
}

// HandleSpendingAnalysis sends the posted transactions for pattern analysis.
func (h *InsightHandlers) HandleSpendingAnalysis(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionIDParam(w, r)
	if !ok {
		return
	}

	var req models.SpendingAnalysisRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	res, err := h.insights.AnalyzeSpending(r.Context(), id, req)
	if err != nil {
		respondServiceError(w, h.logger, err, "analyze spending")
		return
	}
	httputil.RespondJSON(w, http.StatusOK, res)
}

// HandleSuggestions returns advice for the page named by ?page=. ?kind=help
// asks for contextual help instead of proactive suggestions.
func (h *InsightHandlers) HandleSuggestions(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionIDParam(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	res, err := h.insights.PageSuggestions(r.Context(), id, q.Get("page"), models.SuggestionKind(q.Get("kind")))
	if err != nil {
		respondServiceError(w, h.logger, err, "fetch suggestions")
		return
	}
	httputil.RespondJSON(w, http.StatusOK, res)
}
