package services

import (
	"context"
	"fmt"
	"strings"

	"pecunia-backend/internal/formatter"
	"pecunia-backend/internal/gateway"
	"pecunia-backend/internal/intent"
	"pecunia-backend/internal/models"
	"pecunia-backend/internal/session"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// InsightService backs the dashboard, goals and comparison surfaces. It shares
// each session's insight cache with the chat router.
type InsightService struct {
	sessions *session.Registry
	gateway  gateway.Gateway
	logger   *zap.Logger
}

// NewInsightService creates a new InsightService.
func NewInsightService(sessions *session.Registry, gw gateway.Gateway, logger *zap.Logger) *InsightService {
	return &InsightService{
		sessions: sessions,
		gateway:  gw,
		logger:   logger.Named("insights"),
	}
}

// GetInsight returns the cached insight for category, fetching it on a miss.
// Travel and goal insights use the extractor defaults (or the first profile goal).
func (s *InsightService) GetInsight(ctx context.Context, sessionID uuid.UUID, category models.TaskCategory) (*models.InsightResponse, error) {
	if !category.Valid() || category == models.CategoryGeneralChat {
		return nil, ErrNotInsightCategory
	}
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session %s: %w", sessionID, err)
	}

	ci, err := sess.GetOrFetchInsight(ctx, category, s.fetcher(sess, category))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s insight: %w", category, err)
	}
	return toInsightResponse(category, ci), nil
}

func (s *InsightService) fetcher(sess *session.Session, category models.TaskCategory) session.FetchFunc {
	return func(ctx context.Context, profile models.Profile) (models.AnalysisResult, error) {
		req := gateway.Request{Category: category, Profile: profile}
		switch category {
		case models.CategoryTravelPlanning:
			payload := intent.ExtractTravel("", profile)
			req.Travel = &payload
		case models.CategoryGoalStrategy:
			payload := intent.ExtractGoal("", profile, sess.Now())
			if len(profile.Goals) > 0 {
				payload = goalPayload(profile.Goals[0], profile, payload.Deadline)
			}
			req.Goal = &payload
		}
		return gateway.Dispatch(ctx, s.gateway, req)
	}
}

// PatchProfile merges patch into the session profile. Every cached insight
// is dropped; nothing is refetched until asked for.
func (s *InsightService) PatchProfile(_ context.Context, sessionID uuid.UUID, patch models.ProfilePatch) (*models.Profile, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session %s: %w", sessionID, err)
	}
	profile := sess.ApplyProfilePatch(patch)
	s.logger.Debug("profile patched", zap.Stringer("session_id", sessionID), zap.Uint64("generation", sess.Generation()))
	return &profile, nil
}

// AutomatedPlan fetches the four profile analyses concurrently through the
// insight cache and bundles them with automation steps and the current net
// worth. An empty planType means "comprehensive".
func (s *InsightService) AutomatedPlan(ctx context.Context, sessionID uuid.UUID, planType string) (*models.AutomatedPlan, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session %s: %w", sessionID, err)
	}

	planType = strings.TrimSpace(planType)
	if planType == "" {
		planType = defaultPlanType
	}
	plan := &models.AutomatedPlan{PlanType: planType}
	g, gctx := errgroup.WithContext(ctx)
	fetch := func(category models.TaskCategory, assign func(models.AnalysisResult) bool) {
		g.Go(func() error {
			ci, err := sess.GetOrFetchInsight(gctx, category, s.fetcher(sess, category))
			if err != nil {
				return fmt.Errorf("failed to fetch %s insight: %w", category, err)
			}
			if !assign(ci.Value) {
				return fmt.Errorf("unexpected %T result for %s", ci.Value, category)
			}
			return nil
		})
	}
	fetch(models.CategoryComprehensiveAnalysis, func(v models.AnalysisResult) (ok bool) {
		plan.Comprehensive, ok = v.(*models.ComprehensiveResult)
		return ok
	})
	fetch(models.CategoryBudgetOptimization, func(v models.AnalysisResult) (ok bool) {
		plan.Budget, ok = v.(*models.BudgetResult)
		return ok
	})
	fetch(models.CategoryInvestmentStrategy, func(v models.AnalysisResult) (ok bool) {
		plan.Investment, ok = v.(*models.InvestmentResult)
		return ok
	})
	fetch(models.CategoryCompetitiveInsights, func(v models.AnalysisResult) (ok bool) {
		plan.Competitive, ok = v.(*models.CompetitiveResult)
		return ok
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	profile := sess.Profile()
	plan.AutomationSuggestions = automationSuggestions(profile, plan.Budget, plan.Investment)
	plan.ImplementationTimeline = implementationTimeline()
	plan.NetWorth = profile.NetWorth()
	plan.GeneratedAt = sess.Now()
	return plan, nil
}

// AnalyzeSpending sends transactions for pattern analysis. Results are not cached.
func (s *InsightService) AnalyzeSpending(ctx context.Context, sessionID uuid.UUID, req models.SpendingAnalysisRequest) (*models.SpendingAnalysisResult, error) {
	if len(req.Transactions) == 0 {
		return nil, ErrNoTransactions
	}
	if _, err := s.sessions.Get(sessionID); err != nil {
		return nil, fmt.Errorf("failed to load session %s: %w", sessionID, err)
	}

	res, err := s.gateway.SpendingAnalysis(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to analyze spending: %w", err)
	}
	if res.Trends == nil {
		res.Trends = []models.SpendingTrend{}
	}
	if res.Alerts == nil {
		res.Alerts = []models.SpendingAlert{}
	}
	if res.Optimization == nil {
		res.Optimization = []models.SpendingOptimization{}
	}
	return res, nil
}

var suggestionPrompts = map[models.SuggestionKind]string{
	models.SuggestionProactive: "Based on my current financial situation and the page I'm viewing (%s), what specific actions should I take right now to improve my financial health?",
	models.SuggestionHelp:      "I'm currently on the %s page. Based on my financial profile, what specific actions should I take on this page to improve my financial situation?",
}

// PageSuggestions asks the chat backend what to do on an app page. The
// exchange is not added to the session log. An empty kind means proactive.
func (s *InsightService) PageSuggestions(ctx context.Context, sessionID uuid.UUID, page string, kind models.SuggestionKind) (*models.PageSuggestionResponse, error) {
	page = strings.TrimSpace(page)
	if page == "" {
		return nil, ErrMissingPage
	}
	if kind == "" {
		kind = models.SuggestionProactive
	}
	prompt, ok := suggestionPrompts[kind]
	if !ok {
		return nil, ErrUnknownSuggestionKind
	}
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session %s: %w", sessionID, err)
	}

	payload := models.ChatPayload{
		Message:     fmt.Sprintf(prompt, page),
		UserContext: models.ChatContext{Profile: sess.Profile(), Page: page},
	}
	result, err := gateway.Dispatch(ctx, s.gateway, gateway.Request{Category: models.CategoryGeneralChat, Chat: &payload})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s suggestions: %w", kind, err)
	}
	chat, ok := result.(*models.ChatResult)
	if !ok {
		return nil, fmt.Errorf("unexpected %T result for suggestions", result)
	}
	return &models.PageSuggestionResponse{
		Page:        page,
		Kind:        kind,
		Response:    chat.Response,
		GeneratedAt: sess.Now(),
	}, nil
}

// GoalStrategy asks for a strategy for an explicit goal. The result is not cached.
func (s *InsightService) GoalStrategy(ctx context.Context, sessionID uuid.UUID, req models.GoalStrategyRequest) (*models.InsightResponse, error) {
	if strings.TrimSpace(req.Title) == "" || req.Target <= 0 {
		return nil, ErrInvalidGoal
	}
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session %s: %w", sessionID, err)
	}

	profile := sess.Profile()
	payload := models.GoalPayload{
		Title:         req.Title,
		Target:        req.Target,
		Current:       req.Current,
		Deadline:      req.Deadline,
		MonthlyIncome: profile.MonthlyIncome,
	}
	if req.MonthlyIncome != nil {
		payload.MonthlyIncome = *req.MonthlyIncome
	}
	if payload.Deadline == "" {
		payload.Deadline = intent.ExtractGoal("", profile, sess.Now()).Deadline
	}

	result, err := gateway.Dispatch(ctx, s.gateway, gateway.Request{Category: models.CategoryGoalStrategy, Goal: &payload})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch goal strategy: %w", err)
	}
	return toInsightResponse(models.CategoryGoalStrategy, models.CachedInsight{Value: result, FetchedAt: sess.Now()}), nil
}

func goalPayload(g models.Goal, profile models.Profile, defaultDeadline string) models.GoalPayload {
	deadline := g.Deadline
	if deadline == "" {
		deadline = defaultDeadline
	}
	return models.GoalPayload{
		Title:         g.Title,
		Target:        g.Target,
		Current:       g.Current,
		Deadline:      deadline,
		MonthlyIncome: profile.MonthlyIncome,
	}
}

func toInsightResponse(category models.TaskCategory, ci models.CachedInsight) *models.InsightResponse {
	return &models.InsightResponse{
		Category:  category,
		Value:     ci.Value,
		Summary:   formatter.Format(ci.Value, category),
		FetchedAt: ci.FetchedAt,
	}
}
