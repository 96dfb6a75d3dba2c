package services

import (
	"context"
	"errors"
	"testing"

	"pecunia-backend/internal/gateway"
	"pecunia-backend/internal/models"
	"pecunia-backend/internal/session"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newInsights(t *testing.T, gw gateway.Gateway) (*InsightService, *session.Session) {
	t.Helper()
	registry := session.NewRegistry(nil)
	return NewInsightService(registry, gw, zap.NewNop()), registry.Create()
}

func TestGetInsightCachesUntilPatched(t *testing.T) {
	gw := newFakeGateway()
	svc, sess := newInsights(t, gw)
	ctx := context.Background()

	first, err := svc.GetInsight(ctx, sess.ID(), models.CategoryInvestmentStrategy)
	require.NoError(t, err)
	assert.Contains(t, first.Summary, "Expected Return: 8%")

	second, err := svc.GetInsight(ctx, sess.ID(), models.CategoryInvestmentStrategy)
	require.NoError(t, err)
	assert.Equal(t, first.FetchedAt, second.FetchedAt)
	assert.Equal(t, 1, gw.Calls(models.CategoryInvestmentStrategy))

	profile, err := svc.PatchProfile(ctx, sess.ID(), models.ProfilePatch{SavingsRate: f64(30)})
	require.NoError(t, err)
	assert.Equal(t, 30.0, profile.SavingsRate)
	assert.Equal(t, 1, gw.Calls(models.CategoryInvestmentStrategy), "patching does not refetch")

	_, err = svc.GetInsight(ctx, sess.ID(), models.CategoryInvestmentStrategy)
	require.NoError(t, err)
	assert.Equal(t, 2, gw.Calls(models.CategoryInvestmentStrategy))
}

func TestGetInsightRejectsChat(t *testing.T) {
	svc, sess := newInsights(t, newFakeGateway())
	_, err := svc.GetInsight(context.Background(), sess.ID(), models.CategoryGeneralChat)
	assert.ErrorIs(t, err, ErrNotInsightCategory)
	_, err = svc.GetInsight(context.Background(), sess.ID(), "horoscope")
	assert.ErrorIs(t, err, ErrNotInsightCategory)
}

func TestGetInsightUsesProfileGoalAndTravelDefaults(t *testing.T) {
	gw := newFakeGateway()
	svc, sess := newInsights(t, gw)
	ctx := context.Background()

	sess.ApplyProfilePatch(models.ProfilePatch{Goals: []models.Goal{{Title: "Wedding", Target: 25000, Current: 5000}}})
	_, err := svc.GetInsight(ctx, sess.ID(), models.CategoryGoalStrategy)
	require.NoError(t, err)
	require.Len(t, gw.goals, 1)
	assert.Equal(t, "Wedding", gw.goals[0].Title)
	assert.Equal(t, 5000.0, gw.goals[0].Current)
	assert.NotEmpty(t, gw.goals[0].Deadline)

	_, err = svc.GetInsight(ctx, sess.ID(), models.CategoryTravelPlanning)
	require.NoError(t, err)
	require.Len(t, gw.travel, 1)
	assert.Equal(t, 2000.0, gw.travel[0].Budget)
	assert.Equal(t, "flexible", gw.travel[0].Destination)
}

func TestGetInsightGatewayError(t *testing.T) {
	gw := newFakeGateway()
	gw.err = errors.New("connection refused")
	svc, sess := newInsights(t, gw)

	_, err := svc.GetInsight(context.Background(), sess.ID(), models.CategoryBudgetOptimization)
	_, ok := gateway.AsError(err)
	assert.True(t, ok)
}

func TestAutomatedPlan(t *testing.T) {
	gw := newFakeGateway()
	svc, sess := newInsights(t, gw)
	ctx := context.Background()

	plan, err := svc.AutomatedPlan(ctx, sess.ID(), "")
	require.NoError(t, err)
	assert.Equal(t, "comprehensive", plan.PlanType)
	require.NotNil(t, plan.Comprehensive)
	require.NotNil(t, plan.Budget)
	require.NotNil(t, plan.Investment)
	require.NotNil(t, plan.Competitive)
	assert.Equal(t, 46000.0, plan.NetWorth)
	assert.False(t, plan.GeneratedAt.IsZero())

	auto := plan.AutomationSuggestions
	assert.Equal(t, 1300.0, auto.AutomaticSavings.Amount, "a fifth of monthly income")
	assert.Equal(t, "high_yield_savings", auto.AutomaticSavings.AccountType)
	assert.Equal(t, 500.0, auto.InvestmentAutomation.Amount)
	assert.Equal(t, []string{"insurance", "utilities"}, auto.BillOptimization.AutoNegotiate)
	assert.Len(t, plan.ImplementationTimeline.Immediate, 3)
	assert.Len(t, plan.ImplementationTimeline.Month3, 3)

	// Every slot is now cached.
	_, err = svc.AutomatedPlan(ctx, sess.ID(), "retirement")
	require.NoError(t, err)
	for _, c := range []models.TaskCategory{
		models.CategoryComprehensiveAnalysis,
		models.CategoryBudgetOptimization,
		models.CategoryInvestmentStrategy,
		models.CategoryCompetitiveInsights,
	} {
		assert.Equal(t, 1, gw.Calls(c), c)
	}
}

func TestAutomatedPlanFailsOnAnyError(t *testing.T) {
	gw := newFakeGateway()
	gw.err = errors.New("down")
	svc, sess := newInsights(t, gw)

	_, err := svc.AutomatedPlan(context.Background(), sess.ID(), "")
	assert.Error(t, err)
}

func TestAutomationSuggestionsPreferAnalysisFigures(t *testing.T) {
	budget := &models.BudgetResult{TotalIncome: f64(8000.55)}
	investment := &models.InvestmentResult{MonthlyInvestment: f64(750)}

	auto := automationSuggestions(models.DefaultProfile(), budget, investment)
	assert.Equal(t, 1600.11, auto.AutomaticSavings.Amount)
	assert.Equal(t, 750.0, auto.InvestmentAutomation.Amount)
	assert.Equal(t, "monthly", auto.InvestmentAutomation.Frequency)
}

func TestAnalyzeSpending(t *testing.T) {
	gw := newFakeGateway()
	svc, sess := newInsights(t, gw)
	ctx := context.Background()

	req := models.SpendingAnalysisRequest{Transactions: []models.Transaction{
		{Date: "2024-01-15", Amount: 45.5, Category: "food"},
		{Date: "2024-01-16", Amount: 12.99, Category: "entertainment"},
	}}
	res, err := svc.AnalyzeSpending(ctx, sess.ID(), req)
	require.NoError(t, err)
	require.Len(t, res.Alerts, 1)
	assert.NotNil(t, res.Trends, "missing lists become empty")
	assert.NotNil(t, res.Optimization)
	require.Len(t, gw.spending, 1)
	assert.Len(t, gw.spending[0].Transactions, 2)

	_, err = svc.AnalyzeSpending(ctx, sess.ID(), models.SpendingAnalysisRequest{})
	assert.ErrorIs(t, err, ErrNoTransactions)

	_, err = svc.AnalyzeSpending(ctx, uuid.New(), req)
	assert.ErrorIs(t, err, session.ErrNotFound)

	gw.err = &gateway.Error{Endpoint: gateway.SpendingAnalysisPath, StatusCode: 500, Cause: errors.New("down")}
	_, err = svc.AnalyzeSpending(ctx, sess.ID(), req)
	_, ok := gateway.AsError(err)
	assert.True(t, ok)
}

func TestPageSuggestions(t *testing.T) {
	gw := newFakeGateway()
	svc, sess := newInsights(t, gw)
	ctx := context.Background()

	res, err := svc.PageSuggestions(ctx, sess.ID(), " budget ", "")
	require.NoError(t, err)
	assert.Equal(t, "budget", res.Page)
	assert.Equal(t, models.SuggestionProactive, res.Kind)
	assert.Contains(t, res.Response, "the page I'm viewing (budget)")

	res, err = svc.PageSuggestions(ctx, sess.ID(), "goals", models.SuggestionHelp)
	require.NoError(t, err)
	assert.Contains(t, res.Response, "I'm currently on the goals page")

	require.Len(t, gw.chats, 2)
	assert.Equal(t, "goals", gw.chats[1].UserContext.Page)
	assert.Equal(t, 6500.0, gw.chats[1].UserContext.MonthlyIncome)
	assert.Empty(t, sess.Messages(), "suggestions stay out of the chat log")

	_, err = svc.PageSuggestions(ctx, sess.ID(), "", "")
	assert.ErrorIs(t, err, ErrMissingPage)
	_, err = svc.PageSuggestions(ctx, sess.ID(), "budget", "nag")
	assert.ErrorIs(t, err, ErrUnknownSuggestionKind)
}

func TestGoalStrategy(t *testing.T) {
	gw := newFakeGateway()
	svc, sess := newInsights(t, gw)
	ctx := context.Background()

	_, err := svc.GoalStrategy(ctx, sess.ID(), models.GoalStrategyRequest{Title: "", Target: 100})
	assert.ErrorIs(t, err, ErrInvalidGoal)
	_, err = svc.GoalStrategy(ctx, sess.ID(), models.GoalStrategyRequest{Title: "Car", Target: 0})
	assert.ErrorIs(t, err, ErrInvalidGoal)

	resp, err := svc.GoalStrategy(ctx, sess.ID(), models.GoalStrategyRequest{Title: "Car", Target: 18000, Current: 2000})
	require.NoError(t, err)
	assert.Equal(t, models.CategoryGoalStrategy, resp.Category)
	assert.Contains(t, resp.Summary, "Monthly Target: $500")

	require.Len(t, gw.goals, 1)
	assert.Equal(t, 6500.0, gw.goals[0].MonthlyIncome)
	assert.NotEmpty(t, gw.goals[0].Deadline)
	_, cached := sess.Insight(models.CategoryGoalStrategy)
	assert.False(t, cached)

	_, err = svc.GoalStrategy(ctx, uuid.New(), models.GoalStrategyRequest{Title: "Car", Target: 1})
	assert.ErrorIs(t, err, session.ErrNotFound)
}
