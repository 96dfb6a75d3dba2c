package gateway

import (
	"context"
	"errors"
	"testing"

	"pecunia-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingGateway returns an empty result of the right type and records the call.
type recordingGateway struct {
	called models.TaskCategory
	err    error
}

func (g *recordingGateway) ComprehensiveAnalysis(context.Context, models.Profile) (*models.ComprehensiveResult, error) {
	g.called = models.CategoryComprehensiveAnalysis
	return &models.ComprehensiveResult{}, g.err
}

func (g *recordingGateway) BudgetOptimization(context.Context, models.Profile) (*models.BudgetResult, error) {
	g.called = models.CategoryBudgetOptimization
	return &models.BudgetResult{}, g.err
}

func (g *recordingGateway) InvestmentStrategy(context.Context, models.Profile) (*models.InvestmentResult, error) {
	g.called = models.CategoryInvestmentStrategy
	return &models.InvestmentResult{}, g.err
}

func (g *recordingGateway) CompetitiveInsights(context.Context, models.Profile) (*models.CompetitiveResult, error) {
	g.called = models.CategoryCompetitiveInsights
	return &models.CompetitiveResult{}, g.err
}

func (g *recordingGateway) TravelPlan(context.Context, models.TravelPayload) (*models.TravelResult, error) {
	g.called = models.CategoryTravelPlanning
	return &models.TravelResult{}, g.err
}

func (g *recordingGateway) GoalStrategy(context.Context, models.GoalPayload) (*models.GoalResult, error) {
	g.called = models.CategoryGoalStrategy
	return &models.GoalResult{}, g.err
}

func (g *recordingGateway) Chat(context.Context, models.ChatPayload) (*models.ChatResult, error) {
	g.called = models.CategoryGeneralChat
	return nil, g.err
}

func (g *recordingGateway) SpendingAnalysis(context.Context, models.SpendingAnalysisRequest) (*models.SpendingAnalysisResult, error) {
	return &models.SpendingAnalysisResult{}, g.err
}

func TestDispatchRoutesEveryCategory(t *testing.T) {
	assert.Len(t, dispatchTable, len(models.AllCategories))

	for _, c := range models.AllCategories {
		t.Run(string(c), func(t *testing.T) {
			gw := &recordingGateway{}
			req := Request{
				Category: c,
				Profile:  models.DefaultProfile(),
				Travel:   &models.TravelPayload{},
				Goal:     &models.GoalPayload{},
				Chat:     &models.ChatPayload{Message: "hi"},
			}
			res, err := Dispatch(context.Background(), gw, req)
			assert.Equal(t, c, gw.called)
			if c == models.CategoryGeneralChat {
				// The recording gateway returns a nil chat result.
				_, ok := AsError(err)
				assert.True(t, ok)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, c, res.Category())
		})
	}
}

func TestDispatchWrapsPlainErrors(t *testing.T) {
	gw := &recordingGateway{err: errors.New("connection reset")}
	_, err := Dispatch(context.Background(), gw, Request{Category: models.CategoryBudgetOptimization})
	gwErr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, models.CategoryBudgetOptimization, gwErr.Category)
	assert.EqualError(t, gwErr.Cause, "connection reset")
}

func TestDispatchMissingPayload(t *testing.T) {
	gw := &recordingGateway{}
	for _, c := range []models.TaskCategory{models.CategoryTravelPlanning, models.CategoryGoalStrategy, models.CategoryGeneralChat} {
		_, err := Dispatch(context.Background(), gw, Request{Category: c})
		assert.ErrorIs(t, err, errMissingPayload, c)
	}
	assert.Empty(t, gw.called)
}

func TestDispatchUnknownCategory(t *testing.T) {
	_, err := Dispatch(context.Background(), &recordingGateway{}, Request{Category: "astrology"})
	_, ok := AsError(err)
	assert.True(t, ok)
}
