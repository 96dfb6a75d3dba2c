// Package gateway is the only boundary to the external financial-analysis
// backend. Every failure it reports is a *Error.
package gateway

import (
	"context"
	"errors"
	"fmt"

	"pecunia-backend/internal/models"
)

// Error describes a failed analysis call: transport failure, timeout,
// non-2xx status or a body that could not be decoded.
type Error struct {
	Category   models.TaskCategory // empty for calls outside the routed categories
	Endpoint   string              // backend path, when known
	StatusCode int                 // 0 when no response was received
	Cause      error
}

func (e *Error) Error() string {
	name := string(e.Category)
	if name == "" {
		name = e.Endpoint
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("gateway %s: status %d: %v", name, e.StatusCode, e.Cause)
	}
	return fmt.Sprintf("gateway %s: %v", name, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

// AsError reports whether err is, or wraps, a *Error.
func AsError(err error) (*Error, bool) {
	var gwErr *Error
	if errors.As(err, &gwErr) {
		return gwErr, true
	}
	return nil, false
}

// Gateway exposes one operation per task category.
type Gateway interface {
	ComprehensiveAnalysis(ctx context.Context, profile models.Profile) (*models.ComprehensiveResult, error)
	BudgetOptimization(ctx context.Context, profile models.Profile) (*models.BudgetResult, error)
	InvestmentStrategy(ctx context.Context, profile models.Profile) (*models.InvestmentResult, error)
	CompetitiveInsights(ctx context.Context, profile models.Profile) (*models.CompetitiveResult, error)
	TravelPlan(ctx context.Context, payload models.TravelPayload) (*models.TravelResult, error)
	GoalStrategy(ctx context.Context, payload models.GoalPayload) (*models.GoalResult, error)
	Chat(ctx context.Context, payload models.ChatPayload) (*models.ChatResult, error)
	// SpendingAnalysis is not a routed category; only the spending surface calls it.
	SpendingAnalysis(ctx context.Context, req models.SpendingAnalysisRequest) (*models.SpendingAnalysisResult, error)
}

// Request carries everything Dispatch may need. Only the field matching
// Category is read; Profile is a snapshot taken by the caller.
type Request struct {
	Category models.TaskCategory
	Profile  models.Profile
	Travel   *models.TravelPayload
	Goal     *models.GoalPayload
	Chat     *models.ChatPayload
}

var errMissingPayload = errors.New("missing request payload")

type dispatchFunc func(ctx context.Context, gw Gateway, req Request) (models.AnalysisResult, error)

// wrap adapts a typed gateway call so a nil typed pointer never becomes a
// non-nil interface value.
func wrap[R any, P interface {
	*R
	models.AnalysisResult
}](res P, err error) (models.AnalysisResult, error) {
	if err != nil || res == nil {
		return nil, err
	}
	return res, nil
}

var dispatchTable = map[models.TaskCategory]dispatchFunc{
	models.CategoryComprehensiveAnalysis: func(ctx context.Context, gw Gateway, req Request) (models.AnalysisResult, error) {
		return wrap(gw.ComprehensiveAnalysis(ctx, req.Profile))
	},
	models.CategoryBudgetOptimization: func(ctx context.Context, gw Gateway, req Request) (models.AnalysisResult, error) {
		return wrap(gw.BudgetOptimization(ctx, req.Profile))
	},
	models.CategoryInvestmentStrategy: func(ctx context.Context, gw Gateway, req Request) (models.AnalysisResult, error) {
		return wrap(gw.InvestmentStrategy(ctx, req.Profile))
	},
	models.CategoryCompetitiveInsights: func(ctx context.Context, gw Gateway, req Request) (models.AnalysisResult, error) {
		return wrap(gw.CompetitiveInsights(ctx, req.Profile))
	},
	models.CategoryTravelPlanning: func(ctx context.Context, gw Gateway, req Request) (models.AnalysisResult, error) {
		if req.Travel == nil {
			return nil, &Error{Category: req.Category, Cause: errMissingPayload}
		}
		return wrap(gw.TravelPlan(ctx, *req.Travel))
	},
	models.CategoryGoalStrategy: func(ctx context.Context, gw Gateway, req Request) (models.AnalysisResult, error) {
		if req.Goal == nil {
			return nil, &Error{Category: req.Category, Cause: errMissingPayload}
		}
		return wrap(gw.GoalStrategy(ctx, *req.Goal))
	},
	models.CategoryGeneralChat: func(ctx context.Context, gw Gateway, req Request) (models.AnalysisResult, error) {
		if req.Chat == nil {
			return nil, &Error{Category: req.Category, Cause: errMissingPayload}
		}
		return wrap(gw.Chat(ctx, *req.Chat))
	},
}

// Dispatch routes req to the gateway operation for its category.
// Errors that are not already a *Error are wrapped into one.
func Dispatch(ctx context.Context, gw Gateway, req Request) (models.AnalysisResult, error) {
	fn, ok := dispatchTable[req.Category]
	if !ok {
		return nil, &Error{Category: req.Category, Cause: fmt.Errorf("unknown task category %q", req.Category)}
	}
	res, err := fn(ctx, gw, req)
	if err != nil {
		if _, ok := AsError(err); ok {
			return nil, err
		}
		return nil, &Error{Category: req.Category, Cause: err}
	}
	if res == nil {
		return nil, &Error{Category: req.Category, Cause: errors.New("empty result")}
	}
	return res, nil
}
