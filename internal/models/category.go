package models

import (
	"fmt"
	"strings"
)

// TaskCategory is the closed set of intents a user message can be routed to.
// Adding a value means updating AllCategories and every per-category table
// (gateway dispatch and endpoints, formatter templates, action table).
type TaskCategory string

const (
	CategoryComprehensiveAnalysis TaskCategory = "comprehensive_analysis"
	CategoryBudgetOptimization    TaskCategory = "budget_optimization"
	CategoryInvestmentStrategy    TaskCategory = "investment_strategy"
	CategoryCompetitiveInsights   TaskCategory = "competitive_insights"
	CategoryTravelPlanning        TaskCategory = "travel_planning"
	CategoryGoalStrategy          TaskCategory = "goal_strategy"
	CategoryGeneralChat           TaskCategory = "general_chat"
)

// AllCategories lists every TaskCategory in declaration order.
var AllCategories = []TaskCategory{
	CategoryComprehensiveAnalysis,
	CategoryBudgetOptimization,
	CategoryInvestmentStrategy,
	CategoryCompetitiveInsights,
	CategoryTravelPlanning,
	CategoryGoalStrategy,
	CategoryGeneralChat,
}

// Valid reports whether c is one of the known categories.
func (c TaskCategory) Valid() bool {
	for _, known := range AllCategories {
		if c == known {
			return true
		}
	}
	return false
}

// NeedsExtraction reports whether the category requires a structured payload
// pulled out of the message text before dispatch.
func (c TaskCategory) NeedsExtraction() bool {
	return c == CategoryTravelPlanning || c == CategoryGoalStrategy
}

// ProfileDriven reports whether the category's request is the profile snapshot itself.
func (c TaskCategory) ProfileDriven() bool {
	switch c {
	case CategoryComprehensiveAnalysis, CategoryBudgetOptimization,
		CategoryInvestmentStrategy, CategoryCompetitiveInsights:
		return true
	}
	return false
}

// ParseTaskCategory accepts the wire form of a category ("budget_optimization")
// as well as its dashed URL form ("budget-optimization").
func ParseTaskCategory(s string) (TaskCategory, error) {
	c := TaskCategory(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_"))
	if !c.Valid() {
		return "", fmt.Errorf("unknown task category: %q", s)
	}
	return c, nil
}

// Ptr returns a pointer to a copy of c, for optional message fields.
func (c TaskCategory) Ptr() *TaskCategory {
	return &c
}
