// Package intent turns free-form chat text into a task category and, for the
// categories that need one, a best-effort structured payload.
package intent

import (
	"strings"

	"pecunia-backend/internal/models"
)

// Rule maps a set of lowercase keywords to a category.
type Rule struct {
	Category models.TaskCategory
	Keywords []string
}

// Rules is the ordered classification table. The first rule with a keyword
// contained in the text wins, so travel must stay ahead of goal ("save for a trip").
var Rules = []Rule{
	{
		Category: models.CategoryTravelPlanning,
		Keywords: []string{"travel", "trip", "vacation", "holiday", "flight", "hotel", "getaway", "itinerary"},
	},
	{
		Category: models.CategoryComprehensiveAnalysis,
		Keywords: []string{"comprehensive", "full analysis", "overall", "financial health", "analyze my finances", "big picture", "overview"},
	},
	{
		Category: models.CategoryBudgetOptimization,
		Keywords: []string{"budget", "spending", "expenses", "cut costs", "overspend"},
	},
	{
		Category: models.CategoryInvestmentStrategy,
		Keywords: []string{"invest", "portfolio", "stocks", "etf", "index fund", "retirement account", "rebalance"},
	},
	{
		Category: models.CategoryCompetitiveInsights,
		Keywords: []string{"compare", "peers", "percentile", "benchmark", "ranking", "how do i stack up", "others my age"},
	},
	{
		Category: models.CategoryGoalStrategy,
		Keywords: []string{"goal", "save for", "saving for", "down payment", "emergency fund", "target", "pay off"},
	},
}

// Classify returns the category of the first rule matching text, or
// general_chat when nothing matches. It never fails.
func Classify(text string) models.TaskCategory {
	category, _ := match(text)
	return category
}

// MatchedKeyword reports which keyword decided the classification.
// It returns "" when text falls through to general_chat.
func MatchedKeyword(text string) string {
	_, kw := match(text)
	return kw
}

func match(text string) (models.TaskCategory, string) {
	lower := strings.ToLower(text)
	for _, rule := range Rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(lower, kw) {
				return rule.Category, kw
			}
		}
	}
	return models.CategoryGeneralChat, ""
}
