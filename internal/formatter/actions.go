package formatter

import "pecunia-backend/internal/models"

// ActionGoalPlanning opens the goal planner. It is an action, not a task category.
const ActionGoalPlanning = "goal_planning"

var (
	budgetAction = models.QuickAction{
		Label:    "Optimize my budget",
		ActionID: string(models.CategoryBudgetOptimization),
		Prompt:   "Help me optimize my budget",
	}
	investmentAction = models.QuickAction{
		Label:    "Investment strategy",
		ActionID: string(models.CategoryInvestmentStrategy),
		Prompt:   "What investment strategy fits my profile?",
	}
	goalAction = models.QuickAction{
		Label:    "Plan a goal",
		ActionID: ActionGoalPlanning,
		Prompt:   "Help me set a savings goal",
	}
	comprehensiveAction = models.QuickAction{
		Label:    "Full analysis",
		ActionID: string(models.CategoryComprehensiveAnalysis),
		Prompt:   "Give me a comprehensive analysis of my finances",
	}
	competitiveAction = models.QuickAction{
		Label:    "Compare with peers",
		ActionID: string(models.CategoryCompetitiveInsights),
		Prompt:   "How do I compare with my peers?",
	}
)

// actionTable is keyed by category only; results never change the suggestions.
var actionTable = map[models.TaskCategory][]models.QuickAction{
	models.CategoryComprehensiveAnalysis: {budgetAction, investmentAction, goalAction},
	models.CategoryBudgetOptimization:    {investmentAction, goalAction, comprehensiveAction},
	models.CategoryInvestmentStrategy:    {competitiveAction, budgetAction, comprehensiveAction},
}

// DeriveActions returns the follow-up actions for category. The result argument
// is accepted for symmetry with Format and is not consulted. The returned slice
// is a fresh copy and is empty, never nil, for categories without entries.
func DeriveActions(category models.TaskCategory, _ models.AnalysisResult) []models.QuickAction {
	actions := actionTable[category]
	out := make([]models.QuickAction, len(actions))
	copy(out, actions)
	return out
}
