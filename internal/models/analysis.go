package models

import "time"

// AnalysisResult is the decoded body of one analysis backend call.
// Numeric fields on the concrete types are pointers so that a field the
// backend omitted stays distinguishable from a zero value.
type AnalysisResult interface {
	Category() TaskCategory
}

// ComprehensiveResult is returned by the comprehensive analysis endpoint.
type ComprehensiveResult struct {
	Analysis    string   `json:"analysis,omitempty"`
	ActionItems []string `json:"action_items,omitempty"`
	Confidence  *float64 `json:"confidence,omitempty"` // 0..1
}

func (*ComprehensiveResult) Category() TaskCategory { return CategoryComprehensiveAnalysis }

// BudgetResult is returned by the smart budget endpoint.
type BudgetResult struct {
	Budget            string   `json:"budget,omitempty"`
	SavingsRate       *float64 `json:"savings_rate,omitempty"` // Percentage points
	OptimizationScore *float64 `json:"optimization_score,omitempty"`
	TotalIncome       *float64 `json:"total_income,omitempty"`
}

func (*BudgetResult) Category() TaskCategory { return CategoryBudgetOptimization }

// InvestmentResult is returned by the investment strategy endpoint.
type InvestmentResult struct {
	Strategy           string   `json:"strategy,omitempty"`
	ExpectedReturn     *float64 `json:"expected_return,omitempty"` // Fraction, 0.08 means 8%
	RiskScore          *float64 `json:"risk_score,omitempty"`
	RebalanceFrequency string   `json:"rebalance_frequency,omitempty"`
	MonthlyInvestment  *float64 `json:"monthly_investment,omitempty"`
}

func (*InvestmentResult) Category() TaskCategory { return CategoryInvestmentStrategy }

// CompetitiveResult is returned by the competitive insights endpoint.
type CompetitiveResult struct {
	Insights             string   `json:"insights,omitempty"`
	PercentileRanking    *float64 `json:"percentile_ranking,omitempty"`
	CompetitiveScore     *float64 `json:"competitive_score,omitempty"`
	ImprovementPotential string   `json:"improvement_potential,omitempty"`
}

func (*CompetitiveResult) Category() TaskCategory { return CategoryCompetitiveInsights }

// TravelResult is returned by the travel plan endpoint.
type TravelResult struct {
	Plan                 string   `json:"plan,omitempty"`
	TotalBudget          *float64 `json:"total_budget,omitempty"`
	SavingsOpportunities []string `json:"savings_opportunities,omitempty"`
}

func (*TravelResult) Category() TaskCategory { return CategoryTravelPlanning }

// GoalResult is returned by the goal strategy endpoint.
type GoalResult struct {
	Strategy             string   `json:"strategy,omitempty"`
	MonthlyTarget        *float64 `json:"monthly_target,omitempty"`
	ProbabilityOfSuccess *float64 `json:"probability_of_success,omitempty"` // Fraction
}

func (*GoalResult) Category() TaskCategory { return CategoryGoalStrategy }

// ChatResult is returned by the general chat endpoint.
type ChatResult struct {
	Response string `json:"response,omitempty"`
}

func (*ChatResult) Category() TaskCategory { return CategoryGeneralChat }

// NewResult returns an empty result value of the concrete type for category c,
// ready to be decoded into. It returns nil for an unknown category.
func NewResult(c TaskCategory) AnalysisResult {
	switch c {
	case CategoryComprehensiveAnalysis:
		return &ComprehensiveResult{}
	case CategoryBudgetOptimization:
		return &BudgetResult{}
	case CategoryInvestmentStrategy:
		return &InvestmentResult{}
	case CategoryCompetitiveInsights:
		return &CompetitiveResult{}
	case CategoryTravelPlanning:
		return &TravelResult{}
	case CategoryGoalStrategy:
		return &GoalResult{}
	case CategoryGeneralChat:
		return &ChatResult{}
	}
	return nil
}

// --- Request payloads ---

// TravelPayload is the body sent to the travel plan endpoint.
type TravelPayload struct {
	Budget      float64  `json:"budget"`
	Destination string   `json:"destination"`
	Duration    string   `json:"duration"`
	Interests   []string `json:"interests"`
	GroupSize   int      `json:"group_size"`
}

// GoalPayload is the body sent to the goal strategy endpoint.
type GoalPayload struct {
	Title         string  `json:"title"`
	Target        float64 `json:"target"`
	Current       float64 `json:"current"`
	Deadline      string  `json:"deadline"` // YYYY-MM-DD
	MonthlyIncome float64 `json:"monthly_income"`
}

// ChatTurn is one prior exchange included as chat context.
type ChatTurn struct {
	Origin Origin `json:"origin"`
	Body   string `json:"body"`
}

// ChatContext is the user_context sent along with a general chat message.
type ChatContext struct {
	Profile
	History []ChatTurn `json:"history,omitempty"`
	Page    string     `json:"page,omitempty"` // set by page suggestions
}

// ChatPayload is the body sent to the general chat endpoint.
type ChatPayload struct {
	Message     string      `json:"message"`
	UserContext ChatContext `json:"user_context"`
}

// CachedInsight is one memoized analysis result held by a session.
type CachedInsight struct {
	Value     AnalysisResult `json:"value"`
	FetchedAt time.Time      `json:"fetched_at"`
}
