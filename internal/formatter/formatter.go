// Package formatter renders analysis results as chat message bodies and
// derives the follow-up quick actions shown under them.
package formatter

import (
	"fmt"
	"strings"

	"pecunia-backend/internal/models"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// Placeholder stands in for missing analysis text.
const Placeholder = "Analysis complete"

type renderFunc func(models.AnalysisResult) string

// templates holds one renderer per category. Every renderer type-asserts
// its own result type and treats anything else as an empty result.
var templates = map[models.TaskCategory]renderFunc{
	models.CategoryComprehensiveAnalysis: renderComprehensive,
	models.CategoryBudgetOptimization:    renderBudget,
	models.CategoryInvestmentStrategy:    renderInvestment,
	models.CategoryCompetitiveInsights:   renderCompetitive,
	models.CategoryTravelPlanning:        renderTravel,
	models.CategoryGoalStrategy:          renderGoal,
	models.CategoryGeneralChat:           renderChat,
}

// Format renders result with the template for category. It never panics:
// nil or mismatched results render the placeholder text.
func Format(result models.AnalysisResult, category models.TaskCategory) string {
	render, ok := templates[category]
	if !ok {
		return Placeholder
	}
	return render(result)
}

func renderComprehensive(r models.AnalysisResult) string {
	res, _ := r.(*models.ComprehensiveResult)
	if res == nil {
		res = &models.ComprehensiveResult{}
	}
	var b strings.Builder
	b.WriteString("📊 **Comprehensive Financial Analysis**\n\n")
	b.WriteString(textOr(res.Analysis))
	if len(res.ActionItems) > 0 {
		b.WriteString("\n\n**Action Items:**")
		for i, item := range res.ActionItems {
			fmt.Fprintf(&b, "\n%d. %s", i+1, item)
		}
	}
	if res.Confidence != nil {
		fmt.Fprintf(&b, "\n\nConfidence: %s", FractionPercent(*res.Confidence))
	}
	return b.String()
}

func renderBudget(r models.AnalysisResult) string {
	res, _ := r.(*models.BudgetResult)
	if res == nil {
		res = &models.BudgetResult{}
	}
	var b strings.Builder
	b.WriteString("💰 **Smart Budget Optimization**\n\n")
	b.WriteString(textOr(res.Budget))
	var metrics []string
	if res.SavingsRate != nil {
		metrics = append(metrics, "Savings Rate: "+PointsPercent(*res.SavingsRate))
	}
	if res.OptimizationScore != nil {
		metrics = append(metrics, "Optimization Score: "+Score(*res.OptimizationScore))
	}
	if res.TotalIncome != nil {
		metrics = append(metrics, "Total Income: "+Money(*res.TotalIncome))
	}
	writeMetrics(&b, metrics)
	return b.String()
}

func renderInvestment(r models.AnalysisResult) string {
	res, _ := r.(*models.InvestmentResult)
	if res == nil {
		res = &models.InvestmentResult{}
	}
	var b strings.Builder
	b.WriteString("📈 **Investment Strategy**\n\n")
	b.WriteString(textOr(res.Strategy))
	var metrics []string
	if res.ExpectedReturn != nil {
		metrics = append(metrics, "Expected Return: "+FractionPercent(*res.ExpectedReturn))
	}
	if res.RiskScore != nil {
		metrics = append(metrics, "Risk Score: "+Score(*res.RiskScore))
	}
	if res.RebalanceFrequency != "" {
		metrics = append(metrics, "Rebalance: "+res.RebalanceFrequency)
	}
	writeMetrics(&b, metrics)
	return b.String()
}

func renderCompetitive(r models.AnalysisResult) string {
	res, _ := r.(*models.CompetitiveResult)
	if res == nil {
		res = &models.CompetitiveResult{}
	}
	var b strings.Builder
	b.WriteString("🏆 **Competitive Insights**\n\n")
	b.WriteString(textOr(res.Insights))
	var metrics []string
	if res.PercentileRanking != nil {
		metrics = append(metrics, "Percentile: "+Ordinal(*res.PercentileRanking))
	}
	if res.CompetitiveScore != nil {
		metrics = append(metrics, "Competitive Score: "+Score(*res.CompetitiveScore))
	}
	if res.ImprovementPotential != "" {
		metrics = append(metrics, "Improvement Potential: "+res.ImprovementPotential)
	}
	writeMetrics(&b, metrics)
	return b.String()
}

func renderTravel(r models.AnalysisResult) string {
	res, _ := r.(*models.TravelResult)
	if res == nil {
		res = &models.TravelResult{}
	}
	var b strings.Builder
	b.WriteString("✈️ **Travel Plan**\n\n")
	b.WriteString(textOr(res.Plan))
	if res.TotalBudget != nil {
		fmt.Fprintf(&b, "\n\nTotal Budget: %s", Money(*res.TotalBudget))
	}
	if len(res.SavingsOpportunities) > 0 {
		b.WriteString("\n\n**Savings Opportunities:**")
		for _, s := range res.SavingsOpportunities {
			fmt.Fprintf(&b, "\n• %s", s)
		}
	}
	return b.String()
}

func renderGoal(r models.AnalysisResult) string {
	res, _ := r.(*models.GoalResult)
	if res == nil {
		res = &models.GoalResult{}
	}
	var b strings.Builder
	b.WriteString("🎯 **Goal Strategy**\n\n")
	b.WriteString(textOr(res.Strategy))
	var metrics []string
	if res.MonthlyTarget != nil {
		metrics = append(metrics, "Monthly Target: "+Money(*res.MonthlyTarget))
	}
	if res.ProbabilityOfSuccess != nil {
		metrics = append(metrics, "Success Probability: "+FractionPercent(*res.ProbabilityOfSuccess))
	}
	writeMetrics(&b, metrics)
	return b.String()
}

func renderChat(r models.AnalysisResult) string {
	res, _ := r.(*models.ChatResult)
	if res == nil {
		return Placeholder
	}
	return textOr(res.Response)
}

func writeMetrics(b *strings.Builder, metrics []string) {
	if len(metrics) == 0 {
		return
	}
	b.WriteString("\n\n")
	b.WriteString(strings.Join(metrics, "\n"))
}

func textOr(s string) string {
	if strings.TrimSpace(s) == "" {
		return Placeholder
	}
	return s
}

// Money renders a dollar amount rounded to whole dollars with thousands
// separators, e.g. "$1,234" or "-$50".
func Money(v float64) string {
	d := decimal.NewFromFloat(v).Round(0)
	if d.IsNegative() {
		return "-$" + humanize.Comma(d.Neg().IntPart())
	}
	return "$" + humanize.Comma(d.IntPart())
}

// FractionPercent renders a 0..1 fraction as a percentage: 0.82 is "82%", 0.085 is "8.5%".
func FractionPercent(v float64) string {
	return decimal.NewFromFloat(v).Mul(decimal.NewFromInt(100)).Round(1).String() + "%"
}

// PointsPercent renders a value already expressed in percentage points.
func PointsPercent(v float64) string {
	return decimal.NewFromFloat(v).Round(1).String() + "%"
}

// Score renders a 0..100 score as "72/100".
func Score(v float64) string {
	return decimal.NewFromFloat(v).Round(0).String() + "/100"
}

// Ordinal renders a percentile rank as "65th".
func Ordinal(v float64) string {
	return humanize.Ordinal(int(decimal.NewFromFloat(v).Round(0).IntPart()))
}
