package services

import (
	"pecunia-backend/internal/models"

	"github.com/shopspring/decimal"
)

const (
	defaultPlanType = "comprehensive"
	// Used when the investment strategy names no monthly amount.
	defaultMonthlyInvestment = 500.0
)

var automaticSavingsShare = decimal.RequireFromString("0.2")

// automationSuggestions turns the budget and investment analyses into standing
// transfers. Savings are a fifth of income; the budget's own income figure
// wins over the profile's.
func automationSuggestions(profile models.Profile, budget *models.BudgetResult, investment *models.InvestmentResult) models.AutomationSuggestions {
	income := profile.MonthlyIncome
	if budget != nil && budget.TotalIncome != nil {
		income = *budget.TotalIncome
	}
	invest := defaultMonthlyInvestment
	if investment != nil && investment.MonthlyInvestment != nil && *investment.MonthlyInvestment > 0 {
		invest = *investment.MonthlyInvestment
	}

	return models.AutomationSuggestions{
		AutomaticSavings: models.RecurringTransfer{
			Amount:      decimal.NewFromFloat(income).Mul(automaticSavingsShare).Round(2).InexactFloat64(),
			Frequency:   "monthly",
			AccountType: "high_yield_savings",
		},
		InvestmentAutomation: models.RecurringTransfer{
			Amount:    invest,
			Frequency: "monthly",
		},
		BillOptimization: models.BillOptimization{
			ScheduleReviews: "quarterly",
			AutoNegotiate:   []string{"insurance", "utilities"},
			PriceMonitoring: true,
		},
	}
}

func implementationTimeline() models.ImplementationTimeline {
	return models.ImplementationTimeline{
		Immediate: []string{
			"Set up automatic savings transfers",
			"Review and cancel unnecessary subscriptions",
			"Set up spending alerts",
		},
		Week1: []string{
			"Open high-yield savings account",
			"Set up investment automation",
			"Review insurance policies",
		},
		Month1: []string{
			"Complete portfolio rebalancing",
			"Implement budget optimizations",
			"Set up quarterly reviews",
		},
		Month3: []string{
			"Evaluate progress and adjust strategy",
			"Explore additional income opportunities",
			"Review and update financial goals",
		},
	}
}
