package models

// Goal is a savings target tracked in the profile.
type Goal struct {
	Title    string  `json:"title"`
	Target   float64 `json:"target"`
	Current  float64 `json:"current"`
	Deadline string  `json:"deadline,omitempty"` // YYYY-MM-DD
}

// Profile is the user's financial snapshot used to build every analysis request.
type Profile struct {
	MonthlyBudget    float64            `json:"monthly_budget"`
	MonthlyIncome    float64            `json:"monthly_income"`
	MonthlyExpenses  float64            `json:"monthly_expenses"`
	SavingsRate      float64            `json:"savings_rate"` // Percentage points, 23 means 23%
	Score            float64            `json:"pecunia_score"`
	TotalAssets      float64            `json:"total_assets"`
	TotalLiabilities float64            `json:"total_liabilities"`
	EmergencyFund    float64            `json:"emergency_fund"`
	Age              int                `json:"age"`
	RiskTolerance    string             `json:"risk_tolerance"`
	Location         string             `json:"location"`
	ExpenseBreakdown map[string]float64 `json:"expenses"`
	Goals            []Goal             `json:"goals"`
}

// DefaultProfile returns the profile every new session starts with.
func DefaultProfile() Profile {
	return Profile{
		MonthlyBudget:    5000,
		MonthlyIncome:    6500,
		MonthlyExpenses:  3750,
		SavingsRate:      23,
		Score:            782,
		TotalAssets:      56000,
		TotalLiabilities: 10000,
		EmergencyFund:    8500,
		Age:              28,
		RiskTolerance:    "medium",
		Location:         "United States",
		ExpenseBreakdown: map[string]float64{
			"housing":        1500,
			"food":           600,
			"transportation": 400,
			"entertainment":  300,
			"utilities":      250,
			"other":          700,
		},
		Goals: []Goal{},
	}
}

// NetWorth is total assets minus total liabilities.
func (p Profile) NetWorth() float64 {
	return p.TotalAssets - p.TotalLiabilities
}

// Clone returns a deep copy so callers can hold a snapshot that later patches won't touch.
func (p Profile) Clone() Profile {
	out := p
	if p.ExpenseBreakdown != nil {
		out.ExpenseBreakdown = make(map[string]float64, len(p.ExpenseBreakdown))
		for k, v := range p.ExpenseBreakdown {
			out.ExpenseBreakdown[k] = v
		}
	}
	if p.Goals != nil {
		out.Goals = append([]Goal(nil), p.Goals...)
	}
	return out
}

// ProfilePatch is a partial profile update. Nil fields are left untouched.
type ProfilePatch struct {
	MonthlyBudget    *float64           `json:"monthly_budget,omitempty"`
	MonthlyIncome    *float64           `json:"monthly_income,omitempty"`
	MonthlyExpenses  *float64           `json:"monthly_expenses,omitempty"`
	SavingsRate      *float64           `json:"savings_rate,omitempty"`
	Score            *float64           `json:"pecunia_score,omitempty"`
	TotalAssets      *float64           `json:"total_assets,omitempty"`
	TotalLiabilities *float64           `json:"total_liabilities,omitempty"`
	EmergencyFund    *float64           `json:"emergency_fund,omitempty"`
	Age              *int               `json:"age,omitempty"`
	RiskTolerance    *string            `json:"risk_tolerance,omitempty"`
	Location         *string            `json:"location,omitempty"`
	ExpenseBreakdown map[string]float64 `json:"expenses,omitempty"` // Replaces the whole breakdown
	Goals            []Goal             `json:"goals,omitempty"`    // Replaces the whole goal list
}

// IsEmpty reports whether the patch sets no field at all.
func (pp ProfilePatch) IsEmpty() bool {
	return pp.MonthlyBudget == nil && pp.MonthlyIncome == nil && pp.MonthlyExpenses == nil &&
		pp.SavingsRate == nil && pp.Score == nil && pp.TotalAssets == nil &&
		pp.TotalLiabilities == nil && pp.EmergencyFund == nil && pp.Age == nil &&
		pp.RiskTolerance == nil && pp.Location == nil &&
		pp.ExpenseBreakdown == nil && pp.Goals == nil
}

// Apply shallow-merges the patch into p and returns the result.
// Each set field overwrites the previous value; nothing accumulates.
func (p Profile) Apply(pp ProfilePatch) Profile {
	out := p.Clone()
	setFloat := func(dst *float64, src *float64) {
		if src != nil {
			*dst = *src
		}
	}
	setFloat(&out.MonthlyBudget, pp.MonthlyBudget)
	setFloat(&out.MonthlyIncome, pp.MonthlyIncome)
	setFloat(&out.MonthlyExpenses, pp.MonthlyExpenses)
	setFloat(&out.SavingsRate, pp.SavingsRate)
	setFloat(&out.Score, pp.Score)
	setFloat(&out.TotalAssets, pp.TotalAssets)
	setFloat(&out.TotalLiabilities, pp.TotalLiabilities)
	setFloat(&out.EmergencyFund, pp.EmergencyFund)
	if pp.Age != nil {
		out.Age = *pp.Age
	}
	if pp.RiskTolerance != nil {
		out.RiskTolerance = *pp.RiskTolerance
	}
	if pp.Location != nil {
		out.Location = *pp.Location
	}
	if pp.ExpenseBreakdown != nil {
		out.ExpenseBreakdown = make(map[string]float64, len(pp.ExpenseBreakdown))
		for k, v := range pp.ExpenseBreakdown {
			out.ExpenseBreakdown[k] = v
		}
	}
	if pp.Goals != nil {
		out.Goals = append([]Goal(nil), pp.Goals...)
	}
	return out
}
