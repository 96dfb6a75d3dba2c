package models

import "encoding/json"

// Transaction is one spending record sent for pattern analysis.
type Transaction struct {
	Date        string  `json:"date"` // YYYY-MM-DD
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	Description string  `json:"description,omitempty"`
}

// SpendingAnalysisRequest is the body of the spending analysis endpoint.
type SpendingAnalysisRequest struct {
	Transactions []Transaction `json:"transactions"`
}

// SpendingAnalysisResult is returned by the spending analysis endpoint.
type SpendingAnalysisResult struct {
	Trends       []SpendingTrend        `json:"trends"`
	Alerts       []SpendingAlert        `json:"alerts"`
	Optimization []SpendingOptimization `json:"optimization"`
}

type SpendingTrend struct {
	Category         string       `json:"category"`
	Trend            string       `json:"trend"` // increasing, decreasing or stable
	PercentageChange TextOrNumber `json:"percentage_change,omitempty"`
	Insight          string       `json:"insight,omitempty"`
}

type SpendingAlert struct {
	Type       string `json:"type"` // overspending, unusual_activity or opportunity
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
}

type SpendingOptimization struct {
	Category         string       `json:"category"`
	PotentialSavings TextOrNumber `json:"potential_savings,omitempty"`
	Method           string       `json:"method,omitempty"`
}

// TextOrNumber holds a field the backend sends either as a string ("12%")
// or as a bare number (12).
type TextOrNumber string

func (t *TextOrNumber) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = TextOrNumber(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*t = TextOrNumber(n.String())
	return nil
}
