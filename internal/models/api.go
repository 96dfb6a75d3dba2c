package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// --- Request Structs ---

// SendMessageRequest is the body for posting a chat message to a session.
type SendMessageRequest struct {
	Text string `json:"text"`
}

// ClassifyRequest is the body for the classify debug endpoint.
type ClassifyRequest struct {
	Text string `json:"text"`
}

// GoalStrategyRequest is the body for requesting a strategy for an explicit goal.
// MonthlyIncome defaults to the session profile when omitted.
type GoalStrategyRequest struct {
	Title         string   `json:"title"`
	Target        float64  `json:"target"`
	Current       float64  `json:"current"`
	Deadline      string   `json:"deadline"`
	MonthlyIncome *float64 `json:"monthly_income,omitempty"`
}

// --- Response Structs ---

// ErrorResponse defines the standard structure for API errors.
type ErrorResponse struct {
	Error string `json:"error"`
}

// SessionResponse is the dashboard view of a session.
type SessionResponse struct {
	ID           uuid.UUID `json:"id"`
	Profile      Profile   `json:"profile"`
	NetWorth     float64   `json:"net_worth"`
	State        string    `json:"state"`
	Loading      bool      `json:"loading"`
	LastError    *string   `json:"last_error,omitempty"`
	MessageCount int       `json:"message_count"`
	CreatedAt    time.Time `json:"created_at"`
}

// StartSessionResponse is returned when a session is created.
type StartSessionResponse struct {
	Session SessionResponse `json:"session"`
	Welcome Message         `json:"welcome"`
}

// ReplyResponse is returned after a chat message has been handled.
// Queued is true when the session was busy and the text was buffered.
type ReplyResponse struct {
	Queued  bool     `json:"queued"`
	Message *Message `json:"message,omitempty"`
}

// InsightResponse wraps one cached or freshly fetched analysis.
type InsightResponse struct {
	Category  TaskCategory   `json:"category"`
	Value     AnalysisResult `json:"value"`
	Summary   string         `json:"summary"`
	FetchedAt time.Time      `json:"fetched_at"`
}

// AutomatedPlanRequest is the optional body of the plan endpoint.
type AutomatedPlanRequest struct {
	PlanType string `json:"plan_type"`
}

// AutomatedPlan bundles the four profile analyses produced together with
// the automation steps derived from them.
type AutomatedPlan struct {
	PlanType               string                 `json:"plan_type"`
	Comprehensive          *ComprehensiveResult   `json:"comprehensive"`
	Budget                 *BudgetResult          `json:"budget"`
	Investment             *InvestmentResult      `json:"investment"`
	Competitive            *CompetitiveResult     `json:"competitive"`
	AutomationSuggestions  AutomationSuggestions  `json:"automation_suggestions"`
	ImplementationTimeline ImplementationTimeline `json:"implementation_timeline"`
	NetWorth               float64                `json:"net_worth"`
	GeneratedAt            time.Time              `json:"generated_at"`
}

type AutomationSuggestions struct {
	AutomaticSavings     RecurringTransfer `json:"automatic_savings"`
	InvestmentAutomation RecurringTransfer `json:"investment_automation"`
	BillOptimization     BillOptimization  `json:"bill_optimization"`
}

// RecurringTransfer is a standing monthly transfer the user can set up.
type RecurringTransfer struct {
	Amount      float64 `json:"amount"`
	Frequency   string  `json:"frequency"`
	AccountType string  `json:"account_type,omitempty"`
}

type BillOptimization struct {
	ScheduleReviews string   `json:"schedule_reviews"`
	AutoNegotiate   []string `json:"auto_negotiate"`
	PriceMonitoring bool     `json:"price_monitoring"`
}

// ImplementationTimeline groups plan steps by when to do them.
type ImplementationTimeline struct {
	Immediate []string `json:"immediate"`
	Week1     []string `json:"week_1"`
	Month1    []string `json:"month_1"`
	Month3    []string `json:"month_3"`
}

// SuggestionKind selects the page-context prompt.
type SuggestionKind string

const (
	SuggestionProactive SuggestionKind = "proactive"
	SuggestionHelp      SuggestionKind = "help"
)

// PageSuggestionResponse is the chat backend's advice for one app page.
type PageSuggestionResponse struct {
	Page        string         `json:"page"`
	Kind        SuggestionKind `json:"kind"`
	Response    string         `json:"response"`
	GeneratedAt time.Time      `json:"generated_at"`
}

// ClassifyResponse reports how a text would be routed.
type ClassifyResponse struct {
	Category TaskCategory    `json:"category"`
	Payload  json.RawMessage `json:"payload,omitempty"`
}

// TranscriptResponse is an archived session log.
type TranscriptResponse struct {
	SessionID uuid.UUID        `json:"session_id"`
	Status    TranscriptStatus `json:"status"`
	Messages  []Message        `json:"messages"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// TranscriptSummary is one row of the archive listing.
type TranscriptSummary struct {
	SessionID    uuid.UUID        `json:"session_id"`
	Status       TranscriptStatus `json:"status"`
	MessageCount int              `json:"message_count"`
	UpdatedAt    time.Time        `json:"updated_at"`
}
