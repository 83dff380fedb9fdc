package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// WalletSnapshot is the day-level wallet state. It is recomputed from the
// store on every request and never persisted, so identical inputs must
// always produce identical snapshots.
type WalletSnapshot struct {
	UserID         string          `json:"user_id"`
	Date           time.Time       `json:"date"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	DailyAllowance decimal.Decimal `json:"daily_allowance"`
	DailyIncome    decimal.Decimal `json:"daily_income"`
	TodayExpenses  decimal.Decimal `json:"today_expenses"`
	TotalAvailable decimal.Decimal `json:"total_available"`
	ClosingBalance decimal.Decimal `json:"closing_balance"`
	PercentUsed    decimal.Decimal `json:"percent_used"`
}

// AlertDecision is the monitor's verdict for one budget tier. ShouldNotify
// is true only when this evaluation recorded the tier's event for the day.
type AlertDecision struct {
	BudgetID        uint            `json:"budget_id"`
	UserID          string          `json:"user_id"`
	Category        string          `json:"category"`
	ThresholdLevel  Tier            `json:"threshold_level"`
	Severity        Severity        `json:"severity"`
	CurrentSpending decimal.Decimal `json:"current_spending"`
	Limit           decimal.Decimal `json:"limit"`
	UsagePercent    decimal.Decimal `json:"usage_percent"`
	Channels        []Channel       `json:"channels"`
	ShouldNotify    bool            `json:"should_notify"`
}

// Confidence grades a prediction by how many days of data back it.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// Prediction is a linear extrapolation of category spending to period end.
type Prediction struct {
	Category              string          `json:"category"`
	WillBreach            bool            `json:"will_breach"`
	PredictedSpending     decimal.Decimal `json:"predicted_spending"`
	PredictedBreachDate   *time.Time      `json:"predicted_breach_date,omitempty"`
	DailyAverage          decimal.Decimal `json:"daily_average"`
	RecommendedDailyLimit decimal.Decimal `json:"recommended_daily_limit"`
	TotalSpent            decimal.Decimal `json:"total_spent"`
	DaysWithData          int             `json:"days_with_data"`
	DaysRemaining         int             `json:"days_remaining"`
	Confidence            Confidence      `json:"confidence"`
	Message               string          `json:"message"`
}

// BudgetStatus classifies actual spending against the budgeted amount.
type BudgetStatus string

const (
	StatusUnder    BudgetStatus = "under"
	StatusOnTarget BudgetStatus = "on_target"
	StatusOver     BudgetStatus = "over"
)

// BudgetComparison is one row of the budget-vs-actual report.
type BudgetComparison struct {
	Category        string          `json:"category"`
	Budget          decimal.Decimal `json:"budget"`
	Actual          decimal.Decimal `json:"actual"`
	Variance        decimal.Decimal `json:"variance"`
	VariancePercent decimal.Decimal `json:"variance_percent"`
	UsagePercent    decimal.Decimal `json:"usage_percent"`
	Status          BudgetStatus    `json:"status"`
}

// HealthScore grades a category's month-to-date budget adherence.
type HealthScore struct {
	Category        string          `json:"category"`
	Score           int             `json:"score"`
	Level           string          `json:"level"`
	Color           string          `json:"color"`
	Message         string          `json:"message"`
	UsagePercent    decimal.Decimal `json:"usage_percent"`
	CurrentSpending decimal.Decimal `json:"current_spending"`
	Budget          decimal.Decimal `json:"budget"`
}

// BudgetTrendPoint is one budget-limit change in a category's history.
type BudgetTrendPoint struct {
	Month         string           `json:"month"`
	BudgetLimit   decimal.Decimal  `json:"budget_limit"`
	PreviousLimit *decimal.Decimal `json:"previous_limit,omitempty"`
	Reason        string           `json:"reason"`
}

// DailyTotal is a per-day expense sum used by the breach predictor.
type DailyTotal struct {
	Date  time.Time       `json:"date"`
	Total decimal.Decimal `json:"total"`
}
