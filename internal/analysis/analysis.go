package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"ledger-service/internal/model"
)

// BudgetSource lists a user's active budgets, snoozed or not; snooze only
// suppresses alerts, not reporting.
type BudgetSource interface {
	ListActive(ctx context.Context, userID string) ([]model.BudgetConfig, error)
}

// SpendingSource provides aggregated expense sums.
type SpendingSource interface {
	TotalsByCategory(ctx context.Context, userID string, from, to time.Time) (map[string]decimal.Decimal, error)
	TotalInRange(ctx context.Context, userID, category string, from, to time.Time) (decimal.Decimal, error)
}

// HistorySource provides budget limit change records, newest first.
type HistorySource interface {
	Recent(ctx context.Context, userID, category string, limit int) ([]model.BudgetHistory, error)
}

var (
	hundred         = decimal.NewFromInt(100)
	onTargetCutoff  = decimal.RequireFromString("0.95")
	scoreGoodBound  = decimal.NewFromInt(70)
	scoreWarnBound  = decimal.NewFromInt(85)
	scoreNearBound  = decimal.NewFromInt(95)
	scoreLimitBound = decimal.NewFromInt(100)
)

// Service answers budget reporting queries: budget-vs-actual comparisons,
// category health scores, and limit trend history.
type Service struct {
	budgets  BudgetSource
	spending SpendingSource
	history  HistorySource
	log      *logrus.Logger
	now      func() time.Time
}

func New(budgets BudgetSource, spending SpendingSource, history HistorySource, log *logrus.Logger) *Service {
	return &Service{
		budgets:  budgets,
		spending: spending,
		history:  history,
		log:      log,
		now:      time.Now,
	}
}

// BudgetVsActual compares budgeted against actual spending per category.
// Zero from/to default to the current month to date.
func (s *Service) BudgetVsActual(ctx context.Context, userID string, from, to time.Time) ([]model.BudgetComparison, error) {
	if from.IsZero() {
		from = model.MonthStart(s.now())
	}
	if to.IsZero() {
		to = model.DateOnly(s.now())
	}

	budgets, err := s.budgets.ListActive(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load budgets: %w", err)
	}

	actuals, err := s.spending.TotalsByCategory(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to sum spending: %w", err)
	}

	comparisons := make([]model.BudgetComparison, 0, len(budgets))
	for _, budget := range budgets {
		actual := actuals[budget.Category]
		variance := budget.AmountLimit.Sub(actual)

		variancePercent := decimal.Zero
		usagePercent := decimal.Zero
		if budget.AmountLimit.GreaterThan(decimal.Zero) {
			variancePercent = variance.Div(budget.AmountLimit).Mul(hundred).Round(2)
			usagePercent = actual.Div(budget.AmountLimit).Mul(hundred).Round(2)
		}

		status := model.StatusOnTarget
		if actual.LessThan(budget.AmountLimit.Mul(onTargetCutoff)) {
			status = model.StatusUnder
		} else if actual.GreaterThan(budget.AmountLimit) {
			status = model.StatusOver
		}

		comparisons = append(comparisons, model.BudgetComparison{
			Category:        budget.Category,
			Budget:          budget.AmountLimit,
			Actual:          actual,
			Variance:        variance,
			VariancePercent: variancePercent,
			UsagePercent:    usagePercent,
			Status:          status,
		})
	}

	return comparisons, nil
}

// HealthScore grades month-to-date adherence for one category against the
// given limit.
func (s *Service) HealthScore(ctx context.Context, userID, category string, budgetLimit decimal.Decimal) (model.HealthScore, error) {
	today := model.DateOnly(s.now())
	monthStart := model.MonthStart(today)

	spending, err := s.spending.TotalInRange(ctx, userID, category, monthStart, today)
	if err != nil {
		return model.HealthScore{}, fmt.Errorf("failed to sum spending: %w", err)
	}

	usage := decimal.Zero
	if budgetLimit.GreaterThan(decimal.Zero) {
		usage = spending.Div(budgetLimit).Mul(hundred).Round(2)
	}

	score := model.HealthScore{
		Category:        category,
		UsagePercent:    usage,
		CurrentSpending: spending,
		Budget:          budgetLimit,
	}

	switch {
	case usage.LessThanOrEqual(scoreGoodBound):
		score.Score = 100
		score.Level = "excellent"
		score.Color = "#28a745"
		score.Message = "Well within budget! Excellent spending control."
	case usage.LessThanOrEqual(scoreWarnBound):
		score.Score = 85
		score.Level = "good"
		score.Color = "#34c54a"
		score.Message = "Good budget management. Keep it up!"
	case usage.LessThanOrEqual(scoreNearBound):
		score.Score = 70
		score.Level = "warning"
		score.Color = "#ffc107"
		score.Message = "Approaching budget limit. Monitor spending closely."
	case usage.LessThanOrEqual(scoreLimitBound):
		score.Score = 50
		score.Level = "warning"
		score.Color = "#fd7e14"
		score.Message = "Near budget limit! Be cautious with spending."
	default:
		points := 100 - int(usage.IntPart())
		if points < 0 {
			points = 0
		}
		score.Score = points
		score.Level = "critical"
		score.Color = "#dc3545"
		score.Message = fmt.Sprintf("Over budget by %s%%! Immediate action needed.", usage.Sub(hundred).StringFixed(1))
	}

	return score, nil
}

// Trends returns up to months of budget limit changes for a category,
// oldest first.
func (s *Service) Trends(ctx context.Context, userID, category string, months int) ([]model.BudgetTrendPoint, error) {
	entries, err := s.history.Recent(ctx, userID, category, months)
	if err != nil {
		return nil, fmt.Errorf("failed to load budget history: %w", err)
	}

	trends := make([]model.BudgetTrendPoint, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		entry := entries[i]
		reason := entry.ChangeReason
		if reason == "" {
			reason = "Initial budget"
		}
		trends = append(trends, model.BudgetTrendPoint{
			Month:         entry.ChangeDate.Format("2006-01"),
			BudgetLimit:   entry.AmountLimit,
			PreviousLimit: entry.PreviousLimit,
			Reason:        reason,
		})
	}

	return trends, nil
}
