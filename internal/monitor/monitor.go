package monitor

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"ledger-service/internal/model"
)

// BudgetSource lists the budgets eligible for evaluation: active ones whose
// snooze window has elapsed.
type BudgetSource interface {
	ListEvaluable(ctx context.Context, userID string, now time.Time) ([]model.BudgetConfig, error)
}

// SpendingSource sums category spending across a day range.
type SpendingSource interface {
	TotalInRange(ctx context.Context, userID, category string, from, to time.Time) (decimal.Decimal, error)
}

// EventSink records alert events conditionally: the insert must be atomic
// on (budget, tier, day) so concurrent evaluations cannot double-fire.
type EventSink interface {
	InsertIfAbsent(ctx context.Context, event *model.AlertEvent) (bool, error)
}

var hundred = decimal.NewFromInt(100)

// Monitor walks each budget's enabled tiers against month-to-date spending
// and decides which tiers newly fired.
type Monitor struct {
	budgets  BudgetSource
	spending SpendingSource
	events   EventSink
	log      *logrus.Logger
	now      func() time.Time
}

func New(budgets BudgetSource, spending SpendingSource, events EventSink, log *logrus.Logger) *Monitor {
	return &Monitor{
		budgets:  budgets,
		spending: spending,
		events:   events,
		log:      log,
		now:      time.Now,
	}
}

// Evaluate checks every evaluable budget for the user as of the given day.
// It returns one decision per enabled tier at or below current usage;
// ShouldNotify is true only for tiers whose event was recorded by this
// call. A budget that fails to evaluate is logged and skipped so the rest
// of the user's budgets still run.
func (m *Monitor) Evaluate(ctx context.Context, userID string, asOf time.Time) ([]model.AlertDecision, error) {
	day := model.DateOnly(asOf)

	budgets, err := m.budgets.ListEvaluable(ctx, userID, m.now())
	if err != nil {
		return nil, fmt.Errorf("failed to load budgets: %w", err)
	}

	decisions := make([]model.AlertDecision, 0, len(budgets))
	for i := range budgets {
		budgetDecisions, err := m.evaluateBudget(ctx, &budgets[i], day)
		if err != nil {
			m.log.WithError(err).WithFields(logrus.Fields{
				"budget_id": budgets[i].ID,
				"category":  budgets[i].Category,
			}).Warn("budget evaluation failed, skipping")
			continue
		}
		decisions = append(decisions, budgetDecisions...)
	}

	return decisions, nil
}

func (m *Monitor) evaluateBudget(ctx context.Context, budget *model.BudgetConfig, day time.Time) ([]model.AlertDecision, error) {
	if budget.AmountLimit.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("budget %d has a non-positive limit", budget.ID)
	}

	monthStart := model.MonthStart(day)
	spent, err := m.spending.TotalInRange(ctx, budget.UserID, budget.Category, monthStart, day)
	if err != nil {
		return nil, fmt.Errorf("failed to sum spending: %w", err)
	}

	usage := spent.Div(budget.AmountLimit).Mul(hundred).Round(2)
	channels := budget.Channels()

	// Walk tiers ascending: a single large expense can cross several at
	// once, and each one fires with its own severity.
	var decisions []model.AlertDecision
	for _, tier := range budget.EnabledTiers() {
		if usage.LessThan(decimal.NewFromInt(int64(tier))) {
			break
		}

		event := &model.AlertEvent{
			BudgetID:        budget.ID,
			UserID:          budget.UserID,
			Category:        budget.Category,
			ThresholdLevel:  int(tier),
			Severity:        tier.Severity(),
			CurrentSpending: spent,
			BudgetLimit:     budget.AmountLimit,
			UsagePercent:    usage,
			TriggeredAt:     m.now(),
			TriggeredOn:     day,
		}

		inserted, err := m.events.InsertIfAbsent(ctx, event)
		if err != nil {
			return nil, fmt.Errorf("failed to record alert event for tier %d: %w", tier, err)
		}

		decisions = append(decisions, model.AlertDecision{
			BudgetID:        budget.ID,
			UserID:          budget.UserID,
			Category:        budget.Category,
			ThresholdLevel:  tier,
			Severity:        tier.Severity(),
			CurrentSpending: spent,
			Limit:           budget.AmountLimit,
			UsagePercent:    usage,
			Channels:        channels,
			ShouldNotify:    inserted,
		})
	}

	return decisions, nil
}
