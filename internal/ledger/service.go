package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"ledger-service/internal/analysis"
	"ledger-service/internal/audit"
	"ledger-service/internal/config"
	"ledger-service/internal/forecast"
	"ledger-service/internal/model"
	"ledger-service/internal/monitor"
	"ledger-service/internal/notify"
	"ledger-service/internal/repository"
	"ledger-service/internal/wallet"
)

// Service is the mutation and query surface around the engine: it validates
// and persists ledger writes, keeps the audit trail, and re-evaluates the
// owner's budgets after spending changes. Web or API layers call it; the
// engine packages underneath stay pure.
type Service struct {
	expenses   *repository.ExpenseRepository
	incomes    *repository.IncomeRepository
	budgets    *repository.BudgetRepository
	alerts     *repository.AlertEventRepository
	allowances *repository.AllowanceRepository
	history    *repository.BudgetHistoryRepository
	categories *repository.CategoryRepository

	wallet    *wallet.Calculator
	monitor   *monitor.Monitor
	predictor *forecast.Predictor
	analyzer  *analysis.Service

	dispatcher notify.Dispatcher
	auditor    audit.Recorder
	log        *logrus.Logger

	defaultTiers      []model.Tier
	defaultCategories []string

	now func() time.Time
}

// Deps wires the service. All fields are required except Policy, whose zero
// value falls back to the compiled-in tier and category defaults.
type Deps struct {
	Expenses   *repository.ExpenseRepository
	Incomes    *repository.IncomeRepository
	Budgets    *repository.BudgetRepository
	Alerts     *repository.AlertEventRepository
	Allowances *repository.AllowanceRepository
	History    *repository.BudgetHistoryRepository
	Categories *repository.CategoryRepository

	Wallet    *wallet.Calculator
	Monitor   *monitor.Monitor
	Predictor *forecast.Predictor
	Analyzer  *analysis.Service

	Dispatcher notify.Dispatcher
	Audit      audit.Recorder
	Log        *logrus.Logger

	Policy config.EngineConfig
}

func New(deps Deps) *Service {
	tiers := make([]model.Tier, 0, len(deps.Policy.DefaultTiers))
	for _, t := range deps.Policy.DefaultTiers {
		switch tier := model.Tier(t); tier {
		case model.Tier50, model.Tier75, model.Tier90, model.Tier100:
			tiers = append(tiers, tier)
		}
	}
	if len(tiers) == 0 {
		tiers = model.AllTiers
	}

	categories := deps.Policy.DefaultCategories
	if len(categories) == 0 {
		categories = model.DefaultCategories
	}

	return &Service{
		expenses:          deps.Expenses,
		incomes:           deps.Incomes,
		budgets:           deps.Budgets,
		alerts:            deps.Alerts,
		allowances:        deps.Allowances,
		history:           deps.History,
		categories:        deps.Categories,
		wallet:            deps.Wallet,
		monitor:           deps.Monitor,
		predictor:         deps.Predictor,
		analyzer:          deps.Analyzer,
		dispatcher:        deps.Dispatcher,
		auditor:           deps.Audit,
		log:               deps.Log,
		defaultTiers:      tiers,
		defaultCategories: categories,
		now:               time.Now,
	}
}

// EvaluateAndDispatch runs the budget monitor for a user and hands every
// newly fired decision to the dispatcher. Delivery is best-effort: a failed
// channel is logged and never retried, and the alert event already recorded
// by the monitor stays in place regardless.
func (s *Service) EvaluateAndDispatch(ctx context.Context, userID string, asOf time.Time) ([]model.AlertDecision, error) {
	decisions, err := s.monitor.Evaluate(ctx, userID, asOf)
	if err != nil {
		return nil, err
	}

	for _, decision := range decisions {
		if !decision.ShouldNotify || len(decision.Channels) == 0 {
			continue
		}

		notification := notify.FromDecision(decision, s.now())
		for channel, channelErr := range s.dispatcher.Notify(ctx, notification) {
			if channelErr != nil {
				s.log.WithError(channelErr).WithFields(logrus.Fields{
					"user_id":   userID,
					"budget_id": decision.BudgetID,
					"tier":      decision.ThresholdLevel,
					"channel":   channel,
				}).Warn("notification delivery failed")
			}
		}
	}

	return decisions, nil
}

// Wallet returns the day-level wallet snapshot, recomputed from the store.
func (s *Service) Wallet(ctx context.Context, userID string, asOf time.Time) (model.WalletSnapshot, error) {
	return s.wallet.Snapshot(ctx, userID, asOf)
}

// PredictBreach forecasts whether the category's active budget will be
// exceeded before month end.
func (s *Service) PredictBreach(ctx context.Context, userID, category string) (model.Prediction, error) {
	budget, err := s.budgets.ActiveByCategory(ctx, userID, model.NormalizeCategory(category))
	if err != nil {
		return model.Prediction{}, fmt.Errorf("no active budget for category %q: %w", category, err)
	}

	daysRemaining := forecast.DaysRemainingInMonth(s.now())
	return s.predictor.Predict(ctx, userID, budget.Category, budget.AmountLimit, daysRemaining)
}

// BudgetVsActual compares budgeted against actual spending per category.
func (s *Service) BudgetVsActual(ctx context.Context, userID string, from, to time.Time) ([]model.BudgetComparison, error) {
	return s.analyzer.BudgetVsActual(ctx, userID, from, to)
}

// CategoryHealth grades month-to-date adherence for the category's active
// budget.
func (s *Service) CategoryHealth(ctx context.Context, userID, category string) (model.HealthScore, error) {
	budget, err := s.budgets.ActiveByCategory(ctx, userID, model.NormalizeCategory(category))
	if err != nil {
		return model.HealthScore{}, fmt.Errorf("no active budget for category %q: %w", category, err)
	}
	return s.analyzer.HealthScore(ctx, userID, budget.Category, budget.AmountLimit)
}

// BudgetTrends returns the category's budget limit history, oldest first.
func (s *Service) BudgetTrends(ctx context.Context, userID, category string, months int) ([]model.BudgetTrendPoint, error) {
	return s.analyzer.Trends(ctx, userID, model.NormalizeCategory(category), months)
}

// AlertHistory lists the user's alert events, newest first.
func (s *Service) AlertHistory(ctx context.Context, userID string, filter repository.AlertFilter) ([]model.AlertEvent, error) {
	return s.alerts.List(ctx, userID, filter)
}

// Categories lists the user's category names, seeding the defaults for a
// user who has none yet.
func (s *Service) Categories(ctx context.Context, userID string) ([]string, error) {
	names, err := s.categories.ListNames(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	if len(names) > 0 {
		return names, nil
	}

	if err := s.categories.EnsureDefaults(ctx, userID, s.defaultCategories); err != nil {
		return nil, fmt.Errorf("failed to seed default categories: %w", err)
	}
	return s.categories.ListNames(ctx, userID)
}

// evaluateAfterWrite re-runs the budget monitor after a spending change. The
// write already succeeded, so evaluation trouble is logged rather than
// surfaced as a mutation failure.
func (s *Service) evaluateAfterWrite(ctx context.Context, userID, category string, asOf time.Time) []model.AlertDecision {
	decisions, err := s.EvaluateAndDispatch(ctx, userID, asOf)
	if err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"user_id":  userID,
			"category": category,
		}).Error("budget evaluation after write failed")
		return nil
	}
	return decisions
}

// record writes an audit entry. Audit failures never fail the mutation that
// triggered them; they are logged and dropped.
func (s *Service) record(ctx context.Context, userID, action, resourceType string, resourceID uint, metadata map[string]interface{}) {
	id := fmt.Sprintf("%d", resourceID)
	if err := s.auditor.Record(ctx, userID, action, resourceType, id, metadata); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"user_id":       userID,
			"action":        action,
			"resource_type": resourceType,
			"resource_id":   id,
		}).Warn("audit write failed")
	}
}

// ensureCategory records a category name for the user so it shows up in
// category listings. Best-effort: a failure only costs the listing entry.
func (s *Service) ensureCategory(ctx context.Context, userID, name string) {
	if err := s.categories.EnsureDefaults(ctx, userID, []string{name}); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"user_id":  userID,
			"category": name,
		}).Warn("failed to record category")
	}
}
