package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"ledger-service/internal/model"
)

// BudgetInput carries the raw fields of a budget submission. Zero values
// fall back to the stock defaults: threshold percent 80, the policy's
// default tier set, dashboard-only notifications.
type BudgetInput struct {
	Category         string
	AmountLimit      string
	ThresholdPercent int
	Tiers            []model.Tier
	Channels         []model.Channel
	ChangeReason     string
}

// CreateBudget sets up a spending ceiling for a category. At most one
// active budget may exist per (user, category); a second one is rejected.
func (s *Service) CreateBudget(ctx context.Context, userID string, input BudgetInput) (*model.BudgetConfig, error) {
	limit, err := parseAmount(input.AmountLimit)
	if err != nil {
		return nil, err
	}
	category := model.NormalizeCategory(input.Category)
	if category == "" {
		return nil, model.ErrInvalidCategory
	}

	budget := model.NewBudgetConfig(userID, category, limit)
	if input.ThresholdPercent != 0 {
		budget.ThresholdPercent = input.ThresholdPercent
	}
	if len(input.Tiers) > 0 {
		budget.SetTiers(input.Tiers)
	} else {
		budget.SetTiers(s.defaultTiers)
	}
	if len(input.Channels) > 0 {
		budget.SetChannels(input.Channels)
	}
	if err := budget.Validate(); err != nil {
		return nil, err
	}

	exists, err := s.budgets.HasActive(ctx, userID, category, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to check for existing budget: %w", err)
	}
	if exists {
		return nil, model.ErrDuplicateBudget
	}

	if err := s.budgets.Create(ctx, budget); err != nil {
		return nil, fmt.Errorf("failed to create budget: %w", err)
	}
	s.ensureCategory(ctx, userID, category)
	s.writeHistory(ctx, budget, nil, "Initial budget")
	s.record(ctx, userID, "CREATE", "budget", budget.ID, map[string]interface{}{
		"category":     category,
		"amount_limit": limit.String(),
	})

	return budget, nil
}

// UpdateBudget replaces a budget's configuration. A limit change is
// recorded in the budget history so the trends view can report it.
func (s *Service) UpdateBudget(ctx context.Context, userID string, id uint, input BudgetInput) (*model.BudgetConfig, error) {
	budget, err := s.budgets.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if budget.UserID != userID {
		return nil, model.ErrNotOwner
	}

	limit, err := parseAmount(input.AmountLimit)
	if err != nil {
		return nil, err
	}
	category := model.NormalizeCategory(input.Category)
	if category == "" {
		return nil, model.ErrInvalidCategory
	}

	previousLimit := budget.AmountLimit
	budget.Category = category
	budget.AmountLimit = limit
	if input.ThresholdPercent != 0 {
		budget.ThresholdPercent = input.ThresholdPercent
	}
	if len(input.Tiers) > 0 {
		budget.SetTiers(input.Tiers)
	}
	if len(input.Channels) > 0 {
		budget.SetChannels(input.Channels)
	}
	// Editing re-activates, matching how saving the form always re-arms
	// the alert.
	budget.Active = true
	if err := budget.Validate(); err != nil {
		return nil, err
	}

	exists, err := s.budgets.HasActive(ctx, userID, category, budget.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check for existing budget: %w", err)
	}
	if exists {
		return nil, model.ErrDuplicateBudget
	}

	if err := s.budgets.Save(ctx, budget); err != nil {
		return nil, fmt.Errorf("failed to update budget: %w", err)
	}
	if !limit.Equal(previousLimit) {
		reason := input.ChangeReason
		if reason == "" {
			reason = "Limit updated"
		}
		s.writeHistory(ctx, budget, &previousLimit, reason)
	}
	s.record(ctx, userID, "UPDATE", "budget", budget.ID, map[string]interface{}{
		"category":       category,
		"amount_limit":   limit.String(),
		"previous_limit": previousLimit.String(),
	})

	return budget, nil
}

// SnoozeBudget suppresses a budget's alerts until the given time. Snoozing
// does not acknowledge events that already fired.
func (s *Service) SnoozeBudget(ctx context.Context, userID string, id uint, until time.Time) error {
	if !until.After(s.now()) {
		return model.ErrInvalidDate
	}
	if err := s.budgets.Snooze(ctx, id, userID, until); err != nil {
		return err
	}
	s.record(ctx, userID, "UPDATE", "budget", id, map[string]interface{}{
		"snoozed_until": until.Format(time.RFC3339),
	})
	return nil
}

// DeactivateBudget turns a budget off while keeping its alert history.
func (s *Service) DeactivateBudget(ctx context.Context, userID string, id uint) error {
	if err := s.budgets.Deactivate(ctx, id, userID); err != nil {
		return err
	}
	s.record(ctx, userID, "UPDATE", "budget", id, map[string]interface{}{
		"active": false,
	})
	return nil
}

// DeleteBudget removes a budget owned by the user.
func (s *Service) DeleteBudget(ctx context.Context, userID string, id uint) error {
	if err := s.budgets.Delete(ctx, id, userID); err != nil {
		return err
	}
	s.record(ctx, userID, "DELETE", "budget", id, nil)
	return nil
}

// AcknowledgeAlert marks an alert event as seen. The event itself is
// immutable apart from this flag.
func (s *Service) AcknowledgeAlert(ctx context.Context, userID string, id uint) error {
	if err := s.alerts.Acknowledge(ctx, id, userID, s.now()); err != nil {
		return err
	}
	s.record(ctx, userID, "UPDATE", "alert", id, map[string]interface{}{
		"acknowledged": true,
	})
	return nil
}

// writeHistory appends a budget-limit change record. History is reporting
// data; a failed write is logged, not fatal.
func (s *Service) writeHistory(ctx context.Context, budget *model.BudgetConfig, previous *decimal.Decimal, reason string) {
	entry := &model.BudgetHistory{
		UserID:           budget.UserID,
		Category:         budget.Category,
		AmountLimit:      budget.AmountLimit,
		ThresholdPercent: budget.ThresholdPercent,
		PreviousLimit:    previous,
		ChangeReason:     reason,
		ChangeDate:       s.now(),
	}
	if err := s.history.Create(ctx, entry); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"user_id":  budget.UserID,
			"category": budget.Category,
		}).Warn("failed to record budget history")
	}
}
