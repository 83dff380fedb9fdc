package ledger

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"ledger-service/internal/model"
)

// ExpenseInput carries the raw fields of an expense submission. Amount and
// Date arrive as strings so that validation owns their parsing.
type ExpenseInput struct {
	Amount   string
	Category string
	Date     string
	Notes    string
}

// IncomeInput carries the raw fields of an ad-hoc income submission.
type IncomeInput struct {
	Amount string
	Source string
	Date   string
	Notes  string
}

// parseAmount turns a raw money field into a decimal. Empty and malformed
// inputs map to distinct validation errors.
func parseAmount(raw string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return decimal.Zero, model.ErrAmountRequired
	}
	amount, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Zero, model.ErrAmountInvalid
	}
	return amount, nil
}

// AddExpense validates and records a spending entry, then re-evaluates the
// owner's budgets as of the expense date. The returned decisions cover every
// enabled tier at or below the new usage.
func (s *Service) AddExpense(ctx context.Context, userID string, input ExpenseInput) (*model.Expense, []model.AlertDecision, error) {
	amount, err := parseAmount(input.Amount)
	if err != nil {
		return nil, nil, err
	}
	date, err := model.ParseDate(input.Date)
	if err != nil {
		return nil, nil, err
	}

	expense := &model.Expense{
		UserID:   userID,
		Amount:   amount,
		Category: model.NormalizeCategory(input.Category),
		Date:     date,
		Notes:    input.Notes,
	}
	if err := expense.Validate(); err != nil {
		return nil, nil, err
	}

	if err := s.expenses.Create(ctx, expense); err != nil {
		return nil, nil, fmt.Errorf("failed to create expense: %w", err)
	}
	s.ensureCategory(ctx, userID, expense.Category)
	s.record(ctx, userID, "CREATE", "expense", expense.ID, map[string]interface{}{
		"amount":   expense.Amount.String(),
		"category": expense.Category,
		"date":     expense.Date.Format("2006-01-02"),
	})

	decisions := s.evaluateAfterWrite(ctx, userID, expense.Category, expense.Date)
	return expense, decisions, nil
}

// UpdateExpense replaces an expense's amount, category, date and notes
// wholesale, re-validating as if it were a new entry. Budgets are
// re-evaluated afterwards because the edit may move spending between
// categories or days.
func (s *Service) UpdateExpense(ctx context.Context, userID string, id uint, input ExpenseInput) (*model.Expense, []model.AlertDecision, error) {
	expense, err := s.expenses.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if expense.UserID != userID {
		return nil, nil, model.ErrNotOwner
	}

	amount, err := parseAmount(input.Amount)
	if err != nil {
		return nil, nil, err
	}
	date, err := model.ParseDate(input.Date)
	if err != nil {
		return nil, nil, err
	}

	previousAmount := expense.Amount
	expense.Amount = amount
	expense.Category = model.NormalizeCategory(input.Category)
	expense.Date = date
	expense.Notes = input.Notes
	if err := expense.Validate(); err != nil {
		return nil, nil, err
	}

	if err := s.expenses.Save(ctx, expense); err != nil {
		return nil, nil, fmt.Errorf("failed to update expense: %w", err)
	}
	s.ensureCategory(ctx, userID, expense.Category)
	s.record(ctx, userID, "UPDATE", "expense", expense.ID, map[string]interface{}{
		"amount":          expense.Amount.String(),
		"previous_amount": previousAmount.String(),
		"category":        expense.Category,
		"date":            expense.Date.Format("2006-01-02"),
	})

	decisions := s.evaluateAfterWrite(ctx, userID, expense.Category, expense.Date)
	return expense, decisions, nil
}

// DeleteExpense removes an expense owned by the user. Deleting lowers
// spending, so no re-evaluation runs; already-recorded alert events stay.
func (s *Service) DeleteExpense(ctx context.Context, userID string, id uint) error {
	if err := s.expenses.Delete(ctx, id, userID); err != nil {
		return err
	}
	s.record(ctx, userID, "DELETE", "expense", id, nil)
	return nil
}

// AddIncome records ad-hoc money added to the wallet. Income never affects
// category budgets, so no evaluation runs.
func (s *Service) AddIncome(ctx context.Context, userID string, input IncomeInput) (*model.Income, error) {
	amount, err := parseAmount(input.Amount)
	if err != nil {
		return nil, err
	}
	date, err := model.ParseDate(input.Date)
	if err != nil {
		return nil, err
	}

	income := &model.Income{
		UserID: userID,
		Amount: amount,
		Source: model.IncomeSource(strings.TrimSpace(input.Source)),
		Date:   date,
		Notes:  input.Notes,
	}
	if err := income.Validate(); err != nil {
		return nil, err
	}

	if err := s.incomes.Create(ctx, income); err != nil {
		return nil, fmt.Errorf("failed to create income: %w", err)
	}
	s.record(ctx, userID, "CREATE", "income", income.ID, map[string]interface{}{
		"amount": income.Amount.String(),
		"source": string(income.Source),
		"date":   income.Date.Format("2006-01-02"),
	})
	return income, nil
}

// DeleteIncome removes an income entry owned by the user.
func (s *Service) DeleteIncome(ctx context.Context, userID string, id uint) error {
	if err := s.incomes.Delete(ctx, id, userID); err != nil {
		return err
	}
	s.record(ctx, userID, "DELETE", "income", id, nil)
	return nil
}

// SetMonthlyAllowance stores the user's monthly spending allowance. Zero is
// allowed and means the wallet falls back to the fixed daily default.
func (s *Service) SetMonthlyAllowance(ctx context.Context, userID, amount string) (*model.AllowanceSetting, error) {
	monthly, err := parseAmount(amount)
	if err != nil {
		return nil, err
	}
	if monthly.IsNegative() {
		return nil, model.ErrAmountNotPositive
	}
	if monthly.GreaterThan(model.MaxAmount) {
		return nil, model.ErrAmountTooLarge
	}

	setting := &model.AllowanceSetting{
		UserID:           userID,
		MonthlyAllowance: monthly,
		UpdatedAt:        s.now(),
	}
	if err := s.allowances.Upsert(ctx, setting); err != nil {
		return nil, fmt.Errorf("failed to save monthly allowance: %w", err)
	}
	s.record(ctx, userID, "UPDATE", "allowance", setting.ID, map[string]interface{}{
		"monthly_allowance": monthly.String(),
	})
	return setting, nil
}

// MonthlyAllowance returns the stored allowance setting, or nil when the
// user has never set one.
func (s *Service) MonthlyAllowance(ctx context.Context, userID string) (*model.AllowanceSetting, error) {
	return s.allowances.Get(ctx, userID)
}
