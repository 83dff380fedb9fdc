package wallet

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"ledger-service/internal/model"
)

// ExpenseSource provides per-day expense sums.
type ExpenseSource interface {
	TotalOnDay(ctx context.Context, userID string, day time.Time) (decimal.Decimal, error)
}

// IncomeSource provides per-day income sums.
type IncomeSource interface {
	TotalOnDay(ctx context.Context, userID string, day time.Time) (decimal.Decimal, error)
}

// AllowanceSource provides the user's monthly allowance setting, nil when
// none is stored.
type AllowanceSource interface {
	Get(ctx context.Context, userID string) (*model.AllowanceSetting, error)
}

// Calculator derives the day-level wallet state. Snapshots are recomputed
// from the store on every call and never cached.
type Calculator struct {
	expenses     ExpenseSource
	incomes      IncomeSource
	allowances   AllowanceSource
	defaultDaily decimal.Decimal
	log          *logrus.Logger
}

func NewCalculator(
	expenses ExpenseSource,
	incomes IncomeSource,
	allowances AllowanceSource,
	defaultDaily decimal.Decimal,
	log *logrus.Logger,
) *Calculator {
	return &Calculator{
		expenses:     expenses,
		incomes:      incomes,
		allowances:   allowances,
		defaultDaily: defaultDaily,
		log:          log,
	}
}

// Snapshot computes the wallet state for one calendar day.
//
// The opening balance carries over yesterday's unspent allowance plus income
// minus expenses, clamped at zero; only yesterday's single-day figures feed
// it, the history chain is not replayed. Editing data older than one day
// therefore drifts past snapshots, a known limitation of the carryover rule.
func (c *Calculator) Snapshot(ctx context.Context, userID string, asOf time.Time) (model.WalletSnapshot, error) {
	day := model.DateOnly(asOf)
	yesterday := day.AddDate(0, 0, -1)

	setting, err := c.allowances.Get(ctx, userID)
	if err != nil {
		return model.WalletSnapshot{}, fmt.Errorf("failed to load monthly allowance: %w", err)
	}

	// An unset or non-positive monthly allowance falls back to the fixed
	// default daily figure for all downstream math.
	monthly := decimal.Zero
	hasMonthly := false
	if setting != nil && setting.MonthlyAllowance.GreaterThan(decimal.Zero) {
		monthly = setting.MonthlyAllowance
		hasMonthly = true
	}

	yesterdayAllowance := c.dailyAllowance(monthly, hasMonthly, yesterday)
	todayAllowance := c.dailyAllowance(monthly, hasMonthly, day)

	yesterdayIncome, err := c.incomes.TotalOnDay(ctx, userID, yesterday)
	if err != nil {
		return model.WalletSnapshot{}, fmt.Errorf("failed to sum income for %s: %w", yesterday.Format("2006-01-02"), err)
	}
	yesterdayExpenses, err := c.expenses.TotalOnDay(ctx, userID, yesterday)
	if err != nil {
		return model.WalletSnapshot{}, fmt.Errorf("failed to sum expenses for %s: %w", yesterday.Format("2006-01-02"), err)
	}

	// A user cannot carry debt into a new day.
	opening := yesterdayAllowance.Add(yesterdayIncome).Sub(yesterdayExpenses)
	if opening.IsNegative() {
		opening = decimal.Zero
	}

	todayIncome, err := c.incomes.TotalOnDay(ctx, userID, day)
	if err != nil {
		return model.WalletSnapshot{}, fmt.Errorf("failed to sum income for %s: %w", day.Format("2006-01-02"), err)
	}
	todayExpenses, err := c.expenses.TotalOnDay(ctx, userID, day)
	if err != nil {
		return model.WalletSnapshot{}, fmt.Errorf("failed to sum expenses for %s: %w", day.Format("2006-01-02"), err)
	}

	total := opening.Add(todayAllowance).Add(todayIncome)
	closing := total.Sub(todayExpenses)

	percentUsed := decimal.Zero
	if total.GreaterThan(decimal.Zero) {
		percentUsed = todayExpenses.Div(total).Mul(decimal.NewFromInt(100)).Round(2)
	}

	return model.WalletSnapshot{
		UserID:         userID,
		Date:           day,
		OpeningBalance: opening,
		DailyAllowance: todayAllowance,
		DailyIncome:    todayIncome,
		TodayExpenses:  todayExpenses,
		TotalAvailable: total,
		ClosingBalance: closing,
		PercentUsed:    percentUsed,
	}, nil
}

// dailyAllowance spreads the monthly allowance across the month of the
// given day. Days-in-month varies 28-31, so the same monthly figure yields
// a different daily figure in different months; yesterday's allowance is
// computed against yesterday's month.
func (c *Calculator) dailyAllowance(monthly decimal.Decimal, hasMonthly bool, day time.Time) decimal.Decimal {
	if !hasMonthly {
		return c.defaultDaily
	}
	days := decimal.NewFromInt(int64(model.DaysInMonth(day)))
	return monthly.Div(days).Round(2)
}
