package model

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func amount(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("parse amount %q: %v", s, err)
	}
	return d
}

func TestValidateAmount(t *testing.T) {
	cases := []struct {
		amount string
		want   error
	}{
		{"0.01", nil},
		{"999999999.99", nil},
		{"0", ErrAmountNotPositive},
		{"-5", ErrAmountNotPositive},
		{"1000000000.00", ErrAmountTooLarge},
	}

	for _, tc := range cases {
		if got := ValidateAmount(amount(t, tc.amount)); !errors.Is(got, tc.want) {
			t.Errorf("ValidateAmount(%s) = %v, want %v", tc.amount, got, tc.want)
		}
	}
}

func TestExpenseValidate(t *testing.T) {
	expense := Expense{Amount: amount(t, "120.50"), Category: "Food"}
	if err := expense.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	expense.Category = ""
	if err := expense.Validate(); !errors.Is(err, ErrInvalidCategory) {
		t.Fatalf("Validate = %v, want ErrInvalidCategory", err)
	}

	expense = Expense{Amount: decimal.Zero, Category: "Food"}
	if err := expense.Validate(); !errors.Is(err, ErrAmountNotPositive) {
		t.Fatalf("Validate = %v, want ErrAmountNotPositive", err)
	}
}

func TestIncomeValidate(t *testing.T) {
	income := Income{Amount: amount(t, "50"), Source: SourceTip}
	if err := income.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	income.Source = "lottery"
	if err := income.Validate(); !errors.Is(err, ErrInvalidSource) {
		t.Fatalf("Validate = %v, want ErrInvalidSource", err)
	}
}

func TestBudgetConfigValidate(t *testing.T) {
	budget := NewBudgetConfig("u1", "Food", amount(t, "1000"))
	if err := budget.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	cases := []struct {
		mutate func(*BudgetConfig)
		want   error
	}{
		{func(b *BudgetConfig) { b.Category = "" }, ErrInvalidCategory},
		{func(b *BudgetConfig) { b.AmountLimit = decimal.Zero }, ErrLimitNotPositive},
		{func(b *BudgetConfig) { b.AmountLimit = amount(t, "1000000000") }, ErrLimitTooLarge},
		{func(b *BudgetConfig) { b.ThresholdPercent = 9 }, ErrThresholdOutOfRange},
		{func(b *BudgetConfig) { b.ThresholdPercent = 101 }, ErrThresholdOutOfRange},
	}
	for i, tc := range cases {
		b := NewBudgetConfig("u1", "Food", amount(t, "1000"))
		tc.mutate(b)
		if err := b.Validate(); !errors.Is(err, tc.want) {
			t.Errorf("case %d: Validate = %v, want %v", i, err, tc.want)
		}
	}
}

func TestNewBudgetConfigDefaults(t *testing.T) {
	budget := NewBudgetConfig("u1", "Food", amount(t, "1000"))

	if !budget.Active {
		t.Error("new budget should be active")
	}
	if budget.ThresholdPercent != 80 {
		t.Errorf("ThresholdPercent = %d, want 80", budget.ThresholdPercent)
	}
	if got := budget.EnabledTiers(); len(got) != 4 {
		t.Errorf("EnabledTiers = %v, want all four", got)
	}
	if got := budget.Channels(); len(got) != 1 || got[0] != ChannelDashboard {
		t.Errorf("Channels = %v, want [dashboard]", got)
	}
}

func TestSetTiersRoundTrip(t *testing.T) {
	budget := NewBudgetConfig("u1", "Food", amount(t, "1000"))
	budget.SetTiers([]Tier{Tier90, Tier50})

	got := budget.EnabledTiers()
	want := []Tier{Tier50, Tier90}
	if len(got) != len(want) {
		t.Fatalf("EnabledTiers = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("EnabledTiers = %v, want %v (ascending)", got, want)
		}
	}
}

func TestSetChannels(t *testing.T) {
	budget := NewBudgetConfig("u1", "Food", amount(t, "1000"))
	budget.SetChannels([]Channel{ChannelEmail, ChannelPush})

	got := budget.Channels()
	if len(got) != 2 || got[0] != ChannelEmail || got[1] != ChannelPush {
		t.Fatalf("Channels = %v, want [email push]", got)
	}
	if budget.NotifyDashboard {
		t.Error("SetChannels should clear channels not listed")
	}
}

func TestSnoozed(t *testing.T) {
	now := time.Date(2026, 6, 21, 12, 0, 0, 0, time.UTC)
	budget := NewBudgetConfig("u1", "Food", amount(t, "1000"))

	if budget.Snoozed(now) {
		t.Error("budget without snoozed_until reported snoozed")
	}

	future := now.Add(time.Hour)
	budget.SnoozedUntil = &future
	if !budget.Snoozed(now) {
		t.Error("budget snoozed into the future reported not snoozed")
	}

	past := now.Add(-time.Hour)
	budget.SnoozedUntil = &past
	if budget.Snoozed(now) {
		t.Error("budget with elapsed snooze reported snoozed")
	}
}

func TestTierSeverity(t *testing.T) {
	cases := []struct {
		tier Tier
		want Severity
	}{
		{Tier50, SeverityInfo},
		{Tier75, SeverityWarning},
		{Tier90, SeverityDanger},
		{Tier100, SeverityCritical},
	}
	for _, tc := range cases {
		if got := tc.tier.Severity(); got != tc.want {
			t.Errorf("Tier(%d).Severity() = %s, want %s", tc.tier, got, tc.want)
		}
	}
}

func TestBudgetHistoryChangePercent(t *testing.T) {
	previous := amount(t, "500")
	entry := BudgetHistory{AmountLimit: amount(t, "750"), PreviousLimit: &previous}

	if got := entry.ChangeAmount(); !got.Equal(amount(t, "250")) {
		t.Errorf("ChangeAmount = %s, want 250", got)
	}
	if got := entry.ChangePercent(); !got.Equal(amount(t, "50")) {
		t.Errorf("ChangePercent = %s, want 50", got)
	}

	entry.PreviousLimit = nil
	if got := entry.ChangePercent(); !got.IsZero() {
		t.Errorf("ChangePercent without previous = %s, want 0", got)
	}
}
