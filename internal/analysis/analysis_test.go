package analysis

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger-service/internal/model"
)

type fakeBudgets struct {
	budgets []model.BudgetConfig
	err     error
}

func (f *fakeBudgets) ListActive(_ context.Context, _ string) ([]model.BudgetConfig, error) {
	return f.budgets, f.err
}

type fakeSpending struct {
	byCategory map[string]decimal.Decimal
	err        error
}

func (f *fakeSpending) TotalsByCategory(_ context.Context, _ string, _, _ time.Time) (map[string]decimal.Decimal, error) {
	return f.byCategory, f.err
}

func (f *fakeSpending) TotalInRange(_ context.Context, _, category string, _, _ time.Time) (decimal.Decimal, error) {
	if f.err != nil {
		return decimal.Zero, f.err
	}
	return f.byCategory[category], nil
}

type fakeHistory struct {
	entries []model.BudgetHistory
	err     error
}

func (f *fakeHistory) Recent(_ context.Context, _, _ string, _ int) ([]model.BudgetHistory, error) {
	return f.entries, f.err
}

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("parse decimal %q: %v", s, err)
	}
	return d
}

func newTestService(budgets *fakeBudgets, spending *fakeSpending, history *fakeHistory) *Service {
	log := logrus.New()
	log.SetOutput(io.Discard)
	s := New(budgets, spending, history, log)
	s.now = func() time.Time { return time.Date(2026, 6, 21, 12, 0, 0, 0, time.UTC) }
	return s
}

func budget(t *testing.T, category, limit string) model.BudgetConfig {
	t.Helper()
	return *model.NewBudgetConfig("u1", category, dec(t, limit))
}

func TestBudgetVsActualStatusBands(t *testing.T) {
	budgets := &fakeBudgets{budgets: []model.BudgetConfig{
		budget(t, "Bills", "1000"),
		budget(t, "Food", "1000"),
		budget(t, "Leisure", "1000"),
		budget(t, "Transport", "1000"),
	}}
	spending := &fakeSpending{byCategory: map[string]decimal.Decimal{
		"Bills":     dec(t, "500"),  // clearly under
		"Food":      dec(t, "960"),  // within the 95%..100% window
		"Leisure":   dec(t, "1001"), // over
		"Transport": dec(t, "950"),  // exactly at the cutoff counts as on target
	}}
	s := newTestService(budgets, spending, &fakeHistory{})

	comparisons, err := s.BudgetVsActual(context.Background(), "u1", time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Len(t, comparisons, 4)

	byCategory := make(map[string]model.BudgetComparison, len(comparisons))
	for _, c := range comparisons {
		byCategory[c.Category] = c
	}

	assert.Equal(t, model.StatusUnder, byCategory["Bills"].Status)
	assert.Equal(t, model.StatusOnTarget, byCategory["Food"].Status)
	assert.Equal(t, model.StatusOver, byCategory["Leisure"].Status)
	assert.Equal(t, model.StatusOnTarget, byCategory["Transport"].Status)

	bills := byCategory["Bills"]
	assert.True(t, bills.Variance.Equal(dec(t, "500")), "variance = %s", bills.Variance)
	assert.True(t, bills.VariancePercent.Equal(dec(t, "50")), "variance %% = %s", bills.VariancePercent)
	assert.True(t, bills.UsagePercent.Equal(dec(t, "50")), "usage = %s", bills.UsagePercent)

	over := byCategory["Leisure"]
	assert.True(t, over.Variance.Equal(dec(t, "-1")), "variance = %s", over.Variance)
}

func TestBudgetVsActualNoSpendingForCategory(t *testing.T) {
	budgets := &fakeBudgets{budgets: []model.BudgetConfig{budget(t, "Food", "1000")}}
	s := newTestService(budgets, &fakeSpending{byCategory: map[string]decimal.Decimal{}}, &fakeHistory{})

	comparisons, err := s.BudgetVsActual(context.Background(), "u1", time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Len(t, comparisons, 1)

	assert.True(t, comparisons[0].Actual.IsZero())
	assert.Equal(t, model.StatusUnder, comparisons[0].Status)
	assert.True(t, comparisons[0].UsagePercent.IsZero())
}

func TestHealthScoreBands(t *testing.T) {
	cases := []struct {
		spending  string
		wantScore int
		wantLevel string
		wantColor string
	}{
		{"700", 100, "excellent", "#28a745"},
		{"701", 85, "good", "#34c54a"},
		{"850", 85, "good", "#34c54a"},
		{"851", 70, "warning", "#ffc107"},
		{"950", 70, "warning", "#ffc107"},
		{"951", 50, "warning", "#fd7e14"},
		{"1000", 50, "warning", "#fd7e14"},
		{"1100", 0, "critical", "#dc3545"},
	}

	for _, tc := range cases {
		spending := &fakeSpending{byCategory: map[string]decimal.Decimal{"Food": dec(t, tc.spending)}}
		s := newTestService(&fakeBudgets{}, spending, &fakeHistory{})

		score, err := s.HealthScore(context.Background(), "u1", "Food", dec(t, "1000"))
		require.NoError(t, err)

		assert.Equal(t, tc.wantScore, score.Score, "spending %s", tc.spending)
		assert.Equal(t, tc.wantLevel, score.Level, "spending %s", tc.spending)
		assert.Equal(t, tc.wantColor, score.Color, "spending %s", tc.spending)
	}
}

func TestHealthScoreOverBudgetMessage(t *testing.T) {
	spending := &fakeSpending{byCategory: map[string]decimal.Decimal{"Food": dec(t, "1100")}}
	s := newTestService(&fakeBudgets{}, spending, &fakeHistory{})

	score, err := s.HealthScore(context.Background(), "u1", "Food", dec(t, "1000"))
	require.NoError(t, err)

	assert.True(t, score.UsagePercent.Equal(dec(t, "110")), "usage = %s", score.UsagePercent)
	assert.Equal(t, "Over budget by 10.0%! Immediate action needed.", score.Message)
}

func TestHealthScoreZeroLimit(t *testing.T) {
	spending := &fakeSpending{byCategory: map[string]decimal.Decimal{"Food": dec(t, "400")}}
	s := newTestService(&fakeBudgets{}, spending, &fakeHistory{})

	score, err := s.HealthScore(context.Background(), "u1", "Food", decimal.Zero)
	require.NoError(t, err)

	assert.True(t, score.UsagePercent.IsZero(), "zero limit must not divide")
	assert.Equal(t, "excellent", score.Level)
}

func TestTrendsOldestFirstWithDefaultReason(t *testing.T) {
	previous := dec(t, "600")
	history := &fakeHistory{entries: []model.BudgetHistory{
		// Store order is newest first; Trends must reverse it.
		{
			Category:      "Food",
			AmountLimit:   dec(t, "800"),
			PreviousLimit: &previous,
			ChangeReason:  "Raised for the holidays",
			ChangeDate:    time.Date(2026, 6, 2, 0, 0, 0, 0, time.UTC),
		},
		{
			Category:    "Food",
			AmountLimit: dec(t, "600"),
			ChangeDate:  time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
		},
	}}
	s := newTestService(&fakeBudgets{}, &fakeSpending{}, history)

	trends, err := s.Trends(context.Background(), "u1", "Food", 6)
	require.NoError(t, err)
	require.Len(t, trends, 2)

	assert.Equal(t, "2026-05", trends[0].Month)
	assert.Equal(t, "Initial budget", trends[0].Reason)
	assert.Nil(t, trends[0].PreviousLimit)

	assert.Equal(t, "2026-06", trends[1].Month)
	assert.Equal(t, "Raised for the holidays", trends[1].Reason)
	require.NotNil(t, trends[1].PreviousLimit)
	assert.True(t, trends[1].PreviousLimit.Equal(dec(t, "600")))
}

func TestAnalysisStoreFailures(t *testing.T) {
	storeErr := errors.New("connection reset")

	_, err := newTestService(&fakeBudgets{err: storeErr}, &fakeSpending{}, &fakeHistory{}).
		BudgetVsActual(context.Background(), "u1", time.Time{}, time.Time{})
	require.ErrorIs(t, err, storeErr)

	_, err = newTestService(&fakeBudgets{}, &fakeSpending{err: storeErr}, &fakeHistory{}).
		HealthScore(context.Background(), "u1", "Food", dec(t, "1000"))
	require.ErrorIs(t, err, storeErr)

	_, err = newTestService(&fakeBudgets{}, &fakeSpending{}, &fakeHistory{err: storeErr}).
		Trends(context.Background(), "u1", "Food", 6)
	require.ErrorIs(t, err, storeErr)
}
