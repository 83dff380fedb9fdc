package forecast

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger-service/internal/model"
)

type fakeHistory struct {
	totals []model.DailyTotal
	err    error
}

func (f *fakeHistory) DailyTotals(_ context.Context, _, _ string, _, _ time.Time) ([]model.DailyTotal, error) {
	return f.totals, f.err
}

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("parse decimal %q: %v", s, err)
	}
	return d
}

// evenSpending builds days consecutive daily totals of the same amount
// starting June 1.
func evenSpending(t *testing.T, days int, perDay string) []model.DailyTotal {
	t.Helper()
	totals := make([]model.DailyTotal, 0, days)
	for i := 0; i < days; i++ {
		totals = append(totals, model.DailyTotal{
			Date:  time.Date(2026, 6, 1+i, 0, 0, 0, 0, time.UTC),
			Total: dec(t, perDay),
		})
	}
	return totals
}

func newTestPredictor(history *fakeHistory) *Predictor {
	p := NewPredictor(history)
	p.now = func() time.Time { return time.Date(2026, 6, 20, 12, 0, 0, 0, time.UTC) }
	return p
}

func TestPredictLinearBreach(t *testing.T) {
	// 10 days of 400/day: average 400, so 10 more days project to 8000
	// against a 6000 limit.
	p := newTestPredictor(&fakeHistory{totals: evenSpending(t, 10, "400")})

	prediction, err := p.Predict(context.Background(), "u1", "Food", dec(t, "6000"), 10)
	require.NoError(t, err)

	assert.True(t, prediction.WillBreach)
	assert.True(t, prediction.DailyAverage.Equal(dec(t, "400")), "daily average = %s", prediction.DailyAverage)
	assert.True(t, prediction.PredictedSpending.Equal(dec(t, "8000")), "predicted = %s", prediction.PredictedSpending)
	assert.True(t, prediction.RecommendedDailyLimit.Equal(dec(t, "200")), "recommended = %s", prediction.RecommendedDailyLimit)
	assert.True(t, prediction.TotalSpent.Equal(dec(t, "4000")))
	assert.Equal(t, 10, prediction.DaysWithData)
	assert.Equal(t, model.ConfidenceHigh, prediction.Confidence)

	// (6000-4000)/400 = 5 days of headroom from June 20.
	require.NotNil(t, prediction.PredictedBreachDate)
	assert.Equal(t, time.Date(2026, 6, 25, 0, 0, 0, 0, time.UTC), *prediction.PredictedBreachDate)

	assert.Equal(t, "At current rate, you will exceed budget by ₱2000.00 by month end.", prediction.Message)
}

func TestPredictNoData(t *testing.T) {
	p := newTestPredictor(&fakeHistory{})

	prediction, err := p.Predict(context.Background(), "u1", "Food", dec(t, "6000"), 10)
	require.NoError(t, err)

	assert.False(t, prediction.WillBreach)
	assert.Equal(t, model.ConfidenceLow, prediction.Confidence)
	assert.True(t, prediction.DailyAverage.IsZero())
	assert.True(t, prediction.PredictedSpending.IsZero())
	assert.Nil(t, prediction.PredictedBreachDate)
	assert.Equal(t, 10, prediction.DaysRemaining)
	assert.Equal(t, "No spending data for predictions.", prediction.Message)
}

func TestPredictOnTrack(t *testing.T) {
	p := newTestPredictor(&fakeHistory{totals: evenSpending(t, 5, "200")})

	prediction, err := p.Predict(context.Background(), "u1", "Food", dec(t, "6000"), 5)
	require.NoError(t, err)

	assert.False(t, prediction.WillBreach)
	assert.True(t, prediction.PredictedSpending.Equal(dec(t, "2000")))
	assert.Nil(t, prediction.PredictedBreachDate)
	assert.Equal(t, model.ConfidenceMedium, prediction.Confidence)
	assert.Equal(t, "On track to stay within budget if current trend continues.", prediction.Message)
}

func TestPredictAlreadyOverLimit(t *testing.T) {
	// 4500 already spent against 4000: no future breach date, and the
	// recommended daily figure goes negative to signal "reduce spending".
	p := newTestPredictor(&fakeHistory{totals: evenSpending(t, 10, "450")})

	prediction, err := p.Predict(context.Background(), "u1", "Food", dec(t, "4000"), 5)
	require.NoError(t, err)

	assert.True(t, prediction.WillBreach)
	assert.Nil(t, prediction.PredictedBreachDate, "limit already crossed, no future date")
	assert.True(t, prediction.RecommendedDailyLimit.Equal(dec(t, "-100")), "recommended = %s", prediction.RecommendedDailyLimit)
}

func TestPredictConfidenceBands(t *testing.T) {
	cases := []struct {
		days int
		want model.Confidence
	}{
		{1, model.ConfidenceLow},
		{2, model.ConfidenceLow},
		{3, model.ConfidenceMedium},
		{6, model.ConfidenceMedium},
		{7, model.ConfidenceHigh},
		{12, model.ConfidenceHigh},
	}

	for _, tc := range cases {
		p := newTestPredictor(&fakeHistory{totals: evenSpending(t, tc.days, "100")})
		prediction, err := p.Predict(context.Background(), "u1", "Food", dec(t, "100000"), 5)
		require.NoError(t, err)
		assert.Equal(t, tc.want, prediction.Confidence, "%d days with data", tc.days)
	}
}

func TestPredictZeroDaysRemaining(t *testing.T) {
	p := newTestPredictor(&fakeHistory{totals: evenSpending(t, 4, "250")})

	prediction, err := p.Predict(context.Background(), "u1", "Food", dec(t, "900"), 0)
	require.NoError(t, err)

	assert.True(t, prediction.PredictedSpending.Equal(dec(t, "1000")), "predicted = total when nothing remains")
	assert.True(t, prediction.WillBreach)
	assert.True(t, prediction.RecommendedDailyLimit.IsZero())

	// Negative input clamps to zero.
	prediction, err = p.Predict(context.Background(), "u1", "Food", dec(t, "900"), -3)
	require.NoError(t, err)
	assert.Equal(t, 0, prediction.DaysRemaining)
}

func TestPredictHistoryFailure(t *testing.T) {
	histErr := errors.New("connection reset")
	p := newTestPredictor(&fakeHistory{err: histErr})

	_, err := p.Predict(context.Background(), "u1", "Food", dec(t, "6000"), 10)
	require.ErrorIs(t, err, histErr)
}

func TestDaysRemainingInMonth(t *testing.T) {
	cases := []struct {
		date string
		want int
	}{
		{"2026-06-20", 10},
		{"2026-06-30", 0},
		{"2026-01-31", 0},
		{"2024-02-01", 28},
		{"2026-02-01", 27},
	}

	for _, tc := range cases {
		asOf, err := model.ParseDate(tc.date)
		require.NoError(t, err)
		assert.Equal(t, tc.want, DaysRemainingInMonth(asOf), "as of %s", tc.date)
	}
}
