package forecast

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"ledger-service/internal/model"
)

// SpendingHistory provides per-day expense sums for one category.
type SpendingHistory interface {
	DailyTotals(ctx context.Context, userID, category string, from, to time.Time) ([]model.DailyTotal, error)
}

// Predictor extrapolates category spending linearly to period end. The
// average is intentionally naive, a plain mean over days with data, favoring
// explainability over forecast accuracy.
type Predictor struct {
	history SpendingHistory
	now     func() time.Time
}

func NewPredictor(history SpendingHistory) *Predictor {
	return &Predictor{
		history: history,
		now:     time.Now,
	}
}

// Predict estimates whether the category breaches its limit before period
// end. daysRemaining below zero is treated as zero.
func (p *Predictor) Predict(ctx context.Context, userID, category string, amountLimit decimal.Decimal, daysRemaining int) (model.Prediction, error) {
	if daysRemaining < 0 {
		daysRemaining = 0
	}

	today := model.DateOnly(p.now())
	monthStart := model.MonthStart(today)

	totals, err := p.history.DailyTotals(ctx, userID, category, monthStart, today)
	if err != nil {
		return model.Prediction{}, fmt.Errorf("failed to load spending history: %w", err)
	}

	if len(totals) == 0 {
		return model.Prediction{
			Category:      category,
			DaysRemaining: daysRemaining,
			Confidence:    model.ConfidenceLow,
			Message:       "No spending data for predictions.",
		}, nil
	}

	totalSpent := decimal.Zero
	for _, t := range totals {
		totalSpent = totalSpent.Add(t.Total)
	}

	daysWithData := len(totals)
	dailyAverage := totalSpent.Div(decimal.NewFromInt(int64(daysWithData)))

	predicted := totalSpent.Add(dailyAverage.Mul(decimal.NewFromInt(int64(daysRemaining))))
	willBreach := predicted.GreaterThan(amountLimit)

	// The breach date truncates fractional days: only meaningful while the
	// limit has not already been crossed as of today.
	var breachDate *time.Time
	if willBreach && dailyAverage.GreaterThan(decimal.Zero) {
		daysUntilBreach := amountLimit.Sub(totalSpent).Div(dailyAverage)
		if daysUntilBreach.GreaterThan(decimal.Zero) {
			d := today.AddDate(0, 0, int(daysUntilBreach.IntPart()))
			breachDate = &d
		}
	}

	// May be negative when already over budget; callers present that as a
	// "reduce spending" message rather than a positive cap.
	recommended := decimal.Zero
	if daysRemaining > 0 {
		recommended = amountLimit.Sub(totalSpent).Div(decimal.NewFromInt(int64(daysRemaining)))
	}

	confidence := model.ConfidenceLow
	switch {
	case daysWithData >= 7:
		confidence = model.ConfidenceHigh
	case daysWithData >= 3:
		confidence = model.ConfidenceMedium
	}

	var message string
	if willBreach {
		overage := predicted.Sub(amountLimit)
		message = fmt.Sprintf("At current rate, you will exceed budget by ₱%s by month end.", overage.StringFixed(2))
	} else {
		message = "On track to stay within budget if current trend continues."
	}

	return model.Prediction{
		Category:              category,
		WillBreach:            willBreach,
		PredictedSpending:     predicted.Round(2),
		PredictedBreachDate:   breachDate,
		DailyAverage:          dailyAverage.Round(2),
		RecommendedDailyLimit: recommended.Round(2),
		TotalSpent:            totalSpent,
		DaysWithData:          daysWithData,
		DaysRemaining:         daysRemaining,
		Confidence:            confidence,
		Message:               message,
	}, nil
}

// DaysRemainingInMonth counts the days left in asOf's month, excluding the
// day itself.
func DaysRemainingInMonth(asOf time.Time) int {
	return model.DaysInMonth(asOf) - asOf.Day()
}
