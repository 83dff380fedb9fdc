package notify

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"ledger-service/internal/model"
)

// Notification is one composed alert ready for delivery.
type Notification struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	Title       string          `json:"title"`
	Message     string          `json:"message"`
	Category    string          `json:"category"`
	Channels    []model.Channel `json:"channels"`
	RelatedType string          `json:"related_type"`
	RelatedID   string          `json:"related_id"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Dispatcher delivers a notification to each requested channel and reports
// the outcome per channel. The engine never retries a failed channel; it
// logs a warning and moves on, delivery is best-effort.
type Dispatcher interface {
	Notify(ctx context.Context, n Notification) map[model.Channel]error
}

var (
	hundred = decimal.NewFromInt(100)
	ninety  = decimal.NewFromInt(90)
)

// FromDecision composes the user-facing notification for a newly fired
// alert tier.
func FromDecision(decision model.AlertDecision, now time.Time) Notification {
	usage := decision.UsagePercent

	var emoji, severityText string
	switch {
	case usage.GreaterThanOrEqual(hundred):
		emoji = "🚨"
		severityText = "Budget exceeded!"
	case usage.GreaterThanOrEqual(ninety):
		emoji = "⚠️"
		severityText = "Critical threshold reached!"
	default:
		emoji = "💰"
		severityText = fmt.Sprintf("Budget threshold reached (%d%%)", decision.ThresholdLevel)
	}

	var tail string
	if usage.GreaterThanOrEqual(hundred) {
		tail = "Budget has been exceeded!"
	} else {
		tail = fmt.Sprintf("Remaining: ₱%s", formatMoney(decision.Limit.Sub(decision.CurrentSpending)))
	}

	message := fmt.Sprintf("%s\n\nYou've spent ₱%s out of ₱%s (%s%%).\n%s",
		severityText,
		formatMoney(decision.CurrentSpending),
		formatMoney(decision.Limit),
		usage.StringFixed(1),
		tail,
	)

	return Notification{
		ID:          uuid.NewString(),
		UserID:      decision.UserID,
		Title:       fmt.Sprintf("%s Budget Alert: %s", emoji, decision.Category),
		Message:     message,
		Category:    "budget_alert",
		Channels:    decision.Channels,
		RelatedType: "budget_alert",
		RelatedID:   strconv.FormatUint(uint64(decision.BudgetID), 10),
		CreatedAt:   now,
	}
}

// formatMoney renders an amount with thousands separators and 2 decimals.
func formatMoney(amount decimal.Decimal) string {
	s := amount.StringFixed(2)

	negative := strings.HasPrefix(s, "-")
	if negative {
		s = s[1:]
	}

	intPart, fracPart, _ := strings.Cut(s, ".")
	var b strings.Builder
	for i := 0; i < len(intPart); i++ {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteByte(intPart[i])
	}

	out := b.String() + "." + fracPart
	if negative {
		out = "-" + out
	}
	return out
}
