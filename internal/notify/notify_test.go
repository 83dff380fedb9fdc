package notify

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"ledger-service/internal/model"
)

func mustDec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("parse decimal %q: %v", s, err)
	}
	return d
}

func testDecision(t *testing.T, tier model.Tier, spending, limit, usage string) model.AlertDecision {
	t.Helper()
	return model.AlertDecision{
		BudgetID:        7,
		UserID:          "u1",
		Category:        "Food",
		ThresholdLevel:  tier,
		Severity:        tier.Severity(),
		CurrentSpending: mustDec(t, spending),
		Limit:           mustDec(t, limit),
		UsagePercent:    mustDec(t, usage),
		Channels:        []model.Channel{model.ChannelDashboard, model.ChannelEmail},
		ShouldNotify:    true,
	}
}

func TestFromDecisionStandardTier(t *testing.T) {
	now := time.Date(2026, 6, 21, 9, 30, 0, 0, time.UTC)
	n := FromDecision(testDecision(t, model.Tier50, "525", "1000", "52.5"), now)

	if n.Title != "💰 Budget Alert: Food" {
		t.Errorf("Title = %q", n.Title)
	}
	want := "Budget threshold reached (50%)\n\nYou've spent ₱525.00 out of ₱1,000.00 (52.5%).\nRemaining: ₱475.00"
	if n.Message != want {
		t.Errorf("Message = %q, want %q", n.Message, want)
	}
	if n.ID == "" {
		t.Error("ID must be set")
	}
	if n.UserID != "u1" {
		t.Errorf("UserID = %q", n.UserID)
	}
	if n.Category != "budget_alert" || n.RelatedType != "budget_alert" {
		t.Errorf("Category = %q, RelatedType = %q", n.Category, n.RelatedType)
	}
	if n.RelatedID != "7" {
		t.Errorf("RelatedID = %q, want %q", n.RelatedID, "7")
	}
	if !n.CreatedAt.Equal(now) {
		t.Errorf("CreatedAt = %v, want %v", n.CreatedAt, now)
	}
	if len(n.Channels) != 2 || n.Channels[0] != model.ChannelDashboard || n.Channels[1] != model.ChannelEmail {
		t.Errorf("Channels = %v", n.Channels)
	}
}

func TestFromDecisionToneFollowsUsage(t *testing.T) {
	cases := []struct {
		name      string
		tier      model.Tier
		spending  string
		usage     string
		wantTitle string
		wantIn    string
	}{
		{"danger", model.Tier90, "950", "95", "⚠️ Budget Alert: Food", "Critical threshold reached!"},
		{"exceeded", model.Tier100, "1100", "110", "🚨 Budget Alert: Food", "Budget has been exceeded!"},
		// A single large expense can fire a low tier while usage is already
		// critical; the tone tracks usage, not the tier that fired.
		{"low tier high usage", model.Tier50, "950", "95", "⚠️ Budget Alert: Food", "Critical threshold reached!"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			n := FromDecision(testDecision(t, tc.tier, tc.spending, "1000", tc.usage), time.Now())
			if n.Title != tc.wantTitle {
				t.Errorf("Title = %q, want %q", n.Title, tc.wantTitle)
			}
			if !strings.Contains(n.Message, tc.wantIn) {
				t.Errorf("Message = %q, want it to contain %q", n.Message, tc.wantIn)
			}
		})
	}
}

func TestFromDecisionExceededOmitsRemaining(t *testing.T) {
	n := FromDecision(testDecision(t, model.Tier100, "1100", "1000", "110"), time.Now())

	if strings.Contains(n.Message, "Remaining") {
		t.Errorf("exceeded message must not report a remaining amount: %q", n.Message)
	}
	if !strings.Contains(n.Message, "You've spent ₱1,100.00 out of ₱1,000.00 (110.0%).") {
		t.Errorf("Message = %q", n.Message)
	}
}

func TestFromDecisionUniqueIDs(t *testing.T) {
	d := testDecision(t, model.Tier50, "525", "1000", "52.5")
	a := FromDecision(d, time.Now())
	b := FromDecision(d, time.Now())
	if a.ID == b.ID {
		t.Fatalf("both notifications share ID %q", a.ID)
	}
}

func TestFormatMoney(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"0", "0.00"},
		{"999", "999.00"},
		{"1000", "1,000.00"},
		{"12345.678", "12,345.68"},
		{"1234567.5", "1,234,567.50"},
		{"-1234.56", "-1,234.56"},
		{"-100", "-100.00"},
	}

	for _, tc := range cases {
		if got := formatMoney(mustDec(t, tc.in)); got != tc.want {
			t.Errorf("formatMoney(%s) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
