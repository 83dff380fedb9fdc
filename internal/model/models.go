package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaxAmount is the largest accepted value for a single money field.
var MaxAmount = decimal.New(99999999999, -2) // 999,999,999.99

// ValidateAmount checks a money value against the accepted range.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrAmountNotPositive
	}
	if amount.GreaterThan(MaxAmount) {
		return ErrAmountTooLarge
	}
	return nil
}

// Expense is a single spending entry. Date carries calendar-day precision;
// edits replace amount, category, date and notes wholesale.
type Expense struct {
	ID        uint            `gorm:"primarykey" json:"id"`
	UserID    string          `gorm:"size:64;index:idx_expenses_user_date;not null" json:"user_id"`
	Amount    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Category  string          `gorm:"size:64;not null" json:"category"`
	Date      time.Time       `gorm:"type:date;index:idx_expenses_user_date;not null" json:"date"`
	Notes     string          `gorm:"size:500" json:"notes"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (Expense) TableName() string {
	return "expenses"
}

func (e *Expense) Validate() error {
	if err := ValidateAmount(e.Amount); err != nil {
		return err
	}
	if e.Category == "" {
		return ErrInvalidCategory
	}
	return nil
}

// IncomeSource enumerates where ad-hoc wallet money came from.
type IncomeSource string

const (
	SourceAllowanceTopup    IncomeSource = "allowance_topup"
	SourceTip               IncomeSource = "tip"
	SourceGift              IncomeSource = "gift"
	SourceTransfer          IncomeSource = "transfer"
	SourceSavingsWithdrawal IncomeSource = "savings_withdrawal"
	SourceRefund            IncomeSource = "refund"
	SourceOther             IncomeSource = "other"
)

func (s IncomeSource) Valid() bool {
	switch s {
	case SourceAllowanceTopup, SourceTip, SourceGift, SourceTransfer,
		SourceSavingsWithdrawal, SourceRefund, SourceOther:
		return true
	}
	return false
}

// Income is ad-hoc money added to the wallet for a single day.
type Income struct {
	ID        uint            `gorm:"primarykey" json:"id"`
	UserID    string          `gorm:"size:64;index:idx_incomes_user_date;not null" json:"user_id"`
	Amount    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Source    IncomeSource    `gorm:"size:32;not null" json:"source"`
	Date      time.Time       `gorm:"type:date;index:idx_incomes_user_date;not null" json:"date"`
	Notes     string          `gorm:"size:500" json:"notes"`
	CreatedAt time.Time       `json:"created_at"`
}

func (Income) TableName() string {
	return "incomes"
}

func (i *Income) Validate() error {
	if err := ValidateAmount(i.Amount); err != nil {
		return err
	}
	if !i.Source.Valid() {
		return ErrInvalidSource
	}
	return nil
}

// Category is a user-scoped category name, seeded with defaults on first use.
type Category struct {
	ID     uint   `gorm:"primarykey" json:"id"`
	UserID string `gorm:"size:64;uniqueIndex:idx_categories_user_name;not null" json:"user_id"`
	Name   string `gorm:"size:64;uniqueIndex:idx_categories_user_name;not null" json:"name"`
}

func (Category) TableName() string {
	return "categories"
}

// BudgetConfig is a per-category spending ceiling with independently enabled
// alert tiers. At most one active config may exist per (user, category).
type BudgetConfig struct {
	ID               uint            `gorm:"primarykey" json:"id"`
	UserID           string          `gorm:"size:64;index:idx_budgets_user;not null" json:"user_id"`
	Category         string          `gorm:"size:64;not null" json:"category"`
	AmountLimit      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount_limit"`
	ThresholdPercent int             `gorm:"default:80" json:"threshold_percent"`
	Threshold50      bool            `gorm:"column:threshold_50" json:"threshold_50"`
	Threshold75      bool            `gorm:"column:threshold_75" json:"threshold_75"`
	Threshold90      bool            `gorm:"column:threshold_90" json:"threshold_90"`
	Threshold100     bool            `gorm:"column:threshold_100" json:"threshold_100"`
	SnoozedUntil     *time.Time      `json:"snoozed_until,omitempty"`
	NotifyDashboard  bool            `json:"notify_dashboard"`
	NotifyEmail      bool            `json:"notify_email"`
	NotifyPush       bool            `json:"notify_push"`
	Active           bool            `json:"active"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

func (BudgetConfig) TableName() string {
	return "budget_configs"
}

// NewBudgetConfig returns a config with the stock defaults: all four tiers
// enabled, dashboard notifications on, threshold percent 80.
func NewBudgetConfig(userID, category string, limit decimal.Decimal) *BudgetConfig {
	return &BudgetConfig{
		UserID:           userID,
		Category:         category,
		AmountLimit:      limit,
		ThresholdPercent: 80,
		Threshold50:      true,
		Threshold75:      true,
		Threshold90:      true,
		Threshold100:     true,
		NotifyDashboard:  true,
		Active:           true,
	}
}

func (b *BudgetConfig) Validate() error {
	if b.Category == "" {
		return ErrInvalidCategory
	}
	if b.AmountLimit.LessThanOrEqual(decimal.Zero) {
		return ErrLimitNotPositive
	}
	if b.AmountLimit.GreaterThan(MaxAmount) {
		return ErrLimitTooLarge
	}
	if b.ThresholdPercent < 10 || b.ThresholdPercent > 100 {
		return ErrThresholdOutOfRange
	}
	return nil
}

// EnabledTiers returns the enabled alert tiers in ascending order.
func (b *BudgetConfig) EnabledTiers() []Tier {
	tiers := make([]Tier, 0, 4)
	if b.Threshold50 {
		tiers = append(tiers, Tier50)
	}
	if b.Threshold75 {
		tiers = append(tiers, Tier75)
	}
	if b.Threshold90 {
		tiers = append(tiers, Tier90)
	}
	if b.Threshold100 {
		tiers = append(tiers, Tier100)
	}
	return tiers
}

// SetTiers enables exactly the given tiers.
func (b *BudgetConfig) SetTiers(tiers []Tier) {
	b.Threshold50, b.Threshold75, b.Threshold90, b.Threshold100 = false, false, false, false
	for _, t := range tiers {
		switch t {
		case Tier50:
			b.Threshold50 = true
		case Tier75:
			b.Threshold75 = true
		case Tier90:
			b.Threshold90 = true
		case Tier100:
			b.Threshold100 = true
		}
	}
}

// Snoozed reports whether alerts are suppressed at the given time.
func (b *BudgetConfig) Snoozed(now time.Time) bool {
	return b.SnoozedUntil != nil && b.SnoozedUntil.After(now)
}

// SetChannels requests delivery on exactly the given channels.
func (b *BudgetConfig) SetChannels(channels []Channel) {
	b.NotifyDashboard, b.NotifyEmail, b.NotifyPush = false, false, false
	for _, ch := range channels {
		switch ch {
		case ChannelDashboard:
			b.NotifyDashboard = true
		case ChannelEmail:
			b.NotifyEmail = true
		case ChannelPush:
			b.NotifyPush = true
		}
	}
}

// Channels returns the delivery channels this budget requested.
func (b *BudgetConfig) Channels() []Channel {
	channels := make([]Channel, 0, 3)
	if b.NotifyDashboard {
		channels = append(channels, ChannelDashboard)
	}
	if b.NotifyEmail {
		channels = append(channels, ChannelEmail)
	}
	if b.NotifyPush {
		channels = append(channels, ChannelPush)
	}
	return channels
}

// AlertEvent is the append-only record of a tier having fired. The unique
// index over (budget_id, threshold_level, triggered_on) is what makes the
// conditional insert race-safe; only acknowledged may change after insert.
type AlertEvent struct {
	ID              uint            `gorm:"primarykey" json:"id"`
	BudgetID        uint            `gorm:"uniqueIndex:idx_alert_dedup;not null" json:"budget_id"`
	UserID          string          `gorm:"size:64;index;not null" json:"user_id"`
	Category        string          `gorm:"size:64;not null" json:"category"`
	ThresholdLevel  int             `gorm:"uniqueIndex:idx_alert_dedup;not null" json:"threshold_level"`
	Severity        Severity        `gorm:"size:16;not null" json:"severity"`
	CurrentSpending decimal.Decimal `gorm:"type:decimal(12,2)" json:"current_spending"`
	BudgetLimit     decimal.Decimal `gorm:"type:decimal(12,2)" json:"budget_limit"`
	UsagePercent    decimal.Decimal `gorm:"type:decimal(7,2)" json:"usage_percent"`
	TriggeredAt     time.Time       `json:"triggered_at"`
	TriggeredOn     time.Time       `gorm:"type:date;uniqueIndex:idx_alert_dedup;not null" json:"triggered_on"`
	Acknowledged    bool            `json:"acknowledged"`
	AcknowledgedAt  *time.Time      `json:"acknowledged_at,omitempty"`
}

func (AlertEvent) TableName() string {
	return "alert_events"
}

// BudgetHistory records budget limit changes for trend reporting.
type BudgetHistory struct {
	ID               uint             `gorm:"primarykey" json:"id"`
	UserID           string           `gorm:"size:64;index:idx_history_user_category;not null" json:"user_id"`
	Category         string           `gorm:"size:64;index:idx_history_user_category;not null" json:"category"`
	AmountLimit      decimal.Decimal  `gorm:"type:decimal(12,2);not null" json:"amount_limit"`
	ThresholdPercent int              `json:"threshold_percent"`
	PreviousLimit    *decimal.Decimal `gorm:"type:decimal(12,2)" json:"previous_limit,omitempty"`
	ChangeReason     string           `gorm:"size:255" json:"change_reason"`
	ChangeDate       time.Time        `gorm:"index;not null" json:"change_date"`
}

func (BudgetHistory) TableName() string {
	return "budget_histories"
}

// ChangeAmount returns the limit delta against the previous limit.
func (h *BudgetHistory) ChangeAmount() decimal.Decimal {
	if h.PreviousLimit == nil {
		return decimal.Zero
	}
	return h.AmountLimit.Sub(*h.PreviousLimit)
}

// ChangePercent returns the limit change as a percentage of the previous
// limit, rounded to 2 decimals.
func (h *BudgetHistory) ChangePercent() decimal.Decimal {
	if h.PreviousLimit == nil || h.PreviousLimit.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return h.AmountLimit.Sub(*h.PreviousLimit).
		Div(*h.PreviousLimit).
		Mul(decimal.NewFromInt(100)).
		Round(2)
}

// AllowanceSetting holds a user's monthly spending allowance. The daily
// figure is always derived from it, never stored.
type AllowanceSetting struct {
	ID               uint            `gorm:"primarykey" json:"id"`
	UserID           string          `gorm:"size:64;uniqueIndex:idx_allowance_user;not null" json:"user_id"`
	MonthlyAllowance decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"monthly_allowance"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

func (AllowanceSetting) TableName() string {
	return "allowance_settings"
}

// AuditEntry is written by the mutation layer for every ledger change.
type AuditEntry struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	UserID       string    `gorm:"size:64;index;not null" json:"user_id"`
	Action       string    `gorm:"size:64;not null" json:"action"`
	ResourceType string    `gorm:"size:64" json:"resource_type"`
	ResourceID   string    `gorm:"size:64" json:"resource_id"`
	Metadata     string    `gorm:"type:text" json:"metadata"`
	CreatedAt    time.Time `json:"created_at"`
}

func (AuditEntry) TableName() string {
	return "audit_entries"
}
