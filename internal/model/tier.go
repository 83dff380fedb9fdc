package model

// Tier is a usage-percentage level at which a budget alert may fire.
type Tier int

const (
	Tier50  Tier = 50
	Tier75  Tier = 75
	Tier90  Tier = 90
	Tier100 Tier = 100
)

// AllTiers lists the supported tiers in ascending order.
var AllTiers = []Tier{Tier50, Tier75, Tier90, Tier100}

// Severity classifies an alert by the tier that fired it.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityDanger   Severity = "danger"
	SeverityCritical Severity = "critical"
)

// Severity returns the fixed severity for a tier. Usage at or past 100%
// is always critical no matter how far over the limit it runs.
func (t Tier) Severity() Severity {
	switch {
	case t >= Tier100:
		return SeverityCritical
	case t >= Tier90:
		return SeverityDanger
	case t >= Tier75:
		return SeverityWarning
	default:
		return SeverityInfo
	}
}

// Channel is a notification delivery channel a budget may request.
type Channel string

const (
	ChannelDashboard Channel = "dashboard"
	ChannelEmail     Channel = "email"
	ChannelPush      Channel = "push"
)
