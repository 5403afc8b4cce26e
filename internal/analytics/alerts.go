package analytics

import (
	"fmt"

	"github.com/shopspring/decimal"

	"spendwise/internal/core"
)

// AlertLevel is the health tier of a budget.
type AlertLevel int

const (
	AlertNone AlertLevel = iota
	AlertOnTrack
	AlertWarning
	AlertCritical
)

var (
	hundred         = decimal.NewFromInt(100)
	criticalPercent = decimal.NewFromInt(90)
	warningPercent  = decimal.NewFromInt(75)
	onTrackPercent  = decimal.NewFromInt(30)
)

func (l AlertLevel) String() string {
	switch l {
	case AlertOnTrack:
		return "on_track"
	case AlertWarning:
		return "warning"
	case AlertCritical:
		return "critical"
	default:
		return "none"
	}
}

func (l AlertLevel) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

func (l *AlertLevel) UnmarshalText(b []byte) error {
	for _, candidate := range []AlertLevel{AlertNone, AlertOnTrack, AlertWarning, AlertCritical} {
		if candidate.String() == string(b) {
			*l = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown alert level %q", b)
}

// Alert describes one budget that left the silent band.
type Alert struct {
	Level    AlertLevel      `json:"level"`
	Category string          `json:"category"`
	Spent    decimal.Decimal `json:"spent"`
	Limit    decimal.Decimal `json:"limit"`
	Percent  int             `json:"percent"`
	Title    string          `json:"title"`
	Message  string          `json:"message"`
}

// ClassifyBudget maps spend against limit to exactly one tier.
// A non-positive limit never alerts.
func ClassifyBudget(spent, limit decimal.Decimal) (AlertLevel, decimal.Decimal) {
	if !limit.IsPositive() {
		return AlertNone, decimal.Zero
	}
	pct := spent.Div(limit).Mul(hundred)
	switch {
	case pct.GreaterThan(criticalPercent):
		return AlertCritical, pct
	case pct.GreaterThan(warningPercent):
		return AlertWarning, pct
	case pct.LessThan(onTrackPercent) && spent.IsPositive():
		return AlertOnTrack, pct
	default:
		return AlertNone, pct
	}
}

// BudgetAlerts returns one alert per budget outside the silent band, in
// budget order. Spend counts expense transactions only.
func BudgetAlerts(txs []core.Transaction, budgets []core.BudgetLimit) []Alert {
	spending := SpendByCategory(txs)

	alerts := make([]Alert, 0, len(budgets))
	for _, b := range budgets {
		spent := spending[b.Category]
		level, pct := ClassifyBudget(spent, b.Limit)
		if level == AlertNone {
			continue
		}
		rounded := int(core.RoundHalfUp(pct).IntPart())
		alert := Alert{
			Level:    level,
			Category: b.Category,
			Spent:    spent,
			Limit:    b.Limit,
			Percent:  rounded,
		}
		switch level {
		case AlertCritical:
			alert.Title = fmt.Sprintf("%s Critical!", b.Category)
			alert.Message = spentMessage(spent, b.Limit, rounded)
		case AlertWarning:
			alert.Title = fmt.Sprintf("%s Warning", b.Category)
			alert.Message = spentMessage(spent, b.Limit, rounded)
		case AlertOnTrack:
			alert.Title = fmt.Sprintf("%s on track", b.Category)
			alert.Message = fmt.Sprintf("Great! You've only used %d%% of your budget", rounded)
		}
		alerts = append(alerts, alert)
	}
	return alerts
}

// SpendByCategory sums expense amounts per category.
func SpendByCategory(txs []core.Transaction) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal)
	for _, tx := range txs {
		if !tx.IsExpense() {
			continue
		}
		out[tx.Category] = out[tx.Category].Add(tx.Amount)
	}
	return out
}

func spentMessage(spent, limit decimal.Decimal, pct int) string {
	return fmt.Sprintf("You've spent %s of %s (%d%%)", core.FormatEuros(spent), core.FormatEuros(limit), pct)
}
