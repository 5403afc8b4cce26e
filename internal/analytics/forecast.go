package analytics

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"spendwise/internal/core"
)

const predictionWindow = 3

var trendThreshold = decimal.NewFromInt(5)

// TrendDirection classifies this month's spend against last month's.
type TrendDirection int

const (
	TrendInsufficientData TrendDirection = iota
	TrendStable
	TrendUp
	TrendDown
)

func (d TrendDirection) String() string {
	switch d {
	case TrendStable:
		return "stable"
	case TrendUp:
		return "up"
	case TrendDown:
		return "down"
	default:
		return "insufficient_data"
	}
}

func (d TrendDirection) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *TrendDirection) UnmarshalText(b []byte) error {
	for _, candidate := range []TrendDirection{TrendInsufficientData, TrendStable, TrendUp, TrendDown} {
		if candidate.String() == string(b) {
			*d = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown trend direction %q", b)
}

// Trend is the month-over-month spending comparison.
type Trend struct {
	Direction     TrendDirection  `json:"direction"`
	PercentChange int             `json:"percentChange"`
	ThisMonth     decimal.Decimal `json:"thisMonth"`
	LastMonth     decimal.Decimal `json:"lastMonth"`
	Message       string          `json:"message"`
}

// MonthExpenses sums expense amounts dated in p.
func MonthExpenses(txs []core.Transaction, p core.Period) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range txs {
		if tx.IsExpense() && p.Contains(tx.Date) {
			total = total.Add(tx.Amount)
		}
	}
	return total
}

// PredictNextMonth averages the expense totals of the three calendar months
// before now. Months without any spend count as missing data, not as zero.
// Returns 0 when none of the three months has spend.
func PredictNextMonth(txs []core.Transaction, now time.Time) decimal.Decimal {
	current := core.PeriodOf(now)
	sum := decimal.Zero
	var months int64
	for i := 1; i <= predictionWindow; i++ {
		total := MonthExpenses(txs, current.Prev(i))
		if total.IsZero() {
			continue
		}
		sum = sum.Add(total)
		months++
	}
	if months == 0 {
		return decimal.Zero
	}
	return core.RoundHalfUp(sum.Div(decimal.NewFromInt(months)))
}

// SpendingTrend compares this calendar month's expenses with last month's.
func SpendingTrend(txs []core.Transaction, now time.Time) Trend {
	current := core.PeriodOf(now)
	t := Trend{
		ThisMonth: MonthExpenses(txs, current),
		LastMonth: MonthExpenses(txs, current.Prev(1)),
	}
	if t.LastMonth.IsZero() {
		t.Direction = TrendInsufficientData
		t.Message = "Not enough data"
		return t
	}

	diff := t.ThisMonth.Sub(t.LastMonth).Div(t.LastMonth).Mul(hundred)
	t.PercentChange = int(core.RoundHalfUp(diff).IntPart())
	switch {
	case diff.GreaterThan(trendThreshold):
		t.Direction = TrendUp
		t.Message = fmt.Sprintf("📈 Up %d%% from last month", t.PercentChange)
	case diff.LessThan(trendThreshold.Neg()):
		t.Direction = TrendDown
		t.Message = fmt.Sprintf("📉 Down %d%% from last month", abs(t.PercentChange))
	default:
		t.Direction = TrendStable
		t.Message = "➡️ Stable compared to last month"
	}
	return t
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
