package analytics

import (
	"fmt"

	"github.com/shopspring/decimal"

	"spendwise/internal/core"
)

// MaxUnusual caps how many unusual expenses are reported.
const MaxUnusual = 3

// UnusualMultiplier is how many times the category mean an expense must
// exceed to be flagged.
var UnusualMultiplier = decimal.RequireFromString("1.8")

// UnusualExpense is an expense far above its category's mean.
type UnusualExpense struct {
	Transaction     core.Transaction `json:"transaction"`
	PercentOfNormal int              `json:"percentOfNormal"`
	NormalAmount    decimal.Decimal  `json:"normalAmount"`
	Reason          string           `json:"reason"`
}

// UnusualExpenses flags expenses above UnusualMultiplier times their
// category mean. The mean includes the candidate and needs at least two
// expenses in the category. Results keep input order, capped at MaxUnusual.
func UnusualExpenses(txs []core.Transaction) []UnusualExpense {
	type stats struct {
		sum   decimal.Decimal
		count int64
	}
	byCategory := make(map[string]*stats)
	for _, tx := range txs {
		if !tx.IsExpense() {
			continue
		}
		s, ok := byCategory[tx.Category]
		if !ok {
			s = &stats{}
			byCategory[tx.Category] = s
		}
		s.sum = s.sum.Add(tx.Amount)
		s.count++
	}

	out := make([]UnusualExpense, 0, MaxUnusual)
	for _, tx := range txs {
		if !tx.IsExpense() {
			continue
		}
		s := byCategory[tx.Category]
		if s.count < 2 {
			continue
		}
		mean := s.sum.Div(decimal.NewFromInt(s.count))
		if !tx.Amount.GreaterThan(mean.Mul(UnusualMultiplier)) {
			continue
		}
		pct := int(core.RoundHalfUp(tx.Amount.Div(mean).Mul(hundred)).IntPart())
		out = append(out, UnusualExpense{
			Transaction:     tx,
			PercentOfNormal: pct,
			NormalAmount:    core.RoundHalfUp(mean),
			Reason:          fmt.Sprintf("%d%% above normal", pct),
		})
		if len(out) == MaxUnusual {
			break
		}
	}
	return out
}
