package analytics

import (
	"time"

	"github.com/shopspring/decimal"

	"spendwise/internal/core"
)

// Summary aggregates one calendar month.
type Summary struct {
	Period      core.Period     `json:"period"`
	Income      decimal.Decimal `json:"income"`
	Expense     decimal.Decimal `json:"expense"`
	Balance     decimal.Decimal `json:"balance"`
	SavingsRate int             `json:"savingsRate"`
}

// Totals aggregates the whole log.
type Totals struct {
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
	Balance  decimal.Decimal `json:"balance"`
}

// MonthlySummary sums income and expense dated in the month of now.
// SavingsRate is 0 when there is no income.
func MonthlySummary(txs []core.Transaction, now time.Time) Summary {
	p := core.PeriodOf(now)
	s := Summary{Period: p, Income: decimal.Zero, Expense: decimal.Zero}
	for _, tx := range txs {
		if !p.Contains(tx.Date) {
			continue
		}
		switch tx.Kind {
		case core.KindIncome:
			s.Income = s.Income.Add(tx.Amount)
		case core.KindExpense:
			s.Expense = s.Expense.Add(tx.Amount)
		}
	}
	s.Balance = s.Income.Sub(s.Expense)
	if s.Income.IsPositive() {
		s.SavingsRate = int(core.RoundHalfUp(s.Balance.Div(s.Income).Mul(hundred)).IntPart())
	}
	return s
}

// ComputeTotals sums income and expenses over every transaction.
func ComputeTotals(txs []core.Transaction) Totals {
	t := Totals{Income: decimal.Zero, Expenses: decimal.Zero}
	for _, tx := range txs {
		switch tx.Kind {
		case core.KindIncome:
			t.Income = t.Income.Add(tx.Amount)
		case core.KindExpense:
			t.Expenses = t.Expenses.Add(tx.Amount)
		}
	}
	t.Balance = t.Income.Sub(t.Expenses)
	return t
}
