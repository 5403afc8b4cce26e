// Package seed generates plausible demo data for a student ledger.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/shopspring/decimal"

	"spendwise/internal/catalog"
	"spendwise/internal/core"
	"spendwise/internal/ledger"
)

// budgetCategory folds classifier categories onto the budgeted ones so
// generated spend shows up in budget alerts.
var budgetCategory = map[string]string{
	"Food & Dining":     "Food",
	"Transport":         "Transport",
	"Entertainment":     "Entertainment",
	"Study & Education": "Books",
}

var incomeSources = []string{"Part-time job", "Scholarship", "Family support", "Tutoring", "Freelance work"}

// Options controls the shape of the generated history.
type Options struct {
	// Months of history ending with the month of Now.
	Months int
	// ExpensesPerMonth is the number of expenses generated per month.
	ExpensesPerMonth int
	// Seed makes generation reproducible. Zero picks a random seed.
	Seed int64
	Now  time.Time
}

// DefaultOptions returns three months of history with a dozen expenses each.
func DefaultOptions() Options {
	return Options{Months: 3, ExpensesPerMonth: 12, Now: time.Now()}
}

// Generator builds transactions with descriptions the classifier recognises.
type Generator struct {
	faker *gofakeit.Faker
	rules []catalog.Rule
	opts  Options
}

func NewGenerator(opts Options) *Generator {
	if opts.Months < 1 {
		opts.Months = 1
	}
	if opts.ExpensesPerMonth < 0 {
		opts.ExpensesPerMonth = 0
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	return &Generator{
		faker: gofakeit.New(opts.Seed),
		rules: catalog.KeywordRules(),
		opts:  opts,
	}
}

// Transactions returns, oldest month first, one income and
// ExpensesPerMonth expenses per month. Dates in the current month never
// fall after Now.
func (g *Generator) Transactions() []ledger.NewTransaction {
	out := make([]ledger.NewTransaction, 0, g.opts.Months*(g.opts.ExpensesPerMonth+1))
	current := core.PeriodOf(g.opts.Now)
	for i := g.opts.Months - 1; i >= 0; i-- {
		p := current.Prev(i)
		lastDay := daysIn(p)
		if p == current {
			lastDay = g.opts.Now.Day()
		}

		out = append(out, ledger.NewTransaction{
			Amount:      g.amount(400, 1200),
			Category:    "Income",
			Description: g.faker.RandomString(incomeSources),
			Date:        core.NewDate(p.Year, int(p.Month), 1),
			Kind:        core.KindIncome,
		})
		for j := 0; j < g.opts.ExpensesPerMonth; j++ {
			out = append(out, g.expense(p, lastDay))
		}
	}
	return out
}

func (g *Generator) expense(p core.Period, lastDay int) ledger.NewTransaction {
	rule := g.rules[g.faker.Number(0, len(g.rules)-1)]
	keyword := g.faker.RandomString(rule.Keywords)

	category, ok := budgetCategory[rule.Name]
	if !ok {
		category = catalog.OtherRule.Name
	}
	return ledger.NewTransaction{
		Amount:      g.amount(2, 80),
		Category:    category,
		Description: fmt.Sprintf("%s %s", keyword, g.faker.Company()),
		Date:        core.NewDate(p.Year, int(p.Month), g.faker.Number(1, lastDay)),
		Kind:        core.KindExpense,
	}
}

// amount never returns zero, which the ledger would reject.
func (g *Generator) amount(low, high float64) decimal.Decimal {
	d := core.RoundCents(decimal.NewFromFloat(g.faker.Price(low, high)))
	if !d.IsPositive() {
		return decimal.NewFromInt(1)
	}
	return d
}

func daysIn(p core.Period) int {
	return time.Date(p.Year, p.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Populate adds every generated transaction to l and returns how many were
// stored. It stops at the first failure.
func Populate(ctx context.Context, l *ledger.Ledger, txs []ledger.NewTransaction) (int, error) {
	for i, in := range txs {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		if _, err := l.Add(ctx, in); err != nil {
			return i, fmt.Errorf("add transaction %d: %w", i, err)
		}
	}
	slog.InfoContext(ctx, "Seeded transactions", "count", len(txs))
	return len(txs), nil
}
