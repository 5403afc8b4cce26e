package analytics

import (
	"math/rand/v2"
	"time"

	"github.com/shopspring/decimal"

	"spendwise/internal/catalog"
	"spendwise/internal/core"
)

// Report bundles every insight computed over one snapshot of the log.
type Report struct {
	Summary     Summary          `json:"summary"`
	Alerts      []Alert          `json:"alerts"`
	Unusual     []UnusualExpense `json:"unusual"`
	Prediction  decimal.Decimal  `json:"prediction"`
	Trend       Trend            `json:"trend"`
	Tip         string           `json:"tip"`
	GeneratedAt time.Time        `json:"generatedAt"`
}

// Engine computes insights. It holds no transaction state and is safe for
// concurrent use as long as the injected random source is.
type Engine struct {
	Classifier *Classifier

	now  func() time.Time
	pick func(n int) int
	tips []string
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock pins the engine's notion of "today".
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithRand replaces the uniform tip picker. pick must return a value in [0, n).
func WithRand(pick func(n int) int) Option {
	return func(e *Engine) { e.pick = pick }
}

// NewEngine builds an engine over the static catalog.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		Classifier: NewClassifier(catalog.KeywordRules()),
		now:        time.Now,
		pick:       rand.IntN,
		tips:       catalog.Tips(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Now returns the engine clock's current time.
func (e *Engine) Now() time.Time {
	return e.now()
}

// Tip returns a random saving tip.
func (e *Engine) Tip() string {
	if len(e.tips) == 0 {
		return ""
	}
	return e.tips[e.pick(len(e.tips))]
}

// Report computes the full insight set. Budget alerts only see the current
// month's transactions.
func (e *Engine) Report(txs []core.Transaction, budgets []core.BudgetLimit) Report {
	return e.ReportAt(txs, budgets, e.now())
}

// ReportAt computes the insight set as if today were now.
func (e *Engine) ReportAt(txs []core.Transaction, budgets []core.BudgetLimit, now time.Time) Report {
	return Report{
		Summary:     MonthlySummary(txs, now),
		Alerts:      BudgetAlerts(InPeriod(txs, core.PeriodOf(now)), budgets),
		Unusual:     UnusualExpenses(txs),
		Prediction:  PredictNextMonth(txs, now),
		Trend:       SpendingTrend(txs, now),
		Tip:         e.Tip(),
		GeneratedAt: now,
	}
}

// InPeriod returns the transactions dated in p, keeping order.
func InPeriod(txs []core.Transaction, p core.Period) []core.Transaction {
	out := make([]core.Transaction, 0, len(txs))
	for _, tx := range txs {
		if p.Contains(tx.Date) {
			out = append(out, tx)
		}
	}
	return out
}
