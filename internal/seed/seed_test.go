package seed

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"spendwise/internal/analytics"
	"spendwise/internal/core"
	"spendwise/internal/ledger"
	"spendwise/internal/storage/memory"
)

var now = time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

func TestTransactionsShape(t *testing.T) {
	g := NewGenerator(Options{Months: 3, ExpensesPerMonth: 5, Seed: 42, Now: now})
	txs := g.Transactions()

	if len(txs) != 18 {
		t.Fatalf("got %d transactions, want 18", len(txs))
	}

	incomes := map[core.Period]int{}
	for _, tx := range txs {
		if !tx.Amount.IsPositive() {
			t.Fatalf("non-positive amount %v", tx.Amount)
		}
		if tx.Description == "" || tx.Category == "" {
			t.Fatalf("incomplete transaction %+v", tx)
		}
		if tx.Date.After(now) {
			t.Fatalf("transaction dated in the future: %v", tx.Date)
		}
		p := core.PeriodOf(tx.Date.Time)
		if p.Year != 2025 || p.Month < time.January || p.Month > time.March {
			t.Fatalf("date %v outside the generated window", tx.Date)
		}
		if tx.Kind == core.KindIncome {
			incomes[p]++
			if tx.Category != "Income" {
				t.Fatalf("income category %q", tx.Category)
			}
		}
	}
	if len(incomes) != 3 {
		t.Fatalf("incomes per month = %v", incomes)
	}
}

func TestTransactionsReproducible(t *testing.T) {
	opts := Options{Months: 2, ExpensesPerMonth: 4, Seed: 7, Now: now}
	a := NewGenerator(opts).Transactions()
	b := NewGenerator(opts).Transactions()
	if !reflect.DeepEqual(a, b) {
		t.Fatal("same seed produced different data")
	}
}

func TestDescriptionsAreClassifiable(t *testing.T) {
	engine := analytics.NewEngine()
	txs := NewGenerator(Options{Months: 1, ExpensesPerMonth: 20, Seed: 3, Now: now}).Transactions()
	for _, tx := range txs {
		if tx.Kind != core.KindExpense {
			continue
		}
		if pred := engine.Classifier.Predict(tx.Description); pred.Confidence == 0 {
			t.Errorf("description %q not classified", tx.Description)
		}
	}
}

func TestNewGeneratorClampsOptions(t *testing.T) {
	txs := NewGenerator(Options{Months: 0, ExpensesPerMonth: -3, Seed: 1, Now: now}).Transactions()
	if len(txs) != 1 || txs[0].Kind != core.KindIncome {
		t.Fatalf("unexpected transactions %+v", txs)
	}
}

func TestPopulate(t *testing.T) {
	ctx := context.Background()
	l, err := ledger.New(ctx, memory.New())
	if err != nil {
		t.Fatal(err)
	}
	txs := NewGenerator(Options{Months: 2, ExpensesPerMonth: 3, Seed: 9, Now: now}).Transactions()

	n, err := Populate(ctx, l, txs)
	if err != nil || n != len(txs) {
		t.Fatalf("Populate = %d, %v", n, err)
	}
	if got := len(l.Transactions()); got != len(txs) {
		t.Fatalf("ledger has %d transactions", got)
	}

	bad := []ledger.NewTransaction{txs[0], {Description: "broken"}}
	n, err = Populate(ctx, l, bad)
	if n != 1 || !core.IsValidationError(err) {
		t.Fatalf("Populate with invalid input = %d, %v", n, err)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if n, err := Populate(cancelled, l, txs); n != 0 || !errors.Is(err, context.Canceled) {
		t.Fatalf("cancelled Populate = %d, %v", n, err)
	}
}
