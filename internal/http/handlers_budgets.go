package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"spendwise/internal/analytics"
	"spendwise/internal/core"
	"spendwise/internal/ledger"
	applog "spendwise/internal/log"
)

// budgetView is a budget with its current-month progress.
type budgetView struct {
	Category  string               `json:"category"`
	Limit     decimal.Decimal      `json:"limit"`
	Spent     decimal.Decimal      `json:"spent"`
	Remaining decimal.Decimal      `json:"remaining"`
	Percent   int                  `json:"percent"`
	Level     analytics.AlertLevel `json:"level"`
}

func newBudgetView(b core.Budget) budgetView {
	level, pct := analytics.ClassifyBudget(b.Spent, b.Limit)
	return budgetView{
		Category:  b.Category,
		Limit:     b.Limit,
		Spent:     b.Spent,
		Remaining: b.Limit.Sub(b.Spent),
		Percent:   int(core.RoundHalfUp(pct).IntPart()),
		Level:     level,
	}
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	budgets := s.ledger.Budgets(s.engine.Now())
	views := make([]budgetView, 0, len(budgets))
	for _, b := range budgets {
		views = append(views, newBudgetView(b))
	}
	NewJSONResponse().Body(map[string]any{"budgets": views}).Write(w)
}

// handlePutBudget creates or replaces the monthly limit of one category.
func (s *Server) handlePutBudget(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	parser := NewRequestBodyParser(w, r)
	if err := parser.Parse(); err != nil {
		ErrorFor(err).Write(w)
		return
	}

	limit, err := core.ParseAmount(parser.Get("limit"))
	if err != nil {
		ErrorFor(core.ErrInvalidLimit).Write(w)
		return
	}

	category := strings.TrimSpace(r.PathValue("category"))
	b, err := s.ledger.SetBudget(ctx, category, limit)
	if err != nil {
		if !core.IsValidationError(err) {
			applog.LogError(ctx, "Failed to save budget", err, applog.OpUpdate,
				applog.NewFields().WithComponent(applog.ComponentLedger))
		}
		ErrorFor(err).Write(w)
		return
	}

	for _, current := range s.ledger.Budgets(s.engine.Now()) {
		if current.Category == b.Category {
			NewJSONResponse().Body(newBudgetView(current)).Write(w)
			return
		}
	}
	NewJSONResponse().Body(newBudgetView(core.Budget{Category: b.Category, Limit: b.Limit})).Write(w)
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	category := r.PathValue("category")
	if err := s.ledger.DeleteBudget(ctx, category); err != nil {
		if !errors.Is(err, ledger.ErrNotFound) {
			applog.LogError(ctx, "Failed to delete budget", err, applog.OpDelete, nil)
		}
		ErrorFor(err).Write(w)
		return
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}
