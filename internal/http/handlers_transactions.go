package http

import (
	"errors"
	"fmt"
	"net/http"

	"spendwise/internal/catalog"
	"spendwise/internal/core"
	"spendwise/internal/ledger"
	applog "spendwise/internal/log"
)

type transactionList struct {
	Transactions []core.Transaction `json:"transactions"`
	Count        int                `json:"count"`
}

// handleListTransactions returns the log in insertion order, optionally
// filtered by ?kind= and by ?year=&month=.
func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	kind, err := ParseKindFilter(query)
	if err != nil {
		ErrorFor(err).Write(w)
		return
	}

	byPeriod := query.Has("year") || query.Has("month")
	period, err := ParsePeriodParams(query, s.engine.Now())
	if err != nil {
		ErrorFor(err).Write(w)
		return
	}

	all := s.ledger.Transactions()
	out := make([]core.Transaction, 0, len(all))
	for _, tx := range all {
		if kind != "" && tx.Kind != kind {
			continue
		}
		if byPeriod && !period.Contains(tx.Date) {
			continue
		}
		out = append(out, tx)
	}
	NewJSONResponse().Body(transactionList{Transactions: out, Count: len(out)}).Write(w)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	tx, ok := s.ledger.Get(id)
	if !ok {
		NotFoundError(fmt.Sprintf("transaction %s not found", id)).Write(w)
		return
	}
	NewJSONResponse().Body(tx).Write(w)
}

// handleCreateTransaction accepts JSON or form bodies with amount,
// description, category, date and type. A missing category is predicted
// from the description; a missing date means today and a missing type
// means expense.
func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	parser := NewRequestBodyParser(w, r)
	if err := parser.Parse(); err != nil {
		ErrorFor(err).Write(w)
		return
	}

	in, err := s.newTransactionFrom(parser)
	if err != nil {
		ErrorFor(err).Write(w)
		return
	}

	tx, err := s.ledger.Add(ctx, in)
	if err != nil {
		if !core.IsValidationError(err) {
			applog.LogError(ctx, "Failed to add transaction", err, applog.OpCreate, nil)
		}
		ErrorFor(err).Write(w)
		return
	}

	applog.FromContext(ctx).InfoContext(ctx, "Transaction created",
		applog.NewFields().
			WithTransaction(tx.ID, string(tx.Kind), tx.Category, core.Cents(tx.Amount)).
			WithOperation(applog.OpCreate).
			ToSlice()...)

	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/transactions/"+tx.ID).
		Body(tx).
		Write(w)
}

func (s *Server) newTransactionFrom(p *RequestBodyParser) (ledger.NewTransaction, error) {
	amount, err := core.ParseAmount(p.Get("amount"))
	if err != nil {
		return ledger.NewTransaction{}, err
	}

	kind := core.KindExpense
	if raw := firstNonEmpty(p.Get("type"), p.Get("kind")); raw != "" {
		if kind, err = core.ParseKind(raw); err != nil {
			return ledger.NewTransaction{}, err
		}
	}

	date := core.DateOf(s.engine.Now())
	if raw := p.Get("date"); raw != "" {
		if date, err = core.ParseDate(raw); err != nil {
			return ledger.NewTransaction{}, err
		}
	}

	description := p.Get("description")
	category := p.Get("category")
	if category == "" {
		category = s.predictCategory(description, kind)
	}

	return ledger.NewTransaction{
		Amount:      amount,
		Category:    category,
		Description: description,
		Date:        date,
		Kind:        kind,
	}, nil
}

// predictCategory falls back to Other for expenses the classifier cannot
// place, and to Income for income.
func (s *Server) predictCategory(description string, kind core.Kind) string {
	if kind == core.KindIncome {
		return "Income"
	}
	if pred := s.engine.Classifier.Predict(description); pred.Category != "" {
		return pred.Category
	}
	return catalog.OtherRule.Name
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")
	if err := s.ledger.Delete(ctx, id); err != nil {
		if !errors.Is(err, ledger.ErrNotFound) {
			applog.LogError(ctx, "Failed to delete transaction", err, applog.OpDelete,
				applog.LogFields{applog.FieldTxID: id})
		}
		ErrorFor(err).Write(w)
		return
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
