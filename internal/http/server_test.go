package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"spendwise/internal/analytics"
	"spendwise/internal/core"
	"spendwise/internal/ledger"
	"spendwise/internal/storage/memory"
)

var testNow = time.Date(2025, time.March, 15, 10, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T, opts Options) (*Server, *ledger.Ledger) {
	t.Helper()
	clock := func() time.Time { return testNow }
	l, err := ledger.New(context.Background(), memory.New(),
		ledger.WithClock(clock),
		ledger.WithDefaultBudgets([]core.BudgetLimit{{Category: "Food", Limit: decimal.NewFromInt(100)}}))
	if err != nil {
		t.Fatalf("ledger.New: %v", err)
	}
	engine := analytics.NewEngine(analytics.WithClock(clock), analytics.WithRand(func(int) int { return 0 }))
	srv := NewServer(":0", l, engine, opts)
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv, l
}

func do(t *testing.T, srv *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		if strings.HasPrefix(body, "{") {
			req.Header.Set("Content-Type", "application/json")
		} else {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
	}
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
	return v
}

func TestHealthAndReady(t *testing.T) {
	srv, _ := newTestServer(t, Options{})

	for _, path := range []string{"/healthz", "/readyz"} {
		rr := do(t, srv, http.MethodGet, path, "")
		if rr.Code != http.StatusOK {
			t.Fatalf("%s status=%d", path, rr.Code)
		}
		if rr.Header().Get("X-Request-ID") == "" || rr.Header().Get("X-Content-Type-Options") != "nosniff" {
			t.Fatalf("%s missing middleware headers: %v", path, rr.Header())
		}
	}

	if err := srv.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if err := srv.Shutdown(context.Background()); err != nil {
		t.Fatalf("second Shutdown: %v", err)
	}
	if rr := do(t, srv, http.MethodGet, "/readyz", ""); rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("readyz after shutdown = %d", rr.Code)
	}
}

func TestCreateTransaction(t *testing.T) {
	srv, l := newTestServer(t, Options{})

	tests := []struct {
		name     string
		body     string
		status   int
		category string
		kind     core.Kind
		amount   string
	}{
		{"json with category", `{"amount":"12.50","description":"Lunch","category":"Food","date":"2025-03-10"}`, http.StatusCreated, "Food", core.KindExpense, "12.5"},
		{"json number amount", `{"amount":7.255,"description":"ticket","category":"Transport"}`, http.StatusCreated, "Transport", core.KindExpense, "7.26"},
		{"predicted category", `{"amount":"4","description":"Starbucks coffee"}`, http.StatusCreated, "Food & Dining", core.KindExpense, "4"},
		{"unclassifiable falls back", `{"amount":"4","description":"zzz"}`, http.StatusCreated, "Other", core.KindExpense, "4"},
		{"form income", "amount=1500%2C00&description=Salary&type=income", http.StatusCreated, "Income", core.KindIncome, "1500"},
		{"bad amount", `{"amount":"abc","description":"x","category":"Food"}`, http.StatusUnprocessableEntity, "", "", ""},
		{"negative amount", `{"amount":"-3","description":"x","category":"Food"}`, http.StatusUnprocessableEntity, "", "", ""},
		{"missing description", `{"amount":"3","category":"Food"}`, http.StatusUnprocessableEntity, "", "", ""},
		{"bad type", `{"amount":"3","description":"x","type":"transfer"}`, http.StatusUnprocessableEntity, "", "", ""},
		{"bad date", `{"amount":"3","description":"x","date":"15/03/2025"}`, http.StatusUnprocessableEntity, "", "", ""},
		{"malformed json", `{"amount":`, http.StatusBadRequest, "", "", ""},
	}

	created := 0
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, srv, http.MethodPost, "/api/transactions", tt.body)
			if rr.Code != tt.status {
				t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
			}
			if tt.status != http.StatusCreated {
				if body := decode[ErrorBody](t, rr); body.Error == "" {
					t.Fatalf("missing error message")
				}
				return
			}
			created++
			tx := decode[core.Transaction](t, rr)
			if tx.Category != tt.category || tx.Kind != tt.kind || !tx.Amount.Equal(decimal.RequireFromString(tt.amount)) {
				t.Fatalf("unexpected tx %+v", tx)
			}
			if rr.Header().Get("Location") != "/api/transactions/"+tx.ID {
				t.Fatalf("Location = %q", rr.Header().Get("Location"))
			}
			if tx.Date.IsZero() {
				t.Fatal("date not defaulted")
			}
		})
	}
	if got := len(l.Transactions()); got != created {
		t.Fatalf("ledger has %d transactions, want %d", got, created)
	}
}

func TestListGetDeleteTransactions(t *testing.T) {
	srv, l := newTestServer(t, Options{})
	ctx := context.Background()

	add := func(amount string, kind core.Kind, date core.Date) core.Transaction {
		tx, err := l.Add(ctx, ledger.NewTransaction{
			Amount: decimal.RequireFromString(amount), Category: "Food", Description: "item", Date: date, Kind: kind,
		})
		if err != nil {
			t.Fatal(err)
		}
		return tx
	}
	first := add("10", core.KindExpense, core.NewDate(2025, 3, 1))
	add("20", core.KindIncome, core.NewDate(2025, 3, 2))
	add("30", core.KindExpense, core.NewDate(2025, 2, 2))

	tests := []struct {
		target string
		status int
		count  int
	}{
		{"/api/transactions", http.StatusOK, 3},
		{"/api/transactions?kind=expense", http.StatusOK, 2},
		{"/api/transactions?kind=INCOME", http.StatusOK, 1},
		{"/api/transactions?year=2025&month=2", http.StatusOK, 1},
		{"/api/transactions?month=3&kind=expense", http.StatusOK, 1},
		{"/api/transactions?kind=gift", http.StatusUnprocessableEntity, 0},
		{"/api/transactions?month=13", http.StatusBadRequest, 0},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rr := do(t, srv, http.MethodGet, tt.target, "")
			if rr.Code != tt.status {
				t.Fatalf("status = %d", rr.Code)
			}
			if tt.status == http.StatusOK {
				if got := decode[transactionList](t, rr); got.Count != tt.count || len(got.Transactions) != tt.count {
					t.Fatalf("count = %d (%d items)", got.Count, len(got.Transactions))
				}
			}
		})
	}

	if rr := do(t, srv, http.MethodGet, "/api/transactions/"+first.ID, ""); rr.Code != http.StatusOK {
		t.Fatalf("get status = %d", rr.Code)
	}
	if rr := do(t, srv, http.MethodDelete, "/api/transactions/"+first.ID, ""); rr.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rr.Code)
	}
	for _, method := range []string{http.MethodDelete, http.MethodGet} {
		if rr := do(t, srv, method, "/api/transactions/"+first.ID, ""); rr.Code != http.StatusNotFound {
			t.Fatalf("%s after delete = %d", method, rr.Code)
		}
	}
	if rr := do(t, srv, http.MethodPatch, "/api/transactions", ""); rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("PATCH = %d", rr.Code)
	}
}

func TestBudgetsEndpoints(t *testing.T) {
	srv, l := newTestServer(t, Options{})
	_, _ = l.Add(context.Background(), ledger.NewTransaction{
		Amount: decimal.NewFromInt(95), Category: "Food", Description: "groceries",
		Date: core.NewDate(2025, 3, 2), Kind: core.KindExpense,
	})

	rr := do(t, srv, http.MethodGet, "/api/budgets", "")
	list := decode[struct {
		Budgets []struct {
			Category string `json:"category"`
			Percent  int    `json:"percent"`
			Level    string `json:"level"`
			Spent    string `json:"spent"`
		} `json:"budgets"`
	}](t, rr)
	if len(list.Budgets) != 1 || list.Budgets[0].Percent != 95 || list.Budgets[0].Level != "critical" || list.Budgets[0].Spent != "95" {
		t.Fatalf("unexpected budgets %+v", list)
	}

	tests := []struct {
		name   string
		method string
		target string
		body   string
		status int
	}{
		{"raise limit", http.MethodPut, "/api/budgets/Food", `{"limit":"200"}`, http.StatusOK},
		{"new budget via form", http.MethodPut, "/api/budgets/Books", "limit=50", http.StatusOK},
		{"zero limit", http.MethodPut, "/api/budgets/Books", `{"limit":"0"}`, http.StatusUnprocessableEntity},
		{"missing limit", http.MethodPut, "/api/budgets/Books", `{}`, http.StatusUnprocessableEntity},
		{"delete", http.MethodDelete, "/api/budgets/Books", "", http.StatusNoContent},
		{"delete again", http.MethodDelete, "/api/budgets/Books", "", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rr := do(t, srv, tt.method, tt.target, tt.body); rr.Code != tt.status {
				t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
			}
		})
	}

	limits := l.BudgetLimits()
	if len(limits) != 1 || !limits[0].Limit.Equal(decimal.NewFromInt(200)) {
		t.Fatalf("unexpected limits %+v", limits)
	}
}

func TestCategoryEndpoints(t *testing.T) {
	srv, _ := newTestServer(t, Options{})

	rr := do(t, srv, http.MethodGet, "/api/categories", "")
	cats := decode[map[string][]core.Category](t, rr)
	if len(cats["categories"]) == 0 {
		t.Fatal("no categories")
	}

	pred := decode[analytics.Prediction](t, do(t, srv, http.MethodGet, "/api/categories/predict?description=uber+to+airport", ""))
	if pred.Category != "Transport" || pred.Confidence != 70 {
		t.Fatalf("prediction %+v", pred)
	}
	empty := do(t, srv, http.MethodGet, "/api/categories/predict?description=a", "")
	if !strings.Contains(empty.Body.String(), `"keywords":[]`) {
		t.Fatalf("short description body %s", empty.Body.String())
	}

	sugg := decode[map[string][]string](t, do(t, srv, http.MethodGet, "/api/categories/suggest?q=GA", ""))
	if got := strings.Join(sugg["suggestions"], ","); got != "gas,game" {
		t.Fatalf("suggestions = %q", got)
	}
	none := do(t, srv, http.MethodGet, "/api/categories/suggest?q=", "")
	if !strings.Contains(none.Body.String(), `"suggestions":[]`) {
		t.Fatalf("empty suggest body %s", none.Body.String())
	}
}

func TestInsightsCachedAndPurged(t *testing.T) {
	srv, l := newTestServer(t, Options{})
	ctx := context.Background()

	first := decode[analytics.Report](t, do(t, srv, http.MethodGet, "/api/insights", ""))
	if !first.Summary.Expense.IsZero() || first.Trend.Direction != analytics.TrendInsufficientData {
		t.Fatalf("unexpected empty report %+v", first)
	}
	if srv.insights.Size() != 1 {
		t.Fatalf("report not cached, size=%d", srv.insights.Size())
	}
	_ = decode[analytics.Report](t, do(t, srv, http.MethodGet, "/api/insights", ""))
	if srv.insights.Size() != 1 {
		t.Fatalf("second request should hit the cache, size=%d", srv.insights.Size())
	}

	_, err := l.Add(ctx, ledger.NewTransaction{
		Amount: decimal.NewFromInt(40), Category: "Food", Description: "dinner",
		Date: core.NewDate(2025, 3, 3), Kind: core.KindExpense,
	})
	if err != nil {
		t.Fatal(err)
	}
	if srv.insights.Size() != 0 {
		t.Fatal("mutation did not purge the cache")
	}

	second := decode[analytics.Report](t, do(t, srv, http.MethodGet, "/api/insights", ""))
	if !second.Summary.Expense.Equal(decimal.NewFromInt(40)) {
		t.Fatalf("stale report %+v", second.Summary)
	}

	past := decode[analytics.Report](t, do(t, srv, http.MethodGet, "/api/insights?year=2025&month=2", ""))
	if !past.Summary.Expense.IsZero() || past.Summary.Period != (core.Period{Year: 2025, Month: time.February}) {
		t.Fatalf("past report %+v", past.Summary)
	}
	if rr := do(t, srv, http.MethodGet, "/api/insights?year=abc", ""); rr.Code != http.StatusBadRequest {
		t.Fatalf("bad year = %d", rr.Code)
	}
}

func TestSummaryTotalsTips(t *testing.T) {
	srv, l := newTestServer(t, Options{})
	ctx := context.Background()
	for _, in := range []ledger.NewTransaction{
		{Amount: decimal.NewFromInt(1000), Category: "Income", Description: "salary", Date: core.NewDate(2025, 3, 1), Kind: core.KindIncome},
		{Amount: decimal.NewFromInt(250), Category: "Food", Description: "food", Date: core.NewDate(2025, 3, 2), Kind: core.KindExpense},
		{Amount: decimal.NewFromInt(100), Category: "Food", Description: "food", Date: core.NewDate(2025, 1, 2), Kind: core.KindExpense},
	} {
		if _, err := l.Add(ctx, in); err != nil {
			t.Fatal(err)
		}
	}

	summary := decode[analytics.Summary](t, do(t, srv, http.MethodGet, "/api/insights/summary", ""))
	if summary.SavingsRate != 75 || !summary.Balance.Equal(decimal.NewFromInt(750)) {
		t.Fatalf("summary %+v", summary)
	}

	totals := decode[analytics.Totals](t, do(t, srv, http.MethodGet, "/api/totals", ""))
	if !totals.Expenses.Equal(decimal.NewFromInt(350)) || !totals.Balance.Equal(decimal.NewFromInt(650)) {
		t.Fatalf("totals %+v", totals)
	}

	tip := decode[map[string]string](t, do(t, srv, http.MethodGet, "/api/tips?category=food", ""))
	if tip["tip"] != "Try meal prepping to save on food!" {
		t.Fatalf("tip %q", tip["tip"])
	}
	random := decode[map[string]string](t, do(t, srv, http.MethodGet, "/api/tips", ""))
	if random["tip"] == "" {
		t.Fatal("empty random tip")
	}
}

func TestRateLimitOnlyMutatingRequests(t *testing.T) {
	srv, _ := newTestServer(t, Options{RateLimitPerMinute: 2})

	body := `{"amount":"1","description":"coffee","category":"Food"}`
	codes := []int{}
	for i := 0; i < 3; i++ {
		codes = append(codes, do(t, srv, http.MethodPost, "/api/transactions", body).Code)
	}
	if codes[0] != http.StatusCreated || codes[1] != http.StatusCreated || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("codes = %v", codes)
	}

	rr := do(t, srv, http.MethodPut, "/api/budgets/Food", `{"limit":"10"}`)
	if rr.Code != http.StatusTooManyRequests || rr.Header().Get("Retry-After") == "" {
		t.Fatalf("PUT = %d, headers %v", rr.Code, rr.Header())
	}
	if decode[ErrorBody](t, rr).Error == "" {
		t.Fatal("429 without JSON error")
	}

	for i := 0; i < 5; i++ {
		if rr := do(t, srv, http.MethodGet, "/api/transactions", ""); rr.Code != http.StatusOK {
			t.Fatalf("GET throttled: %d", rr.Code)
		}
	}
}
