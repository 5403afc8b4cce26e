package http

import (
	"net/http"
	"strings"

	"spendwise/internal/analytics"
	"spendwise/internal/catalog"
	applog "spendwise/internal/log"
)

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Body(map[string]any{"categories": catalog.Categories()}).Write(w)
}

// handlePredictCategory answers an empty prediction for descriptions too
// short to classify.
func (s *Server) handlePredictCategory(w http.ResponseWriter, r *http.Request) {
	description := sanitizeInput(r.URL.Query().Get("description"))
	pred := s.engine.Classifier.Predict(description)
	if pred.Keywords == nil {
		pred.Keywords = []string{}
	}
	NewJSONResponse().Body(pred).Write(w)
}

func (s *Server) handleSuggestCategories(w http.ResponseWriter, r *http.Request) {
	suggestions := s.engine.Classifier.Suggest(sanitizeInput(r.URL.Query().Get("q")))
	if suggestions == nil {
		suggestions = []string{}
	}
	NewJSONResponse().Body(map[string]any{"suggestions": suggestions}).Write(w)
}

// handleInsights serves the full report for ?year=&month= (default: this
// month). Reports are cached per ledger revision.
func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	now := s.engine.Now()
	period, err := ParsePeriodParams(r.URL.Query(), now)
	if err != nil {
		ErrorFor(err).Write(w)
		return
	}
	anchor := periodAnchor(period, now)

	key := insightsKey(s.ledger.Revision(), anchor)
	report, err := s.insights.GetOrLoad(key, func() (analytics.Report, error) {
		applog.FromContext(ctx).DebugContext(ctx, "Computing insights report",
			applog.FieldComponent, applog.ComponentInsights,
			applog.FieldPeriod, period.String())
		return s.engine.ReportAt(s.ledger.Transactions(), s.ledger.BudgetLimits(), anchor), nil
	})
	if err != nil {
		applog.LogError(ctx, "Failed to build insights", err, applog.OpReport, nil)
		ErrorFor(err).Write(w)
		return
	}
	NewJSONResponse().Body(report).Write(w)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	now := s.engine.Now()
	period, err := ParsePeriodParams(r.URL.Query(), now)
	if err != nil {
		ErrorFor(err).Write(w)
		return
	}
	summary := analytics.MonthlySummary(s.ledger.Transactions(), periodAnchor(period, now))
	NewJSONResponse().Body(summary).Write(w)
}

func (s *Server) handleTotals(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Body(analytics.ComputeTotals(s.ledger.Transactions())).Write(w)
}

// handleTips returns a category tip for ?category=, or a random saving tip.
func (s *Server) handleTips(w http.ResponseWriter, r *http.Request) {
	tip := s.engine.Tip()
	if category := strings.TrimSpace(r.URL.Query().Get("category")); category != "" {
		tip = catalog.CategoryTip(category)
	}
	NewJSONResponse().Body(map[string]string{"tip": tip}).Write(w)
}
