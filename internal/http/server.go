package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"spendwise/internal/analytics"
	"spendwise/internal/cache"
	"spendwise/internal/ledger"
	applog "spendwise/internal/log"
	"spendwise/internal/middleware/ratelimit"
	"spendwise/internal/middleware/security"
	"spendwise/internal/middleware/trace"
)

// Options tunes the server. Zero values fall back to defaults.
type Options struct {
	RateLimitPerMinute int
	InsightsCacheTTL   time.Duration
	InsightsCacheSize  int
	Logger             *applog.Logger
	// CacheManager, when set, evicts expired insight reports in the background.
	CacheManager *cache.Manager
}

type Server struct {
	http.Server

	ledger   *ledger.Ledger
	engine   *analytics.Engine
	insights *cache.LRUCache[analytics.Report]

	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware

	unsubscribe  func()
	ready        atomic.Bool
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
// The server subscribes to l so cached insights are dropped on every mutation.
func NewServer(addr string, l *ledger.Ledger, engine *analytics.Engine, opts Options) *Server {
	if opts.RateLimitPerMinute <= 0 {
		opts.RateLimitPerMinute = 60
	}
	if opts.InsightsCacheTTL <= 0 {
		opts.InsightsCacheTTL = 5 * time.Minute
	}
	if opts.InsightsCacheSize <= 0 {
		opts.InsightsCacheSize = 64
	}

	detector := security.NewDetector()
	s := &Server{
		ledger:   l,
		engine:   engine,
		insights: cache.NewLRUCache[analytics.Report](opts.InsightsCacheSize, opts.InsightsCacheTTL),
		limiter:  ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		detector: detector,
		tracer:   trace.NewMiddleware(opts.Logger, detector.ExtractClientIP),
	}
	if opts.CacheManager != nil {
		opts.CacheManager.Register(s.insights)
	}
	s.unsubscribe = l.Subscribe(s.onLedgerEvent)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /api/transactions", s.handleListTransactions)
	mux.HandleFunc("GET /api/transactions/{id}", s.handleGetTransaction)
	mux.Handle("POST /api/transactions", s.limited(s.handleCreateTransaction))
	mux.Handle("DELETE /api/transactions/{id}", s.limited(s.handleDeleteTransaction))

	mux.HandleFunc("GET /api/budgets", s.handleListBudgets)
	mux.Handle("PUT /api/budgets/{category}", s.limited(s.handlePutBudget))
	mux.Handle("DELETE /api/budgets/{category}", s.limited(s.handleDeleteBudget))

	mux.HandleFunc("GET /api/categories", s.handleCategories)
	mux.HandleFunc("GET /api/categories/predict", s.handlePredictCategory)
	mux.HandleFunc("GET /api/categories/suggest", s.handleSuggestCategories)

	mux.HandleFunc("GET /api/insights", s.handleInsights)
	mux.HandleFunc("GET /api/insights/summary", s.handleSummary)
	mux.HandleFunc("GET /api/totals", s.handleTotals)
	mux.HandleFunc("GET /api/tips", s.handleTips)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.tracer.Middleware(headers.Middleware(detector.Middleware(mux))),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	s.ready.Store(true)
	return s
}

// limited applies the per-IP rate limit to a mutating handler.
func (s *Server) limited(h http.HandlerFunc) http.Handler {
	return s.limiter.Middleware(s.detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		applog.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
			applog.FieldClientIP, s.detector.ExtractClientIP(r),
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path)
		TooManyRequestsError().Write(w)
	})(h)
}

func (s *Server) onLedgerEvent(ctx context.Context, e ledger.Event) {
	s.insights.Purge()
	slog.DebugContext(ctx, "Insights cache purged",
		applog.FieldComponent, applog.ComponentCache,
		applog.FieldRevision, e.Revision)
}

// insightsKey ties a cached report to the ledger revision it was built from.
func insightsKey(revision uint64, anchor time.Time) string {
	return fmt.Sprintf("%d:%s", revision, anchor.Format("2006-01-02"))
}

// Shutdown stops accepting requests, detaches from the ledger and stops
// background goroutines. Safe to call more than once.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.ready.Store(false)
		s.unsubscribe()
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)

		m := s.tracer.GetMetrics()
		slog.InfoContext(ctx, "HTTP server stopped",
			"total_requests", m.TotalRequests,
			"server_errors", m.ServerErrors,
			"rate_limited", s.limiter.Hits(),
			"suspicious_requests", s.detector.SuspiciousRequests())
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Body(map[string]string{"status": "ok"}).Write(w)
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if !s.ready.Load() {
		ErrorResponse(http.StatusServiceUnavailable, "shutting down").Write(w)
		return
	}
	NewJSONResponse().Body(map[string]any{
		"status":   "ready",
		"revision": s.ledger.Revision(),
	}).Write(w)
}
