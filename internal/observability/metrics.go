package observability

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yungbote/staffassist-backend/internal/platform/logger"
)

const defaultScrapeInterval = 10 * time.Second

// Metrics is the service's metric registry. A nil *Metrics is valid and
// records nothing, so callers never branch on whether metrics are enabled.
type Metrics struct {
	apiRequests *CounterVec
	apiLatency  *HistogramVec
	apiInflight *Gauge

	suggestions *CounterVec
	completions *CounterVec

	rateLimited    *CounterVec
	rateLimitError *CounterVec

	redisUp   *Gauge
	redisPing *Gauge
}

func NewMetrics() *Metrics {
	return &Metrics{
		apiRequests: NewCounterVec("sa_api_requests_total", "Total API requests by method/route/status.", []string{"method", "route", "status"}),
		apiLatency: NewHistogramVec(
			"sa_api_request_duration_seconds",
			"API request latency in seconds by method/route/status.",
			[]string{"method", "route", "status"},
			[]float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2},
		),
		apiInflight: NewGauge("sa_api_inflight_requests", "In-flight API requests."),
		suggestions: NewCounterVec(
			"sa_suggestions_total",
			"Generated descriptions by operation/category/subtype/regenerate.",
			[]string{"operation", "category", "subtype", "regenerate"},
		),
		completions: NewCounterVec(
			"sa_completions_total",
			"Inline completions by field type and matching strategy.",
			[]string{"field_type", "strategy"},
		),
		rateLimited:    NewCounterVec("sa_rate_limited_total", "Requests rejected by the rate limiter.", []string{"backend"}),
		rateLimitError: NewCounterVec("sa_rate_limit_errors_total", "Rate limiter backend failures (requests were let through).", []string{"backend"}),
		redisUp:        NewGauge("sa_redis_up", "Whether the rate limit Redis answered the last ping."),
		redisPing:      NewGauge("sa_redis_ping_seconds", "Latency of the last Redis ping."),
	}
}

func (m *Metrics) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if m == nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "text/plain; version=0.0.4")
		_ = m.WritePrometheus(w)
	})
}

// Serve exposes /metrics on addr until ctx is cancelled.
func (m *Metrics) Serve(ctx context.Context, log *logger.Logger, addr string) error {
	if m == nil {
		return nil
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", m.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = srv.Shutdown(shutdownCtx)
		cancel()
	}()
	if log != nil {
		log.Info("metrics server listening", "addr", addr)
	}
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	writers := []interface{ WritePrometheus(io.Writer) error }{
		m.apiRequests,
		m.apiLatency,
		m.apiInflight,
		m.suggestions,
		m.completions,
		m.rateLimited,
		m.rateLimitError,
		m.redisUp,
		m.redisPing,
	}
	for _, wr := range writers {
		if err := wr.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "UNKNOWN"
	}
	if route == "" {
		route = "unknown"
	}
	if status == "" {
		status = "0"
	}
	m.apiRequests.Inc(method, route, status)
	m.apiLatency.Observe(dur.Seconds(), method, route, status)
}

func (m *Metrics) APIInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) APIInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

func (m *Metrics) ObserveSuggestion(operation, category, subtype string, regenerate bool) {
	if m == nil {
		return
	}
	m.suggestions.Inc(operation, category, subtype, strconv.FormatBool(regenerate))
}

func (m *Metrics) ObserveCompletion(fieldType, strategy string) {
	if m == nil {
		return
	}
	m.completions.Inc(fieldType, strategy)
}

func (m *Metrics) IncRateLimited(backend string) {
	if m == nil {
		return
	}
	m.rateLimited.Inc(backend)
}

func (m *Metrics) IncRateLimitError(backend string) {
	if m == nil {
		return
	}
	m.rateLimitError.Inc(backend)
}

// RunRedisCollector pings rdb every interval and records reachability until
// ctx is cancelled.
func (m *Metrics) RunRedisCollector(ctx context.Context, log *logger.Logger, rdb redis.Cmdable, interval time.Duration) error {
	if m == nil || rdb == nil {
		return nil
	}
	if interval <= 0 {
		interval = defaultScrapeInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		m.pingRedis(ctx, log, rdb)
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (m *Metrics) pingRedis(ctx context.Context, log *logger.Logger, rdb redis.Cmdable) {
	start := time.Now()
	if err := rdb.Ping(ctx).Err(); err != nil {
		if ctx.Err() != nil {
			return
		}
		m.redisUp.Set(0)
		if log != nil {
			log.Warn("metrics: redis ping failed", "error", err)
		}
		return
	}
	m.redisUp.Set(1)
	m.redisPing.Set(time.Since(start).Seconds())
}
