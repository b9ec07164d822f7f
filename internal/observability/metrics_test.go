package observability

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestMetricsExposition(t *testing.T) {
	m := NewMetrics()
	m.ObserveAPI("POST", "/api/suggest/completion", "200", 30*time.Millisecond)
	m.ObserveAPI("POST", "/api/suggest/completion", "200", 2*time.Second)
	m.ObserveSuggestion("description", "task", "review", false)
	m.ObserveCompletion("description", "exact_suffix")
	m.ObserveCompletion("description", "exact_suffix")
	m.IncRateLimited("local")
	m.APIInflightInc()

	var buf bytes.Buffer
	if err := m.WritePrometheus(&buf); err != nil {
		t.Fatalf("WritePrometheus: %v", err)
	}
	out := buf.String()

	want := []string{
		`sa_api_requests_total{method="POST",route="/api/suggest/completion",status="200"} 2`,
		`sa_api_request_duration_seconds_bucket{method="POST",route="/api/suggest/completion",status="200",le="0.05"} 1`,
		`sa_api_request_duration_seconds_bucket{method="POST",route="/api/suggest/completion",status="200",le="+Inf"} 2`,
		`sa_api_request_duration_seconds_count{method="POST",route="/api/suggest/completion",status="200"} 2`,
		`sa_api_inflight_requests 1`,
		`sa_suggestions_total{operation="description",category="task",subtype="review",regenerate="false"} 1`,
		`sa_completions_total{field_type="description",strategy="exact_suffix"} 2`,
		`sa_rate_limited_total{backend="local"} 1`,
		`# TYPE sa_redis_up gauge`,
	}
	for _, line := range want {
		if !strings.Contains(out, line) {
			t.Fatalf("missing %q in:\n%s", line, out)
		}
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveAPI("GET", "/", "200", time.Millisecond)
	m.ObserveCompletion("title", "none")
	m.IncRateLimited("redis")
	m.APIInflightInc()
	m.APIInflightDec()

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status=%d", rr.Code)
	}
}

func TestLabelEscaping(t *testing.T) {
	c := NewCounterVec("x_total", "x", []string{"a", "b", "c"})
	c.Inc(`x"y`)

	var buf bytes.Buffer
	if err := c.WritePrometheus(&buf); err != nil {
		t.Fatalf("WritePrometheus: %v", err)
	}
	if !strings.Contains(buf.String(), `x_total{a="x\"y",b="unknown",c="unknown"} 1`) {
		t.Fatalf("unexpected exposition:\n%s", buf.String())
	}
}

func TestCounterVecValue(t *testing.T) {
	c := NewCounterVec("x_total", "x", []string{"k"})
	c.Inc("a")
	c.Inc("a")
	if got := c.Value("a"); got != 2 {
		t.Fatalf("value=%v", got)
	}
	if got := c.Value("b"); got != 0 {
		t.Fatalf("value=%v", got)
	}
}

func TestCounterVecFoldsOverflowSeries(t *testing.T) {
	c := NewCounterVec("x_total", "x", []string{"k"})
	c.set.maxSeries = 3
	for i := 0; i < 10; i++ {
		c.Inc(fmt.Sprintf("v%d", i))
	}
	if got := len(c.set.series); got != 4 {
		t.Fatalf("series=%d", got)
	}
	if got := c.Value("other"); got != 7 {
		t.Fatalf("overflow=%v", got)
	}
	c.Inc("v0")
	if got := c.Value("v0"); got != 2 {
		t.Fatalf("existing series must keep counting, got %v", got)
	}
}

func TestGaugeInflight(t *testing.T) {
	g := NewGauge("g", "g")
	g.Inc()
	g.Inc()
	g.Dec()
	g.Set(g.val.load() + 0.5)

	var buf bytes.Buffer
	_ = g.WritePrometheus(&buf)
	if !strings.Contains(buf.String(), "g 1.5\n") {
		t.Fatalf("unexpected exposition:\n%s", buf.String())
	}
}
