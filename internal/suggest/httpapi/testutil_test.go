package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/staffassist-backend/internal/observability"
	"github.com/yungbote/staffassist-backend/internal/platform/logger"
	"github.com/yungbote/staffassist-backend/internal/suggest/config"
	"github.com/yungbote/staffassist-backend/internal/suggest/engine"
	"github.com/yungbote/staffassist-backend/internal/suggest/ratelimit"
)

func testConfig() *config.Config {
	return &config.Config{
		Env: "test",
		HTTP: config.HTTPConfig{
			Addr:            ":0",
			MaxRequestBytes: 64 << 10,
			AllowedOrigins:  config.DefaultAllowedOrigins,
		},
	}
}

func testDeps(t *testing.T) Deps {
	t.Helper()
	corpus, err := engine.DefaultCorpus()
	if err != nil {
		t.Fatalf("corpus: %v", err)
	}
	return Deps{
		Engine:  engine.New(corpus),
		Metrics: observability.NewMetrics(),
	}
}

func testHandler(t *testing.T) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)
	return NewHandler(testConfig(), logger.Nop(), testDeps(t))
}

func jsonRequest(method, path, body string) *http.Request {
	req, _ := http.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

type stubLimiter struct {
	allow bool
	err   error
	calls int
}

func (s *stubLimiter) Allow(context.Context, string) (bool, error) {
	s.calls++
	return s.allow, s.err
}

func (s *stubLimiter) Backend() string { return ratelimit.BackendLocal }

var errBackendDown = errors.New("backend down")
