package httpapi

import (
	"context"
	"errors"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/staffassist-backend/internal/observability"
	"github.com/yungbote/staffassist-backend/internal/platform/ctxutil"
	"github.com/yungbote/staffassist-backend/internal/platform/logger"
	"github.com/yungbote/staffassist-backend/internal/suggest/httpapi/httputil"
	"github.com/yungbote/staffassist-backend/internal/suggest/ratelimit"
)

const (
	headerTraceID   = "X-Trace-Id"
	headerRequestID = "X-Request-Id"
)

func traceContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := strings.TrimSpace(c.GetHeader(headerRequestID))
		if reqID == "" {
			reqID = uuid.New().String()
		}
		traceID := strings.TrimSpace(c.GetHeader(headerTraceID))
		if traceID == "" {
			spanCtx := trace.SpanContextFromContext(c.Request.Context())
			if spanCtx.HasTraceID() {
				traceID = spanCtx.TraceID().String()
			}
		}
		if traceID == "" {
			traceID = uuid.New().String()
		}
		ctx := ctxutil.WithTraceData(c.Request.Context(), &ctxutil.TraceData{
			TraceID:   traceID,
			RequestID: reqID,
		})
		c.Request = c.Request.WithContext(ctx)
		c.Writer.Header().Set(headerTraceID, traceID)
		c.Writer.Header().Set(headerRequestID, reqID)
		c.Next()
	}
}

func requestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		fields := []interface{}{
			"method", strings.ToUpper(c.Request.Method),
			"path", path,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
		}
		fields = append(fields, ctxutil.LogFields(c.Request.Context())...)

		switch {
		case status >= 500:
			log.Error("HTTP request", fields...)
		case status >= 400:
			log.Warn("HTTP request", fields...)
		default:
			log.Info("HTTP request", fields...)
		}
	}
}

func recovery(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				fields := append([]interface{}{"panic", rec, "stack", string(debug.Stack())}, ctxutil.LogFields(c.Request.Context())...)
				log.Error("panic recovered", fields...)
				httputil.WriteError(c, http.StatusInternalServerError, "internal server error", httputil.CodeInternal, "")
			}
		}()
		c.Next()
	}
}

func metrics(m *observability.Metrics) gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		start := time.Now()
		m.APIInflightInc()
		defer m.APIInflightDec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		m.ObserveAPI(c.Request.Method, route, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}

func bodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes > 0 && c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}

// rateLimit keys on the client IP. Backend failures let the request through.
func rateLimit(l ratelimit.Limiter, log *logger.Logger, m *observability.Metrics) gin.HandlerFunc {
	if l == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 250*time.Millisecond)
		ok, err := l.Allow(ctx, c.ClientIP())
		cancel()
		if err != nil {
			m.IncRateLimitError(l.Backend())
			if !errors.Is(err, context.Canceled) {
				fields := append([]interface{}{"backend", l.Backend(), "error", err}, ctxutil.LogFields(c.Request.Context())...)
				log.Warn("rate limiter unavailable, allowing request", fields...)
			}
			c.Next()
			return
		}
		if !ok {
			m.IncRateLimited(l.Backend())
			c.Header("Retry-After", "1")
			httputil.WriteError(c, http.StatusTooManyRequests, "rate limit exceeded, please slow down", httputil.CodeRateLimited, "")
			return
		}
		c.Next()
	}
}
