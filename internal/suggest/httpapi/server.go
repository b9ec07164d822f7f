package httpapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/yungbote/staffassist-backend/internal/observability"
	"github.com/yungbote/staffassist-backend/internal/platform/logger"
	"github.com/yungbote/staffassist-backend/internal/suggest/config"
	"github.com/yungbote/staffassist-backend/internal/suggest/engine"
	apiv1 "github.com/yungbote/staffassist-backend/internal/suggest/httpapi/v1"
	"github.com/yungbote/staffassist-backend/internal/suggest/ratelimit"
)

const otelServiceName = "staffassist-suggest"

type Deps struct {
	Engine  *engine.Engine
	Limiter ratelimit.Limiter // nil disables rate limiting
	Metrics *observability.Metrics
}

func NewServer(cfg *config.Config, log *logger.Logger, deps Deps) *http.Server {
	return &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           NewHandler(cfg, log, deps),
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout.Duration,
		IdleTimeout:       cfg.HTTP.IdleTimeout.Duration,
	}
}

func NewHandler(cfg *config.Config, log *logger.Logger, deps Deps) http.Handler {
	switch strings.ToLower(cfg.Env) {
	case "prod", "production":
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(otelgin.Middleware(otelServiceName))
	r.Use(traceContext())
	r.Use(requestLogger(log))
	r.Use(metrics(deps.Metrics))
	r.Use(recovery(log))
	r.Use(CORS(cfg.HTTP.AllowedOrigins))

	r.GET("/", handleRoot)
	r.GET("/healthz", handleHealthz)
	r.GET("/readyz", handleReadyz)

	api := r.Group("/api")
	api.Use(rateLimit(deps.Limiter, log, deps.Metrics))
	api.Use(bodyLimit(cfg.HTTP.MaxRequestBytes))
	apiv1.Register(api, cfg, log, deps.Engine, deps.Metrics)

	return r
}
