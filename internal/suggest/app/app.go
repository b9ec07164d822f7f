package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/staffassist-backend/internal/observability"
	"github.com/yungbote/staffassist-backend/internal/platform/envutil"
	"github.com/yungbote/staffassist-backend/internal/platform/logger"
	"github.com/yungbote/staffassist-backend/internal/suggest/config"
	"github.com/yungbote/staffassist-backend/internal/suggest/engine"
	"github.com/yungbote/staffassist-backend/internal/suggest/httpapi"
	"github.com/yungbote/staffassist-backend/internal/suggest/ratelimit"
)

const (
	serviceName    = "staffassist-suggest"
	serviceVersion = "1.0.0"

	limiterSweepInterval = time.Minute
)

var initOTel = observability.InitOTel

type App struct {
	Log    *logger.Logger
	Config *config.Config

	server       *http.Server
	metrics      *observability.Metrics
	local        *ratelimit.Local
	redis        *goredis.Client
	otelShutdown func(context.Context) error
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	corpus, err := engine.LoadCorpusFile(cfg.CorpusPath)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("load corpus: %w", err)
	}
	eng := engine.New(corpus)

	a := &App{Log: log, Config: cfg}

	a.otelShutdown = initOTel(context.Background(), log, observability.OtelConfig{
		ServiceName: serviceName,
		Environment: cfg.Env,
		Version:     serviceVersion,
	})

	if cfg.Metrics.Enabled {
		a.metrics = observability.NewMetrics()
	}

	var limiter ratelimit.Limiter
	if cfg.RateLimit.Enabled {
		limiter, err = a.wireLimiter(cfg.RateLimit)
		if err != nil {
			a.close()
			return nil, err
		}
		log.Info("rate limiting enabled",
			"backend", limiter.Backend(),
			"rps", cfg.RateLimit.RequestsPerSecond,
			"burst", cfg.RateLimit.Burst,
		)
	}

	a.server = httpapi.NewServer(cfg, log, httpapi.Deps{
		Engine:  eng,
		Limiter: limiter,
		Metrics: a.metrics,
	})
	return a, nil
}

func (a *App) wireLimiter(rl config.RateLimitConfig) (ratelimit.Limiter, error) {
	if rl.RedisAddr == "" {
		a.local = ratelimit.NewLocal(rl.RequestsPerSecond, rl.Burst)
		return a.local, nil
	}
	rdb, err := ratelimit.Dial(context.Background(), rl.RedisAddr)
	if err != nil {
		return nil, fmt.Errorf("init rate limit redis: %w", err)
	}
	a.redis = rdb
	return ratelimit.NewRedis(rdb, ratelimit.Config{
		RequestsPerSecond: rl.RequestsPerSecond,
		Burst:             rl.Burst,
		Window:            rl.Window.Duration,
		RedisAddr:         rl.RedisAddr,
	}), nil
}

// Run serves until ctx is cancelled or a listener fails, then shuts every
// component down.
func (a *App) Run(ctx context.Context) error {
	defer a.close()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Log.Info("suggest server listening", "addr", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.HTTP.ShutdownTimeout.Duration)
		defer cancel()
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			a.Log.Warn("http shutdown", "error", err)
		}
		return nil
	})

	if a.metrics != nil {
		g.Go(func() error {
			if err := a.metrics.Serve(gctx, a.Log, a.Config.Metrics.Addr); err != nil {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		if a.redis != nil {
			interval := time.Duration(envutil.Int("METRICS_SCRAPE_INTERVAL_SECONDS", 10)) * time.Second
			g.Go(func() error {
				return a.metrics.RunRedisCollector(gctx, a.Log, a.redis, interval)
			})
		}
	}

	if a.local != nil {
		g.Go(func() error {
			return a.local.Run(gctx, limiterSweepInterval)
		})
	}

	return g.Wait()
}

func (a *App) close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.Log.Warn("close redis", "error", err)
		}
	}
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.otelShutdown(ctx); err != nil {
			a.Log.Warn("otel shutdown", "error", err)
		}
		cancel()
	}
	a.Log.Sync()
}
