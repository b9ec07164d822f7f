package ratelimit

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "staffassist:ratelimit:"

// Redis enforces a fixed window shared by every replica: at most limit
// requests per key per window.
type Redis struct {
	rdb    goredis.Cmdable
	limit  int64
	window time.Duration
	now    func() time.Time
}

// NewRedis sizes the window so that it admits the configured burst or
// rps*window requests, whichever is larger.
func NewRedis(rdb goredis.Cmdable, cfg Config) *Redis {
	window := cfg.Window
	if window <= 0 {
		window = time.Second
	}
	limit := int64(math.Ceil(cfg.RequestsPerSecond * window.Seconds()))
	if b := int64(cfg.Burst); b > limit {
		limit = b
	}
	if limit < 1 {
		limit = 1
	}
	return &Redis{rdb: rdb, limit: limit, window: window, now: time.Now}
}

// Dial connects to Redis and fails fast when it does not answer a ping.
func Dial(ctx context.Context, addr string) (*goredis.Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

func (r *Redis) Backend() string { return BackendRedis }

func (r *Redis) Allow(ctx context.Context, key string) (bool, error) {
	k := r.windowKey(key)
	var incr *goredis.IntCmd
	_, err := r.rdb.TxPipelined(ctx, func(p goredis.Pipeliner) error {
		incr = p.Incr(ctx, k)
		p.Expire(ctx, k, r.window)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("rate limit %s: %w", key, err)
	}
	return incr.Val() <= r.limit, nil
}

func (r *Redis) windowKey(key string) string {
	slot := r.now().UnixNano() / int64(r.window)
	return redisKeyPrefix + key + ":" + strconv.FormatInt(slot, 10)
}
