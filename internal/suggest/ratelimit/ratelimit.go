// Package ratelimit throttles suggestion requests per client.
package ratelimit

import (
	"context"
	"time"
)

const (
	BackendLocal = "local"
	BackendRedis = "redis"
)

// Limiter decides whether one more request for key may proceed. An error
// means the backend could not decide; callers let the request through.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	Backend() string
}

// Config mirrors the rate_limit config block.
type Config struct {
	RequestsPerSecond float64
	Burst             int
	Window            time.Duration
	RedisAddr         string
}
