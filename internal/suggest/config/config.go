package config

import "time"

type Duration struct {
	Duration time.Duration
}

type HTTPConfig struct {
	Addr              string   `json:"addr"`
	ReadHeaderTimeout Duration `json:"read_header_timeout"`
	IdleTimeout       Duration `json:"idle_timeout"`
	ShutdownTimeout   Duration `json:"shutdown_timeout"`
	MaxRequestBytes   int64    `json:"max_request_bytes"`

	// AllowedOrigins is the CORS allow-list for the staff web app.
	AllowedOrigins []string `json:"allowed_origins"`

	// Artificial latency before answering, so the UI's typing indicators have
	// something to show. Zero disables.
	DescriptionDelay Duration `json:"description_delay,omitempty"`
	CompletionDelay  Duration `json:"completion_delay,omitempty"`
}

type RateLimitConfig struct {
	Enabled           bool    `json:"enabled"`
	RequestsPerSecond float64 `json:"requests_per_second"`
	Burst             int     `json:"burst"`

	// RedisAddr switches the limiter to a shared fixed window in Redis so
	// several replicas enforce one budget. Empty keeps limits in-process.
	RedisAddr string   `json:"redis_addr,omitempty"`
	Window    Duration `json:"window,omitempty"`
}

type MetricsConfig struct {
	Enabled bool   `json:"enabled"`
	Addr    string `json:"addr"`
}

type Config struct {
	Env        string          `json:"env"`
	HTTP       HTTPConfig      `json:"http"`
	CorpusPath string          `json:"corpus_path,omitempty"`
	RateLimit  RateLimitConfig `json:"rate_limit"`
	Metrics    MetricsConfig   `json:"metrics"`
}
