package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/yungbote/staffassist-backend/internal/platform/envutil"
)

func (d *Duration) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "" || s == "null" {
		d.Duration = 0
		return nil
	}
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		u, err := strconv.Unquote(s)
		if err != nil {
			return err
		}
		if strings.TrimSpace(u) == "" {
			d.Duration = 0
			return nil
		}
		dd, err := time.ParseDuration(u)
		if err != nil {
			return err
		}
		d.Duration = dd
		return nil
	}

	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("duration must be a JSON string like \"5s\" or an int nanoseconds: %w", err)
	}
	d.Duration = time.Duration(n)
	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Duration.String())
}

// DefaultAllowedOrigins are the local dev servers of the staff web app.
var DefaultAllowedOrigins = []string{
	"http://localhost:5173",
	"http://localhost:8000",
	"http://127.0.0.1:5173",
	"http://127.0.0.1:8000",
}

const (
	defaultAddr            = ":8001"
	defaultMaxRequestBytes = 64 << 10
	defaultMetricsAddr     = ":9091"
)

func defaultConfig() *Config {
	return &Config{
		Env: "development",
		HTTP: HTTPConfig{
			Addr:              defaultAddr,
			ReadHeaderTimeout: Duration{Duration: 5 * time.Second},
			IdleTimeout:       Duration{Duration: 2 * time.Minute},
			ShutdownTimeout:   Duration{Duration: 15 * time.Second},
			MaxRequestBytes:   defaultMaxRequestBytes,
			AllowedOrigins:    append([]string(nil), DefaultAllowedOrigins...),
		},
		RateLimit: RateLimitConfig{
			Enabled:           false,
			RequestsPerSecond: 10,
			Burst:             20,
			Window:            Duration{Duration: time.Second},
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Addr:    defaultMetricsAddr,
		},
	}
}

// Load reads the JSON config file (SUGGEST_CONFIG_PATH, else
// ./config/config.json when present) over the defaults, applies environment
// overrides and validates the result.
func Load() (*Config, error) {
	cfg := defaultConfig()

	cfgPath := strings.TrimSpace(os.Getenv("SUGGEST_CONFIG_PATH"))
	if cfgPath == "" {
		if wd, err := os.Getwd(); err == nil {
			p := filepath.Join(wd, "config", "config.json")
			if _, err := os.Stat(p); err == nil {
				cfgPath = p
			}
		}
	}

	if cfgPath != "" {
		b, err := os.ReadFile(cfgPath)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfgPath, err)
		}
		// Decoding into the defaults keeps every field the file leaves out.
		if err := json.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", cfgPath, err)
		}
	}

	applyEnv(cfg)

	if err := normalize(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("LOG_MODE")); v != "" {
		cfg.Env = v
	}
	if v := strings.TrimSpace(os.Getenv("SUGGEST_HTTP_ADDR")); v != "" {
		cfg.HTTP.Addr = v
	}
	if v := strings.TrimSpace(os.Getenv("SUGGEST_ALLOWED_ORIGINS")); v != "" {
		cfg.HTTP.AllowedOrigins = splitList(v)
	}
	if v := strings.TrimSpace(os.Getenv("SUGGEST_CORPUS_PATH")); v != "" {
		cfg.CorpusPath = v
	}
	if v := strings.TrimSpace(os.Getenv("SUGGEST_RATE_LIMIT_ENABLED")); v != "" {
		cfg.RateLimit.Enabled = parseBool(v)
	}
	cfg.RateLimit.RequestsPerSecond = envutil.Float("SUGGEST_RATE_LIMIT_RPS", cfg.RateLimit.RequestsPerSecond)
	cfg.RateLimit.Burst = envutil.Int("SUGGEST_RATE_LIMIT_BURST", cfg.RateLimit.Burst)
	if v := strings.TrimSpace(os.Getenv("REDIS_ADDR")); v != "" {
		cfg.RateLimit.RedisAddr = v
	}
	if v := strings.TrimSpace(os.Getenv("METRICS_ENABLED")); v != "" {
		cfg.Metrics.Enabled = parseBool(v)
	}
	if v := strings.TrimSpace(os.Getenv("METRICS_ADDR")); v != "" {
		cfg.Metrics.Addr = v
	}
}

func normalize(cfg *Config) error {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "development"
	}
	cfg.HTTP.Addr = strings.TrimSpace(cfg.HTTP.Addr)
	if cfg.HTTP.Addr == "" {
		return errors.New("http.addr is required")
	}
	if cfg.HTTP.MaxRequestBytes <= 0 {
		return fmt.Errorf("invalid http.max_request_bytes=%d", cfg.HTTP.MaxRequestBytes)
	}
	if cfg.HTTP.DescriptionDelay.Duration < 0 {
		return errors.New("invalid http.description_delay")
	}
	if cfg.HTTP.CompletionDelay.Duration < 0 {
		return errors.New("invalid http.completion_delay")
	}

	origins := make([]string, 0, len(cfg.HTTP.AllowedOrigins))
	for _, o := range cfg.HTTP.AllowedOrigins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o != "" {
			origins = append(origins, o)
		}
	}
	cfg.HTTP.AllowedOrigins = origins

	cfg.CorpusPath = strings.TrimSpace(cfg.CorpusPath)

	rl := &cfg.RateLimit
	rl.RedisAddr = strings.TrimSpace(rl.RedisAddr)
	if rl.Enabled {
		if rl.RequestsPerSecond <= 0 {
			return fmt.Errorf("invalid rate_limit.requests_per_second=%g", rl.RequestsPerSecond)
		}
		if rl.Burst < 1 {
			return fmt.Errorf("invalid rate_limit.burst=%d", rl.Burst)
		}
		if rl.Window.Duration < 0 {
			return errors.New("invalid rate_limit.window")
		}
		if rl.Window.Duration == 0 {
			rl.Window = Duration{Duration: time.Second}
		}
	}

	cfg.Metrics.Addr = strings.TrimSpace(cfg.Metrics.Addr)
	if cfg.Metrics.Enabled && cfg.Metrics.Addr == "" {
		cfg.Metrics.Addr = defaultMetricsAddr
	}
	return nil
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "t", "true", "y", "yes", "on":
		return true
	default:
		return false
	}
}
