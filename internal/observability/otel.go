package observability

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.27.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/staffassist-backend/internal/platform/envutil"
	"github.com/yungbote/staffassist-backend/internal/platform/logger"
)

const (
	defaultServiceName = "staffassist-suggest"
	tracerName         = "github.com/yungbote/staffassist-backend/suggest"
	defaultSampleRatio = 0.1

	exporterOTLP   = "otlp"
	exporterStdout = "stdout"
	exporterNone   = "none"
)

type OtelConfig struct {
	ServiceName string
	Environment string
	Version     string
}

// otelSettings is the OTEL_* environment, read once at startup.
type otelSettings struct {
	Enabled     bool
	Exporter    string
	Endpoint    string
	Insecure    bool
	Headers     map[string]string
	SampleRatio float64
}

func loadOtelSettings() otelSettings {
	s := otelSettings{
		Enabled:     envutil.Bool("OTEL_ENABLED", false),
		Endpoint:    strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")),
		Insecure:    envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", false),
		Headers:     parseOtelHeaders(os.Getenv("OTEL_EXPORTER_OTLP_HEADERS")),
		SampleRatio: min(max(envutil.Float("OTEL_SAMPLER_RATIO", defaultSampleRatio), 0), 1),
	}
	switch strings.ToLower(strings.TrimSpace(os.Getenv("OTEL_TRACES_EXPORTER"))) {
	case exporterOTLP:
		s.Exporter = exporterOTLP
	case exporterStdout, "console":
		s.Exporter = exporterStdout
	case exporterNone:
		s.Exporter = exporterNone
	default:
		s.Exporter = exporterStdout
		if s.Endpoint != "" {
			s.Exporter = exporterOTLP
		}
	}
	return s
}

// parseOtelHeaders reads "k1=v1,k2=v2"; malformed pairs are skipped.
func parseOtelHeaders(raw string) map[string]string {
	var headers map[string]string
	for _, part := range strings.Split(raw, ",") {
		key, val, ok := strings.Cut(part, "=")
		key, val = strings.TrimSpace(key), strings.TrimSpace(val)
		if !ok || key == "" || val == "" {
			continue
		}
		if headers == nil {
			headers = map[string]string{}
		}
		headers[key] = val
	}
	return headers
}

var (
	otelOnce     sync.Once
	otelShutdown func(context.Context) error
)

// InitOTel installs the global tracer provider when OTEL_ENABLED is set. The
// returned shutdown func is never nil.
func InitOTel(ctx context.Context, log *logger.Logger, cfg OtelConfig) func(context.Context) error {
	if log == nil {
		log = logger.Nop()
	}
	otelOnce.Do(func() {
		otelShutdown = func(context.Context) error { return nil }
		s := loadOtelSettings()
		if !s.Enabled {
			return
		}
		tp, err := newTracerProvider(ctx, s, cfg)
		if err != nil {
			log.Warn("otel disabled", "error", err)
			return
		}
		otel.SetTracerProvider(tp)
		otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		))
		otelShutdown = tp.Shutdown
		log.Info("otel tracing initialized",
			"exporter", s.Exporter,
			"endpoint", s.Endpoint,
			"sample_ratio", s.SampleRatio,
		)
	})
	return otelShutdown
}

func newTracerProvider(ctx context.Context, s otelSettings, cfg OtelConfig) (*sdktrace.TracerProvider, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = defaultServiceName
	}
	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(s.SampleRatio))),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(name),
			semconv.ServiceVersionKey.String(strings.TrimSpace(cfg.Version)),
			attribute.String("deployment.environment", strings.TrimSpace(cfg.Environment)),
		)),
	}

	switch s.Exporter {
	case exporterNone:
	case exporterOTLP:
		if s.Endpoint == "" {
			return nil, fmt.Errorf("OTEL_EXPORTER_OTLP_ENDPOINT is required for the %s exporter", exporterOTLP)
		}
		httpOpts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(s.Endpoint)}
		if s.Insecure {
			httpOpts = append(httpOpts, otlptracehttp.WithInsecure())
		}
		if len(s.Headers) > 0 {
			httpOpts = append(httpOpts, otlptracehttp.WithHeaders(s.Headers))
		}
		exp, err := otlptracehttp.New(ctx, httpOpts...)
		if err != nil {
			return nil, fmt.Errorf("otlp exporter: %w", err)
		}
		opts = append(opts, sdktrace.WithBatcher(exp, sdktrace.WithBatchTimeout(5*time.Second)))
	default:
		exp, err := stdouttrace.New(stdouttrace.WithWriter(os.Stdout))
		if err != nil {
			return nil, fmt.Errorf("stdout exporter: %w", err)
		}
		opts = append(opts, sdktrace.WithBatcher(exp))
	}
	return sdktrace.NewTracerProvider(opts...), nil
}

// Tracer returns the service tracer from the global provider. Before InitOTel
// (or with tracing disabled) spans are no-ops.
func Tracer() trace.Tracer {
	return otel.Tracer(tracerName)
}
