package logger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/yungbote/staffassist-backend/internal/platform/envutil"
)

// Logger is a key/value logger. Values under keys that carry text typed by
// staff are replaced by a short salted hash before they reach zap.
type Logger struct {
	z *zap.SugaredLogger
	r redactor
}

func New(mode string) (*Logger, error) {
	var cfg zap.Config
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
	default:
		cfg = zap.NewDevelopmentConfig()
	}
	zl, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &Logger{z: zl.Sugar(), r: redactorFromEnv()}, nil
}

// Nop discards everything. Handy in tests.
func Nop() *Logger {
	return &Logger{z: zap.NewNop().Sugar()}
}

func (l *Logger) Sync() {
	_ = l.z.Sync()
}

func (l *Logger) Debug(msg string, keysAndValues ...interface{}) {
	l.z.Debugw(msg, l.r.apply(keysAndValues)...)
}

func (l *Logger) Info(msg string, keysAndValues ...interface{}) {
	l.z.Infow(msg, l.r.apply(keysAndValues)...)
}

func (l *Logger) Warn(msg string, keysAndValues ...interface{}) {
	l.z.Warnw(msg, l.r.apply(keysAndValues)...)
}

func (l *Logger) Error(msg string, keysAndValues ...interface{}) {
	l.z.Errorw(msg, l.r.apply(keysAndValues)...)
}

const (
	redactedValue = "[REDACTED]"
	hashPrefix    = "hash:"
	hashLen       = 12
)

// Free text typed into the staff forms.
var typedTextKeys = map[string]struct{}{
	"title":      {},
	"text":       {},
	"name":       {},
	"full_text":  {},
	"suggestion": {},
	"completion": {},
	"prefix":     {},
}

var secretKeyParts = []string{"token", "authorization", "password", "secret", "cookie", "api_key", "apikey"}

type redactor struct {
	enabled bool
	salt    string
}

func redactorFromEnv() redactor {
	return redactor{
		enabled: envutil.Bool("LOG_REDACTION_ENABLED", true),
		salt:    strings.TrimSpace(os.Getenv("LOG_HASH_SALT")),
	}
}

// apply returns kv with sensitive values replaced. The input is not modified.
func (r redactor) apply(kv []interface{}) []interface{} {
	if !r.enabled || len(kv) == 0 {
		return kv
	}
	out := make([]interface{}, len(kv))
	copy(out, kv)
	for i := 0; i+1 < len(out); i += 2 {
		key, ok := out[i].(string)
		if !ok {
			continue
		}
		out[i+1] = r.value(strings.ToLower(strings.TrimSpace(key)), out[i+1])
	}
	return out
}

func (r redactor) value(key string, val interface{}) interface{} {
	if _, ok := typedTextKeys[key]; ok {
		return r.hash(val)
	}
	for _, part := range secretKeyParts {
		if strings.Contains(key, part) {
			return redactedValue
		}
	}
	return val
}

func (r redactor) hash(val interface{}) string {
	var s string
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		s = v
	case fmt.Stringer:
		s = v.String()
	default:
		s = fmt.Sprint(v)
	}
	if s == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(r.salt + s))
	return hashPrefix + hex.EncodeToString(sum[:])[:hashLen]
}
