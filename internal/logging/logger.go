// Package logging wraps zap with key/value redaction applied to values
// whose key, compared case-insensitively, is one of a fixed set of secret
// or personal-identifier names (recipe-import payloads carry user emails).
package logging

import (
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Logger is a thin SugaredLogger wrapper so call sites never import zap
// directly; With() chains structured context onto a derived logger.
type Logger struct {
	sugar *zap.SugaredLogger
}

// New builds a Logger for the given mode ("prod"/"production" gets the
// JSON production encoder; anything else gets the human-readable dev one).
func New(mode string) (*Logger, error) {
	var cfg zap.Config
	switch strings.ToLower(mode) {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
	default:
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)

	z, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &Logger{sugar: z.Sugar()}, nil
}

// NewNop returns a Logger that discards everything, for tests.
func NewNop() *Logger {
	return &Logger{sugar: zap.NewNop().Sugar()}
}

func (l *Logger) Sync() {
	if l == nil || l.sugar == nil {
		return
	}
	_ = l.sugar.Sync()
}

func (l *Logger) Debug(msg string, kv ...interface{}) { l.sugar.Debugw(msg, sanitize(kv)...) }
func (l *Logger) Info(msg string, kv ...interface{})  { l.sugar.Infow(msg, sanitize(kv)...) }
func (l *Logger) Warn(msg string, kv ...interface{})  { l.sugar.Warnw(msg, sanitize(kv)...) }
func (l *Logger) Error(msg string, kv ...interface{}) { l.sugar.Errorw(msg, sanitize(kv)...) }

// With returns a child logger carrying the given structured context on
// every subsequent call — used to thread a job's correlation id through a
// pipeline run without each action re-stating it.
func (l *Logger) With(kv ...interface{}) *Logger {
	return &Logger{sugar: l.sugar.With(sanitize(kv)...)}
}

var redactKeys = map[string]struct{}{
	"email":    {},
	"password": {},
	"token":    {},
	"secret":   {},
	"api_key":  {},
	"apikey":   {},
}

var redactOnce sync.Once
var redactionEnabled = true

// DisableRedaction turns off key/value scrubbing; intended for tests that
// assert on exact logged values.
func DisableRedaction() {
	redactOnce.Do(func() { redactionEnabled = false })
}

func sanitize(kv []interface{}) []interface{} {
	if len(kv) == 0 || !redactionEnabled {
		return kv
	}
	out := make([]interface{}, 0, len(kv))
	for i := 0; i < len(kv); i += 2 {
		if i == len(kv)-1 {
			out = append(out, kv[i])
			break
		}
		key := strings.ToLower(strings.TrimSpace(toString(kv[i])))
		val := kv[i+1]
		if _, redact := redactKeys[key]; redact {
			val = "[REDACTED]"
		}
		out = append(out, kv[i], val)
	}
	return out
}

func toString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
