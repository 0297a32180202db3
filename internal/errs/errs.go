// Package errs implements the closed error taxonomy and retry/backoff
// policy used across the worker. StructuredError generalizes the usual
// status/code/err-plus-Unwrap error shape with a
// Kind/Severity/NonRetryable/job-context shape.
package errs

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/yungbote/recipe-notes-worker/internal/logging"
)

// Kind is the closed error taxonomy every classified error carries.
type Kind string

const (
	KindValidation      Kind = "VALIDATION"
	KindDatabase        Kind = "DATABASE"
	KindQueue           Kind = "REDIS"
	KindParsing         Kind = "PARSING"
	KindExternalService Kind = "EXTERNAL_SERVICE"
	KindNetwork         Kind = "NETWORK"
	KindTimeout         Kind = "TIMEOUT"
	KindWorker          Kind = "WORKER"
	KindUnknown         Kind = "UNKNOWN"
)

// Severity is the closed severity taxonomy every classified error carries.
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// StructuredError is the wrapped, job-context-carrying error every action
// and the pipeline runtime raises.
type StructuredError struct {
	Kind         Kind
	Severity     Severity
	NonRetryable bool
	JobID        string
	Queue        string
	Op           string
	Err          error
}

func (e *StructuredError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Kind)
}

func (e *StructuredError) Unwrap() error { return e.Err }

// RetryConfig bundles the knobs ShouldRetry/Backoff need — maxRetries and
// the base/max backoff window.
type RetryConfig struct {
	MaxRetries int
	Base       time.Duration
	MaxBackoff time.Duration
}

// Handler implements classify/log/shouldRetry/backoff/withErrorHandling/
// validate as a single collaborator shared across the pipeline runtime
// and every worker.
type Handler struct {
	log *logging.Logger
}

func NewHandler(log *logging.Logger) *Handler {
	if log == nil {
		log = logging.NewNop()
	}
	return &Handler{log: log}
}

// Classify substring-matches a raw error's message against a closed
// keyword table, in a fixed precedence order so overlapping keywords
// (e.g. "timeout" appearing in an otherwise network-flavored message)
// resolve deterministically.
func (h *Handler) Classify(raw error) *StructuredError {
	if raw == nil {
		return nil
	}
	if se, ok := raw.(*StructuredError); ok {
		return se
	}
	msg := strings.ToLower(raw.Error())
	kind := KindUnknown
	switch {
	case containsAny(msg, "prisma", "database", "sql"):
		kind = KindDatabase
	case strings.Contains(msg, "redis"):
		kind = KindQueue
	case containsAny(msg, "econnrefused", "network"):
		kind = KindNetwork
	case matchesTimeout(msg):
		kind = KindTimeout
	case containsAny(msg, "api", "service", "http"):
		kind = KindExternalService
	}
	return &StructuredError{Kind: kind, Severity: severityFor(kind), Err: raw}
}

func severityFor(k Kind) Severity {
	switch k {
	case KindValidation, KindParsing:
		return SeverityLow
	case KindWorker:
		return SeverityCritical
	case KindDatabase:
		return SeverityHigh
	default:
		return SeverityMedium
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func matchesTimeout(s string) bool {
	if strings.Contains(s, "timeout") {
		return true
	}
	// matches "timed out" and "timed  out" (stray extra whitespace) alike.
	if idx := strings.Index(s, "timed"); idx >= 0 {
		rest := strings.TrimLeft(s[idx+len("timed"):], " ")
		if strings.HasPrefix(rest, "out") {
			return true
		}
	}
	return false
}

// ShouldRetry is false if attempt >= maxRetries, or kind is VALIDATION or
// PARSING, or severity is CRITICAL, or the error was marked non-retryable;
// true otherwise.
func (h *Handler) ShouldRetry(err error, attempt int, cfg RetryConfig) bool {
	se := h.Classify(err)
	if se == nil {
		return false
	}
	if attempt >= cfg.MaxRetries {
		return false
	}
	if se.Kind == KindValidation || se.Kind == KindParsing {
		return false
	}
	if se.Severity == SeverityCritical {
		return false
	}
	if se.NonRetryable {
		return false
	}
	return true
}

// Backoff computes an exponential delay capped at cfg.MaxBackoff:
// min(base * 2^attempt, max).
func (h *Handler) Backoff(attempt int, cfg RetryConfig) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	mult := math.Pow(2, float64(attempt))
	d := time.Duration(float64(cfg.Base) * mult)
	if d > cfg.MaxBackoff || d <= 0 {
		return cfg.MaxBackoff
	}
	return d
}

// Log routes by severity to error/warn/info channels, merging extraContext
// into the structured key/values the zap wrapper already sanitizes
// before they reach the sink.
func (h *Handler) Log(err *StructuredError, extraContext map[string]interface{}) {
	if err == nil {
		return
	}
	kv := []interface{}{"kind", string(err.Kind), "severity", string(err.Severity), "job_id", err.JobID, "queue", err.Queue, "op", err.Op}
	for k, v := range extraContext {
		kv = append(kv, k, v)
	}
	switch err.Severity {
	case SeverityCritical, SeverityHigh:
		h.log.Error(err.Error(), kv...)
	case SeverityMedium:
		h.log.Warn(err.Error(), kv...)
	default:
		h.log.Info(err.Error(), kv...)
	}
}

// WithErrorHandling runs op; on error it classifies, logs, and re-raises
// wrapped with job/queue/op context.
func (h *Handler) WithErrorHandling(op func() error, jobID, queue, opName string) error {
	if err := op(); err != nil {
		se := h.Classify(err)
		se.JobID = jobID
		se.Queue = queue
		se.Op = opName
		h.Log(se, nil)
		return se
	}
	return nil
}

// Validate returns a VALIDATION StructuredError naming the first missing
// required field, or nil if all are present and non-empty.
func (h *Handler) Validate(data map[string]interface{}, required []string) error {
	for _, field := range required {
		v, ok := data[field]
		if !ok || v == nil || v == "" {
			return &StructuredError{
				Kind:         KindValidation,
				Severity:     SeverityLow,
				NonRetryable: true,
				Err:          fmt.Errorf("missing required field %q", field),
			}
		}
	}
	return nil
}
