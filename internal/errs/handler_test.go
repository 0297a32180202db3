package errs_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/yungbote/recipe-notes-worker/internal/errs"
	"github.com/yungbote/recipe-notes-worker/internal/logging"
)

func newHandler() *errs.Handler { return errs.NewHandler(logging.NewNop()) }

func TestClassify_KeywordPrecedence(t *testing.T) {
	h := newHandler()

	cases := []struct {
		msg  string
		kind errs.Kind
	}{
		{"connection to database failed", errs.KindDatabase},
		{"redis connection reset", errs.KindQueue},
		{"ECONNREFUSED 127.0.0.1:80", errs.KindNetwork},
		{"request timed out", errs.KindTimeout},
		{"upstream api returned 503", errs.KindExternalService},
		{"completely unrelated failure", errs.KindUnknown},
	}
	for _, c := range cases {
		se := h.Classify(fmt.Errorf(c.msg))
		assert.Equal(t, c.kind, se.Kind, c.msg)
	}
}

func TestShouldRetry_FalseWhenAttemptsExhausted(t *testing.T) {
	h := newHandler()
	cfg := errs.RetryConfig{MaxRetries: 3, Base: time.Millisecond, MaxBackoff: time.Second}
	assert.False(t, h.ShouldRetry(fmt.Errorf("network blip"), 3, cfg))
	assert.True(t, h.ShouldRetry(fmt.Errorf("network blip"), 2, cfg))
}

func TestShouldRetry_FalseForValidationAndCritical(t *testing.T) {
	h := newHandler()
	cfg := errs.RetryConfig{MaxRetries: 5, Base: time.Millisecond, MaxBackoff: time.Second}

	validationErr := &errs.StructuredError{Kind: errs.KindValidation, Severity: errs.SeverityLow}
	assert.False(t, h.ShouldRetry(validationErr, 0, cfg))

	criticalErr := &errs.StructuredError{Kind: errs.KindWorker, Severity: errs.SeverityCritical}
	assert.False(t, h.ShouldRetry(criticalErr, 0, cfg))
}

func TestShouldRetry_FalseWhenNonRetryableFlagSet(t *testing.T) {
	h := newHandler()
	cfg := errs.RetryConfig{MaxRetries: 5, Base: time.Millisecond, MaxBackoff: time.Second}
	nonRetryable := &errs.StructuredError{Kind: errs.KindDatabase, Severity: errs.SeverityHigh, NonRetryable: true}
	assert.False(t, h.ShouldRetry(nonRetryable, 0, cfg))
}

func TestBackoff_DoublesUntilCapped(t *testing.T) {
	h := newHandler()
	cfg := errs.RetryConfig{Base: time.Second, MaxBackoff: 30 * time.Second}

	assert.Equal(t, time.Second, h.Backoff(0, cfg))
	assert.Equal(t, 2*time.Second, h.Backoff(1, cfg))
	assert.Equal(t, 4*time.Second, h.Backoff(2, cfg))
	assert.Equal(t, 30*time.Second, h.Backoff(10, cfg), "must cap at MaxBackoff rather than overflow")
}

func TestValidate_ReportsFirstMissingField(t *testing.T) {
	h := newHandler()
	err := h.Validate(map[string]interface{}{"a": "present", "b": ""}, []string{"a", "b", "c"})
	se, ok := err.(*errs.StructuredError)
	if ok {
		assert.Equal(t, errs.KindValidation, se.Kind)
		assert.True(t, se.NonRetryable)
		assert.Contains(t, se.Error(), `"b"`)
	} else {
		t.Fatal("expected a *StructuredError")
	}
}
