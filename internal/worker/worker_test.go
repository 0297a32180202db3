package worker

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/recipe-notes-worker/internal/actions"
	"github.com/yungbote/recipe-notes-worker/internal/domain"
	"github.com/yungbote/recipe-notes-worker/internal/errs"
	"github.com/yungbote/recipe-notes-worker/internal/health"
	"github.com/yungbote/recipe-notes-worker/internal/logging"
	"github.com/yungbote/recipe-notes-worker/internal/pipeline"
	"github.com/yungbote/recipe-notes-worker/internal/queue"
)

type fakeBackend struct {
	nackCalls []time.Duration
	nackErr   error
}

func (f *fakeBackend) Push(ctx context.Context, queueName string, payload []byte, opts queue.PushOptions) (domain.Job, error) {
	return domain.Job{}, nil
}
func (f *fakeBackend) Pull(ctx context.Context, queueName string, opts queue.PullOptions, handle queue.Handler) error {
	return nil
}
func (f *fakeBackend) Ack(ctx context.Context, job domain.Job) error { return nil }
func (f *fakeBackend) NackRetryAfter(ctx context.Context, job domain.Job, d time.Duration) error {
	f.nackCalls = append(f.nackCalls, d)
	return f.nackErr
}
func (f *fakeBackend) Close() error { return nil }

func testRetry() errs.RetryConfig {
	return errs.RetryConfig{MaxRetries: 3, Base: time.Millisecond, MaxBackoff: time.Second}
}

// failingAction always fails with the given error, so its pipeline.Run
// failure reaches handle's classify/retry decision.
type failingAction struct {
	err error
}

func (a *failingAction) Name() actions.Name          { return "fail" }
func (a *failingAction) ValidateInput(data int) error { return nil }
func (a *failingAction) Execute(ctx context.Context, data int, deps actions.Deps, ac actions.ActionContext) (int, error) {
	return data, a.err
}

func newTestWorker(t *testing.T, backend *fakeBackend, builder PipelineBuilder[int], monitor *health.Monitor) *Worker[int] {
	t.Helper()
	return New(Config[int]{
		QueueName:  "notes",
		Backend:    backend,
		Health:     monitor,
		ErrHandler: errs.NewHandler(logging.NewNop()),
		Retry:      testRetry(),
		Sink:       pipeline.NoopSink,
		Log:        logging.NewNop(),
		Decode:     JSONDecoder[int](),
		Builder:    builder,
		Deps:       nil,
	})
}

func TestHandle_RetryableFailureReschedulesViaNackRetryAfter(t *testing.T) {
	backend := &fakeBackend{}
	builder := func(data int, ac actions.ActionContext) ([]pipeline.Step[int], error) {
		return []pipeline.Step[int]{{Action: &failingAction{err: fmt.Errorf("database: connection refused")}}}, nil
	}
	w := newTestWorker(t, backend, builder, nil)

	job := domain.Job{ID: "job-1", Queue: "notes", Payload: []byte("1"), Attempt: 0}
	err := w.handle(context.Background(), job, 0)

	require.NoError(t, err, "handle must not surface a retryable error once it has rescheduled")
	require.Len(t, backend.nackCalls, 1, "a retryable failure must call NackRetryAfter exactly once")
	assert.Equal(t, time.Millisecond, backend.nackCalls[0])
}

func TestHandle_NonRetryableFailureRunsTerminalCallbackWithoutNack(t *testing.T) {
	backend := &fakeBackend{}
	builder := func(data int, ac actions.ActionContext) ([]pipeline.Step[int], error) {
		return []pipeline.Step[int]{{Action: &failingAction{err: &errs.StructuredError{
			Kind:         errs.KindWorker,
			Severity:     errs.SeverityCritical,
			NonRetryable: true,
			Err:          fmt.Errorf("processor exploded"),
		}}}}, nil
	}

	var terminalCalls int
	w := New(Config[int]{
		QueueName:  "notes",
		Backend:    backend,
		ErrHandler: errs.NewHandler(logging.NewNop()),
		Retry:      testRetry(),
		Sink:       pipeline.NoopSink,
		Log:        logging.NewNop(),
		Decode:     JSONDecoder[int](),
		Builder:    builder,
		OnTerminalFailure: func(ctx context.Context, data int, err error) {
			terminalCalls++
		},
	})

	job := domain.Job{ID: "job-2", Queue: "notes", Payload: []byte("1"), Attempt: 0}
	err := w.handle(context.Background(), job, 0)

	require.NoError(t, err)
	assert.Empty(t, backend.nackCalls, "a non-retryable failure must never call NackRetryAfter")
	assert.Equal(t, 1, terminalCalls)
}

func TestHandle_HealthGateRejectionReschedulesRatherThanStalling(t *testing.T) {
	backend := &fakeBackend{}
	monitor := health.NewMonitor(logging.NewNop())
	monitor.Register(health.Probe{Name: "db", Check: func(ctx context.Context) error {
		return fmt.Errorf("db down")
	}})

	builder := func(data int, ac actions.ActionContext) ([]pipeline.Step[int], error) {
		t.Fatal("builder must not run when the health gate rejects the job")
		return nil, nil
	}
	w := newTestWorker(t, backend, builder, monitor)

	job := domain.Job{ID: "job-3", Queue: "notes", Payload: []byte("1"), Attempt: 0}
	err := w.handle(context.Background(), job, 0)

	require.NoError(t, err)
	require.Len(t, backend.nackCalls, 1, "a health-gate rejection must reschedule the job, not strand it unacked")
}

func TestHandle_NackFailureSurfacesErrorForPullsOwnFallback(t *testing.T) {
	backend := &fakeBackend{nackErr: fmt.Errorf("redis unavailable")}
	builder := func(data int, ac actions.ActionContext) ([]pipeline.Step[int], error) {
		return []pipeline.Step[int]{{Action: &failingAction{err: fmt.Errorf("network: timeout")}}}, nil
	}
	w := newTestWorker(t, backend, builder, nil)

	job := domain.Job{ID: "job-4", Queue: "notes", Payload: []byte("1"), Attempt: 0}
	err := w.handle(context.Background(), job, 0)

	require.Error(t, err, "if rescheduling itself fails, handle must return an error rather than silently dropping the job")
}
