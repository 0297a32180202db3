// Package worker implements the queue-bound pipeline runner and the manager
// that starts/stops one worker per queue as a group, with configurable
// per-queue concurrency.
//
// A ticker-free pull loop (queue.Backend.Pull already blocks/polls),
// per-job panic recovery, a health-gate check before claim is consumed,
// and a settle-all shutdown.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/yungbote/recipe-notes-worker/internal/actions"
	"github.com/yungbote/recipe-notes-worker/internal/domain"
	"github.com/yungbote/recipe-notes-worker/internal/errs"
	"github.com/yungbote/recipe-notes-worker/internal/health"
	"github.com/yungbote/recipe-notes-worker/internal/logging"
	"github.com/yungbote/recipe-notes-worker/internal/pipeline"
	"github.com/yungbote/recipe-notes-worker/internal/queue"
)

// PipelineBuilder produces the ordered action list for one job. Builders
// are free to inspect data to specialize the pipeline, though the concrete
// image pipeline never varies it.
type PipelineBuilder[D any] func(data D, ac actions.ActionContext) ([]pipeline.Step[D], error)

// Decoder turns the raw job payload bytes into the worker's concrete
// payload type.
type Decoder[D any] func(payload []byte) (D, error)

// Encoder turns the final payload back into bytes for the queue's ack
// bookkeeping (most backends don't need this; included for completeness
// and testability).
type Encoder[D any] func(data D) ([]byte, error)

// Config bundles a single worker's construction parameters.
type Config[D any] struct {
	QueueName   string
	Concurrency int
	Backend     queue.Backend
	Health      *health.Monitor
	ErrHandler  *errs.Handler
	Retry       errs.RetryConfig
	Sink        pipeline.EventSink
	Log         *logging.Logger
	WorkerName  string

	Decode  Decoder[D]
	Encode  Encoder[D]
	Builder PipelineBuilder[D]
	Deps    actions.Deps

	// OnTerminalFailure is invoked (if set) when a job exhausts retries or
	// raises a non-retryable error, so the caller can run a failure-path
	// action (e.g. images.OnFatalFailure) without the worker needing to
	// know about per-pipeline failure semantics.
	OnTerminalFailure func(ctx context.Context, data D, err error)
}

// Worker is a queue-bound pipeline runner, generic over its payload type.
type Worker[D any] struct {
	cfg     Config[D]
	running atomic.Bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

func New[D any](cfg Config[D]) *Worker[D] {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	if cfg.Log == nil {
		cfg.Log = logging.NewNop()
	}
	return &Worker[D]{cfg: cfg}
}

// Name identifies this worker for the manager's status map.
func (w *Worker[D]) Name() string {
	if w.cfg.WorkerName != "" {
		return w.cfg.WorkerName
	}
	return w.cfg.QueueName
}

func (w *Worker[D]) IsRunning() bool { return w.running.Load() }

// Start begins consuming jobs with the configured concurrency: one Pull
// loop per concurrency slot.
func (w *Worker[D]) Start(ctx context.Context) error {
	if w.running.Load() {
		return nil
	}
	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.running.Store(true)

	for i := 0; i < w.cfg.Concurrency; i++ {
		w.wg.Add(1)
		go func(slot int) {
			defer w.wg.Done()
			w.runSlot(runCtx, slot)
		}(i)
	}
	return nil
}

// Stop cancels the run context (letting in-flight pipelines finish, since
// Pull only checks ctx between deliveries and each job runs on a context
// detached from that cancellation) and waits for every slot's goroutine to
// return.
func (w *Worker[D]) Stop(ctx context.Context) error {
	if !w.running.Load() {
		return nil
	}
	if w.cancel != nil {
		w.cancel()
	}
	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	w.running.Store(false)
	return nil
}

func (w *Worker[D]) runSlot(ctx context.Context, slot int) {
	err := w.cfg.Backend.Pull(ctx, w.cfg.QueueName, queue.PullOptions{Concurrency: 1}, func(jobCtx context.Context, job domain.Job) error {
		return w.handle(context.WithoutCancel(jobCtx), job, slot)
	})
	if err != nil {
		w.cfg.Log.Warn("worker: pull loop exited with error", "queue", w.cfg.QueueName, "slot", slot, "error", err)
	}
}

// handle implements the per-job flow: recover from panics, gate on health,
// decode the payload, build and run the pipeline, then classify any error
// to decide between a terminal failure callback and a retryable
// reschedule. Health-gate rejections, decode failures, builder failures,
// and pipeline-run failures all funnel through the same classify/retry
// decision below, rather than returning early, so none of them can skip
// the reschedule path.
func (w *Worker[D]) handle(ctx context.Context, job domain.Job, slot int) (retErr error) {
	defer func() {
		if r := recover(); r != nil {
			w.cfg.Log.Error("worker: action panic recovered", "queue", w.cfg.QueueName, "job_id", job.ID, "panic", r)
			retErr = fmt.Errorf("panic: %v", r)
		}
	}()

	ac := actions.ActionContext{
		JobID:     job.ID,
		Attempt:   job.Attempt,
		Queue:     w.cfg.QueueName,
		Operation: "run",
		StartedAt: time.Now().UnixNano(),
		Worker:    fmt.Sprintf("%s-%d", w.Name(), slot),
	}

	var (
		data   D
		result D
		runErr error
	)

	switch {
	case w.cfg.Health != nil && !w.cfg.Health.IsHealthy(ctx):
		runErr = &errs.StructuredError{
			Kind:     errs.KindExternalService,
			Severity: errs.SeverityMedium,
			JobID:    job.ID,
			Queue:    w.cfg.QueueName,
			Op:       "health_gate",
			Err:      fmt.Errorf("ServiceUnhealthy"),
		}
	default:
		var decodeErr error
		data, decodeErr = w.cfg.Decode(job.Payload)
		switch {
		case decodeErr != nil:
			runErr = &errs.StructuredError{
				Kind:         errs.KindValidation,
				Severity:     errs.SeverityLow,
				NonRetryable: true,
				JobID:        job.ID,
				Queue:        w.cfg.QueueName,
				Op:           "decode",
				Err:          decodeErr,
			}
		default:
			steps, buildErr := w.cfg.Builder(data, ac)
			if buildErr != nil {
				runErr = buildErr
			} else {
				result, runErr = pipeline.Run(ctx, ac, steps, data, w.cfg.Deps, w.cfg.Sink, w.cfg.ErrHandler)
			}
		}
	}

	if runErr == nil {
		return nil
	}

	se := w.cfg.ErrHandler.Classify(runErr)
	if !se.NonRetryable && w.cfg.ErrHandler.ShouldRetry(runErr, job.Attempt, w.cfg.Retry) {
		backoff := w.cfg.ErrHandler.Backoff(job.Attempt, w.cfg.Retry)
		if nackErr := w.cfg.Backend.NackRetryAfter(ctx, job, backoff); nackErr != nil {
			w.cfg.Log.Error("worker: retry reschedule failed", "queue", w.cfg.QueueName, "job_id", job.ID, "error", nackErr)
			return nackErr // leave unacked; Pull's own retry path is the fallback
		}
		return nil // rescheduled via NackRetryAfter, nothing left for Pull to redeliver
	}

	if w.cfg.OnTerminalFailure != nil {
		w.cfg.OnTerminalFailure(ctx, result, runErr)
	}
	return nil // terminal: do not ask the backend to redeliver
}

// JSONDecoder/JSONEncoder are convenience helpers most concrete workers use
// (JSON payloads), the shape most workers in this system need.
func JSONDecoder[D any]() Decoder[D] {
	return func(payload []byte) (D, error) {
		var d D
		if len(payload) == 0 {
			return d, nil
		}
		if err := json.Unmarshal(payload, &d); err != nil {
			return d, err
		}
		return d, nil
	}
}

func JSONEncoder[D any]() Encoder[D] {
	return func(data D) ([]byte, error) {
		return json.Marshal(data)
	}
}
