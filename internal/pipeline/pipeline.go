// Package pipeline implements the pipeline runtime: an ordered list of
// actions run sequentially against one job, threading
// output into the next action's input and emitting lifecycle events.
// Modeled as a simple sequential stage loop — no inline/child stage modes, no
// concurrent steps; fan-out is an action's own side effect, never a
// runtime primitive.
package pipeline

import (
	"context"
	"time"

	"github.com/yungbote/recipe-notes-worker/internal/actions"
	"github.com/yungbote/recipe-notes-worker/internal/errs"
)

// Event is emitted at action start and action completion.
type Event struct {
	JobID      string
	ActionName actions.Name
	Phase      Phase
	Elapsed    time.Duration
}

type Phase string

const (
	PhaseStart    Phase = "start"
	PhaseComplete Phase = "complete"
)

// EventSink receives lifecycle events. Implementations must not block the
// pipeline meaningfully; the runtime calls it synchronously but a slow
// sink will slow down the job, so sinks should be cheap (e.g. logging) or
// hand off asynchronously themselves.
type EventSink interface {
	Emit(Event)
}

// EventSinkFunc adapts a func to EventSink.
type EventSinkFunc func(Event)

func (f EventSinkFunc) Emit(e Event) { f(e) }

// NoopSink discards every event.
var NoopSink EventSink = EventSinkFunc(func(Event) {})

// Step is one entry in the ordered action list for a single job.
type Step[D any] struct {
	Action actions.Action[D]
}

// Run executes steps in order against d0, per the algorithm:
// for each step, validate, emit start, execute inside the error-handling
// wrapper, emit completion, thread the result to the next step.
//
// An action may return the exact same payload value it received; this is
// treated as a no-op transformation, never an error, per the tie-break
// note.
//
// A *errs.StructuredError with NonRetryable set short-circuits the
// pipeline and is returned as-is so the caller (BaseWorker) can surface it
// to the queue as a terminal failure without consulting retry policy; any
// other error is also returned, but the caller is expected to apply retry
// policy to it.
func Run[D any](ctx context.Context, ac actions.ActionContext, steps []Step[D], d0 D, deps actions.Deps, sink EventSink, eh *errs.Handler) (D, error) {
	if sink == nil {
		sink = NoopSink
	}
	d := d0
	for _, step := range steps {
		act := step.Action
		if err := act.ValidateInput(d); err != nil {
			return d, wrapValidation(eh, err, ac)
		}

		sink.Emit(Event{JobID: ac.JobID, ActionName: act.Name(), Phase: PhaseStart})
		start := time.Now()

		out, err := runOne(ctx, act, d, deps, ac, eh)
		elapsed := time.Since(start)

		sink.Emit(Event{JobID: ac.JobID, ActionName: act.Name(), Phase: PhaseComplete, Elapsed: elapsed})

		if err != nil {
			return d, err
		}
		d = out
	}
	return d, nil
}

// runOne wraps a single action's execution with the standard error-handling
// policy: classify, attach job/queue/op context, log, re-raise.
func runOne[D any](ctx context.Context, act actions.Action[D], d D, deps actions.Deps, ac actions.ActionContext, eh *errs.Handler) (D, error) {
	var out D
	var execErr error
	err := eh.WithErrorHandling(func() error {
		var e error
		out, e = act.Execute(ctx, d, deps, ac)
		return e
	}, ac.JobID, ac.Queue, string(act.Name()))
	if err != nil {
		execErr = err
		return d, execErr
	}
	return out, nil
}

func wrapValidation(eh *errs.Handler, err error, ac actions.ActionContext) error {
	se := &errs.StructuredError{
		Kind:         errs.KindValidation,
		Severity:     errs.SeverityLow,
		NonRetryable: true,
		JobID:        ac.JobID,
		Queue:        ac.Queue,
		Op:           ac.Operation,
		Err:          err,
	}
	eh.Log(se, nil)
	return se
}
