// Package queue defines the job-queue-backend abstraction:
// push/pull/ack/nack-with-retry-after/close, plus the closed set of queue
// names.
package queue

import (
	"context"
	"time"

	"github.com/yungbote/recipe-notes-worker/internal/domain"
)

// Names is the closed queue-name set.
const (
	Notes          = "notes"
	Ingredients    = "ingredients"
	Instruction    = "instruction"
	Image          = "image"
	Categorization = "categorization"
	Source         = "source"
)

// AllQueues lists the closed queue-name set. The Worker Manager starts
// workers in registration order, not in this order.
var AllQueues = []string{Notes, Ingredients, Instruction, Image, Categorization, Source}

// PushOptions carries priority/delay hints a backend may honor.
type PushOptions struct {
	Priority int
	Delay    time.Duration
}

// PullOptions carries the worker's concurrency ceiling.
type PullOptions struct {
	Concurrency int
}

// Handler processes one claimed job. Returning an error signals failure to
// the backend; the caller (BaseWorker) decides retry vs terminal failure
// using errs.Handler, not the backend itself.
type Handler func(ctx context.Context, job domain.Job) error

// Backend is the external job-queue collaborator every worker pulls from.
type Backend interface {
	Push(ctx context.Context, queueName string, payload []byte, opts PushOptions) (domain.Job, error)
	Pull(ctx context.Context, queueName string, opts PullOptions, handle Handler) error
	Ack(ctx context.Context, job domain.Job) error
	NackRetryAfter(ctx context.Context, job domain.Job, d time.Duration) error
	Close() error
}
