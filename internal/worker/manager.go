package worker

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/recipe-notes-worker/internal/logging"
	"github.com/yungbote/recipe-notes-worker/internal/queue"
)

// Runnable is the interface Worker[D] satisfies for any D, letting the
// Manager hold one worker per queue regardless of payload type.
type Runnable interface {
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	IsRunning() bool
}

// Manager constructs and supervises one worker per queue.
type Manager struct {
	log     *logging.Logger
	mu      sync.RWMutex
	workers []Runnable
}

func NewManager(log *logging.Logger) *Manager {
	if log == nil {
		log = logging.NewNop()
	}
	return &Manager{log: log.With("component", "WorkerManager")}
}

// Register adds a worker to the managed set, in registration order. The
// manager does not itself enforce a fixed queue order — workers start in
// the order the caller registers them (cmd/worker registers image, notes,
// ingredients, instruction, categorization, source).
func (m *Manager) Register(w Runnable) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.workers = append(m.workers, w)
}

// StartAll constructs and starts every worker in registration order; if
// any Start raises, abort and return that error immediately without
// starting the rest.
func (m *Manager) StartAll(ctx context.Context) error {
	m.mu.RLock()
	workers := append([]Runnable(nil), m.workers...)
	m.mu.RUnlock()

	for _, w := range workers {
		if err := w.Start(ctx); err != nil {
			return fmt.Errorf("worker manager: starting %q: %w", w.Name(), err)
		}
		m.log.Info("worker started", "worker", w.Name())
	}
	return nil
}

// StopAll invokes Stop on each worker concurrently with settle-all
// semantics: one failure does not abort the others, individual failures
// are logged, and StopAll completes only when every worker has resolved.
// Fans out independent shutdowns and waits for all. Uses errgroup
// purely for its wait-for-all fan-out —
// every goroutine logs its own failure and always returns nil, since a
// single first-error return would hide every failure but the first.
func (m *Manager) StopAll(ctx context.Context) {
	m.mu.RLock()
	workers := append([]Runnable(nil), m.workers...)
	m.mu.RUnlock()

	var eg errgroup.Group
	for _, w := range workers {
		w := w
		eg.Go(func() error {
			if err := w.Stop(ctx); err != nil {
				m.log.Error("worker stop failed", "worker", w.Name(), "error", err)
			}
			return nil
		})
	}
	_ = eg.Wait()
}

// Status reports the running flag for every managed worker.
func (m *Manager) Status() map[string]bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]bool, len(m.workers))
	for _, w := range m.workers {
		out[w.Name()] = w.IsRunning()
	}
	return out
}

// DefaultConcurrencyFor returns a conservative per-queue concurrency
// ceiling, externally configurable via config.Config.QueueConcurrency,
// defaulting here if a queue name is missing from that map or its value is
// not positive.
func DefaultConcurrencyFor(queueName string, configured map[string]int) int {
	if n, ok := configured[queueName]; ok && n > 0 {
		return n
	}
	switch queueName {
	case queue.Image, queue.Categorization, queue.Source:
		return 2
	default:
		return 4
	}
}
