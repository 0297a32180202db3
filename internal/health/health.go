// Package health implements the health monitor: a process-wide singleton
// aggregating subordinate liveness probes (DB
// ping, queue-backend ping, optional object-store reachability), used by
// BaseWorker to reject jobs early when the process is degraded.
//
// Each probe is wrapped in its own circuit breaker (github.com/sony/
// gobreaker, adopted from the jordigilh-kubernaut example) so a probe that
// starts failing degrades the aggregate health quickly without hammering
// a dying dependency on every single job claim.
package health

import (
	"context"
	"sync"
	"time"

	"github.com/sony/gobreaker"

	"github.com/yungbote/recipe-notes-worker/internal/logging"
)

// Probe checks one subordinate dependency's liveness.
type Probe struct {
	Name  string
	Check func(ctx context.Context) error
}

type namedBreaker struct {
	probe   Probe
	breaker *gobreaker.CircuitBreaker
}

// Monitor aggregates probes behind circuit breakers.
type Monitor struct {
	log      *logging.Logger
	mu       sync.RWMutex
	breakers []*namedBreaker
	timeout  time.Duration
}

func NewMonitor(log *logging.Logger) *Monitor {
	if log == nil {
		log = logging.NewNop()
	}
	return &Monitor{log: log.With("component", "HealthMonitor"), timeout: 3 * time.Second}
}

// Register adds a probe, wrapping it in a circuit breaker that opens after
// 3 consecutive failures and tries a half-open probe after 10s.
func (m *Monitor) Register(p Probe) {
	settings := gobreaker.Settings{
		Name:        p.Name,
		MaxRequests: 1,
		Interval:    0,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			m.log.Warn("health probe circuit state changed", "probe", name, "from", from.String(), "to", to.String())
		},
	}
	nb := &namedBreaker{probe: p, breaker: gobreaker.NewCircuitBreaker(settings)}
	m.mu.Lock()
	m.breakers = append(m.breakers, nb)
	m.mu.Unlock()
}

// IsHealthy reports true iff every registered probe currently succeeds (or
// its breaker is open, which itself counts as unhealthy — an open breaker
// means the dependency has been failing).
func (m *Monitor) IsHealthy(ctx context.Context) bool {
	m.mu.RLock()
	breakers := make([]*namedBreaker, len(m.breakers))
	copy(breakers, m.breakers)
	m.mu.RUnlock()

	var wg sync.WaitGroup
	results := make([]bool, len(breakers))
	for i, nb := range breakers {
		wg.Add(1)
		go func(i int, nb *namedBreaker) {
			defer wg.Done()
			results[i] = m.checkOne(ctx, nb)
		}(i, nb)
	}
	wg.Wait()

	for _, ok := range results {
		if !ok {
			return false
		}
	}
	return true
}

func (m *Monitor) checkOne(ctx context.Context, nb *namedBreaker) bool {
	cctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	_, err := nb.breaker.Execute(func() (interface{}, error) {
		return nil, nb.probe.Check(cctx)
	})
	if err != nil {
		m.log.Warn("health probe failed", "probe", nb.probe.Name, "error", err)
		return false
	}
	return true
}
