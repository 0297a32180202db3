package worker_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/recipe-notes-worker/internal/logging"
	"github.com/yungbote/recipe-notes-worker/internal/worker"
)

type fakeRunnable struct {
	name      string
	stopErr   error
	running   bool
	stopCalls int
	mu        sync.Mutex
}

func (f *fakeRunnable) Name() string { return f.name }
func (f *fakeRunnable) Start(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.running = true
	return nil
}
func (f *fakeRunnable) Stop(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopCalls++
	f.running = false
	return f.stopErr
}
func (f *fakeRunnable) IsRunning() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.running
}

func TestManager_StartAll_AbortsOnFirstError(t *testing.T) {
	mgr := worker.NewManager(logging.NewNop())
	good := &fakeRunnable{name: "good"}
	mgr.Register(good)
	mgr.Register(failingRunnable{name: "bad"})
	neverStarted := &fakeRunnable{name: "never-started"}
	mgr.Register(neverStarted)

	err := mgr.StartAll(context.Background())
	require.Error(t, err)
	assert.True(t, good.IsRunning())
	assert.False(t, neverStarted.IsRunning())
}

type failingRunnable struct{ name string }

func (f failingRunnable) Name() string                   { return f.name }
func (f failingRunnable) Start(ctx context.Context) error { return fmt.Errorf("boom") }
func (f failingRunnable) Stop(ctx context.Context) error  { return nil }
func (f failingRunnable) IsRunning() bool                 { return false }

func TestManager_StopAll_SettlesEveryWorkerDespiteFailures(t *testing.T) {
	mgr := worker.NewManager(logging.NewNop())
	a := &fakeRunnable{name: "a", stopErr: fmt.Errorf("stop failed")}
	b := &fakeRunnable{name: "b"}
	c := &fakeRunnable{name: "c", stopErr: fmt.Errorf("stop failed too")}
	mgr.Register(a)
	mgr.Register(b)
	mgr.Register(c)

	require.NoError(t, mgr.StartAll(context.Background()))
	mgr.StopAll(context.Background())

	assert.Equal(t, 1, a.stopCalls)
	assert.Equal(t, 1, b.stopCalls)
	assert.Equal(t, 1, c.stopCalls)
	assert.False(t, a.IsRunning())
	assert.False(t, b.IsRunning())
	assert.False(t, c.IsRunning())
}

func TestManager_Status_ReportsPerWorkerRunningFlag(t *testing.T) {
	mgr := worker.NewManager(logging.NewNop())
	a := &fakeRunnable{name: "a"}
	b := &fakeRunnable{name: "b"}
	mgr.Register(a)
	mgr.Register(b)

	require.NoError(t, mgr.StartAll(context.Background()))
	status := mgr.Status()
	assert.True(t, status["a"])
	assert.True(t, status["b"])

	mgr.StopAll(context.Background())
	status = mgr.Status()
	assert.False(t, status["a"])
	assert.False(t, status["b"])
}
