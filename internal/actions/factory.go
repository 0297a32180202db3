package actions

import (
	"fmt"
	"sync"
)

// Factory is a name -> action-constructor registry, scoped per worker (not
// process-wide) so two workers can register different actions under
// overlapping names without interference. Register rejects nil/empty/
// duplicate registrations and Create rejects unknown names; generalized
// over the payload type D.
type Factory[D any] struct {
	mu    sync.RWMutex
	ctors map[Name]Constructor[D]
}

func NewFactory[D any]() *Factory[D] {
	return &Factory[D]{ctors: make(map[Name]Constructor[D])}
}

// Register adds a constructor under name. Idempotent by name: registering
// the exact same constructor value again is a no-op; registering a
// different constructor under a name already taken is an error.
func (f *Factory[D]) Register(name Name, ctor Constructor[D]) error {
	if name == "" {
		return fmt.Errorf("actions: empty action name")
	}
	if ctor == nil {
		return fmt.Errorf("actions: nil constructor for %q", name)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if existing, ok := f.ctors[name]; ok {
		if !sameFunc(existing, ctor) {
			return fmt.Errorf("actions: %q already registered with a different constructor", name)
		}
		return nil
	}
	f.ctors[name] = ctor
	return nil
}

// Create builds a new Action instance for name, binding deps. Fails if name
// is unknown.
func (f *Factory[D]) Create(name Name, deps Deps) (Action[D], error) {
	f.mu.RLock()
	ctor, ok := f.ctors[name]
	f.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("actions: no constructor registered for %q", name)
	}
	return ctor(deps)
}

// Has reports whether name has a registered constructor.
func (f *Factory[D]) Has(name Name) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, ok := f.ctors[name]
	return ok
}

// sameFunc compares function values by their code pointer. Go forbids
// comparing func values with ==, so reflect is needed. Two distinct
// top-level functions never compare equal; closures created from the same
// function literal share a code pointer and do compare equal, whatever
// they captured.
func sameFunc[D any](a, b Constructor[D]) bool {
	return funcPtr(a) == funcPtr(b)
}
