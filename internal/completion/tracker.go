// Package completion implements the completion tracker: per-note counters
// for image/ingredient/instruction categories that fire a terminal event
// once all fan-out jobs for a note finish.
//
// Mutations on a (noteId, category) pair are serialized with a striped
// lock keyed by noteId (one mutex per note, not one global mutex).
// markComplete is idempotent by (noteId, category, jobId): duplicate marks
// for the same job must not double-decrement, and markComplete never
// raises — failures are logged and swallowed so the tracker's health
// never gates the main pipeline's success.
package completion

import (
	"sync"

	"github.com/yungbote/recipe-notes-worker/internal/logging"
)

// Category is one of the three downstream fan-out categories tracked for
// a note.
type Category string

const (
	CategoryImage       Category = "image"
	CategoryIngredient  Category = "ingredient"
	CategoryInstruction Category = "instruction"
)

var allCategories = []Category{CategoryImage, CategoryIngredient, CategoryInstruction}

// OnCategoryDone is invoked once, when a single category's counter first
// reaches zero.
type OnCategoryDone func(noteID string, category Category)

// OnNoteDone is invoked once, when every category for a note has reached
// zero.
type OnNoteDone func(noteID string)

type noteState struct {
	mu       sync.Mutex
	expected map[Category]int
	seen     map[Category]map[string]struct{} // dedup set of jobIDs per category
	done     map[Category]bool
	allDone  bool
}

func newNoteState() *noteState {
	return &noteState{
		expected: make(map[Category]int),
		seen:     make(map[Category]map[string]struct{}),
		done:     make(map[Category]bool),
	}
}

// Tracker is the process-wide, striped-lock completion counter registry.
type Tracker struct {
	log *logging.Logger

	mu    sync.Mutex // guards the notes map itself, not per-note state
	notes map[string]*noteState

	onCategoryDone OnCategoryDone
	onNoteDone     OnNoteDone
}

func NewTracker(log *logging.Logger, onCategoryDone OnCategoryDone, onNoteDone OnNoteDone) *Tracker {
	if log == nil {
		log = logging.NewNop()
	}
	return &Tracker{
		log:            log.With("component", "CompletionTracker"),
		notes:          make(map[string]*noteState),
		onCategoryDone: onCategoryDone,
		onNoteDone:     onNoteDone,
	}
}

func (t *Tracker) noteFor(noteID string) *noteState {
	t.mu.Lock()
	defer t.mu.Unlock()
	ns, ok := t.notes[noteID]
	if !ok {
		ns = newNoteState()
		t.notes[noteID] = ns
	}
	return ns
}

// Register sets the expected count for (noteID, category). Safe to call
// multiple times; the latest call wins (a pipeline re-run after a partial
// failure may recompute the fan-out size).
func (t *Tracker) Register(noteID string, category Category, expectedCount int) {
	if noteID == "" {
		return
	}
	ns := t.noteFor(noteID)
	ns.mu.Lock()
	defer ns.mu.Unlock()
	ns.expected[category] = expectedCount
	if expectedCount == 0 {
		ns.done[category] = false // recomputed below by maybeFireCategoryLocked
	}
	t.maybeFireCategoryLocked(noteID, ns, category)
}

// MarkComplete decrements the (noteID, category) counter for jobID. Never
// raises: any internal inconsistency is logged and swallowed, per
// the invariant that the tracker's health never gates pipeline
// success.
func (t *Tracker) MarkComplete(noteID string, category Category, jobID string) {
	defer func() {
		if r := recover(); r != nil {
			t.log.Error("completion tracker panic recovered", "note_id", noteID, "category", string(category), "panic", r)
		}
	}()

	if noteID == "" {
		t.log.Warn("markComplete called with empty note id", "category", string(category))
		return
	}
	ns := t.noteFor(noteID)
	ns.mu.Lock()
	defer ns.mu.Unlock()

	if ns.seen[category] == nil {
		ns.seen[category] = make(map[string]struct{})
	}
	if _, already := ns.seen[category][jobID]; already {
		// Idempotent: duplicate mark for the same underlying job is a no-op.
		return
	}
	ns.seen[category][jobID] = struct{}{}

	remaining, ok := ns.expected[category]
	if !ok {
		t.log.Warn("markComplete for unregistered category", "note_id", noteID, "category", string(category))
		return
	}
	if remaining > 0 {
		ns.expected[category] = remaining - 1
	}
	t.maybeFireCategoryLocked(noteID, ns, category)
}

// maybeFireCategoryLocked must be called with ns.mu held. It fires the
// per-category terminal event at most once, then checks whether every
// category is now done and fires the overall note-complete event at most
// once.
func (t *Tracker) maybeFireCategoryLocked(noteID string, ns *noteState, category Category) {
	if ns.expected[category] > 0 || ns.done[category] {
		return
	}
	ns.done[category] = true
	if t.onCategoryDone != nil {
		category := category
		go func() { t.onCategoryDone(noteID, category) }()
	}

	if ns.allDone {
		return
	}
	for _, c := range allCategories {
		if _, registered := ns.expected[c]; !registered {
			return // category never registered for this note; not yet complete
		}
		if !ns.done[c] {
			return
		}
	}
	ns.allDone = true
	if t.onNoteDone != nil {
		noteID := noteID
		go func() { t.onNoteDone(noteID) }()
	}
}

// IsComplete reports whether all three categories (image, ingredient,
// instruction) have been registered for noteID and have reached zero. A
// note with any category never registered is not complete.
func (t *Tracker) IsComplete(noteID string) bool {
	t.mu.Lock()
	ns, ok := t.notes[noteID]
	t.mu.Unlock()
	if !ok {
		return false
	}
	ns.mu.Lock()
	defer ns.mu.Unlock()
	return ns.allDone
}
