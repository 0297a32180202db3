package completion_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/recipe-notes-worker/internal/completion"
	"github.com/yungbote/recipe-notes-worker/internal/logging"
)

func TestMarkComplete_FiresCategoryDoneExactlyOnce(t *testing.T) {
	var mu sync.Mutex
	categoryFires := 0

	tr := completion.NewTracker(logging.NewNop(), func(noteID string, category completion.Category) {
		mu.Lock()
		categoryFires++
		mu.Unlock()
	}, nil)

	tr.Register("note-1", completion.CategoryIngredient, 2)
	tr.MarkComplete("note-1", completion.CategoryIngredient, "job-a")
	tr.MarkComplete("note-1", completion.CategoryIngredient, "job-a") // duplicate, idempotent
	tr.MarkComplete("note-1", completion.CategoryIngredient, "job-b")

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return categoryFires == 1
	}, time.Second, time.Millisecond)
}

func TestMarkComplete_NoteDoneFiresOnlyWhenEveryCategoryIsDone(t *testing.T) {
	var mu sync.Mutex
	noteDone := false

	tr := completion.NewTracker(logging.NewNop(), nil, func(noteID string) {
		mu.Lock()
		noteDone = true
		mu.Unlock()
	})

	tr.Register("note-1", completion.CategoryImage, 1)
	tr.Register("note-1", completion.CategoryIngredient, 1)
	tr.Register("note-1", completion.CategoryInstruction, 1)

	tr.MarkComplete("note-1", completion.CategoryImage, "job-img")
	assert.False(t, tr.IsComplete("note-1"))

	tr.MarkComplete("note-1", completion.CategoryIngredient, "job-ing")
	assert.False(t, tr.IsComplete("note-1"))

	tr.MarkComplete("note-1", completion.CategoryInstruction, "job-inst")

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return noteDone
	}, time.Second, time.Millisecond)
	assert.True(t, tr.IsComplete("note-1"))
}

func TestMarkComplete_ZeroExpectedFiresImmediately(t *testing.T) {
	fired := make(chan completion.Category, 1)
	tr := completion.NewTracker(logging.NewNop(), func(noteID string, category completion.Category) {
		fired <- category
	}, nil)
	tr.Register("note-1", completion.CategoryImage, 0)
	select {
	case c := <-fired:
		assert.Equal(t, completion.CategoryImage, c)
	case <-time.After(time.Second):
		t.Fatal("category done did not fire for a zero expected count")
	}
	assert.False(t, tr.IsComplete("note-1"), "other categories were never registered")
}

func TestMarkComplete_EmptyNoteIDIsANoop(t *testing.T) {
	tr := completion.NewTracker(logging.NewNop(), nil, nil)
	assert.NotPanics(t, func() {
		tr.MarkComplete("", completion.CategoryImage, "job-a")
	})
}

func TestMarkComplete_UnrelatedNotesDoNotSerializeOnEachOther(t *testing.T) {
	tr := completion.NewTracker(logging.NewNop(), nil, nil)
	for _, noteID := range []string{"note-1", "note-2"} {
		tr.Register(noteID, completion.CategoryImage, 1)
		tr.Register(noteID, completion.CategoryIngredient, 0)
		tr.Register(noteID, completion.CategoryInstruction, 0)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		tr.MarkComplete("note-1", completion.CategoryImage, "job-1")
	}()
	go func() {
		defer wg.Done()
		tr.MarkComplete("note-2", completion.CategoryImage, "job-2")
	}()
	wg.Wait()

	assert.True(t, tr.IsComplete("note-1"))
	assert.True(t, tr.IsComplete("note-2"))
}
