// Package notes implements the note-ingestion pipeline: parse the raw HTML
// blob, persist it, then fan the note out into per-line ingredient and
// instruction jobs, registering expected fan-out counts with the completion
// tracker before any of those jobs can possibly complete. The single
// categorization job is not pushed here; the container's completion
// callback enqueues it once the ingredient category finishes.
package notes

import (
	"github.com/yungbote/recipe-notes-worker/internal/completion"
	"github.com/yungbote/recipe-notes-worker/internal/logging"
	"github.com/yungbote/recipe-notes-worker/internal/queue"
	"github.com/yungbote/recipe-notes-worker/internal/store"
)

// Deps is the notes worker's concrete dependency bundle.
type Deps struct {
	Store   store.NoteStore
	Queue   queue.Backend
	Tracker *completion.Tracker
	Log     *logging.Logger
}
