// Package categorization implements the categorization-queue pipeline: a
// single job per note, enqueued once the completion tracker observes the
// note's ingredient category has reached zero, that derives a coarse
// recipe category from the saved ingredient list and persists it.
package categorization

import (
	"github.com/yungbote/recipe-notes-worker/internal/logging"
	"github.com/yungbote/recipe-notes-worker/internal/store"
)

type Deps struct {
	NoteStore store.NoteStore
	Log       *logging.Logger
}
