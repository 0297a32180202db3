// Package instruction implements the instruction-queue pipeline: format one
// raw instruction line into a numbered step, persist it, then mark the
// completion tracker so the note's instruction category can reach zero.
package instruction

import (
	"github.com/yungbote/recipe-notes-worker/internal/completion"
	"github.com/yungbote/recipe-notes-worker/internal/logging"
	"github.com/yungbote/recipe-notes-worker/internal/queue"
	"github.com/yungbote/recipe-notes-worker/internal/store"
)

type Deps struct {
	Store   store.InstructionStore
	Queue   queue.Backend
	Tracker *completion.Tracker
	Log     *logging.Logger
}
