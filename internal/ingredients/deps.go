// Package ingredients implements the ingredients-queue pipeline: parse one
// raw ingredient line into quantity/unit/name, persist it, then mark the
// completion tracker so the note's ingredient category can reach zero.
package ingredients

import (
	"github.com/yungbote/recipe-notes-worker/internal/completion"
	"github.com/yungbote/recipe-notes-worker/internal/logging"
	"github.com/yungbote/recipe-notes-worker/internal/queue"
	"github.com/yungbote/recipe-notes-worker/internal/store"
)

type Deps struct {
	Store   store.IngredientStore
	Queue   queue.Backend
	Tracker *completion.Tracker
	Log     *logging.Logger
}
