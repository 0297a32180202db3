package images

import (
	"github.com/yungbote/recipe-notes-worker/internal/broadcast"
	"github.com/yungbote/recipe-notes-worker/internal/completion"
	"github.com/yungbote/recipe-notes-worker/internal/logging"
	"github.com/yungbote/recipe-notes-worker/internal/objectstore"
	"github.com/yungbote/recipe-notes-worker/internal/store"
)

// Deps is the image worker's concrete dependency bundle, the Deps type
// actions.Action[domain.ImageJobData] instances close over. ObjectStore
// and Broadcaster are allowed to be nil: step 1 ("if the object store is
// not configured...") and step 6 ("iff a broadcaster is available") both
// model absence as a real, handled case rather than a
// wiring error.
type Deps struct {
	ObjectStore  objectstore.Client
	Store        store.ImageStore
	Broadcaster  broadcast.Broadcaster
	Tracker      *completion.Tracker
	Processor    Processor
	ImageBaseURL string
	Log          *logging.Logger
}
