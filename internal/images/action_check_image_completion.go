package images

import (
	"context"
	"fmt"

	"github.com/yungbote/recipe-notes-worker/internal/actions"
	"github.com/yungbote/recipe-notes-worker/internal/completion"
	"github.com/yungbote/recipe-notes-worker/internal/domain"
)

// checkImageCompletionAction is step 7 of the image pipeline: a defensive second
// markComplete call. If noteId is absent, log and skip. The tracker's
// idempotency invariant means this call is safe even though
// imageCompletedStatusAction already called MarkComplete for the same
// jobId. Never raises.
type checkImageCompletionAction struct {
	deps Deps
}

func newCheckImageCompletionAction(d actions.Deps) (actions.Action[domain.ImageJobData], error) {
	deps, ok := d.(Deps)
	if !ok {
		return nil, fmt.Errorf("images: check_image_completion requires images.Deps")
	}
	return &checkImageCompletionAction{deps: deps}, nil
}

func (a *checkImageCompletionAction) Name() actions.Name { return actions.NameCheckImageCompletion }

func (a *checkImageCompletionAction) ValidateInput(domain.ImageJobData) error { return nil }

func (a *checkImageCompletionAction) Execute(_ context.Context, data domain.ImageJobData, _ actions.Deps, ac actions.ActionContext) (domain.ImageJobData, error) {
	if data.NoteID == "" {
		a.deps.Log.Info("check_image_completion: note id absent, skipping", "job_id", ac.JobID)
		return data, nil
	}
	if a.deps.Tracker != nil {
		a.deps.Tracker.MarkComplete(data.NoteID, completion.CategoryImage, ac.JobID)
	}
	return data, nil
}
