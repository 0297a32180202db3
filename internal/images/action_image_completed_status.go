package images

import (
	"context"
	"fmt"

	"github.com/yungbote/recipe-notes-worker/internal/actions"
	"github.com/yungbote/recipe-notes-worker/internal/broadcast"
	"github.com/yungbote/recipe-notes-worker/internal/completion"
	"github.com/yungbote/recipe-notes-worker/internal/domain"
)

// imageCompletedStatusAction is step 6 of the image pipeline: update the record's
// status to COMPLETED, clear processingError, emit an "image processed"
// event iff a broadcaster is available, then mark the completion tracker.
// Broadcaster and tracker failures are logged and swallowed.
type imageCompletedStatusAction struct {
	deps Deps
}

func newImageCompletedStatusAction(d actions.Deps) (actions.Action[domain.ImageJobData], error) {
	deps, ok := d.(Deps)
	if !ok {
		return nil, fmt.Errorf("images: image_completed_status requires images.Deps")
	}
	return &imageCompletedStatusAction{deps: deps}, nil
}

func (a *imageCompletedStatusAction) Name() actions.Name { return actions.NameImageCompletedStatus }

func (a *imageCompletedStatusAction) ValidateInput(data domain.ImageJobData) error {
	if data.ImportID == "" {
		return fmt.Errorf("image_completed_status: missing importId")
	}
	return nil
}

func (a *imageCompletedStatusAction) Execute(ctx context.Context, data domain.ImageJobData, _ actions.Deps, ac actions.ActionContext) (domain.ImageJobData, error) {
	if err := a.deps.Store.UpdateStatus(ctx, data.ImportID, domain.StatusCompleted, ""); err != nil {
		a.deps.Log.Error("image_completed_status: update status failed", "job_id", ac.JobID, "error", err)
	}

	if a.deps.Broadcaster != nil {
		<-a.deps.Broadcaster.Emit(broadcast.Event{
			ImportID: data.ImportID,
			NoteID:   data.NoteID,
			Status:   broadcast.StatusCompleted,
			Message:  "image processed",
			Context:  "image_processing",
			Metadata: map[string]interface{}{
				"thumbnailUrl": data.R2ThumbnailURL,
				"crop3x2Url":   data.R2Crop3x2URL,
				"crop4x3Url":   data.R2Crop4x3URL,
				"crop16x9Url":  data.R2Crop16x9URL,
			},
		})
	} else {
		a.deps.Log.Info("image_completed_status: broadcaster unavailable, skipping emit", "job_id", ac.JobID)
	}

	if a.deps.Tracker != nil {
		a.deps.Tracker.MarkComplete(data.NoteID, completion.CategoryImage, ac.JobID)
	}

	return data, nil
}
