// Package images wires the seven concrete image-processing actions into
// an ordered pipeline and a per-worker ActionFactory.
package images

import (
	"context"

	"github.com/yungbote/recipe-notes-worker/internal/actions"
	"github.com/yungbote/recipe-notes-worker/internal/broadcast"
	"github.com/yungbote/recipe-notes-worker/internal/domain"
	"github.com/yungbote/recipe-notes-worker/internal/pipeline"
)

// NewFactory registers all seven image-queue action constructors into a
// fresh, worker-scoped ActionFactory.
func NewFactory() (*actions.Factory[domain.ImageJobData], error) {
	f := actions.NewFactory[domain.ImageJobData]()
	registrations := []struct {
		name actions.Name
		ctor actions.Constructor[domain.ImageJobData]
	}{
		{actions.NameUploadOriginal, newUploadOriginalAction},
		{actions.NameProcessImage, newProcessImageAction},
		{actions.NameUploadProcessed, newUploadProcessedAction},
		{actions.NameSaveImage, newSaveImageAction},
		{actions.NameCleanupLocalFiles, newCleanupLocalFilesAction},
		{actions.NameImageCompletedStatus, newImageCompletedStatusAction},
		{actions.NameCheckImageCompletion, newCheckImageCompletionAction},
	}
	for _, r := range registrations {
		if err := f.Register(r.name, r.ctor); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// BuildPipeline is the pipeline-builder function the worker calls per job:
// (data, ctx) -> ordered action list, always the same fixed seven-step
// sequence (the image pipeline never varies this list by inspecting data
// — every image job runs the same steps).
func BuildPipeline(f *actions.Factory[domain.ImageJobData], deps actions.Deps) ([]pipeline.Step[domain.ImageJobData], error) {
	order := []actions.Name{
		actions.NameUploadOriginal,
		actions.NameProcessImage,
		actions.NameUploadProcessed,
		actions.NameSaveImage,
		actions.NameCleanupLocalFiles,
		actions.NameImageCompletedStatus,
		actions.NameCheckImageCompletion,
	}
	steps := make([]pipeline.Step[domain.ImageJobData], 0, len(order))
	for _, name := range order {
		act, err := f.Create(name, deps)
		if err != nil {
			return nil, err
		}
		steps = append(steps, pipeline.Step[domain.ImageJobData]{Action: act})
	}
	return steps, nil
}

// OnFatalFailure is the failure-path action outside the normal seven-step
// pipeline: it writes the image record's processingError and emits a
// FAILED event. The worker calls this when the pipeline returns a
// non-retryable (or retries-exhausted) error, so the record and the UI
// reflect the terminal failure.
func OnFatalFailure(ctx context.Context, deps Deps, data domain.ImageJobData, failureErr error) {
	if data.ImportID != "" && deps.Store != nil {
		if err := deps.Store.UpdateStatus(ctx, data.ImportID, domain.StatusFailed, failureErr.Error()); err != nil {
			deps.Log.Error("images: failed to persist failure status", "import_id", data.ImportID, "error", err)
		}
	}
	if deps.Broadcaster != nil {
		<-deps.Broadcaster.Emit(broadcast.Event{
			ImportID: data.ImportID,
			NoteID:   data.NoteID,
			Status:   broadcast.StatusFailed,
			Message:  failureErr.Error(),
			Context:  "image_processing",
		})
	}
}
