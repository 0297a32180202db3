package images

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/yungbote/recipe-notes-worker/internal/actions"
	"github.com/yungbote/recipe-notes-worker/internal/broadcast"
	"github.com/yungbote/recipe-notes-worker/internal/domain"
	"github.com/yungbote/recipe-notes-worker/internal/errs"
)

// uploadOriginalAction is step 1 of the image pipeline: it emits the
// PROCESSING status event marking the pending-to-processing transition,
// then uploads the original. If the object store isn't configured,
// r2Key/r2Url stay absent and the pipeline continues. A missing source
// file is non-retryable (the job will never become runnable). Any other
// upload failure is logged and swallowed: the original is an
// optimization, not a prerequisite.
type uploadOriginalAction struct {
	deps Deps
}

func newUploadOriginalAction(d actions.Deps) (actions.Action[domain.ImageJobData], error) {
	deps, ok := d.(Deps)
	if !ok {
		return nil, fmt.Errorf("images: upload_original requires images.Deps")
	}
	return &uploadOriginalAction{deps: deps}, nil
}

func (a *uploadOriginalAction) Name() actions.Name { return actions.NameUploadOriginal }

func (a *uploadOriginalAction) ValidateInput(data domain.ImageJobData) error {
	if data.ImagePath == "" || data.ImportID == "" {
		return fmt.Errorf("upload_original: missing imagePath/importId")
	}
	return nil
}

func (a *uploadOriginalAction) Execute(ctx context.Context, data domain.ImageJobData, _ actions.Deps, ac actions.ActionContext) (domain.ImageJobData, error) {
	if a.deps.Broadcaster != nil {
		<-a.deps.Broadcaster.Emit(broadcast.Event{
			ImportID: data.ImportID,
			NoteID:   data.NoteID,
			Status:   broadcast.StatusProcessing,
			Message:  "image processing started",
			Context:  "image_processing",
		})
	}

	if a.deps.ObjectStore == nil {
		a.deps.Log.Info("upload_original: object store not configured, skipping", "job_id", ac.JobID)
		return data, nil
	}

	if _, err := os.Stat(data.ImagePath); err != nil {
		if os.IsNotExist(err) {
			return data, &errs.StructuredError{
				Kind:         errs.KindParsing,
				Severity:     errs.SeverityLow,
				NonRetryable: true,
				JobID:        ac.JobID,
				Queue:        ac.Queue,
				Op:           string(a.Name()),
				Err:          fmt.Errorf("upload_original: source file missing: %s", data.ImagePath),
			}
		}
		a.deps.Log.Warn("upload_original: stat failed, continuing without upload", "job_id", ac.JobID, "error", err)
		return data, nil
	}

	filename := data.OriginalFilename
	if filename == "" {
		filename = filepath.Base(data.ImagePath)
	}
	key := OriginalKey(data.ImportID, filename)

	uploaded, err := a.deps.ObjectStore.UploadFile(ctx, key, data.ImagePath)
	if err != nil {
		a.deps.Log.Warn("upload_original: upload failed, continuing without remote original", "job_id", ac.JobID, "key", key, "error", err)
		return data, nil
	}

	data.R2OriginalKey = uploaded.Key
	data.R2OriginalURL = uploaded.URL
	return data, nil
}
