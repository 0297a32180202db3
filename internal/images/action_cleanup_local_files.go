package images

import (
	"context"
	"fmt"
	"os"

	"github.com/yungbote/recipe-notes-worker/internal/actions"
	"github.com/yungbote/recipe-notes-worker/internal/domain"
)

// cleanupLocalFilesAction is step 5 of the image pipeline: best-effort delete of
// the source plus five derivatives, treating ENOENT as success, then
// removing OutputDir iff it exists and is now empty. Never raises.
type cleanupLocalFilesAction struct {
	deps Deps
}

func newCleanupLocalFilesAction(d actions.Deps) (actions.Action[domain.ImageJobData], error) {
	deps, ok := d.(Deps)
	if !ok {
		return nil, fmt.Errorf("images: cleanup_local_files requires images.Deps")
	}
	return &cleanupLocalFilesAction{deps: deps}, nil
}

func (a *cleanupLocalFilesAction) Name() actions.Name { return actions.NameCleanupLocalFiles }

func (a *cleanupLocalFilesAction) ValidateInput(domain.ImageJobData) error { return nil }

func (a *cleanupLocalFilesAction) Execute(_ context.Context, data domain.ImageJobData, _ actions.Deps, ac actions.ActionContext) (domain.ImageJobData, error) {
	targets := []string{
		data.ImagePath,
		data.OriginalPath,
		data.ThumbnailPath,
		data.Crop3x2Path,
		data.Crop4x3Path,
		data.Crop16x9Path,
	}

	succeeded, failed := 0, 0
	for _, path := range targets {
		if path == "" {
			continue
		}
		if err := os.Remove(path); err != nil {
			if os.IsNotExist(err) {
				succeeded++
				continue
			}
			failed++
			a.deps.Log.Warn("cleanup_local_files: remove failed", "job_id", ac.JobID, "path", path, "error", err)
			continue
		}
		succeeded++
	}

	a.cleanupOutputDir(data.OutputDir, ac)

	a.deps.Log.Info("cleanup_local_files: summary", "job_id", ac.JobID, "succeeded", succeeded, "failed", failed)
	return data, nil
}

func (a *cleanupLocalFilesAction) cleanupOutputDir(dir string, ac actions.ActionContext) {
	if dir == "" {
		return
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			a.deps.Log.Warn("cleanup_local_files: read output dir failed", "job_id", ac.JobID, "dir", dir, "error", err)
		}
		return
	}
	if len(entries) > 0 {
		return
	}
	if err := os.Remove(dir); err != nil {
		a.deps.Log.Warn("cleanup_local_files: remove empty output dir failed", "job_id", ac.JobID, "dir", dir, "error", err)
	}
}
