package images

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/recipe-notes-worker/internal/actions"
	"github.com/yungbote/recipe-notes-worker/internal/domain"
)

// uploadProcessedAction is step 3 of the image pipeline. For each of the five
// derivatives, independently stat then upload; all five uploads issue
// concurrently via errgroup and the action waits for all to settle —
// every failure is isolated and logged, never propagated or aborting its
// siblings.
type uploadProcessedAction struct {
	deps Deps
}

func newUploadProcessedAction(d actions.Deps) (actions.Action[domain.ImageJobData], error) {
	deps, ok := d.(Deps)
	if !ok {
		return nil, fmt.Errorf("images: upload_processed requires images.Deps")
	}
	return &uploadProcessedAction{deps: deps}, nil
}

func (a *uploadProcessedAction) Name() actions.Name { return actions.NameUploadProcessed }

func (a *uploadProcessedAction) ValidateInput(data domain.ImageJobData) error {
	if data.ImportID == "" {
		return fmt.Errorf("upload_processed: missing importId")
	}
	return nil
}

type derivativeUpload struct {
	derivative Derivative
	path       string
}

func (a *uploadProcessedAction) Execute(ctx context.Context, data domain.ImageJobData, _ actions.Deps, ac actions.ActionContext) (domain.ImageJobData, error) {
	if a.deps.ObjectStore == nil {
		a.deps.Log.Info("upload_processed: object store not configured, skipping", "job_id", ac.JobID)
		return data, nil
	}

	targets := []derivativeUpload{
		{DerivativeThumbnail, data.ThumbnailPath},
		{DerivativeCrop3x2, data.Crop3x2Path},
		{DerivativeCrop4x3, data.Crop4x3Path},
		{DerivativeCrop16x9, data.Crop16x9Path},
		{DerivativeOriginal, data.OriginalPath},
	}

	type result struct {
		derivative Derivative
		url        string
		err        error
	}

	results := make(chan result, len(targets))
	var eg errgroup.Group
	for _, t := range targets {
		t := t
		if t.path == "" {
			continue
		}
		eg.Go(func() error {
			url, err := a.uploadOne(ctx, data, t)
			results <- result{derivative: t.derivative, url: url, err: err}
			return nil
		})
	}
	go func() {
		_ = eg.Wait()
		close(results)
	}()

	for r := range results {
		if r.err != nil {
			a.deps.Log.Warn("upload_processed: derivative upload failed", "job_id", ac.JobID, "derivative", string(r.derivative), "error", r.err)
			continue
		}
		switch r.derivative {
		case DerivativeThumbnail:
			data.R2ThumbnailURL = r.url
		case DerivativeCrop3x2:
			data.R2Crop3x2URL = r.url
		case DerivativeCrop4x3:
			data.R2Crop4x3URL = r.url
		case DerivativeCrop16x9:
			data.R2Crop16x9URL = r.url
		case DerivativeOriginal:
			// original URL may also have been set by uploadOriginalAction;
			// this re-upload under the processed/ prefix is additive and
			// does not overwrite R2OriginalURL.
		}
	}

	return data, nil
}

func (a *uploadProcessedAction) uploadOne(ctx context.Context, data domain.ImageJobData, t derivativeUpload) (string, error) {
	if _, err := os.Stat(t.path); err != nil {
		return "", fmt.Errorf("stat %s: %w", t.path, err)
	}
	ext := filepath.Ext(t.path)
	key := ProcessedKey(data.ImportID, data.NoteID, t.derivative, ext)
	uploaded, err := a.deps.ObjectStore.UploadFile(ctx, key, t.path)
	if err != nil {
		return "", err
	}
	return uploaded.URL, nil
}
