package images

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/yungbote/recipe-notes-worker/internal/actions"
	"github.com/yungbote/recipe-notes-worker/internal/domain"
	"github.com/yungbote/recipe-notes-worker/internal/errs"
)

// saveImageAction is step 4 of the image pipeline: compute each URL by falling
// back r2{Name}Url -> IMAGE_BASE_URL/{basename(path)}, upsert the image
// record keyed by importId, assign the returned surrogate id into
// imageId. Any database failure is fatal.
type saveImageAction struct {
	deps Deps
}

func newSaveImageAction(d actions.Deps) (actions.Action[domain.ImageJobData], error) {
	deps, ok := d.(Deps)
	if !ok {
		return nil, fmt.Errorf("images: save_image requires images.Deps")
	}
	return &saveImageAction{deps: deps}, nil
}

func (a *saveImageAction) Name() actions.Name { return actions.NameSaveImage }

func (a *saveImageAction) ValidateInput(data domain.ImageJobData) error {
	if data.ImportID == "" {
		return fmt.Errorf("save_image: missing importId")
	}
	return nil
}

func (a *saveImageAction) Execute(ctx context.Context, data domain.ImageJobData, _ actions.Deps, ac actions.ActionContext) (domain.ImageJobData, error) {
	localURL := func(path string) string {
		if path == "" {
			return ""
		}
		return a.deps.ImageBaseURL + "/" + filepath.Base(path)
	}

	urlFor := func(r2URL, localPath string) string {
		if r2URL != "" {
			return r2URL
		}
		return localURL(localPath)
	}

	rec := domain.ImageRecord{
		ImportID:          data.ImportID,
		NoteID:            data.NoteID,
		OriginalImageURL:  urlFor(data.R2OriginalURL, data.OriginalPath),
		ThumbnailImageURL: urlFor(data.R2ThumbnailURL, data.ThumbnailPath),
		Crop3x2ImageURL:   urlFor(data.R2Crop3x2URL, data.Crop3x2Path),
		Crop4x3ImageURL:   urlFor(data.R2Crop4x3URL, data.Crop4x3Path),
		Crop16x9ImageURL:  urlFor(data.R2Crop16x9URL, data.Crop16x9Path),
		OriginalWidth:     data.Width,
		OriginalHeight:    data.Height,
		OriginalSize:      data.OriginalSize,
		OriginalFormat:    data.Format,
	}

	saved, err := a.deps.Store.UpsertByImportID(ctx, rec)
	if err != nil {
		return data, &errs.StructuredError{
			Kind:     errs.KindDatabase,
			Severity: errs.SeverityHigh,
			JobID:    ac.JobID,
			Queue:    ac.Queue,
			Op:       string(a.Name()),
			Err:      fmt.Errorf("save_image: upsert: %w", err),
		}
	}

	// The image identifier becomes non-empty exactly once, here, and is
	// then stable across the rest of the pipeline.
	data.ImageID = fmt.Sprint(saved.ID)
	return data, nil
}
