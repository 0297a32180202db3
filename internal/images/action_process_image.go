package images

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/yungbote/recipe-notes-worker/internal/actions"
	"github.com/yungbote/recipe-notes-worker/internal/domain"
	"github.com/yungbote/recipe-notes-worker/internal/errs"
)

// processImageAction is step 2 of the image pipeline. A missing source file
// or any processor failure is non-retryable and fails the job.
type processImageAction struct {
	deps Deps
}

func newProcessImageAction(d actions.Deps) (actions.Action[domain.ImageJobData], error) {
	deps, ok := d.(Deps)
	if !ok {
		return nil, fmt.Errorf("images: process_image requires images.Deps")
	}
	return &processImageAction{deps: deps}, nil
}

func (a *processImageAction) Name() actions.Name { return actions.NameProcessImage }

func (a *processImageAction) ValidateInput(data domain.ImageJobData) error {
	if data.ImagePath == "" || data.OutputDir == "" {
		return fmt.Errorf("process_image: missing imagePath/outputDir")
	}
	return nil
}

func (a *processImageAction) Execute(_ context.Context, data domain.ImageJobData, _ actions.Deps, ac actions.ActionContext) (domain.ImageJobData, error) {
	if _, err := os.Stat(data.ImagePath); err != nil {
		return data, &errs.StructuredError{
			Kind:         errs.KindParsing,
			Severity:     errs.SeverityLow,
			NonRetryable: true,
			JobID:        ac.JobID,
			Queue:        ac.Queue,
			Op:           string(a.Name()),
			Err:          fmt.Errorf("process_image: source file missing: %w", err),
		}
	}

	filename := data.OriginalFilename
	if filename == "" {
		filename = filepath.Base(data.ImagePath)
	}
	stem := strings.TrimSuffix(filename, filepath.Ext(filename))

	derived, err := a.deps.Processor.Process(data.ImagePath, data.OutputDir, stem)
	if err != nil {
		return data, &errs.StructuredError{
			Kind:         errs.KindWorker,
			Severity:     errs.SeverityCritical,
			NonRetryable: true,
			JobID:        ac.JobID,
			Queue:        ac.Queue,
			Op:           string(a.Name()),
			Err:          err,
		}
	}

	data.OriginalPath = derived.Paths[DerivativeOriginal]
	data.ThumbnailPath = derived.Paths[DerivativeThumbnail]
	data.Crop3x2Path = derived.Paths[DerivativeCrop3x2]
	data.Crop4x3Path = derived.Paths[DerivativeCrop4x3]
	data.Crop16x9Path = derived.Paths[DerivativeCrop16x9]

	data.OriginalSize = derived.Sizes[DerivativeOriginal]
	data.ThumbnailSize = derived.Sizes[DerivativeThumbnail]
	data.Crop3x2Size = derived.Sizes[DerivativeCrop3x2]
	data.Crop4x3Size = derived.Sizes[DerivativeCrop4x3]
	data.Crop16x9Size = derived.Sizes[DerivativeCrop16x9]

	data.Width = derived.Metadata.Width
	data.Height = derived.Metadata.Height
	data.Format = derived.Metadata.Format

	return data, nil
}
