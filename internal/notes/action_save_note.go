package notes

import (
	"context"
	"fmt"

	"gorm.io/datatypes"

	"github.com/yungbote/recipe-notes-worker/internal/actions"
	"github.com/yungbote/recipe-notes-worker/internal/domain"
	"github.com/yungbote/recipe-notes-worker/internal/errs"
)

// saveNoteAction persists the raw HTML blob keyed by import id before any
// fan-out happens, so fanOutNote always runs against a row that already
// exists. The upsert makes a retry of this step safe; a retried job still
// runs fanOutNote again, which pushes every downstream job again.
type saveNoteAction struct {
	deps Deps
}

func newSaveNoteAction(d actions.Deps) (actions.Action[domain.NoteJobData], error) {
	deps, ok := d.(Deps)
	if !ok {
		return nil, fmt.Errorf("notes: save_note requires notes.Deps")
	}
	return &saveNoteAction{deps: deps}, nil
}

func (a *saveNoteAction) Name() actions.Name { return actions.NameSaveNote }

func (a *saveNoteAction) ValidateInput(data domain.NoteJobData) error {
	if data.ImportID == "" || data.HTML == "" {
		return fmt.Errorf("save_note: missing importId/html")
	}
	return nil
}

func (a *saveNoteAction) Execute(ctx context.Context, data domain.NoteJobData, _ actions.Deps, ac actions.ActionContext) (domain.NoteJobData, error) {
	rec := domain.NoteRecord{
		ImportID:         data.ImportID,
		NoteID:           data.NoteID,
		UserID:           data.UserID,
		SourceURL:        data.SourceURL,
		RawHTML:          data.HTML,
		Metadata:         datatypes.JSONMap(data.Metadata),
		ProcessingStatus: string(domain.StatusProcessing),
	}
	saved, err := a.deps.Store.UpsertByImportID(ctx, rec)
	if err != nil {
		return data, &errs.StructuredError{
			Kind:     errs.KindDatabase,
			Severity: errs.SeverityHigh,
			JobID:    ac.JobID,
			Queue:    ac.Queue,
			Op:       string(a.Name()),
			Err:      fmt.Errorf("save_note: upsert: %w", err),
		}
	}
	if data.NoteID == "" {
		data.NoteID = saved.NoteID
	}
	return data, nil
}
