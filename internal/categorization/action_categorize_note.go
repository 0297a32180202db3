package categorization

import (
	"context"
	"fmt"

	"github.com/yungbote/recipe-notes-worker/internal/actions"
	"github.com/yungbote/recipe-notes-worker/internal/domain"
	"github.com/yungbote/recipe-notes-worker/internal/errs"
)

type categorizeNoteAction struct {
	deps Deps
}

func newCategorizeNoteAction(d actions.Deps) (actions.Action[domain.CategorizationJobData], error) {
	deps, ok := d.(Deps)
	if !ok {
		return nil, fmt.Errorf("categorization: categorize_note requires categorization.Deps")
	}
	return &categorizeNoteAction{deps: deps}, nil
}

func (a *categorizeNoteAction) Name() actions.Name { return actions.NameCategorizeNote }

func (a *categorizeNoteAction) ValidateInput(data domain.CategorizationJobData) error {
	if data.NoteID == "" {
		return fmt.Errorf("categorize_note: missing noteId")
	}
	return nil
}

func (a *categorizeNoteAction) Execute(ctx context.Context, data domain.CategorizationJobData, _ actions.Deps, ac actions.ActionContext) (domain.CategorizationJobData, error) {
	category := classify(data.Ingredients)
	if err := a.deps.NoteStore.SetCategory(ctx, data.NoteID, category); err != nil {
		return data, &errs.StructuredError{
			Kind:     errs.KindDatabase,
			Severity: errs.SeverityMedium,
			JobID:    ac.JobID,
			Queue:    ac.Queue,
			Op:       string(a.Name()),
			Err:      fmt.Errorf("categorize_note: set category: %w", err),
		}
	}
	return data, nil
}
