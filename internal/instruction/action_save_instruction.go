package instruction

import (
	"context"
	"fmt"

	"github.com/yungbote/recipe-notes-worker/internal/actions"
	"github.com/yungbote/recipe-notes-worker/internal/domain"
	"github.com/yungbote/recipe-notes-worker/internal/errs"
)

type saveInstructionAction struct {
	deps Deps
}

func newSaveInstructionAction(d actions.Deps) (actions.Action[domain.InstructionJobData], error) {
	deps, ok := d.(Deps)
	if !ok {
		return nil, fmt.Errorf("instruction: save_instruction requires instruction.Deps")
	}
	return &saveInstructionAction{deps: deps}, nil
}

func (a *saveInstructionAction) Name() actions.Name { return actions.NameSaveInstruction }

func (a *saveInstructionAction) ValidateInput(data domain.InstructionJobData) error {
	if data.NoteID == "" {
		return fmt.Errorf("save_instruction: missing noteId")
	}
	return nil
}

func (a *saveInstructionAction) Execute(ctx context.Context, data domain.InstructionJobData, _ actions.Deps, ac actions.ActionContext) (domain.InstructionJobData, error) {
	rec := domain.InstructionRecord{
		NoteID:     data.NoteID,
		ImportID:   data.ImportID,
		StepNumber: data.LineIdx + 1,
		Text:       data.LineText,
	}
	if _, err := a.deps.Store.Create(ctx, rec); err != nil {
		return data, &errs.StructuredError{
			Kind:     errs.KindDatabase,
			Severity: errs.SeverityHigh,
			JobID:    ac.JobID,
			Queue:    ac.Queue,
			Op:       string(a.Name()),
			Err:      fmt.Errorf("save_instruction: create: %w", err),
		}
	}
	return data, nil
}
