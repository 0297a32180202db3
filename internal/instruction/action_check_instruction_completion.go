package instruction

import (
	"context"
	"fmt"

	"github.com/yungbote/recipe-notes-worker/internal/actions"
	"github.com/yungbote/recipe-notes-worker/internal/completion"
	"github.com/yungbote/recipe-notes-worker/internal/domain"
)

type checkInstructionCompletionAction struct {
	deps Deps
}

func newCheckInstructionCompletionAction(d actions.Deps) (actions.Action[domain.InstructionJobData], error) {
	deps, ok := d.(Deps)
	if !ok {
		return nil, fmt.Errorf("instruction: check_instruction_completion requires instruction.Deps")
	}
	return &checkInstructionCompletionAction{deps: deps}, nil
}

func (a *checkInstructionCompletionAction) Name() actions.Name {
	return actions.NameCheckInstructionCompletion
}

func (a *checkInstructionCompletionAction) ValidateInput(domain.InstructionJobData) error { return nil }

func (a *checkInstructionCompletionAction) Execute(_ context.Context, data domain.InstructionJobData, _ actions.Deps, ac actions.ActionContext) (domain.InstructionJobData, error) {
	if data.NoteID == "" {
		a.deps.Log.Info("check_instruction_completion: note id absent, skipping", "job_id", ac.JobID)
		return data, nil
	}
	if a.deps.Tracker != nil {
		a.deps.Tracker.MarkComplete(data.NoteID, completion.CategoryInstruction, ac.JobID)
	}
	return data, nil
}
