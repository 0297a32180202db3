package notes

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/yungbote/recipe-notes-worker/internal/actions"
	"github.com/yungbote/recipe-notes-worker/internal/completion"
	"github.com/yungbote/recipe-notes-worker/internal/domain"
	"github.com/yungbote/recipe-notes-worker/internal/errs"
	"github.com/yungbote/recipe-notes-worker/internal/queue"
)

// fanOutNoteAction is the notes-queue counterpart of the fan-out
// diagram: split the saved HTML into ingredient and instruction lines,
// register the expected counts with the completion tracker BEFORE pushing
// a single job, then push every downstream job. Registering first closes
// the race where a fast downstream worker could finish and call
// markComplete before the tracker even knows how many jobs to expect.
type fanOutNoteAction struct {
	deps Deps
}

func newFanOutNoteAction(d actions.Deps) (actions.Action[domain.NoteJobData], error) {
	deps, ok := d.(Deps)
	if !ok {
		return nil, fmt.Errorf("notes: fan_out_note requires notes.Deps")
	}
	return &fanOutNoteAction{deps: deps}, nil
}

func (a *fanOutNoteAction) Name() actions.Name { return actions.NameFanOutNote }

func (a *fanOutNoteAction) ValidateInput(data domain.NoteJobData) error {
	if data.NoteID == "" || data.HTML == "" {
		return fmt.Errorf("fan_out_note: missing noteId/html")
	}
	return nil
}

func (a *fanOutNoteAction) Execute(ctx context.Context, data domain.NoteJobData, _ actions.Deps, ac actions.ActionContext) (domain.NoteJobData, error) {
	lines := splitLines(data.HTML)

	var ingredientLines, instructionLines []string
	for i, line := range lines {
		if i%2 == 0 {
			ingredientLines = append(ingredientLines, line)
		} else {
			instructionLines = append(instructionLines, line)
		}
	}

	if a.deps.Tracker != nil {
		a.deps.Tracker.Register(data.NoteID, completion.CategoryIngredient, len(ingredientLines))
		a.deps.Tracker.Register(data.NoteID, completion.CategoryInstruction, len(instructionLines))
		// Image fan-out is registered by httpapi ingestion from the
		// request's image count; fan_out_note only owns the text
		// categories.
	}

	for idx, line := range ingredientLines {
		payload, err := json.Marshal(domain.IngredientJobData{
			NoteID: data.NoteID, ImportID: data.ImportID, LineText: line, LineIdx: idx,
		})
		if err != nil {
			return data, a.fatal(ac, "fan_out_note: marshal ingredient", err)
		}
		if _, err := a.deps.Queue.Push(ctx, queue.Ingredients, payload, queue.PushOptions{}); err != nil {
			return data, a.fatal(ac, "fan_out_note: push ingredient", err)
		}
	}

	for idx, line := range instructionLines {
		payload, err := json.Marshal(domain.InstructionJobData{
			NoteID: data.NoteID, ImportID: data.ImportID, LineText: line, LineIdx: idx,
		})
		if err != nil {
			return data, a.fatal(ac, "fan_out_note: marshal instruction", err)
		}
		if _, err := a.deps.Queue.Push(ctx, queue.Instruction, payload, queue.PushOptions{}); err != nil {
			return data, a.fatal(ac, "fan_out_note: push instruction", err)
		}
	}

	return data, nil
}

func (a *fanOutNoteAction) fatal(ac actions.ActionContext, op string, err error) error {
	return &errs.StructuredError{
		Kind:     errs.KindQueue,
		Severity: errs.SeverityHigh,
		JobID:    ac.JobID,
		Queue:    ac.Queue,
		Op:       op,
		Err:      err,
	}
}
