package instruction

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/recipe-notes-worker/internal/actions"
	"github.com/yungbote/recipe-notes-worker/internal/domain"
)

type formatInstructionLineAction struct {
	deps Deps
}

func newFormatInstructionLineAction(d actions.Deps) (actions.Action[domain.InstructionJobData], error) {
	deps, ok := d.(Deps)
	if !ok {
		return nil, fmt.Errorf("instruction: format_instruction_line requires instruction.Deps")
	}
	return &formatInstructionLineAction{deps: deps}, nil
}

func (a *formatInstructionLineAction) Name() actions.Name { return actions.NameFormatInstructionLine }

func (a *formatInstructionLineAction) ValidateInput(data domain.InstructionJobData) error {
	if data.NoteID == "" {
		return fmt.Errorf("format_instruction_line: missing noteId")
	}
	return nil
}

func (a *formatInstructionLineAction) Execute(_ context.Context, data domain.InstructionJobData, _ actions.Deps, _ actions.ActionContext) (domain.InstructionJobData, error) {
	data.LineText = strings.TrimSpace(data.LineText)
	return data, nil
}
